package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/HerbHall/pingtray/internal/config"
	"github.com/HerbHall/pingtray/internal/icon"
	"github.com/HerbHall/pingtray/internal/metrics"
	"github.com/HerbHall/pingtray/internal/monitor"
	"github.com/HerbHall/pingtray/internal/probe"
	"github.com/HerbHall/pingtray/internal/tray"
	"go.uber.org/zap"
)

const appID = "io.github.herbhall.pingtray"

func main() {
	// Load configuration (before logger, so log level/format can be configured).
	v, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Decode(v)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded", zap.String("source", f))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := app.NewWithID(appID)
	presenter := tray.New(a, logger.Named("tray"))

	renderer := icon.NewRenderer(cfg.Icon, logger.Named("icon"))
	logger.Debug("icon font selected", zap.String("source", renderer.FontSource()))

	collector := metrics.NewCollector()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.Metrics.Listen, logger.Named("metrics")); err != nil {
				logger.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	prober := probe.NewICMPProber(cfg.Probe.Timeout, cfg.Probe.Privileged, logger.Named("probe"))

	mon, err := monitor.New(cfg.Monitor(), prober, renderer, presenter, logger.Named("monitor"),
		monitor.WithObserver(collector),
	)
	if err != nil {
		logger.Fatal("failed to create monitor", zap.Error(err))
	}

	presenter.Bind(tray.Actions{
		Show:  mon.Show,
		Close: mon.Close,
		Exit:  cancel,
	})

	// Tray Exit and OS signals both end up here.
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		fyne.Do(a.Quit)
	}()

	mon.Init()
	mon.Start(ctx)

	presenter.Run()

	mon.Stop()
	logger.Info("pingtray stopped")
}
