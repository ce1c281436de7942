// Package metrics exports probe outcomes as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/HerbHall/pingtray/internal/probe"
	"github.com/HerbHall/pingtray/internal/severity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Collector records probe outcomes on its own registry so nothing leaks
// into the global default registry.
type Collector struct {
	registry *prometheus.Registry

	probesTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	rtt         prometheus.Gauge
	rttHist     prometheus.Histogram
	tier        prometheus.Gauge
}

// NewCollector creates and registers the pingtray metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pingtray_probes_total",
				Help: "Total number of latency probes by outcome.",
			},
			[]string{"outcome"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pingtray_probe_errors_total",
				Help: "Total number of failed probes by error kind.",
			},
			[]string{"kind"},
		),
		rtt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pingtray_rtt_milliseconds",
			Help: "Round-trip time of the last successful probe.",
		}),
		rttHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pingtray_rtt_milliseconds_hist",
			Help:    "Distribution of successful round-trip times.",
			Buckets: []float64{10, 20, 40, 60, 80, 110, 150, 250, 500, 1000},
		}),
		tier: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pingtray_tier",
			Help: "Current latency tier (0 unknown, 1 good, 2 warning, 3 bad).",
		}),
	}
	c.registry.MustRegister(c.probesTotal, c.errorsTotal, c.rtt, c.rttHist, c.tier)
	return c
}

// Observe records one probe result and the tier it was classified into.
func (c *Collector) Observe(r probe.Result, t severity.Tier) {
	c.probesTotal.WithLabelValues(r.Kind.String()).Inc()
	c.tier.Set(float64(t))

	switch r.Kind {
	case probe.KindOK:
		ms, _ := r.Millis()
		c.rtt.Set(float64(ms))
		c.rttHist.Observe(float64(ms))
	case probe.KindError:
		c.errorsTotal.WithLabelValues(probe.ErrorKind(r.Err)).Inc()
	}
}

// Handler returns an HTTP handler serving the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listener started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics listener: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics listener: %w", err)
	}
	return nil
}
