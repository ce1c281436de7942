// Package monitor runs the probe, classify, render and present loop and owns
// the window visibility state.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HerbHall/pingtray/internal/probe"
	"github.com/HerbHall/pingtray/internal/severity"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Presenter shows readings to the user. Implementations must be safe to call
// from the monitor goroutine.
type Presenter interface {
	// Present replaces the latency label and the tray icon.
	Present(label string, icon []byte)
	// SetVisible shows or hides the main window. The tray icon stays live.
	SetVisible(visible bool)
}

// Renderer turns icon text and a tier into encoded image bytes.
type Renderer interface {
	RenderPNG(text string, tier severity.Tier) ([]byte, error)
}

// Observer is notified of every probe result, e.g. to export metrics.
type Observer interface {
	Observe(r probe.Result, t severity.Tier)
}

// State is the window presentation state.
type State int

const (
	Visible State = iota
	Hidden
)

func (s State) String() string {
	if s == Hidden {
		return "hidden"
	}
	return "visible"
}

// Config holds the loop parameters.
type Config struct {
	Host       string
	Interval   time.Duration
	Thresholds severity.Thresholds
}

// Validate checks the loop parameters.
func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval %s must be positive", c.Interval)
	}
	return c.Thresholds.Validate()
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithObserver registers an observer for every probe result.
func WithObserver(o Observer) Option {
	return func(m *Monitor) { m.observer = o }
}

// Monitor is the single owner of the presenter, the prober and the timer.
// Ticks run one at a time on the monitor goroutine; the next timer is armed
// only after the previous tick finished.
type Monitor struct {
	cfg       Config
	prober    probe.Prober
	renderer  Renderer
	presenter Presenter
	observer  Observer
	logger    *zap.Logger

	// errLog throttles warnings for repeated probe failures.
	errLog rate.Sometimes

	mu    sync.Mutex
	state State
	last  Reading

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Monitor. The window starts Visible.
func New(cfg Config, prober probe.Prober, renderer Renderer, presenter Presenter, logger *zap.Logger, opts ...Option) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("monitor config: %w", err)
	}
	m := &Monitor{
		cfg:       cfg,
		prober:    prober,
		renderer:  renderer,
		presenter: presenter,
		logger:    logger,
		errLog:    rate.Sometimes{First: 1, Interval: time.Minute},
		state:     Visible,
		last: Reading{
			Tier:     severity.Unknown,
			Label:    LabelPending,
			IconText: IconTextPending,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Init presents the placeholder reading shown before the first probe.
func (m *Monitor) Init() {
	icon, err := m.renderer.RenderPNG(IconTextPending, severity.Unknown)
	if err != nil {
		m.logger.Warn("render placeholder icon failed", zap.Error(err))
	}

	m.mu.Lock()
	m.last.Icon = icon
	m.mu.Unlock()

	m.presenter.Present(LabelPending, icon)
}

// Start begins the tick loop. The first tick fires one interval after Start.
func (m *Monitor) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		timer := time.NewTimer(m.cfg.Interval)
		defer timer.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-timer.C:
				m.Tick(m.ctx)
				timer.Reset(m.cfg.Interval)
			}
		}
	}()

	m.logger.Info("monitor started",
		zap.String("host", m.cfg.Host),
		zap.Duration("interval", m.cfg.Interval),
	)
}

// Stop signals the loop to stop and waits for an in-flight tick to finish.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Running reports whether the tick loop is active.
func (m *Monitor) Running() bool {
	return m.ctx != nil && m.ctx.Err() == nil
}

// Tick runs one probe, classifies it, renders the icon and presents the
// result. Probe and render failures become part of the reading; Tick never
// fails.
func (m *Monitor) Tick(ctx context.Context) Reading {
	result := m.prober.Probe(ctx, m.cfg.Host)
	if result.Kind == probe.KindError && ctx.Err() != nil {
		// Shutting down; leave the display as it is.
		return m.Last()
	}

	reading := NewReading(result, m.cfg.Thresholds)
	m.logResult(reading)

	icon, err := m.renderer.RenderPNG(reading.IconText, reading.Tier)
	if err != nil {
		m.logger.Warn("render icon failed, keeping previous icon", zap.Error(err))
	}

	m.mu.Lock()
	if err != nil {
		icon = m.last.Icon
	}
	reading.Icon = icon
	prev := m.last.Tier
	m.last = reading
	m.mu.Unlock()

	if prev != reading.Tier {
		m.logger.Info("latency tier changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", reading.Tier),
		)
	}

	if m.observer != nil {
		m.observer.Observe(result, reading.Tier)
	}
	m.presenter.Present(reading.Label, reading.Icon)
	return reading
}

func (m *Monitor) logResult(r Reading) {
	switch r.Result.Kind {
	case probe.KindOK:
		m.logger.Debug("probe ok",
			zap.String("host", m.cfg.Host),
			zap.Duration("rtt", r.Result.RTT),
			zap.Stringer("tier", r.Tier),
		)
	case probe.KindTimeout:
		m.logger.Debug("probe timed out", zap.String("host", m.cfg.Host))
	default:
		m.logger.Debug("probe failed", zap.String("host", m.cfg.Host), zap.Error(r.Result.Err))
		m.errLog.Do(func() {
			m.logger.Warn("probe failing",
				zap.String("host", m.cfg.Host),
				zap.String("kind", probe.ErrorKind(r.Result.Err)),
				zap.Error(r.Result.Err),
			)
		})
	}
}

// Show restores the main window (Hidden -> Visible).
func (m *Monitor) Show() {
	m.setState(Visible)
}

// Close hides the main window (Visible -> Hidden). The tick loop keeps
// running and the tray icon keeps updating.
func (m *Monitor) Close() {
	m.setState(Hidden)
}

func (m *Monitor) setState(s State) {
	m.mu.Lock()
	changed := m.state != s
	m.state = s
	m.mu.Unlock()

	if changed {
		m.logger.Debug("window state changed", zap.Stringer("state", s))
	}
	m.presenter.SetVisible(s == Visible)
}

// State returns the current window state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Last returns the most recent reading.
func (m *Monitor) Last() Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
