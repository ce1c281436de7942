// Package severity buckets probe results into latency tiers.
package severity

import (
	"fmt"
	"image/color"

	"github.com/HerbHall/pingtray/internal/probe"
)

// Tier is a discrete latency severity.
type Tier int

const (
	Unknown Tier = iota
	Good
	Warning
	Bad
)

// Tier colors, matching the named colors the tray icon has always used.
var (
	Green  = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Gray   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// String returns a lowercase name for a tier.
func (t Tier) String() string {
	switch t {
	case Good:
		return "good"
	case Warning:
		return "warning"
	case Bad:
		return "bad"
	default:
		return "unknown"
	}
}

// Color returns the render color for a tier.
func (t Tier) Color() color.RGBA {
	switch t {
	case Good:
		return Green
	case Warning:
		return Yellow
	case Bad:
		return Red
	default:
		return Gray
	}
}

// Thresholds holds the inclusive upper bounds, in milliseconds, of the Good
// and Warning tiers. Anything above Warning is Bad.
type Thresholds struct {
	Good    int `mapstructure:"good_ms"`
	Warning int `mapstructure:"warning_ms"`
}

// DefaultThresholds returns the compiled-in 80/110 ms thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Good: 80, Warning: 110}
}

// Validate checks that the thresholds form a non-empty Warning band.
func (th Thresholds) Validate() error {
	if th.Good < 0 {
		return fmt.Errorf("good threshold %d must not be negative", th.Good)
	}
	if th.Warning <= th.Good {
		return fmt.Errorf("warning threshold %d must be greater than good threshold %d", th.Warning, th.Good)
	}
	return nil
}

// ClassifyMillis maps a round-trip time in whole milliseconds to a tier.
func (th Thresholds) ClassifyMillis(ms int) Tier {
	switch {
	case ms < 0:
		return Unknown
	case ms <= th.Good:
		return Good
	case ms <= th.Warning:
		return Warning
	default:
		return Bad
	}
}

// Classify maps a probe result to a tier. Timeouts and errors are Unknown.
func (th Thresholds) Classify(r probe.Result) Tier {
	ms, ok := r.Millis()
	if !ok {
		return Unknown
	}
	return th.ClassifyMillis(ms)
}

// Classify maps a probe result to a tier using the default thresholds.
func Classify(r probe.Result) Tier {
	return DefaultThresholds().Classify(r)
}
