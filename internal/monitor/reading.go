package monitor

import (
	"strconv"

	"github.com/HerbHall/pingtray/internal/probe"
	"github.com/HerbHall/pingtray/internal/severity"
)

// Icon texts for results without a round-trip time.
const (
	IconTextPending = "N/A"
	IconTextTimeout = "TO"
	IconTextError   = "ERR"

	LabelPending = "Ping N/A"
)

// Reading is everything the presenter needs to show one probe result.
type Reading struct {
	Result   probe.Result
	Tier     severity.Tier
	Label    string
	IconText string
	Icon     []byte
}

// NewReading derives the label, icon text and tier for a probe result.
// Icon is left empty; rendering is the caller's job.
func NewReading(r probe.Result, th severity.Thresholds) Reading {
	reading := Reading{Result: r, Tier: th.Classify(r)}

	switch r.Kind {
	case probe.KindOK:
		ms, _ := r.Millis()
		reading.IconText = strconv.Itoa(ms)
		reading.Label = "Ping: " + reading.IconText + " ms"
	case probe.KindTimeout:
		reading.IconText = IconTextTimeout
		reading.Label = "Ping: Timeout"
	default:
		msg := "unknown error"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		reading.IconText = IconTextError
		reading.Label = "Error: " + msg
	}
	return reading
}
