// Package probe measures round-trip latency to a single host.
package probe

import (
	"context"
	"errors"
	"net"
	"os"
	"time"
)

// Kind is the outcome category of a single probe.
type Kind int

const (
	KindOK Kind = iota
	KindTimeout
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindTimeout:
		return "timeout"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Sentinel errors used to tell probe failures apart. They are matched with
// errors.Is against the error carried in a Result.
var (
	ErrPermission = errors.New("icmp not permitted")
	ErrResolve    = errors.New("host not resolvable")
)

// Result is the outcome of one probe. RTT is only meaningful for KindOK and
// Err is only set for KindError.
type Result struct {
	Kind      Kind
	RTT       time.Duration
	Err       error
	CheckedAt time.Time
}

// OK returns a successful result with the given round-trip time.
func OK(rtt time.Duration) Result {
	if rtt < 0 {
		rtt = 0
	}
	return Result{Kind: KindOK, RTT: rtt, CheckedAt: time.Now().UTC()}
}

// Timeout returns a result for a probe that got no reply in time.
func Timeout() Result {
	return Result{Kind: KindTimeout, CheckedAt: time.Now().UTC()}
}

// Failed returns a result for a probe whose mechanism failed.
func Failed(err error) Result {
	return Result{Kind: KindError, Err: err, CheckedAt: time.Now().UTC()}
}

// Millis returns the round-trip time truncated to whole milliseconds.
// The second return is false when the result carries no round-trip time.
func (r Result) Millis() (int, bool) {
	if r.Kind != KindOK {
		return 0, false
	}
	return int(r.RTT / time.Millisecond), true
}

// Prober performs a single latency probe against host. Implementations block
// until the probe finishes or its own deadline passes.
type Prober interface {
	Probe(ctx context.Context, host string) Result
}

// kindError tags an underlying error with one of the sentinel kinds while
// keeping the underlying message intact.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string   { return e.err.Error() }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }

// classify tags err with ErrPermission or ErrResolve when it matches one of
// them. Other errors are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrPermission), errors.Is(err, ErrResolve):
		return err
	case errors.Is(err, os.ErrPermission):
		return &kindError{kind: ErrPermission, err: err}
	case isResolveErr(err):
		return &kindError{kind: ErrResolve, err: err}
	default:
		return err
	}
}

// ErrorKind returns a short label for err: "permission", "resolve",
// "canceled", or "other".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermission), errors.Is(err, os.ErrPermission):
		return "permission"
	case errors.Is(err, ErrResolve), isResolveErr(err):
		return "resolve"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

func isResolveErr(err error) bool {
	var dnsErr *net.DNSError
	var addrErr *net.AddrError
	return errors.As(err, &dnsErr) || errors.As(err, &addrErr)
}
