package probe

import (
	"context"
	"fmt"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"
)

// Compile-time interface guard.
var _ Prober = (*ICMPProber)(nil)

// ICMPProber sends a single ICMP echo request per probe.
type ICMPProber struct {
	timeout    time.Duration
	privileged bool
	logger     *zap.Logger
}

// NewICMPProber creates a prober that waits up to timeout for each reply.
// Privileged raw sockets are always used on Windows, where unprivileged
// ICMP is not available.
func NewICMPProber(timeout time.Duration, privileged bool, logger *zap.Logger) *ICMPProber {
	return &ICMPProber{
		timeout:    timeout,
		privileged: privileged || runtime.GOOS == "windows",
		logger:     logger,
	}
}

// Probe resolves host, sends one echo request and waits for the reply.
func (p *ICMPProber) Probe(ctx context.Context, host string) Result {
	if err := ctx.Err(); err != nil {
		return Failed(err)
	}

	pinger, err := probing.NewPinger(host)
	if err != nil {
		return Failed(classify(fmt.Errorf("resolve %s: %w", host, err)))
	}

	pinger.Count = 1
	pinger.Timeout = p.timeout
	pinger.SetPrivileged(p.privileged)

	// Run with context for cancellation support.
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		runErr = pinger.Run()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		pinger.Stop()
		<-done
		return Failed(ctx.Err())
	}

	if runErr != nil {
		p.logger.Debug("ping run error", zap.String("host", host), zap.Error(runErr))
		return Failed(classify(runErr))
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return Timeout()
	}
	return OK(stats.MinRtt)
}
