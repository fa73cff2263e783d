package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// CancelFuncs releases the contexts created by SetupLifecycle.
type CancelFuncs struct {
	CancelTimeout context.CancelFunc
	StopSignals   context.CancelFunc
}

// Cleanup stops signal delivery, then cancels the timeout.
func (c *CancelFuncs) Cleanup() {
	if c.StopSignals != nil {
		c.StopSignals()
	}
	if c.CancelTimeout != nil {
		c.CancelTimeout()
	}
}

// SetupLifecycle derives a context that ends after timeout or on SIGINT or
// SIGTERM, whichever comes first. A non-positive timeout disables the
// deadline.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *CancelFuncs) {
	c := &CancelFuncs{}
	if timeout > 0 {
		ctx, c.CancelTimeout = context.WithTimeout(ctx, timeout)
	}
	ctx, c.StopSignals = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, c
}
