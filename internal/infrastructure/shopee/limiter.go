package shopee

import (
	"context"
	"sync"
	"time"
)

// RequestLimiter spaces remote calls by a fixed minimum interval. It is
// injected into the client so the platform's rate limit is enforced in
// one place and can be tuned or disabled independently of sync logic.
type RequestLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRequestLimiter creates a limiter with the given minimum spacing.
// A zero or negative interval disables the limiter.
func NewRequestLimiter(interval time.Duration) *RequestLimiter {
	return &RequestLimiter{interval: interval}
}

// Wait blocks until the interval since the previous call has elapsed, or
// the context is cancelled.
func (l *RequestLimiter) Wait(ctx context.Context) error {
	if l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	wait := l.interval - now.Sub(l.last)
	if wait < 0 {
		wait = 0
	}
	l.last = now.Add(wait)
	l.mu.Unlock()

	if wait == 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
