package fetcher

import (
	"context"
	"sync"
	"time"
)

// MinIntervalLimiter serializes outbound requests across all jobs: callers
// block until at least interval has passed since the previous call. One
// instance is constructed and passed by reference to every fetcher that
// shares the quota.
type MinIntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	lastCall time.Time
}

func NewMinIntervalLimiter(interval time.Duration) *MinIntervalLimiter {
	return &MinIntervalLimiter{interval: interval}
}

// Wait blocks until the minimum interval has elapsed, then records the new
// last-call timestamp. Returns early with the context's error on cancel.
func (l *MinIntervalLimiter) Wait(ctx context.Context) error {
	if l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	next := l.lastCall.Add(l.interval)
	if next.Before(now) {
		next = now
	}
	l.lastCall = next
	l.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
