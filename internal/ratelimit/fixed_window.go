package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/ratelimit/store"
)

// FixedWindowLimiter counts requests per key in aligned windows of a
// fixed length. Counters live in a store.Store, so a Redis store shares
// limits across replicas.
type FixedWindowLimiter struct {
	store  store.Store
	limit  int
	window time.Duration
	logger observability.Logger
	now    func() time.Time
}

// NewFixedWindowLimiter creates a fixed window limiter.
func NewFixedWindowLimiter(s store.Store, limit int, window time.Duration, logger observability.Logger) *FixedWindowLimiter {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &FixedWindowLimiter{
		store:  s,
		limit:  limit,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

func (l *FixedWindowLimiter) windowStart(t time.Time) time.Time {
	n := l.window.Nanoseconds()
	return time.Unix(0, (t.UnixNano()/n)*n)
}

func windowKey(key string, start time.Time) string {
	return fmt.Sprintf("%s:fw:%d", key, start.UnixNano())
}

// Allow implements Limiter. Rejected requests still increment the
// counter, so a client that keeps hammering stays rejected until the
// window rolls over.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := l.now()
	start := l.windowStart(now)

	// counter outlives the window slightly to tolerate clock skew between replicas
	count, err := l.store.IncrementWithExpiry(ctx, windowKey(key, start), 1, l.window+time.Second)
	if err != nil {
		return nil, fmt.Errorf("fixed window increment: %w", err)
	}

	resetAfter := start.Add(l.window).Sub(now)
	if resetAfter < 0 {
		resetAfter = 0
	}

	allowed := count <= int64(l.limit)
	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	res := &Result{
		Allowed:    allowed,
		Limit:      l.limit,
		Remaining:  remaining,
		ResetAfter: resetAfter,
	}
	if !allowed {
		res.RetryAfter = resetAfter
	}
	return res, nil
}

// Reset implements Limiter by deleting the current window's counter.
func (l *FixedWindowLimiter) Reset(ctx context.Context, key string) error {
	return l.store.Delete(ctx, windowKey(key, l.windowStart(l.now())))
}

// Close closes the underlying store.
func (l *FixedWindowLimiter) Close() error {
	return l.store.Close()
}

// Ping probes the store when it is remote; local stores always answer.
func (l *FixedWindowLimiter) Ping(ctx context.Context) error {
	if p, ok := l.store.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
