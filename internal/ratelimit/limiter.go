// Package ratelimit provides admission control for the gateway: a
// per-key token bucket and a fixed-window counter over a pluggable store.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	// Allow consumes one unit for key.
	Allow(ctx context.Context, key string) (*Result, error)

	// Reset clears the state held for key.
	Reset(ctx context.Context, key string) error

	// Close releases background resources.
	Close() error
}

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
	// RetryAfter is zero when Allowed is true.
	RetryAfter time.Duration
}

// NoopLimiter allows every request.
type NoopLimiter struct{}

// Allow implements Limiter.
func (NoopLimiter) Allow(context.Context, string) (*Result, error) {
	return &Result{Allowed: true}, nil
}

// Reset implements Limiter.
func (NoopLimiter) Reset(context.Context, string) error { return nil }

// Close implements Limiter.
func (NoopLimiter) Close() error { return nil }
