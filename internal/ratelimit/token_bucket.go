package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// Token bucket housekeeping defaults.
const (
	DefaultClientTTL   = 10 * time.Minute
	MinCleanupInterval = 10 * time.Second
	MaxCleanupInterval = time.Minute
)

type bucketEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// TokenBucketLimiter keeps one golang.org/x/time/rate limiter per key
// and evicts keys idle for longer than the client TTL.
type TokenBucketLimiter struct {
	limit     rate.Limit
	burst     int
	clientTTL time.Duration
	logger    observability.Logger

	mu      sync.Mutex
	buckets map[string]*bucketEntry

	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// TokenBucketOption is a functional option for TokenBucketLimiter.
type TokenBucketOption func(*TokenBucketLimiter)

// WithClientTTL sets how long an idle key is retained.
func WithClientTTL(ttl time.Duration) TokenBucketOption {
	return func(l *TokenBucketLimiter) {
		l.clientTTL = ttl
	}
}

// WithTokenBucketLogger sets the logger.
func WithTokenBucketLogger(logger observability.Logger) TokenBucketOption {
	return func(l *TokenBucketLimiter) {
		l.logger = logger
	}
}

// NewTokenBucketLimiter allows requests per window with the given burst
// and starts the idle-key sweeper. Call Close to stop it.
func NewTokenBucketLimiter(requests int, window time.Duration, burst int, opts ...TokenBucketOption) *TokenBucketLimiter {
	if burst <= 0 {
		burst = requests
	}

	l := &TokenBucketLimiter{
		limit:     rate.Limit(float64(requests) / window.Seconds()),
		burst:     burst,
		clientTTL: DefaultClientTTL,
		logger:    observability.NopLogger(),
		buckets:   make(map[string]*bucketEntry),
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	go l.cleanupLoop(cleanupInterval(l.clientTTL))

	return l
}

func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval > MaxCleanupInterval {
		interval = MaxCleanupInterval
	}
	if interval < MinCleanupInterval {
		interval = MinCleanupInterval
	}
	return interval
}

// Allow implements Limiter.
func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (*Result, error) {
	now := l.now()

	l.mu.Lock()
	entry, ok := l.buckets[key]
	if !ok {
		entry = &bucketEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	r := limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	allowed := r.OK() && delay == 0
	if !allowed {
		r.CancelAt(now)
	}

	tokens := limiter.TokensAt(now)
	res := &Result{
		Allowed:    allowed,
		Limit:      l.burst,
		Remaining:  int(math.Max(0, math.Floor(tokens))),
		ResetAfter: l.refillTime(float64(l.burst) - tokens),
	}
	if !allowed {
		res.RetryAfter = l.refillTime(1 - tokens)
	}
	return res, nil
}

// refillTime is how long the bucket needs to regain n tokens.
func (l *TokenBucketLimiter) refillTime(n float64) time.Duration {
	if n <= 0 || l.limit <= 0 {
		return 0
	}
	return time.Duration(n / float64(l.limit) * float64(time.Second))
}

// Reset implements Limiter.
func (l *TokenBucketLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
	return nil
}

// Len returns the number of tracked keys.
func (l *TokenBucketLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Cleanup evicts keys idle for longer than maxAge.
func (l *TokenBucketLimiter) Cleanup(maxAge time.Duration) {
	now := l.now()

	l.mu.Lock()
	removed := 0
	for key, entry := range l.buckets {
		if now.Sub(entry.lastAccess) > maxAge {
			delete(l.buckets, key)
			removed++
		}
	}
	remaining := len(l.buckets)
	l.mu.Unlock()

	if removed > 0 {
		l.logger.Debug("cleaned up idle rate limiter entries",
			observability.Int("removed", removed),
			observability.Int("remaining", remaining),
		)
	}
}

func (l *TokenBucketLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup(l.clientTTL)
		case <-l.stopCh:
			return
		}
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (l *TokenBucketLimiter) Close() error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
	return nil
}
