package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/ratelimit"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// RateLimitOption is a functional option for the rate limit middleware.
type RateLimitOption func(*rateLimitOptions)

type rateLimitOptions struct {
	keyFunc ratelimit.KeyFunc
	logger  observability.Logger
	metrics *observability.Metrics
	route   string
}

// WithKeyFunc sets how the rate limit key is derived from a request.
// The default is ratelimit.ClientIP.
func WithKeyFunc(fn ratelimit.KeyFunc) RateLimitOption {
	return func(o *rateLimitOptions) {
		o.keyFunc = fn
	}
}

// WithRateLimitLogger sets the logger for the rate limit middleware.
func WithRateLimitLogger(logger observability.Logger) RateLimitOption {
	return func(o *rateLimitOptions) {
		o.logger = logger
	}
}

// WithRateLimitMetrics records rejected requests under the given route label.
func WithRateLimitMetrics(m *observability.Metrics, route string) RateLimitOption {
	return func(o *rateLimitOptions) {
		o.metrics = m
		o.route = route
	}
}

// RateLimit returns a middleware that admits requests through limiter.
// Rejected requests get 429 with a Retry-After header. A limiter error
// lets the request through: an unreachable store must not take the
// gateway down with it.
func RateLimit(limiter ratelimit.Limiter, opts ...RateLimitOption) func(http.Handler) http.Handler {
	o := &rateLimitOptions{
		keyFunc: ratelimit.ClientIP,
		logger:  observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := o.keyFunc(r)

			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				o.logger.WithContext(r.Context()).Error("rate limit check failed",
					observability.String("key", key),
					observability.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			if res.Limit > 0 {
				w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(res.Limit))
				w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
			}

			if !res.Allowed {
				o.logger.WithContext(r.Context()).Warn("rate limit exceeded",
					observability.String("key", key),
					observability.String("path", r.URL.Path),
					observability.Duration("retry_after", res.RetryAfter),
				)
				if o.metrics != nil {
					o.metrics.RecordRateLimitHit(o.route)
				}

				w.Header().Set(HeaderRetryAfter, retryAfterSeconds(res.RetryAfter))
				util.WriteJSONError(w, http.StatusTooManyRequests, msgRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds renders d as whole seconds, rounded up, at least 1.
func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
