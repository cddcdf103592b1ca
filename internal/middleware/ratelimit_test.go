package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/ratelimit"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*ratelimit.Result, error) {
	return nil, assert.AnError
}
func (failingLimiter) Reset(context.Context, string) error { return nil }
func (failingLimiter) Close() error                        { return nil }

func counterValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()

	families, err := g.Gather()
	require.NoError(t, err)

	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			sum += metric.GetCounter().GetValue()
		}
	}
	return sum
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewTokenBucketLimiter(2, time.Minute, 2)
	t.Cleanup(func() { _ = limiter.Close() })

	m := observability.NewMetrics("test")
	handler := RateLimit(limiter, WithRateLimitMetrics(m, "global"))(okHandler())

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001").Code)

	rec := do("10.0.0.1:1002")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(HeaderRetryAfter))
	assert.Equal(t, "2", rec.Header().Get(HeaderRateLimitLimit))
	assert.Equal(t, "0", rec.Header().Get(HeaderRateLimitRemaining))

	// other clients have their own budget
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000").Code)

	assert.InDelta(t, 1, counterValue(t, m.Registry(), "test_rate_limit_hits_total"), 0)
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewTokenBucketLimiter(1, time.Minute, 1)
	t.Cleanup(func() { _ = limiter.Close() })

	handler := RateLimit(limiter, WithKeyFunc(func(*http.Request) string { return "shared" }))(okHandler())

	req1 := httptest.NewRequest(http.MethodGet, "/", nil)
	req1.RemoteAddr = "10.0.0.1:1"
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.RemoteAddr = "10.0.0.2:1"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req1)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimit_LimiterErrorFailsOpen(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RateLimit(failingLimiter{})(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRetryAfterSeconds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1", retryAfterSeconds(0))
	assert.Equal(t, "1", retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, "3", retryAfterSeconds(2100*time.Millisecond))
}
