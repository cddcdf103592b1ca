package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Health(t *testing.T) {
	t.Parallel()

	c := NewChecker("1.2.3")
	rec := httptest.NewRecorder()
	c.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestChecker_Readiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checks     map[string]Check
		wantStatus Status
		wantCode   int
	}{
		{name: "no checks", wantStatus: StatusHealthy, wantCode: http.StatusOK},
		{
			name:       "degraded stays ready",
			checks:     map[string]Check{"a": {Status: StatusHealthy}, "b": {Status: StatusDegraded}},
			wantStatus: StatusDegraded,
			wantCode:   http.StatusOK,
		},
		{
			name:       "unhealthy wins",
			checks:     map[string]Check{"a": {Status: StatusDegraded}, "b": {Status: StatusUnhealthy}},
			wantStatus: StatusUnhealthy,
			wantCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewChecker("test")
			for name, check := range tt.checks {
				check := check
				c.RegisterCheck(name, func() Check { return check })
			}

			rec := httptest.NewRecorder()
			c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp ReadinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checks))
		})
	}
}

func TestChecker_Draining(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")
	c.RegisterCheck("ok", func() Check { return Check{Status: StatusHealthy} })

	c.SetDraining(true)
	resp := c.Readiness()
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Contains(t, resp.Checks, "draining")

	c.SetDraining(false)
	assert.Equal(t, StatusHealthy, c.Readiness().Status)
}

func TestChecker_Liveness(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewChecker("test").LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPingCheck(t *testing.T) {
	t.Parallel()

	ok := PingCheck(func(context.Context) error { return nil }, time.Second, true)
	assert.Equal(t, StatusHealthy, ok().Status)

	failing := func(context.Context) error { return assert.AnError }
	assert.Equal(t, StatusUnhealthy, PingCheck(failing, time.Second, true)().Status)

	soft := PingCheck(failing, time.Second, false)()
	assert.Equal(t, StatusDegraded, soft.Status)
	assert.Equal(t, assert.AnError.Error(), soft.Message)

	var deadline bool
	PingCheck(func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	}, time.Second, false)()
	assert.True(t, deadline)
}
