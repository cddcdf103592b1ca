package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/router"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

func decodeError(t *testing.T, body io.Reader) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func sumMetric(t *testing.T, g prometheus.Gatherer, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := g.Gather()
	require.NoError(t, err)

	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			got := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			switch {
			case m.GetCounter() != nil:
				sum += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				sum += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				sum += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return sum
}

// echoRouter builds a dispatcher whose handlers report the pattern and
// parameters they were invoked with.
func echoDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()

	d := NewDispatcher(opts...)
	rt := router.New[http.Handler]()
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pattern": PatternFromContext(r.Context()),
			"params":  ParamsFromContext(r.Context()),
		})
	})
	for _, p := range []string{"/users/{id}", "/users/me", "/files/{*path}"} {
		require.NoError(t, rt.AddRoute("GET", p, echo))
	}
	d.router.Store(rt)
	return d
}

func TestDispatcher_Match(t *testing.T) {
	t.Parallel()

	d := echoDispatcher(t)

	tests := []struct {
		path        string
		wantPattern string
		wantParams  map[string]any
	}{
		{path: "/users/me", wantPattern: "/users/me", wantParams: map[string]any{}},
		{path: "/users/42", wantPattern: "/users/{id}", wantParams: map[string]any{"id": "42"}},
		{path: "/files/a/b/c.txt", wantPattern: "/files/{*path}", wantParams: map[string]any{"path": "a/b/c.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Pattern string         `json:"pattern"`
				Params  map[string]any `json:"params"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantPattern, body.Pattern)
			assert.Equal(t, tt.wantParams, body.Params)
		})
	}
}

func TestDispatcher_NotFound(t *testing.T) {
	t.Parallel()

	d := echoDispatcher(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nowhere"},
		{http.MethodPost, "/users/42"},
	} {
		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method+" "+tc.path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, http.StatusText(http.StatusNotFound), decodeError(t, rec.Body)["error"])
	}
}

func TestDispatcher_UnsupportedMethod(t *testing.T) {
	t.Parallel()

	d := echoDispatcher(t)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest("TRACE", "/users/42", nil))

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS", rec.Header().Get("Allow"))
	assert.Contains(t, decodeError(t, rec.Body)["message"], "TRACE")
}

func TestDispatcher_RecordsMetrics(t *testing.T) {
	t.Parallel()

	m := observability.NewMetrics("dtest")
	d := echoDispatcher(t, WithMetrics(m))

	d.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/1", nil))
	d.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/2", nil))
	d.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	d.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("BREW", "/users/1", nil))

	reg := m.Registry()
	assert.InDelta(t, 2, sumMetric(t, reg, "dtest_requests_total",
		map[string]string{"method": "GET", "route": "/users/{id}", "status": "200"}), 0)
	assert.InDelta(t, 1, sumMetric(t, reg, "dtest_requests_total",
		map[string]string{"method": "GET", "route": observability.UnmatchedRoute, "status": "404"}), 0)
	assert.InDelta(t, 1, sumMetric(t, reg, "dtest_requests_total",
		map[string]string{"method": methodOther, "route": observability.UnmatchedRoute, "status": "501"}), 0)
	assert.InDelta(t, 0, sumMetric(t, reg, "dtest_active_requests", nil), 0)
}

func TestDispatcher_RecordsRouteForAccessLog(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	require.NoError(t, d.Reload(&config.GatewayConfig{Routes: []config.Route{{
		Name:           "health",
		Methods:        []string{"GET"},
		Path:           "/health",
		DirectResponse: &config.DirectResponseConfig{Status: 200, Body: "ok"},
	}}}))

	ctx, rec := util.ContextWithRouteRecorder(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(ctx)
	d.ServeHTTP(httptest.NewRecorder(), req)

	name, pattern := rec.Route()
	assert.Equal(t, "health", name)
	assert.Equal(t, "/health", pattern)
}

func TestDispatcher_AnnotatesSpan(t *testing.T) {
	t.Parallel()

	spans := tracetest.NewSpanRecorder()
	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:    "dispatcher-test",
		Enabled:        true,
		SamplingRate:   1,
		SpanProcessors: []sdktrace.SpanProcessor{spans},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	d := echoDispatcher(t, WithTracer(tracer))
	handler := observability.TracingMiddleware(tracer)(d)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/7", nil))

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /users/{id}", ended[0].Name())

	attrs := map[string]any{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "/users/{id}", attrs["http.route"])
	assert.EqualValues(t, 1, attrs["route.params.count"])
}

func TestDispatcher_Reload(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	direct := func(name, path, body string) config.Route {
		return config.Route{
			Name:           name,
			Methods:        []string{"GET"},
			Path:           path,
			DirectResponse: &config.DirectResponseConfig{Status: http.StatusOK, Body: body},
		}
	}

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusNotFound, get("/v1").Code)

	require.NoError(t, d.Reload(&config.GatewayConfig{Routes: []config.Route{direct("v1", "/v1", "one")}}))
	assert.Equal(t, "one", get("/v1").Body.String())

	// conflicting param names: the whole build fails and v1 stays in service
	err := d.Reload(&config.GatewayConfig{Routes: []config.Route{
		direct("v2", "/v2", "two"),
		direct("a", "/items/{id}", "a"),
		direct("b", "/items/{name}/x", "b"),
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrRouteConflict)
	assert.Equal(t, "one", get("/v1").Body.String())
	assert.Equal(t, http.StatusNotFound, get("/v2").Code)
	assert.Equal(t, 1, d.Router().Len())
}

func TestDispatcher_ConcurrentReload(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	cfg := &config.GatewayConfig{Routes: []config.Route{{
		Name:           "ping",
		Path:           "/ping",
		DirectResponse: &config.DirectResponseConfig{Status: http.StatusOK, Body: "pong"},
	}}}
	require.NoError(t, d.Reload(cfg))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				assert.NoError(t, d.Reload(cfg))
			}
		}
	}()

	for range 200 {
		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pong", strings.TrimSpace(rec.Body.String()))
	}
	close(stop)
	wg.Wait()
}

func TestDispatcher_ReloadResetsRouteGauge(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec, err := router.NewPrometheusRecorder(reg, "gauge")
	require.NoError(t, err)

	d := NewDispatcher(WithMatchRecorder(rec))
	require.NoError(t, d.Reload(&config.GatewayConfig{Routes: []config.Route{{
		Name:           "one",
		Methods:        []string{"GET", "POST"},
		Path:           "/one",
		DirectResponse: &config.DirectResponseConfig{Status: http.StatusOK},
	}}}))
	assert.InDelta(t, 2, sumMetric(t, reg, "gauge_router_routes_registered", nil), 0)

	err = d.Reload(&config.GatewayConfig{Routes: []config.Route{
		{Name: "a", Methods: []string{"GET"}, Path: "/a", DirectResponse: &config.DirectResponseConfig{}},
		{Name: "b", Methods: []string{"GET"}, Path: "/b/{x", DirectResponse: &config.DirectResponseConfig{}},
	}})
	require.Error(t, err)
	assert.InDelta(t, 2, sumMetric(t, reg, "gauge_router_routes_registered", nil), 0)
}
