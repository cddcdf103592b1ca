package router

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[Outcome]int
	routes   int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{outcomes: make(map[Outcome]int)}
}

func (c *countingRecorder) RecordMatch(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[o]++
}

func (c *countingRecorder) SetRoutes(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = n
}

func TestNew(t *testing.T) {
	t.Parallel()

	r := New[string]()
	require.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Routes())
}

func TestRouter_AddRouteAndMatch(t *testing.T) {
	t.Parallel()

	r := New[string]()
	require.NoError(t, r.AddRoute("get", "/users/{id}", "user"))

	match, err := r.Match("GET", "/users/42")
	require.NoError(t, err)
	assert.Equal(t, "user", match.Handler)
	assert.Equal(t, "/users/{id}", match.Pattern)
	assert.Equal(t, map[string]string{"id": "42"}, match.Params)
}

func TestRouter_Match_UnsupportedMethod(t *testing.T) {
	t.Parallel()

	r := New[string]()
	require.NoError(t, r.AddRoute("GET", "/", "root"))

	_, err := r.Match("TRACE", "/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrUnsupportedMethod))
	assert.False(t, errors.Is(err, util.ErrNotFound))
}

func TestRouter_Match_NotFound(t *testing.T) {
	t.Parallel()

	r := New[string]()
	require.NoError(t, r.AddRoute("GET", "/", "root"))

	_, err := r.Match("POST", "/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrNotFound))
	assert.False(t, errors.Is(err, util.ErrUnsupportedMethod))

	var nf *util.RouteNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "POST", nf.Method)
	assert.Equal(t, "/", nf.Path)
}

func TestRouter_AddRoute_Errors(t *testing.T) {
	t.Parallel()

	r := New[string]()
	require.NoError(t, r.AddRoute("GET", "/a/{id}", "h"))

	tests := []struct {
		name    string
		method  string
		pattern string
		target  error
	}{
		{"unsupported method", "TRACE", "/x", util.ErrUnsupportedMethod},
		{"malformed", "GET", "/x/{", util.ErrMalformedPattern},
		{"non-terminal wildcard", "GET", "/x/{*rest}/y", util.ErrMalformedPattern},
		{"conflict", "GET", "/a/{name}/b", util.ErrRouteConflict},
	}

	for _, tt := range tests {
		err := r.AddRoute(tt.method, tt.pattern, "h")
		require.Error(t, err, tt.name)
		assert.True(t, errors.Is(err, tt.target), tt.name)
		assert.True(t, util.IsRegistrationError(err), tt.name)
	}

	assert.Equal(t, 1, r.Len())
}

func TestRouter_Stats(t *testing.T) {
	t.Parallel()

	r := New[string]()
	require.NoError(t, r.AddRoute("GET", "/a", "h"))
	require.NoError(t, r.AddRoute("POST", "/a", "h"))
	require.NoError(t, r.AddRoute("GET", "/b/{id}", "h"))
	require.NoError(t, r.AddRoute("GET", "/b/{id}/", "h2"))

	stats := r.Stats()
	assert.Equal(t, 3, stats.TotalRoutes)
	assert.Equal(t, map[string]int{"GET": 2, "POST": 1}, stats.RoutesByMethod)
	assert.Equal(t, SupportedMethods(), stats.SupportedMethods)
	assert.Equal(t, SupportedMethods(), r.SupportedMethods())
}

func TestRouter_Recorder(t *testing.T) {
	t.Parallel()

	rec := newCountingRecorder()
	r := New[string](WithMatchRecorder(rec))

	require.NoError(t, r.AddRoute("GET", "/a", "h"))
	require.NoError(t, r.AddRoute("GET", "/b", "h"))

	_, _ = r.Match("GET", "/a")
	_, _ = r.Match("GET", "/missing")
	_, _ = r.Match("BREW", "/a")

	assert.Equal(t, 2, rec.routes)
	assert.Equal(t, 1, rec.outcomes[OutcomeMatched])
	assert.Equal(t, 1, rec.outcomes[OutcomeNotFound])
	assert.Equal(t, 1, rec.outcomes[OutcomeUnsupportedMethod])
}

func TestRouter_Logging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := observability.NewLoggerFromZap(zap.New(core))

	r := New[string](WithLogger(logger))
	require.NoError(t, r.AddRoute("GET", "/a", "h"))
	require.Error(t, r.AddRoute("GET", "/a/{*x}/b", "h"))

	registered := logs.FilterMessage("route registered").All()
	require.Len(t, registered, 1)
	assert.Equal(t, zapcore.DebugLevel, registered[0].Level)
	assert.Equal(t, "/a", registered[0].ContextMap()["pattern"])

	rejected := logs.FilterMessage("route rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, zapcore.WarnLevel, rejected[0].Level)
}
