package util

import (
	"context"
	"sync"
	"time"
)

// Context keys.
type ctxKey string

const (
	ctxKeyStartTime  ctxKey = "start_time"
	ctxKeyRoute      ctxKey = "route"
	ctxKeyPathParams ctxKey = "path_params"
	ctxKeyRecorder   ctxKey = "route_recorder"
)

// ContextWithStartTime adds the request start time to the context.
func ContextWithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ctxKeyStartTime, t)
}

// StartTimeFromContext extracts the request start time from context.
func StartTimeFromContext(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ctxKeyStartTime).(time.Time); ok {
		return v
	}
	return time.Time{}
}

// ContextWithRoute adds the matched route pattern to the context.
func ContextWithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

// RouteFromContext extracts the matched route pattern from context.
func RouteFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRoute).(string); ok {
		return v
	}
	return ""
}

// ContextWithPathParams adds path parameters to the context.
func ContextWithPathParams(ctx context.Context, params map[string]string) context.Context {
	return context.WithValue(ctx, ctxKeyPathParams, params)
}

// PathParamsFromContext extracts path parameters from context.
func PathParamsFromContext(ctx context.Context) map[string]string {
	if v, ok := ctx.Value(ctxKeyPathParams).(map[string]string); ok {
		return v
	}
	return nil
}

// ElapsedTime returns the elapsed time since the start time in context.
func ElapsedTime(ctx context.Context) time.Duration {
	startTime := StartTimeFromContext(ctx)
	if startTime.IsZero() {
		return 0
	}
	return time.Since(startTime)
}

// RouteRecorder carries the matched route back out to middleware that
// runs around the dispatcher and therefore never sees its context.
type RouteRecorder struct {
	mu      sync.Mutex
	name    string
	pattern string
}

// Route returns the recorded route name and pattern.
func (r *RouteRecorder) Route() (name, pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name, r.pattern
}

// ContextWithRouteRecorder attaches an empty RouteRecorder to ctx.
func ContextWithRouteRecorder(ctx context.Context) (context.Context, *RouteRecorder) {
	rec := &RouteRecorder{}
	return context.WithValue(ctx, ctxKeyRecorder, rec), rec
}

// RecordRoute stores the matched route in the recorder on ctx, if any.
func RecordRoute(ctx context.Context, name, pattern string) {
	rec, ok := ctx.Value(ctxKeyRecorder).(*RouteRecorder)
	if !ok {
		return
	}
	rec.mu.Lock()
	rec.name, rec.pattern = name, pattern
	rec.mu.Unlock()
}
