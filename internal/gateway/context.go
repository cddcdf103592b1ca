package gateway

import (
	"context"

	"github.com/vyrodovalexey/avaroute/internal/util"
)

// ParamsFromContext returns the path parameters bound by the matched
// route. The map is never nil for a dispatched request.
func ParamsFromContext(ctx context.Context) map[string]string {
	return util.PathParamsFromContext(ctx)
}

// PatternFromContext returns the pattern of the matched route.
func PatternFromContext(ctx context.Context) string {
	return util.RouteFromContext(ctx)
}
