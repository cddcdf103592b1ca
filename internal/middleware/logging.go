package middleware

import (
	"net/http"
	"time"

	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/ratelimit"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// Logging returns a middleware that writes one access log line per
// request. The matched route is reported by the dispatcher through a
// util.RouteRecorder placed on the request context here.
func Logging(logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := util.ContextWithStartTime(r.Context(), start)
			ctx, routeRec := util.ContextWithRouteRecorder(ctx)
			r = r.WithContext(ctx)

			rw := util.NewStatusCapturingResponseWriter(w)
			next.ServeHTTP(rw, r)

			name, pattern := routeRec.Route()

			//nolint:contextcheck // request context carries the correlation ids
			logger.WithContext(r.Context()).Info("http request",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.String("query", r.URL.RawQuery),
				observability.String("route", name),
				observability.String("pattern", pattern),
				observability.Int("status", rw.StatusCode),
				observability.Int("size", rw.BytesWritten),
				observability.Duration("duration", time.Since(start)),
				observability.String("client_ip", ratelimit.ClientIP(r)),
				observability.String("user_agent", r.UserAgent()),
			)
		})
	}
}
