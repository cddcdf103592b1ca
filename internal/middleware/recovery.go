package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// Recovery returns a middleware that recovers from panics in downstream
// handlers and answers 500 with a JSON body.
//
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func Recovery(logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := util.NewStatusCapturingResponseWriter(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
					panic(rec)
				}

				logger.WithContext(r.Context()).Error("panic recovered",
					observability.String("path", r.URL.Path),
					observability.String("method", r.Method),
					observability.Any("error", rec),
					observability.String("stack", string(debug.Stack())),
				)

				// Headers already on the wire cannot be replaced.
				if rw.HeaderWritten {
					return
				}
				util.WriteJSONError(rw, http.StatusInternalServerError, msgInternalError)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
