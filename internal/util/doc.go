// Package util provides shared error types and small helpers for the
// route-matching gateway.
//
// # Error Conventions
//
// Every package follows the same error pattern:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., MalformedPatternError). Each type
//     implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
//
// # Context Helpers
//
// Request-scoped routing data travels on the context:
//
//	ctx = util.ContextWithRoute(ctx, "/api/users/{id}")
//	ctx = util.ContextWithPathParams(ctx, map[string]string{"id": "42"})
//	id := util.PathParamsFromContext(ctx)["id"]
//
// # HTTP Utilities
//
// Response writer wrapper for status code capture:
//
//	w := util.NewStatusCapturingResponseWriter(responseWriter)
//	handler.ServeHTTP(w, r)
//	statusCode := w.StatusCode
package util
