// Package middleware provides the HTTP middleware wrapped around the
// gateway dispatcher.
//
//   - RequestID: X-Request-ID propagation and generation
//   - Recovery: panic recovery with a 500 JSON response
//   - Logging: one structured access log line per request, including
//     the matched route
//   - RateLimit: admission control through a ratelimit.Limiter
//
// Chain composes them; the first middleware listed runs outermost:
//
//	h := middleware.Chain(
//	    middleware.RequestID(),
//	    middleware.Recovery(logger),
//	    middleware.Logging(logger),
//	)(dispatcher)
package middleware
