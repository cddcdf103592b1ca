// Package gateway serves HTTP traffic through the route table.
//
// A Dispatcher resolves each request against an atomically swappable
// router.Router, publishes the matched pattern and path parameters on
// the request context and invokes the route handler. Unknown methods
// are answered with 501 and an Allow header, unmatched paths with 404.
//
// BuildRouter compiles configured routes into handlers: a reverse proxy
// to a backend (optionally behind a circuit breaker and a per-route rate
// limiter) or a fixed direct response. A build either registers every
// route or fails as a whole, so Reload never publishes a partial table.
//
// Server owns the http.Server lifecycle.
package gateway
