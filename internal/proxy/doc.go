// Package proxy forwards matched requests to a backend service.
//
// A Backend is an http.Handler around net/http/httputil.ReverseProxy.
// It can rewrite the outbound path from a template whose {name} and
// {*name} placeholders are filled from the path parameters of the
// matched route, bounds each request with a timeout and propagates the
// W3C trace context to the backend.
//
//	b, err := proxy.NewBackend("users", "http://users.internal:8080",
//	    proxy.WithRewrite("/v2/users/{id}"),
//	    proxy.WithTimeout(5*time.Second),
//	    proxy.WithProxyLogger(logger),
//	)
package proxy
