package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc derives a rate limit key from a request.
type KeyFunc func(r *http.Request) string

// ClientIP returns the originating client address: the first
// X-Forwarded-For entry, then X-Real-IP, then the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// PerRouteKeyFunc prefixes the base key with a route name.
func PerRouteKeyFunc(route string, base KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		return route + ":" + base(r)
	}
}
