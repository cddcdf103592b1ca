package proxy

import (
	"errors"
	"fmt"
)

// Sentinel errors for proxy operations.
var (
	// ErrInvalidTargetURL indicates that the backend URL is invalid.
	ErrInvalidTargetURL = errors.New("invalid target URL")

	// ErrUpstreamTimeout indicates that the upstream request timed out.
	ErrUpstreamTimeout = errors.New("upstream request timed out")

	// ErrUpstreamUnavailable indicates that the upstream could not be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ProxyError represents a proxy-related error with details.
type ProxyError struct {
	Op      string // Operation that failed
	Backend string // Backend name if applicable
	Target  string // Target URL if applicable
	Message string // Human-readable message
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *ProxyError) Error() string {
	msg := fmt.Sprintf("proxy error [%s]", e.Op)
	if e.Backend != "" {
		msg += " backend=" + e.Backend
	}
	if e.Target != "" {
		msg += " target=" + e.Target
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ProxyError) Unwrap() error {
	return e.Cause
}

// NewInvalidTargetError creates an error for an unusable backend URL.
func NewInvalidTargetError(backend, target string, cause error) *ProxyError {
	if cause == nil {
		cause = ErrInvalidTargetURL
	} else {
		cause = fmt.Errorf("%w: %w", ErrInvalidTargetURL, cause)
	}
	return &ProxyError{
		Op:      "parse_target",
		Backend: backend,
		Target:  target,
		Message: "invalid target URL",
		Cause:   cause,
	}
}

// NewUpstreamError classifies a transport failure as a timeout or an
// unavailable upstream.
func NewUpstreamError(backend, target string, cause error, timedOut bool) *ProxyError {
	sentinel := ErrUpstreamUnavailable
	msg := "upstream unavailable"
	if timedOut {
		sentinel = ErrUpstreamTimeout
		msg = "upstream request timed out"
	}
	return &ProxyError{
		Op:      "forward",
		Backend: backend,
		Target:  target,
		Message: msg,
		Cause:   fmt.Errorf("%w: %w", sentinel, cause),
	}
}

// IsProxyError checks if an error is a ProxyError.
func IsProxyError(err error) bool {
	var proxyErr *ProxyError
	return errors.As(err, &proxyErr)
}
