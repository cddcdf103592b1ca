package util

import (
	"errors"
	"fmt"
	"time"
)

// Common sentinel errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedMethod = errors.New("unsupported method")
	ErrMalformedPattern  = errors.New("malformed pattern")
	ErrRouteConflict     = errors.New("route conflict")
	ErrCircuitOpen       = errors.New("circuit breaker open")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrBackendUnavail    = errors.New("backend unavailable")
	ErrConfigInvalid     = errors.New("invalid configuration")
)

// UnsupportedMethodError is returned when a method is outside the
// supported HTTP method set. It is raised identically at registration
// and at resolution.
type UnsupportedMethodError struct {
	Method    string
	Supported []string
}

// Error implements the error interface.
func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported HTTP method %q (supported: %v)", e.Method, e.Supported)
}

// Is checks if the error matches the target.
func (e *UnsupportedMethodError) Is(target error) bool {
	if target == ErrUnsupportedMethod {
		return true
	}
	_, ok := target.(*UnsupportedMethodError)
	return ok
}

// NewUnsupportedMethodError creates a new UnsupportedMethodError.
func NewUnsupportedMethodError(method string, supported []string) *UnsupportedMethodError {
	return &UnsupportedMethodError{Method: method, Supported: supported}
}

// MalformedPatternError represents a route pattern that cannot be
// registered.
type MalformedPatternError struct {
	Pattern string
	Segment string
	Reason  string
}

// Error implements the error interface.
func (e *MalformedPatternError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("malformed pattern %q at segment %q: %s", e.Pattern, e.Segment, e.Reason)
	}
	return fmt.Sprintf("malformed pattern %q: %s", e.Pattern, e.Reason)
}

// Is checks if the error matches the target.
func (e *MalformedPatternError) Is(target error) bool {
	if target == ErrMalformedPattern {
		return true
	}
	_, ok := target.(*MalformedPatternError)
	return ok
}

// NewMalformedPatternError creates a new MalformedPatternError.
func NewMalformedPatternError(pattern, segment, reason string) *MalformedPatternError {
	return &MalformedPatternError{Pattern: pattern, Segment: segment, Reason: reason}
}

// RouteConflictError is returned when a pattern binds a different
// parameter or wildcard name at a trie position already owned by
// another name.
type RouteConflictError struct {
	Pattern  string
	Existing string
	Name     string
}

// Error implements the error interface.
func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("pattern %q binds %q where %q is already registered", e.Pattern, e.Name, e.Existing)
}

// Is checks if the error matches the target.
func (e *RouteConflictError) Is(target error) bool {
	if target == ErrRouteConflict {
		return true
	}
	_, ok := target.(*RouteConflictError)
	return ok
}

// NewRouteConflictError creates a new RouteConflictError.
func NewRouteConflictError(pattern, existing, name string) *RouteConflictError {
	return &RouteConflictError{Pattern: pattern, Existing: existing, Name: name}
}

// RouteNotFoundError represents a route not found error.
type RouteNotFoundError struct {
	Path   string
	Method string
}

// Error implements the error interface.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route found for %s %s", e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *RouteNotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*RouteNotFoundError)
	return ok
}

// NewRouteNotFoundError creates a new RouteNotFoundError.
func NewRouteNotFoundError(method, path string) *RouteNotFoundError {
	return &RouteNotFoundError{Path: path, Method: method}
}

// ConfigError represents a configuration-related error.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok || errors.Is(e.Cause, target)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with a cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// BackendError represents a backend connectivity error.
type BackendError struct {
	Backend string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend %s error: %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("backend %s error: %s", e.Backend, e.Message)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *BackendError) Is(target error) bool {
	if target == ErrBackendUnavail {
		return true
	}
	_, ok := target.(*BackendError)
	return ok || errors.Is(e.Cause, target)
}

// NewBackendErrorWithCause creates a new BackendError with a cause.
func NewBackendErrorWithCause(backend, message string, cause error) *BackendError {
	return &BackendError{Backend: backend, Message: message, Cause: cause}
}

// RateLimitError represents a rate limit exceeded error.
type RateLimitError struct {
	Limit      int
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (limit: %d, retry after: %v)", e.Limit, e.RetryAfter)
}

// Is checks if the error matches the target.
func (e *RateLimitError) Is(target error) bool {
	if target == ErrRateLimited {
		return true
	}
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a new RateLimitError.
func NewRateLimitError(limit int, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Limit: limit, RetryAfter: retryAfter}
}

// CircuitOpenError represents a circuit breaker open error.
type CircuitOpenError struct {
	Name  string
	State string
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker %s is %s", e.Name, e.State)
}

// Is checks if the error matches the target.
func (e *CircuitOpenError) Is(target error) bool {
	if target == ErrCircuitOpen {
		return true
	}
	_, ok := target.(*CircuitOpenError)
	return ok
}

// NewCircuitOpenError creates a new CircuitOpenError.
func NewCircuitOpenError(name, state string) *CircuitOpenError {
	return &CircuitOpenError{Name: name, State: state}
}

// IsRegistrationError reports whether err rejects a route registration.
func IsRegistrationError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUnsupportedMethod) ||
		errors.Is(err, ErrMalformedPattern) ||
		errors.Is(err, ErrRouteConflict)
}
