package util

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		field          string
		message        string
		cause          error
		expectedString string
	}{
		{
			name:           "with field",
			field:          "routes[0].path",
			message:        "path is required",
			expectedString: "config error at routes[0].path: path is required",
		},
		{
			name:           "without field",
			message:        "invalid configuration",
			expectedString: "config error: invalid configuration",
		},
		{
			name:           "with cause",
			field:          "listener.port",
			message:        "invalid port",
			cause:          errors.New("port out of range"),
			expectedString: "config error at listener.port: invalid port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var err *ConfigError
			if tt.cause != nil {
				err = NewConfigErrorWithCause(tt.field, tt.message, tt.cause)
			} else {
				err = NewConfigError(tt.field, tt.message)
			}

			assert.Equal(t, tt.expectedString, err.Error())
			assert.Equal(t, tt.cause, err.Unwrap())
			assert.ErrorIs(t, err, ErrConfigInvalid)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

func TestUnsupportedMethodError(t *testing.T) {
	t.Parallel()

	err := NewUnsupportedMethodError("TRACE", []string{"GET", "POST"})

	assert.Equal(t, `unsupported HTTP method "TRACE" (supported: [GET POST])`, err.Error())
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.NotErrorIs(t, err, ErrNotFound)

	var target *UnsupportedMethodError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Equal(t, "TRACE", target.Method)
}

func TestMalformedPatternError(t *testing.T) {
	t.Parallel()

	withSegment := NewMalformedPatternError("/a/{id", "{id", "unbalanced braces")
	assert.Equal(t, `malformed pattern "/a/{id" at segment "{id": unbalanced braces`, withSegment.Error())
	assert.ErrorIs(t, withSegment, ErrMalformedPattern)

	withoutSegment := NewMalformedPatternError("/a/{*rest}/b", "", "wildcard must be the last segment")
	assert.Equal(t, `malformed pattern "/a/{*rest}/b": wildcard must be the last segment`, withoutSegment.Error())
	assert.ErrorIs(t, withoutSegment, &MalformedPatternError{})
}

func TestRouteConflictError(t *testing.T) {
	t.Parallel()

	err := NewRouteConflictError("/users/{name}", "id", "name")
	assert.Equal(t, `pattern "/users/{name}" binds "name" where "id" is already registered`, err.Error())
	assert.ErrorIs(t, err, ErrRouteConflict)
	assert.NotErrorIs(t, err, ErrMalformedPattern)
}

func TestRouteNotFoundError(t *testing.T) {
	t.Parallel()

	err := NewRouteNotFoundError("GET", "/missing")
	assert.Equal(t, "no route found for GET /missing", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnsupportedMethod)
}

func TestBackendError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewBackendErrorWithCause("http://users:8080", "proxy failed", cause)

	assert.Equal(t, "backend http://users:8080 error: proxy failed: connection refused", err.Error())
	assert.ErrorIs(t, err, ErrBackendUnavail)
	assert.ErrorIs(t, err, cause)

	noCause := &BackendError{Backend: "b", Message: "down"}
	assert.Equal(t, "backend b error: down", noCause.Error())
}

func TestRateLimitError(t *testing.T) {
	t.Parallel()

	err := NewRateLimitError(5, 10*time.Second)
	assert.Equal(t, "rate limit exceeded (limit: 5, retry after: 10s)", err.Error())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestCircuitOpenError(t *testing.T) {
	t.Parallel()

	err := NewCircuitOpenError("users", "open")
	assert.Equal(t, "circuit breaker users is open", err.Error())
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestIsRegistrationError(t *testing.T) {
	t.Parallel()

	assert.False(t, IsRegistrationError(nil))
	assert.False(t, IsRegistrationError(NewRouteNotFoundError("GET", "/")))
	assert.True(t, IsRegistrationError(NewUnsupportedMethodError("TRACE", nil)))
	assert.True(t, IsRegistrationError(NewMalformedPatternError("/{", "{", "unbalanced braces")))
	assert.True(t, IsRegistrationError(fmt.Errorf("route users: %w", NewRouteConflictError("/a/{b}", "a", "b"))))
}
