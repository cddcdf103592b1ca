package util

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ServerError signals that a backend answered with a 5xx status code.
// Circuit breakers count it as a failure.
type ServerError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.StatusCode)
}

// NewServerError creates a new ServerError with the given status code.
func NewServerError(statusCode int) *ServerError {
	return &ServerError{StatusCode: statusCode}
}

// StatusCapturingResponseWriter wraps http.ResponseWriter to track the
// status code and the number of body bytes written.
type StatusCapturingResponseWriter struct {
	http.ResponseWriter
	StatusCode    int
	BytesWritten  int
	HeaderWritten bool
}

// NewStatusCapturingResponseWriter creates a new StatusCapturingResponseWriter
// wrapping the provided http.ResponseWriter with a default status of 200 OK.
func NewStatusCapturingResponseWriter(w http.ResponseWriter) *StatusCapturingResponseWriter {
	return &StatusCapturingResponseWriter{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code and writes it to the underlying ResponseWriter.
func (w *StatusCapturingResponseWriter) WriteHeader(code int) {
	if w.HeaderWritten {
		return
	}
	w.StatusCode = code
	w.HeaderWritten = true
	w.ResponseWriter.WriteHeader(code)
}

// Write writes data to the underlying ResponseWriter and marks header as written.
func (w *StatusCapturingResponseWriter) Write(b []byte) (int, error) {
	if !w.HeaderWritten {
		w.HeaderWritten = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.BytesWritten += n
	return n, err
}

// Flush implements http.Flusher interface for streaming support.
func (w *StatusCapturingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Compile-time interface assertion.
var _ http.Flusher = (*StatusCapturingResponseWriter)(nil)

// errorBody is the JSON body written for gateway-generated errors.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSONError writes a JSON error response with the given status.
// The error field is the canonical status text.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:   http.StatusText(status),
		Message: message,
	})
}
