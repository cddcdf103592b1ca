package util

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flusherRecorder wraps httptest.ResponseRecorder and implements http.Flusher.
type flusherRecorder struct {
	*httptest.ResponseRecorder
	flushed bool
}

func (f *flusherRecorder) Flush() {
	f.flushed = true
}

func TestServerError_Error(t *testing.T) {
	t.Parallel()

	err := NewServerError(http.StatusBadGateway)
	assert.Equal(t, "server error: status 502", err.Error())
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
}

func TestStatusCapturingResponseWriter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := NewStatusCapturingResponseWriter(rec)
	assert.Equal(t, http.StatusOK, w.StatusCode)
	assert.False(t, w.HeaderWritten)

	w.WriteHeader(http.StatusTeapot)
	w.WriteHeader(http.StatusInternalServerError)

	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, 5, w.BytesWritten)
	assert.Equal(t, http.StatusTeapot, w.StatusCode)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.True(t, w.HeaderWritten)
}

func TestStatusCapturingResponseWriter_WriteWithoutHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := NewStatusCapturingResponseWriter(rec)

	_, err := w.Write([]byte("ok"))
	require.NoError(t, err)

	assert.True(t, w.HeaderWritten)
	assert.Equal(t, http.StatusOK, w.StatusCode)
}

func TestStatusCapturingResponseWriter_Flush(t *testing.T) {
	t.Parallel()

	rec := &flusherRecorder{ResponseRecorder: httptest.NewRecorder()}
	w := NewStatusCapturingResponseWriter(rec)
	w.Flush()
	assert.True(t, rec.flushed)
}

func TestWriteJSONError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSONError(rec, http.StatusNotFound, "no route found for GET /x")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not Found", body["error"])
	assert.Equal(t, "no route found for GET /x", body["message"])
}
