package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	r := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()
	LoggingMiddleware(logger, next).ServeHTTP(rec, r)

	require.Equal(t, http.StatusTeapot, rec.Code)
	out := buf.String()
	require.Contains(t, out, "method=GET")
	require.Contains(t, out, "path=/events")
	require.Contains(t, out, "status=418")
	require.NotContains(t, out, "short and stout", "bodies must not be logged")
}

func TestLoggingMiddleware_DefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("implicit 200"))
	})

	rec := httptest.NewRecorder()
	LoggingMiddleware(logger, next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Contains(t, buf.String(), "status=200")
}
