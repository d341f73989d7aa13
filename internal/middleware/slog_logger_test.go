package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/novatrek/planner/backend/internal/middleware"
)

// TestSlogLogger_logsRequestFields checks the single access-log line written
// for a successful request, including the request ID chi's RequestID stores.
func TestSlogLogger_logsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middleware.NewSlogLogger(logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"a1"}`))
		}),
	)

	req := httptest.NewRequest(http.MethodPost, "/trips", nil)
	req = req.WithContext(context.WithValue(req.Context(), chimiddleware.RequestIDKey, "req-7"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

	require.Equal(t, "POST", logEntry["method"])
	require.Equal(t, "/trips", logEntry["path"])
	require.Equal(t, "unmatched", logEntry["route"])
	require.EqualValues(t, http.StatusCreated, logEntry["status"])
	require.EqualValues(t, len(`{"id":"a1"}`), logEntry["bytes"])
	require.Equal(t, "req-7", logEntry["request_id"])
	require.Equal(t, "INFO", logEntry["level"])
	require.NotNil(t, logEntry["duration_ms"])
}

// TestSlogLogger_serverErrorsLogAtWarn verifies that 5xx responses are raised
// to warn level and that the chi route pattern is logged.
func TestSlogLogger_serverErrorsLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(middleware.NewSlogLogger(logger))
	r.Get("/trips/{tripId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trips/42", nil))

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	require.Equal(t, "WARN", logEntry["level"])
	require.Equal(t, "/trips/{tripId}", logEntry["route"])
	require.Equal(t, "/trips/42", logEntry["path"])
}
