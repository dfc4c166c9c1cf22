package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/hiperdesk/backend/internal/adapters/primary/http/middleware"
	"github.com/hiperdesk/backend/internal/auth"
	"github.com/hiperdesk/backend/internal/infrastructure/logging"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets/42", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(mw.RequestIDHeader))
}

func TestRequestID_KeepsCallerProvidedID(t *testing.T) {
	handler := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/tickets/42", nil)
	req.Header.Set(mw.RequestIDHeader, "req-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-abc", rec.Header().Get(mw.RequestIDHeader))
}

func TestRequestLogger_AttributesAuthenticatedAgent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	tm := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tm.GenerateToken(10, 1)
	require.NoError(t, err)

	// Same chain order as the router: request id, access log, then auth.
	handler := mw.RequestID(mw.RequestLogger(logger)(mw.JWTMiddleware(tm)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)))

	req := httptest.NewRequest(http.MethodGet, "/tickets/42", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.Contains(t, line, `"agent_id":10`)
	assert.Contains(t, line, `"tenant_id":1`)
	assert.Contains(t, line, `"request_id"`)
}

func TestRequestLogger_UnauthenticatedRequestHasNoAgent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := mw.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tickets/42", nil))

	line := buf.String()
	assert.Contains(t, line, `"path":"/tickets/42"`)
	assert.NotContains(t, line, "agent_id")
}

func TestRequestLogger_HealthProbesLogAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := mw.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	// The handler defaults to info level, so the probe line is suppressed.
	assert.Empty(t, buf.String())
}
