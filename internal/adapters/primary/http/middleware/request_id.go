package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hiperdesk/backend/internal/infrastructure/logging"
)

// RequestIDHeader is the HTTP header the request id is read from and
// echoed back on.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id: the caller's X-Request-ID when
// present, a generated one otherwise. The id is stored in the logging
// context, so every slog line emitted while serving the request carries
// it without handlers threading it through.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return logging.GetRequestID(ctx)
}
