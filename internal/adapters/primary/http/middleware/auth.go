package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/hiperdesk/backend/internal/auth"
	"github.com/hiperdesk/backend/internal/infrastructure/logging"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ClaimsKey is the key used to store agent claims in the request context.
const ClaimsKey contextKey = "agentClaims"

// JWTMiddleware validates the JWT token from the Authorization header.
func JWTMiddleware(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Authorization header format must be Bearer {token}", http.StatusUnauthorized)
				return
			}

			tokenString := parts[1]
			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			// Add the claims to the context for downstream handlers, and
			// surface the identity to the logging chain: slog lines pick
			// agent/tenant up from the context keys, the access logger
			// from the identity holder it seeded further out.
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = logging.WithAgentID(ctx, strconv.FormatInt(claims.AgentID, 10))
			ctx = logging.WithTenantID(ctx, strconv.FormatInt(claims.TenantID, 10))
			logging.SetRequestIdentity(ctx, claims.AgentID, claims.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves the authenticated agent's claims from the context.
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}
