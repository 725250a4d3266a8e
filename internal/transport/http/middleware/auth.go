package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"chirper/internal/httputil"
	"chirper/internal/model"
	"chirper/internal/service"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
	// ClaimsKey is the context key for the verified token claims
	ClaimsKey contextKey = "claims"
)

// TokenParser verifies session tokens.
type TokenParser interface {
	ParseToken(ctx context.Context, token string) (*service.Claims, error)
}

// TokenFromRequest returns the session token.
// Checks the Authorization header first, then falls back to the jwt cookie.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	cookie, err := r.Cookie(model.AuthCookieName)
	if err == nil {
		return cookie.Value
	}
	return ""
}

// AuthMiddleware rejects requests without a valid, unrevoked token.
func AuthMiddleware(parser TokenParser, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parser.ParseToken(r.Context(), TokenFromRequest(r))
			if err != nil {
				httputil.WriteServiceError(w, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuthMiddleware attaches the claims when a valid token is present
// and lets the request through without them when the token is missing or
// rejected. A token that cannot be checked because the revocation store is
// down fails the request with 503.
func OptionalAuthMiddleware(parser TokenParser, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := TokenFromRequest(r); token != "" {
				claims, err := parser.ParseToken(r.Context(), token)
				switch {
				case err == nil:
					r = r.WithContext(withClaims(r.Context(), claims))
				case errors.Is(err, model.ErrTransient):
					httputil.WriteServiceError(w, log, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withClaims(ctx context.Context, claims *service.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID())
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or "" and false if not found
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetClaimsFromContext returns the verified token claims, if any.
func GetClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*service.Claims)
	return claims, ok
}
