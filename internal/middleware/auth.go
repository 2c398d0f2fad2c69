// Package middleware provides HTTP middleware for the API server
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/finbase/payment-service/internal/token"
)

type contextKey string

const userIDKey contextKey = "userID"

// AuthMiddleware verifies the bearer token on incoming requests and
// attaches the resolved user ID to the request context. A missing
// header, a malformed header and a failed verification all produce the
// same 401 response; nothing past the gate runs in those cases.
func AuthMiddleware(authority *token.Authority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				unauthorized(w)
				return
			}

			userID, err := authority.Verify(parts[1])
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user ID attached by AuthMiddleware
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// WithUserID returns a context carrying the given user ID. Used by
// tests to stand in for the middleware.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
}
