// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"autoblog/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// ClaimsKey is the context key for verified token claims.
const ClaimsKey contextKey = "claims"

// Authenticate verifies the request's token, if any, and stores its claims
// in the request context. It does not reject anonymous requests; invalid
// tokens are treated as absent.
func Authenticate(m *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := m.Verify(r.Context(), r)
			if err != nil && !errors.Is(err, session.ErrInvalidToken) {
				slog.Warn("token verification failed", "error", err)
			}
			if claims != nil {
				r = r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without verified claims with a JSON 401.
// Must be applied after Authenticate in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ClaimsFromCtx(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromCtx extracts the verified claims from the request context.
// Returns nil if the request is not authenticated.
func ClaimsFromCtx(ctx context.Context) *session.Claims {
	c, _ := ctx.Value(ClaimsKey).(*session.Claims)
	return c
}

// WithClaims returns a context carrying claims, as Authenticate would.
func WithClaims(ctx context.Context, c *session.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, c)
}
