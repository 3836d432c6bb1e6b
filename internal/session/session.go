// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session issues and verifies per-login admin tokens. A token is an
// HS256 JWT carried either in the "token" cookie or an Authorization bearer
// header. Logout revokes the token's ID until it would have expired.
// EndAll moves the admin's session generation on, which invalidates every
// token issued before it.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName is the name of the credential cookie sent to the browser.
	CookieName = "token"

	// DefaultTTL is how long an issued token stays valid.
	DefaultTTL = 24 * time.Hour

	issuer = "autoblog"
)

// ErrInvalidToken is returned for tokens that are malformed, expired,
// wrongly signed or revoked.
var ErrInvalidToken = errors.New("session: invalid token")

// Claims is the token payload. Subject holds the admin username and
// Generation the admin's session generation at issue time.
type Claims struct {
	Generation int64 `json:"gen"`
	jwt.RegisteredClaims
}

// Username returns the admin the token was issued to.
func (c *Claims) Username() string { return c.Subject }

// Manager signs, verifies and revokes tokens.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	secure  bool
	revoked Revocations
	now     func() time.Time
}

// NewManager creates a token manager. secure controls the cookie's Secure
// flag and should be true behind TLS.
func NewManager(secret string, ttl time.Duration, secure bool, revoked Revocations) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		secure:  secure,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a token for username, sets it as the credential cookie on w
// and returns it so API clients can use it as a bearer token.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, username string) (string, error) {
	gen, err := m.revoked.Generation(ctx, username)
	if err != nil {
		return "", fmt.Errorf("session generation: %w", err)
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Generation: gen,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("session sign: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return signed, nil
}

// Verify authenticates the request. It returns (nil, nil) when the request
// carries no token, and ErrInvalidToken when the token cannot be trusted.
func (m *Manager) Verify(ctx context.Context, r *http.Request) (*Claims, error) {
	raw := TokenFromRequest(r)
	if raw == "" {
		return nil, nil
	}

	claims, err := m.parse(raw, true)
	if err != nil {
		return nil, err
	}

	revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("session check revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	gen, err := m.revoked.Generation(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("session check generation: %w", err)
	}
	if claims.Generation != gen {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// EndAll invalidates every token issued to username so far. Tokens issued
// afterwards are unaffected.
func (m *Manager) EndAll(ctx context.Context, username string) error {
	if err := m.revoked.Advance(ctx, username); err != nil {
		return fmt.Errorf("session end all: %w", err)
	}
	return nil
}

// Destroy revokes the request's token, if any, and clears the cookie.
// Logging out without a valid token is not an error.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})

	raw := TokenFromRequest(r)
	if raw == "" {
		return nil
	}
	claims, err := m.parse(raw, false)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}

	remaining := claims.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return nil
	}
	if err := m.revoked.Revoke(ctx, claims.ID, remaining); err != nil {
		return fmt.Errorf("session revoke: %w", err)
	}
	return nil
}

// parse validates signature and claims. With checkExpiry false, expired
// tokens are still accepted so they can be revoked on logout.
func (m *Manager) parse(raw string, checkExpiry bool) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	}
	if checkExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the credential cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// HasBearer reports whether the request authenticates with a header rather
// than the cookie. Header-authenticated requests are not exposed to CSRF.
func HasBearer(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")
}
