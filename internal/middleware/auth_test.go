// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"autoblog/internal/session"
)

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func newManager() *session.Manager {
	return session.NewManager("middleware-test-secret", time.Hour, false, session.NewMemoryRevocations())
}

func issue(t *testing.T, m *session.Manager, username string) string {
	t.Helper()
	token, err := m.Issue(context.Background(), httptest.NewRecorder(), username)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func TestClaimsFromCtx(t *testing.T) {
	if got := ClaimsFromCtx(context.Background()); got != nil {
		t.Errorf("expected nil claims, got %+v", got)
	}

	ctx := context.WithValue(context.Background(), ClaimsKey, "not-claims")
	if got := ClaimsFromCtx(ctx); got != nil {
		t.Errorf("expected nil for wrong type, got %+v", got)
	}

	claims := &session.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "admin"}}
	if got := ClaimsFromCtx(WithClaims(context.Background(), claims)); got.Username() != "admin" {
		t.Errorf("Username: got %q, want %q", got.Username(), "admin")
	}
}

func TestAuthenticateAndRequireAuth(t *testing.T) {
	m := newManager()
	token := issue(t, m, "admin")

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromCtx(r.Context()).Username()
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(m)(RequireAuth(inner))

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200", rr.Code)
		}
		if seen != "admin" {
			t.Errorf("username: got %q, want %q", seen, "admin")
		}
	})

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})

	rejected := map[string]func(r *http.Request){
		"no token":      func(r *http.Request) {},
		"garbage token": func(r *http.Request) { r.Header.Set("Authorization", "Bearer not.a.jwt") },
		"foreign token": func(r *http.Request) {
			other := session.NewManager("another-secret", time.Hour, false, session.NewMemoryRevocations())
			r.Header.Set("Authorization", "Bearer "+issue(t, other, "admin"))
		},
	}
	for name, prepare := range rejected {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
			prepare(req)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d, want 401", rr.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != "Unauthorized" {
				t.Errorf("error: got %q, want %q", body["error"], "Unauthorized")
			}
		})
	}
}

func TestRequireAuthRejectsRevokedToken(t *testing.T) {
	m := newManager()
	token := issue(t, m, "admin")

	logout := httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
	logout.Header.Set("Authorization", "Bearer "+token)
	if err := m.Destroy(context.Background(), httptest.NewRecorder(), logout); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	next, called := okHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	Authenticate(m)(RequireAuth(next)).ServeHTTP(rr, req)

	if *called {
		t.Error("handler should not run for a revoked token")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestAuthenticateAllowsAnonymous(t *testing.T) {
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rr := httptest.NewRecorder()
	Authenticate(newManager())(next).ServeHTTP(rr, req)

	if !*called {
		t.Error("anonymous request should reach the handler")
	}
}
