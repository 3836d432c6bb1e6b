// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"autoblog/internal/middleware"
	"autoblog/internal/session"
)

func phrasesOf(t *testing.T, v any) []string {
	t.Helper()
	list, ok := v.([]any)
	if !ok {
		t.Fatalf("phrases: got %T, want array", v)
	}
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.(string))
	}
	return out
}

func asAdmin(r *http.Request, username string) *http.Request {
	claims := &session.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: username}}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func register(t *testing.T, h *Auth, body any) map[string]any {
	t.Helper()
	rec := do(t, h.Register, http.MethodPost, "/api/auth/register", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d, body %s", rec.Code, rec.Body.String())
	}
	return decode(t, rec)
}

func TestCheckAdmins(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := do(t, h.CheckAdmins, http.MethodGet, "/api/auth/check-admins", nil)
	if got := decode(t, rec)["count"]; got != float64(0) {
		t.Errorf("count before bootstrap: got %v, want 0", got)
	}

	register(t, h, map[string]string{"username": "root", "password": "first-password"})

	rec = do(t, h.CheckAdmins, http.MethodGet, "/api/auth/check-admins", nil)
	if got := decode(t, rec)["count"]; got != float64(1) {
		t.Errorf("count after bootstrap: got %v, want 1", got)
	}
}

func TestRegisterBootstrapAndVerification(t *testing.T) {
	h, _ := newAuthHandler(t)

	first := register(t, h, map[string]string{"username": "root", "password": "first-password"})
	if first["isFirstAdmin"] != true {
		t.Errorf("isFirstAdmin: got %v, want true", first["isFirstAdmin"])
	}
	if first["message"] != "First admin registered successfully" {
		t.Errorf("bootstrap message: got %v", first["message"])
	}
	if got := phrasesOf(t, first["recoveryPhrases"]); len(got) != 7 {
		t.Errorf("recoveryPhrases: got %d, want 7", len(got))
	}

	rec := do(t, h.Register, http.MethodPost, "/api/auth/register",
		map[string]string{"username": "editor", "password": "second-password"})
	wantError(t, rec, http.StatusBadRequest, "Admin verification required")

	rec = do(t, h.Register, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "editor", "password": "second-password",
		"verificationCreds": map[string]string{"username": "root", "password": "wrong-password"},
	})
	wantError(t, rec, http.StatusUnauthorized, "Invalid admin credentials")

	second := register(t, h, map[string]any{
		"username": "editor", "password": "second-password",
		"verificationCreds": map[string]string{"username": "root", "password": "first-password"},
	})
	if second["isFirstAdmin"] != false {
		t.Errorf("isFirstAdmin: got %v, want false", second["isFirstAdmin"])
	}
}

func TestRegisterValidation(t *testing.T) {
	h, _ := newAuthHandler(t)

	tests := []struct {
		name string
		body any
		want string
	}{
		{"short username", map[string]string{"username": "ab", "password": "long-enough"}, "Username must be 3-64 characters"},
		{"bad characters", map[string]string{"username": "root admin", "password": "long-enough"}, "Username may only contain letters, digits, '.', '_' and '-'"},
		{"short password", map[string]string{"username": "root", "password": "short"}, "Password must be 8-72 characters"},
		{"missing username", map[string]string{"password": "long-enough"}, "Username is required"},
		{"unknown field", `{"username":"root","password":"long-enough","role":"owner"}`, "Invalid request body"},
		{"empty body", "", "Request body is required"},
		{"nested verifier", map[string]any{
			"username": "root", "password": "long-enough",
			"verificationCreds": map[string]string{"username": "root"},
		}, "Password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h.Register, http.MethodPost, "/api/auth/register", tt.body)
			wantError(t, rec, http.StatusBadRequest, tt.want)
		})
	}
}

func TestVerifyAdmin(t *testing.T) {
	h, _ := newAuthHandler(t)
	register(t, h, map[string]string{"username": "root", "password": "first-password"})

	rec := do(t, h.VerifyAdmin, http.MethodPost, "/api/auth/verify-admin",
		map[string]string{"username": "root", "password": "first-password"})
	if rec.Code != http.StatusOK {
		t.Errorf("valid credentials: got %d, want 200", rec.Code)
	}

	rec = do(t, h.VerifyAdmin, http.MethodPost, "/api/auth/verify-admin",
		map[string]string{"username": "root", "password": "nope-nope"})
	wantError(t, rec, http.StatusUnauthorized, "Invalid credentials")
}

func TestLoginAndLogout(t *testing.T) {
	h, sessions := newAuthHandler(t)
	register(t, h, map[string]string{"username": "root", "password": "first-password"})

	rec := do(t, h.Login, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "ghost", "password": "first-password"})
	wantError(t, rec, http.StatusUnauthorized, "Invalid credentials")

	rec = do(t, h.Login, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "root", "password": "first-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d, body %s", rec.Code, rec.Body.String())
	}
	token, _ := decode(t, rec)["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != token || !cookie.HttpOnly {
		t.Fatalf("session cookie: got %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	out := httptest.NewRecorder()
	h.Logout(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("logout: got %d", out.Code)
	}

	check := httptest.NewRequest(http.MethodGet, "/", nil)
	check.Header.Set("Authorization", "Bearer "+token)
	if _, err := sessions.Verify(check.Context(), check); err == nil {
		t.Error("token still valid after logout")
	}
}

func TestRecoverPassword(t *testing.T) {
	h, _ := newAuthHandler(t)
	reg := register(t, h, map[string]string{"username": "root", "password": "first-password"})
	phrases := phrasesOf(t, reg["recoveryPhrases"])

	rec := do(t, h.RecoverPassword, http.MethodPost, "/api/auth/recover-password", map[string]any{
		"username": "root", "recoveryPhrases": phrases[:6], "newPassword": "second-password",
	})
	wantError(t, rec, http.StatusBadRequest, "Exactly 7 recovery phrases are required")

	swapped := append([]string(nil), phrases...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	rec = do(t, h.RecoverPassword, http.MethodPost, "/api/auth/recover-password", map[string]any{
		"username": "root", "recoveryPhrases": swapped, "newPassword": "second-password",
	})
	wantError(t, rec, http.StatusUnauthorized, "Invalid recovery phrases")

	upper := make([]string, len(phrases))
	for i, p := range phrases {
		upper[i] = "  " + strings.ToUpper(p)
	}
	rec = do(t, h.RecoverPassword, http.MethodPost, "/api/auth/recover-password", map[string]any{
		"username": "root", "recoveryPhrases": upper, "newPassword": "second-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("recover: got %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["message"] != "Password reset successful" {
		t.Errorf("message: got %v", body["message"])
	}
	if got := phrasesOf(t, body["newRecoveryPhrases"]); len(got) != 7 {
		t.Errorf("newRecoveryPhrases: got %d, want 7", len(got))
	}

	rec = do(t, h.Login, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "root", "password": "second-password"})
	if rec.Code != http.StatusOK {
		t.Errorf("login with recovered password: got %d", rec.Code)
	}
}

func TestResetPassword(t *testing.T) {
	h, _ := newAuthHandler(t)
	register(t, h, map[string]string{"username": "root", "password": "first-password"})

	send := func(body string, username string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/reset-password", strings.NewReader(body))
		if username != "" {
			req = asAdmin(req, username)
		}
		rec := httptest.NewRecorder()
		h.ResetPassword(rec, req)
		return rec
	}

	wantError(t, send(`{"currentPassword":"first-password","newPassword":"second-password"}`, ""),
		http.StatusUnauthorized, "Unauthorized")
	wantError(t, send(`{"currentPassword":"wrong-password","newPassword":"second-password"}`, "root"),
		http.StatusUnauthorized, "Current password is incorrect")
	wantError(t, send(`{"currentPassword":"first-password","newPassword":"short"}`, "root"),
		http.StatusBadRequest, "New password must be 8-72 characters")

	if rec := send(`{"currentPassword":"first-password","newPassword":"second-password"}`, "root"); rec.Code != http.StatusOK {
		t.Fatalf("reset: got %d, body %s", rec.Code, rec.Body.String())
	}
	rec := do(t, h.Login, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "root", "password": "second-password"})
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password: got %d", rec.Code)
	}
}

func TestRemoveAdmin(t *testing.T) {
	h, _ := newAuthHandler(t)
	register(t, h, map[string]string{"username": "root", "password": "first-password"})

	rec := do(t, h.RemoveAdmin, http.MethodPost, "/api/admin/remove",
		map[string]string{"username": "root", "password": "first-password"})
	wantError(t, rec, http.StatusBadRequest, "Cannot remove last admin")

	register(t, h, map[string]any{
		"username": "editor", "password": "second-password",
		"verificationCreds": map[string]string{"username": "root", "password": "first-password"},
	})

	rec = do(t, h.RemoveAdmin, http.MethodPost, "/api/admin/remove",
		map[string]string{"username": "editor", "password": "wrong-password"})
	wantError(t, rec, http.StatusUnauthorized, "Invalid credentials")

	req := asAdmin(httptest.NewRequest(http.MethodPost, "/api/admin/remove",
		strings.NewReader(`{"username":"editor","password":"second-password"}`)), "editor")
	out := httptest.NewRecorder()
	h.RemoveAdmin(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("remove: got %d, body %s", out.Code, out.Body.String())
	}
	cleared := false
	for _, c := range out.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("removing oneself should clear the session cookie")
	}

	rec = do(t, h.CheckAdmins, http.MethodGet, "/api/auth/check-admins", nil)
	if got := decode(t, rec)["count"]; got != float64(1) {
		t.Errorf("count after remove: got %v, want 1", got)
	}
}

// login returns a bearer token for username.
func login(t *testing.T, h *Auth, username, password string) string {
	t.Helper()
	rec := do(t, h.Login, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: got %d, body %s", username, rec.Code, rec.Body.String())
	}
	token, _ := decode(t, rec)["token"].(string)
	return token
}

func tokenValid(sessions *session.Manager, token string) bool {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	claims, err := sessions.Verify(r.Context(), r)
	return err == nil && claims != nil
}

func TestRemoveAdminEndsTheirSessions(t *testing.T) {
	h, sessions := newAuthHandler(t)
	register(t, h, map[string]string{"username": "root", "password": "first-password"})
	register(t, h, map[string]any{
		"username": "bob", "password": "second-password",
		"verificationCreds": map[string]string{"username": "root", "password": "first-password"},
	})

	bob := login(t, h, "bob", "second-password")
	root := login(t, h, "root", "first-password")
	if !tokenValid(sessions, bob) {
		t.Fatal("bob's token rejected before removal")
	}

	req := asAdmin(httptest.NewRequest(http.MethodPost, "/api/admin/remove",
		strings.NewReader(`{"username":"bob","password":"second-password"}`)), "root")
	out := httptest.NewRecorder()
	h.RemoveAdmin(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("remove: got %d, body %s", out.Code, out.Body.String())
	}

	if tokenValid(sessions, bob) {
		t.Error("removed admin's token still accepted")
	}
	if !tokenValid(sessions, root) {
		t.Error("remaining admin's token rejected")
	}
}

func TestRecoverPasswordEndsSessions(t *testing.T) {
	h, sessions := newAuthHandler(t)
	reg := register(t, h, map[string]string{"username": "root", "password": "first-password"})
	stolen := login(t, h, "root", "first-password")

	rec := do(t, h.RecoverPassword, http.MethodPost, "/api/auth/recover-password", map[string]any{
		"username": "root", "recoveryPhrases": phrasesOf(t, reg["recoveryPhrases"]), "newPassword": "second-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("recover: got %d, body %s", rec.Code, rec.Body.String())
	}
	if tokenValid(sessions, stolen) {
		t.Error("token issued before recovery still accepted")
	}
	if fresh := login(t, h, "root", "second-password"); !tokenValid(sessions, fresh) {
		t.Error("token issued after recovery rejected")
	}
}

func TestResetPasswordReissuesToken(t *testing.T) {
	h, sessions := newAuthHandler(t)
	register(t, h, map[string]string{"username": "root", "password": "first-password"})
	other := login(t, h, "root", "first-password")

	req := asAdmin(httptest.NewRequest(http.MethodPost, "/api/admin/reset-password",
		strings.NewReader(`{"currentPassword":"first-password","newPassword":"second-password"}`)), "root")
	out := httptest.NewRecorder()
	h.ResetPassword(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("reset: got %d, body %s", out.Code, out.Body.String())
	}

	if tokenValid(sessions, other) {
		t.Error("token issued before reset still accepted")
	}
	token, _ := decode(t, out)["token"].(string)
	if !tokenValid(sessions, token) {
		t.Error("reissued token rejected")
	}
}
