// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"autoblog/internal/apperr"
	"autoblog/internal/auth"
	"autoblog/internal/middleware"
	"autoblog/internal/session"
)

// Auth serves the admin credential lifecycle.
type Auth struct {
	svc      *auth.Service
	sessions *session.Manager
}

// NewAuth creates the auth handlers.
func NewAuth(svc *auth.Service, sessions *session.Manager) *Auth {
	return &Auth{svc: svc, sessions: sessions}
}

// CheckAdmins handles GET /api/auth/check-admins.
func (h *Auth) CheckAdmins(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.AdminCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// Register handles POST /api/auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	in := auth.RegisterInput{Username: req.Username, Password: req.Password}
	if v := req.VerificationCreds; v != nil {
		in.Verification = &auth.Credentials{Username: v.Username, Password: v.Password}
	}
	reg, err := h.svc.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg := "Admin registered successfully"
	if reg.FirstAdmin {
		msg = "First admin registered successfully"
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":         true,
		"message":         msg,
		"recoveryPhrases": reg.Phrases,
		"isFirstAdmin":    reg.FirstAdmin,
	})
}

// VerifyAdmin handles POST /api/auth/verify-admin.
func (h *Auth) VerifyAdmin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.svc.Verify(r.Context(), auth.Credentials{Username: req.Username, Password: req.Password}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Login handles POST /api/auth/login. The token is returned in the body and
// set as an HttpOnly cookie.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := h.svc.Login(r.Context(), auth.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.sessions.Issue(r.Context(), w, admin.Username)
	if err != nil {
		writeError(w, r, apperr.Internal("issue session", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

// Logout handles POST /api/auth/logout.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		// The cookie is already cleared; a failed revocation only leaves
		// the token valid until it expires.
		slog.Warn("session revoke failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

// RecoverPassword handles POST /api/auth/recover-password.
func (h *Auth) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	phrases, err := h.svc.Recover(r.Context(), req.Username, req.RecoveryPhrases, req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.endSessions(r, req.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":            "Password reset successful",
		"newRecoveryPhrases": phrases,
	})
}

// ResetPassword handles POST /api/admin/reset-password for the signed-in
// admin.
func (h *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		writeError(w, r, apperr.Auth("Unauthorized"))
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), claims.Username(), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	// Other sessions end with the old password; the caller gets a new token.
	h.endSessions(r, claims.Username())
	resp := map[string]any{"success": true, "message": "Password updated"}
	token, err := h.sessions.Issue(r.Context(), w, claims.Username())
	if err != nil {
		slog.Error("session reissue failed", "username", claims.Username(), "error", err)
	} else {
		resp["token"] = token
	}
	writeJSON(w, http.StatusOK, resp)
}

// RemoveAdmin handles POST /api/admin/remove. The body carries the
// credentials of the admin being removed. Removing oneself also ends the
// current session.
func (h *Auth) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Remove(r.Context(), auth.Credentials{Username: req.Username, Password: req.Password}); err != nil {
		writeError(w, r, err)
		return
	}
	h.endSessions(r, req.Username)
	if c := middleware.ClaimsFromCtx(r.Context()); c != nil && c.Username() == req.Username {
		if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
			slog.Warn("session revoke failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Admin removed"})
}

// endSessions invalidates every token issued to username. The credential
// change has already been committed, so a failure is logged rather than
// reported to the client.
func (h *Auth) endSessions(r *http.Request, username string) {
	if err := h.sessions.EndAll(r.Context(), username); err != nil {
		slog.Error("ending sessions failed", "username", username, "error", err)
	}
}
