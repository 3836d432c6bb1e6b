// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"autoblog/internal/apperr"
	"autoblog/internal/models"
)

// SettingsStore reads and patches the site settings. *cache.Settings and
// *store.SettingsStore satisfy it.
type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error)
}

// Settings serves the site settings.
type Settings struct {
	store SettingsStore
}

// NewSettings creates the settings handlers.
func NewSettings(s SettingsStore) *Settings {
	return &Settings{store: s}
}

// Get handles GET /api/settings.
func (h *Settings) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Update handles POST /api/settings. Only the fields present in the body
// are changed.
func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	patch := models.SettingsPatch(req)
	if patch.Empty() {
		writeError(w, r, apperr.Validation("No settings to update"))
		return
	}
	s, err := h.store.Update(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
