// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"autoblog/internal/ai"
	"autoblog/internal/apperr"
)

// Provider switches the active completion provider.
type Provider struct {
	registry *ai.Registry
}

// NewProvider creates the provider handlers.
func NewProvider(reg *ai.Registry) *Provider {
	return &Provider{registry: reg}
}

// Get handles GET /api/admin/ai-provider.
func (h *Provider) Get(w http.ResponseWriter, r *http.Request) {
	available := h.registry.Available()
	if available == nil {
		available = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":    h.registry.ActiveName(),
		"available": available,
	})
}

// Set handles POST /api/admin/ai-provider.
func (h *Provider) Set(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.registry.SetActive(req.Provider); err != nil {
		writeError(w, r, apperr.Validation("Provider is not available"))
		return
	}
	slog.Info("completion provider switched", "provider", req.Provider)
	writeJSON(w, http.StatusOK, map[string]string{"provider": req.Provider})
}
