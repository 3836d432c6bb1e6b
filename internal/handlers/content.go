// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"autoblog/internal/content"
)

// Content exposes the generation pipeline stages.
type Content struct {
	pipeline *content.Pipeline
}

// NewContent creates the content handlers.
func NewContent(p *content.Pipeline) *Content {
	return &Content{pipeline: p}
}

// Complete handles POST /api/chatgpt.
func (h *Content) Complete(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.pipeline.Complete(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": out})
}

// Filter handles POST /api/filterResponse.
func (h *Content) Filter(w http.ResponseWriter, r *http.Request) {
	var req htmlRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"filtered": h.pipeline.Clean(r.Context(), req.HTML)})
}

// Optimize handles POST /api/seoOptimize.
func (h *Content) Optimize(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeFixUp(w, r)
	if !ok {
		return
	}
	out, err := h.pipeline.Optimize(r.Context(), req.HTML, req.PostData.PostData)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"optimized": out})
}

// FixMetaTags handles POST /api/fixMetaTags.
func (h *Content) FixMetaTags(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeFixUp(w, r)
	if !ok {
		return
	}
	out, err := h.pipeline.FixUp(r.Context(), req.HTML, req.PostData.PostData)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"fixedHtml": out})
}

func (h *Content) decodeFixUp(w http.ResponseWriter, r *http.Request) (fixUpRequest, bool) {
	var req fixUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return req, false
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return req, false
	}
	return req, true
}
