// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"autoblog/internal/apperr"
	"autoblog/internal/models"
	"autoblog/internal/posts"
)

// FixUpper rewrites the URL-bearing tags of a document for a post.
// *content.Pipeline satisfies it.
type FixUpper interface {
	FixUp(ctx context.Context, doc string, post models.PostData) (string, error)
}

// Posts serves post CRUD.
type Posts struct {
	svc   *posts.Service
	fixer FixUpper
}

// NewPosts creates the post handlers.
func NewPosts(svc *posts.Service, fixer FixUpper) *Posts {
	return &Posts{svc: svc, fixer: fixer}
}

// List handles GET /api/posts?limit=&offset=.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	list, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Post{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/posts/{id}.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /api/posts.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePost(w, r)
	if !ok {
		return
	}
	p, err := h.svc.CreateWith(r.Context(), in, h.render(r.Context(), in.Content))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PUT /api/posts/{id}.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, ok := decodePost(w, r)
	if !ok {
		return
	}
	p, err := h.svc.UpdateWith(r.Context(), id, in, h.render(r.Context(), in.Content))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/posts/{id}.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// FixMeta handles POST /api/posts/{id}/fix-meta, rewriting the stored
// content against the post's current slug and dates.
func (h *Posts) FixMeta(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fixed, err := h.fixer.FixUp(r.Context(), p.Content, p.Data())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.UpdateContent(r.Context(), id, fixed); err != nil {
		writeError(w, r, err)
		return
	}
	p.Content = fixed
	writeJSON(w, http.StatusOK, p)
}

// render fixes up doc once the slug is known. Posts without content are
// stored as given.
func (h *Posts) render(ctx context.Context, doc string) posts.RenderFunc {
	if doc == "" || h.fixer == nil {
		return nil
	}
	return func(data models.PostData) (string, error) {
		return h.fixer.FixUp(ctx, doc, data)
	}
}

func decodePost(w http.ResponseWriter, r *http.Request) (posts.Input, bool) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return posts.Input{}, false
	}
	if err := validate(req); err != nil {
		writeError(w, r, err)
		return posts.Input{}, false
	}
	return posts.Input(req), true
}

func postID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid post ID")
	}
	return id, nil
}
