// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"autoblog/internal/apperr"
	"autoblog/internal/bulk"
)

// maxUpload caps the size of an uploaded spreadsheet.
const maxUpload = 10 << 20

// Runner executes a bulk import. *bulk.Driver satisfies it.
type Runner interface {
	Run(ctx context.Context, titles []string) bulk.Result
}

// Bulk serves spreadsheet imports.
type Bulk struct {
	runner Runner
}

// NewBulk creates the bulk import handler.
func NewBulk(r Runner) *Bulk {
	return &Bulk{runner: r}
}

// Upload handles POST /api/bulkUpload. The request is held open until every
// title has been processed.
func (h *Bulk) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, r, &apperr.Error{Kind: apperr.KindValidation, Msg: "Invalid upload", Err: err})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, apperr.Validation("No file uploaded"))
		return
	}
	defer file.Close()

	titles, err := bulk.ParseTitles(header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// A run spans many completions; lift the server write deadline.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.Warn("extend write deadline", "error", err)
	}

	slog.Info("bulk import started", "file", header.Filename, "titles", len(titles))
	res := h.runner.Run(r.Context(), titles)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        fmt.Sprintf("Successfully processed %d out of %d posts", res.Processed, res.Total),
		"processedCount": res.Processed,
		"totalPosts":     res.Total,
	})
}
