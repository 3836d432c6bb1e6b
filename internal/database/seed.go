// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"autoblog/internal/models"
)

// Seed makes sure the settings singleton exists so the pipeline always has a
// site URL and author to work with. Admin accounts are never seeded: the
// first one is created through bootstrap registration.
func Seed(ctx context.Context, db *sql.DB, siteURL, author string) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO settings (id, site_name, site_url, author_name)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, models.DefaultSiteName, siteURL, author)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("database seeded with default settings", "site_url", siteURL)
	} else {
		slog.Info("database already seeded, skipping")
	}
	return nil
}
