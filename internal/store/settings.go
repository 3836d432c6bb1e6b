// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"autoblog/internal/models"
)

// SettingsStore manages the single settings row (id = 1).
type SettingsStore struct {
	db            *sql.DB
	defaultURL    string
	defaultAuthor string
}

// NewSettingsStore returns a SettingsStore. The defaults are written when
// the row is first created.
func NewSettingsStore(db *sql.DB, defaultURL, defaultAuthor string) *SettingsStore {
	return &SettingsStore{db: db, defaultURL: defaultURL, defaultAuthor: defaultAuthor}
}

const settingsSelect = `
	SELECT site_name, site_url, logo_url, author_name, organization_name,
	       ga4_id, adsense_id, bing_verification_id, custom_head_code, updated_at
	FROM settings WHERE id = 1`

func scanSettings(row rowScanner) (*models.Settings, error) {
	st := &models.Settings{}
	err := row.Scan(
		&st.SiteName, &st.SiteURL, &st.LogoURL, &st.AuthorName, &st.OrganizationName,
		&st.GA4ID, &st.AdsenseID, &st.BingVerificationID, &st.CustomHeadCode, &st.UpdatedAt,
	)
	return st, err
}

// Get returns the settings, creating the row with defaults if it is missing.
func (s *SettingsStore) Get(ctx context.Context) (*models.Settings, error) {
	st, err := scanSettings(s.db.QueryRowContext(ctx, settingsSelect))
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	st, err = scanSettings(s.db.QueryRowContext(ctx, settingsSelect))
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

func (s *SettingsStore) ensure(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, site_name, site_url, author_name)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, models.DefaultSiteName, s.defaultURL, s.defaultAuthor)
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}
	return nil
}

// Update applies the non-nil fields of patch, creating the row first if
// needed, and returns the resulting settings.
func (s *SettingsStore) Update(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	fields := []struct {
		col string
		val *string
	}{
		{"site_name", patch.SiteName},
		{"site_url", patch.SiteURL},
		{"logo_url", patch.LogoURL},
		{"author_name", patch.AuthorName},
		{"organization_name", patch.OrganizationName},
		{"ga4_id", patch.GA4ID},
		{"adsense_id", patch.AdsenseID},
		{"bing_verification_id", patch.BingVerificationID},
		{"custom_head_code", patch.CustomHeadCode},
	}

	var sets []string
	var args []any
	for _, f := range fields {
		if f.val == nil {
			continue
		}
		args = append(args, *f.val)
		sets = append(sets, fmt.Sprintf("%s = $%d", f.col, len(args)))
	}
	if len(sets) == 0 {
		return s.Get(ctx)
	}

	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	sets = append(sets, "updated_at = NOW()")

	if _, err := s.db.ExecContext(ctx,
		`UPDATE settings SET `+strings.Join(sets, ", ")+` WHERE id = 1`, args...); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return s.Get(ctx)
}
