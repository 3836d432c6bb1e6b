// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"autoblog/internal/models"
)

const (
	settingsKey = "settings:site"

	// DefaultSettingsTTL is how long the settings row stays cached.
	DefaultSettingsTTL = 5 * time.Minute
)

// SettingsBackend is the source of truth for site settings.
// *store.SettingsStore satisfies it.
type SettingsBackend interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error)
}

// Settings caches the settings row in Valkey. Cache errors are logged and
// fall through to the backend.
type Settings struct {
	backend SettingsBackend
	client  *redis.Client
	ttl     time.Duration
}

// NewSettings wraps backend with a Valkey cache.
func NewSettings(backend SettingsBackend, client *redis.Client, ttl time.Duration) *Settings {
	if ttl == 0 {
		ttl = DefaultSettingsTTL
	}
	return &Settings{backend: backend, client: client, ttl: ttl}
}

// Get returns the cached settings, loading them from the backend on a miss.
func (c *Settings) Get(ctx context.Context) (*models.Settings, error) {
	raw, err := c.client.Get(ctx, settingsKey).Bytes()
	switch {
	case err == nil:
		var s models.Settings
		if err := json.Unmarshal(raw, &s); err == nil {
			return &s, nil
		}
		slog.Warn("settings cache entry unreadable, reloading")
	case !errors.Is(err, redis.Nil):
		slog.Warn("settings cache get error", "error", err)
	}

	s, err := c.backend.Get(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, s)
	return s, nil
}

// Update writes through to the backend and refreshes the cached copy.
func (c *Settings) Update(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	s, err := c.backend.Update(ctx, patch)
	if err != nil {
		c.Invalidate(ctx)
		return nil, err
	}
	c.store(ctx, s)
	return s, nil
}

// Invalidate drops the cached settings.
func (c *Settings) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
		slog.Warn("settings cache invalidate error", "error", err)
	}
}

func (c *Settings) store(ctx context.Context, s *models.Settings) {
	raw, err := json.Marshal(s)
	if err != nil {
		slog.Warn("settings cache encode error", "error", err)
		return
	}
	if err := c.client.Set(ctx, settingsKey, raw, c.ttl).Err(); err != nil {
		slog.Warn("settings cache set error", "error", err)
	}
}
