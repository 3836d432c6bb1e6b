// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations records token IDs that were logged out before expiry and a
// per-admin session generation. Generation is 0 for an admin that never
// had their sessions ended; Advance increments it.
type Revocations interface {
	Revoke(ctx context.Context, id string, ttl time.Duration) error
	IsRevoked(ctx context.Context, id string) (bool, error)
	Generation(ctx context.Context, username string) (int64, error)
	Advance(ctx context.Context, username string) error
}

const (
	// keyPrefix namespaces revocation keys in Valkey to avoid collisions.
	keyPrefix = "revoked:"

	// genPrefix namespaces session generation counters. They carry no TTL.
	genPrefix = "session-gen:"
)

// ValkeyRevocations stores revoked IDs in Valkey with a TTL matching the
// token's remaining lifetime, so entries clean themselves up.
type ValkeyRevocations struct {
	client *redis.Client
}

// NewValkeyRevocations creates a revocation list backed by Valkey.
func NewValkeyRevocations(client *redis.Client) *ValkeyRevocations {
	return &ValkeyRevocations{client: client}
}

// Revoke marks id as revoked for ttl.
func (v *ValkeyRevocations) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	if err := v.client.Set(ctx, keyPrefix+id, "1", ttl).Err(); err != nil {
		return fmt.Errorf("valkey revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether id was revoked.
func (v *ValkeyRevocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := v.client.Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("valkey revocation lookup: %w", err)
	}
	return n > 0, nil
}

// Generation returns the session generation for username.
func (v *ValkeyRevocations) Generation(ctx context.Context, username string) (int64, error) {
	n, err := v.client.Get(ctx, genPrefix+username).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("valkey generation lookup: %w", err)
	}
	return n, nil
}

// Advance increments the session generation for username.
func (v *ValkeyRevocations) Advance(ctx context.Context, username string) error {
	if err := v.client.Incr(ctx, genPrefix+username).Err(); err != nil {
		return fmt.Errorf("valkey advance generation: %w", err)
	}
	return nil
}

// MemoryRevocations is an in-process revocation list for a single instance
// or tests.
type MemoryRevocations struct {
	mu   sync.Mutex
	ids  map[string]time.Time
	gens map[string]int64
	now  func() time.Time
}

// NewMemoryRevocations creates an empty in-memory revocation list.
func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{
		ids:  make(map[string]time.Time),
		gens: make(map[string]int64),
		now:  time.Now,
	}
}

// Revoke marks id as revoked for ttl.
func (m *MemoryRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, exp := range m.ids {
		if now.After(exp) {
			delete(m.ids, k)
		}
	}
	m.ids[id] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether id was revoked and has not yet aged out.
func (m *MemoryRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.ids[id]
	return ok && m.now().Before(exp), nil
}

// Generation returns the session generation for username.
func (m *MemoryRevocations) Generation(_ context.Context, username string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[username], nil
}

// Advance increments the session generation for username.
func (m *MemoryRevocations) Advance(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[username]++
	return nil
}
