// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface for the LLM providers used to
// write and optimise posts (OpenAI, Claude, Mistral). Each provider
// implements the Provider interface, and the Registry selects the active
// one by name.
package ai

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// defaultTimeout bounds a provider HTTP call when no timeout is configured.
const defaultTimeout = 60 * time.Second

// ErrUnavailable is returned when a provider name has no configured client.
var ErrUnavailable = errors.New("ai: provider not available")

// Provider generates a completion for a system and user prompt.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Name is the identifier the registry knows the provider by.
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func (c ProviderConfig) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

// factories builds the supported providers by name.
var factories = map[string]func(ProviderConfig) Provider{
	"openai":  func(c ProviderConfig) Provider { return newOpenAI(c) },
	"claude":  func(c ProviderConfig) Provider { return newClaude(c) },
	"mistral": func(c ProviderConfig) Provider { return newMistral(c) },
}

// Registry holds the configured providers and the name of the active one.
// It is safe for concurrent use; the active provider can be switched at
// runtime.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
}

// NewRegistry builds a client for every supported provider that has an
// API key. Unknown names and keyless entries are skipped.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{providers: make(map[string]Provider), active: active}
	for name, cfg := range configs {
		build, ok := factories[name]
		if !ok || cfg.APIKey == "" {
			continue
		}
		r.providers[name] = build(cfg)
	}
	return r
}

// Generate runs the prompt on the active provider. The lock is not held
// during the call.
func (r *Registry) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, systemPrompt, userPrompt)
}

// Active returns the active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.active)
}

// SetActive makes name the active provider. The active provider is left
// unchanged when name is not available.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.lookup(name); err != nil {
		return err
	}
	r.active = name
	return nil
}

func (r *Registry) lookup(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnavailable, name)
	}
	return p, nil
}

// ActiveName returns the name of the active provider, configured or not.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Available lists the configured provider names in sorted order.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.providers))
}

// Register adds or replaces a provider.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// HasProvider reports whether name is configured.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}
