// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Lister returns the existing slugs that equal base or start with "base-",
// skipping the post identified by excludeID.
type Lister interface {
	SlugsLike(ctx context.Context, base string, excludeID uuid.UUID) ([]string, error)
}

// Assigner derives unique slugs against the current set of posts.
type Assigner struct {
	lister Lister
}

// NewAssigner creates an Assigner backed by the given slug lister.
func NewAssigner(l Lister) *Assigner {
	return &Assigner{lister: l}
}

// Assign returns the slug for title: the base slug if it is free, otherwise
// the first free of base-1, base-2, ... The search is bounded by the number
// of colliding slugs, so it always terminates. Pass uuid.Nil for a new post.
func (a *Assigner) Assign(ctx context.Context, title string, excludeID uuid.UUID) (string, error) {
	base := Generate(title)

	existing, err := a.lister.SlugsLike(ctx, base, excludeID)
	if err != nil {
		return "", fmt.Errorf("assign slug: %w", err)
	}
	return Resolve(base, existing), nil
}

// Resolve picks the first free candidate for base given the taken slugs.
func Resolve(base string, taken []string) string {
	used := make(map[string]bool, len(taken))
	for _, s := range taken {
		used[s] = true
	}
	if !used[base] {
		return base
	}
	// With n taken slugs at most n candidates can collide, so one of
	// base-1..base-n is free.
	for i := 1; i <= len(taken); i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !used[candidate] {
			return candidate
		}
	}
	return base + "-" + strconv.Itoa(len(taken)+1)
}
