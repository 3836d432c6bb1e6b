// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package recovery issues and checks the seven recovery phrases that let an
// admin reset a forgotten password. Phrases are drawn from a configured pool
// and stored encrypted; plaintext leaves this package only at issuance.
package recovery

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"

	"autoblog/internal/apperr"
	"autoblog/internal/secret"
)

// PhraseCount is the number of phrases issued per account.
const PhraseCount = 7

// Generator draws phrases from a fixed pool. It is read-only after
// construction and safe for concurrent use.
type Generator struct {
	pool  []string
	codec *secret.Codec
}

// NewGenerator normalises the pool (trimmed, empty and case-insensitive
// duplicate entries removed) and refuses pools that cannot yield
// PhraseCount distinct phrases.
func NewGenerator(pool []string, codec *secret.Codec) (*Generator, error) {
	if codec == nil {
		return nil, apperr.Configuration("recovery generator requires a codec", nil)
	}

	seen := make(map[string]bool, len(pool))
	clean := make([]string, 0, len(pool))
	for _, p := range pool {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := Normalize(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		clean = append(clean, p)
	}

	if len(clean) < PhraseCount {
		return nil, apperr.Configuration(
			fmt.Sprintf("RECOVERY_PHRASES must contain at least %d distinct phrases, got %d", PhraseCount, len(clean)), nil)
	}
	return &Generator{pool: clean, codec: codec}, nil
}

// ParsePool splits the pipe-delimited RECOVERY_PHRASES value.
func ParsePool(raw string) []string {
	return strings.Split(raw, "|")
}

// PoolSize returns the number of distinct phrases available.
func (g *Generator) PoolSize() int { return len(g.pool) }

// Generate picks PhraseCount distinct phrases uniformly at random and
// encrypts each one under its own nonce.
func (g *Generator) Generate() ([]secret.Sealed, error) {
	idx, err := sample(len(g.pool), PhraseCount)
	if err != nil {
		return nil, err
	}

	sealed := make([]secret.Sealed, 0, PhraseCount)
	for _, i := range idx {
		s, err := g.codec.Encrypt(g.pool[i])
		if err != nil {
			return nil, fmt.Errorf("encrypt recovery phrase: %w", err)
		}
		sealed = append(sealed, s)
	}
	return sealed, nil
}

// Reveal decrypts stored phrases for one-time display.
func (g *Generator) Reveal(sealed []secret.Sealed) ([]string, error) {
	out := make([]string, 0, len(sealed))
	for _, s := range sealed {
		p, err := g.codec.Open(s)
		if err != nil {
			return nil, fmt.Errorf("decrypt recovery phrase: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Match reports whether every guess equals the stored phrase at the same
// position, ignoring case and surrounding or repeated whitespace. All
// positions are compared even after a mismatch.
func (g *Generator) Match(stored []secret.Sealed, guesses []string) (bool, error) {
	if len(stored) != PhraseCount {
		return false, fmt.Errorf("stored recovery phrases: want %d, got %d", PhraseCount, len(stored))
	}
	plain, err := g.Reveal(stored)
	if err != nil {
		return false, err
	}
	if len(guesses) != PhraseCount {
		return false, nil
	}

	ok := 1
	for i := range plain {
		ok &= subtle.ConstantTimeCompare([]byte(Normalize(plain[i])), []byte(Normalize(guesses[i])))
	}
	return ok == 1, nil
}

// Normalize lowercases a phrase and collapses its whitespace.
func Normalize(p string) string {
	return strings.Join(strings.Fields(strings.ToLower(p)), " ")
}

// sample returns k distinct indices from [0, n) using a partial
// Fisher-Yates shuffle over crypto/rand.
func sample(n, k int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(n-i)))
		if err != nil {
			return nil, fmt.Errorf("random index: %w", err)
		}
		r := i + int(j.Int64())
		perm[i], perm[r] = perm[r], perm[i]
	}
	return perm[:k], nil
}
