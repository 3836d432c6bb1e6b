// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package recovery

import (
	"strings"
	"testing"

	"autoblog/internal/apperr"
	"autoblog/internal/secret"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

var testPool = []string{
	"amber falcon", "quiet river", "copper lantern", "velvet storm",
	"silent orchard", "iron meadow", "paper comet", "hollow pine",
	"crimson tide", "glass harbor",
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	codec, err := secret.NewCodec(testKey)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	g, err := NewGenerator(testPool, codec)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func TestGenerateDistinct(t *testing.T) {
	g := newTestGenerator(t)

	for run := 0; run < 50; run++ {
		sealed, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(sealed) != PhraseCount {
			t.Fatalf("len: got %d, want %d", len(sealed), PhraseCount)
		}
		plain, err := g.Reveal(sealed)
		if err != nil {
			t.Fatalf("Reveal: %v", err)
		}
		seen := map[string]bool{}
		for _, p := range plain {
			if seen[p] {
				t.Fatalf("duplicate phrase %q in %v", p, plain)
			}
			seen[p] = true
		}
	}
}

func TestGenerateFreshNonces(t *testing.T) {
	g := newTestGenerator(t)
	sealed, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	ivs := map[string]bool{}
	for _, s := range sealed {
		if ivs[s.IV] {
			t.Fatal("nonce reused across phrases")
		}
		ivs[s.IV] = true
	}
}

func TestNewGeneratorSmallPool(t *testing.T) {
	codec, _ := secret.NewCodec(testKey)

	// Ten entries, but only six distinct once normalised.
	pool := []string{"a", "b", "c", "d", "e", "f", "A", " b ", "", "   "}
	_, err := NewGenerator(pool, codec)
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestParsePool(t *testing.T) {
	got := ParsePool("one|two| three ")
	if len(got) != 3 || got[2] != " three " {
		t.Errorf("ParsePool: got %q", got)
	}
}

func TestMatch(t *testing.T) {
	g := newTestGenerator(t)
	sealed, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	plain, _ := g.Reveal(sealed)

	t.Run("exact", func(t *testing.T) {
		ok, err := g.Match(sealed, plain)
		if err != nil || !ok {
			t.Errorf("Match: got (%v, %v), want (true, nil)", ok, err)
		}
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		guesses := make([]string, len(plain))
		for i, p := range plain {
			guesses[i] = "  " + strings.ToUpper(strings.ReplaceAll(p, " ", "   ")) + "\t"
		}
		ok, err := g.Match(sealed, guesses)
		if err != nil || !ok {
			t.Errorf("Match: got (%v, %v), want (true, nil)", ok, err)
		}
	})

	for pos := 0; pos < PhraseCount; pos++ {
		guesses := append([]string(nil), plain...)
		guesses[pos] = "definitely wrong"
		ok, err := g.Match(sealed, guesses)
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if ok {
			t.Errorf("mismatch at position %d accepted", pos)
		}
	}

	t.Run("order matters", func(t *testing.T) {
		swapped := append([]string(nil), plain...)
		swapped[0], swapped[1] = swapped[1], swapped[0]
		if ok, _ := g.Match(sealed, swapped); ok {
			t.Error("swapped phrases accepted")
		}
	})

	t.Run("wrong count", func(t *testing.T) {
		if ok, _ := g.Match(sealed, plain[:6]); ok {
			t.Error("six guesses accepted")
		}
	})
}
