// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

// TestGenerate exercises the slug generator with typical titles, special
// characters, unicode and edge cases.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{"simple two words", "Hello World", "hello-world"},
		{"title with year", "Electric Cars 2024", "electric-cars-2024"},
		{"single word", "GoLang", "golang"},

		// --- Special characters ---
		{"punctuation marks", "Hello, World! How's it going?", "hello-world-hows-it-going"},
		{"ampersand becomes and", "Rock & Roll @ the Arena", "rock-and-roll-the-arena"},
		{"parentheses and brackets", "Version (2.0) [Beta]", "version-20-beta"},
		{"slashes and pipes", "Frontend/Backend | Full Stack", "frontendbackend-full-stack"},
		{"hash and dollar", "Issue #42 costs $100", "issue-42-costs-100"},

		// --- Unicode ---
		{"french accents stripped", "Crème Brûlée à la carte", "creme-brulee-a-la-carte"},
		{"german umlauts stripped", "Über die Brücke", "uber-die-brucke"},
		{"spanish tilde", "Año Nuevo en España", "ano-nuevo-en-espana"},
		{"emoji stripped", "Hello 🌍 World", "hello-world"},
		{"non-latin only falls back", "日本語", "post"},

		// --- Whitespace handling ---
		{"leading and trailing spaces", "  hello world  ", "hello-world"},
		{"multiple consecutive spaces collapsed", "hello    world", "hello-world"},
		{"tabs become hyphens", "hello\tworld", "hello-world"},
		{"newlines become hyphens", "hello\nworld", "hello-world"},
		{"underscores become hyphens", "snake_case_title", "snake-case-title"},

		// --- Hyphen handling ---
		{"leading hyphens", "---hello world", "hello-world"},
		{"multiple hyphens between words", "hello---world", "hello-world"},
		{"single hyphen preserved", "well-known fact", "well-known-fact"},
		{"hyphens and spaces mixed", "  --hello -- world--  ", "hello-world"},

		// --- Edge cases ---
		{"empty string", "", "post"},
		{"only spaces", "     ", "post"},
		{"only hyphens", "-----", "post"},
		{"only special characters", "!@#$%^*()", "post"},
		{"lone ampersand", "&", "and"},
		{"single character", "A", "a"},
		{"date-like string", "2026-02-25", "2026-02-25"},

		// --- Realistic blog titles ---
		{"tech blog title", "How to Deploy Go Apps on Kubernetes (2026 Edition)", "how-to-deploy-go-apps-on-kubernetes-2026-edition"},
		{"colon separated title", "Go: The Complete Developer Guide", "go-the-complete-developer-guide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"hello-world", "my-blog-post-2026", "a", "123", "electric-cars-2024-1"} {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

// TestGenerate_ConsistentCase verifies that slugs are always lowercase
// regardless of input casing.
func TestGenerate_ConsistentCase(t *testing.T) {
	for _, input := range []string{"HELLO WORLD", "Hello World", "hElLo WoRlD"} {
		t.Run(input, func(t *testing.T) {
			if got := Generate(input); got != "hello-world" {
				t.Errorf("Generate(%q) = %q, want %q", input, got, "hello-world")
			}
		})
	}
}
