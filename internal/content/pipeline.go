// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content turns a post title into publishable article HTML: an AI
// draft, a sanitizing pass, an optional SEO enrichment pass and a final
// fix-up that points head metadata at the post's real URL.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"autoblog/internal/apperr"
	"autoblog/internal/metrics"
	"autoblog/internal/models"
)

// DefaultStageTimeout bounds a single completion request.
const DefaultStageTimeout = 60 * time.Second

const systemPrompt = "You are an expert in blog post writing and SEO optimization."

// Generator produces a completion for a system and user prompt.
// *ai.Registry satisfies it.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SettingsSource returns the site settings used to build absolute URLs and
// the publisher block.
type SettingsSource interface {
	Get(ctx context.Context) (*models.Settings, error)
}

// Config tunes the pipeline.
type Config struct {
	// Author replaces the placeholder author when settings have none.
	Author string
	// SiteURL is used when settings have no site URL.
	SiteURL string
	// StageTimeout bounds each completion request. Zero means
	// DefaultStageTimeout.
	StageTimeout time.Duration
	// Enrich enables the second, SEO-focused completion pass in Compose.
	Enrich bool
}

// Pipeline runs the content generation stages.
type Pipeline struct {
	gen      Generator
	settings SettingsSource
	cfg      Config
	now      func() time.Time
}

// NewPipeline creates a pipeline backed by the given completion service and
// settings source.
func NewPipeline(gen Generator, settings SettingsSource, cfg Config) *Pipeline {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = DefaultStageTimeout
	}
	return &Pipeline{gen: gen, settings: settings, cfg: cfg, now: time.Now}
}

// Complete sends a free-form prompt to the completion service. An error or
// an empty completion is an upstream error.
func (p *Pipeline) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.Validation("Prompt is required")
	}
	return p.complete(ctx, "completion", prompt)
}

// Draft asks the completion service for a long-form article about title.
func (p *Pipeline) Draft(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation("Title is required")
	}
	out, err := p.complete(ctx, "draft", draftPrompt(title))
	if err != nil {
		return "", err
	}
	return Sanitize(out, ""), nil
}

// Clean sanitizes doc, replacing the placeholder author with the
// configured one.
func (p *Pipeline) Clean(ctx context.Context, doc string) string {
	start := time.Now()
	out := Sanitize(doc, p.author(ctx))
	metrics.ObserveStage("sanitize", start, nil)
	return out
}

// Optimize runs the SEO enrichment pass over doc and then fixes up the
// resulting metadata for post.
func (p *Pipeline) Optimize(ctx context.Context, doc string, post models.PostData) (string, error) {
	enriched, err := p.enrich(ctx, doc)
	if err != nil {
		return "", err
	}
	return p.FixUp(ctx, enriched, post)
}

// Compose produces sanitized article HTML for title. The result still
// carries whatever URLs the model invented; callers run FixUp once the
// post's slug is known.
func (p *Pipeline) Compose(ctx context.Context, title string) (string, error) {
	draft, err := p.Draft(ctx, title)
	if err != nil {
		return "", err
	}
	doc := p.Clean(ctx, draft)
	if !p.cfg.Enrich {
		return doc, nil
	}
	return p.enrich(ctx, doc)
}

// FixUp rewrites doc's og:url, og:image, canonical link and JSON-LD to
// match post and the current site settings. dateModified is the render
// time, whatever post.UpdatedAt says. Malformed JSON-LD is logged and left
// untouched.
func (p *Pipeline) FixUp(ctx context.Context, doc string, post models.PostData) (out string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStage("fixup", start, err) }()

	if strings.TrimSpace(doc) == "" || post.Slug == "" {
		return "", apperr.Validation("Missing required fields")
	}
	site, err := p.site(ctx)
	if err != nil {
		return "", err
	}

	post.UpdatedAt = p.now()
	out, warnings := FixSEO(doc, post, site)
	for _, w := range warnings {
		slog.Warn("json-ld block left unchanged", "slug", post.Slug, "error", w)
	}
	return out, nil
}

func (p *Pipeline) enrich(ctx context.Context, doc string) (string, error) {
	out, err := p.complete(ctx, "enrich", optimizePrompt(doc))
	if err != nil {
		return "", err
	}
	return p.Clean(ctx, out), nil
}

func (p *Pipeline) complete(ctx context.Context, stage, prompt string) (out string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStage(stage, start, err) }()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()

	out, err = p.gen.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return "", apperr.Upstream(fmt.Sprintf("%s failed", stage), err)
	}
	if strings.TrimSpace(out) == "" {
		return "", apperr.Upstream("No content returned by the completion service", nil)
	}
	return out, nil
}

func (p *Pipeline) site(ctx context.Context) (models.Settings, error) {
	s, err := p.settings.Get(ctx)
	if err != nil {
		return models.Settings{}, apperr.Internal("load settings", err)
	}
	site := *s
	if strings.TrimSpace(site.SiteURL) == "" {
		site.SiteURL = p.cfg.SiteURL
	}
	return site, nil
}

func (p *Pipeline) author(ctx context.Context) string {
	s, err := p.settings.Get(ctx)
	if err != nil {
		slog.Warn("settings unavailable, using default author", "error", err)
		return p.cfg.Author
	}
	if name := strings.TrimSpace(s.AuthorName); name != "" {
		return name
	}
	return p.cfg.Author
}

func draftPrompt(title string) string {
	return fmt.Sprintf("Write a detailed article about %q. "+
		"The article must be SEO optimized, well structured and around 1500 words. "+
		"Return the article as HTML.", title)
}

func optimizePrompt(doc string) string {
	return "Optimize the following HTML content for SEO best practices:\n" +
		"- add or improve meta tags (title, description, keywords)\n" +
		"- insert a JSON-LD schema for an article or blog post\n" +
		"- add Open Graph tags\n" +
		"- improve existing tags\n" +
		"- link to a few credible external sources\n" +
		"Return ONLY the optimized HTML, with no extra commentary.\n\n" +
		"Here is the HTML to optimize:\n" + doc
}
