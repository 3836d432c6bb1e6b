// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package bulk imports posts from a spreadsheet of titles, running each
// title through the content pipeline and publishing the result.
package bulk

import (
	"context"
	"log/slog"
	"time"

	"autoblog/internal/metrics"
	"autoblog/internal/models"
	"autoblog/internal/posts"
)

// DefaultItemDelay spaces consecutive items to stay under provider rate
// limits.
const DefaultItemDelay = time.Second

// Composer generates and fixes up article HTML. *content.Pipeline
// satisfies it.
type Composer interface {
	Compose(ctx context.Context, title string) (string, error)
	FixUp(ctx context.Context, doc string, post models.PostData) (string, error)
}

// Publisher stores a post whose content depends on its assigned slug.
// *posts.Service satisfies it.
type Publisher interface {
	CreateWith(ctx context.Context, in posts.Input, render posts.RenderFunc) (*models.Post, error)
}

// Result summarizes a bulk run.
type Result struct {
	Processed int `json:"processedCount"`
	Total     int `json:"totalPosts"`
}

// Driver runs bulk imports.
type Driver struct {
	composer  Composer
	publisher Publisher
	delay     time.Duration
}

// NewDriver creates a driver that waits delay after each item before
// starting the next one. A zero delay disables spacing.
func NewDriver(c Composer, p Publisher, delay time.Duration) *Driver {
	if delay < 0 {
		delay = 0
	}
	return &Driver{composer: c, publisher: p, delay: delay}
}

// Run processes titles in order. A failing item is logged and skipped; the
// run stops early only when ctx is cancelled.
func (d *Driver) Run(ctx context.Context, titles []string) Result {
	res := Result{Total: len(titles)}

	for i, title := range titles {
		if i > 0 {
			if err := pause(ctx, d.delay); err != nil {
				slog.Warn("bulk import interrupted", "processed", res.Processed, "remaining", len(titles)-i, "error", err)
				break
			}
		}

		p, err := d.publish(ctx, title)
		metrics.BulkItems.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			slog.Error("bulk item failed", "index", i, "title", title, "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		res.Processed++
		slog.Info("bulk item published", "index", i, "title", title, "slug", p.Slug)
	}

	slog.Info("bulk import finished", "processed", res.Processed, "total", res.Total)
	return res
}

// pause blocks for delay or until ctx is done.
func pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (d *Driver) publish(ctx context.Context, title string) (*models.Post, error) {
	doc, err := d.composer.Compose(ctx, title)
	if err != nil {
		return nil, err
	}
	return d.publisher.CreateWith(ctx, posts.Input{Title: title, Published: true},
		func(data models.PostData) (string, error) {
			return d.composer.FixUp(ctx, doc, data)
		})
}
