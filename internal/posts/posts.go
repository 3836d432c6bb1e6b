// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package posts implements post CRUD on top of the post store, assigning
// unique slugs from titles.
package posts

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"autoblog/internal/apperr"
	"autoblog/internal/models"
	"autoblog/internal/slug"
	"autoblog/internal/store"
)

// slugAttempts bounds retries when a concurrent insert takes the slug
// between assignment and write.
const slugAttempts = 3

// Store is the persistence the service needs. *store.PostStore satisfies it.
type Store interface {
	slug.Lister
	Create(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	Update(ctx context.Context, p *models.Post) error
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImageRemover deletes a featured image from object storage when the URL
// belongs to it. *storage.Client satisfies it.
type ImageRemover interface {
	RemoveURL(ctx context.Context, rawURL string) (bool, error)
}

// Input is the writable part of a post.
type Input struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Categories    []string `json:"categories"`
	Published     bool     `json:"published"`
	Image         string   `json:"image"`
	FeaturedImage string   `json:"featuredImage"`
}

// RenderFunc produces the final content once the post's slug is known.
type RenderFunc func(data models.PostData) (string, error)

// Service manages posts.
type Service struct {
	store    Store
	assigner *slug.Assigner
	images   ImageRemover
	now      func() time.Time
}

// NewService creates a post service. images may be nil when object storage
// is not configured.
func NewService(s Store, images ImageRemover) *Service {
	return &Service{
		store:    s,
		assigner: slug.NewAssigner(s),
		images:   images,
		now:      time.Now,
	}
}

// Get returns a post by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load post", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}
	return p, nil
}

// List returns a page of posts, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Internal("list posts", err)
	}
	return list, nil
}

// Create stores a new post with a slug derived from its title.
func (s *Service) Create(ctx context.Context, in Input) (*models.Post, error) {
	return s.CreateWith(ctx, in, nil)
}

// CreateWith stores a new post, calling render with the assigned slug to
// produce the stored content. If the slug is taken by a concurrent writer
// the slug is reassigned and render runs again.
func (s *Service) CreateWith(ctx context.Context, in Input, render RenderFunc) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.Validation("Title is required")
	}

	for attempt := 1; ; attempt++ {
		sl, err := s.assigner.Assign(ctx, in.Title, uuid.Nil)
		if err != nil {
			return nil, apperr.Internal("assign slug", err)
		}

		p := &models.Post{
			Title:         in.Title,
			Slug:          sl,
			Content:       in.Content,
			Categories:    in.Categories,
			Published:     in.Published,
			Image:         in.Image,
			FeaturedImage: in.FeaturedImage,
		}
		if render != nil {
			now := s.now().UTC()
			p.CreatedAt, p.UpdatedAt = now, now
			if p.Content, err = render(p.Data()); err != nil {
				return nil, err
			}
		}

		err = s.store.Create(ctx, p)
		if errors.Is(err, store.ErrSlugTaken) && attempt < slugAttempts {
			slog.Info("slug taken concurrently, retrying", "slug", sl, "attempt", attempt)
			continue
		}
		if errors.Is(err, store.ErrSlugTaken) {
			return nil, apperr.Validation("Could not assign a unique slug")
		}
		if err != nil {
			return nil, apperr.Internal("create post", err)
		}
		return p, nil
	}
}

// Update replaces a post's writable fields. The slug is kept when the title
// is unchanged, otherwise it is reassigned excluding the post itself.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*models.Post, error) {
	return s.UpdateWith(ctx, id, in, nil)
}

// UpdateWith is Update with content produced by render once the slug is
// settled.
func (s *Service) UpdateWith(ctx context.Context, id uuid.UUID, in Input, render RenderFunc) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.Validation("Title is required")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		if p.Title != in.Title || p.Slug == "" {
			sl, err := s.assigner.Assign(ctx, in.Title, p.ID)
			if err != nil {
				return nil, apperr.Internal("assign slug", err)
			}
			p.Slug = sl
		}
		p.Title = in.Title
		p.Content = in.Content
		p.Categories = in.Categories
		p.Published = in.Published
		p.Image = in.Image
		p.FeaturedImage = in.FeaturedImage
		if render != nil {
			p.UpdatedAt = s.now().UTC()
			if p.Content, err = render(p.Data()); err != nil {
				return nil, err
			}
		}

		err = s.store.Update(ctx, p)
		switch {
		case errors.Is(err, store.ErrSlugTaken) && attempt < slugAttempts:
			p.Slug = ""
			continue
		case errors.Is(err, store.ErrSlugTaken):
			return nil, apperr.Validation("Could not assign a unique slug")
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound("Post not found")
		case err != nil:
			return nil, apperr.Internal("update post", err)
		}
		return p, nil
	}
}

// UpdateContent replaces only the content of a post.
func (s *Service) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	err := s.store.UpdateContent(ctx, id, content)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Post not found")
	}
	if err != nil {
		return apperr.Internal("update post content", err)
	}
	return nil
}

// Delete removes a post and, best effort, its featured image.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Post not found")
	}
	if err != nil {
		return apperr.Internal("delete post", err)
	}

	if s.images != nil && p.FeaturedImage != "" {
		if _, err := s.images.RemoveURL(ctx, p.FeaturedImage); err != nil {
			slog.Warn("featured image cleanup failed", "post_id", id, "error", err)
		}
	}
	return nil
}
