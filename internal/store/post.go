// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"autoblog/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, slug, content, categories, published, image, featured_image, created_at, updated_at`

func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	var cats pq.StringArray
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &cats, &p.Published,
		&p.Image, &p.FeaturedImage, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Categories = []string(cats)
	if p.Categories == nil {
		p.Categories = []string{}
	}
	return p, nil
}

func categories(c []string) pq.StringArray {
	if c == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(c)
}

// Create inserts a post and fills in its generated ID and timestamps.
// A slug collision yields ErrSlugTaken.
func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, categories, published, image, featured_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Slug, p.Content, categories(p.Categories), p.Published, p.Image, p.FeaturedImage,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// List returns posts newest first.
func (s *PostStore) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// Update writes every mutable field of p and refreshes UpdatedAt.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = $1, slug = $2, content = $3, categories = $4, published = $5,
		    image = $6, featured_image = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`, p.Title, p.Slug, p.Content, categories(p.Categories), p.Published, p.Image, p.FeaturedImage, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// UpdateContent replaces only the HTML body of a post.
func (s *PostStore) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET content = $1, updated_at = NOW() WHERE id = $2
	`, content, id)
	if err != nil {
		return fmt.Errorf("update post content: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes a post by ID.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return expectOneRow(res)
}

// SlugsLike returns every slug equal to base or of the form base-*,
// ignoring the post identified by excludeID (uuid.Nil excludes nothing).
func (s *PostStore) SlugsLike(ctx context.Context, base string, excludeID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug FROM posts
		WHERE (slug = $1 OR slug LIKE $2) AND id <> $3
	`, base, likeEscape(base)+"-%", excludeID)
	if err != nil {
		return nil, fmt.Errorf("list colliding slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var sl string
		if err := rows.Scan(&sl); err != nil {
			return nil, fmt.Errorf("scan slug: %w", err)
		}
		slugs = append(slugs, sl)
	}
	return slugs, rows.Err()
}

func likeEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
