// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog article. Content holds the HTML body, including any
// SEO head tags the generation pipeline injected.
type Post struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	Categories    []string  `json:"categories"`
	Published     bool      `json:"published"`
	Image         string    `json:"image,omitempty"`
	FeaturedImage string    `json:"featuredImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PostData is the subset of a post the SEO fix-up needs. It is also the
// shape clients send alongside HTML to the fix-up endpoints.
type PostData struct {
	Title         string    `json:"title,omitempty"`
	Slug          string    `json:"slug"`
	FeaturedImage string    `json:"featuredImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Data returns the fix-up view of the post.
func (p *Post) Data() PostData {
	return PostData{
		Title:         p.Title,
		Slug:          p.Slug,
		FeaturedImage: p.FeaturedImage,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
