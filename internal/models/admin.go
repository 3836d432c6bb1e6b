// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"

	"autoblog/internal/secret"
)

// Admin is a dashboard account. Every account has full rights; there is
// no role hierarchy.
type Admin struct {
	ID              uuid.UUID       `json:"id"`
	Username        string          `json:"username"`
	PasswordHash    string          `json:"-"` // Never serialize the hash
	RecoveryPhrases []secret.Sealed `json:"-"` // Encrypted; revealed only at issuance
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
