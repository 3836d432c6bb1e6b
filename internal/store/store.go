// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all autoblog
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
// Lookups return (nil, nil) when the row does not exist.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by writes that target a missing row.
	ErrNotFound = errors.New("store: not found")

	// ErrUsernameTaken is returned when an admin username already exists.
	ErrUsernameTaken = errors.New("store: username already exists")

	// ErrAdminsExist is returned by CreateFirst when an admin was created
	// in the meantime.
	ErrAdminsExist = errors.New("store: admins already exist")

	// ErrLastAdmin is returned when a delete would leave no admins.
	ErrLastAdmin = errors.New("store: cannot remove last admin")

	// ErrSlugTaken is returned when a post slug collides on write.
	ErrSlugTaken = errors.New("store: slug already exists")
)

// adminCountLock is the pg_advisory_xact_lock key that serialises
// count-sensitive admin writes.
const adminCountLock int64 = 0x61646d696e73 // "admins"

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
