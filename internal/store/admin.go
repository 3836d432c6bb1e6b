// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"autoblog/internal/models"
	"autoblog/internal/secret"
)

// AdminStore handles all admin-account database operations.
type AdminStore struct {
	db *sql.DB
}

// NewAdminStore creates a new AdminStore with the given database connection.
func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

const adminColumns = `id, username, password_hash, recovery_phrases, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdmin(row rowScanner) (*models.Admin, error) {
	a := &models.Admin{}
	var phrases []byte
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &phrases, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if len(phrases) > 0 {
		if err := json.Unmarshal(phrases, &a.RecoveryPhrases); err != nil {
			return nil, fmt.Errorf("decode recovery phrases: %w", err)
		}
	}
	return a, nil
}

func encodePhrases(phrases []secret.Sealed) (string, error) {
	if phrases == nil {
		phrases = []secret.Sealed{}
	}
	b, err := json.Marshal(phrases)
	if err != nil {
		return "", fmt.Errorf("encode recovery phrases: %w", err)
	}
	return string(b), nil
}

// Count returns the number of admin accounts.
func (s *AdminStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// FindByUsername retrieves an admin by username. Returns nil if not found.
func (s *AdminStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	a, err := scanAdmin(s.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE username = $1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return a, nil
}

// Create inserts an admin. A duplicate username yields ErrUsernameTaken.
func (s *AdminStore) Create(ctx context.Context, username, passwordHash string, phrases []secret.Sealed) (*models.Admin, error) {
	enc, err := encodePhrases(phrases)
	if err != nil {
		return nil, err
	}
	a, err := scanAdmin(s.db.QueryRowContext(ctx, `
		INSERT INTO admins (username, password_hash, recovery_phrases)
		VALUES ($1, $2, $3)
		RETURNING `+adminColumns,
		username, passwordHash, enc))
	if isUniqueViolation(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

// CreateFirst inserts the bootstrap admin. The admin count is checked under
// an advisory lock in the same transaction as the insert, so two concurrent
// bootstraps cannot both succeed. Returns ErrAdminsExist if any admin is
// already present.
func (s *AdminStore) CreateFirst(ctx context.Context, username, passwordHash string, phrases []secret.Sealed) (*models.Admin, error) {
	enc, err := encodePhrases(phrases)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bootstrap: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, adminCountLock); err != nil {
		return nil, fmt.Errorf("lock admins: %w", err)
	}

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil, ErrAdminsExist
	}

	a, err := scanAdmin(tx.QueryRowContext(ctx, `
		INSERT INTO admins (username, password_hash, recovery_phrases)
		VALUES ($1, $2, $3)
		RETURNING `+adminColumns,
		username, passwordHash, enc))
	if isUniqueViolation(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create first admin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bootstrap: %w", err)
	}
	return a, nil
}

// UpdatePassword replaces the password hash of an admin.
func (s *AdminStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE admins SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return expectOneRow(res)
}

// RotateCredentials replaces the password hash and every recovery phrase in
// a single statement, so no reader sees one rotated without the other. The
// update applies only while the stored phrases still equal prev; otherwise
// it returns ErrNotFound.
func (s *AdminStore) RotateCredentials(ctx context.Context, id uuid.UUID, passwordHash string, prev, next []secret.Sealed) error {
	enc, err := encodePhrases(next)
	if err != nil {
		return err
	}
	old, err := encodePhrases(prev)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE admins
		SET password_hash = $1, recovery_phrases = $2, updated_at = NOW()
		WHERE id = $3 AND recovery_phrases = $4::jsonb
	`, passwordHash, enc, id, old)
	if err != nil {
		return fmt.Errorf("rotate admin credentials: %w", err)
	}
	return expectOneRow(res)
}

// DeleteUnlessLast removes an admin unless it is the only one left. The
// count check and the delete share a transaction and an advisory lock.
func (s *AdminStore) DeleteUnlessLast(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin admin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, adminCountLock); err != nil {
		return fmt.Errorf("lock admins: %w", err)
	}

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n <= 1 {
		return ErrLastAdmin
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit admin delete: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
