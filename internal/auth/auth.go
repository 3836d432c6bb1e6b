// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth manages the admin credential lifecycle: bootstrap and
// verified registration, login, password reset, phrase-based recovery and
// account removal. Session tokens are issued separately by package session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"autoblog/internal/apperr"
	"autoblog/internal/metrics"
	"autoblog/internal/models"
	"autoblog/internal/recovery"
	"autoblog/internal/secret"
	"autoblog/internal/store"
)

// User-facing failure messages.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgVerificationNeeded = "Admin verification required"
	msgInvalidVerifier    = "Invalid admin credentials"
	msgUsernameTaken      = "Username already exists"
	msgInvalidPhrases     = "Invalid recovery phrases"
	msgLastAdmin          = "Cannot remove last admin"
	msgWrongPassword      = "Current password is incorrect"
	msgAdminNotFound      = "Admin not found"
	msgPasswordTooLong    = "Password is too long"
)

// CredentialStore is the persistence the lifecycle needs. *store.AdminStore
// implements it.
type CredentialStore interface {
	Count(ctx context.Context) (int, error)
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	Create(ctx context.Context, username, passwordHash string, phrases []secret.Sealed) (*models.Admin, error)
	CreateFirst(ctx context.Context, username, passwordHash string, phrases []secret.Sealed) (*models.Admin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	RotateCredentials(ctx context.Context, id uuid.UUID, passwordHash string, prev, next []secret.Sealed) error
	DeleteUnlessLast(ctx context.Context, id uuid.UUID) error
}

// Credentials is a username and password pair.
type Credentials struct {
	Username string
	Password string
}

// RegisterInput describes a new admin. Verification must identify an
// existing admin unless no admin exists yet.
type RegisterInput struct {
	Username     string
	Password     string
	Verification *Credentials
}

// Registration is the result of a successful Register. Phrases holds the
// plaintext recovery phrases; they are not retrievable afterwards.
type Registration struct {
	Admin      *models.Admin
	Phrases    []string
	FirstAdmin bool
}

// Service implements the admin lifecycle.
type Service struct {
	store   CredentialStore
	phrases *recovery.Generator
	cost    int
	dummy   []byte
}

// NewService builds a Service. A zero cost selects bcrypt.DefaultCost.
func NewService(cs CredentialStore, phrases *recovery.Generator, cost int) (*Service, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("timing-equaliser"), cost)
	if err != nil {
		return nil, fmt.Errorf("auth dummy hash: %w", err)
	}
	return &Service{store: cs, phrases: phrases, cost: cost, dummy: dummy}, nil
}

// AdminCount returns the number of admin accounts.
func (s *Service) AdminCount(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("count admins", err)
	}
	return n, nil
}

// Register creates an admin. With no admins present the account is created
// without verification; otherwise in.Verification must match an existing
// admin. A bootstrap that loses a race to another bootstrap is treated as a
// verified registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (reg *Registration, err error) {
	defer func() { metrics.AuthEvents.WithLabelValues("register", metrics.Result(err)).Inc() }()

	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, apperr.Internal("count admins", err)
	}

	if n == 0 {
		reg, err := s.create(ctx, in, true)
		if !errors.Is(err, store.ErrAdminsExist) {
			return reg, err
		}
		slog.Info("bootstrap registration lost race, requiring verification", "username", in.Username)
	}

	if in.Verification == nil {
		return nil, apperr.Validation(msgVerificationNeeded)
	}
	if _, err := s.Verify(ctx, *in.Verification); err != nil {
		if apperr.Is(err, apperr.KindAuth) {
			return nil, apperr.Auth(msgInvalidVerifier)
		}
		return nil, err
	}

	existing, err := s.store.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, apperr.Internal("find admin", err)
	}
	if existing != nil {
		return nil, apperr.Validation(msgUsernameTaken)
	}

	return s.create(ctx, in, false)
}

func (s *Service) create(ctx context.Context, in RegisterInput, first bool) (*Registration, error) {
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	sealed, err := s.phrases.Generate()
	if err != nil {
		return nil, apperr.Internal("generate recovery phrases", err)
	}
	plain, err := s.phrases.Reveal(sealed)
	if err != nil {
		return nil, apperr.Internal("reveal recovery phrases", err)
	}

	var admin *models.Admin
	if first {
		admin, err = s.store.CreateFirst(ctx, in.Username, hash, sealed)
	} else {
		admin, err = s.store.Create(ctx, in.Username, hash, sealed)
	}
	switch {
	case errors.Is(err, store.ErrAdminsExist):
		return nil, err
	case errors.Is(err, store.ErrUsernameTaken):
		return nil, apperr.Validation(msgUsernameTaken)
	case err != nil:
		return nil, apperr.Internal("create admin", err)
	}

	slog.Info("admin registered", "username", admin.Username, "first_admin", first)
	return &Registration{Admin: admin, Phrases: plain, FirstAdmin: first}, nil
}

// Verify checks a username and password. Unknown users and wrong passwords
// produce the same error, and both cost one bcrypt comparison.
func (s *Service) Verify(ctx context.Context, c Credentials) (*models.Admin, error) {
	admin, err := s.store.FindByUsername(ctx, c.Username)
	if err != nil {
		return nil, apperr.Internal("find admin", err)
	}
	if admin == nil {
		bcrypt.CompareHashAndPassword(s.dummy, []byte(c.Password))
		return nil, apperr.Auth(msgInvalidCredentials)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(c.Password)) != nil {
		return nil, apperr.Auth(msgInvalidCredentials)
	}
	return admin, nil
}

// Login verifies credentials for a session. The caller issues the token.
func (s *Service) Login(ctx context.Context, c Credentials) (admin *models.Admin, err error) {
	defer func() { metrics.AuthEvents.WithLabelValues("login", metrics.Result(err)).Inc() }()

	admin, err = s.Verify(ctx, c)
	if err != nil {
		return nil, err
	}
	slog.Info("admin logged in", "username", admin.Username)
	return admin, nil
}

// ResetPassword changes the password of an authenticated admin after
// checking the current one.
func (s *Service) ResetPassword(ctx context.Context, username, current, next string) (err error) {
	defer func() { metrics.AuthEvents.WithLabelValues("reset_password", metrics.Result(err)).Inc() }()

	admin, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return apperr.Internal("find admin", err)
	}
	if admin == nil {
		return apperr.NotFound(msgAdminNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(current)) != nil {
		return apperr.Auth(msgWrongPassword)
	}

	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, admin.ID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(msgAdminNotFound)
		}
		return apperr.Internal("update password", err)
	}

	slog.Info("admin password reset", "username", username)
	return nil
}

// Recover resets a forgotten password. All seven guesses must match the
// stored phrases in order. On success the password and every phrase are
// rotated in one write and the new phrases are returned. The write only
// applies while the matched phrases are still stored, so one phrase set
// recovers at most once.
func (s *Service) Recover(ctx context.Context, username string, guesses []string, next string) (phrases []string, err error) {
	defer func() { metrics.AuthEvents.WithLabelValues("recover", metrics.Result(err)).Inc() }()

	admin, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Internal("find admin", err)
	}
	if admin == nil {
		return nil, apperr.Auth(msgInvalidPhrases)
	}

	ok, err := s.phrases.Match(admin.RecoveryPhrases, guesses)
	if err != nil {
		return nil, apperr.Internal("match recovery phrases", err)
	}
	if !ok {
		slog.Warn("recovery phrase mismatch", "username", username)
		return nil, apperr.Auth(msgInvalidPhrases)
	}

	hash, err := s.hash(next)
	if err != nil {
		return nil, err
	}
	sealed, err := s.phrases.Generate()
	if err != nil {
		return nil, apperr.Internal("generate recovery phrases", err)
	}
	plain, err := s.phrases.Reveal(sealed)
	if err != nil {
		return nil, apperr.Internal("reveal recovery phrases", err)
	}

	if err := s.store.RotateCredentials(ctx, admin.ID, hash, admin.RecoveryPhrases, sealed); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Auth(msgInvalidPhrases)
		}
		return nil, apperr.Internal("rotate credentials", err)
	}

	slog.Info("admin password recovered", "username", username)
	return plain, nil
}

// Remove deletes the admin identified by c after verifying its password.
// The last remaining admin cannot be removed.
func (s *Service) Remove(ctx context.Context, c Credentials) (err error) {
	defer func() { metrics.AuthEvents.WithLabelValues("remove", metrics.Result(err)).Inc() }()

	admin, err := s.Verify(ctx, c)
	if err != nil {
		return err
	}

	switch err := s.store.DeleteUnlessLast(ctx, admin.ID); {
	case errors.Is(err, store.ErrLastAdmin):
		return apperr.Validation(msgLastAdmin)
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(msgAdminNotFound)
	case err != nil:
		return apperr.Internal("delete admin", err)
	}

	slog.Info("admin removed", "username", admin.Username)
	return nil
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Validation(msgPasswordTooLong)
	}
	if err != nil {
		return "", apperr.Internal("hash password", err)
	}
	return string(h), nil
}
