// Package auth verifies staff credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexedwards/argon2id"

	"room-reservation/internal/storage"
)

// ErrInvalidCredentials covers an unknown user, a wrong password and a
// non-staff account alike so callers cannot tell them apart.
var ErrInvalidCredentials = errors.New("invalid credentials or user without staff permissions")

// Store is the staff credential lookup.
type Store interface {
	GetStaffUser(ctx context.Context, username string) (*storage.StaffUser, error)
}

type Authenticator struct {
	store  Store
	logger *slog.Logger
}

func NewAuthenticator(store Store) *Authenticator {
	return &Authenticator{
		store:  store,
		logger: slog.With("component", "auth"),
	}
}

// Authenticate returns the staff user for valid credentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*storage.StaffUser, error) {
	user, err := a.store.GetStaffUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		a.logger.Info("Login for unknown user", "username", username)
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, fmt.Errorf("lookup staff user: %w", err)
	}

	match, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		a.logger.Warn("Unreadable password hash", "username", username, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !match {
		a.logger.Info("Wrong password", "username", username)
		return nil, ErrInvalidCredentials
	}
	if !user.IsStaff {
		a.logger.Info("Login by non-staff user", "username", username)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IsStaff reports whether username still exists with staff permissions.
func (a *Authenticator) IsStaff(ctx context.Context, username string) (bool, error) {
	user, err := a.store.GetStaffUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return user.IsStaff, nil
}

// HashPassword hashes a password with the default argon2id parameters.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}
