// Package repository defines the account store interface and errors.
package repository

import (
	"context"

	"github.com/okian/focusforge/internal/domain/progress"
)

// Account is one registered user as the store reports it.
type Account struct {
	Username string
	Snapshot progress.Snapshot
}

// Store provides durable access to accounts and their progress snapshots.
type Store interface {
	// CreateAccount registers username with a fresh zero snapshot.
	// Returns ErrDuplicate when the username is taken.
	CreateAccount(ctx context.Context, username, password string) error

	// Authenticate verifies credentials and returns the account.
	// Returns ErrInvalidCredentials on unknown user or bad password.
	Authenticate(ctx context.Context, username, password string) (Account, error)

	// LoadSnapshot returns the stored snapshot for username.
	// Returns ErrNotFound for unknown users.
	LoadSnapshot(ctx context.Context, username string) (progress.Snapshot, error)

	// SaveSnapshot overwrites the stored snapshot wholesale. Idempotent:
	// repeated calls with the same snapshot are safe.
	// Returns ErrNotFound for unknown users.
	SaveSnapshot(ctx context.Context, username string, snap progress.Snapshot) error

	// Count returns the number of registered accounts.
	Count(ctx context.Context) int

	// Close releases the store's resources.
	Close() error
}
