package tracker

import (
	"context"

	"github.com/okian/focusforge/internal/domain/progress"
)

// Session abstracts who the current user is. The remote client satisfies
// this directly; tests inject fakes. Login and Resume supply the
// authoritative snapshot that replaces the model wholesale.
type Session interface {
	// Register creates an account. Fails with an authentication error on
	// invalid input or a duplicate identity.
	Register(ctx context.Context, username, password string) error

	// Login authenticates and returns the server-held snapshot.
	Login(ctx context.Context, username, password string) (progress.Snapshot, error)

	// Resume attempts to pick up an existing session, e.g. on startup.
	Resume(ctx context.Context) (string, progress.Snapshot, error)

	// Logout ends the session. Failure must not block local teardown.
	Logout(ctx context.Context) error
}
