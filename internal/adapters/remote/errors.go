package remote

import "errors"

// Sentinel kinds for remote errors. Authentication failures are surfaced
// to the user; anything else is a persistence failure the gateway swallows.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidInput       = errors.New("username and password required")
	ErrNoSession          = errors.New("no active session")
	ErrUnavailable        = errors.New("server unavailable")
)
