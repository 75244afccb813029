package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoSession = errors.New("no active session")
)
