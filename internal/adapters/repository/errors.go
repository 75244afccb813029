package repository

import "errors"

// Sentinel kinds for account store errors.
var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid username or password")
)
