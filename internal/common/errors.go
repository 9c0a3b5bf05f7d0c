// Package common defines shared sentinel errors and small helpers used across
// credvault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrDuplicateUser = errors.New("username already exists")
	ErrCorruptRecord = errors.New("corrupt record")

	// Validation errors.
	ErrInvalidUsername = errors.New("username must be non-empty and alphanumeric")
	ErrInvalidPassword = errors.New("password must not be empty")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownUser        = errors.New("unknown user")
	ErrWrongAnswer        = errors.New("wrong security answer")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidState       = errors.New("operation not allowed in current session state")

	// Ciphertext was tampered with or sealed under a different key.
	ErrIntegrity = errors.New("ciphertext integrity check failed")

	// Backup errors. Both are routine and recoverable by retrying later.
	ErrOffline    = errors.New("remote store unavailable")
	ErrNoSnapshot = errors.New("no backup snapshot")
)
