// Package common defines shared constants and sentinel errors used across
// the client and server layers of Inkwell. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal    = errors.New("internal error")
	ErrUnavailable = errors.New("server unavailable")

	// Crypto errors. Decryption deliberately signals a single failure kind:
	// a wrong passphrase and corrupted ciphertext are indistinguishable.
	ErrDecryptionFailed = errors.New("decryption failed")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrUserNotFound       = errors.New("user not found")

	// Sync preconditions.
	ErrSyncDisabled  = errors.New("sync not configured")
	ErrSessionLocked = errors.New("session locked, passphrase required")

	// Import errors.
	ErrPasswordRequired = errors.New("password required for encrypted file")
)
