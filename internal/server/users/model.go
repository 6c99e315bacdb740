package users

import "time"

// User is a sync account. The server never sees an email address or a
// password: UserHash identifies the account and VerificationToken is the
// double-hashed credential presented on every request.
type User struct {
	ID                string
	UserHash          string
	VerificationToken string
	FailedAttempts    int
	LockedUntil       time.Time
	CreatedAt         time.Time
}

// Device records one client installation attached to an account. Purely
// informational; any device holding valid credentials may sync.
type Device struct {
	ID         string
	UserID     string
	Name       string
	LastSeenAt time.Time
}
