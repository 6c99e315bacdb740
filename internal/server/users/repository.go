package users

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByUserHash(ctx context.Context, userHash string) (*User, error)
	UpdateLockState(ctx context.Context, userID string, failedAttempts int, lockedUntil time.Time) error
	TouchDevice(ctx context.Context, device *Device) error
}
