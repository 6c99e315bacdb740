package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/server/config"
)

// AuthResult is the outcome of a successful credential check.
type AuthResult struct {
	UserID string
	IsNew  bool
}

// Service owns account creation and credential checks. First contact with
// an unknown user hash creates the account; later contacts must present
// the same verification token. Repeated failures lock the account for a
// configurable window.
type Service struct {
	repo             Repository
	lockoutThreshold int
	lockoutWindow    time.Duration

	now func() time.Time
}

func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:             repo,
		lockoutThreshold: cfg.LockoutThreshold,
		lockoutWindow:    cfg.LockoutWindow,
		now:              time.Now,
	}
}

func (s *Service) checkToken(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// Authenticate resolves userHash+token to an account, creating it on first
// contact. The device registry is touched on success.
//
// Failure modes: common.ErrAccountLocked while a lockout window is open,
// common.ErrInvalidCredentials on a token mismatch. A mismatch increments
// the failure counter and, at the threshold, opens the lockout window.
func (s *Service) Authenticate(ctx context.Context, userHash, token, deviceID, deviceName string) (*AuthResult, error) {
	user, err := s.repo.GetByUserHash(ctx, userHash)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return s.register(ctx, userHash, token, deviceID, deviceName)
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	now := s.now()
	if user.LockedUntil.After(now) {
		return nil, common.ErrAccountLocked
	}

	if !s.checkToken(user.VerificationToken, token) {
		failed := user.FailedAttempts + 1
		lockedUntil := user.LockedUntil
		if failed >= s.lockoutThreshold {
			lockedUntil = now.Add(s.lockoutWindow)
			failed = 0
		}
		if err := s.repo.UpdateLockState(ctx, user.ID, failed, lockedUntil); err != nil {
			return nil, fmt.Errorf("error updating lock state: %w", err)
		}
		return nil, common.ErrInvalidCredentials
	}

	// Success clears any stale failure count.
	if user.FailedAttempts != 0 || !user.LockedUntil.IsZero() {
		if err := s.repo.UpdateLockState(ctx, user.ID, 0, time.Time{}); err != nil {
			return nil, fmt.Errorf("error updating lock state: %w", err)
		}
	}

	if err := s.touchDevice(ctx, user.ID, deviceID, deviceName); err != nil {
		return nil, err
	}

	return &AuthResult{UserID: user.ID}, nil
}

// Verify is Authenticate without the first-contact signup: an unknown user
// hash is an error, the account must already exist. Used by the sync
// routes, which never register.
func (s *Service) Verify(ctx context.Context, userHash, token string) (*AuthResult, error) {
	_, err := s.repo.GetByUserHash(ctx, userHash)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return s.Authenticate(ctx, userHash, token, "", "")
}

func (s *Service) register(ctx context.Context, userHash, token, deviceID, deviceName string) (*AuthResult, error) {
	user, err := s.repo.Create(ctx, &User{UserHash: userHash, VerificationToken: token})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.touchDevice(ctx, user.ID, deviceID, deviceName); err != nil {
		return nil, err
	}

	return &AuthResult{UserID: user.ID, IsNew: true}, nil
}

func (s *Service) touchDevice(ctx context.Context, userID, deviceID, deviceName string) error {
	if deviceID == "" {
		return nil
	}
	err := s.repo.TouchDevice(ctx, &Device{
		ID:         deviceID,
		UserID:     userID,
		Name:       deviceName,
		LastSeenAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("error touching device: %w", err)
	}
	return nil
}
