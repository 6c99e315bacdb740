// Package services contains the application services of the journaling
// client: account registration/login, the synchronization protocol client,
// and export/import of journal bundles.
package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkwell-app/inkwell/internal/client/api"
	"github.com/inkwell-app/inkwell/internal/client/models"
	"github.com/inkwell-app/inkwell/internal/client/repositories/syncconfig"
	"github.com/inkwell-app/inkwell/internal/client/session"
	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/cryptox"
	"github.com/inkwell-app/inkwell/internal/wire"
)

// AuthService manages the sync identity: remote registration/login, offline
// unlock against the locally stored verification hash, and the device id.
type AuthService struct {
	client     api.Client
	configRepo syncconfig.Repository
	session    *session.Session
}

func NewAuthService(client api.Client, configRepo syncconfig.Repository, sess *session.Session) *AuthService {
	return &AuthService{client: client, configRepo: configRepo, session: sess}
}

// Register contacts the remote service with the derived identity. The
// server creates the user on first contact and validates credentials on
// subsequent ones, so the same call serves registration and login.
// On success the durable sync config is saved and the session unlocked.
// Returns whether the account was newly created.
func (a *AuthService) Register(ctx context.Context, email, password, deviceName string) (bool, error) {
	cfg, err := a.configRepo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("loading sync config: %w", err)
	}

	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	resp, err := a.client.Register(ctx, &wire.RegisterRequest{
		UserHash:          cryptox.HashEmail(email),
		VerificationToken: cryptox.VerificationToken(password),
		DeviceID:          deviceID,
		DeviceName:        deviceName,
	})
	if err != nil {
		return false, err
	}

	cfg.Enabled = true
	cfg.UserHash = cryptox.HashEmail(email)
	cfg.PasswordVerificationHash = cryptox.HashPassword(password)
	cfg.DeviceID = deviceID
	if resp.IsNew {
		// A fresh account has nothing remote; start the cursor from zero.
		cfg.LastSyncAt = 0
	}
	if err := a.configRepo.Save(ctx, cfg); err != nil {
		return false, fmt.Errorf("saving sync config: %w", err)
	}

	a.session.Set(password)
	return resp.IsNew, nil
}

// Login is Register against an existing account; the remote operation is
// the same, only a brand-new account is unexpected.
func (a *AuthService) Login(ctx context.Context, email, password, deviceName string) error {
	_, err := a.Register(ctx, email, password, deviceName)
	return err
}

// Unlock re-enters the passphrase locally (e.g. after a restart) by
// checking it against the stored verification hash, without any network
// round trip. Never discards unsynced local writes.
func (a *AuthService) Unlock(ctx context.Context, password string) error {
	cfg, err := a.configRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading sync config: %w", err)
	}
	if !cfg.Enabled || cfg.PasswordVerificationHash == "" {
		return common.ErrSyncDisabled
	}

	candidate := cryptox.HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(cfg.PasswordVerificationHash)) == 0 {
		return common.ErrInvalidCredentials
	}

	a.session.Set(password)
	return nil
}

// Logout clears the volatile passphrase. Durable state, including the sync
// cursor, stays so the next unlock can resume where it left off.
func (a *AuthService) Logout() {
	a.session.Clear()
}

// Disable turns sync off and wipes the durable sync config. Local journal
// data is untouched.
func (a *AuthService) Disable(ctx context.Context) error {
	a.session.Clear()
	return a.configRepo.Clear(ctx)
}

// Config exposes the current durable sync state (for status displays).
func (a *AuthService) Config(ctx context.Context) (*models.SyncConfig, error) {
	return a.configRepo.Load(ctx)
}
