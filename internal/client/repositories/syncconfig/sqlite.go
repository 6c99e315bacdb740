// Package syncconfig persists the durable, non-sensitive sync state
// (SyncConfig) as key/value rows in the local database. The session
// passphrase never passes through this package.
package syncconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/inkwell-app/inkwell/internal/client/models"
	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/dbx"
)

// Repository reads and writes the durable sync configuration.
type Repository interface {
	Load(ctx context.Context) (*models.SyncConfig, error)
	Save(ctx context.Context, cfg *models.SyncConfig) error
	Clear(ctx context.Context) error
}

const (
	keyEnabled          = "enabled"
	keyUserHash         = "user_hash"
	keyVerificationHash = "password_verification_hash"
	keyLastSyncAt       = "last_sync_at"
	keyDeviceID         = "device_id"
)

// SQLiteRepository implements Repository over the sync_config table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Load returns the stored config. A database with no rows yields the zero
// config (sync disabled), not an error.
func (r *SQLiteRepository) Load(ctx context.Context) (*models.SyncConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM sync_config`)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync config: %w", err)
	}
	defer rows.Close()

	cfg := &models.SyncConfig{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		switch key {
		case keyEnabled:
			cfg.Enabled = value == "1"
		case keyUserHash:
			cfg.UserHash = value
		case keyVerificationHash:
			cfg.PasswordVerificationHash = value
		case keyLastSyncAt:
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid last_sync_at value %q: %w", value, err)
			}
			cfg.LastSyncAt = ts
		case keyDeviceID:
			cfg.DeviceID = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, cfg *models.SyncConfig) error {
	enabled := "0"
	if cfg.Enabled {
		enabled = "1"
	}
	pairs := map[string]string{
		keyEnabled:          enabled,
		keyUserHash:         cfg.UserHash,
		keyVerificationHash: cfg.PasswordVerificationHash,
		keyLastSyncAt:       strconv.FormatInt(cfg.LastSyncAt, 10),
		keyDeviceID:         cfg.DeviceID,
	}

	query := `INSERT INTO sync_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	for key, value := range pairs {
		if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
			return fmt.Errorf("failed to save sync config key %s: %w", key, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_config`); err != nil {
		return fmt.Errorf("failed to clear sync config: %w", err)
	}
	return nil
}

// Get reads a single raw config value. Returns common.ErrNotFound when the
// key is absent.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM sync_config WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", err
	}
	return value, nil
}
