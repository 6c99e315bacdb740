package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query :=
		`INSERT INTO users (user_hash, verification_token)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserHash, user.VerificationToken).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUserHash(ctx context.Context, userHash string) (*User, error) {
	query :=
		`SELECT id, user_hash, verification_token, failed_attempts, locked_until, created_at
		 FROM users
		 WHERE user_hash = $1
		 `

	user := &User{}
	var lockedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userHash).Scan(
		&user.ID, &user.UserHash, &user.VerificationToken,
		&user.FailedAttempts, &lockedUntil, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	// NULL means "never locked" and must come back as the zero time.
	if lockedUntil.Valid {
		user.LockedUntil = lockedUntil.Time
	}

	return user, nil
}

func (r *PostgresRepository) UpdateLockState(ctx context.Context, userID string, failedAttempts int, lockedUntil time.Time) error {
	query :=
		`UPDATE users
		 SET failed_attempts = $2, locked_until = $3
		 WHERE id = $1
		 `

	var until any
	if !lockedUntil.IsZero() {
		until = lockedUntil.UTC()
	}
	if _, err := r.db.ExecContext(ctx, query, userID, failedAttempts, until); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) TouchDevice(ctx context.Context, device *Device) error {
	query :=
		`INSERT INTO devices (id, user_id, name, last_seen_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			last_seen_at = excluded.last_seen_at
		 `

	if _, err := r.db.ExecContext(ctx, query,
		device.ID, device.UserID, device.Name, device.LastSeenAt.UTC()); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}
