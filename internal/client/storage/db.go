// Package storage opens the client's local SQLite database, applies
// migrations, and bundles the repositories the services work through.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/inkwell-app/inkwell/internal/client/migrations"
	"github.com/inkwell-app/inkwell/internal/client/repositories/entries"
	"github.com/inkwell-app/inkwell/internal/client/repositories/reviews"
	"github.com/inkwell-app/inkwell/internal/client/repositories/syncconfig"
)

// Repositories groups the local stores backed by one database handle.
type Repositories struct {
	Entries    entries.Repository
	Reviews    reviews.Repository
	SyncConfig syncconfig.Repository
	DB         *sql.DB
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the SQLite database at dsn,
// migrates it, and returns the repository bundle.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Entries:    entries.NewSQLiteRepository(db),
		Reviews:    reviews.NewSQLiteRepository(db),
		SyncConfig: syncconfig.NewSQLiteRepository(db),
		DB:         db,
	}, nil
}
