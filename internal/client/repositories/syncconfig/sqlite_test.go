package syncconfig

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/inkwell-app/inkwell/internal/client/models"
	"github.com/inkwell-app/inkwell/internal/common"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:syncconfigrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS sync_config (key TEXT PRIMARY KEY, value TEXT NOT NULL);
DELETE FROM sync_config;
`)
	require.NoError(t, err)
	return db
}

func TestLoad_EmptyDatabase(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	cfg, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, &models.SyncConfig{}, cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	want := &models.SyncConfig{
		Enabled:                  true,
		UserHash:                 "abc123",
		PasswordVerificationHash: "def456",
		LastSyncAt:               1756600000000,
		DeviceID:                 "device-1",
	}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// Save again with a moved cursor; values must be replaced, not duplicated.
	want.LastSyncAt = 1756600001000
	require.NoError(t, repo.Save(ctx, want))

	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1756600001000, got.LastSyncAt)
}

func TestClear(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.SyncConfig{Enabled: true, DeviceID: "d"}))
	require.NoError(t, repo.Clear(ctx))

	cfg, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, &models.SyncConfig{}, cfg)
}

func TestGet_RawValue(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, "device_id")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, repo.Save(ctx, &models.SyncConfig{DeviceID: "device-9"}))

	v, err := repo.Get(ctx, "device_id")
	require.NoError(t, err)
	require.Equal(t, "device-9", v)
}
