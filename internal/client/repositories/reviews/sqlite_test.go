package reviews

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
	db, err := sql.Open("sqlite", "file:reviewsrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS reviews (
  id TEXT PRIMARY KEY,
  period TEXT NOT NULL,
  content TEXT NOT NULL DEFAULT '',
  mood INTEGER NOT NULL DEFAULT 0,
  highlights TEXT NOT NULL DEFAULT '[]',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0
);
DELETE FROM reviews;
`)
	require.NoError(t, err)
	return db
}

func review(id, period string, updatedAt int64) *models.Review {
	return &models.Review{
		ID:        id,
		Period:    period,
		Content:   "review " + id,
		Mood:      3,
		CreatedAt: updatedAt - 10,
		UpdatedAt: updatedAt,
	}
}

func TestUpsertAndGet(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	v := review("r1", "2026-W35", 100)
	v.Highlights = []string{"shipped"}
	require.NoError(t, repo.Upsert(ctx, v))

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, v, got)

	_, err = repo.GetByID(ctx, "absent")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestChangedSinceAndTombstones(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, review("r1", "2026-W34", 50)))
	require.NoError(t, repo.Upsert(ctx, review("r2", "2026-W35", 150)))
	require.NoError(t, repo.SoftDelete(ctx, "r2", 170))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	changed, err := repo.GetChangedSince(ctx, 100)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	require.True(t, changed[0].Deleted)
	require.EqualValues(t, 170, changed[0].UpdatedAt)
}
