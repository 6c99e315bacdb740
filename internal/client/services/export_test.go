package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-app/inkwell/internal/client/models"
	"github.com/inkwell-app/inkwell/internal/client/repositories/entries"
	"github.com/inkwell-app/inkwell/internal/client/repositories/reviews"
	"github.com/inkwell-app/inkwell/internal/common"
)

type exportFixture struct {
	svc        *ExportService
	entryRepo  *entries.SQLiteRepository
	reviewRepo *reviews.SQLiteRepository
}

func newExportFixture(t *testing.T, name string) *exportFixture {
	t.Helper()
	db := setupDB(t, name)
	f := &exportFixture{
		entryRepo:  entries.NewSQLiteRepository(db),
		reviewRepo: reviews.NewSQLiteRepository(db),
	}
	f.svc = NewExportService(f.entryRepo, f.reviewRepo, models.Settings{"theme": "dark"})
	f.svc.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *exportFixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.entryRepo.Upsert(ctx, &models.Entry{
		ID: "e1", Date: "2026-08-29", Content: "first entry",
		Tags: []string{"work"}, Habits: map[string]bool{"run": true},
		WordCount: 2, CreatedAt: 10, UpdatedAt: 10,
	}))
	require.NoError(t, f.entryRepo.Upsert(ctx, &models.Entry{
		ID: "e2", Date: "2026-08-30", Content: "second entry",
		CreatedAt: 20, UpdatedAt: 20,
	}))
	require.NoError(t, f.reviewRepo.Upsert(ctx, &models.Review{
		ID: "r1", Period: "2026-W35", Content: "weekly review", Mood: 4,
		CreatedAt: 30, UpdatedAt: 30,
	}))
}

func TestExportImport_PlainRoundTrip(t *testing.T) {
	src := newExportFixture(t, "export_plain_src")
	src.seed(t)
	ctx := context.Background()

	data, err := src.svc.ExportPlain(ctx)
	require.NoError(t, err)

	var bundle Bundle
	require.NoError(t, json.Unmarshal(data, &bundle))
	require.Equal(t, bundleVersion, bundle.Version)
	require.Equal(t, "2026-08-30T12:00:00Z", bundle.ExportedAt)
	require.Len(t, bundle.Entries, 2)
	require.Len(t, bundle.Reviews, 1)
	require.Equal(t, "dark", bundle.Settings["theme"])

	dst := newExportFixture(t, "export_plain_dst")
	stats, err := dst.svc.Import(ctx, data, "")
	require.NoError(t, err)
	require.Equal(t, 2, stats.Entries)
	require.Equal(t, 1, stats.Reviews)

	got, err := dst.entryRepo.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "first entry", got.Content)
	require.Equal(t, []string{"work"}, got.Tags)
	require.Equal(t, map[string]bool{"run": true}, got.Habits)
}

func TestExportImport_EncryptedRoundTrip(t *testing.T) {
	src := newExportFixture(t, "export_enc_src")
	src.seed(t)
	ctx := context.Background()

	data, err := src.svc.ExportEncrypted(ctx, testPassword)
	require.NoError(t, err)

	// The file must not leak plaintext.
	require.NotContains(t, string(data), "first entry")
	require.Contains(t, string(data), `"format": "encrypted"`)

	dst := newExportFixture(t, "export_enc_dst")

	t.Run("no password", func(t *testing.T) {
		_, err := dst.svc.Import(ctx, data, "")
		require.ErrorIs(t, err, common.ErrPasswordRequired)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := dst.svc.Import(ctx, data, "not it")
		require.ErrorIs(t, err, common.ErrDecryptionFailed)
	})

	t.Run("correct password", func(t *testing.T) {
		stats, err := dst.svc.Import(ctx, data, testPassword)
		require.NoError(t, err)
		require.Equal(t, 2, stats.Entries)
		require.Equal(t, 1, stats.Reviews)

		got, err := dst.reviewRepo.GetByID(ctx, "r1")
		require.NoError(t, err)
		require.Equal(t, "weekly review", got.Content)
		require.Equal(t, 4, got.Mood)
	})
}

func TestImport_LegacyBase64(t *testing.T) {
	src := newExportFixture(t, "export_legacy_src")
	src.seed(t)
	ctx := context.Background()

	plain, err := src.svc.ExportPlain(ctx)
	require.NoError(t, err)
	legacy := []byte(base64.StdEncoding.EncodeToString(plain))

	dst := newExportFixture(t, "export_legacy_dst")
	stats, err := dst.svc.Import(ctx, legacy, "")
	require.NoError(t, err)
	require.Equal(t, 2, stats.Entries)
}

func TestImport_Garbage(t *testing.T) {
	f := newExportFixture(t, "export_garbage")
	_, err := f.svc.Import(context.Background(), []byte("definitely not a bundle"), "")
	require.Error(t, err)
}

func TestExport_SkipsTombstones(t *testing.T) {
	f := newExportFixture(t, "export_tomb")
	f.seed(t)
	ctx := context.Background()
	require.NoError(t, f.entryRepo.SoftDelete(ctx, "e2", 40))

	data, err := f.svc.ExportPlain(ctx)
	require.NoError(t, err)

	var bundle Bundle
	require.NoError(t, json.Unmarshal(data, &bundle))
	require.Len(t, bundle.Entries, 1)
	require.Equal(t, "e1", bundle.Entries[0].ID)
}
