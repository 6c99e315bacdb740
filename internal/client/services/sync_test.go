package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/inkwell-app/inkwell/internal/client/codec"
	"github.com/inkwell-app/inkwell/internal/client/models"
	"github.com/inkwell-app/inkwell/internal/client/repositories/entries"
	"github.com/inkwell-app/inkwell/internal/client/repositories/reviews"
	"github.com/inkwell-app/inkwell/internal/client/repositories/syncconfig"
	"github.com/inkwell-app/inkwell/internal/client/session"
	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/cryptox"
	"github.com/inkwell-app/inkwell/internal/logging"
	"github.com/inkwell-app/inkwell/internal/wire"
)

const testPassword = "correct horse"

func setupDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
  id TEXT PRIMARY KEY,
  entry_date TEXT NOT NULL,
  content TEXT NOT NULL DEFAULT '',
  tags TEXT NOT NULL DEFAULT '[]',
  habits TEXT NOT NULL DEFAULT '{}',
  highlights TEXT NOT NULL DEFAULT '[]',
  word_count INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0
);
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
CREATE TABLE IF NOT EXISTS sync_config (key TEXT PRIMARY KEY, value TEXT NOT NULL);
DELETE FROM entries; DELETE FROM reviews; DELETE FROM sync_config;
`)
	require.NoError(t, err)
	return db
}

// fakeClient is an in-memory remote with canned responses and request capture.
type fakeClient struct {
	registerResp *wire.RegisterResponse
	registerErr  error
	registerReqs []*wire.RegisterRequest

	entriesResp *wire.SyncResponse
	entriesErr  error
	entriesReqs []*wire.SyncRequest

	reviewsResp *wire.SyncResponse
	reviewsErr  error

	singleResp *wire.SingleSyncResponse
	singleErr  error
	singleReqs []*wire.SingleSyncRequest
}

func (f *fakeClient) Register(ctx context.Context, req *wire.RegisterRequest) (*wire.RegisterResponse, error) {
	f.registerReqs = append(f.registerReqs, req)
	return f.registerResp, f.registerErr
}

func (f *fakeClient) SyncEntries(ctx context.Context, req *wire.SyncRequest) (*wire.SyncResponse, error) {
	f.entriesReqs = append(f.entriesReqs, req)
	return f.entriesResp, f.entriesErr
}

func (f *fakeClient) SyncReviews(ctx context.Context, req *wire.SyncRequest) (*wire.SyncResponse, error) {
	return f.reviewsResp, f.reviewsErr
}

func (f *fakeClient) SyncSingleEntry(ctx context.Context, req *wire.SingleSyncRequest) (*wire.SingleSyncResponse, error) {
	f.singleReqs = append(f.singleReqs, req)
	return f.singleResp, f.singleErr
}

func emptySyncResp(serverTime int64) *wire.SyncResponse {
	return &wire.SyncResponse{Success: true, ServerTime: serverTime}
}

type syncFixture struct {
	svc        *SyncService
	fc         *fakeClient
	entryRepo  *entries.SQLiteRepository
	reviewRepo *reviews.SQLiteRepository
	configRepo *syncconfig.SQLiteRepository
	sess       *session.Session
}

func newSyncFixture(t *testing.T, name string, cursor int64) *syncFixture {
	t.Helper()
	db := setupDB(t, name)

	f := &syncFixture{
		fc:         &fakeClient{entriesResp: emptySyncResp(1000), reviewsResp: emptySyncResp(1000)},
		entryRepo:  entries.NewSQLiteRepository(db),
		reviewRepo: reviews.NewSQLiteRepository(db),
		configRepo: syncconfig.NewSQLiteRepository(db),
		sess:       session.New(),
	}
	require.NoError(t, f.configRepo.Save(context.Background(), &models.SyncConfig{
		Enabled:    true,
		UserHash:   cryptox.HashEmail("a@x.com"),
		DeviceID:   "device-1",
		LastSyncAt: cursor,
	}))
	f.sess.Set(testPassword)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.svc = NewSyncService(f.fc, f.entryRepo, f.reviewRepo, f.configRepo, f.sess, logger)
	return f
}

func remoteEntry(t *testing.T, e *models.Entry, password string) *wire.Record {
	t.Helper()
	rec, err := codec.EncryptEntry(e, password)
	require.NoError(t, err)
	return rec
}

func TestFullSync_NotConfigured(t *testing.T) {
	f := newSyncFixture(t, "sync_notconf", 0)
	require.NoError(t, f.configRepo.Clear(context.Background()))

	res := f.svc.FullSync(context.Background())
	require.False(t, res.Success)
	require.Equal(t, common.ErrSyncDisabled.Error(), res.Error)
	require.Zero(t, res.Pushed)
	require.Zero(t, res.Pulled)
}

func TestFullSync_SessionLocked(t *testing.T) {
	f := newSyncFixture(t, "sync_locked", 0)
	f.sess.Clear()

	res := f.svc.FullSync(context.Background())
	require.False(t, res.Success)
	require.Equal(t, common.ErrSessionLocked.Error(), res.Error)
	require.Empty(t, f.fc.entriesReqs, "must fail before any exchange")
}

func TestFullSync_PushesOnlyChangesPastCursor(t *testing.T) {
	f := newSyncFixture(t, "sync_push", 100)
	ctx := context.Background()

	old := &models.Entry{ID: "old", Date: "2026-08-01", Content: "before cursor", CreatedAt: 40, UpdatedAt: 50}
	fresh := &models.Entry{ID: "fresh", Date: "2026-08-30", Content: "after cursor", CreatedAt: 140, UpdatedAt: 150}
	require.NoError(t, f.entryRepo.Upsert(ctx, old))
	require.NoError(t, f.entryRepo.Upsert(ctx, fresh))

	f.fc.entriesResp = &wire.SyncResponse{Success: true, Pushed: 1, ServerTime: 2000}
	f.fc.reviewsResp = emptySyncResp(1900)

	res := f.svc.FullSync(ctx)
	require.True(t, res.Success)
	require.Equal(t, 1, res.Pushed)

	require.Len(t, f.fc.entriesReqs, 1)
	req := f.fc.entriesReqs[0]
	require.Len(t, req.Entries, 1)
	require.Equal(t, "fresh", req.Entries[0].ID)
	require.EqualValues(t, 100, req.LastSyncAt)
	require.Equal(t, cryptox.VerificationToken(testPassword), req.VerificationToken)

	// Cursor advances to the larger server-reported time, not the local clock.
	cfg, err := f.configRepo.Load(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2000, cfg.LastSyncAt)
}

func TestFullSync_LastWriteWins(t *testing.T) {
	f := newSyncFixture(t, "sync_lww", 0)
	ctx := context.Background()

	local := &models.Entry{ID: "e1", Date: "2026-08-30", Content: "local", CreatedAt: 90, UpdatedAt: 100}
	require.NoError(t, f.entryRepo.Upsert(ctx, local))

	t.Run("remote older is a conflict, local retained", func(t *testing.T) {
		remote := &models.Entry{ID: "e1", Date: "2026-08-30", Content: "stale remote", CreatedAt: 40, UpdatedAt: 50}
		f.fc.entriesResp = &wire.SyncResponse{Success: true, Pulled: 1, Entries: []*wire.Record{remoteEntry(t, remote, testPassword)}, ServerTime: 500}

		res := f.svc.FullSync(ctx)
		require.True(t, res.Success)
		require.Equal(t, 1, res.Conflicts)

		got, err := f.entryRepo.GetByID(ctx, "e1")
		require.NoError(t, err)
		require.Equal(t, "local", got.Content)
		require.EqualValues(t, 100, got.UpdatedAt)
	})

	t.Run("equal timestamps are a no-op", func(t *testing.T) {
		remote := &models.Entry{ID: "e1", Date: "2026-08-30", Content: "same age remote", CreatedAt: 90, UpdatedAt: 100}
		f.fc.entriesResp = &wire.SyncResponse{Success: true, Pulled: 1, Entries: []*wire.Record{remoteEntry(t, remote, testPassword)}, ServerTime: 600}

		res := f.svc.FullSync(ctx)
		require.True(t, res.Success)
		require.Zero(t, res.Conflicts)

		got, err := f.entryRepo.GetByID(ctx, "e1")
		require.NoError(t, err)
		require.Equal(t, "local", got.Content)
	})

	t.Run("remote newer replaces local", func(t *testing.T) {
		remote := &models.Entry{ID: "e1", Date: "2026-08-30", Content: "newer remote", CreatedAt: 90, UpdatedAt: 150}
		f.fc.entriesResp = &wire.SyncResponse{Success: true, Pulled: 1, Entries: []*wire.Record{remoteEntry(t, remote, testPassword)}, ServerTime: 700}

		res := f.svc.FullSync(ctx)
		require.True(t, res.Success)
		require.Zero(t, res.Conflicts)

		got, err := f.entryRepo.GetByID(ctx, "e1")
		require.NoError(t, err)
		require.Equal(t, "newer remote", got.Content)
		require.EqualValues(t, 150, got.UpdatedAt)
	})
}

func TestFullSync_MergeIdempotence(t *testing.T) {
	f := newSyncFixture(t, "sync_idem", 0)
	ctx := context.Background()

	remote := &models.Entry{ID: "e1", Date: "2026-08-30", Content: "from remote", CreatedAt: 90, UpdatedAt: 100}
	batch := &wire.SyncResponse{Success: true, Pulled: 1, Entries: []*wire.Record{remoteEntry(t, remote, testPassword)}, ServerTime: 500}
	f.fc.entriesResp = batch

	res := f.svc.FullSync(ctx)
	require.True(t, res.Success)

	first, err := f.entryRepo.GetAll(ctx)
	require.NoError(t, err)

	// Re-applying the same delta batch must not change local state.
	res = f.svc.FullSync(ctx)
	require.True(t, res.Success)
	require.Zero(t, res.Conflicts)

	second, err := f.entryRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestFullSync_TombstonePropagation(t *testing.T) {
	f := newSyncFixture(t, "sync_tomb", 0)
	ctx := context.Background()

	t.Run("tombstone with no local counterpart creates nothing", func(t *testing.T) {
		ghost := &models.Entry{ID: "ghost", Date: "2026-08-01", CreatedAt: 10, UpdatedAt: 20, Deleted: true}
		f.fc.entriesResp = &wire.SyncResponse{Success: true, Pulled: 1, Entries: []*wire.Record{remoteEntry(t, ghost, testPassword)}, ServerTime: 100}

		res := f.svc.FullSync(ctx)
		require.True(t, res.Success)

		_, err := f.entryRepo.GetByID(ctx, "ghost")
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("newer tombstone deletes the local copy", func(t *testing.T) {
		require.NoError(t, f.entryRepo.Upsert(ctx, &models.Entry{ID: "e1", Date: "2026-08-30", Content: "alive", CreatedAt: 90, UpdatedAt: 100}))

		dead := &models.Entry{ID: "e1", Date: "2026-08-30", CreatedAt: 90, UpdatedAt: 200, Deleted: true}
		f.fc.entriesResp = &wire.SyncResponse{Success: true, Pulled: 1, Entries: []*wire.Record{remoteEntry(t, dead, testPassword)}, ServerTime: 300}

		res := f.svc.FullSync(ctx)
		require.True(t, res.Success)

		got, err := f.entryRepo.GetByID(ctx, "e1")
		require.NoError(t, err)
		require.True(t, got.Deleted)

		live, err := f.entryRepo.GetAll(ctx)
		require.NoError(t, err)
		require.Empty(t, live)
	})
}

func TestFullSync_SkipsUndecryptableRecord(t *testing.T) {
	f := newSyncFixture(t, "sync_skip", 0)
	ctx := context.Background()

	good := &models.Entry{ID: "good", Date: "2026-08-30", Content: "readable", CreatedAt: 90, UpdatedAt: 100}
	foreign := &models.Entry{ID: "foreign", Date: "2026-08-30", Content: "someone else's", CreatedAt: 90, UpdatedAt: 100}
	f.fc.entriesResp = &wire.SyncResponse{
		Success: true,
		Pulled:  2,
		Entries: []*wire.Record{
			remoteEntry(t, foreign, "a different passphrase"),
			remoteEntry(t, good, testPassword),
		},
		ServerTime: 100,
	}

	res := f.svc.FullSync(ctx)
	require.True(t, res.Success, "one corrupted record must not abort the cycle")

	_, err := f.entryRepo.GetByID(ctx, "good")
	require.NoError(t, err)
	_, err = f.entryRepo.GetByID(ctx, "foreign")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestFullSync_ServerErrorLeavesCursorUntouched(t *testing.T) {
	f := newSyncFixture(t, "sync_fail", 123)
	f.fc.entriesErr = common.ErrInvalidCredentials

	res := f.svc.FullSync(context.Background())
	require.False(t, res.Success)
	require.Zero(t, res.Pushed)
	require.Zero(t, res.Pulled)

	cfg, err := f.configRepo.Load(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 123, cfg.LastSyncAt, "cursor only advances after a fully successful round trip")
}

func TestFullSync_ReviewsExchangedToo(t *testing.T) {
	f := newSyncFixture(t, "sync_reviews", 0)
	ctx := context.Background()

	remote := &models.Review{ID: "r1", Period: "2026-W35", Content: "remote review", CreatedAt: 10, UpdatedAt: 20}
	rec, err := codec.EncryptReview(remote, testPassword)
	require.NoError(t, err)
	f.fc.reviewsResp = &wire.SyncResponse{Success: true, Pulled: 1, Entries: []*wire.Record{rec}, ServerTime: 800}

	res := f.svc.FullSync(ctx)
	require.True(t, res.Success)
	require.Equal(t, 1, res.Pulled)

	got, err := f.reviewRepo.GetByID(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "remote review", got.Content)
}

func TestSyncEntry_FastPath(t *testing.T) {
	f := newSyncFixture(t, "sync_single", 0)
	ctx := context.Background()

	f.svc.now = func() int64 { return 4242 }
	f.fc.singleResp = &wire.SingleSyncResponse{Success: true, Synced: true}

	e := &models.Entry{ID: "e1", Date: "2026-08-30", Content: "just saved", CreatedAt: 90, UpdatedAt: 100}
	require.NoError(t, f.entryRepo.Upsert(ctx, e))

	require.NoError(t, f.svc.SyncEntry(ctx, "e1"))

	require.Len(t, f.fc.singleReqs, 1)
	sent := f.fc.singleReqs[0].Entry
	require.Equal(t, "e1", sent.ID)
	require.EqualValues(t, 100, sent.UpdatedAt)

	got, err := codec.DecryptEntry(sent, testPassword)
	require.NoError(t, err)
	require.Equal(t, "just saved", got.Content)

	cfg, err := f.configRepo.Load(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 4242, cfg.LastSyncAt)
}

func TestSyncEntry_Preconditions(t *testing.T) {
	f := newSyncFixture(t, "sync_single_pre", 0)
	ctx := context.Background()

	f.sess.Clear()
	require.ErrorIs(t, f.svc.SyncEntry(ctx, "e1"), common.ErrSessionLocked)

	require.NoError(t, f.configRepo.Clear(ctx))
	require.ErrorIs(t, f.svc.SyncEntry(ctx, "e1"), common.ErrSyncDisabled)
}
