package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell-app/inkwell/internal/client/api"
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

// SyncResult is the uniform outcome of a sync cycle. Precondition failures
// and unexpected errors land here as Success=false with counts zeroed;
// the cycle never panics into the caller.
type SyncResult struct {
	Success   bool
	Pushed    int
	Pulled    int
	Conflicts int
	Error     string
}

// SyncService orchestrates the bidirectional exchange of encrypted records:
// collect local changes past the cursor, encrypt, exchange, decrypt remote
// deltas, merge last-write-wins, advance the cursor.
//
// A sync invocation is sequential; callers should not start a new full sync
// while one is in flight. Overlapping single-record calls are tolerated
// since each is idempotent by id+timestamp.
type SyncService struct {
	client     api.Client
	entryRepo  entries.Repository
	reviewRepo reviews.Repository
	configRepo syncconfig.Repository
	session    *session.Session
	logger     logging.Logger

	// now returns the current unix time in milliseconds; replaceable in tests.
	now func() int64
}

func NewSyncService(
	client api.Client,
	entryRepo entries.Repository,
	reviewRepo reviews.Repository,
	configRepo syncconfig.Repository,
	sess *session.Session,
	logger logging.Logger,
) *SyncService {
	return &SyncService{
		client:     client,
		entryRepo:  entryRepo,
		reviewRepo: reviewRepo,
		configRepo: configRepo,
		session:    sess,
		logger:     logger.With("module", "sync"),
		now:        func() int64 { return time.Now().UnixMilli() },
	}
}

// FullSync runs one complete sync cycle for entries and reviews.
func (s *SyncService) FullSync(ctx context.Context) *SyncResult {
	res, err := s.fullSync(ctx)
	if err != nil {
		s.logger.Warn(ctx, "sync failed", "error", err)
		return &SyncResult{Success: false, Error: err.Error()}
	}
	return res
}

func (s *SyncService) fullSync(ctx context.Context) (*SyncResult, error) {
	cfg, err := s.configRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sync config: %w", err)
	}
	if !cfg.Enabled {
		return nil, common.ErrSyncDisabled
	}
	password, err := s.session.Passphrase()
	if err != nil {
		return nil, err
	}
	token := cryptox.VerificationToken(password)

	result := &SyncResult{Success: true}

	entryResp, err := s.exchangeEntries(ctx, cfg, token, password, result)
	if err != nil {
		return nil, err
	}
	reviewResp, err := s.exchangeReviews(ctx, cfg, token, password, result)
	if err != nil {
		return nil, err
	}

	// The cursor advances to the server-reported time, never the local
	// clock, and only after both exchanges fully succeeded.
	cfg.LastSyncAt = maxInt64(entryResp.ServerTime, reviewResp.ServerTime)
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("advancing sync cursor: %w", err)
	}

	s.logger.Info(ctx, "sync finished",
		"pushed", result.Pushed, "pulled", result.Pulled, "conflicts", result.Conflicts)
	return result, nil
}

func (s *SyncService) exchangeEntries(ctx context.Context, cfg *models.SyncConfig, token, password string, result *SyncResult) (*wire.SyncResponse, error) {
	changed, err := s.entryRepo.GetChangedSince(ctx, cfg.LastSyncAt)
	if err != nil {
		return nil, fmt.Errorf("collecting local entries: %w", err)
	}

	outgoing := make([]*wire.Record, 0, len(changed))
	for _, e := range changed {
		rec, err := codec.EncryptEntry(e, password)
		if err != nil {
			return nil, fmt.Errorf("encrypting entry %s: %w", e.ID, err)
		}
		outgoing = append(outgoing, rec)
	}

	resp, err := s.client.SyncEntries(ctx, &wire.SyncRequest{
		UserHash:          cfg.UserHash,
		VerificationToken: token,
		Entries:           outgoing,
		LastSyncAt:        cfg.LastSyncAt,
	})
	if err != nil {
		return nil, err
	}

	result.Pushed += resp.Pushed
	result.Pulled += resp.Pulled

	for _, rec := range resp.Entries {
		remote, err := codec.DecryptEntry(rec, password)
		if err != nil {
			// One undecryptable record must not abort the whole cycle.
			s.logger.Warn(ctx, "skipping undecryptable remote entry", "id", rec.ID, "error", err)
			continue
		}
		conflict, err := s.mergeEntry(ctx, remote)
		if err != nil {
			return nil, fmt.Errorf("merging entry %s: %w", rec.ID, err)
		}
		if conflict {
			result.Conflicts++
		}
	}
	return resp, nil
}

func (s *SyncService) exchangeReviews(ctx context.Context, cfg *models.SyncConfig, token, password string, result *SyncResult) (*wire.SyncResponse, error) {
	changed, err := s.reviewRepo.GetChangedSince(ctx, cfg.LastSyncAt)
	if err != nil {
		return nil, fmt.Errorf("collecting local reviews: %w", err)
	}

	outgoing := make([]*wire.Record, 0, len(changed))
	for _, v := range changed {
		rec, err := codec.EncryptReview(v, password)
		if err != nil {
			return nil, fmt.Errorf("encrypting review %s: %w", v.ID, err)
		}
		outgoing = append(outgoing, rec)
	}

	resp, err := s.client.SyncReviews(ctx, &wire.SyncRequest{
		UserHash:          cfg.UserHash,
		VerificationToken: token,
		Entries:           outgoing,
		LastSyncAt:        cfg.LastSyncAt,
	})
	if err != nil {
		return nil, err
	}

	result.Pushed += resp.Pushed
	result.Pulled += resp.Pulled

	for _, rec := range resp.Entries {
		remote, err := codec.DecryptReview(rec, password)
		if err != nil {
			s.logger.Warn(ctx, "skipping undecryptable remote review", "id", rec.ID, "error", err)
			continue
		}
		conflict, err := s.mergeReview(ctx, remote)
		if err != nil {
			return nil, fmt.Errorf("merging review %s: %w", rec.ID, err)
		}
		if conflict {
			result.Conflicts++
		}
	}
	return resp, nil
}

// mergeEntry applies one remote entry last-write-wins. Returns true when
// the local copy was newer (a conflict: counted, local wins, and it will
// be pushed again on the next cycle).
func (s *SyncService) mergeEntry(ctx context.Context, remote *models.Entry) (bool, error) {
	local, err := s.entryRepo.GetByID(ctx, remote.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			if remote.Deleted {
				// Tombstone for a record we never had: nothing to create.
				return false, nil
			}
			return false, s.entryRepo.Upsert(ctx, remote)
		}
		return false, err
	}

	switch {
	case remote.UpdatedAt > local.UpdatedAt:
		return false, s.entryRepo.Upsert(ctx, remote)
	case remote.UpdatedAt < local.UpdatedAt:
		return true, nil
	default:
		// Equal timestamps: already consistent.
		return false, nil
	}
}

func (s *SyncService) mergeReview(ctx context.Context, remote *models.Review) (bool, error) {
	local, err := s.reviewRepo.GetByID(ctx, remote.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			if remote.Deleted {
				return false, nil
			}
			return false, s.reviewRepo.Upsert(ctx, remote)
		}
		return false, err
	}

	switch {
	case remote.UpdatedAt > local.UpdatedAt:
		return false, s.reviewRepo.Upsert(ctx, remote)
	case remote.UpdatedAt < local.UpdatedAt:
		return true, nil
	default:
		return false, nil
	}
}

// SyncEntry is the single-record fast path used after every local save so
// changes propagate promptly. The local save has already succeeded when
// this runs; a failure here only delays propagation and must be treated as
// a warning by callers, never a rollback.
func (s *SyncService) SyncEntry(ctx context.Context, id string) error {
	cfg, err := s.configRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading sync config: %w", err)
	}
	if !cfg.Enabled {
		return common.ErrSyncDisabled
	}
	password, err := s.session.Passphrase()
	if err != nil {
		return err
	}

	e, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading entry %s: %w", id, err)
	}
	rec, err := codec.EncryptEntry(e, password)
	if err != nil {
		return fmt.Errorf("encrypting entry %s: %w", id, err)
	}

	resp, err := s.client.SyncSingleEntry(ctx, &wire.SingleSyncRequest{
		UserHash:          cfg.UserHash,
		VerificationToken: cryptox.VerificationToken(password),
		Entry:             rec,
	})
	if err != nil {
		return err
	}
	if !resp.Synced {
		s.logger.Debug(ctx, "remote already had a newer copy", "id", id)
	}

	cfg.LastSyncAt = s.now()
	return s.configRepo.Save(ctx, cfg)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
