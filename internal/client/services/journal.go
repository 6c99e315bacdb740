package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-app/inkwell/internal/client/models"
	"github.com/inkwell-app/inkwell/internal/client/repositories/entries"
	"github.com/inkwell-app/inkwell/internal/client/repositories/reviews"
	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/logging"
)

// JournalService is the local editing surface. Every mutation stamps
// updatedAt at the moment of the edit (the conflict-ordering key) and then
// tries the single-record fast path so other devices see the change
// promptly. The local save never depends on the network: propagation
// failures are logged and swallowed.
type JournalService struct {
	entryRepo  entries.Repository
	reviewRepo reviews.Repository
	sync       *SyncService
	logger     logging.Logger

	now func() int64
}

func NewJournalService(entryRepo entries.Repository, reviewRepo reviews.Repository, sync *SyncService, logger logging.Logger) *JournalService {
	return &JournalService{
		entryRepo:  entryRepo,
		reviewRepo: reviewRepo,
		sync:       sync,
		logger:     logger.With("module", "journal"),
		now:        func() int64 { return time.Now().UnixMilli() },
	}
}

// SaveEntry persists a new or edited entry and kicks off propagation.
func (s *JournalService) SaveEntry(ctx context.Context, e *models.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := s.now()
	if e.CreatedAt == 0 {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	e.WordCount = len(strings.Fields(e.Content))

	if err := s.entryRepo.Upsert(ctx, e); err != nil {
		return fmt.Errorf("saving entry: %w", err)
	}

	s.propagate(ctx, e.ID)
	return nil
}

// DeleteEntry tombstones an entry so the deletion reaches other devices.
func (s *JournalService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.entryRepo.SoftDelete(ctx, id, s.now()); err != nil {
		return err
	}
	s.propagate(ctx, id)
	return nil
}

// SaveReview persists a new or edited periodic review.
func (s *JournalService) SaveReview(ctx context.Context, v *models.Review) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	now := s.now()
	if v.CreatedAt == 0 {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	if err := s.reviewRepo.Upsert(ctx, v); err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	return nil
}

// DeleteReview tombstones a review.
func (s *JournalService) DeleteReview(ctx context.Context, id string) error {
	return s.reviewRepo.SoftDelete(ctx, id, s.now())
}

func (s *JournalService) ListEntries(ctx context.Context) ([]*models.Entry, error) {
	return s.entryRepo.GetAll(ctx)
}

func (s *JournalService) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	return s.entryRepo.GetByID(ctx, id)
}

func (s *JournalService) ListReviews(ctx context.Context) ([]*models.Review, error) {
	return s.reviewRepo.GetAll(ctx)
}

// propagate runs the fast path and downgrades every failure to a warning:
// the entry is already safely on disk, only the push is delayed until the
// next full sync.
func (s *JournalService) propagate(ctx context.Context, id string) {
	if s.sync == nil {
		return
	}
	err := s.sync.SyncEntry(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrSyncDisabled):
	case errors.Is(err, common.ErrSessionLocked):
		s.logger.Warn(ctx, "entry saved locally; session locked, reauthenticate to sync", "id", id)
	default:
		s.logger.Warn(ctx, "entry saved locally; propagation failed", "id", id, "error", err)
	}
}
