package records

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-app/inkwell/internal/wire"
)

// BatchResult is the outcome of one bulk exchange.
type BatchResult struct {
	Pushed     int
	Records    []*wire.Record
	ServerTime int64
}

// Service wraps the repository with server-time stamping. ServerTime is
// what clients persist as their next cursor, so it must come from this
// single clock, never from any client.
type Service struct {
	repo Repository

	now func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SyncBatch stores the incoming records upsert-by-recency and returns the
// user's records newer than since together with the server time in
// milliseconds.
func (s *Service) SyncBatch(ctx context.Context, userID, kind string, incoming []*wire.Record, since int64) (*BatchResult, error) {
	pushed, deltas, err := s.repo.SyncBatch(ctx, userID, kind, incoming, since)
	if err != nil {
		return nil, fmt.Errorf("error syncing batch: %w", err)
	}

	return &BatchResult{
		Pushed:     pushed,
		Records:    deltas,
		ServerTime: s.now().UnixMilli(),
	}, nil
}

// SyncOne stores a single record upsert-by-recency. Returns whether the
// incoming copy won.
func (s *Service) SyncOne(ctx context.Context, userID, kind string, rec *wire.Record) (bool, error) {
	synced, err := s.repo.SyncOne(ctx, userID, kind, rec)
	if err != nil {
		return false, fmt.Errorf("error syncing record: %w", err)
	}
	return synced, nil
}
