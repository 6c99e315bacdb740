package records

import (
	"context"
	"sort"
	"sync"

	"github.com/inkwell-app/inkwell/internal/wire"
)

// InMemoryRepository is a map-backed Repository used in tests.
type InMemoryRepository struct {
	mu sync.RWMutex
	// keyed by userID, kind, record id
	data map[string]map[string]map[string]*wire.Record
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[string]map[string]map[string]*wire.Record)}
}

func (r *InMemoryRepository) bucket(userID, kind string) map[string]*wire.Record {
	kinds, ok := r.data[userID]
	if !ok {
		kinds = make(map[string]map[string]*wire.Record)
		r.data[userID] = kinds
	}
	recs, ok := kinds[kind]
	if !ok {
		recs = make(map[string]*wire.Record)
		kinds[kind] = recs
	}
	return recs
}

func (r *InMemoryRepository) SyncBatch(ctx context.Context, userID, kind string, incoming []*wire.Record, since int64) (int, []*wire.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.bucket(userID, kind)

	pushed := 0
	for _, rec := range incoming {
		if r.upsertNewer(recs, rec) {
			pushed++
		}
	}

	var deltas []*wire.Record
	for _, rec := range recs {
		if rec.UpdatedAt > since {
			out := *rec
			deltas = append(deltas, &out)
		}
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].UpdatedAt < deltas[j].UpdatedAt })

	return pushed, deltas, nil
}

func (r *InMemoryRepository) SyncOne(ctx context.Context, userID, kind string, rec *wire.Record) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.upsertNewer(r.bucket(userID, kind), rec), nil
}

func (r *InMemoryRepository) upsertNewer(recs map[string]*wire.Record, rec *wire.Record) bool {
	existing, ok := recs[rec.ID]
	if ok && existing.UpdatedAt >= rec.UpdatedAt {
		return false
	}
	stored := *rec
	recs[rec.ID] = &stored
	return true
}

// Get returns a stored record for test assertions.
func (r *InMemoryRepository) Get(userID, kind, id string) (*wire.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds, ok := r.data[userID]
	if !ok {
		return nil, false
	}
	recs, ok := kinds[kind]
	if !ok {
		return nil, false
	}
	rec, ok := recs[id]
	if !ok {
		return nil, false
	}
	out := *rec
	return &out, true
}
