// Package records stores encrypted journal records for all users. The
// server treats record payloads as opaque ciphertext; only the metadata
// needed for conflict ordering (id, updated_at, tombstone flag) is
// readable. Both record kinds share one table, distinguished by the
// kind column.
package records

import (
	"context"

	"github.com/inkwell-app/inkwell/internal/wire"
)

// Record kinds stored in the kind column.
const (
	KindEntry  = "entry"
	KindReview = "review"
)

type Repository interface {
	// SyncBatch applies incoming records upsert-by-recency and returns how
	// many were stored plus every record of the user newer than since.
	// The whole batch commits or rolls back as one unit.
	SyncBatch(ctx context.Context, userID, kind string, incoming []*wire.Record, since int64) (int, []*wire.Record, error)

	// SyncOne applies a single record upsert-by-recency. Returns whether
	// the incoming copy was stored (false: the server already holds a
	// newer one).
	SyncOne(ctx context.Context, userID, kind string, rec *wire.Record) (bool, error)
}
