// Package api talks to the remote sync service. The server only ever sees
// opaque encrypted records; this package does no cryptography itself.
package api

import (
	"context"

	"github.com/inkwell-app/inkwell/internal/wire"
)

// Client is the remote sync service seen from the device.
type Client interface {
	// Register creates the user on first contact or validates credentials
	// on subsequent contacts, registering the calling device.
	Register(ctx context.Context, req *wire.RegisterRequest) (*wire.RegisterResponse, error)

	// SyncEntries exchanges journal entry records: pushes the given batch
	// and pulls every remote record newer than the submitted cursor.
	SyncEntries(ctx context.Context, req *wire.SyncRequest) (*wire.SyncResponse, error)

	// SyncReviews is the analogous exchange for periodic reviews.
	SyncReviews(ctx context.Context, req *wire.SyncRequest) (*wire.SyncResponse, error)

	// SyncSingleEntry is the fast path used right after a local save.
	SyncSingleEntry(ctx context.Context, req *wire.SingleSyncRequest) (*wire.SingleSyncResponse, error)
}
