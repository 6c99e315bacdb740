// Package entries stores journal entries in the local SQLite database.
package entries

import (
	"context"

	"github.com/inkwell-app/inkwell/internal/client/models"
)

// Repository is the local keyed store for journal entries.
type Repository interface {
	// Upsert inserts or wholesale-replaces an entry by id.
	Upsert(ctx context.Context, e *models.Entry) error

	// GetByID returns an entry regardless of its tombstone state.
	// Returns common.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Entry, error)

	// GetAll lists all live (non-tombstoned) entries.
	GetAll(ctx context.Context) ([]*models.Entry, error)

	// GetChangedSince lists entries, tombstones included, whose updatedAt
	// is strictly greater than the cursor.
	GetChangedSince(ctx context.Context, cursor int64) ([]*models.Entry, error)

	// SoftDelete tombstones an entry and stamps the deleting mutation's
	// timestamp so the deletion propagates.
	SoftDelete(ctx context.Context, id string, updatedAt int64) error
}
