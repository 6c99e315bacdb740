// Package reviews stores periodic reviews in the local SQLite database.
package reviews

import (
	"context"

	"github.com/inkwell-app/inkwell/internal/client/models"
)

// Repository is the local keyed store for periodic reviews.
type Repository interface {
	Upsert(ctx context.Context, v *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	GetAll(ctx context.Context) ([]*models.Review, error)
	GetChangedSince(ctx context.Context, cursor int64) ([]*models.Review, error)
	SoftDelete(ctx context.Context, id string, updatedAt int64) error
}
