package reviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inkwell-app/inkwell/internal/client/models"
	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX
// (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const reviewColumns = `id, period, content, mood, highlights, created_at, updated_at, deleted`

func (r *SQLiteRepository) Upsert(ctx context.Context, v *models.Review) error {
	highlights, err := json.Marshal(v.Highlights)
	if err != nil {
		return err
	}

	query := `INSERT INTO reviews (` + reviewColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			period = excluded.period,
			content = excluded.content,
			mood = excluded.mood,
			highlights = excluded.highlights,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted
	`
	_, err = r.db.ExecContext(ctx, query,
		v.ID, v.Period, v.Content, v.Mood, string(highlights), v.CreatedAt, v.UpdatedAt, boolToInt(v.Deleted))
	if err != nil {
		return fmt.Errorf("failed to upsert review: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`
	v, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select review: %w", err)
	}
	return v, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE deleted = 0 ORDER BY period`
	return r.queryReviews(ctx, query)
}

func (r *SQLiteRepository) GetChangedSince(ctx context.Context, cursor int64) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE updated_at > ? ORDER BY updated_at`
	return r.queryReviews(ctx, query, cursor)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, updatedAt int64) error {
	query := `UPDATE reviews SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) queryReviews(ctx context.Context, query string, args ...any) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select reviews: %w", err)
	}
	defer rows.Close()

	var result []*models.Review
	for rows.Next() {
		v, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*models.Review, error) {
	var (
		v          models.Review
		highlights string
		deleted    int
	)
	if err := row.Scan(&v.ID, &v.Period, &v.Content, &v.Mood, &highlights, &v.CreatedAt, &v.UpdatedAt, &deleted); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(highlights), &v.Highlights); err != nil {
		return nil, fmt.Errorf("invalid highlights column: %w", err)
	}
	v.Deleted = deleted != 0
	return &v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
