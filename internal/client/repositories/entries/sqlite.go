package entries

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

const entryColumns = `id, entry_date, content, tags, habits, highlights, word_count, created_at, updated_at, deleted`

// Upsert inserts or replaces an entry by id. Edits are wholesale, so every
// column is overwritten on conflict.
func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.Entry) error {
	tags, habits, highlights, err := marshalJSONFields(e)
	if err != nil {
		return err
	}

	query := `INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entry_date = excluded.entry_date,
			content = excluded.content,
			tags = excluded.tags,
			habits = excluded.habits,
			highlights = excluded.highlights,
			word_count = excluded.word_count,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.Date, e.Content, tags, habits, highlights, e.WordCount, e.CreatedAt, e.UpdatedAt, boolToInt(e.Deleted))
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE deleted = 0 ORDER BY entry_date`
	return r.queryEntries(ctx, query)
}

func (r *SQLiteRepository) GetChangedSince(ctx context.Context, cursor int64) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE updated_at > ? ORDER BY updated_at`
	return r.queryEntries(ctx, query, cursor)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, updatedAt int64) error {
	query := `UPDATE entries SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
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

func (r *SQLiteRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		e                       models.Entry
		tags, habits, highlights string
		deleted                 int
	)
	if err := row.Scan(&e.ID, &e.Date, &e.Content, &tags, &habits, &highlights, &e.WordCount, &e.CreatedAt, &e.UpdatedAt, &deleted); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("invalid tags column: %w", err)
	}
	if err := json.Unmarshal([]byte(habits), &e.Habits); err != nil {
		return nil, fmt.Errorf("invalid habits column: %w", err)
	}
	if err := json.Unmarshal([]byte(highlights), &e.Highlights); err != nil {
		return nil, fmt.Errorf("invalid highlights column: %w", err)
	}
	e.Deleted = deleted != 0
	return &e, nil
}

func marshalJSONFields(e *models.Entry) (tags, habits, highlights string, err error) {
	t, err := json.Marshal(e.Tags)
	if err != nil {
		return "", "", "", err
	}
	h, err := json.Marshal(e.Habits)
	if err != nil {
		return "", "", "", err
	}
	hl, err := json.Marshal(e.Highlights)
	if err != nil {
		return "", "", "", err
	}
	return string(t), string(h), string(hl), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
