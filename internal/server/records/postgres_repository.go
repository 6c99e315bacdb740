package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/inkwell-app/inkwell/internal/cryptox"
	"github.com/inkwell-app/inkwell/internal/dbx"
	"github.com/inkwell-app/inkwell/internal/wire"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SyncBatch(ctx context.Context, userID, kind string, incoming []*wire.Record, since int64) (int, []*wire.Record, error) {
	var (
		pushed int
		deltas []*wire.Record
	)

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, rec := range incoming {
			stored, err := upsertNewer(ctx, tx, userID, kind, rec)
			if err != nil {
				return err
			}
			if stored {
				pushed++
			}
		}

		var err error
		deltas, err = changedSince(ctx, tx, userID, kind, since)
		return err
	})
	if err != nil {
		return 0, nil, err
	}

	return pushed, deltas, nil
}

func (r *PostgresRepository) SyncOne(ctx context.Context, userID, kind string, rec *wire.Record) (bool, error) {
	return upsertNewer(ctx, r.db, userID, kind, rec)
}

// upsertNewer inserts the record or overwrites an existing row only when
// the incoming copy is strictly newer. Tombstones overwrite like any other
// record; nothing is ever hard-deleted.
func upsertNewer(ctx context.Context, db dbx.DBTX, userID, kind string, rec *wire.Record) (bool, error) {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return false, fmt.Errorf("error marshalling payload: %w", err)
	}

	query :=
		`INSERT INTO records (user_id, kind, id, record_date, data, updated_at, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, kind, id) DO UPDATE SET
			record_date = excluded.record_date,
			data = excluded.data,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted
		 WHERE records.updated_at < excluded.updated_at
		 `

	res, err := db.ExecContext(ctx, query,
		userID, kind, rec.ID, rec.Date, data, rec.UpdatedAt, rec.Deleted)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error getting rows affected: %w", err)
	}
	return ra > 0, nil
}

func changedSince(ctx context.Context, db dbx.DBTX, userID, kind string, since int64) ([]*wire.Record, error) {
	query :=
		`SELECT id, record_date, data, updated_at, deleted
		 FROM records
		 WHERE user_id = $1 AND kind = $2 AND updated_at > $3
		 ORDER BY updated_at
		 `

	rows, err := db.QueryContext(ctx, query, userID, kind, since)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var out []*wire.Record
	for rows.Next() {
		var (
			rec  wire.Record
			data []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Date, &data, &rec.UpdatedAt, &rec.Deleted); err != nil {
			return nil, fmt.Errorf("error scanning record: %w", err)
		}
		payload := &cryptox.EncryptionPayload{}
		if err := json.Unmarshal(data, payload); err != nil {
			return nil, fmt.Errorf("error unmarshalling payload: %w", err)
		}
		rec.Data = payload
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
