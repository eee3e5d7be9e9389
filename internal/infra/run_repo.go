package infra

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/Vovarama1992/audioproc/internal/ports"
)

type runRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) ports.RunRepo {
	return &runRepo{db: db}
}

func (r *runRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS conversion_runs (
			id          UUID PRIMARY KEY,
			job_id      TEXT NOT NULL,
			mode        TEXT NOT NULL,
			input_path  TEXT NOT NULL,
			outputs     TEXT[] NOT NULL DEFAULT '{}',
			status      TEXT NOT NULL,
			chunks      INT NOT NULL DEFAULT 0,
			attempts    INT NOT NULL DEFAULT 0,
			bytes       BIGINT NOT NULL DEFAULT 0,
			error       TEXT,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

func (r *runRepo) Create(ctx context.Context, rec ports.RunRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversion_runs
			(id, job_id, mode, input_path, outputs, status, chunks, attempts, bytes, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		rec.ID, rec.JobID, rec.Mode, rec.Input, pq.Array(rec.Outputs), rec.Status,
		rec.Chunks, rec.Attempts, rec.Bytes, rec.Error, rec.StartedAt, rec.FinishedAt,
	)
	return err
}

func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, mode, input_path, outputs, status, chunks, attempts, bytes, error, started_at, finished_at
		FROM conversion_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.RunRecord
	for rows.Next() {
		var rec ports.RunRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.JobID,
			&rec.Mode,
			&rec.Input,
			pq.Array(&rec.Outputs),
			&rec.Status,
			&rec.Chunks,
			&rec.Attempts,
			&rec.Bytes,
			&rec.Error,
			&rec.StartedAt,
			&rec.FinishedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
