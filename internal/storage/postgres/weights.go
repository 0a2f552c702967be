package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type weightStorage struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

const weightColumns = `id, user_id, log_date, weight_kg, created_at`

func (s *weightStorage) AppendWeight(ctx context.Context, e *storage.WeightEntry) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO weight_log (` + weightColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, e.ID, e.UserID, e.LogDate, e.WeightKg, e.CreatedAt)
	return wrapErr("failed to append weight", err)
}

func (s *weightStorage) ListWeights(ctx context.Context, userID string, from, to time.Time) ([]storage.WeightEntry, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT ` + weightColumns + `
		FROM weight_log
		WHERE user_id = $1 AND log_date BETWEEN $2 AND $3
		ORDER BY log_date, created_at
	`

	rows, err := s.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, wrapErr("failed to list weights", err)
	}
	defer rows.Close()

	entries := []storage.WeightEntry{}
	for rows.Next() {
		var e storage.WeightEntry
		if err := scanWeight(rows, &e); err != nil {
			return nil, wrapErr("failed to scan weight", err)
		}
		entries = append(entries, e)
	}

	return entries, wrapErr("error iterating weights", rows.Err())
}

func (s *weightStorage) LatestWeight(ctx context.Context, userID string) (*storage.WeightEntry, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT ` + weightColumns + `
		FROM weight_log
		WHERE user_id = $1
		ORDER BY log_date DESC, created_at DESC
		LIMIT 1
	`

	var e storage.WeightEntry
	err := scanWeight(s.pool.QueryRow(ctx, query, userID), &e)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("failed to get latest weight", err)
	}

	return &e, nil
}

func scanWeight(row pgx.Row, e *storage.WeightEntry) error {
	err := row.Scan(&e.ID, &e.UserID, &e.LogDate, &e.WeightKg, &e.CreatedAt)
	e.LogDate = asUTCDate(e.LogDate)
	return err
}
