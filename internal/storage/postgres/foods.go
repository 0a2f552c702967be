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

type foodsStorage struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

const foodColumns = `id, name, unit, calories_per_unit, protein_per_unit, archived_at, created_at, updated_at`

func scanFood(row pgx.Row, f *storage.FoodItem) error {
	return row.Scan(
		&f.ID,
		&f.Name,
		&f.Unit,
		&f.CaloriesPerUnit,
		&f.ProteinPerUnit,
		&f.ArchivedAt,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
}

func (s *foodsStorage) GetFood(ctx context.Context, id uuid.UUID) (*storage.FoodItem, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var f storage.FoodItem
	err := scanFood(s.pool.QueryRow(ctx, `SELECT `+foodColumns+` FROM food_items WHERE id = $1`, id), &f)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("failed to get food item", err)
	}

	return &f, nil
}

func (s *foodsStorage) ListFoods(ctx context.Context, query string, limit, offset int) ([]storage.FoodItem, int, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	pattern := "%" + query + "%"

	var total int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM food_items
		WHERE archived_at IS NULL AND name ILIKE $1
	`, pattern).Scan(&total)
	if err != nil {
		return nil, 0, wrapErr("failed to count food items", err)
	}

	// LIMIT NULL — без ограничения
	var limitArg *int
	if limit > 0 {
		limitArg = &limit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+foodColumns+`
		FROM food_items
		WHERE archived_at IS NULL AND name ILIKE $1
		ORDER BY lower(name)
		LIMIT $2 OFFSET $3
	`, pattern, limitArg, offset)
	if err != nil {
		return nil, 0, wrapErr("failed to list food items", err)
	}
	defer rows.Close()

	items := []storage.FoodItem{}
	for rows.Next() {
		var f storage.FoodItem
		if err := scanFood(rows, &f); err != nil {
			return nil, 0, wrapErr("failed to scan food item", err)
		}
		items = append(items, f)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr("error iterating food items", err)
	}

	return items, total, nil
}

func (s *foodsStorage) UpsertFood(ctx context.Context, req storage.FoodUpsert) (storage.FoodItem, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		INSERT INTO food_items (id, name, unit, calories_per_unit, protein_per_unit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (lower(name)) DO UPDATE SET
			name = EXCLUDED.name,
			unit = EXCLUDED.unit,
			calories_per_unit = EXCLUDED.calories_per_unit,
			protein_per_unit = EXCLUDED.protein_per_unit,
			archived_at = NULL,
			updated_at = NOW()
		RETURNING ` + foodColumns

	var f storage.FoodItem
	err := scanFood(s.pool.QueryRow(ctx, query,
		uuid.New(),
		req.Name,
		req.Unit,
		req.CaloriesPerUnit,
		req.ProteinPerUnit,
	), &f)
	if err != nil {
		return storage.FoodItem{}, wrapErr("failed to upsert food item", err)
	}

	return f, nil
}

func (s *foodsStorage) ArchiveFood(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.pool.Exec(ctx, `
		UPDATE food_items SET archived_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND archived_at IS NULL
	`, id)
	if err != nil {
		return wrapErr("failed to archive food item", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}
