package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type plansStorage struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func (s *plansStorage) ListTargets(ctx context.Context, userID string) ([]storage.MealTarget, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT user_id, slot_number, label, target_calories, target_protein, created_at
		FROM meal_targets
		WHERE user_id = $1
		ORDER BY slot_number
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr("failed to list meal targets", err)
	}
	defer rows.Close()

	targets := []storage.MealTarget{}
	for rows.Next() {
		var t storage.MealTarget
		if err := rows.Scan(
			&t.UserID,
			&t.SlotNumber,
			&t.Label,
			&t.TargetCalories,
			&t.TargetProtein,
			&t.CreatedAt,
		); err != nil {
			return nil, wrapErr("failed to scan meal target", err)
		}
		targets = append(targets, t)
	}

	return targets, wrapErr("error iterating meal targets", rows.Err())
}

// ReplaceAll заменяет план в одной транзакции. Строка профиля блокируется
// FOR UPDATE, поэтому конкурентные генерации сериализуются.
func (s *plansStorage) ReplaceAll(ctx context.Context, userID string, settings storage.PlanSettings, upserts []storage.MealTargetUpsert, expectedVersion *int) (int, []storage.MealTarget, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, nil, wrapErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var current int
	err = tx.QueryRow(ctx, `SELECT plan_version FROM profiles WHERE user_id = $1 FOR UPDATE`, userID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, storage.ErrNotFound
	}
	if err != nil {
		return 0, nil, wrapErr("failed to lock profile", err)
	}

	if expectedVersion != nil && *expectedVersion != current {
		return 0, nil, fmt.Errorf("expected %d, current %d: %w", *expectedVersion, current, storage.ErrVersionConflict)
	}

	var version int
	err = tx.QueryRow(ctx, `
		UPDATE profiles
		SET meal_count = $2, daily_calorie_goal = $3, daily_protein_goal = $4,
		    plan_version = plan_version + 1, updated_at = NOW()
		WHERE user_id = $1
		RETURNING plan_version
	`, userID, settings.MealCount, settings.DailyCalorieGoal, settings.DailyProteinGoal).Scan(&version)
	if err != nil {
		return 0, nil, wrapErr("failed to update plan settings", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM meal_targets WHERE user_id = $1`, userID); err != nil {
		return 0, nil, wrapErr("failed to delete meal targets", err)
	}

	insertQuery := `
		INSERT INTO meal_targets (user_id, slot_number, label, target_calories, target_protein)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	targets := make([]storage.MealTarget, 0, len(upserts))
	for _, u := range upserts {
		t := storage.MealTarget{
			UserID:         userID,
			SlotNumber:     u.SlotNumber,
			Label:          u.Label,
			TargetCalories: u.TargetCalories,
			TargetProtein:  u.TargetProtein,
		}
		if err := tx.QueryRow(ctx, insertQuery,
			userID,
			u.SlotNumber,
			u.Label,
			u.TargetCalories,
			u.TargetProtein,
		).Scan(&t.CreatedAt); err != nil {
			return 0, nil, wrapErr("failed to insert meal target", err)
		}
		targets = append(targets, t)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, wrapErr("failed to commit transaction", err)
	}

	return version, targets, nil
}
