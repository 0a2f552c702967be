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

// PostgresStorage — Postgres реализация storage.Backend
type PostgresStorage struct {
	pool          *pgxpool.Pool
	timeout       time.Duration
	plans         *plansStorage
	consumption   *consumptionStorage
	foods         *foodsStorage
	notifications *PostgresNotificationsStorage
	reports       *PostgresReportsStorage
	weights       *weightStorage
}

// New создаёт PostgresStorage и обеспечивает профиль по умолчанию.
// queryTimeout ограничивает каждый запрос; 0 — без ограничения.
func New(ctx context.Context, databaseURL string, queryTimeout time.Duration) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapErr("ping", err)
	}

	ps := &PostgresStorage{
		pool:          pool,
		timeout:       queryTimeout,
		plans:         &plansStorage{pool: pool, timeout: queryTimeout},
		consumption:   &consumptionStorage{pool: pool, timeout: queryTimeout},
		foods:         &foodsStorage{pool: pool, timeout: queryTimeout},
		notifications: NewPostgresNotificationsStorage(pool, queryTimeout),
		reports:       NewPostgresReportsStorage(pool, queryTimeout),
		weights:       &weightStorage{pool: pool, timeout: queryTimeout},
	}

	if _, err := ps.EnsureProfile(ctx, storage.DefaultUserID, "Me"); err != nil {
		pool.Close()
		return nil, err
	}

	return ps, nil
}

// withTimeout ограничивает запрос таймаутом DB_QUERY_TIMEOUT_MS
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

const profileColumns = `user_id, display_name, meal_count, daily_calorie_goal, daily_protein_goal, plan_version,
	age, height_cm, current_weight_kg, target_weight_kg, goal_mode, created_at, updated_at`

func scanProfile(row pgx.Row, prof *storage.Profile) error {
	return row.Scan(
		&prof.UserID,
		&prof.DisplayName,
		&prof.MealCount,
		&prof.DailyCalorieGoal,
		&prof.DailyProteinGoal,
		&prof.PlanVersion,
		&prof.Age,
		&prof.HeightCm,
		&prof.CurrentWeightKg,
		&prof.TargetWeightKg,
		&prof.GoalMode,
		&prof.CreatedAt,
		&prof.UpdatedAt,
	)
}

func (p *PostgresStorage) ListProfiles(ctx context.Context) ([]storage.Profile, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY user_id ASC`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("failed to list profiles", err)
	}
	defer rows.Close()

	profiles := []storage.Profile{}
	for rows.Next() {
		var prof storage.Profile
		if err := scanProfile(rows, &prof); err != nil {
			return nil, wrapErr("failed to scan profile", err)
		}
		profiles = append(profiles, prof)
	}

	return profiles, wrapErr("error iterating profiles", rows.Err())
}

func (p *PostgresStorage) GetProfile(ctx context.Context, userID string) (*storage.Profile, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	var prof storage.Profile
	err := scanProfile(p.pool.QueryRow(ctx, query, userID), &prof)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("failed to get profile", err)
	}

	return &prof, nil
}

func (p *PostgresStorage) EnsureProfile(ctx context.Context, userID string, displayName string) (*storage.Profile, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	// display_name обновляется только если передан непустой
	query := `
		INSERT INTO profiles (user_id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = CASE WHEN EXCLUDED.display_name = '' THEN profiles.display_name ELSE EXCLUDED.display_name END,
			updated_at = CASE WHEN EXCLUDED.display_name = '' THEN profiles.updated_at ELSE NOW() END
		RETURNING ` + profileColumns

	var prof storage.Profile
	if err := scanProfile(p.pool.QueryRow(ctx, query, userID, displayName), &prof); err != nil {
		return nil, wrapErr("failed to ensure profile", err)
	}

	return &prof, nil
}

func (p *PostgresStorage) UpdateBodyStats(ctx context.Context, userID string, stats storage.BodyStats) (*storage.Profile, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	// NULL-параметр оставляет колонку как есть
	query := `
		UPDATE profiles SET
			age = COALESCE($2, age),
			height_cm = COALESCE($3, height_cm),
			current_weight_kg = COALESCE($4, current_weight_kg),
			target_weight_kg = COALESCE($5, target_weight_kg),
			goal_mode = COALESCE($6, goal_mode),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns

	var prof storage.Profile
	err := scanProfile(p.pool.QueryRow(ctx, query,
		userID,
		stats.Age,
		stats.HeightCm,
		stats.CurrentWeightKg,
		stats.TargetWeightKg,
		stats.GoalMode,
	), &prof)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("failed to update body stats", err)
	}

	return &prof, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStorage) GetPlansStorage() storage.PlansStorage {
	return p.plans
}

func (p *PostgresStorage) GetConsumptionStorage() storage.ConsumptionStorage {
	return p.consumption
}

func (p *PostgresStorage) GetFoodsStorage() storage.FoodsStorage {
	return p.foods
}

func (p *PostgresStorage) GetNotificationsStorage() storage.NotificationsStorage {
	return p.notifications
}

func (p *PostgresStorage) GetReportsStorage() storage.ReportsStorage {
	return p.reports
}

func (p *PostgresStorage) GetWeightStorage() storage.WeightStorage {
	return p.weights
}
