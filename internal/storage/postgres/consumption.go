package postgres

import (
	"context"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type consumptionStorage struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

const eventColumns = `id, user_id, occurred_at, log_date, kind, slot_number, food_id, descriptor,
	quantity, unit, calories, protein, cardio_minutes, met_plan`

func (s *consumptionStorage) AppendEvent(ctx context.Context, e *storage.ConsumptionEvent) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	query := `
		INSERT INTO consumption_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.pool.Exec(ctx, query,
		e.ID,
		e.UserID,
		e.OccurredAt,
		e.LogDate,
		e.Kind,
		e.SlotNumber,
		e.FoodID,
		e.Descriptor,
		e.Quantity,
		e.Unit,
		e.Calories,
		e.Protein,
		e.CardioMinutes,
		e.MetPlan,
	)

	return wrapErr("failed to append consumption event", err)
}

func (s *consumptionStorage) ListEventsByDate(ctx context.Context, userID string, date time.Time) ([]storage.ConsumptionEvent, error) {
	return s.ListEventsInRange(ctx, userID, date, date)
}

func (s *consumptionStorage) ListEventsInRange(ctx context.Context, userID string, from, to time.Time) ([]storage.ConsumptionEvent, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT ` + eventColumns + `
		FROM consumption_events
		WHERE user_id = $1 AND log_date BETWEEN $2 AND $3
		ORDER BY occurred_at, id
	`

	rows, err := s.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, wrapErr("failed to list consumption events", err)
	}
	defer rows.Close()

	events := []storage.ConsumptionEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, wrapErr("failed to scan consumption event", err)
		}
		events = append(events, e)
	}

	return events, wrapErr("error iterating consumption events", rows.Err())
}

func scanEvent(rows pgx.Rows) (storage.ConsumptionEvent, error) {
	var e storage.ConsumptionEvent
	err := rows.Scan(
		&e.ID,
		&e.UserID,
		&e.OccurredAt,
		&e.LogDate,
		&e.Kind,
		&e.SlotNumber,
		&e.FoodID,
		&e.Descriptor,
		&e.Quantity,
		&e.Unit,
		&e.Calories,
		&e.Protein,
		&e.CardioMinutes,
		&e.MetPlan,
	)
	e.LogDate = asUTCDate(e.LogDate)
	return e, err
}

// asUTCDate приводит значение колонки DATE к полуночи UTC
func asUTCDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *consumptionStorage) DistinctLogDates(ctx context.Context, userID string, onOrBefore time.Time, limit int) ([]time.Time, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT DISTINCT log_date
		FROM consumption_events
		WHERE user_id = $1 AND log_date <= $2
		ORDER BY log_date DESC
		LIMIT $3
	`

	return s.queryDates(ctx, "failed to list log dates", query, userID, onOrBefore, limit)
}

func (s *consumptionStorage) AdherenceDates(ctx context.Context, userID string, limit int) ([]time.Time, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT DISTINCT log_date
		FROM consumption_events
		WHERE user_id = $1 AND met_plan
		ORDER BY log_date DESC
		LIMIT $2
	`

	return s.queryDates(ctx, "failed to list adherence dates", query, userID, limit)
}

func (s *consumptionStorage) queryDates(ctx context.Context, op string, query string, args ...any) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	dates := []time.Time{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, wrapErr(op, err)
		}
		dates = append(dates, asUTCDate(d))
	}

	return dates, wrapErr(op, rows.Err())
}

func (s *consumptionStorage) DailyEventCounts(ctx context.Context, userID string, from, to time.Time) ([]storage.DayCount, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT log_date, COUNT(*)
		FROM consumption_events
		WHERE user_id = $1 AND log_date BETWEEN $2 AND $3
		GROUP BY log_date
		ORDER BY log_date
	`

	rows, err := s.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, wrapErr("failed to count daily events", err)
	}
	defer rows.Close()

	counts := []storage.DayCount{}
	for rows.Next() {
		var dc storage.DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, wrapErr("failed to scan daily count", err)
		}
		dc.Date = asUTCDate(dc.Date)
		counts = append(counts, dc)
	}

	return counts, wrapErr("error iterating daily counts", rows.Err())
}
