package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresNotificationsStorage struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresNotificationsStorage(pool *pgxpool.Pool, timeout time.Duration) *PostgresNotificationsStorage {
	return &PostgresNotificationsStorage{pool: pool, timeout: timeout}
}

func (s *PostgresNotificationsStorage) CreateNotification(ctx context.Context, n *storage.Notification) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	// при конфликте возвращаем id существующей записи
	query := `
		INSERT INTO notifications (id, user_id, kind, title, body, source_date, severity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, kind, source_date)
		DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			severity = EXCLUDED.severity
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		n.ID,
		n.UserID,
		n.Kind,
		n.Title,
		n.Body,
		n.SourceDate,
		n.Severity,
		n.CreatedAt,
	).Scan(&n.ID)

	return wrapErr("failed to create notification", err)
}

func (s *PostgresNotificationsStorage) ListNotifications(ctx context.Context, userID string, onlyUnread bool, limit, offset int) ([]storage.Notification, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT id, user_id, kind, title, body, source_date, severity, created_at, read_at
		FROM notifications
		WHERE user_id = $1
	`

	if onlyUnread {
		query += " AND read_at IS NULL"
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr("failed to list notifications", err)
	}
	defer rows.Close()

	notifications := []storage.Notification{}
	for rows.Next() {
		var n storage.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Kind,
			&n.Title,
			&n.Body,
			&n.SourceDate,
			&n.Severity,
			&n.CreatedAt,
			&n.ReadAt,
		); err != nil {
			return nil, wrapErr("failed to scan notification", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, wrapErr("error iterating notifications", rows.Err())
}

func (s *PostgresNotificationsStorage) UnreadCount(ctx context.Context, userID string) (int, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND read_at IS NULL
	`, userID).Scan(&count)
	if err != nil {
		return 0, wrapErr("failed to count unread notifications", err)
	}

	return count, nil
}

func (s *PostgresNotificationsStorage) MarkRead(ctx context.Context, userID string, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET read_at = $1
		WHERE user_id = $2
			AND id = ANY($3)
			AND read_at IS NULL
	`, time.Now(), userID, ids)
	if err != nil {
		return 0, wrapErr("failed to mark notifications read", err)
	}

	return int(result.RowsAffected()), nil
}

func (s *PostgresNotificationsStorage) MarkAllRead(ctx context.Context, userID string) (int, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET read_at = $1
		WHERE user_id = $2 AND read_at IS NULL
	`, time.Now(), userID)
	if err != nil {
		return 0, wrapErr("failed to mark all notifications read", err)
	}

	return int(result.RowsAffected()), nil
}
