package reminders

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindStreakAtRisk = "streak_at_risk"
	KindNoPlan       = "no_plan"

	SeverityInfo = "info"
	SeverityWarn = "warn"
)

// NotificationDTO — DTO для уведомления
type NotificationDTO struct {
	ID         uuid.UUID  `json:"id"`
	Kind       string     `json:"kind"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	SourceDate *string    `json:"source_date,omitempty"` // YYYY-MM-DD
	Severity   string     `json:"severity"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}

// InboxListResponse — ответ для GET /v1/inbox
type InboxListResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
}

// UnreadCountResponse — ответ для GET /v1/inbox/unread-count
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

// MarkReadRequest — запрос для POST /v1/inbox/mark-read
type MarkReadRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// MarkReadResponse — ответ для mark-read и mark-all-read
type MarkReadResponse struct {
	Marked int `json:"marked"`
}

// GenerateRequest — запрос для POST /v1/inbox/generate; пустая дата означает сегодня
type GenerateRequest struct {
	Date string `json:"date,omitempty"`
}

// GenerateResponse — ответ для POST /v1/inbox/generate
type GenerateResponse struct {
	Date          string            `json:"date"`
	Created       int               `json:"created"`
	Notifications []NotificationDTO `json:"notifications"`
}
