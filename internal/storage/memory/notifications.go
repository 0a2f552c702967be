package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
)

type NotificationsMemoryStorage struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*storage.Notification // id -> notification
	byUser        map[string][]uuid.UUID               // user_id -> ids
	uniqueKeys    map[string]uuid.UUID                 // user:kind:date -> id
}

func NewNotificationsMemoryStorage() *NotificationsMemoryStorage {
	return &NotificationsMemoryStorage{
		notifications: make(map[uuid.UUID]*storage.Notification),
		byUser:        make(map[string][]uuid.UUID),
		uniqueKeys:    make(map[string]uuid.UUID),
	}
}

func (s *NotificationsMemoryStorage) CreateNotification(ctx context.Context, n *storage.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := uniqueKey(n.UserID, n.Kind, n.SourceDate)
	if existingID, ok := s.uniqueKeys[key]; ok {
		if existing, ok := s.notifications[existingID]; ok {
			// created_at и read_at не трогаем
			existing.Title = n.Title
			existing.Body = n.Body
			existing.Severity = n.Severity
			n.ID = existing.ID
			return nil
		}
	}

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	clone := *n
	s.notifications[clone.ID] = &clone
	s.byUser[clone.UserID] = append(s.byUser[clone.UserID], clone.ID)
	s.uniqueKeys[key] = clone.ID

	return nil
}

func (s *NotificationsMemoryStorage) ListNotifications(ctx context.Context, userID string, onlyUnread bool, limit, offset int) ([]storage.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.Notification{}
	for _, id := range s.byUser[userID] {
		n, ok := s.notifications[id]
		if !ok || (onlyUnread && n.ReadAt != nil) {
			continue
		}
		result = append(result, *n)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if offset >= len(result) {
		return []storage.Notification{}, nil
	}
	result = result[offset:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (s *NotificationsMemoryStorage) UnreadCount(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.byUser[userID] {
		if n, ok := s.notifications[id]; ok && n.ReadAt == nil {
			count++
		}
	}

	return count, nil
}

func (s *NotificationsMemoryStorage) MarkRead(ctx context.Context, userID string, ids []uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	now := time.Now()
	for _, id := range ids {
		n, ok := s.notifications[id]
		if !ok || n.UserID != userID || n.ReadAt != nil {
			continue
		}
		n.ReadAt = &now
		marked++
	}

	return marked, nil
}

func (s *NotificationsMemoryStorage) MarkAllRead(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	now := time.Now()
	for _, id := range s.byUser[userID] {
		if n, ok := s.notifications[id]; ok && n.ReadAt == nil {
			n.ReadAt = &now
			marked++
		}
	}

	return marked, nil
}

func uniqueKey(userID string, kind string, sourceDate *time.Time) string {
	if sourceDate == nil {
		return userID + ":" + kind + ":null"
	}
	return userID + ":" + kind + ":" + sourceDate.Format("2006-01-02")
}
