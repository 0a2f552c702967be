package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
)

// WeightMemoryStorage — журнал веса в памяти
type WeightMemoryStorage struct {
	mu      sync.RWMutex
	entries map[string][]storage.WeightEntry // user_id -> записи в порядке добавления
}

func NewWeightMemoryStorage() *WeightMemoryStorage {
	return &WeightMemoryStorage{
		entries: make(map[string][]storage.WeightEntry),
	}
}

func (s *WeightMemoryStorage) AppendWeight(ctx context.Context, entry *storage.WeightEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.entries[entry.UserID] = append(s.entries[entry.UserID], *entry)
	return nil
}

func (s *WeightMemoryStorage) ListWeights(ctx context.Context, userID string, from, to time.Time) ([]storage.WeightEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.WeightEntry{}
	for _, e := range s.entries[userID] {
		if e.LogDate.Before(from) || e.LogDate.After(to) {
			continue
		}
		result = append(result, e)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].LogDate.Equal(result[j].LogDate) {
			return result[i].LogDate.Before(result[j].LogDate)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (s *WeightMemoryStorage) LatestWeight(ctx context.Context, userID string) (*storage.WeightEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[userID]
	if len(entries) == 0 {
		return nil, storage.ErrNotFound
	}

	// при равной дате побеждает более поздняя запись
	latest := entries[0]
	for _, e := range entries[1:] {
		if !e.LogDate.Before(latest.LogDate) {
			latest = e
		}
	}
	return &latest, nil
}
