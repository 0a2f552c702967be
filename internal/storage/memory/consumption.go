package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
)

// ConsumptionMemoryStorage — append-only журнал событий в памяти
type ConsumptionMemoryStorage struct {
	mu     sync.RWMutex
	events map[string][]storage.ConsumptionEvent // user_id -> events в порядке записи
}

func NewConsumptionMemoryStorage() *ConsumptionMemoryStorage {
	return &ConsumptionMemoryStorage{
		events: make(map[string][]storage.ConsumptionEvent),
	}
}

func (s *ConsumptionMemoryStorage) AppendEvent(ctx context.Context, event *storage.ConsumptionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	s.events[event.UserID] = append(s.events[event.UserID], cloneEvent(*event))
	return nil
}

func (s *ConsumptionMemoryStorage) ListEventsByDate(ctx context.Context, userID string, date time.Time) ([]storage.ConsumptionEvent, error) {
	return s.ListEventsInRange(ctx, userID, date, date)
}

func (s *ConsumptionMemoryStorage) ListEventsInRange(ctx context.Context, userID string, from, to time.Time) ([]storage.ConsumptionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.ConsumptionEvent{}
	for _, e := range s.events[userID] {
		if e.LogDate.Before(from) || e.LogDate.After(to) {
			continue
		}
		result = append(result, cloneEvent(e))
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].OccurredAt.Equal(result[j].OccurredAt) {
			return result[i].OccurredAt.Before(result[j].OccurredAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})

	return result, nil
}

func (s *ConsumptionMemoryStorage) DistinctLogDates(ctx context.Context, userID string, onOrBefore time.Time, limit int) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, e := range s.events[userID] {
		if e.LogDate.After(onOrBefore) || seen[e.LogDate] {
			continue
		}
		seen[e.LogDate] = true
		dates = append(dates, e.LogDate)
	}

	return sortDatesDesc(dates, limit), nil
}

func (s *ConsumptionMemoryStorage) DailyEventCounts(ctx context.Context, userID string, from, to time.Time) ([]storage.DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[time.Time]int)
	for _, e := range s.events[userID] {
		if e.LogDate.Before(from) || e.LogDate.After(to) {
			continue
		}
		counts[e.LogDate]++
	}

	result := make([]storage.DayCount, 0, len(counts))
	for d, c := range counts {
		result = append(result, storage.DayCount{Date: d, Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

func (s *ConsumptionMemoryStorage) AdherenceDates(ctx context.Context, userID string, limit int) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, e := range s.events[userID] {
		if !e.MetPlan || seen[e.LogDate] {
			continue
		}
		seen[e.LogDate] = true
		dates = append(dates, e.LogDate)
	}

	return sortDatesDesc(dates, limit), nil
}

func sortDatesDesc(dates []time.Time, limit int) []time.Time {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})
	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	if dates == nil {
		dates = []time.Time{}
	}
	return dates
}

func cloneEvent(e storage.ConsumptionEvent) storage.ConsumptionEvent {
	e.SlotNumber = copyInt(e.SlotNumber)
	e.Protein = copyInt(e.Protein)
	e.CardioMinutes = copyInt(e.CardioMinutes)
	if e.FoodID != nil {
		id := *e.FoodID
		e.FoodID = &id
	}
	return e
}
