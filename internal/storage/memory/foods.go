package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
)

// DefaultFoods — стартовый справочник, тот же что в миграции 00003
func DefaultFoods() []storage.FoodUpsert {
	p := func(v float64) *float64 { return &v }
	return []storage.FoodUpsert{
		{Name: "Almonds", Unit: "g", CaloriesPerUnit: 5.79, ProteinPerUnit: p(0.21)},
		{Name: "Banana", Unit: "piece", CaloriesPerUnit: 105, ProteinPerUnit: p(1.3)},
		{Name: "Chicken breast", Unit: "g", CaloriesPerUnit: 1.65, ProteinPerUnit: p(0.31)},
		{Name: "Egg", Unit: "piece", CaloriesPerUnit: 78, ProteinPerUnit: p(6.3)},
		{Name: "Milk", Unit: "ml", CaloriesPerUnit: 0.42, ProteinPerUnit: p(0.034)},
		{Name: "Oats", Unit: "g", CaloriesPerUnit: 3.89, ProteinPerUnit: p(0.169)},
		{Name: "Rice (cooked)", Unit: "g", CaloriesPerUnit: 1.3, ProteinPerUnit: p(0.027)},
		{Name: "Whey protein", Unit: "scoop", CaloriesPerUnit: 120, ProteinPerUnit: p(24)},
	}
}

// FoodsMemoryStorage — in-memory справочник продуктов
type FoodsMemoryStorage struct {
	mu     sync.RWMutex
	items  map[uuid.UUID]*storage.FoodItem
	byName map[string]uuid.UUID // lower(name) -> id
}

func NewFoodsMemoryStorage() *FoodsMemoryStorage {
	return &FoodsMemoryStorage{
		items:  make(map[uuid.UUID]*storage.FoodItem),
		byName: make(map[string]uuid.UUID),
	}
}

func (s *FoodsMemoryStorage) seed(foods []storage.FoodUpsert) {
	for _, f := range foods {
		_, _ = s.UpsertFood(context.Background(), f)
	}
}

func (s *FoodsMemoryStorage) GetFood(ctx context.Context, id uuid.UUID) (*storage.FoodItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := cloneFood(*item)
	return &clone, nil
}

func (s *FoodsMemoryStorage) ListFoods(ctx context.Context, query string, limit, offset int) ([]storage.FoodItem, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var filtered []storage.FoodItem
	for _, item := range s.items {
		if item.ArchivedAt != nil {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		filtered = append(filtered, cloneFood(*item))
	}

	sort.Slice(filtered, func(i, j int) bool {
		return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
	})

	total := len(filtered)
	if offset >= total {
		return []storage.FoodItem{}, total, nil
	}
	filtered = filtered[offset:]
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return filtered, total, nil
}

func (s *FoodsMemoryStorage) UpsertFood(ctx context.Context, req storage.FoodUpsert) (storage.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	key := strings.ToLower(strings.TrimSpace(req.Name))

	if id, ok := s.byName[key]; ok {
		item := s.items[id]
		item.Name = strings.TrimSpace(req.Name)
		item.Unit = req.Unit
		item.CaloriesPerUnit = req.CaloriesPerUnit
		item.ProteinPerUnit = copyFloat(req.ProteinPerUnit)
		item.ArchivedAt = nil
		item.UpdatedAt = now
		return cloneFood(*item), nil
	}

	item := &storage.FoodItem{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(req.Name),
		Unit:            req.Unit,
		CaloriesPerUnit: req.CaloriesPerUnit,
		ProteinPerUnit:  copyFloat(req.ProteinPerUnit),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.items[item.ID] = item
	s.byName[key] = item.ID

	return cloneFood(*item), nil
}

func (s *FoodsMemoryStorage) ArchiveFood(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok || item.ArchivedAt != nil {
		return storage.ErrNotFound
	}
	now := time.Now()
	item.ArchivedAt = &now
	item.UpdatedAt = now
	return nil
}

func cloneFood(f storage.FoodItem) storage.FoodItem {
	f.ProteinPerUnit = copyFloat(f.ProteinPerUnit)
	if f.ArchivedAt != nil {
		t := *f.ArchivedAt
		f.ArchivedAt = &t
	}
	return f
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
