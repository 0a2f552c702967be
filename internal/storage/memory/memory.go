package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
)

const DefaultUserID = storage.DefaultUserID

// MemoryStorage — in-memory реализация всех хранилищ.
// Профили и план живут под одним мьютексом, чтобы ReplaceAll был атомарным.
type MemoryStorage struct {
	mu       sync.RWMutex
	profiles map[string]storage.Profile
	targets  map[string][]storage.MealTarget // user_id -> slots 1..N

	consumption   *ConsumptionMemoryStorage
	foods         *FoodsMemoryStorage
	notifications *NotificationsMemoryStorage
	reports       *ReportsMemoryStorage
	weights       *WeightMemoryStorage
}

// New создаёт MemoryStorage с профилем по умолчанию и базовым справочником продуктов
func New() *MemoryStorage {
	now := time.Now()
	m := &MemoryStorage{
		profiles: map[string]storage.Profile{
			DefaultUserID: {
				UserID:      DefaultUserID,
				DisplayName: "Me",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		},
		targets:       make(map[string][]storage.MealTarget),
		consumption:   NewConsumptionMemoryStorage(),
		foods:         NewFoodsMemoryStorage(),
		notifications: NewNotificationsMemoryStorage(),
		reports:       NewReportsMemoryStorage(),
		weights:       NewWeightMemoryStorage(),
	}
	m.foods.seed(DefaultFoods())
	return m
}

func (m *MemoryStorage) GetPlansStorage() storage.PlansStorage                 { return m }
func (m *MemoryStorage) GetConsumptionStorage() storage.ConsumptionStorage     { return m.consumption }
func (m *MemoryStorage) GetFoodsStorage() storage.FoodsStorage                 { return m.foods }
func (m *MemoryStorage) GetNotificationsStorage() storage.NotificationsStorage { return m.notifications }
func (m *MemoryStorage) GetReportsStorage() storage.ReportsStorage             { return m.reports }
func (m *MemoryStorage) GetWeightStorage() storage.WeightStorage               { return m.weights }

func (m *MemoryStorage) ListProfiles(ctx context.Context) ([]storage.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profiles := make([]storage.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].UserID < profiles[j].UserID
	})

	return profiles, nil
}

func (m *MemoryStorage) GetProfile(ctx context.Context, userID string) (*storage.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return &p, nil
}

func (m *MemoryStorage) EnsureProfile(ctx context.Context, userID string, displayName string) (*storage.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	p, ok := m.profiles[userID]
	if !ok {
		p = storage.Profile{
			UserID:    userID,
			CreatedAt: now,
		}
	}
	if name := strings.TrimSpace(displayName); name != "" || !ok {
		p.DisplayName = name
	}
	p.UpdatedAt = now
	m.profiles[userID] = p

	return &p, nil
}

func (m *MemoryStorage) UpdateBodyStats(ctx context.Context, userID string, stats storage.BodyStats) (*storage.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if stats.Age != nil {
		p.Age = copyInt(stats.Age)
	}
	if stats.HeightCm != nil {
		p.HeightCm = copyFloat(stats.HeightCm)
	}
	if stats.CurrentWeightKg != nil {
		p.CurrentWeightKg = copyFloat(stats.CurrentWeightKg)
	}
	if stats.TargetWeightKg != nil {
		p.TargetWeightKg = copyFloat(stats.TargetWeightKg)
	}
	if stats.GoalMode != nil {
		mode := *stats.GoalMode
		p.GoalMode = &mode
	}
	p.UpdatedAt = time.Now()
	m.profiles[userID] = p

	return &p, nil
}

func (m *MemoryStorage) ListTargets(ctx context.Context, userID string) ([]storage.MealTarget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneTargets(m.targets[userID]), nil
}

func (m *MemoryStorage) ReplaceAll(ctx context.Context, userID string, settings storage.PlanSettings, upserts []storage.MealTargetUpsert, expectedVersion *int) (int, []storage.MealTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		return 0, nil, storage.ErrNotFound
	}
	if expectedVersion != nil && *expectedVersion != p.PlanVersion {
		return 0, nil, storage.ErrVersionConflict
	}

	now := time.Now()
	targets := make([]storage.MealTarget, len(upserts))
	for i, u := range upserts {
		targets[i] = storage.MealTarget{
			UserID:         userID,
			SlotNumber:     u.SlotNumber,
			Label:          u.Label,
			TargetCalories: u.TargetCalories,
			TargetProtein:  copyInt(u.TargetProtein),
			CreatedAt:      now,
		}
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].SlotNumber < targets[j].SlotNumber
	})

	p.MealCount = settings.MealCount
	p.DailyCalorieGoal = settings.DailyCalorieGoal
	p.DailyProteinGoal = copyInt(settings.DailyProteinGoal)
	p.PlanVersion++
	p.UpdatedAt = now

	m.profiles[userID] = p
	m.targets[userID] = targets

	return p.PlanVersion, cloneTargets(targets), nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func cloneTargets(in []storage.MealTarget) []storage.MealTarget {
	out := make([]storage.MealTarget, len(in))
	for i, t := range in {
		t.TargetProtein = copyInt(t.TargetProtein)
		out[i] = t
	}
	return out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
