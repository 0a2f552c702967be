package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
)

var _ storage.Backend = (*MemoryStorage)(nil)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func slots(cals ...int) []storage.MealTargetUpsert {
	out := make([]storage.MealTargetUpsert, len(cals))
	for i, c := range cals {
		out[i] = storage.MealTargetUpsert{SlotNumber: i + 1, TargetCalories: c}
	}
	return out
}

func TestReplaceAllShrinksPlan(t *testing.T) {
	ctx := context.Background()
	m := New()

	version, _, err := m.ReplaceAll(ctx, DefaultUserID, storage.PlanSettings{MealCount: 5, DailyCalorieGoal: 2500}, slots(500, 500, 500, 500, 500), nil)
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}

	version, targets, err := m.ReplaceAll(ctx, DefaultUserID, storage.PlanSettings{MealCount: 2, DailyCalorieGoal: 2000}, slots(1000, 1000), nil)
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if version != 2 || len(targets) != 2 {
		t.Fatalf("expected version 2 with 2 targets, got %d/%d", version, len(targets))
	}

	stored, _ := m.ListTargets(ctx, DefaultUserID)
	if len(stored) != 2 {
		t.Fatalf("expected no orphaned slots, got %d rows", len(stored))
	}

	p, _ := m.GetProfile(ctx, DefaultUserID)
	if p.MealCount != 2 || p.DailyCalorieGoal != 2000 || p.PlanVersion != 2 {
		t.Errorf("profile settings not updated: %+v", p)
	}
}

func TestReplaceAllVersionGuard(t *testing.T) {
	ctx := context.Background()
	m := New()

	stale := 0
	if _, _, err := m.ReplaceAll(ctx, DefaultUserID, storage.PlanSettings{MealCount: 1, DailyCalorieGoal: 2000}, slots(2000), &stale); err != nil {
		t.Fatalf("expected version 0 to match: %v", err)
	}
	_, _, err := m.ReplaceAll(ctx, DefaultUserID, storage.PlanSettings{MealCount: 1, DailyCalorieGoal: 1800}, slots(1800), &stale)
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	stored, _ := m.ListTargets(ctx, DefaultUserID)
	if stored[0].TargetCalories != 2000 {
		t.Errorf("conflicting write must not change targets, got %d", stored[0].TargetCalories)
	}
}

func TestReplaceAllUnknownUser(t *testing.T) {
	_, _, err := New().ReplaceAll(context.Background(), "ghost", storage.PlanSettings{MealCount: 1, DailyCalorieGoal: 100}, slots(100), nil)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDistinctLogDates(t *testing.T) {
	ctx := context.Background()
	s := NewConsumptionMemoryStorage()

	for _, d := range []string{"2026-03-01", "2026-03-03", "2026-03-03", "2026-03-04", "2026-03-06"} {
		s.AppendEvent(ctx, &storage.ConsumptionEvent{UserID: "u1", LogDate: day(d), OccurredAt: day(d)})
	}
	s.AppendEvent(ctx, &storage.ConsumptionEvent{UserID: "u2", LogDate: day("2026-03-05"), OccurredAt: day("2026-03-05")})

	dates, err := s.DistinctLogDates(ctx, "u1", day("2026-03-04"), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"2026-03-04", "2026-03-03", "2026-03-01"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i, w := range want {
		if got := dates[i].Format("2006-01-02"); got != w {
			t.Errorf("dates[%d] = %s, want %s", i, got, w)
		}
	}

	limited, _ := s.DistinctLogDates(ctx, "u1", day("2026-03-31"), 2)
	if len(limited) != 2 || limited[0].Format("2006-01-02") != "2026-03-06" {
		t.Errorf("limit not applied to newest dates: %v", limited)
	}
}

func TestListEventsByDateOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewConsumptionMemoryStorage()
	d := day("2026-03-02")

	s.AppendEvent(ctx, &storage.ConsumptionEvent{UserID: "u1", LogDate: d, OccurredAt: d.Add(9 * time.Hour), Descriptor: "late"})
	s.AppendEvent(ctx, &storage.ConsumptionEvent{UserID: "u1", LogDate: d, OccurredAt: d.Add(7 * time.Hour), Descriptor: "early"})
	s.AppendEvent(ctx, &storage.ConsumptionEvent{UserID: "u1", LogDate: d.AddDate(0, 0, 1), OccurredAt: d.Add(30 * time.Hour), Descriptor: "tomorrow"})

	events, _ := s.ListEventsByDate(ctx, "u1", d)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Descriptor != "early" || events[1].Descriptor != "late" {
		t.Errorf("expected chronological order, got %s, %s", events[0].Descriptor, events[1].Descriptor)
	}
}

func TestFoodsArchiveAndUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewFoodsMemoryStorage()

	item, _ := s.UpsertFood(ctx, storage.FoodUpsert{Name: "Oats", Unit: "g", CaloriesPerUnit: 3.89})
	if err := s.ArchiveFood(ctx, item.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	list, total, _ := s.ListFoods(ctx, "", 10, 0)
	if total != 0 || len(list) != 0 {
		t.Fatalf("archived food must not be listed, got %d", total)
	}

	archived, err := s.GetFood(ctx, item.ID)
	if err != nil || archived.ArchivedAt == nil {
		t.Fatalf("expected archived food to be readable by id, err=%v", err)
	}

	again, _ := s.UpsertFood(ctx, storage.FoodUpsert{Name: "oats", Unit: "g", CaloriesPerUnit: 3.7})
	if again.ID != item.ID || again.ArchivedAt != nil {
		t.Errorf("upsert by name should revive the same item")
	}
}

func TestNewSeedsDefaults(t *testing.T) {
	m := New()
	ctx := context.Background()

	if _, err := m.GetProfile(ctx, DefaultUserID); err != nil {
		t.Fatalf("expected default profile: %v", err)
	}
	_, total, _ := m.GetFoodsStorage().ListFoods(ctx, "", 0, 0)
	if total != len(DefaultFoods()) {
		t.Errorf("expected %d seeded foods, got %d", len(DefaultFoods()), total)
	}
}

func TestUpdateBodyStatsPartial(t *testing.T) {
	ctx := context.Background()
	m := New()

	age, height, mode := 31, 178.5, storage.GoalModeCut
	if _, err := m.UpdateBodyStats(ctx, DefaultUserID, storage.BodyStats{Age: &age, HeightCm: &height, GoalMode: &mode}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	weight := 82.4
	p, err := m.UpdateBodyStats(ctx, DefaultUserID, storage.BodyStats{CurrentWeightKg: &weight})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if p.Age == nil || *p.Age != 31 || p.HeightCm == nil || *p.HeightCm != 178.5 {
		t.Errorf("omitted fields were reset: %+v", p.BodyStats)
	}
	if p.GoalMode == nil || *p.GoalMode != storage.GoalModeCut {
		t.Errorf("goal mode = %v", p.GoalMode)
	}
	if p.CurrentWeightKg == nil || *p.CurrentWeightKg != 82.4 || p.TargetWeightKg != nil {
		t.Errorf("weights = %v / %v", p.CurrentWeightKg, p.TargetWeightKg)
	}

	age = 99
	stored, _ := m.GetProfile(ctx, DefaultUserID)
	if *stored.Age != 31 {
		t.Errorf("profile aliases caller's pointer: age = %d", *stored.Age)
	}

	if _, err := m.UpdateBodyStats(ctx, "ghost", storage.BodyStats{Age: &age}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWeightLogRangeAndLatest(t *testing.T) {
	ctx := context.Background()
	w := New().GetWeightStorage()

	if _, err := w.LatestWeight(ctx, DefaultUserID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("empty log: expected ErrNotFound, got %v", err)
	}

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, e := range []struct {
		date string
		kg   float64
	}{
		{"2026-05-03", 81.0},
		{"2026-05-01", 82.0},
		{"2026-05-03", 80.8},
		{"2026-05-10", 80.1},
	} {
		entry := &storage.WeightEntry{UserID: DefaultUserID, LogDate: day(e.date), WeightKg: e.kg, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := w.AppendWeight(ctx, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := w.ListWeights(ctx, DefaultUserID, day("2026-05-01"), day("2026-05-05"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []float64{82.0, 81.0, 80.8}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, kg := range want {
		if got[i].WeightKg != kg {
			t.Errorf("entry %d = %v, want %v", i, got[i].WeightKg, kg)
		}
	}

	latest, err := w.LatestWeight(ctx, DefaultUserID)
	if err != nil || latest.WeightKg != 80.1 {
		t.Errorf("latest = %+v, %v", latest, err)
	}

	if other, _ := w.ListWeights(ctx, "someone-else", day("2026-01-01"), day("2026-12-31")); len(other) != 0 {
		t.Errorf("entries leaked across users: %v", other)
	}
}
