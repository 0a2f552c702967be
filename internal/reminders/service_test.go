package reminders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/storage/memory"
	"github.com/fdg312/physique-hub/internal/streak"
	"github.com/google/uuid"
)

var today = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func newService(mem *memory.MemoryStorage) *Service {
	clk := clock.Fixed(today.Add(20 * time.Hour))
	st := streak.NewService(mem, mem.GetConsumptionStorage(), clk, time.UTC, 0)
	return NewService(mem.GetNotificationsStorage(), mem, mem.GetPlansStorage(), mem.GetConsumptionStorage(), st, clk, time.UTC)
}

func seedPlan(t *testing.T, mem *memory.MemoryStorage, userID string) {
	t.Helper()
	_, _, err := mem.GetPlansStorage().ReplaceAll(context.Background(), userID,
		storage.PlanSettings{MealCount: 1, DailyCalorieGoal: 2000},
		[]storage.MealTargetUpsert{{SlotNumber: 1, Label: "Meal 1", TargetCalories: 2000}}, nil)
	if err != nil {
		t.Fatalf("seed plan: %v", err)
	}
}

func seedEvent(t *testing.T, mem *memory.MemoryStorage, userID string, daysAgo int) {
	t.Helper()
	day := today.AddDate(0, 0, -daysAgo)
	err := mem.GetConsumptionStorage().AppendEvent(context.Background(), &storage.ConsumptionEvent{
		UserID: userID, LogDate: day, OccurredAt: day.Add(8 * time.Hour),
		Kind: storage.EventKindFood, Quantity: 1, Calories: 300,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func kinds(dtos []NotificationDTO) []string {
	out := make([]string, len(dtos))
	for i, d := range dtos {
		out[i] = d.Kind
	}
	return out
}

func TestGenerate_NoPlan(t *testing.T) {
	mem := memory.New()
	svc := newService(mem)

	out, err := svc.Generate(context.Background(), memory.DefaultUserID, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Kind != KindNoPlan || out[0].Severity != SeverityInfo {
		t.Fatalf("expected a single no_plan reminder, got %v", kinds(out))
	}
	if out[0].SourceDate == nil || *out[0].SourceDate != "2026-09-01" {
		t.Errorf("unexpected source date: %v", out[0].SourceDate)
	}
}

func TestGenerate_StreakAtRisk(t *testing.T) {
	mem := memory.New()
	seedPlan(t, mem, memory.DefaultUserID)
	seedEvent(t, mem, memory.DefaultUserID, 1)
	seedEvent(t, mem, memory.DefaultUserID, 2)
	svc := newService(mem)

	out, err := svc.Generate(context.Background(), memory.DefaultUserID, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Kind != KindStreakAtRisk || out[0].Severity != SeverityWarn {
		t.Fatalf("expected streak_at_risk, got %v", kinds(out))
	}
	if !strings.Contains(out[0].Body, "2-day") {
		t.Errorf("body must mention the streak length: %q", out[0].Body)
	}
}

func TestGenerate_NothingToRemind(t *testing.T) {
	mem := memory.New()
	seedPlan(t, mem, memory.DefaultUserID)
	seedEvent(t, mem, memory.DefaultUserID, 0)
	seedEvent(t, mem, memory.DefaultUserID, 1)
	svc := newService(mem)

	out, err := svc.Generate(context.Background(), memory.DefaultUserID, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no reminders, got %v", kinds(out))
	}
}

func TestGenerate_IsIdempotentPerDay(t *testing.T) {
	mem := memory.New()
	svc := newService(mem)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Generate(ctx, memory.DefaultUserID, today); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	list, _ := svc.ListNotifications(ctx, memory.DefaultUserID, false, 20, 0)
	if len(list) != 1 {
		t.Fatalf("expected 1 notification after reruns, got %d", len(list))
	}

	// новый день — новое уведомление
	svc.Generate(ctx, memory.DefaultUserID, today.AddDate(0, 0, 1))
	list, _ = svc.ListNotifications(ctx, memory.DefaultUserID, false, 20, 0)
	if len(list) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(list))
	}
}

func TestGenerate_UnknownUser(t *testing.T) {
	svc := newService(memory.New())
	if _, err := svc.Generate(context.Background(), "ghost", today); !errors.Is(err, apperr.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGenerateAll(t *testing.T) {
	mem := memory.New()
	ctx := context.Background()
	mem.EnsureProfile(ctx, "second", "Second")
	seedPlan(t, mem, "second")
	svc := newService(mem)

	created, err := svc.GenerateAll(ctx, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// default без плана, second с планом и без серии
	if created != 1 {
		t.Errorf("expected 1 reminder, got %d", created)
	}
}

func TestMarkRead(t *testing.T) {
	mem := memory.New()
	svc := newService(mem)
	ctx := context.Background()

	out, _ := svc.Generate(ctx, memory.DefaultUserID, today)
	svc.Generate(ctx, memory.DefaultUserID, today.AddDate(0, 0, 1))

	if n, _ := svc.UnreadCount(ctx, memory.DefaultUserID); n != 2 {
		t.Fatalf("expected 2 unread, got %d", n)
	}

	marked, err := svc.MarkRead(ctx, memory.DefaultUserID, []uuid.UUID{out[0].ID})
	if err != nil || marked != 1 {
		t.Fatalf("mark read: marked=%d err=%v", marked, err)
	}

	unread, _ := svc.ListNotifications(ctx, memory.DefaultUserID, true, 20, 0)
	if len(unread) != 1 {
		t.Errorf("expected 1 unread, got %d", len(unread))
	}

	marked, _ = svc.MarkAllRead(ctx, memory.DefaultUserID)
	if marked != 1 {
		t.Errorf("expected 1 marked, got %d", marked)
	}
	if n, _ := svc.UnreadCount(ctx, memory.DefaultUserID); n != 0 {
		t.Errorf("expected 0 unread, got %d", n)
	}
}
