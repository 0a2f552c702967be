package consumption

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/foods"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/storage/memory"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(now time.Time, loc *time.Location) (*Service, *memory.MemoryStorage) {
	mem := memory.New()
	svc := NewService(mem, mem.GetConsumptionStorage(), foods.NewService(mem.GetFoodsStorage()), clock.Fixed(now), loc)
	return svc, mem
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestRecordEvent_FoodByDescriptor(t *testing.T) {
	svc, mem := newTestService(testNow, time.UTC)
	ctx := context.Background()

	event, err := svc.RecordEvent(ctx, memory.DefaultUserID, LogEventRequest{
		SlotNumber: intPtr(2),
		Descriptor: "chicken breast",
		Quantity:   200,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.Calories != 330 {
		t.Errorf("expected 330 kcal, got %d", event.Calories)
	}
	if event.Protein == nil || *event.Protein != 62 {
		t.Errorf("expected 62 g protein, got %v", event.Protein)
	}
	if event.Descriptor != "Chicken breast" || event.Unit != "g" || event.FoodID == nil {
		t.Errorf("catalog fields not copied: %+v", event)
	}
	if !event.OccurredAt.Equal(testNow) || event.LogDate != "2026-03-10" {
		t.Errorf("expected server timestamp, got %s / %s", event.OccurredAt, event.LogDate)
	}

	events, _ := mem.GetConsumptionStorage().ListEventsByDate(ctx, memory.DefaultUserID, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if len(events) != 1 {
		t.Fatalf("expected exactly one stored event, got %d", len(events))
	}
}

func TestRecordEvent_FoodByID(t *testing.T) {
	svc, mem := newTestService(testNow, time.UTC)
	ctx := context.Background()

	list, _, _ := mem.GetFoodsStorage().ListFoods(ctx, "Banana", 1, 0)
	id := list[0].ID.String()

	event, err := svc.RecordEvent(ctx, memory.DefaultUserID, LogEventRequest{FoodID: &id, Quantity: 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 105 * 1.5 = 157.5 -> 158
	if event.Calories != 158 {
		t.Errorf("expected 158 kcal, got %d", event.Calories)
	}
	if event.SlotNumber != nil {
		t.Errorf("expected no slot, got %v", *event.SlotNumber)
	}
}

func TestRecordEvent_ValidationBeforeWrite(t *testing.T) {
	svc, mem := newTestService(testNow, time.UTC)
	ctx := context.Background()

	tests := []struct {
		name string
		req  LogEventRequest
		want error
	}{
		{"zero quantity", LogEventRequest{Descriptor: "Egg", Quantity: 0}, apperr.ErrInvalidQuantity},
		{"negative quantity", LogEventRequest{Descriptor: "Egg", Quantity: -2}, apperr.ErrInvalidQuantity},
		{"quantity above max", LogEventRequest{Descriptor: "Banana", Quantity: MaxQuantity + 1}, apperr.ErrInvalidQuantity},
		{"huge quantity", LogEventRequest{Descriptor: "Banana", Quantity: 1e17}, apperr.ErrInvalidQuantity},
		{"nan quantity", LogEventRequest{Descriptor: "Banana", Quantity: math.NaN()}, apperr.ErrInvalidQuantity},
		{"slot too high", LogEventRequest{Descriptor: "Egg", Quantity: 1, SlotNumber: intPtr(11)}, apperr.ErrInvalidConfiguration},
		{"slot zero", LogEventRequest{Descriptor: "Egg", Quantity: 1, SlotNumber: intPtr(0)}, apperr.ErrInvalidConfiguration},
		{"unknown food", LogEventRequest{Descriptor: "Dragon fruit", Quantity: 1}, apperr.ErrUnknownItem},
		{"malformed food id", LogEventRequest{FoodID: strPtr("nope"), Quantity: 1}, apperr.ErrUnknownItem},
		{"no reference", LogEventRequest{Quantity: 1}, apperr.ErrUnknownItem},
		{"cardio without minutes", LogEventRequest{Kind: "cardio"}, apperr.ErrInvalidQuantity},
		{"cardio with slot", LogEventRequest{Kind: "cardio", CardioMinutes: intPtr(30), SlotNumber: intPtr(1)}, apperr.ErrInvalidConfiguration},
		{"bad kind", LogEventRequest{Kind: "sleep", Quantity: 1}, apperr.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordEvent(ctx, memory.DefaultUserID, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	dates, _ := mem.GetConsumptionStorage().DistinctLogDates(ctx, memory.DefaultUserID, testNow, 10)
	if len(dates) != 0 {
		t.Errorf("failed validations must not write, found %d dates", len(dates))
	}
}

func TestRecordEvent_MaxQuantityAccepted(t *testing.T) {
	svc, _ := newTestService(testNow, time.UTC)

	event, err := svc.RecordEvent(context.Background(), memory.DefaultUserID, LogEventRequest{Descriptor: "Banana", Quantity: MaxQuantity})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Calories != 105*MaxQuantity {
		t.Errorf("expected %d kcal, got %d", 105*MaxQuantity, event.Calories)
	}
}

func TestRecordEvent_CaloriesBeyondColumnRange(t *testing.T) {
	svc, mem := newTestService(testNow, time.UTC)
	ctx := context.Background()

	// в обход валидации каталога: ставка, при которой kcal не влезает в INT
	protein := 5000.0
	if _, err := mem.GetFoodsStorage().UpsertFood(ctx, storage.FoodUpsert{Name: "Bulk paste", Unit: "kg", CaloriesPerUnit: 1e6, ProteinPerUnit: &protein}); err != nil {
		t.Fatalf("upsert food: %v", err)
	}

	_, err := svc.RecordEvent(ctx, memory.DefaultUserID, LogEventRequest{Descriptor: "Bulk paste", Quantity: MaxQuantity})
	if !errors.Is(err, apperr.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	dates, _ := mem.GetConsumptionStorage().DistinctLogDates(ctx, memory.DefaultUserID, testNow, 10)
	if len(dates) != 0 {
		t.Errorf("rejected event must not be stored, found %d dates", len(dates))
	}
}

func TestRecordEvent_ArchivedFood(t *testing.T) {
	svc, mem := newTestService(testNow, time.UTC)
	ctx := context.Background()

	list, _, _ := mem.GetFoodsStorage().ListFoods(ctx, "Oats", 1, 0)
	mem.GetFoodsStorage().ArchiveFood(ctx, list[0].ID)

	id := list[0].ID.String()
	if _, err := svc.RecordEvent(ctx, memory.DefaultUserID, LogEventRequest{FoodID: &id, Quantity: 40}); !errors.Is(err, apperr.ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
}

func TestRecordEvent_UnknownUser(t *testing.T) {
	svc, _ := newTestService(testNow, time.UTC)

	_, err := svc.RecordEvent(context.Background(), "ghost", LogEventRequest{Descriptor: "Egg", Quantity: 1})
	if !errors.Is(err, apperr.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRecordEvent_Cardio(t *testing.T) {
	svc, _ := newTestService(testNow, time.UTC)

	event, err := svc.RecordEvent(context.Background(), memory.DefaultUserID, LogEventRequest{
		Kind:          "Cardio",
		CardioMinutes: intPtr(45),
		Descriptor:    "running",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != storage.EventKindCardio || event.Calories != 0 || event.Unit != "min" || event.Quantity != 45 {
		t.Errorf("unexpected cardio event: %+v", event)
	}
}

func TestRecordEvent_LogDateFollowsLocation(t *testing.T) {
	tz := time.FixedZone("UTC+5", 5*60*60)
	late := time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC) // 02:30 on 11 March in UTC+5

	svc, _ := newTestService(late, tz)
	event, err := svc.RecordEvent(context.Background(), memory.DefaultUserID, LogEventRequest{Descriptor: "Egg", Quantity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.LogDate != "2026-03-11" {
		t.Errorf("expected log_date 2026-03-11, got %s", event.LogDate)
	}

	resp, _ := svc.ListDay(context.Background(), memory.DefaultUserID, svc.Today())
	if resp.Date != "2026-03-11" || len(resp.Events) != 1 {
		t.Errorf("unexpected day log: %+v", resp)
	}
}
