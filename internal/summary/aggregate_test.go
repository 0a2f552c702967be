package summary

import (
	"math"
	"testing"
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
)

func TestAggregate_LatestEventPerSlot(t *testing.T) {
	slot := 1
	early := storage.ConsumptionEvent{
		ID: uuid.New(), Kind: storage.EventKindFood, SlotNumber: &slot,
		OccurredAt: testDay.Add(7 * time.Hour), Calories: 300, Descriptor: "Oats",
	}
	late := storage.ConsumptionEvent{
		ID: uuid.New(), Kind: storage.EventKindFood, SlotNumber: &slot,
		OccurredAt: testDay.Add(9 * time.Hour), Calories: 100, Descriptor: "Banana",
	}
	targets := []storage.MealTarget{{SlotNumber: 1, Label: "Meal 1", TargetCalories: 500}}

	// порядок входа не влияет на результат
	for _, events := range [][]storage.ConsumptionEvent{{early, late}, {late, early}} {
		sum := Aggregate(testDay, targets, events)
		s := sum.PerSlot[0]
		if s.LoggedEvent == nil || s.LoggedEvent.Descriptor != "Banana" {
			t.Errorf("expected the latest event, got %+v", s.LoggedEvent)
		}
		if s.ActualCalories != 400 || sum.ActualCaloriesTotal != 400 {
			t.Errorf("expected 400 kcal, got slot=%d total=%d", s.ActualCalories, sum.ActualCaloriesTotal)
		}
	}
}

func TestAggregate_CardioAndAdherence(t *testing.T) {
	minutes := 40
	events := []storage.ConsumptionEvent{
		{ID: uuid.New(), Kind: storage.EventKindCardio, CardioMinutes: &minutes, OccurredAt: testDay.Add(6 * time.Hour)},
		{ID: uuid.New(), Kind: storage.EventKindFood, Calories: 250, OccurredAt: testDay.Add(8 * time.Hour), MetPlan: true},
	}

	sum := Aggregate(testDay, nil, events)
	if sum.CardioMinutesTotal != 40 || sum.ActualCaloriesTotal != 250 || sum.EventCount != 2 {
		t.Errorf("unexpected totals: %+v", sum)
	}
	if !sum.PlanAdherenceFlag {
		t.Error("expected plan_adherence_flag")
	}
	if sum.PercentConsumed != 0 || sum.RemainingCalories != -250 {
		t.Errorf("no plan: percent=%v remaining=%d", sum.PercentConsumed, sum.RemainingCalories)
	}
}

func TestAggregate_SlotOutsidePlan(t *testing.T) {
	slot := 5
	targets := []storage.MealTarget{
		{SlotNumber: 2, TargetCalories: 700},
		{SlotNumber: 1, TargetCalories: 700},
	}
	events := []storage.ConsumptionEvent{
		{ID: uuid.New(), Kind: storage.EventKindFood, SlotNumber: &slot, Calories: 120, OccurredAt: testDay},
	}

	sum := Aggregate(testDay, targets, events)
	if sum.PerSlot[0].SlotNumber != 1 || sum.PerSlot[1].SlotNumber != 2 {
		t.Errorf("slots must be in plan order")
	}
	if sum.FulfilledSlots() != 0 || sum.ActualCaloriesTotal != 120 {
		t.Errorf("event outside the plan counts in totals only: %+v", sum)
	}
}

func TestAggregate_ClampsNegativeActuals(t *testing.T) {
	events := []storage.ConsumptionEvent{
		{ID: uuid.New(), Kind: storage.EventKindFood, Calories: -40, OccurredAt: testDay},
	}
	if got := Aggregate(testDay, nil, events).ActualCaloriesTotal; got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
}

func TestAggregate_ClampsNegativeSlotActuals(t *testing.T) {
	slot := 1
	protein := -5
	targets := []storage.MealTarget{{SlotNumber: 1, TargetCalories: 500}}
	events := []storage.ConsumptionEvent{
		{ID: uuid.New(), Kind: storage.EventKindFood, SlotNumber: &slot, Calories: -40, Protein: &protein, OccurredAt: testDay},
	}

	s := Aggregate(testDay, targets, events).PerSlot[0]
	if s.ActualCalories != 0 || s.ActualProtein != 0 {
		t.Errorf("expected slot actuals clamped to 0, got kcal=%d protein=%d", s.ActualCalories, s.ActualProtein)
	}
}

func TestAggregate_LargeEventsDoNotWrap(t *testing.T) {
	slot := 1
	targets := []storage.MealTarget{{SlotNumber: 1, TargetCalories: 800}}

	// девять событий на верхней границе INT-колонки
	var events []storage.ConsumptionEvent
	for i := 0; i < 9; i++ {
		events = append(events, storage.ConsumptionEvent{
			ID: uuid.New(), Kind: storage.EventKindFood, SlotNumber: &slot,
			Calories: math.MaxInt32, OccurredAt: testDay.Add(time.Duration(i) * time.Minute),
		})
	}

	sum := Aggregate(testDay, targets, events)
	want := 9 * math.MaxInt32
	if sum.ActualCaloriesTotal != want || sum.PerSlot[0].ActualCalories != want {
		t.Fatalf("expected %d kcal, got total=%d slot=%d", want, sum.ActualCaloriesTotal, sum.PerSlot[0].ActualCalories)
	}
	if sum.EventCount != 9 || sum.RemainingCalories != 800-want {
		t.Errorf("unexpected totals: count=%d remaining=%d", sum.EventCount, sum.RemainingCalories)
	}
}
