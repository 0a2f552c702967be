package summary

import (
	"math"
	"sort"
	"time"

	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/consumption"
	"github.com/fdg312/physique-hub/internal/storage"
)

// Aggregate joins the plan with the events of one day. events must already be
// filtered to date; their order does not matter.
func Aggregate(date time.Time, targets []storage.MealTarget, events []storage.ConsumptionEvent) DailySummary {
	sum := DailySummary{
		Date:       date.Format(clock.DateLayout),
		EventCount: len(events),
		PerSlot:    []SlotSummary{},
	}

	plan := make([]storage.MealTarget, len(targets))
	copy(plan, targets)
	sort.Slice(plan, func(i, j int) bool { return plan[i].SlotNumber < plan[j].SlotNumber })

	for _, t := range plan {
		sum.TargetCaloriesTotal += t.TargetCalories
		if t.TargetProtein != nil {
			sum.TargetProteinTotal += *t.TargetProtein
		}
	}

	type slotAcc struct {
		calories int
		protein  int
		latest   *storage.ConsumptionEvent
	}
	bySlot := make(map[int]*slotAcc)

	for i := range events {
		e := &events[i]
		if e.MetPlan {
			sum.PlanAdherenceFlag = true
		}
		if e.Kind == storage.EventKindCardio {
			if e.CardioMinutes != nil {
				sum.CardioMinutesTotal += *e.CardioMinutes
			}
			continue
		}

		sum.ActualCaloriesTotal += e.Calories
		if e.Protein != nil {
			sum.ActualProteinTotal += *e.Protein
		}

		if e.SlotNumber == nil {
			continue
		}
		acc, ok := bySlot[*e.SlotNumber]
		if !ok {
			acc = &slotAcc{}
			bySlot[*e.SlotNumber] = acc
		}
		acc.calories += e.Calories
		if e.Protein != nil {
			acc.protein += *e.Protein
		}
		if acc.latest == nil || newer(e, acc.latest) {
			acc.latest = e
		}
	}

	if sum.ActualCaloriesTotal < 0 {
		sum.ActualCaloriesTotal = 0
	}
	if sum.ActualProteinTotal < 0 {
		sum.ActualProteinTotal = 0
	}

	for _, t := range plan {
		slot := SlotSummary{
			SlotNumber:     t.SlotNumber,
			Label:          t.Label,
			TargetCalories: t.TargetCalories,
			TargetProtein:  t.TargetProtein,
			Status:         StatusUnfulfilled,
		}
		if acc, ok := bySlot[t.SlotNumber]; ok {
			dto := consumption.ToDTO(*acc.latest)
			slot.Status = StatusFulfilled
			slot.ActualCalories = max(acc.calories, 0)
			slot.ActualProtein = max(acc.protein, 0)
			slot.LoggedEvent = &dto
		}
		sum.PerSlot = append(sum.PerSlot, slot)
	}

	sum.RemainingCalories = sum.TargetCaloriesTotal - sum.ActualCaloriesTotal
	sum.RemainingProtein = sum.TargetProteinTotal - sum.ActualProteinTotal
	if sum.TargetCaloriesTotal > 0 {
		pct := float64(sum.ActualCaloriesTotal) / float64(sum.TargetCaloriesTotal) * 100
		sum.PercentConsumed = math.Round(pct*10) / 10
	}

	return sum
}

// newer orders events by occurred_at, then id.
func newer(a, b *storage.ConsumptionEvent) bool {
	if !a.OccurredAt.Equal(b.OccurredAt) {
		return a.OccurredAt.After(b.OccurredAt)
	}
	return a.ID.String() > b.ID.String()
}
