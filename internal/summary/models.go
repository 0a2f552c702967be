package summary

import "github.com/fdg312/physique-hub/internal/consumption"

const (
	StatusFulfilled   = "fulfilled"
	StatusUnfulfilled = "unfulfilled"
)

// SlotSummary is one planned slot of the day. ActualCalories sums every event
// of the slot; LoggedEvent is the most recent one.
type SlotSummary struct {
	SlotNumber     int                   `json:"slot_number"`
	Label          string                `json:"label"`
	TargetCalories int                   `json:"target_calories"`
	TargetProtein  *int                  `json:"target_protein"`
	Status         string                `json:"status"`
	ActualCalories int                   `json:"actual_calories"`
	ActualProtein  int                   `json:"actual_protein"`
	LoggedEvent    *consumption.EventDTO `json:"logged_event"`
}

// DailySummary is the derived read model of one day. Never persisted.
type DailySummary struct {
	Date                string        `json:"date"`
	TargetCaloriesTotal int           `json:"target_calories_total"`
	TargetProteinTotal  int           `json:"target_protein_total"`
	ActualCaloriesTotal int           `json:"actual_calories_total"`
	ActualProteinTotal  int           `json:"actual_protein_total"`
	RemainingCalories   int           `json:"remaining_calories"`
	RemainingProtein    int           `json:"remaining_protein"`
	PercentConsumed     float64       `json:"percent_consumed"`
	CardioMinutesTotal  int           `json:"cardio_minutes_total"`
	EventCount          int           `json:"event_count"`
	PlanAdherenceFlag   bool          `json:"plan_adherence_flag"`
	PerSlot             []SlotSummary `json:"per_slot"`
}

// FulfilledSlots counts slots with at least one logged event.
func (d DailySummary) FulfilledSlots() int {
	n := 0
	for _, s := range d.PerSlot {
		if s.Status == StatusFulfilled {
			n++
		}
	}
	return n
}
