package dashboard

import (
	"github.com/fdg312/physique-hub/internal/plans"
	"github.com/fdg312/physique-hub/internal/streak"
	"github.com/fdg312/physique-hub/internal/summary"
)

// Response is the body of GET /v1/dashboard.
type Response struct {
	Date        string                `json:"date"`
	Summary     summary.DailySummary  `json:"summary"`
	Streak      streak.State          `json:"streak"`
	Plan        []plans.MealTargetDTO `json:"plan"`
	PlanVersion int                   `json:"plan_version"`
}
