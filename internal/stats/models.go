package stats

import "github.com/fdg312/physique-hub/internal/streak"

const (
	DefaultDays       = 30
	MaxAdherenceDates = 365
)

// ActivityDay is one heatmap cell.
type ActivityDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// WeightPoint is one weigh-in on the weight chart.
type WeightPoint struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
}

// Response is the body of GET /v1/stats.
type Response struct {
	Days           int           `json:"days"`
	Activity       []ActivityDay `json:"activity"`
	AdherenceDates []string      `json:"adherence_dates"`
	AdherenceDays  int           `json:"adherence_days"` // внутри окна
	LoggedDays     int           `json:"logged_days"`
	Streak         streak.State  `json:"streak"`
	Weights        []WeightPoint `json:"weights"` // внутри окна, по дате
}
