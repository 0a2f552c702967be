package weight

import (
	"fmt"
	"math"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/storage"
)

const (
	MinWeightKg = 20
	MaxWeightKg = 500

	DefaultHistoryDays = 90
	MaxHistoryDays     = 730
)

// LogWeightRequest is the body of POST /v1/weight. Date defaults to today
// and may backfill a past day, never a future one.
type LogWeightRequest struct {
	WeightKg float64 `json:"weight_kg"`
	Date     string  `json:"date,omitempty"`
}

// EntryDTO is one weigh-in.
type EntryDTO struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	WeightKg  float64   `json:"weight_kg"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryResponse is the body of GET /v1/weight.
type HistoryResponse struct {
	From     string     `json:"from"`
	To       string     `json:"to"`
	Entries  []EntryDTO `json:"entries"`
	Latest   *EntryDTO  `json:"latest"`    // последняя запись вообще, не только в окне
	ChangeKg *float64   `json:"change_kg"` // последняя минус первая в окне
}

// ValidateKg checks a body weight value; field names the offending JSON key.
func ValidateKg(field string, kg float64) error {
	if math.IsNaN(kg) || kg < MinWeightKg || kg > MaxWeightKg {
		return fmt.Errorf("%w: %s must be between %d and %d", apperr.ErrInvalidRequest, field, MinWeightKg, MaxWeightKg)
	}
	return nil
}

func toDTO(e storage.WeightEntry) EntryDTO {
	return EntryDTO{
		ID:        e.ID.String(),
		Date:      e.LogDate.Format(clock.DateLayout),
		WeightKg:  e.WeightKg,
		CreatedAt: e.CreatedAt,
	}
}

// roundKg keeps one decimal, the precision of a bathroom scale.
func roundKg(kg float64) float64 {
	return math.Round(kg*10) / 10
}
