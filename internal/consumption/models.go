package consumption

import (
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
)

const (
	MaxSlotNumber     = 10
	MaxQuantity       = 100000
	MaxCardioMinutes  = 24 * 60
	maxDescriptorSize = 120
)

// LogEventRequest is the body of POST /v1/log. The timestamp is never taken
// from the client.
type LogEventRequest struct {
	Kind          string   `json:"kind,omitempty"` // food (default) | cardio
	SlotNumber    *int     `json:"slot_number,omitempty"`
	FoodID        *string  `json:"food_id,omitempty"`
	Descriptor    string   `json:"descriptor,omitempty"`
	Quantity      float64  `json:"quantity"`
	CardioMinutes *int     `json:"cardio_minutes,omitempty"`
	MetPlan       bool     `json:"met_plan,omitempty"`
	parsedFoodID  *uuid.UUID
}

// EventDTO is a stored consumption event.
type EventDTO struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	OccurredAt    time.Time `json:"occurred_at"`
	LogDate       string    `json:"log_date"`
	SlotNumber    *int      `json:"slot_number"`
	FoodID        *string   `json:"food_id"`
	Descriptor    string    `json:"descriptor"`
	Quantity      float64   `json:"quantity"`
	Unit          string    `json:"unit"`
	Calories      int       `json:"calories"`
	Protein       *int      `json:"protein"`
	CardioMinutes *int      `json:"cardio_minutes"`
	MetPlan       bool      `json:"met_plan"`
}

type DayLogResponse struct {
	Date   string     `json:"date"`
	Events []EventDTO `json:"events"`
}

// Validate checks the request shape. It runs before any storage access.
func (r *LogEventRequest) Validate() error {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	if r.Kind == "" {
		r.Kind = storage.EventKindFood
	}
	r.Descriptor = strings.TrimSpace(r.Descriptor)
	if len(r.Descriptor) > maxDescriptorSize {
		return fmt.Errorf("%w: descriptor must be at most %d characters", apperr.ErrInvalidRequest, maxDescriptorSize)
	}

	switch r.Kind {
	case storage.EventKindFood:
		// !(q > 0) также отсекает NaN
		if !(r.Quantity > 0) {
			return fmt.Errorf("%w: quantity must be positive", apperr.ErrInvalidQuantity)
		}
		if r.Quantity > MaxQuantity {
			return fmt.Errorf("%w: quantity must be at most %d", apperr.ErrInvalidQuantity, MaxQuantity)
		}
		if r.SlotNumber != nil && (*r.SlotNumber < 1 || *r.SlotNumber > MaxSlotNumber) {
			return fmt.Errorf("%w: slot_number must be between 1 and %d", apperr.ErrInvalidConfiguration, MaxSlotNumber)
		}
		if r.FoodID != nil {
			id, err := uuid.Parse(*r.FoodID)
			if err != nil {
				return fmt.Errorf("%w: malformed food_id", apperr.ErrUnknownItem)
			}
			r.parsedFoodID = &id
		} else if r.Descriptor == "" {
			return fmt.Errorf("%w: food_id or descriptor is required", apperr.ErrUnknownItem)
		}

	case storage.EventKindCardio:
		if r.CardioMinutes == nil || *r.CardioMinutes <= 0 || *r.CardioMinutes > MaxCardioMinutes {
			return fmt.Errorf("%w: cardio_minutes must be between 1 and %d", apperr.ErrInvalidQuantity, MaxCardioMinutes)
		}
		if r.SlotNumber != nil {
			return fmt.Errorf("%w: cardio events carry no slot_number", apperr.ErrInvalidConfiguration)
		}
		if r.FoodID != nil {
			return fmt.Errorf("%w: cardio events carry no food_id", apperr.ErrInvalidRequest)
		}

	default:
		return fmt.Errorf("%w: kind must be food or cardio", apperr.ErrInvalidRequest)
	}

	return nil
}

// ToDTO converts a stored event to its wire form.
func ToDTO(e storage.ConsumptionEvent) EventDTO {
	dto := EventDTO{
		ID:            e.ID.String(),
		Kind:          e.Kind,
		OccurredAt:    e.OccurredAt,
		LogDate:       e.LogDate.Format("2006-01-02"),
		SlotNumber:    e.SlotNumber,
		Descriptor:    e.Descriptor,
		Quantity:      e.Quantity,
		Unit:          e.Unit,
		Calories:      e.Calories,
		Protein:       e.Protein,
		CardioMinutes: e.CardioMinutes,
		MetPlan:       e.MetPlan,
	}
	if e.FoodID != nil {
		id := e.FoodID.String()
		dto.FoodID = &id
	}
	return dto
}
