package consumption

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Catalog resolves a food reference to its per-unit rates.
type Catalog interface {
	Lookup(ctx context.Context, id *uuid.UUID, name string) (*storage.FoodItem, error)
}

// Service is the append-only consumption log writer.
type Service struct {
	profiles storage.Storage
	events   storage.ConsumptionStorage
	catalog  Catalog
	clock    clock.Clock
	loc      *time.Location
}

// NewService creates a new consumption service. loc decides which calendar
// day an event belongs to.
func NewService(profiles storage.Storage, events storage.ConsumptionStorage, catalog Catalog, clk clock.Clock, loc *time.Location) *Service {
	if clk == nil {
		clk = clock.System
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		profiles: profiles,
		events:   events,
		catalog:  catalog,
		clock:    clk,
		loc:      loc,
	}
}

// RecordEvent validates and appends one event stamped with the server clock.
func (s *Service) RecordEvent(ctx context.Context, userID string, req LogEventRequest) (*EventDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureProfile(ctx, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	event := storage.ConsumptionEvent{
		ID:         uuid.New(),
		UserID:     userID,
		OccurredAt: now.UTC(),
		LogDate:    clock.Day(now, s.loc),
		Kind:       req.Kind,
		SlotNumber: req.SlotNumber,
		MetPlan:    req.MetPlan,
	}

	switch req.Kind {
	case storage.EventKindCardio:
		event.Descriptor = req.Descriptor
		if event.Descriptor == "" {
			event.Descriptor = "cardio"
		}
		event.Quantity = float64(*req.CardioMinutes)
		event.Unit = "min"
		event.CardioMinutes = req.CardioMinutes

	default:
		item, err := s.catalog.Lookup(ctx, req.parsedFoodID, req.Descriptor)
		if err != nil {
			return nil, err
		}
		event.FoodID = &item.ID
		event.Descriptor = item.Name
		event.Quantity = req.Quantity
		event.Unit = item.Unit
		kcal, err := scaledAmount("calories", item.CaloriesPerUnit, req.Quantity)
		if err != nil {
			return nil, err
		}
		event.Calories = kcal
		if item.ProteinPerUnit != nil {
			p, err := scaledAmount("protein", *item.ProteinPerUnit, req.Quantity)
			if err != nil {
				return nil, err
			}
			event.Protein = &p
		}
	}

	if err := s.events.AppendEvent(ctx, &event); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	logging.L().Info("consumption event recorded",
		zap.String("user_id", userID),
		zap.String("event_id", event.ID.String()),
		zap.String("kind", event.Kind),
		zap.String("log_date", event.LogDate.Format(clock.DateLayout)),
		zap.Int("calories", event.Calories),
	)

	dto := ToDTO(event)
	return &dto, nil
}

// scaledAmount rounds perUnit*quantity to an int that fits the INT columns.
func scaledAmount(field string, perUnit, quantity float64) (int, error) {
	v := math.Round(perUnit * quantity)
	if math.IsNaN(v) || v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s out of range for quantity %g", apperr.ErrInvalidQuantity, field, quantity)
	}
	return int(v), nil
}

// ListDay returns the raw events of one calendar day in write order.
func (s *Service) ListDay(ctx context.Context, userID string, date time.Time) (*DayLogResponse, error) {
	if err := s.ensureProfile(ctx, userID); err != nil {
		return nil, err
	}

	events, err := s.events.ListEventsByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = ToDTO(e)
	}

	return &DayLogResponse{Date: date.Format(clock.DateLayout), Events: dtos}, nil
}

// Today returns the current calendar day in the logging location.
func (s *Service) Today() time.Time {
	return clock.Today(s.clock, s.loc)
}

func (s *Service) ensureProfile(ctx context.Context, userID string) error {
	_, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	return nil
}
