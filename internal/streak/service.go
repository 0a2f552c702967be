package streak

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/storage"
)

// Service reads distinct log dates and computes the streak on every call.
type Service struct {
	profiles    storage.Storage
	events      storage.ConsumptionStorage
	clock       clock.Clock
	loc         *time.Location
	lookbackCap int
}

// NewService creates a new streak service. lookbackCap <= 0 uses DefaultLookbackCap.
func NewService(profiles storage.Storage, events storage.ConsumptionStorage, clk clock.Clock, loc *time.Location, lookbackCap int) *Service {
	if clk == nil {
		clk = clock.System
	}
	if loc == nil {
		loc = time.UTC
	}
	if lookbackCap <= 0 {
		lookbackCap = DefaultLookbackCap
	}
	return &Service{
		profiles:    profiles,
		events:      events,
		clock:       clk,
		loc:         loc,
		lookbackCap: lookbackCap,
	}
}

// Compute returns the streak of userID as of the given calendar day.
func (s *Service) Compute(ctx context.Context, userID string, asOf time.Time) (*State, error) {
	_, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return s.ComputeKnownUser(ctx, userID, asOf)
}

// ComputeKnownUser skips the profile lookup; callers that already loaded the
// profile use it.
func (s *Service) ComputeKnownUser(ctx context.Context, userID string, asOf time.Time) (*State, error) {
	dates, err := s.events.DistinctLogDates(ctx, userID, asOf, s.lookbackCap)
	if err != nil {
		return nil, fmt.Errorf("failed to load log dates: %w", err)
	}

	state := Compute(dates, asOf)
	return &state, nil
}

// Today returns the current calendar day in the logging location.
func (s *Service) Today() time.Time {
	return clock.Today(s.clock, s.loc)
}
