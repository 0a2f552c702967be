package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/storage"
)

// Service is the daily aggregator. It owns no data.
type Service struct {
	profiles storage.Storage
	plans    storage.PlansStorage
	events   storage.ConsumptionStorage
	clock    clock.Clock
	loc      *time.Location
}

// NewService creates a new summary service.
func NewService(profiles storage.Storage, plans storage.PlansStorage, events storage.ConsumptionStorage, clk clock.Clock, loc *time.Location) *Service {
	if clk == nil {
		clk = clock.System
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		profiles: profiles,
		plans:    plans,
		events:   events,
		clock:    clk,
		loc:      loc,
	}
}

// Summarize returns the summary of one calendar day. A user without a plan
// gets zero targets, a user without a profile gets ErrUserNotFound.
func (s *Service) Summarize(ctx context.Context, userID string, date time.Time) (*DailySummary, error) {
	if _, err := s.profile(ctx, userID); err != nil {
		return nil, err
	}
	return s.SummarizeKnownUser(ctx, userID, date)
}

// SummarizeKnownUser is Summarize without the profile lookup.
func (s *Service) SummarizeKnownUser(ctx context.Context, userID string, date time.Time) (*DailySummary, error) {
	targets, err := s.plans.ListTargets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	events, err := s.events.ListEventsByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	sum := Aggregate(date, targets, events)
	return &sum, nil
}

// SummarizeRange returns one summary per day in [from, to], oldest first,
// all measured against the current plan.
func (s *Service) SummarizeRange(ctx context.Context, userID string, from, to time.Time) ([]DailySummary, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from must not be after to", apperr.ErrInvalidDate)
	}
	if _, err := s.profile(ctx, userID); err != nil {
		return nil, err
	}

	targets, err := s.plans.ListTargets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	events, err := s.events.ListEventsInRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	byDate := make(map[string][]storage.ConsumptionEvent)
	for _, e := range events {
		key := e.LogDate.Format(clock.DateLayout)
		byDate[key] = append(byDate[key], e)
	}

	var out []DailySummary
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, Aggregate(d, targets, byDate[d.Format(clock.DateLayout)]))
	}
	return out, nil
}

// Today returns the current calendar day in the logging location.
func (s *Service) Today() time.Time {
	return clock.Today(s.clock, s.loc)
}

func (s *Service) profile(ctx context.Context, userID string) (*storage.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}
