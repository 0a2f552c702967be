package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/streak"
)

// StreakReader computes the streak for a user known to exist.
type StreakReader interface {
	ComputeKnownUser(ctx context.Context, userID string, asOf time.Time) (*streak.State, error)
}

type Service struct {
	profiles storage.Storage
	events   storage.ConsumptionStorage
	weights  storage.WeightStorage
	streak   StreakReader
	clock    clock.Clock
	loc      *time.Location
	maxDays  int
}

// NewService creates a stats service. maxDays bounds the heatmap window.
func NewService(profiles storage.Storage, events storage.ConsumptionStorage, weights storage.WeightStorage, streak StreakReader, clk clock.Clock, loc *time.Location, maxDays int) *Service {
	if clk == nil {
		clk = clock.System
	}
	if loc == nil {
		loc = time.UTC
	}
	if maxDays <= 0 {
		maxDays = 180
	}
	return &Service{
		profiles: profiles,
		events:   events,
		weights:  weights,
		streak:   streak,
		clock:    clk,
		loc:      loc,
		maxDays:  maxDays,
	}
}

// MaxDays returns the largest accepted window.
func (s *Service) MaxDays() int {
	return s.maxDays
}

// GetStats returns the activity heatmap of the last days calendar days
// (today included, zero-filled) with adherence, streak and weight figures.
func (s *Service) GetStats(ctx context.Context, userID string, days int) (*Response, error) {
	if days < 1 || days > s.maxDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", apperr.ErrInvalidRequest, s.maxDays)
	}

	_, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	today := clock.Today(s.clock, s.loc)
	from := today.AddDate(0, 0, -(days - 1))

	counts, err := s.events.DailyEventCounts(ctx, userID, from, today)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	adherence, err := s.events.AdherenceDates(ctx, userID, MaxAdherenceDates)
	if err != nil {
		return nil, fmt.Errorf("failed to load adherence dates: %w", err)
	}

	st, err := s.streak.ComputeKnownUser(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	weights, err := s.weights.ListWeights(ctx, userID, from, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}

	resp := &Response{
		Days:           days,
		Activity:       heatmap(from, today, counts),
		AdherenceDates: make([]string, 0, len(adherence)),
		Streak:         *st,
		Weights:        make([]WeightPoint, len(weights)),
	}
	for i, w := range weights {
		resp.Weights[i] = WeightPoint{Date: w.LogDate.Format(clock.DateLayout), WeightKg: w.WeightKg}
	}
	for _, a := range resp.Activity {
		if a.Count > 0 {
			resp.LoggedDays++
		}
	}
	for _, d := range adherence {
		resp.AdherenceDates = append(resp.AdherenceDates, d.Format(clock.DateLayout))
		if !d.Before(from) && !d.After(today) {
			resp.AdherenceDays++
		}
	}

	return resp, nil
}

// heatmap fills every day of [from, to] in ascending order.
func heatmap(from, to time.Time, counts []storage.DayCount) []ActivityDay {
	byDate := make(map[string]int, len(counts))
	for _, c := range counts {
		byDate[c.Date.Format(clock.DateLayout)] += c.Count
	}

	out := make([]ActivityDay, 0, clock.DaysBetween(to, from)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(clock.DateLayout)
		out = append(out, ActivityDay{Date: key, Count: byDate[key]})
	}
	return out
}
