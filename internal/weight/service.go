// Package weight keeps the append-only weigh-in journal and mirrors the most
// recent value into the profile's current_weight_kg.
package weight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/storage"
	"go.uber.org/zap"
)

type Service struct {
	profiles storage.Storage
	weights  storage.WeightStorage
	clock    clock.Clock
	loc      *time.Location
}

func NewService(profiles storage.Storage, weights storage.WeightStorage, clk clock.Clock, loc *time.Location) *Service {
	if clk == nil {
		clk = clock.System
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		profiles: profiles,
		weights:  weights,
		clock:    clk,
		loc:      loc,
	}
}

// Today returns the current calendar day in the logging location.
func (s *Service) Today() time.Time {
	return clock.Today(s.clock, s.loc)
}

// Record appends a weigh-in. When it is the newest entry by date the
// profile's current weight follows it.
func (s *Service) Record(ctx context.Context, userID string, req LogWeightRequest) (*EntryDTO, error) {
	if err := ValidateKg("weight_kg", req.WeightKg); err != nil {
		return nil, err
	}

	today := s.Today()
	date, err := clock.ParseDateOr(req.Date, today)
	if err != nil {
		return nil, err
	}
	if date.After(today) {
		return nil, fmt.Errorf("%w: date %s is in the future", apperr.ErrInvalidDate, req.Date)
	}

	if err := s.ensureProfile(ctx, userID); err != nil {
		return nil, err
	}

	entry := &storage.WeightEntry{
		UserID:    userID,
		LogDate:   date,
		WeightKg:  roundKg(req.WeightKg),
		CreatedAt: s.clock.Now(),
	}
	if err := s.weights.AppendWeight(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append weight: %w", err)
	}

	latest, err := s.weights.LatestWeight(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest weight: %w", err)
	}
	if latest.ID == entry.ID {
		kg := entry.WeightKg
		if _, err := s.profiles.UpdateBodyStats(ctx, userID, storage.BodyStats{CurrentWeightKg: &kg}); err != nil {
			return nil, fmt.Errorf("failed to update current weight: %w", err)
		}
	}

	logging.L().Info("weight logged",
		zap.String("user_id", userID),
		zap.String("log_date", date.Format(clock.DateLayout)),
		zap.Float64("weight_kg", entry.WeightKg),
	)

	dto := toDTO(*entry)
	return &dto, nil
}

// History returns weigh-ins of [from, to] in date order.
func (s *Service) History(ctx context.Context, userID string, from, to time.Time) (*HistoryResponse, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: from must not be after to", apperr.ErrInvalidDate)
	}
	if clock.DaysBetween(to, from)+1 > MaxHistoryDays {
		return nil, fmt.Errorf("%w: range must not exceed %d days", apperr.ErrInvalidRequest, MaxHistoryDays)
	}

	if err := s.ensureProfile(ctx, userID); err != nil {
		return nil, err
	}

	entries, err := s.weights.ListWeights(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}

	resp := &HistoryResponse{
		From:    from.Format(clock.DateLayout),
		To:      to.Format(clock.DateLayout),
		Entries: make([]EntryDTO, len(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = toDTO(e)
	}
	if n := len(entries); n > 1 {
		change := roundKg(entries[n-1].WeightKg - entries[0].WeightKg)
		resp.ChangeKg = &change
	}

	latest, err := s.weights.LatestWeight(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load latest weight: %w", err)
	default:
		dto := toDTO(*latest)
		resp.Latest = &dto
	}

	return resp, nil
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
