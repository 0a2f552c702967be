package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/streak"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StreakReader computes the streak for a user known to exist.
type StreakReader interface {
	ComputeKnownUser(ctx context.Context, userID string, asOf time.Time) (*streak.State, error)
}

type Service struct {
	storage  storage.NotificationsStorage
	profiles storage.Storage
	plans    storage.PlansStorage
	events   storage.ConsumptionStorage
	streak   StreakReader
	clock    clock.Clock
	loc      *time.Location
}

func NewService(st storage.NotificationsStorage, profiles storage.Storage, plans storage.PlansStorage, events storage.ConsumptionStorage, streak StreakReader, clk clock.Clock, loc *time.Location) *Service {
	if clk == nil {
		clk = clock.System
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		storage:  st,
		profiles: profiles,
		plans:    plans,
		events:   events,
		streak:   streak,
		clock:    clk,
		loc:      loc,
	}
}

func (s *Service) ListNotifications(ctx context.Context, userID string, onlyUnread bool, limit, offset int) ([]NotificationDTO, error) {
	if _, err := s.profile(ctx, userID); err != nil {
		return nil, err
	}

	notifications, err := s.storage.ListNotifications(ctx, userID, onlyUnread, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toDTO(&n)
	}

	return dtos, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	if _, err := s.profile(ctx, userID); err != nil {
		return 0, err
	}
	return s.storage.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID string, ids []uuid.UUID) (int, error) {
	if _, err := s.profile(ctx, userID); err != nil {
		return 0, err
	}
	return s.storage.MarkRead(ctx, userID, ids)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if _, err := s.profile(ctx, userID); err != nil {
		return 0, err
	}
	return s.storage.MarkAllRead(ctx, userID)
}

// Today returns the current calendar day in the logging location.
func (s *Service) Today() time.Time {
	return clock.Today(s.clock, s.loc)
}

// Generate evaluates the reminder rules of one user for date. Re-running it
// for the same date updates the existing notifications instead of adding new ones.
func (s *Service) Generate(ctx context.Context, userID string, date time.Time) ([]NotificationDTO, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.generateFor(ctx, profile, date)
}

// GenerateAll runs the rules for every profile. A failing user is logged and
// skipped; the first error is returned after the loop.
func (s *Service) GenerateAll(ctx context.Context, date time.Time) (int, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	var firstErr error
	created := 0
	for i := range profiles {
		out, err := s.generateFor(ctx, &profiles[i], date)
		if err != nil {
			logging.L().Warn("reminders: user skipped",
				zap.String("user_id", profiles[i].UserID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		created += len(out)
	}

	return created, firstErr
}

func (s *Service) generateFor(ctx context.Context, profile *storage.Profile, date time.Time) ([]NotificationDTO, error) {
	var candidates []storage.Notification

	n, err := s.buildNoPlan(ctx, profile, date)
	if err != nil {
		return nil, err
	}
	if n != nil {
		candidates = append(candidates, *n)
	}

	n, err = s.buildStreakAtRisk(ctx, profile.UserID, date)
	if err != nil {
		return nil, err
	}
	if n != nil {
		candidates = append(candidates, *n)
	}

	out := make([]NotificationDTO, 0, len(candidates))
	for i := range candidates {
		if err := s.storage.CreateNotification(ctx, &candidates[i]); err != nil {
			return nil, fmt.Errorf("failed to create notification: %w", err)
		}
		logging.L().Info("reminder generated",
			zap.String("user_id", profile.UserID),
			zap.String("kind", candidates[i].Kind),
			zap.String("date", date.Format(clock.DateLayout)),
		)
		out = append(out, toDTO(&candidates[i]))
	}

	return out, nil
}

func (s *Service) buildNoPlan(ctx context.Context, profile *storage.Profile, date time.Time) (*storage.Notification, error) {
	targets, err := s.plans.ListTargets(ctx, profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	if len(targets) > 0 {
		return nil, nil
	}

	return &storage.Notification{
		UserID:     profile.UserID,
		Kind:       KindNoPlan,
		Title:      "No meal plan yet",
		Body:       "Generate a plan to get per-meal calorie targets.",
		SourceDate: &date,
		Severity:   SeverityInfo,
	}, nil
}

// buildStreakAtRisk fires when the streak as of yesterday is alive and
// nothing has been logged on date.
func (s *Service) buildStreakAtRisk(ctx context.Context, userID string, date time.Time) (*storage.Notification, error) {
	events, err := s.events.ListEventsByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if len(events) > 0 {
		return nil, nil
	}

	st, err := s.streak.ComputeKnownUser(ctx, userID, date.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	if st.Length == 0 {
		return nil, nil
	}

	return &storage.Notification{
		UserID:     userID,
		Kind:       KindStreakAtRisk,
		Title:      "Streak at risk",
		Body:       fmt.Sprintf("Your %d-day streak ends today unless you log something.", st.Length),
		SourceDate: &date,
		Severity:   SeverityWarn,
	}, nil
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

func toDTO(n *storage.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:        n.ID,
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		Severity:  n.Severity,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}

	if n.SourceDate != nil {
		dateStr := n.SourceDate.Format(clock.DateLayout)
		dto.SourceDate = &dateStr
	}

	return dto
}
