package dashboard

import (
	"context"
	"time"

	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/plans"
	"github.com/fdg312/physique-hub/internal/streak"
	"github.com/fdg312/physique-hub/internal/summary"
)

// PlanReader returns the current plan and checks that the user exists.
type PlanReader interface {
	GetPlan(ctx context.Context, userID string) (*plans.PlanResponse, error)
}

// SummaryReader aggregates one day for a user known to exist.
type SummaryReader interface {
	SummarizeKnownUser(ctx context.Context, userID string, date time.Time) (*summary.DailySummary, error)
}

// StreakReader computes the streak for a user known to exist.
type StreakReader interface {
	ComputeKnownUser(ctx context.Context, userID string, asOf time.Time) (*streak.State, error)
}

type Service struct {
	plans   PlanReader
	summary SummaryReader
	streak  StreakReader
	clock   clock.Clock
	loc     *time.Location
}

func NewService(plans PlanReader, summary SummaryReader, streak StreakReader, clk clock.Clock, loc *time.Location) *Service {
	if clk == nil {
		clk = clock.System
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		plans:   plans,
		summary: summary,
		streak:  streak,
		clock:   clk,
		loc:     loc,
	}
}

// GetDashboard composes today's summary, the streak and the current plan.
// Any failure is returned as is, partial results are never served.
func (s *Service) GetDashboard(ctx context.Context, userID string) (*Response, error) {
	today := clock.Today(s.clock, s.loc)

	// GetPlan делает проверку профиля, дальше можно без неё
	plan, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum, err := s.summary.SummarizeKnownUser(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	st, err := s.streak.ComputeKnownUser(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	return &Response{
		Date:        today.Format(clock.DateLayout),
		Summary:     *sum,
		Streak:      *st,
		Plan:        plan.Targets,
		PlanVersion: plan.PlanVersion,
	}, nil
}
