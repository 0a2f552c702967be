package plans

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/storage"
	"go.uber.org/zap"
)

// Service owns plan generation and reads.
type Service struct {
	profiles storage.Storage
	plans    storage.PlansStorage
}

// NewService creates a new plans service.
func NewService(profiles storage.Storage, plans storage.PlansStorage) *Service {
	return &Service{profiles: profiles, plans: plans}
}

// Generate validates the settings and replaces the user's plan in one write.
func (s *Service) Generate(ctx context.Context, userID string, req GeneratePlanRequest) (*PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	targets, err := GenerateTargets(req.MealCount, req.DailyCalorieGoal, req.DailyProteinGoal)
	if err != nil {
		return nil, err
	}

	settings := storage.PlanSettings{
		MealCount:        req.MealCount,
		DailyCalorieGoal: req.DailyCalorieGoal,
		DailyProteinGoal: req.DailyProteinGoal,
	}

	version, stored, err := s.plans.ReplaceAll(ctx, userID, settings, targets, req.ExpectedVersion)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, apperr.ErrUserNotFound
		case errors.Is(err, storage.ErrVersionConflict):
			return nil, fmt.Errorf("%w: %v", apperr.ErrPlanConflict, err)
		}
		return nil, fmt.Errorf("failed to replace plan: %w", err)
	}

	logging.L().Info("plan regenerated",
		zap.String("user_id", userID),
		zap.Int("meal_count", req.MealCount),
		zap.Int("daily_calorie_goal", req.DailyCalorieGoal),
		zap.Int("plan_version", version),
	)

	return &PlanResponse{
		PlanVersion:      version,
		MealCount:        settings.MealCount,
		DailyCalorieGoal: settings.DailyCalorieGoal,
		DailyProteinGoal: settings.DailyProteinGoal,
		Targets:          ToDTOs(stored),
	}, nil
}

// GetPlan returns the current targets of the user.
func (s *Service) GetPlan(ctx context.Context, userID string) (*PlanResponse, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	targets, err := s.plans.ListTargets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	return &PlanResponse{
		PlanVersion:      profile.PlanVersion,
		MealCount:        profile.MealCount,
		DailyCalorieGoal: profile.DailyCalorieGoal,
		DailyProteinGoal: profile.DailyProteinGoal,
		Targets:          ToDTOs(targets),
	}, nil
}

// ToDTOs converts stored targets to their wire form.
func ToDTOs(targets []storage.MealTarget) []MealTargetDTO {
	out := make([]MealTargetDTO, len(targets))
	for i, t := range targets {
		out[i] = MealTargetDTO{
			SlotNumber:     t.SlotNumber,
			Label:          t.Label,
			TargetCalories: t.TargetCalories,
			TargetProtein:  t.TargetProtein,
		}
	}
	return out
}
