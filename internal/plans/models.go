package plans

import (
	"fmt"

	"github.com/fdg312/physique-hub/internal/apperr"
)

const (
	MinMealCount   = 1
	MaxMealCount   = 10
	MaxCalorieGoal = 20000
	MaxProteinGoal = 1000
)

// GeneratePlanRequest is the body of POST /v1/plan/generate.
type GeneratePlanRequest struct {
	MealCount        int  `json:"meal_count"`
	DailyCalorieGoal int  `json:"daily_calorie_goal"`
	DailyProteinGoal *int `json:"daily_protein_goal,omitempty"`
	// ExpectedVersion enables the optimistic check against plan_version.
	ExpectedVersion *int `json:"expected_version,omitempty"`
}

type MealTargetDTO struct {
	SlotNumber     int    `json:"slot_number"`
	Label          string `json:"label"`
	TargetCalories int    `json:"target_calories"`
	TargetProtein  *int   `json:"target_protein"`
}

type PlanResponse struct {
	PlanVersion      int             `json:"plan_version"`
	MealCount        int             `json:"meal_count"`
	DailyCalorieGoal int             `json:"daily_calorie_goal"`
	DailyProteinGoal *int            `json:"daily_protein_goal"`
	Targets          []MealTargetDTO `json:"targets"`
}

// Validate checks meal count, goals and the optional expected_version.
func (r *GeneratePlanRequest) Validate() error {
	if err := validateSettings(r.MealCount, r.DailyCalorieGoal, r.DailyProteinGoal); err != nil {
		return err
	}
	if r.ExpectedVersion != nil && *r.ExpectedVersion < 0 {
		return fmt.Errorf("%w: expected_version must not be negative", apperr.ErrInvalidRequest)
	}
	return nil
}

func validateSettings(mealCount, calorieGoal int, proteinGoal *int) error {
	if mealCount < MinMealCount || mealCount > MaxMealCount {
		return fmt.Errorf("%w: meal_count must be between %d and %d", apperr.ErrInvalidConfiguration, MinMealCount, MaxMealCount)
	}
	if calorieGoal < 1 || calorieGoal > MaxCalorieGoal {
		return fmt.Errorf("%w: daily_calorie_goal must be between 1 and %d", apperr.ErrInvalidConfiguration, MaxCalorieGoal)
	}
	if proteinGoal != nil && (*proteinGoal < 0 || *proteinGoal > MaxProteinGoal) {
		return fmt.Errorf("%w: daily_protein_goal must be between 0 and %d", apperr.ErrInvalidConfiguration, MaxProteinGoal)
	}
	return nil
}
