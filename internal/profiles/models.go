package profiles

import (
	"time"

	"github.com/fdg312/physique-hub/internal/storage"
)

const (
	maxDisplayName = 80
	minAge         = 10
	maxAge         = 120
	minHeightCm    = 50
	maxHeightCm    = 300
)

// ProfileDTO — DTO для API
type ProfileDTO struct {
	UserID           string    `json:"user_id"`
	DisplayName      string    `json:"display_name"`
	MealCount        int       `json:"meal_count"`
	DailyCalorieGoal int       `json:"daily_calorie_goal"`
	DailyProteinGoal *int      `json:"daily_protein_goal"`
	PlanVersion      int       `json:"plan_version"`
	Age              *int      `json:"age"`
	HeightCm         *float64  `json:"height_cm"`
	CurrentWeightKg  *float64  `json:"current_weight_kg"`
	TargetWeightKg   *float64  `json:"target_weight_kg"`
	GoalMode         *string   `json:"goal_mode"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UpsertProfileRequest — запрос для PUT /v1/profile.
// Настройки плана меняются только через POST /v1/plan/generate.
// Не переданные поля антропометрии остаются как были.
type UpsertProfileRequest struct {
	DisplayName     string   `json:"display_name"`
	Age             *int     `json:"age,omitempty"`
	HeightCm        *float64 `json:"height_cm,omitempty"`
	CurrentWeightKg *float64 `json:"current_weight_kg,omitempty"`
	TargetWeightKg  *float64 `json:"target_weight_kg,omitempty"`
	GoalMode        *string  `json:"goal_mode,omitempty"`
}

func (r UpsertProfileRequest) bodyStats() (storage.BodyStats, bool) {
	bs := storage.BodyStats{
		Age:             r.Age,
		HeightCm:        r.HeightCm,
		CurrentWeightKg: r.CurrentWeightKg,
		TargetWeightKg:  r.TargetWeightKg,
		GoalMode:        r.GoalMode,
	}
	return bs, bs != storage.BodyStats{}
}

func toDTO(p storage.Profile) ProfileDTO {
	return ProfileDTO{
		UserID:           p.UserID,
		DisplayName:      p.DisplayName,
		MealCount:        p.MealCount,
		DailyCalorieGoal: p.DailyCalorieGoal,
		DailyProteinGoal: p.DailyProteinGoal,
		PlanVersion:      p.PlanVersion,
		Age:              p.Age,
		HeightCm:         p.HeightCm,
		CurrentWeightKg:  p.CurrentWeightKg,
		TargetWeightKg:   p.TargetWeightKg,
		GoalMode:         p.GoalMode,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
