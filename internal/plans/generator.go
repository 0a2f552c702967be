package plans

import (
	"fmt"

	"github.com/fdg312/physique-hub/internal/storage"
)

// GenerateTargets splits the daily goals evenly across mealCount slots.
// The integer remainder goes to the last slot, so the per-slot values
// always add up to the goal exactly.
func GenerateTargets(mealCount, dailyCalorieGoal int, dailyProteinGoal *int) ([]storage.MealTargetUpsert, error) {
	if err := validateSettings(mealCount, dailyCalorieGoal, dailyProteinGoal); err != nil {
		return nil, err
	}

	calories := split(dailyCalorieGoal, mealCount)

	var protein []int
	if dailyProteinGoal != nil {
		protein = split(*dailyProteinGoal, mealCount)
	}

	targets := make([]storage.MealTargetUpsert, mealCount)
	for i := range targets {
		targets[i] = storage.MealTargetUpsert{
			SlotNumber:     i + 1,
			Label:          fmt.Sprintf("Meal %d", i+1),
			TargetCalories: calories[i],
		}
		if protein != nil {
			p := protein[i]
			targets[i].TargetProtein = &p
		}
	}

	return targets, nil
}

func split(total, parts int) []int {
	out := make([]int, parts)
	base := total / parts
	for i := range out {
		out[i] = base
	}
	out[parts-1] += total - base*parts
	return out
}
