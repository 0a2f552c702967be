package plans

import (
	"context"
	"errors"
	"testing"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/storage/memory"
)

func newTestService() (*Service, *memory.MemoryStorage) {
	mem := memory.New()
	return NewService(mem, mem.GetPlansStorage()), mem
}

func TestService_RegenerateSmallerPlan(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	if _, err := svc.Generate(ctx, memory.DefaultUserID, GeneratePlanRequest{MealCount: 6, DailyCalorieGoal: 3000}); err != nil {
		t.Fatalf("generate 6: %v", err)
	}

	resp, err := svc.Generate(ctx, memory.DefaultUserID, GeneratePlanRequest{MealCount: 2, DailyCalorieGoal: 1800})
	if err != nil {
		t.Fatalf("generate 2: %v", err)
	}
	if resp.PlanVersion != 2 {
		t.Errorf("expected plan_version 2, got %d", resp.PlanVersion)
	}

	stored, _ := mem.ListTargets(ctx, memory.DefaultUserID)
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored slots, got %d", len(stored))
	}
	for _, tg := range stored {
		if tg.SlotNumber > 2 {
			t.Errorf("orphaned slot %d", tg.SlotNumber)
		}
	}

	plan, err := svc.GetPlan(ctx, memory.DefaultUserID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if plan.MealCount != 2 || plan.DailyCalorieGoal != 1800 || len(plan.Targets) != 2 {
		t.Errorf("unexpected plan: %+v", plan)
	}
}

func TestService_GenerateInvalidLeavesPlanUntouched(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	svc.Generate(ctx, memory.DefaultUserID, GeneratePlanRequest{MealCount: 3, DailyCalorieGoal: 2400})

	_, err := svc.Generate(ctx, memory.DefaultUserID, GeneratePlanRequest{MealCount: 12, DailyCalorieGoal: 2400})
	if !errors.Is(err, apperr.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}

	p, _ := mem.GetProfile(ctx, memory.DefaultUserID)
	if p.PlanVersion != 1 || p.MealCount != 3 {
		t.Errorf("invalid request must not write: %+v", p)
	}
}

func TestService_ExpectedVersionConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	zero := 0
	if _, err := svc.Generate(ctx, memory.DefaultUserID, GeneratePlanRequest{MealCount: 3, DailyCalorieGoal: 2400, ExpectedVersion: &zero}); err != nil {
		t.Fatalf("first write: %v", err)
	}

	_, err := svc.Generate(ctx, memory.DefaultUserID, GeneratePlanRequest{MealCount: 4, DailyCalorieGoal: 2400, ExpectedVersion: &zero})
	if !errors.Is(err, apperr.ErrPlanConflict) {
		t.Fatalf("expected ErrPlanConflict, got %v", err)
	}

	// без expected_version побеждает последняя запись
	if _, err := svc.Generate(ctx, memory.DefaultUserID, GeneratePlanRequest{MealCount: 4, DailyCalorieGoal: 2400}); err != nil {
		t.Fatalf("last write wins: %v", err)
	}
}

func TestService_UnknownUser(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Generate(ctx, "ghost", GeneratePlanRequest{MealCount: 3, DailyCalorieGoal: 2400}); !errors.Is(err, apperr.ErrUserNotFound) {
		t.Errorf("generate: expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.GetPlan(ctx, "ghost"); !errors.Is(err, apperr.ErrUserNotFound) {
		t.Errorf("get: expected ErrUserNotFound, got %v", err)
	}
}

type unavailablePlans struct{}

func (unavailablePlans) ListTargets(ctx context.Context, userID string) ([]storage.MealTarget, error) {
	return nil, storage.ErrUnavailable
}

func (unavailablePlans) ReplaceAll(ctx context.Context, userID string, settings storage.PlanSettings, targets []storage.MealTargetUpsert, expectedVersion *int) (int, []storage.MealTarget, error) {
	return 0, nil, storage.ErrUnavailable
}

func TestService_StorageUnavailable(t *testing.T) {
	svc := NewService(memory.New(), unavailablePlans{})
	ctx := context.Background()

	if _, err := svc.Generate(ctx, memory.DefaultUserID, GeneratePlanRequest{MealCount: 3, DailyCalorieGoal: 2400}); !errors.Is(err, apperr.ErrStorageUnavailable) {
		t.Errorf("generate: expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := svc.GetPlan(ctx, memory.DefaultUserID); !errors.Is(err, apperr.ErrStorageUnavailable) {
		t.Errorf("get: expected ErrStorageUnavailable, got %v", err)
	}
}

func TestService_GenerateRejectsNegativeExpectedVersion(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	v := -1
	_, err := svc.Generate(ctx, memory.DefaultUserID, GeneratePlanRequest{MealCount: 3, DailyCalorieGoal: 2400, ExpectedVersion: &v})
	if !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}

	stored, _ := mem.ListTargets(ctx, memory.DefaultUserID)
	if len(stored) != 0 {
		t.Errorf("rejected request must not write targets, found %d", len(stored))
	}
}

func TestGeneratePlanRequest_Validate(t *testing.T) {
	protein := MaxProteinGoal + 1
	tests := []struct {
		name string
		req  GeneratePlanRequest
		want error
	}{
		{"valid", GeneratePlanRequest{MealCount: 3, DailyCalorieGoal: 2400}, nil},
		{"zero meals", GeneratePlanRequest{MealCount: 0, DailyCalorieGoal: 2400}, apperr.ErrInvalidConfiguration},
		{"calorie goal too high", GeneratePlanRequest{MealCount: 3, DailyCalorieGoal: MaxCalorieGoal + 1}, apperr.ErrInvalidConfiguration},
		{"protein too high", GeneratePlanRequest{MealCount: 3, DailyCalorieGoal: 2400, DailyProteinGoal: &protein}, apperr.ErrInvalidConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
