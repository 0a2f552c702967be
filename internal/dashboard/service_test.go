package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/consumption"
	"github.com/fdg312/physique-hub/internal/foods"
	"github.com/fdg312/physique-hub/internal/plans"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/storage/memory"
	"github.com/fdg312/physique-hub/internal/streak"
	"github.com/fdg312/physique-hub/internal/summary"
	"github.com/fdg312/physique-hub/internal/userctx"
)

var now = time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *plans.Service, *consumption.Service) {
	t.Helper()
	mem := memory.New()
	clk := clock.Fixed(now)

	planSvc := plans.NewService(mem, mem.GetPlansStorage())
	logSvc := consumption.NewService(mem, mem.GetConsumptionStorage(), foods.NewService(mem.GetFoodsStorage()), clk, time.UTC)
	sumSvc := summary.NewService(mem, mem.GetPlansStorage(), mem.GetConsumptionStorage(), clk, time.UTC)
	streakSvc := streak.NewService(mem, mem.GetConsumptionStorage(), clk, time.UTC, 0)

	return NewService(planSvc, sumSvc, streakSvc, clk, time.UTC), planSvc, logSvc
}

func TestGetDashboard(t *testing.T) {
	svc, planSvc, logSvc := setup(t)
	ctx := context.Background()

	if _, err := planSvc.Generate(ctx, memory.DefaultUserID, plans.GeneratePlanRequest{MealCount: 3, DailyCalorieGoal: 2400}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	slot := 1
	if _, err := logSvc.RecordEvent(ctx, memory.DefaultUserID, consumption.LogEventRequest{SlotNumber: &slot, Descriptor: "Egg", Quantity: 2}); err != nil {
		t.Fatalf("record: %v", err)
	}

	resp, err := svc.GetDashboard(ctx, memory.DefaultUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Date != "2026-05-04" || resp.Summary.Date != resp.Date {
		t.Errorf("unexpected date: %s / %s", resp.Date, resp.Summary.Date)
	}
	if resp.PlanVersion != 1 || len(resp.Plan) != 3 {
		t.Errorf("unexpected plan: version=%d slots=%d", resp.PlanVersion, len(resp.Plan))
	}
	if resp.Summary.ActualCaloriesTotal != 156 || resp.Summary.FulfilledSlots() != 1 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}
	if resp.Streak.Length != 1 {
		t.Errorf("expected streak 1, got %d", resp.Streak.Length)
	}
}

func TestGetDashboard_FreshUser(t *testing.T) {
	svc, _, _ := setup(t)

	resp, err := svc.GetDashboard(context.Background(), memory.DefaultUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PlanVersion != 0 || len(resp.Plan) != 0 || resp.Streak.Length != 0 || len(resp.Summary.PerSlot) != 0 {
		t.Errorf("expected an empty dashboard, got %+v", resp)
	}
}

func TestGetDashboard_UnknownUser(t *testing.T) {
	svc, _, _ := setup(t)
	if _, err := svc.GetDashboard(context.Background(), "ghost"); !errors.Is(err, apperr.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

type stubPlans struct{}

func (stubPlans) GetPlan(ctx context.Context, userID string) (*plans.PlanResponse, error) {
	return &plans.PlanResponse{Targets: []plans.MealTargetDTO{}}, nil
}

type stubSummary struct{}

func (stubSummary) SummarizeKnownUser(ctx context.Context, userID string, date time.Time) (*summary.DailySummary, error) {
	s := summary.Aggregate(date, nil, nil)
	return &s, nil
}

type brokenStreak struct{}

func (brokenStreak) ComputeKnownUser(ctx context.Context, userID string, asOf time.Time) (*streak.State, error) {
	return nil, storage.ErrUnavailable
}

func TestGetDashboard_PropagatesStorageErrors(t *testing.T) {
	svc := NewService(stubPlans{}, stubSummary{}, brokenStreak{}, clock.Fixed(now), time.UTC)

	resp, err := svc.GetDashboard(context.Background(), memory.DefaultUserID)
	if !errors.Is(err, apperr.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if resp != nil {
		t.Errorf("partial dashboard must not be returned")
	}

	h := NewHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req = req.WithContext(userctx.WithUserID(req.Context(), memory.DefaultUserID))
	rr := httptest.NewRecorder()
	h.HandleGet(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rr.Code)
	}
}

func TestHandleGet(t *testing.T) {
	svc, _, _ := setup(t)
	h := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	rr := httptest.NewRecorder()
	h.HandleGet(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without user, got %d", rr.Code)
	}

	req = req.WithContext(userctx.WithUserID(req.Context(), memory.DefaultUserID))
	rr = httptest.NewRecorder()
	h.HandleGet(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"date", "summary", "streak", "plan", "plan_version"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing %q in response", key)
		}
	}
}
