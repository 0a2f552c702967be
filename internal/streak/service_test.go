package streak

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/storage/memory"
	"github.com/fdg312/physique-hub/internal/userctx"
)

func seed(t *testing.T, mem *memory.MemoryStorage, dates ...time.Time) {
	t.Helper()
	for _, d := range dates {
		err := mem.GetConsumptionStorage().AppendEvent(context.Background(), &storage.ConsumptionEvent{
			UserID:     memory.DefaultUserID,
			OccurredAt: d.Add(8 * time.Hour),
			LogDate:    d,
			Kind:       storage.EventKindFood,
			Quantity:   1,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestService_Compute(t *testing.T) {
	mem := memory.New()
	seed(t, mem, daysAgo(0, 0, 1, 3)...)

	svc := NewService(mem, mem.GetConsumptionStorage(), clock.Fixed(d0.Add(15*time.Hour)), time.UTC, 0)

	state, err := svc.Compute(context.Background(), memory.DefaultUserID, d0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Length != 2 {
		t.Errorf("expected 2, got %d", state.Length)
	}

	// as of D-1 the run is just D-1; D is after as_of
	state, _ = svc.Compute(context.Background(), memory.DefaultUserID, d0.AddDate(0, 0, -1))
	if state.Length != 1 {
		t.Errorf("as of yesterday: expected 1, got %d", state.Length)
	}
}

func TestService_LookbackCap(t *testing.T) {
	mem := memory.New()
	seed(t, mem, daysAgo(0, 1, 2, 3, 4)...)

	svc := NewService(mem, mem.GetConsumptionStorage(), clock.Fixed(d0), time.UTC, 3)
	state, err := svc.Compute(context.Background(), memory.DefaultUserID, d0)
	if err != nil {
		t.Fatal(err)
	}
	if state.Length != 3 {
		t.Errorf("expected streak capped at 3, got %d", state.Length)
	}
}

func TestService_UnknownUser(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, mem.GetConsumptionStorage(), clock.Fixed(d0), time.UTC, 0)

	if _, err := svc.Compute(context.Background(), "ghost", d0); !errors.Is(err, apperr.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

type failingEvents struct {
	storage.ConsumptionStorage
}

func (failingEvents) DistinctLogDates(ctx context.Context, userID string, onOrBefore time.Time, limit int) ([]time.Time, error) {
	return nil, storage.ErrUnavailable
}

func TestService_StorageUnavailableIsNotZero(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, failingEvents{}, clock.Fixed(d0), time.UTC, 0)

	state, err := svc.Compute(context.Background(), memory.DefaultUserID, d0)
	if !errors.Is(err, apperr.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if state != nil {
		t.Errorf("no state must be returned on storage failure, got %+v", state)
	}

	h := NewHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/v1/streak", nil)
	req = req.WithContext(userctx.WithUserID(req.Context(), memory.DefaultUserID))
	rr := httptest.NewRecorder()
	h.HandleGet(rr, req)

	if rr.Code != http.StatusServiceUnavailable || rr.Header().Get("Retry-After") == "" {
		t.Errorf("expected 503 with Retry-After, got %d", rr.Code)
	}
}

func TestHandleGet(t *testing.T) {
	mem := memory.New()
	seed(t, mem, daysAgo(0, 1, 2)...)
	h := NewHandler(NewService(mem, mem.GetConsumptionStorage(), clock.Fixed(d0.Add(20*time.Hour)), time.UTC, 0))

	tests := []struct {
		query    string
		wantCode int
	}{
		{"", http.StatusOK},
		{"?as_of=2026-03-09", http.StatusOK},
		{"?as_of=yesterday", http.StatusBadRequest},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/v1/streak"+tt.query, nil)
		req = req.WithContext(userctx.WithUserID(req.Context(), memory.DefaultUserID))
		rr := httptest.NewRecorder()
		h.HandleGet(rr, req)
		if rr.Code != tt.wantCode {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.wantCode, rr.Code)
		}
	}
}
