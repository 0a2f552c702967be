package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("meal_count 11: %w", ErrInvalidConfiguration), http.StatusBadRequest, "invalid_configuration"},
		{ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
		{ErrUnknownItem, http.StatusNotFound, "unknown_item"},
		{ErrUserNotFound, http.StatusNotFound, "user_not_found"},
		{ErrPlanConflict, http.StatusConflict, "plan_conflict"},
		{fmt.Errorf("query: %w: %w", ErrStorageUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable, "storage_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		status, code := Classify(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("%v: expected %d/%s, got %d/%s", tt.err, tt.status, tt.code, status, code)
		}
	}
}

func TestWriteErrorStorageUnavailable(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, fmt.Errorf("list events: %w", ErrStorageUnavailable))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Error("expected Retry-After header")
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "storage_unavailable" {
		t.Errorf("expected storage_unavailable, got %s", resp.Error.Code)
	}
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("pq: password authentication failed"))

	var resp ErrorResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error.Message != "Internal server error" {
		t.Errorf("internal message leaked: %s", resp.Error.Message)
	}
}
