package summary

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/physique-hub/internal/storage/memory"
	"github.com/fdg312/physique-hub/internal/userctx"
)

func TestHandleGet(t *testing.T) {
	f := newFixture(testNow)
	h := NewHandler(f.summary)

	tests := []struct {
		name     string
		userID   string
		query    string
		wantCode int
		wantDate string
	}{
		{"today by default", memory.DefaultUserID, "", http.StatusOK, "2026-03-10"},
		{"explicit date", memory.DefaultUserID, "?date=2026-02-01", http.StatusOK, "2026-02-01"},
		{"malformed date", memory.DefaultUserID, "?date=2026/02/01", http.StatusBadRequest, ""},
		{"unknown user", "ghost", "", http.StatusNotFound, ""},
		{"anonymous", "", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/summary"+tt.query, nil)
			if tt.userID != "" {
				req = req.WithContext(userctx.WithUserID(req.Context(), tt.userID))
			}
			rr := httptest.NewRecorder()
			h.HandleGet(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if tt.wantDate != "" {
				var sum DailySummary
				json.NewDecoder(rr.Body).Decode(&sum)
				if sum.Date != tt.wantDate {
					t.Errorf("expected date %s, got %s", tt.wantDate, sum.Date)
				}
			}
		})
	}
}
