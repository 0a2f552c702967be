package reminders

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/physique-hub/internal/storage/memory"
	"github.com/fdg312/physique-hub/internal/userctx"
	"github.com/google/uuid"
)

func do(h http.HandlerFunc, method, target string, body []byte, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if userID != "" {
		req = req.WithContext(userctx.WithUserID(req.Context(), userID))
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestInboxFlow(t *testing.T) {
	h := NewHandler(newService(memory.New()))

	rr := do(h.HandleGenerate, http.MethodPost, "/v1/inbox/generate", nil, memory.DefaultUserID)
	if rr.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var gen GenerateResponse
	json.NewDecoder(rr.Body).Decode(&gen)
	if gen.Date != "2026-09-01" || gen.Created != 1 {
		t.Errorf("unexpected generate response: %+v", gen)
	}

	rr = do(h.HandleUnreadCount, http.MethodGet, "/v1/inbox/unread-count", nil, memory.DefaultUserID)
	var count UnreadCountResponse
	json.NewDecoder(rr.Body).Decode(&count)
	if count.Unread != 1 {
		t.Errorf("expected 1 unread, got %d", count.Unread)
	}

	rr = do(h.HandleList, http.MethodGet, "/v1/inbox?only_unread=true", nil, memory.DefaultUserID)
	var list InboxListResponse
	json.NewDecoder(rr.Body).Decode(&list)
	if len(list.Notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list.Notifications))
	}

	body, _ := json.Marshal(MarkReadRequest{IDs: []uuid.UUID{list.Notifications[0].ID}})
	rr = do(h.HandleMarkRead, http.MethodPost, "/v1/inbox/mark-read", body, memory.DefaultUserID)
	var marked MarkReadResponse
	json.NewDecoder(rr.Body).Decode(&marked)
	if rr.Code != http.StatusOK || marked.Marked != 1 {
		t.Errorf("mark-read: code=%d marked=%d", rr.Code, marked.Marked)
	}

	rr = do(h.HandleMarkAllRead, http.MethodPost, "/v1/inbox/mark-all-read", nil, memory.DefaultUserID)
	json.NewDecoder(rr.Body).Decode(&marked)
	if rr.Code != http.StatusOK || marked.Marked != 0 {
		t.Errorf("mark-all-read: code=%d marked=%d", rr.Code, marked.Marked)
	}
}

func TestHandlers_Errors(t *testing.T) {
	h := NewHandler(newService(memory.New()))

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		body     string
		userID   string
		wantCode int
	}{
		{"anonymous", h.HandleList, "", "", http.StatusUnauthorized},
		{"unknown user", h.HandleUnreadCount, "", "ghost", http.StatusNotFound},
		{"mark-read without ids", h.HandleMarkRead, `{"ids":[]}`, memory.DefaultUserID, http.StatusBadRequest},
		{"mark-read bad json", h.HandleMarkRead, `{`, memory.DefaultUserID, http.StatusBadRequest},
		{"generate bad date", h.HandleGenerate, `{"date":"01.09.2026"}`, memory.DefaultUserID, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(tt.handler, http.MethodPost, "/v1/inbox", []byte(tt.body), tt.userID)
			if rr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
		})
	}
}
