package reminders

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/userctx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleList handles GET /v1/inbox
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	onlyUnread := r.URL.Query().Get("only_unread") == "true"

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	notifications, err := h.service.ListNotifications(r.Context(), userID, onlyUnread, limit, offset)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, InboxListResponse{Notifications: notifications})
}

// HandleUnreadCount handles GET /v1/inbox/unread-count
func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, UnreadCountResponse{Unread: count})
}

// HandleMarkRead handles POST /v1/inbox/mark-read
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		apperr.Write(w, http.StatusBadRequest, "invalid_request", "ids are required")
		return
	}

	marked, err := h.service.MarkRead(r.Context(), userID, req.IDs)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, MarkReadResponse{Marked: marked})
}

// HandleMarkAllRead handles POST /v1/inbox/mark-all-read
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	marked, err := h.service.MarkAllRead(r.Context(), userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, MarkReadResponse{Marked: marked})
}

// HandleGenerate handles POST /v1/inbox/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req GenerateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperr.Write(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
			return
		}
	}

	date, err := clock.ParseDateOr(req.Date, h.service.Today())
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	notifications, err := h.service.Generate(r.Context(), userID, date)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, GenerateResponse{
		Date:          date.Format(clock.DateLayout),
		Created:       len(notifications),
		Notifications: notifications,
	})
}
