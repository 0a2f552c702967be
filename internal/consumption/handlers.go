package consumption

import (
	"encoding/json"
	"net/http"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/userctx"
)

// Handler handles HTTP requests for the consumption log.
type Handler struct {
	service *Service
}

// NewHandler creates a new consumption handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleLog handles POST /v1/log
func (h *Handler) HandleLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req LogEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	event, err := h.service.RecordEvent(r.Context(), userID, req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, event)
}

// HandleListDay handles GET /v1/log?date=YYYY-MM-DD
func (h *Handler) HandleListDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	date, err := clock.ParseDateOr(r.URL.Query().Get("date"), h.service.Today())
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	resp, err := h.service.ListDay(r.Context(), userID, date)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, resp)
}
