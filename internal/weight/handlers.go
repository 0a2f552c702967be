package weight

import (
	"encoding/json"
	"net/http"

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

// HandleLog handles POST /v1/weight
func (h *Handler) HandleLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req LogWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	entry, err := h.service.Record(r.Context(), userID, req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, entry)
}

// HandleHistory handles GET /v1/weight?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	q := r.URL.Query()
	to, err := clock.ParseDateOr(q.Get("to"), h.service.Today())
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	from, err := clock.ParseDateOr(q.Get("from"), to.AddDate(0, 0, -(DefaultHistoryDays-1)))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	resp, err := h.service.History(r.Context(), userID, from, to)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, resp)
}
