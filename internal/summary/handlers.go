package summary

import (
	"net/http"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/userctx"
)

// Handler handles GET /v1/summary.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet handles GET /v1/summary?date=YYYY-MM-DD
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
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

	sum, err := h.service.Summarize(r.Context(), userID, date)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, sum)
}
