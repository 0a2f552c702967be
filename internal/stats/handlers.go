package stats

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/userctx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet handles GET /v1/stats?days=N
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	days := DefaultDays
	if days > h.service.MaxDays() {
		days = h.service.MaxDays()
	}
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			apperr.WriteError(w, fmt.Errorf("%w: days must be an integer", apperr.ErrInvalidRequest))
			return
		}
		days = v
	}

	resp, err := h.service.GetStats(r.Context(), userID, days)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, resp)
}
