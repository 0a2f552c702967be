package dashboard

import (
	"net/http"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/userctx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet handles GET /v1/dashboard
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	resp, err := h.service.GetDashboard(r.Context(), userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, resp)
}
