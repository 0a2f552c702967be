package streak

import (
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

// HandleGet handles GET /v1/streak?as_of=YYYY-MM-DD
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	asOf, err := clock.ParseDateOr(r.URL.Query().Get("as_of"), h.service.Today())
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	state, err := h.service.Compute(r.Context(), userID, asOf)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, state)
}
