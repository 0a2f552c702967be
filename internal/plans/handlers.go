package plans

import (
	"encoding/json"
	"net/http"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/userctx"
)

// Handler handles HTTP requests for the meal plan.
type Handler struct {
	service *Service
}

// NewHandler creates a new plans handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGenerate handles POST /v1/plan/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req GeneratePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	resp, err := h.service.Generate(r.Context(), userID, req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /v1/plan
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	resp, err := h.service.GetPlan(r.Context(), userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, resp)
}
