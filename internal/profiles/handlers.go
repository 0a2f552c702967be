package profiles

import (
	"encoding/json"
	"net/http"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/userctx"
)

// Handler содержит HTTP обработчики для профиля
type Handler struct {
	service *Service
}

// NewHandler создаёт новый handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet обрабатывает GET /v1/profile
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, profile)
}

// HandlePut обрабатывает PUT /v1/profile
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	profile, err := h.service.UpsertProfile(r.Context(), userID, req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, profile)
}
