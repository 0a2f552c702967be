package foods

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the food catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new foods handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleList handles GET /v1/foods?q=&limit=&offset=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	resp, err := h.service.List(r.Context(), q.Get("q"), parseIntQuery(r, "limit", defaultLimit), parseIntQuery(r, "offset", 0))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, resp)
}

// HandleUpsert handles POST /v1/foods
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	dto, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, dto)
}

// HandleArchive handles DELETE /v1/foods/{id}
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		apperr.Write(w, http.StatusBadRequest, "invalid_request", "Invalid food id")
		return
	}

	if err := h.service.Archive(r.Context(), id); err != nil {
		apperr.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return defaultValue
	}
	return v
}
