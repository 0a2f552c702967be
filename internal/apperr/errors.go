// Package apperr holds the error taxonomy shared by the tracking services
// and its mapping onto HTTP responses.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrUnknownItem          = errors.New("unknown item")
	ErrUserNotFound         = errors.New("user not found")
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrPlanConflict         = errors.New("plan version conflict")
	ErrInvalidDate          = errors.New("invalid date")
	ErrNotFound             = errors.New("not found")
	ErrInvalidRequest       = errors.New("invalid request")
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Classify maps an error to an HTTP status and a stable error code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidConfiguration):
		return http.StatusBadRequest, "invalid_configuration"
	case errors.Is(err, ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, ErrInvalidDate):
		return http.StatusBadRequest, "invalid_date"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, ErrUnknownItem):
		return http.StatusNotFound, "unknown_item"
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrPlanConflict):
		return http.StatusConflict, "plan_conflict"
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// WriteError renders err in the standard envelope. Internal errors never
// leak their message.
func WriteError(w http.ResponseWriter, err error) {
	status, code := Classify(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		message = "Internal server error"
	case http.StatusServiceUnavailable:
		message = "Storage is temporarily unavailable, retry later"
		w.Header().Set("Retry-After", "1")
	}
	Write(w, status, code, message)
}

// Write renders an explicit status/code/message.
func Write(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// WriteJSON renders v as a JSON body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
