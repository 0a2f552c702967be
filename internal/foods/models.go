package foods

import (
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
)

// FoodDTO is a catalog entry.
type FoodDTO struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Unit            string    `json:"unit"`
	CaloriesPerUnit float64   `json:"calories_per_unit"`
	ProteinPerUnit  *float64  `json:"protein_per_unit"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListFoodsResponse is the response for GET /v1/foods.
type ListFoodsResponse struct {
	Items  []FoodDTO `json:"items"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// UpsertFoodRequest is the request body for POST /v1/foods.
type UpsertFoodRequest struct {
	Name            string   `json:"name"`
	Unit            string   `json:"unit"`
	CaloriesPerUnit float64  `json:"calories_per_unit"`
	ProteinPerUnit  *float64 `json:"protein_per_unit,omitempty"`
}

// Validate validates and normalizes the upsert request.
func (r *UpsertFoodRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Unit = strings.TrimSpace(r.Unit)

	if len(r.Name) < 1 || len(r.Name) > 80 {
		return fmt.Errorf("%w: name must be between 1 and 80 characters", apperr.ErrInvalidRequest)
	}
	if len(r.Unit) < 1 || len(r.Unit) > 16 {
		return fmt.Errorf("%w: unit must be between 1 and 16 characters", apperr.ErrInvalidRequest)
	}
	if r.CaloriesPerUnit < 0 || r.CaloriesPerUnit > 2000 {
		return fmt.Errorf("%w: calories_per_unit must be between 0 and 2000", apperr.ErrInvalidRequest)
	}
	if r.ProteinPerUnit != nil && (*r.ProteinPerUnit < 0 || *r.ProteinPerUnit > 500) {
		return fmt.Errorf("%w: protein_per_unit must be between 0 and 500", apperr.ErrInvalidRequest)
	}
	return nil
}
