package foods

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Service is the reference catalog: search, upsert, archive and lookup
// of per-unit calorie rates.
type Service struct {
	storage storage.FoodsStorage
}

// NewService creates a new foods service.
func NewService(storage storage.FoodsStorage) *Service {
	return &Service{storage: storage}
}

// List returns active catalog items matching query.
func (s *Service) List(ctx context.Context, query string, limit, offset int) (*ListFoodsResponse, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.storage.ListFoods(ctx, strings.TrimSpace(query), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}

	dtos := make([]FoodDTO, len(items))
	for i, item := range items {
		dtos[i] = toDTO(item)
	}

	return &ListFoodsResponse{
		Items:  dtos,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// Upsert creates or updates an item by name.
func (s *Service) Upsert(ctx context.Context, req UpsertFoodRequest) (*FoodDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item, err := s.storage.UpsertFood(ctx, storage.FoodUpsert{
		Name:            req.Name,
		Unit:            req.Unit,
		CaloriesPerUnit: req.CaloriesPerUnit,
		ProteinPerUnit:  req.ProteinPerUnit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert food: %w", err)
	}

	logging.L().Info("food upserted", zap.String("food_id", item.ID.String()), zap.String("name", item.Name))

	dto := toDTO(item)
	return &dto, nil
}

// Archive hides an item from the catalog. Logged events keep their calories.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	err := s.storage.ArchiveFood(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: food %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to archive food: %w", err)
	}
	return nil
}

// Lookup resolves an item by id, or by exact name (case-insensitive) when id
// is nil. Missing and archived items are apperr.ErrUnknownItem.
func (s *Service) Lookup(ctx context.Context, id *uuid.UUID, name string) (*storage.FoodItem, error) {
	if id != nil {
		item, err := s.storage.GetFood(ctx, *id)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: food %s", apperr.ErrUnknownItem, id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get food: %w", err)
		}
		if item.ArchivedAt != nil {
			return nil, fmt.Errorf("%w: food %s is archived", apperr.ErrUnknownItem, id)
		}
		return item, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: food_id or descriptor is required", apperr.ErrUnknownItem)
	}

	items, _, err := s.storage.ListFoods(ctx, name, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	for i := range items {
		if strings.EqualFold(items[i].Name, name) {
			return &items[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownItem, name)
}

func toDTO(item storage.FoodItem) FoodDTO {
	return FoodDTO{
		ID:              item.ID.String(),
		Name:            item.Name,
		Unit:            item.Unit,
		CaloriesPerUnit: item.CaloriesPerUnit,
		ProteinPerUnit:  item.ProteinPerUnit,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}
