package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/weight"
	"go.uber.org/zap"
)

// Service содержит бизнес-логику профилей
type Service struct {
	storage storage.Storage
}

// NewService создаёт новый сервис
func NewService(st storage.Storage) *Service {
	return &Service{storage: st}
}

// GetProfile возвращает профиль текущего пользователя
func (s *Service) GetProfile(ctx context.Context, userID string) (*ProfileDTO, error) {
	p, err := s.storage.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	dto := toDTO(*p)
	return &dto, nil
}

// UpsertProfile создаёт профиль при регистрации, меняет display_name
// и переданные поля антропометрии.
func (s *Service) UpsertProfile(ctx context.Context, userID string, req UpsertProfileRequest) (*ProfileDTO, error) {
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, fmt.Errorf("%w: display_name is required", apperr.ErrInvalidRequest)
	}
	if utf8.RuneCountInString(name) > maxDisplayName {
		return nil, fmt.Errorf("%w: display_name must be at most %d characters", apperr.ErrInvalidRequest, maxDisplayName)
	}
	if req.GoalMode != nil {
		mode := strings.ToLower(strings.TrimSpace(*req.GoalMode))
		req.GoalMode = &mode
	}
	if err := validateBodyStats(req); err != nil {
		return nil, err
	}

	p, err := s.storage.EnsureProfile(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	if stats, ok := req.bodyStats(); ok {
		p, err = s.storage.UpdateBodyStats(ctx, userID, stats)
		if err != nil {
			return nil, fmt.Errorf("failed to update body stats: %w", err)
		}
	}

	logging.L().Info("profile upserted", zap.String("user_id", userID))

	dto := toDTO(*p)
	return &dto, nil
}

func validateBodyStats(req UpsertProfileRequest) error {
	if req.Age != nil && (*req.Age < minAge || *req.Age > maxAge) {
		return fmt.Errorf("%w: age must be between %d and %d", apperr.ErrInvalidRequest, minAge, maxAge)
	}
	if req.HeightCm != nil && !(*req.HeightCm >= minHeightCm && *req.HeightCm <= maxHeightCm) {
		return fmt.Errorf("%w: height_cm must be between %d and %d", apperr.ErrInvalidRequest, minHeightCm, maxHeightCm)
	}
	if req.CurrentWeightKg != nil {
		if err := weight.ValidateKg("current_weight_kg", *req.CurrentWeightKg); err != nil {
			return err
		}
	}
	if req.TargetWeightKg != nil {
		if err := weight.ValidateKg("target_weight_kg", *req.TargetWeightKg); err != nil {
			return err
		}
	}
	if req.GoalMode != nil {
		switch *req.GoalMode {
		case storage.GoalModeCut, storage.GoalModeMaintain, storage.GoalModeBulk:
		default:
			return fmt.Errorf("%w: goal_mode must be one of cut, maintain, bulk", apperr.ErrInvalidRequest)
		}
	}
	return nil
}
