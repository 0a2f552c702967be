package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/physique-hub/internal/config"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrInvalidToken = errors.New("invalid token")

// Service — сервис авторизации. Пользователей он не хранит: identity
// приходит извне, здесь только выпуск и проверка HS256 токенов.
type Service struct {
	config  *config.Config
	storage storage.Storage
	now     func() time.Time
}

func NewService(cfg *config.Config, storage storage.Storage) *Service {
	return &Service{
		config:  cfg,
		storage: storage,
		now:     time.Now,
	}
}

// SignInDev выдаёт токен для dev-user и создаёт его профиль при первом входе.
func (s *Service) SignInDev(ctx context.Context) (*DevAuthResponse, error) {
	if _, err := s.storage.EnsureProfile(ctx, DevUserID, "Dev User"); err != nil {
		return nil, fmt.Errorf("failed to ensure dev profile: %w", err)
	}

	ttl := s.ttl()
	accessToken, err := s.generateJWT(DevUserID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dev JWT: %w", err)
	}

	logging.L().Info("dev token issued", zap.String("user_id", DevUserID))

	return &DevAuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		UserID:      DevUserID,
	}, nil
}

func (s *Service) ttl() time.Duration {
	minutes := s.config.JWTTTLMinutes
	if minutes <= 0 {
		minutes = 7 * 24 * 60
	}
	return time.Duration(minutes) * time.Minute
}

func (s *Service) generateJWT(userID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.config.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT проверяет подпись, срок и issuer; возвращает sub.
func (s *Service) VerifyJWT(tokenString string) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.JWTIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
