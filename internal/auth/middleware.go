package auth

import (
	"net/http"
	"strings"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/config"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/userctx"
	"go.uber.org/zap"
)

// Middleware — middleware для проверки авторизации
type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{
		config:  cfg,
		service: service,
	}
}

// Handler picks the middleware for the configured AUTH_MODE.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	switch {
	case m.config.AuthMode != config.AuthModeDev:
		return m.DefaultUser(next)
	case m.config.AuthRequired:
		return m.RequireAuth(next)
	default:
		return m.OptionalAuth(next)
	}
}

// DefaultUser attributes every request to storage.DefaultUserID (AUTH_MODE=none).
func (m *Middleware) DefaultUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(userctx.WithUserID(r.Context(), storage.DefaultUserID)))
	})
}

// RequireAuth — middleware для защиты эндпоинтов
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.authenticateHeader(r.Header.Get("Authorization"))
		if err != nil {
			logging.L().Debug("auth rejected", zap.String("path", r.URL.Path), zap.Error(err))
			apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(userctx.WithUserID(r.Context(), userID)))
	})
}

// OptionalAuth validates Bearer token only when it is provided.
// Without token, the request belongs to the default user.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if strings.TrimSpace(authHeader) == "" {
			next.ServeHTTP(w, r.WithContext(userctx.WithUserID(r.Context(), storage.DefaultUserID)))
			return
		}

		userID, err := m.authenticateHeader(authHeader)
		if err != nil {
			logging.L().Debug("auth rejected", zap.String("path", r.URL.Path), zap.Error(err))
			apperr.Write(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		logging.L().Debug("auth token accepted",
			zap.String("sub", userID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r.WithContext(userctx.WithUserID(r.Context(), userID)))
	})
}

func (m *Middleware) authenticateHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidToken
	}

	return m.service.VerifyJWT(strings.TrimSpace(parts[1]))
}

func isPublicPath(path string) bool {
	return path == "/healthz" || strings.HasPrefix(path, "/v1/auth/")
}
