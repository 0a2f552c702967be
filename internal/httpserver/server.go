package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/auth"
	"github.com/fdg312/physique-hub/internal/blob"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/config"
	"github.com/fdg312/physique-hub/internal/consumption"
	"github.com/fdg312/physique-hub/internal/dashboard"
	"github.com/fdg312/physique-hub/internal/foods"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/plans"
	"github.com/fdg312/physique-hub/internal/profiles"
	"github.com/fdg312/physique-hub/internal/reminders"
	"github.com/fdg312/physique-hub/internal/reports"
	"github.com/fdg312/physique-hub/internal/stats"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/storage/memory"
	"github.com/fdg312/physique-hub/internal/storage/postgres"
	"github.com/fdg312/physique-hub/internal/streak"
	"github.com/fdg312/physique-hub/internal/summary"
	"github.com/fdg312/physique-hub/internal/weight"
	"go.uber.org/zap"
)

// Server представляет HTTP сервер
type Server struct {
	config      *config.Config
	mux         *http.ServeMux
	storage     storage.Backend
	storageMode string
	clock       clock.Clock
	reminders   *reminders.Service
	httpServer  *http.Server
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config) *Server {
	return newServer(cfg, clock.System)
}

func newServer(cfg *config.Config, clk clock.Clock) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
		clock:  clk,
	}

	s.initStorage()
	s.routes()
	return s
}

// initStorage выбирает хранилище: Postgres при заданном DATABASE_URL, иначе in-memory.
// Ошибка подключения к Postgres фатальна, fallback на память не делается.
func (s *Server) initStorage() {
	log := logging.L()
	if s.config.DatabaseURL == "" {
		log.Info("using in-memory storage")
		s.storage = memory.New()
		s.storageMode = "memory"
		return
	}

	log.Info("connecting to postgres")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	pg, err := postgres.New(ctx, s.config.DatabaseURL, s.config.DBQueryTimeout)
	if err != nil {
		log.Fatal("postgres connection failed", zap.Error(err))
	}
	log.Info("postgres connected")
	s.storage = pg
	s.storageMode = "postgres"
}

// routes регистрирует маршруты
func (s *Server) routes() {
	loc := s.config.TimeLocation()

	// Health check (no auth required)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Auth API
	authService := auth.NewService(s.config, s.storage)
	if s.config.AuthMode == config.AuthModeDev {
		authHandler := auth.NewHandlers(authService)
		s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)
	}

	// Profile API
	profileHandler := profiles.NewHandler(profiles.NewService(s.storage))
	s.mux.HandleFunc("GET /v1/profile", profileHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/profile", profileHandler.HandlePut)

	// Plans API
	planService := plans.NewService(s.storage, s.storage.GetPlansStorage())
	planHandler := plans.NewHandler(planService)
	s.mux.HandleFunc("POST /v1/plan/generate", planHandler.HandleGenerate)
	s.mux.HandleFunc("GET /v1/plan", planHandler.HandleGet)

	// Food catalog API
	foodService := foods.NewService(s.storage.GetFoodsStorage())
	foodHandler := foods.NewHandler(foodService)
	s.mux.HandleFunc("GET /v1/foods", foodHandler.HandleList)
	s.mux.HandleFunc("POST /v1/foods", foodHandler.HandleUpsert)
	s.mux.HandleFunc("DELETE /v1/foods/{id}", foodHandler.HandleArchive)

	// Consumption log API
	events := s.storage.GetConsumptionStorage()
	consumptionHandler := consumption.NewHandler(consumption.NewService(s.storage, events, foodService, s.clock, loc))
	s.mux.HandleFunc("POST /v1/log", consumptionHandler.HandleLog)
	s.mux.HandleFunc("GET /v1/log", consumptionHandler.HandleListDay)

	// Summary / streak
	summaryService := summary.NewService(s.storage, s.storage.GetPlansStorage(), events, s.clock, loc)
	s.mux.HandleFunc("GET /v1/summary", summary.NewHandler(summaryService).HandleGet)

	streakService := streak.NewService(s.storage, events, s.clock, loc, s.config.StreakLookbackCap)
	s.mux.HandleFunc("GET /v1/streak", streak.NewHandler(streakService).HandleGet)

	// Dashboard / stats
	dashboardService := dashboard.NewService(planService, summaryService, streakService, s.clock, loc)
	s.mux.HandleFunc("GET /v1/dashboard", dashboard.NewHandler(dashboardService).HandleGet)

	statsService := stats.NewService(s.storage, events, s.storage.GetWeightStorage(), streakService, s.clock, loc, s.config.StatsMaxDays)
	s.mux.HandleFunc("GET /v1/stats", stats.NewHandler(statsService).HandleGet)

	// Weight log API
	weightHandler := weight.NewHandler(weight.NewService(s.storage, s.storage.GetWeightStorage(), s.clock, loc))
	s.mux.HandleFunc("POST /v1/weight", weightHandler.HandleLog)
	s.mux.HandleFunc("GET /v1/weight", weightHandler.HandleHistory)

	// Inbox API
	s.reminders = reminders.NewService(
		s.storage.GetNotificationsStorage(),
		s.storage,
		s.storage.GetPlansStorage(),
		events,
		streakService,
		s.clock,
		loc,
	)
	inboxHandler := reminders.NewHandler(s.reminders)
	s.mux.HandleFunc("GET /v1/inbox", inboxHandler.HandleList)
	s.mux.HandleFunc("GET /v1/inbox/unread-count", inboxHandler.HandleUnreadCount)
	s.mux.HandleFunc("POST /v1/inbox/mark-read", inboxHandler.HandleMarkRead)
	s.mux.HandleFunc("POST /v1/inbox/mark-all-read", inboxHandler.HandleMarkAllRead)
	s.mux.HandleFunc("POST /v1/inbox/generate", inboxHandler.HandleGenerate)

	// Reports API
	reportsStore := s.initReportsBlobStore()
	reportsService := reports.NewService(
		s.storage.GetReportsStorage(),
		summaryService,
		reportsStore,
		reports.Options{
			MaxRangeDays:    s.config.ReportsMaxRangeDays,
			PresignTTL:      s.config.Blob.S3.PresignTTLSeconds,
			PublicBaseURL:   s.config.Blob.S3.PublicBaseURL,
			PreferPublicURL: s.config.Blob.S3.PreferPublicURL,
		},
	)
	reportsHandler := reports.NewHandlers(reportsService)
	s.mux.HandleFunc("POST /v1/reports", reportsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/reports", reportsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/reports/{id}/download", reportsHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/reports/{id}", reportsHandler.HandleDelete)

	// Middleware chain (outermost first): CORS → Rate Limit → Auth → Request Log → Router
	var handler http.Handler = s.mux
	handler = RequestLogMiddleware(logging.L(), handler)
	handler = auth.NewMiddleware(s.config, authService).Handler(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// initReportsBlobStore returns the bucket for report files, nil in local mode.
func (s *Server) initReportsBlobStore() blob.Store {
	store, mode, err := blob.NewBlobStore(context.Background(), s.config.Blob, logging.L())
	if err != nil {
		logging.L().Fatal("reports blob store init failed", zap.Error(err))
	}
	logging.L().Info("reports blob mode", zap.String("mode", mode))
	return store
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	apperr.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"storage": s.storageMode,
	})
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Reminders exposes the inbox service for the background scheduler.
func (s *Server) Reminders() *reminders.Service {
	return s.reminders
}

// Start запускает HTTP сервер и блокируется до Shutdown.
func (s *Server) Start() error {
	log := logging.L()
	log.Info("server listening",
		zap.String("addr", s.httpServer.Addr),
		zap.String("storage", s.storageMode),
		zap.String("auth_mode", s.config.AuthMode),
		zap.String("timezone", s.config.TimeLocation().String()),
	)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown останавливает приём запросов и ждёт активные.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
