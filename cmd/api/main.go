package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/physique-hub/internal/config"
	"github.com/fdg312/physique-hub/internal/dbmigrate"
	"github.com/fdg312/physique-hub/internal/httpserver"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/reminders"
)

func main() {
	cfg := config.Load()

	// Выходим с кодом ошибки только после всех deferred Close/Sync
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	if err := logging.Init(cfg.LogLevel, cfg.Env); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.L()

	for _, w := range cfg.Warnings {
		log.Warn("config", zap.String("warning", w))
	}

	printStartupBanner(log, cfg)

	if cfg.RunMigrationsOnStartup {
		sel, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			log.Fatal("startup migrations", zap.Error(err))
		}

		log.Info("startup migrations", zap.String("command", "up"), zap.String("using", sel.Source))
		if err := dbmigrate.Run("up", sel.URL, "", log); err != nil {
			log.Fatal("startup migrations failed", zap.Error(err))
		}
		log.Info("startup migrations completed")
	}

	validateProductionConfig(log, cfg)

	server := httpserver.New(cfg)
	defer server.Close()

	var scheduler *reminders.Scheduler
	if cfg.RemindersEnabled {
		s, err := reminders.NewScheduler(server.Reminders(), cfg.RemindersCron)
		if err != nil {
			log.Error("reminders scheduler", zap.Error(err), zap.String("cron", cfg.RemindersCron))
			exitCode = 1
			return
		}
		scheduler = s
		scheduler.Start()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
			exitCode = 1
		}
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown", zap.Error(err))
	}
}

// printStartupBanner logs the resolved configuration. Secrets are never
// printed, only "set" / "not set".
func printStartupBanner(log *zap.Logger, cfg *config.Config) {
	log.Info("physique hub api",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
		zap.String("log_timezone", cfg.TimeLocation().String()),
	)
	log.Info("database",
		zap.String("runtime_url", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled)),
		zap.String("pooled", config.SetOrNot(cfg.DatabaseURLPooled)),
		zap.String("direct", config.SetOrNot(cfg.DatabaseURLDirect)),
		zap.Bool("migrations_on_startup", cfg.RunMigrationsOnStartup),
		zap.Duration("query_timeout", cfg.DBQueryTimeout),
	)
	log.Info("auth",
		zap.String("auth_mode", cfg.AuthMode),
		zap.Bool("auth_required", cfg.AuthRequired),
		zap.String("jwt_secret", secretStatus(cfg.JWTSecret, "change_me")),
		zap.Int("jwt_ttl_minutes", cfg.JWTTTLMinutes),
	)

	fields := []zap.Field{
		zap.String("blob_mode", cfg.Blob.Mode),
		zap.String("reports_mode", displayReportsMode(cfg)),
		zap.String("effective", cfg.Blob.EffectiveReportsMode()),
		zap.Int("max_range_days", cfg.ReportsMaxRangeDays),
	}
	if cfg.Blob.EffectiveReportsMode() != config.BlobModeLocal {
		fields = append(fields, zap.String("s3", cfg.Blob.S3.DiagnosticsSummary()))
	}
	log.Info("reports", fields...)

	log.Info("tracking",
		zap.Int("streak_lookback_cap", cfg.StreakLookbackCap),
		zap.Int("stats_max_days", cfg.StatsMaxDays),
		zap.Bool("reminders", cfg.RemindersEnabled),
		zap.String("reminders_cron", cfg.RemindersCron),
	)
}

// validateProductionConfig performs fatal checks that only matter in non-local envs.
func validateProductionConfig(log *zap.Logger, cfg *config.Config) {
	isProd := cfg.Env == "production" || cfg.Env == "staging"

	if cfg.Blob.EffectiveReportsMode() == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			log.Fatal("REPORTS_MODE resolves to s3 but S3 config is incomplete",
				zap.String("missing", strings.Join(missing, ", ")))
		}
	}

	if cfg.AuthMode == config.AuthModeDev && cfg.JWTSecret == "" {
		log.Fatal("AUTH_MODE=dev requires JWT_SECRET")
	}

	if isProd && cfg.AuthRequired && cfg.JWTSecret == "change_me" {
		log.Fatal("JWT_SECRET must not be 'change_me' with AUTH_REQUIRED=1", zap.String("env", cfg.Env))
	}

	if isProd && cfg.DatabaseURL == "" {
		log.Fatal("no DATABASE_URL configured", zap.String("env", cfg.Env))
	}
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (will use in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}

func displayReportsMode(cfg *config.Config) string {
	if cfg.Blob.ReportsModeSet {
		return cfg.Blob.ReportsMode
	}
	return fmt.Sprintf("(inherits BLOB_MODE=%s)", cfg.Blob.Mode)
}
