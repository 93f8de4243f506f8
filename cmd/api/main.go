package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/centsible/centsible-go/internal/cache"
	"github.com/centsible/centsible-go/internal/config"
	"github.com/centsible/centsible-go/internal/handler"
	"github.com/centsible/centsible-go/internal/repository"
	"github.com/centsible/centsible-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Env == "development" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	db, err := repository.NewDB(cfg.DatabaseDSN, repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.SkipMigrate {
		logger.Info("skipping migrations")
	} else if err := repository.Migrate(db); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	reports := newReportCache(cfg, logger)
	defer reports.Close()

	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	authService := service.NewAuthService(userRepo, service.AuthConfig{
		JWTSecret:     cfg.JWTSecret,
		JWTExpiry:     cfg.JWTExpiry,
		HashWorkers:   cfg.HashWorkers,
		LoginAttempts: cfg.LoginAttempts,
		LoginWindow:   cfg.LoginWindow,
	})
	defer authService.Close()

	transactionService := service.NewTransactionService(transactionRepo, reports, logger)
	analyticsService := service.NewAnalyticsService(transactionRepo, reports, cfg.CacheTTL, logger)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:         handler.NewAuthHandler(authService),
		Transactions: handler.NewTransactionHandler(transactionService),
		Analytics:    handler.NewAnalyticsHandler(analyticsService),
		Health:       handler.NewHealthHandler(db),
		Verifier:     authService,
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newReportCache picks the cache stack: badger behind a circuit
// breaker with an in-process fallback, or the in-process cache alone
// when badger is unavailable or disabled.
func newReportCache(cfg config.Config, logger *slog.Logger) cache.Store {
	fallback := cache.NewMemory()

	if cfg.CacheDir == "" {
		logger.Info("report cache running in-process only")
		return fallback
	}

	backend, err := cache.NewBadger(cfg.CacheDir)
	if err != nil {
		logger.Warn("badger cache unavailable, using in-process cache", "error", err, "dir", cfg.CacheDir)
		return fallback
	}

	logger.Info("report cache ready", "dir", cfg.CacheDir, "ttl", cfg.CacheTTL)
	return cache.NewLayered(backend, fallback, logger)
}
