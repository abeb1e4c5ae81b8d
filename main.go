package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "github.com/perkhub/perkhub/app/db"
	appLogger "github.com/perkhub/perkhub/app/logger"
	"github.com/perkhub/perkhub/app/observability/metrics"
	"github.com/perkhub/perkhub/app/tracer"
	"github.com/perkhub/perkhub/config"
	"github.com/perkhub/perkhub/internal/api/auth"
	"github.com/perkhub/perkhub/internal/api/points"
	"github.com/perkhub/perkhub/internal/api/scores"
	"github.com/perkhub/perkhub/internal/api/user"
	api "github.com/perkhub/perkhub/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	metricsHandler, err := tracer.InitTracingAndMetrics()
	if err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	// --- Database Setup (two independently provisioned stores) ---
	usersPool := mustInitPool(ctx, &cfg.Repositories.UsersPostgres, "users", logger)
	defer usersPool.Close()

	pointsPool := mustInitPool(ctx, &cfg.Repositories.PointsPostgres, "points", logger)
	defer pointsPool.Close()

	// --- Dependency Injection ---
	userRepo := user.NewPostgresUserRepo(usersPool, logger)
	userService := user.NewService(userRepo, logger)
	userHandler := user.NewHandler(userService, logger)

	authService := auth.NewService(userRepo, cfg.JWT, logger)
	authHandler := auth.NewHandler(authService, logger)

	pointsRepo := points.NewPostgresPointsRepo(pointsPool, logger)
	pointsService := points.NewService(pointsRepo, logger)
	pointsHandler := points.NewHandler(pointsService, logger)

	scoresRepo := scores.NewPostgresScoresRepo(pointsPool, logger)
	scoresService := scores.NewService(scoresRepo, userRepo, logger)
	scoresHandler := scores.NewHandler(scoresService, logger)

	// --- Router Setup ---
	mainRouter := api.SetupRouter(&api.Config{
		AuthHandler:   authHandler,
		UserHandler:   userHandler,
		PointsHandler: pointsHandler,
		ScoresHandler: scoresHandler,
		Authenticate:  auth.Authenticate(authService, logger),
		RequireActive: auth.RequireActiveUser(logger),
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.MetricsPort),
		Handler: metricsHandler,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		err := metricsSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()

		logger.Info("Shutdown signal received, starting graceful shutdown...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// mustInitPool builds the connection URL, runs the store's migrations and
// opens its pool, exiting on any failure.
func mustInitPool(ctx context.Context, pgCfg *config.PostgresConfig, store string, logger *slog.Logger) *pgxpool.Pool {
	dbConfig, err := database.NewDatabaseConfig(pgCfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.String("store", store), slog.Any("error", err))
		os.Exit(1)
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, store, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.String("store", store), slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, pgCfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("store", store), slog.Any("error", err))
		os.Exit(1)
	}

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.", slog.String("store", store))
		os.Exit(1)
	}
	return pool
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
