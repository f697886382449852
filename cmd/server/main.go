package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pulse-orchestrator/internal/adapter/pulse_http"
	"pulse-orchestrator/internal/di"
	"pulse-orchestrator/internal/infra"
	"pulse-orchestrator/internal/infra/config"
	"pulse-orchestrator/internal/infra/logger"
)

func main() {
	// 1. Load .env before anything reads the environment
	_ = godotenv.Load()

	// 2. Load Config
	cfg := config.Load()

	// 3. Initialize Telemetry & Logger
	telemetryShutdown, otelEnabled, err := infra.SetupTelemetry(context.Background(), "pulse-orchestrator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up telemetry: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetryShutdown(ctx)
	}()

	log := logger.NewWithOTel(otelEnabled)
	slog.SetDefault(log)

	// 4. Initialize DB
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	dbPool, err := infra.NewPostgresDB(context.Background(), dsn)
	if err != nil {
		log.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 5. Wire Components
	components := di.NewApplicationComponents(cfg, dbPool, log)

	// 6. Start Worker
	components.AutoWorker.Start()
	defer func() {
		log.Info("Stopping worker...")
		components.AutoWorker.Stop()
	}()

	// 7. Initialize Echo
	e := echo.New()
	e.Validator = pulse_http.NewRequestValidator()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	// 8. Register Handlers
	handler := pulse_http.NewHandler(
		components.ChatUsecase,
		components.AnalysisUsecase,
		components.TraceUsecase,
		components.Refresher,
		components.SnapshotCache,
		components.AutoWorker,
		components.ArticleRepo,
		components.Prompts,
	)
	handler.Register(e)

	// 9. Health Checks
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if err := dbPool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db down", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	// 10. Start Server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("Starting server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	// 11. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
