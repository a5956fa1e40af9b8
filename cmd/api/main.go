package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/custodia/internal/alert"
	"github.com/saturnino-fabrica-de-software/custodia/internal/api"
	"github.com/saturnino-fabrica-de-software/custodia/internal/bridge"
	"github.com/saturnino-fabrica-de-software/custodia/internal/config"
	"github.com/saturnino-fabrica-de-software/custodia/internal/database"
	"github.com/saturnino-fabrica-de-software/custodia/internal/enrollment"
	"github.com/saturnino-fabrica-de-software/custodia/internal/ingest"
	"github.com/saturnino-fabrica-de-software/custodia/internal/notify"
	"github.com/saturnino-fabrica-de-software/custodia/internal/repository"
	"github.com/saturnino-fabrica-de-software/custodia/internal/settings"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Custodia API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Notification transport
	publisher, err := notify.NewRedisPublisher(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() { _ = publisher.Close() }()

	// Event stream bridge
	writer := bridge.NewWriter(cfg.KafkaBrokers, cfg.EventTopic)
	defer func() { _ = writer.Close() }()

	// Repositories
	logRepo := repository.NewAccessLogRepository(pool)
	deviceRepo := repository.NewDeviceRepository(pool)
	userRepo := repository.NewAccessUserRepository(pool)
	mappingRepo := repository.NewDeviceUserMappingRepository(pool)
	configRepo := repository.NewConfigurationRepository(pool)
	stateRepo := repository.NewAlertStateRepository(pool)

	// Services
	resolver := settings.NewResolver(configRepo)
	fanout := notify.NewFanout(publisher, logger)
	forwarder := bridge.NewForwarder(writer, cfg.EventSource)
	engine := alert.NewEngine(logRepo, resolver, fanout, stateRepo, cfg.AlertChannel, logger)
	ingestService := ingest.NewService(logRepo, deviceRepo, userRepo, forwarder, engine, logger)
	enrollmentService := enrollment.NewService(userRepo, deviceRepo, mappingRepo, fanout, logger)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Ingest:     ingestService,
		Events:     logRepo,
		Enrollment: enrollmentService,
		Settings:   resolver,
		DB:         pool,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
