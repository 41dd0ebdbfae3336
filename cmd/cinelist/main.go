package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mbonnet/cinelist/internal/api"
	"github.com/mbonnet/cinelist/internal/config"
	"github.com/mbonnet/cinelist/internal/controllers"
	"github.com/mbonnet/cinelist/internal/models"
	"github.com/mbonnet/cinelist/internal/scheduler"
	"github.com/mbonnet/cinelist/internal/services/images"
	"github.com/mbonnet/cinelist/internal/services/omdb"
	"github.com/mbonnet/cinelist/internal/services/tmdb"
	"github.com/mbonnet/cinelist/internal/utils"
	"github.com/mbonnet/cinelist/internal/workers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting cinelist")
	logger.WithField("images_dir", cfg.ImagesDir).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize services
	omdbClient, err := omdb.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OMDb client: %w", err)
	}
	logger.Info("OMDb client initialized")

	tmdbClient, err := tmdb.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize TMDb client: %w", err)
	}
	logger.Info("TMDb client initialized")

	fetcher := images.NewFetcher(cfg, logger)

	// 5. Initialize controllers
	watchlistCtrl := controllers.NewWatchlistController(db, omdbClient, tmdbClient, fetcher, logger)
	cleanupCtrl := controllers.NewCleanupController(db, cfg.ImagesDir, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(cleanupCtrl, cfg.CleanupIntervalHours, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	pool := workers.NewPool(cfg.EnrichConcurrency)
	server := api.NewServer(cfg, watchlistCtrl, pool, logger)

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("cinelist is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("cinelist stopped")
	return nil
}
