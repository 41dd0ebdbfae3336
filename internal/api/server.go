package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mbonnet/cinelist/internal/api/handlers"
	"github.com/mbonnet/cinelist/internal/api/middleware"
	"github.com/mbonnet/cinelist/internal/config"
	"github.com/mbonnet/cinelist/internal/controllers"
	"github.com/mbonnet/cinelist/internal/workers"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	watchlistCtrl *controllers.WatchlistController
	pool          *workers.Pool
	logger        *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, watchlistCtrl *controllers.WatchlistController, pool *workers.Pool, logger *logrus.Logger) *Server {
	s := &Server{
		watchlistCtrl: watchlistCtrl,
		pool:          pool,
		logger:        logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux, cfg)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("GET /health", healthHandler.ServeHTTP)

	// Watchlist
	movieHandler := handlers.NewMovieHandler(s.watchlistCtrl, s.pool, s.logger)
	mux.HandleFunc("POST /api/movies", movieHandler.Add)
	mux.HandleFunc("GET /api/movies", movieHandler.List)
	mux.HandleFunc("GET /api/movies/search", movieHandler.Search)
	mux.HandleFunc("GET /api/movies/{id}", movieHandler.Get)
	mux.HandleFunc("PATCH /api/movies/{id}/watched", movieHandler.UpdateWatched)
	mux.HandleFunc("PATCH /api/movies/{id}/rating", movieHandler.UpdateRating)
	mux.HandleFunc("DELETE /api/movies/{id}", movieHandler.Delete)

	// Downloaded images
	mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.ImagesDir))))
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
