package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mbonnet/cinelist/internal/controllers"
	"github.com/mbonnet/cinelist/internal/models"
	"github.com/mbonnet/cinelist/internal/workers"
	"github.com/sirupsen/logrus"
)

// MovieHandler handles watchlist requests
type MovieHandler struct {
	watchlistCtrl *controllers.WatchlistController
	pool          *workers.Pool
	logger        *logrus.Logger
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(watchlistCtrl *controllers.WatchlistController, pool *workers.Pool, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{
		watchlistCtrl: watchlistCtrl,
		pool:          pool,
		logger:        logger,
	}
}

// PaginatedResponse wraps one page of movies
type PaginatedResponse struct {
	Items      []*models.Movie `json:"items"`
	Page       int             `json:"page"`
	Size       int             `json:"size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

type addMovieRequest struct {
	Title string `json:"title"`
}

type updateWatchedRequest struct {
	Watched *bool `json:"watched"`
}

type updateRatingRequest struct {
	Rating *int `json:"rating"`
}

// Add handles POST /api/movies
func (h *MovieHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Bound the number of concurrent enrichment pipelines
	if err := h.pool.Acquire(r.Context()); err != nil {
		h.writeError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}
	defer h.pool.Release()

	movie, err := h.watchlistCtrl.AddMovie(r.Context(), req.Title)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, movie)
}

// List handles GET /api/movies
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if page < 0 {
		page = 0
	}
	if size < 1 || size > 100 {
		size = 10
	}

	movies, total, err := h.watchlistCtrl.ListMovies(page, size)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}

	h.writeJSON(w, http.StatusOK, PaginatedResponse{
		Items:      movies,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Get handles GET /api/movies/{id}
func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	movie, err := h.watchlistCtrl.GetMovie(id)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, movie)
}

// Search handles GET /api/movies/search
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.watchlistCtrl.SearchMovies(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

// UpdateWatched handles PATCH /api/movies/{id}/watched
func (h *MovieHandler) UpdateWatched(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateWatchedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Watched == nil {
		h.writeError(w, "watched flag is required", http.StatusBadRequest)
		return
	}

	movie, err := h.watchlistCtrl.UpdateWatched(id, *req.Watched)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, movie)
}

// UpdateRating handles PATCH /api/movies/{id}/rating
func (h *MovieHandler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	movie, err := h.watchlistCtrl.UpdateRating(id, req.Rating)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, movie)
}

// Delete handles DELETE /api/movies/{id}
func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.watchlistCtrl.DeleteMovie(id); err != nil {
		h.writeFailure(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path segment
func (h *MovieHandler) pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, "invalid movie id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeFailure maps an error kind to a transport status code
func (h *MovieHandler) writeFailure(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, models.ErrUpstreamUnavailable), errors.Is(err, models.ErrDecode):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("Request failed")
	}

	h.writeError(w, err.Error(), status)
}

func (h *MovieHandler) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *MovieHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}
