package controllers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mbonnet/cinelist/internal/models"
	"github.com/mbonnet/cinelist/internal/services/omdb"
	"github.com/mbonnet/cinelist/internal/services/tmdb"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	maxSimilarMovies = 10
	maxPosters       = 2
	maxBackdrops     = 1
)

// MetadataClient resolves a title against the primary metadata provider
type MetadataClient interface {
	Lookup(ctx context.Context, title string) (*omdb.Result, error)
}

// DetailsClient provides search, image and similar-title lookups from the
// secondary metadata provider
type DetailsClient interface {
	Search(ctx context.Context, title string) ([]tmdb.Movie, error)
	Images(ctx context.Context, movieID int) (*tmdb.ImageList, error)
	Similar(ctx context.Context, movieID int) ([]tmdb.SimilarMovie, error)
}

// ImageFetcher downloads remote image references into local files
type ImageFetcher interface {
	Fetch(ctx context.Context, refs []string, nameSeed string) []string
}

// WatchlistController orchestrates movie enrichment and watchlist operations
type WatchlistController struct {
	db      *models.Database
	omdb    MetadataClient
	tmdb    DetailsClient
	fetcher ImageFetcher
	logger  *logrus.Logger
}

// NewWatchlistController creates a new watchlist controller
func NewWatchlistController(db *models.Database, omdbClient MetadataClient, tmdbClient DetailsClient, fetcher ImageFetcher, logger *logrus.Logger) *WatchlistController {
	return &WatchlistController{
		db:      db,
		omdb:    omdbClient,
		tmdb:    tmdbClient,
		fetcher: fetcher,
		logger:  logger,
	}
}

// AddMovie resolves a free-text title against both providers, downloads up to
// three images and persists a single enriched movie. A failed run never leaves
// a partial record; a run that finds no secondary data still saves a valid
// primary-only record.
func (c *WatchlistController) AddMovie(ctx context.Context, title string) (*models.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title must not be blank: %w", models.ErrInvalidInput)
	}

	c.logger.WithField("title", title).Info("Starting movie enrichment")

	// Stage 1: primary lookup
	result, err := c.omdb.Lookup(ctx, title)
	if err != nil {
		return nil, wrapUpstream("primary lookup", err)
	}
	if !result.Found() {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, result.Error)
	}

	// Stage 2: existence check on the provider's canonical title and year
	exists, err := c.db.ExistsByTitleAndYear(result.Title, result.Year)
	if err != nil {
		return nil, fmt.Errorf("existence check failed: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%s (%s): %w", result.Title, result.Year, models.ErrAlreadyExists)
	}

	// Stage 3: build the record from primary fields verbatim
	movie := &models.Movie{
		Title:      result.Title,
		Year:       result.Year,
		Director:   result.Director,
		Genre:      result.Genre,
		Plot:       result.Plot,
		Runtime:    result.Runtime,
		ImdbRating: result.ImdbRating,
	}

	// Stage 4: secondary search. A failed call fails the whole enrichment even
	// though primary data is already validated; only an empty result degrades.
	candidates, err := c.tmdb.Search(ctx, title)
	if err != nil {
		return nil, wrapUpstream("secondary search", err)
	}
	if len(candidates) == 0 {
		c.logger.WithField("title", title).Info("No secondary match, saving primary-only record")
		return c.save(movie)
	}

	// First candidate wins, keeping the provider's own ranking
	candidate := candidates[0]
	movie.TmdbID = &candidate.ID
	movie.Overview = candidate.Overview
	movie.ReleaseDate = candidate.ReleaseDate
	movie.VoteAverage = candidate.VoteAverage

	// Stage 5: joined image and similar-title lookups. Both branches must
	// complete; either failing fails the enrichment.
	var (
		imageList *tmdb.ImageList
		similar   []tmdb.SimilarMovie
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		imageList, err = c.tmdb.Images(gctx, candidate.ID)
		return err
	})
	g.Go(func() error {
		var err error
		similar, err = c.tmdb.Similar(gctx, candidate.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrapUpstream("detail lookup", err)
	}

	for _, s := range similar {
		if len(movie.SimilarMovies) >= maxSimilarMovies {
			break
		}
		movie.SimilarMovies = append(movie.SimilarMovies, s.Title)
	}

	// Stage 6: collect image references, posters first
	var refs []string
	for i, poster := range imageList.Posters {
		if i >= maxPosters {
			break
		}
		refs = append(refs, poster.FilePath)
	}
	for i, backdrop := range imageList.Backdrops {
		if i >= maxBackdrops {
			break
		}
		refs = append(refs, backdrop.FilePath)
	}

	if len(refs) == 0 {
		return c.save(movie)
	}

	// Stage 7: download whatever subset succeeds
	movie.ImagePaths = c.fetcher.Fetch(ctx, refs, movie.Title)

	return c.save(movie)
}

// save persists the enriched movie and logs the outcome
func (c *WatchlistController) save(movie *models.Movie) (*models.Movie, error) {
	if err := c.db.CreateMovie(movie); err != nil {
		return nil, fmt.Errorf("failed to save movie: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id": movie.ID,
		"title":    movie.Title,
		"year":     movie.Year,
		"images":   len(movie.ImagePaths),
		"similar":  len(movie.SimilarMovies),
	}).Info("Movie added to watchlist")

	return movie, nil
}

// wrapUpstream classifies a remote call failure. Decode failures keep their
// kind for diagnostics; everything else becomes an upstream failure.
func wrapUpstream(op string, err error) error {
	if errors.Is(err, models.ErrDecode) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrUpstreamUnavailable, err)
}

// GetMovie retrieves a single movie by ID
func (c *WatchlistController) GetMovie(id uint64) (*models.Movie, error) {
	return c.db.GetMovieByID(id)
}

// ListMovies returns one page of movies plus the total count.
// Out-of-range paging parameters are clamped rather than rejected.
func (c *WatchlistController) ListMovies(page, size int) ([]*models.Movie, int, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 || size > 100 {
		size = 10
	}
	return c.db.FindPage(page, size)
}

// SearchMovies runs a raw secondary-provider title search
func (c *WatchlistController) SearchMovies(ctx context.Context, query string) ([]tmdb.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query must not be blank: %w", models.ErrInvalidInput)
	}

	results, err := c.tmdb.Search(ctx, query)
	if err != nil {
		return nil, wrapUpstream("secondary search", err)
	}
	return results, nil
}

// UpdateWatched sets the watched flag on a movie
func (c *WatchlistController) UpdateWatched(id uint64, watched bool) (*models.Movie, error) {
	movie, err := c.db.GetMovieByID(id)
	if err != nil {
		return nil, err
	}

	movie.Watched = watched
	if err := c.db.UpdateMovie(movie); err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}

	return movie, nil
}

// UpdateRating sets a 1-5 star rating on a movie. A nil rating clears it.
func (c *WatchlistController) UpdateRating(id uint64, rating *int) (*models.Movie, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", models.ErrInvalidInput)
	}

	movie, err := c.db.GetMovieByID(id)
	if err != nil {
		return nil, err
	}

	movie.Rating = rating
	if err := c.db.UpdateMovie(movie); err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}

	return movie, nil
}

// DeleteMovie removes a movie and its downloaded image files
func (c *WatchlistController) DeleteMovie(id uint64) error {
	movie, err := c.db.GetMovieByID(id)
	if err != nil {
		return err
	}

	if err := c.db.DeleteMovie(id); err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}

	for _, path := range movie.ImagePaths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.logger.WithError(err).WithField("path", path).Warn("Failed to remove image file")
		}
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id": id,
		"title":    movie.Title,
	}).Info("Movie deleted from watchlist")

	return nil
}
