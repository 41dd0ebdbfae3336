package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mbonnet/cinelist/internal/models"
	"github.com/mbonnet/cinelist/internal/services/omdb"
	"github.com/mbonnet/cinelist/internal/services/tmdb"
	"github.com/sirupsen/logrus"
)

type fakeMetadata struct {
	result *omdb.Result
	err    error
	called bool
}

func (f *fakeMetadata) Lookup(ctx context.Context, title string) (*omdb.Result, error) {
	f.called = true
	return f.result, f.err
}

type fakeDetails struct {
	searchResults []tmdb.Movie
	searchErr     error
	images        *tmdb.ImageList
	imagesErr     error
	similar       []tmdb.SimilarMovie
	similarErr    error
}

func (f *fakeDetails) Search(ctx context.Context, title string) ([]tmdb.Movie, error) {
	return f.searchResults, f.searchErr
}

func (f *fakeDetails) Images(ctx context.Context, movieID int) (*tmdb.ImageList, error) {
	return f.images, f.imagesErr
}

func (f *fakeDetails) Similar(ctx context.Context, movieID int) ([]tmdb.SimilarMovie, error) {
	return f.similar, f.similarErr
}

type fakeFetcher struct {
	paths   []string
	gotRefs []string
	gotSeed string
	called  bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, refs []string, nameSeed string) []string {
	f.called = true
	f.gotRefs = refs
	f.gotSeed = nameSeed
	return f.paths
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testDatabase(t *testing.T) *models.Database {
	t.Helper()
	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func inceptionResult() *omdb.Result {
	return &omdb.Result{
		Title:      "Inception",
		Year:       "2010",
		Director:   "Christopher Nolan",
		Genre:      "Action, Adventure, Sci-Fi",
		Plot:       "A thief who steals corporate secrets.",
		Runtime:    "148 min",
		ImdbRating: "8.8",
		Response:   "True",
	}
}

func movieCount(t *testing.T, db *models.Database) int {
	t.Helper()
	movies, err := db.GetAllMovies()
	if err != nil {
		t.Fatalf("Failed to count movies: %v", err)
	}
	return len(movies)
}

func TestAddMovieEndToEnd(t *testing.T) {
	db := testDatabase(t)

	score := 8.4
	similar := make([]tmdb.SimilarMovie, 12)
	for i := range similar {
		similar[i] = tmdb.SimilarMovie{Title: fmt.Sprintf("Similar %d", i)}
	}

	details := &fakeDetails{
		searchResults: []tmdb.Movie{{
			ID:          27205,
			Title:       "Inception",
			Overview:    "A mind-bending heist.",
			ReleaseDate: "2010-07-16",
			VoteAverage: &score,
		}},
		images: &tmdb.ImageList{
			Posters: []tmdb.Image{
				{FilePath: "/p1.jpg"}, {FilePath: "/p2.jpg"}, {FilePath: "/p3.jpg"},
				{FilePath: "/p4.jpg"}, {FilePath: "/p5.jpg"},
			},
			Backdrops: []tmdb.Image{{FilePath: "/b1.jpg"}, {FilePath: "/b2.jpg"}},
		},
		similar: similar,
	}
	fetcher := &fakeFetcher{paths: []string{"/imgs/Inception_0.jpg", "/imgs/Inception_1.jpg", "/imgs/Inception_2.jpg"}}

	ctrl := NewWatchlistController(db, &fakeMetadata{result: inceptionResult()}, details, fetcher, testLogger())

	movie, err := ctrl.AddMovie(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("AddMovie failed: %v", err)
	}

	if movie.ID == 0 {
		t.Error("Expected a store-assigned ID")
	}
	if movie.Title != "Inception" || movie.Year != "2010" || movie.Director != "Christopher Nolan" {
		t.Errorf("Primary fields mismatch: %+v", movie)
	}
	if movie.TmdbID == nil || *movie.TmdbID != 27205 {
		t.Errorf("Expected tmdb id 27205, got %v", movie.TmdbID)
	}
	if movie.VoteAverage == nil || *movie.VoteAverage != 8.4 {
		t.Errorf("Vote average mismatch: %v", movie.VoteAverage)
	}

	// 2 posters then 1 backdrop, capped at 3 total
	wantRefs := []string{"/p1.jpg", "/p2.jpg", "/b1.jpg"}
	if len(fetcher.gotRefs) != 3 {
		t.Fatalf("Expected 3 image refs, got %d", len(fetcher.gotRefs))
	}
	for i, ref := range wantRefs {
		if fetcher.gotRefs[i] != ref {
			t.Errorf("Ref %d: expected %q, got %q", i, ref, fetcher.gotRefs[i])
		}
	}
	if fetcher.gotSeed != "Inception" {
		t.Errorf("Expected name seed 'Inception', got %q", fetcher.gotSeed)
	}
	if len(movie.ImagePaths) != 3 {
		t.Errorf("Expected 3 image paths, got %d", len(movie.ImagePaths))
	}

	// First 10 of the 12 similar titles, provider order preserved
	if len(movie.SimilarMovies) != 10 {
		t.Fatalf("Expected 10 similar movies, got %d", len(movie.SimilarMovies))
	}
	if movie.SimilarMovies[0] != "Similar 0" || movie.SimilarMovies[9] != "Similar 9" {
		t.Errorf("Similar movie order mismatch: %v", movie.SimilarMovies)
	}

	if movie.Watched {
		t.Error("New movie should not be watched")
	}
	if movie.Rating != nil {
		t.Errorf("New movie should be unrated, got %v", movie.Rating)
	}

	if count := movieCount(t, db); count != 1 {
		t.Errorf("Expected exactly 1 persisted movie, got %d", count)
	}
}

func TestAddMovieBlankTitle(t *testing.T) {
	db := testDatabase(t)
	primary := &fakeMetadata{result: inceptionResult()}
	ctrl := NewWatchlistController(db, primary, &fakeDetails{}, &fakeFetcher{}, testLogger())

	_, err := ctrl.AddMovie(context.Background(), "   ")
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected invalid input error, got %v", err)
	}
	if primary.called {
		t.Error("Blank title must not trigger a network call")
	}
	if count := movieCount(t, db); count != 0 {
		t.Errorf("Expected no persisted movies, got %d", count)
	}
}

func TestAddMoviePrimaryNotFound(t *testing.T) {
	db := testDatabase(t)
	primary := &fakeMetadata{result: &omdb.Result{Response: "False", Error: "Movie not found!"}}
	ctrl := NewWatchlistController(db, primary, &fakeDetails{}, &fakeFetcher{}, testLogger())

	_, err := ctrl.AddMovie(context.Background(), "No Such Movie")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
	if count := movieCount(t, db); count != 0 {
		t.Errorf("Expected no persisted movies, got %d", count)
	}
}

func TestAddMoviePrimaryUnavailable(t *testing.T) {
	db := testDatabase(t)
	primary := &fakeMetadata{err: errors.New("connection refused")}
	ctrl := NewWatchlistController(db, primary, &fakeDetails{}, &fakeFetcher{}, testLogger())

	_, err := ctrl.AddMovie(context.Background(), "Inception")
	if !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Errorf("Expected upstream unavailable error, got %v", err)
	}
}

func TestAddMovieAlreadyExists(t *testing.T) {
	db := testDatabase(t)
	existing := &models.Movie{Title: "Inception", Year: "2010"}
	if err := db.CreateMovie(existing); err != nil {
		t.Fatalf("Failed to seed movie: %v", err)
	}

	ctrl := NewWatchlistController(db, &fakeMetadata{result: inceptionResult()}, &fakeDetails{}, &fakeFetcher{}, testLogger())

	_, err := ctrl.AddMovie(context.Background(), "Inception")
	if !errors.Is(err, models.ErrAlreadyExists) {
		t.Errorf("Expected already exists error, got %v", err)
	}
	if count := movieCount(t, db); count != 1 {
		t.Errorf("Store count changed: expected 1, got %d", count)
	}
}

func TestAddMoviePrimaryOnlyDegradation(t *testing.T) {
	db := testDatabase(t)
	fetcher := &fakeFetcher{}
	ctrl := NewWatchlistController(db, &fakeMetadata{result: inceptionResult()}, &fakeDetails{}, fetcher, testLogger())

	// Empty secondary search is the designed degradation path, not an error
	movie, err := ctrl.AddMovie(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("AddMovie failed: %v", err)
	}

	if movie.Title != "Inception" || movie.Year != "2010" || movie.Director != "Christopher Nolan" {
		t.Errorf("Primary fields mismatch: %+v", movie)
	}
	if movie.TmdbID != nil {
		t.Errorf("Expected no tmdb id, got %v", movie.TmdbID)
	}
	if len(movie.ImagePaths) != 0 || len(movie.SimilarMovies) != 0 {
		t.Errorf("Expected empty image and similar lists, got %v / %v", movie.ImagePaths, movie.SimilarMovies)
	}
	if fetcher.called {
		t.Error("Fetcher must not run without image references")
	}
	if count := movieCount(t, db); count != 1 {
		t.Errorf("Expected 1 persisted movie, got %d", count)
	}
}

func TestAddMovieSecondarySearchFailureSavesNothing(t *testing.T) {
	db := testDatabase(t)
	details := &fakeDetails{searchErr: errors.New("timeout")}
	ctrl := NewWatchlistController(db, &fakeMetadata{result: inceptionResult()}, details, &fakeFetcher{}, testLogger())

	// A failed search call discards the validated primary data entirely,
	// unlike an empty result which degrades to a primary-only save
	_, err := ctrl.AddMovie(context.Background(), "Inception")
	if !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Errorf("Expected upstream unavailable error, got %v", err)
	}
	if count := movieCount(t, db); count != 0 {
		t.Errorf("Expected no persisted movies, got %d", count)
	}
}

func TestAddMovieDetailLookupFailureSavesNothing(t *testing.T) {
	db := testDatabase(t)
	details := &fakeDetails{
		searchResults: []tmdb.Movie{{ID: 27205, Title: "Inception"}},
		imagesErr:     errors.New("timeout"),
		similar:       []tmdb.SimilarMovie{{Title: "Interstellar"}},
	}
	ctrl := NewWatchlistController(db, &fakeMetadata{result: inceptionResult()}, details, &fakeFetcher{}, testLogger())

	_, err := ctrl.AddMovie(context.Background(), "Inception")
	if !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Errorf("Expected upstream unavailable error, got %v", err)
	}
	if count := movieCount(t, db); count != 0 {
		t.Errorf("Expected no persisted movies, got %d", count)
	}
}

func TestAddMovieNoImageReferences(t *testing.T) {
	db := testDatabase(t)
	details := &fakeDetails{
		searchResults: []tmdb.Movie{{ID: 27205, Title: "Inception"}},
		images:        &tmdb.ImageList{},
		similar:       []tmdb.SimilarMovie{{Title: "Interstellar"}},
	}
	fetcher := &fakeFetcher{}
	ctrl := NewWatchlistController(db, &fakeMetadata{result: inceptionResult()}, details, fetcher, testLogger())

	movie, err := ctrl.AddMovie(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("AddMovie failed: %v", err)
	}

	if fetcher.called {
		t.Error("Fetcher must not run without image references")
	}
	if len(movie.ImagePaths) != 0 {
		t.Errorf("Expected no image paths, got %v", movie.ImagePaths)
	}
	if len(movie.SimilarMovies) != 1 {
		t.Errorf("Expected 1 similar movie, got %d", len(movie.SimilarMovies))
	}
}

func TestUpdateRatingBoundaries(t *testing.T) {
	db := testDatabase(t)
	ctrl := NewWatchlistController(db, &fakeMetadata{}, &fakeDetails{}, &fakeFetcher{}, testLogger())

	movie := &models.Movie{Title: "Inception", Year: "2010"}
	if err := db.CreateMovie(movie); err != nil {
		t.Fatalf("Failed to seed movie: %v", err)
	}

	for _, rating := range []int{1, 5} {
		updated, err := ctrl.UpdateRating(movie.ID, &rating)
		if err != nil {
			t.Errorf("Rating %d should be accepted: %v", rating, err)
			continue
		}
		if updated.Rating == nil || *updated.Rating != rating {
			t.Errorf("Rating %d not applied: %v", rating, updated.Rating)
		}
	}

	for _, rating := range []int{0, 6} {
		if _, err := ctrl.UpdateRating(movie.ID, &rating); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("Rating %d should be rejected, got %v", rating, err)
		}
	}

	// nil clears the rating
	updated, err := ctrl.UpdateRating(movie.ID, nil)
	if err != nil {
		t.Fatalf("Clearing rating failed: %v", err)
	}
	if updated.Rating != nil {
		t.Errorf("Expected cleared rating, got %v", updated.Rating)
	}
}

func TestUpdateWatched(t *testing.T) {
	db := testDatabase(t)
	ctrl := NewWatchlistController(db, &fakeMetadata{}, &fakeDetails{}, &fakeFetcher{}, testLogger())

	movie := &models.Movie{Title: "Inception", Year: "2010"}
	if err := db.CreateMovie(movie); err != nil {
		t.Fatalf("Failed to seed movie: %v", err)
	}

	updated, err := ctrl.UpdateWatched(movie.ID, true)
	if err != nil {
		t.Fatalf("UpdateWatched failed: %v", err)
	}
	if !updated.Watched {
		t.Error("Expected watched flag set")
	}

	if _, err := ctrl.UpdateWatched(9999, true); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found for missing movie, got %v", err)
	}
}

func TestDeleteMovieRemovesImages(t *testing.T) {
	db := testDatabase(t)
	ctrl := NewWatchlistController(db, &fakeMetadata{}, &fakeDetails{}, &fakeFetcher{}, testLogger())

	dir := t.TempDir()
	imagePath := filepath.Join(dir, "Inception_0.jpg")
	if err := os.WriteFile(imagePath, []byte("img"), 0644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}

	movie := &models.Movie{Title: "Inception", Year: "2010", ImagePaths: []string{imagePath}}
	if err := db.CreateMovie(movie); err != nil {
		t.Fatalf("Failed to seed movie: %v", err)
	}

	if err := ctrl.DeleteMovie(movie.ID); err != nil {
		t.Fatalf("DeleteMovie failed: %v", err)
	}

	if _, err := os.Stat(imagePath); !os.IsNotExist(err) {
		t.Error("Expected image file to be removed")
	}
	if _, err := ctrl.GetMovie(movie.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
}

func TestListMoviesPaging(t *testing.T) {
	db := testDatabase(t)
	ctrl := NewWatchlistController(db, &fakeMetadata{}, &fakeDetails{}, &fakeFetcher{}, testLogger())

	for i := 0; i < 12; i++ {
		movie := &models.Movie{Title: fmt.Sprintf("Movie %02d", i), Year: "2020"}
		if err := db.CreateMovie(movie); err != nil {
			t.Fatalf("Failed to seed movie %d: %v", i, err)
		}
	}

	movies, total, err := ctrl.ListMovies(0, 10)
	if err != nil {
		t.Fatalf("ListMovies failed: %v", err)
	}
	if total != 12 || len(movies) != 10 {
		t.Errorf("Page 0: expected 10 of 12, got %d of %d", len(movies), total)
	}
	if movies[0].Title != "Movie 00" {
		t.Errorf("Expected insertion order, got first title %q", movies[0].Title)
	}

	movies, total, err = ctrl.ListMovies(1, 10)
	if err != nil {
		t.Fatalf("ListMovies failed: %v", err)
	}
	if total != 12 || len(movies) != 2 {
		t.Errorf("Page 1: expected 2 of 12, got %d of %d", len(movies), total)
	}

	// Out-of-range parameters are clamped, not rejected
	movies, _, err = ctrl.ListMovies(-1, 0)
	if err != nil {
		t.Fatalf("ListMovies failed: %v", err)
	}
	if len(movies) != 10 {
		t.Errorf("Clamped paging: expected 10 movies, got %d", len(movies))
	}
}
