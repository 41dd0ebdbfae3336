package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// CreateMovie inserts a new movie and assigns its store key
func (db *Database) CreateMovie(movie *Movie) error {
	movie.CreatedAt = time.Now()
	movie.UpdatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), movie)
}

// UpdateMovie updates an existing movie
func (db *Database) UpdateMovie(movie *Movie) error {
	movie.UpdatedAt = time.Now()
	return db.store.Update(movie.ID, movie)
}

// GetMovieByID retrieves a movie by ID
func (db *Database) GetMovieByID(id uint64) (*Movie, error) {
	var movie Movie
	err := db.store.Get(id, &movie)
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, fmt.Errorf("movie %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &movie, nil
}

// DeleteMovie deletes a movie by ID
func (db *Database) DeleteMovie(id uint64) error {
	err := db.store.Delete(id, &Movie{})
	if errors.Is(err, bolthold.ErrNotFound) {
		return fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}
	return err
}

// ExistsByTitleAndYear reports whether a movie with the exact title and year
// is already stored. Matching is case-sensitive with no normalization.
func (db *Database) ExistsByTitleAndYear(title, year string) (bool, error) {
	var movies []*Movie
	err := db.store.Find(&movies, bolthold.Where("Title").Eq(title).And("Year").Eq(year))
	if err != nil {
		return false, err
	}
	return len(movies) > 0, nil
}

// GetAllMovies retrieves all movies in insertion order
func (db *Database) GetAllMovies() ([]*Movie, error) {
	var movies []*Movie
	err := db.store.Find(&movies, nil)
	return movies, err
}

// FindPage retrieves one page of movies plus the total count.
// Pages are zero-based; movies keep insertion order.
func (db *Database) FindPage(page, size int) ([]*Movie, int, error) {
	movies, err := db.GetAllMovies()
	if err != nil {
		return nil, 0, err
	}

	total := len(movies)
	start := page * size
	if start >= total {
		return []*Movie{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}

	return movies[start:end], total, nil
}
