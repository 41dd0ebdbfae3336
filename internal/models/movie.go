package models

import "time"

// Movie represents an enriched watchlist entry.
// Primary fields come from OMDb verbatim (including "N/A" placeholders);
// TMDb fields are optional and absent when the secondary lookup found nothing.
type Movie struct {
	ID uint64 `boltholdKey:"ID" json:"id"`

	// OMDb fields
	Title      string `boltholdIndex:"Title" json:"title"`
	Year       string `json:"year,omitempty"`
	Director   string `json:"director,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Plot       string `json:"plot,omitempty"`
	Runtime    string `json:"runtime,omitempty"`
	ImdbRating string `json:"imdb_rating,omitempty"`

	// TMDb fields
	TmdbID      *int     `json:"tmdb_id,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	VoteAverage *float64 `json:"vote_average,omitempty"`

	// Local image paths (0-3, posters first) and similar titles (0-10)
	ImagePaths    []string `json:"image_paths,omitempty"`
	SimilarMovies []string `json:"similar_movies,omitempty"`

	// User-set fields
	Watched bool `json:"watched"`
	Rating  *int `json:"rating,omitempty"` // 1-5 scale, nil when unrated

	// Metadata
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
