package models

import "errors"

// Error kinds surfaced by the enrichment pipeline and watchlist operations.
// Callers distinguish them with errors.Is; the lowest-level cause is always
// preserved through fmt.Errorf("%w") wrapping.
var (
	// ErrInvalidInput signals a bad caller-supplied title or rating. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound signals that the primary provider had no match, or that a
	// stored movie does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists signals a duplicate by title and year.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUpstreamUnavailable signals that a remote call failed to complete.
	// The caller may retry the whole enrichment.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrDecode signals a remote response that could not be parsed. Treated like
	// ErrUpstreamUnavailable by callers, distinguished only for diagnostics.
	ErrDecode = errors.New("decode error")
)
