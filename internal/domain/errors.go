package domain

import "errors"

var (
	// ErrEmbeddingGeneration signals that the embedding provider failed or timed out.
	ErrEmbeddingGeneration = errors.New("embedding generation failed")
	// ErrSearchUnavailable signals a failed retrieval call to the store.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrMalformedKey signals a scanned key without a valid movie id suffix.
	ErrMalformedKey = errors.New("malformed movie key")
	// ErrMalformedReply signals a raw reply entry without a usable document key.
	ErrMalformedReply = errors.New("malformed reply")
	// ErrBatchSave signals a backfill batch that could not be embedded or persisted.
	ErrBatchSave = errors.New("batch save failed")
	// ErrInvalidQuery signals rejected search parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrMovieNotFound signals a movie key with no hash behind it.
	ErrMovieNotFound = errors.New("movie not found")
)
