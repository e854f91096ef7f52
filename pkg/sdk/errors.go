package moviesearch

import "github.com/kailas-cloud/moviesearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery        = domain.ErrInvalidQuery
	ErrEmbeddingGeneration = domain.ErrEmbeddingGeneration
	ErrSearchUnavailable   = domain.ErrSearchUnavailable
	ErrBatchSave           = domain.ErrBatchSave
)
