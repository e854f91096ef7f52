package search

import (
	"context"

	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
)

// Repository defines the retrieval contract for the manual and native paths.
type Repository interface {
	FullText(ctx context.Context, query string, limit int) ([]result.Hit, error)
	KNN(ctx context.Context, vector []float32, k int) ([]result.Hit, error)
	Hybrid(ctx context.Context, query string, vector []float32, limit int, alpha float64) ([]result.KeyHit, error)
}

// EmbeddingResolver turns query text into an embedding, cached or fresh.
type EmbeddingResolver interface {
	Resolve(ctx context.Context, text string) ([]float32, error)
}

// MovieLoader fetches movies by id in one round-trip.
type MovieLoader interface {
	GetMulti(ctx context.Context, ids []int) ([]dommovie.Lookup, error)
}

// RawSearcher runs a hybrid search over the hand-built wire command.
type RawSearcher interface {
	Search(ctx context.Context, query string, limit int) (result.Ranked, error)
}
