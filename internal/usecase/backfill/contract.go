package backfill

import (
	"context"

	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
)

// MovieStore is the slice of the movie repository the job needs.
type MovieStore interface {
	ScanKeys(ctx context.Context, count int64) ([]string, error)
	GetMulti(ctx context.Context, ids []int) ([]dommovie.Lookup, error)
	SaveEmbeddings(ctx context.Context, movies []dommovie.Movie) error
}
