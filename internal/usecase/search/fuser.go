package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
)

// Fuser is the manual hybrid path: full-text first, vector search only when it falls short.
type Fuser struct {
	repo   Repository
	embed  EmbeddingResolver
	logger *zap.Logger
}

// NewFuser creates the manual fusion path.
func NewFuser(repo Repository, embed EmbeddingResolver, logger *zap.Logger) *Fuser {
	return &Fuser{repo: repo, embed: embed, logger: logger}
}

// Search returns full-text hits alone when they fill limit. Otherwise the KNN
// hits are appended after them, duplicates removed.
// The tag is VSS when full-text found nothing and HYBRID whenever both paths ran,
// even if KNN added no new movie.
func (f *Fuser) Search(ctx context.Context, query string, limit int) (result.Ranked, error) {
	fts, err := f.repo.FullText(ctx, query, limit)
	if err != nil {
		return result.Ranked{}, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	if len(fts) >= limit {
		f.logger.Debug("Full-text search filled the limit", zap.Int("hits", len(fts)), zap.Int("limit", limit))
		return result.New(result.MoviesOf(fts[:limit]), result.FTS), nil
	}

	vec, err := f.embed.Resolve(ctx, query)
	if err != nil {
		return result.Ranked{}, err //nolint:wrapcheck // resolver errors carry ErrEmbeddingGeneration
	}

	vss, err := f.repo.KNN(ctx, vec, limit)
	if err != nil {
		return result.Ranked{}, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	merged := Merge(result.MoviesOf(fts), result.MoviesOf(vss), limit)

	typ := result.Hybrid
	if len(fts) == 0 {
		typ = result.VSS
	}

	f.logger.Debug("Fused full-text and vector results",
		zap.Int("fts", len(fts)),
		zap.Int("vss", len(vss)),
		zap.Int("merged", len(merged)),
		zap.String("result_type", string(typ)),
	)

	return result.New(merged, typ), nil
}

// Merge keeps every primary movie in order, then appends secondary movies whose
// id was not seen yet, and truncates to limit.
func Merge(primary, secondary []dommovie.Movie, limit int) []dommovie.Movie {
	out := make([]dommovie.Movie, 0, min(limit, len(primary)+len(secondary)))
	seen := make(map[int]struct{}, len(primary)+len(secondary))

	for _, list := range [][]dommovie.Movie{primary, secondary} {
		for i := range list {
			if len(out) == limit {
				return out
			}
			if _, dup := seen[list[i].ID]; dup {
				continue
			}
			seen[list[i].ID] = struct{}{}
			out = append(out, list[i])
		}
	}
	return out
}
