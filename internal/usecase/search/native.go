package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
)

// NativeClient delegates fusion to FT.HYBRID through the typed store client.
type NativeClient struct {
	repo   Repository
	embed  EmbeddingResolver
	movies MovieLoader
	logger *zap.Logger
}

// NewNativeClient creates the native fusion path.
func NewNativeClient(repo Repository, embed EmbeddingResolver, movies MovieLoader, logger *zap.Logger) *NativeClient {
	return &NativeClient{repo: repo, embed: embed, movies: movies, logger: logger}
}

// Search weights the vector score by alpha and the text score by 1-alpha.
// The engine fuses internally, so the ranking is always tagged HYBRID.
func (c *NativeClient) Search(ctx context.Context, query string, limit int, alpha float64) (result.Ranked, error) {
	if err := request.ValidateAlpha(alpha); err != nil {
		return result.Ranked{}, err //nolint:wrapcheck // already ErrInvalidQuery
	}

	vec, err := c.embed.Resolve(ctx, query)
	if err != nil {
		return result.Ranked{}, err //nolint:wrapcheck // resolver errors carry ErrEmbeddingGeneration
	}

	hits, err := c.repo.Hybrid(ctx, query, vec, limit, alpha)
	if err != nil {
		return result.Ranked{}, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	ids := make([]int, 0, len(hits))
	for _, h := range hits {
		id, err := dommovie.ParseKey(h.Key)
		if err != nil {
			c.logger.Warn("Skipping hybrid hit with malformed key", zap.String("key", h.Key), zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}

	lookups, err := c.movies.GetMulti(ctx, ids)
	if err != nil {
		return result.Ranked{}, fmt.Errorf("%w: load movies: %w", domain.ErrSearchUnavailable, err)
	}

	movies := make([]dommovie.Movie, 0, len(lookups))
	for i := range lookups {
		l := &lookups[i]
		if !l.Found() {
			if errors.Is(l.Err, domain.ErrMovieNotFound) {
				c.logger.Warn("Hybrid hit vanished before load", zap.Int("movie_id", l.ID))
			} else {
				c.logger.Error("Failed to decode hybrid hit", zap.Int("movie_id", l.ID), zap.Error(l.Err))
			}
			continue
		}
		movies = append(movies, l.Movie)
	}

	return result.New(Merge(movies, nil, limit), result.Hybrid), nil
}
