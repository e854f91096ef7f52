// Package search issues FT.SEARCH and FT.HYBRID queries against movie_index.
package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/moviesearch/internal/db"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
	movierepo "github.com/kailas-cloud/moviesearch/internal/repository/movie"
)

// summaryFields are returned by FT.SEARCH; the embedding stays server-side.
var summaryFields = []string{
	dommovie.FieldTitle,
	dommovie.FieldYear,
	dommovie.FieldPlot,
	dommovie.FieldReleaseDate,
	dommovie.FieldRating,
	dommovie.FieldActors,
}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchHybrid(ctx context.Context, q *db.HybridQuery) (*db.SearchResult, error)
}

// Repo implements the full-text, vector and native hybrid clients.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// FullText matches query against titles, ordered by title ascending.
func (r *Repo) FullText(ctx context.Context, query string, limit int) ([]result.Hit, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    movierepo.IndexName,
		Field:        dommovie.FieldTitle,
		Query:        query,
		SortBy:       dommovie.FieldTitle,
		Limit:        limit,
		ReturnFields: summaryFields,
	})
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	return decodeHits(sr)
}

// KNN returns the k plots nearest to vector, closest first. Score is the cosine distance.
func (r *Repo) KNN(ctx context.Context, vector []float32, k int) ([]result.Hit, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    movierepo.IndexName,
		VectorField:  dommovie.FieldPlotEmbedding,
		Vector:       vector,
		K:            k,
		ReturnFields: summaryFields,
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	return decodeHits(sr)
}

// Hybrid runs FT.HYBRID with alpha on the vector score and 1-alpha on the text score.
// Only keys come back; callers load the movies.
func (r *Repo) Hybrid(
	ctx context.Context, query string, vector []float32, limit int, alpha float64,
) ([]result.KeyHit, error) {
	sr, err := r.store.SearchHybrid(ctx, &db.HybridQuery{
		IndexName:   movierepo.IndexName,
		TextField:   dommovie.FieldTitle,
		Query:       query,
		VectorField: dommovie.FieldPlotEmbedding,
		Vector:      vector,
		K:           limit,
		Alpha:       alpha,
		Beta:        1 - alpha,
		Window:      limit,
		Limit:       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}

	keys := make([]result.KeyHit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		keys = append(keys, result.KeyHit{Key: e.Key, Score: e.Score})
	}
	return keys, nil
}

func decodeHits(sr *db.SearchResult) ([]result.Hit, error) {
	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		m, err := dommovie.FromHash(e.Key, e.Fields)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		hits = append(hits, result.Hit{Movie: m, Score: e.Score})
	}
	return hits, nil
}
