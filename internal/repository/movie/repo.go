// Package movie persists movie hashes and declares the movie_index schema.
package movie

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
)

// IndexName is the FT index over movie hashes.
const IndexName = "movie_index"

// SchemaVersion is bumped whenever Schema changes shape.
const SchemaVersion = 1

// store is the consumer interface for movie hashes (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string, count int64) ([]string, error)
}

// Repo reads and writes movie hashes.
type Repo struct {
	store store
}

// New creates a movie repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Schema returns the movie_index definition for the given embedding width.
func Schema(dim int) *db.IndexDefinition {
	return db.NewIndex(IndexName).
		Version(SchemaVersion).
		Prefix(dommovie.KeyPrefix).
		TextSortable(dommovie.FieldTitle).
		NumericSortable(dommovie.FieldYear).
		Text(dommovie.FieldPlot).
		NumericSortable(dommovie.FieldRating).
		TagSeparated(dommovie.FieldActors, dommovie.ActorSeparator).
		Tag(dommovie.FieldReleaseDate).
		VectorFlat(dommovie.FieldPlotEmbedding, dim, db.DistanceCosine).
		MustBuild()
}

// Get loads a single movie. A missing hash yields domain.ErrMovieNotFound.
func (r *Repo) Get(ctx context.Context, id int) (dommovie.Movie, error) {
	key := dommovie.Key(id)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dommovie.Movie{}, fmt.Errorf("%w: %s", domain.ErrMovieNotFound, key)
		}
		return dommovie.Movie{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return dommovie.FromHash(key, fields)
}

// GetMulti loads movies in one pipeline, one Lookup per id in input order.
// Per-id failures are reported in Lookup.Err; the returned error is for the round-trip itself.
func (r *Repo) GetMulti(ctx context.Context, ids []int) ([]dommovie.Lookup, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = dommovie.Key(id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi movies: %w", err)
	}

	out := make([]dommovie.Lookup, len(ids))
	for i, fields := range hashes {
		out[i].ID = ids[i]
		if len(fields) == 0 {
			out[i].Err = fmt.Errorf("%w: %s", domain.ErrMovieNotFound, keys[i])
			continue
		}
		out[i].Movie, out[i].Err = dommovie.FromHash(keys[i], fields)
	}
	return out, nil
}

// Save writes every field of m.
func (r *Repo) Save(ctx context.Context, m *dommovie.Movie) error {
	key := dommovie.Key(m.ID)
	if err := r.store.HSet(ctx, key, m.Hash()); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// ScanKeys lists every movie key, count keys per SCAN page.
func (r *Repo) ScanKeys(ctx context.Context, count int64) ([]string, error) {
	keys, err := r.store.Scan(ctx, dommovie.KeyPattern, count)
	if err != nil {
		return nil, fmt.Errorf("scan movies: %w", err)
	}
	return keys, nil
}

// SaveEmbeddings writes only the plotEmbedding field of each movie in one pipeline.
func (r *Repo) SaveEmbeddings(ctx context.Context, movies []dommovie.Movie) error {
	items := make([]db.HashSetItem, 0, len(movies))
	for i := range movies {
		if len(movies[i].PlotEmbedding) == 0 {
			return fmt.Errorf("movie %d: empty embedding", movies[i].ID)
		}
		items = append(items, db.HashSetItem{
			Key: dommovie.Key(movies[i].ID),
			Fields: map[string]string{
				dommovie.FieldPlotEmbedding: string(domain.EncodeVector(movies[i].PlotEmbedding)),
			},
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("save embeddings: %w", err)
	}
	return nil
}
