package backfill

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
)

// memStore is a concurrency-safe movie keyspace.
type memStore struct {
	mu      sync.Mutex
	movies  map[int]dommovie.Movie
	extra   []string
	scanErr error
	saveErr error
	saves   int
}

func newMemStore(movies ...dommovie.Movie) *memStore {
	s := &memStore{movies: make(map[int]dommovie.Movie, len(movies))}
	for _, m := range movies {
		s.movies[m.ID] = m
	}
	return s
}

func (s *memStore) ScanKeys(_ context.Context, _ int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	keys := make([]string, 0, len(s.movies)+len(s.extra))
	for id := range s.movies {
		keys = append(keys, dommovie.Key(id))
	}
	sort.Strings(keys)
	return append(keys, s.extra...), nil
}

func (s *memStore) GetMulti(_ context.Context, ids []int) ([]dommovie.Lookup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dommovie.Lookup, len(ids))
	for i, id := range ids {
		m, ok := s.movies[id]
		if !ok {
			out[i] = dommovie.Lookup{ID: id, Err: domain.ErrMovieNotFound}
			continue
		}
		out[i] = dommovie.Lookup{ID: id, Movie: m}
	}
	return out, nil
}

func (s *memStore) SaveEmbeddings(_ context.Context, movies []dommovie.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	for _, m := range movies {
		stored := s.movies[m.ID]
		stored.PlotEmbedding = m.PlotEmbedding
		s.movies[m.ID] = stored
	}
	return nil
}

func (s *memStore) embedded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.movies {
		if len(m.PlotEmbedding) > 0 {
			n++
		}
	}
	return n
}

// plotEmbedder batch-embeds plots and fails any batch containing a poisoned plot.
type plotEmbedder struct {
	mu     sync.Mutex
	poison string
	texts  int
}

func (e *plotEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

func (e *plotEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.mu.Lock()
	e.texts += len(texts)
	e.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		if e.poison != "" && strings.Contains(t, e.poison) {
			return domain.BatchEmbeddingResult{}, errors.New("provider rejected input")
		}
		out[i] = []float32{float32(len(t)), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func catalog(n int) []dommovie.Movie {
	out := make([]dommovie.Movie, n)
	for i := range out {
		out[i] = dommovie.Movie{
			ID:    i + 1,
			Title: fmt.Sprintf("Movie %d", i+1),
			Plot:  fmt.Sprintf("plot of movie %d", i+1),
		}
	}
	return out
}
