package search

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
)

type mockRepo struct {
	fullTextFn func(ctx context.Context, query string, limit int) ([]result.Hit, error)
	knnFn      func(ctx context.Context, vector []float32, k int) ([]result.Hit, error)
	hybridFn   func(ctx context.Context, query string, vector []float32, limit int, alpha float64) ([]result.KeyHit, error)

	fullTextCalls int
	knnCalls      int
	hybridAlpha   []float64
}

func (m *mockRepo) FullText(ctx context.Context, query string, limit int) ([]result.Hit, error) {
	m.fullTextCalls++
	if m.fullTextFn != nil {
		return m.fullTextFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockRepo) KNN(ctx context.Context, vector []float32, k int) ([]result.Hit, error) {
	m.knnCalls++
	if m.knnFn != nil {
		return m.knnFn(ctx, vector, k)
	}
	return nil, nil
}

func (m *mockRepo) Hybrid(
	ctx context.Context, query string, vector []float32, limit int, alpha float64,
) ([]result.KeyHit, error) {
	m.hybridAlpha = append(m.hybridAlpha, alpha)
	if m.hybridFn != nil {
		return m.hybridFn(ctx, query, vector, limit, alpha)
	}
	return nil, nil
}

type mockResolver struct {
	resolveFn func(ctx context.Context, text string) ([]float32, error)
	calls     int
}

func (m *mockResolver) Resolve(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// catalogLoader serves GetMulti from an in-memory catalog.
type catalogLoader struct {
	movies map[int]dommovie.Movie
	err    error
}

func (c *catalogLoader) GetMulti(_ context.Context, ids []int) ([]dommovie.Lookup, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([]dommovie.Lookup, len(ids))
	for i, id := range ids {
		m, ok := c.movies[id]
		if !ok {
			out[i] = dommovie.Lookup{ID: id, Err: domain.ErrMovieNotFound}
			continue
		}
		out[i] = dommovie.Lookup{ID: id, Movie: m}
	}
	return out, nil
}

type mockRaw struct {
	searchFn func(ctx context.Context, query string, limit int) (result.Ranked, error)
}

func (m *mockRaw) Search(ctx context.Context, query string, limit int) (result.Ranked, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return result.New(nil, result.Hybrid), nil
}

var (
	bttf1 = dommovie.Movie{ID: 1, Title: "Back to the Future", Year: 1985}
	bttf2 = dommovie.Movie{ID: 2, Title: "Back to the Future Part II", Year: 1989}
	bttf3 = dommovie.Movie{ID: 3, Title: "Back to the Future Part III", Year: 1990}
	bill  = dommovie.Movie{ID: 10, Title: "Bill & Ted's Excellent Adventure", Year: 1989}
	delo  = dommovie.Movie{ID: 11, Title: "The DeLorean Files", Year: 2003}
)

func catalog() *catalogLoader {
	return &catalogLoader{movies: map[int]dommovie.Movie{
		1: bttf1, 2: bttf2, 3: bttf3, 10: bill, 11: delo,
	}}
}

func hits(movies ...dommovie.Movie) []result.Hit {
	out := make([]result.Hit, len(movies))
	for i := range movies {
		out[i] = result.Hit{Movie: movies[i], Score: float64(i)}
	}
	return out
}

func keyHits(keys ...string) []result.KeyHit {
	out := make([]result.KeyHit, len(keys))
	for i, k := range keys {
		out[i] = result.KeyHit{Key: k, Score: 1 - float64(i)/10}
	}
	return out
}

func assertIDs(t *testing.T, r result.Ranked, want ...int) {
	t.Helper()
	got := r.IDs()
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}

func nop() *zap.Logger { return zap.NewNop() }
