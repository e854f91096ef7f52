package moviesearch

import (
	"context"

	"github.com/kailas-cloud/moviesearch/internal/db"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
	"github.com/kailas-cloud/moviesearch/internal/repository/schema"
	"github.com/kailas-cloud/moviesearch/internal/usecase/backfill"
	healthuc "github.com/kailas-cloud/moviesearch/internal/usecase/health"
)

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) (result.Ranked, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (result.Ranked, error) {
	return m.searchFn(ctx, req)
}

type mockSchemaUC struct {
	ensureFn func(ctx context.Context, defs ...*db.IndexDefinition) ([]schema.Status, error)
}

func (m *mockSchemaUC) Ensure(ctx context.Context, defs ...*db.IndexDefinition) ([]schema.Status, error) {
	return m.ensureFn(ctx, defs...)
}

type mockBackfillUC struct {
	runFn func(ctx context.Context) (backfill.Report, error)
}

func (m *mockBackfillUC) Run(ctx context.Context) (backfill.Report, error) {
	return m.runFn(ctx)
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

type mockMovies struct {
	saved []dommovie.Movie
	err   error
}

func (m *mockMovies) Save(_ context.Context, mv *dommovie.Movie) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *mv)
	return nil
}

type mockConn struct {
	pingErr error
	closed  bool
}

func (m *mockConn) Ping(context.Context) error { return m.pingErr }
func (m *mockConn) Close()                     { m.closed = true }

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	if s.err != nil {
		return EmbeddingResult{}, s.err
	}
	return EmbeddingResult{Embedding: []float32{float32(len(text))}, TotalTokens: 1}, nil
}

type stubBatchEmbedder struct {
	stubEmbedder
	batchCalls int
}

func (s *stubBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	s.batchCalls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return BatchEmbeddingResult{Embeddings: out, TotalTokens: len(texts)}, nil
}
