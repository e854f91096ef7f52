package embcache

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/domain"
)

func TestResolve_MissPersistsEntry(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	c, ms := newTestCache(t, inner)

	vec, err := c.Resolve(context.Background(), "back to the future")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", vec)
	}
	if len(ms.order) != 1 {
		t.Fatalf("expected 1 cache entry, got %d", len(ms.order))
	}
	key := ms.order[0]
	if !strings.HasPrefix(key, "keyword:") || len(key) != len("keyword:")+36 {
		t.Errorf("unexpected cache key %q", key)
	}
	if ms.hashes[key]["value"] != "back to the future" {
		t.Errorf("value = %q", ms.hashes[key]["value"])
	}
	if len(ms.hashes[key]["embedding"]) != 12 {
		t.Errorf("embedding bytes = %d, want 12", len(ms.hashes[key]["embedding"]))
	}
}

func TestResolve_SecondCallReusesEntry(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5, -0.25, 1e-7}}}
	c, ms := newTestCache(t, inner)
	ctx := context.Background()

	first, err := c.Resolve(ctx, "Alien")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := c.Resolve(ctx, "Alien")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("provider called %d times, want 1", inner.calls)
	}
	if len(ms.order) != 1 {
		t.Errorf("cache entries = %d, want 1", len(ms.order))
	}
	for i := range first {
		if math.Float32bits(first[i]) != math.Float32bits(second[i]) {
			t.Errorf("[%d] %v != %v", i, first[i], second[i])
		}
	}
}

func TestResolve_LookupQuery(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	c, ms := newTestCache(t, inner)

	if _, err := c.Resolve(context.Background(), "heat"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := ms.queries[0]
	if q.IndexName != "keyword_index" || q.Field != "value" || q.Limit != 1 {
		t.Errorf("unexpected lookup: %+v", q)
	}
	if len(q.ReturnFields) != 1 || q.ReturnFields[0] != "embedding" {
		t.Errorf("return fields = %v", q.ReturnFields)
	}
}

func TestResolve_ProviderError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	c, ms := newTestCache(t, inner)

	_, err := c.Resolve(context.Background(), "alien")
	if !errors.Is(err, domain.ErrEmbeddingGeneration) {
		t.Fatalf("expected ErrEmbeddingGeneration, got %v", err)
	}
	if len(ms.order) != 0 {
		t.Errorf("nothing should be persisted on provider failure, got %d entries", len(ms.order))
	}
}

func TestResolve_ProviderErrorNotDoubleWrapped(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingGeneration}
	c, _ := newTestCache(t, inner)

	_, err := c.Resolve(context.Background(), "alien")
	if strings.Count(err.Error(), domain.ErrEmbeddingGeneration.Error()) != 1 {
		t.Errorf("sentinel repeated in %q", err)
	}
}

func TestResolve_EmptyVector(t *testing.T) {
	c, _ := newTestCache(t, &mockEmbedder{})
	_, err := c.Resolve(context.Background(), "alien")
	if !errors.Is(err, domain.ErrEmbeddingGeneration) {
		t.Fatalf("expected ErrEmbeddingGeneration, got %v", err)
	}
}

func TestResolve_LookupErrorFallsBackToProvider(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	c, ms := newTestCache(t, inner)
	ms.searchErr = errors.New("index missing")

	vec, err := c.Resolve(context.Background(), "alien")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 1 || inner.calls != 1 {
		t.Errorf("expected provider result, got %v (calls %d)", vec, inner.calls)
	}
}

func TestResolve_PersistErrorStillReturnsVector(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	c, ms := newTestCache(t, inner)
	ms.hsetErr = errors.New("READONLY")

	vec, err := c.Resolve(context.Background(), "alien")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestResolve_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	c, ms := newTestCache(t, inner)
	_ = ms.HSet(context.Background(), "keyword:bad", map[string]string{"value": "alien", "embedding": "abc"})

	if _, err := c.Resolve(context.Background(), "alien"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("provider calls = %d, want 1", inner.calls)
	}
}

func TestResolve_BlankTextSkipsCache(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	c, ms := newTestCache(t, inner)

	if _, err := c.Resolve(context.Background(), "   "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.queries) != 0 || len(ms.order) != 0 {
		t.Errorf("blank text touched the cache: %d lookups, %d entries", len(ms.queries), len(ms.order))
	}
}

func TestResolve_DuplicateEntriesTolerated(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{3}}}
	c, ms := newTestCache(t, inner)
	ctx := context.Background()
	for _, key := range []string{"keyword:a", "keyword:b"} {
		_ = ms.HSet(ctx, key, map[string]string{
			"value":     "heat",
			"embedding": string(domain.EncodeVector([]float32{3})),
		})
	}

	vec, err := c.Resolve(ctx, "heat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec[0] != 3 || inner.calls != 0 {
		t.Errorf("expected cached vector without provider call, got %v (calls %d)", vec, inner.calls)
	}
}

func TestResolve_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ms := newMemStore()
	c := New(inner, ms, counter, zap.NewNop())

	ctx := context.Background()
	_, _ = c.Resolve(ctx, "alien")
	_, _ = c.Resolve(ctx, "alien")

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %v, want 1", got)
	}
}

func TestSchema(t *testing.T) {
	s := Schema(384).String()
	for _, want := range []string{"keyword_index", "PREFIX 1 keyword:", "value TEXT", "embedding VECTOR FLAT"} {
		if !strings.Contains(s, want) {
			t.Errorf("schema %q missing %q", s, want)
		}
	}
}
