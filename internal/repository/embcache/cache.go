// Package embcache memoizes query embeddings as keyword hashes in the store.
package embcache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain"
)

// Storage layout of cache entries.
const (
	IndexName      = "keyword_index"
	KeyPrefix      = "keyword:"
	FieldValue     = "value"
	FieldEmbedding = "embedding"

	// SchemaVersion is bumped whenever Schema changes shape.
	SchemaVersion = 1
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
}

// Cache resolves query text to an embedding, reusing vectors stored by earlier misses.
// Concurrent misses on the same text may each persist an entry; lookups take the first match.
type Cache struct {
	embedder   domain.Embedder
	store      store
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	newID      func() string
}

// New creates an embedding cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	embedder domain.Embedder,
	s store,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		embedder:   embedder,
		store:      s,
		cacheTotal: cacheTotal,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Schema returns the keyword_index definition for the given embedding width.
func Schema(dim int) *db.IndexDefinition {
	return db.NewIndex(IndexName).
		Version(SchemaVersion).
		Prefix(KeyPrefix).
		Text(FieldValue).
		VectorFlat(FieldEmbedding, dim, db.DistanceCosine).
		MustBuild()
}

// Resolve returns the embedding of text, from the cache when an entry matches.
// Provider failures wrap domain.ErrEmbeddingGeneration and persist nothing.
func (c *Cache) Resolve(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) != "" {
		if vec, ok := c.lookup(ctx, text); ok {
			c.incCache("hit")
			return vec, nil
		}
	}

	c.incCache("miss")

	res, err := c.embedder.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingGeneration) {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		return nil, fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingGeneration, err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("embed query: %w: empty vector", domain.ErrEmbeddingGeneration)
	}

	if strings.TrimSpace(text) != "" {
		c.persist(ctx, text, res.Embedding)
	}
	return res.Embedding, nil
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cache) lookup(ctx context.Context, text string) ([]float32, bool) {
	sr, err := c.store.SearchText(ctx, &db.TextQuery{
		IndexName:    IndexName,
		Field:        FieldValue,
		Query:        text,
		Limit:        1,
		ReturnFields: []string{FieldEmbedding},
	})
	if err != nil {
		c.logger.Warn("Embedding cache lookup failed", zap.String("text", text), zap.Error(err))
		return nil, false
	}

	for _, e := range sr.Entries {
		raw := e.Fields[FieldEmbedding]
		if raw == "" {
			continue
		}
		vec, err := domain.DecodeVector([]byte(raw))
		if err != nil {
			c.logger.Warn("Failed to parse cached embedding", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		return vec, true
	}
	return nil, false
}

func (c *Cache) persist(ctx context.Context, text string, vec []float32) {
	key := KeyPrefix + c.newID()
	err := c.store.HSet(ctx, key, map[string]string{
		FieldValue:     text,
		FieldEmbedding: string(domain.EncodeVector(vec)),
	})
	if err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}
