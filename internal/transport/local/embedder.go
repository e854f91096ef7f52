// Package local provides an offline embedder for development and tests.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/metrics"
)

// Provider is the metrics label for this embedder.
const Provider = "local"

// Embedder hashes lowercase word tokens into a fixed-size, L2-normalized vector.
// Texts sharing words land close in cosine space; identical texts embed identically.
type Embedder struct {
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates a local embedder producing vectors of the given size.
func NewEmbedder(dimensions int, logger *zap.Logger) *Embedder {
	return &Embedder{dimensions: dimensions, logger: logger}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingGeneration, err)
	}
	if e.dimensions <= 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: dimensions must be positive", domain.ErrEmbeddingGeneration)
	}

	start := time.Now()
	vec, tokens := e.vector(text)

	model := fmt.Sprintf("hash-%d", e.dimensions)
	metrics.EmbeddingRequestsTotal.WithLabelValues(Provider, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(Provider, model).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{Embedding: vec, PromptTokens: tokens, TotalTokens: tokens}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		res, err := e.Embed(ctx, t)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		out.Embeddings[i] = res.Embedding
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}
	e.logger.Debug("Local batch embedded", zap.Int("batch_size", len(texts)))
	return out, nil
}

// HealthCheck always succeeds.
func (e *Embedder) HealthCheck(context.Context) error { return nil }

func (e *Embedder) vector(text string) ([]float32, int) {
	acc := make([]float64, e.dimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, w := range words {
		sum := sha256.Sum256([]byte(w))
		// Two buckets per token, each with its own sign.
		for k := range 2 {
			h := binary.LittleEndian.Uint64(sum[k*8:])
			idx := int(h % uint64(e.dimensions))
			if sum[16+k]&1 == 0 {
				acc[idx]++
			} else {
				acc[idx]--
			}
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, e.dimensions)
	if norm == 0 {
		// Blank input still needs a valid non-zero vector for COSINE.
		vec[0] = 1
		return vec, 0
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, len(words)
}
