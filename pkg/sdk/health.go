package moviesearch

import (
	"context"
	"strings"

	healthuc "github.com/kailas-cloud/moviesearch/internal/usecase/health"
)

// HealthStatus summarizes what a search needs: Redis, both indexes and the embedder.
type HealthStatus struct {
	// Status is "ok", "degraded" (something is off but Redis answers) or "error" (Redis is down).
	Status string
	// Database is "ok" or "error".
	Database string
	// Embedder is "ok", "error", or empty when the embedder has no health probe.
	Embedder string
	// Indexes maps index name to "ok", "missing" or "error". Empty while Redis is down.
	Indexes map[string]string
}

// Ready reports whether every mode can serve queries.
func (h HealthStatus) Ready() bool {
	return h.Status == string(healthuc.Healthy)
}

// MissingIndexes lists indexes that EnsureSchema would create.
func (h HealthStatus) MissingIndexes() []string {
	var out []string
	for name, state := range h.Indexes {
		if state == string(healthuc.CheckMissing) {
			out = append(out, name)
		}
	}
	return out
}

// Health probes Redis, movie_index, keyword_index and the embedder.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)

	h := HealthStatus{Status: string(report.Status), Indexes: map[string]string{}}
	for check, res := range report.Checks {
		switch {
		case check == healthuc.CheckDatabase:
			h.Database = string(res)
		case check == healthuc.CheckEmbedding:
			h.Embedder = string(res)
		case strings.HasPrefix(check, healthuc.IndexCheck("")):
			h.Indexes[strings.TrimPrefix(check, healthuc.IndexCheck(""))] = string(res)
		}
	}
	return h
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
