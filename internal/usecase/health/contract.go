package health

import "context"

// Store answers the two questions health asks of Redis.
type Store interface {
	Ping(ctx context.Context) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// EmbeddingChecker is implemented by embedders that can probe their provider.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
