package moviesearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string
	db       int

	embedder Embedder

	vectorDimensions int
	defaultAlpha     float64
	rawAlpha         float64
	timeout          time.Duration

	backfillWorkers   int
	backfillBatchSize int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		vectorDimensions: 384,
		defaultAlpha:     0.5,
		timeout:          5 * time.Second,
	}
}

// WithRedis configures the Redis 8 address and password.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithACLUser sets the Redis ACL username.
func WithACLUser(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithDB selects the logical Redis database.
func WithDB(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = n
	})
}

// WithEmbedder sets the text embedding provider.
// Its vectors must match WithVectorDimensions.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithVectorDimensions sets the plotEmbedding dimension. Defaults to 384.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithDefaultAlpha sets the vector weight native searches use when
// SearchParams.Alpha is nil. Defaults to 0.5.
func WithDefaultAlpha(alpha float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultAlpha = alpha
	})
}

// WithRawAlpha sets the vector weight of the raw FT.HYBRID path. Defaults to 0.
func WithRawAlpha(alpha float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.rawAlpha = alpha
	})
}

// WithTimeout bounds every Search call. Defaults to 5s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithBackfill tunes the backfill worker pool. Zero keeps the defaults.
func WithBackfill(workers, batchSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.backfillWorkers = workers
		c.backfillBatchSize = batchSize
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
