// Package db defines the storage contract the repositories are written
// against. Repositories declare the narrow subset they call; Store is the
// full surface a backend has to provide.
package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/moviesearch/internal/db/resp"
)

// Store is everything a backend implements.
//
//nolint:interfacebloat // consumers depend on the small interfaces below
type Store interface {
	Pinger
	Hashes
	Keys
	Indexes
	Searcher
	Commander
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is one pipelined HSET: the given fields are written, others are left alone.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// Hashes reads and writes hash documents.
type Hashes interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Keys covers plain string values and keyspace iteration.
type Keys interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Scan(ctx context.Context, pattern string, count int64) ([]string, error)
}

// Indexes manages search index lifecycle.
type Indexes interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs typed queries against search indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchHybrid(ctx context.Context, q *HybridQuery) (*SearchResult, error)
}

// Commander sends an arbitrary command and hands back the reply undecoded.
type Commander interface {
	Execute(ctx context.Context, name string, args ...string) (resp.Reply, error)
}
