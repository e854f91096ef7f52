package embcache

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.texts = append(m.texts, text)
	return m.result, m.err
}

// memStore keeps keyword hashes in memory and answers SearchText with a
// case-insensitive substring match on the value field.
type memStore struct {
	mu        sync.Mutex
	hashes    map[string]map[string]string
	order     []string
	searchErr error
	hsetErr   error
	queries   []*db.TextQuery
}

func newMemStore() *memStore {
	return &memStore{hashes: map[string]map[string]string{}}
}

func (m *memStore) SearchText(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	sr := &db.SearchResult{}
	needle := strings.ToLower(q.Query)
	for _, key := range m.order {
		h := m.hashes[key]
		if !strings.Contains(strings.ToLower(h[q.Field]), needle) {
			continue
		}
		fields := map[string]string{}
		for _, f := range q.ReturnFields {
			fields[f] = h[f]
		}
		sr.Entries = append(sr.Entries, db.SearchEntry{Key: key, Fields: fields})
		if len(sr.Entries) == q.Limit {
			break
		}
	}
	sr.Total = len(sr.Entries)
	return sr, nil
}

func (m *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hsetErr != nil {
		return m.hsetErr
	}
	if _, ok := m.hashes[key]; !ok {
		m.order = append(m.order, key)
	}
	m.hashes[key] = fields
	return nil
}

func newTestCache(t *testing.T, inner *mockEmbedder) (*Cache, *memStore) {
	t.Helper()
	ms := newMemStore()
	return New(inner, ms, nil, zap.NewNop()), ms
}
