package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/moviesearch/internal/db"
)

type mockStore struct {
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	kv            map[string]string
	setCalls      int
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(v), nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	m.setCalls++
	if m.kv == nil {
		m.kv = map[string]string{}
	}
	m.kv[key] = string(value)
	return nil
}

func testDef(version int) *db.IndexDefinition {
	return db.NewIndex("movie_index").
		Version(version).
		Prefix("movie:").
		TextSortable("title").
		MustBuild()
}

func TestEnsure_CreatesAndRecords(t *testing.T) {
	ms := &mockStore{}
	statuses, err := New(ms).Ensure(context.Background(), testDef(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statuses) != 1 || !statuses[0].Created || statuses[0].Version != 2 {
		t.Errorf("unexpected status: %+v", statuses)
	}
	if ms.kv["schema:movie_index:version"] != "2" {
		t.Errorf("recorded version = %q", ms.kv["schema:movie_index:version"])
	}
}

func TestEnsure_ExistingSameVersion(t *testing.T) {
	ms := &mockStore{
		createIndexFn: func(_ context.Context, _ *db.IndexDefinition) error { return db.ErrIndexExists },
		kv:            map[string]string{"schema:movie_index:version": "1"},
	}
	statuses, err := New(ms).Ensure(context.Background(), testDef(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statuses[0].Created {
		t.Error("existing index reported as created")
	}
	if ms.setCalls != 0 {
		t.Errorf("version rewritten %d times", ms.setCalls)
	}
}

func TestEnsure_ExistingWithoutVersionIsAdopted(t *testing.T) {
	ms := &mockStore{
		createIndexFn: func(_ context.Context, _ *db.IndexDefinition) error { return db.ErrIndexExists },
	}
	if _, err := New(ms).Ensure(context.Background(), testDef(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.kv["schema:movie_index:version"] != "1" {
		t.Errorf("expected adopted version 1, got %q", ms.kv["schema:movie_index:version"])
	}
}

func TestEnsure_VersionMismatch(t *testing.T) {
	ms := &mockStore{
		createIndexFn: func(_ context.Context, _ *db.IndexDefinition) error { return db.ErrIndexExists },
		kv:            map[string]string{"schema:movie_index:version": "1"},
	}
	_, err := New(ms).Ensure(context.Background(), testDef(2))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestEnsure_CreateError(t *testing.T) {
	boom := errors.New("connection refused")
	ms := &mockStore{
		createIndexFn: func(_ context.Context, _ *db.IndexDefinition) error { return boom },
	}
	_, err := New(ms).Ensure(context.Background(), testDef(1))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
