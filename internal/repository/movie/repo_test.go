package movie

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
)

func TestSchema(t *testing.T) {
	def := Schema(384)
	if def.Name != "movie_index" || def.Version != SchemaVersion {
		t.Fatalf("unexpected definition: %s v%d", def.Name, def.Version)
	}
	s := def.String()
	for _, want := range []string{
		"PREFIX 1 movie:",
		"title TEXT SORTABLE",
		"year NUMERIC SORTABLE",
		"rating NUMERIC SORTABLE",
		"actors TAG",
		"releaseDate TAG",
		"plotEmbedding VECTOR FLAT",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("schema %q missing %q", s, want)
		}
	}
}

func TestGet(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "movie:1" {
			t.Errorf("key = %q", key)
		}
		return map[string]string{"title": "Back to the Future", "year": "1985"}, nil
	}

	m, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != 1 || m.Title != "Back to the Future" || m.Year != 1985 {
		t.Errorf("unexpected movie: %+v", m)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Get(context.Background(), 99)
	if !errors.Is(err, domain.ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	boom := errors.New("io timeout")
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) { return nil, boom }

	_, err := repo.Get(context.Background(), 1)
	if !errors.Is(err, boom) || errors.Is(err, domain.ErrMovieNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestGetMulti(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		if len(keys) != 3 || keys[2] != "movie:3" {
			t.Errorf("keys = %v", keys)
		}
		return []map[string]string{
			{"title": "A"},
			{},
			{"title": "C", "year": "bad"},
		}, nil
	}

	out, err := repo.GetMulti(context.Background(), []int{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out[0].Found() || out[0].Movie.Title != "A" {
		t.Errorf("lookup 0 = %+v", out[0])
	}
	if !errors.Is(out[1].Err, domain.ErrMovieNotFound) || out[1].ID != 2 {
		t.Errorf("lookup 1 = %+v", out[1])
	}
	if out[2].Found() {
		t.Errorf("lookup 2 should carry a decode error")
	}
}

func TestGetMulti_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllMultiFn = func(_ context.Context, _ []string) ([]map[string]string, error) {
		t.Fatal("store must not be called for no ids")
		return nil, nil
	}
	out, err := repo.GetMulti(context.Background(), nil)
	if err != nil || out != nil {
		t.Fatalf("got %v, %v", out, err)
	}
}

func TestSave(t *testing.T) {
	repo, ms := newTestRepo(t)
	var gotKey string
	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey, gotFields = key, fields
		return nil
	}

	m := dommovie.Movie{ID: 4, Title: "Heat", Actors: []string{"Al Pacino", "Robert De Niro"}}
	if err := repo.Save(context.Background(), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "movie:4" || gotFields["actors"] != "Al Pacino|Robert De Niro" {
		t.Errorf("HSET %s %v", gotKey, gotFields)
	}
}

func TestScanKeys(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(_ context.Context, pattern string, count int64) ([]string, error) {
		if pattern != "movie:*" || count != 1000 {
			t.Errorf("scan %q count %d", pattern, count)
		}
		return []string{"movie:1", "movie:2"}, nil
	}
	keys, err := repo.ScanKeys(context.Background(), 1000)
	if err != nil || len(keys) != 2 {
		t.Fatalf("got %v, %v", keys, err)
	}
}

func TestSaveEmbeddings_OnlyEmbeddingField(t *testing.T) {
	repo, ms := newTestRepo(t)
	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	movies := []dommovie.Movie{
		{ID: 1, Title: "ignored", PlotEmbedding: []float32{1}},
		{ID: 2, PlotEmbedding: []float32{2}},
	}
	if err := repo.SaveEmbeddings(context.Background(), movies); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].Key != "movie:2" {
		t.Fatalf("items = %+v", got)
	}
	for _, item := range got {
		if len(item.Fields) != 1 {
			t.Errorf("%s writes %d fields, want only plotEmbedding", item.Key, len(item.Fields))
		}
		if len(item.Fields["plotEmbedding"]) != 4 {
			t.Errorf("%s embedding bytes = %d", item.Key, len(item.Fields["plotEmbedding"]))
		}
	}
}

func TestSaveEmbeddings_RejectsEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)
	err := repo.SaveEmbeddings(context.Background(), []dommovie.Movie{{ID: 1}})
	if err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

func TestSaveEmbeddings_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	boom := errors.New("pipeline broken")
	ms.hsetMultiFn = func(_ context.Context, _ []db.HashSetItem) error { return boom }
	err := repo.SaveEmbeddings(context.Background(), []dommovie.Movie{{ID: 1, PlotEmbedding: []float32{1}}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
