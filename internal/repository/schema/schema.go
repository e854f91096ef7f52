// Package schema creates FT indexes from explicit, versioned definitions.
package schema

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/moviesearch/internal/db"
)

// store is the consumer interface for index bootstrap (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ErrVersionMismatch signals an existing index built from another schema version.
var ErrVersionMismatch = errors.New("schema version mismatch")

// Status reports what Ensure did for one index.
type Status struct {
	Index   string
	Version int
	Created bool
}

// Manager ensures indexes exist at their declared version.
type Manager struct {
	store store
}

// New creates a schema manager.
func New(s store) *Manager {
	return &Manager{store: s}
}

// VersionKey is the KV key holding the recorded version of an index.
func VersionKey(index string) string {
	return "schema:" + index + ":version"
}

// Ensure creates every definition that does not exist yet and records its version.
// An existing index with a different recorded version fails with ErrVersionMismatch;
// one without a recorded version is adopted at the declared version.
func (m *Manager) Ensure(ctx context.Context, defs ...*db.IndexDefinition) ([]Status, error) {
	out := make([]Status, 0, len(defs))
	for _, def := range defs {
		st, err := m.ensureOne(ctx, def)
		if err != nil {
			return out, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (m *Manager) ensureOne(ctx context.Context, def *db.IndexDefinition) (Status, error) {
	st := Status{Index: def.Name, Version: def.Version}
	key := VersionKey(def.Name)

	err := m.store.CreateIndex(ctx, def)
	switch {
	case err == nil:
		st.Created = true
	case errors.Is(err, db.ErrIndexExists):
		recorded, err := m.store.Get(ctx, key)
		if err != nil && !errors.Is(err, db.ErrKeyNotFound) {
			return st, fmt.Errorf("read schema version %s: %w", def.Name, err)
		}
		if err == nil {
			v, convErr := strconv.Atoi(string(recorded))
			if convErr != nil || v != def.Version {
				return st, fmt.Errorf("%w: index %s recorded %q, declared %d",
					ErrVersionMismatch, def.Name, recorded, def.Version)
			}
			return st, nil
		}
	default:
		return st, fmt.Errorf("create index %s: %w", def.Name, err)
	}

	if err := m.store.Set(ctx, key, []byte(strconv.Itoa(def.Version))); err != nil {
		return st, fmt.Errorf("record schema version %s: %w", def.Name, err)
	}
	return st, nil
}
