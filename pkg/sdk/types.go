package moviesearch

import (
	"time"

	"github.com/kailas-cloud/moviesearch/internal/domain/search/mode"
)

// Mode selects the hybrid retrieval path.
type Mode string

const (
	// ModeManual runs full-text first and tops up with KNN in-process.
	ModeManual Mode = Mode(mode.Manual)
	// ModeNative lets the store fuse text and vector scores via FT.HYBRID.
	ModeNative Mode = Mode(mode.Native)
	// ModeRaw sends a hand-built FT.HYBRID command and parses the raw reply.
	ModeRaw Mode = Mode(mode.Raw)
)

// SearchParams tunes a single search. Zero values pick the defaults:
// manual mode, 4 results, the client's default alpha.
type SearchParams struct {
	Mode  Mode
	Limit int
	// Alpha is the vector weight for ModeNative, within [0, 1].
	Alpha *float64
}

// Movie is a movie record as stored and returned to callers.
type Movie struct {
	ID          int
	Title       string
	Year        int
	Plot        string
	ReleaseDate string
	Rating      float64
	Actors      []string
}

// SearchResult is the ordered match list and the retrieval path that produced it.
type SearchResult struct {
	// ResultType is "Full-Text Search", "Vector Similarity Search" or "Hybrid Search".
	ResultType string
	Movies     []Movie
}

// IndexStatus reports one search index after EnsureSchema.
type IndexStatus struct {
	Index   string
	Version int
	Created bool
}

// BackfillReport summarizes a Backfill run.
type BackfillReport struct {
	Scanned       int
	Candidates    int
	Saved         int64
	FailedBatches int64
	Duration      time.Duration
}
