package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/moviesearch/internal/db"
)

// SearchHybrid runs FT.HYBRID with a linear combination of the text and
// vector scores. The reply is decoded as a map keyed by section name.
func (s *Store) SearchHybrid(ctx context.Context, q *db.HybridQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("hybrid query: %w", err)
	}

	cmd := s.b().Arbitrary("FT.HYBRID").Args(buildHybridArgs(q)...).Build()
	reply, err := s.do(ctx, cmd).AsMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHybrid, Key: q.IndexName, Err: err}
	}

	sr := &db.SearchResult{}
	if total, ok := reply["total_results"]; ok {
		n, err := total.AsInt64()
		if err != nil {
			return nil, fmt.Errorf("parse total_results: %w", err)
		}
		sr.Total = int(n)
	}

	results, ok := reply["results"]
	if !ok {
		return sr, nil
	}
	rows, err := results.ToArray()
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	sr.Entries = make([]db.SearchEntry, 0, len(rows))
	for i := range rows {
		fields, err := rows[i].AsStrMap()
		if err != nil {
			continue
		}
		key := fields["__key"]
		if key == "" {
			continue
		}
		entry := db.SearchEntry{Key: key, Fields: fields}
		if score, err := strconv.ParseFloat(fields["__score"], 64); err == nil {
			entry.Score = score
		}
		delete(fields, "__key")
		delete(fields, "__score")
		sr.Entries = append(sr.Entries, entry)
	}

	return sr, nil
}

func buildHybridArgs(q *db.HybridQuery) []string {
	args := []string{
		q.IndexName,
		"SEARCH", textClause(q.TextField, q.Query),
		"VSIM", "@" + q.VectorField, "$BLOB",
		"KNN", "2", "K", strconv.Itoa(q.K),
	}

	combine := []string{
		"ALPHA", formatWeight(q.Alpha),
		"BETA", formatWeight(q.Beta),
	}
	if q.Window > 0 {
		combine = append(combine, "WINDOW", strconv.Itoa(q.Window))
	}
	args = append(args, "COMBINE", "LINEAR", strconv.Itoa(len(combine)))
	args = append(args, combine...)

	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.Limit),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
	)
	return args
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
