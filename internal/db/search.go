package db

import (
	"errors"
	"strings"
)

// KNNQuery is the input for vector similarity search.
// Hits come back sorted by cosine distance, closest first.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Vector       []float32
	K            int
	ReturnFields []string
}

// Validate rejects queries the server would refuse or misread.
func (q *KNNQuery) Validate() error {
	switch {
	case q.IndexName == "":
		return errors.New("index name is required")
	case q.VectorField == "":
		return errors.New("vector field is required")
	case len(q.Vector) == 0:
		return errors.New("vector is required")
	case q.K <= 0:
		return errors.New("k must be positive")
	}
	return nil
}

// TextQuery is a full-text match on one TEXT field, or on every TEXT field when Field is empty.
type TextQuery struct {
	IndexName    string
	Field        string
	Query        string
	SortBy       string // empty keeps engine relevance order
	Descending   bool
	Limit        int
	ReturnFields []string
}

// Validate rejects queries the server would refuse or misread.
func (q *TextQuery) Validate() error {
	switch {
	case q.IndexName == "":
		return errors.New("index name is required")
	case strings.TrimSpace(q.Query) == "":
		return errors.New("query is required")
	case q.Limit <= 0:
		return errors.New("limit must be positive")
	}
	return nil
}

// HybridQuery is the input for the engine-side fused ranking (FT.HYBRID).
// Alpha weighs the vector signal, Beta the text signal.
type HybridQuery struct {
	IndexName   string
	TextField   string
	Query       string
	VectorField string
	Vector      []float32
	K           int
	Alpha       float64
	Beta        float64
	Window      int
	Limit       int
}

// Validate rejects queries the server would refuse or misread.
func (q *HybridQuery) Validate() error {
	switch {
	case q.IndexName == "":
		return errors.New("index name is required")
	case strings.TrimSpace(q.Query) == "":
		return errors.New("query is required")
	case q.VectorField == "":
		return errors.New("vector field is required")
	case len(q.Vector) == 0:
		return errors.New("vector is required")
	case q.K <= 0:
		return errors.New("k must be positive")
	case q.Limit <= 0:
		return errors.New("limit must be positive")
	case q.Alpha < 0 || q.Alpha > 1 || q.Beta < 0 || q.Beta > 1:
		return errors.New("alpha and beta must be within [0, 1]")
	}
	return nil
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Score is the KNN distance, the fused hybrid score, or zero for text hits.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
