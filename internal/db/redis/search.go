package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/domain"
)

// distanceAlias names the KNN distance column in FT.SEARCH replies.
const distanceAlias = "__distance"

// SearchKNN runs a pure vector query through FT.SEARCH, closest first.
// Entry.Score is the raw distance reported by the index.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("knn query: %w", err)
	}

	args := []string{
		q.IndexName,
		fmt.Sprintf("*=>[KNN %d @%s $BLOB AS %s]", q.K, q.VectorField, distanceAlias),
	}
	if len(q.ReturnFields) > 0 {
		args = appendReturn(args, append(q.ReturnFields[:len(q.ReturnFields):len(q.ReturnFields)], distanceAlias))
	}
	args = append(args,
		"SORTBY", distanceAlias, "ASC",
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	return s.ftSearch(ctx, args, distanceAlias)
}

// SearchText runs a full-text query through FT.SEARCH. Entry.Score is zero.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("text query: %w", err)
	}

	args := []string{q.IndexName, textClause(q.Field, q.Query)}
	if len(q.ReturnFields) > 0 {
		args = appendReturn(args, q.ReturnFields)
	}
	if q.SortBy != "" {
		order := "ASC"
		if q.Descending {
			order = "DESC"
		}
		args = append(args, "SORTBY", q.SortBy, order)
	}
	args = append(args, "LIMIT", "0", strconv.Itoa(q.Limit), "DIALECT", "2")

	return s.ftSearch(ctx, args, "")
}

func appendReturn(args, fields []string) []string {
	args = append(args, "RETURN", strconv.Itoa(len(fields)))
	return append(args, fields...)
}

// ftSearch sends FT.SEARCH and decodes the RESP2 reply. When scoreField is
// set, that column is parsed into Entry.Score and removed from Fields.
func (s *Store) ftSearch(ctx context.Context, args []string, scoreField string) (*db.SearchResult, error) {
	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Key: args[0], Err: err}
	}
	return decodeSearchReply(raw, scoreField)
}

// textClause scopes an escaped query to a field, or to all TEXT fields when field is empty.
func textClause(field, query string) string {
	escaped := escapeQuery(strings.TrimSpace(query))
	if field == "" {
		return escaped
	}
	return "@" + field + ":(" + escaped + ")"
}

// decodeSearchReply reads [total, key1, [f, v, ...], key2, [...], ...].
// Malformed rows are skipped rather than failing the whole page.
func decodeSearchReply(raw []rueidis.RedisMessage, scoreField string) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("search reply total: %w", err)
	}

	sr := &db.SearchResult{Total: int(total)}
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: fieldMap(pairs)}
		if scoreField != "" {
			if v, ok := entry.Fields[scoreField]; ok {
				entry.Score, _ = strconv.ParseFloat(v, 64)
				delete(entry.Fields, scoreField)
			}
		}
		sr.Entries = append(sr.Entries, entry)
	}
	return sr, nil
}

// fieldMap turns a flat [name, value, ...] list into a map; non-string pairs are dropped.
func fieldMap(pairs []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for j := 0; j+1 < len(pairs); j += 2 {
		name, nerr := pairs[j].ToString()
		value, verr := pairs[j+1].ToString()
		if nerr == nil && verr == nil {
			m[name] = value
		}
	}
	return m
}

// queryEscaper keeps spaces as term separators and backslash-escapes the
// punctuation the query parser treats as syntax.
var queryEscaper = func() *strings.Replacer {
	const special = `\,.:'"@#&{}()|-~*[]!%^$<>=;+/`
	pairs := make([]string, 0, 2*len(special))
	for _, r := range special {
		pairs = append(pairs, string(r), `\`+string(r))
	}
	return strings.NewReplacer(pairs...)
}()

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

func vectorToBytes(v []float32) string {
	return string(domain.EncodeVector(v))
}
