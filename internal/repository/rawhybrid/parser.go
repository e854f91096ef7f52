package rawhybrid

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/db/resp"
	"github.com/kailas-cloud/moviesearch/internal/domain"
)

// Reply section and entry field names.
const (
	sectionTotal    = "total_results"
	sectionResults  = "results"
	sectionWarnings = "warnings"
	fieldID         = "id"
	fieldKey        = "__key"
)

// Parsed is the part of an FT.HYBRID reply the client acts on.
type Parsed struct {
	Total    int64
	Keys     []string // document keys in reply order
	Dropped  int      // result entries without a usable key
	Warnings []string
}

// ParseReply walks a hybrid reply without assuming a typed schema.
// The top level must be a flat key/value sequence or an association list; anything
// else fails with domain.ErrMalformedReply. Result entries whose key cannot be found
// are logged and counted in Dropped.
func ParseReply(r resp.Reply, logger *zap.Logger) (Parsed, error) {
	var p Parsed

	pairs, ok := pairsOf(r)
	if !ok {
		if r.IsNil() {
			logger.Warn("Hybrid reply is empty")
			return p, nil
		}
		return p, fmt.Errorf("%w: top-level %s is not a key/value sequence", domain.ErrMalformedReply, r.Kind())
	}

	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := scalarString(pairs[i])
		if !ok {
			logger.Debug("Skipping non-scalar section key", zap.Int("position", i), zap.Stringer("key", pairs[i]))
			continue
		}
		if err := p.section(name, pairs[i+1], logger); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (p *Parsed) section(name string, value resp.Reply, logger *zap.Logger) error {
	switch name {
	case sectionTotal:
		n, ok := value.Int64()
		if !ok {
			return fmt.Errorf("%w: %s is %s, want integer", domain.ErrMalformedReply, sectionTotal, value)
		}
		p.Total = n
		logger.Info("Hybrid reply total", zap.Int64("total_results", n))
	case sectionResults:
		if value.Kind() != resp.KindArray {
			return fmt.Errorf("%w: %s is %s, want array", domain.ErrMalformedReply, sectionResults, value.Kind())
		}
		for i, entry := range value.Items() {
			key, ok := entryKey(entry)
			if !ok {
				p.Dropped++
				logger.Warn("Dropping hybrid result without document key",
					zap.Int("index", i),
					zap.Stringer("entry", entry),
					zap.Error(domain.ErrMalformedReply),
				)
				continue
			}
			p.Keys = append(p.Keys, key)
		}
	case sectionWarnings:
		for _, w := range value.Items() {
			if s, ok := scalarString(w); ok {
				p.Warnings = append(p.Warnings, s)
			}
		}
		if len(p.Warnings) > 0 {
			logger.Warn("Hybrid reply carries warnings", zap.Strings("warnings", p.Warnings))
		}
	}
	return nil
}

// entryKey finds the document key of one result entry, preferring id over __key.
func entryKey(entry resp.Reply) (string, bool) {
	fields, ok := pairsOf(entry)
	if !ok {
		return "", false
	}

	var fallback string
	for i := 0; i+1 < len(fields); i += 2 {
		name, ok := scalarString(fields[i])
		if !ok {
			continue
		}
		switch name {
		case fieldID:
			if v, ok := scalarString(fields[i+1]); ok && v != "" {
				return v, true
			}
		case fieldKey:
			if v, ok := scalarString(fields[i+1]); ok && v != "" && fallback == "" {
				fallback = v
			}
		}
	}
	return fallback, fallback != ""
}

// pairsOf returns the flat k0 v0 k1 v1 ... view of a sequence or association list.
func pairsOf(r resp.Reply) ([]resp.Reply, bool) {
	switch r.Kind() {
	case resp.KindArray, resp.KindPairs:
		return r.Items(), true
	default:
		return nil, false
	}
}

// scalarString decodes a textual or binary scalar to a string.
func scalarString(r resp.Reply) (string, bool) {
	return r.Str()
}
