package request

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 4
	MaxLimit       = 100
)

// Request is a validated search query.
type Request struct {
	query      string
	searchMode mode.Mode
	limit      int
	alpha      float64
	alphaSet   bool
}

// New validates and normalizes search parameters.
// Defaults: mode=manual, limit=4. Limit is clamped to MaxLimit.
// A nil alpha leaves the weight to the executing path.
func New(query string, m mode.Mode, limit int, alpha *float64) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	m, err := mode.Parse(string(m))
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidQuery)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	r := Request{query: query, searchMode: m, limit: limit}
	if alpha != nil {
		if err := ValidateAlpha(*alpha); err != nil {
			return Request{}, err
		}
		r.alpha, r.alphaSet = *alpha, true
	}
	return r, nil
}

// ValidateAlpha checks that a vector weight lies within [0, 1].
func ValidateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return fmt.Errorf("%w: alpha must be between 0 and 1", domain.ErrInvalidQuery)
	}
	return nil
}

// Query returns the trimmed search text.
func (r *Request) Query() string { return r.query }

// Mode returns the search path.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Limit returns the maximum number of results.
func (r *Request) Limit() int { return r.limit }

// Alpha returns the caller-supplied vector weight and whether one was given.
func (r *Request) Alpha() (float64, bool) { return r.alpha, r.alphaSet }
