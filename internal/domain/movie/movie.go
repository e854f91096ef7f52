// Package movie holds the movie record and its Redis hash codec.
package movie

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/moviesearch/internal/domain"
)

// Storage layout.
const (
	KeyPrefix  = "movie:"
	KeyPattern = KeyPrefix + "*"

	FieldTitle         = "title"
	FieldYear          = "year"
	FieldPlot          = "plot"
	FieldPlotEmbedding = "plotEmbedding"
	FieldReleaseDate   = "releaseDate"
	FieldRating        = "rating"
	FieldActors        = "actors"

	// ActorSeparator joins actor names inside the actors TAG field.
	ActorSeparator = "|"

	// EmbeddingDim is the plot embedding width.
	EmbeddingDim = 384
)

// Movie is a single movie record.
// PlotEmbedding is nil until the backfill has embedded a non-blank plot.
type Movie struct {
	ID            int
	Title         string
	Year          int
	Plot          string
	PlotEmbedding []float32
	ReleaseDate   string
	Rating        float64
	Actors        []string
}

// Summary is the client-facing projection of a movie.
type Summary struct {
	Title  string   `json:"title"`
	Year   int      `json:"year"`
	Plot   string   `json:"plot"`
	Rating float64  `json:"rating"`
	Actors []string `json:"actors"`
}

// Key returns the hash key for id.
func Key(id int) string {
	return KeyPrefix + strconv.Itoa(id)
}

// ParseKey extracts the id from a movie:<id> key.
func ParseKey(key string) (int, error) {
	suffix, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q lacks prefix %q", domain.ErrMalformedKey, key, KeyPrefix)
	}
	id, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", domain.ErrMalformedKey, key, err)
	}
	return id, nil
}

// FromHash hydrates a movie from its key and HGETALL fields.
// Missing fields keep their zero value.
func FromHash(key string, fields map[string]string) (Movie, error) {
	id, err := ParseKey(key)
	if err != nil {
		return Movie{}, err
	}

	m := Movie{
		ID:          id,
		Title:       fields[FieldTitle],
		Plot:        fields[FieldPlot],
		ReleaseDate: fields[FieldReleaseDate],
	}

	if s := fields[FieldYear]; s != "" {
		if m.Year, err = strconv.Atoi(s); err != nil {
			return Movie{}, fmt.Errorf("movie %d: parse year %q: %w", id, s, err)
		}
	}
	if s := fields[FieldRating]; s != "" {
		if m.Rating, err = strconv.ParseFloat(s, 64); err != nil {
			return Movie{}, fmt.Errorf("movie %d: parse rating %q: %w", id, s, err)
		}
	}
	if s := fields[FieldActors]; s != "" {
		for _, a := range strings.Split(s, ActorSeparator) {
			if a = strings.TrimSpace(a); a != "" {
				m.Actors = append(m.Actors, a)
			}
		}
	}
	if s := fields[FieldPlotEmbedding]; s != "" {
		if m.PlotEmbedding, err = domain.DecodeVector([]byte(s)); err != nil {
			return Movie{}, fmt.Errorf("movie %d: decode embedding: %w", id, err)
		}
	}

	return m, nil
}

// Hash returns the hash fields for m. The embedding is included only when present.
func (m *Movie) Hash() map[string]string {
	h := map[string]string{
		FieldTitle:       m.Title,
		FieldYear:        strconv.Itoa(m.Year),
		FieldPlot:        m.Plot,
		FieldReleaseDate: m.ReleaseDate,
		FieldRating:      strconv.FormatFloat(m.Rating, 'f', -1, 64),
		FieldActors:      strings.Join(m.Actors, ActorSeparator),
	}
	if len(m.PlotEmbedding) > 0 {
		h[FieldPlotEmbedding] = string(domain.EncodeVector(m.PlotEmbedding))
	}
	return h
}

// NeedsEmbedding reports whether the backfill should embed this movie's plot.
func (m *Movie) NeedsEmbedding() bool {
	return len(m.PlotEmbedding) == 0 && strings.TrimSpace(m.Plot) != ""
}

// Summary projects m for search responses.
func (m *Movie) Summary() Summary {
	actors := m.Actors
	if actors == nil {
		actors = []string{}
	}
	return Summary{
		Title:  m.Title,
		Year:   m.Year,
		Plot:   m.Plot,
		Rating: m.Rating,
		Actors: actors,
	}
}
