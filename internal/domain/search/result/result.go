package result

import "github.com/kailas-cloud/moviesearch/internal/domain/movie"

// Type names the retrieval paths that produced a ranking.
type Type string

// Result types.
const (
	FTS    Type = "FTS"
	VSS    Type = "VSS"
	Hybrid Type = "HYBRID"
)

// Description returns the client-facing label of t.
func (t Type) Description() string {
	switch t {
	case FTS:
		return "Full-Text Search"
	case VSS:
		return "Vector Similarity Search"
	case Hybrid:
		return "Hybrid Search"
	default:
		return string(t)
	}
}

// Ranked is an ordered, deduplicated list of movies with the type that produced it.
type Ranked struct {
	movies []movie.Movie
	typ    Type
}

// New creates a ranking.
func New(movies []movie.Movie, t Type) Ranked {
	return Ranked{movies: movies, typ: t}
}

// Movies returns the ranked movies.
func (r *Ranked) Movies() []movie.Movie { return r.movies }

// Type returns the result type tag.
func (r *Ranked) Type() Type { return r.typ }

// Len returns the number of ranked movies.
func (r *Ranked) Len() int { return len(r.movies) }

// IDs returns the movie ids in rank order.
func (r *Ranked) IDs() []int {
	ids := make([]int, len(r.movies))
	for i := range r.movies {
		ids[i] = r.movies[i].ID
	}
	return ids
}

// Summaries projects the ranking for responses.
func (r *Ranked) Summaries() []movie.Summary {
	out := make([]movie.Summary, len(r.movies))
	for i := range r.movies {
		out[i] = r.movies[i].Summary()
	}
	return out
}

// Hit is one engine match with the score the engine assigned it.
type Hit struct {
	Movie movie.Movie
	Score float64
}

// KeyHit is an engine match known only by its document key.
type KeyHit struct {
	Key   string
	Score float64
}

// MoviesOf drops the scores of hits, keeping their order.
func MoviesOf(hits []Hit) []movie.Movie {
	out := make([]movie.Movie, len(hits))
	for i := range hits {
		out[i] = hits[i].Movie
	}
	return out
}
