package movie

// Lookup is the outcome of loading one movie by id in a batch.
type Lookup struct {
	ID    int
	Movie Movie
	// Err is domain.ErrMovieNotFound for a missing hash, or a decode error.
	Err error
}

// Found reports whether the movie was loaded.
func (l *Lookup) Found() bool { return l.Err == nil }
