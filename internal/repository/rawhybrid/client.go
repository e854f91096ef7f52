// Package rawhybrid speaks FT.HYBRID directly: it builds the argument list by
// hand and parses the untyped reply, sharing nothing with the typed store client.
package rawhybrid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/db/resp"
	"github.com/kailas-cloud/moviesearch/internal/domain"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
	movierepo "github.com/kailas-cloud/moviesearch/internal/repository/movie"
)

// commander is the consumer interface for raw command execution (ISP).
type commander interface {
	Execute(ctx context.Context, name string, args ...string) (resp.Reply, error)
}

// resolver turns query text into an embedding.
type resolver interface {
	Resolve(ctx context.Context, text string) ([]float32, error)
}

// movieLoader fetches movies by id.
type movieLoader interface {
	GetMulti(ctx context.Context, ids []int) ([]dommovie.Lookup, error)
}

// Client runs hybrid searches over the raw wire command.
type Client struct {
	cmd    commander
	embed  resolver
	movies movieLoader
	alpha  float64
	logger *zap.Logger
}

// New creates a raw hybrid client. alpha is the vector weight; the text weight is 1-alpha.
func New(cmd commander, embed resolver, movies movieLoader, alpha float64, logger *zap.Logger) *Client {
	return &Client{cmd: cmd, embed: embed, movies: movies, alpha: alpha, logger: logger}
}

// Search resolves the query embedding, sends FT.HYBRID and loads the movies it names.
// The ranking is always tagged HYBRID. Unparseable or missing ids are logged and dropped.
func (c *Client) Search(ctx context.Context, query string, limit int) (result.Ranked, error) {
	embedStart := time.Now()
	vec, err := c.embed.Resolve(ctx, query)
	if err != nil {
		return result.Ranked{}, err //nolint:wrapcheck // already carries ErrEmbeddingGeneration context
	}
	embedDur := time.Since(embedStart)

	args := BuildCommand(CommandSpec{
		Index:       movierepo.IndexName,
		Query:       query,
		VectorField: dommovie.FieldPlotEmbedding,
		Vector:      vec,
		Limit:       limit,
		Alpha:       c.alpha,
		Beta:        1 - c.alpha,
	})
	c.logger.Debug("Executing raw hybrid command", zap.String("command", Describe(args)))

	searchStart := time.Now()
	reply, err := c.cmd.Execute(ctx, CommandName, args...)
	if err != nil {
		return result.Ranked{}, fmt.Errorf("%w: raw hybrid: %w", domain.ErrSearchUnavailable, err)
	}
	searchDur := time.Since(searchStart)

	parsed, err := ParseReply(reply, c.logger)
	if err != nil {
		return result.Ranked{}, fmt.Errorf("%w: raw hybrid: %w", domain.ErrSearchUnavailable, err)
	}

	ids := c.idsFromKeys(parsed.Keys)
	movies, err := c.load(ctx, ids)
	if err != nil {
		return result.Ranked{}, err
	}

	c.logger.Info("Raw hybrid search",
		zap.Int("limit", limit),
		zap.Int64("total_results", parsed.Total),
		zap.Int("keys", len(parsed.Keys)),
		zap.Int("dropped", parsed.Dropped),
		zap.Int("movies", len(movies)),
		zap.Duration("embedding", embedDur),
		zap.Duration("search", searchDur),
	)

	return result.New(movies, result.Hybrid), nil
}

func (c *Client) idsFromKeys(keys []string) []int {
	ids := make([]int, 0, len(keys))
	seen := make(map[int]struct{}, len(keys))
	for _, key := range keys {
		id, err := dommovie.ParseKey(key)
		if err != nil {
			c.logger.Warn("Could not parse movie id from hybrid result", zap.String("key", key), zap.Error(err))
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (c *Client) load(ctx context.Context, ids []int) ([]dommovie.Movie, error) {
	lookups, err := c.movies.GetMulti(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load movies: %w", domain.ErrSearchUnavailable, err)
	}

	movies := make([]dommovie.Movie, 0, len(lookups))
	for i := range lookups {
		l := &lookups[i]
		if !l.Found() {
			level := c.logger.Warn
			if !errors.Is(l.Err, domain.ErrMovieNotFound) {
				level = c.logger.Error
			}
			level("Dropping unresolvable hybrid result", zap.Int("movie_id", l.ID), zap.Error(l.Err))
			continue
		}
		movies = append(movies, l.Movie)
	}
	return movies, nil
}
