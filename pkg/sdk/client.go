package moviesearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/db"
	dbRedis "github.com/kailas-cloud/moviesearch/internal/db/redis"
	"github.com/kailas-cloud/moviesearch/internal/domain"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
	"github.com/kailas-cloud/moviesearch/internal/repository/embcache"
	movierepo "github.com/kailas-cloud/moviesearch/internal/repository/movie"
	"github.com/kailas-cloud/moviesearch/internal/repository/rawhybrid"
	"github.com/kailas-cloud/moviesearch/internal/repository/schema"
	searchrepo "github.com/kailas-cloud/moviesearch/internal/repository/search"
	localEmb "github.com/kailas-cloud/moviesearch/internal/transport/local"
	"github.com/kailas-cloud/moviesearch/internal/usecase/backfill"
	healthuc "github.com/kailas-cloud/moviesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/moviesearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (result.Ranked, error)
}

type schemaUseCase interface {
	Ensure(ctx context.Context, defs ...*db.IndexDefinition) ([]schema.Status, error)
}

type backfillUseCase interface {
	Run(ctx context.Context) (backfill.Report, error)
}

type movieWriter interface {
	Save(ctx context.Context, m *dommovie.Movie) error
}

type connection interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the moviesearch entry point.
type Client struct {
	store       connection
	searchSvc   searchUseCase
	schemaSvc   schemaUseCase
	backfillSvc backfillUseCase
	healthSvc   healthUseCase
	movies      movieWriter
	vectorDim   int
	obs         *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("moviesearch: database address required (use WithRedis)")
	}
	if cfg.vectorDimensions <= 0 {
		return nil, fmt.Errorf("moviesearch: vector dimensions must be positive, got %d", cfg.vectorDimensions)
	}
	if err := request.ValidateAlpha(cfg.defaultAlpha); err != nil {
		return nil, fmt.Errorf("moviesearch: default alpha: %w", err)
	}
	if err := request.ValidateAlpha(cfg.rawAlpha); err != nil {
		return nil, fmt.Errorf("moviesearch: raw alpha: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("moviesearch: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("moviesearch: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()

	var (
		emb    domain.Embedder
		health healthuc.EmbeddingChecker
	)
	if cfg.embedder != nil {
		emb = adaptEmbedder(cfg.embedder)
		if hc, ok := cfg.embedder.(healthuc.EmbeddingChecker); ok {
			health = hc
		}
	} else {
		local := localEmb.NewEmbedder(cfg.vectorDimensions, logger)
		emb, health = local, local
	}

	movies := movierepo.New(store)
	cache := embcache.New(emb, store, nil, logger)
	repo := searchrepo.New(store)

	searchSvc := searchuc.New(
		searchuc.NewFuser(repo, cache, logger),
		searchuc.NewNativeClient(repo, cache, movies, logger),
		rawhybrid.New(store, cache, movies, cfg.rawAlpha, logger),
		searchuc.Options{DefaultAlpha: cfg.defaultAlpha, Timeout: cfg.timeout},
		logger,
	)

	job := backfill.New(movies, emb, backfill.Options{
		Workers:   cfg.backfillWorkers,
		BatchSize: cfg.backfillBatchSize,
	}, logger)

	return &Client{
		store:       store,
		searchSvc:   searchSvc,
		schemaSvc:   schema.New(store),
		backfillSvc: job,
		healthSvc:   healthuc.New(store, health, movierepo.IndexName, embcache.IndexName),
		movies:      movies,
		vectorDim:   cfg.vectorDimensions,
		obs:         obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureSchema creates movie_index and keyword_index when missing.
func (c *Client) EnsureSchema(ctx context.Context) (_ []IndexStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ensure_schema", start, err) }()

	statuses, err := c.schemaSvc.Ensure(ctx, movierepo.Schema(c.vectorDim), embcache.Schema(c.vectorDim))
	if err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	out := make([]IndexStatus, len(statuses))
	for i, st := range statuses {
		out[i] = IndexStatus{Index: st.Index, Version: st.Version, Created: st.Created}
	}
	return out, nil
}

// PutMovie stores m as the hash movie:<ID>. The plot embedding is left for Backfill.
func (c *Client) PutMovie(ctx context.Context, m Movie) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("put_movie", start, err) }()

	if m.ID <= 0 {
		return fmt.Errorf("%w: movie id must be positive", ErrInvalidQuery)
	}
	if err = c.movies.Save(ctx, &dommovie.Movie{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Plot:        m.Plot,
		ReleaseDate: m.ReleaseDate,
		Rating:      m.Rating,
		Actors:      m.Actors,
	}); err != nil {
		return fmt.Errorf("put movie %d: %w", m.ID, err)
	}
	return nil
}

// Search runs query through the path selected by p.Mode.
func (c *Client) Search(ctx context.Context, query string, p SearchParams) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "mode", string(p.Mode)) }()

	req, err := request.New(query, mode.Mode(p.Mode), p.Limit, p.Alpha)
	if err != nil {
		return SearchResult{}, err //nolint:wrapcheck // sentinel already attached
	}

	ranked, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}

	movies := ranked.Movies()
	out := SearchResult{
		ResultType: ranked.Type().Description(),
		Movies:     make([]Movie, len(movies)),
	}
	for i := range movies {
		m := &movies[i]
		out.Movies[i] = Movie{
			ID:          m.ID,
			Title:       m.Title,
			Year:        m.Year,
			Plot:        m.Plot,
			ReleaseDate: m.ReleaseDate,
			Rating:      m.Rating,
			Actors:      m.Actors,
		}
	}
	return out, nil
}

// Backfill embeds the plot of every movie that lacks a plotEmbedding.
// Re-running it only touches movies added since the previous run.
func (c *Client) Backfill(ctx context.Context) (_ BackfillReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("backfill", start, err) }()

	rep, err := c.backfillSvc.Run(ctx)
	out := BackfillReport{
		Scanned:       rep.Scanned,
		Candidates:    rep.Candidates,
		Saved:         rep.Saved,
		FailedBatches: rep.FailedBatches,
		Duration:      rep.Duration,
	}
	if err != nil {
		return out, fmt.Errorf("backfill: %w", err)
	}
	return out, nil
}
