package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/config"
	dbRedis "github.com/kailas-cloud/moviesearch/internal/db/redis"
	"github.com/kailas-cloud/moviesearch/internal/domain"
	logpkg "github.com/kailas-cloud/moviesearch/internal/logger"
	"github.com/kailas-cloud/moviesearch/internal/metrics"
	"github.com/kailas-cloud/moviesearch/internal/repository/embcache"
	movierepo "github.com/kailas-cloud/moviesearch/internal/repository/movie"
	"github.com/kailas-cloud/moviesearch/internal/repository/rawhybrid"
	"github.com/kailas-cloud/moviesearch/internal/repository/schema"
	searchrepo "github.com/kailas-cloud/moviesearch/internal/repository/search"
	localEmb "github.com/kailas-cloud/moviesearch/internal/transport/local"
	openaiEmb "github.com/kailas-cloud/moviesearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/moviesearch/internal/usecase/embedding"
	searchuc "github.com/kailas-cloud/moviesearch/internal/usecase/search"
)

// app is the composition root shared by every subcommand.
type app struct {
	env      string
	cfg      config.Config
	logger   *zap.Logger
	store    *dbRedis.Store
	embedder *embeddinguc.InstrumentedEmbedder
	movies   *movierepo.Repo
}

// newApp loads .env and config, builds the logger, and connects to Redis.
func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Root().PersistentFlags()

	dotenv, _ := flags.GetString("dotenv")
	if dotenv != "" {
		// godotenv.Load never overrides variables already set in the environment.
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	env, _ := flags.GetString("env")
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if path, _ := flags.GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(cmd.Context(), readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Debug("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	a := &app{
		env:    env,
		cfg:    cfg,
		logger: logger,
		store:  store,
		movies: movierepo.New(store),
	}
	a.embedder = a.buildEmbedder()
	return a, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// buildEmbedder assembles the provider chain: transport -> instrumented.
func (a *app) buildEmbedder() *embeddinguc.InstrumentedEmbedder {
	ec := a.cfg.Embedding

	var base domain.Embedder
	model := ec.Model
	switch ec.Provider {
	case config.ProviderLocal:
		base = localEmb.NewEmbedder(ec.Dimensions, a.logger)
		model = fmt.Sprintf("hash-%d", ec.Dimensions)
	default:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			Provider:   ec.Provider,
			Logger:     a.logger,
		})
	}

	a.logger.Debug("Embedder created",
		zap.String("provider", ec.Provider),
		zap.String("model", model),
		zap.Int("dimensions", ec.Dimensions),
	)

	return embeddinguc.NewInstrumentedEmbedder(base, ec.Provider, model, a.logger).
		WithMaxBatchSize(ec.MaxBatchSize).
		WithBatchMetrics(metrics.EmbeddingBatchTexts)
}

// ensureSchema creates both indexes at their declared version.
func (a *app) ensureSchema(ctx context.Context) ([]schema.Status, error) {
	dim := a.cfg.Embedding.Dimensions
	statuses, err := schema.New(a.store).Ensure(ctx, movierepo.Schema(dim), embcache.Schema(dim))
	if err != nil {
		return statuses, fmt.Errorf("ensure schema: %w", err)
	}
	for _, st := range statuses {
		a.logger.Info("Index ready",
			zap.String("index", st.Index),
			zap.Int("version", st.Version),
			zap.Bool("created", st.Created),
		)
	}
	return statuses, nil
}

// searchService wires the three hybrid paths behind the dispatcher.
func (a *app) searchService() *searchuc.Service {
	cache := embcache.New(a.embedder, a.store, metrics.EmbeddingCacheTotal, a.logger)
	repo := searchrepo.New(a.store)

	return searchuc.New(
		searchuc.NewFuser(repo, cache, a.logger),
		searchuc.NewNativeClient(repo, cache, a.movies, a.logger),
		rawhybrid.New(a.store, cache, a.movies, a.cfg.Search.RawAlpha, a.logger),
		searchuc.Options{
			DefaultAlpha: a.cfg.Search.Alpha(),
			Timeout:      a.cfg.Search.Timeout(),
			Requests:     metrics.SearchRequestsTotal,
			Duration:     metrics.SearchDuration,
		},
		a.logger,
	)
}
