package backfill

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	dommovie "github.com/kailas-cloud/moviesearch/internal/domain/movie"
)

// Defaults for Options fields left zero.
const (
	DefaultScanCount     = 1000
	DefaultBatchSize     = 500
	DefaultProgressEvery = 1000
)

// Options tunes the backfill. Zero values fall back to the defaults.
type Options struct {
	ScanCount     int64
	BatchSize     int
	Workers       int
	ProgressEvery int64

	// Saved and FailedBatches are optional counters.
	Saved         prometheus.Counter
	FailedBatches prometheus.Counter
}

func (o *Options) applyDefaults() {
	if o.ScanCount <= 0 {
		o.ScanCount = DefaultScanCount
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = DefaultProgressEvery
	}
}

// Report summarizes one run.
type Report struct {
	Scanned       int
	Candidates    int
	Saved         int64
	FailedBatches int64
	Duration      time.Duration
}

// Job embeds the plot of every movie that has one but lacks a plotEmbedding.
type Job struct {
	movies   MovieStore
	embedder domain.Embedder
	opts     Options
	logger   *zap.Logger
}

// New creates a backfill job.
func New(movies MovieStore, embedder domain.Embedder, opts Options, logger *zap.Logger) *Job {
	opts.applyDefaults()
	return &Job{movies: movies, embedder: embedder, opts: opts, logger: logger}
}

// Run scans the keyspace once and saves embeddings batch by batch.
// A failed batch is logged and counted; the remaining batches still run.
// Movies that already carry an embedding are never selected, so a second run is a no-op.
func (j *Job) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	var rep Report

	keys, err := j.movies.ScanKeys(ctx, j.opts.ScanCount)
	if err != nil {
		return rep, fmt.Errorf("scan movie keys: %w", err)
	}
	rep.Scanned = len(keys)

	ids := make([]int, 0, len(keys))
	for _, key := range keys {
		id, err := dommovie.ParseKey(key)
		if err != nil {
			j.logger.Warn("Skipping malformed movie key", zap.String("key", key), zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}

	candidates, err := j.collectCandidates(ctx, ids)
	if err != nil {
		return rep, err
	}
	rep.Candidates = len(candidates)

	j.logger.Info("Backfill started",
		zap.Int("scanned", rep.Scanned),
		zap.Int("candidates", rep.Candidates),
		zap.Int("batch_size", j.opts.BatchSize),
		zap.Int("workers", j.opts.Workers),
	)

	var saved, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(j.opts.Workers)

	for idx, offset := 0, 0; offset < len(candidates); idx, offset = idx+1, offset+j.opts.BatchSize {
		batch := candidates[offset:min(offset+j.opts.BatchSize, len(candidates))]
		g.Go(func() error {
			if err := j.saveBatch(ctx, batch); err != nil {
				failed.Add(1)
				if j.opts.FailedBatches != nil {
					j.opts.FailedBatches.Inc()
				}
				j.logger.Error("Failed to save embedding batch",
					zap.Int("batch", idx),
					zap.Int("size", len(batch)),
					zap.Error(fmt.Errorf("%w: %w", domain.ErrBatchSave, err)),
				)
				return nil
			}

			n := int64(len(batch))
			after := saved.Add(n)
			if j.opts.Saved != nil {
				j.opts.Saved.Add(float64(n))
			}
			j.progress(after-n, after, int64(len(candidates)))
			return nil
		})
	}
	_ = g.Wait()

	rep.Saved = saved.Load()
	rep.FailedBatches = failed.Load()
	rep.Duration = time.Since(start)

	j.logger.Info("Backfill finished",
		zap.Int64("saved", rep.Saved),
		zap.Int("candidates", rep.Candidates),
		zap.Int64("failed_batches", rep.FailedBatches),
		zap.String("duration_seconds", fmt.Sprintf("%.2f", rep.Duration.Seconds())),
	)

	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("backfill interrupted: %w", err)
	}
	return rep, nil
}

// collectCandidates loads movies page by page and keeps those needing an embedding.
func (j *Job) collectCandidates(ctx context.Context, ids []int) ([]dommovie.Movie, error) {
	var out []dommovie.Movie
	for offset := 0; offset < len(ids); offset += j.opts.BatchSize {
		page := ids[offset:min(offset+j.opts.BatchSize, len(ids))]
		lookups, err := j.movies.GetMulti(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("load movies: %w", err)
		}
		for i := range lookups {
			l := &lookups[i]
			if !l.Found() {
				if !errors.Is(l.Err, domain.ErrMovieNotFound) {
					j.logger.Warn("Skipping undecodable movie", zap.Int("movie_id", l.ID), zap.Error(l.Err))
				}
				continue
			}
			if l.Movie.NeedsEmbedding() {
				out = append(out, l.Movie)
			}
		}
	}
	return out, nil
}

func (j *Job) saveBatch(ctx context.Context, batch []dommovie.Movie) error {
	plots := make([]string, len(batch))
	for i := range batch {
		plots[i] = batch[i].Plot
	}

	res, err := domain.EmbedAll(ctx, j.embedder, plots)
	if err != nil {
		return err //nolint:wrapcheck // wrapped with ErrBatchSave by the caller
	}

	out := make([]dommovie.Movie, len(batch))
	for i := range batch {
		out[i] = batch[i]
		out[i].PlotEmbedding = res.Embeddings[i]
	}
	return j.movies.SaveEmbeddings(ctx, out) //nolint:wrapcheck // repository errors carry context
}

// progress logs when the saved count crosses a ProgressEvery boundary or reaches total.
func (j *Job) progress(before, after, total int64) {
	if after/j.opts.ProgressEvery == before/j.opts.ProgressEvery && after != total {
		return
	}
	pct := 100.0
	if total > 0 {
		pct = float64(after) / float64(total) * 100
	}
	j.logger.Info("Backfill progress",
		zap.Int64("saved", after),
		zap.Int64("total", total),
		zap.String("percent", fmt.Sprintf("%.1f", pct)),
	)
}
