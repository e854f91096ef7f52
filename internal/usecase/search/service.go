package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/result"
)

// Options tunes the dispatcher.
type Options struct {
	// DefaultAlpha is the native vector weight when the request carries none.
	DefaultAlpha float64
	// Timeout bounds every search, embedding included. Zero disables it.
	Timeout time.Duration
	// Requests counts searches by mode, result_type and status. Optional.
	Requests *prometheus.CounterVec
	// Duration observes search latency by mode. Optional.
	Duration *prometheus.HistogramVec
}

// Service dispatches a search request to the manual, native or raw hybrid path.
type Service struct {
	fuser  *Fuser
	native *NativeClient
	raw    RawSearcher
	opts   Options
	logger *zap.Logger
}

// New creates a search service.
func New(fuser *Fuser, native *NativeClient, raw RawSearcher, opts Options, logger *zap.Logger) *Service {
	return &Service{fuser: fuser, native: native, raw: raw, opts: opts, logger: logger}
}

// Search runs req on the path its mode selects, under the configured deadline.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Ranked, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	ranked, err := s.dispatch(ctx, req)
	s.observe(req.Mode(), ranked.Type(), err, time.Since(start))

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrEmbeddingGeneration) &&
			!errors.Is(err, domain.ErrSearchUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
		}
		return result.Ranked{}, fmt.Errorf("%s search: %w", req.Mode(), err)
	}
	return ranked, nil
}

func (s *Service) dispatch(ctx context.Context, req *request.Request) (result.Ranked, error) {
	switch req.Mode() {
	case mode.Manual:
		return s.fuser.Search(ctx, req.Query(), req.Limit())
	case mode.Native:
		alpha, ok := req.Alpha()
		if !ok {
			alpha = s.opts.DefaultAlpha
		}
		return s.native.Search(ctx, req.Query(), req.Limit(), alpha)
	case mode.Raw:
		return s.raw.Search(ctx, req.Query(), req.Limit()) //nolint:wrapcheck // wrapped by Search
	default:
		return result.Ranked{}, fmt.Errorf("%w: unsupported search mode %q", domain.ErrInvalidQuery, req.Mode())
	}
}

func (s *Service) observe(m mode.Mode, typ result.Type, err error, d time.Duration) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidQuery):
		status = "invalid"
	case errors.Is(err, domain.ErrEmbeddingGeneration):
		status = "embedding_error"
	default:
		status = "unavailable"
	}
	if typ == "" {
		typ = "NONE"
	}

	if s.opts.Requests != nil {
		s.opts.Requests.WithLabelValues(string(m), string(typ), status).Inc()
	}
	if s.opts.Duration != nil {
		s.opts.Duration.WithLabelValues(string(m)).Observe(d.Seconds())
	}
	if err != nil {
		s.logger.Warn("Search failed",
			zap.String("mode", string(m)),
			zap.String("status", status),
			zap.Duration("duration", d),
			zap.Error(err),
		)
	}
}
