package moviesearch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/moviesearch/internal/domain"
)

// Operation outcomes as exported in the status label.
const (
	statusOK          = "ok"
	statusInvalid     = "invalid"
	statusUnavailable = "unavailable"
	statusError       = "error"
)

// outcome buckets err so callers can alert on server-side failures only.
func outcome(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, domain.ErrInvalidQuery):
		return statusInvalid
	case errors.Is(err, domain.ErrSearchUnavailable), errors.Is(err, domain.ErrEmbeddingGeneration):
		return statusUnavailable
	default:
		return statusError
	}
}

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moviesearch",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Client calls by operation and outcome (ok, invalid, unavailable, error).",
		}, []string{"operation", "status"}),
		// Backfill runs for minutes, so the buckets reach well past DefBuckets.
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "moviesearch",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "Client call latency in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 30, 120, 600},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector a previous Client
// already registered on reg so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("moviesearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("moviesearch: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and counts client calls. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one call. attrs are extra slog key/value pairs.
func (o *observer) observe(op string, start time.Time, err error, attrs ...any) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	attrs = append(attrs, "op", op, "status", status, "duration", dur)
	switch status {
	case statusOK:
		o.logger.Debug("moviesearch call completed", attrs...)
	case statusInvalid:
		o.logger.Debug("moviesearch call rejected", append(attrs, "error", err)...)
	default:
		o.logger.Warn("moviesearch call failed", append(attrs, "error", err)...)
	}
}
