// Package health reports whether Redis, the search indexes and the embedding
// provider are in a state where every search mode can answer.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the overall verdict.
type Status string

const (
	// Healthy means every probe passed.
	Healthy Status = "ok"
	// Degraded means Redis answers but an index or the embedder does not.
	Degraded Status = "degraded"
	// Unhealthy means Redis itself is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one probe.
type CheckResult string

const (
	CheckOK      CheckResult = "ok"
	CheckError   CheckResult = "error"
	CheckMissing CheckResult = "missing"
)

// Probe names used as Report.Checks keys.
const (
	CheckDatabase  = "database"
	CheckEmbedding = "embedding"
)

// IndexCheck is the Report.Checks key of the named index.
func IndexCheck(name string) string { return "index:" + name }

// DefaultProbeTimeout bounds each probe when New is given none.
const DefaultProbeTimeout = 2 * time.Second

// Report is one health snapshot. Errors holds the failure text of probes that returned an error.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Errors map[string]string
}

// Service runs the probes.
type Service struct {
	db        Store
	embedding EmbeddingChecker
	indexes   []string
	timeout   time.Duration
}

// New builds a Service checking indexes by name. embedding may be nil.
func New(db Store, embedding EmbeddingChecker, indexes ...string) *Service {
	return &Service{db: db, embedding: embedding, indexes: indexes, timeout: DefaultProbeTimeout}
}

// WithProbeTimeout overrides the per-probe deadline.
func (s *Service) WithProbeTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check pings Redis first; index probes only run once Redis answers.
// Index and embedder probes run concurrently.
func (s *Service) Check(ctx context.Context) Report {
	r := &recorder{checks: map[string]CheckResult{}, errs: map[string]string{}}

	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.db.Ping(pingCtx)
	cancel()
	r.set(CheckDatabase, CheckOK, err)
	dbUp := err == nil

	// Probes record failures instead of returning them, so Wait never cancels siblings.
	var g errgroup.Group
	if dbUp {
		for _, name := range s.indexes {
			g.Go(func() error {
				ctx, cancel := context.WithTimeout(ctx, s.timeout)
				defer cancel()
				exists, err := s.db.IndexExists(ctx, name)
				if err == nil && !exists {
					r.set(IndexCheck(name), CheckMissing, nil)
					return nil
				}
				r.set(IndexCheck(name), CheckOK, err)
				return nil
			})
		}
	}
	if s.embedding != nil {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			r.set(CheckEmbedding, CheckOK, s.embedding.HealthCheck(ctx))
			return nil
		})
	}
	_ = g.Wait()

	status := Healthy
	switch {
	case !dbUp:
		status = Unhealthy
	case r.anyFailed():
		status = Degraded
	}
	return Report{Status: status, Checks: r.checks, Errors: r.errs}
}

type recorder struct {
	mu     sync.Mutex
	checks map[string]CheckResult
	errs   map[string]string
}

// set stores ok, or CheckError with the error text when err is non-nil.
func (r *recorder) set(key string, ok CheckResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.checks[key] = CheckError
		r.errs[key] = err.Error()
		return
	}
	r.checks[key] = ok
}

func (r *recorder) anyFailed() bool {
	for _, v := range r.checks {
		if v != CheckOK {
			return true
		}
	}
	return false
}
