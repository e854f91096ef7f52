// Package metrics declares the Prometheus collectors of the service.
// Collectors are package globals; components receive them explicitly
// and treat nil as disabled.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every exported metric.
const Namespace = "moviesearch"

// group registers a fixed set of collectors on the default registry at most once.
type group struct {
	once       sync.Once
	collectors []prometheus.Collector
}

func newGroup(cs ...prometheus.Collector) *group {
	return &group{collectors: cs}
}

func (g *group) register() {
	g.once.Do(func() {
		for _, c := range g.collectors {
			prometheus.MustRegister(c)
		}
	})
}
