// Package metrics wraps a Prometheus registry so components can create their
// collectors by name without coordinating registration.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry hands out counters and histograms, creating each one on first use.
// Collectors are registered on a private prometheus.Registry, so several
// registries can coexist in one process.
type Registry struct {
	namespace string
	reg       *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewRegistry creates a registry whose metric names are prefixed with namespace.
// Go runtime and process collectors are registered as well.
func NewRegistry(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
	)

	return &Registry{
		namespace:  namespace,
		reg:        reg,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Counter returns the counter vector registered under name, creating it if needed.
// help and labelKeys are only used on creation.
func (r *Registry) Counter(name, help string, labelKeys ...string) *prometheus.CounterVec {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cv, ok := r.counters[name]; ok {
		return cv
	}

	cv := prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct
		Namespace: r.namespace,
		Name:      name,
		Help:      help,
	}, labelKeys)
	r.reg.MustRegister(cv)
	r.counters[name] = cv

	return cv
}

// Histogram returns the histogram vector registered under name, creating it if needed.
// A nil buckets slice selects prometheus.DefBuckets.
func (r *Registry) Histogram(name, help string, buckets []float64, labelKeys ...string) *prometheus.HistogramVec {
	r.mu.Lock()
	defer r.mu.Unlock()

	if hv, ok := r.histograms[name]; ok {
		return hv
	}

	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{ //nolint:exhaustruct
		Namespace: r.namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labelKeys)
	r.reg.MustRegister(hv)
	r.histograms[name] = hv

	return hv
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{ //nolint:exhaustruct
		Registry: r.reg,
	})
}
