package stats

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mikey/mail-router/internal/core"
)

// Snapshot is a point-in-time copy of the routing counters
type Snapshot struct {
	TotalProcessed   uint64
	PerQueue         map[core.Queue]uint64
	ProcessingErrors uint64
}

// Collector aggregates routing outcomes. It is the only shared mutable
// state in the system; a mutex guards the in-process counters and the
// Prometheus metrics handle their own synchronization. Callers record a
// decision only after it is finalized.
type Collector struct {
	mu     sync.Mutex
	total  uint64
	queues map[core.Queue]uint64
	errors uint64

	registry    *prometheus.Registry
	routedTotal *prometheus.CounterVec
	errorsTotal prometheus.Counter
}

// NewCollector creates a collector registered on its own Prometheus
// registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	routedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mail_router",
		Name:      "documents_routed_total",
		Help:      "Total documents routed, by destination queue",
	}, []string{"queue"})

	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mail_router",
		Name:      "processing_errors_total",
		Help:      "Total documents that failed before a routing decision",
	})

	registry.MustRegister(routedTotal, errorsTotal)

	return &Collector{
		queues:      make(map[core.Queue]uint64),
		registry:    registry,
		routedTotal: routedTotal,
		errorsTotal: errorsTotal,
	}
}

// RecordDecision records a finalized routing decision
func (c *Collector) RecordDecision(queue core.Queue) {
	c.mu.Lock()
	c.total++
	c.queues[queue]++
	c.mu.Unlock()

	c.routedTotal.WithLabelValues(string(queue)).Inc()
}

// RecordError records a document that failed before routing
func (c *Collector) RecordError() {
	c.mu.Lock()
	c.errors++
	c.mu.Unlock()

	c.errorsTotal.Inc()
}

// Snapshot returns a copy of the current counters
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	perQueue := make(map[core.Queue]uint64, len(c.queues))
	for queue, count := range c.queues {
		perQueue[queue] = count
	}

	return Snapshot{
		TotalProcessed:   c.total,
		PerQueue:         perQueue,
		ProcessingErrors: c.errors,
	}
}

// Handler returns an HTTP handler exposing the collector's metrics in
// Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
