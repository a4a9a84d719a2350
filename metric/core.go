// Package metric provides the prometheus metrics surface for the syndication
// pipeline.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the pipeline-level metrics.
type Metrics struct {
	TasksEnqueued  *prometheus.CounterVec
	TasksProcessed *prometheus.CounterVec
	SyncDuration   *prometheus.HistogramVec
	SkipsTotal     *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
	NATSConnected  prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates the pipeline metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		TasksEnqueued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "syndicate",
				Subsystem: "queue",
				Name:      "tasks_enqueued_total",
				Help:      "Total number of reconciliation tasks enqueued",
			},
			[]string{"profile", "topic"},
		),

		TasksProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "syndicate",
				Subsystem: "queue",
				Name:      "tasks_processed_total",
				Help:      "Total number of reconciliation tasks processed",
			},
			[]string{"profile", "topic", "outcome"},
		),

		SyncDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "syndicate",
				Subsystem: "sync",
				Name:      "duration_seconds",
				Help:      "Reconciliation attempt duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"profile", "topic"},
		),

		SkipsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "syndicate",
				Subsystem: "dispatch",
				Name:      "skips_total",
				Help:      "Total number of datasets skipped at dispatch",
			},
			[]string{"profile"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "syndicate",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by component and class",
			},
			[]string{"component", "class"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "syndicate",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "syndicate",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnects",
			},
		),
	}
}

// Registry manages metric registration and exposure.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
}

// NewRegistry creates a registry with the pipeline metrics and Go runtime
// collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics()

	reg.MustRegister(
		metrics.TasksEnqueued,
		metrics.TasksProcessed,
		metrics.SyncDuration,
		metrics.SkipsTotal,
		metrics.ErrorsTotal,
		metrics.NATSConnected,
		metrics.NATSReconnects,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		prometheusRegistry: reg,
		Metrics:            metrics,
	}
}

// PrometheusRegistry returns the underlying prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// Handler returns an HTTP handler exposing the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})
}
