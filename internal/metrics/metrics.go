// Package metrics exposes Prometheus instrumentation for the classification service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "riskscore"

// Metrics holds the service collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	classifications    *prometheus.CounterVec
	classifyDuration   prometheus.Histogram
	remoteRequests     *prometheus.CounterVec
	batchJobs          *prometheus.CounterVec
	degradedClassified prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifications_total",
				Help:      "Total number of classified texts",
			},
			[]string{"label", "method"},
		),

		classifyDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "classification_duration_seconds",
				Help:      "Time taken to classify one text",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
			},
		),

		remoteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_model_requests_total",
				Help:      "Remote model calls by outcome",
			},
			[]string{"outcome"},
		),

		batchJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_jobs_total",
				Help:      "Finished batch analysis jobs by status",
			},
			[]string{"status"},
		),

		degradedClassified: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "degraded_classifications_total",
				Help:      "Classifications produced without the configured remote model",
			},
		),
	}

	m.registry.MustRegister(
		m.classifications,
		m.classifyDuration,
		m.remoteRequests,
		m.batchJobs,
		m.degradedClassified,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveClassification records one finished classification.
func (m *Metrics) ObserveClassification(label, method string, degraded bool, took time.Duration) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(label, method).Inc()
	m.classifyDuration.Observe(took.Seconds())
	if degraded {
		m.degradedClassified.Inc()
	}
}

// ObserveRemote records the outcome of one remote model call.
func (m *Metrics) ObserveRemote(outcome string) {
	if m == nil {
		return
	}
	m.remoteRequests.WithLabelValues(outcome).Inc()
}

// ObserveJob records a finished batch job.
func (m *Metrics) ObserveJob(status string) {
	if m == nil {
		return
	}
	m.batchJobs.WithLabelValues(status).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
