package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates Prometheus metrics for the server.
type Metrics struct {
	registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  *prometheus.GaugeVec
	ErrorsTotal     *prometheus.CounterVec
	RateLimitHits   *prometheus.CounterVec

	// GenerationsTotal and GenerationDuration are labelled by outcome: "ok"
	// or the error type that ended the call. The model name is client input
	// and never becomes a label.
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	ImagesTotal        prometheus.Counter

	QueueWaiting      prometheus.Gauge
	QueueWaitDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with a custom registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ollamanode_http_requests_total",
				Help: "Total number of HTTP requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ollamanode_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		ActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ollamanode_http_active_requests",
				Help: "Number of currently active HTTP requests",
			},
			[]string{"method"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ollamanode_errors_total",
				Help: "Total number of errors by type",
			},
			[]string{"type"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ollamanode_rate_limit_hits_total",
				Help: "Total number of rate limit hits by client",
			},
			[]string{"client"},
		),
		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ollamanode_generations_total",
				Help: "Total number of generate calls by outcome",
			},
			[]string{"outcome"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "ollamanode_generation_duration_seconds",
				Help: "Duration of generate calls in seconds, including the wait for Ollama",
				// Generation runs from sub-second to minutes on CPU-only hosts.
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"outcome"},
		),
		ImagesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ollamanode_images_total",
				Help: "Total number of images attached to generate calls",
			},
		),
		QueueWaiting: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ollamanode_queue_waiting",
				Help: "Number of generate requests waiting for a worker",
			},
		),
		QueueWaitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ollamanode_queue_wait_seconds",
				Help:    "Time generate requests spent waiting for a worker",
				Buckets: []float64{0.01, 0.1, 1, 5, 10, 30, 60, 120, 300},
			},
		),
	}

	// Register default Go metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize some default metrics
	m.RequestsTotal.WithLabelValues("/health", "200").Add(0)
	m.RequestsTotal.WithLabelValues("/metrics", "200").Add(0)
	m.GenerationsTotal.WithLabelValues("ok").Add(0)

	return m
}

// Registry exposes the registry so other components (the circuit breaker)
// can register their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns a handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: false, // Disable OpenMetrics format to avoid escaping=values
	})
}
