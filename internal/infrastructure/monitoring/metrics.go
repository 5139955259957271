// Package monitoring provides Prometheus metrics collection and
// OpenTelemetry tracing for the modification pipeline
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger *zap.Logger

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	modificationsTotal   *prometheus.CounterVec
	modelRequestDuration prometheus.Histogram

	// System metrics
	dbConnectionsActive prometheus.Gauge
	dbConnectionsIdle   prometheus.Gauge
}

// NewMetricsCollector creates a new metrics collector registered on the
// default Prometheus registry
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	return &MetricsCollector{
		logger: logger,

		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),

		modificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_modifications_total",
				Help: "Total number of AI recipe modification attempts by outcome",
			},
			[]string{"outcome"},
		),
		modelRequestDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "model_request_duration_seconds",
				Help:    "Model completion request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
		),

		dbConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),
		dbConnectionsIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
	}
}

// RecordModification records one modification attempt. The model
// duration covers only the completion call, not repository access.
func (m *MetricsCollector) RecordModification(outcome string, modelDuration time.Duration) {
	m.modificationsTotal.WithLabelValues(outcome).Inc()
	if modelDuration > 0 {
		m.modelRequestDuration.Observe(modelDuration.Seconds())
	}
}

// RecordHTTPRequest records one handled HTTP request
func (m *MetricsCollector) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// SetDBConnections updates database connection pool gauges
func (m *MetricsCollector) SetDBConnections(active, idle int) {
	m.dbConnectionsActive.Set(float64(active))
	m.dbConnectionsIdle.Set(float64(idle))
}

// Handler returns the Prometheus scrape endpoint handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.Handler()
}
