// Package metrics provides Prometheus-compatible metrics collection for the
// conversion harness, following Prometheus naming conventions.
package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements the types.Metrics interface using the
// Prometheus client library. All metric names are prefixed with the
// component name to ensure uniqueness across components.
type PrometheusMetrics struct {
	component string

	processedTotal  *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	fileSizeBytes   *prometheus.HistogramVec
	inProgress      *prometheus.GaugeVec
}

// New creates a PrometheusMetrics instance registered with the default
// registry. It panics if a metric with the same component prefix is already
// registered, so callers should go through the observability provider which
// memoizes instances per component.
func New(component string) *PrometheusMetrics {
	// Dotted component names ("storage.fs") are not valid in Prometheus
	// metric names.
	component = strings.ReplaceAll(component, ".", "_")

	m := &PrometheusMetrics{component: component}

	m.processedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_processed_total", component),
			Help: fmt.Sprintf("Total processed items by %s", component),
		},
		[]string{"status", "type"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_errors_total", component),
			Help: fmt.Sprintf("Total errors in %s", component),
		},
		[]string{"error_type", "operation"},
	)

	m.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_duration_seconds", component),
			Help:    fmt.Sprintf("Operation duration in %s", component),
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Exponential buckets sized for image payloads: 1KB up to 1GB.
	m.fileSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: fmt.Sprintf("%s_file_size_bytes", component),
			Help: fmt.Sprintf("File sizes processed by %s", component),
			Buckets: []float64{
				1024,
				10240,
				102400,
				1048576,
				10485760,
				104857600,
				1073741824,
			},
		},
		[]string{"file_type"},
	)

	m.inProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_in_progress", component),
			Help: fmt.Sprintf("Operations in progress in %s", component),
		},
		[]string{"operation"},
	)

	prometheus.MustRegister(
		m.processedTotal,
		m.errorsTotal,
		m.durationSeconds,
		m.fileSizeBytes,
		m.inProgress,
	)

	return m
}

// RecordSuccess increments the success counter for an operation type.
func (m *PrometheusMetrics) RecordSuccess(operationType string) {
	m.processedTotal.WithLabelValues("success", operationType).Inc()
}

// RecordError increments both the processed counter (status="error") and the
// detailed error counter, giving high-level failure rates plus per-error
// breakdowns.
func (m *PrometheusMetrics) RecordError(operationType string, errorType string) {
	m.processedTotal.WithLabelValues("error", operationType).Inc()
	m.errorsTotal.WithLabelValues(errorType, operationType).Inc()
}

// RecordDuration records the duration of an operation in seconds.
func (m *PrometheusMetrics) RecordDuration(operation string, duration float64) {
	m.durationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordFileSize records the size of a processed file in bytes.
func (m *PrometheusMetrics) RecordFileSize(fileType string, bytes int64) {
	m.fileSizeBytes.WithLabelValues(fileType).Observe(float64(bytes))
}

// StartOperation increments the in-progress gauge for an operation.
func (m *PrometheusMetrics) StartOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Inc()
}

// EndOperation decrements the in-progress gauge for an operation.
func (m *PrometheusMetrics) EndOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Dec()
}
