// Package telemetry holds the Prometheus collectors exported on /metrics.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts dataset upload and reload attempts by kind and status.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qoe_dataset_uploads_total",
			Help: "Dataset upload and reload attempts",
		},
		[]string{"kind", "status"},
	)

	// DatasetRows is the number of action rows in the active dataset.
	DatasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qoe_dataset_rows",
			Help: "Action rows in the active dataset",
		},
	)

	// ComputationsTotal counts metrics computations by calculator mode.
	ComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qoe_metrics_computations_total",
			Help: "Metrics record computations",
		},
		[]string{"mode"},
	)

	// HTTPRequestDuration tracks request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qoe_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Calculator modes.
const (
	ModeTable = "table"
	ModeNodes = "nodes"
)

// RecordUpload counts one upload attempt.
func RecordUpload(kind, status string) {
	UploadsTotal.WithLabelValues(kind, status).Inc()
}

// RecordDatasetRows publishes the size of the active dataset.
func RecordDatasetRows(rows int) {
	DatasetRows.Set(float64(rows))
}

// RecordComputation counts n metrics computations in the given mode.
func RecordComputation(mode string, n int) {
	ComputationsTotal.WithLabelValues(mode).Add(float64(n))
}

// RecordRequest observes one HTTP request.
func RecordRequest(method, route, status string, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
