package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lineup relay metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lineup",
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lineup",
			Subsystem: "relay",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Upload session outcomes
	UploadSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lineup",
			Subsystem: "relay",
			Name:      "upload_sessions_total",
			Help:      "Upload session creations by outcome",
		},
		[]string{"outcome"},
	)

	// Webhook events by type and outcome
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lineup",
			Subsystem: "relay",
			Name:      "webhook_events_total",
			Help:      "Pipeline webhook events by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// Terminal status writes by reconciliation path
	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lineup",
			Subsystem: "relay",
			Name:      "reconciliations_total",
			Help:      "Status reconciliation attempts by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	// Active status pollers
	ActivePollers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lineup",
			Subsystem: "relay",
			Name:      "active_pollers",
			Help:      "Number of videos currently being polled for status",
		},
	)

	// Image storage operations counter
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lineup",
			Subsystem: "relay",
			Name:      "storage_operations_total",
			Help:      "Detail image storage operations",
		},
		[]string{"operation", "status"},
	)

	// Image storage operation duration
	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lineup",
			Subsystem: "relay",
			Name:      "storage_duration_seconds",
			Help:      "Detail image storage operation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"operation"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUploadSession records an upload session creation attempt
func RecordUploadSession(outcome string) {
	UploadSessionsTotal.WithLabelValues(outcome).Inc()
}

// RecordWebhookEvent records a received pipeline webhook event
func RecordWebhookEvent(eventType, outcome string) {
	WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// RecordReconciliation records a status reconciliation attempt
func RecordReconciliation(path, outcome string) {
	ReconciliationsTotal.WithLabelValues(path, outcome).Inc()
}

// RecordStorageOperation records a detail image storage operation
func RecordStorageOperation(operation, status string, durationSec float64) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageDuration.WithLabelValues(operation).Observe(durationSec)
}
