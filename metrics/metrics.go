package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SubmissionStatus labels the outcome of an order submission
type SubmissionStatus string

const (
	StatusAppended         SubmissionStatus = "appended"
	StatusRejected         SubmissionStatus = "rejected"
	StatusSheetsError      SubmissionStatus = "sheets_error"
	StatusSheetsTimeout    SubmissionStatus = "sheets_timeout"
	StatusMethodNotAllowed SubmissionStatus = "method_not_allowed"
	StatusCatalogError     SubmissionStatus = "catalog_error"
	StatusUnavailable      SubmissionStatus = "unavailable"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heladeria_http_requests_total",
			Help: "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "heladeria_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	OrderSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heladeria_order_submissions_total",
			Help: "Order submissions by outcome",
		},
		[]string{"status"},
	)

	SheetsAppendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "heladeria_sheets_append_duration_seconds",
			Help:    "Latency of Google Sheets append calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		},
	)
)

// Register adds every collector to reg
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		OrderSubmissionsTotal,
		SheetsAppendDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// RecordSubmission counts one submission outcome
func RecordSubmission(status SubmissionStatus) {
	OrderSubmissionsTotal.WithLabelValues(string(status)).Inc()
}

// ObserveSheetsAppend records how long an append took
func ObserveSheetsAppend(d time.Duration) {
	SheetsAppendDuration.Observe(d.Seconds())
}
