package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusFailed   = "transport_error"
	StatusOpen     = "circuit_open"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Feedback submissions by kind and delivery outcome",
		},
		[]string{"kind", "status"},
	)

	DeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedback_delivery_duration_seconds",
			Help:    "Webhook delivery latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"status"},
	)

	HistoryWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_history_write_failures_total",
			Help: "History writes that failed after a successful delivery",
		},
	)

	HistoryEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedback_history_entries",
			Help: "Entries in the local history log after the last write",
		},
	)

	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_validation_failures_total",
			Help: "Rejected feedback forms by offending field",
		},
		[]string{"field"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SubmissionsTotal,
			DeliveryDuration,
			HistoryWriteFailures,
			HistoryEntries,
			ValidationFailures,
			RateLimited,
		)
	})
}

// KindLabel maps an empty kind to "unknown" so label values stay readable.
func KindLabel(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
