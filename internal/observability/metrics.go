// Package observability holds the Prometheus collectors shared across the service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Write operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Write outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeNoop           = "noop"
	OutcomeBudgetExceeded = "budget_exceeded"
	OutcomeNotFound       = "not_found"
	OutcomeInvalid        = "invalid"
	OutcomeError          = "error"
)

var (
	activityWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: "activities",
		Name:      "writes_total",
		Help:      "Activity write attempts by operation and outcome.",
	}, []string{"op", "outcome"})
	budgetRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: "activities",
		Name:      "budget_rejections_total",
		Help:      "Writes rejected because the day would exceed 1440 minutes.",
	})
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "timeflow",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity write.",
	})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "timeflow",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(activityWrites, budgetRejections, activityPersistGauge, httpDuration)
}

// RecordActivityWrite counts a write attempt.
func RecordActivityWrite(op, outcome string) {
	activityWrites.WithLabelValues(op, outcome).Inc()
	if outcome == OutcomeBudgetExceeded {
		budgetRejections.Inc()
	}
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// ObserveHTTPRequest records the latency of a served request.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpDuration.WithLabelValues(method, route, statusLabel(status)).Observe(elapsed.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
