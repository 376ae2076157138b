package outbox

import "github.com/prometheus/client_golang/prometheus"

// Delivery results recorded per outbox event.
const (
	resultDelivered    = "delivered"
	resultDeadLettered = "dead_lettered"
)

var (
	eventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: "outbox",
		Name:      "events_total",
		Help:      "Outbox events leaving the outbox, by event type and result.",
	}, []string{"event_type", "result"})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "timeflow",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent claiming, publishing and marking one outbox batch.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	pendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "timeflow",
		Subsystem: "outbox",
		Name:      "pending_events",
		Help:      "Unpublished outbox rows seen at the start of the last poll.",
	})
)

func init() {
	prometheus.MustRegister(eventsCounter, batchDuration, pendingGauge)
}

func recordResult(messages []Message, result string) {
	for _, msg := range messages {
		eventsCounter.WithLabelValues(msg.EventType, result).Inc()
	}
}
