package consumer

import "github.com/prometheus/client_golang/prometheus"

const metricsSubsystem = "audit"

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: metricsSubsystem,
		Name:      "events_processed_total",
		Help:      "Activity events handled and committed, by event type.",
	}, []string{"event_type"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: metricsSubsystem,
		Name:      "handler_errors_total",
		Help:      "Activity events left uncommitted because the handler failed.",
	}, []string{"event_type"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: metricsSubsystem,
		Name:      "malformed_messages_total",
		Help:      "Records skipped because their framing, headers or payload were invalid.",
	}, []string{"topic"})

	duplicateCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: metricsSubsystem,
		Name:      "duplicate_events_total",
		Help:      "Redelivered records already present in the event log.",
	})

	lastEventGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "timeflow",
		Subsystem: metricsSubsystem,
		Name:      "last_event_timestamp_seconds",
		Help:      "Kafka timestamp of the newest committed activity event.",
	})
)

func init() {
	prometheus.MustRegister(processedCounter, handlerErrorCounter, decodeErrorCounter, duplicateCounter, lastEventGauge)
}

func recordProcessed(msg Message) {
	processedCounter.WithLabelValues(msg.EventType).Inc()
	if !msg.Timestamp.IsZero() {
		lastEventGauge.Set(float64(msg.Timestamp.Unix()))
	}
}

func recordHandlerError(msg Message) {
	handlerErrorCounter.WithLabelValues(msg.EventType).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}
