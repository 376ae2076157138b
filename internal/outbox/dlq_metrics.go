package outbox

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// DLQ entry outcomes.
const (
	dlqRequeued    = "requeued"
	dlqRetried     = "retry_scheduled"
	dlqQuarantined = "quarantined"
)

var (
	dlqOutcomeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: "dlq",
		Name:      "entries_total",
		Help:      "Dead-letter entries handled by the manager, by event type and outcome.",
	}, []string{"event_type", "outcome"})

	dlqBacklogGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "timeflow",
		Subsystem: "dlq",
		Name:      "entries",
		Help:      "Dead-letter entries currently stored, split into waiting and quarantined.",
	}, []string{"state"})
)

func init() {
	prometheus.MustRegister(dlqOutcomeCounter, dlqBacklogGauge)
}

func recordDLQOutcome(entry dlqEntry, outcome string) {
	dlqOutcomeCounter.WithLabelValues(entry.EventType, outcome).Inc()
}

func (m *DLQManager) refreshBacklog(ctx context.Context) {
	var waiting, quarantined int
	err := m.pool.QueryRow(ctx, `SELECT
            COUNT(*) FILTER (WHERE quarantined_at IS NULL),
            COUNT(*) FILTER (WHERE quarantined_at IS NOT NULL)
        FROM outbox_dlq`).Scan(&waiting, &quarantined)
	if err != nil {
		if ctx.Err() == nil {
			m.log.Warn("dlq backlog query failed", "error", err)
		}
		return
	}
	dlqBacklogGauge.WithLabelValues("waiting").Set(float64(waiting))
	dlqBacklogGauge.WithLabelValues("quarantined").Set(float64(quarantined))
}
