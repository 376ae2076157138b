package consumer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PersistenceHandler appends consumed events to the activity_event_log audit table.
// Redelivered records are ignored.
type PersistenceHandler struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPersistenceHandler constructs a handler backed by the provided pool.
func NewPersistenceHandler(pool *pgxpool.Pool) *PersistenceHandler {
	return &PersistenceHandler{pool: pool, now: time.Now}
}

// Handle stores the event payload in the activity_event_log table.
func (h *PersistenceHandler) Handle(ctx context.Context, msg Message) error {
	received := msg.Timestamp
	if received.IsZero() {
		received = h.now().UTC()
	}

	tag, err := h.pool.Exec(ctx,
		`INSERT INTO activity_event_log (event_type, user_id, schema_id, schema_subject, topic, partition, record_offset, payload, received_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
         ON CONFLICT (topic, partition, record_offset) DO NOTHING`,
		msg.EventType,
		msg.UserID,
		msg.SchemaID,
		msg.SchemaSubject,
		msg.Topic,
		msg.Partition,
		msg.Offset,
		msg.Payload,
		received,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		duplicateCounter.Inc()
	}
	return nil
}
