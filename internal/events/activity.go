// Package events defines the activity change payloads published through the outbox.
package events

import "time"

// Event types recorded in the outbox and carried in the Kafka event_type header.
const (
	TypeActivityCreated = "activity.created"
	TypeActivityUpdated = "activity.updated"
	TypeActivityDeleted = "activity.deleted"
)

// TopicActivityEvents carries every activity change event.
const TopicActivityEvents = "activity_events"

// ActivityCreated is emitted when a new activity is stored.
type ActivityCreated struct {
	ActivityID   int64     `json:"activity_id"`
	UserID       string    `json:"user_id"`
	ActivityDate string    `json:"activity_date"`
	ActivityName string    `json:"activity_name"`
	Category     *string   `json:"category"`
	DurationMin  int       `json:"duration_minutes"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ActivityUpdated is emitted when an activity's mutable fields are replaced.
type ActivityUpdated struct {
	ActivityID   int64     `json:"activity_id"`
	UserID       string    `json:"user_id"`
	ActivityDate string    `json:"activity_date"`
	PreviousDate string    `json:"previous_date"`
	ActivityName string    `json:"activity_name"`
	Category     *string   `json:"category"`
	DurationMin  int       `json:"duration_minutes"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ActivityDeleted is emitted when an existing activity is removed.
type ActivityDeleted struct {
	ActivityID   int64     `json:"activity_id"`
	UserID       string    `json:"user_id"`
	ActivityDate string    `json:"activity_date"`
	OccurredAt   time.Time `json:"occurred_at"`
}
