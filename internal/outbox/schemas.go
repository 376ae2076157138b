package outbox

import "example.com/timeflow/internal/events"

const activityCreatedSchema = `{
  "type": "object",
  "title": "ActivityCreated",
  "properties": {
    "activity_id": {"type": "integer"},
    "user_id": {"type": "string"},
    "activity_date": {"type": "string", "format": "date"},
    "activity_name": {"type": "string"},
    "category": {"type": ["string", "null"]},
    "duration_minutes": {"type": "integer", "minimum": 1},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "user_id", "activity_date", "activity_name", "duration_minutes", "occurred_at"],
  "additionalProperties": false
}`

const activityUpdatedSchema = `{
  "type": "object",
  "title": "ActivityUpdated",
  "properties": {
    "activity_id": {"type": "integer"},
    "user_id": {"type": "string"},
    "activity_date": {"type": "string", "format": "date"},
    "previous_date": {"type": "string", "format": "date"},
    "activity_name": {"type": "string"},
    "category": {"type": ["string", "null"]},
    "duration_minutes": {"type": "integer", "minimum": 1},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "user_id", "activity_date", "previous_date", "activity_name", "duration_minutes", "occurred_at"],
  "additionalProperties": false
}`

const activityDeletedSchema = `{
  "type": "object",
  "title": "ActivityDeleted",
  "properties": {
    "activity_id": {"type": "integer"},
    "user_id": {"type": "string"},
    "activity_date": {"type": "string", "format": "date"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "user_id", "activity_date", "occurred_at"],
  "additionalProperties": false
}`

// SchemaCatalogEntry maps event type to schema definition.
type SchemaCatalogEntry struct {
	Schema string
}

var schemaCatalog = map[string]SchemaCatalogEntry{
	events.TypeActivityCreated: {Schema: activityCreatedSchema},
	events.TypeActivityUpdated: {Schema: activityUpdatedSchema},
	events.TypeActivityDeleted: {Schema: activityDeletedSchema},
}
