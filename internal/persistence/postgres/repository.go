package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/timeflow/internal/domain"
	"example.com/timeflow/internal/events"
)

const selectActivity = `SELECT id, user_id, to_char(activity_date, 'YYYY-MM-DD'), activity_name, category, duration_minutes, created_at, updated_at
        FROM activities`

// Repository provides Postgres-backed persistence for activities and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create checks the day's budget and inserts the activity together with its outbox
// event inside a single transaction holding the day lock.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Activity{}, err
	}
	defer tx.Rollback(ctx)

	if err := lockDay(ctx, tx, activity.UserID, activity.Date); err != nil {
		return domain.Activity{}, err
	}

	used, err := dayTotal(ctx, tx, activity.UserID, activity.Date, 0)
	if err != nil {
		return domain.Activity{}, err
	}
	if err := domain.CheckBudget(activity.Date, used, activity.DurationMin); err != nil {
		return domain.Activity{}, err
	}

	const insertActivity = `INSERT INTO activities (user_id, activity_date, activity_name, category, duration_minutes, created_at, updated_at)
        VALUES ($1, $2::date, $3, $4, $5, $6, $7)
        RETURNING id`

	err = tx.QueryRow(ctx, insertActivity,
		activity.UserID,
		activity.Date,
		activity.Name,
		activity.Category,
		activity.DurationMin,
		activity.CreatedAt,
		activity.UpdatedAt,
	).Scan(&activity.ID)
	if err != nil {
		return domain.Activity{}, err
	}

	if err := insertOutbox(ctx, tx, activity, events.TypeActivityCreated, events.ActivityCreated{
		ActivityID:   activity.ID,
		UserID:       activity.UserID,
		ActivityDate: activity.Date,
		ActivityName: activity.Name,
		Category:     activity.Category,
		DurationMin:  activity.DurationMin,
		OccurredAt:   activity.CreatedAt,
	}); err != nil {
		return domain.Activity{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Activity{}, err
	}
	return activity, nil
}

// ListByDate returns the user's activities for date ordered by creation time.
func (r *Repository) ListByDate(ctx context.Context, userID, date string) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, selectActivity+`
        WHERE user_id = $1 AND activity_date = $2::date
        ORDER BY created_at ASC, id ASC`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Update replaces the activity's mutable fields. The new date is locked first, then the
// row itself, so concurrent writers always acquire locks in the same order.
func (r *Repository) Update(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Activity{}, err
	}
	defer tx.Rollback(ctx)

	if err := lockDay(ctx, tx, activity.UserID, activity.Date); err != nil {
		return domain.Activity{}, err
	}

	var previousDate string
	err = tx.QueryRow(ctx, `SELECT to_char(activity_date, 'YYYY-MM-DD'), created_at
        FROM activities WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		activity.ID, activity.UserID,
	).Scan(&previousDate, &activity.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Activity{}, domain.ErrActivityNotFound
		}
		return domain.Activity{}, err
	}

	used, err := dayTotal(ctx, tx, activity.UserID, activity.Date, activity.ID)
	if err != nil {
		return domain.Activity{}, err
	}
	if err := domain.CheckBudget(activity.Date, used, activity.DurationMin); err != nil {
		return domain.Activity{}, err
	}

	const updateActivity = `UPDATE activities
        SET activity_name = $1, category = $2, duration_minutes = $3, activity_date = $4::date, updated_at = $5
        WHERE id = $6 AND user_id = $7`

	if _, err := tx.Exec(ctx, updateActivity,
		activity.Name,
		activity.Category,
		activity.DurationMin,
		activity.Date,
		activity.UpdatedAt,
		activity.ID,
		activity.UserID,
	); err != nil {
		return domain.Activity{}, err
	}

	if err := insertOutbox(ctx, tx, activity, events.TypeActivityUpdated, events.ActivityUpdated{
		ActivityID:   activity.ID,
		UserID:       activity.UserID,
		ActivityDate: activity.Date,
		PreviousDate: previousDate,
		ActivityName: activity.Name,
		Category:     activity.Category,
		DurationMin:  activity.DurationMin,
		OccurredAt:   activity.UpdatedAt,
	}); err != nil {
		return domain.Activity{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Activity{}, err
	}
	return activity, nil
}

// Delete removes the activity when it belongs to userID. A missing row is reported as
// (false, nil).
func (r *Repository) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var activity domain.Activity
	err = tx.QueryRow(ctx, `DELETE FROM activities WHERE id = $1 AND user_id = $2
        RETURNING id, user_id, to_char(activity_date, 'YYYY-MM-DD'), NOW()`, id, userID,
	).Scan(&activity.ID, &activity.UserID, &activity.Date, &activity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, tx.Commit(ctx)
		}
		return false, err
	}

	if err := insertOutbox(ctx, tx, activity, events.TypeActivityDeleted, events.ActivityDeleted{
		ActivityID:   activity.ID,
		UserID:       activity.UserID,
		ActivityDate: activity.Date,
		OccurredAt:   activity.UpdatedAt,
	}); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// lockDay serializes writers of one (user, date) pair until the transaction ends.
func lockDay(ctx context.Context, tx pgx.Tx, userID, date string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`, userID, date)
	return err
}

func dayTotal(ctx context.Context, tx pgx.Tx, userID, date string, excludeID int64) (int, error) {
	var total int64
	err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(duration_minutes), 0)
        FROM activities WHERE user_id = $1 AND activity_date = $2::date AND id <> $3`,
		userID, date, excludeID,
	).Scan(&total)
	return int(total), err
}

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.Name, &a.Category, &a.DurationMin, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func insertOutbox(ctx context.Context, tx pgx.Tx, activity domain.Activity, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	dedupeKey := fmt.Sprintf("%d:%s:%d", activity.ID, eventType, activity.UpdatedAt.UnixNano())

	const stmt = `INSERT INTO outbox (user_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		activity.UserID,
		"activity",
		strconv.FormatInt(activity.ID, 10),
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		meta.PartitionKeyFn(activity),
		body,
		dedupeKey,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(domain.Activity) string
}

func dayPartitionKey(a domain.Activity) string {
	return fmt.Sprintf("%s:%s", a.UserID, a.Date)
}

var eventCatalog = map[string]EventMetadata{
	events.TypeActivityCreated: {
		Topic:          events.TopicActivityEvents,
		SchemaSubject:  "activity_created-value",
		PartitionKeyFn: dayPartitionKey,
	},
	events.TypeActivityUpdated: {
		Topic:          events.TopicActivityEvents,
		SchemaSubject:  "activity_updated-value",
		PartitionKeyFn: dayPartitionKey,
	},
	events.TypeActivityDeleted: {
		Topic:          events.TopicActivityEvents,
		SchemaSubject:  "activity_deleted-value",
		PartitionKeyFn: dayPartitionKey,
	},
}
