// Package domain defines the business logic for the activity service.
package domain

import (
	"context"
	"errors"
	"time"

	"example.com/timeflow/internal/observability"
)

// ActivityRepository captures persistence operations. Create and Update must run the
// budget check and the write atomically with respect to other writers of the same
// (user, date) pair.
type ActivityRepository interface {
	Create(ctx context.Context, activity Activity) (Activity, error)
	ListByDate(ctx context.Context, userID, date string) ([]Activity, error)
	Update(ctx context.Context, activity Activity) (Activity, error)
	Delete(ctx context.Context, id int64, userID string) (bool, error)
}

// Service orchestrates activity workflows.
type Service struct {
	repo ActivityRepository
	now  func() time.Time
}

// ServiceOption configures optional Service behaviour.
type ServiceOption func(*Service)

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a Service.
func NewService(repo ActivityRepository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateActivity validates the input and stores a new activity owned by userID.
func (s *Service) CreateActivity(ctx context.Context, userID string, input ActivityInput) (*Activity, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		observability.RecordActivityWrite(observability.OpCreate, outcome(err))
		return nil, err
	}

	now := s.now().UTC()
	activity := input.apply(Activity{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	})

	created, err := s.repo.Create(ctx, activity)
	observability.RecordActivityWrite(observability.OpCreate, outcome(err))
	if err != nil {
		return nil, err
	}
	observability.RecordActivityPersisted(created.UpdatedAt)
	return &created, nil
}

// ListActivities returns the user's activities for date in creation order.
func (s *Service) ListActivities(ctx context.Context, userID, date string) ([]Activity, error) {
	return s.repo.ListByDate(ctx, userID, date)
}

// UpdateActivity replaces every mutable field of the activity identified by id.
func (s *Service) UpdateActivity(ctx context.Context, id int64, userID string, input ActivityInput) (*Activity, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		observability.RecordActivityWrite(observability.OpUpdate, outcome(err))
		return nil, err
	}

	activity := input.apply(Activity{
		ID:        id,
		UserID:    userID,
		UpdatedAt: s.now().UTC(),
	})

	updated, err := s.repo.Update(ctx, activity)
	observability.RecordActivityWrite(observability.OpUpdate, outcome(err))
	if err != nil {
		return nil, err
	}
	observability.RecordActivityPersisted(updated.UpdatedAt)
	return &updated, nil
}

// DeleteActivity removes the activity if it exists and belongs to userID. Deleting a
// missing or foreign activity is not an error.
func (s *Service) DeleteActivity(ctx context.Context, id int64, userID string) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		observability.RecordActivityWrite(observability.OpDelete, outcome(err))
		return err
	}
	if deleted {
		observability.RecordActivityWrite(observability.OpDelete, observability.OutcomeOK)
	} else {
		observability.RecordActivityWrite(observability.OpDelete, observability.OutcomeNoop)
	}
	return nil
}

// DailySummary computes category totals and the timeline for the user's day.
func (s *Service) DailySummary(ctx context.Context, userID, date string) (DailySummary, error) {
	activities, err := s.repo.ListByDate(ctx, userID, date)
	if err != nil {
		return DailySummary{}, err
	}
	return Summarize(date, activities), nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, ErrBudgetExceeded):
		return observability.OutcomeBudgetExceeded
	case errors.Is(err, ErrActivityNotFound):
		return observability.OutcomeNotFound
	case errors.Is(err, ErrInvalidInput):
		return observability.OutcomeInvalid
	default:
		return observability.OutcomeError
	}
}
