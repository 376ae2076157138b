// Package memory provides an in-process activity store for tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"example.com/timeflow/internal/domain"
)

// Repository keeps activities in a map. Writers of the same (user, date) pair are
// serialized by a per-day mutex so the budget check and the write happen as one step.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.Activity

	locksMu  sync.Mutex
	dayLocks map[string]*dayLock
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		rows:     make(map[int64]domain.Activity),
		dayLocks: make(map[string]*dayLock),
	}
}

// Create implements domain.ActivityRepository.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return domain.Activity{}, err
	}

	unlock := r.lockDay(activity.UserID, activity.Date)
	defer unlock()

	used := r.dayTotal(activity.UserID, activity.Date, 0)
	if err := domain.CheckBudget(activity.Date, used, activity.DurationMin); err != nil {
		return domain.Activity{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	activity.ID = r.nextID
	activity.Category = cloneString(activity.Category)
	r.rows[activity.ID] = activity
	return activity, nil
}

// ListByDate implements domain.ActivityRepository.
func (r *Repository) ListByDate(ctx context.Context, userID, date string) ([]domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]domain.Activity, 0)
	for _, row := range r.rows {
		if row.UserID == userID && row.Date == date {
			row.Category = cloneString(row.Category)
			out = append(out, row)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update implements domain.ActivityRepository. The budget is checked against the new
// date with the row's own current minutes excluded.
func (r *Repository) Update(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return domain.Activity{}, err
	}

	unlock := r.lockDay(activity.UserID, activity.Date)
	defer unlock()

	r.mu.RLock()
	existing, ok := r.rows[activity.ID]
	r.mu.RUnlock()
	if !ok || existing.UserID != activity.UserID {
		return domain.Activity{}, domain.ErrActivityNotFound
	}

	used := r.dayTotal(activity.UserID, activity.Date, activity.ID)
	if err := domain.CheckBudget(activity.Date, used, activity.DurationMin); err != nil {
		return domain.Activity{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.rows[activity.ID]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	current.Name = activity.Name
	current.Category = cloneString(activity.Category)
	current.DurationMin = activity.DurationMin
	current.Date = activity.Date
	current.UpdatedAt = activity.UpdatedAt
	r.rows[current.ID] = current
	return current, nil
}

// Delete implements domain.ActivityRepository.
func (r *Repository) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *Repository) dayTotal(userID, date string, excludeID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for id, row := range r.rows {
		if id != excludeID && row.UserID == userID && row.Date == date {
			total += row.DurationMin
		}
	}
	return total
}

func (r *Repository) lockDay(userID, date string) func() {
	key := userID + "|" + date

	r.locksMu.Lock()
	lock, ok := r.dayLocks[key]
	if !ok {
		lock = &dayLock{}
		r.dayLocks[key] = lock
	}
	lock.refs++
	r.locksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		r.locksMu.Lock()
		defer r.locksMu.Unlock()
		lock.refs--
		if lock.refs == 0 {
			delete(r.dayLocks, key)
		}
	}
}

// dayLock is shared by the writers of one user day and dropped once none hold it.
type dayLock struct {
	mu   sync.Mutex
	refs int
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
