package domain

import (
	"strings"
	"time"
)

// DailyBudgetMinutes is the number of minutes a user can log against one calendar date.
const DailyBudgetMinutes = 1440

// DateLayout is the format of activity dates on the wire and in storage.
const DateLayout = "2006-01-02"

// Activity is a single block of time a user logged against a calendar date.
type Activity struct {
	ID          int64
	UserID      string
	Date        string
	Name        string
	Category    *string
	DurationMin int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryName returns the category text, or an empty string when none was given.
func (a Activity) CategoryName() string {
	if a.Category == nil {
		return ""
	}
	return *a.Category
}

// ActivityInput carries the mutable fields of an activity as supplied by a client.
type ActivityInput struct {
	Name        string  `json:"activity_name" validate:"required"`
	Category    *string `json:"category,omitempty"`
	DurationMin int     `json:"duration_minutes" validate:"min=1,max=1440"`
	Date        string  `json:"activity_date" validate:"activity_date"`
}

// Normalize drops blank categories so that they are stored as absent.
func (in ActivityInput) Normalize() ActivityInput {
	if in.Category != nil && strings.TrimSpace(*in.Category) == "" {
		in.Category = nil
	}
	return in
}

func (in ActivityInput) apply(a Activity) Activity {
	a.Name = in.Name
	a.Category = in.Category
	a.DurationMin = in.DurationMin
	a.Date = in.Date
	return a
}
