package api

import (
	"time"

	"example.com/timeflow/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Type             string            `json:"type"`
	Detail           string            `json:"detail"`
	Fields           map[string]string `json:"fields,omitempty"`
	RemainingMinutes *int              `json:"remaining_minutes,omitempty"`
}

// CreateActivityResponse describes the response body for create.
type CreateActivityResponse struct {
	ID int64 `json:"id"`
}

// SuccessResponse acknowledges update, delete and logout.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ActivityView is the wire form of a stored activity.
type ActivityView struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"user_id"`
	ActivityDate    string    `json:"activity_date"`
	ActivityName    string    `json:"activity_name"`
	Category        *string   `json:"category"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CategoryTotalView is one slice of the category breakdown.
type CategoryTotalView struct {
	Category   string  `json:"category"`
	Minutes    int     `json:"minutes"`
	Hours      float64 `json:"hours"`
	Share      float64 `json:"share"`
	Label      string  `json:"label"`
	BadgeClass string  `json:"badge_class"`
	Color      string  `json:"color"`
}

// TimelineEntryView is one bar of the timeline.
type TimelineEntryView struct {
	ActivityID int64   `json:"activity_id"`
	Name       string  `json:"name"`
	Minutes    int     `json:"minutes"`
	Hours      float64 `json:"hours"`
	Color      string  `json:"color"`
}

// DailySummaryView is the body of GET /api/activities/summary.
type DailySummaryView struct {
	Date             string              `json:"date"`
	TotalMinutes     int                 `json:"total_minutes"`
	RemainingMinutes int                 `json:"remaining_minutes"`
	PercentUsed      float64             `json:"percent_used"`
	ActivityCount    int                 `json:"activity_count"`
	Categories       []CategoryTotalView `json:"categories"`
	Timeline         []TimelineEntryView `json:"timeline"`
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:              a.ID,
		UserID:          a.UserID,
		ActivityDate:    a.Date,
		ActivityName:    a.Name,
		Category:        a.Category,
		DurationMinutes: a.DurationMin,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toSummaryView(s domain.DailySummary) DailySummaryView {
	view := DailySummaryView{
		Date:             s.Date,
		TotalMinutes:     s.TotalMinutes,
		RemainingMinutes: s.RemainingMinutes,
		PercentUsed:      s.PercentUsed,
		ActivityCount:    s.ActivityCount,
		Categories:       make([]CategoryTotalView, 0, len(s.Categories)),
		Timeline:         make([]TimelineEntryView, 0, len(s.Timeline)),
	}
	for _, c := range s.Categories {
		view.Categories = append(view.Categories, CategoryTotalView{
			Category:   c.Name,
			Minutes:    c.Minutes,
			Hours:      c.Hours,
			Share:      c.Share,
			Label:      c.Style.Label,
			BadgeClass: c.Style.BadgeClass,
			Color:      c.Style.Color,
		})
	}
	for _, t := range s.Timeline {
		view.Timeline = append(view.Timeline, TimelineEntryView{
			ActivityID: t.ActivityID,
			Name:       t.Label,
			Minutes:    t.Minutes,
			Hours:      t.Hours,
			Color:      t.Color,
		})
	}
	return view
}
