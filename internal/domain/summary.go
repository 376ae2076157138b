package domain

import "math"

// UncategorizedLabel names the bucket for activities logged without a category.
const UncategorizedLabel = "Uncategorized"

const timelineLabelRunes = 15

// Palette is the chart color cycle used for timeline bars.
var Palette = []string{
	"#8B5CF6",
	"#EC4899",
	"#3B82F6",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#14B8A6",
	"#F97316",
	"#6366F1",
	"#84CC16",
}

// CategoryTotal aggregates the minutes logged under one category on a day.
type CategoryTotal struct {
	Name    string
	Minutes int
	Hours   float64
	Share   float64
	Style   CategoryStyle
}

// TimelineEntry is one bar of the per-day activity timeline.
type TimelineEntry struct {
	ActivityID int64
	Label      string
	Minutes    int
	Hours      float64
	Color      string
}

// DailySummary is the analytics view of a single user's day.
type DailySummary struct {
	Date             string
	TotalMinutes     int
	RemainingMinutes int
	PercentUsed      float64
	ActivityCount    int
	Categories       []CategoryTotal
	Timeline         []TimelineEntry
}

// Summarize derives the analytics view from a day's activities, which must already be
// in creation order.
func Summarize(date string, activities []Activity) DailySummary {
	summary := DailySummary{
		Date:          date,
		ActivityCount: len(activities),
		Categories:    make([]CategoryTotal, 0),
		Timeline:      make([]TimelineEntry, 0, len(activities)),
	}

	index := make(map[string]int)
	for i, a := range activities {
		summary.TotalMinutes += a.DurationMin

		name := a.CategoryName()
		if name == "" {
			name = UncategorizedLabel
		}
		pos, ok := index[name]
		if !ok {
			pos = len(summary.Categories)
			index[name] = pos
			summary.Categories = append(summary.Categories, CategoryTotal{
				Name:  name,
				Style: ParseCategory(name).Style(),
			})
		}
		summary.Categories[pos].Minutes += a.DurationMin

		summary.Timeline = append(summary.Timeline, TimelineEntry{
			ActivityID: a.ID,
			Label:      truncateLabel(a.Name),
			Minutes:    a.DurationMin,
			Hours:      hours(a.DurationMin),
			Color:      Palette[i%len(Palette)],
		})
	}

	for i := range summary.Categories {
		ct := &summary.Categories[i]
		ct.Hours = hours(ct.Minutes)
		if summary.TotalMinutes > 0 {
			ct.Share = float64(ct.Minutes) / float64(summary.TotalMinutes)
		}
	}

	summary.RemainingMinutes = remaining(summary.TotalMinutes)
	percent := float64(summary.TotalMinutes) / DailyBudgetMinutes * 100
	summary.PercentUsed = math.Min(roundTenth(percent), 100)
	return summary
}

func truncateLabel(name string) string {
	runes := []rune(name)
	if len(runes) <= timelineLabelRunes {
		return name
	}
	return string(runes[:timelineLabelRunes]) + "..."
}

func hours(minutes int) float64 {
	return roundTenth(float64(minutes) / 60)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
