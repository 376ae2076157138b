package domain

import "strings"

// Category is one of the suggested activity classifications. Stored categories are
// free text; Category only drives presentation.
type Category int

const (
	CategoryWork Category = iota
	CategoryStudy
	CategorySleep
	CategoryExercise
	CategoryEntertainment
	CategoryMeals
	CategoryCommute
	CategorySocial
	CategoryHobbies
	CategoryOther
)

// CategoryStyle holds the display attributes of a category.
type CategoryStyle struct {
	Label      string `json:"label"`
	BadgeClass string `json:"badge_class"`
	Color      string `json:"color"`
}

var categoryStyles = [...]CategoryStyle{
	CategoryWork:          {Label: "Work", BadgeClass: "bg-blue-100 text-blue-700", Color: "#3B82F6"},
	CategoryStudy:         {Label: "Study", BadgeClass: "bg-green-100 text-green-700", Color: "#10B981"},
	CategorySleep:         {Label: "Sleep", BadgeClass: "bg-indigo-100 text-indigo-700", Color: "#6366F1"},
	CategoryExercise:      {Label: "Exercise", BadgeClass: "bg-red-100 text-red-700", Color: "#EF4444"},
	CategoryEntertainment: {Label: "Entertainment", BadgeClass: "bg-purple-100 text-purple-700", Color: "#8B5CF6"},
	CategoryMeals:         {Label: "Meals", BadgeClass: "bg-orange-100 text-orange-700", Color: "#F97316"},
	CategoryCommute:       {Label: "Commute", BadgeClass: "bg-yellow-100 text-yellow-700", Color: "#F59E0B"},
	CategorySocial:        {Label: "Social", BadgeClass: "bg-pink-100 text-pink-700", Color: "#EC4899"},
	CategoryHobbies:       {Label: "Hobbies", BadgeClass: "bg-teal-100 text-teal-700", Color: "#14B8A6"},
	CategoryOther:         {Label: "Other", BadgeClass: "bg-gray-100 text-gray-700", Color: "#84CC16"},
}

// Categories lists the suggested categories in display order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryStyles))
	for c := CategoryWork; c <= CategoryOther; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCategory maps free text to a Category, falling back to CategoryOther.
func ParseCategory(value string) Category {
	value = strings.TrimSpace(value)
	for _, c := range Categories() {
		if strings.EqualFold(categoryStyles[c].Label, value) {
			return c
		}
	}
	return CategoryOther
}

// Style returns the display attributes of c. Out of range values render as CategoryOther.
func (c Category) Style() CategoryStyle {
	if c < CategoryWork || c > CategoryOther {
		return categoryStyles[CategoryOther]
	}
	return categoryStyles[c]
}

func (c Category) String() string {
	return c.Style().Label
}
