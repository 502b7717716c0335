// Package daypart buckets a wall-clock reading into a coarse time of day.
package daypart

import (
	"time"

	"Eat42/internal/catalog"
)

// TimeOfDay is a coarse bucket of the day. The zero value means unknown.
type TimeOfDay string

const (
	Unknown   TimeOfDay = ""
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// DefaultTimezone is used for buckets unless a caller configures another.
const DefaultTimezone = "Asia/Jerusalem"

// DefaultLocation loads DefaultTimezone, or UTC when the zone database is
// unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// At returns the bucket for t in loc: 05-12 morning, 12-17 afternoon,
// 17-21 evening, otherwise night. A nil loc keeps t's own location.
func At(t time.Time, loc *time.Location) TimeOfDay {
	if loc != nil {
		t = t.In(loc)
	}

	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}

// ForMealType maps a meal to the bucket it is normally eaten in. Snacks have
// no fixed bucket.
func ForMealType(m catalog.MealType) (TimeOfDay, bool) {
	switch m {
	case catalog.Breakfast:
		return Morning, true
	case catalog.Lunch:
		return Afternoon, true
	case catalog.Dinner, catalog.Dessert:
		return Evening, true
	}
	return Unknown, false
}

// MealFor maps the current bucket to the meal a user most likely means by a
// bare "meal".
func MealFor(tod TimeOfDay) catalog.MealType {
	switch tod {
	case Morning:
		return catalog.Breakfast
	case Afternoon:
		return catalog.Lunch
	default:
		return catalog.Dinner
	}
}

// Ordinal encodes the bucket for the safety model: 0 unknown, 1 morning,
// 2 afternoon, 3 evening, 4 night.
func (t TimeOfDay) Ordinal() int {
	switch t {
	case Morning:
		return 1
	case Afternoon:
		return 2
	case Evening:
		return 3
	case Night:
		return 4
	}
	return 0
}
