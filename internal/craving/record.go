package craving

import (
	"slices"

	"Eat42/internal/catalog"
	"Eat42/internal/daypart"
	"Eat42/internal/metabolic"
)

// Intensity is how strongly the user wants the food.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// Ordinal encodes the intensity for the safety model: 0 unknown, 1 low,
// 2 medium, 3 high.
func (i Intensity) Ordinal() int {
	switch i {
	case IntensityLow:
		return 1
	case IntensityMedium:
		return 2
	case IntensityHigh:
		return 3
	}
	return 0
}

// MissingField names what a follow-up question is asking for.
type MissingField string

const (
	MissingFood     MissingField = "food"
	MissingMealType MissingField = "meal_type"
)

// Record is a structured craving. Slices are never nil so they encode as
// empty JSON arrays.
type Record struct {
	Foods              []string          `json:"foods"`
	ExcludedFoods      []string          `json:"excluded_foods"`
	Categories         []string          `json:"categories"`
	ExcludedCategories []string          `json:"excluded_categories"`
	MealType           catalog.MealType  `json:"meal_type,omitempty"`
	Intensity          Intensity         `json:"intensity"`
	TimeOfDay          daypart.TimeOfDay `json:"time_of_day,omitempty"`
}

func newRecord() Record {
	return Record{
		Foods:              []string{},
		ExcludedFoods:      []string{},
		Categories:         []string{},
		ExcludedCategories: []string{},
		Intensity:          IntensityMedium,
	}
}

// Wants reports whether the record names a food or category.
func (r Record) Wants() bool {
	return len(r.Foods) > 0 || len(r.Categories) > 0
}

// Excludes reports whether the record names anything to avoid.
func (r Record) Excludes() bool {
	return len(r.ExcludedFoods) > 0 || len(r.ExcludedCategories) > 0
}

// clone returns a deep copy.
func (r Record) clone() Record {
	r.Foods = slices.Clone(r.Foods)
	r.ExcludedFoods = slices.Clone(r.ExcludedFoods)
	r.Categories = slices.Clone(r.Categories)
	r.ExcludedCategories = slices.Clone(r.ExcludedCategories)
	return r.settle()
}

// settle removes every wanted entry that is also excluded and replaces nil
// slices with empty ones. Categories compare through their aliases.
func (r Record) settle() Record {
	r.Foods = without(r.Foods, r.ExcludedFoods, func(s string) string { return s })
	r.Categories = without(r.Categories, r.ExcludedCategories, catalog.CanonicalCategory)

	for _, s := range []*[]string{&r.Foods, &r.ExcludedFoods, &r.Categories, &r.ExcludedCategories} {
		if *s == nil {
			*s = []string{}
		}
	}
	if r.Intensity == "" {
		r.Intensity = IntensityMedium
	}
	return r
}

// Result is the outcome of one extraction turn. When Complete is false the
// caller should relay Question; OffTopic results carry no Missing field.
type Result struct {
	Complete bool
	OffTopic bool
	Question string
	Missing  MissingField
	Record   Record
	Context  metabolic.Context
}

// appendUnique appends each item not already present, keeping first-seen
// order.
func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		if !slices.Contains(dst, it) {
			dst = append(dst, it)
		}
	}
	return dst
}

func without(items, drop []string, key func(string) string) []string {
	out := items[:0:0]
	for _, it := range items {
		k := key(it)
		if slices.ContainsFunc(drop, func(d string) bool { return key(d) == k }) {
			continue
		}
		out = append(out, it)
	}
	return out
}
