package recommender

import (
	"slices"

	"Eat42/internal/catalog"
	"Eat42/internal/craving"
)

// stage is one hard constraint of the filter pipeline.
type stage struct {
	name string
	keep func(catalog.Entry) bool
}

// excludedTags are tags the pipeline hides unless the exact item is asked for.
var excludedTags = []string{"condiment", "drink"}

// Filter narrows the catalog to the items rec allows, in catalog order.
func Filter(cat *catalog.Catalog, rec craving.Record) []catalog.Entry {
	return runStages(cat.Entries(), stages(cat, rec), nil)
}

func runStages(pool []catalog.Entry, stages []stage, observe func(name string, left int)) []catalog.Entry {
	for _, s := range stages {
		pool = slices.DeleteFunc(pool, func(e catalog.Entry) bool { return !s.keep(e) })
		if observe != nil {
			observe(s.name, len(pool))
		}
	}
	return pool
}

func stages(cat *catalog.Catalog, rec craving.Record) []stage {
	requested := func(e catalog.Entry) bool { return slices.Contains(rec.Foods, e.Name) }
	excludedCategories := expandExclusions(cat, rec)

	out := []stage{
		{
			name: "condiments_and_drinks",
			keep: func(e catalog.Entry) bool { return requested(e) || !e.SharesAny(excludedTags) },
		},
		{
			name: "excluded_foods",
			keep: func(e catalog.Entry) bool { return !slices.Contains(rec.ExcludedFoods, e.Name) },
		},
		{
			name: "excluded_categories",
			keep: func(e catalog.Entry) bool { return !e.SharesAny(excludedCategories) },
		},
	}

	if len(rec.Categories) > 0 {
		out = append(out, stage{
			name: "wanted_categories",
			keep: func(e catalog.Entry) bool { return e.SharesAny(rec.Categories) },
		})
	}

	if rec.MealType != "" {
		out = append(out, stage{
			name: "meal_type",
			keep: func(e catalog.Entry) bool {
				return requested(e) || catalog.Compatible(rec.MealType, e.MealType)
			},
		})
	}

	return out
}

// expandExclusions adds the type tags of every excluded food to the excluded
// categories, so ruling out one pasta rules out every pasta.
func expandExclusions(cat *catalog.Catalog, rec craving.Record) []string {
	out := slices.Clone(rec.ExcludedCategories)
	for _, name := range rec.ExcludedFoods {
		e, ok := cat.Lookup(name)
		if !ok {
			continue
		}
		for _, tag := range e.TypeTags() {
			if !slices.Contains(out, tag) {
				out = append(out, tag)
			}
		}
	}
	return out
}
