package catalog

// MealType is the meal a food is usually eaten at.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
	Dessert   MealType = "dessert"
)

// MealTypes lists every valid meal type.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack, Dessert}

// Valid reports whether m is one of the known meal types.
func (m MealType) Valid() bool {
	switch m {
	case Breakfast, Lunch, Dinner, Snack, Dessert:
		return true
	}
	return false
}

// compatibility is symmetric: snack pairs with everything, lunch and dinner
// pair with each other, breakfast and dessert only with themselves.
var compatibility = map[MealType]map[MealType]bool{
	Snack:     {Snack: true, Breakfast: true, Lunch: true, Dinner: true, Dessert: true},
	Lunch:     {Lunch: true, Dinner: true, Snack: true},
	Dinner:    {Dinner: true, Lunch: true, Snack: true},
	Breakfast: {Breakfast: true, Snack: true},
	Dessert:   {Dessert: true, Snack: true},
}

// Compatible reports whether an item with affinity item may be served when
// the user asked for requested.
func Compatible(requested, item MealType) bool {
	return compatibility[requested][item]
}

// tasteTags are the generic taste/texture tags. Any other tag is a type tag
// and defines a food's family.
var tasteTags = map[string]bool{
	"sweet":   true,
	"savory":  true,
	"salty":   true,
	"spicy":   true,
	"sour":    true,
	"bitter":  true,
	"tangy":   true,
	"cold":    true,
	"warm":    true,
	"creamy":  true,
	"crunchy": true,
	"crispy":  true,
	"chewy":   true,
	"soft":    true,
	"fresh":   true,
	"light":   true,
	"hearty":  true,
	"cheesy":  true,
	"juicy":   true,
	"smoky":   true,
	"rich":    true,
	"fried":   true,
	"frozen":  true,
}

// IsTasteTag reports whether tag is a generic taste/texture tag.
func IsTasteTag(tag string) bool {
	return tasteTags[CanonicalCategory(tag)] || tasteTags[tag]
}

var categoryAliases = map[string]string{
	"salty":  "savory",
	"crispy": "crunchy",
}

// CanonicalCategory folds accepted synonyms onto one tag so "salty" and
// "savory" compare equal.
func CanonicalCategory(tag string) string {
	if canon, ok := categoryAliases[tag]; ok {
		return canon
	}
	return tag
}
