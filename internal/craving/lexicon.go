package craving

import (
	"regexp"
	"strings"

	"Eat42/internal/catalog"
)

/* =================================================================================
							NEGATION SIGNALS
=================================================================================*/

// negationCues negate the tokens that follow them.
var negationCues = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"n't":     true,
	"dont":    true,
	"without": true,
	"except":  true,
	"nothing": true,
	"none":    true,
	"neither": true,
	"nor":     true,
}

// clauseCues negate a verb phrase, so their scope runs to the end of the
// clause rather than a fixed window ("i don't really feel like eating pizza").
var clauseCues = map[string]bool{"not": true, "n't": true, "never": true, "dont": true}

// hedges are adverbs skipped when looking for the head a clause cue negates.
var hedges = map[string]bool{
	"really": true, "actually": true, "even": true, "just": true,
	"exactly": true, "particularly": true, "necessarily": true, "totally": true,
}

// neutralHeads negate only themselves: "i don't mind pizza" still wants it.
var neutralHeads = map[string]bool{
	"mind": true, "care": true, "know": true, "matter": true, "sure": true,
}

// negationVerbs negate their object. Every inflection is listed so the
// tokenizer never has to lemmatize.
var negationVerbs = map[string]bool{
	"hate": true, "hates": true, "hated": true, "hating": true,
	"dislike": true, "dislikes": true, "disliked": true, "disliking": true,
	"avoid": true, "avoids": true, "avoided": true, "avoiding": true,
	"skip": true, "skips": true, "skipped": true, "skipping": true,
	"exclude": true, "excludes": true, "excluded": true, "excluding": true,
	"reject": true, "rejects": true, "rejected": true, "rejecting": true,
	"detest": true, "detests": true, "detested": true, "detesting": true,
	"loathe": true, "loathes": true, "loathed": true, "loathing": true,
}

// scopeBreakers end a negation scope. Contrast words count too, so
// "i hate mushrooms but love steak" keeps the steak.
var scopeBreakers = map[string]bool{
	",": true, ".": true, "!": true, "?": true, ";": true,
	"but": true, "however": true,
}

// positiveSignals re-open a negated scope ("no pizza, maybe pasta").
var positiveSignals = map[string]bool{"maybe": true, "perhaps": true, "possibly": true, "or": true}

const (
	cueScope      = 4
	positiveScope = 4
	exclusionTail = 50
)

// exclusionPhrases open a character span in which every mention is excluded.
var exclusionPhrases = []string{
	"don't want", "dont want", "do not want",
	"don't like", "dont like", "do not like",
	"don't feel like", "dont feel like",
	"not in the mood for", "not craving",
	"can't stand", "cant stand", "cannot stand",
	"sick of", "tired of",
	"allergic to", "intolerant to",
	"stay away from", "keep away from",
	"anything but", "but not",
}

// exclusionStops cut an exclusion span short.
var exclusionStops = []string{".", ",", "!", "?", " but ", " and i ", " however "}

/* =================================================================================
							PHRASE TABLES
=================================================================================*/

var categoryKeywords = map[string][]string{
	"sweet":     {"sweet", "sugary", "sweets"},
	"savory":    {"savory", "savoury"},
	"salty":     {"salty", "salt"},
	"spicy":     {"spicy", "spice", "fiery"},
	"cold":      {"cold", "chilled", "icy", "refreshing"},
	"warm":      {"warm", "hot", "warming", "cozy"},
	"creamy":    {"creamy", "smooth"},
	"crunchy":   {"crunchy", "crispy", "crisp"},
	"fresh":     {"fresh"},
	"light":     {"light"},
	"hearty":    {"hearty", "filling", "heavy"},
	"cheesy":    {"cheesy"},
	"tangy":     {"sour", "tangy"},
	"chocolate": {"chocolatey", "chocolaty"},
	"seafood":   {"seafood"},
	"meat":      {"meat", "meaty"},
	"fruit":     {"fruity", "fruit"},
	"vegetable": {"veggies", "veggie", "vegetables"},
	"dairy":     {"dairy"},
}

var mealTypeKeywords = map[catalog.MealType][]string{
	catalog.Breakfast: {"breakfast", "brunch", "brekkie"},
	catalog.Lunch:     {"lunch", "lunchtime"},
	catalog.Dinner:    {"dinner", "supper"},
	catalog.Snack:     {"snack", "snacking", "nishnush"},
	catalog.Dessert:   {"dessert"},
}

// mealTypeSynonyms are only consulted when answering "snack or meal?".
var mealTypeSynonyms = map[catalog.MealType][]string{
	catalog.Snack:     {"snack", "snacking", "between meals", "quick bite", "nishnush", "sweet treat"},
	catalog.Breakfast: {"breakfast", "morning", "brekkie"},
	catalog.Lunch:     {"lunch", "midday", "noon"},
	catalog.Dinner:    {"dinner", "supper", "evening", "tonight"},
	catalog.Dessert:   {"dessert", "after dinner", "sweet ending"},
}

var intensityKeywords = map[Intensity][]string{
	IntensityHigh: {"really", "so much", "badly", "desperately", "dying for", "very", "starving", "seriously"},
	IntensityLow:  {"a little", "a bit", "slightly", "kind of", "kinda", "somewhat"},
}

// foodContext marks an utterance as being about food even when nothing in
// the catalog matched.
var foodContext = []string{
	"eat", "eating", "food", "hungry", "starving", "craving", "crave",
	"snack", "meal", "breakfast", "lunch", "dinner", "dessert", "drink",
	"taste", "bite", "treat", "munch",
}

var unsurePhrases = []string{
	"idk", "i don't know", "i dont know", "i do not know", "not sure",
	"no idea", "surprise me", "dunno", "you choose", "you pick", "you decide",
	"up to you", "no preference", "can't decide", "cant decide",
	"anything is fine", "anything works", "don't care", "dont care",
}

var unsurePattern = func() *regexp.Regexp {
	quoted := make([]string, len(unsurePhrases))
	for i, p := range unsurePhrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}()

// isUnsure reports whether normalized text defers the choice to us.
func isUnsure(text string) bool {
	return unsurePattern.MatchString(text)
}

// humanList renders ["a","b","c"] as "a, b, and c".
func humanList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
