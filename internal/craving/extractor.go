/*
Package craving turns a free-text craving into a structured Record. It owns
the multi-turn follow-up state: when a turn leaves the food or meal type
unknown, the partial record is parked per user until the next turn.
*/
package craving

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"Eat42/internal/catalog"
	"Eat42/internal/daypart"
	"Eat42/internal/metabolic"
)


const (
	questionGeneric     = "What kind of food are you craving? For example: chocolate, pizza, something sweet..."
	questionOffTopic    = "I'm here to help with food cravings! Tell me what you're in the mood to eat."
	questionUnsure      = "No problem! Are you in the mood for something sweet or savory? Or say \"surprise me\" again and I'll pick for you."
	questionMealType    = "Is this for a snack, breakfast, lunch, or dinner?"
	questionNotCaught   = "I didn't catch that. What food are you craving? (e.g., chocolate, pizza, chips)"
	questionExcludedFmt = "Got it, no %s! What would you like instead?"
	questionOkayNoFmt   = "Okay, no %s. What would you like instead?"
	questionCategoryFmt = "Something %s sounds good! Is this for a snack or a meal (breakfast/lunch/dinner)?"
)

// Extractor parses utterances against a catalog. It is safe for concurrent
// use by different users.
type Extractor struct {
	catalog *catalog.Catalog
	pending *PendingTable
	now     func() time.Time
	loc     *time.Location
	log     zerolog.Logger

	foods      *phraseMatcher
	categories *phraseMatcher
	mealTypes  *phraseMatcher
	synonyms   *phraseMatcher
	intensity  *phraseMatcher
	context    *phraseMatcher
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock replaces time.Now, mainly for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(x *Extractor) { x.now = now }
}

// WithLocation sets the timezone used for time-of-day buckets.
func WithLocation(loc *time.Location) Option {
	return func(x *Extractor) {
		if loc != nil {
			x.loc = loc
		}
	}
}

// WithLogger sets the logger for state transitions.
func WithLogger(l zerolog.Logger) Option {
	return func(x *Extractor) { x.log = l }
}

// WithPendingTTL overrides PendingTTL.
func WithPendingTTL(ttl time.Duration) Option {
	return func(x *Extractor) { x.pending = NewPendingTable(ttl) }
}

// NewExtractor builds the phrase matchers for cat.
func NewExtractor(cat *catalog.Catalog, opts ...Option) *Extractor {
	x := &Extractor{
		catalog: cat,
		pending: NewPendingTable(PendingTTL),
		now:     time.Now,
		loc:     daypart.DefaultLocation(),
		log:     log.Logger,

		foods:      newPhraseMatcher(),
		categories: newPhraseMatcher(),
		mealTypes:  newPhraseMatcher(),
		synonyms:   newPhraseMatcher(),
		intensity:  newPhraseMatcher(),
		context:    newPhraseMatcher(),
	}
	for _, opt := range opts {
		opt(x)
	}

	for _, name := range cat.Names() {
		x.foods.add(name, name)
	}
	for _, c := range sortedKeys(categoryKeywords) {
		x.categories.add(c, categoryKeywords[c]...)
	}
	for _, m := range catalog.MealTypes {
		x.mealTypes.add(string(m), mealTypeKeywords[m]...)
		x.synonyms.add(string(m), mealTypeSynonyms[m]...)
	}
	for _, i := range []Intensity{IntensityHigh, IntensityLow} {
		x.intensity.add(string(i), intensityKeywords[i]...)
	}
	x.context.add("food", foodContext...)

	return x
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ClearPending drops any follow-up state for userID.
func (x *Extractor) ClearPending(userID string) {
	if x.pending.Delete(userID) {
		x.log.Debug().Str("user_id", userID).Msg("Pending extraction cleared")
	}
}

// HasPending reports whether userID has an unexpired follow-up waiting.
func (x *Extractor) HasPending(userID string) bool {
	_, ok := x.pending.Peek(userID, x.now())
	return ok
}

// Extract runs one conversational turn for userID.
func (x *Extractor) Extract(utterance string, mc metabolic.Context, userID string) Result {
	now := x.now()
	if n := x.pending.Sweep(now); n > 0 {
		x.log.Info().Int("count", n).Msg("Expired pending extractions dropped")
	}

	text := normalize(utterance)

	if p, ok := x.pending.Take(userID, now); ok {
		x.log.Debug().Str("user_id", userID).Str("missing", string(p.Missing)).Msg("Pending extraction consumed")
		if mc.IsZero() {
			mc = p.Context
		}
		return x.followUp(text, p, mc, userID, now)
	}

	return x.fresh(text, mc, userID, now)
}

/* =================================================================================
							TURN HANDLING
=================================================================================*/

func (x *Extractor) fresh(text string, mc metabolic.Context, userID string, now time.Time) Result {
	// 1. Undecided users get a prompt, keeping whatever they ruled out.
	if isUnsure(text) {
		a := x.analyze(text)
		rec := newRecord()
		rec.ExcludedFoods = a.record.ExcludedFoods
		rec.ExcludedCategories = a.record.ExcludedCategories
		x.log.Info().Str("user_id", userID).Msg("Unsure craving detected")
		return x.ask(userID, MissingFood, questionUnsure, rec, mc, now)
	}

	// 2. Parse foods, categories, meal type and intensity.
	a := x.analyze(text)
	rec := a.record

	// 3. Decide whether we know enough.
	switch {
	case !rec.Wants() && rec.Excludes():
		return x.ask(userID, MissingFood, fmt.Sprintf(questionExcludedFmt, exclusionSummary(rec)), rec, mc, now)

	case !rec.Wants() && !x.aboutFood(text):
		x.log.Info().Str("user_id", userID).Msg("Off-topic message")
		return Result{OffTopic: true, Question: questionOffTopic, Record: rec, Context: mc}

	case !rec.Wants():
		return x.ask(userID, MissingFood, questionGeneric, rec, mc, now)

	case len(rec.Foods) == 0 && rec.MealType == "":
		q := fmt.Sprintf(questionCategoryFmt, strings.Join(rec.Categories, " and "))
		return x.ask(userID, MissingMealType, q, rec, mc, now)
	}

	return x.complete(rec, mc, now)
}

func (x *Extractor) followUp(text string, p Pending, mc metabolic.Context, userID string, now time.Time) Result {
	prev := p.Record
	a := x.analyze(text)

	merged := prev.clone()
	merged.ExcludedFoods = appendUnique(merged.ExcludedFoods, a.record.ExcludedFoods...)
	merged.ExcludedCategories = appendUnique(merged.ExcludedCategories, a.record.ExcludedCategories...)

	// A second shrug hands the whole choice to the recommender.
	if isUnsure(text) {
		rec := newRecord()
		rec.ExcludedFoods = merged.ExcludedFoods
		rec.ExcludedCategories = merged.ExcludedCategories
		rec.MealType = prev.MealType
		if rec.MealType == "" {
			rec.MealType = a.explicitMealType
		}
		rec.Intensity = prev.Intensity
		x.log.Info().Str("user_id", userID).Msg("Unsure follow-up, deferring choice")
		return x.complete(rec, mc, now)
	}

	switch p.Missing {
	case MissingMealType:
		mt, ok := x.parseMealType(text, now)
		if !ok {
			x.log.Debug().Str("user_id", userID).Msg("Meal type still unknown")
			return x.ask(userID, MissingMealType, questionMealType, merged, mc, now)
		}
		merged.MealType = mt
		if a.intensityExplicit {
			merged.Intensity = a.record.Intensity
		}
		return x.complete(merged, mc, now)

	default:
		if a.record.Wants() {
			rec := a.record.clone()
			rec.ExcludedFoods = merged.ExcludedFoods
			rec.ExcludedCategories = merged.ExcludedCategories
			if rec.MealType == "" {
				rec.MealType = prev.MealType
			}
			if !a.intensityExplicit {
				rec.Intensity = prev.Intensity
			}
			if rec = rec.settle(); rec.Wants() {
				return x.complete(rec, mc, now)
			}
		}

		q := questionNotCaught
		if summary := exclusionSummary(a.record); summary != "" {
			q = fmt.Sprintf(questionOkayNoFmt, summary)
		}
		return x.ask(userID, MissingFood, q, merged, mc, now)
	}
}

// ask parks rec for userID and returns the follow-up question.
func (x *Extractor) ask(userID string, missing MissingField, question string, rec Record, mc metabolic.Context, now time.Time) Result {
	rec = rec.settle()
	x.pending.Put(userID, Pending{Record: rec.clone(), Missing: missing, Context: mc, Created: now})
	x.log.Info().Str("user_id", userID).Str("missing", string(missing)).Msg("Pending extraction created")

	return Result{Question: question, Missing: missing, Record: rec, Context: mc}
}

// complete stamps the time of day, preferring the one implied by the meal.
func (x *Extractor) complete(rec Record, mc metabolic.Context, now time.Time) Result {
	rec = rec.settle()
	if tod, ok := daypart.ForMealType(rec.MealType); ok {
		rec.TimeOfDay = tod
	} else {
		rec.TimeOfDay = daypart.At(now, x.loc)
	}
	return Result{Complete: true, Record: rec, Context: mc}
}

func exclusionSummary(rec Record) string {
	if len(rec.ExcludedFoods) > 0 {
		return humanList(rec.ExcludedFoods)
	}
	return humanList(rec.ExcludedCategories)
}

/* =================================================================================
							PARSING
=================================================================================*/

type analysis struct {
	record            Record
	explicitMealType  catalog.MealType
	intensityExplicit bool
}

func (x *Extractor) analyze(text string) analysis {
	tokens := tokenize(text)
	neg := resolveNegation(text, tokens)
	rec := newRecord()

	// Foods: longest non-overlapping mentions, split by negation.
	for _, m := range longestMatches(x.foods.find(tokens)) {
		if neg.negated(m) {
			rec.ExcludedFoods = appendUnique(rec.ExcludedFoods, m.label)
		} else {
			rec.Foods = appendUnique(rec.Foods, m.label)
		}
	}
	rec.Foods = without(rec.Foods, rec.ExcludedFoods, func(s string) string { return s })

	// Categories: explicit mentions first, then tags of wanted foods. An
	// explicit exclusion removes the category even when it was also wanted.
	var wanted, excluded []string
	for _, m := range x.categories.find(tokens) {
		if neg.negated(m) {
			excluded = appendUnique(excluded, m.label)
		} else {
			wanted = appendUnique(wanted, m.label)
		}
	}
	rec.Categories = appendUnique(rec.Categories, wanted...)
	for _, name := range rec.Foods {
		if e, ok := x.catalog.Lookup(name); ok {
			rec.Categories = appendUnique(rec.Categories, e.Categories...)
		}
	}
	rec.Categories = without(rec.Categories, excluded, catalog.CanonicalCategory)
	rec.ExcludedCategories = appendUnique(rec.ExcludedCategories, excluded...)

	a := analysis{}

	// Meal type: explicit mention, else the first wanted food's affinity.
	if m, ok := x.mealTypes.first(tokens); ok {
		a.explicitMealType = catalog.MealType(m.label)
		rec.MealType = a.explicitMealType
	} else if len(rec.Foods) > 0 {
		if e, ok := x.catalog.Lookup(rec.Foods[0]); ok {
			rec.MealType = e.MealType
		}
	}

	if m, ok := x.intensity.first(tokens); ok {
		rec.Intensity = Intensity(m.label)
		a.intensityExplicit = true
	}

	a.record = rec.settle()
	return a
}

// parseMealType reads a reply to "snack or meal?". A bare "meal" resolves
// through the current time of day.
func (x *Extractor) parseMealType(text string, now time.Time) (catalog.MealType, bool) {
	tokens := tokenize(text)
	if m, ok := x.mealTypes.first(tokens); ok {
		return catalog.MealType(m.label), true
	}
	if m, ok := x.synonyms.first(tokens); ok {
		return catalog.MealType(m.label), true
	}
	for _, t := range tokens {
		if sameWord(t.forms, []string{"meal"}) {
			return daypart.MealFor(daypart.At(now, x.loc)), true
		}
	}
	return "", false
}

// aboutFood reports whether text carries any food-context signal.
func (x *Extractor) aboutFood(text string) bool {
	if _, ok := x.context.first(tokenize(text)); ok {
		return true
	}
	for _, name := range x.catalog.Names() {
		if strings.Contains(text, name) {
			return true
		}
	}
	return false
}
