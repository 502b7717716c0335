package recommender

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Eat42/internal/catalog"
	"Eat42/internal/craving"
	"Eat42/internal/daypart"
	"Eat42/internal/metabolic"
	"Eat42/internal/safety"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}

// scripted scores each named entry with a fixed probability, keyed by its
// nutrition values, and everything else with fallback.
func scripted(t *testing.T, cat *catalog.Catalog, fallback float64, scores map[string]float64) safety.Classifier {
	t.Helper()
	byNutrition := make(map[[3]float64]float64, len(scores))
	for n, p := range scores {
		e, ok := cat.Lookup(n)
		require.True(t, ok, n)
		byNutrition[[3]float64{e.GlycemicIndex, e.Carbs, e.Sugar}] = p
	}
	return safety.ClassifierFunc(func(f safety.Features) float64 {
		if p, ok := byNutrition[[3]float64{f.FoodGI, f.FoodCarbs, f.FoodSugar}]; ok {
			return p
		}
		return fallback
	})
}

func newTestEngine(cat *catalog.Catalog, c safety.Classifier) *Engine {
	return NewEngine(cat, c,
		WithJitter(0),
		WithClock(func() time.Time { return time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC) }),
		WithLocation(time.UTC),
		WithLogger(zerolog.Nop()),
	)
}

func record(foods ...string) craving.Record {
	return craving.Record{
		Foods:              foods,
		ExcludedFoods:      []string{},
		Categories:         []string{},
		ExcludedCategories: []string{},
		Intensity:          craving.IntensityMedium,
	}
}

func names(entries []catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestThreshold(t *testing.T) {
	assert.Equal(t, 0.05, Threshold(85))
	assert.Equal(t, 0.25, Threshold(90))
	assert.Equal(t, 0.25, Threshold(119))
	assert.Equal(t, 0.35, Threshold(120))
	assert.Equal(t, 0.35, Threshold(180))

	prev := 0.0
	for _, g := range []int{85, 95, 130} {
		assert.GreaterOrEqual(t, Threshold(g), prev)
		prev = Threshold(g)
	}
}

func TestFilterDropsDrinksUnlessRequested(t *testing.T) {
	cat := defaultCatalog(t)

	pool := names(Filter(cat, record()))
	assert.NotContains(t, pool, "soda")
	assert.NotContains(t, pool, "ketchup")
	assert.Contains(t, pool, "pizza")

	pool = names(Filter(cat, record("milkshake")))
	assert.Contains(t, pool, "milkshake")
	assert.NotContains(t, pool, "chocolate milkshake")
}

func TestFilterExpandsExcludedFamily(t *testing.T) {
	cat := defaultCatalog(t)
	rec := record()
	rec.ExcludedFoods = []string{"pasta"}

	pool := names(Filter(cat, rec))
	for _, n := range []string{"pasta", "lasagna", "mac and cheese", "whole wheat pasta", "zucchini noodles"} {
		assert.NotContains(t, pool, n)
	}
	assert.Contains(t, pool, "pizza")
}

func TestFilterWantedCategoriesWithAlias(t *testing.T) {
	cat := defaultCatalog(t)
	rec := record()
	rec.Categories = []string{"salty"}

	pool := Filter(cat, rec)
	require.NotEmpty(t, pool)
	for _, e := range pool {
		assert.True(t, e.HasCategory("savory"), e.Name)
	}
	assert.Contains(t, names(pool), "steak")
}

func TestFilterMealTypeReadmitsRequested(t *testing.T) {
	cat := defaultCatalog(t)
	rec := record("pancakes")
	rec.Categories = []string{"pancake", "baked", "sweet", "warm", "soft"}
	rec.MealType = catalog.Dinner

	pool := names(Filter(cat, rec))
	assert.Contains(t, pool, "pancakes")
	assert.NotContains(t, pool, "oatmeal")
	assert.Contains(t, pool, "pasta")
}

func TestRelevance(t *testing.T) {
	cat := defaultCatalog(t)
	get := func(n string) catalog.Entry {
		e, ok := cat.Lookup(n)
		require.True(t, ok)
		return e
	}

	rec := record()
	rec.Categories = []string{"sweet", "cold", "creamy"}
	rec.MealType = catalog.Dessert
	assert.InDelta(t, 0.65, Relevance(get("greek yogurt"), rec), 1e-9)
	assert.InDelta(t, 1.0, Relevance(get("frozen yogurt"), rec), 1e-9)

	rec = record()
	rec.MealType = catalog.Dinner
	assert.InDelta(t, 0.1, Relevance(get("pancakes"), rec), 1e-9)
	assert.InDelta(t, 0.6, Relevance(get("steak"), rec), 1e-9)

	assert.InDelta(t, 0.4, Relevance(get("steak"), record()), 1e-9)
}

func TestScorerRequestedBoost(t *testing.T) {
	cat := defaultCatalog(t)
	pizza, _ := cat.Lookup("pizza")
	lasagna, _ := cat.Lookup("lasagna")

	s := NewScorer(scripted(t, cat, 0.9, map[string]float64{"pizza": 0.5}), 0, nil)
	rec := record("pizza")
	ranked := s.Rank([]catalog.Entry{lasagna, pizza}, rec, metabolic.Context{GlucoseLevel: 100}, daypart.Evening)
	assert.Equal(t, "pizza", ranked[0].Entry.Name)
	assert.InDelta(t, 0.3*0.5+0.7*0.4+0.30, ranked[0].Score, 1e-9)

	s = NewScorer(scripted(t, cat, 0.9, map[string]float64{"pizza": 0.01}), 0, nil)
	c := s.Score(pizza, rec, metabolic.Context{}, daypart.Evening)
	assert.InDelta(t, 0.3*0.01+0.7*0.4+0.05, c.Score, 1e-9)
}

func TestScorerJitterIsBounded(t *testing.T) {
	cat := defaultCatalog(t)
	s := NewScorer(safety.ClassifierFunc(func(safety.Features) float64 { return 0.5 }), 1, rand.New(rand.NewPCG(1, 2)))

	for _, e := range cat.Entries() {
		c := s.Score(e, record(), metabolic.Context{}, daypart.Morning)
		assert.GreaterOrEqual(t, c.Safety, 0.5)
		assert.Less(t, c.Safety, 0.5+MaxJitter)
		assert.Equal(t, 0.5, c.Probability)
	}
}

func TestFeatures(t *testing.T) {
	cat := defaultCatalog(t)
	e, _ := cat.Lookup("ice cream")
	rec := record("ice cream")
	rec.Intensity = craving.IntensityHigh
	mc := metabolic.Context{GlucoseLevel: 150, GlucoseAvg: 130, GlucoseTrend: metabolic.Falling, PregnancyWeek: 31}

	assert.Equal(t, safety.Features{
		GlucoseLevel: 150, GlucoseAvg: 130, GlucoseTrend: -1, PregnancyWeek: 31,
		Intensity: 3, TimeOfDay: 4, FoodGI: 62, FoodCarbs: 24, FoodSugar: 21,
	}, Features(e, rec, mc, daypart.Night))
}

func TestRecommendRedirectsUnsafeIceCream(t *testing.T) {
	cat := defaultCatalog(t)
	e := newTestEngine(cat, scripted(t, cat, 0.8, map[string]float64{"ice cream": 0.10}))

	rec := record("ice cream")
	rec.Categories = []string{"sweet", "cold", "creamy"}
	rec.MealType = catalog.Dessert

	res := e.Recommend(rec, metabolic.Context{GlucoseLevel: 180, GlucoseAvg: 160, GlucoseTrend: metabolic.Rising, PregnancyWeek: 30})
	require.NotNil(t, res.Food)
	assert.NotEqual(t, "ice cream", *res.Food)

	iceCream, _ := cat.Lookup("ice cream")
	pick, ok := cat.Lookup(*res.Food)
	require.True(t, ok)
	assert.True(t, pick.SharesAny(Family(iceCream)))
	assert.Equal(t, "frozen yogurt", *res.Food)

	require.NotNil(t, res.AnotherOption)
	assert.NotEqual(t, "ice cream", *res.AnotherOption)
	assert.NotEqual(t, *res.Food, *res.AnotherOption)
	assert.Contains(t, res.Reason, "ice cream")
	assert.Nil(t, res.MealAssessment)
}

func TestRecommendApprovesSafeRequest(t *testing.T) {
	cat := defaultCatalog(t)
	e := newTestEngine(cat, scripted(t, cat, 0.9, nil))

	rec := record("pizza")
	pizza, _ := cat.Lookup("pizza")
	rec.Categories = slices.Clone(pizza.Categories)
	rec.MealType = catalog.Dinner

	res := e.Recommend(rec, metabolic.Context{GlucoseLevel: 100, GlucoseAvg: 100, PregnancyWeek: 26})
	require.NotNil(t, res.Food)
	assert.Equal(t, "pizza", *res.Food)
	require.NotNil(t, res.AnotherOption)
	assert.NotEqual(t, "pizza", *res.AnotherOption)
}

func TestRecommendLowGlucoseIsPermissive(t *testing.T) {
	cat := defaultCatalog(t)
	e := newTestEngine(cat, scripted(t, cat, 0.9, map[string]float64{"chocolate cake": 0.1}))

	rec := record("chocolate cake")
	rec.MealType = catalog.Dessert

	res := e.Recommend(rec, metabolic.Context{GlucoseLevel: 80})
	require.NotNil(t, res.Food)
	assert.Equal(t, "chocolate cake", *res.Food)

	res = e.Recommend(rec, metabolic.Context{GlucoseLevel: 130})
	require.NotNil(t, res.Food)
	assert.NotEqual(t, "chocolate cake", *res.Food)
}

func TestRecommendRedirectsFilteredRequest(t *testing.T) {
	cat := defaultCatalog(t)
	e := newTestEngine(cat, scripted(t, cat, 0.9, nil))

	rec := record("pizza")
	rec.ExcludedCategories = []string{"cheesy"}
	rec.Categories = []string{"pizza", "bread", "cheese", "savory", "warm"}
	rec.MealType = catalog.Dinner

	res := e.Recommend(rec, metabolic.Context{GlucoseLevel: 100})
	require.NotNil(t, res.Food)
	assert.NotEqual(t, "pizza", *res.Food)

	pizza, _ := cat.Lookup("pizza")
	pick, _ := cat.Lookup(*res.Food)
	assert.True(t, pick.SharesAny(Family(pizza)))
	assert.False(t, pick.HasCategory("cheesy"))
	assert.Contains(t, res.Reason, "does not fit")
}

func TestRecommendMealBothSafe(t *testing.T) {
	cat := defaultCatalog(t)
	e := newTestEngine(cat, scripted(t, cat, 0.9, nil))

	rec := record("steak", "mashed potatoes")
	rec.Categories = []string{"meat", "beef", "savory", "warm", "hearty", "juicy", "potato", "creamy"}
	rec.MealType = catalog.Dinner

	res := e.Recommend(rec, metabolic.Context{GlucoseLevel: 110, GlucoseAvg: 105, PregnancyWeek: 29})
	require.Len(t, res.MealAssessment, 2)
	for _, f := range []string{"steak", "mashed potatoes"} {
		a := res.MealAssessment[f]
		assert.False(t, a.Redirected, f)
		require.NotNil(t, a.Resolved)
		assert.Equal(t, f, *a.Resolved)
	}
	require.NotNil(t, res.Food)
	assert.Equal(t, "steak and mashed potatoes", *res.Food)
	assert.Nil(t, res.AnotherOption)
	assert.NotEmpty(t, res.Reason)
}

func TestRecommendMealRedirectsOne(t *testing.T) {
	cat := defaultCatalog(t)
	e := newTestEngine(cat, scripted(t, cat, 0.9, map[string]float64{"mashed potatoes": 0.2}))

	rec := record("steak", "mashed potatoes")
	rec.Categories = []string{"meat", "potato", "savory"}
	rec.MealType = catalog.Dinner

	res := e.Recommend(rec, metabolic.Context{GlucoseLevel: 150})
	assert.False(t, res.MealAssessment["steak"].Redirected)
	mashed := res.MealAssessment["mashed potatoes"]
	assert.True(t, mashed.Redirected)
	require.NotNil(t, mashed.Resolved)
	assert.NotEqual(t, "mashed potatoes", *mashed.Resolved)
	assert.NotEqual(t, "steak", *mashed.Resolved)
	assert.Contains(t, res.Reason, "steak")
}

func TestRecommendEmptyPool(t *testing.T) {
	cat := defaultCatalog(t)
	e := newTestEngine(cat, scripted(t, cat, 0.9, nil))

	rec := record()
	rec.ExcludedFoods = cat.Names()

	res := e.Recommend(rec, metabolic.Context{GlucoseLevel: 100})
	assert.Nil(t, res.Food)
	assert.Nil(t, res.AnotherOption)
	assert.NotEmpty(t, res.Reason)
}

func TestRecommendNoSubstitute(t *testing.T) {
	steak := catalog.Entry{Name: "steak", Categories: []string{"meat", "savory"}, MealType: catalog.Dinner}
	apple := catalog.Entry{Name: "apple", Categories: []string{"fruit", "sweet"}, MealType: catalog.Snack}

	tests := map[string][]catalog.Entry{
		"alone":             {steak},
		"only other family": {steak, apple},
	}

	for name, entries := range tests {
		t.Run(name, func(t *testing.T) {
			cat, err := catalog.New(entries)
			require.NoError(t, err)
			e := newTestEngine(cat, scripted(t, cat, 0.9, map[string]float64{"steak": 0.1}))

			res := e.Recommend(record("steak"), metabolic.Context{GlucoseLevel: 150})
			assert.Nil(t, res.Food)
			assert.Nil(t, res.AnotherOption)
			assert.Contains(t, res.Reason, "steak")
			assert.NotContains(t, res.Reason, "apple")
		})
	}
}

func TestRecommendStaysInFamily(t *testing.T) {
	cat := defaultCatalog(t)
	e := newTestEngine(cat, scripted(t, cat, 0.9, map[string]float64{"herbal tea": 0.1}))
	mc := metabolic.Context{GlucoseLevel: 180, GlucoseAvg: 170, PregnancyWeek: 30}

	// Every other drink is filtered out, so nothing shares the drink family.
	rec := record("herbal tea")
	rec.Categories = []string{"drink", "warm"}
	rec.MealType = catalog.Snack

	res := e.Recommend(rec, mc)
	assert.Nil(t, res.Food)
	assert.Nil(t, res.AnotherOption)
	assert.Contains(t, res.Reason, "herbal tea")
	assert.Contains(t, res.Reason, "nothing similar")

	rec = record("mashed potatoes", "herbal tea")
	rec.Categories = []string{"potato", "drink"}
	rec.MealType = catalog.Dinner

	res = e.Recommend(rec, mc)
	require.Len(t, res.MealAssessment, 2)
	tea := res.MealAssessment["herbal tea"]
	assert.True(t, tea.Redirected)
	assert.Nil(t, tea.Resolved)
	require.NotNil(t, res.Food)
	assert.Equal(t, "mashed potatoes", *res.Food)
}

func TestSubstitutePool(t *testing.T) {
	cat := defaultCatalog(t)
	pizza, _ := cat.Lookup("pizza")

	subs := substitutePool(pizza, cat.Entries(), map[string]bool{"pizza": true})
	require.NotEmpty(t, subs)
	for _, s := range subs {
		assert.NotEqual(t, "pizza", s.Name)
		assert.True(t, s.SharesAny(Family(pizza)), s.Name)
	}

	assert.Empty(t, substitutePool(catalog.Entry{Name: "mystery"}, cat.Entries(), nil))
}

func TestRecommendVagueTakesTopTwo(t *testing.T) {
	cat := defaultCatalog(t)
	e := newTestEngine(cat, scripted(t, cat, 0.5, nil))

	rec := record()
	rec.Categories = []string{"sweet"}
	rec.MealType = catalog.Dessert

	res := e.Recommend(rec, metabolic.Context{GlucoseLevel: 100})
	require.NotNil(t, res.Food)
	require.NotNil(t, res.AnotherOption)
	assert.Equal(t, "ice cream", *res.Food)
	assert.Equal(t, "frozen yogurt", *res.AnotherOption)
}

func TestRecommendSeededIsReproducible(t *testing.T) {
	cat := defaultCatalog(t)
	c := safety.ClassifierFunc(func(safety.Features) float64 { return 0.5 })
	rec := record()
	rec.Categories = []string{"savory"}

	run := func() Result {
		e := NewEngine(cat, c, WithSeed(42), WithLogger(zerolog.Nop()))
		return e.Recommend(rec, metabolic.Context{GlucoseLevel: 100})
	}
	a, b := run(), run()
	require.NotNil(t, a.Food)
	assert.Equal(t, *a.Food, *b.Food)
	assert.Equal(t, *a.AnotherOption, *b.AnotherOption)
}
