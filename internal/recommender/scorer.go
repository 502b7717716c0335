package recommender

import (
	"math/rand/v2"
	"slices"
	"sort"
	"sync"

	"Eat42/internal/catalog"
	"Eat42/internal/craving"
	"Eat42/internal/daypart"
	"Eat42/internal/metabolic"
	"Eat42/internal/safety"
)

// MaxJitter bounds the random tie-breaking perturbation added to safety.
const MaxJitter = 0.08

const (
	safetyWeight    = 0.3
	relevanceWeight = 0.7

	// requestedBoost keeps a named food above unrequested items with a
	// similar blend; it shrinks to requestedFloorBoost when the food is
	// nearly certain to be unsafe.
	requestedBoost      = 0.30
	requestedFloorBoost = 0.05
	safetyFloor         = 0.05

	relevanceBase        = 0.4
	categoryHitWeight    = 0.5
	categoryMissPenalty  = 0.25
	mealTypeMatchBonus   = 0.2
	mealTypeClashPenalty = 0.3
)

// Candidate is a scored catalog item. Probability is the raw classifier
// output; Safety adds the tie-breaking jitter.
type Candidate struct {
	Entry       catalog.Entry
	Probability float64
	Safety      float64
	Relevance   float64
	Score       float64
}

// Scorer blends classifier safety with craving relevance.
type Scorer struct {
	classifier safety.Classifier
	jitter     float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewScorer returns a scorer adding uniform jitter in [0, jitter) drawn from
// rng. jitter is clamped to [0, MaxJitter].
func NewScorer(classifier safety.Classifier, jitter float64, rng *rand.Rand) *Scorer {
	return &Scorer{
		classifier: classifier,
		jitter:     clamp(jitter, 0, MaxJitter),
		rng:        rng,
	}
}

func (s *Scorer) perturb() float64 {
	if s.jitter == 0 || s.rng == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() * s.jitter
}

// Features builds the model input for one item.
func Features(e catalog.Entry, rec craving.Record, mc metabolic.Context, tod daypart.TimeOfDay) safety.Features {
	return safety.Features{
		GlucoseLevel:  float64(mc.GlucoseLevel),
		GlucoseAvg:    float64(mc.GlucoseAvg),
		GlucoseTrend:  float64(mc.GlucoseTrend.Encode()),
		PregnancyWeek: float64(mc.PregnancyWeek),
		Intensity:     float64(rec.Intensity.Ordinal()),
		TimeOfDay:     float64(tod.Ordinal()),
		FoodGI:        e.GlycemicIndex,
		FoodCarbs:     e.Carbs,
		FoodSugar:     e.Sugar,
	}
}

// Score evaluates a single item.
func (s *Scorer) Score(e catalog.Entry, rec craving.Record, mc metabolic.Context, tod daypart.TimeOfDay) Candidate {
	p := clamp(s.classifier.Score(Features(e, rec, mc, tod)), 0, 1)
	c := Candidate{
		Entry:       e,
		Probability: p,
		Safety:      clamp(p+s.perturb(), 0, 1),
		Relevance:   Relevance(e, rec),
	}

	c.Score = safetyWeight*c.Safety + relevanceWeight*c.Relevance
	if slices.Contains(rec.Foods, e.Name) {
		if c.Safety > safetyFloor {
			c.Score += requestedBoost
		} else {
			c.Score += requestedFloorBoost
		}
	}
	return c
}

// Rank scores every item and sorts by descending score. Ties keep pool
// order.
func (s *Scorer) Rank(pool []catalog.Entry, rec craving.Record, mc metabolic.Context, tod daypart.TimeOfDay) []Candidate {
	out := make([]Candidate, len(pool))
	for i, e := range pool {
		out[i] = s.Score(e, rec, mc, tod)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Relevance measures how well e matches the requested categories and meal
// type, in [0,1].
func Relevance(e catalog.Entry, rec craving.Record) float64 {
	r := relevanceBase

	var wanted []string
	for _, c := range rec.Categories {
		canon := catalog.CanonicalCategory(c)
		if !slices.Contains(wanted, canon) {
			wanted = append(wanted, canon)
		}
	}
	if n := float64(len(wanted)); n > 0 {
		hits := 0.0
		for _, c := range wanted {
			if e.HasCategory(c) {
				hits++
			}
		}
		r += categoryHitWeight*hits/n - categoryMissPenalty*(n-hits)/n
	}

	if rec.MealType != "" {
		switch {
		case e.MealType == rec.MealType:
			r += mealTypeMatchBonus
		case !catalog.Compatible(rec.MealType, e.MealType):
			r -= mealTypeClashPenalty
		}
	}

	return clamp(r, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
