/*
Package recommender picks a food for a structured craving. It filters the
catalog through hard constraints, scores the survivors for safety and
relevance, and swaps a requested food for a same-family item when the food
is too risky at the user's current glucose.
*/
package recommender

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"Eat42/internal/catalog"
	"Eat42/internal/craving"
	"Eat42/internal/daypart"
	"Eat42/internal/metabolic"
	"Eat42/internal/safety"
)

// Result is a recommendation. MealAssessment is only set for requests naming
// more than one food.
type Result struct {
	Food           *string               `json:"food"`
	Reason         string                `json:"reason"`
	AnotherOption  *string               `json:"another_option"`
	MealAssessment map[string]Assessment `json:"meal_assessment,omitempty"`
}

// Assessment is the verdict for one food of a multi-food request.
type Assessment struct {
	Resolved   *string `json:"resolved"`
	Redirected bool    `json:"redirected"`
}

const reasonNoMatch = "Nothing on the menu fits all of those preferences right now. Try loosening one of the exclusions."

// Engine is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	scorer  *Scorer
	now     func() time.Time
	loc     *time.Location
	log     zerolog.Logger

	jitter float64
	rng    *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithJitter sets the tie-breaking jitter, clamped to [0, MaxJitter].
func WithJitter(j float64) Option {
	return func(e *Engine) { e.jitter = j }
}

// WithRand sets the jitter source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithSeed seeds the jitter source for reproducible rankings.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithClock replaces time.Now for time-of-day features.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the timezone for time-of-day features.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine returns an engine scoring cat with classifier.
func NewEngine(cat *catalog.Catalog, classifier safety.Classifier, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		jitter:  MaxJitter,
		now:     time.Now,
		loc:     daypart.DefaultLocation(),
		log:     log.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	e.scorer = NewScorer(classifier, e.jitter, e.rng)
	return e
}

// Recommend runs filter, ranking and approve-or-redirect for rec.
func (e *Engine) Recommend(rec craving.Record, mc metabolic.Context) Result {
	// 1. Hard constraints.
	pool := runStages(e.catalog.Entries(), stages(e.catalog, rec), func(name string, left int) {
		e.log.Debug().Str("stage", name).Int("left", left).Msg("Filter stage applied")
	})
	if len(pool) == 0 {
		e.log.Info().Strs("foods", rec.Foods).Msg("No candidate survived filtering")
		return Result{Reason: reasonNoMatch}
	}

	// 2. Rank the pool.
	tod := e.timeOfDay(rec)
	ranked := e.scorer.Rank(pool, rec, mc, tod)

	// 3. Vague requests take the two best.
	if len(rec.Foods) == 0 {
		res := Result{
			Food:   name(&ranked[0]),
			Reason: fmt.Sprintf("%s is the best match for what you described at %d mg/dL.", ranked[0].Entry.Name, mc.GlucoseLevel),
		}
		if len(ranked) > 1 {
			res.AnotherOption = name(&ranked[1])
		}
		return res
	}

	// 4. Named foods are approved or redirected one by one.
	skip := make(map[string]bool, len(rec.Foods))
	for _, f := range rec.Foods {
		skip[f] = true
	}

	if len(rec.Foods) == 1 {
		v := e.evaluate(rec.Foods[0], pool, ranked, rec, mc, tod, skip)
		return Result{Food: v.resolved, Reason: v.reason, AnotherOption: v.alternate}
	}

	res := Result{MealAssessment: make(map[string]Assessment, len(rec.Foods))}
	var resolved []string
	for _, f := range rec.Foods {
		v := e.evaluate(f, pool, ranked, rec, mc, tod, skip)
		res.MealAssessment[f] = Assessment{Resolved: v.resolved, Redirected: v.redirected}
		if v.resolved != nil {
			resolved = append(resolved, *v.resolved)
		}
		if res.Reason == "" {
			res.Reason = v.reason
		}
	}
	if len(resolved) > 0 {
		combo := strings.Join(resolved, " and ")
		res.Food = &combo
	}
	return res
}

type verdict struct {
	resolved   *string
	alternate  *string
	redirected bool
	reason     string
}

func (e *Engine) evaluate(food string, pool []catalog.Entry, ranked []Candidate, rec craving.Record, mc metabolic.Context, tod daypart.TimeOfDay, skip map[string]bool) verdict {
	threshold := Threshold(mc.GlucoseLevel)

	var self *Candidate
	for i := range ranked {
		if ranked[i].Entry.Name == food {
			self = &ranked[i]
			break
		}
	}

	// Approved outright: the best other item is the alternate.
	if self != nil && self.Probability >= threshold {
		v := verdict{
			resolved: name(self),
			reason:   fmt.Sprintf("%s works at %d mg/dL. Keep the portion moderate.", food, mc.GlucoseLevel),
		}
		for i := range ranked {
			if !skip[ranked[i].Entry.Name] {
				v.alternate = name(&ranked[i])
				break
			}
		}
		return v
	}

	orig, known := e.catalog.Lookup(food)
	if !known {
		orig = catalog.Entry{Name: food}
	}

	subs := e.scorer.Rank(substitutePool(orig, pool, skip), rec, mc, tod)
	if len(subs) == 0 {
		e.log.Info().Str("food", food).Msg("No substitute available")
		return verdict{
			redirected: true,
			reason:     fmt.Sprintf("%s is not a safe pick at %d mg/dL and nothing similar fits right now.", food, mc.GlucoseLevel),
		}
	}

	pick := &subs[0]
	v := verdict{resolved: name(pick), redirected: true}
	if alt := runnerUp(subs[1:], orig.TasteTags()); alt != nil {
		v.alternate = name(alt)
	}

	if self == nil {
		v.reason = fmt.Sprintf("%s does not fit the rest of your request, so try %s instead.", food, pick.Entry.Name)
	} else {
		v.reason = fmt.Sprintf("%s could spike your glucose at %d mg/dL, so %s is a gentler choice.", food, mc.GlucoseLevel, pick.Entry.Name)
	}

	e.log.Info().
		Str("food", food).
		Str("redirect", pick.Entry.Name).
		Float64("probability", probability(self)).
		Float64("threshold", threshold).
		Msg("Requested food redirected")
	return v
}

// timeOfDay prefers the record's own bucket, then the meal's, then the clock.
func (e *Engine) timeOfDay(rec craving.Record) daypart.TimeOfDay {
	if rec.TimeOfDay != daypart.Unknown {
		return rec.TimeOfDay
	}
	if tod, ok := daypart.ForMealType(rec.MealType); ok {
		return tod
	}
	return daypart.At(e.now(), e.loc)
}

func name(c *Candidate) *string {
	n := c.Entry.Name
	return &n
}

func probability(c *Candidate) float64 {
	if c == nil {
		return 0
	}
	return c.Probability
}
