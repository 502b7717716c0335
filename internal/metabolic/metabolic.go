// Package metabolic derives the glucose snapshot the recommender scores against.
package metabolic

import (
	"sort"
	"time"
)

// Trend is the direction of recent glucose readings.
type Trend string

const (
	Rising  Trend = "rising"
	Falling Trend = "falling"
	Stable  Trend = "stable"
)

// trendDelta is the newest-minus-oldest swing (mg/dL) that counts as a trend.
const trendDelta = 10

// Encode maps the trend to -1 (falling), 0 (stable) or 1 (rising).
func (t Trend) Encode() int {
	switch t {
	case Rising:
		return 1
	case Falling:
		return -1
	}
	return 0
}

// Reading is one stored glucose measurement.
type Reading struct {
	Value     int       `json:"glucose_mg_dl"`
	Timestamp time.Time `json:"timestamp"`
}

// Context is the metabolic snapshot for one user turn.
type Context struct {
	GlucoseLevel  int   `json:"glucose_level"`
	GlucoseAvg    int   `json:"glucose_avg"`
	GlucoseTrend  Trend `json:"glucose_trend"`
	PregnancyWeek int   `json:"pregnancy_week"`
}

// IsZero reports whether no glucose information was supplied.
func (c Context) IsZero() bool {
	return c.GlucoseLevel == 0 && c.GlucoseAvg == 0
}

// FromReadings builds a snapshot from the current level and raw history.
// History is sorted newest-first before use. When level is 0 the newest
// reading stands in for it; an empty history averages to the level itself
// with a stable trend.
func FromReadings(level int, history []Reading, pregnancyWeek int) Context {
	ctx := Context{
		GlucoseLevel:  level,
		GlucoseAvg:    level,
		GlucoseTrend:  Stable,
		PregnancyWeek: pregnancyWeek,
	}
	if len(history) == 0 {
		return ctx
	}

	sorted := append([]Reading(nil), history...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	sum := 0
	for _, r := range sorted {
		sum += r.Value
	}
	ctx.GlucoseAvg = sum / len(sorted)

	delta := sorted[0].Value - sorted[len(sorted)-1].Value
	switch {
	case delta > trendDelta:
		ctx.GlucoseTrend = Rising
	case delta < -trendDelta:
		ctx.GlucoseTrend = Falling
	}

	if ctx.GlucoseLevel == 0 {
		ctx.GlucoseLevel = sorted[0].Value
	}
	return ctx
}
