package metabolic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromReadingsTrend(t *testing.T) {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	tests := []struct {
		name    string
		history []Reading
		avg     int
		trend   Trend
	}{
		{
			name:    "rising when newest is more than 10 above oldest",
			history: []Reading{{100, at(0)}, {105, at(30)}, {115, at(60)}},
			avg:     106,
			trend:   Rising,
		},
		{
			name:    "falling",
			history: []Reading{{140, at(0)}, {120, at(60)}},
			avg:     130,
			trend:   Falling,
		},
		{
			name:    "exactly 10 is stable",
			history: []Reading{{100, at(0)}, {110, at(60)}},
			avg:     105,
			trend:   Stable,
		},
		{
			name:    "unsorted input is ordered newest first",
			history: []Reading{{115, at(60)}, {100, at(0)}, {105, at(30)}},
			avg:     106,
			trend:   Rising,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := FromReadings(120, tt.history, 28)
			assert.Equal(t, tt.avg, ctx.GlucoseAvg)
			assert.Equal(t, tt.trend, ctx.GlucoseTrend)
			assert.Equal(t, 120, ctx.GlucoseLevel)
			assert.Equal(t, 28, ctx.PregnancyWeek)
		})
	}
}

func TestFromReadingsEmptyHistory(t *testing.T) {
	ctx := FromReadings(98, nil, 20)
	assert.Equal(t, Context{GlucoseLevel: 98, GlucoseAvg: 98, GlucoseTrend: Stable, PregnancyWeek: 20}, ctx)
}

func TestFromReadingsFillsMissingLevel(t *testing.T) {
	now := time.Now()
	ctx := FromReadings(0, []Reading{{90, now.Add(-time.Hour)}, {132, now}}, 30)
	assert.Equal(t, 132, ctx.GlucoseLevel)
}

func TestTrendEncode(t *testing.T) {
	assert.Equal(t, 1, Rising.Encode())
	assert.Equal(t, -1, Falling.Encode())
	assert.Equal(t, 0, Stable.Encode())
	assert.Equal(t, 0, Trend("").Encode())
}
