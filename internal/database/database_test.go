package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeksSince(t *testing.T) {
	now := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		start string
		want  int
	}{
		{"2026-06-01", 0},
		{"2026-05-25", 1},
		{"2026-05-26", 0},
		{"2025-11-10", 29},
		{"2026-07-01", 0},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := weeksSince(tt.start, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeeksSinceInvalidDate(t *testing.T) {
	_, err := weeksSince("June 1st", time.Now())
	assert.Error(t, err)
}
