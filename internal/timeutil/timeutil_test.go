package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		aStart   time.Time
		aEnd     time.Time
		bStart   time.Time
		bEnd     time.Time
		expected bool
	}{
		{
			name:     "identical intervals overlap",
			aStart:   base, aEnd: base.Add(time.Hour),
			bStart:   base, bEnd: base.Add(time.Hour),
			expected: true,
		},
		{
			name:     "partial overlap",
			aStart:   base, aEnd: base.Add(time.Hour),
			bStart:   base.Add(30 * time.Minute), bEnd: base.Add(90 * time.Minute),
			expected: true,
		},
		{
			name:     "containment",
			aStart:   base, aEnd: base.Add(2 * time.Hour),
			bStart:   base.Add(30 * time.Minute), bEnd: base.Add(time.Hour),
			expected: true,
		},
		{
			name:     "touching endpoints do not overlap",
			aStart:   base, aEnd: base.Add(time.Hour),
			bStart:   base.Add(time.Hour), bEnd: base.Add(2 * time.Hour),
			expected: false,
		},
		{
			name:     "disjoint",
			aStart:   base, aEnd: base.Add(time.Hour),
			bStart:   base.Add(3 * time.Hour), bEnd: base.Add(4 * time.Hour),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// symmetric
			assert.Equal(t, tt.expected, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	assert.NoError(t, err)
	assert.Equal(t, Clock{Hour: 9, Minute: 30}, c)
	assert.Equal(t, 570, c.Minutes())

	_, err = ParseClock("25:00")
	assert.Error(t, err)

	_, err = ParseClock("bogus")
	assert.Error(t, err)
}

func TestAtClock(t *testing.T) {
	date := time.Date(2025, 3, 10, 15, 45, 12, 0, time.UTC)
	got := AtClock(date, Clock{Hour: 6, Minute: 0})
	assert.Equal(t, time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC), got)
}
