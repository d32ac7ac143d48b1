package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(times ...time.Time) func() time.Time {
	return func() time.Time {
		t := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return t
	}
}

func TestTimeline_Measure(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tl := NewTimeline()
	tl.now = fixedClock(base, base.Add(40*time.Millisecond))

	tl.Mark("prove#1:prove:start")
	tl.Mark("prove#1:prove:end")

	m, ok := tl.Measure("prove#1:prove", "prove#1:prove:start", "prove#1:prove:end")
	require.True(t, ok)
	assert.Equal(t, 40*time.Millisecond, m.Duration)

	found, ok := tl.Find("prove#1:prove")
	require.True(t, ok)
	assert.Equal(t, m, found)
	assert.Len(t, tl.Measures(), 1)
}

func TestTimeline_MissingMark(t *testing.T) {
	tl := NewTimeline()
	tl.Mark("a")

	_, ok := tl.Measure("span", "a", "b")
	assert.False(t, ok)
	_, ok = tl.Measure("span", "b", "a")
	assert.False(t, ok)
	assert.Empty(t, tl.Measures())

	_, ok = tl.Find("span")
	assert.False(t, ok)
}

func TestTimeline_Reset(t *testing.T) {
	tl := NewTimeline()
	tl.Mark("a")
	_, ok := tl.Measure("a", "a", "a")
	require.True(t, ok)

	tl.Reset()
	assert.Empty(t, tl.Measures())
	_, ok = tl.Measure("a", "a", "a")
	assert.False(t, ok)
}
