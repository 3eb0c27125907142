package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparkline_RenderEmpty(t *testing.T) {
	// Given: a fresh sparkline
	s := NewSparkline(10)

	// Then: renders all-empty bars
	assert.Equal(t, string(SparklineChars[0]), string([]rune(s.Render())[0:1]))
	assert.Equal(t, 0, s.Count())
}

func TestSparkline_AddTracksMax(t *testing.T) {
	// Given: a sparkline
	s := NewSparkline(4)

	// When: adding increasing samples
	s.Add(1)
	s.Add(5)
	s.Add(3)

	// Then: max reflects the largest sample seen, count tracks additions
	assert.Equal(t, float64(5), s.Max())
	assert.Equal(t, 3, s.Count())
}

func TestSparkline_Clear(t *testing.T) {
	// Given: a sparkline with samples
	s := NewSparkline(4)
	s.Add(10)

	// When: clearing
	s.Clear()

	// Then: state resets
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, float64(0), s.Max())
}

func TestSparkline_Stalled(t *testing.T) {
	// Given: a sparkline that saw a high peak
	s := NewSparkline(4)
	s.Add(100)
	s.Add(100)

	// Then: not stalled while throughput stays near peak
	assert.False(t, s.Stalled(0.1))

	// When: the most recent sample collapses relative to the peak
	s.Add(1)

	// Then: flagged as stalled
	assert.True(t, s.Stalled(0.1))
}

func TestSparkline_StalledNoSamples(t *testing.T) {
	// Given: a fresh sparkline with no samples
	s := NewSparkline(4)

	// Then: never reports stalled before any throughput has been observed
	assert.False(t, s.Stalled(0.1))
}
