package topk_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunsided/flatvec/internal/topk"
)

func valuesOf(entries []topk.Entry) []float32 {
	vals := make([]float32, len(entries))
	for i, e := range entries {
		vals[i] = e.Score
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i] > vals[j] })
	return vals
}

var selectors = []struct {
	name string
	fn   func([]float32, int) []topk.Entry
}{
	{"Bubble", topk.Bubble},
	{"Quickselect", topk.Quickselect},
	{"MinHeap", topk.MinHeap},
}

// TS01: every selector picks the same top-3 values out of a fixed slice.
func TestSelectors_AgreeOnFixedInput(t *testing.T) {
	scores := []float32{30, 3, 1, 12, 2, 11}
	want := []float32{30, 12, 11}

	for _, s := range selectors {
		t.Run(s.name, func(t *testing.T) {
			got := s.fn(scores, 3)
			require.Len(t, got, 3)
			assert.Equal(t, want, valuesOf(got))
		})
	}
}

// TS02: K larger than the input clamps to the input length without panicking.
func TestSelectors_KLargerThanInput(t *testing.T) {
	scores := []float32{1, 2}
	for _, s := range selectors {
		t.Run(s.name, func(t *testing.T) {
			got := s.fn(scores, 10)
			assert.Len(t, got, 2)
		})
	}
}

// TS03: NaN scores sort as worse than any finite value and never occupy a
// slot a real match could have filled.
func TestSelectors_NaNNeverOutranksFiniteValues(t *testing.T) {
	scores := []float32{float32(math.NaN()), 1, 2, float32(math.NaN()), 3}
	for _, s := range selectors {
		t.Run(s.name, func(t *testing.T) {
			got := s.fn(scores, 2)
			require.Len(t, got, 2)
			for _, e := range got {
				assert.False(t, e.Score != e.Score, "NaN leaked into top-K result")
			}
			assert.ElementsMatch(t, []float32{2, 3}, valuesOf(got))
		})
	}
}

// TS04: all three selectors agree on a randomized input, matching a
// reference full-sort selection.
func TestSelectors_AgreeWithReferenceSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n, k := 500, 17
	scores := make([]float32, n)
	for i := range scores {
		scores[i] = rng.Float32()*200 - 100
	}

	reference := append([]float32(nil), scores...)
	sort.Slice(reference, func(i, j int) bool { return reference[i] > reference[j] })
	want := reference[:k]

	for _, s := range selectors {
		t.Run(s.name, func(t *testing.T) {
			got := s.fn(scores, k)
			require.Len(t, got, k)
			assert.Equal(t, want, valuesOf(got))
		})
	}
}

// TS05: Select dispatches to the right selector and defaults to Quickselect.
func TestSelect_Dispatch(t *testing.T) {
	scores := []float32{5, 1, 9, 3}
	got := topk.Select(topk.SelectorMinHeap, scores, 2)
	assert.ElementsMatch(t, []float32{9, 5}, valuesOf(got))

	got = topk.Select(topk.Selector("unknown"), scores, 2)
	assert.ElementsMatch(t, []float32{9, 5}, valuesOf(got))
}
