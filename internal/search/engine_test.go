package search_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunsided/flatvec/internal/config"
	"github.com/sunsided/flatvec/internal/engineerr"
	"github.com/sunsided/flatvec/internal/quantity"
	"github.com/sunsided/flatvec/internal/search"
	"github.com/sunsided/flatvec/internal/vecdb"
)

func openTestDb(t *testing.T, vecs [][]float32) *vecdb.VecDb {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectors.bin")
	numDims := quantity.NumDimensions(len(vecs[0]))

	w, err := vecdb.OpenWrite(path, quantity.NumVectors(len(vecs)), numDims)
	require.NoError(t, err)
	for _, v := range vecs {
		require.NoError(t, w.WriteVec(v))
	}
	require.NoError(t, w.Close())

	r, err := vecdb.OpenRead(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func newEngine(t *testing.T, db *vecdb.VecDb) *search.Engine {
	t.Helper()
	cfg := config.NewConfig()
	return search.New(cfg, db, nil)
}

// Scenario 1 (spec.md §8): small analytic dot product. q=[1,2,3],
// M=[[4,-5,6],[4,-5,6],[0,0,0],[1,1,1]] must score [12,12,0,6], and the
// top-2 must be {(0,12),(1,12)} in some order.
func TestEngine_Query_SmallAnalyticDotProduct(t *testing.T) {
	db := openTestDb(t, [][]float32{
		{4, -5, 6},
		{4, -5, 6},
		{0, 0, 0},
		{1, 1, 1},
	})
	e := newEngine(t, db)

	results, err := e.Query(context.Background(), []float32{1, 2, 3}, 2, false)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byIndex := map[int]float32{}
	for _, r := range results {
		byIndex[r.Index] = r.Score
	}
	assert.Contains(t, byIndex, 0)
	assert.Contains(t, byIndex, 1)
	assert.InDelta(t, float32(12), byIndex[0], 1e-4)
	assert.InDelta(t, float32(12), byIndex[1], 1e-4)
}

// Scenario 5 (spec.md §8): top-K edge. scores=[30,3,1,12,2,11], K=3 must
// select {(0,30),(3,12),(5,11)}.
func TestEngine_Query_TopKEdge(t *testing.T) {
	vecs := make([][]float32, 6)
	scores := []float32{30, 3, 1, 12, 2, 11}
	for i, s := range scores {
		vecs[i] = []float32{s}
	}
	db := openTestDb(t, vecs)
	e := newEngine(t, db)

	results, err := e.Query(context.Background(), []float32{1}, 3, false)
	require.NoError(t, err)
	require.Len(t, results, 3)

	want := map[int]float32{0: 30, 3: 12, 5: 11}
	got := map[int]float32{}
	for _, r := range results {
		got[r.Index] = r.Score
	}
	assert.Equal(t, want, got)
}

// Scenario 2 (spec.md §8): self-match. A vector queried against itself
// scores ~= its squared norm, and the top-1 index is its own.
func TestEngine_Query_SelfMatch(t *testing.T) {
	v := []float32{0.6, 0.8} // unit length: 0.6^2+0.8^2 = 1
	db := openTestDb(t, [][]float32{
		{0.1, 0.2},
		v,
		{0.3, -0.4},
	})
	e := newEngine(t, db)

	results, err := e.Query(context.Background(), v, 1, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Index)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-3)
}

func TestEngine_Query_DimensionalityMismatch_ReturnsEngineError(t *testing.T) {
	db := openTestDb(t, [][]float32{{1, 2, 3}})
	e := newEngine(t, db)

	_, err := e.Query(context.Background(), []float32{1, 2}, 1, false)
	require.Error(t, err)

	var ee *engineerr.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, engineerr.CategoryValidation, ee.Category)
	assert.Equal(t, engineerr.ErrCodeDimensionalityWrong, ee.Code)
}

func TestEngine_Query_KLargerThanN_ClampsToN(t *testing.T) {
	db := openTestDb(t, [][]float32{{1}, {2}, {3}})
	e := newEngine(t, db)

	results, err := e.Query(context.Background(), []float32{1}, 100, false)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

// Every CPU kernel dispatched from Engine.Query must agree with the naive
// dot product within the P1/P2 tolerances spec.md §8 specifies.
func TestEngine_Query_AgreesWithNaiveDotProduct(t *testing.T) {
	vecs := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0.5, 0.5, 0.5, 0.5},
		{-1, -1, 1, 1},
	}
	db := openTestDb(t, vecs)
	e := newEngine(t, db)
	query := []float32{0.5, 0.5, 0.5, 0.5}

	results, err := e.Query(context.Background(), query, len(vecs), false)
	require.NoError(t, err)

	for _, r := range results {
		want := float64(0)
		for d := 0; d < len(query); d++ {
			want += float64(query[d]) * float64(vecs[r.Index][d])
		}
		tolerance := 1e-4 * math.Max(1, math.Abs(want))
		assert.InDelta(t, want, float64(r.Score), tolerance)
	}
}
