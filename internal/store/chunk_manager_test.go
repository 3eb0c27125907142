package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunsided/flatvec/internal/memchunk"
	"github.com/sunsided/flatvec/internal/quantity"
	"github.com/sunsided/flatvec/internal/store"
)

func newTestManager(t *testing.T, dims quantity.NumDimensions, opts ...store.ChunkManagerOption) *store.ChunkManager {
	t.Helper()
	m, err := store.New(dims, memchunk.AccessHintRandom, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// TS01: a fresh manager starts with one chunk's worth of capacity and no
// vectors.
func TestNew_StartsWithOneChunk(t *testing.T) {
	m := newTestManager(t, 16)
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, quantity.NumVectors(memchunk.NumFloats/16), m.MaxVecs())
}

// TS02: InsertVector then Get round-trips the exact vector.
func TestInsertVector_GetRoundTrips(t *testing.T) {
	m := newTestManager(t, 4)
	require.NoError(t, m.InsertVector(quantity.LocalID(1), []float32{1, 2, 3, 4}))

	got, ok := m.Get(quantity.LocalID(1))
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3, 4}, got)
	assert.Equal(t, 1, m.Count())
}

// TS03: inserting a wrong-length vector is rejected.
func TestInsertVector_RejectsWrongDimensionality(t *testing.T) {
	m := newTestManager(t, 4)
	err := m.InsertVector(quantity.LocalID(1), []float32{1, 2})
	assert.Error(t, err)
}

// TS04: inserting a duplicate ID is rejected unless optimistic.
func TestInsertVector_RejectsDuplicateID(t *testing.T) {
	m := newTestManager(t, 4)
	require.NoError(t, m.InsertVector(quantity.LocalID(1), []float32{1, 2, 3, 4}))
	err := m.InsertVector(quantity.LocalID(1), []float32{5, 6, 7, 8})
	assert.Error(t, err)
}

// TS05: WithOptimisticInserts skips the duplicate-ID probe.
func TestInsertVector_OptimisticSkipsDuplicateCheck(t *testing.T) {
	m := newTestManager(t, 4, store.WithOptimisticInserts())
	require.NoError(t, m.InsertVector(quantity.LocalID(1), []float32{1, 2, 3, 4}))
	assert.NoError(t, m.InsertVector(quantity.LocalID(1), []float32{5, 6, 7, 8}))
}

// TS06: inserting past a chunk's capacity allocates a new chunk rather
// than failing.
func TestInsertVector_GrowsChunks(t *testing.T) {
	m := newTestManager(t, 4)
	perChunk := int(m.MaxVecs().Get())

	for i := 0; i <= perChunk; i++ {
		require.NoError(t, m.InsertVector(quantity.LocalID(i+1), []float32{1, 2, 3, 4}))
	}
	assert.Greater(t, int(m.MaxVecs().Get()), perChunk)
	assert.Equal(t, perChunk+1, m.Count())
}

// TS08: Save then Load reproduces every vector under its original ID.
func TestSaveLoad_RoundTrips(t *testing.T) {
	m := newTestManager(t, 4)
	require.NoError(t, m.InsertVector(quantity.LocalID(10), []float32{1, 2, 3, 4}))
	require.NoError(t, m.InsertVector(quantity.LocalID(20), []float32{5, 6, 7, 8}))
	require.NoError(t, m.InsertVector(quantity.LocalID(30), []float32{9, 10, 11, 12}))

	path := filepath.Join(t.TempDir(), "vectors.bin")
	require.NoError(t, m.Save(path))

	loaded, err := store.Load(path, memchunk.AccessHintRandom)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, 3, loaded.Count())
	v10, ok := loaded.Get(quantity.LocalID(10))
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3, 4}, v10)

	v20, ok := loaded.Get(quantity.LocalID(20))
	require.True(t, ok)
	assert.Equal(t, []float32{5, 6, 7, 8}, v20)

	v30, ok := loaded.Get(quantity.LocalID(30))
	require.True(t, ok)
	assert.Equal(t, []float32{9, 10, 11, 12}, v30)
}
