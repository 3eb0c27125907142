package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunsided/flatvec/internal/matrix"
	"github.com/sunsided/flatvec/internal/memchunk"
	"github.com/sunsided/flatvec/internal/quantity"
)

// TS01: New rejects a dimensionality that isn't a multiple of 16.
func TestNew_RejectsNonMultipleOf16(t *testing.T) {
	_, err := matrix.New(1, 17, memchunk.AccessHintNormal)
	require.Error(t, err)
}

// TS02: GetRowMajorVec returns the exact row written via AsSlice.
func TestAnySizeMatrix_RowAccess(t *testing.T) {
	m, err := matrix.New(2, 16, memchunk.AccessHintNormal)
	require.NoError(t, err)
	defer m.Close()

	flat := m.AsSlice()
	for i := range flat {
		flat[i] = float32(i)
	}

	row1 := m.GetRowMajorVec(1)
	require.Len(t, row1, 16)
	assert.Equal(t, float32(16), row1[0])
	assert.Equal(t, float32(31), row1[15])
}

// TS03: AsTransposed puts each original column into its own row.
func TestAnySizeMatrix_AsTransposed(t *testing.T) {
	m, err := matrix.New(2, 16, memchunk.AccessHintNormal)
	require.NoError(t, err)
	defer m.Close()

	flat := m.AsSlice()
	for i := range flat {
		flat[i] = float32(i)
	}

	tr, err := m.AsTransposed()
	require.NoError(t, err)
	defer tr.Close()

	assert.Equal(t, quantity.NumVectors(16), tr.NumVecs())
	// Transposed row 0 holds component 0 of every original vector: [0, 16].
	row0 := tr.GetRowMajorVec(0)
	assert.Equal(t, float32(0), row0[0])
	assert.Equal(t, float32(16), row0[1])
}

// TS04: Double preserves the original data twice, head to tail.
func TestAnySizeMatrix_Double(t *testing.T) {
	m, err := matrix.New(1, 16, memchunk.AccessHintNormal)
	require.NoError(t, err)
	defer m.Close()

	flat := m.AsSlice()
	for i := range flat {
		flat[i] = float32(i + 1)
	}

	doubled, err := m.Double()
	require.NoError(t, err)
	defer doubled.Close()

	assert.Equal(t, quantity.NumVectors(2), doubled.NumVecs())
	first := doubled.GetRowMajorVec(0)
	second := doubled.GetRowMajorVec(1)
	assert.Equal(t, first, second)
	assert.Equal(t, float32(1), first[0])
}

// TS05: UseNumVecs rejects growth past allocated capacity.
func TestAnySizeMatrix_UseNumVecsBounds(t *testing.T) {
	m, err := matrix.New(4, 16, memchunk.AccessHintNormal)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.UseNumVecs(2))
	assert.Equal(t, quantity.NumVectors(2), m.NumVecs())
	assert.Error(t, m.UseNumVecs(5))
}

// TS06: UseNumVecs(0) means "use all", restoring the full capacity rather
// than narrowing the matrix to zero rows.
func TestAnySizeMatrix_UseNumVecsZeroMeansAll(t *testing.T) {
	m, err := matrix.New(4, 16, memchunk.AccessHintNormal)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.UseNumVecs(2))
	assert.Equal(t, quantity.NumVectors(2), m.NumVecs())

	require.NoError(t, m.UseNumVecs(0))
	assert.Equal(t, quantity.NumVectors(4), m.NumVecs())
}

// TS07 (P8): as_transposed(as_transposed(M)) reproduces M element-wise,
// including when NumVecs (2) isn't itself a multiple of 16 — the
// transpose's intermediate dimension count must never be rounded/padded.
func TestAnySizeMatrix_AsTransposed_Involution(t *testing.T) {
	m, err := matrix.New(2, 16, memchunk.AccessHintNormal)
	require.NoError(t, err)
	defer m.Close()

	flat := m.AsSlice()
	for i := range flat {
		flat[i] = float32(i)
	}

	tr, err := m.AsTransposed()
	require.NoError(t, err)
	defer tr.Close()

	// The transposed matrix's columns correspond exactly to the original's
	// rows: no padding columns should have been introduced.
	assert.Equal(t, quantity.NumDimensions(2), tr.NumDims())

	back, err := tr.AsTransposed()
	require.NoError(t, err)
	defer back.Close()

	assert.Equal(t, m.NumVecs(), back.NumVecs())
	assert.Equal(t, m.NumDims(), back.NumDims())
	assert.Equal(t, m.AsSlice(), back.AsSlice())
}
