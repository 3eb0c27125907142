package vecdb_test

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunsided/flatvec/internal/quantity"
	"github.com/sunsided/flatvec/internal/vecdb"
)

// TS01: the on-disk header is byte-for-byte version=0, padding=0xFFFFFFFF,
// num_vectors, num_dimensions, little-endian, and vectors round-trip.
func TestVecDb_WriteThenReadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	w, err := vecdb.OpenWrite(path, 2, 4)
	require.NoError(t, err)
	require.NoError(t, w.WriteVec([]float32{1, 2, 3, 4}))
	require.NoError(t, w.WriteVec([]float32{5, 6, 7, 8}))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, vecdb.HeaderSize+2*4*4)

	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(raw[0:4]))
	assert.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(raw[4:8]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(raw[8:12]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(raw[12:16]))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(raw[16:20])))

	r, err := vecdb.OpenRead(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, quantity.NumVectors(2), r.NumVectors())
	assert.Equal(t, quantity.NumDimensions(4), r.NumDimensions())

	v1, err := r.ReadVec()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, v1)

	v2, err := r.ReadVec()
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 6, 7, 8}, v2)
}

// TS02: ReadNVecs stops early without error when the callback returns
// ErrStopReading, and reports the number of vectors actually consumed.
func TestVecDb_ReadNVecsStopsEarly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	w, err := vecdb.OpenWrite(path, 3, 2)
	require.NoError(t, err)
	require.NoError(t, w.WriteVec([]float32{1, 1}))
	require.NoError(t, w.WriteVec([]float32{2, 2}))
	require.NoError(t, w.WriteVec([]float32{3, 3}))
	require.NoError(t, w.Close())

	r, err := vecdb.OpenRead(path)
	require.NoError(t, err)
	defer r.Close()

	var seen []float32
	read, err := r.ReadAllVecs(func(i int, vec []float32) error {
		seen = append(seen, vec[0])
		if i == 0 {
			return vecdb.ErrStopReading
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, seen)
	assert.Equal(t, 1, read)
}

// TS05 (scenario 7): ReadNVecs/ReadAllVecs report the full count consumed
// when the callback never stops early — reading 10 vectors returns 10.
func TestVecDb_ReadAllVecs_ReturnsCountConsumed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	w, err := vecdb.OpenWrite(path, 10, 2)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, w.WriteVec([]float32{float32(i), float32(i)}))
	}
	require.NoError(t, w.Close())

	r, err := vecdb.OpenRead(path)
	require.NoError(t, err)
	defer r.Close()

	count := 0
	read, err := r.ReadAllVecs(func(_ int, _ []float32) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, count)
	assert.Equal(t, 10, read)
}

// TS03: WriteVec rejects a vector whose length doesn't match the header's
// dimensionality.
func TestVecDb_WriteVec_DimensionalityMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	w, err := vecdb.OpenWrite(path, 1, 4)
	require.NoError(t, err)
	defer w.Close()

	err = w.WriteVec([]float32{1, 2})
	assert.Error(t, err)
}

// TS04: OpenRead rejects a file shorter than the header.
func TestVecDb_OpenRead_RejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := vecdb.OpenRead(path)
	assert.Error(t, err)
}
