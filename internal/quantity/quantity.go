// Package quantity provides unit-preserving wrappers around the few raw
// integers that flow through the engine: how many vectors are stored, how
// many dimensions each one has, how many floats that implies, and which
// external ID a given vector carries. Mixing these with bare ints or with
// each other requires an explicit conversion, the same boundary the
// reference implementation enforces with newtypes.
package quantity

import "fmt"

// NumDimensions is the dimensionality of a vector: the number of float32
// entries it holds. Immutable once a store or chunk manager is created.
type NumDimensions uint64

// DimsDefault is the typical embedding dimensionality the engine is tuned
// for.
const DimsDefault NumDimensions = 384

// Get returns the wrapped value.
func (d NumDimensions) Get() uint64 { return uint64(d) }

// Range calls yield for every index in [0, d), stopping early if yield
// returns false.
func (d NumDimensions) Range(yield func(uint64) bool) {
	for i := uint64(0); i < uint64(d); i++ {
		if !yield(i) {
			return
		}
	}
}

// Mul combines a dimensionality with a vector count to produce the number
// of floats needed to store that many vectors.
func (d NumDimensions) Mul(n NumVectors) NumElements {
	return NumElements(uint64(d) * uint64(n))
}

// String implements fmt.Stringer.
func (d NumDimensions) String() string { return fmt.Sprintf("%d", uint64(d)) }

// NumVectors is the current number of stored or streamed vectors.
type NumVectors uint64

// Get returns the wrapped value.
func (n NumVectors) Get() uint64 { return uint64(n) }

// Range calls yield for every index in [0, n), stopping early if yield
// returns false.
func (n NumVectors) Range(yield func(uint64) bool) {
	for i := uint64(0); i < uint64(n); i++ {
		if !yield(i) {
			return
		}
	}
}

// Mul combines a vector count with a dimensionality to produce the number
// of floats needed to store that many vectors.
func (n NumVectors) Mul(d NumDimensions) NumElements {
	return NumElements(uint64(n) * uint64(d))
}

// String implements fmt.Stringer.
func (n NumVectors) String() string { return fmt.Sprintf("%d", uint64(n)) }

// NumElements is a count of raw float32 elements, D·N. Kept distinct from
// NumVectors and NumDimensions so a caller can never accidentally pass one
// where the other is expected.
type NumElements uint64

// Get returns the wrapped value.
func (e NumElements) Get() uint64 { return uint64(e) }

// String implements fmt.Stringer.
func (e NumElements) String() string { return fmt.Sprintf("%d", uint64(e)) }

// LocalID is an externally meaningful, non-zero identifier for one stored
// vector. Zero is reserved to mean "absent" wherever an Option-like slot is
// needed (see memchunk.SlotAssignment).
type LocalID uint64

// AbsentID is the reserved sentinel meaning "no vector assigned".
const AbsentID LocalID = 0

// Get returns the wrapped value.
func (id LocalID) Get() uint64 { return uint64(id) }

// Valid reports whether this ID is usable, i.e. not the absent sentinel.
func (id LocalID) Valid() bool { return id != AbsentID }

// String implements fmt.Stringer.
func (id LocalID) String() string { return fmt.Sprintf("LocalID(%d)", uint64(id)) }
