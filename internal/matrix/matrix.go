// Package matrix provides a growable, row-major float32 matrix sized to
// an arbitrary vector count rather than to a fixed chunk stride. It backs
// the query batch and any scratch buffers handed to a dot-product kernel,
// CPU or GPU.
package matrix

import (
	"fmt"

	"github.com/sunsided/flatvec/internal/memchunk"
	"github.com/sunsided/flatvec/internal/quantity"
)

// AnySizeMatrix is a num_vecs x num_dims row-major matrix that can grow by
// doubling and can produce a transposed copy of itself for kernels that
// prefer column-major access.
type AnySizeMatrix struct {
	buf         *buffer
	numVecs     quantity.NumVectors
	virtNumVecs quantity.NumVectors // allocated capacity, may exceed numVecs
	numDims     quantity.NumDimensions
	hint        memchunk.AccessHint
}

// New allocates a matrix with capacity for numVecs rows of numDims floats
// each, applying hint via madvise once the backing region is mapped.
// numDims must be a multiple of 16, matching internal/kernel's Unroll16
// unroll factor.
func New(numVecs quantity.NumVectors, numDims quantity.NumDimensions, hint memchunk.AccessHint) (*AnySizeMatrix, error) {
	if numDims.Get()%16 != 0 {
		return nil, fmt.Errorf("matrix: num_dims %d is not a multiple of 16", numDims.Get())
	}
	return newRaw(numVecs, numDims, hint)
}

// newRaw allocates a matrix without New's 16-multiple alignment check.
// AsTransposed's output and Double's copy both need to carry forward
// whatever numDims the source logically has — which, after a transpose,
// is the source's original row count and has no reason to be a multiple
// of 16 — so they bypass New's kernel-alignment precondition rather than
// risk failing on (or silently padding) a perfectly valid logical shape.
func newRaw(numVecs quantity.NumVectors, numDims quantity.NumDimensions, hint memchunk.AccessHint) (*AnySizeMatrix, error) {
	buf, err := newBuffer(int(numDims.Mul(numVecs)), hint)
	if err != nil {
		return nil, err
	}
	return &AnySizeMatrix{buf: buf, numVecs: numVecs, virtNumVecs: numVecs, numDims: numDims, hint: hint}, nil
}

// Len returns the logical row count (not the allocated capacity).
func (m *AnySizeMatrix) Len() quantity.NumVectors { return m.numVecs }

// IsEmpty reports whether the matrix holds zero rows.
func (m *AnySizeMatrix) IsEmpty() bool { return m.numVecs == 0 }

// NumVecs returns the logical row count.
func (m *AnySizeMatrix) NumVecs() quantity.NumVectors { return m.numVecs }

// NumDims returns the column count.
func (m *AnySizeMatrix) NumDims() quantity.NumDimensions { return m.numDims }

// UseNumVecs shrinks or grows the logical row count within the already
// allocated capacity, without touching the backing buffer. Used when a
// caller fills fewer rows than the matrix was sized for (e.g. the final,
// partial query batch of a stream). n=0 means "use all": it restores the
// full allocated capacity rather than narrowing the matrix to zero rows.
func (m *AnySizeMatrix) UseNumVecs(n quantity.NumVectors) error {
	if n.Get() == 0 {
		m.numVecs = m.virtNumVecs
		return nil
	}
	if n.Get() > m.virtNumVecs.Get() {
		return fmt.Errorf("matrix: use_num_vecs %d exceeds capacity %d", n.Get(), m.virtNumVecs.Get())
	}
	m.numVecs = n
	return nil
}

// AsSlice returns the matrix's logical region as a flat row-major float32
// slice of length NumVecs()*NumDims().
func (m *AnySizeMatrix) AsSlice() []float32 {
	return m.buf.floats()[:m.numDims.Mul(m.numVecs)]
}

// GetRowMajorVec returns the row'th vector as a sub-slice sharing the
// matrix's backing storage; mutating it mutates the matrix.
func (m *AnySizeMatrix) GetRowMajorVec(row quantity.NumVectors) []float32 {
	start := int(m.numDims) * int(row)
	return m.buf.floats()[start : start+int(m.numDims)]
}

// Close releases the matrix's backing memory.
func (m *AnySizeMatrix) Close() error {
	return m.buf.close()
}

// AsTransposed returns a new matrix holding this matrix's data in
// column-major order: the returned matrix's row i holds every vector's
// i'th component. Used by the GPU tiled (local-memory) kernel path, which
// benefits from contiguous per-dimension access.
func (m *AnySizeMatrix) AsTransposed() (*AnySizeMatrix, error) {
	dstVecs := quantity.NumVectors(m.numDims.Get())
	dstDims := quantity.NumDimensions(m.numVecs.Get())
	out, err := newRaw(dstVecs, dstDims, m.hint)
	if err != nil {
		return nil, err
	}

	src := m.AsSlice()
	dst := out.AsSlice()
	nd, nv, stride := int(m.numDims), int(m.numVecs), int(dstDims)
	for r := 0; r < nv; r++ {
		for c := 0; c < nd; c++ {
			dst[c*stride+r] = src[r*nd+c]
		}
	}
	return out, nil
}

// Double reallocates the matrix at twice its current capacity and copies
// the existing data twice, head to tail, doubling the logical row count.
// This mirrors the original implementation's chunk-growth trick for
// building large synthetic benchmarks without an explicit loop at the
// call site.
func (m *AnySizeMatrix) Double() (*AnySizeMatrix, error) {
	newVecs := quantity.NumVectors(m.numVecs.Get() * 2)
	out, err := newRaw(newVecs, m.numDims, m.hint)
	if err != nil {
		return nil, err
	}
	dst := out.AsSlice()
	src := m.AsSlice()
	copy(dst[:len(src)], src)
	copy(dst[len(src):], src)
	return out, nil
}
