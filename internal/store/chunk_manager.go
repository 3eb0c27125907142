package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sunsided/flatvec/internal/engineerr"
	"github.com/sunsided/flatvec/internal/memchunk"
	"github.com/sunsided/flatvec/internal/quantity"
	"github.com/sunsided/flatvec/internal/registry"
)

// ChunkManager is a row-major, append-only vector store: each insert lands
// a vector into the next slot after the last occupied one in the last
// chunk, allocating a fresh chunk only when the current one fills up.
// Occupied slots always form a prefix of each chunk — there is no
// deletion, and therefore never a hole to reuse.
type ChunkManager struct {
	mu sync.RWMutex

	numDims      quantity.NumDimensions
	vecsPerChunk int
	chunks       *memchunk.ChunkVector
	assignments  *memchunk.AssignmentTable
	ids          *registry.Registry[location]
	optimistic   bool
}

// New creates a chunk manager sized for vectors of dims floats, applying
// accessHint to every chunk it allocates. It starts with a single
// pre-allocated chunk, mirroring the reference implementation's eager
// first allocation rather than deferring it to the first insert.
func New(dims quantity.NumDimensions, accessHint memchunk.AccessHint, opts ...ChunkManagerOption) (*ChunkManager, error) {
	vecsPerChunk := memchunk.NumFloats / int(dims.Get())
	if vecsPerChunk == 0 {
		return nil, fmt.Errorf("store: dims %d does not fit in one %d-byte chunk", dims.Get(), memchunk.ChunkBytes)
	}

	m := &ChunkManager{
		numDims:      dims,
		vecsPerChunk: vecsPerChunk,
		chunks:       memchunk.NewChunkVector(accessHint),
		assignments:  memchunk.NewAssignmentTable(),
		ids:          registry.New[location](),
	}
	for _, opt := range opts {
		opt(m)
	}

	if _, err := m.allocateChunk(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ChunkManager) allocateChunk() (memchunk.Index, error) {
	idx, err := m.chunks.AllocateNext()
	if err != nil {
		return 0, engineerr.Wrap(engineerr.ErrCodeChunkAllocFailed, err)
	}
	if got := m.assignments.AllocateNext(m.vecsPerChunk); got != idx {
		// The two vectors are grown in lockstep by construction; a
		// mismatch here means a caller bypassed allocateChunk.
		panic("store: chunk and assignment vectors diverged")
	}
	return idx, nil
}

// NumDims returns the dimensionality every vector in this manager must
// match.
func (m *ChunkManager) NumDims() quantity.NumDimensions {
	return m.numDims
}

// MaxVecs returns the number of vector slots currently allocated across
// every chunk, whether or not they're occupied. It grows as chunks are
// added and never shrinks.
func (m *ChunkManager) MaxVecs() quantity.NumVectors {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return quantity.NumVectors(uint64(m.chunks.Len()) * uint64(m.vecsPerChunk))
}

// Count returns the number of vectors currently stored.
func (m *ChunkManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ids.Len()
}

// InsertVector stores vector under id. vector must have NumDims() entries
// (engineerr.DimensionalityMismatch otherwise) and id must not already be
// registered (engineerr.DuplicateID otherwise, unless the manager was
// built WithOptimisticInserts). The duplicate check runs before any chunk
// allocation, so an insert rejected as a duplicate never allocates a
// chunk and leaves nothing to roll back.
func (m *ChunkManager) InsertVector(id quantity.LocalID, vector []float32) error {
	if len(vector) != int(m.numDims.Get()) {
		return engineerr.DimensionalityMismatch(int(m.numDims.Get()), len(vector))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.optimistic && m.ids.ContainsKey(id) {
		return engineerr.DuplicateID(id)
	}

	last := m.chunks.LastIndex()
	assignment := m.assignments.At(last)
	if assignment.IsFull() {
		idx, err := m.allocateChunk()
		if err != nil {
			return err
		}
		last = idx
		assignment = m.assignments.At(last)
	}

	// target_slot = count at insertion time: the next slot after the
	// chunk's occupied prefix, never a scan for a hole since none exist.
	slot := assignment.Count()

	dims := int(m.numDims.Get())
	offset := slot * dims
	target := m.chunks.At(last).Floats()[offset : offset+dims]
	copy(target, vector)

	assignment.Replace(slot, id)
	m.ids.Insert(id, location{chunk: last, slot: slot})
	return nil
}

// Get returns a copy of the vector stored under id, or false if id isn't
// registered.
func (m *ChunkManager) Get(id quantity.LocalID) ([]float32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loc, ok := m.ids.Get(id)
	if !ok {
		return nil, false
	}
	dims := int(m.numDims.Get())
	offset := loc.slot * dims
	src := m.chunks.At(loc.chunk).Floats()[offset : offset+dims]
	dst := make([]float32, dims)
	copy(dst, src)
	return dst, true
}

// Close releases every chunk's backing memory. The manager must not be
// used afterward.
func (m *ChunkManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.chunks.Close(); err != nil {
		slog.Warn("store: error releasing chunk memory", "error", err)
		return err
	}
	return nil
}
