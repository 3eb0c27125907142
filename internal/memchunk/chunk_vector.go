package memchunk

import "fmt"

// ChunkVector owns a growable sequence of fixed-size chunks. Chunks are
// appended but never removed or reordered, so an Index handed out earlier
// stays valid for the lifetime of the ChunkVector.
type ChunkVector struct {
	chunks []*FixedSizeMemoryChunk
	hint   AccessHint
}

// NewChunkVector returns an empty chunk vector with no chunks allocated
// yet; the owner calls AllocateNext for the first chunk (store.New does so
// before returning).
// Every chunk it allocates is madvise-hinted with hint.
func NewChunkVector(hint AccessHint) *ChunkVector {
	return &ChunkVector{hint: hint}
}

// Len returns the number of chunks currently allocated.
func (v *ChunkVector) Len() int { return len(v.chunks) }

// IsEmpty reports whether no chunk has been allocated yet.
func (v *ChunkVector) IsEmpty() bool { return len(v.chunks) == 0 }

// LastIndex returns the index of the most recently allocated chunk. It
// panics if the vector is empty; callers must check IsEmpty first.
func (v *ChunkVector) LastIndex() Index {
	if v.IsEmpty() {
		panic("memchunk: LastIndex on empty ChunkVector")
	}
	return Index(len(v.chunks) - 1)
}

// AllocateNext appends a new chunk and returns its index.
func (v *ChunkVector) AllocateNext() (Index, error) {
	c, err := newFixedSizeMemoryChunk(v.hint)
	if err != nil {
		return 0, fmt.Errorf("memchunk: allocate chunk: %w", err)
	}
	v.chunks = append(v.chunks, c)
	return Index(len(v.chunks) - 1), nil
}

// At returns the chunk at idx. It panics on an out-of-range index, the
// same contract as a slice index expression.
func (v *ChunkVector) At(idx Index) *FixedSizeMemoryChunk {
	return v.chunks[idx]
}

// Close releases every chunk's backing memory.
func (v *ChunkVector) Close() error {
	var firstErr error
	for _, c := range v.chunks {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
