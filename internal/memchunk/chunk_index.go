package memchunk

import "fmt"

// Index identifies one chunk within a ChunkVector. External callers must
// always address a vector by (Index, local slot) rather than by pointer,
// since the backing chunk slice may grow and reallocate.
type Index uint64

// ZeroIndex is the index of the first chunk ever allocated.
const ZeroIndex Index = 0

// Get returns the wrapped value.
func (i Index) Get() uint64 { return uint64(i) }

// String implements fmt.Stringer.
func (i Index) String() string { return fmt.Sprintf("ChunkIndex(%d)", uint64(i)) }
