// Package store provides the in-memory, incrementally-buildable vector
// index: a row-major chunk manager that accepts one vector at a time and
// later flushes its contents to an on-disk VecDb.
package store

import "github.com/sunsided/flatvec/internal/memchunk"

// location pinpoints a single vector's storage slot: which chunk it lives
// in, and which row slot within that chunk. The ID registry maps a
// caller-supplied LocalID to one of these so a later Get doesn't
// need to rescan every chunk.
type location struct {
	chunk memchunk.Index
	slot  int
}
