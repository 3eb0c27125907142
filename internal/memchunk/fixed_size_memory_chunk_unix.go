//go:build linux || darwin

package memchunk

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// FixedSizeMemoryChunk is one ChunkBytes-sized, anonymously mmap'd, 64-byte
// aligned region of float32 storage. mmap'd pages are always aligned to at
// least the system page size (4096 bytes on every platform this engine
// targets), which comfortably satisfies the 64-byte requirement without
// any extra bookkeeping.
type FixedSizeMemoryChunk struct {
	data []byte
}

// NumFloats is how many float32 slots fit in one chunk.
const NumFloats = ChunkBytes / 4

// newFixedSizeMemoryChunk allocates and zeroes one chunk, applying the
// requested access hint via madvise(2) once the mapping is in place.
func newFixedSizeMemoryChunk(hint AccessHint) (*FixedSizeMemoryChunk, error) {
	data, err := unix.Mmap(-1, 0, ChunkBytes, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("memchunk: mmap chunk: %w", err)
	}
	if err := unix.Madvise(data, madviseAdvice(hint)); err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("memchunk: madvise chunk: %w", err)
	}
	if uintptr(unsafe.Pointer(&data[0]))&63 != 0 {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("memchunk: mmap returned misaligned region")
	}
	return &FixedSizeMemoryChunk{data: data}, nil
}

// Close releases the chunk's backing pages. Chunks are owned exclusively
// by their ChunkVector; callers never call Close directly outside of it.
func (c *FixedSizeMemoryChunk) Close() error {
	if c.data == nil {
		return nil
	}
	err := unix.Munmap(c.data)
	c.data = nil
	return err
}

// Floats returns the chunk's storage reinterpreted as a float32 slice.
func (c *FixedSizeMemoryChunk) Floats() []float32 {
	return unsafe.Slice((*float32)(unsafe.Pointer(&c.data[0])), NumFloats)
}

func madviseAdvice(hint AccessHint) int {
	switch hint {
	case AccessHintSequential:
		return unix.MADV_SEQUENTIAL
	case AccessHintRandom:
		return unix.MADV_RANDOM
	default:
		return unix.MADV_WILLNEED
	}
}
