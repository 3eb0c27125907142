//go:build !linux && !darwin

package memchunk

import (
	"unsafe"
)

// FixedSizeMemoryChunk is a plain heap-backed fallback for platforms
// without an anonymous-mmap syscall wired up (unix.Mmap is only used on
// linux/darwin). It over-allocates by 63 bytes and slices to the first
// 64-byte aligned offset, giving the same alignment guarantee the mmap
// path gets for free from page alignment.
type FixedSizeMemoryChunk struct {
	raw  []byte
	data []byte
}

// NumFloats is how many float32 slots fit in one chunk.
const NumFloats = ChunkBytes / 4

// newFixedSizeMemoryChunk ignores hint: this fallback has no madvise
// equivalent to apply it to.
func newFixedSizeMemoryChunk(hint AccessHint) (*FixedSizeMemoryChunk, error) {
	_ = hint
	raw := make([]byte, ChunkBytes+63)
	off := (64 - uintptr(unsafe.Pointer(&raw[0]))%64) % 64
	return &FixedSizeMemoryChunk{raw: raw, data: raw[off : off+ChunkBytes]}, nil
}

// Close is a no-op fallback; the backing array is reclaimed by the
// garbage collector once the chunk is dropped.
func (c *FixedSizeMemoryChunk) Close() error {
	c.data = nil
	c.raw = nil
	return nil
}

// Floats returns the chunk's storage reinterpreted as a float32 slice.
func (c *FixedSizeMemoryChunk) Floats() []float32 {
	return unsafe.Slice((*float32)(unsafe.Pointer(&c.data[0])), NumFloats)
}
