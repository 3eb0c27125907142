//go:build !linux && !darwin

package matrix

import (
	"unsafe"

	"github.com/sunsided/flatvec/internal/memchunk"
)

// buffer is a heap-backed fallback for platforms without anonymous mmap
// wired up; see internal/memchunk's equivalent fallback for the same
// alignment trick.
type buffer struct {
	raw []byte
	off uintptr
}

// newBuffer ignores hint: this fallback has no madvise equivalent.
func newBuffer(numFloats int, hint memchunk.AccessHint) (*buffer, error) {
	_ = hint
	size := numFloats*4 + 63
	if size < 64 {
		size = 64
	}
	raw := make([]byte, size)
	off := (64 - uintptr(unsafe.Pointer(&raw[0]))%64) % 64
	return &buffer{raw: raw, off: off}, nil
}

func (b *buffer) floats() []float32 {
	if len(b.raw) == 0 {
		return nil
	}
	n := (len(b.raw) - int(b.off)) / 4
	return unsafe.Slice((*float32)(unsafe.Pointer(&b.raw[b.off])), n)
}

func (b *buffer) close() error {
	b.raw = nil
	return nil
}
