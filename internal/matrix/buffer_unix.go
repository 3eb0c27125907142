//go:build linux || darwin

package matrix

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/sunsided/flatvec/internal/memchunk"
)

// buffer is a 64-byte aligned, anonymously mmap'd region reinterpreted as
// float32 storage. AnySizeMatrix uses the same mmap/madvise technique as
// internal/memchunk, but sized to an arbitrary (not fixed-stride) row
// count since matrices built for a GPU dispatch are sized to the query
// batch rather than to a fixed chunk stride.
type buffer struct {
	raw []byte
}

func newBuffer(numFloats int, hint memchunk.AccessHint) (*buffer, error) {
	size := numFloats * 4
	if size == 0 {
		size = 64
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("matrix: mmap buffer: %w", err)
	}
	if err := unix.Madvise(data, madviseAdvice(hint)); err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("matrix: madvise buffer: %w", err)
	}
	return &buffer{raw: data}, nil
}

func madviseAdvice(hint memchunk.AccessHint) int {
	switch hint {
	case memchunk.AccessHintSequential:
		return unix.MADV_SEQUENTIAL
	case memchunk.AccessHintRandom:
		return unix.MADV_RANDOM
	default:
		return unix.MADV_WILLNEED
	}
}

func (b *buffer) floats() []float32 {
	if len(b.raw) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b.raw[0])), len(b.raw)/4)
}

func (b *buffer) close() error {
	if b.raw == nil {
		return nil
	}
	err := unix.Munmap(b.raw)
	b.raw = nil
	return err
}
