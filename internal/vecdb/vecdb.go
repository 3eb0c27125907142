// Package vecdb implements the engine's on-disk vector file format: a
// fixed 16-byte header followed by a raw row-major float32 matrix, memory
// mapped for both writing and reading. The layout is byte-for-byte the
// same one the original implementation's `VecDb` type wrote.
package vecdb

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/gofrs/flock"

	mmap "github.com/blevesearch/mmap-go"

	"github.com/sunsided/flatvec/internal/engineerr"
	"github.com/sunsided/flatvec/internal/quantity"
)

// VecDb is a memory-mapped vector file, opened either for sequential
// writing (OpenWrite) or for streaming/random reading (OpenRead).
type VecDb struct {
	file          *os.File
	mm            mmap.MMap
	lock          *flock.Flock
	numVectors    quantity.NumVectors
	numDimensions quantity.NumDimensions
	pos           int // next byte offset to read/write, always >= HeaderSize
	writable      bool
}

// vecStride is the byte length of a single stored vector.
func (v *VecDb) vecStride() int {
	return 4 * int(v.numDimensions)
}

// NumVectors returns the vector count recorded in the header.
func (v *VecDb) NumVectors() quantity.NumVectors { return v.numVectors }

// NumDimensions returns the dimensionality recorded in the header.
func (v *VecDb) NumDimensions() quantity.NumDimensions { return v.numDimensions }

// OpenWrite creates a new VecDb file at path sized exactly for numVectors
// rows of numDimensions floats, writes the header, and takes an exclusive
// file lock for the lifetime of the VecDb. The caller must call WriteVec
// exactly numVectors times before Close.
func OpenWrite(path string, numVectors quantity.NumVectors, numDimensions quantity.NumDimensions) (*VecDb, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, engineerr.Wrap(engineerr.ErrCodeLockHeld, err)
	}

	size := int64(HeaderSize) + int64(numVectors)*4*int64(numDimensions)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		_ = lock.Unlock()
		return nil, engineerr.Wrap(engineerr.ErrCodeVecDbIO, err)
	}
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		_ = lock.Unlock()
		return nil, engineerr.Wrap(engineerr.ErrCodeVecDbIO, err)
	}

	mm, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		_ = f.Close()
		_ = lock.Unlock()
		return nil, engineerr.Wrap(engineerr.ErrCodeVecDbIO, err)
	}

	h := header{version: 0, padding: headerPadding, numVectors: uint32(numVectors), numDimensions: uint32(numDimensions)}
	copy(mm[:HeaderSize], h.marshal()[:])

	return &VecDb{
		file:          f,
		mm:            mm,
		lock:          lock,
		numVectors:    numVectors,
		numDimensions: numDimensions,
		pos:           HeaderSize,
		writable:      true,
	}, nil
}

// OpenRead opens an existing VecDb file at path read-only, taking a
// shared file lock so concurrent readers never block each other but a
// writer (OpenWrite) excludes them all.
func OpenRead(path string) (*VecDb, error) {
	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, engineerr.Wrap(engineerr.ErrCodeLockHeld, err)
	}

	f, err := os.Open(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, engineerr.Wrap(engineerr.ErrCodeVecDbIO, err)
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		_ = lock.Unlock()
		return nil, engineerr.Wrap(engineerr.ErrCodeVecDbIO, err)
	}
	if len(mm) < HeaderSize {
		_ = mm.Unmap()
		_ = f.Close()
		_ = lock.Unlock()
		return nil, engineerr.New(engineerr.ErrCodeVecDbCorrupt, "file shorter than header", nil)
	}

	h := unmarshalHeader(mm[:HeaderSize])
	if h.version != 0 {
		_ = mm.Unmap()
		_ = f.Close()
		_ = lock.Unlock()
		return nil, engineerr.New(engineerr.ErrCodeVecDbCorrupt, fmt.Sprintf("unsupported version %d", h.version), nil)
	}

	return &VecDb{
		file:          f,
		mm:            mm,
		lock:          lock,
		numVectors:    quantity.NumVectors(h.numVectors),
		numDimensions: quantity.NumDimensions(h.numDimensions),
		pos:           HeaderSize,
		writable:      false,
	}, nil
}

// WriteVec appends one vector at the current write position. vec must
// have exactly NumDimensions() entries.
func (v *VecDb) WriteVec(vec []float32) error {
	if !v.writable {
		return engineerr.New(engineerr.ErrCodeVecDbIO, "vecdb opened read-only", nil)
	}
	if len(vec) != int(v.numDimensions) {
		return engineerr.DimensionalityMismatch(int(v.numDimensions), len(vec))
	}
	stride := v.vecStride()
	buf := v.mm[v.pos : v.pos+stride]
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
	}
	v.pos += stride
	return nil
}

// ReadVecInto reads the next vector into dst, which must have exactly
// NumDimensions() entries, and advances the read position.
func (v *VecDb) ReadVecInto(dst []float32) error {
	if len(dst) != int(v.numDimensions) {
		return engineerr.DimensionalityMismatch(int(v.numDimensions), len(dst))
	}
	stride := v.vecStride()
	if v.pos+stride > len(v.mm) {
		return engineerr.New(engineerr.ErrCodeVecDbCorrupt, "read past end of file", nil)
	}
	buf := v.mm[v.pos : v.pos+stride]
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	v.pos += stride
	return nil
}

// ReadVec reads and returns the next vector, advancing the read position.
func (v *VecDb) ReadVec() ([]float32, error) {
	dst := make([]float32, v.numDimensions)
	if err := v.ReadVecInto(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// ReadNVecs reads up to n vectors starting at the current position,
// invoking action for each with its zero-based index within this call and
// its data. Reading stops early, without error, if action returns
// ErrStopReading; any other error from action propagates and also stops the
// read. The returned int is the number of vectors actually consumed,
// which is less than n when action stops the scan early. This is the
// bulk, cancellable counterpart to ReadVec.
func (v *VecDb) ReadNVecs(n int, action func(i int, vec []float32) error) (int, error) {
	dst := make([]float32, v.numDimensions)
	for i := 0; i < n; i++ {
		if err := v.ReadVecInto(dst); err != nil {
			return i, err
		}
		if err := action(i, dst); err != nil {
			if err == ErrStopReading {
				return i + 1, nil
			}
			return i, err
		}
	}
	return n, nil
}

// ErrStopReading is returned by a ReadNVecs/ReadAllVecs callback to stop
// the scan early without that being treated as a failure.
var ErrStopReading = fmt.Errorf("vecdb: stop reading")

// ReadAllVecs reads every remaining vector in the file via ReadNVecs,
// returning the number of vectors actually consumed.
func (v *VecDb) ReadAllVecs(action func(i int, vec []float32) error) (int, error) {
	remaining := int(v.numVectors) - (v.pos-HeaderSize)/v.vecStride()
	return v.ReadNVecs(remaining, action)
}

// Flush flushes any pending writes to disk.
func (v *VecDb) Flush() error {
	if !v.writable {
		return nil
	}
	return v.mm.Flush()
}

// Close flushes (if writable), unmaps, closes the file, and releases the
// file lock.
func (v *VecDb) Close() error {
	var firstErr error
	if v.writable {
		if err := v.mm.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := v.mm.Unmap(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := v.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := v.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
