package store

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sunsided/flatvec/internal/memchunk"
	"github.com/sunsided/flatvec/internal/quantity"
	"github.com/sunsided/flatvec/internal/vecdb"
)

// metaSuffix names the sidecar file holding each persisted vector's
// LocalID, in the same order the vectors appear in the VecDb file. The
// VecDb format itself (see internal/vecdb) has no room for an ID column,
// so IDs live alongside it rather than in it.
const metaSuffix = ".meta"

// Save flushes every occupied vector to path as a VecDb file, plus a
// sidecar metadata file recording each vector's LocalID in write order.
// Both files are written to temporaries and renamed into place only once
// complete, so a reader never observes a partially written pair.
func (m *ChunkManager) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metaPath := path + metaSuffix
	tmpData := path + ".tmp"
	tmpMeta := metaPath + ".tmp"

	ids := make([]quantity.LocalID, 0, m.ids.Len())

	w, err := vecdb.OpenWrite(tmpData, quantity.NumVectors(m.ids.Len()), m.numDims)
	if err != nil {
		return fmt.Errorf("store: save: open vecdb: %w", err)
	}
	writeErr := m.forEachOccupiedLocked(func(id quantity.LocalID, vec []float32) error {
		if err := w.WriteVec(vec); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	if writeErr != nil {
		_ = w.Close()
		_ = os.Remove(tmpData)
		return fmt.Errorf("store: save: write vecs: %w", writeErr)
	}
	if err := w.Close(); err != nil {
		_ = os.Remove(tmpData)
		return fmt.Errorf("store: save: close vecdb: %w", err)
	}

	if err := writeMetaFile(tmpMeta, ids); err != nil {
		_ = os.Remove(tmpData)
		return fmt.Errorf("store: save: write metadata: %w", err)
	}

	if err := os.Rename(tmpData, path); err != nil {
		_ = os.Remove(tmpData)
		_ = os.Remove(tmpMeta)
		return fmt.Errorf("store: save: rename vecdb: %w", err)
	}
	if err := os.Rename(tmpMeta, metaPath); err != nil {
		return fmt.Errorf("store: save: rename metadata: %w", err)
	}
	return nil
}

// forEachOccupiedLocked visits every occupied slot in chunk/slot order.
// Occupied slots always form a prefix of length assignment.Count() — there
// is no deletion, so no hole to skip. Callers must hold m.mu.
func (m *ChunkManager) forEachOccupiedLocked(fn func(id quantity.LocalID, vec []float32) error) error {
	dims := int(m.numDims.Get())
	for c := 0; c < m.chunks.Len(); c++ {
		idx := memchunk.Index(c)
		assignment := m.assignments.At(idx)
		floats := m.chunks.At(idx).Floats()
		for slot := 0; slot < assignment.Count(); slot++ {
			offset := slot * dims
			if err := fn(assignment.At(slot), floats[offset:offset+dims]); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMetaFile(path string, ids []quantity.LocalID) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ids)
}

// Load reconstructs a ChunkManager from a VecDb file and its sidecar
// metadata written by Save, re-inserting every vector under its original
// LocalID. The manager is built WithOptimisticInserts since the IDs are
// already known to be unique (Save never persists a duplicate).
func Load(path string, accessHint memchunk.AccessHint) (*ChunkManager, error) {
	metaPath := path + metaSuffix

	ids, err := readMetaFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("store: load: read metadata: %w", err)
	}

	r, err := vecdb.OpenRead(path)
	if err != nil {
		return nil, fmt.Errorf("store: load: open vecdb: %w", err)
	}
	defer r.Close()

	if quantity.NumVectors(len(ids)) != r.NumVectors() {
		return nil, fmt.Errorf("store: load: metadata has %d ids but vecdb has %d vectors", len(ids), r.NumVectors())
	}

	m, err := New(r.NumDimensions(), accessHint, WithOptimisticInserts())
	if err != nil {
		return nil, fmt.Errorf("store: load: allocate manager: %w", err)
	}

	i := 0
	read, err := r.ReadAllVecs(func(_ int, vec []float32) error {
		if err := m.InsertVector(ids[i], vec); err != nil {
			return err
		}
		i++
		return nil
	})
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("store: load: restore vecs: %w", err)
	}
	if read != len(ids) {
		_ = m.Close()
		return nil, fmt.Errorf("store: load: read %d vecs but metadata has %d ids", read, len(ids))
	}
	return m, nil
}

func readMetaFile(path string) ([]quantity.LocalID, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []quantity.LocalID
	if err := gob.NewDecoder(f).Decode(&ids); err != nil {
		return nil, err
	}
	return ids, nil
}
