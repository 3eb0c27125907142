package memchunk

import "github.com/sunsided/flatvec/internal/quantity"

// SlotAssignment tracks which LocalID, if any, occupies each row slot of
// one chunk. A slot holding quantity.AbsentID is free.
type SlotAssignment struct {
	ids   []quantity.LocalID
	count int
}

// NewSlotAssignment returns an assignment table for a chunk with capacity
// slots, all initially free.
func NewSlotAssignment(capacity int) *SlotAssignment {
	return &SlotAssignment{ids: make([]quantity.LocalID, capacity)}
}

// Cap returns the number of row slots this assignment tracks.
func (a *SlotAssignment) Cap() int { return len(a.ids) }

// Count returns how many slots are currently occupied.
func (a *SlotAssignment) Count() int { return a.count }

// IsFull reports whether every slot is occupied.
func (a *SlotAssignment) IsFull() bool { return a.count == len(a.ids) }

// IsEmpty reports whether no slot is occupied.
func (a *SlotAssignment) IsEmpty() bool { return a.count == 0 }

// At returns the LocalID occupying slot, or quantity.AbsentID if free.
func (a *SlotAssignment) At(slot int) quantity.LocalID { return a.ids[slot] }

// Replace sets slot to id, adjusting the occupied count for the
// free-to-occupied or occupied-to-free transition. Replacing an occupied
// slot with another occupied id does not change the count.
func (a *SlotAssignment) Replace(slot int, id quantity.LocalID) {
	was := a.ids[slot].Valid()
	now := id.Valid()
	a.ids[slot] = id
	switch {
	case !was && now:
		a.count++
	case was && !now:
		a.count--
	}
}

// FirstFreeSlot returns the lowest-numbered free slot and true, or
// (0, false) if the assignment is full.
func (a *SlotAssignment) FirstFreeSlot() (int, bool) {
	if a.IsFull() {
		return 0, false
	}
	for i, id := range a.ids {
		if !id.Valid() {
			return i, true
		}
	}
	return 0, false
}

// AssignmentTable tracks per-chunk SlotAssignments in parallel with a
// ChunkVector's chunk list; the chunk at Index i has its slots tracked by
// the i'th entry here.
type AssignmentTable struct {
	perChunk []*SlotAssignment
}

// NewAssignmentTable returns an empty assignment table.
func NewAssignmentTable() *AssignmentTable {
	return &AssignmentTable{}
}

// Len returns the number of chunks tracked.
func (t *AssignmentTable) Len() int { return len(t.perChunk) }

// AllocateNext appends a fresh, fully-free assignment for a newly
// allocated chunk of the given row capacity, returning its index.
func (t *AssignmentTable) AllocateNext(capacity int) Index {
	t.perChunk = append(t.perChunk, NewSlotAssignment(capacity))
	return Index(len(t.perChunk) - 1)
}

// At returns the assignment table for chunk idx.
func (t *AssignmentTable) At(idx Index) *SlotAssignment {
	return t.perChunk[idx]
}

// LastIndex returns the index of the most recently allocated assignment.
// It panics if the table is empty.
func (t *AssignmentTable) LastIndex() Index {
	if len(t.perChunk) == 0 {
		panic("memchunk: LastIndex on empty AssignmentTable")
	}
	return Index(len(t.perChunk) - 1)
}
