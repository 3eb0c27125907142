package registry_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunsided/flatvec/internal/quantity"
	"github.com/sunsided/flatvec/internal/registry"
)

// TS01: a new registry is empty.
func TestNew_MapIsEmpty(t *testing.T) {
	r := registry.New[int]()
	assert.True(t, r.IsEmpty())
	assert.Equal(t, 0, r.Len())
}

// TS02: Insert followed by Get round-trips the value.
func TestInsert_Works(t *testing.T) {
	r := registry.New[string]()
	r.Insert(quantity.LocalID(1), "a")
	r.Insert(quantity.LocalID(2), "b")

	v, ok := r.Get(quantity.LocalID(1))
	require.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, r.Len())
}

// TS03: re-inserting an existing key overwrites without growing the count.
func TestInsert_OverwritesExisting(t *testing.T) {
	r := registry.New[int]()
	r.Insert(quantity.LocalID(5), 10)
	r.Insert(quantity.LocalID(5), 20)

	v, ok := r.Get(quantity.LocalID(5))
	require.True(t, ok)
	assert.Equal(t, 20, v)
	assert.Equal(t, 1, r.Len())
}

// TS04: Remove deletes an entry and reports presence correctly.
func TestRemove_Works(t *testing.T) {
	r := registry.New[int]()
	r.Insert(quantity.LocalID(1), 100)

	assert.True(t, r.Remove(quantity.LocalID(1)))
	assert.False(t, r.ContainsKey(quantity.LocalID(1)))
	assert.True(t, r.IsEmpty())
	assert.False(t, r.Remove(quantity.LocalID(1)))
}

// TS05: Keys returns entries in ascending order regardless of insert order.
func TestKeys_AreSorted(t *testing.T) {
	r := registry.New[int]()
	ids := []int{50, 10, 30, 20, 40}
	for _, id := range ids {
		r.Insert(quantity.LocalID(id), id)
	}

	keys := r.Keys()
	got := make([]int, len(keys))
	for i, k := range keys {
		got[i] = int(k.Get())
	}
	sort.Ints(ids)
	assert.Equal(t, ids, got)
}

// TS06: a large randomized sequence of inserts and deletes leaves the tree
// consistent with a reference map, exercising rebalancing on both paths.
func TestRegistry_RandomizedAgainstReferenceMap(t *testing.T) {
	rng := rand.New(rand.NewSource(1337))
	r := registry.New[int]()
	reference := make(map[quantity.LocalID]int)

	for i := 0; i < 2000; i++ {
		id := quantity.LocalID(rng.Intn(500) + 1)
		if rng.Intn(3) == 0 {
			delete(reference, id)
			r.Remove(id)
		} else {
			reference[id] = i
			r.Insert(id, i)
		}
	}

	require.Equal(t, len(reference), r.Len())
	for id, want := range reference {
		got, ok := r.Get(id)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}
