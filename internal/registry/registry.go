// Package registry provides an ordered, balanced-tree-backed map from a
// vector's LocalID to wherever the store keeps it (chunk index and row
// slot). No ordered-map library appears anywhere in the retrieval pack, so
// this is a hand-rolled left-leaning red-black tree — the direct Go
// generalization of the BTreeMap the original implementation used for the
// same job.
package registry

import "github.com/sunsided/flatvec/internal/quantity"

type color bool

const (
	red   color = true
	black color = false
)

type node[V any] struct {
	key         quantity.LocalID
	val         V
	left, right *node[V]
	color       color
}

// Registry maps LocalID to V, keeping keys in sorted order.
type Registry[V any] struct {
	root *node[V]
	size int
}

// New returns an empty registry.
func New[V any]() *Registry[V] {
	return &Registry[V]{}
}

// Len returns the number of entries in the registry.
func (r *Registry[V]) Len() int { return r.size }

// IsEmpty reports whether the registry holds no entries.
func (r *Registry[V]) IsEmpty() bool { return r.size == 0 }

// Get returns the value stored for key, and whether it was present.
func (r *Registry[V]) Get(key quantity.LocalID) (V, bool) {
	x := r.root
	for x != nil {
		switch {
		case key < x.key:
			x = x.left
		case key > x.key:
			x = x.right
		default:
			return x.val, true
		}
	}
	var zero V
	return zero, false
}

// ContainsKey reports whether key is present in the registry.
func (r *Registry[V]) ContainsKey(key quantity.LocalID) bool {
	_, ok := r.Get(key)
	return ok
}

// Insert adds or overwrites the value stored for key.
func (r *Registry[V]) Insert(key quantity.LocalID, val V) {
	var isNew bool
	r.root = insert(r.root, key, val, &isNew)
	r.root.color = black
	if isNew {
		r.size++
	}
}

// Remove deletes key from the registry, reporting whether it was present.
func (r *Registry[V]) Remove(key quantity.LocalID) bool {
	if !r.ContainsKey(key) {
		return false
	}
	if !isRed(r.root.left) && !isRed(r.root.right) {
		r.root.color = red
	}
	r.root = remove(r.root, key)
	if r.root != nil {
		r.root.color = black
	}
	r.size--
	return true
}

// Keys returns every key in ascending order.
func (r *Registry[V]) Keys() []quantity.LocalID {
	keys := make([]quantity.LocalID, 0, r.size)
	var walk func(*node[V])
	walk = func(n *node[V]) {
		if n == nil {
			return
		}
		walk(n.left)
		keys = append(keys, n.key)
		walk(n.right)
	}
	walk(r.root)
	return keys
}

// Range calls yield for every (key, value) pair in ascending key order,
// stopping early if yield returns false.
func (r *Registry[V]) Range(yield func(quantity.LocalID, V) bool) {
	var walk func(*node[V]) bool
	walk = func(n *node[V]) bool {
		if n == nil {
			return true
		}
		if !walk(n.left) {
			return false
		}
		if !yield(n.key, n.val) {
			return false
		}
		return walk(n.right)
	}
	walk(r.root)
}

func isRed[V any](n *node[V]) bool { return n != nil && n.color == red }

func leftOf[V any](n *node[V]) *node[V] {
	if n == nil {
		return nil
	}
	return n.left
}

func rotateLeft[V any](h *node[V]) *node[V] {
	x := h.right
	h.right = x.left
	x.left = h
	x.color = h.color
	h.color = red
	return x
}

func rotateRight[V any](h *node[V]) *node[V] {
	x := h.left
	h.left = x.right
	x.right = h
	x.color = h.color
	h.color = red
	return x
}

func flipColors[V any](h *node[V]) {
	h.color = !h.color
	h.left.color = !h.left.color
	h.right.color = !h.right.color
}

func insert[V any](h *node[V], key quantity.LocalID, val V, isNew *bool) *node[V] {
	if h == nil {
		*isNew = true
		return &node[V]{key: key, val: val, color: red}
	}
	switch {
	case key < h.key:
		h.left = insert(h.left, key, val, isNew)
	case key > h.key:
		h.right = insert(h.right, key, val, isNew)
	default:
		h.val = val
	}
	if isRed(h.right) && !isRed(h.left) {
		h = rotateLeft(h)
	}
	if isRed(h.left) && isRed(leftOf(h.left)) {
		h = rotateRight(h)
	}
	if isRed(h.left) && isRed(h.right) {
		flipColors(h)
	}
	return h
}

func min[V any](h *node[V]) *node[V] {
	for h.left != nil {
		h = h.left
	}
	return h
}

func moveRedLeft[V any](h *node[V]) *node[V] {
	flipColors(h)
	if isRed(leftOf(h.right)) {
		h.right = rotateRight(h.right)
		h = rotateLeft(h)
		flipColors(h)
	}
	return h
}

func moveRedRight[V any](h *node[V]) *node[V] {
	flipColors(h)
	if isRed(leftOf(h.left)) {
		h = rotateRight(h)
		flipColors(h)
	}
	return h
}

func fixUp[V any](h *node[V]) *node[V] {
	if isRed(h.right) {
		h = rotateLeft(h)
	}
	if isRed(h.left) && isRed(leftOf(h.left)) {
		h = rotateRight(h)
	}
	if isRed(h.left) && isRed(h.right) {
		flipColors(h)
	}
	return h
}

func deleteMin[V any](h *node[V]) *node[V] {
	if h.left == nil {
		return nil
	}
	if !isRed(h.left) && !isRed(leftOf(h.left)) {
		h = moveRedLeft(h)
	}
	h.left = deleteMin(h.left)
	return fixUp(h)
}

func remove[V any](h *node[V], key quantity.LocalID) *node[V] {
	if key < h.key {
		if !isRed(h.left) && !isRed(leftOf(h.left)) {
			h = moveRedLeft(h)
		}
		h.left = remove(h.left, key)
	} else {
		if isRed(h.left) {
			h = rotateRight(h)
		}
		if key == h.key && h.right == nil {
			return nil
		}
		if !isRed(h.right) && !isRed(leftOf(h.right)) {
			h = moveRedRight(h)
		}
		if key == h.key {
			m := min(h.right)
			h.key = m.key
			h.val = m.val
			h.right = deleteMin(h.right)
		} else {
			h.right = remove(h.right, key)
		}
	}
	return fixUp(h)
}
