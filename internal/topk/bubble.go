package topk

// Bubble selects the K highest-scoring entries by maintaining a
// sorted-descending working set of size up to K and insertion-sorting
// each new candidate into place. Simple and cache-friendly for small K,
// O(N*K) in the worst case.
func Bubble(scores []float32, k int) []Entry {
	if k <= 0 || len(scores) == 0 {
		return nil
	}
	if k > len(scores) {
		k = len(scores)
	}

	top := make([]Entry, 0, k)
	for i, v := range scores {
		e := Entry{Index: i, Score: v}
		if len(top) < k {
			pos := insertionPoint(top, v)
			top = append(top, Entry{})
			copy(top[pos+1:], top[pos:len(top)-1])
			top[pos] = e
			continue
		}
		if less(top[len(top)-1].Score, v) {
			pos := insertionPoint(top[:len(top)-1], v)
			copy(top[pos+1:], top[pos:len(top)-1])
			top[pos] = e
		}
	}
	return top
}

// insertionPoint returns the index at which v should be inserted into a
// descending-sorted Entry slice to keep it sorted.
func insertionPoint(sorted []Entry, v float32) int {
	lo, hi := 0, len(sorted)
	for lo < hi {
		mid := (lo + hi) / 2
		if less(sorted[mid].Score, v) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
