package topk

// Quickselect selects the K highest-scoring entries via a Lomuto
// partition scheme biased for "k largest" rather than "kth order
// statistic": elements greater-or-equal to the pivot move to the front.
// Expected O(N) time, in place on a scratch copy of scores. This is the
// default selector.
func Quickselect(scores []float32, k int) []Entry {
	if k <= 0 || len(scores) == 0 {
		return nil
	}
	if k > len(scores) {
		k = len(scores)
	}

	entries := make([]Entry, len(scores))
	for i, v := range scores {
		entries[i] = Entry{Index: i, Score: v}
	}

	quickselectMax(entries, k)
	return entries[:k]
}

// quickselectMax partitions entries in place so that entries[:k] holds the
// k largest values (in no particular order) and entries[k:] holds the
// rest.
func quickselectMax(entries []Entry, k int) {
	lo, hi := 0, len(entries)-1
	target := k - 1
	for lo < hi {
		p := partitionMax(entries, lo, hi)
		switch {
		case p == target:
			return
		case p < target:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

// partitionMax runs a Lomuto partition over entries[lo:hi+1] using
// entries[hi] as the pivot, moving every entry greater-or-equal to the
// pivot to the front. Returns the pivot's final index.
func partitionMax(entries []Entry, lo, hi int) int {
	pivot := entries[hi].Score
	i := lo
	for j := lo; j < hi; j++ {
		if !less(entries[j].Score, pivot) {
			entries[i], entries[j] = entries[j], entries[i]
			i++
		}
	}
	entries[i], entries[hi] = entries[hi], entries[i]
	return i
}
