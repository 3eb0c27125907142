// Package topk selects the K highest-scoring entries out of a score slice
// produced by a dot-product kernel. Three interchangeable selectors are
// provided (bubble-insertion, quickselect-partition, and a min-heap); all
// must agree on which K entries come out, though not on their order.
package topk

// Entry pairs a result's original slice index with its score.
type Entry struct {
	Index int
	Score float32
}

// less reports whether a scores lower than b for top-K ranking purposes.
// A NaN score is treated as worse than any finite value, including
// negative infinity, so NaN scores never displace a real match and always
// fall out of the selection first.
func less(a, b float32) bool {
	if isNaN(a) {
		return !isNaN(b)
	}
	if isNaN(b) {
		return false
	}
	return a < b
}

func isNaN(f float32) bool { return f != f }
