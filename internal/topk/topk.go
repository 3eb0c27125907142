package topk

// Selector names a top-K selection strategy.
type Selector string

const (
	// SelectorQuickselect is the default selector: expected O(N), in place.
	SelectorQuickselect Selector = "quickselect"
	// SelectorBubble is a sorted-insertion selector, best for small K.
	SelectorBubble Selector = "bubble"
	// SelectorMinHeap is a heap-based selector with a strict O(N log K) bound.
	SelectorMinHeap Selector = "minheap"
)

// Select runs the named selector over scores, returning the K
// highest-scoring entries in no particular order. Unknown selectors fall
// back to Quickselect.
func Select(selector Selector, scores []float32, k int) []Entry {
	switch selector {
	case SelectorBubble:
		return Bubble(scores, k)
	case SelectorMinHeap:
		return MinHeap(scores, k)
	default:
		return Quickselect(scores, k)
	}
}
