package topk

import "container/heap"

// MinHeap selects the K highest-scoring entries by maintaining a min-heap
// of size K: any candidate larger than the heap's current minimum evicts
// it. O(N log K), useful when K is small relative to N and a strict
// worst-case bound (rather than quickselect's expected-case one) matters.
func MinHeap(scores []float32, k int) []Entry {
	if k <= 0 || len(scores) == 0 {
		return nil
	}
	if k > len(scores) {
		k = len(scores)
	}

	h := make(entryHeap, 0, k)
	heap.Init(&h)
	for i, v := range scores {
		e := Entry{Index: i, Score: v}
		if h.Len() < k {
			heap.Push(&h, e)
			continue
		}
		if less(h[0].Score, v) {
			heap.Pop(&h)
			heap.Push(&h, e)
		}
	}
	return []Entry(h)
}

type entryHeap []Entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return less(h[i].Score, h[j].Score) }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
