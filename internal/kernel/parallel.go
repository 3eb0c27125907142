package kernel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Parallel computes Naive's result but fans rows out across a worker pool
// built on errgroup, the same parallel-fan-out idiom the rest of this
// codebase uses for independent, per-item work. workers <= 0 uses
// runtime.GOMAXPROCS(0).
func Parallel(query, data []float32, numDims, workers int) []float32 {
	return parallel(query, data, numDims, workers, func(q, d []float32, nd int) []float32 {
		return Naive(q, d, nd)
	})
}

// ParallelUnrolled composes Unrolled's strip-mined inner loop with
// Parallel's row fan-out: each worker computes its row range with the
// unrolled kernel instead of the naive one.
func ParallelUnrolled(query, data []float32, numDims, unroll, workers int) []float32 {
	return parallel(query, data, numDims, workers, func(q, d []float32, nd int) []float32 {
		return Unrolled(q, d, nd, unroll)
	})
}

// parallel partitions the numVecs rows of data into contiguous chunks, one
// per worker, and runs compute over each chunk concurrently.
func parallel(query, data []float32, numDims, workers int, compute func([]float32, []float32, int) []float32) []float32 {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	numVecs := len(data) / numDims
	if numVecs == 0 {
		return nil
	}
	if workers > numVecs {
		workers = numVecs
	}

	scores := make([]float32, numVecs)
	rowsPerWorker := (numVecs + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		if start >= numVecs {
			break
		}
		end := start + rowsPerWorker
		if end > numVecs {
			end = numVecs
		}

		g.Go(func() error {
			sub := compute(query, data[start*numDims:end*numDims], numDims)
			copy(scores[start:end], sub)
			return nil
		})
	}
	_ = g.Wait()
	return scores
}
