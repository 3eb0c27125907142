package kernel

import "math"

// Backend names a CPU dot-product kernel implementation.
type Backend string

const (
	BackendNaive            Backend = "naive"
	BackendUnrolled4        Backend = "unrolled4"
	BackendUnrolled8        Backend = "unrolled8"
	BackendUnrolled16       Backend = "unrolled16"
	BackendUnrolled64       Backend = "unrolled64"
	BackendParallel         Backend = "parallel"
	BackendParallelUnrolled Backend = "parallel_unrolled"
)

// Dispatch runs the named backend over query against data, a row-major
// matrix of numVecs x numDims floats. workers is only consulted by the
// parallel backends.
func Dispatch(backend Backend, query, data []float32, numDims, workers int) []float32 {
	switch backend {
	case BackendUnrolled4:
		return Unrolled(query, data, numDims, Unroll4)
	case BackendUnrolled8:
		return Unrolled(query, data, numDims, Unroll8)
	case BackendUnrolled16:
		return Unrolled(query, data, numDims, Unroll16)
	case BackendUnrolled64:
		return Unrolled(query, data, numDims, Unroll64)
	case BackendParallel:
		return Parallel(query, data, numDims, workers)
	case BackendParallelUnrolled:
		return ParallelUnrolled(query, data, numDims, Unroll64, workers)
	default:
		return Naive(query, data, numDims)
	}
}

// RMSE returns the root-mean-square error between two equally sized score
// slices. Used to verify that every kernel agrees with the Naive
// reference to within the engine's accepted tolerance (1e-4).
func RMSE(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sumSq float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(a)))
}
