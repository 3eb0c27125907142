// Package kernel computes dot-product similarity scores between a query
// vector and a row-major matrix of stored vectors, via several
// interchangeable implementations: a reference double loop, strip-mined
// unrolled variants, and worker-pool parallel variants built on top of
// either. Every kernel must agree with the reference implementation to
// within an RMSE of 1e-4.
package kernel

// Naive computes, for each of len(data)/numDims rows, the dot product of
// that row with query. This is the reference implementation every other
// kernel is checked against.
func Naive(query, data []float32, numDims int) []float32 {
	numVecs := len(data) / numDims
	scores := make([]float32, numVecs)
	for row := 0; row < numVecs; row++ {
		var sum float32
		base := row * numDims
		for d := 0; d < numDims; d++ {
			sum += query[d] * data[base+d]
		}
		scores[row] = sum
	}
	return scores
}
