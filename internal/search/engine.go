// Package search wires the on-disk VecDb, the CPU/GPU dot-product kernels,
// and top-K selection together into the one operation flatvec exists to
// perform: score a query vector against every row of a VecDb and return the
// K highest-scoring matches.
package search

import (
	"context"
	"fmt"

	"github.com/sunsided/flatvec/internal/config"
	"github.com/sunsided/flatvec/internal/engineerr"
	"github.com/sunsided/flatvec/internal/gpu/opencl"
	"github.com/sunsided/flatvec/internal/kernel"
	"github.com/sunsided/flatvec/internal/matrix"
	"github.com/sunsided/flatvec/internal/memchunk"
	"github.com/sunsided/flatvec/internal/quantity"
	"github.com/sunsided/flatvec/internal/topk"
	"github.com/sunsided/flatvec/internal/vecdb"
)

// Engine runs brute-force k-NN queries against a single open VecDb. It
// owns no lifecycle beyond the query itself: opening and closing the VecDb
// is the caller's responsibility, matching internal/vecdb's own ownership
// model.
type Engine struct {
	db       *vecdb.VecDb
	backend  kernel.Backend
	selector topk.Selector
	workers  int
	maxVecs  int
	gpu      *opencl.Device
}

// New builds an Engine over db using cfg's query settings. gpu may be nil;
// it is only consulted when the caller passes useGPU=true to Query.
// cfg.Query.MaxVecs caps how many rows of db are scanned, 0 meaning all,
// per spec.md §6's --max-vecs.
func New(cfg *config.Config, db *vecdb.VecDb, gpu *opencl.Device) *Engine {
	return &Engine{
		db:       db,
		backend:  cpuBackendFor(cfg.Query.Workers),
		selector: topk.Selector(cfg.Query.Selector),
		workers:  cfg.Query.Workers,
		maxVecs:  cfg.Query.MaxVecs,
		gpu:      gpu,
	}
}

// cpuBackendFor picks a default CPU kernel. The spec only exposes cpu/gpu
// as a query-facing choice (spec.md §6); internally we always take the
// fastest CPU kernel that still agrees with the naive one within the P2
// RMSE tolerance, since there is no reason to ever prefer a slower one.
func cpuBackendFor(workers int) kernel.Backend {
	if workers > 1 {
		return kernel.BackendParallelUnrolled
	}
	return kernel.BackendUnrolled64
}

// Result is one scored match, with Index addressing a row in the queried
// VecDb (0-based) and Score its raw dot product against the query vector.
type Result struct {
	Index int
	Score float32
}

// Query scores query against every vector in the engine's VecDb and
// returns the k highest-scoring results, unordered beyond "all K are the
// true top-K" (spec.md §8 P3); callers that need a specific order should
// sort the returned slice themselves.
//
// useGPU selects the GPU path when true; it requires a non-nil gpu device
// to have been supplied to New; a GPU score vector still has top-K
// performed on the host, per spec.md §9's GPU-top-K open question.
func (e *Engine) Query(ctx context.Context, query []float32, k int, useGPU bool) ([]Result, error) {
	numDims := int(e.db.NumDimensions())
	if len(query) != numDims {
		return nil, engineerr.DimensionalityMismatch(numDims, len(query))
	}

	numVecs := int(e.db.NumVectors())
	if e.maxVecs > 0 && e.maxVecs < numVecs {
		numVecs = e.maxVecs
	}
	if numVecs == 0 {
		return nil, nil
	}
	if k > numVecs {
		k = numVecs
	}

	data := make([]float32, numVecs*numDims)
	readRow := func(i int, vec []float32) error {
		copy(data[i*numDims:(i+1)*numDims], vec)
		return nil
	}
	var (
		read int
		err  error
	)
	if e.maxVecs > 0 {
		read, err = e.db.ReadNVecs(numVecs, readRow)
	} else {
		read, err = e.db.ReadAllVecs(readRow)
	}
	if err != nil {
		return nil, fmt.Errorf("reading vectors: %w", err)
	}
	if read != numVecs {
		numVecs = read
		data = data[:numVecs*numDims]
		if k > numVecs {
			k = numVecs
		}
	}

	scores, err := e.score(ctx, query, data, numDims, useGPU)
	if err != nil {
		return nil, err
	}

	entries := topk.Select(e.selector, scores, k)
	results := make([]Result, len(entries))
	for i, entry := range entries {
		results[i] = Result{Index: entry.Index, Score: entry.Score}
	}
	return results, nil
}

// score runs the CPU kernel dispatch table when useGPU is false and the
// GPU device otherwise; a GPU request on an Engine built without a device
// returns a GPUUnavailable error rather than falling back to the CPU.
func (e *Engine) score(ctx context.Context, query, data []float32, numDims int, useGPU bool) ([]float32, error) {
	if !useGPU {
		// The unrolled kernels need numDims to be a multiple of their
		// unroll factor; use the plain kernels for any other width.
		backend := e.backend
		if numDims%kernel.Unroll64 != 0 {
			backend = kernel.BackendNaive
			if e.workers > 1 {
				backend = kernel.BackendParallel
			}
		}
		return kernel.Dispatch(backend, query, data, numDims, e.workers), nil
	}
	if e.gpu == nil {
		return nil, engineerr.GPUUnavailable(fmt.Errorf("no GPU device configured"))
	}
	numVecs := len(data) / numDims
	result := make([]float32, numVecs)

	// internal/matrix.AnySizeMatrix requires numDims to be a multiple of
	// 16; when it is, take the tiled column-major GPU path it and
	// opencl's VariantTiled kernel exist for. Otherwise fall back to the
	// row-major simple kernel directly over the flat buffer.
	if numDims%16 == 0 {
		if err := e.scoreGPUTiled(ctx, query, data, result, numVecs, numDims); err != nil {
			return nil, engineerr.GPUUnavailable(err)
		}
		return result, nil
	}

	if err := e.gpu.DotProduct(ctx, query, data, result, numDims); err != nil {
		return nil, engineerr.GPUUnavailable(err)
	}
	return result, nil
}

// scoreGPUTiled builds an AnySizeMatrix over data, transposes it into
// column-major layout via AsTransposed, and dispatches opencl's tiled
// kernel against the transposed copy — the one caller that exercises both
// internal/matrix and internal/gpu/opencl.VariantTiled.
func (e *Engine) scoreGPUTiled(ctx context.Context, query, data, result []float32, numVecs, numDims int) error {
	m, err := matrix.New(quantity.NumVectors(numVecs), quantity.NumDimensions(numDims), memchunk.AccessHintSequential)
	if err != nil {
		return err
	}
	defer m.Close()
	copy(m.AsSlice(), data)

	mt, err := m.AsTransposed()
	if err != nil {
		return err
	}
	defer mt.Close()

	return e.gpu.DotProductTiled(ctx, query, mt.AsSlice(), result, numDims, numVecs)
}
