package cmd

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/sunsided/flatvec/internal/kernel"
	"github.com/sunsided/flatvec/internal/output"
	"github.com/sunsided/flatvec/internal/topk"
	"github.com/sunsided/flatvec/internal/vecgen"
)

type benchOptions struct {
	numVecs int
	dims    int
	topK    int
	seed    int64
}

func newBenchCmd() *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the CPU kernels and top-K selectors in-process",
		Long: `Bench generates a synthetic random matrix and query vector, runs
every CPU kernel and top-K selector against it, and prints a timing table.
It exists only to let an operator compare kernel/selector choices on their
own hardware without standing up a real VecDb file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.numVecs, "n", 100_000, "Number of synthetic vectors")
	cmd.Flags().IntVar(&opts.dims, "dims", 384, "Dimensionality of synthetic vectors")
	cmd.Flags().IntVar(&opts.topK, "top-k", 10, "Number of results to select")
	cmd.Flags().Int64Var(&opts.seed, "seed", 42, "Seed for the synthetic generator")

	return cmd
}

func runBench(cmd *cobra.Command, opts benchOptions) error {
	if opts.numVecs < 1 {
		return fmt.Errorf("n must be positive")
	}
	out := output.New(cmd.OutOrStdout())

	gen := vecgen.FromSeed(uint64(opts.seed))
	data := make([]float32, opts.numVecs*opts.dims)
	for i := 0; i < opts.numVecs; i++ {
		gen.FillUnit(data[i*opts.dims : (i+1)*opts.dims])
	}
	query := make([]float32, opts.dims)
	gen.FillUnit(query)

	workers := runtime.NumCPU()
	kernels := []struct {
		name    string
		backend kernel.Backend
	}{
		{"naive", kernel.BackendNaive},
		{"unrolled4", kernel.BackendUnrolled4},
		{"unrolled8", kernel.BackendUnrolled8},
		{"unrolled16", kernel.BackendUnrolled16},
		{"unrolled64", kernel.BackendUnrolled64},
		{"parallel", kernel.BackendParallel},
		{"parallel_unrolled", kernel.BackendParallelUnrolled},
	}

	out.Statusf("", "Kernel bench: N=%d D=%d workers=%d", opts.numVecs, opts.dims, workers)
	var scores []float32
	for _, k := range kernels {
		start := time.Now()
		scores = kernel.Dispatch(k.backend, query, data, opts.dims, workers)
		elapsed := time.Since(start)
		out.Statusf("", "  %-20s %v", k.name, elapsed)
	}

	selectors := []topk.Selector{topk.SelectorQuickselect, topk.SelectorBubble, topk.SelectorMinHeap}
	out.Statusf("", "Top-K bench: K=%d", opts.topK)
	for _, sel := range selectors {
		start := time.Now()
		_ = topk.Select(sel, scores, opts.topK)
		elapsed := time.Since(start)
		out.Statusf("", "  %-20s %v", string(sel), elapsed)
	}

	return nil
}
