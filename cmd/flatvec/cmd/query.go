package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sunsided/flatvec/internal/config"
	"github.com/sunsided/flatvec/internal/gpu/opencl"
	"github.com/sunsided/flatvec/internal/output"
	"github.com/sunsided/flatvec/internal/search"
	"github.com/sunsided/flatvec/internal/ui"
	"github.com/sunsided/flatvec/internal/vecdb"
)

type queryOptions struct {
	topK int
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <vector-file>",
		Short: "Run a brute-force top-K search against the VecDb",
		Long: `Query scores a vector against every row of a VecDb and returns the
K highest-scoring matches (spec.md §4.F-H).

<vector-file> holds a single newline-delimited row of D whitespace-separated
floats, where D must equal the VecDb's own dimensionality.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 10, "Number of results to return")

	return cmd
}

func runQuery(cmd *cobra.Command, vectorPath string, opts queryOptions) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := config.Load(".")
	if err != nil {
		cfg = config.NewConfig()
	}
	if cmd.Flags().Changed("top-k") {
		cfg.Query.TopK = opts.topK
	}
	if maxVecs > 0 {
		cfg.Query.MaxVecs = maxVecs
	}

	query, err := readSingleVector(vectorPath)
	if err != nil {
		return err
	}

	db, err := vecdb.OpenRead(resolveInputPath())
	if err != nil {
		return fmt.Errorf("opening VecDb: %w", err)
	}
	defer db.Close()

	useGPU := gpuRequested(cmd, cfg)
	var gpuDevice *opencl.Device
	if useGPU {
		platform, device := cfg.GPU.Platform, cfg.GPU.Device
		if cmd.Flags().Changed("platform") {
			platform = platformID
		}
		if cmd.Flags().Changed("device") {
			device = deviceID
		}
		gpuDevice, err = opencl.Open(opencl.PlatformID(platform), opencl.DeviceID(device))
		if err != nil {
			return fmt.Errorf("opening GPU device: %w", err)
		}
		defer gpuDevice.Close()
	}

	engine := search.New(cfg, db, gpuDevice)

	start := time.Now()
	results, err := engine.Query(cmd.Context(), query, cfg.Query.TopK, useGPU)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	elapsed := time.Since(start)

	backend := ui.BackendInfo{Backend: "cpu"}
	if useGPU {
		backend.Backend = "gpu"
	}

	out.Statusf("", "Top %d of %d vectors (%s, %s)", len(results), db.NumVectors(), backend.Backend, elapsed)
	for i, r := range results {
		out.Statusf("", "%d. index=%d score=%.6f", i+1, r.Index, r.Score)
	}

	return nil
}
