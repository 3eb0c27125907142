package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunsided/flatvec/internal/output"
	"github.com/sunsided/flatvec/internal/quantity"
	"github.com/sunsided/flatvec/internal/vecdb"
)

type buildOptions struct {
	from string
	dims int
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Construct a VecDb from newline-delimited float rows",
		Long: `Build reads --from, a text file of one whitespace-separated D-float
row per vector, and writes a fresh VecDb to -i/--input (spec.md §4.I's exact
byte format: a 16-byte header followed by N*D little-endian float32s).

This is an addition beyond the core engine: the engine itself only ever
reads a VecDb, so something has to produce one first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "Path to the newline-delimited float source file")
	cmd.Flags().IntVar(&opts.dims, "dims", 0, "Number of dimensions per row")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("dims")

	return cmd
}

func runBuild(cmd *cobra.Command, opts buildOptions) error {
	out := output.New(cmd.OutOrStdout())

	if opts.dims <= 0 {
		return fmt.Errorf("--dims must be positive, got %d", opts.dims)
	}

	rows, err := readVectorRows(opts.from)
	if err != nil {
		return err
	}
	for i, row := range rows {
		if len(row) != opts.dims {
			return fmt.Errorf("%s: row %d has %d values, expected %d", opts.from, i, len(row), opts.dims)
		}
	}

	destPath := resolveInputPath()
	w, err := vecdb.OpenWrite(destPath, quantity.NumVectors(len(rows)), quantity.NumDimensions(opts.dims))
	if err != nil {
		return fmt.Errorf("creating VecDb at %s: %w", destPath, err)
	}
	defer w.Close()

	for _, row := range rows {
		if err := w.WriteVec(row); err != nil {
			return fmt.Errorf("writing vector: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing VecDb: %w", err)
	}

	out.Successf("wrote %d vectors (%d dims) to %s", len(rows), opts.dims, destPath)
	return nil
}
