// Package cmd provides the CLI commands for flatvec.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sunsided/flatvec/internal/config"
	"github.com/sunsided/flatvec/internal/gpu/opencl"
	"github.com/sunsided/flatvec/internal/logging"
	"github.com/sunsided/flatvec/pkg/version"
)

// Root persistent flags, per spec.md §6's CLI surface.
var (
	listPlatforms bool
	platformID    int
	deviceID      int
	inputPath     string
	maxVecs       int
	debugMode     bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the flatvec CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flatvec",
		Short:   "Exact brute-force k-NN search over a flat VecDb file",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listPlatforms {
				return runListPlatforms(cmd)
			}
			return cmd.Help()
		},
	}
	cmd.SetVersionTemplate("flatvec version {{.Version}}\n")

	cmd.PersistentFlags().BoolVarP(&listPlatforms, "list-platforms", "L", false, "Enumerate accelerator platforms and exit")
	cmd.PersistentFlags().IntVarP(&platformID, "platform", "p", 0, "Select OpenCL platform")
	cmd.PersistentFlags().IntVarP(&deviceID, "device", "d", 0, "Select device within platform")
	cmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "vectors.bin", "VecDb input path (may contain ~/env vars)")
	cmd.PersistentFlags().IntVar(&maxVecs, "max-vecs", 0, "Cap number of loaded vectors (0 means all)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.flatvec/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newBenchCmd())

	return cmd
}

// startLogging wires up debug logging when --debug is set, mirroring the
// teacher's profiling/logging PersistentPreRunE hook.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Debug("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// runListPlatforms implements -L/--list-platforms: enumerate accelerator
// platforms and their devices, then exit 0 per spec.md §6.
func runListPlatforms(cmd *cobra.Command) error {
	platforms, err := opencl.ListPlatforms()
	if err != nil {
		return fmt.Errorf("listing platforms: %w", err)
	}
	if len(platforms) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no OpenCL platforms available")
		return nil
	}
	for _, p := range platforms {
		fmt.Fprintln(cmd.OutOrStdout(), p.String())
		for _, dev := range p.Devices {
			fmt.Fprintf(cmd.OutOrStdout(), "    %d: %s\n", dev.ID, dev.Name)
		}
	}
	return nil
}

// resolveInputPath expands the -i/--input flag via config.ExpandPath.
func resolveInputPath() string {
	return config.ExpandPath(inputPath)
}

// gpuRequested decides whether a query/bench run should use the GPU path.
// spec.md §6 gives -p/--platform and -d/--device as plain selectors with no
// separate backend flag, so an explicit -p or -d on the command line is
// read as opting into the GPU path; absent that, the config file's
// query.backend default applies.
func gpuRequested(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("platform") || cmd.Flags().Changed("device") {
		return true
	}
	return cfg.Query.Backend == "gpu"
}
