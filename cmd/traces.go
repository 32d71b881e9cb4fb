package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/pmhbench/internal/trace"
)

var flagParallel int

func newTracesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traces [workload...]",
		Short: "Generate pm traces from the YCSB load and run traces",
		Long: `Runs trace_maker for each workload, writing <pm_trace_dir>/<workload>
and logging to <trace_log_dir>/<workload>.log. Without arguments every
workload named in the catalog is generated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, err := loadSettings()
			if err != nil {
				return err
			}
			workloads := args
			if len(workloads) == 0 {
				workloads = cat.Workloads()
			}
			g := &trace.Generator{Paths: cfg.Paths}
			if err := g.Generate(cmd.Context(), workloads, flagParallel); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d traces\n", len(workloads))
			return nil
		},
	}
	cmd.Flags().IntVarP(&flagParallel, "parallel", "p", 4, "trace_maker processes run at once")
	return cmd
}
