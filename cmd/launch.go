package cmd

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/signalnine/pmhbench/internal/report"
	"github.com/signalnine/pmhbench/internal/result"
)

func newLaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch <config-id>...",
		Short: "Build and run every invocation of the given experiments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := newCoordinator(cmd)
			if err != nil {
				return err
			}
			var errs []error
			for _, id := range args {
				meta, err := coord.Launch(cmd.Context(), id)
				if meta != nil {
					printOutcome(cmd.OutOrStdout(), meta)
				}
				if err != nil {
					log.WithField("config", id).Error(err)
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <config-id>...",
		Short: "Configure and compile the benchmark for the given experiments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, err := loadSettings()
			if err != nil {
				return err
			}
			b := newBuilder(cfg)
			for _, id := range args {
				e, err := cat.Lookup(id)
				if err != nil {
					return err
				}
				if err := b.Compile(cmd.Context(), e); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "built %s\n", id)
			}
			return nil
		},
	}
}

func newLaunchAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch_all",
		Short: "Run every experiment in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := newCoordinator(cmd)
			if err != nil {
				return err
			}
			metas, err := coord.LaunchAll(cmd.Context())
			if len(metas) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\n--- Launches ---")
				if werr := report.WriteLaunchSummary(metas, report.FormatTable, cmd.OutOrStdout()); werr != nil {
					return werr
				}
			}
			return err
		},
	}
}

func newSingleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "single <competitor>",
		Short: "Run one competitor once into <data>/tmp with the current build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := newCoordinator(cmd)
			if err != nil {
				return err
			}
			path, state, err := coord.Single(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", state, path)
			return nil
		},
	}
}

func printOutcome(w io.Writer, meta *result.LaunchMeta) {
	counts := map[string]int{}
	for _, inv := range meta.Invocations {
		counts[inv.State]++
	}
	fmt.Fprintf(w, "%s: %d runs, %d succeeded, %d placeholder (%ds)\n",
		meta.Config, len(meta.Invocations), counts["succeeded"], counts["placeholder"], meta.DurationS)
}
