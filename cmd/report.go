package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signalnine/pmhbench/internal/report"
)

var (
	flagFormat        string
	flagOut           string
	flagSummaryFormat string
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [figure...]",
		Short: "Extract the tables behind the paper figures",
		Long: `Builds the tables for each named figure from the result files under
the data directory. Without arguments the available figures are listed.
The csv format writes one file per sheet under <out>/<figure>/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, f := range report.Figures() {
					fmt.Fprintf(tw, "%s\t%s\n", f.ID, f.Description)
				}
				return tw.Flush()
			}
			if flagFormat == report.FormatCSV && flagOut == "" {
				return fmt.Errorf("--format csv requires --out")
			}
			cfg, _, err := loadSettings()
			if err != nil {
				return err
			}
			src := report.Source{DataDir: cfg.Paths.DataDir, MaxThreads: cfg.MaxThreads}
			for _, id := range args {
				tables, err := report.Build(id, src)
				if err != nil {
					return err
				}
				if flagFormat == report.FormatCSV {
					paths, err := report.WriteCSV(tables, filepath.Join(flagOut, id))
					if err != nil {
						return err
					}
					for _, p := range paths {
						fmt.Fprintln(out, p)
					}
					continue
				}
				if err := report.WriteTables(tables, flagFormat, out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json, csv)")
	cmd.Flags().StringVar(&flagOut, "out", "", "directory for csv output")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [config-id...]",
		Short: "Summarize recorded launches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSettings()
			if err != nil {
				return err
			}
			metas, err := report.CollectLaunchMetas(cfg.Paths.DataDir, args...)
			if err != nil {
				return err
			}
			if len(metas) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no launches recorded")
				return nil
			}
			return report.WriteLaunchSummary(metas, flagSummaryFormat, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flagSummaryFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}
