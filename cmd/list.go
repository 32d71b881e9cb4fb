package cmd

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/signalnine/pmhbench/internal/catalog"
)

var flagDump bool

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the experiment catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, err := loadSettings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flagDump {
				pp.ColoringEnabled = false
				_, err := pp.Fprintln(out, cfg)
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWORKLOAD\tTHREADS\tLOAD\tRUN\tFLAGS")
			for _, e := range cat.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					e.ID, e.Workload, joinInts(e.ThreadNums), e.LoadNum, e.RunNum, enabledFlags(e.BuildFlags))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&flagDump, "dump", false, "pretty-print the resolved settings")
	return cmd
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}

func enabledFlags(f catalog.BuildFlags) string {
	var on []string
	for name, v := range f.Map() {
		if v {
			on = append(on, name)
		}
	}
	sort.Strings(on)
	return strings.Join(on, ",")
}
