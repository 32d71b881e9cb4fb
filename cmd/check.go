package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/signalnine/pmhbench/internal/integrity"
)

var (
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	pathStyle   = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
)

func newChecker() (*integrity.Checker, error) {
	cfg, cat, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return &integrity.Checker{
		Catalog:     cat,
		DataDir:     cfg.Paths.DataDir,
		MaxThreads:  cfg.MaxThreads,
		Placeholder: cfg.Paths.Placeholder,
	}, nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report missing and incomplete result files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checker, err := newChecker()
			if err != nil {
				return err
			}
			r, err := checker.Check()
			if err != nil {
				return err
			}
			writeCheckReport(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func writeCheckReport(w io.Writer, r *integrity.Report) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d result files", r.Total())))
	if r.OK() {
		fmt.Fprintln(w, okStyle.Render("Data files are complete for plotting"))
		return
	}
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("incomplete (the run failed): %d", len(r.Incomplete))))
	for _, p := range r.Incomplete {
		fmt.Fprintln(w, "  "+pathStyle.Render(p))
	}
	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("missing (the run did not start): %d", len(r.Missing))))
	for _, p := range r.Missing {
		fmt.Fprintln(w, "  "+pathStyle.Render(p))
	}
}

func newCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Fill missing and incomplete result files with the placeholder log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checker, err := newChecker()
			if err != nil {
				return err
			}
			filled, err := checker.Repair()
			fmt.Fprintf(cmd.OutOrStdout(), "filled %d result files with the placeholder\n", len(filled))
			return err
		},
	}
}
