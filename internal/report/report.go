// Package report turns result logs into per-figure tables and summarizes
// launch batches.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"

	"github.com/signalnine/pmhbench/internal/result"
)

type LaunchSummary struct {
	Config      string `json:"config"`
	Batch       string `json:"batch"`
	StartedAt   string `json:"started_at"`
	DurationS   int    `json:"duration_s"`
	Invocations int    `json:"invocations"`
	Succeeded   int    `json:"succeeded"`
	Retried     int    `json:"retried"`
	Placeholder int    `json:"placeholder"`
}

// CollectLaunchMetas reads launch.json under dataDir. With ids given only
// those configurations are read; unreadable metas are skipped.
func CollectLaunchMetas(dataDir string, ids ...string) ([]*result.LaunchMeta, error) {
	var metas []*result.LaunchMeta
	if len(ids) > 0 {
		for _, id := range ids {
			meta, err := result.ReadLaunchMeta(result.LaunchMetaPath(result.ConfigDir(dataDir, id)))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", id, err)
			}
			metas = append(metas, meta)
		}
		return metas, nil
	}
	err := filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Name() == "launch.json" {
			meta, err := result.ReadLaunchMeta(path)
			if err != nil {
				log.WithField("path", path).Warnf("skipping launch meta: %v", err)
				return nil
			}
			metas = append(metas, meta)
		}
		return nil
	})
	return metas, err
}

func summarize(metas []*result.LaunchMeta) []LaunchSummary {
	var summaries []LaunchSummary
	for _, m := range metas {
		s := LaunchSummary{
			Config:      m.Config,
			Batch:       m.Batch,
			StartedAt:   m.StartedAt.Format("2006-01-02 15:04:05"),
			DurationS:   m.DurationS,
			Invocations: len(m.Invocations),
		}
		for _, inv := range m.Invocations {
			switch inv.State {
			case "succeeded":
				s.Succeeded++
			case "placeholder":
				s.Placeholder++
			}
			if inv.Attempts > 1 {
				s.Retried++
			}
		}
		summaries = append(summaries, s)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Config < summaries[j].Config
	})
	return summaries
}

// WriteLaunchSummary renders one row per launch meta.
func WriteLaunchSummary(metas []*result.LaunchMeta, format string, w io.Writer) error {
	summaries := summarize(metas)
	switch format {
	case FormatMarkdown:
		return writeSummaryMarkdown(summaries, w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	default:
		return writeSummaryTable(summaries, w)
	}
}

func shortBatch(b string) string {
	if len(b) > 8 {
		return b[:8]
	}
	return b
}

func writeSummaryTable(summaries []LaunchSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONFIG\tBATCH\tSTARTED\tDURATION\tRUNS\tOK\tRETRIED\tPLACEHOLDER")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%ds\t%d\t%d\t%d\t%d\n",
			s.Config, shortBatch(s.Batch), s.StartedAt, s.DurationS, s.Invocations, s.Succeeded, s.Retried, s.Placeholder)
	}
	return tw.Flush()
}

func writeSummaryMarkdown(summaries []LaunchSummary, w io.Writer) error {
	fmt.Fprintln(w, "| Config | Batch | Started | Duration | Runs | OK | Retried | Placeholder |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|---|")
	for _, s := range summaries {
		fmt.Fprintf(w, "| %s | %s | %s | %ds | %d | %d | %d | %d |\n",
			s.Config, shortBatch(s.Batch), s.StartedAt, s.DurationS, s.Invocations, s.Succeeded, s.Retried, s.Placeholder)
	}
	return nil
}
