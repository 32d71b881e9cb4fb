// Package trace converts YCSB text traces into the binary pm traces the
// benchmark replays, running trace_maker for several workloads at once.
package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/signalnine/pmhbench/internal/config"
	"github.com/signalnine/pmhbench/internal/runner"
)

// ExecFunc runs one trace_maker process with stdout and stderr sent to out.
type ExecFunc func(ctx context.Context, out io.Writer, name string, args ...string) error

type Generator struct {
	Paths config.Paths
	Exec  ExecFunc
}

// Args returns the trace_maker arguments for workload.
func (g *Generator) Args(workload string) []string {
	return []string{
		filepath.Join(g.Paths.LoadTraceDir, workload+".ycsb"),
		filepath.Join(g.Paths.RunTraceDir, workload+".ycsb"),
		filepath.Join(g.Paths.PMTraceDir, workload),
	}
}

func (g *Generator) LogPath(workload string) string {
	return filepath.Join(g.Paths.TraceLogDir, workload+".log")
}

// Generate runs trace_maker for every workload, at most parallel at a time.
// A failed workload does not stop the others; all failures are returned.
func (g *Generator) Generate(ctx context.Context, workloads []string, parallel int) error {
	if err := os.MkdirAll(g.Paths.TraceLogDir, 0o755); err != nil {
		return fmt.Errorf("creating trace log dir: %w", err)
	}
	run := g.Exec
	if run == nil {
		run = execCommand
	}

	jobs := make([]runner.Job, 0, len(workloads))
	for _, w := range workloads {
		jobs = append(jobs, func(ctx context.Context) error {
			f, err := os.Create(g.LogPath(w))
			if err != nil {
				return fmt.Errorf("%s: creating log: %w", w, err)
			}
			defer f.Close()
			log.WithField("workload", w).Infof("%s -> %s", g.Paths.TraceMaker, g.LogPath(w))
			if err := run(ctx, f, g.Paths.TraceMaker, g.Args(w)...); err != nil {
				return fmt.Errorf("%s: %w", w, err)
			}
			return nil
		})
	}
	return errors.Join(runner.RunPool(ctx, parallel, jobs)...)
}

func execCommand(ctx context.Context, out io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}
