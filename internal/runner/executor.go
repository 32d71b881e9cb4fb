package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/signalnine/pmhbench/internal/catalog"
	"github.com/signalnine/pmhbench/internal/config"
)

// Executor runs one benchmark process to completion with its stdout written
// to w and reports the exit code. A non-nil error means the process could not
// be run at all.
type Executor interface {
	Execute(ctx context.Context, argv []string, w io.Writer) (int, error)
}

// Command assembles the benchmark argv for one competitor of e, writing its
// result files under outDir.
func Command(p config.Paths, e catalog.Experiment, token string, threads int, outDir string) []string {
	return []string{
		p.Binary,
		"-w", p.ScratchDir,
		"-o", outDir,
		"-l", filepath.Join(p.LoadTraceDir, e.Workload+".ycsb"),
		"-r", filepath.Join(p.RunTraceDir, e.Workload+".ycsb"),
		"-m", filepath.Join(p.PMTraceDir, e.Workload),
		"--load_num", strconv.FormatInt(e.LoadNum, 10),
		"--run_num", strconv.FormatInt(e.RunNum, 10),
		"-e", token,
		"-t", strconv.Itoa(threads),
	}
}

// Local runs the benchmark on this host, pinned to NumaNode with numactl
// unless NumaNode is negative.
type Local struct {
	NumaNode int
	Stderr   io.Writer
}

func (l *Local) Argv(argv []string) []string {
	if l.NumaNode < 0 {
		return argv
	}
	return append([]string{"numactl", fmt.Sprintf("-N%d", l.NumaNode)}, argv...)
}

func (l *Local) Execute(ctx context.Context, argv []string, w io.Writer) (int, error) {
	full := l.Argv(argv)
	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	cmd.Stdout = w
	cmd.Stderr = l.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("running %s: %w", full[0], err)
	}
	return 0, nil
}
