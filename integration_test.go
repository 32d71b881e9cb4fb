//go:build integration

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalnine/pmhbench/internal/catalog"
	"github.com/signalnine/pmhbench/internal/config"
	"github.com/signalnine/pmhbench/internal/extract"
	"github.com/signalnine/pmhbench/internal/integrity"
	"github.com/signalnine/pmhbench/internal/result"
	"github.com/signalnine/pmhbench/internal/runner"
)

// fakeBenchmark writes a shell script standing in for the benchmark binary.
// The clevel competitor crashes mid-output; the others finish.
func fakeBenchmark(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pmhb")
	script := `#!/bin/sh
token=""
while [ $# -gt 0 ]; do
	if [ "$1" = "-e" ]; then token="$2"; fi
	shift
done
if [ "$token" = "clevel" ]; then
	echo "RTTP = [1, 2"
	exit 139
fi
echo "Load_factor = 0.75"
echo "RunThroughput_inMops = 2.5"
echo "[00:00:01] ` + result.Sentinel + `"
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

type noBuild struct{}

func (noBuild) Compile(ctx context.Context, e catalog.Experiment) error { return nil }

func TestLocalLaunchIntegration(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Binary = fakeBenchmark(t)
	cfg.Paths.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Retries = 2

	cat, err := catalog.New(catalog.Experiment{
		ID: "insert_tiny", Workload: "workload_load", ThreadNums: []int{1, 4}, LoadNum: 10, RunNum: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	coord := &runner.Coordinator{
		Catalog:  cat,
		Config:   cfg,
		Builder:  noBuild{},
		Executor: &runner.Local{NumaNode: -1},
		Out:      io.Discard,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	meta, err := coord.Launch(ctx, "insert_tiny")
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if len(meta.Invocations) != 14 {
		t.Fatalf("invocations: got %d, want 14", len(meta.Invocations))
	}

	dir := result.ConfigDir(cfg.Paths.DataDir, "insert_tiny")
	f, err := os.Open(filepath.Join(dir, "steph_4.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rec, err := extract.Read(f, "steph_4.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got, _ := extract.RunThroughput(rec); got != 2.5 {
		t.Errorf("throughput: got %v, want 2.5", got)
	}

	checker := &integrity.Checker{Catalog: cat, DataDir: cfg.Paths.DataDir, MaxThreads: cfg.MaxThreads}
	report, err := checker.Check()
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.OK() {
		t.Errorf("clevel failures should have been filled: incomplete %v missing %v", report.Incomplete, report.Missing)
	}
}
