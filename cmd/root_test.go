package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalnine/pmhbench/internal/config"
	"github.com/signalnine/pmhbench/internal/result"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestUnknownCommandExitsZero(t *testing.T) {
	out, err := execute(t, "bogus")
	if err != nil {
		t.Fatalf("unknown command should not fail: %v", err)
	}
	if !strings.Contains(out, `unknown command "bogus"`) {
		t.Errorf("missing notice in output:\n%s", out)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("usage not printed:\n%s", out)
	}
}

func TestList(t *testing.T) {
	out, err := execute(t, "list", "--config", "../testdata/full.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "insert_small") || !strings.Contains(out, "32,16") {
		t.Errorf("catalog listing:\n%s", out)
	}

	out, err = execute(t, "list", "--dump", "--config", "../testdata/full.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "pmhb:latest") {
		t.Errorf("dump should include the executor image:\n%s", out)
	}
}

func TestCheckAndComplete(t *testing.T) {
	data := t.TempDir()
	cat, err := config.Default().Catalog()
	if err != nil {
		t.Fatal(err)
	}
	slots := result.Plan(cat, data, 48)

	out, err := execute(t, "check", "--data-dir", data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, fmt.Sprintf("missing (the run did not start): %d", len(slots))) {
		t.Errorf("check on empty dir:\n%s", out)
	}

	out, err = execute(t, "complete", "--data-dir", data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, fmt.Sprintf("filled %d result files", len(slots))) {
		t.Errorf("complete:\n%s", out)
	}

	out, err = execute(t, "check", "--data-dir", data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Data files are complete for plotting") {
		t.Errorf("check after complete:\n%s", out)
	}

	out, err = execute(t, "report", "10-breakdown", "--format", "json", "--data-dir", data)
	if err != nil {
		t.Fatal(err)
	}
	var tables []struct {
		Sheet string       `json:"sheet"`
		Cells [][]*float64 `json:"cells"`
	}
	if err := json.Unmarshal([]byte(out), &tables); err != nil {
		t.Fatalf("report json: %v\n%s", err, out)
	}
	if len(tables) != 3 || tables[0].Sheet != "MinAvgMax Throughput" {
		t.Errorf("unexpected tables: %+v", tables)
	}
}

func TestEnvFile(t *testing.T) {
	data := t.TempDir()
	env := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(env, []byte("PMHB_DATA_DIR="+data+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("PMHB_DATA_DIR") })

	out, err := execute(t, "check", "--env-file", env)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, data) {
		t.Errorf("missing files should be listed under %s:\n%s", data, out)
	}
}

func TestReport(t *testing.T) {
	out, err := execute(t, "report")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "10-breakdown") || !strings.Contains(out, "15-ycsb-tail-latency") {
		t.Errorf("figure listing:\n%s", out)
	}

	if _, err := execute(t, "report", "10-breakdown", "--format", "csv"); err == nil {
		t.Error("csv without --out should fail")
	}
	if _, err := execute(t, "report", "99-nope", "--data-dir", t.TempDir()); err == nil {
		t.Error("unknown figure should fail")
	}
}

func TestSummaryEmpty(t *testing.T) {
	out, err := execute(t, "summary", "--data-dir", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no launches recorded") {
		t.Errorf("summary:\n%s", out)
	}
}
