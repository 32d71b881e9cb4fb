package config_test

import (
	"path/filepath"
	"testing"

	"github.com/signalnine/pmhbench/internal/config"
)

func TestLoadMinimal(t *testing.T) {
	cfg, err := config.Load("../../testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Paths.DataDir != "./out" {
		t.Errorf("expected data_dir './out', got %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.Binary != "./builddir/pmhb" {
		t.Errorf("expected default binary, got %q", cfg.Paths.Binary)
	}
	if cfg.Executor.Kind != config.ExecutorLocal {
		t.Errorf("expected local executor, got %q", cfg.Executor.Kind)
	}
	if *cfg.Executor.NumaNode != 0 {
		t.Errorf("expected numa node 0, got %d", *cfg.Executor.NumaNode)
	}
	if cfg.MaxThreads != 48 || cfg.Retries != 3 || cfg.Build.Jobs != 20 {
		t.Errorf("unexpected defaults: max_threads=%d retries=%d jobs=%d", cfg.MaxThreads, cfg.Retries, cfg.Build.Jobs)
	}
}

func TestLoadFull(t *testing.T) {
	cfg, err := config.Load("../../testdata/full.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Executor.Kind != config.ExecutorDocker || cfg.Executor.Image != "pmhb:latest" {
		t.Errorf("unexpected executor %+v", cfg.Executor)
	}
	if *cfg.Executor.NumaNode != -1 {
		t.Errorf("expected numa node -1, got %d", *cfg.Executor.NumaNode)
	}
	if cfg.MaxThreads != 32 || cfg.Retries != 5 {
		t.Errorf("max_threads=%d retries=%d", cfg.MaxThreads, cfg.Retries)
	}
	cat, err := cfg.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	e, err := cat.Lookup("insert_small")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !e.BuildFlags.CountingWrite || e.BuildFlags.Latency {
		t.Errorf("unexpected flags %+v", e.BuildFlags)
	}
	ids := cat.IDs()
	if ids[len(ids)-1] != "insert_small" {
		t.Errorf("expected config experiments after built-ins, got last %q", ids[len(ids)-1])
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := config.Load("nonexistent.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := config.LoadOrDefault(filepath.Join(t.TempDir(), "pmhbench.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Paths.DataDir != "./data" {
		t.Errorf("expected default data dir, got %q", cfg.Paths.DataDir)
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := config.Load("../../testdata/invalid.yaml")
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadPartialFlags(t *testing.T) {
	_, err := config.Load("../../testdata/partial_flags.yaml")
	if err == nil {
		t.Error("expected error for partial build flags")
	}
}
