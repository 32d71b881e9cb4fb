package catalog_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalnine/pmhbench/internal/catalog"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if cat.Len() != 29 {
		t.Errorf("expected 29 experiments, got %d", cat.Len())
	}
	ids := cat.IDs()
	if ids[0] != "insert_rttp" || ids[len(ids)-1] != "breakdown_base_reason" {
		t.Errorf("unexpected order: first %q last %q", ids[0], ids[len(ids)-1])
	}
	e, err := cat.Lookup("scalability_delete")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if e.RunNum != 10_000_000 {
		t.Errorf("scalability_delete run_num: got %d", e.RunNum)
	}
	if len(e.ThreadNums) != 7 || e.ThreadNums[0] != 48 {
		t.Errorf("scalability_delete threads: got %v", e.ThreadNums)
	}
}

func TestLookupNotFound(t *testing.T) {
	cat, _ := catalog.Default()
	_, err := cat.Lookup("nope")
	if !errors.Is(err, catalog.ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	cat, _ := catalog.Default()
	e, _ := cat.Lookup("scalability_insert")
	e.ThreadNums[0] = 1
	again, _ := cat.Lookup("scalability_insert")
	if again.ThreadNums[0] != 48 {
		t.Errorf("registry mutated through Lookup result: %v", again.ThreadNums)
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		exps []catalog.Experiment
	}{
		{"missing id", []catalog.Experiment{{Workload: "w", ThreadNums: []int{1}}}},
		{"missing workload", []catalog.Experiment{{ID: "a", ThreadNums: []int{1}}}},
		{"no threads", []catalog.Experiment{{ID: "a", Workload: "w"}}},
		{"negative threads", []catalog.Experiment{{ID: "a", Workload: "w", ThreadNums: []int{-1}}}},
		{"duplicate", []catalog.Experiment{
			{ID: "a", Workload: "w", ThreadNums: []int{1}},
			{ID: "a", Workload: "w", ThreadNums: []int{1}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := catalog.New(tt.exps...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestIsBreakdown(t *testing.T) {
	cat, _ := catalog.Default()
	var n int
	for _, e := range cat.All() {
		if e.IsBreakdown() != strings.HasPrefix(e.ID, "breakdown_") {
			t.Errorf("%s: IsBreakdown = %v", e.ID, e.IsBreakdown())
		}
		if e.IsBreakdown() {
			n++
		}
	}
	if n != 8 {
		t.Errorf("expected 8 breakdown experiments, got %d", n)
	}
}

func TestWorkloadsDistinct(t *testing.T) {
	cat, _ := catalog.Default()
	ws := cat.Workloads()
	seen := map[string]bool{}
	for _, w := range ws {
		if seen[w] {
			t.Errorf("duplicate workload %q", w)
		}
		seen[w] = true
	}
	if len(ws) != 13 {
		t.Errorf("expected 13 workloads, got %d: %v", len(ws), ws)
	}
}

func TestFlagsFromMap(t *testing.T) {
	full := catalog.BuildFlags{Latency: true, BreakdownSO: true}.Map()
	got, err := catalog.FlagsFromMap(full)
	if err != nil {
		t.Fatalf("FlagsFromMap: %v", err)
	}
	if !got.Latency || !got.BreakdownSO || got.BreakdownSOD {
		t.Errorf("unexpected flags %+v", got)
	}

	partial := map[string]bool{catalog.FlagLatency: true}
	if _, err := catalog.FlagsFromMap(partial); err == nil {
		t.Error("expected error for partial flag set")
	}

	extra := catalog.BuildFlags{}.Map()
	extra["TURBO"] = true
	if _, err := catalog.FlagsFromMap(extra); err == nil {
		t.Error("expected error for unknown flag")
	}
}
