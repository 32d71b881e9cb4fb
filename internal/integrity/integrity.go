// Package integrity audits the result tree against the full run plan.
package integrity

import (
	"fmt"

	"github.com/signalnine/pmhbench/internal/catalog"
	"github.com/signalnine/pmhbench/internal/result"
)

// Report partitions the planned result paths by state.
type Report struct {
	Complete   []string
	Incomplete []string
	Missing    []string
}

func (r *Report) Total() int {
	return len(r.Complete) + len(r.Incomplete) + len(r.Missing)
}

// OK reports whether every planned result is complete.
func (r *Report) OK() bool {
	return len(r.Incomplete) == 0 && len(r.Missing) == 0
}

// Broken lists incomplete then missing paths.
func (r *Report) Broken() []string {
	out := append([]string(nil), r.Incomplete...)
	return append(out, r.Missing...)
}

type Checker struct {
	Catalog    *catalog.Catalog
	DataDir    string
	MaxThreads int
	// Placeholder is the template path; empty uses the built-in one.
	Placeholder string
}

// Check classifies every planned result path, in plan order.
func (c *Checker) Check() (*Report, error) {
	r := &Report{}
	for _, slot := range result.Plan(c.Catalog, c.DataDir, c.MaxThreads) {
		state, err := result.Inspect(slot.Path)
		if err != nil {
			return nil, err
		}
		switch state {
		case result.Complete:
			r.Complete = append(r.Complete, slot.Path)
		case result.Incomplete:
			r.Incomplete = append(r.Incomplete, slot.Path)
		default:
			r.Missing = append(r.Missing, slot.Path)
		}
	}
	return r, nil
}

// Repair writes the placeholder over every result that is not complete and
// returns the paths it filled.
func (c *Checker) Repair() ([]string, error) {
	r, err := c.Check()
	if err != nil {
		return nil, err
	}
	broken := r.Broken()
	if len(broken) == 0 {
		return nil, nil
	}
	template, err := result.LoadPlaceholder(c.Placeholder)
	if err != nil {
		return nil, err
	}
	for i, path := range broken {
		if err := result.FillPlaceholder(template, path); err != nil {
			return broken[:i], fmt.Errorf("repairing: %w", err)
		}
	}
	return broken, nil
}
