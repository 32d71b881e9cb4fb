package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var ErrConfigNotFound = errors.New("config not found")

// Flag names understood by the benchmark's meson build.
const (
	FlagLatency       = "LATENCY"
	FlagCountingWrite = "COUNTING_WRITE"
	FlagLoadFactor    = "LOAD_FACTOR"
	FlagBreakdownSOD  = "BREAKDOWN_SOD"
	FlagBreakdownSO   = "BREAKDOWN_SO"
	FlagBreakdownS    = "BREAKDOWN_S"
	FlagBreakdownBase = "BREAKDOWN_BASE"
)

// FlagNames lists every build switch an experiment must set.
var FlagNames = []string{
	FlagLatency,
	FlagCountingWrite,
	FlagLoadFactor,
	FlagBreakdownSOD,
	FlagBreakdownSO,
	FlagBreakdownS,
	FlagBreakdownBase,
}

type BuildFlags struct {
	Latency       bool
	CountingWrite bool
	LoadFactor    bool
	BreakdownSOD  bool
	BreakdownSO   bool
	BreakdownS    bool
	BreakdownBase bool
}

// FlagsFromMap requires m to name every switch in FlagNames and nothing else.
func FlagsFromMap(m map[string]bool) (BuildFlags, error) {
	var missing, unknown []string
	for _, name := range FlagNames {
		if _, ok := m[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range m {
		if !isFlagName(name) {
			unknown = append(unknown, name)
		}
	}
	if len(missing) > 0 {
		return BuildFlags{}, fmt.Errorf("build flags missing %s", strings.Join(missing, ", "))
	}
	if len(unknown) > 0 {
		return BuildFlags{}, fmt.Errorf("unknown build flags %s", strings.Join(unknown, ", "))
	}
	return BuildFlags{
		Latency:       m[FlagLatency],
		CountingWrite: m[FlagCountingWrite],
		LoadFactor:    m[FlagLoadFactor],
		BreakdownSOD:  m[FlagBreakdownSOD],
		BreakdownSO:   m[FlagBreakdownSO],
		BreakdownS:    m[FlagBreakdownS],
		BreakdownBase: m[FlagBreakdownBase],
	}, nil
}

func isFlagName(name string) bool {
	for _, n := range FlagNames {
		if n == name {
			return true
		}
	}
	return false
}

// Map returns the flags keyed by their build switch name.
func (f BuildFlags) Map() map[string]bool {
	return map[string]bool{
		FlagLatency:       f.Latency,
		FlagCountingWrite: f.CountingWrite,
		FlagLoadFactor:    f.LoadFactor,
		FlagBreakdownSOD:  f.BreakdownSOD,
		FlagBreakdownSO:   f.BreakdownSO,
		FlagBreakdownS:    f.BreakdownS,
		FlagBreakdownBase: f.BreakdownBase,
	}
}

type Experiment struct {
	ID         string
	Workload   string
	ThreadNums []int
	BuildFlags BuildFlags
	LoadNum    int64
	RunNum     int64
}

// IsBreakdown reports whether the experiment only exercises the SEPH
// breakdown variants.
func (e *Experiment) IsBreakdown() bool {
	return strings.Contains(e.ID, "breakdown")
}

func (e *Experiment) validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if e.Workload == "" {
		return fmt.Errorf("experiment %q: workload is required", e.ID)
	}
	if len(e.ThreadNums) == 0 {
		return fmt.Errorf("experiment %q: thread_num is required", e.ID)
	}
	for _, n := range e.ThreadNums {
		if n < 0 {
			return fmt.Errorf("experiment %q: negative thread count %d", e.ID, n)
		}
	}
	if e.LoadNum < 0 || e.RunNum < 0 {
		return fmt.Errorf("experiment %q: load_num and run_num must be non-negative", e.ID)
	}
	return nil
}

// Catalog is an immutable, ordered registry of experiments.
type Catalog struct {
	order []string
	byID  map[string]*Experiment
}

func New(experiments ...Experiment) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Experiment, len(experiments))}
	for i := range experiments {
		e := experiments[i]
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate experiment %q", e.ID)
		}
		e.ThreadNums = append([]int(nil), e.ThreadNums...)
		c.byID[e.ID] = &e
		c.order = append(c.order, e.ID)
	}
	return c, nil
}

// Lookup returns a copy of the experiment so callers cannot mutate the registry.
func (c *Catalog) Lookup(id string) (Experiment, error) {
	e, ok := c.byID[id]
	if !ok {
		return Experiment{}, fmt.Errorf("%w: %q", ErrConfigNotFound, id)
	}
	out := *e
	out.ThreadNums = append([]int(nil), e.ThreadNums...)
	return out, nil
}

func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) Len() int {
	return len(c.order)
}

// All returns copies of every experiment in registration order.
func (c *Catalog) All() []Experiment {
	out := make([]Experiment, 0, len(c.order))
	for _, id := range c.order {
		e, _ := c.Lookup(id)
		out = append(out, e)
	}
	return out
}

// Workloads returns the distinct workloads in first-use order.
func (c *Catalog) Workloads() []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range c.order {
		w := c.byID[id].Workload
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
