package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/signalnine/pmhbench/internal/catalog"
	"github.com/signalnine/pmhbench/internal/competitor"
	"github.com/signalnine/pmhbench/internal/config"
	"github.com/signalnine/pmhbench/internal/result"
)

var ErrPreconditionMissing = errors.New("precondition missing")

type State int

const (
	Pending State = iota
	Running
	Succeeded
	Failed
	PlaceholderFilled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case PlaceholderFilled:
		return "placeholder"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Builder compiles the benchmark for an experiment's build flags.
type Builder interface {
	Compile(ctx context.Context, e catalog.Experiment) error
}

// Invocation tracks one slot through its retry budget.
type Invocation struct {
	Slot     result.Slot
	Argv     []string
	Attempts int
	State    State
}

type Coordinator struct {
	Catalog  *catalog.Catalog
	Config   *config.Config
	Builder  Builder
	Executor Executor
	// Out receives progress lines; nil means stdout.
	Out io.Writer
}

func (c *Coordinator) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Launch builds the experiment id and runs every planned invocation in order.
func (c *Coordinator) Launch(ctx context.Context, id string) (*result.LaunchMeta, error) {
	return c.launch(ctx, id, uuid.NewString())
}

func (c *Coordinator) launch(ctx context.Context, id, batch string) (*result.LaunchMeta, error) {
	e, err := c.Catalog.Lookup(id)
	if err != nil {
		return nil, err
	}
	if err := c.Builder.Compile(ctx, e); err != nil {
		return nil, err
	}
	cfg := c.Config
	configDir := result.ConfigDir(cfg.Paths.DataDir, e.ID)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	template, err := result.LoadPlaceholder(cfg.Paths.Placeholder)
	if err != nil {
		return nil, err
	}

	meta := &result.LaunchMeta{Batch: batch, Config: e.ID, StartedAt: time.Now()}
	slots := result.PlanExperiment(e, cfg.Paths.DataDir, cfg.MaxThreads)
	for i, slot := range slots {
		if err := ctx.Err(); err != nil {
			return meta, err
		}
		inv := &Invocation{
			Slot:  slot,
			Argv:  Command(cfg.Paths, e, slot.Competitor, slot.Effective, configDir),
			State: Pending,
		}
		fmt.Fprintf(c.out(), "[%d/%d] %s %s -t %d\n", i+1, len(slots), e.ID, slot.Competitor, slot.Effective)
		if err := c.run(ctx, inv, template, batch); err != nil {
			log.WithFields(log.Fields{"config": e.ID, "competitor": slot.Competitor}).Errorf("invocation: %v", err)
		}
		meta.Invocations = append(meta.Invocations, result.InvocationMeta{
			Competitor: slot.Competitor,
			Requested:  slot.Requested,
			Effective:  slot.Effective,
			Attempts:   inv.Attempts,
			State:      inv.State.String(),
			Path:       slot.Path,
		})
	}
	meta.DurationS = int(time.Since(meta.StartedAt).Seconds())
	if err := result.WriteLaunchMeta(configDir, meta); err != nil {
		return meta, fmt.Errorf("writing launch meta: %w", err)
	}
	return meta, nil
}

// run drives one invocation until it succeeds or exhausts the retry budget,
// in which case the result file is replaced by the placeholder.
func (c *Coordinator) run(ctx context.Context, inv *Invocation, template []byte, batch string) error {
	fields := log.Fields{
		"batch":      batch,
		"config":     inv.Slot.ConfigID,
		"competitor": inv.Slot.Competitor,
		"threads":    inv.Slot.Effective,
	}
	for inv.Attempts < c.Config.Retries {
		inv.Attempts++
		inv.State = Running
		code, err := c.attempt(ctx, inv)
		if err == nil && code == 0 {
			inv.State = Succeeded
			return nil
		}
		inv.State = Failed
		entry := log.WithFields(fields).WithField("attempt", inv.Attempts)
		if err != nil {
			entry.Warnf("[Retry] %v", err)
		} else {
			entry.Warnf("[Retry] exit status %d", code)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	log.WithFields(fields).Errorf("[FAIL!] %s", strings.Join(inv.Argv, " "))
	if err := result.FillPlaceholder(template, inv.Slot.Path); err != nil {
		return err
	}
	inv.State = PlaceholderFilled
	return nil
}

func (c *Coordinator) attempt(ctx context.Context, inv *Invocation) (int, error) {
	f, err := os.Create(inv.Slot.Path)
	if err != nil {
		return -1, fmt.Errorf("creating result file: %w", err)
	}
	defer f.Close()
	return c.Executor.Execute(ctx, inv.Argv, f)
}

// MissingTraces lists the pm trace files the catalog needs that do not exist.
func MissingTraces(cat *catalog.Catalog, pmTraceDir string) []string {
	var missing []string
	for _, w := range cat.Workloads() {
		path := filepath.Join(pmTraceDir, w)
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	return missing
}

// LaunchAll launches every experiment in catalog order under one batch id.
// Nothing runs unless every pm trace exists. A failing experiment is logged
// and the rest still run; the failures are returned joined.
func (c *Coordinator) LaunchAll(ctx context.Context) ([]*result.LaunchMeta, error) {
	if missing := MissingTraces(c.Catalog, c.Config.Paths.PMTraceDir); len(missing) > 0 {
		return nil, fmt.Errorf("%w: pm trace %s missing, run trace_maker first",
			ErrPreconditionMissing, strings.Join(missing, ", "))
	}
	batch := uuid.NewString()
	var (
		metas []*result.LaunchMeta
		errs  []error
	)
	for _, id := range c.Catalog.IDs() {
		meta, err := c.launch(ctx, id, batch)
		if meta != nil {
			metas = append(metas, meta)
		}
		if err != nil {
			log.WithFields(log.Fields{"batch": batch, "config": id}).Errorf("launch: %v", err)
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			if ctx.Err() != nil {
				break
			}
		}
	}
	return metas, errors.Join(errs...)
}

// Ad-hoc single runs use the load workload at these sizes.
const (
	SingleWorkload = "workload_load"
	SingleLoadNum  = 10_000_000
	SingleRunNum   = 200_000_000
)

// SingleDir is the data subdirectory ad-hoc runs write to.
const SingleDir = "tmp"

// Single runs one competitor once at the maximum thread count into
// <data>/tmp, without building and without retries. The returned path holds
// the benchmark output.
func (c *Coordinator) Single(ctx context.Context, token string) (string, State, error) {
	if _, ok := competitor.ByToken(token); !ok {
		return "", Pending, fmt.Errorf("unknown competitor %q", token)
	}
	cfg := c.Config
	e := catalog.Experiment{
		ID:       SingleDir,
		Workload: SingleWorkload,
		LoadNum:  SingleLoadNum,
		RunNum:   SingleRunNum,
	}
	threads := competitor.EffectiveThreads(token, cfg.MaxThreads, cfg.MaxThreads)
	dir := result.ConfigDir(cfg.Paths.DataDir, SingleDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", Pending, fmt.Errorf("creating data dir: %w", err)
	}
	inv := &Invocation{
		Slot: result.Slot{
			ConfigID:   SingleDir,
			Competitor: token,
			Requested:  cfg.MaxThreads,
			Effective:  threads,
			Path:       result.Path(cfg.Paths.DataDir, SingleDir, token, threads),
		},
		Argv:     Command(cfg.Paths, e, token, threads, dir),
		State:    Running,
		Attempts: 1,
	}
	fmt.Fprintln(c.out(), strings.Join(inv.Argv, " "))
	code, err := c.attempt(ctx, inv)
	if err != nil {
		return inv.Slot.Path, Failed, err
	}
	if code != 0 {
		return inv.Slot.Path, Failed, fmt.Errorf("%s exited with status %d", token, code)
	}
	return inv.Slot.Path, Succeeded, nil
}
