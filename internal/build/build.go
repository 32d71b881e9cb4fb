package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/signalnine/pmhbench/internal/catalog"
)

var ErrBuildFailed = errors.New("build failed")

// ExecFunc runs one build step with its output appended to out.
type ExecFunc func(ctx context.Context, out io.Writer, name string, args ...string) error

type Coordinator struct {
	BuildDir  string
	BuildType string
	Jobs      int
	LogPath   string
	Exec      ExecFunc
}

// MesonOptions renders every build switch explicitly, plus the switches
// every experiment shares.
func MesonOptions(f catalog.BuildFlags) []string {
	return []string{
		fmt.Sprintf("-DPMHB_LATENCY=%t", f.Latency),
		"-DINSERT_DEBUG=false",
		fmt.Sprintf("-DCOUNTING_WRITE=%t", f.CountingWrite),
		fmt.Sprintf("-DLOAD_FACTOR=%t", f.LoadFactor),
		"-DPREFAULT=true",
		fmt.Sprintf("-DBREAKDOWN_SOD=%t", f.BreakdownSOD),
		fmt.Sprintf("-DBREAKDOWN_SO=%t", f.BreakdownSO),
		fmt.Sprintf("-DBREAKDOWN_S=%t", f.BreakdownS),
		fmt.Sprintf("-DBREAKDOWN_BASE=%t", f.BreakdownBase),
	}
}

// Compile configures the build directory for e's flags and compiles. An
// existing build directory is reconfigured in place, so repeating a build
// with the same flags is an incremental no-op.
func (c *Coordinator) Compile(ctx context.Context, e catalog.Experiment) error {
	logFile, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening compile log: %v", ErrBuildFailed, err)
	}
	defer logFile.Close()

	setup := []string{"setup", c.BuildDir}
	if c.configured() {
		setup = append(setup, "--reconfigure")
	}
	setup = append(setup, "--buildtype", c.BuildType)
	setup = append(setup, MesonOptions(e.BuildFlags)...)
	compile := []string{"compile", "-C", c.BuildDir, "-j", fmt.Sprint(c.Jobs)}

	run := c.Exec
	if run == nil {
		run = execCommand
	}
	for _, args := range [][]string{setup, compile} {
		log.WithField("config", e.ID).Infof("meson %s", strings.Join(args, " "))
		if err := run(ctx, logFile, "meson", args...); err != nil {
			return fmt.Errorf("%w: %s: meson %s: %v", ErrBuildFailed, e.ID, args[0], err)
		}
	}
	return nil
}

func (c *Coordinator) configured() bool {
	_, err := os.Stat(filepath.Join(c.BuildDir, "meson-private"))
	return err == nil
}

func execCommand(ctx context.Context, out io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}
