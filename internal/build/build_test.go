package build_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalnine/pmhbench/internal/build"
	"github.com/signalnine/pmhbench/internal/catalog"
)

type recorder struct {
	calls [][]string
	fail  string
}

func (r *recorder) exec(ctx context.Context, out io.Writer, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	fmt.Fprintf(out, "%s %s\n", name, strings.Join(args, " "))
	if r.fail != "" && args[0] == r.fail {
		return errors.New("exit status 1")
	}
	return nil
}

func TestMesonOptionsComplete(t *testing.T) {
	opts := build.MesonOptions(catalog.BuildFlags{Latency: true, BreakdownS: true})
	want := []string{
		"-DPMHB_LATENCY=true",
		"-DINSERT_DEBUG=false",
		"-DCOUNTING_WRITE=false",
		"-DLOAD_FACTOR=false",
		"-DPREFAULT=true",
		"-DBREAKDOWN_SOD=false",
		"-DBREAKDOWN_SO=false",
		"-DBREAKDOWN_S=true",
		"-DBREAKDOWN_BASE=false",
	}
	if strings.Join(opts, " ") != strings.Join(want, " ") {
		t.Errorf("got %v, want %v", opts, want)
	}
}

func TestCompile(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	c := &build.Coordinator{
		BuildDir:  filepath.Join(dir, "builddir"),
		BuildType: "release",
		Jobs:      20,
		LogPath:   filepath.Join(dir, "compile.log"),
		Exec:      rec.exec,
	}
	e := catalog.Experiment{ID: "insert_rttp", BuildFlags: catalog.BuildFlags{Latency: true, BreakdownSOD: true}}
	if err := c.Compile(context.Background(), e); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 meson calls, got %d", len(rec.calls))
	}
	setup := strings.Join(rec.calls[0], " ")
	if strings.Contains(setup, "--reconfigure") {
		t.Errorf("fresh build dir should not be reconfigured: %s", setup)
	}
	if !strings.Contains(setup, "-DPMHB_LATENCY=true") || !strings.Contains(setup, "--buildtype release") {
		t.Errorf("setup args: %s", setup)
	}
	if got := strings.Join(rec.calls[1], " "); got != "meson compile -C "+c.BuildDir+" -j 20" {
		t.Errorf("compile args: %s", got)
	}

	// A configured build dir is reconfigured in place.
	os.MkdirAll(filepath.Join(c.BuildDir, "meson-private"), 0o755)
	if err := c.Compile(context.Background(), e); err != nil {
		t.Fatalf("second Compile: %v", err)
	}
	if !strings.Contains(strings.Join(rec.calls[2], " "), "--reconfigure") {
		t.Errorf("expected --reconfigure on rebuild: %v", rec.calls[2])
	}

	logData, _ := os.ReadFile(c.LogPath)
	if strings.Count(string(logData), "meson compile") != 2 {
		t.Errorf("compile log not appended:\n%s", logData)
	}
}

func TestCompileFailure(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{fail: "setup"}
	c := &build.Coordinator{
		BuildDir:  filepath.Join(dir, "builddir"),
		BuildType: "release",
		Jobs:      1,
		LogPath:   filepath.Join(dir, "compile.log"),
		Exec:      rec.exec,
	}
	err := c.Compile(context.Background(), catalog.Experiment{ID: "x"})
	if !errors.Is(err, build.ErrBuildFailed) {
		t.Fatalf("expected ErrBuildFailed, got %v", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("compile should not run after failed setup, got %d calls", len(rec.calls))
	}
}
