package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
	log "github.com/sirupsen/logrus"
)

type RunOpts struct {
	Image   string
	Command []string
	Mounts  []Mount
	// CpusetMems pins container memory to NUMA nodes ("0"); empty leaves it unset.
	CpusetMems string
	Privileged bool
	Stdout     io.Writer
	// Stderr receives the container's stderr; nil means os.Stderr.
	Stderr io.Writer
}

type Mount struct {
	Source   string
	Target   string
	ReadOnly bool
}

// ParseMount reads "source:target[:ro]".
func ParseMount(s string) (Mount, error) {
	parts := strings.Split(s, ":")
	switch {
	case len(parts) == 2:
		return Mount{Source: parts[0], Target: parts[1]}, nil
	case len(parts) == 3 && parts[2] == "ro":
		return Mount{Source: parts[0], Target: parts[1], ReadOnly: true}, nil
	case len(parts) == 3 && parts[2] == "rw":
		return Mount{Source: parts[0], Target: parts[1]}, nil
	}
	return Mount{}, fmt.Errorf("invalid mount %q, want source:target[:ro]", s)
}

type RunResult struct {
	ExitCode int
	Duration time.Duration
}

// RunContainer runs opts.Command to completion and copies its output to
// opts.Stdout. The container is always removed.
func RunContainer(ctx context.Context, opts *RunOpts) (*RunResult, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	var mounts []mount.Mount
	for _, m := range opts.Mounts {
		mounts = append(mounts, mount.Mount{
			Type:     mount.TypeBind,
			Source:   m.Source,
			Target:   m.Target,
			ReadOnly: m.ReadOnly,
		})
	}

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts:     mounts,
		Init:       &initTrue,
		Privileged: opts.Privileged,
	}
	if opts.CpusetMems != "" {
		hostCfg.CpusetMems = opts.CpusetMems
	}

	// No TTY: the log stream stays multiplexed so stdout and stderr can be
	// split, and line endings are left alone.
	containerCfg := &container.Config{
		Image:  opts.Image,
		Cmd:    opts.Command,
		Labels: map[string]string{"pmhbench": "true"},
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	start := time.Now()
	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	waitResult := cli.ContainerWait(ctx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				return nil, fmt.Errorf("waiting for container: %w", err)
			}
			// nil error means no error on this channel; wait for result
		case status := <-waitResult.Result:
			if opts.Stdout != nil {
				stderr := opts.Stderr
				if stderr == nil {
					stderr = os.Stderr
				}
				if err := copyLogs(cli, containerID, opts.Stdout, stderr); err != nil {
					return nil, err
				}
			}
			return &RunResult{
				ExitCode: int(status.StatusCode),
				Duration: time.Since(start),
			}, nil
		}
	}
}

func copyLogs(cli *client.Client, containerID string, stdout, stderr io.Writer) error {
	logReader, err := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return fmt.Errorf("reading container logs: %w", err)
	}
	defer logReader.Close()
	return SplitLogs(logReader, stdout, stderr)
}

// SplitLogs demultiplexes a non-TTY container log stream, so only the
// benchmark's stdout reaches the result file.
func SplitLogs(r io.Reader, stdout, stderr io.Writer) error {
	if _, err := stdcopy.StdCopy(stdout, stderr, r); err != nil {
		return fmt.Errorf("copying container logs: %w", err)
	}
	return nil
}

// Executor runs benchmark invocations inside Image.
type Executor struct {
	Image      string
	Mounts     []Mount
	CpusetMems string
	Stderr     io.Writer
}

func (e *Executor) Execute(ctx context.Context, argv []string, w io.Writer) (int, error) {
	res, err := RunContainer(ctx, &RunOpts{
		Image:      e.Image,
		Command:    argv,
		Mounts:     e.Mounts,
		CpusetMems: e.CpusetMems,
		Privileged: true,
		Stdout:     w,
		Stderr:     e.Stderr,
	})
	if err != nil {
		return -1, err
	}
	log.WithFields(log.Fields{
		"image":    e.Image,
		"exit":     res.ExitCode,
		"duration": res.Duration.Round(time.Second),
	}).Debug("container finished")
	return res.ExitCode, nil
}
