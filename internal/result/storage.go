package result

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sentinel is printed by the benchmark as its final line.
const Sentinel = "Output over"

//go:embed naivelog.txt
var naiveLog []byte

type State int

const (
	Missing State = iota
	Incomplete
	Complete
)

func (s State) String() string {
	switch s {
	case Complete:
		return "complete"
	case Incomplete:
		return "incomplete"
	default:
		return "missing"
	}
}

// Inspect classifies a result file by existence and the sentinel.
func Inspect(path string) (State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Missing, nil
	}
	if err != nil {
		return Missing, fmt.Errorf("reading result %s: %w", path, err)
	}
	if bytes.Contains(data, []byte(Sentinel)) {
		return Complete, nil
	}
	return Incomplete, nil
}

// LoadPlaceholder reads the placeholder template, or returns the built-in
// all-zero log when path is empty.
func LoadPlaceholder(path string) ([]byte, error) {
	if path == "" {
		return append([]byte(nil), naiveLog...), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading placeholder: %w", err)
	}
	return data, nil
}

// FillPlaceholder overwrites path with the template, creating parents.
func FillPlaceholder(template []byte, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating result dir: %w", err)
	}
	if err := os.WriteFile(path, template, 0o644); err != nil {
		return fmt.Errorf("writing placeholder %s: %w", path, err)
	}
	return nil
}

const launchMetaName = "launch.json"

type LaunchMeta struct {
	Batch       string           `json:"batch"`
	Config      string           `json:"config"`
	StartedAt   time.Time        `json:"started_at"`
	DurationS   int              `json:"duration_s"`
	Invocations []InvocationMeta `json:"invocations"`
}

type InvocationMeta struct {
	Competitor string `json:"competitor"`
	Requested  int    `json:"requested_threads"`
	Effective  int    `json:"effective_threads"`
	Attempts   int    `json:"attempts"`
	State      string `json:"state"`
	Path       string `json:"path"`
}

func LaunchMetaPath(configDir string) string {
	return filepath.Join(configDir, launchMetaName)
}

func WriteLaunchMeta(configDir string, meta *LaunchMeta) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	return os.WriteFile(LaunchMetaPath(configDir), data, 0o644)
}

func ReadLaunchMeta(path string) (*LaunchMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	var meta LaunchMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing meta: %w", err)
	}
	return &meta, nil
}
