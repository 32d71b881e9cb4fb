package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/signalnine/pmhbench/internal/catalog"
)

type Config struct {
	Paths       Paths        `yaml:"paths"`
	Executor    Executor     `yaml:"executor"`
	Build       Build        `yaml:"build"`
	MaxThreads  int          `yaml:"max_threads"`
	Retries     int          `yaml:"retries"`
	Experiments []Experiment `yaml:"experiments"`
}

type Paths struct {
	Binary       string `yaml:"binary"`
	BuildDir     string `yaml:"build_dir"`
	DataDir      string `yaml:"data_dir"`
	ScratchDir   string `yaml:"scratch_dir"`
	PMTraceDir   string `yaml:"pm_trace_dir"`
	LoadTraceDir string `yaml:"load_trace_dir"`
	RunTraceDir  string `yaml:"run_trace_dir"`
	Placeholder  string `yaml:"placeholder"`
	CompileLog   string `yaml:"compile_log"`
	TraceMaker   string `yaml:"trace_maker"`
	TraceLogDir  string `yaml:"trace_log_dir"`
}

type Executor struct {
	Kind     string   `yaml:"kind"`
	NumaNode *int     `yaml:"numa_node"`
	Image    string   `yaml:"image"`
	Mounts   []string `yaml:"mounts"`
}

type Build struct {
	Jobs      int    `yaml:"jobs"`
	BuildType string `yaml:"buildtype"`
}

// Experiment is the YAML form of catalog.Experiment. Flags must name every
// build switch.
type Experiment struct {
	ID         string          `yaml:"id"`
	Workload   string          `yaml:"workload"`
	ThreadNum  []int           `yaml:"thread_num"`
	LoadNum    int64           `yaml:"load_num"`
	RunNum     int64           `yaml:"run_num"`
	BuildFlags map[string]bool `yaml:"build_flags"`
}

const (
	ExecutorLocal  = "local"
	ExecutorDocker = "docker"
)

// Default returns the settings used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOrDefault falls back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func applyDefaults(cfg *Config) {
	p := &cfg.Paths
	setDefault(&p.Binary, "./builddir/pmhb")
	setDefault(&p.BuildDir, "builddir")
	setDefault(&p.DataDir, "./data")
	setDefault(&p.ScratchDir, "/mnt/pmem0/Testee/")
	setDefault(&p.PMTraceDir, "/mnt/pmem0/Trace")
	setDefault(&p.LoadTraceDir, "./trace/load")
	setDefault(&p.RunTraceDir, "./trace/run")
	setDefault(&p.CompileLog, "compile.log")
	setDefault(&p.TraceMaker, "./builddir/trace_maker")
	setDefault(&p.TraceLogDir, "logs")

	setDefault(&cfg.Executor.Kind, ExecutorLocal)
	if cfg.Executor.NumaNode == nil {
		node := 0
		cfg.Executor.NumaNode = &node
	}
	if cfg.Build.Jobs == 0 {
		cfg.Build.Jobs = 20
	}
	setDefault(&cfg.Build.BuildType, "release")
	if cfg.MaxThreads == 0 {
		cfg.MaxThreads = 48
	}
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func validate(cfg *Config) error {
	switch cfg.Executor.Kind {
	case ExecutorLocal:
	case ExecutorDocker:
		if cfg.Executor.Image == "" {
			return fmt.Errorf("executor: image is required for docker")
		}
	default:
		return fmt.Errorf("executor: unknown kind %q", cfg.Executor.Kind)
	}
	if cfg.MaxThreads < 1 {
		return fmt.Errorf("max_threads must be at least 1")
	}
	if cfg.Retries < 1 {
		return fmt.Errorf("retries must be at least 1")
	}
	if cfg.Build.Jobs < 1 {
		return fmt.Errorf("build: jobs must be at least 1")
	}
	for i, e := range cfg.Experiments {
		if e.ID == "" {
			return fmt.Errorf("experiment %d: id is required", i)
		}
		if _, err := catalog.FlagsFromMap(e.BuildFlags); err != nil {
			return fmt.Errorf("experiment %q: %w", e.ID, err)
		}
	}
	return nil
}

// Catalog builds the immutable experiment registry: the built-in experiments
// followed by the ones declared in the config file.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	extra := make([]catalog.Experiment, 0, len(c.Experiments))
	for _, e := range c.Experiments {
		flags, err := catalog.FlagsFromMap(e.BuildFlags)
		if err != nil {
			return nil, fmt.Errorf("experiment %q: %w", e.ID, err)
		}
		extra = append(extra, catalog.Experiment{
			ID:         e.ID,
			Workload:   e.Workload,
			ThreadNums: e.ThreadNum,
			BuildFlags: flags,
			LoadNum:    e.LoadNum,
			RunNum:     e.RunNum,
		})
	}
	return catalog.Default(extra...)
}
