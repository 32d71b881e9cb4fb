package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalnine/pmhbench/internal/build"
	"github.com/signalnine/pmhbench/internal/catalog"
	"github.com/signalnine/pmhbench/internal/config"
	"github.com/signalnine/pmhbench/internal/docker"
	"github.com/signalnine/pmhbench/internal/runner"
)

var (
	settings *viper.Viper
	envFile  string
	verbose  bool
)

func NewRootCmd() *cobra.Command {
	settings = viper.New()
	settings.SetEnvPrefix("PMHB")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	root := &cobra.Command{
		Use:          "pmhbench",
		Short:        "Launch PM hash table benchmark experiments and extract their results",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("loading env file %s: %w", envFile, err)
				}
			}
			return nil
		},
		// An unknown command prints usage and still exits 0.
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "unknown command %q\n", args[0])
			}
			return cmd.Usage()
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "pmhbench.yaml", "settings file (env PMHB_CONFIG)")
	flags.String("data-dir", "", "override paths.data_dir (env PMHB_DATA_DIR)")
	flags.String("binary", "", "override paths.binary (env PMHB_BINARY)")
	flags.StringVar(&envFile, "env-file", "", "dotenv file loaded before reading settings")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	settings.BindPFlag("config", flags.Lookup("config"))
	settings.BindPFlag("data_dir", flags.Lookup("data-dir"))
	settings.BindPFlag("binary", flags.Lookup("binary"))

	root.AddCommand(newLaunchCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newLaunchAllCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newCompleteCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newSingleCmd())
	root.AddCommand(newTracesCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newSummaryCmd())
	return root
}

// loadSettings reads the settings file, falling back to defaults when it
// does not exist, and applies env and flag overrides.
func loadSettings() (*config.Config, *catalog.Catalog, error) {
	cfg, err := config.LoadOrDefault(settings.GetString("config"))
	if err != nil {
		return nil, nil, err
	}
	if d := settings.GetString("data_dir"); d != "" {
		cfg.Paths.DataDir = d
	}
	if b := settings.GetString("binary"); b != "" {
		cfg.Paths.Binary = b
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, nil, fmt.Errorf("building catalog: %w", err)
	}
	return cfg, cat, nil
}

func newBuilder(cfg *config.Config) *build.Coordinator {
	return &build.Coordinator{
		BuildDir:  cfg.Paths.BuildDir,
		BuildType: cfg.Build.BuildType,
		Jobs:      cfg.Build.Jobs,
		LogPath:   cfg.Paths.CompileLog,
	}
}

func newExecutor(cfg *config.Config) (runner.Executor, error) {
	node := *cfg.Executor.NumaNode
	if cfg.Executor.Kind != config.ExecutorDocker {
		return &runner.Local{NumaNode: node}, nil
	}
	e := &docker.Executor{Image: cfg.Executor.Image}
	if node >= 0 {
		e.CpusetMems = strconv.Itoa(node)
	}
	for _, m := range cfg.Executor.Mounts {
		mount, err := docker.ParseMount(m)
		if err != nil {
			return nil, fmt.Errorf("executor: %w", err)
		}
		e.Mounts = append(e.Mounts, mount)
	}
	return e, nil
}

func newCoordinator(cmd *cobra.Command) (*runner.Coordinator, error) {
	cfg, cat, err := loadSettings()
	if err != nil {
		return nil, err
	}
	exec, err := newExecutor(cfg)
	if err != nil {
		return nil, err
	}
	return &runner.Coordinator{
		Catalog:  cat,
		Config:   cfg,
		Builder:  newBuilder(cfg),
		Executor: exec,
		Out:      cmd.OutOrStdout(),
	}, nil
}
