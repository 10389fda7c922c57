package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/strided-ml/strided/internal/backend/cpu"
	"github.com/strided-ml/strided/internal/config"
	"github.com/strided-ml/strided/internal/parallel"
)

var (
	cfgFile   string
	activeCfg config.Config
	cfgLoaded bool
)

// NewRootCmd builds the strided command tree. Its persistent pre-run loads
// configuration and installs the structured logger before any subcommand runs.
func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "strided",
		Short:         "Strided tensor engine command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			cfgLoaded = true
			setupLogger(loaded.Log.Level)
			slog.Debug("config loaded", "workers", loaded.Runtime.Workers, "precision", loaded.Output.Precision)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newMatmulCmd())
	cmd.AddCommand(newDemoCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := config.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if !cfgLoaded {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// newBackend builds a CPU backend honoring the configured worker count.
func newBackend(cfg config.Config) *cpu.CPUBackend {
	return cpu.NewWithConfig(parallel.WithWorkers(cfg.Runtime.Workers))
}
