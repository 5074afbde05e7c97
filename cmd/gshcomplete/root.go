package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atinylittleshell/gshcomplete/internal/config"
	"github.com/atinylittleshell/gshcomplete/internal/core"
	"github.com/atinylittleshell/gshcomplete/internal/history"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	flagConfig    = "config"
	flagLogStderr = "log-stderr"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logStderr  bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "gshcomplete",
		Short:         "Terminal shell completions from the command line",
		Version:       BUILD_VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.configPath, flagConfig, core.ConfigFile(), "Configuration file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVar(&a.logStderr, flagLogStderr, false, "Write logs to stderr instead of the log file")

	rootCmd.AddCommand(newCompleteCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	return rootCmd
}

func (a *app) initialize() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := initializeLogger(cfg, a.logStderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.logger.Debug("configuration loaded", zap.String("path", a.configPath))
	return nil
}

func initializeLogger(cfg *config.Config, toStderr bool) (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zap.NewAtomicLevelAt(cfg.Level())
	if toStderr {
		loggerConfig.OutputPaths = []string{"stderr"}
	} else {
		if err := os.MkdirAll(filepath.Dir(core.LogFile()), 0755); err != nil {
			return nil, err
		}
		loggerConfig.OutputPaths = []string{core.LogFile()}
	}
	loggerConfig.ErrorOutputPaths = []string{"stderr"}

	return loggerConfig.Build()
}

// historyPath is the configured history database, defaulting to the data
// directory.
func (a *app) historyPath() string {
	if a.cfg.HistoryFile == "" {
		return core.HistoryFile()
	}
	return config.ExpandHome(a.cfg.HistoryFile, core.HomeDir())
}

func (a *app) openHistory() (*history.Store, error) {
	return history.Open(history.StoreConfig{
		Path:   a.historyPath(),
		Logger: a.logger,
	})
}
