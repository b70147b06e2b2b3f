package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"tankreport/internal/config"
	"tankreport/internal/infrastructure"
)

// rootOptions are the flags shared by every command
type rootOptions struct {
	configFile string
	dataDir    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "tankreport",
		Short:         "Sri Lanka small tanks report",
		Long:          "Loads the small tanks survey, derives the report tables and charts, and serves or exports them.",
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the input datasets (overrides "+config.EnvPrefix+"_DATA_BASE_DIR)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	cmd.AddCommand(
		newServeCmd(opts),
		newRenderCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// loadConfig reads the configuration and applies the flag overrides
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.dataDir != "" {
		cfg.Data.BaseDir = o.dataDir
	}
	if o.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// cliLogger logs to w so that stdout stays clean for command output
func cliLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = slog.LevelInfo
	}
	return infrastructure.NewLoggerWithWriter(w, &slog.HandlerOptions{Level: level})
}
