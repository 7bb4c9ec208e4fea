// Package cmd wires the pscan command-line interface: flag handling,
// config assembly, and the scan/resolve/tui/web subcommands.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/pscan/internal/config"
	"github.com/harrison/pscan/internal/history"
	"github.com/harrison/pscan/internal/logger"
	"github.com/harrison/pscan/internal/scan"
	"github.com/harrison/pscan/internal/snapshot"
)

// Version is injected at build time via -ldflags
var Version = "dev"

var (
	flagConfig   string
	flagRegex    string
	flagBasePath string
	flagLogLevel string
)

// NewRootCommand creates and returns the root cobra command for pscan.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pscan",
		Short: "Browse files organized by parameters in their paths",
		Long: `pscan scans a directory tree whose file paths encode parameters
(for example run_3/temp_300/plot.png), extracts them with a regular
expression using named capture groups, and lets you narrow a selection
until exactly one file is identified.

Examples:
  pscan scan   -r 'run_(?P<run>\d+)/temp_(?P<temp>\d+)/plot\.png' -b ./results
  pscan tui    -r 'run_(?P<run>\d+)/plot\.png'
  pscan web    -r 'run_(?P<run>\d+)/plot\.png' --port 8765
  pscan resolve -r 'run_(?P<run>\d+)/plot\.png' --set run=3`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", ".pscan.yaml", "Path to the config file")
	cmd.PersistentFlags().StringVarP(&flagRegex, "regex", "r", "", "Expression with named groups matching file paths")
	cmd.PersistentFlags().StringVarP(&flagBasePath, "base-path", "b", "", "Root directory to scan (default: current directory)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log verbosity: trace, debug, info, warn, error")

	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewResolveCommand())
	cmd.AddCommand(NewTuiCommand())
	cmd.AddCommand(NewWebCommand())

	return cmd
}

// loadConfig merges the config file with command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagRegex != "" {
		cfg.Regex = flagRegex
	}
	if flagBasePath != "" {
		cfg.BasePath = flagBasePath
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the console logger from config.
func newLogger(cfg *config.Config) *logger.Console {
	return logger.NewConsole(os.Stderr, cfg.LogLevel)
}

// newHolder runs the initial scan and returns the snapshot holder.
func newHolder(ctx context.Context, cfg *config.Config, log *logger.Console) (*snapshot.Holder, error) {
	scanner, err := scan.New(cfg.Regex, cfg.BasePath)
	if err != nil {
		return nil, err
	}
	holder, err := snapshot.NewHolder(ctx, scanner)
	if err != nil {
		return nil, err
	}
	snap := holder.Current()
	log.Infof("scanned %s: %d records (%d skipped, %d files walked)",
		cfg.BasePath, snap.Index.Len(), snap.Report.Skipped, snap.Report.Walked)
	return holder, nil
}

// openHistory opens the history store, or returns nil when disabled.
func openHistory(cfg *config.Config, log *logger.Console) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		log.Warnf("history disabled: %v", err)
		return nil
	}
	return store
}
