// Package cmd provides the CLI commands for seqprobe.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/probelabs/seqprobe/internal/logging"
	"github.com/probelabs/seqprobe/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the seqprobe CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seqprobe",
		Short: "Identify integer sequences against the OEIS catalog",
		Long: `seqprobe identifies integer sequences. Give it the first terms of a
sequence and it matches them against the online catalog and local dump
files, ranking candidates by how far the match runs.

Examples:
  seqprobe probe 0,1,1,2,3,5,8,13
  seqprobe probe --relax --explain 1,4,9,16,24
  seqprobe fetch A000045
  seqprobe names "prime numbers"`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("seqprobe version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.seqprobe/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newProbeCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newNamesCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging sets up file logging, verbose when --debug is given.
func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	cfg.WriteToStderr = false
	if debugMode {
		cfg = logging.DebugConfig()
		cfg.WriteToStderr = false
	}
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	if debugMode {
		slog.Info("Debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	}
	return nil
}

// stopLogging flushes and closes the log writer.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
