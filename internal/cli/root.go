// Package cli wires the conformance harness into a cobra command tree.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/altova/sec-edgar-tools/internal/logging"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose  bool
	LogLevel string
	LogFile  string
}

// newLogger builds the run logger from the global flags. The returned
// closer flushes the log file, if any.
func (o *RootOptions) newLogger() (*slog.Logger, func() error, error) {
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid log level", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger, closer, err := logging.New(logging.Options{Level: level, File: o.LogFile})
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "set up logging", err)
	}
	return logger, closer, nil
}

// NewRootCommand creates the root command for the testsuite CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "testsuite",
		Short: "Conformance test harness for document-validation engines",
		Long: `testsuite executes XBRL-style conformance suites against an external
document-validation engine and classifies each variation's observed
diagnostics and output documents against the suite's recorded
expectations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "tee log records into this file")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}
