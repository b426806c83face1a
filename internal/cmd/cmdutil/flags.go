// Package cmdutil provides shared flags and error helpers for ordsync commands.
package cmdutil

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds common flags across all commands.
type GlobalFlags struct {
	ConfigFile string
	Format     string
	LogLevel   string
	Quiet      bool
	Verbose    bool
	NoColor    bool
}

// AddGlobalFlags adds common flags to the root command.
func AddGlobalFlags(cmd *cobra.Command) *GlobalFlags {
	flags := &GlobalFlags{}

	cmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "",
		"Config file (default is $HOME/.ordsync.yaml)")
	cmd.PersistentFlags().StringVarP(&flags.Format, "format", "o", "",
		"Output format: table, json, yaml, markdown")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "",
		"Log level: trace, debug, info, warn, error (overrides -v/-q)")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false,
		"Minimal output (shortcut for --log-level=warn, hides progress)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false,
		"Verbose output (shortcut for --log-level=debug)")
	cmd.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false,
		"Disable colored output")

	return flags
}

// UsageError marks an error caused by how a command was invoked.
type UsageError struct {
	Err error
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return e.Err.Error()
}

// Unwrap implements errors.Unwrap.
func (e *UsageError) Unwrap() error {
	return e.Err
}

// Usage wraps err as a UsageError.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// Args wraps a positional argument validator so its failures are usage errors.
func Args(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return Usage(fn(cmd, args))
	}
}
