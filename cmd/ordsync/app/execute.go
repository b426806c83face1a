package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordsync/internal/cmd/cmdutil"
	"github.com/agentstation/ordsync/internal/cmd/hints"
	"github.com/agentstation/ordsync/internal/cmd/output"
	"github.com/agentstation/ordsync/pkg/errors"
)

// Exit codes returned by the CLI.
const (
	ExitOK              = 0
	ExitError           = 1
	ExitUsage           = 2
	ExitTransport       = 3
	ExitEmptyResult     = 4
	ExitMissingTemplate = 5
)

// AnnotationAudit marks commands whose logs are also written to the audit log.
const AnnotationAudit = "ordsync/audit"

// Execute runs the ordsync CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
		return cmdutil.Usage(err)
	}
	return err
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ordsync",
		Short:   "Organisation reference data synchroniser",
		Version: a.version,
		Long: `ordsync downloads every organisation changed since a date from the ORD
reference data API and writes them, together with the role, relationship,
and record class code systems, into one schema-compliant XML document.

A run either commits a complete document or leaves nothing behind.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	a.flags = cmdutil.AddGlobalFlags(rootCmd)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cmdutil.Usage(err)
	})
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	// Customize version output to match version subcommand
	rootCmd.SetVersionTemplate("ordsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// An explicit --config replaces whatever was loaded at startup
	if a.flags.ConfigFile != "" && a.flags.ConfigFile != a.config.ConfigFile {
		config, err := LoadConfig(a.flags.ConfigFile)
		if err != nil {
			return cmdutil.Usage(err)
		}
		a.config = config
	}

	a.config.UpdateFromFlags(a.flags)

	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return cmdutil.Usage(err)
	}

	var extra []io.Writer
	if cmd.Annotations[AnnotationAudit] == "true" {
		audit, err := a.openAudit()
		if err != nil {
			fmt.Fprintf(a.stderr, "Warning: audit log disabled: %v\n", err)
		} else if audit != nil {
			extra = append(extra, audit)
		}
	}

	// Reinitialize logger with updated config
	logger := NewLogger(a.config, extra...)
	a.logger = &logger

	return nil
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	var usage *cmdutil.UsageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usage), errors.IsInvalidCursor(err):
		return ExitUsage
	case errors.IsTransport(err):
		return ExitTransport
	case errors.IsEmptyResult(err):
		return ExitEmptyResult
	case errors.IsMissingTemplateResource(err):
		return ExitMissingTemplate
	default:
		return ExitError
	}
}

// Report writes err and any hints to w and returns the exit code for err.
func Report(w io.Writer, err error) int {
	code := ExitCode(err)
	if code == ExitOK {
		return code
	}
	if code != ExitEmptyResult {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	hints.Write(w, hints.ForError(err))
	return code
}

// ExitOnError reports err on stderr and exits with its exit code.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		os.Exit(Report(os.Stderr, err))
	}
}
