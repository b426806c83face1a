package app

import (
	"runtime"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/agentstation/ordsync/cmd/ordsync/cmd/codesystems"
	"github.com/agentstation/ordsync/cmd/ordsync/cmd/cursor"
	synccmd "github.com/agentstation/ordsync/cmd/ordsync/cmd/sync"
	"github.com/agentstation/ordsync/internal/cmd/completion"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	syncCmd := synccmd.NewCommand(a)
	syncCmd.Annotations = map[string]string{AnnotationAudit: "true"}
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(codesystems.NewCommand(a))
	rootCmd.AddCommand(cursor.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
	rootCmd.AddCommand(completion.NewCommand(afero.NewOsFs()))
	rootCmd.AddCommand(a.CreateManCommand())
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("ordsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}

// CreateManCommand creates the man command.
func (a *App) CreateManCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate man page",
		Long:   `Generate the man page for the ordsync CLI on standard output.`,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header := &doc.GenManHeader{
				Title:   "ORDSYNC",
				Section: "1",
				Source:  "ordsync " + a.version,
				Manual:  "ordsync Manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
