// Package sync implements the sync command.
package sync

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordsync"
	"github.com/agentstation/ordsync/internal/appcontext"
	"github.com/agentstation/ordsync/internal/cmd/cmdutil"
	"github.com/agentstation/ordsync/internal/cmd/output"
	"github.com/agentstation/ordsync/pkg/errors"
)

// Flags holds the sync command's flags. Only flags set on the command line
// override configuration.
type Flags struct {
	BaseURI    string
	OutputDir  string
	OutputFile string
	Template   string
	Workers    int
	RateLimit  float64
	RateBurst  int
	Timeout    time.Duration
}

// NewCommand creates the sync command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "sync <cursor>",
		GroupID: "core",
		Short:   "Write every organisation changed since a date to one document",
		Args:    cmdutil.Args(cobra.ExactArgs(1)),
		Long: `Sync queries the ORD change feed for every organisation changed since the
cursor date, resolves each change into its full record, and writes them in
feed order after a manifest and the role, relationship, and record class
code systems.

The cursor is a date in YYYY-MM-DD or YYYYMMDD form. The API only accepts
dates no older than 190 days.

The document is written to a temporary file and renamed into place when
complete. A failed run leaves no document behind.`,
		Example: `  ordsync sync 2019-06-12                     # Write APISyncFile_<time>.xml here
  ordsync sync 20190612 --output-dir ./out     # Choose the directory
  ordsync sync 2019-06-12 --workers 4          # Resolve records concurrently
  ordsync sync 2019-06-12 -o json              # Print the result as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.BaseURI, "base-uri", "", "sync endpoint of the ORD API")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "directory for the generated document")
	cmd.Flags().StringVar(&flags.OutputFile, "output-file", "", "write the document to this path instead of a generated name")
	cmd.Flags().StringVar(&flags.Template, "template", "", "manifest template file (default is built in)")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0, "records resolved concurrently (1 is strictly sequential)")
	cmd.Flags().Float64Var(&flags.RateLimit, "rate-limit", 0, "maximum requests per second (0 is unlimited)")
	cmd.Flags().IntVar(&flags.RateBurst, "rate-burst", 0, "request burst allowed by the rate limit")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "timeout of each request")

	return cmd
}

// Options returns syncer options for the flags set on cmd.
func (f *Flags) Options(cmd *cobra.Command) []ordsync.Option {
	changed := cmd.Flags().Changed

	var opts []ordsync.Option
	if changed("base-uri") {
		opts = append(opts, ordsync.WithBaseURI(f.BaseURI))
	}
	if changed("output-dir") {
		opts = append(opts, ordsync.WithOutputDir(f.OutputDir))
	}
	if changed("output-file") {
		opts = append(opts, ordsync.WithOutputPath(f.OutputFile))
	}
	if changed("template") {
		opts = append(opts, ordsync.WithTemplateFile(f.Template))
	}
	if changed("workers") {
		opts = append(opts, ordsync.WithWorkers(f.Workers))
	}
	switch {
	case changed("rate-limit"):
		opts = append(opts, ordsync.WithRateLimit(f.RateLimit, f.RateBurst))
	case changed("rate-burst"):
		opts = append(opts, ordsync.WithRateBurst(f.RateBurst))
	}
	if changed("timeout") {
		opts = append(opts, ordsync.WithHTTPTimeout(f.Timeout))
	}
	return opts
}

// Execute runs one sync and prints its result.
func Execute(cmd *cobra.Command, app appcontext.Interface, flags *Flags, cursor string) error {
	syncer, err := app.SyncerWithOptions(flags.Options(cmd)...)
	if err != nil {
		return cmdutil.Usage(err)
	}

	result, err := syncer.Sync(cmd.Context(), cursor)
	if errors.IsEmptyResult(err) {
		if !app.Quiet() && result != nil {
			cmd.PrintErrf("No organisations changed since %s\n", result.Cursor)
		}
		return err
	}
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return cmdutil.Usage(err)
	}
	return output.NewFormatter(format).Format(app.Stdout(), result)
}
