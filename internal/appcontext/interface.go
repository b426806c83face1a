// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App type so they can be tested with Mock.
package appcontext

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordsync"
)

// Interface defines what commands need from the application.
type Interface interface {
	// Syncer returns the default syncer built from configuration, creating it lazily.
	Syncer() (ordsync.Syncer, error)

	// SyncerWithOptions builds a syncer from configuration plus opts.
	// Later options win, so command flags can override configuration.
	SyncerWithOptions(opts ...ordsync.Option) (ordsync.Syncer, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, markdown).
	OutputFormat() string

	// Quiet reports whether console chatter such as progress lines is suppressed.
	Quiet() bool

	// Stdout is where command results are written.
	Stdout() io.Writer

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
