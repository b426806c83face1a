// Package app provides the application context and dependency management
// for the ordsync CLI. It centralizes configuration, logging, the audit
// log, and the lazily created Syncer that commands share.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordsync"
	"github.com/agentstation/ordsync/internal/appcontext"
	"github.com/agentstation/ordsync/internal/cmd/cmdutil"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/logging"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the ordsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config
	flags  *cmdutil.GlobalFlags

	// Logger and the audit log it tees into
	logger *zerolog.Logger
	audit  *logging.AuditWriter

	stdout io.Writer
	stderr io.Writer

	// Syncer instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	syncer ordsync.Syncer
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	// Apply custom options first so a supplied config skips loading
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig("")
		if err != nil {
			return nil, err
		}
		app.config = config
	}

	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Quiet reports whether progress output is suppressed.
func (a *App) Quiet() bool {
	return a.config.Quiet
}

// Stdout is where command results are written.
func (a *App) Stdout() io.Writer {
	return a.stdout
}

// Syncer returns the syncer instance, creating it lazily if needed.
func (a *App) Syncer() (ordsync.Syncer, error) {
	a.mu.RLock()
	if a.syncer != nil {
		s := a.syncer
		a.mu.RUnlock()
		return s, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.syncer != nil {
		return a.syncer, nil
	}

	s, err := ordsync.New(a.buildSyncerOptions()...)
	if err != nil {
		return nil, err
	}
	a.syncer = s
	return s, nil
}

// SyncerWithOptions returns a new syncer built from configuration and opts.
// Later options win, so commands pass their flags here.
func (a *App) SyncerWithOptions(opts ...ordsync.Option) (ordsync.Syncer, error) {
	return ordsync.New(append(a.buildSyncerOptions(), opts...)...)
}

// Shutdown releases the audit log.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.audit == nil {
		return nil
	}
	err := a.audit.Close()
	a.audit = nil
	if err != nil {
		return errors.WrapIO("close", a.config.LogFile, err)
	}
	return nil
}

// buildSyncerOptions constructs syncer options from the app configuration.
func (a *App) buildSyncerOptions() []ordsync.Option {
	opts := []ordsync.Option{
		ordsync.WithOutputDir(a.config.OutputDir),
		ordsync.WithRateLimit(a.config.RateLimit, a.config.RateBurst),
		ordsync.WithUserAgent(a.config.UserAgent),
		ordsync.WithLogger(a.logger),
	}

	if a.config.BaseURI != "" {
		opts = append(opts, ordsync.WithBaseURI(a.config.BaseURI))
	}
	if a.config.Workers > 0 {
		opts = append(opts, ordsync.WithWorkers(a.config.Workers))
	}
	if a.config.HTTPTimeout > 0 {
		opts = append(opts, ordsync.WithHTTPTimeout(a.config.HTTPTimeout))
	}
	if a.config.OutputPath != "" {
		opts = append(opts, ordsync.WithOutputPath(a.config.OutputPath))
	}
	if a.config.Template != "" {
		opts = append(opts, ordsync.WithTemplateFile(a.config.Template))
	}
	if !a.config.Quiet {
		opts = append(opts, ordsync.WithProgress(a.stderr))
	}

	return opts
}

// openAudit opens the audit log once, if one is configured.
func (a *App) openAudit() (*logging.AuditWriter, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.audit != nil || a.config.LogFile == "" {
		return a.audit, nil
	}
	audit, err := logging.OpenAudit(a.config.LogFile)
	if err != nil {
		return nil, err
	}
	a.audit = audit
	return audit, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithSyncer sets a custom syncer instance (useful for testing).
func WithSyncer(s ordsync.Syncer) Option {
	return func(a *App) error {
		a.syncer = s
		return nil
	}
}

// WithOutput redirects command results and console messages.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) error {
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
		return nil
	}
}
