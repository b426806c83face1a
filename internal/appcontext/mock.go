package appcontext

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordsync"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	SyncerFunc            func() (ordsync.Syncer, error)
	SyncerWithOptionsFunc func(...ordsync.Option) (ordsync.Syncer, error)
	LoggerFunc            func() *zerolog.Logger
	Format                string
	QuietMode             bool
	Out                   io.Writer
	VersionFunc           func() string
	CommitFunc            func() string
	DateFunc              func() string
	BuiltByFunc           func() string
}

// Syncer returns a syncer using the mock function or nil.
func (m *Mock) Syncer() (ordsync.Syncer, error) {
	if m.SyncerFunc != nil {
		return m.SyncerFunc()
	}
	return nil, nil
}

// SyncerWithOptions returns a syncer using the mock function, falling back
// to Syncer.
func (m *Mock) SyncerWithOptions(opts ...ordsync.Option) (ordsync.Syncer, error) {
	if m.SyncerWithOptionsFunc != nil {
		return m.SyncerWithOptionsFunc(opts...)
	}
	return m.Syncer()
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string {
	return m.Format
}

// Quiet returns QuietMode.
func (m *Mock) Quiet() bool {
	return m.QuietMode
}

// Stdout returns Out or os.Stdout.
func (m *Mock) Stdout() io.Writer {
	if m.Out != nil {
		return m.Out
	}
	return os.Stdout
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
