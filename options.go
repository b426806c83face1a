package ordsync

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/ordsync/internal/sources/codesystems"
	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/logging"
)

// Option is a function that configures a Syncer.
type Option func(*RunConfig) error

// RunConfig is the resolved, immutable configuration of a Syncer.
type RunConfig struct {
	// BaseURI is the sync endpoint; taxonomy endpoints are derived from it.
	BaseURI string `json:"base_uri" yaml:"base_uri"`

	// OutputDir receives generated documents.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// OutputPath, when set, replaces the generated document name.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// Workers bounds concurrent record resolution. 1 resolves sequentially.
	Workers int `json:"workers" yaml:"workers"`

	// RateLimit in requests per second. Zero means unlimited.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `json:"rate_burst" yaml:"rate_burst"`

	HTTPTimeout time.Duration `json:"http_timeout" yaml:"http_timeout"`
	UserAgent   string        `json:"user_agent" yaml:"user_agent"`

	// TemplateFile overrides the embedded manifest template.
	TemplateFile string `json:"template,omitempty" yaml:"template,omitempty"`

	clock      func() time.Time
	logger     *zerolog.Logger
	progress   io.Writer
	httpClient *http.Client
	fs         afero.Fs
}

func defaultConfig() RunConfig {
	return RunConfig{
		BaseURI:     constants.DefaultSyncURI,
		OutputDir:   constants.DefaultOutputDir,
		Workers:     constants.DefaultWorkers,
		RateBurst:   constants.DefaultRateBurst,
		HTTPTimeout: constants.DefaultHTTPTimeout,
		UserAgent:   constants.DefaultUserAgent,
		clock:       time.Now,
		fs:          afero.NewOsFs(),
	}
}

func (c *RunConfig) validate() error {
	if _, err := codesystems.BaseURI(c.BaseURI); err != nil {
		return err
	}
	if c.Workers < 1 || c.Workers > constants.MaxWorkers {
		return errors.NewValidationError("workers", c.Workers, "must be between 1 and 32")
	}
	if c.RateLimit < 0 {
		return errors.NewValidationError("rate_limit", c.RateLimit, "must not be negative")
	}
	return nil
}

// withLogger attaches the configured logger to ctx, if one was given.
func (c *RunConfig) withLogger(ctx context.Context) context.Context {
	if c.logger == nil {
		return ctx
	}
	return logging.WithLogger(ctx, c.logger)
}

// WithBaseURI configures the sync endpoint.
func WithBaseURI(uri string) Option {
	return func(c *RunConfig) error {
		if uri == "" {
			return errors.NewConfigError("base_uri", "must not be empty", nil)
		}
		c.BaseURI = uri
		return nil
	}
}

// WithOutputDir configures the directory generated documents are written to.
func WithOutputDir(dir string) Option {
	return func(c *RunConfig) error {
		if dir == "" {
			dir = constants.DefaultOutputDir
		}
		c.OutputDir = dir
		return nil
	}
}

// WithOutputPath writes the document to path instead of a generated name.
func WithOutputPath(path string) Option {
	return func(c *RunConfig) error {
		c.OutputPath = path
		return nil
	}
}

// WithWorkers configures how many records are resolved concurrently.
// Records are always written in feed order.
func WithWorkers(n int) Option {
	return func(c *RunConfig) error {
		c.Workers = n
		return nil
	}
}

// WithRateLimit limits requests per second with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *RunConfig) error {
		c.RateLimit = perSecond
		if burst > 0 {
			c.RateBurst = burst
		}
		return nil
	}
}

// WithRateBurst sets the burst of the rate limit, leaving the rate unchanged.
func WithRateBurst(burst int) Option {
	return func(c *RunConfig) error {
		if burst < 1 {
			return errors.NewValidationError("rate_burst", burst, "must be at least 1")
		}
		c.RateBurst = burst
		return nil
	}
}

// WithHTTPTimeout configures the timeout of each request.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *RunConfig) error {
		if d <= 0 {
			return errors.NewValidationError("http_timeout", d, "must be positive")
		}
		c.HTTPTimeout = d
		return nil
	}
}

// WithTemplateFile replaces the embedded manifest template with path.
func WithTemplateFile(path string) Option {
	return func(c *RunConfig) error {
		c.TemplateFile = path
		return nil
	}
}

// WithClock configures the time source used for manifests and file names.
func WithClock(now func() time.Time) Option {
	return func(c *RunConfig) error {
		if now != nil {
			c.clock = now
		}
		return nil
	}
}

// WithLogger configures the logger every run logs through.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *RunConfig) error {
		c.logger = logger
		return nil
	}
}

// WithProgress prints percentage milestones to w while records are written.
func WithProgress(w io.Writer) Option {
	return func(c *RunConfig) error {
		c.progress = w
		return nil
	}
}

// WithHTTPClient replaces the HTTP client. Its timeout is left untouched.
func WithHTTPClient(client *http.Client) Option {
	return func(c *RunConfig) error {
		c.httpClient = client
		return nil
	}
}

// WithUserAgent configures the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *RunConfig) error {
		if ua != "" {
			c.UserAgent = ua
		}
		return nil
	}
}

// WithFilesystem configures the filesystem templates are read from and
// documents are written to.
func WithFilesystem(fs afero.Fs) Option {
	return func(c *RunConfig) error {
		if fs == nil {
			return errors.NewConfigError("filesystem", "must not be nil", nil)
		}
		c.fs = fs
		return nil
	}
}
