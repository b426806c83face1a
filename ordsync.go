// Package ordsync synchronises organisation records from the ORD reference
// data API into a single schema-compliant XML document.
//
// A sync run queries the change feed for every organisation changed since a
// cursor date, resolves each change into its full record, merges the three
// reference code systems, and commits the combined document atomically. A run
// that fails at any stage leaves no output file behind.
//
// Example usage:
//
//	syncer, err := ordsync.New(
//	    ordsync.WithOutputDir("./out"),
//	    ordsync.WithWorkers(4),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := syncer.Sync(ctx, "2019-06-12")
//	switch {
//	case errors.IsEmptyResult(err):
//	    fmt.Println("No changes")
//	case err != nil:
//	    log.Fatal(err)
//	default:
//	    fmt.Printf("Wrote %d records to %s\n", result.RecordCount, result.Path)
//	}
package ordsync

import (
	"context"

	"github.com/agentstation/ordsync/internal/sources/changefeed"
	"github.com/agentstation/ordsync/internal/sources/codesystems"
	"github.com/agentstation/ordsync/internal/sources/records"
	"github.com/agentstation/ordsync/internal/transport"
	"github.com/agentstation/ordsync/internal/txwriter"
	"github.com/agentstation/ordsync/pkg/refdata"
)

// Compile-time interface check to ensure proper implementation.
var _ Syncer = (*syncer)(nil)

// Syncer runs sync pipelines against one ORD API.
type Syncer interface {
	// Sync writes every record changed since cursor to a new document.
	Sync(ctx context.Context, cursor string) (*Result, error)

	// CodeSystems loads the three reference code systems without writing anything.
	CodeSystems(ctx context.Context) ([]*refdata.CodeSystem, error)

	// Config returns the resolved configuration.
	Config() RunConfig
}

// syncer is the internal implementation of the Syncer interface.
type syncer struct {
	cfg    RunConfig
	client *transport.Client
	feed   *changefeed.Client
	pool   *records.Pool
	writer *txwriter.Writer
}

// New creates a Syncer with the given options.
func New(opts ...Option) (Syncer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := transport.New(&transport.Config{
		Timeout:    cfg.HTTPTimeout,
		RateLimit:  cfg.RateLimit,
		RateBurst:  cfg.RateBurst,
		UserAgent:  cfg.UserAgent,
		HTTPClient: cfg.httpClient,
	})

	return &syncer{
		cfg:    cfg,
		client: client,
		feed:   changefeed.New(client),
		pool:   records.NewPool(records.NewResolver(client), cfg.Workers),
		writer: txwriter.New(cfg.fs),
	}, nil
}

// Config returns the resolved configuration.
func (s *syncer) Config() RunConfig {
	return s.cfg
}

// CodeSystems loads roles, relationships, and record classes in document order.
func (s *syncer) CodeSystems(ctx context.Context) ([]*refdata.CodeSystem, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	catalog, err := codesystems.New(s.client, s.cfg.BaseURI)
	if err != nil {
		return nil, err
	}
	return catalog.LoadAll(s.cfg.withLogger(ctx))
}
