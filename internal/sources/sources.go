// Package sources holds what the API-facing readers share: the fetcher they
// issue requests through and the operation names used in errors and logs.
package sources

import (
	"context"

	"github.com/agentstation/ordsync/internal/transport"
)

// Fetcher performs a GET request. *transport.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, operation, url string) (*transport.Response, error)
}

// Operation names reported in transport errors and log events.
const (
	OpQuery    = "query"
	OpResolve  = "resolve"
	OpTaxonomy = "taxonomy"
)

var _ Fetcher = (*transport.Client)(nil)
