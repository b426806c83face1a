// Package changefeed queries the sync endpoint for the organisations changed
// since a cursor date.
package changefeed

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/url"
	"strconv"
	"strings"

	"github.com/agentstation/ordsync/internal/sources"
	"github.com/agentstation/ordsync/internal/transport"
	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/cursor"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/logging"
	"github.com/agentstation/ordsync/pkg/refdata"
)

// Client queries the change feed.
type Client struct {
	fetcher sources.Fetcher
}

// New returns a change feed client issuing requests through f.
func New(f sources.Fetcher) *Client {
	return &Client{fetcher: f}
}

// QueryURL returns the sync request URL for baseURI and c.
func QueryURL(baseURI string, c cursor.Cursor) (string, error) {
	u, err := url.Parse(baseURI)
	if err != nil {
		return "", errors.NewConfigError("base_uri", "invalid sync URI "+baseURI, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.NewConfigError("base_uri", "sync URI must be absolute: "+baseURI, nil)
	}
	q := u.Query()
	q.Set(constants.CursorParam, c.String())
	q.Set(constants.FormatParam, constants.FormatXML)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Query validates rawCursor and issues exactly one request to the sync
// endpoint. An invalid cursor fails before any request is made.
func (c *Client) Query(ctx context.Context, baseURI, rawCursor string) (*refdata.SyncResult, error) {
	cur, err := cursor.Parse(rawCursor)
	if err != nil {
		return nil, err
	}

	endpoint, err := QueryURL(baseURI, cur)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	logger.Info().Str("url", endpoint).Msg("Querying change feed")

	resp, err := c.fetcher.Get(ctx, sources.OpQuery, endpoint)
	if err != nil {
		return nil, err
	}

	result := &refdata.SyncResult{}
	if total, ok := parseTotal(resp.Header.Get(constants.TotalCountHeader)); ok {
		result.TotalCount = &total
	} else {
		logger.Warn().Msg("Change feed response carries no usable record count")
	}

	// A response announcing zero records may carry no body at all.
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return result, nil
	}

	result.Locators, err = ParseLocators(resp.Body)
	if err != nil {
		return nil, errors.WrapParse("xml", endpoint, err)
	}

	if result.Mismatch() {
		logger.Warn().
			Int("announced", *result.TotalCount).
			Int("locators", len(result.Locators)).
			Msg("Record count header disagrees with the response body")
	}
	return result, nil
}

func parseTotal(header string) (int, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	n, err := strconv.Atoi(header)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

type feed struct {
	Entries []struct {
		Links []string `xml:",any"`
	} `xml:",any"`
}

// ParseLocators extracts the record locators from a sync response body, in
// document order. Each entry's link elements are read regardless of name.
func ParseLocators(body []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = transport.CharsetReader

	var f feed
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}

	locators := make([]string, 0, len(f.Entries))
	for _, entry := range f.Entries {
		for _, link := range entry.Links {
			if link = strings.TrimSpace(link); link != "" {
				locators = append(locators, link)
			}
		}
	}
	return locators, nil
}
