// Package codesystems loads the role, relationship and record class
// taxonomies served next to the sync endpoint.
package codesystems

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/ordsync/internal/sources"
	"github.com/agentstation/ordsync/internal/transport"
	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/logging"
	"github.com/agentstation/ordsync/pkg/refdata"
)

// Catalog fetches code systems. Each taxonomy is fetched at most once per
// Catalog, so a Catalog should live no longer than one run.
type Catalog struct {
	fetcher sources.Fetcher
	baseURI string
	cache   *gocache.Cache
}

// New returns a catalog for the API serving syncURI.
func New(f sources.Fetcher, syncURI string) (*Catalog, error) {
	base, err := BaseURI(syncURI)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		fetcher: f,
		baseURI: base,
		cache:   gocache.New(gocache.NoExpiration, 0),
	}, nil
}

// BaseURI derives the API root from the sync URI by cutting the path at its
// last "sync" segment: .../ORD/2-0-0/sync becomes .../ORD/2-0-0/.
func BaseURI(syncURI string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(syncURI))
	if err != nil {
		return "", errors.NewConfigError("base_uri", "invalid sync URI "+syncURI, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.NewConfigError("base_uri", "sync URI must be absolute: "+syncURI, nil)
	}

	idx := strings.LastIndex(u.Path, constants.SyncSegment)
	if idx < 0 {
		return "", errors.NewConfigError("base_uri", "sync URI has no "+constants.SyncSegment+" segment: "+syncURI, nil)
	}
	u.Path = u.Path[:idx]
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// BaseURI returns the API root the catalog reads from.
func (c *Catalog) BaseURI() string {
	return c.baseURI
}

// URL returns the endpoint serving t.
func (c *Catalog) URL(t refdata.Taxonomy) string {
	return c.baseURI + t.Path() + "?" + constants.FormatParam + "=" + constants.FormatXML
}

// LoadTaxonomy returns the code system for t, fetching it on first use.
func (c *Catalog) LoadTaxonomy(ctx context.Context, t refdata.Taxonomy) (*refdata.CodeSystem, error) {
	if !t.IsValid() {
		return nil, errors.NewValidationError("taxonomy", t, "must be one of roles, relationships, recordclasses")
	}
	if cached, ok := c.cache.Get(string(t)); ok {
		return cached.(*refdata.CodeSystem), nil
	}

	endpoint := c.URL(t)
	logger := logging.FromContext(logging.WithTaxonomy(ctx, t.String()))
	logger.Debug().Str("url", endpoint).Msg("Fetching code system")

	resp, err := c.fetcher.Get(ctx, sources.OpTaxonomy, endpoint)
	if err != nil {
		return nil, err
	}

	cs, err := Parse(t, resp.Body)
	if err != nil {
		return nil, errors.WrapParse("xml", endpoint, err)
	}

	logger.Info().
		Str("name", cs.Name).
		Int("concepts", len(cs.Concepts)).
		Msg("Code system loaded")

	c.cache.Set(string(t), cs, gocache.DefaultExpiration)
	return cs, nil
}

// LoadAll returns every code system in document order.
func (c *Catalog) LoadAll(ctx context.Context) ([]*refdata.CodeSystem, error) {
	out := make([]*refdata.CodeSystem, 0, len(refdata.Taxonomies()))
	for _, t := range refdata.Taxonomies() {
		cs, err := c.LoadTaxonomy(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

// PrimaryRoleScope loads the roles and returns the primary ones.
func (c *Catalog) PrimaryRoleScope(ctx context.Context) ([]refdata.Concept, error) {
	roles, err := c.LoadTaxonomy(ctx, refdata.Roles)
	if err != nil {
		return nil, err
	}
	return DerivePrimaryRoleScope(roles), nil
}

// DerivePrimaryRoleScope returns the primary concepts of roles in source order.
func DerivePrimaryRoleScope(roles *refdata.CodeSystem) []refdata.Concept {
	return roles.Primary()
}

type xmlConcept struct {
	ID          string `xml:"id"`
	Code        string `xml:"code"`
	DisplayName string `xml:"displayName"`
	PrimaryRole string `xml:"primaryRole"`
}

type xmlCodeSystem struct {
	Name   string `xml:"name,attr"`
	OID    string `xml:"oid,attr"`
	Groups []struct {
		Concepts []xmlConcept `xml:",any"`
	} `xml:",any"`
}

// Parse decodes a taxonomy payload. Payloads may declare a non UTF-8
// encoding. A repeated id keeps the position of its first occurrence and the
// values of its last.
func Parse(t refdata.Taxonomy, body []byte) (*refdata.CodeSystem, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = transport.CharsetReader

	var doc xmlCodeSystem
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	cs := &refdata.CodeSystem{
		Taxonomy: t,
		Name:     strings.TrimSpace(doc.Name),
		OID:      strings.TrimSpace(doc.OID),
		Concepts: []refdata.Concept{},
	}

	position := map[string]int{}
	for _, group := range doc.Groups {
		for _, x := range group.Concepts {
			concept := refdata.Concept{
				ID:          strings.TrimSpace(x.ID),
				Code:        strings.TrimSpace(x.Code),
				DisplayName: strings.TrimSpace(x.DisplayName),
				IsPrimary:   strings.EqualFold(strings.TrimSpace(x.PrimaryRole), "true"),
			}
			if concept.ID == "" {
				continue
			}
			if i, seen := position[concept.ID]; seen {
				cs.Concepts[i] = concept
				continue
			}
			position[concept.ID] = len(cs.Concepts)
			cs.Concepts = append(cs.Concepts, concept)
		}
	}
	return cs, nil
}
