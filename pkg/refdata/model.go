package refdata

import "time"

// Concept is one entry of a code-system taxonomy.
type Concept struct {
	ID          string `json:"id" yaml:"id"`
	Code        string `json:"code" yaml:"code"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	IsPrimary   bool   `json:"is_primary" yaml:"is_primary"` // Only meaningful for roles
}

// CodeSystem is a named, identified taxonomy of concepts in source order.
type CodeSystem struct {
	Taxonomy Taxonomy  `json:"taxonomy" yaml:"taxonomy"`
	OID      string    `json:"oid" yaml:"oid"`
	Name     string    `json:"name" yaml:"name"`
	Concepts []Concept `json:"concepts" yaml:"concepts"`
}

// Len returns the number of concepts.
func (cs *CodeSystem) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.Concepts)
}

// Primary returns the concepts flagged as primary, in source order.
func (cs *CodeSystem) Primary() []Concept {
	if cs == nil {
		return nil
	}
	var out []Concept
	for _, c := range cs.Concepts {
		if c.IsPrimary {
			out = append(out, c)
		}
	}
	return out
}

// SyncResult is the answer of one change-feed query.
type SyncResult struct {
	// TotalCount is the record count announced by the server.
	// Nil means the server did not announce one.
	TotalCount *int `json:"total_count,omitempty" yaml:"total_count,omitempty"`

	// Locators are the record URIs in feed order.
	Locators []string `json:"locators" yaml:"locators"`
}

// Known reports whether the server announced a total count.
func (r *SyncResult) Known() bool {
	return r != nil && r.TotalCount != nil
}

// Empty reports whether the result has no records to write. An announced
// count of zero is authoritative; otherwise the locators decide.
func (r *SyncResult) Empty() bool {
	if r == nil {
		return true
	}
	if r.TotalCount != nil && *r.TotalCount == 0 {
		return true
	}
	return len(r.Locators) == 0
}

// Mismatch reports whether an announced count disagrees with the locators.
func (r *SyncResult) Mismatch() bool {
	return r.Known() && *r.TotalCount != len(r.Locators)
}

// Record is the XML of exactly one organisation, without a prolog.
type Record struct {
	Index   int    `json:"index" yaml:"index"` // Position in the feed, zero-based
	Locator string `json:"locator" yaml:"locator"`
	Content string `json:"content" yaml:"content"`
}

// Manifest holds the per-run fields of the output manifest.
type Manifest struct {
	PublicationDate      time.Time `json:"publication_date" yaml:"publication_date"`
	FileCreationDateTime time.Time `json:"file_creation_date_time" yaml:"file_creation_date_time"`
	RecordCount          int       `json:"record_count" yaml:"record_count"`
}

// NewManifest returns the manifest for a run started at now writing count records.
func NewManifest(now time.Time, count int) Manifest {
	return Manifest{
		PublicationDate:      now,
		FileCreationDateTime: now,
		RecordCount:          count,
	}
}
