package refdata

import (
	"slices"
	"strings"
)

// Taxonomy identifies one of the code-system endpoints of the API.
type Taxonomy string

// The three taxonomies, in the order their blocks appear in the output document.
const (
	// Roles lists organisation role concepts, some of which are primary.
	Roles Taxonomy = "roles"

	// Relationships lists relationship type concepts.
	Relationships Taxonomy = "relationships"

	// RecordClasses lists record class concepts.
	RecordClasses Taxonomy = "recordclasses"
)

// Taxonomies returns every taxonomy in document emission order.
func Taxonomies() []Taxonomy {
	return []Taxonomy{Roles, Relationships, RecordClasses}
}

// String returns the string representation of a taxonomy.
func (t Taxonomy) String() string {
	return string(t)
}

// IsValid returns true if t is one of the defined taxonomies.
func (t Taxonomy) IsValid() bool {
	return slices.Contains(Taxonomies(), t)
}

// Path returns the endpoint path segment serving the taxonomy.
func (t Taxonomy) Path() string {
	if t == Relationships {
		return "rels"
	}
	return string(t)
}

// ParseTaxonomy accepts a taxonomy name or its endpoint path, case-insensitively.
func ParseTaxonomy(s string) (Taxonomy, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range Taxonomies() {
		if s == t.String() || s == t.Path() {
			return t, true
		}
	}
	return "", false
}
