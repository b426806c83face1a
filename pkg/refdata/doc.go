// Package refdata defines the data model shared by every stage of an
// organisation reference-data sync.
//
// A run queries the change feed for a SyncResult, resolves each locator into
// a Record, loads the three code-system taxonomies into CodeSystem values and
// writes them, together with a Manifest, into one output document.
//
// The package has no dependencies beyond the standard library so that sources,
// the document assembler and the CLI can share it without import cycles.
package refdata
