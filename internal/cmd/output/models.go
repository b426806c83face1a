package output

import (
	"io"

	"github.com/agentstation/ordsync/internal/cmd/table"
	"github.com/agentstation/ordsync/pkg/refdata"
)

// FormatConcepts writes concepts in format. Tabular formats get one row
// per concept, the others the concepts themselves.
func FormatConcepts(w io.Writer, format Format, concepts []refdata.Concept) error {
	var outputData any = concepts
	if format.Tabular() {
		outputData = table.ConceptsToTableData(concepts)
	}
	return NewFormatter(format).Format(w, outputData)
}

// FormatCodeSystems writes code systems in format. Tabular formats get a
// summary row per code system.
func FormatCodeSystems(w io.Writer, format Format, systems []*refdata.CodeSystem) error {
	var outputData any = systems
	if format.Tabular() {
		outputData = table.CodeSystemsToTableData(systems)
	}
	return NewFormatter(format).Format(w, outputData)
}
