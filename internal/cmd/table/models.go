// Package table converts reference data into rows for tabular CLI output.
package table

import (
	"strconv"

	"github.com/agentstation/ordsync/pkg/refdata"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// ConceptsToTableData converts concepts to table format.
func ConceptsToTableData(concepts []refdata.Concept) Data {
	rows := make([][]string, 0, len(concepts))
	for _, c := range concepts {
		rows = append(rows, []string{c.ID, c.Code, c.DisplayName, yesNo(c.IsPrimary)})
	}
	return Data{
		Headers: []string{"ID", "Code", "Display Name", "Primary"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft,   // ID
			AlignRight,  // CODE
			AlignLeft,   // DISPLAY NAME
			AlignCenter, // PRIMARY
		},
	}
}

// CodeSystemsToTableData summarises code systems, one row each.
func CodeSystemsToTableData(systems []*refdata.CodeSystem) Data {
	rows := make([][]string, 0, len(systems))
	for _, cs := range systems {
		rows = append(rows, []string{
			cs.Taxonomy.String(),
			cs.Name,
			cs.OID,
			strconv.Itoa(cs.Len()),
			strconv.Itoa(len(cs.Primary())),
		})
	}
	return Data{
		Headers: []string{"Taxonomy", "Name", "OID", "Concepts", "Primary"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft,
			AlignLeft,
			AlignLeft,
			AlignRight,
			AlignRight,
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
