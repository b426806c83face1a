// Package document assembles the output document: the manifest header, the
// primary role scope, the code system blocks and the organisation records.
package document

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/logging"
	"github.com/agentstation/ordsync/pkg/refdata"
)

// ProgressFunc observes each record written.
type ProgressFunc func(written, total int)

// Assembler writes output documents from one template.
type Assembler struct {
	template *Template
	progress ProgressFunc
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithProgress registers fn to be called after every record.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Assembler) {
		a.progress = fn
	}
}

// NewAssembler returns an assembler rendering the manifest from t.
func NewAssembler(t *Template, opts ...Option) *Assembler {
	a := &Assembler{template: t}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble streams the document to sink and returns the number of records
// written. Records are written as they arrive; the first record error stops
// assembly and is returned. A manifest announcing no records fails with
// errors.ErrEmptyResult before anything is written.
func (a *Assembler) Assemble(
	ctx context.Context,
	manifest refdata.Manifest,
	scope []refdata.Concept,
	codeSystems []*refdata.CodeSystem,
	records iter.Seq2[refdata.Record, error],
	sink io.Writer,
) (int, error) {
	if manifest.RecordCount == 0 {
		return 0, errors.ErrEmptyResult
	}

	logger := logging.FromContext(ctx)
	w := &errWriter{w: sink}

	w.printf("%s", a.template.Render(manifest))
	w.printf("\t<PrimaryRoleScope>\n")
	for _, c := range scope {
		w.printf("\t\t<PrimaryRole id=\"%s\" displayName=\"%s\" />\n", EscapeAttr(c.ID), EscapeAttr(c.DisplayName))
	}
	w.printf("\t</PrimaryRoleScope>\n")
	w.printf("\t</Manifest>\n")
	if w.err != nil {
		return 0, w.err
	}
	logger.Info().Int("primary_roles", len(scope)).Msg("Manifest written")

	w.printf("\t<CodeSystems>\n")
	for _, cs := range codeSystems {
		w.printf("\t<CodeSystem name=\"%s\" oid=\"%s\">\n", EscapeAttr(cs.Name), EscapeAttr(cs.OID))
		for _, c := range cs.Concepts {
			w.printf("\t\t<concept id=\"%s\" code=\"%s\" displayName=\"%s\" />\n",
				EscapeAttr(c.ID), EscapeAttr(c.Code), EscapeAttr(c.DisplayName))
		}
		w.printf("\t</CodeSystem>\n")
	}
	w.printf("\t</CodeSystems>\n")
	if w.err != nil {
		return 0, w.err
	}
	logger.Info().Int("code_systems", len(codeSystems)).Msg("Code systems written")

	w.printf("\t<Organisations>\n")
	written := 0
	for rec, err := range records {
		if err != nil {
			return written, err
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}
		w.printf("\t\t%s\n", rec.Content)
		if w.err != nil {
			return written, w.err
		}
		written++
		if a.progress != nil {
			a.progress(written, manifest.RecordCount)
		}
	}
	if written != manifest.RecordCount {
		return written, errors.NewValidationError("records", written,
			fmt.Sprintf("manifest announces %d records", manifest.RecordCount))
	}
	w.printf("\t</Organisations>\n")
	w.printf("</HSCOrgRefData:OrgRefData>\n")
	if w.err != nil {
		return written, w.err
	}
	logger.Info().Int("records", written).Msg("Records written")

	return written, nil
}

// errWriter remembers the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
