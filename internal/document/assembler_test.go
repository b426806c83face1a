package document_test

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordsync/internal/document"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/refdata"
)

var createdAt = time.Date(2019, 6, 12, 9, 30, 5, 0, time.UTC)

func fixtureCodeSystems() []*refdata.CodeSystem {
	return []*refdata.CodeSystem{
		{
			Taxonomy: refdata.Roles,
			Name:     "OrganisationRole",
			OID:      "2.16.840.1.113883.2.1.3.2.4.17.507",
			Concepts: []refdata.Concept{
				{ID: "RO197", Code: "197", DisplayName: "NHS TRUST", IsPrimary: true},
				{ID: "RO31", Code: "31", DisplayName: `PPA "EPACT" <SYSTEM>`},
				{ID: "RO177", Code: "177", DisplayName: "ST JOHN'S & PARTNERS", IsPrimary: true},
			},
		},
		{
			Taxonomy: refdata.Relationships,
			Name:     "OrganisationRelationship",
			OID:      "2.16.840.1.113883.2.1.3.2.4.17.508",
			Concepts: []refdata.Concept{
				{ID: "RE4", Code: "4", DisplayName: "IS COMMISSIONED BY"},
			},
		},
		{
			Taxonomy: refdata.RecordClasses,
			Name:     "OrganisationRecordClass",
			OID:      "2.16.840.1.113883.2.1.3.2.4.17.337",
			Concepts: []refdata.Concept{
				{ID: "RC1", Code: "1", DisplayName: "HSCOrg"},
				{ID: "RC2", Code: "2", DisplayName: "HSCSite"},
			},
		},
	}
}

func fixtureRecords() []refdata.Record {
	return []refdata.Record{
		{Index: 0, Locator: "https://example.test/organisations/RR8", Content: `<Organisation orgRecordClass="RC1"><Name>LEEDS TEACHING HOSPITALS</Name><OrgId root="2.16.840.1.113883.2.1.3.2.4.18.48" assigningAuthorityName="HSCIC" extension="RR8"/></Organisation>`},
		{Index: 1, Locator: "https://example.test/organisations/V81871", Content: `<Organisation orgRecordClass="RC2"><Name>ST JOHN&apos;S SURGERY</Name><OrgId root="2.16.840.1.113883.2.1.3.2.4.18.48" assigningAuthorityName="HSCIC" extension="V81871"/></Organisation>`},
	}
}

// seq yields records then, if failAt is in range, an error in its place.
func seq(records []refdata.Record, failAt int, failure error) iter.Seq2[refdata.Record, error] {
	return func(yield func(refdata.Record, error) bool) {
		for i, rec := range records {
			if i == failAt {
				yield(refdata.Record{}, failure)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func newAssembler(t *testing.T, opts ...document.Option) *document.Assembler {
	t.Helper()
	tmpl, err := document.DefaultTemplate()
	require.NoError(t, err)
	return document.NewAssembler(tmpl, opts...)
}

func TestAssembleGolden(t *testing.T) {
	cs := fixtureCodeSystems()
	var buf bytes.Buffer

	var progress [][2]int
	a := newAssembler(t, document.WithProgress(func(written, total int) {
		progress = append(progress, [2]int{written, total})
	}))

	n, err := a.Assemble(context.Background(),
		refdata.NewManifest(createdAt, 2),
		cs[0].Primary(),
		cs,
		seq(fixtureRecords(), -1, nil),
		&buf,
	)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "sync_document", buf.Bytes())
}

func TestAssembleEmptyResultWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	n, err := newAssembler(t).Assemble(context.Background(),
		refdata.NewManifest(createdAt, 0), nil, fixtureCodeSystems(), seq(nil, -1, nil), &buf)

	require.Error(t, err)
	assert.True(t, errors.IsEmptyResult(err))
	assert.Zero(t, n)
	assert.Zero(t, buf.Len())
}

func TestAssembleStopsAtRecordError(t *testing.T) {
	boom := errors.NewStatusError("resolve", "https://example.test/organisations/V81871", 503, "503 Service Unavailable")
	var buf bytes.Buffer

	n, err := newAssembler(t).Assemble(context.Background(),
		refdata.NewManifest(createdAt, 2), nil, fixtureCodeSystems(), seq(fixtureRecords(), 1, boom), &buf)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "LEEDS TEACHING HOSPITALS")
	assert.NotContains(t, buf.String(), "V81871")
	assert.NotContains(t, buf.String(), "</Organisations>")
}

func TestAssembleRejectsShortRecordStream(t *testing.T) {
	var buf bytes.Buffer
	n, err := newAssembler(t).Assemble(context.Background(),
		refdata.NewManifest(createdAt, 3), nil, fixtureCodeSystems(), seq(fixtureRecords(), -1, nil), &buf)

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, 2, n)
}

type failingWriter struct{ after int }

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, io.ErrShortWrite
	}
	f.after--
	return len(p), nil
}

func TestAssembleSinkError(t *testing.T) {
	_, err := newAssembler(t).Assemble(context.Background(),
		refdata.NewManifest(createdAt, 2), nil, fixtureCodeSystems(), seq(fixtureRecords(), -1, nil), &failingWriter{after: 3})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

// TestAssembleOutputParses checks the document is well formed and that
// attribute values read back to the original display names.
func TestAssembleOutputParses(t *testing.T) {
	cs := fixtureCodeSystems()
	var buf bytes.Buffer
	_, err := newAssembler(t).Assemble(context.Background(),
		refdata.NewManifest(createdAt, 2), cs[0].Primary(), cs, seq(fixtureRecords(), -1, nil), &buf)
	require.NoError(t, err)

	names := map[string]string{}
	primary := map[string]string{}
	var recordCount string
	organisations := 0

	dec := xml.NewDecoder(&buf)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		attrs := map[string]string{}
		for _, a := range start.Attr {
			attrs[a.Name.Local] = a.Value
		}
		switch start.Name.Local {
		case "concept":
			names[attrs["id"]] = attrs["displayName"]
		case "PrimaryRole":
			primary[attrs["id"]] = attrs["displayName"]
		case "RecordCount":
			recordCount = attrs["value"]
		case "Organisation":
			organisations++
		}
	}

	assert.Equal(t, "2", recordCount)
	assert.Equal(t, 2, organisations)
	for _, system := range cs {
		for _, c := range system.Concepts {
			assert.Equal(t, c.DisplayName, names[c.ID], c.ID)
		}
	}
	assert.Equal(t, map[string]string{
		"RO197": "NHS TRUST",
		"RO177": "ST JOHN'S & PARTNERS",
	}, primary)
}

func TestEscapeAttr(t *testing.T) {
	assert.Equal(t, "a &amp; b &lt;c&gt; &quot;d&quot; &apos;e&apos;", document.EscapeAttr(`a & b <c> "d" 'e'`))
	assert.Equal(t, "&amp;amp;", document.EscapeAttr("&amp;"))
	assert.Equal(t, "plain", document.EscapeAttr("plain"))
}

func TestAssembleHeaderHasSinglePrologue(t *testing.T) {
	var buf bytes.Buffer
	_, err := newAssembler(t).Assemble(context.Background(),
		refdata.NewManifest(createdAt, 2), nil, fixtureCodeSystems(), seq(fixtureRecords(), -1, nil), &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "<?xml"))
	assert.True(t, strings.HasPrefix(buf.String(), `<?xml version="1.0" encoding="utf-8"?>`))
	assert.True(t, strings.HasSuffix(buf.String(), "</HSCOrgRefData:OrgRefData>\n"))
}
