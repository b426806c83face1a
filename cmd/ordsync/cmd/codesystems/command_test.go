package codesystems

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordsync"
	"github.com/agentstation/ordsync/internal/appcontext"
	"github.com/agentstation/ordsync/internal/cmd/cmdutil"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/refdata"
)

type fakeSyncer struct {
	systems []*refdata.CodeSystem
	err     error
}

func (f *fakeSyncer) Sync(context.Context, string) (*ordsync.Result, error) {
	return nil, nil
}

func (f *fakeSyncer) CodeSystems(context.Context) ([]*refdata.CodeSystem, error) {
	return f.systems, f.err
}

func (f *fakeSyncer) Config() ordsync.RunConfig {
	return ordsync.RunConfig{}
}

func fixture() []*refdata.CodeSystem {
	return []*refdata.CodeSystem{
		{
			Taxonomy: refdata.Roles,
			Name:     "OrganisationRole",
			OID:      "2.16.840.1.113883.2.1.3.2.4.17.507",
			Concepts: []refdata.Concept{
				{ID: "RO197", Code: "197", DisplayName: "NHS TRUST", IsPrimary: true},
				{ID: "RO31", Code: "31", DisplayName: "PPA EPACT SYSTEM"},
				{ID: "RO177", Code: "177", DisplayName: "PRESCRIBING COST CENTRE", IsPrimary: true},
			},
		},
		{
			Taxonomy: refdata.Relationships,
			Name:     "OrganisationRelationship",
			OID:      "2.16.840.1.113883.2.1.3.2.4.17.508",
			Concepts: []refdata.Concept{{ID: "RE4", Code: "4", DisplayName: "IS COMMISSIONED BY"}},
		},
		{
			Taxonomy: refdata.RecordClasses,
			Name:     "OrganisationRecordClass",
			OID:      "2.16.840.1.113883.2.1.3.2.4.17.503",
			Concepts: []refdata.Concept{{ID: "RC1", Code: "1", DisplayName: "HSCOrg"}},
		},
	}
}

func run(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	app := &appcontext.Mock{
		Format: format,
		Out:    &stdout,
		SyncerFunc: func() (ordsync.Syncer, error) {
			return &fakeSyncer{systems: fixture()}, nil
		},
	}
	cmd := NewCommand(app)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestSummary(t *testing.T) {
	out, err := run(t, "table")
	require.NoError(t, err)
	for _, want := range []string{"roles", "relationships", "recordclasses", "OrganisationRole", "2.16.840.1.113883.2.1.3.2.4.17.503"} {
		assert.Contains(t, out, want)
	}
}

func TestConceptsJSON(t *testing.T) {
	out, err := run(t, "json", "rels")
	require.NoError(t, err)

	var got []refdata.Concept
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []refdata.Concept{{ID: "RE4", Code: "4", DisplayName: "IS COMMISSIONED BY"}}, got)
}

func TestPrimaryScope(t *testing.T) {
	out, err := run(t, "json", "--primary")
	require.NoError(t, err)

	var got []refdata.Concept
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "RO197", got[0].ID)
	assert.Equal(t, "RO177", got[1].ID)
}

func TestMarkdown(t *testing.T) {
	out, err := run(t, "markdown", "roles")
	require.NoError(t, err)
	assert.Contains(t, out, "|")
	assert.Contains(t, out, "NHS TRUST")
	assert.Contains(t, out, "PPA EPACT SYSTEM")
}

func TestYAML(t *testing.T) {
	out, err := run(t, "yaml", "recordclasses")
	require.NoError(t, err)
	assert.Contains(t, out, "id: RC1")
	assert.Contains(t, out, "display_name: HSCOrg")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []string
	}{
		{name: "unknown taxonomy", args: []string{"practices"}},
		{name: "primary outside roles", args: []string{"relationships", "--primary"}},
		{name: "bad format", format: "xml", args: []string{"roles"}},
		{name: "too many args", args: []string{"roles", "rels"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.format, tt.args...)
			var usage *cmdutil.UsageError
			assert.True(t, errors.As(err, &usage), "got %v", err)
		})
	}
}

func TestFetchError(t *testing.T) {
	failure := errors.NewStatusError("taxonomy", "https://example.test/roles", 503, "503 Service Unavailable")
	app := &appcontext.Mock{
		Out: &bytes.Buffer{},
		SyncerFunc: func() (ordsync.Syncer, error) {
			return &fakeSyncer{err: failure}, nil
		},
	}
	cmd := NewCommand(app)
	cmd.SetArgs([]string{"roles"})
	err := cmd.ExecuteContext(context.Background())
	assert.True(t, errors.IsTransport(err))
}
