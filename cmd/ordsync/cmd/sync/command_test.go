package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordsync"
	"github.com/agentstation/ordsync/internal/appcontext"
	"github.com/agentstation/ordsync/internal/cmd/cmdutil"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/refdata"
)

type fakeSyncer struct {
	cfg     ordsync.RunConfig
	result  *ordsync.Result
	err     error
	cursors []string
}

func (f *fakeSyncer) Sync(_ context.Context, cursor string) (*ordsync.Result, error) {
	f.cursors = append(f.cursors, cursor)
	return f.result, f.err
}

func (f *fakeSyncer) CodeSystems(context.Context) ([]*refdata.CodeSystem, error) {
	return nil, nil
}

func (f *fakeSyncer) Config() ordsync.RunConfig {
	return f.cfg
}

func run(t *testing.T, app appcontext.Interface, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stderr.String(), err
}

func TestSyncPrintsResult(t *testing.T) {
	total := 2
	fake := &fakeSyncer{result: &ordsync.Result{
		RunID:       "run-1",
		Cursor:      "2019-06-12",
		Path:        "out/APISyncFile_2019-06-12T093005.xml",
		RecordCount: 2,
		TotalCount:  &total,
		StartedAt:   time.Date(2019, 6, 12, 9, 30, 5, 0, time.UTC),
		Duration:    1500 * time.Millisecond,
	}}
	var stdout bytes.Buffer
	app := &appcontext.Mock{
		Format: "json",
		Out:    &stdout,
		SyncerWithOptionsFunc: func(...ordsync.Option) (ordsync.Syncer, error) {
			return fake, nil
		},
	}

	_, err := run(t, app, "20190612")
	require.NoError(t, err)
	assert.Equal(t, []string{"20190612"}, fake.cursors)

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "out/APISyncFile_2019-06-12T093005.xml", got["path"])
	assert.EqualValues(t, 2, got["record_count"])
	assert.EqualValues(t, 2, got["total_count"])
}

func TestSyncTableOutput(t *testing.T) {
	fake := &fakeSyncer{result: &ordsync.Result{RunID: "run-1", Cursor: "2019-06-12", Path: "doc.xml", RecordCount: 1}}
	var stdout bytes.Buffer
	app := &appcontext.Mock{
		Format: "table",
		Out:    &stdout,
		SyncerWithOptionsFunc: func(...ordsync.Option) (ordsync.Syncer, error) {
			return fake, nil
		},
	}

	_, err := run(t, app, "2019-06-12")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "doc.xml")
	assert.Contains(t, stdout.String(), "Record Count")
}

func TestSyncEmptyResult(t *testing.T) {
	fake := &fakeSyncer{
		result: &ordsync.Result{Cursor: "2019-06-12"},
		err:    errors.ErrEmptyResult,
	}
	var stdout bytes.Buffer
	app := &appcontext.Mock{
		Out: &stdout,
		SyncerWithOptionsFunc: func(...ordsync.Option) (ordsync.Syncer, error) {
			return fake, nil
		},
	}

	stderr, err := run(t, app, "2019-06-12")
	assert.True(t, errors.IsEmptyResult(err))
	assert.Equal(t, "No organisations changed since 2019-06-12\n", stderr)
	assert.Empty(t, stdout.String())
}

func TestSyncQuietEmptyResult(t *testing.T) {
	fake := &fakeSyncer{result: &ordsync.Result{Cursor: "2019-06-12"}, err: errors.ErrEmptyResult}
	app := &appcontext.Mock{
		QuietMode: true,
		SyncerWithOptionsFunc: func(...ordsync.Option) (ordsync.Syncer, error) {
			return fake, nil
		},
	}

	stderr, err := run(t, app, "2019-06-12")
	assert.True(t, errors.IsEmptyResult(err))
	assert.Empty(t, stderr)
}

func TestSyncFlagsBecomeOptions(t *testing.T) {
	var cfg ordsync.RunConfig
	app := &appcontext.Mock{
		Out: &bytes.Buffer{},
		SyncerWithOptionsFunc: func(opts ...ordsync.Option) (ordsync.Syncer, error) {
			s, err := ordsync.New(opts...)
			if err != nil {
				return nil, err
			}
			cfg = s.Config()
			return &fakeSyncer{result: &ordsync.Result{}}, nil
		},
	}

	_, err := run(t, app, "2019-06-12",
		"--workers", "4",
		"--output-dir", "/data/ord",
		"--output-file", "/data/ord/latest.xml",
		"--template", "/etc/ordsync/manifest.tmpl",
		"--rate-limit", "2.5",
		"--rate-burst", "3",
		"--timeout", "45s",
		"--base-uri", "https://ord.example.test/ORD/2-0-0/sync",
	)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "/data/ord", cfg.OutputDir)
	assert.Equal(t, "/data/ord/latest.xml", cfg.OutputPath)
	assert.Equal(t, "/etc/ordsync/manifest.tmpl", cfg.TemplateFile)
	assert.InDelta(t, 2.5, cfg.RateLimit, 1e-9)
	assert.Equal(t, 3, cfg.RateBurst)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "https://ord.example.test/ORD/2-0-0/sync", cfg.BaseURI)
}

func TestSyncRateBurstKeepsConfiguredRate(t *testing.T) {
	var cfg ordsync.RunConfig
	app := &appcontext.Mock{
		Out: &bytes.Buffer{},
		SyncerWithOptionsFunc: func(opts ...ordsync.Option) (ordsync.Syncer, error) {
			base := []ordsync.Option{ordsync.WithRateLimit(2.5, 1)}
			s, err := ordsync.New(append(base, opts...)...)
			if err != nil {
				return nil, err
			}
			cfg = s.Config()
			return &fakeSyncer{result: &ordsync.Result{}}, nil
		},
	}

	_, err := run(t, app, "2019-06-12", "--rate-burst", "5")
	require.NoError(t, err)

	assert.InDelta(t, 2.5, cfg.RateLimit, 1e-9)
	assert.Equal(t, 5, cfg.RateBurst)
}

func TestSyncUnsetFlagsAddNoOptions(t *testing.T) {
	cmd := NewCommand(&appcontext.Mock{})
	flags := &Flags{}
	assert.Empty(t, flags.Options(cmd))
}

func TestSyncInvalidOptionsAreUsageErrors(t *testing.T) {
	app := &appcontext.Mock{
		SyncerWithOptionsFunc: func(opts ...ordsync.Option) (ordsync.Syncer, error) {
			return ordsync.New(opts...)
		},
	}

	_, err := run(t, app, "2019-06-12", "--workers", "0")
	var usage *cmdutil.UsageError
	assert.True(t, errors.As(err, &usage))
}

func TestSyncRequiresOneCursor(t *testing.T) {
	for _, args := range [][]string{nil, {"2019-06-12", "2019-06-13"}} {
		_, err := run(t, &appcontext.Mock{}, args...)
		var usage *cmdutil.UsageError
		assert.True(t, errors.As(err, &usage), "args %v", args)
	}
}
