package ordsync

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/ordsync/internal/progress"
	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/cursor"
	"github.com/agentstation/ordsync/pkg/logging"
)

// Pipeline stages, as logged in the stage field.
const (
	StageQuery    = "query"
	StageCatalog  = "catalog"
	StageTemplate = "template"
	StageOpen     = "open"
	StageAssemble = "assemble"
	StageCommit   = "commit"
	StageRollback = "rollback"
)

// runContext is the state of a single Sync call.
type runContext struct {
	id        string
	cursor    cursor.Cursor
	startedAt time.Time
	ctx       context.Context
	progress  *progress.Reporter
}

func (s *syncer) newRun(ctx context.Context, c cursor.Cursor) *runContext {
	id := uuid.NewString()

	ctx = s.cfg.withLogger(ctx)
	ctx = logging.WithRunID(ctx, id)
	ctx = logging.WithCursor(ctx, c.String())

	return &runContext{
		id:        id,
		cursor:    c,
		startedAt: s.cfg.clock(),
		ctx:       ctx,
		progress:  progress.New(s.cfg.progress),
	}
}

// stage returns the run context tagged with stage.
func (r *runContext) stage(name string) context.Context {
	return logging.WithStage(r.ctx, name)
}

func (r *runContext) logger(stage string) *zerolog.Logger {
	return logging.FromContext(r.stage(stage))
}

// outputPath returns where the document of this run is committed.
func (r *runContext) outputPath(cfg RunConfig) string {
	if cfg.OutputPath != "" {
		return cfg.OutputPath
	}
	name := constants.OutputFilePrefix + r.startedAt.Format(constants.TimeFormatFilename) + constants.OutputFileExt
	return filepath.Join(cfg.OutputDir, name)
}

// reportProgress feeds the reporter and logs every milestone reached.
func (r *runContext) reportProgress(written, total int) {
	if pct, ok := r.progress.Report(written, total); ok {
		logging.FromContext(r.ctx).Debug().
			Int("percent", pct).
			Int("written", written).
			Int("total", total).
			Msg("Progress")
	}
}
