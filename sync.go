package ordsync

import (
	"context"

	"github.com/agentstation/ordsync/internal/document"
	"github.com/agentstation/ordsync/internal/sources/codesystems"
	"github.com/agentstation/ordsync/pkg/cursor"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/logging"
	"github.com/agentstation/ordsync/pkg/refdata"
)

// Sync runs the fetch-resolve-assemble-commit pipeline for rawCursor.
//
// An invalid cursor fails before any request. When the feed reports no
// changes, Sync returns a Result without a path together with
// errors.ErrEmptyResult and creates no file. Any later failure rolls the
// output back so that no partial document remains.
func (s *syncer) Sync(ctx context.Context, rawCursor string) (*Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Validate the cursor before any side effect
	cur, err := cursor.Parse(rawCursor)
	if err != nil {
		logging.FromContext(s.cfg.withLogger(ctx)).Error().Err(err).Msg("Invalid cursor")
		return nil, err
	}

	run := s.newRun(ctx, cur)
	result := &Result{
		RunID:     run.id,
		Cursor:    cur.String(),
		StartedAt: run.startedAt,
	}
	defer func() {
		result.Duration = s.cfg.clock().Sub(run.startedAt)
	}()

	// Step 2: Query the change feed
	feed, err := s.feed.Query(run.stage(StageQuery), s.cfg.BaseURI, rawCursor)
	if err != nil {
		run.logger(StageQuery).Error().Err(err).Msg("Change feed query failed")
		return nil, err
	}
	result.TotalCount = feed.TotalCount

	logger := run.logger(StageQuery)
	if feed.Empty() {
		logger.Info().Msg("No changes since cursor")
		return result, errors.ErrEmptyResult
	}
	logger.Info().Int("records", len(feed.Locators)).Msg("Record count received")

	// Step 3: Load the code systems; roles serve both the scope and its block
	codeSystems, scope, err := s.loadCatalog(run)
	if err != nil {
		run.logger(StageCatalog).Error().Err(err).Msg("Code systems could not be loaded")
		return nil, err
	}

	// Step 4: Load the manifest template
	tmpl, err := document.LoadTemplate(s.cfg.fs, s.cfg.TemplateFile)
	if err != nil {
		run.logger(StageTemplate).Error().Err(err).Msg("Manifest template unavailable")
		return nil, err
	}

	// Step 5: Open the output transaction
	path := run.outputPath(s.cfg)
	handle, err := s.writer.Open(run.stage(StageOpen), path)
	if err != nil {
		run.logger(StageOpen).Error().Err(err).Msg("Output could not be opened")
		return nil, err
	}

	// Step 6: Stream manifest, code systems, and records into the output
	manifest := refdata.NewManifest(run.startedAt, len(feed.Locators))
	assembler := document.NewAssembler(tmpl, document.WithProgress(run.reportProgress))

	assembleCtx, cancel := context.WithCancel(run.stage(StageAssemble))
	written, err := assembler.Assemble(
		assembleCtx,
		manifest,
		scope,
		codeSystems,
		s.pool.Resolve(assembleCtx, feed.Locators),
		handle,
	)
	cancel()
	if err != nil {
		run.logger(StageAssemble).Error().Err(err).Int("written", written).Msg("Assembly failed")
		if rbErr := s.writer.Rollback(handle, err.Error()); rbErr != nil {
			run.logger(StageRollback).Error().Err(rbErr).Msg("Rollback failed")
		}
		return nil, err
	}

	// Step 7: Commit
	if err := s.writer.Commit(handle); err != nil {
		run.logger(StageCommit).Error().Err(err).Msg("Commit failed")
		return nil, err
	}

	result.Path = path
	result.RecordCount = written
	run.logger(StageCommit).Info().
		Str("path", path).
		Int("records", written).
		Msg("Sync completed successfully")

	return result, nil
}

// loadCatalog fetches every code system and derives the primary role scope.
func (s *syncer) loadCatalog(run *runContext) ([]*refdata.CodeSystem, []refdata.Concept, error) {
	ctx := run.stage(StageCatalog)

	catalog, err := codesystems.New(s.client, s.cfg.BaseURI)
	if err != nil {
		return nil, nil, err
	}
	codeSystems, err := catalog.LoadAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	scope, err := catalog.PrimaryRoleScope(ctx)
	if err != nil {
		return nil, nil, err
	}

	logging.FromContext(ctx).Info().
		Int("code_systems", len(codeSystems)).
		Int("primary_roles", len(scope)).
		Msg("Catalog loaded")
	return codeSystems, scope, nil
}
