package logging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/ordsync/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("FromContext falls back to the default logger", func(t *testing.T) {
		assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
		//nolint:staticcheck // nil context is handled explicitly
		assert.Same(t, logging.Default(), logging.FromContext(nil))
	})

	t.Run("WithLogger stores the logger", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)

		logging.Ctx(ctx).Info().Msg("stored")
		tl.AssertContains(t, "stored")
	})

	t.Run("WithRunID tags events and is recoverable", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithRunID(ctx, "run-123")

		assert.Equal(t, "run-123", logging.RunID(ctx))
		logging.FromContext(ctx).Info().Msg("tagged")
		tl.AssertContains(t, `"run_id":"run-123"`)
	})

	t.Run("RunID is empty when unset", func(t *testing.T) {
		assert.Empty(t, logging.RunID(context.Background()))
	})

	t.Run("stage cursor and taxonomy helpers add fields", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithCursor(ctx, "2019-06-12")
		ctx = logging.WithStage(ctx, "query")
		ctx = logging.WithTaxonomy(ctx, "roles")

		logging.FromContext(ctx).Info().Msg("fields")
		assert.True(t, tl.ContainsAll(`"cursor":"2019-06-12"`, `"stage":"query"`, `"taxonomy":"roles"`))
	})

	t.Run("WithFields handles typed values", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithFields(ctx, map[string]any{
			"records": 3,
			"partial": false,
			"err":     errors.New("boom"),
		})

		logging.FromContext(ctx).Info().Msg("typed")
		assert.True(t, tl.ContainsAll(`"records":3`, `"partial":false`, `"error":"boom"`))
	})
}
