// Package cursor implements the validate-cursor command.
package cursor

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordsync/internal/appcontext"
	"github.com/agentstation/ordsync/internal/cmd/cmdutil"
	"github.com/agentstation/ordsync/pkg/cursor"
)

// NewCommand creates the validate-cursor command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-cursor <date>",
		Short: "Check a sync cursor without contacting the API",
		Args:  cmdutil.Args(cobra.ExactArgs(1)),
		Long: `Validate-cursor checks that a date is accepted as a sync cursor and prints
it in the form sent to the API. Invalid dates exit with status 2.`,
		Example: `  ordsync validate-cursor 20190612     # prints 2019-06-12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cursor.Parse(args[0])
			if err != nil {
				return err
			}
			app.Logger().Debug().Str("raw", c.Raw()).Str("cursor", c.String()).Msg("Cursor accepted")
			_, err = fmt.Fprintln(app.Stdout(), c.String())
			return err
		},
	}
}
