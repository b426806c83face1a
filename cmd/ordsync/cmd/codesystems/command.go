// Package codesystems implements the codesystems command.
package codesystems

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordsync/internal/appcontext"
	"github.com/agentstation/ordsync/internal/cmd/cmdutil"
	"github.com/agentstation/ordsync/internal/cmd/output"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/refdata"
)

// NewCommand creates the codesystems command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var primary bool

	cmd := &cobra.Command{
		Use:       "codesystems [roles|relationships|recordclasses]",
		Aliases:   []string{"cs"},
		GroupID:   "core",
		Short:     "List the reference code systems",
		Args:      cmdutil.Args(cobra.MaximumNArgs(1)),
		ValidArgs: []string{string(refdata.Roles), string(refdata.Relationships), string(refdata.RecordClasses)},
		Long: `Codesystems fetches the role, relationship, and record class taxonomies
written into every sync document. Without an argument it summarises all
three; with one it lists that taxonomy's concepts.

--primary lists the primary role scope, the roles flagged as primary.`,
		Example: `  ordsync codesystems                   # Summarise all code systems
  ordsync codesystems roles -o yaml     # List every role as YAML
  ordsync codesystems --primary         # List the primary role scope`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return Execute(cmd, app, name, primary)
		},
	}

	cmd.Flags().BoolVar(&primary, "primary", false, "list only the primary role scope")

	return cmd
}

// Execute loads the code systems and prints the requested view.
func Execute(cmd *cobra.Command, app appcontext.Interface, name string, primary bool) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return cmdutil.Usage(err)
	}

	taxonomy := refdata.Taxonomy("")
	if name != "" {
		t, ok := refdata.ParseTaxonomy(name)
		if !ok {
			return cmdutil.Usage(errors.NewValidationError("taxonomy", name,
				"must be one of roles, relationships, recordclasses"))
		}
		taxonomy = t
	}
	if primary {
		if taxonomy != "" && taxonomy != refdata.Roles {
			return cmdutil.Usage(errors.NewValidationError("primary", taxonomy,
				"the primary scope is drawn from roles"))
		}
		taxonomy = refdata.Roles
	}

	syncer, err := app.Syncer()
	if err != nil {
		return err
	}
	systems, err := syncer.CodeSystems(cmd.Context())
	if err != nil {
		return err
	}

	if taxonomy == "" {
		return output.FormatCodeSystems(app.Stdout(), format, systems)
	}

	for _, cs := range systems {
		if cs.Taxonomy != taxonomy {
			continue
		}
		concepts := cs.Concepts
		if primary {
			concepts = cs.Primary()
		}
		return output.FormatConcepts(app.Stdout(), format, concepts)
	}
	return errors.NewNotFoundError("code system", fmt.Sprint(taxonomy))
}
