package cli

import (
	"fmt"

	"github.com/dshills/canvasundo/pkg/scene"
	"github.com/spf13/cobra"
)

// newQueryCommand creates the query command
func newQueryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <diagram-id> <cell-id> <path>",
		Short: "Read an attribute of a stored diagram",
		Long: `Read an attribute of a cell in a stored diagram.

The path uses gjson syntax against the cell's attributes, so nested values
can be reached with dots.

Examples:
  canvasundo query checkout-flow n1 x
  canvasundo query checkout-flow n1 style.fill`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			diagramID, cellID, path := args[0], args[1], args[2]

			repo, closeRepo, err := a.config.OpenRepository()
			if err != nil {
				return fmt.Errorf("failed to open diagram store: %w", err)
			}
			defer func() { _ = closeRepo() }()

			doc, err := repo.Load(diagramID)
			if err != nil {
				return err
			}

			g := scene.NewGraph()
			if err := g.Load(doc); err != nil {
				return err
			}

			result, err := g.Query(cellID, path)
			if err != nil {
				return err
			}
			if !result.Exists() {
				return fmt.Errorf("no value at %s in cell %s", path, cellID)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Raw)
			return nil
		},
	}

	return cmd
}
