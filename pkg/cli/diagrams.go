package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// newDiagramsCommand creates the diagrams command
func newDiagramsCommand(a *app) *cobra.Command {
	var deleteID string

	cmd := &cobra.Command{
		Use:   "diagrams",
		Short: "List stored diagrams",
		Long: `List the diagrams kept in the configured store, or delete one.

Examples:
  canvasundo diagrams
  canvasundo diagrams --delete checkout-flow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := a.config.OpenRepository()
			if err != nil {
				return fmt.Errorf("failed to open diagram store: %w", err)
			}
			defer func() { _ = closeRepo() }()

			out := cmd.OutOrStdout()

			if deleteID != "" {
				if err := repo.Delete(deleteID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "✓ Deleted diagram %s\n", deleteID)
				return nil
			}

			summaries, err := repo.List()
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				_, _ = fmt.Fprintln(out, "No diagrams stored")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tCELLS\tUPDATED")
			for _, s := range summaries {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					s.ID, s.Name, s.Cells, s.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&deleteID, "delete", "", "Delete the diagram with this ID")

	return cmd
}
