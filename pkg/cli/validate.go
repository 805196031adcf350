package cli

import (
	"fmt"
	"os"

	"github.com/dshills/canvasundo/pkg/scene"
	"github.com/spf13/cobra"
)

// newValidateCommand creates the validate command
func newValidateCommand(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate <diagram.yaml>",
		Short: "Validate a diagram file",
		Long: `Validate a diagram file for correctness.

This checks:
- YAML syntax and the diagram schema
- Cell kinds and unique cell IDs
- Connector endpoints reference existing cells

Examples:
  canvasundo validate checkout.yaml
  canvasundo validate checkout.yaml --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read diagram: %w", err)
			}

			doc, err := scene.ParseDocument(data)
			if err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "✗ Diagram validation failed")
				if verbose {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  Error: %v\n", err)
				}
				return err
			}

			nodes, connectors := 0, 0
			for _, cell := range doc.Cells {
				if cell.Kind == scene.KindConnector {
					connectors++
				} else {
					nodes++
				}
			}

			a.logger.Debug("diagram validated", "diagram", doc.ID, "cells", len(doc.Cells))

			out := cmd.OutOrStdout()
			name := doc.Name
			if name == "" {
				name = doc.ID
			}
			_, _ = fmt.Fprintf(out, "✓ Diagram '%s' is valid\n", name)
			_, _ = fmt.Fprintf(out, "  - Nodes: %d\n", nodes)
			_, _ = fmt.Fprintf(out, "  - Connectors: %d\n", connectors)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed validation errors")

	return cmd
}
