package cli

import (
	"fmt"
	"os"

	"github.com/dshills/canvasundo/pkg/history"
	"github.com/dshills/canvasundo/pkg/scene"
	"github.com/dshills/canvasundo/pkg/script"
	"github.com/spf13/cobra"
)

// newRunCommand creates the run command
func newRunCommand(a *app) *cobra.Command {
	var (
		diagramFile string
		diagramID   string
		save        bool
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Run a scripted editing session",
		Long: `Run a scripted editing session against a diagram.

The diagram starts empty unless --diagram (a YAML file) or --load (a stored
diagram ID) is given. Every step is recorded by the history engine, so undo
and redo steps in the script behave as they would in an editor. The final
diagram is printed as YAML followed by a history summary.

Examples:
  canvasundo run drag.yaml
  canvasundo run drag.yaml --diagram checkout.yaml --save
  canvasundo run drag.yaml --load checkout-flow`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if diagramFile != "" && diagramID != "" {
				return fmt.Errorf("--diagram and --load are mutually exclusive")
			}

			s, err := script.LoadFile(args[0])
			if err != nil {
				return err
			}

			repo, closeRepo, err := a.config.OpenRepository()
			if err != nil {
				return fmt.Errorf("failed to open diagram store: %w", err)
			}
			defer func() { _ = closeRepo() }()

			g := scene.NewGraph()
			switch {
			case diagramFile != "":
				data, err := os.ReadFile(diagramFile)
				if err != nil {
					return fmt.Errorf("failed to read diagram: %w", err)
				}
				doc, err := scene.ParseDocument(data)
				if err != nil {
					return err
				}
				if err := g.Load(doc); err != nil {
					return err
				}
			case diagramID != "":
				doc, err := repo.Load(diagramID)
				if err != nil {
					return err
				}
				if err := g.Load(doc); err != nil {
					return err
				}
			}
			if s.Name != "" && g.Name() == "" {
				g.SetName(s.Name)
			}

			engine := history.New(g,
				history.WithMaxDepth(a.config.MaxHistory),
				history.WithLogger(a.logger))
			defer engine.Close()

			result, err := script.NewRunner(g, engine, a.logger).Run(cmd.Context(), s)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !quiet {
				data, err := result.Document.Marshal()
				if err != nil {
					return err
				}
				_, _ = out.Write(data)
			}

			_, _ = fmt.Fprintf(out, "✓ %d steps run\n", result.Steps)
			_, _ = fmt.Fprintf(out, "  - Undo: %d", result.State.UndoDepth)
			if result.State.UndoLabel != "" {
				_, _ = fmt.Fprintf(out, " (next: %s)", result.State.UndoLabel)
			}
			_, _ = fmt.Fprintf(out, "\n  - Redo: %d", result.State.RedoDepth)
			if result.State.RedoLabel != "" {
				_, _ = fmt.Fprintf(out, " (next: %s)", result.State.RedoLabel)
			}
			_, _ = fmt.Fprintln(out)
			if result.Stats.Evicted > 0 {
				_, _ = fmt.Fprintf(out, "  - Evicted: %d\n", result.Stats.Evicted)
			}
			if result.Stats.Skipped > 0 {
				_, _ = fmt.Fprintf(out, "  - Skipped stale commands: %d\n", result.Stats.Skipped)
			}

			if save {
				if err := repo.Save(result.Document); err != nil {
					return fmt.Errorf("failed to save diagram: %w", err)
				}
				_, _ = fmt.Fprintf(out, "✓ Saved diagram %s\n", result.Document.ID)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&diagramFile, "diagram", "", "Diagram YAML file to start from")
	cmd.Flags().StringVar(&diagramID, "load", "", "Stored diagram ID to start from")
	cmd.Flags().BoolVar(&save, "save", false, "Save the resulting diagram to the store")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the history summary")

	return cmd
}
