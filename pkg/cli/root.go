package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

const (
	// Version is the current version of canvasundo
	Version = "1.0.0"
)

// app carries the configuration and logger shared by all subcommands. It is
// filled in before any subcommand runs.
type app struct {
	configDir string
	debug     bool

	config *Config
	logger *slog.Logger
}

// NewRootCommand creates the root cobra command for canvasundo
func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "canvasundo",
		Short: "canvasundo - Undo/redo for diagram editing sessions",
		Long: `canvasundo records every change made to a diagram's scene graph and
replays it for undo and redo. It runs scripted editing sessions against
diagrams, validates diagram files and keeps diagrams in a local store.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(a.configDir)
			if err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			if a.debug {
				config.Debug = true
			}
			a.config = config

			level := slog.LevelWarn
			if config.Debug {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			return nil
		},
	}

	// Persistent flags (available to all subcommands)
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "Configuration directory (default: ~/.canvasundo)")

	cmd.AddCommand(newRunCommand(a))
	cmd.AddCommand(newValidateCommand(a))
	cmd.AddCommand(newQueryCommand(a))
	cmd.AddCommand(newDiagramsCommand(a))

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
