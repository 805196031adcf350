package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/canvasundo/pkg/history"
	"github.com/dshills/canvasundo/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreFilesystem = "filesystem"
	StoreSQLite     = "sqlite"
)

// Config holds the configuration for the canvasundo CLI.
type Config struct {
	ConfigDir  string `yaml:"-"`
	Debug      bool   `yaml:"debug"`
	MaxHistory int    `yaml:"max_history"`
	Store      string `yaml:"store"`
}

// DefaultConfig returns the configuration used when nothing else is set.
//
// Defaults:
//   - ConfigDir: ~/.canvasundo
//   - MaxHistory: history.DefaultMaxDepth
//   - Store: filesystem
func DefaultConfig() *Config {
	dir := ".canvasundo"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".canvasundo")
	}
	return &Config{
		ConfigDir:  dir,
		MaxHistory: history.DefaultMaxDepth,
		Store:      StoreFilesystem,
	}
}

// LoadConfig builds the configuration for configDir.
//
// Precedence (highest to lowest):
//  1. Environment variables (CANVASUNDO_*)
//  2. Config file (<config dir>/config.yaml if it exists)
//  3. Defaults (DefaultConfig())
//
// Environment variables:
//   - CANVASUNDO_CONFIG_DIR: Override the config directory
//   - CANVASUNDO_MAX_HISTORY: Override the undo depth
//   - CANVASUNDO_DEBUG: Enable debug logging (true/false)
//   - CANVASUNDO_STORE: Select the diagram store (filesystem/sqlite)
func LoadConfig(configDir string) (*Config, error) {
	config := DefaultConfig()

	if envDir := os.Getenv("CANVASUNDO_CONFIG_DIR"); envDir != "" {
		config.ConfigDir = envDir
	} else if configDir != "" {
		config.ConfigDir = configDir
	}

	data, err := os.ReadFile(filepath.Join(config.ConfigDir, "config.yaml"))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if maxStr := os.Getenv("CANVASUNDO_MAX_HISTORY"); maxStr != "" {
		// If parsing fails or value is not positive, keep the current value
		if n, err := strconv.Atoi(maxStr); err == nil && n > 0 {
			config.MaxHistory = n
		}
	}

	if debugStr := os.Getenv("CANVASUNDO_DEBUG"); debugStr != "" {
		switch strings.ToLower(strings.TrimSpace(debugStr)) {
		case "true", "1", "yes":
			config.Debug = true
		case "false", "0", "no":
			config.Debug = false
		}
	}

	if store := os.Getenv("CANVASUNDO_STORE"); store != "" {
		config.Store = strings.ToLower(strings.TrimSpace(store))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ConfigDir == "" {
		return fmt.Errorf("config directory cannot be empty")
	}
	if c.MaxHistory <= 0 {
		return fmt.Errorf("max history must be positive, got %d", c.MaxHistory)
	}
	switch c.Store {
	case StoreFilesystem, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreFilesystem, StoreSQLite)
	}
	return nil
}

// OpenRepository opens the configured diagram store. The returned close
// function releases it.
func (c *Config) OpenRepository() (storage.DiagramRepository, func() error, error) {
	switch c.Store {
	case StoreSQLite:
		repo, err := storage.NewSQLiteDiagramRepository(filepath.Join(c.ConfigDir, "diagrams.db"))
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		repo, err := storage.NewFilesystemDiagramRepository(c.ConfigDir)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil
	}
}
