package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/canvasundo/pkg/scene"
)

// FilesystemDiagramRepository implements DiagramRepository using filesystem storage.
// Diagrams are stored as YAML files in <baseDir>/diagrams/
type FilesystemDiagramRepository struct {
	baseDir string
}

var _ DiagramRepository = (*FilesystemDiagramRepository)(nil)

// NewFilesystemDiagramRepository creates a repository under baseDir.
// It ensures the diagrams directory exists.
func NewFilesystemDiagramRepository(baseDir string) (*FilesystemDiagramRepository, error) {
	diagramsDir := filepath.Join(baseDir, "diagrams")

	if err := os.MkdirAll(diagramsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create diagrams directory: %w", err)
	}

	return &FilesystemDiagramRepository{
		baseDir: diagramsDir,
	}, nil
}

// Save persists a diagram to the filesystem as a YAML file.
// The filename is derived from the diagram ID with .yaml extension.
func (r *FilesystemDiagramRepository) Save(doc *scene.Document) error {
	if doc == nil {
		return fmt.Errorf("cannot save nil diagram")
	}
	if err := validateID(doc.ID); err != nil {
		return err
	}

	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	// Write to file atomically using a temp file + rename
	filePath := r.diagramPath(doc.ID)
	tempPath := filePath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write diagram file: %w", err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to save diagram file: %w", err)
	}

	return nil
}

// Load retrieves a diagram from the filesystem by its ID.
func (r *FilesystemDiagramRepository) Load(id string) (*scene.Document, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.diagramPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDiagramNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read diagram file: %w", err)
	}

	doc, err := scene.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diagram %s: %w", id, err)
	}
	return doc, nil
}

// Delete removes a diagram from the filesystem.
func (r *FilesystemDiagramRepository) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	err := os.Remove(r.diagramPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrDiagramNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete diagram file: %w", err)
	}
	return nil
}

// List returns summaries of all diagrams stored in the repository.
// Files that fail to parse are skipped.
func (r *FilesystemDiagramRepository) List() ([]DiagramSummary, error) {
	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read diagrams directory: %w", err)
	}

	summaries := make([]DiagramSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".yaml")
		doc, err := r.Load(id)
		if err != nil {
			continue
		}

		summary := DiagramSummary{ID: doc.ID, Name: doc.Name, Cells: len(doc.Cells)}
		if info, err := entry.Info(); err == nil {
			summary.UpdatedAt = info.ModTime()
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

// diagramPath returns the full filesystem path for a diagram ID.
func (r *FilesystemDiagramRepository) diagramPath(id string) string {
	return filepath.Join(r.baseDir, id+".yaml")
}

// validateID rejects IDs that are empty or could escape the storage directory
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("diagram ID cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid diagram ID: %q", id)
	}
	return nil
}
