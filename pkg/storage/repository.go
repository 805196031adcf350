package storage

import (
	"errors"
	"time"

	"github.com/dshills/canvasundo/pkg/scene"
)

// ErrDiagramNotFound is returned when no diagram has the requested ID
var ErrDiagramNotFound = errors.New("diagram not found")

// DiagramSummary describes a stored diagram without loading its cells
type DiagramSummary struct {
	ID        string
	Name      string
	Cells     int
	UpdatedAt time.Time
}

// DiagramRepository defines the interface for diagram persistence.
// Only diagram state is stored; undo history never is.
type DiagramRepository interface {
	// Save persists a diagram, replacing any previous version
	Save(doc *scene.Document) error

	// Load retrieves a diagram by ID
	Load(id string) (*scene.Document, error)

	// Delete removes a diagram from storage
	Delete(id string) error

	// List returns summaries of all stored diagrams ordered by ID
	List() ([]DiagramSummary, error)
}
