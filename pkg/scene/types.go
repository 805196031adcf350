package scene

import (
	"errors"

	"github.com/google/uuid"
)

// Common scene errors
var (
	// ErrCellNotFound is returned when no cell has the requested ID
	ErrCellNotFound = errors.New("cell not found")

	// ErrCellExists is returned when inserting a cell whose ID is already taken
	ErrCellExists = errors.New("cell already exists")

	// ErrInvalidCell is returned when a cell fails structural validation
	ErrInvalidCell = errors.New("invalid cell")
)

// Kind discriminates the visual entities a scene holds
type Kind string

const (
	// KindNode is a box-like entity with position and size attributes
	KindNode Kind = "node"

	// KindConnector links two cells through its source and target attributes
	KindConnector Kind = "connector"
)

// Valid reports whether k is a known cell kind
func (k Kind) Valid() bool {
	return k == KindNode || k == KindConnector
}

// String returns the string representation of the Kind
func (k Kind) String() string {
	return string(k)
}

// Attribute keys used by connectors to reference their endpoints
const (
	AttrSource = "source"
	AttrTarget = "target"
)

// NewCellID generates a new unique cell ID
func NewCellID() string {
	return uuid.New().String()
}

// NewDiagramID generates a new unique diagram ID
func NewDiagramID() string {
	return uuid.New().String()
}
