package scene

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a diagram
type Document struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Cells []Cell `json:"cells" yaml:"cells"`
}

// ParseDocument validates YAML bytes against the diagram schema and decodes
// them into a Document. Documents without an ID get a fresh one.
func ParseDocument(data []byte) (*Document, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse diagram YAML: %w", err)
	}

	if doc.ID == "" {
		doc.ID = NewDiagramID()
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Marshal serializes the document to YAML
func (d *Document) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diagram to YAML: %w", err)
	}
	return data, nil
}

// Validate checks cell invariants across the whole document: every cell is
// valid, IDs are unique and connector endpoints reference existing cells.
func (d *Document) Validate() error {
	if d == nil {
		return errors.New("document is nil")
	}

	seen := make(map[string]bool, len(d.Cells))
	for _, cell := range d.Cells {
		if err := cell.Validate(); err != nil {
			return err
		}
		if seen[cell.ID] {
			return fmt.Errorf("%w: duplicate cell ID %s", ErrInvalidCell, cell.ID)
		}
		seen[cell.ID] = true
	}

	for _, cell := range d.Cells {
		if cell.Kind != KindConnector {
			continue
		}
		source, target := cell.Endpoints()
		for _, endpoint := range []string{source, target} {
			if endpoint != "" && !seen[endpoint] {
				return fmt.Errorf("%w: connector %s references unknown cell %s", ErrInvalidCell, cell.ID, endpoint)
			}
		}
	}

	return nil
}
