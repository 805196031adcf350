package scene

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Query looks up a gjson path inside the attributes of a cell, for example
// "x" or "style.stroke.width".
func (g *Graph) Query(id, path string) (gjson.Result, error) {
	cell, ok := g.cells[id]
	if !ok {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrCellNotFound, id)
	}
	return QueryCell(*cell, path)
}

// QueryCell looks up a gjson path inside the attributes of cell
func QueryCell(cell Cell, path string) (gjson.Result, error) {
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty query path")
	}

	attrs := cell.Attributes
	if attrs == nil {
		attrs = Attributes{}
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to marshal attributes of %s: %w", cell.ID, err)
	}

	return gjson.GetBytes(data, path), nil
}
