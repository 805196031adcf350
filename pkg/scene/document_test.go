package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiagram = `
id: diagram-1
name: Checkout flow
cells:
  - id: start
    kind: node
    attributes:
      x: 0
      y: 0
      label: Start
      style:
        fill: "#fff"
  - id: pay
    kind: node
    attributes:
      x: 200
      y: 0
  - id: e1
    kind: connector
    attributes:
      source: start
      target: pay
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDiagram))
	require.NoError(t, err)

	assert.Equal(t, "diagram-1", doc.ID)
	assert.Equal(t, "Checkout flow", doc.Name)
	require.Len(t, doc.Cells, 3)
	assert.Equal(t, KindConnector, doc.Cells[2].Kind)

	source, target := doc.Cells[2].Endpoints()
	assert.Equal(t, "start", source)
	assert.Equal(t, "pay", target)
	assert.Equal(t, 200, doc.Cells[1].Attributes["x"])
	assert.Equal(t, map[string]any{"fill": "#fff"}, doc.Cells[0].Attributes["style"])
}

func TestParseDocument_AssignsID(t *testing.T) {
	doc, err := ParseDocument([]byte("cells:\n  - id: a\n    kind: node\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"not yaml", "cells: [unclosed"},
		{"missing cells", "id: x\n"},
		{"missing kind", "cells:\n  - id: a\n"},
		{"unknown kind", "cells:\n  - id: a\n    kind: blob\n"},
		{"empty id", "cells:\n  - id: \"\"\n    kind: node\n"},
		{"connector without endpoints", "cells:\n  - id: e\n    kind: connector\n    attributes:\n      source: a\n"},
		{"duplicate ids", "cells:\n  - id: a\n    kind: node\n  - id: a\n    kind: node\n"},
		{"dangling connector", "cells:\n  - id: a\n    kind: node\n  - id: e\n    kind: connector\n    attributes:\n      source: a\n      target: zz\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestDocument_MarshalRoundTrip(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDiagram))
	require.NoError(t, err)

	data, err := doc.Marshal()
	require.NoError(t, err)

	again, err := ParseDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}
