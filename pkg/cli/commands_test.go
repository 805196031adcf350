package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDiagram = `
id: checkout
name: Checkout flow
cells:
  - id: n1
    kind: node
    attributes: {x: 0, y: 0, label: Start}
  - id: n2
    kind: node
    attributes: {x: 200, y: 0}
  - id: e1
    kind: connector
    attributes: {source: n1, target: n2}
`

const testScript = `
name: drag
steps:
  - op: begin
    label: Drag n1
  - op: set
    id: n1
    exprs: {x: "x + 50"}
  - op: set
    id: n1
    exprs: {x: "x + 50"}
  - op: end
  - op: set
    id: n2
    attrs: {label: Pay}
  - op: undo
`

// executeCommand runs the root command with args against a fresh config
// directory and returns stdout and stderr.
func executeCommand(t *testing.T, configDir string, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)
	t.Setenv("CANVASUNDO_CONFIG_DIR", configDir)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateCommand(t *testing.T) {
	path := writeFile(t, "diagram.yaml", testDiagram)

	out, _, err := executeCommand(t, t.TempDir(), "validate", path)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Diagram 'Checkout flow' is valid")
	assert.Contains(t, out, "Nodes: 2")
	assert.Contains(t, out, "Connectors: 1")
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := writeFile(t, "diagram.yaml", `
cells:
  - id: e1
    kind: connector
    attributes: {source: a, target: b}
`)

	_, errOut, err := executeCommand(t, t.TempDir(), "validate", path, "--verbose")
	require.Error(t, err)
	assert.Contains(t, errOut, "✗ Diagram validation failed")
	assert.Contains(t, errOut, "Error:")
}

func TestRunCommand(t *testing.T) {
	diagram := writeFile(t, "diagram.yaml", testDiagram)
	script := writeFile(t, "drag.yaml", testScript)

	out, _, err := executeCommand(t, t.TempDir(), "run", script, "--diagram", diagram)
	require.NoError(t, err)

	assert.Contains(t, out, "x: 100")
	assert.Contains(t, out, "✓ 6 steps run")
	assert.Contains(t, out, "Undo: 1 (next: Drag n1)")
	assert.Contains(t, out, "Redo: 1 (next: Change n2 (label))")
	assert.NotContains(t, out, "label: Pay")
}

func TestRunCommand_FailingScript(t *testing.T) {
	script := writeFile(t, "bad.yaml", "steps:\n  - op: set\n    id: ghost\n    attrs: {x: 1}\n")

	_, _, err := executeCommand(t, t.TempDir(), "run", script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1 (set ghost)")
}

func TestRunCommand_ConflictingSources(t *testing.T) {
	script := writeFile(t, "drag.yaml", testScript)

	_, _, err := executeCommand(t, t.TempDir(), "run", script, "--diagram", "a.yaml", "--load", "b")
	assert.Error(t, err)
}

func TestStoreWorkflow(t *testing.T) {
	for _, store := range []string{StoreFilesystem, StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			configDir := t.TempDir()
			writeConfig(t, configDir, "store: "+store+"\n")

			diagram := writeFile(t, "diagram.yaml", testDiagram)
			script := writeFile(t, "drag.yaml", testScript)

			out, _, err := executeCommand(t, configDir, "run", script, "--diagram", diagram, "--save", "-q")
			require.NoError(t, err)
			assert.Contains(t, out, "✓ Saved diagram checkout")
			assert.NotContains(t, out, "cells:")

			out, _, err = executeCommand(t, configDir, "diagrams")
			require.NoError(t, err)
			assert.Contains(t, out, "checkout")
			assert.Contains(t, out, "Checkout flow")

			out, _, err = executeCommand(t, configDir, "query", "checkout", "n1", "x")
			require.NoError(t, err)
			assert.Equal(t, "100\n", out)

			_, _, err = executeCommand(t, configDir, "query", "checkout", "n1", "missing")
			assert.Error(t, err)

			// Starting from the stored diagram continues where the last run ended.
			out, _, err = executeCommand(t, configDir, "run", script, "--load", "checkout", "-q")
			require.NoError(t, err)
			assert.Contains(t, out, "✓ 6 steps run")

			out, _, err = executeCommand(t, configDir, "diagrams", "--delete", "checkout")
			require.NoError(t, err)
			assert.Contains(t, out, "✓ Deleted diagram checkout")

			out, _, err = executeCommand(t, configDir, "diagrams")
			require.NoError(t, err)
			assert.Contains(t, out, "No diagrams stored")
		})
	}
}

func TestDebugFlagEnablesLogging(t *testing.T) {
	diagram := writeFile(t, "diagram.yaml", testDiagram)
	script := writeFile(t, "drag.yaml", testScript)

	_, errOut, err := executeCommand(t, t.TempDir(), "run", script, "--diagram", diagram, "--debug", "-q")
	require.NoError(t, err)
	assert.Contains(t, errOut, "level=DEBUG")
}
