// Command canvasundo runs scripted diagram editing sessions with undo and
// redo, validates diagram files and manages stored diagrams.
package main

import (
	"os"

	"github.com/dshills/canvasundo/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
