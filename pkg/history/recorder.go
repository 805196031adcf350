package history

import "github.com/dshills/canvasundo/pkg/scene"

// recorder turns graph notifications into Commands.
//
// It shares the engine's replay flag by pointer and drops every notification
// while the flag is set, so replayed mutations are never recorded again.
type recorder struct {
	replaying *bool
	sink      func(Command)
	recorded  int
}

var _ scene.Listener = (*recorder)(nil)

func (r *recorder) CellCreated(cell scene.Cell) {
	if *r.replaying {
		return
	}
	r.emit(newCreateCommand(cell))
}

func (r *recorder) CellDeleted(cell scene.Cell) {
	if *r.replaying {
		return
	}
	r.emit(newDeleteCommand(cell))
}

func (r *recorder) CellMutated(cell scene.Cell, changedKeys []string, previous scene.Attributes) {
	if *r.replaying {
		return
	}
	if len(changedKeys) == 0 {
		return
	}
	r.emit(newMutateCommand(cell, changedKeys, previous))
}

func (r *recorder) emit(cmd Command) {
	r.recorded++
	r.sink(cmd)
}
