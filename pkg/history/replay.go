package history

import (
	"log/slog"

	operrors "github.com/dshills/canvasundo/pkg/errors"
)

// Undo reverts the most recent batch, applying its commands in reverse
// order, and moves it to the redo stack.
//
// With nothing to undo it returns ErrNothingToUndo and changes nothing.
// Commands whose cell no longer matches the graph are skipped and logged;
// they never abort the rest of the batch.
func (e *Engine) Undo() error {
	if err := e.checkReplay("undo"); err != nil {
		return err
	}

	b := e.stacks.popUndo()
	if b == nil {
		return ErrNothingToUndo
	}

	e.replay("undo", b, true)
	e.stacks.pushRedo(b)
	e.publish()
	return nil
}

// Redo reapplies the most recently undone batch in forward order and moves
// it back to the undo stack. Redo history beyond that batch is kept.
func (e *Engine) Redo() error {
	if err := e.checkReplay("redo"); err != nil {
		return err
	}

	b := e.stacks.popRedo()
	if b == nil {
		return ErrNothingToRedo
	}

	e.replay("redo", b, false)
	e.logEviction(e.stacks.pushUndo(b))
	e.publish()
	return nil
}

func (e *Engine) checkReplay(operation string) error {
	if e.replaying {
		e.logger.Warn("re-entrant replay rejected", slog.String("operation", operation))
		return ErrReplayInProgress
	}
	if e.depth > 0 {
		return ErrBatchOpen
	}
	return nil
}

// replay runs every command of b against the target with recording
// suppressed. It returns the number of skipped commands.
func (e *Engine) replay(operation string, b *Batch, reverse bool) int {
	e.replaying = true
	defer func() { e.replaying = false }()

	skipped := 0
	n := len(b.commands)
	for i := 0; i < n; i++ {
		var err error
		cmd := b.commands[i]
		if reverse {
			cmd = b.commands[n-1-i]
			err = cmd.revert(e.target)
		} else {
			err = cmd.apply(e.target)
		}

		if err != nil {
			skipped++
			opErr := operrors.NewOperationalErrorWithAttrs(operation, e.diagramID, cmd.CellID(), err,
				map[string]any{"op": cmd.Op().String(), "batch": b.Description()})
			e.logger.Warn("skipping stale command", slog.Any("error", opErr))
		}
	}

	e.skipped += skipped
	return skipped
}
