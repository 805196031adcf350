package history

import "errors"

var (
	// ErrCheckpointEvicted is returned when history older than a checkpoint
	// has been evicted, so the checkpoint can no longer be reached exactly.
	ErrCheckpointEvicted = errors.New("checkpoint evicted from history")
	// ErrCheckpointInvalid is returned when the history a checkpoint was
	// taken in has since been cleared or replaced by a new branch.
	ErrCheckpointInvalid = errors.New("checkpoint no longer in history")
)

// Scope provides a convenient way to batch mutations using defer.
// Usage:
//
//	func moveSelection(e *history.Engine, g *scene.Graph) {
//	    defer e.Scope("Move selection").End()
//	    // ... multiple mutations ...
//	}
type Scope struct {
	engine *Engine
	active bool
}

// Scope begins a batch and returns a handle that ends it.
func (e *Engine) Scope(label string) *Scope {
	e.BeginBatch(label)
	return &Scope{engine: e, active: true}
}

// End ends the batch.
// Safe to call multiple times; only the first call has effect.
func (s *Scope) End() {
	if s.active {
		_ = s.engine.EndBatch()
		s.active = false
	}
}

// Transaction runs fn inside a batch. If fn returns an error and the batch is
// the outermost one, the mutations fn made are reverted and nothing is
// recorded. Nested transactions leave the rollback to the outermost one.
func (e *Engine) Transaction(label string, fn func() error) error {
	e.BeginBatch(label)

	if err := fn(); err != nil {
		if e.depth == 1 {
			_ = e.CancelBatch()
		} else {
			_ = e.EndBatch()
		}
		return err
	}

	return e.EndBatch()
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	// top is the ID of the batch on top of the undo stack, empty if none
	top      string
	clears   int
	discards int
	evicted  int
}

// Checkpoint creates a checkpoint at the current history position.
func (e *Engine) Checkpoint() Checkpoint {
	cp := Checkpoint{
		clears:   e.stacks.clears,
		discards: e.stacks.discards,
		evicted:  e.stacks.evicted,
	}
	if b := e.stacks.peekUndo(); b != nil {
		cp.top = b.id
	}
	return cp
}

// UndoTo returns the history to the checkpoint. Batches committed since the
// checkpoint are undone; batches undone since then are redone.
//
// It returns ErrCheckpointInvalid without changing anything when history has
// been cleared since the checkpoint, or when the checkpoint's batch was
// dropped from the redo stack by a new edit. If the checkpoint's batch has
// been evicted it undoes as far as possible and returns ErrCheckpointEvicted.
func (e *Engine) UndoTo(cp Checkpoint) error {
	if cp.clears != e.stacks.clears {
		return ErrCheckpointInvalid
	}

	switch {
	case cp.top == "":
		if err := e.undoAll(); err != nil {
			return err
		}
		if e.stacks.evicted > cp.evicted {
			return ErrCheckpointEvicted
		}
		return nil

	case contains(e.stacks.undo, cp.top):
		for e.stacks.peekUndo().id != cp.top {
			if err := e.Undo(); err != nil {
				return err
			}
		}
		return nil

	case contains(e.stacks.redo, cp.top):
		for {
			if err := e.Redo(); err != nil {
				return err
			}
			if e.stacks.peekUndo().id == cp.top {
				return nil
			}
		}

	case cp.discards != e.stacks.discards:
		return ErrCheckpointInvalid

	default:
		if err := e.undoAll(); err != nil {
			return err
		}
		return ErrCheckpointEvicted
	}
}

func (e *Engine) undoAll() error {
	for e.stacks.canUndo() {
		if err := e.Undo(); err != nil {
			return err
		}
	}
	return nil
}
