package history

import (
	"fmt"
	"strings"

	"github.com/dshills/canvasundo/pkg/scene"
)

// Op identifies the kind of mutation a Command records.
type Op int

const (
	// OpCreate records the insertion of a cell.
	OpCreate Op = iota
	// OpDelete records the removal of a cell.
	OpDelete
	// OpMutate records a change to some attributes of a cell.
	OpMutate
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	case OpMutate:
		return "mutate"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Snapshot holds the state a Command needs on one side of a mutation.
// Exactly one of Cell and Attributes is set.
type Snapshot struct {
	// Cell is a full cell, used by Create (after) and Delete (before).
	Cell *scene.Cell
	// Attributes holds the changed keys only, used by Mutate.
	Attributes scene.Attributes
}

func (s *Snapshot) clone() *Snapshot {
	if s == nil {
		return nil
	}
	copied := &Snapshot{Attributes: s.Attributes.Clone()}
	if s.Cell != nil {
		cell := s.Cell.Clone()
		copied.Cell = &cell
	}
	return copied
}

// Command is an immutable record of one confirmed scene mutation.
type Command struct {
	op     Op
	cellID string
	before *Snapshot
	after  *Snapshot
}

func newCreateCommand(cell scene.Cell) Command {
	snap := cell.Clone()
	return Command{op: OpCreate, cellID: cell.ID, after: &Snapshot{Cell: &snap}}
}

func newDeleteCommand(cell scene.Cell) Command {
	snap := cell.Clone()
	return Command{op: OpDelete, cellID: cell.ID, before: &Snapshot{Cell: &snap}}
}

// newMutateCommand captures only changedKeys. previous must hold the
// pre-change value (or scene.Unset) for each of them.
func newMutateCommand(cell scene.Cell, changedKeys []string, previous scene.Attributes) Command {
	before := make(scene.Attributes, len(changedKeys))
	for _, k := range changedKeys {
		if v, ok := previous[k]; ok {
			before[k] = v
		} else {
			before[k] = scene.Unset
		}
	}

	return Command{
		op:     OpMutate,
		cellID: cell.ID,
		before: &Snapshot{Attributes: before.Clone()},
		after:  &Snapshot{Attributes: cell.Attributes.Restrict(changedKeys)},
	}
}

// Op returns the recorded operation.
func (c Command) Op() Op { return c.op }

// CellID returns the ID of the target cell.
func (c Command) CellID() string { return c.cellID }

// Before returns a copy of the pre-mutation snapshot, nil for Create.
func (c Command) Before() *Snapshot { return c.before.clone() }

// After returns a copy of the post-mutation snapshot, nil for Delete.
func (c Command) After() *Snapshot { return c.after.clone() }

// Keys returns the attribute keys a Mutate command touches.
func (c Command) Keys() []string {
	if c.op != OpMutate || c.after == nil {
		return nil
	}
	return c.after.Attributes.Keys()
}

// Description returns a human-readable description.
func (c Command) Description() string {
	switch c.op {
	case OpCreate:
		return fmt.Sprintf("Create %s", c.cellID)
	case OpDelete:
		return fmt.Sprintf("Delete %s", c.cellID)
	case OpMutate:
		return fmt.Sprintf("Change %s (%s)", c.cellID, strings.Join(c.Keys(), ", "))
	default:
		return c.op.String()
	}
}

// revert applies the inverse of the command to t.
func (c Command) revert(t Target) error {
	switch c.op {
	case OpCreate:
		return t.RemoveByID(c.cellID)
	case OpDelete:
		return t.Insert(c.before.Cell.Clone())
	case OpMutate:
		return t.SetAttributes(c.cellID, c.before.Attributes.Clone())
	default:
		return fmt.Errorf("unknown operation %s", c.op)
	}
}

// apply reapplies the command to t.
func (c Command) apply(t Target) error {
	switch c.op {
	case OpCreate:
		return t.Insert(c.after.Cell.Clone())
	case OpDelete:
		return t.RemoveByID(c.cellID)
	case OpMutate:
		return t.SetAttributes(c.cellID, c.after.Attributes.Clone())
	default:
		return fmt.Errorf("unknown operation %s", c.op)
	}
}
