package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Batch is an ordered group of Commands that undo and redo as one step.
// A Batch is sealed when it is created and never changes afterwards.
type Batch struct {
	id        string
	label     string
	commands  []Command
	createdAt time.Time
}

func newBatch(label string, commands []Command, createdAt time.Time) *Batch {
	sealed := make([]Command, len(commands))
	copy(sealed, commands)
	return &Batch{
		id:        uuid.New().String(),
		label:     label,
		commands:  sealed,
		createdAt: createdAt,
	}
}

// ID returns the unique batch identifier.
func (b *Batch) ID() string { return b.id }

// Label returns the label given to BeginBatch, if any.
func (b *Batch) Label() string { return b.label }

// Len returns the number of commands.
func (b *Batch) Len() int { return len(b.commands) }

// CreatedAt returns when the batch was sealed.
func (b *Batch) CreatedAt() time.Time { return b.createdAt }

// Commands returns the commands in insertion order.
func (b *Batch) Commands() []Command {
	commands := make([]Command, len(b.commands))
	copy(commands, b.commands)
	return commands
}

// Description returns the label, or a summary of the commands when the batch
// is unlabelled.
func (b *Batch) Description() string {
	if b.label != "" {
		return b.label
	}
	if len(b.commands) == 1 {
		return b.commands[0].Description()
	}
	return fmt.Sprintf("%d changes", len(b.commands))
}
