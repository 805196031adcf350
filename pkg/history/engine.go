package history

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dshills/canvasundo/pkg/scene"
)

// Common errors for history operations.
var (
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrNothingToRedo    = errors.New("nothing to redo")
	ErrNoOpenBatch      = errors.New("no open batch")
	ErrBatchOpen        = errors.New("batch still open")
	ErrReplayInProgress = errors.New("replay in progress")
)

// Target is the part of the scene graph the engine mutates during replay.
type Target interface {
	Insert(cell scene.Cell) error
	RemoveByID(id string) error
	SetAttributes(id string, attrs scene.Attributes) error
}

// Graph is a Target that also emits change notifications.
type Graph interface {
	Target
	Listen(l scene.Listener) (remove func())
}

// Stats reports engine counters.
type Stats struct {
	// Recorded counts commands captured from graph notifications.
	Recorded int
	// Skipped counts commands dropped during replay because their cell was
	// missing or already present.
	Skipped int
	// Evicted counts batches dropped from the bottom of the undo stack.
	Evicted int
}

// Engine records scene mutations and replays them for undo and redo.
type Engine struct {
	target    Target
	detach    func()
	diagramID string

	logger   *slog.Logger
	now      func() time.Time
	maxDepth int

	// replaying is shared with the recorder by pointer
	replaying bool
	recorder  *recorder

	stacks *stacks
	bus    bus

	// Batch accumulation
	depth  int
	label  string
	buffer []Command

	skipped int
}

// New creates an engine that records every mutation of graph.
func New(graph Graph, opts ...Option) *Engine {
	e := &Engine{
		target:   graph,
		logger:   slog.Default(),
		now:      time.Now,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}

	if identified, ok := graph.(interface{ ID() string }); ok {
		e.diagramID = identified.ID()
	}
	e.logger = e.logger.With(slog.String("component", "history"))
	e.stacks = newStacks(e.maxDepth)
	e.recorder = &recorder{replaying: &e.replaying, sink: e.record}
	e.detach = graph.Listen(e.recorder)

	return e
}

// Close stops recording. History already captured stays available.
func (e *Engine) Close() {
	if e.detach != nil {
		e.detach()
		e.detach = nil
	}
}

// record receives every command the recorder captures.
func (e *Engine) record(cmd Command) {
	if e.depth > 0 {
		e.buffer = append(e.buffer, cmd)
		return
	}
	e.commit("", []Command{cmd})
}

// BeginBatch opens a batch. Calls nest; only the label of the outermost call
// is kept.
func (e *Engine) BeginBatch(label string) {
	e.depth++
	if e.depth == 1 {
		e.label = label
		e.buffer = nil
	}
}

// EndBatch closes the innermost open batch. Closing the outermost batch
// commits the buffered commands as one undo step and invalidates redo
// history; an empty batch is discarded without notification.
//
// EndBatch without a matching BeginBatch changes nothing and returns
// ErrNoOpenBatch.
func (e *Engine) EndBatch() error {
	if e.depth == 0 {
		e.logger.Warn("unmatched end of batch ignored")
		return ErrNoOpenBatch
	}

	e.depth--
	if e.depth > 0 {
		return nil
	}

	label, buffer := e.label, e.buffer
	e.label, e.buffer = "", nil
	e.commit(label, buffer)
	return nil
}

// CancelBatch abandons every open batch level: the buffered commands are
// reverted on the graph and discarded. History stacks are unchanged.
func (e *Engine) CancelBatch() error {
	if e.depth == 0 {
		return ErrNoOpenBatch
	}

	buffer := e.buffer
	e.depth, e.label, e.buffer = 0, "", nil

	if len(buffer) > 0 {
		e.replay("cancel", newBatch("", buffer, e.now()), true)
	}
	return nil
}

// InBatch reports whether a batch is open.
func (e *Engine) InBatch() bool {
	return e.depth > 0
}

// BatchDepth returns the current batch nesting depth.
func (e *Engine) BatchDepth() int {
	return e.depth
}

func (e *Engine) commit(label string, commands []Command) {
	if len(commands) == 0 {
		e.logger.Debug("discarding empty batch", slog.String("label", label))
		return
	}

	b := newBatch(label, commands, e.now())
	e.logEviction(e.stacks.push(b))

	e.logger.Debug("batch committed",
		slog.String("batch", b.ID()),
		slog.String("label", b.Description()),
		slog.Int("commands", b.Len()))
	e.publish()
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.stacks.canUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.stacks.canRedo()
}

// UndoDepth returns the number of batches on the undo stack.
func (e *Engine) UndoDepth() int {
	return len(e.stacks.undo)
}

// RedoDepth returns the number of batches on the redo stack.
func (e *Engine) RedoDepth() int {
	return len(e.stacks.redo)
}

// Clear drops all history and any open batch, for example when a new
// diagram is loaded into the graph. It is ignored during a replay.
func (e *Engine) Clear() {
	if e.replaying {
		e.logger.Warn("clear during replay ignored")
		return
	}

	e.stacks.clear()
	e.depth, e.label, e.buffer = 0, "", nil
	e.publish()
}

// Suspend runs fn with recording turned off. Mutations fn makes are not
// recorded, and Undo, Redo and Clear are rejected until it returns.
func (e *Engine) Suspend(fn func() error) error {
	if e.replaying {
		return fn()
	}
	e.replaying = true
	defer func() { e.replaying = false }()
	return fn()
}

// Subscribe registers fn to receive the new State after every push, undo,
// redo and clear. The returned function removes the subscription.
func (e *Engine) Subscribe(fn func(State)) (unsubscribe func()) {
	return e.bus.subscribe(fn)
}

// State returns the current history state.
func (e *Engine) State() State {
	s := State{
		CanUndo:   e.stacks.canUndo(),
		CanRedo:   e.stacks.canRedo(),
		UndoDepth: len(e.stacks.undo),
		RedoDepth: len(e.stacks.redo),
		Evicted:   e.stacks.evicted,
	}
	if b := e.stacks.peekUndo(); b != nil {
		s.UndoLabel = b.Description()
	}
	if b := e.stacks.peekRedo(); b != nil {
		s.RedoLabel = b.Description()
	}
	return s
}

func (e *Engine) publish() {
	e.bus.publish(e.State())
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Recorded: e.recorder.recorded,
		Skipped:  e.skipped,
		Evicted:  e.stacks.evicted,
	}
}

// PeekUndo returns the batch the next Undo would replay.
func (e *Engine) PeekUndo() (*Batch, bool) {
	b := e.stacks.peekUndo()
	return b, b != nil
}

// PeekRedo returns the batch the next Redo would replay.
func (e *Engine) PeekRedo() (*Batch, bool) {
	b := e.stacks.peekRedo()
	return b, b != nil
}

// UndoLabels describes the undo stack, oldest first.
func (e *Engine) UndoLabels() []string {
	return descriptions(e.stacks.undo)
}

// RedoLabels describes the redo stack, oldest first.
func (e *Engine) RedoLabels() []string {
	return descriptions(e.stacks.redo)
}

// MaxDepth returns the undo stack capacity.
func (e *Engine) MaxDepth() int {
	return e.stacks.maxDepth
}

// SetMaxDepth changes the undo stack capacity. If the stack is larger, the
// oldest batches are evicted and subscribers are notified.
func (e *Engine) SetMaxDepth(max int) {
	if evicted := e.stacks.setMaxDepth(max); evicted > 0 {
		e.logEviction(evicted)
		e.publish()
	}
}

func (e *Engine) logEviction(evicted int) {
	if evicted == 0 {
		return
	}
	e.logger.Info("oldest history evicted",
		slog.Int("count", evicted),
		slog.Int("max_depth", e.stacks.maxDepth))
}
