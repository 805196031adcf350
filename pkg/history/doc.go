// Package history provides undo/redo for a scene graph.
//
// The engine listens to graph notifications and turns every confirmed
// mutation into a Command that can be reversed and reapplied. Key concepts:
//
// # Commands
//
// A Command records one atomic mutation:
//   - Create: the full cell that was inserted
//   - Delete: the full cell that was removed
//   - Mutate: only the changed attribute keys, before and after
//
// # Batches
//
// Commands are grouped into Batches, the unit of undo and redo. Mutations made
// outside a batch become singleton batches:
//
//	engine := history.New(graph, history.WithMaxDepth(100))
//
//	engine.BeginBatch("drag")
//	// ... every intermediate frame of the drag ...
//	engine.EndBatch()
//
//	engine.Undo() // reverts the whole drag
//	engine.Redo()
//
// Batches nest; only the outermost EndBatch commits.
//
// # Replay
//
// Undo applies a batch's commands in reverse order, redo in forward order.
// While replaying, the engine sets a flag that stops its own recorder from
// capturing the mutations it causes. Commands whose cell has disappeared are
// skipped and logged; the rest of the batch still runs.
//
// # Subscriptions
//
// Subscribe registers a callback that receives the new State once after every
// push, undo, redo and clear.
//
// The engine is synchronous and not safe for concurrent use.
package history
