package scene

import (
	"fmt"
	"sort"
)

// Listener receives change notifications from a Graph.
//
// Notifications are delivered synchronously on the mutating call. Cells passed
// to a listener are copies; listeners may keep them.
type Listener interface {
	// CellCreated is called after a cell has been inserted.
	CellCreated(cell Cell)

	// CellDeleted is called with the full cell before it is removed.
	CellDeleted(cell Cell)

	// CellMutated is called after attributes changed. changedKeys lists every
	// key of the patch and previous holds their values before the change
	// (Unset for keys that did not exist).
	CellMutated(cell Cell, changedKeys []string, previous Attributes)
}

type listenerEntry struct {
	id       int
	listener Listener
}

// Graph is the mutable collection of cells forming a diagram's current state
type Graph struct {
	id        string
	name      string
	cells     map[string]*Cell
	listeners []listenerEntry
	nextID    int
}

// NewGraph creates an empty graph with a fresh diagram ID
func NewGraph() *Graph {
	return &Graph{
		id:    NewDiagramID(),
		cells: make(map[string]*Cell),
	}
}

// ID returns the diagram ID of the graph
func (g *Graph) ID() string {
	return g.id
}

// Name returns the diagram name, if any
func (g *Graph) Name() string {
	return g.name
}

// SetName sets the diagram name used when exporting a document
func (g *Graph) SetName(name string) {
	g.name = name
}

// Listen registers a listener and returns a function that removes it.
// The returned function is safe to call more than once.
func (g *Graph) Listen(l Listener) func() {
	g.nextID++
	id := g.nextID
	g.listeners = append(g.listeners, listenerEntry{id: id, listener: l})

	return func() {
		for i, entry := range g.listeners {
			if entry.id == id {
				g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
				return
			}
		}
	}
}

// snapshotListeners copies the listener list so that listeners may
// unsubscribe while being notified
func (g *Graph) snapshotListeners() []Listener {
	ls := make([]Listener, len(g.listeners))
	for i, entry := range g.listeners {
		ls[i] = entry.listener
	}
	return ls
}

// Insert adds a fully specified cell to the graph
func (g *Graph) Insert(cell Cell) error {
	if err := cell.Validate(); err != nil {
		return err
	}
	if _, exists := g.cells[cell.ID]; exists {
		return fmt.Errorf("%w: %s", ErrCellExists, cell.ID)
	}

	stored := normalized(cell)
	g.cells[cell.ID] = &stored

	for _, l := range g.snapshotListeners() {
		l.CellCreated(stored.Clone())
	}
	return nil
}

// normalized copies cell and guarantees a non-nil attribute map
func normalized(cell Cell) Cell {
	stored := cell.Clone()
	if stored.Attributes == nil {
		stored.Attributes = make(Attributes)
	}
	return stored
}

// Add inserts a cell, generating an ID when none is set, and returns the ID
func (g *Graph) Add(cell Cell) (string, error) {
	if cell.ID == "" {
		cell.ID = NewCellID()
	}
	if err := g.Insert(cell); err != nil {
		return "", err
	}
	return cell.ID, nil
}

// RemoveByID removes exactly one cell. Attached connectors are left in place.
func (g *Graph) RemoveByID(id string) error {
	cell, ok := g.cells[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCellNotFound, id)
	}

	// Listeners see the cell while it still exists
	for _, l := range g.snapshotListeners() {
		l.CellDeleted(cell.Clone())
	}

	delete(g.cells, id)
	return nil
}

// Remove removes a cell together with every connector attached to it.
// Connectors are removed first, in ID order, so that each removal is a
// separate notification. Hosts recording history should wrap the call in a
// batch.
func (g *Graph) Remove(id string) error {
	if _, ok := g.cells[id]; !ok {
		return fmt.Errorf("%w: %s", ErrCellNotFound, id)
	}

	for _, connectorID := range g.attachedConnectors(id) {
		if err := g.RemoveByID(connectorID); err != nil {
			return fmt.Errorf("failed to remove connector %s: %w", connectorID, err)
		}
	}

	return g.RemoveByID(id)
}

func (g *Graph) attachedConnectors(id string) []string {
	var ids []string
	for cid, cell := range g.cells {
		if cid != id && cell.Touches(id) {
			ids = append(ids, cid)
		}
	}
	sort.Strings(ids)
	return ids
}

// SetAttributes applies a partial attribute patch to a cell.
//
// Every key of the patch counts as changed; values are not compared. Unset
// values delete their key. An empty patch is a no-op and notifies nobody.
func (g *Graph) SetAttributes(id string, patch Attributes) error {
	cell, ok := g.cells[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCellNotFound, id)
	}
	if len(patch) == 0 {
		return nil
	}

	keys := patch.Keys()
	previous := cell.Attributes.Restrict(keys)

	for _, k := range keys {
		v := patch[k]
		if IsUnset(v) {
			delete(cell.Attributes, k)
			continue
		}
		cell.Attributes[k] = cloneValue(v)
	}

	for _, l := range g.snapshotListeners() {
		l.CellMutated(cell.Clone(), append([]string(nil), keys...), previous.Clone())
	}
	return nil
}

// Set is shorthand for SetAttributes with a single key
func (g *Graph) Set(id, key string, value any) error {
	return g.SetAttributes(id, Attributes{key: value})
}

// Get returns a copy of the cell with the given ID
func (g *Graph) Get(id string) (Cell, bool) {
	cell, ok := g.cells[id]
	if !ok {
		return Cell{}, false
	}
	return cell.Clone(), true
}

// Has reports whether a cell with the given ID exists
func (g *Graph) Has(id string) bool {
	_, ok := g.cells[id]
	return ok
}

// Len returns the number of cells
func (g *Graph) Len() int {
	return len(g.cells)
}

// Cells returns copies of all cells ordered by ID
func (g *Graph) Cells() []Cell {
	ids := make([]string, 0, len(g.cells))
	for id := range g.cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cells := make([]Cell, len(ids))
	for i, id := range ids {
		cells[i] = g.cells[id].Clone()
	}
	return cells
}

// Load replaces the graph contents with the cells of doc.
//
// Listeners are not notified: loading a document is a reset, not an edit.
// Callers that keep undo history for the graph must clear it afterwards.
func (g *Graph) Load(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("cannot load nil document")
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	cells := make(map[string]*Cell, len(doc.Cells))
	for _, cell := range doc.Cells {
		stored := normalized(cell)
		cells[cell.ID] = &stored
	}

	g.cells = cells
	g.name = doc.Name
	if doc.ID != "" {
		g.id = doc.ID
	}
	return nil
}

// Document exports the current graph state
func (g *Graph) Document() *Document {
	return &Document{
		ID:    g.id,
		Name:  g.name,
		Cells: g.Cells(),
	}
}
