package history

// State describes the history as observers see it.
type State struct {
	CanUndo   bool
	CanRedo   bool
	UndoDepth int
	RedoDepth int
	// UndoLabel and RedoLabel describe the batch the next Undo or Redo
	// would replay, empty when there is none.
	UndoLabel string
	RedoLabel string
	// Evicted counts batches dropped from the bottom of the undo stack since
	// the engine was created. They can no longer be undone.
	Evicted int
}

type subscriber struct {
	id int
	fn func(State)
}

// bus fans State changes out to subscribers.
type bus struct {
	subscribers []subscriber
	nextID      int
}

func (b *bus) subscribe(fn func(State)) func() {
	b.nextID++
	id := b.nextID
	b.subscribers = append(b.subscribers, subscriber{id: id, fn: fn})

	return func() {
		for i, sub := range b.subscribers {
			if sub.id == id {
				b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
				return
			}
		}
	}
}

// publish delivers s to every current subscriber. Subscribers may unsubscribe
// from inside their callback.
func (b *bus) publish(s State) {
	subs := make([]subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	for _, sub := range subs {
		sub.fn(s)
	}
}
