package history

// stacks holds committed batches. The undo stack is bounded; when it is full
// the oldest batch is dropped and can never be recovered.
type stacks struct {
	undo     []*Batch
	redo     []*Batch
	maxDepth int
	evicted  int
	// clears counts clear calls; discards counts pushes that dropped redo
	// entries.
	clears   int
	discards int
}

func newStacks(maxDepth int) *stacks {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &stacks{maxDepth: maxDepth}
}

// push records a new user batch and invalidates redo history.
// It returns the number of batches evicted.
func (s *stacks) push(b *Batch) int {
	evicted := s.pushUndo(b)
	if len(s.redo) > 0 {
		s.redo = nil
		s.discards++
	}
	return evicted
}

// pushUndo appends to the undo stack without touching redo.
func (s *stacks) pushUndo(b *Batch) int {
	s.undo = append(s.undo, b)
	return s.trim()
}

func (s *stacks) pushRedo(b *Batch) {
	s.redo = append(s.redo, b)
}

func (s *stacks) popUndo() *Batch {
	if len(s.undo) == 0 {
		return nil
	}
	b := s.undo[len(s.undo)-1]
	s.undo[len(s.undo)-1] = nil
	s.undo = s.undo[:len(s.undo)-1]
	return b
}

func (s *stacks) popRedo() *Batch {
	if len(s.redo) == 0 {
		return nil
	}
	b := s.redo[len(s.redo)-1]
	s.redo[len(s.redo)-1] = nil
	s.redo = s.redo[:len(s.redo)-1]
	return b
}

func (s *stacks) peekUndo() *Batch {
	if len(s.undo) == 0 {
		return nil
	}
	return s.undo[len(s.undo)-1]
}

func (s *stacks) peekRedo() *Batch {
	if len(s.redo) == 0 {
		return nil
	}
	return s.redo[len(s.redo)-1]
}

func (s *stacks) canUndo() bool { return len(s.undo) > 0 }

func (s *stacks) canRedo() bool { return len(s.redo) > 0 }

func (s *stacks) clear() {
	s.undo = nil
	s.redo = nil
	s.clears++
}

// contains reports whether a batch with the given ID is in batches.
func contains(batches []*Batch, id string) bool {
	for _, b := range batches {
		if b.id == id {
			return true
		}
	}
	return false
}

// setMaxDepth changes the capacity, dropping the oldest entries if needed.
// It returns the number of batches dropped.
func (s *stacks) setMaxDepth(max int) int {
	if max <= 0 {
		max = DefaultMaxDepth
	}
	s.maxDepth = max
	return s.trim()
}

// trim enforces the capacity by evicting from the bottom of the undo stack.
func (s *stacks) trim() int {
	excess := len(s.undo) - s.maxDepth
	if excess <= 0 {
		return 0
	}
	for i := 0; i < excess; i++ {
		s.undo[i] = nil
	}
	s.undo = s.undo[excess:]
	s.evicted += excess
	return excess
}

func descriptions(batches []*Batch) []string {
	labels := make([]string, len(batches))
	for i, b := range batches {
		labels[i] = b.Description()
	}
	return labels
}
