package ink

type ActionType int

const (
	ActionCommit ActionType = iota
	ActionErase
)

// Action is one undoable edit. Indices are the positions the strokes held
// in the stroke list, ascending.
type Action struct {
	Type    ActionType
	Strokes []*Stroke
	Indices []int
}

func (c *Canvas) recordAction(actionType ActionType, strokes []*Stroke, indices []int) {
	c.undoStack = append(c.undoStack, Action{
		Type:    actionType,
		Strokes: strokes,
		Indices: indices,
	})
	c.redoStack = nil
}

func (c *Canvas) Undo() bool {
	c.mu.Lock()
	if c.live != nil || len(c.undoStack) == 0 {
		c.mu.Unlock()
		return false
	}

	lastIndex := len(c.undoStack) - 1
	action := c.undoStack[lastIndex]
	c.undoStack = c.undoStack[:lastIndex]

	switch action.Type {
	case ActionCommit:
		for i := len(action.Indices) - 1; i >= 0; i-- {
			c.removeAt(action.Indices[i])
		}
	case ActionErase:
		for i, idx := range action.Indices {
			c.insertAt(idx, action.Strokes[i])
		}
	}

	c.redoStack = append(c.redoStack, action)
	ev := Event{Type: EventUndo, Strokes: values(action.Strokes)}
	c.mu.Unlock()

	c.events.Publish(ev)
	return true
}

func (c *Canvas) Redo() bool {
	c.mu.Lock()
	if c.live != nil || len(c.redoStack) == 0 {
		c.mu.Unlock()
		return false
	}

	lastIndex := len(c.redoStack) - 1
	action := c.redoStack[lastIndex]
	c.redoStack = c.redoStack[:lastIndex]

	switch action.Type {
	case ActionCommit:
		for i, idx := range action.Indices {
			c.insertAt(idx, action.Strokes[i])
		}
	case ActionErase:
		for i := len(action.Indices) - 1; i >= 0; i-- {
			c.removeAt(action.Indices[i])
		}
	}

	c.undoStack = append(c.undoStack, action)
	ev := Event{Type: EventRedo, Strokes: values(action.Strokes)}
	c.mu.Unlock()

	c.events.Publish(ev)
	return true
}

func (c *Canvas) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.undoStack) > 0
}

func (c *Canvas) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.redoStack) > 0
}

func values(ptrs []*Stroke) []Stroke {
	out := make([]Stroke, len(ptrs))
	for i, s := range ptrs {
		out[i] = *s
	}
	return out
}
