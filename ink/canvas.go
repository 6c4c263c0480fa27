package ink

import (
	"sync"

	"scribe/hub"
)

type Mode int

const (
	ModeWrite Mode = iota
	ModeErase
)

func (m Mode) String() string {
	if m == ModeErase {
		return "erase"
	}
	return "write"
}

type Options struct {
	// Width and Height bound the drawable area starting at the origin.
	// Zero or negative disables the bounds check.
	Width, Height float64

	// MinPointDistance drops move samples closer than this to the last
	// accepted point.
	MinPointDistance float64

	EraserRadius float64
	DotRadius    float64

	// EraseFirst removes only the topmost hit stroke per eraser event
	// instead of every stroke under the eraser.
	EraseFirst bool

	// CellSize of the eraser's spatial hash. Zero derives it from the
	// eraser radius.
	CellSize float64
}

func DefaultOptions() Options {
	return Options{
		MinPointDistance: 2,
		EraserRadius:     20,
		DotRadius:        2,
	}
}

type EventType int

const (
	EventLive EventType = iota
	EventCommit
	EventErase
	EventUndo
	EventRedo
	EventClear
	EventLoad
)

func (t EventType) String() string {
	switch t {
	case EventLive:
		return "live"
	case EventCommit:
		return "commit"
	case EventErase:
		return "erase"
	case EventUndo:
		return "undo"
	case EventRedo:
		return "redo"
	case EventClear:
		return "clear"
	case EventLoad:
		return "load"
	}
	return "unknown"
}

// Event announces a change to a Canvas. Strokes holds the strokes the
// change touched: the live stroke for EventLive, the committed one for
// EventCommit, the removed ones for EventErase.
type Event struct {
	Type    EventType
	Strokes []Stroke
}

// Persistent reports whether the event changed the committed stroke list.
func (e Event) Persistent() bool {
	return e.Type != EventLive
}

// Canvas is the stroke list of one note together with the gesture that is
// currently being drawn and the undo/redo history.
type Canvas struct {
	mu   sync.Mutex
	opts Options

	strokes []*Stroke
	live    *Stroke
	down    bool

	mode  Mode
	color uint32
	width float64

	undoStack []Action
	redoStack []Action

	index  *grid
	events *hub.Hub[Event]
}

func NewCanvas(opts Options) *Canvas {
	if opts.EraserRadius <= 0 {
		opts.EraserRadius = DefaultOptions().EraserRadius
	}
	size := opts.CellSize
	if size <= 0 {
		size = opts.EraserRadius * 2
	}
	return &Canvas{
		opts:   opts,
		color:  Black,
		width:  6,
		index:  newGrid(size),
		events: hub.New[Event](),
	}
}

func (c *Canvas) Events() *hub.Hub[Event] {
	return c.events
}

func (c *Canvas) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

func (c *Canvas) SetPen(color uint32, width float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = color
	if width > 0 {
		c.width = width
	}
}

func (c *Canvas) Pen() (uint32, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color, c.width
}

func (c *Canvas) SetEraserRadius(r float64) {
	if r <= 0 {
		return
	}
	c.mu.Lock()
	c.opts.EraserRadius = r
	c.mu.Unlock()
}

// SetMode switches between writing and erasing. A stroke in progress is
// committed first.
func (c *Canvas) SetMode(m Mode) {
	c.mu.Lock()
	var ev []Event
	if c.mode != m {
		ev = c.endStroke()
		c.mode = m
	}
	c.mu.Unlock()
	c.publish(ev)
}

func (c *Canvas) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Canvas) inside(p Point) bool {
	if c.opts.Width <= 0 || c.opts.Height <= 0 {
		return true
	}
	return p.X >= 0 && p.Y >= 0 && p.X <= c.opts.Width && p.Y <= c.opts.Height
}

func (c *Canvas) PointerDown(p Point) {
	c.mu.Lock()
	c.down = true
	var ev []Event
	if c.inside(p) {
		switch c.mode {
		case ModeWrite:
			ev = c.beginStroke(p)
		case ModeErase:
			ev = c.eraseAt(p)
		}
	}
	c.mu.Unlock()
	c.publish(ev)
}

func (c *Canvas) PointerMove(p Point) {
	c.mu.Lock()
	var ev []Event
	if c.down {
		switch c.mode {
		case ModeWrite:
			ev = c.moveStroke(p)
		case ModeErase:
			if c.inside(p) {
				ev = c.eraseAt(p)
			}
		}
	}
	c.mu.Unlock()
	c.publish(ev)
}

func (c *Canvas) PointerUp(p Point) {
	c.mu.Lock()
	var ev []Event
	if c.down {
		c.down = false
		if c.mode == ModeWrite && c.live != nil {
			if c.inside(p) {
				c.appendPoint(p)
			}
			ev = c.endStroke()
		}
	}
	c.mu.Unlock()
	c.publish(ev)
}

// Cancel drops the stroke in progress without committing it.
func (c *Canvas) Cancel() {
	c.mu.Lock()
	c.down = false
	had := c.live != nil
	c.live = nil
	c.mu.Unlock()
	if had {
		c.publish([]Event{{Type: EventLive}})
	}
}

func (c *Canvas) beginStroke(p Point) []Event {
	c.live = &Stroke{Points: []Point{p}, Color: c.color, Width: c.width}
	return []Event{{Type: EventLive, Strokes: []Stroke{c.live.Clone()}}}
}

func (c *Canvas) moveStroke(p Point) []Event {
	if !c.inside(p) {
		// leaving the canvas lifts the pen
		return c.endStroke()
	}
	if c.live == nil {
		return c.beginStroke(p)
	}
	if !c.appendPoint(p) {
		return nil
	}
	return []Event{{Type: EventLive, Strokes: []Stroke{c.live.Clone()}}}
}

func (c *Canvas) appendPoint(p Point) bool {
	last := c.live.Points[len(c.live.Points)-1]
	if last.Dist(p) <= c.opts.MinPointDistance {
		return false
	}
	c.live.Points = append(c.live.Points, p)
	return true
}

func (c *Canvas) endStroke() []Event {
	s := c.live
	c.live = nil
	if s == nil || len(s.Points) == 0 {
		return nil
	}
	c.strokes = append(c.strokes, s)
	c.index.add(s)
	c.recordAction(ActionCommit, []*Stroke{s}, []int{len(c.strokes) - 1})
	return []Event{{Type: EventCommit, Strokes: []Stroke{*s}}}
}

// Commit appends a finished stroke as if it had been drawn.
func (c *Canvas) Commit(s Stroke) {
	if len(s.Points) == 0 {
		return
	}
	s = s.Clone()
	c.mu.Lock()
	ev := c.endStroke()
	c.live = &s
	ev = append(ev, c.endStroke()...)
	c.mu.Unlock()
	c.publish(ev)
}

// EraseAt runs the eraser once at p and returns how many strokes it
// removed.
func (c *Canvas) EraseAt(p Point) int {
	c.mu.Lock()
	ev := c.eraseAt(p)
	c.mu.Unlock()
	c.publish(ev)
	if len(ev) == 0 {
		return 0
	}
	return len(ev[0].Strokes)
}

func (c *Canvas) eraseAt(p Point) []Event {
	hits := c.hitTest(p, c.opts.EraserRadius)
	if len(hits) == 0 {
		return nil
	}
	if c.opts.EraseFirst {
		hits = hits[len(hits)-1:]
	}

	removed := make([]*Stroke, len(hits))
	for i, idx := range hits {
		removed[i] = c.strokes[idx]
	}
	for i := len(hits) - 1; i >= 0; i-- {
		c.removeAt(hits[i])
	}
	c.recordAction(ActionErase, removed, hits)

	out := make([]Stroke, len(removed))
	for i, s := range removed {
		out[i] = *s
	}
	return []Event{{Type: EventErase, Strokes: out}}
}

// hitTest returns, in ascending order, the indices of strokes with a point
// closer than r to p.
func (c *Canvas) hitTest(p Point, r float64) []int {
	candidates := c.index.near(p, r)
	if len(candidates) == 0 {
		return nil
	}
	var hits []int
	for i, s := range c.strokes {
		if _, ok := candidates[s]; !ok {
			continue
		}
		for _, q := range s.Points {
			if p.within(q, r) {
				hits = append(hits, i)
				break
			}
		}
	}
	return hits
}

// HitTest reports the indices of the strokes the eraser would remove at p,
// without removing them.
func (c *Canvas) HitTest(p Point) []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	hits := c.hitTest(p, c.opts.EraserRadius)
	if c.opts.EraseFirst && len(hits) > 1 {
		hits = hits[len(hits)-1:]
	}
	return hits
}

func (c *Canvas) removeAt(i int) *Stroke {
	s := c.strokes[i]
	c.strokes = append(c.strokes[:i], c.strokes[i+1:]...)
	c.index.remove(s)
	return s
}

func (c *Canvas) insertAt(i int, s *Stroke) {
	if i > len(c.strokes) {
		i = len(c.strokes)
	}
	c.strokes = append(c.strokes, nil)
	copy(c.strokes[i+1:], c.strokes[i:])
	c.strokes[i] = s
	c.index.add(s)
}

// Clear empties the drawing and forgets all history.
func (c *Canvas) Clear() {
	c.mu.Lock()
	c.reset(nil)
	c.mu.Unlock()
	c.publish([]Event{{Type: EventClear}})
}

// Load replaces the drawing with strokes and forgets all history.
func (c *Canvas) Load(strokes []Stroke) {
	c.mu.Lock()
	c.reset(strokes)
	c.mu.Unlock()
	c.publish([]Event{{Type: EventLoad}})
}

func (c *Canvas) reset(strokes []Stroke) {
	c.strokes = c.strokes[:0]
	c.live = nil
	c.down = false
	c.undoStack = nil
	c.redoStack = nil
	c.index.reset()
	for _, s := range strokes {
		if len(s.Points) == 0 {
			continue
		}
		cp := s.Clone()
		c.strokes = append(c.strokes, &cp)
		c.index.add(&cp)
	}
}

// Strokes returns the committed strokes, oldest first. Point slices are
// shared with the canvas and must not be modified.
func (c *Canvas) Strokes() []Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Stroke, len(c.strokes))
	for i, s := range c.strokes {
		out[i] = *s
	}
	return out
}

func (c *Canvas) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.strokes)
}

// Live returns a copy of the stroke being drawn, or nil.
func (c *Canvas) Live() *Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == nil {
		return nil
	}
	s := c.live.Clone()
	return &s
}

func (c *Canvas) publish(evs []Event) {
	for _, ev := range evs {
		c.events.Publish(ev)
	}
}
