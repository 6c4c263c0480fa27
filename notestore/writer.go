package notestore

import (
	"sync"

	"scribe/ink"
)

type fileKind int

const (
	strokesFile fileKind = iota
	contentFile
)

type jobKey struct {
	noteID string
	file   fileKind
}

type job struct {
	strokes []ink.Stroke
	content string
}

// Writer performs note writes on a background goroutine. Writes queued for
// the same note file before the worker gets to them collapse into the
// last one. Failures are logged and dropped.
type Writer struct {
	store *Store

	mu       sync.Mutex
	cond     *sync.Cond
	pending  map[jobKey]job
	order    []jobKey
	inflight int
	closed   bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

func NewWriter(store *Store) *Writer {
	w := &Writer{
		store:   store,
		pending: make(map[jobKey]job),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	w.wg.Add(1)
	go w.run()
	return w
}

// SaveStrokes queues a snapshot of a note's strokes.
func (w *Writer) SaveStrokes(noteID string, strokes []ink.Stroke) {
	w.enqueue(jobKey{noteID, strokesFile}, job{strokes: strokes})
}

func (w *Writer) SaveContent(noteID, content string) {
	w.enqueue(jobKey{noteID, contentFile}, job{content: content})
}

func (w *Writer) enqueue(k jobKey, j job) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.store.log.Warn().Str("note", k.noteID).Msg("write dropped, writer closed")
		return
	}
	if _, ok := w.pending[k]; !ok {
		w.order = append(w.order, k)
	}
	w.pending[k] = j
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.done:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.order) == 0 {
			w.cond.Broadcast()
			w.mu.Unlock()
			return
		}
		order, pending := w.order, w.pending
		w.order = nil
		w.pending = make(map[jobKey]job)
		w.inflight = len(order)
		w.mu.Unlock()

		for _, k := range order {
			w.write(k, pending[k])
		}

		w.mu.Lock()
		w.inflight = 0
		w.mu.Unlock()
	}
}

func (w *Writer) write(k jobKey, j job) {
	var err error
	switch k.file {
	case strokesFile:
		err = w.store.SaveStrokes(k.noteID, j.strokes)
	case contentFile:
		err = w.store.SaveContent(k.noteID, j.content)
	}
	if err != nil {
		w.store.log.Error().Err(err).Str("note", k.noteID).Msg("background write failed")
	}
}

// Flush blocks until every write queued so far has been attempted.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for (len(w.order) > 0 || w.inflight > 0) && !w.closed {
		w.cond.Wait()
	}
}

// Close writes what is still queued and stops the worker.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	close(w.done)
	w.wg.Wait()
}

// Autosave queues a strokes write every time canvas' committed strokes
// change. The returned function stops it.
func (w *Writer) Autosave(canvas *ink.Canvas, noteID string) func() {
	return canvas.Events().Subscribe(func(ev ink.Event) {
		if !ev.Persistent() {
			return
		}
		w.SaveStrokes(noteID, canvas.Strokes())
	})
}
