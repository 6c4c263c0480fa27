package notetree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scribe/hub"
)

// RootID identifies the synthetic root folder.
const RootID = "root"

var (
	ErrNotFound  = errors.New("node not found")
	ErrNotFolder = errors.New("node is not a folder")
	ErrRoot      = errors.New("operation not allowed on the root folder")
	ErrCycle     = errors.New("cannot move a folder into itself or its descendants")
)

type EventType string

const (
	EventCreated  EventType = "node_created"
	EventRenamed  EventType = "node_renamed"
	EventMoved    EventType = "node_moved"
	EventDeleted  EventType = "node_deleted"
	EventReloaded EventType = "tree_reloaded"
)

type Event struct {
	Type EventType
	Node Info
	// OldParentID is set for EventMoved.
	OldParentID string
}

type Options struct {
	Logger zerolog.Logger
	// NewID generates node ids. Defaults to random UUIDs.
	NewID func() string
}

// Repository mirrors the node tree onto a directory. All mutations are
// serialized by one lock; events are published after it is released.
type Repository struct {
	mu     sync.Mutex
	dir    string
	root   *Folder
	index  map[string]Node
	log    zerolog.Logger
	newID  func() string
	events *hub.Hub[Event]
}

// Open prepares dir as the backing root and loads whatever tree is
// already stored there.
func Open(dir string, opts Options) (*Repository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root %s: %w", abs, err)
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	r := &Repository{
		dir:    abs,
		log:    opts.Logger,
		newID:  opts.NewID,
		events: hub.New[Event](),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) Events() *hub.Hub[Event] {
	return r.events
}

func (r *Repository) Dir() string {
	return r.dir
}

func newRoot() *Folder {
	return &Folder{base: base{id: RootID, name: ""}}
}

// Reload rebuilds the tree from disk. Directories without a readable
// sidecar are skipped together with everything below them.
func (r *Repository) Reload() error {
	r.mu.Lock()
	root := newRoot()
	index := map[string]Node{RootID: root}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to read root %s: %w", r.dir, err)
	}
	if len(entries) > 0 {
		r.loadChildren(root, r.dir, index)
	}
	r.root = root
	r.index = index
	count := len(index) - 1
	r.mu.Unlock()

	r.log.Debug().Str("dir", r.dir).Int("nodes", count).Msg("tree loaded")
	r.events.Publish(Event{Type: EventReloaded, Node: Info{ID: RootID, Kind: KindFolder, Dir: r.dir}})
	return nil
}

func (r *Repository) loadChildren(parent *Folder, dir string, index map[string]Node) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.log.Warn().Err(err).Str("dir", dir).Msg("failed to list directory")
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		childDir := filepath.Join(dir, entry.Name())
		sc, err := readSidecar(childDir)
		if err != nil {
			r.log.Debug().Err(err).Str("dir", childDir).Msg("skipped directory without sidecar")
			continue
		}
		if _, dup := index[sc.ID]; dup || sc.ID == RootID {
			old := sc.ID
			sc.ID = r.freshID(index)
			if err := writeSidecar(childDir, sc); err != nil {
				r.log.Warn().Err(err).Str("dir", childDir).Msg("failed to rewrite sidecar")
			}
			r.log.Warn().Str("dir", childDir).Str("old_id", old).Str("id", sc.ID).Msg("duplicate node id reassigned")
		}

		b := base{id: sc.ID, name: sc.Name, dirName: entry.Name(), parent: parent}
		if b.name == "" {
			b.name = entry.Name()
		}
		switch sc.Type {
		case KindFolder:
			f := &Folder{base: b}
			index[f.id] = f
			parent.children = append(parent.children, f)
			r.loadChildren(f, childDir, index)
		case KindNote:
			n := &Note{base: b}
			index[n.id] = n
			parent.children = append(parent.children, n)
		}
	}
	sortChildren(parent)
}

func (r *Repository) freshID(index map[string]Node) string {
	for {
		id := r.newID()
		if _, ok := index[id]; !ok && id != RootID {
			return id
		}
	}
}

func (r *Repository) dirOf(n Node) string {
	var parts []string
	for cur := n; ; {
		b := cur.node()
		if b.parent == nil {
			break
		}
		parts = append(parts, b.dirName)
		cur = b.parent
	}
	path := r.dir
	for i := len(parts) - 1; i >= 0; i-- {
		path = filepath.Join(path, parts[i])
	}
	return path
}

func (r *Repository) info(n Node) Info {
	i := Info{ID: n.ID(), Kind: n.Kind(), Name: n.Name(), Dir: r.dirOf(n)}
	if p := n.Parent(); p != nil {
		i.ParentID = p.ID()
	}
	return i
}

func (r *Repository) lookup(id string) (Node, error) {
	if id == "" {
		id = RootID
	}
	n, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n, nil
}

func (r *Repository) folder(id string) (*Folder, error) {
	n, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	f, ok := n.(*Folder)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFolder, id)
	}
	return f, nil
}

func (r *Repository) Get(id string) (Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.lookup(id)
	if err != nil {
		return Info{}, err
	}
	return r.info(n), nil
}

func (r *Repository) Root() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info(r.root)
}

// Path returns the absolute directory backing id.
func (r *Repository) Path(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.lookup(id)
	if err != nil {
		return "", err
	}
	return r.dirOf(n), nil
}

func (r *Repository) Children(id string) ([]Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.folder(id)
	if err != nil {
		return nil, err
	}
	out := make([]Info, len(f.children))
	for i, c := range f.children {
		out[i] = r.info(c)
	}
	return out, nil
}

// Ancestors returns the folders from the root down to id's parent.
func (r *Repository) Ancestors(id string) ([]Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	var out []Info
	for p := n.Parent(); p != nil; p = p.Parent() {
		out = append([]Info{r.info(p)}, out...)
	}
	return out, nil
}

// Snapshot returns a deep copy of the tree, safe to read while the
// repository keeps changing.
func (r *Repository) Snapshot() *Folder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.root, nil)
}

// Walk visits every node below the root depth first, in listing order.
// Returning false from fn skips the node's children.
func (r *Repository) Walk(fn func(info Info, depth int) bool) {
	r.mu.Lock()
	var infos []Info
	var depths []int
	var skip []bool
	var visit func(f *Folder, depth int)
	visit = func(f *Folder, depth int) {
		for _, c := range f.children {
			infos = append(infos, r.info(c))
			depths = append(depths, depth)
			skip = append(skip, false)
			if cf, ok := c.(*Folder); ok {
				visit(cf, depth+1)
			}
		}
	}
	visit(r.root, 0)
	r.mu.Unlock()

	for i := 0; i < len(infos); i++ {
		if fn(infos[i], depths[i]) {
			continue
		}
		d := depths[i]
		for i+1 < len(infos) && depths[i+1] > d {
			i++
		}
	}
}

// Resolve finds a node by a slash separated path of display names, e.g.
// "Math/Algebra". Matching is case-insensitive; an exact match wins.
func (r *Repository) Resolve(path string) (Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cur Node = r.root
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		f, ok := cur.(*Folder)
		if !ok {
			return Info{}, fmt.Errorf("%w: %s", ErrNotFolder, cur.Name())
		}
		var match Node
		for _, c := range f.children {
			if c.Name() == part {
				match = c
				break
			}
			if match == nil && strings.EqualFold(c.Name(), part) {
				match = c
			}
		}
		if match == nil {
			return Info{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		cur = match
	}
	return r.info(cur), nil
}

// Find returns every node whose name contains query, case-insensitively.
func (r *Repository) Find(query string) []Info {
	query = strings.ToLower(query)
	var out []Info
	r.Walk(func(info Info, _ int) bool {
		if strings.Contains(strings.ToLower(info.Name), query) {
			out = append(out, info)
		}
		return true
	})
	return out
}

func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.index) - 1
}
