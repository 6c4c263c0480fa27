// Package notetree keeps the folder/note hierarchy of the notebook. Every
// node is a real directory under the repository root holding a small JSON
// sidecar that records its id, type and display name.
package notetree

type Kind string

const (
	KindFolder Kind = "folder"
	KindNote   Kind = "note"
)

func (k Kind) Valid() bool {
	return k == KindFolder || k == KindNote
}

// Node is either a *Folder or a *Note.
type Node interface {
	ID() string
	Name() string
	Kind() Kind
	Parent() *Folder
	node() *base
}

type base struct {
	id      string
	name    string
	dirName string
	parent  *Folder
}

func (b *base) ID() string      { return b.id }
func (b *base) Name() string    { return b.name }
func (b *base) Parent() *Folder { return b.parent }
func (b *base) node() *base     { return b }

type Folder struct {
	base
	children []Node
}

func (f *Folder) Kind() Kind { return KindFolder }

func (f *Folder) IsRoot() bool { return f.parent == nil }

// Children returns the folder's children in listing order.
func (f *Folder) Children() []Node {
	out := make([]Node, len(f.children))
	copy(out, f.children)
	return out
}

type Note struct {
	base
}

func (n *Note) Kind() Kind { return KindNote }

// Info is a detached description of a node.
type Info struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"type"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
	Dir      string `json:"dir"`
}

func (i Info) IsFolder() bool { return i.Kind == KindFolder }

// isAncestor reports whether f is n itself or one of n's ancestors.
func isAncestor(f *Folder, n Node) bool {
	var cur Node = n
	for cur != nil {
		if c, ok := cur.(*Folder); ok && c == f {
			return true
		}
		p := cur.Parent()
		if p == nil {
			return false
		}
		cur = p
	}
	return false
}

// clone deep-copies the subtree under f.
func clone(f *Folder, parent *Folder) *Folder {
	out := &Folder{base: f.base}
	out.parent = parent
	out.children = make([]Node, len(f.children))
	for i, c := range f.children {
		switch c := c.(type) {
		case *Folder:
			out.children[i] = clone(c, out)
		case *Note:
			n := &Note{base: c.base}
			n.parent = out
			out.children[i] = n
		}
	}
	return out
}
