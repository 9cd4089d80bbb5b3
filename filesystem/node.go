package filesystem

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/brettbedarf/vshell/internal/util"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

// NodeType tags the concrete variant behind a [Node]
type NodeType int

const (
	UnknownNodeType NodeType = iota
	FileNodeType
	DirNodeType
)

func (t NodeType) String() string {
	switch t {
	case FileNodeType:
		return "file"
	case DirNodeType:
		return "dir"
	default:
		return "unknown"
	}
}

// Node is either a *File or a *Directory. The interface is sealed; code that
// needs the variant should type switch on it.
type Node interface {
	// Name returns the node's display name (original case)
	Name() string
	// Parent returns the containing directory; nil for root and detached nodes
	Parent() *Directory
	// ID returns the identity assigned at creation
	ID() uuid.UUID
	Type() NodeType

	base() *nodeBase
}

// nodeBase holds the fields shared by both variants
type nodeBase struct {
	id     uuid.UUID
	name   string     // immutable after creation
	parent *Directory // non-owning back-link. Protected by mu
	mu     sync.RWMutex
}

func (n *nodeBase) init(name string) {
	n.id = uuid.New()
	n.name = name
}

func (n *nodeBase) Name() string  { return n.name }
func (n *nodeBase) ID() uuid.UUID { return n.id }
func (n *nodeBase) base() *nodeBase {
	return n
}

// Parent returns the parent directory or nil
func (n *nodeBase) Parent() *Directory {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

func (n *nodeBase) setParent(d *Directory) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parent = d
}

// key is the case-folded lookup key for a name
func key(name string) string {
	return strings.ToLower(name)
}

// File is a leaf node with text content
type File struct {
	nodeBase
	content string
	cmu     sync.RWMutex // protects content
}

// NewFile creates a detached file
func NewFile(name, content string) *File {
	f := &File{content: content}
	f.init(name)
	return f
}

func (f *File) Type() NodeType { return FileNodeType }

// Content returns the file's text
func (f *File) Content() string {
	f.cmu.RLock()
	defer f.cmu.RUnlock()
	return f.content
}

// SetContent replaces the file's text
func (f *File) SetContent(content string) {
	f.cmu.Lock()
	defer f.cmu.Unlock()
	f.content = content
}

// Directory owns its children, keyed by lowercased name
type Directory struct {
	nodeBase
	children *xsync.Map[string, Node]
}

// NewDirectory creates a detached, empty directory
func NewDirectory(name string) *Directory {
	d := &Directory{children: xsync.NewMap[string, Node]()}
	d.init(name)
	return d
}

func (d *Directory) Type() NodeType { return DirNodeType }

// Insert attaches child under d. A child whose lowercased name collides with
// an existing entry is rejected with a Conflict error and the original stays.
// Inserting a node that is still attached elsewhere is rejected as Internal.
func (d *Directory) Insert(child Node) error {
	logger := util.GetLogger("Directory.Insert")

	if isNilNode(child) {
		return newError(KindInternal, "", "cannot insert nil node")
	}
	if p := child.Parent(); p != nil {
		return newError(KindInternal, child.Name(), fmt.Sprintf("node already attached to %q", p.Name()))
	}
	if dir, ok := child.(*Directory); ok {
		for anc := d; anc != nil; anc = anc.Parent() {
			if anc == dir {
				return newError(KindInternal, child.Name(), "cannot insert a directory into itself")
			}
		}
	}
	if _, loaded := d.children.LoadOrStore(key(child.Name()), child); loaded {
		logger.Warn().Str("name", child.Name()).Str("dir", d.Name()).Msg("A node with this name already exists")
		return newError(KindConflict, child.Name(), "")
	}
	child.base().setParent(d)
	return nil
}

// isNilNode also catches typed nil variants such as (*File)(nil)
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *File:
		return v == nil
	case *Directory:
		return v == nil
	}
	return false
}

// Remove detaches the child stored under name (case-insensitive) and returns it
func (d *Directory) Remove(name string) (Node, bool) {
	child, ok := d.children.LoadAndDelete(key(name))
	if !ok {
		return nil, false
	}
	child.base().setParent(nil)
	return child, true
}

// Child looks up a direct child case-insensitively
func (d *Directory) Child(name string) (Node, bool) {
	return d.children.Load(key(name))
}

// Len returns the number of children
func (d *Directory) Len() int {
	return d.children.Size()
}

// Children returns the children sorted for display: ascending by
// case-insensitive name, ties broken by the original name.
func (d *Directory) Children() []Node {
	nodes := make([]Node, 0, d.children.Size())
	d.children.Range(func(_ string, n Node) bool {
		nodes = append(nodes, n)
		return true
	})
	SortNodes(nodes)
	return nodes
}

// SortNodes sorts nodes in display order in place
func SortNodes(nodes []Node) {
	slices.SortFunc(nodes, func(a, b Node) int {
		if c := strings.Compare(key(a.Name()), key(b.Name())); c != 0 {
			return c
		}
		return strings.Compare(a.Name(), b.Name())
	})
}

// DisplayName returns the listing form of a node: directories get a trailing "/"
func DisplayName(n Node) string {
	if n.Type() == DirNodeType {
		return n.Name() + "/"
	}
	return n.Name()
}
