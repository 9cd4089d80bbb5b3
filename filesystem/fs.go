package filesystem

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/brettbedarf/vshell/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// RootName is the display name of the root directory
const RootName = "/"

// Role names a well-known directory reachable without navigation
type Role string

const (
	// RoleCopyDestination is where cp puts copies (conventionally /bin)
	RoleCopyDestination Role = "copy_destination"
)

// Seeder populates a fresh root once, before any command runs
type Seeder interface {
	Populate(root *Directory) error
}

// SeedFunc adapts a plain function to [Seeder]
type SeedFunc func(root *Directory) error

func (f SeedFunc) Populate(root *Directory) error { return f(root) }

// FileSystem owns the node tree and the current directory cursor
type FileSystem struct {
	root      *Directory
	cwd       *Directory // never nil; protected by mu
	mu        sync.RWMutex
	wellKnown *xsync.Map[Role, *Directory]
}

// NewFS creates the root directory and runs seed against it. A nil seed
// leaves the tree empty.
func NewFS(seed Seeder) (*FileSystem, error) {
	logger := util.GetLogger("NewFS")

	root := NewDirectory(RootName)
	fs := &FileSystem{
		root:      root,
		cwd:       root,
		wellKnown: xsync.NewMap[Role, *Directory](),
	}
	if seed != nil {
		if err := seed.Populate(root); err != nil {
			logger.Error().Err(err).Msg("Failed to seed file system")
			return nil, fmt.Errorf("seed file system: %w", err)
		}
	}
	logger.Debug().Int("rootChildren", root.Len()).Msg("File system initialized")
	return fs, nil
}

// Root returns the root directory
func (fs *FileSystem) Root() *Directory {
	return fs.root
}

// CurrentDirectory returns the current working directory
func (fs *FileSystem) CurrentDirectory() *Directory {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.cwd
}

func (fs *FileSystem) setCwd(d *Directory) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.cwd = d
}

// RegisterWellKnown binds role to the directory at absPath
func (fs *FileSystem) RegisterWellKnown(role Role, absPath string) error {
	node, err := fs.Lookup(absPath)
	if err != nil {
		return err
	}
	dir, ok := node.(*Directory)
	if !ok {
		return newError(KindNotADirectory, absPath, "")
	}
	fs.wellKnown.Store(role, dir)
	return nil
}

// WellKnown returns the directory bound to role. The binding is validated on
// every call: a directory that was detached from the tree since registration
// is reported as an Internal error instead of being written into.
func (fs *FileSystem) WellKnown(role Role) (*Directory, error) {
	dir, ok := fs.wellKnown.Load(role)
	if !ok {
		return nil, newError(KindInternal, string(role), "well-known directory not registered")
	}
	if !fs.attached(dir) {
		return nil, newError(KindInternal, string(role), "well-known directory no longer exists")
	}
	return dir, nil
}

// attached reports whether n is reachable from root via parent links
func (fs *FileSystem) attached(n Node) bool {
	var top Node = n
	for p := n.Parent(); p != nil; p = p.Parent() {
		top = p
	}
	return top == Node(fs.root)
}

// Lookup resolves an absolute, slash separated path from root.
// Segments are matched case-insensitively.
func (fs *FileSystem) Lookup(absPath string) (Node, error) {
	var cur Node = fs.root
	for _, seg := range strings.Split(absPath, "/") {
		if seg == "" {
			continue
		}
		dir, ok := cur.(*Directory)
		if !ok {
			return nil, newError(KindNotADirectory, absPath, "")
		}
		child, ok := dir.Child(seg)
		if !ok {
			return nil, newError(KindNoSuchPath, absPath, "")
		}
		cur = child
	}
	return cur, nil
}

// ResolveChild looks up name in the current directory
func (fs *FileSystem) ResolveChild(name string) (Node, bool) {
	return fs.CurrentDirectory().Child(name)
}

// ChangeDirectory moves the cursor. Accepted forms are "..", "/" or "~" for
// root, and the name of a direct child. Trailing slashes are ignored.
// ".." at root is a silent no-op.
func (fs *FileSystem) ChangeDirectory(path string) error {
	logger := util.GetLogger("FS.ChangeDirectory")

	name := strings.TrimRight(path, "/")
	if name == "" || name == "~" {
		fs.setCwd(fs.root)
		return nil
	}

	cwd := fs.CurrentDirectory()
	if name == ".." {
		if parent := cwd.Parent(); parent != nil {
			fs.setCwd(parent)
		}
		return nil
	}

	node, ok := cwd.Child(name)
	if !ok {
		return newError(KindNoSuchPath, path, "")
	}
	switch n := node.(type) {
	case *Directory:
		fs.setCwd(n)
		logger.Trace().Str("cwd", n.Name()).Msg("Changed directory")
		return nil
	case *File:
		return &Error{Kind: KindNotADirectory, Name: path, Target: n}
	default:
		return newError(KindInternal, path, fmt.Sprintf("unhandled node type %T", node))
	}
}

// ReadFile returns the named file in the current directory
func (fs *FileSystem) ReadFile(name string) (*File, error) {
	node, ok := fs.ResolveChild(name)
	if !ok {
		return nil, newError(KindNoSuchFile, name, "")
	}
	switch n := node.(type) {
	case *File:
		return n, nil
	case *Directory:
		return nil, &Error{Kind: KindIsADirectory, Name: name, Target: n}
	default:
		return nil, newError(KindInternal, name, fmt.Sprintf("unhandled node type %T", node))
	}
}

// ListCurrent returns the current directory's children in display order
func (fs *FileSystem) ListCurrent() []Node {
	return fs.CurrentDirectory().Children()
}

// CopyToDirectory copies the named file from the current directory into dest.
// An existing file of the same name in dest is replaced; an existing directory
// is never overwritten. Copying a file onto itself leaves the tree unchanged.
func (fs *FileSystem) CopyToDirectory(name string, dest *Directory) (copied, source *File, err error) {
	logger := util.GetLogger("FS.CopyToDirectory")

	node, ok := fs.ResolveChild(name)
	if !ok {
		return nil, nil, newError(KindNoSuchFile, name, "")
	}
	switch n := node.(type) {
	case *Directory:
		return nil, nil, &Error{Kind: KindCannotCopyDirectory, Name: name, Target: n}
	case *File:
		source = n
	default:
		return nil, nil, newError(KindInternal, name, fmt.Sprintf("unhandled node type %T", node))
	}

	if existing, ok := dest.Child(source.Name()); ok {
		switch e := existing.(type) {
		case *Directory:
			return nil, source, &Error{
				Kind:   KindCannotOverwriteDirectory,
				Name:   DisplayPath(e),
				Target: source,
			}
		case *File:
			if e == source {
				return source, source, nil
			}
			dest.Remove(e.Name())
		default:
			return nil, source, newError(KindInternal, name, fmt.Sprintf("unhandled node type %T", existing))
		}
	}

	copied = NewFile(source.Name(), source.Content())
	if err := dest.Insert(copied); err != nil {
		return nil, source, err
	}
	logger.Debug().Str("name", source.Name()).Str("dest", AbsPath(dest)).Msg("Copied file")
	return copied, source, nil
}

// CopyToWellKnown copies the named file into the directory bound to role
func (fs *FileSystem) CopyToWellKnown(name string, role Role) (copied, source *File, err error) {
	dest, err := fs.WellKnown(role)
	if err != nil {
		return nil, nil, err
	}
	return fs.CopyToDirectory(name, dest)
}

// FindByName searches the whole tree breadth-first from root and returns the
// display path of the first node whose name matches case-insensitively.
// Within a directory children are visited in display order, and every node at
// depth d is checked before any node at depth d+1, so the result only depends
// on the tree's contents. The root itself never matches.
func (fs *FileSystem) FindByName(name string) (string, bool) {
	want := key(name)
	queue := []*Directory{fs.root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		for _, child := range dir.Children() {
			if key(child.Name()) == want {
				return DisplayPath(child), true
			}
			if d, ok := child.(*Directory); ok {
				queue = append(queue, d)
			}
		}
	}
	return "", false
}

// CurrentPath returns the absolute path of the current directory
func (fs *FileSystem) CurrentPath() string {
	return AbsPath(fs.CurrentDirectory())
}

// segments returns the names from the top-most ancestor (excluded) down to n
func segments(n Node) []string {
	var segs []string
	for cur := n; cur.Parent() != nil; cur = cur.Parent() {
		segs = append(segs, cur.Name())
	}
	slices.Reverse(segs)
	return segs
}

// AbsPath returns "/" for root and "/a/b" for nested nodes
func AbsPath(n Node) string {
	return "/" + strings.Join(segments(n), "/")
}

// DisplayPath is AbsPath with a trailing "/" on directories
func DisplayPath(n Node) string {
	p := AbsPath(n)
	if n.Type() == DirNodeType && p != "/" {
		p += "/"
	}
	return p
}
