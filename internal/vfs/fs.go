// internal/vfs/fs.go
package vfs

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrNotFound     = errors.New("no such file or directory")
	ErrNotDirectory = errors.New("not a directory")
	ErrIsDirectory  = errors.New("is a directory")
)

// Entry is one row of a directory listing
type Entry struct {
	Kind Kind
	Name string
	Size int64 // Only meaningful for files
}

// SizeString renders the size column, "-" for directories
func (e Entry) SizeString() string {
	if e.Kind == KindDir {
		return "-"
	}
	return strconv.FormatInt(e.Size, 10)
}

// FS is an in-memory tree with a current working path
type FS struct {
	mu   sync.RWMutex
	root *Dir
	cwd  string
}

// New creates a filesystem seeded with the standard top-level layout
func New() *FS {
	root := newDir()
	for _, name := range []string{"bin", "etc", "home", "usr", "var", "tmp", "dev"} {
		root.children[name] = newDir()
	}

	content := []byte("KERNEL_MODE=protected\n")
	root.children["etc"].(*Dir).children["config.sys"] = &File{
		Size:    256,
		Content: content,
	}

	return &FS{root: root, cwd: "/"}
}

// Pwd returns the current working path
func (fs *FS) Pwd() string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.cwd
}

// Abs turns p into a cleaned absolute path. Empty p means the current path.
func (fs *FS) Abs(p string) string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.abs(p)
}

func (fs *FS) abs(p string) string {
	if p == "" {
		return fs.cwd
	}
	if !strings.HasPrefix(p, "/") {
		p = fs.cwd + "/" + p
	}
	return path.Clean(p)
}

// Resolve walks p from the root. p may be relative to the current path.
func (fs *FS) Resolve(p string) (Node, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.resolve(fs.abs(p))
}

func (fs *FS) resolve(abs string) (Node, bool) {
	if abs == "/" {
		return fs.root, true
	}

	var current Node = fs.root
	for _, part := range strings.Split(strings.Trim(abs, "/"), "/") {
		dir, ok := current.(*Dir)
		if !ok {
			return nil, false
		}
		child, ok := dir.children[part]
		if !ok {
			return nil, false
		}
		current = child
	}
	return current, true
}

func (fs *FS) resolveDir(abs string) (*Dir, error) {
	n, ok := fs.resolve(abs)
	if !ok {
		return nil, ErrNotFound
	}
	dir, ok := n.(*Dir)
	if !ok {
		return nil, ErrNotDirectory
	}
	return dir, nil
}

// List returns the entries of a directory sorted by name.
// A missing path or a file yields an empty listing.
func (fs *FS) List(p string) []Entry {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	dir, err := fs.resolveDir(fs.abs(p))
	if err != nil {
		return []Entry{}
	}

	entries := make([]Entry, 0, dir.Len())
	for _, name := range dir.Names() {
		switch child := dir.children[name].(type) {
		case *Dir:
			entries = append(entries, Entry{Kind: KindDir, Name: name})
		case *File:
			entries = append(entries, Entry{Kind: KindFile, Name: name, Size: child.Size})
		}
	}
	return entries
}

// Mkdir creates an empty directory called name inside p
func (fs *FS) Mkdir(name, p string) bool {
	return fs.create(name, p, func() Node { return newDir() })
}

// Touch creates an empty file called name inside p
func (fs *FS) Touch(name, p string) bool {
	return fs.create(name, p, func() Node { return &File{Content: []byte{}} })
}

func (fs *FS) create(name, p string, mk func() Node) bool {
	if !ValidName(name) {
		return false
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir, err := fs.resolveDir(fs.abs(p))
	if err != nil {
		return false
	}
	if _, exists := dir.children[name]; exists {
		return false
	}
	dir.children[name] = mk()
	return true
}

// Exists reports whether name is a child of the directory at p
func (fs *FS) Exists(name, p string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	dir, err := fs.resolveDir(fs.abs(p))
	if err != nil {
		return false
	}
	_, ok := dir.children[name]
	return ok
}

// ValidName reports whether name can be used for a new node
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.Contains(name, "/")
}

// Chdir changes the current path to p
func (fs *FS) Chdir(p string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	abs := fs.abs(p)
	if _, err := fs.resolveDir(abs); err != nil {
		return fmt.Errorf("cd %s: %w", p, err)
	}
	fs.cwd = abs
	return nil
}

// ReadFile returns a copy of the content of the file at p
func (fs *FS) ReadFile(p string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, ok := fs.resolve(fs.abs(p))
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	switch node := n.(type) {
	case *File:
		out := make([]byte, len(node.Content))
		copy(out, node.Content)
		return out, nil
	case *Dir:
		return nil, fmt.Errorf("%s: %w", p, ErrIsDirectory)
	default:
		panic(fmt.Sprintf("vfs: unexpected node type %T", n))
	}
}

// Walk visits every node under p depth-first in name order.
// The starting node itself is not visited.
func (fs *FS) Walk(p string, fn func(depth int, name string, n Node)) error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	dir, err := fs.resolveDir(fs.abs(p))
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	walk(dir, 0, fn)
	return nil
}

func walk(dir *Dir, depth int, fn func(int, string, Node)) {
	for _, name := range dir.Names() {
		child := dir.children[name]
		fn(depth, name, child)
		if sub, ok := child.(*Dir); ok {
			walk(sub, depth+1, fn)
		}
	}
}
