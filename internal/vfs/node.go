package vfs

import "sort"

// Kind tells directories and files apart in listings
type Kind int

const (
	KindDir Kind = iota
	KindFile
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// Node is either a *Dir or a *File
type Node interface {
	Kind() Kind
	node()
}

// Dir owns its children exclusively
type Dir struct {
	children map[string]Node
}

// File holds a declared size and its content
type File struct {
	Size    int64
	Content []byte
}

func newDir() *Dir {
	return &Dir{children: make(map[string]Node)}
}

func (*Dir) Kind() Kind  { return KindDir }
func (*Dir) node()       {}
func (*File) Kind() Kind { return KindFile }
func (*File) node()      {}

// Len returns the number of children
func (d *Dir) Len() int {
	return len(d.children)
}

// Child looks up a direct child by name
func (d *Dir) Child(name string) (Node, bool) {
	n, ok := d.children[name]
	return n, ok
}

// Names returns child names in lexical order
func (d *Dir) Names() []string {
	names := make([]string, 0, len(d.children))
	for name := range d.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
