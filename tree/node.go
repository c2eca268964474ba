// Package tree contains node types, the resolve loop, and tree mutation and inspection functions.
//
// Nodes are stored in a Tree arena and referenced by Node handles. A node has a type,
// a list of consumed items, an ordered list of children, at most one parent, and attributes.
// Detached nodes stay in the arena until the Tree is discarded.
package tree

import (
	"fmt"

	"github.com/ava12/tater"
	"github.com/ava12/tater/kind"
	"github.com/ava12/tater/lexer"
	"github.com/ava12/tater/source"
)

const noParent = -1

type nodeRec struct {
	typ      *Type
	items    []lexer.Item
	children []int
	parent   int
	attrs    map[string]any
}

// Tree is a node arena bound to a single source text. Tree is not safe for concurrent use.
type Tree struct {
	src   *source.Source
	nodes []nodeRec
}

// NewTree creates an empty arena for nodes built from src.
func NewTree(src *source.Source) *Tree {
	return &Tree{src: src}
}

// Source returns the text node items refer to.
func (t *Tree) Source() *source.Source {
	return t.src
}

// Size returns the number of nodes ever created in the tree, including detached ones.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// New creates a detached node.
func (t *Tree) New(typ *Type, items ...lexer.Item) Node {
	if typ == nil {
		panic("tree: nil node type")
	}

	t.nodes = append(t.nodes, nodeRec{
		typ:    typ,
		items:  append([]lexer.Item(nil), items...),
		parent: noParent,
	})
	return Node{t, len(t.nodes) - 1}
}

// Node is a handle to a node stored in a Tree. Zero Node is invalid and is used as "no node".
// Nodes are comparable.
type Node struct {
	tree  *Tree
	index int
}

func (n Node) rec() *nodeRec {
	return &n.tree.nodes[n.index]
}

func (n Node) at(i int) Node {
	if i == noParent {
		return Node{}
	}
	return Node{n.tree, i}
}

// IsValid tells whether n refers to a node.
func (n Node) IsValid() bool {
	return n.tree != nil
}

// Tree returns the arena n is stored in.
func (n Node) Tree() *Tree {
	return n.tree
}

// Type returns node type.
func (n Node) Type() *Type {
	return n.rec().typ
}

// TypeName returns node type name.
func (n Node) TypeName() string {
	return n.rec().typ.name
}

// Is tells whether node type is typ or inherits from it.
func (n Node) Is(typ *Type) bool {
	return n.rec().typ.IsA(typ)
}

func (n Node) String() string {
	if !n.IsValid() {
		return "<nil>"
	}

	r := n.rec()
	texts := make([]string, len(r.items))
	for i, item := range r.items {
		texts[i] = item.Text(n.tree.src)
	}
	return fmt.Sprintf("%s%q", r.typ.name, texts)
}

// Items returns items consumed by the node.
func (n Node) Items() []lexer.Item {
	return n.rec().items
}

// Extend appends items to the node and returns the node.
func (n Node) Extend(items ...lexer.Item) Node {
	r := n.rec()
	r.items = append(r.items, items...)
	return n
}

// First returns the first item of the node.
func (n Node) First() (lexer.Item, bool) {
	items := n.rec().items
	if len(items) == 0 {
		return lexer.Item{}, false
	}
	return items[0], true
}

// FirstKind returns the kind of the first item or kind.Token if there are no items.
func (n Node) FirstKind() kind.Kind {
	item, _ := n.First()
	return item.Kind
}

// FirstText returns the text of the first item or empty string if there are no items.
func (n Node) FirstText() string {
	item, valid := n.First()
	if !valid {
		return ""
	}
	return n.Text(item)
}

// Text returns item text.
func (n Node) Text(item lexer.Item) string {
	return item.Text(n.tree.src)
}

// Pos returns the position of the first item or of the first item found in descendants.
func (n Node) Pos() (source.Pos, bool) {
	var result source.Pos
	found := false
	n.Walk(WalkLtr, func(nn Node) (bool, bool) {
		if found {
			return false, false
		}
		if item, valid := nn.First(); valid {
			result = n.tree.src.Pos(item.Start)
			found = true
			return false, false
		}
		return true, true
	})
	return result, found
}

// Span returns byte offsets covering all items of n and its descendants.
func (n Node) Span() (start, end int, found bool) {
	for _, nn := range n.DepthFirst() {
		for _, item := range nn.Items() {
			if !found || item.Start < start {
				start = item.Start
			}
			if !found || item.End > end {
				end = item.End
			}
			found = true
		}
	}
	return
}

// Set sets node attribute and returns the node.
func (n Node) Set(key string, value any) Node {
	r := n.rec()
	if r.attrs == nil {
		r.attrs = make(map[string]any)
	}
	r.attrs[key] = value
	return n
}

// Get returns node attribute.
func (n Node) Get(key string) (any, bool) {
	v, has := n.rec().attrs[key]
	return v, has
}

// Attrs returns attribute map, nil if none were set.
func (n Node) Attrs() map[string]any {
	return n.rec().attrs
}

// Parent returns parent node or zero Node.
func (n Node) Parent() Node {
	return n.at(n.rec().parent)
}

// Root returns the topmost ancestor or n itself.
func (n Node) Root() Node {
	for {
		p := n.rec().parent
		if p == noParent {
			return n
		}
		n.index = p
	}
}

// Ancestors returns ancestors from parent to root.
func (n Node) Ancestors() []Node {
	var result []Node
	for p := n.Parent(); p.IsValid(); p = p.Parent() {
		result = append(result, p)
	}
	return result
}

// Ancestor returns n for level -1, parent for level 0, grandparent for level 1 and so on,
// or zero Node if there is no such ancestor.
func (n Node) Ancestor(level int) Node {
	for n.IsValid() && level >= 0 {
		n = n.Parent()
		level--
	}
	return n
}

// Depth returns the number of ancestors.
func (n Node) Depth() (l int) {
	for p := n.rec().parent; p != noParent; p = n.tree.nodes[p].parent {
		l++
	}
	return
}

// Len returns the number of children.
func (n Node) Len() int {
	return len(n.rec().children)
}

// Children returns a copy of the child list.
func (n Node) Children() []Node {
	cs := n.rec().children
	result := make([]Node, len(cs))
	for i, c := range cs {
		result[i] = Node{n.tree, c}
	}
	return result
}

// Child returns i-th child, negative i counts from the end (-1 is the last child).
// Returns zero Node if there is no such child.
func (n Node) Child(i int) Node {
	cs := n.rec().children
	if i < 0 {
		i += len(cs)
	}
	if i < 0 || i >= len(cs) {
		return Node{}
	}
	return Node{n.tree, cs[i]}
}

// Index returns the position of n in its parent's child list or -1 for a root.
func (n Node) Index() int {
	p := n.rec().parent
	if p == noParent {
		return -1
	}

	for i, c := range n.tree.nodes[p].children {
		if c == n.index {
			return i
		}
	}
	panic("tree: broken parent link")
}

// Sibling returns the node i positions after n (before n for negative i) or zero Node.
func (n Node) Sibling(i int) Node {
	index := n.Index()
	if index < 0 {
		if i == 0 {
			return n
		}
		return Node{}
	}

	index += i
	if index < 0 {
		return Node{}
	}
	return n.Parent().Child(index)
}

// NextSibling returns the following sibling or zero Node.
func (n Node) NextSibling() Node {
	return n.Sibling(1)
}

// PrevSibling returns the preceding sibling or zero Node.
func (n Node) PrevSibling() Node {
	return n.Sibling(-1)
}

// FollowingSiblings returns siblings after n, nearest first.
func (n Node) FollowingSiblings() []Node {
	index := n.Index()
	if index < 0 {
		return nil
	}
	return n.Parent().Children()[index+1:]
}

// PrecedingSiblings returns siblings before n, nearest first.
func (n Node) PrecedingSiblings() []Node {
	index := n.Index()
	if index < 0 {
		return nil
	}

	cs := n.Parent().Children()[:index]
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
	return cs
}

// Find returns n and its descendants having given type name in depth-first order.
func (n Node) Find(typeName string) []Node {
	var result []Node
	n.Walk(WalkLtr, func(nn Node) (bool, bool) {
		if nn.TypeName() == typeName {
			result = append(result, nn)
		}
		return true, true
	})
	return result
}

// FindOne returns the first node found by Find or zero Node.
func (n Node) FindOne(typeName string) Node {
	var result Node
	n.Walk(WalkLtr, func(nn Node) (bool, bool) {
		if result.IsValid() {
			return false, false
		}
		if nn.TypeName() == typeName {
			result = nn
			return false, false
		}
		return true, true
	})
	return result
}

func (n Node) checkSameTree(other Node) {
	if n.tree != other.tree {
		panic(tater.FormatError(ErrForeignType, "node %s belongs to another tree", other))
	}
}
