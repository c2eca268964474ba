package tree

import (
	"slices"

	"github.com/ava12/tater"
	"github.com/ava12/tater/lexer"
)

// Append makes child the last child of n, detaching it from its former parent.
// Panics if child is n or its ancestor.
func (n Node) Append(child Node) Node {
	return n.Insert(n.Len(), child)
}

// Insert makes child the i-th child of n, detaching it from its former parent.
// Negative i counts from the end, -1 inserts before the last child.
// Panics if child is n or its ancestor.
func (n Node) Insert(i int, child Node) Node {
	n.checkSameTree(child)
	for a := n; a.IsValid(); a = a.Parent() {
		if a == child {
			panic(tater.FormatError(ErrCycle, "cannot make %s a descendant of itself", child))
		}
	}

	child.Detach()
	r := n.rec()
	if i < 0 {
		i += len(r.children)
	}
	i = max(0, min(i, len(r.children)))
	r.children = slices.Insert(r.children, i, child.index)
	child.rec().parent = n.index
	return child
}

// Detach removes n from its parent's child list. Does nothing for a root.
func (n Node) Detach() Node {
	r := n.rec()
	if r.parent == noParent {
		return n
	}

	p := &n.tree.nodes[r.parent]
	i := slices.Index(p.children, n.index)
	p.children = slices.Delete(p.children, i, i+1)
	r.parent = noParent
	return n
}

// Descend creates a node of type typ as the last child of n and returns it.
func (n Node) Descend(typ *Type, items ...lexer.Item) Node {
	return n.Append(n.tree.New(typ, items...))
}

// DescendPath descends along the given types and returns the deepest node.
func (n Node) DescendPath(types ...*Type) Node {
	for _, t := range types {
		n = n.Descend(t)
	}
	return n
}

// Ascend creates a node of type typ, puts it in place of n, makes n its only child, and returns it.
func (n Node) Ascend(typ *Type, items ...lexer.Item) Node {
	parent := n.tree.New(typ, items...)
	if p := n.Parent(); p.IsValid() {
		p.Insert(n.Index(), parent)
	}
	parent.Append(n)
	return parent
}

// Swap reinterprets n: a new node of type typ takes the place of n in its parent and n becomes its child.
// Same as Ascend.
func (n Node) Swap(typ *Type, items ...lexer.Item) Node {
	return n.Ascend(typ, items...)
}

// Replace puts a new node of type typ in place of n and returns it.
// If transfer is true, children of n are moved to the new node.
func (n Node) Replace(typ *Type, transfer bool, items ...lexer.Item) Node {
	return n.ReplaceWith(n.tree.New(typ, items...), transfer)
}

// ReplaceWith puts node in place of n, detaching it from its former parent, and returns it.
// If transfer is true, children of n are appended to node.
func (n Node) ReplaceWith(node Node, transfer bool) Node {
	n.checkSameTree(node)
	if node == n {
		return n
	}

	if p := n.Parent(); p.IsValid() {
		if node.IsAncestorOf(p) {
			panic(tater.FormatError(ErrCycle, "cannot replace %s with its ancestor %s", n, node))
		}
		node.Detach()
		i := n.Index()
		n.Detach()
		p.Insert(i, node)
	} else {
		node.Detach()
	}

	if transfer {
		for _, c := range n.Children() {
			if c != node {
				node.Append(c)
			}
		}
	}
	return node
}

// IsAncestorOf tells whether n is other or its ancestor.
func (n Node) IsAncestorOf(other Node) bool {
	for ; other.IsValid(); other = other.Parent() {
		if other == n {
			return true
		}
	}
	return false
}
