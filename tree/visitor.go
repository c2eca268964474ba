package tree

import (
	"errors"
)

// SkipChildren may be returned by a VisitFunc to skip visiting node children.
// Visitor.Visit does not return it.
var SkipChildren = errors.New("skip children")

// VisitFunc is called on entering or leaving a node.
type VisitFunc func(n Node) error

// Visitor calls functions keyed by node type name for each node of a tree, depth-first.
// Children list is copied before visiting, so functions may mutate the tree.
type Visitor struct {
	enter map[string]VisitFunc
	leave map[string]VisitFunc

	// Generic is called on entering nodes having no type-specific enter function, may be nil.
	Generic VisitFunc
}

func NewVisitor() *Visitor {
	return &Visitor{
		enter: make(map[string]VisitFunc),
		leave: make(map[string]VisitFunc),
	}
}

// On sets the function called before visiting children of nodes with given type name.
func (v *Visitor) On(typeName string, f VisitFunc) *Visitor {
	v.enter[typeName] = f
	return v
}

// OnLeave sets the function called after visiting children of nodes with given type name.
// It is not called if children were skipped.
func (v *Visitor) OnLeave(typeName string, f VisitFunc) *Visitor {
	v.leave[typeName] = f
	return v
}

// Visit visits n and its descendants. Stops at the first error other than SkipChildren.
func (v *Visitor) Visit(n Node) error {
	name := n.TypeName()
	f := v.enter[name]
	if f == nil {
		f = v.Generic
	}
	if f != nil {
		e := f(n)
		if errors.Is(e, SkipChildren) {
			return nil
		}
		if e != nil {
			return e
		}
	}

	for _, c := range n.Children() {
		if e := v.Visit(c); e != nil {
			return e
		}
	}

	if f = v.leave[name]; f != nil {
		if e := f(n); e != nil && !errors.Is(e, SkipChildren) {
			return e
		}
	}
	return nil
}
