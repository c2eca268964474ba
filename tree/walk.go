package tree

import (
	"github.com/ava12/tater/kind"
)

// NodeVisitor is called for each walked node.
// walkChildren false skips node children, walkSiblings false skips following siblings of the node.
type NodeVisitor func(n Node) (walkChildren, walkSiblings bool)

// WalkMode selects child order.
type WalkMode int

const (
	WalkLtr WalkMode = 0
	WalkRtl WalkMode = 1
)

// Walk visits n and its descendants depth-first.
func (n Node) Walk(mode WalkMode, visitor NodeVisitor) {
	if n.IsValid() {
		visitNode(n, visitor, (mode&WalkRtl) != 0)
	}
}

func visitNode(n Node, v NodeVisitor, rtl bool) (visitSiblings bool) {
	vc, vs := v(n)
	if !vc {
		return vs
	}

	cs := n.Children()
	if rtl {
		for i := len(cs) - 1; i >= 0 && vc; i-- {
			vc = visitNode(cs[i], v, true)
		}
	} else {
		for i := 0; i < len(cs) && vc; i++ {
			vc = visitNode(cs[i], v, false)
		}
	}

	return vs
}

// DepthFirst returns n and all its descendants in depth-first order.
func (n Node) DepthFirst() []Node {
	var result []Node
	n.Walk(WalkLtr, func(nn Node) (bool, bool) {
		result = append(result, nn)
		return true, true
	})
	return result
}

type NodeFilter func(n Node) bool
type NodeExtractor func(n Node) []Node

type NodeSelector func(n Node) []Node

// Selector is a chain of node selectors applied to each input node in turn.
type Selector struct {
	selectors []NodeSelector
}

func NewSelector() *Selector {
	return &Selector{}
}

// Apply returns unique nodes selected from input, in order of appearance.
func (s *Selector) Apply(input ...Node) []Node {
	res := make([]Node, 0)
	index := make(map[Node]bool)
	hasTransformers := len(s.selectors) > 0

	for i, n := range input {
		if !n.IsValid() {
			continue
		}

		var ns []Node
		if hasTransformers {
			ns = selectNodes(input[i:i+1], s.selectors)
		} else {
			ns = input[i : i+1]
		}

		for _, tn := range ns {
			if !index[tn] {
				index[tn] = true
				res = append(res, tn)
			}
		}
	}

	return res
}

func selectNodes(ns []Node, nss []NodeSelector) []Node {
	res := make([]Node, 0)
	s := nss[0]
	nss = nss[1:]
	goDeeper := len(nss) > 0
	for _, n := range ns {
		if goDeeper {
			res = append(res, selectNodes(s(n), nss)...)
		} else {
			res = append(res, s(n)...)
		}
	}
	return res
}

func (s *Selector) Use(ns NodeSelector) *Selector {
	if ns != nil {
		s.selectors = append(s.selectors, ns)
	}
	return s
}

func (s *Selector) Filter(nf NodeFilter) *Selector {
	return s.Use(func(n Node) []Node {
		if nf(n) {
			return []Node{n}
		}
		return nil
	})
}

func (s *Selector) Extract(ne NodeExtractor) *Selector {
	return s.Use(func(n Node) []Node {
		return ne(n)
	})
}

// Search selects descendants (including the node itself) matching nf.
// If deepSearch is false, descendants of matched nodes are not searched.
func (s *Selector) Search(nf NodeFilter, deepSearch bool) *Selector {
	return s.Use(func(n Node) []Node {
		res := make([]Node, 0)
		visitNode(n, func(nn Node) (vc, vs bool) {
			if nf(nn) {
				res = append(res, nn)
				return deepSearch, true
			}
			return true, true
		}, false)
		return res
	})
}

func IsNot(f NodeFilter) NodeFilter {
	return func(n Node) bool {
		return !f(n)
	}
}

func IsAny(fs ...NodeFilter) NodeFilter {
	return func(n Node) bool {
		for _, f := range fs {
			if f(n) {
				return true
			}
		}
		return false
	}
}

func IsAll(fs ...NodeFilter) NodeFilter {
	return func(n Node) bool {
		for _, f := range fs {
			if !f(n) {
				return false
			}
		}
		return true
	}
}

// IsA matches nodes by type name.
func IsA(names ...string) NodeFilter {
	return func(n Node) bool {
		tn := n.TypeName()
		for _, name := range names {
			if tn == name {
				return true
			}
		}
		return false
	}
}

// IsOfType matches nodes of given types or their descendant types.
func IsOfType(types ...*Type) NodeFilter {
	return func(n Node) bool {
		for _, t := range types {
			if n.Is(t) {
				return true
			}
		}
		return false
	}
}

// HasFirstKind matches nodes whose first item kind is a subkind of any of given kinds.
func HasFirstKind(kinds ...kind.Kind) NodeFilter {
	return func(n Node) bool {
		item, valid := n.First()
		if !valid {
			return false
		}
		for _, k := range kinds {
			if item.Kind.IsA(k) {
				return true
			}
		}
		return false
	}
}

// HasFirstText matches nodes whose first item text is one of texts.
func HasFirstText(texts ...string) NodeFilter {
	return func(n Node) bool {
		item, valid := n.First()
		if !valid {
			return false
		}
		t := n.Text(item)
		for _, text := range texts {
			if text == t {
				return true
			}
		}
		return false
	}
}

func Any(nss ...NodeExtractor) NodeExtractor {
	return func(n Node) (res []Node) {
		for _, ns := range nss {
			res = ns(n)
			if len(res) > 0 {
				break
			}
		}
		return
	}
}

func All(nss ...NodeExtractor) NodeExtractor {
	return func(n Node) (res []Node) {
		for _, ns := range nss {
			res = append(res, ns(n)...)
		}
		return
	}
}

func Ancestors(levels ...int) NodeExtractor {
	return func(n Node) []Node {
		res := make([]Node, 0)
		for _, i := range levels {
			nn := n.Ancestor(i)
			if nn.IsValid() {
				res = append(res, nn)
			}
		}
		return res
	}
}

func NthChildren(indexes ...int) NodeExtractor {
	return func(n Node) []Node {
		res := make([]Node, 0)
		for _, i := range indexes {
			nn := n.Child(i)
			if nn.IsValid() {
				res = append(res, nn)
			}
		}
		return res
	}
}

func NthSiblings(indexes ...int) NodeExtractor {
	return func(n Node) []Node {
		res := make([]Node, 0)
		for _, i := range indexes {
			nn := n.Sibling(i)
			if nn.IsValid() {
				res = append(res, nn)
			}
		}
		return res
	}
}
