package tree

import (
	"github.com/ava12/tater"
	"github.com/ava12/tater/dispatch"
	"github.com/ava12/tater/kind"
	"github.com/ava12/tater/lexer"
	"github.com/ava12/tater/stream"
)

// Error codes used when declaring node types:
const (
	// ErrUnknownType indicates that Lookup found no type with given name.
	ErrUnknownType = tater.NodeErrors + iota

	// ErrDuplicateHandler indicates two handlers with equal signatures declared on the same type.
	ErrDuplicateHandler

	// ErrForeignType indicates a base type or node type from another registry or tree.
	ErrForeignType

	// ErrNotBuilt indicates a type used for parsing before Registry.Build was called.
	ErrNotBuilt

	// ErrFrozen indicates a handler added after Registry.Build.
	ErrFrozen

	// ErrCycle indicates an attempt to make a node a descendant of itself.
	ErrCycle

	// ErrAmbiguousName indicates that Lookup found several types with given name.
	ErrAmbiguousName = tater.AmbiguousNameError
)

// Handler is called with the node that matched and the items it consumed.
// Returned node becomes the current node.
type Handler func(n Node, items []lexer.Item) (Node, error)

// Type is a node type: a name, base types, and handlers. Handlers of base types are inherited
// unless the type declares a handler with equal signature.
type Type struct {
	name    string
	reg     *Registry
	bases   []*Type
	entries []dispatch.Entry[Handler]
	table   *dispatch.Table[Handler]
	merged  []dispatch.Entry[Handler]
}

// Name returns type name.
func (t *Type) Name() string {
	return t.name
}

func (t *Type) String() string {
	return t.name
}

// Bases returns direct base types.
func (t *Type) Bases() []*Type {
	return t.bases
}

// Registry returns the registry the type belongs to.
func (t *Type) Registry() *Registry {
	return t.reg
}

// IsA tells whether t is other or inherits from it.
func (t *Type) IsA(other *Type) bool {
	if t == other {
		return true
	}

	for _, b := range t.bases {
		if b.IsA(other) {
			return true
		}
	}
	return false
}

// On adds a handler. Panics if the registry is already built.
func (t *Type) On(sig dispatch.Signature, h Handler) *Type {
	if t.reg.built {
		panic(tater.FormatError(ErrFrozen, "cannot add handler %s to built type %s", sig, t.name))
	}

	t.entries = append(t.entries, dispatch.Entry[Handler]{Sig: sig, Handler: h})
	return t
}

// OnSeq adds a handler for exact sequence of kinds.
func (t *Type) OnSeq(h Handler, kinds ...kind.Kind) *Type {
	return t.On(dispatch.Kinds(kinds...), h)
}

// OnText adds a handler for exact sequence of (kind, text) pairs.
func (t *Type) OnText(h Handler, matchers ...stream.TextMatcher) *Type {
	ms := make([]stream.Matcher, len(matchers))
	for i, m := range matchers {
		ms[i] = m
	}
	return t.On(dispatch.Seq(ms...), h)
}

// OnSubtype adds a handler for a single item of kind k or any of its subkinds.
func (t *Type) OnSubtype(h Handler, k kind.Kind) *Type {
	return t.On(dispatch.Subtype(k), h)
}

// Entries returns effective handler entries, own first. Empty until the registry is built.
func (t *Type) Entries() []dispatch.Entry[Handler] {
	return t.merged
}

// Registry is a closed set of node types.
type Registry struct {
	types  []*Type
	byName map[string][]*Type
	built  bool
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string][]*Type)}
}

// NewType declares a type. Bases must belong to the same registry, this is checked by Build.
func (r *Registry) NewType(name string, bases ...*Type) *Type {
	if r.built {
		panic(tater.FormatError(ErrFrozen, "cannot add type %s to built registry", name))
	}

	t := &Type{name: name, reg: r, bases: bases}
	r.types = append(r.types, t)
	r.byName[name] = append(r.byName[name], t)
	return t
}

// Types returns all types in declaration order.
func (r *Registry) Types() []*Type {
	return r.types
}

// IsBuilt tells whether Build succeeded.
func (r *Registry) IsBuilt() bool {
	return r.built
}

// Lookup returns the only type with given name.
func (r *Registry) Lookup(name string) (*Type, error) {
	ts := r.byName[name]
	switch len(ts) {
	case 0:
		return nil, tater.FormatError(ErrUnknownType, "unknown node type %s", name)
	case 1:
		return ts[0], nil
	default:
		return nil, tater.FormatError(ErrAmbiguousName, "%d node types named %s", len(ts), name)
	}
}

// MustLookup is like Lookup but panics on error.
func (r *Registry) MustLookup(name string) *Type {
	t, e := r.Lookup(name)
	if e != nil {
		panic(e)
	}
	return t
}

// Build merges inherited handlers and compiles dispatch tables of all types.
// Registry is frozen after successful Build.
func (r *Registry) Build() error {
	if r.built {
		return nil
	}

	done := make(map[*Type]bool, len(r.types))
	for _, t := range r.types {
		if e := r.merge(t, done); e != nil {
			return e
		}
	}

	for _, t := range r.types {
		table, e := dispatch.Build(t.merged)
		if e != nil {
			return e
		}
		t.table = table
	}

	r.built = true
	return nil
}

// MustBuild is like Build but panics on error.
func (r *Registry) MustBuild() *Registry {
	if e := r.Build(); e != nil {
		panic(e)
	}
	return r
}

func (r *Registry) merge(t *Type, done map[*Type]bool) error {
	if done[t] {
		return nil
	}

	merged := make([]dispatch.Entry[Handler], 0, len(t.entries))
	for _, e := range t.entries {
		if hasSignature(merged, e.Sig) {
			return tater.FormatError(ErrDuplicateHandler, "duplicate handler %s on type %s", e.Sig, t.name)
		}
		merged = append(merged, e)
	}

	for _, b := range t.bases {
		if b.reg != r {
			return tater.FormatError(ErrForeignType, "type %s: base type %s belongs to another registry", t.name, b.name)
		}
		if e := r.merge(b, done); e != nil {
			return e
		}
		for _, e := range b.merged {
			if !hasSignature(merged, e.Sig) {
				merged = append(merged, e)
			}
		}
	}

	t.merged = merged
	done[t] = true
	return nil
}

func hasSignature(entries []dispatch.Entry[Handler], sig dispatch.Signature) bool {
	for _, e := range entries {
		if e.Sig.Equal(sig) {
			return true
		}
	}
	return false
}
