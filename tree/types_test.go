package tree

import (
	"slices"
	"testing"

	"github.com/ava12/tater"
	"github.com/ava12/tater/dispatch"
	. "github.com/ava12/tater/internal/test"
	"github.com/ava12/tater/kind"
	"github.com/ava12/tater/lexer"
	"github.com/ava12/tater/source"
)

var (
	kA   = kind.Of("A")
	kB   = kind.Of("B")
	kC   = kind.Of("C")
	kD   = kind.Of("D")
	kLit = kind.Of("Literal")
)

func named(name string) Handler {
	return func(n Node, items []lexer.Item) (Node, error) {
		return n.Set("handler", name), nil
	}
}

// anyKind is a matcher type dispatch tables do not support.
type anyKind []kind.Kind

func (m anyKind) Match(item lexer.Item, _ *source.Source) bool {
	return slices.Contains(m, item.Kind)
}

func handlerNames(t *Type) []string {
	var result []string
	for _, e := range t.Entries() {
		result = append(result, e.Sig.String())
	}
	return result
}

func TestInheritance(t *testing.T) {
	reg := NewRegistry()
	base := reg.NewType("Base").
		OnSeq(named("base-a"), kA).
		OnSeq(named("base-b"), kB).
		OnSubtype(named("base-lit"), kLit)
	mixin := reg.NewType("Mixin").
		OnSeq(named("mixin-c"), kC).
		OnSeq(named("mixin-a"), kA)
	child := reg.NewType("Child", base, mixin).
		OnSeq(named("child-b"), kB)
	ExpectNoError(t, reg.Build())

	Expect(t, len(child.Entries()) == 4, 4, handlerNames(child))
	samples := map[string]dispatch.Signature{
		"child-b":  dispatch.Kinds(kB),
		"base-a":   dispatch.Kinds(kA),
		"base-lit": dispatch.Subtype(kLit),
		"mixin-c":  dispatch.Kinds(kC),
	}
	for i, e := range child.Entries() {
		tr := NewTree(nil)
		n, _ := e.Handler(tr.New(child), nil)
		name, _ := n.Get("handler")
		Assert(t, samples[name.(string)].Equal(e.Sig), "entry #%d: unexpected handler %s for %s", i, name, e.Sig)
	}

	Assert(t, child.IsA(base) && child.IsA(mixin) && child.IsA(child), "expecting child to be base and mixin")
	Assert(t, !base.IsA(child), "base must not be child")
	ExpectBool(t, true, reg.IsBuilt())
}

func TestBuildErrors(t *testing.T) {
	reg := NewRegistry()
	reg.NewType("X").OnSeq(named("1"), kA, kB).OnSeq(named("2"), kA, kB)
	e := reg.Build()
	ExpectErrorCode(t, ErrDuplicateHandler, e)
	Assert(t, tater.IsConfigurationError(e), "expecting configuration error")
	ExpectBool(t, false, reg.IsBuilt())

	reg = NewRegistry()
	reg.NewType("X").OnSeq(named("1"))
	ExpectErrorCode(t, dispatch.ErrEmptySignature, reg.Build())

	reg = NewRegistry()
	reg.NewType("X").
		On(dispatch.Seq(anyKind{kA, kB}), named("1")).
		On(dispatch.Seq(anyKind{kA, kB}), named("2"))
	e = reg.Build()
	ExpectErrorCode(t, dispatch.ErrBadMatcher, e)
	Assert(t, tater.IsConfigurationError(e), "expecting configuration error")

	other := NewRegistry()
	foreign := other.NewType("Foreign")
	reg = NewRegistry()
	reg.NewType("X", foreign)
	e = reg.Build()
	ExpectErrorCode(t, ErrForeignType, e)
	Assert(t, tater.IsConfigurationError(e), "expecting configuration error")
}

func TestLookup(t *testing.T) {
	reg := NewRegistry()
	x := reg.NewType("X")
	reg.NewType("Y")
	reg.NewType("Y")

	found, e := reg.Lookup("X")
	ExpectNoError(t, e)
	Assert(t, found == x, "expecting X")

	_, e = reg.Lookup("Z")
	ExpectErrorCode(t, ErrUnknownType, e)
	Assert(t, tater.IsConfigurationError(e), "expecting configuration error")

	_, e = reg.Lookup("Y")
	ExpectErrorCode(t, ErrAmbiguousName, e)
	Assert(t, tater.IsAmbiguousNodeName(e), "expecting ambiguous name error")
	Assert(t, !tater.IsConfigurationError(e), "ambiguous name is not a configuration error")
	ExpectInt(t, 3, len(reg.Types()))
}

func TestFrozen(t *testing.T) {
	reg := NewRegistry()
	x := reg.NewType("X").OnSeq(named("x"), kA)
	reg.MustBuild()

	defer func() {
		r := recover()
		e, isError := r.(error)
		Assert(t, isError, "expecting error panic, got %v", r)
		ExpectErrorCode(t, ErrFrozen, e)
	}()
	x.OnSeq(named("y"), kB)
}
