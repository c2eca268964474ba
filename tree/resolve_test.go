package tree

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/ava12/tater"
	"github.com/ava12/tater/grammar"
	. "github.com/ava12/tater/internal/test"
	"github.com/ava12/tater/kind"
	"github.com/ava12/tater/lexer"
	"github.com/ava12/tater/source"
	"github.com/ava12/tater/stream"
)

// items builds a stream from "Kind text" pairs, texts are separated by spaces.
func items(pairs ...string) *stream.Stream {
	text := ""
	var list stream.Items
	for _, p := range pairs {
		k, t, _ := strings.Cut(p, " ")
		if text != "" {
			text += " "
		}
		list = append(list, lexer.Item{Start: len(text), End: len(text) + len(t), Kind: kind.Of(k)})
		text += t
	}
	return stream.New(&list, source.New("test", text))
}

func TestSequenceScenario(t *testing.T) {
	reg := NewRegistry()
	var got []lexer.Item
	typ := reg.NewType("Seq").OnSeq(func(n Node, items []lexer.Item) (Node, error) {
		got = items
		return n, nil
	}, kA, kB, kC)
	reg.MustBuild()

	s := items("A a", "B b", "C c", "D d", "E e")
	root := NewTree(s.Source()).New(typ)
	next, more, e := root.Resolve(s)
	ExpectNoError(t, e)
	ExpectBool(t, true, more)
	Assert(t, next == root, "expecting the same node")
	ExpectInt(t, 3, len(got))
	for i, k := range []kind.Kind{kA, kB, kC} {
		Assert(t, got[i].Kind == k, "item #%d: expecting %s, got %s", i, k, got[i])
	}
	item, _ := s.This()
	Assert(t, item.Kind == kD, "expecting D to remain, got %s", item)
	ExpectInt(t, 3, s.Pos())
}

func TestFailover(t *testing.T) {
	reg := NewRegistry()
	topType := reg.NewType("Top")
	outer := reg.NewType("Outer")
	inner := reg.NewType("Inner")
	outer.
		OnSeq(func(n Node, items []lexer.Item) (Node, error) {
			return n.Descend(inner, items...), nil
		}, kA).
		OnSeq(func(n Node, items []lexer.Item) (Node, error) {
			return n.Parent(), nil
		}, kC)
	inner.OnSubtype(func(n Node, items []lexer.Item) (Node, error) {
		n.Extend(items...)
		return n, nil
	}, kLit)
	reg.MustBuild()

	s := items("A a", "Literal.Number 1", "Literal.String x", "A b", "Literal 2", "C end")
	tr := NewTree(s.Source())
	top := tr.New(topType)
	root := top.Descend(outer)
	result, e := Parse(root, s, nil)
	ExpectNoError(t, e)
	Assert(t, result == top, "expecting the topmost node")
	cs := root.Children()
	ExpectInt(t, 2, len(cs))
	ExpectInt(t, 3, len(cs[0].Items()))
	ExpectInt(t, 2, len(cs[1].Items()))
	ExpectString(t, "2", cs[1].Text(cs[1].Items()[1]))
}

func TestStrayToken(t *testing.T) {
	reg := NewRegistry()
	root := reg.NewType("Root").OnSeq(func(n Node, items []lexer.Item) (Node, error) {
		return n.Descend(n.Type(), items...), nil
	}, kA)
	reg.MustBuild()

	s := items("A a", "A a", "B stray", "A a")
	result, e := ParseType(root, s, nil)
	Assert(t, tater.IsParseError(e), "expecting parse error, got %v", e)
	ExpectErrorCode(t, ErrNoHandler, e)
	te := e.(*tater.Error)
	ExpectString(t, "test", te.SourceName)
	ExpectInt(t, 1, te.Line)
	ExpectInt(t, 5, te.Col)
	Assert(t, strings.Contains(te.Message, `B "stray"`), "expecting kind and text in %q", te.Message)
	Assert(t, strings.Contains(te.Message, `(A "a")`), "expecting upcoming items in %q", te.Message)
	ExpectInt(t, 2, len(result.DepthFirst())-1)
}

func TestHandlerErrors(t *testing.T) {
	reg := NewRegistry()
	failure := errors.New("failure")
	typ := reg.NewType("X").
		OnSeq(func(n Node, items []lexer.Item) (Node, error) {
			return Node{}, nil
		}, kA).
		OnSeq(func(n Node, items []lexer.Item) (Node, error) {
			return n, failure
		}, kB)
	reg.MustBuild()

	_, e := ParseType(typ, items("A a"), nil)
	ExpectErrorCode(t, ErrNoNode, e)
	Assert(t, tater.IsParseError(e), "expecting parse error")

	_, e = ParseType(typ, items("B b"), nil)
	Assert(t, errors.Is(e, failure), "expecting handler error, got %v", e)

	unbuilt := NewRegistry().NewType("Y")
	_, e = ParseType(unbuilt, items("A a"), nil)
	ExpectErrorCode(t, ErrNotBuilt, e)
}

func TestEmptyStream(t *testing.T) {
	reg := NewRegistry()
	typ := reg.NewType("X").OnSeq(named("x"), kA)
	reg.MustBuild()

	result, e := ParseType(typ, items(), nil)
	ExpectNoError(t, e)
	ExpectString(t, "X", result.TypeName())
	ExpectInt(t, 0, result.Len())
}

func TestLexerError(t *testing.T) {
	g := &grammar.Grammar{States: map[string][]grammar.Rule{
		"root": {grammar.Tok(kA, `a`)},
	}}
	reg := NewRegistry()
	typ := reg.NewType("X").OnSeq(func(n Node, items []lexer.Item) (Node, error) {
		return n.Extend(items...), nil
	}, kA)
	reg.MustBuild()

	src := source.New("", "aa?")
	s := stream.New(lexer.New(lexer.MustCompile(g), src, nil), src)
	result, e := ParseType(typ, s, nil)
	Assert(t, tater.IsIncompleteLex(e), "expecting incomplete lex, got %v", e)
	ExpectInt(t, 2, len(result.Items()))
}

func TestParseLogging(t *testing.T) {
	reg := NewRegistry()
	typ := reg.NewType("Logged").OnSeq(named("x"), kA)
	reg.MustBuild()

	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, e := ParseType(typ, items("A a", "B b"), &ParseOptions{Logger: logger})
	Assert(t, tater.IsParseError(e), "expecting parse error")
	out := buf.String()
	for _, s := range []string{"msg=resolve", "node=Logged", "kind=A", "msg=\"parse failed\""} {
		Assert(t, strings.Contains(out, s), "expecting %s in log:\n%s", s, out)
	}
}

func ExampleParse() {
	reg := NewRegistry()
	list := reg.NewType("List")
	item := reg.NewType("Item")
	list.
		OnSeq(func(n Node, items []lexer.Item) (Node, error) {
			return n.Descend(item, items...), nil
		}, kind.Of("Name"))
	item.
		OnSeq(func(n Node, items []lexer.Item) (Node, error) {
			return n.Parent(), nil
		}, kind.Of("Comma")).
		OnSeq(func(n Node, items []lexer.Item) (Node, error) {
			return n.Set("value", n.Text(items[1])), nil
		}, kind.Of("Eq"), kind.Of("Number"))
	reg.MustBuild()

	g := &grammar.Grammar{
		States: map[string][]grammar.Rule{"root": {
			grammar.Tok(kind.Of("Name"), `[a-z]+`),
			grammar.Tok(kind.Of("Number"), `\d+`),
			grammar.Tok(kind.Of("Eq"), `=`),
			grammar.Tok(kind.Of("Comma"), `,`),
		}},
		Skip: `\s+`,
	}
	src := source.New("", "x = 1, y, z = 3")
	s := stream.New(lexer.New(lexer.MustCompile(g), src, nil), src)
	root, _ := ParseType(list, s, nil)
	for _, n := range root.Children() {
		v, _ := n.Get("value")
		fmt.Println(n.FirstText(), v)
	}
	// Output:
	// x 1
	// y <nil>
	// z 3
}
