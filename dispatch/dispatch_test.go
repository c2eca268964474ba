package dispatch

import (
	"fmt"
	"testing"

	. "github.com/ava12/tater/internal/test"
	"github.com/ava12/tater/kind"
	"github.com/ava12/tater/lexer"
	"github.com/ava12/tater/source"
	"github.com/ava12/tater/stream"
)

var (
	kX       = kind.Of("X")
	kY       = kind.Of("Y")
	kZ       = kind.Of("Z")
	kLit     = kind.Of("Literal")
	kStr     = kind.Of("Literal.String")
	kStrChar = kind.Of("Literal.String.Char")
)

// anyOf matches items of any listed kind. Its values are not comparable.
type anyOf []kind.Kind

func (m anyOf) Match(item lexer.Item, _ *source.Source) bool {
	for _, k := range m {
		if item.Kind == k {
			return true
		}
	}
	return false
}

// items builds a stream from "Kind text" pairs.
func items(pairs ...string) *stream.Stream {
	text := ""
	var list stream.Items
	for _, p := range pairs {
		var k, t string
		fmt.Sscanf(p, "%s %s", &k, &t)
		if text != "" {
			text += " "
		}
		list = append(list, lexer.Item{Start: len(text), End: len(text) + len(t), Kind: kind.Of(k)})
		text += t
	}
	return stream.New(&list, source.New("", text))
}

func TestLongestSequence(t *testing.T) {
	table := MustBuild([]Entry[string]{
		{Kinds(kX), "x"},
		{Kinds(kX, kY), "xy"},
		{Kinds(kX, kY, kZ, kZ), "xyzz"},
	})

	samples := []struct {
		items   []string
		handler string
		l       int
	}{
		{[]string{"X x", "Y y", "Z z"}, "xy", 2},
		{[]string{"X x", "Z z"}, "x", 1},
		{[]string{"X x"}, "x", 1},
		{[]string{"X x", "Y y", "Z z", "Z z", "Z z"}, "xyzz", 4},
		{[]string{"Y y"}, "", 0},
		{nil, "", 0},
	}

	for i, s := range samples {
		t.Run(fmt.Sprintf("sample #%d", i), func(t *testing.T) {
			m, valid := table.Match(items(s.items...))
			ExpectBool(t, s.handler != "", valid)
			if valid {
				ExpectString(t, s.handler, m.Handler)
				ExpectInt(t, s.l, m.Len)
			}
		})
	}
}

func TestTextSignatures(t *testing.T) {
	table := MustBuild([]Entry[string]{
		{Seq(stream.KT(kX, "if")), "if"},
		{Kinds(kX), "name"},
		{Seq(stream.K(kX), stream.KT(kY, "=")), "assign"},
	})

	m, _ := table.Match(items("X if", "Y ="))
	ExpectString(t, "assign", m.Handler)
	m, _ = table.Match(items("X if", "Y +"))
	ExpectString(t, "if", m.Handler)
	m, _ = table.Match(items("X foo", "Y +"))
	ExpectString(t, "name", m.Handler)
	_, valid := table.Match(items("Y =", "Y ="))
	ExpectBool(t, false, valid)
}

func TestSubtypes(t *testing.T) {
	table := MustBuild([]Entry[string]{
		{Subtype(kStr), "string"},
		{Subtype(kLit), "literal"},
		{Kinds(kStrChar, kX), "char-x"},
		{Subtype(kind.Token), "any"},
	})

	samples := []struct {
		items   []string
		handler string
		l       int
	}{
		{[]string{"Literal.String.Char c", "X x"}, "char-x", 2},
		{[]string{"Literal.String.Char c", "Y y"}, "string", 1},
		{[]string{"Literal.String s"}, "string", 1},
		{[]string{"Literal.Number 1"}, "literal", 1},
		{[]string{"Literal 1"}, "literal", 1},
		{[]string{"Z z"}, "any", 1},
	}

	for i, s := range samples {
		t.Run(fmt.Sprintf("sample #%d", i), func(t *testing.T) {
			m, valid := table.Match(items(s.items...))
			ExpectBool(t, true, valid)
			ExpectString(t, s.handler, m.Handler)
			ExpectInt(t, s.l, m.Len)
		})
	}

	table = MustBuild([]Entry[string]{
		{Subtype(kLit), "literal"},
		{Subtype(kStr), "string"},
	})
	m, _ := table.Match(items("Literal.String s"))
	ExpectString(t, "literal", m.Handler)
}

func TestBuildErrors(t *testing.T) {
	samples := [][]Entry[int]{
		{{Kinds(), 1}},
		{{Kinds(kX, kY), 1}, {Kinds(kX), 2}, {Kinds(kX, kY), 3}},
		{{Seq(stream.KT(kX, "a")), 1}, {Seq(stream.KT(kX, "a")), 2}},
		{{Subtype(kX), 1}, {Subtype(kX), 2}},
		{{Seq(anyOf{kX, kY}), 1}},
	}
	codes := []int{ErrEmptySignature, ErrDuplicateSignature, ErrDuplicateSignature, ErrDuplicateSignature, ErrBadMatcher}

	for i, s := range samples {
		t.Run(fmt.Sprintf("sample #%d", i), func(t *testing.T) {
			_, e := Build(s)
			ExpectErrorCode(t, codes[i], e)
		})
	}
}

func TestSignatureEqual(t *testing.T) {
	Assert(t, Kinds(kX, kY).Equal(Seq(stream.K(kX), stream.K(kY))), "expecting equal sequences")
	Assert(t, !Kinds(kX).Equal(Seq(stream.KT(kX, "x"))), "text matcher must differ from kind matcher")
	Assert(t, !Kinds(kX).Equal(Subtype(kX)), "subtype must differ from sequence")
	Assert(t, Subtype(kX).Equal(Subtype(kX)), "expecting equal subtypes")
	Assert(t, !Seq(anyOf{kX}).Equal(Seq(anyOf{kX})), "unsupported matchers must not be equal")
	Assert(t, !Seq(anyOf{kX}).Equal(Kinds(kX)), "unsupported matcher must differ from kind matcher")
	ExpectString(t, `[X, Y "="]`, Seq(stream.K(kX), stream.KT(kY, "=")).String())
	ExpectString(t, "<Literal>", Subtype(kLit).String())
}
