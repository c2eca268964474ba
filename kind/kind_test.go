package kind

import (
	"testing"

	"github.com/ava12/tater/internal/test"
)

func TestOf(t *testing.T) {
	samples := []struct {
		src      string
		expected Kind
	}{
		{"", Token},
		{"Literal", "Literal"},
		{"Literal.String", "Literal.String"},
		{".Literal..String.", "Literal.String"},
		{"...", Token},
	}

	for i, s := range samples {
		got := Of(s.src)
		if got != s.expected {
			t.Errorf("sample #%d: expecting %q, got %q", i, s.expected, got)
		}
	}
}

func TestSplit(t *testing.T) {
	humboldt := Of("Cephalopod.Squid.Humboldt")
	expected := []Kind{Token, "Cephalopod", "Cephalopod.Squid", "Cephalopod.Squid.Humboldt"}
	got := humboldt.Split()
	test.ExpectInt(t, len(expected), len(got))
	for i := range expected {
		test.ExpectString(t, string(expected[i]), string(got[i]))
	}
	test.ExpectInt(t, 3, humboldt.Depth())
	test.ExpectString(t, "Humboldt", humboldt.Name())
	test.ExpectInt(t, 1, len(Token.Split()))
}

func TestNavigation(t *testing.T) {
	lit := New("Literal")
	num := lit.Child("Number")
	test.ExpectString(t, "Literal.Number", string(num))
	test.ExpectString(t, "Literal", string(num.Parent()))
	test.Assert(t, lit.Parent() == Token, "Literal parent must be Token")
	test.Assert(t, Token.Parent() == Token, "Token parent must be Token")
	test.ExpectString(t, "Literal", string(Token.Child("Literal")))
	test.ExpectInt(t, 2, len(num.Path()))
	test.Assert(t, Token.Path() == nil, "Token path must be nil")
	test.ExpectString(t, "Token", Token.String())
}

func TestIsA(t *testing.T) {
	samples := []struct {
		sub, super string
		expected   bool
	}{
		{"String", "String", true},
		{"Carb.Tater", "Carb", true},
		{"Literal", "String", false},
		{"Literal", "Literal.String", false},
		{"LiteralX", "Literal", false},
		{"Literal.Number.Int", "Literal", true},
		{"Literal.Number.Int", "", true},
		{"", "", true},
		{"", "Literal", false},
	}

	for i, s := range samples {
		got := Of(s.sub).IsA(Of(s.super))
		if got != s.expected {
			t.Errorf("sample #%d: %q is-a %q: expecting %v, got %v", i, s.sub, s.super, s.expected, got)
		}
	}
}

func TestSubtypeTransitivity(t *testing.T) {
	kinds := []Kind{Token, "A", "A.B", "A.B.C", "A.BC", "B", "B.A"}
	for _, a := range kinds {
		test.Assert(t, a.IsA(a), "%q must be a subtype of itself", a)
		for _, b := range kinds {
			for _, c := range kinds {
				if a.IsA(b) && b.IsA(c) {
					test.Assert(t, a.IsA(c), "%q is-a %q is-a %q, but not %q is-a %q", a, b, c, a, c)
				}
			}
		}
	}
}

func TestSet(t *testing.T) {
	s := NewSet("Punct.Comma", "Space")
	test.Assert(t, s.Has("Space"), "expecting Space in set")
	test.Assert(t, !s.Has("Punct"), "Punct is not in set")
	test.Assert(t, s.HasSuper("Punct.Comma.Trailing"), "expecting Punct.Comma supertype in set")
	test.Assert(t, !s.HasSuper("Punct.Colon"), "Punct.Colon has no supertype in set")

	var empty Set
	test.Assert(t, !empty.Has(Token), "nil set must be empty")
	test.Assert(t, !empty.HasSuper("Space"), "nil set must be empty")
}
