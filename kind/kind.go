// Package kind defines hierarchical token kinds.
//
// A kind is a dotted path of identifier segments, e.g. "Literal.Number.Int".
// Kind A is a subtype of kind B if B's segments are a prefix of A's segments,
// so "Literal.Number.Int" is a "Literal.Number" and a "Literal".
// The empty kind Token is the root of the hierarchy.
// Kinds are plain comparable values, the same dotted name always yields an equal kind.
package kind

import (
	"strings"
)

// Kind is a dotted path of segments.
type Kind string

// Token is the root kind, every kind is a subtype of Token.
const Token Kind = ""

const separator = "."

// Of makes a kind from dotted name, dropping empty segments ("..a..b." is "a.b").
func Of(dotted string) Kind {
	if !strings.Contains(dotted, separator+separator) &&
		!strings.HasPrefix(dotted, separator) && !strings.HasSuffix(dotted, separator) {
		return Kind(dotted)
	}

	return New(strings.Split(dotted, separator)...)
}

// New makes a kind from path segments, empty segments are dropped.
func New(segments ...string) Kind {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return Kind(strings.Join(parts, separator))
}

// Child returns a direct subtype of k.
func (k Kind) Child(name string) Kind {
	if k == Token {
		return Of(name)
	}
	return Of(string(k) + separator + name)
}

// Parent returns the direct supertype of k; Token is its own parent.
func (k Kind) Parent() Kind {
	i := strings.LastIndex(string(k), separator)
	if i < 0 {
		return Token
	}
	return k[:i]
}

// Name returns the last segment of k or empty string for Token.
func (k Kind) Name() string {
	i := strings.LastIndex(string(k), separator)
	return string(k[i+1:])
}

// Path returns segments of k, nil for Token.
func (k Kind) Path() []string {
	if k == Token {
		return nil
	}
	return strings.Split(string(k), separator)
}

// Depth returns the number of segments.
func (k Kind) Depth() int {
	if k == Token {
		return 0
	}
	return strings.Count(string(k), separator) + 1
}

// IsA tells whether k is super or a subtype of super.
func (k Kind) IsA(super Kind) bool {
	if super == Token || k == super {
		return true
	}

	return len(k) > len(super) && k[len(super)] == separator[0] && k[:len(super)] == super
}

// Split returns k and all its supertypes ordered from Token to k.
func (k Kind) Split() []Kind {
	result := make([]Kind, k.Depth()+1)
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = k
		k = k.Parent()
	}
	return result
}

// String returns dotted name of k or "Token" for the root kind.
func (k Kind) String() string {
	if k == Token {
		return "Token"
	}
	return string(k)
}

// Set is a set of kinds.
type Set map[Kind]struct{}

// NewSet creates a set containing given kinds.
func NewSet(kinds ...Kind) Set {
	result := make(Set, len(kinds))
	for _, k := range kinds {
		result[k] = struct{}{}
	}
	return result
}

// Has tells whether k is in the set; nil set contains nothing.
func (s Set) Has(k Kind) bool {
	_, has := s[k]
	return has
}

// HasSuper tells whether the set contains k or one of its supertypes.
func (s Set) HasSuper(k Kind) bool {
	if len(s) == 0 {
		return false
	}

	for {
		if s.Has(k) {
			return true
		}
		if k == Token {
			return false
		}
		k = k.Parent()
	}
}
