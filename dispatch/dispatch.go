// Package dispatch compiles handler signatures into lookup tables.
//
// A sequence signature matches a run of upcoming items, the longest matching sequence wins.
// A subtype signature matches a single item of given kind or any of its subkinds,
// the earliest declared signature wins. Sequences are tried before subtypes.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/ava12/tater"
	"github.com/ava12/tater/kind"
	"github.com/ava12/tater/stream"
)

// Error codes used by dispatch:
const (
	// ErrEmptySignature indicates a sequence signature with no matchers.
	ErrEmptySignature = tater.DispatchErrors + iota

	// ErrDuplicateSignature indicates two entries with equal signatures.
	ErrDuplicateSignature

	// ErrBadMatcher indicates a matcher other than stream.KindMatcher or stream.TextMatcher.
	ErrBadMatcher
)

// Signature describes items an entry handles.
type Signature struct {
	seq     []stream.Matcher
	subtype kind.Kind
	isSub   bool
}

// Seq creates a sequence signature.
func Seq(matchers ...stream.Matcher) Signature {
	return Signature{seq: matchers}
}

// Kinds creates a sequence signature matching exact kinds.
func Kinds(kinds ...kind.Kind) Signature {
	ms := make([]stream.Matcher, len(kinds))
	for i, k := range kinds {
		ms[i] = stream.K(k)
	}
	return Signature{seq: ms}
}

// Subtype creates a signature matching one item of kind k or any of its subkinds.
func Subtype(k kind.Kind) Signature {
	return Signature{subtype: k, isSub: true}
}

// IsSubtype tells whether s is a subtype signature.
func (s Signature) IsSubtype() bool {
	return s.isSub
}

// Matchers returns sequence matchers, nil for subtype signatures.
func (s Signature) Matchers() []stream.Matcher {
	return s.seq
}

// Kind returns the kind of subtype signature.
func (s Signature) Kind() kind.Kind {
	return s.subtype
}

func (s Signature) String() string {
	if s.isSub {
		return "<" + s.subtype.String() + ">"
	}

	parts := make([]string, len(s.seq))
	for i, m := range s.seq {
		switch x := m.(type) {
		case stream.KindMatcher:
			parts[i] = x.String()
		case stream.TextMatcher:
			parts[i] = fmt.Sprintf("%s %q", x.Kind, x.Text)
		default:
			parts[i] = fmt.Sprintf("%v", m)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Equal tells whether signatures match the same items.
// Sequences holding unsupported matchers are never equal.
func (s Signature) Equal(other Signature) bool {
	if s.isSub != other.isSub {
		return false
	}
	if s.isSub {
		return s.subtype == other.subtype
	}
	if len(s.seq) != len(other.seq) {
		return false
	}
	for i, m := range s.seq {
		if !sameMatcher(m, other.seq[i]) {
			return false
		}
	}
	return true
}

func sameMatcher(a, b stream.Matcher) bool {
	switch x := a.(type) {
	case stream.KindMatcher:
		y, ok := b.(stream.KindMatcher)
		return ok && x == y
	case stream.TextMatcher:
		y, ok := b.(stream.TextMatcher)
		return ok && x == y
	}
	return false
}

// Entry binds a signature to a handler.
type Entry[H any] struct {
	Sig     Signature
	Handler H
}

// Match is a dispatch result.
type Match[H any] struct {
	*Entry[H]

	// Len is the number of items to take.
	Len int
}

type trieNode[H any] struct {
	byKind map[kind.Kind]*trieNode[H]
	byText map[stream.TextMatcher]*trieNode[H]
	entry  *Entry[H]
}

func newTrieNode[H any]() *trieNode[H] {
	return &trieNode[H]{
		byKind: make(map[kind.Kind]*trieNode[H]),
		byText: make(map[stream.TextMatcher]*trieNode[H]),
	}
}

// Table is compiled entry list. Table is immutable and safe for concurrent use.
type Table[H any] struct {
	entries  []Entry[H]
	trie     *trieNode[H]
	subtypes map[kind.Kind]int
}

// Build compiles entries. Entry order defines subtype priority.
func Build[H any](entries []Entry[H]) (*Table[H], error) {
	t := &Table[H]{
		entries:  append([]Entry[H](nil), entries...),
		trie:     newTrieNode[H](),
		subtypes: make(map[kind.Kind]int),
	}

	for i := range t.entries {
		e := &t.entries[i]
		if e.Sig.isSub {
			if _, has := t.subtypes[e.Sig.subtype]; has {
				return nil, duplicateError(e.Sig)
			}
			t.subtypes[e.Sig.subtype] = i
			continue
		}

		if len(e.Sig.seq) == 0 {
			return nil, tater.FormatError(ErrEmptySignature, "empty sequence signature")
		}

		node := t.trie
		for _, m := range e.Sig.seq {
			var next *trieNode[H]
			switch x := m.(type) {
			case stream.KindMatcher:
				k := kind.Kind(x)
				next = node.byKind[k]
				if next == nil {
					next = newTrieNode[H]()
					node.byKind[k] = next
				}
			case stream.TextMatcher:
				next = node.byText[x]
				if next == nil {
					next = newTrieNode[H]()
					node.byText[x] = next
				}
			default:
				return nil, tater.FormatError(ErrBadMatcher, "unsupported matcher %T in signature %s", m, e.Sig)
			}
			node = next
		}

		if node.entry != nil {
			return nil, duplicateError(e.Sig)
		}
		node.entry = e
	}

	return t, nil
}

// MustBuild is like Build but panics on error.
func MustBuild[H any](entries []Entry[H]) *Table[H] {
	t, e := Build(entries)
	if e != nil {
		panic(e)
	}
	return t
}

func duplicateError(sig Signature) *tater.Error {
	return tater.FormatError(ErrDuplicateSignature, "duplicate signature %s", sig)
}

// Entries returns compiled entries in declaration order.
func (t *Table[H]) Entries() []Entry[H] {
	return t.entries
}

// IsEmpty tells whether table has no entries.
func (t *Table[H]) IsEmpty() bool {
	return len(t.entries) == 0
}

// Match finds the entry handling upcoming items of s without advancing s.
func (t *Table[H]) Match(s *stream.Stream) (Match[H], bool) {
	if e, l := t.matchSeq(s, t.trie, 0); e != nil {
		return Match[H]{e, l}, true
	}

	item, valid := s.This()
	if !valid || len(t.subtypes) == 0 {
		return Match[H]{}, false
	}

	best := -1
	for _, k := range item.Kind.Split() {
		if i, has := t.subtypes[k]; has && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return Match[H]{}, false
	}
	return Match[H]{&t.entries[best], 1}, true
}

// matchSeq returns the entry with the longest matching sequence below node.
// Text-specific edges are explored first and win ties.
func (t *Table[H]) matchSeq(s *stream.Stream, node *trieNode[H], depth int) (*Entry[H], int) {
	best, bestLen := node.entry, depth
	if len(node.byKind) == 0 && len(node.byText) == 0 {
		return best, bestLen
	}

	item, valid := s.Ahead(depth)
	if !valid {
		if best == nil {
			return nil, 0
		}
		return best, bestLen
	}

	if len(node.byText) > 0 {
		if next := node.byText[stream.KT(item.Kind, s.Text(item))]; next != nil {
			if e, l := t.matchSeq(s, next, depth+1); e != nil && (best == nil || l > bestLen) {
				best, bestLen = e, l
			}
		}
	}
	if next := node.byKind[item.Kind]; next != nil {
		if e, l := t.matchSeq(s, next, depth+1); e != nil && (best == nil || l > bestLen) {
			best, bestLen = e, l
		}
	}

	if best == nil {
		return nil, 0
	}
	return best, bestLen
}
