// Package stream provides a peekable item stream over any item source.
package stream

import (
	"github.com/ava12/tater/kind"
	"github.com/ava12/tater/lexer"
	"github.com/ava12/tater/source"
)

// Source produces items one by one. Next returns false when there are no more items.
// *lexer.Lexer implements this interface.
type Source interface {
	Next() (lexer.Item, bool, error)
}

// Items is a Source over a fixed item list.
type Items []lexer.Item

func (i *Items) Next() (lexer.Item, bool, error) {
	if len(*i) == 0 {
		return lexer.Item{}, false, nil
	}

	item := (*i)[0]
	*i = (*i)[1:]
	return item, true, nil
}

// Matcher tests a single item.
type Matcher interface {
	// Match tells whether item matches. text is the source item is taken from.
	Match(item lexer.Item, text *source.Source) bool
}

// KindMatcher matches items of exactly this kind.
type KindMatcher kind.Kind

// K returns a matcher comparing item kinds exactly.
func K(k kind.Kind) KindMatcher {
	return KindMatcher(k)
}

func (m KindMatcher) Match(item lexer.Item, _ *source.Source) bool {
	return item.Kind == kind.Kind(m)
}

func (m KindMatcher) String() string {
	return kind.Kind(m).String()
}

// TextMatcher matches items of exactly this kind and text.
type TextMatcher struct {
	Kind kind.Kind
	Text string
}

// KT returns a matcher comparing item kinds and texts exactly.
func KT(k kind.Kind, text string) TextMatcher {
	return TextMatcher{k, text}
}

func (m TextMatcher) Match(item lexer.Item, src *source.Source) bool {
	return item.Kind == m.Kind && item.Text(src) == m.Text
}

func (m TextMatcher) String() string {
	return m.Kind.String() + " " + m.Text
}

// Stream is a cursor over lazily fetched items. Items before the cursor are kept for Behind.
// Stream is not safe for concurrent use.
type Stream struct {
	src    Source
	text   *source.Source
	items  []lexer.Item
	cursor int
	ended  bool
	err    error
}

// New creates a stream over src. text is the source items refer to.
func New(src Source, text *source.Source) *Stream {
	return &Stream{src: src, text: text}
}

// Source returns the text items refer to.
func (s *Stream) Source() *source.Source {
	return s.text
}

// Text returns item text.
func (s *Stream) Text(item lexer.Item) string {
	return item.Text(s.text)
}

// fill fetches items until index i is available or source ends.
func (s *Stream) fill(i int) bool {
	for i >= len(s.items) && !s.ended {
		item, valid, e := s.src.Next()
		if e != nil {
			s.err = e
		}
		if !valid {
			s.ended = true
			break
		}
		s.items = append(s.items, item)
	}
	return i < len(s.items)
}

// This returns the item at the cursor.
func (s *Stream) This() (lexer.Item, bool) {
	return s.Ahead(0)
}

// Ahead returns the item n positions after the cursor, Ahead(0) is This().
func (s *Stream) Ahead(n int) (lexer.Item, bool) {
	i := s.cursor + n
	if i < 0 || !s.fill(i) {
		return lexer.Item{}, false
	}
	return s.items[i], true
}

// Behind returns the item n positions before the cursor, Behind(1) is the last taken item.
func (s *Stream) Behind(n int) (lexer.Item, bool) {
	return s.Ahead(-n)
}

// Pos returns the number of taken items.
func (s *Stream) Pos() int {
	return s.cursor
}

// Exhausted tells whether there is no item at the cursor.
func (s *Stream) Exhausted() bool {
	return !s.fill(s.cursor)
}

// Err returns the error that ended the source, if any.
func (s *Stream) Err() error {
	return s.err
}

// Take returns the item at the cursor and advances the cursor.
func (s *Stream) Take() (lexer.Item, bool) {
	item, valid := s.This()
	if valid {
		s.cursor++
	}
	return item, valid
}

// Match tells whether upcoming items match sig without advancing the cursor.
func (s *Stream) Match(sig ...Matcher) bool {
	for i, m := range sig {
		item, valid := s.Ahead(i)
		if !valid || !m.Match(item, s.text) {
			return false
		}
	}
	return true
}

// TakeMatching takes len(sig) items if all of them match sig, otherwise takes nothing and returns false.
func (s *Stream) TakeMatching(sig ...Matcher) ([]lexer.Item, bool) {
	if !s.Match(sig...) {
		return nil, false
	}
	return s.TakeN(len(sig)), true
}

// TakeN takes up to n items.
func (s *Stream) TakeN(n int) []lexer.Item {
	s.fill(s.cursor + n - 1)
	end := min(s.cursor+n, len(s.items))
	result := append([]lexer.Item(nil), s.items[s.cursor:end]...)
	s.cursor = end
	return result
}

// Upcoming returns up to n items starting at the cursor without taking them.
func (s *Stream) Upcoming(n int) []lexer.Item {
	s.fill(s.cursor + n - 1)
	end := min(s.cursor+n, len(s.items))
	return s.items[s.cursor:end:end]
}
