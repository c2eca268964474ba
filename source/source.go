// Package source defines input text used by lexer and tree.
package source

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Source holds named input text.
// Line starts are computed on creation, rune offsets are computed on first request.
// Source is not safe for concurrent use until RuneOffsets has been called once.
type Source struct {
	name        string
	text        string
	lineStarts  []int
	runeStarts  []int
	runes       []rune
	runesMapped bool
}

// New creates a source for given text.
func New(name, text string) *Source {
	s := &Source{name: name, text: text}
	lineCnt := strings.Count(text, "\n") + 1
	s.lineStarts = make([]int, lineCnt)
	j := 1
	for i := 0; i < len(text) && j < lineCnt; i++ {
		if text[i] == '\n' {
			s.lineStarts[j] = i + 1
			j++
		}
	}

	return s
}

// NewBytes creates a source for given content.
func NewBytes(name string, content []byte) *Source {
	return New(name, string(content))
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Text() string {
	return s.text
}

func (s *Source) Len() int {
	return len(s.text)
}

// Slice returns text between byte offsets, offsets are clamped to text bounds.
func (s *Source) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s.text) {
		end = len(s.text)
	}
	if start >= end {
		return ""
	}
	return s.text[start:end]
}

// LineCol converts byte offset to 1-based line and column numbers.
// Columns count runes.
func (s *Source) LineCol(pos int) (line, col int) {
	var lineIndex int
	if pos < 0 {
		pos = 0
		lineIndex = 0
	} else if pos >= len(s.text) {
		pos = len(s.text)
		lineIndex = len(s.lineStarts) - 1
	} else {
		lineIndex = sort.Search(len(s.lineStarts), func(i int) bool {
			return s.lineStarts[i] > pos
		}) - 1
	}

	lineStart := s.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCountInString(s.text[lineStart:pos]) + 1
}

// Offset converts 1-based line and column numbers to byte offset.
// Returns 0 for non-positive values and text length for values beyond the end of text.
func (s *Source) Offset(line, col int) int {
	if line <= 0 || col <= 0 {
		return 0
	}

	l := len(s.text)
	if line > len(s.lineStarts) {
		return l
	}

	res := s.lineStarts[line-1]
	for col > 1 && res < l && s.text[res] != '\n' {
		_, size := utf8.DecodeRuneInString(s.text[res:])
		res += size
		col--
	}
	return res
}

// Pos returns position record for given byte offset.
func (s *Source) Pos(offset int) Pos {
	line, col := s.LineCol(offset)
	return Pos{s, offset, line, col}
}

// IsASCII tells whether byte offsets and rune offsets coincide.
func (s *Source) IsASCII() bool {
	s.mapRunes()
	return s.runeStarts == nil
}

// Runes returns text as a rune slice.
func (s *Source) Runes() []rune {
	s.mapRunes()
	return s.runes
}

// RuneIndex converts byte offset to rune index.
// An offset inside a multibyte rune maps to that rune.
func (s *Source) RuneIndex(offset int) int {
	s.mapRunes()
	if s.runeStarts == nil {
		return offset
	}

	if offset >= len(s.text) {
		return len(s.runes) + offset - len(s.text)
	}
	return sort.Search(len(s.runeStarts), func(i int) bool {
		return s.runeStarts[i] > offset
	}) - 1
}

// ByteOffset converts rune index to byte offset.
func (s *Source) ByteOffset(index int) int {
	s.mapRunes()
	if s.runeStarts == nil || index < 0 {
		return index
	}

	if index >= len(s.runeStarts) {
		return len(s.text) + index - len(s.runeStarts)
	}
	return s.runeStarts[index]
}

func (s *Source) mapRunes() {
	if s.runesMapped {
		return
	}

	s.runesMapped = true
	s.runes = []rune(s.text)
	if len(s.runes) == len(s.text) {
		return
	}

	s.runeStarts = make([]int, 0, len(s.runes))
	for i := range s.text {
		s.runeStarts = append(s.runeStarts, i)
	}
}

// Pos is a position in source text. Implements tater.SourcePos.
type Pos struct {
	src            *Source
	pos, line, col int
}

func (p Pos) Source() *Source {
	return p.src
}

func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}
	return p.src.name
}

func (p Pos) Offset() int {
	return p.pos
}

func (p Pos) Line() int {
	return p.line
}

func (p Pos) Col() int {
	return p.col
}
