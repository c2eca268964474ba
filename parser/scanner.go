package parser

import (
	"regexp"
	"sort"

	"github.com/ava12/tater"
	"github.com/ava12/tater/source"
	"github.com/ava12/tater/tree"
)

// ErrBadHook indicates a hook pattern that cannot be compiled.
const ErrBadHook = tater.GrammarErrors + 50

// Span is a parsed tree with the byte range covered by its items.
type Span struct {
	Root       tree.Node
	Start, End int
}

// Scanner finds start positions in a text with hook patterns and parses one tree per hook match.
// Matches inside already parsed spans are skipped. Scanner lexers are always lenient.
type Scanner struct {
	parser *Parser
	hooks  []*regexp.Regexp

	// SkipMatch makes lexing start after the hook match instead of at its start.
	SkipMatch bool

	// OnError is called when a tree fails to parse. Returning nil skips the match,
	// returning an error stops scanning. Nil OnError stops scanning at the first error.
	OnError func(root tree.Node, e error) error
}

// NewScanner compiles hook patterns (Go regexp syntax).
func NewScanner(p *Parser, hooks ...string) (*Scanner, error) {
	s := &Scanner{parser: p}
	for _, h := range hooks {
		re, e := regexp.Compile(h)
		if e != nil {
			return nil, tater.FormatError(ErrBadHook, "bad hook pattern %q: %s", h, e.Error())
		}
		s.hooks = append(s.hooks, re)
	}
	return s, nil
}

type hookMatch struct {
	start, end int
}

func (s *Scanner) matches(text string) []hookMatch {
	var result []hookMatch
	for _, re := range s.hooks {
		for _, m := range re.FindAllStringIndex(text, -1) {
			result = append(result, hookMatch{m[0], m[1]})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].start < result[j].start
	})
	return result
}

// Scan returns trees parsed from src, all trees share one arena. Trees without items are dropped.
func (s *Scanner) Scan(src *source.Source) ([]Span, error) {
	var result []Span
	tr := tree.NewTree(src)
	pos := 0
	for _, m := range s.matches(src.Text()) {
		if m.start < pos {
			continue
		}

		start := m.start
		if s.SkipMatch {
			start = m.end
		}
		root, e := s.parser.parse(tr.New(s.parser.root), start, true)
		if e != nil {
			if s.OnError == nil {
				return result, e
			}
			if e = s.OnError(root, e); e != nil {
				return result, e
			}
			continue
		}

		first, last, found := root.Span()
		if !found {
			continue
		}
		result = append(result, Span{root, first, last})
		pos = last
	}
	return result, nil
}

// ScanString scans named text.
func (s *Scanner) ScanString(name, text string) ([]Span, error) {
	return s.Scan(source.New(name, text))
}
