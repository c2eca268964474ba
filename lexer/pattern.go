package lexer

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/ava12/tater/source"
)

// Matcher matches a single rule alternative at a fixed position.
// Custom matchers may be passed to grammar.Compiled.
type Matcher interface {
	// MatchAt returns byte offsets of the whole match and of every capturing group
	// in the form returned by regexp.Regexp.FindStringSubmatchIndex, or nil if there is no match
	// starting exactly at pos. Non-participating groups have offsets -1.
	MatchAt(src *source.Source, pos int) ([]int, error)

	// Groups returns the number of capturing groups.
	Groups() int

	// String returns pattern text for logs and error messages.
	String() string
}

// reMatcher matches against the remaining text, so \b, \B and multiline ^ assertions
// at the start position do not see the preceding character: (?m)^ matches at any position.
// Grammars relying on these assertions should use the regexp2 flavor.
type reMatcher struct {
	re *regexp.Regexp
}

func (m reMatcher) MatchAt(src *source.Source, pos int) ([]int, error) {
	idx := m.re.FindStringSubmatchIndex(src.Text()[pos:])
	if idx == nil || idx[0] != 0 {
		return nil, nil
	}

	for i, x := range idx {
		if x >= 0 {
			idx[i] = x + pos
		}
	}
	return idx, nil
}

func (m reMatcher) Groups() int {
	return m.re.NumSubexp()
}

func (m reMatcher) String() string {
	return m.re.String()
}

type re2Matcher struct {
	re *regexp2.Regexp
}

func (m re2Matcher) MatchAt(src *source.Source, pos int) ([]int, error) {
	start := src.RuneIndex(pos)
	match, e := m.re.FindRunesMatchStartingAt(src.Runes(), start)
	if e != nil || match == nil || match.Index != start {
		return nil, e
	}

	groups := match.Groups()
	idx := make([]int, len(groups)*2)
	for i, g := range groups {
		if len(g.Captures) == 0 {
			idx[i*2] = -1
			idx[i*2+1] = -1
		} else {
			idx[i*2] = src.ByteOffset(g.Index)
			idx[i*2+1] = src.ByteOffset(g.Index + g.Length)
		}
	}
	return idx, nil
}

func (m re2Matcher) Groups() int {
	return len(m.re.GetGroupNumbers()) - 1
}

func (m re2Matcher) String() string {
	return m.re.String()
}

func compileRegexp(pattern, flags string) (Matcher, error) {
	if flags != "" {
		flags = "(?" + flags + ")"
	}
	re, e := regexp.Compile(flags + `\A(?:` + pattern + ")")
	if e != nil {
		return nil, e
	}

	return reMatcher{re}, nil
}

func compileRegexp2(pattern, flags string) (Matcher, error) {
	var opts regexp2.RegexOptions
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		default:
			return nil, badFlagsError(flags)
		}
	}
	re, e := regexp2.Compile(`\G(?:`+pattern+")", opts)
	if e != nil {
		return nil, e
	}

	return re2Matcher{re}, nil
}

func wrapCompiled(p any) (Matcher, bool) {
	switch x := p.(type) {
	case Matcher:
		return x, true
	case *regexp.Regexp:
		return reMatcher{x}, true
	case *regexp2.Regexp:
		return re2Matcher{x}, true
	default:
		return nil, false
	}
}

func validFlags(flags string) bool {
	return strings.Trim(flags, "imsU") == ""
}
