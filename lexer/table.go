package lexer

import (
	"fmt"
	"sort"

	"github.com/ava12/tater"
	"github.com/ava12/tater/grammar"
	"github.com/ava12/tater/kind"
)

// Error codes used when compiling grammars:
const (
	// ErrNoRootState indicates that grammar has no "root" state.
	ErrNoRootState = tater.GrammarErrors + iota

	// ErrUndefinedState indicates that a rule includes, pushes, or swaps to an unknown state.
	ErrUndefinedState

	// ErrRecursiveInclude indicates that a state includes itself directly or indirectly.
	ErrRecursiveInclude

	// ErrBadRegexp indicates that a pattern string cannot be compiled.
	ErrBadRegexp

	// ErrBadRule indicates a malformed rule: no patterns, both kind and groups,
	// no kind and no transition, too many group kinds, negative pop count, or unsupported compiled pattern.
	ErrBadRule

	// ErrBadFlavor indicates unknown regexp flavor or unsupported flags.
	ErrBadFlavor
)

// Table is a compiled grammar. Table is immutable and may be shared by concurrent lexers.
type Table struct {
	states   map[string][]*rule
	skip     Matcher
	dontEmit kind.Set
}

type rule struct {
	kind     kind.Kind
	groups   []kind.Kind
	matchers []Matcher
	push     []string
	pop      grammar.Pop
	swap     string
}

func (r *rule) emitsWhole() bool {
	return len(r.groups) == 0 && r.kind != kind.Token
}

func (r *rule) changesState() bool {
	return len(r.push) > 0 || !r.pop.IsZero() || r.swap != ""
}

func (r *rule) String() string {
	if len(r.groups) > 0 {
		return fmt.Sprintf("%v %s", r.groups, r.matchers[0])
	}
	return fmt.Sprintf("%s %s", r.kind, r.matchers[0])
}

type compiler struct {
	g        *grammar.Grammar
	table    *Table
	compile  func(pattern, flags string) (Matcher, error)
	visiting map[string]bool
}

// Compile validates the grammar, expands includes, and compiles every pattern.
// Grammar is not modified and may be discarded afterwards.
func Compile(g *grammar.Grammar) (*Table, error) {
	c := &compiler{
		g: g,
		table: &Table{
			states:   make(map[string][]*rule, len(g.States)),
			dontEmit: kind.NewSet(g.DontEmit...),
		},
		visiting: make(map[string]bool),
	}

	switch g.Flavor {
	case "", grammar.Regexp:
		if !validFlags(g.Flags) {
			return nil, badFlagsError(g.Flags)
		}
		c.compile = compileRegexp
	case grammar.Regexp2:
		c.compile = compileRegexp2
	default:
		return nil, tater.FormatError(ErrBadFlavor, "unknown regexp flavor %q", g.Flavor)
	}

	if _, has := g.States[grammar.RootState]; !has {
		return nil, tater.FormatError(ErrNoRootState, "grammar has no %q state", grammar.RootState)
	}

	if g.Skip != "" {
		m, e := c.compile(g.Skip, g.Flags)
		if e != nil {
			return nil, badRegexpError("skip", g.Skip, e)
		}
		c.table.skip = m
	}

	for _, name := range sortedStates(g) {
		if _, e := c.compileState(name); e != nil {
			return nil, e
		}
	}
	return c.table, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(g *grammar.Grammar) *Table {
	t, e := Compile(g)
	if e != nil {
		panic(e)
	}
	return t
}

func sortedStates(g *grammar.Grammar) []string {
	names := make([]string, 0, len(g.States))
	for name := range g.States {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *compiler) compileState(name string) ([]*rule, error) {
	if rules, done := c.table.states[name]; done {
		return rules, nil
	}
	if c.visiting[name] {
		return nil, tater.FormatError(ErrRecursiveInclude, "state %q includes itself", name)
	}

	c.visiting[name] = true
	defer delete(c.visiting, name)

	var result []*rule
	for i, gr := range c.g.States[name] {
		if gr.IsInclude() {
			if _, has := c.g.States[gr.Include]; !has {
				return nil, undefinedStateError(name, i, gr.Include)
			}
			included, e := c.compileState(gr.Include)
			if e != nil {
				return nil, e
			}
			result = append(result, included...)
			continue
		}

		r, e := c.compileRule(name, i, gr)
		if e != nil {
			return nil, e
		}
		result = append(result, r)
	}

	if result == nil {
		result = []*rule{}
	}
	c.table.states[name] = result
	return result, nil
}

func (c *compiler) compileRule(state string, index int, gr grammar.Rule) (*rule, error) {
	if len(gr.Patterns) == 0 && len(gr.Compiled) == 0 {
		return nil, badRuleError(state, index, "no patterns")
	}
	if gr.Kind != kind.Token && len(gr.Groups) > 0 {
		return nil, badRuleError(state, index, "both kind and groups defined")
	}
	if gr.Kind == kind.Token && len(gr.Groups) == 0 && !gr.HasTransition() {
		return nil, badRuleError(state, index, "rule neither emits items nor changes state")
	}
	if gr.Pop.N < 0 {
		return nil, badRuleError(state, index, "negative pop count")
	}

	for _, target := range gr.Push {
		if target != grammar.PopState && target != grammar.PushState {
			if _, has := c.g.States[target]; !has {
				return nil, undefinedStateError(state, index, target)
			}
		}
	}
	if gr.Swap != "" {
		if _, has := c.g.States[gr.Swap]; !has {
			return nil, undefinedStateError(state, index, gr.Swap)
		}
	}

	r := &rule{
		kind:   gr.Kind,
		groups: gr.Groups,
		push:   gr.Push,
		pop:    gr.Pop,
		swap:   gr.Swap,
	}

	for _, p := range gr.Patterns {
		m, e := c.compile(p, c.g.Flags)
		if e != nil {
			return nil, badRegexpError(fmt.Sprintf("state %q rule #%d", state, index), p, e)
		}
		r.matchers = append(r.matchers, m)
	}
	for _, p := range gr.Compiled {
		m, valid := wrapCompiled(p)
		if !valid {
			return nil, badRuleError(state, index, fmt.Sprintf("unsupported compiled pattern of type %T", p))
		}
		r.matchers = append(r.matchers, m)
	}

	for _, m := range r.matchers {
		if m.Groups() < len(r.groups) {
			msg := fmt.Sprintf("%d group kinds for pattern %q with %d groups", len(r.groups), m, m.Groups())
			return nil, badRuleError(state, index, msg)
		}
	}

	return r, nil
}

// HasState reports whether the table defines named state.
func (t *Table) HasState(name string) bool {
	_, has := t.states[name]
	return has
}

// States returns sorted state names.
func (t *Table) States() []string {
	names := make([]string, 0, len(t.states))
	for name := range t.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Emits reports whether items of given kind are passed to the lexer output.
func (t *Table) Emits(k kind.Kind) bool {
	return !t.dontEmit.Has(k)
}

func badFlagsError(flags string) *tater.Error {
	return tater.FormatError(ErrBadFlavor, "unsupported regexp flags %q", flags)
}

func badRegexpError(where, pattern string, e error) *tater.Error {
	return tater.FormatError(ErrBadRegexp, "%s: bad pattern %q: %s", where, pattern, e.Error())
}

func badRuleError(state string, index int, msg string) *tater.Error {
	return tater.FormatError(ErrBadRule, "state %q rule #%d: %s", state, index, msg)
}

func undefinedStateError(state string, index int, target string) *tater.Error {
	return tater.FormatError(ErrUndefinedState, "state %q rule #%d: undefined state %q", state, index, target)
}
