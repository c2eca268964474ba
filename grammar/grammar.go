// Package grammar defines declarative lexer grammars.
//
// A Grammar maps state names to ordered rule lists.
// Grammars are plain data, they can be written in Go or loaded from JSON,
// and are compiled by lexer.Compile.
package grammar

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ava12/tater/kind"
)

// RootState is the initial lexer state, every grammar must define it.
const RootState = "root"

// Pseudo-states recognized in Rule.Push.
const (
	PopState  = "#pop"  // pops one state instead of pushing
	PushState = "#push" // pushes the current state again
)

// Flavor selects the regular expression engine used for pattern strings.
type Flavor string

const (
	// Regexp is the default flavor, Go RE2 syntax (package regexp).
	Regexp Flavor = "regexp"

	// Regexp2 is .NET/Perl-like syntax with lookarounds and backreferences (github.com/dlclark/regexp2).
	Regexp2 Flavor = "regexp2"
)

// Grammar describes lexer states.
type Grammar struct {
	// States maps state name to ordered rules. Must contain RootState.
	States map[string][]Rule `json:"states"`

	// Skip is an optional pattern for insignificant text (e.g. whitespace)
	// tried when a rule fails to match.
	Skip string `json:"skip,omitempty"`

	// DontEmit lists kinds used for state transitions only, items of these kinds are not emitted.
	DontEmit []kind.Kind `json:"dontEmit,omitempty"`

	// Flags are regexp flags ("i", "m", "s", "U") applied to every pattern string.
	Flags string `json:"flags,omitempty"`

	// Flavor selects the regexp engine, empty means Regexp.
	Flavor Flavor `json:"flavor,omitempty"`
}

// Pop describes how many states a rule removes from the state stack.
// N states are popped first, then states are popped while the top state is one of States.
type Pop struct {
	N      int
	States []string
}

// IsZero tells whether p pops nothing.
func (p Pop) IsZero() bool {
	return p.N == 0 && len(p.States) == 0
}

// UnmarshalJSON accepts true (pop one state), false, a number, or a list of state names.
func (p *Pop) UnmarshalJSON(data []byte) error {
	var flag bool
	if json.Unmarshal(data, &flag) == nil {
		*p = Pop{}
		if flag {
			p.N = 1
		}
		return nil
	}

	var n int
	if json.Unmarshal(data, &n) == nil {
		*p = Pop{N: n}
		return nil
	}

	var states []string
	if e := json.Unmarshal(data, &states); e != nil {
		return fmt.Errorf("pop must be a boolean, a number, or a list of state names: %s", data)
	}
	*p = Pop{States: states}
	return nil
}

func (p Pop) MarshalJSON() ([]byte, error) {
	switch {
	case len(p.States) > 0 && p.N == 0:
		return json.Marshal(p.States)
	case len(p.States) == 0:
		return json.Marshal(p.N)
	}
	return nil, fmt.Errorf("cannot marshal both pop count and pop states")
}

// Rule describes a lexer rule or an include directive.
type Rule struct {
	// Kind is the kind of the item emitted for the whole match.
	Kind kind.Kind `json:"kind,omitempty"`

	// Groups are kinds of items emitted for capturing groups, n-th kind for (n+1)-th group.
	// Exactly one of Kind and Groups is used; a rule with neither emits nothing.
	Groups []kind.Kind `json:"groups,omitempty"`

	// Patterns are alternative patterns tried in order.
	Patterns []string `json:"patterns,omitempty"`

	// Compiled are pre-compiled alternatives tried after Patterns;
	// lexer accepts *regexp.Regexp, *regexp2.Regexp, and lexer.Matcher values.
	Compiled []any `json:"-"`

	// Push lists states pushed after a match. PopState and PushState are recognized.
	Push []string `json:"push,omitempty"`

	// Pop describes states popped after a match, before pushing.
	Pop Pop `json:"pop"`

	// Swap replaces the top state after a match. Ignored if Push or Pop is set.
	Swap string `json:"swap,omitempty"`

	// Include, if set, makes this rule a placeholder for all rules of the named state.
	Include string `json:"include,omitempty"`
}

// UnmarshalJSON additionally accepts "pattern" (single pattern) and "push" as a single state name.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type plainRule Rule
	var aux struct {
		plainRule
		Pattern string          `json:"pattern"`
		Push    json.RawMessage `json:"push"`
	}
	if e := json.Unmarshal(data, &aux); e != nil {
		return e
	}

	*r = Rule(aux.plainRule)
	if aux.Pattern != "" {
		r.Patterns = append([]string{aux.Pattern}, r.Patterns...)
	}
	r.Push = nil
	if len(aux.Push) > 0 && string(aux.Push) != "null" {
		var state string
		if json.Unmarshal(aux.Push, &state) == nil {
			r.Push = []string{state}
		} else if e := json.Unmarshal(aux.Push, &r.Push); e != nil {
			return fmt.Errorf("push must be a state name or a list of state names: %s", aux.Push)
		}
	}
	return nil
}

// MarshalJSON omits pop if the rule pops nothing.
func (r Rule) MarshalJSON() ([]byte, error) {
	type plainRule Rule
	aux := struct {
		plainRule
		Pop *Pop `json:"pop,omitempty"`
	}{plainRule: plainRule(r)}
	if !r.Pop.IsZero() {
		aux.Pop = &r.Pop
	}
	return json.Marshal(aux)
}

// IsInclude tells whether r is an include directive.
func (r Rule) IsInclude() bool {
	return r.Include != ""
}

// HasTransition tells whether r changes the state stack.
func (r Rule) HasTransition() bool {
	return len(r.Push) > 0 || !r.Pop.IsZero() || r.Swap != ""
}

// Option modifies a rule created by Tok or ByGroups.
type Option func(r *Rule)

// Tok creates a rule emitting an item of kind k for the whole match of pattern.
func Tok(k kind.Kind, pattern string, opts ...Option) Rule {
	r := Rule{Kind: k, Patterns: []string{pattern}}
	return r.with(opts)
}

// ByGroups creates a rule emitting an item for each matched capturing group of pattern.
func ByGroups(kinds []kind.Kind, pattern string, opts ...Option) Rule {
	r := Rule{Groups: kinds, Patterns: []string{pattern}}
	return r.with(opts)
}

// Silent creates a rule emitting nothing, useful for pure state transitions.
func Silent(pattern string, opts ...Option) Rule {
	r := Rule{Patterns: []string{pattern}}
	return r.with(opts)
}

// Include creates an include directive.
func Include(state string) Rule {
	return Rule{Include: state}
}

func (r Rule) with(opts []Option) Rule {
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Or adds alternative patterns.
func Or(patterns ...string) Option {
	return func(r *Rule) {
		r.Patterns = append(r.Patterns, patterns...)
	}
}

// Compiled adds pre-compiled alternative patterns.
func Compiled(patterns ...any) Option {
	return func(r *Rule) {
		r.Compiled = append(r.Compiled, patterns...)
	}
}

// Push adds states to push.
func Push(states ...string) Option {
	return func(r *Rule) {
		r.Push = append(r.Push, states...)
	}
}

// PopN pops n states.
func PopN(n int) Option {
	return func(r *Rule) {
		r.Pop.N = n
	}
}

// PopStates pops states while the top state is one of given states.
func PopStates(states ...string) Option {
	return func(r *Rule) {
		r.Pop.States = append(r.Pop.States, states...)
	}
}

// Swap replaces the top state.
func Swap(state string) Option {
	return func(r *Rule) {
		r.Swap = state
	}
}

// Parse decodes JSON grammar description.
func Parse(data []byte) (*Grammar, error) {
	g := &Grammar{}
	if e := json.Unmarshal(data, g); e != nil {
		return nil, e
	}
	return g, nil
}

// Load reads and decodes JSON grammar file.
func Load(name string) (*Grammar, error) {
	data, e := os.ReadFile(name)
	if e != nil {
		return nil, e
	}

	return Parse(data)
}
