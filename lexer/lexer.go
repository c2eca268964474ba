// Package lexer defines stateful regexp lexer.
package lexer

import (
	"fmt"
	"log/slog"

	"github.com/ava12/tater"
	"github.com/ava12/tater/grammar"
	"github.com/ava12/tater/internal/queue"
	"github.com/ava12/tater/kind"
	"github.com/ava12/tater/source"
)

// Error codes used by lexer:
const (
	// ErrIncompleteLex indicates that no rule matches at current position and the state stack is empty.
	// Returned in strict mode only.
	ErrIncompleteLex = tater.LexicalErrors + iota

	// ErrNoProgress indicates that rules keep changing state with empty matches without consuming input.
	ErrNoProgress
)

// maxEmptySteps limits consecutive empty matches at the same position.
const maxEmptySteps = 1000

// Item is a lexed fragment of source text.
type Item struct {
	// Start and End are byte offsets in source text, Start <= End.
	Start, End int

	// Kind is the item kind, never kind.Token for items produced by lexer.
	Kind kind.Kind
}

// Text returns item text.
func (i Item) Text(src *source.Source) string {
	return src.Slice(i.Start, i.End)
}

// Len returns item length in bytes.
func (i Item) Len() int {
	return i.End - i.Start
}

func (i Item) String() string {
	return fmt.Sprintf("%s[%d:%d]", i.Kind, i.Start, i.End)
}

// Options modify lexer behaviour, nil means defaults.
type Options struct {
	// Lenient makes lexer stop silently instead of returning IncompleteLex error.
	Lenient bool

	// Stack is the initial state stack, bottom first. Empty means ["root"].
	Stack []string

	// Pos is the initial byte offset.
	Pos int

	// Logger receives debug records, nil disables logging.
	Logger *slog.Logger
}

// Lexer tokenizes a single source using compiled table.
// Lexer is lazy and single-pass, not safe for concurrent use.
type Lexer struct {
	table      *Table
	src        *source.Source
	pos        int
	stack      []string
	lenient    bool
	log        *slog.Logger
	pending    *queue.Queue[Item]
	emptySteps int
	done       bool
	err        error
}

// New creates a lexer for src. Stack states unknown to the table are not checked here,
// the lexer treats them as states without rules.
func New(t *Table, src *source.Source, opts *Options) *Lexer {
	l := &Lexer{
		table:   t,
		src:     src,
		pending: queue.New[Item](),
	}
	if opts == nil {
		opts = &Options{}
	}

	l.lenient = opts.Lenient
	l.log = opts.Logger
	l.pos = max(0, min(opts.Pos, src.Len()))
	if len(opts.Stack) == 0 {
		l.stack = []string{grammar.RootState}
	} else {
		l.stack = append([]string(nil), opts.Stack...)
	}
	return l
}

// All lexes the whole source and returns emitted items.
// Items lexed before an error are returned along with the error.
func All(t *Table, src *source.Source, opts *Options) ([]Item, error) {
	l := New(t, src, opts)
	var result []Item
	for {
		item, valid, e := l.Next()
		if e != nil || !valid {
			return result, e
		}
		result = append(result, item)
	}
}

// Source returns lexed source.
func (l *Lexer) Source() *source.Source {
	return l.src
}

// Pos returns current byte offset.
func (l *Lexer) Pos() int {
	return l.pos
}

// Stack returns a copy of current state stack, bottom first.
func (l *Lexer) Stack() []string {
	return append([]string(nil), l.stack...)
}

// Next returns next emitted item. Returns false when there are no more items;
// the error (if any) is returned once, after all items lexed before it.
func (l *Lexer) Next() (Item, bool, error) {
	for l.pending.IsEmpty() {
		if l.done {
			e := l.err
			l.err = nil
			return Item{}, false, e
		}

		if e := l.step(); e != nil {
			l.done = true
			l.err = e
		}
	}

	item, _ := l.pending.First()
	return item, true, nil
}

func (l *Lexer) state() string {
	if len(l.stack) == 0 {
		return grammar.RootState
	}
	return l.stack[len(l.stack)-1]
}

// step performs a single rule match, emitting zero or more pending items,
// or pops states until some rule matches.
func (l *Lexer) step() error {
	for {
		if l.pos >= l.src.Len() {
			l.done = true
			return nil
		}

		state := l.state()
		progress, e := l.matchState(state)
		if e != nil || progress {
			return e
		}

		if len(l.stack) > 0 {
			l.stack = l.stack[:len(l.stack)-1]
			l.debug("no match, pop", "state", state)
		}
		if len(l.stack) == 0 {
			l.done = true
			if l.lenient {
				l.debug("incomplete lex", "text", l.rest())
				return nil
			}
			return l.incompleteError()
		}
	}
}

func (l *Lexer) matchState(state string) (bool, error) {
	rules := l.table.states[state]
	for i := 0; i < len(rules); i++ {
		r := rules[i]
		idx, e := l.matchRule(r)
		if e != nil {
			return false, e
		}

		if idx != nil {
			if idx[1] > idx[0] {
				l.emptySteps = 0
			} else {
				l.emptySteps++
				if l.emptySteps > maxEmptySteps {
					return false, l.noProgressError(state)
				}
			}

			l.emit(r, idx)
			l.pos = idx[1]
			l.transit(r, state)
			return true, nil
		}

		if l.table.skip != nil {
			idx, e = l.table.skip.MatchAt(l.src, l.pos)
			if e != nil {
				return false, e
			}
			if idx != nil && idx[1] > l.pos {
				l.debug("skip", "text", l.src.Slice(l.pos, idx[1]))
				l.pos = idx[1]
				l.emptySteps = 0
				if l.pos >= l.src.Len() {
					return true, nil
				}
				i = -1
			}
		}
	}
	return false, nil
}

func (l *Lexer) matchRule(r *rule) ([]int, error) {
	for _, m := range r.matchers {
		idx, e := m.MatchAt(l.src, l.pos)
		if e != nil {
			return nil, e
		}
		if idx != nil && (idx[1] > idx[0] || r.changesState()) {
			return idx, nil
		}
	}
	return nil, nil
}

func (l *Lexer) emit(r *rule, idx []int) {
	if r.emitsWhole() {
		l.push(Item{idx[0], idx[1], r.kind})
		return
	}

	for i, k := range r.groups {
		start, end := idx[i*2+2], idx[i*2+3]
		if start >= 0 {
			l.push(Item{start, end, k})
		}
	}
}

func (l *Lexer) push(item Item) {
	if l.log != nil {
		l.debug("match", "kind", item.Kind, "start", item.Start, "text", item.Text(l.src))
	}
	if l.table.Emits(item.Kind) {
		l.pending.Append(item)
	}
}

func (l *Lexer) transit(r *rule, state string) {
	if !r.changesState() {
		return
	}

	if len(r.push) == 0 && r.pop.IsZero() {
		if len(l.stack) > 0 {
			l.stack[len(l.stack)-1] = r.swap
		} else {
			l.stack = append(l.stack, r.swap)
		}
		l.debug("swap", "state", r.swap)
		return
	}

	l.popN(r.pop.N)
	if len(r.pop.States) > 0 {
		for len(l.stack) > 0 && contains(r.pop.States, l.state()) {
			l.popN(1)
		}
	}

	for _, s := range r.push {
		switch s {
		case grammar.PopState:
			l.popN(1)
		case grammar.PushState:
			l.stack = append(l.stack, state)
		default:
			l.stack = append(l.stack, s)
		}
	}
	if len(r.push) > 0 {
		l.debug("push", "push", r.push)
	}
}

func (l *Lexer) popN(n int) {
	n = min(n, len(l.stack))
	if n > 0 {
		l.stack = l.stack[:len(l.stack)-n]
		l.debug("pop", "count", n)
	}
}

func contains(states []string, state string) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func (l *Lexer) rest() string {
	return l.src.Slice(l.pos, l.src.Len())
}

func (l *Lexer) debug(msg string, args ...any) {
	if l.log == nil {
		return
	}

	for i := 1; i < len(args); i += 2 {
		if text, isText := args[i].(string); isText && args[i-1] == "text" {
			args[i] = tater.ClipText(text)
		}
	}
	args = append(args, "stack", l.stack, "pos", l.pos)
	l.log.Debug(msg, args...)
}

func (l *Lexer) incompleteError() *tater.Error {
	return tater.FormatErrorPos(l.src.Pos(l.pos), ErrIncompleteLex, "cannot lex %q", tater.ClipText(l.rest()))
}

func (l *Lexer) noProgressError(state string) *tater.Error {
	return tater.FormatErrorPos(l.src.Pos(l.pos), ErrNoProgress, "state %q makes no progress", state)
}
