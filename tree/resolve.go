package tree

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ava12/tater"
	"github.com/ava12/tater/lexer"
	"github.com/ava12/tater/stream"
)

// Error codes used when resolving streams:
const (
	// ErrNoHandler indicates that no node in the ancestor chain handles upcoming items.
	ErrNoHandler = tater.ParseErrors + iota

	// ErrNoNode indicates that a handler returned zero Node.
	ErrNoNode
)

// errorWindow is the number of upcoming items listed in ErrNoHandler message.
const errorWindow = 10

// ParseOptions modify parsing, nil means defaults.
type ParseOptions struct {
	// Logger receives debug records, nil disables logging.
	Logger *slog.Logger
}

// Resolve finds a handler for upcoming items on n or its nearest ancestor, takes the matched items,
// and calls the handler. Returns the node returned by the handler and true.
// Returns false if no handler matched and the stream is exhausted,
// along with the stream error if the stream was ended by an error.
func (n Node) Resolve(s *stream.Stream) (Node, bool, error) {
	for cur := n; cur.IsValid(); cur = cur.Parent() {
		typ := cur.Type()
		if typ.table == nil {
			return n, false, tater.FormatError(ErrNotBuilt, "node type %s is not built", typ.name)
		}

		m, found := typ.table.Match(s)
		if found {
			items := s.TakeN(m.Len)
			next, e := m.Handler(cur, items)
			if e != nil {
				return n, false, e
			}
			if !next.IsValid() {
				return n, false, noNodeError(cur, s, items)
			}
			return next, true, nil
		}

		if s.Exhausted() {
			return n, false, s.Err()
		}
	}

	return n, false, noHandlerError(n, s)
}

// Parse resolves the stream starting from root until the stream is exhausted
// and returns the topmost ancestor of the last current node.
// On error returns the topmost ancestor of the node that failed along with the error.
func Parse(root Node, s *stream.Stream, opts *ParseOptions) (Node, error) {
	var log *slog.Logger
	if opts != nil {
		log = opts.Logger
	}

	cur := root
	for {
		if log != nil {
			args := []any{"node", cur.TypeName(), "depth", cur.Depth()}
			if item, valid := s.This(); valid {
				args = append(args, "kind", item.Kind, "text", tater.ClipText(s.Text(item)))
			}
			log.Debug("resolve", args...)
		}

		next, more, e := cur.Resolve(s)
		if e != nil {
			if log != nil {
				log.Debug("parse failed", "error", e)
			}
			return cur.Root(), e
		}
		if !more {
			return next.Root(), nil
		}
		cur = next
	}
}

// ParseType creates a new tree over the stream source, a root node of type typ, and parses the stream.
func ParseType(typ *Type, s *stream.Stream, opts *ParseOptions) (Node, error) {
	root := NewTree(s.Source()).New(typ)
	return Parse(root, s, opts)
}

func upcoming(s *stream.Stream) string {
	items := s.Upcoming(errorWindow)
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("(%s %q)", item.Kind, tater.ClipText(s.Text(item)))
	}
	return strings.Join(parts, " ")
}

func noHandlerError(n Node, s *stream.Stream) *tater.Error {
	item, _ := s.This()
	return tater.FormatErrorPos(s.Source().Pos(item.Start), ErrNoHandler,
		"no handler on %s or its ancestors for %s %q, upcoming: %s",
		n.TypeName(), item.Kind, tater.ClipText(s.Text(item)), upcoming(s))
}

func noNodeError(n Node, s *stream.Stream, items []lexer.Item) *tater.Error {
	pos := s.Source().Pos(0)
	if len(items) > 0 {
		pos = s.Source().Pos(items[0].Start)
	}
	return tater.FormatErrorPos(pos, ErrNoNode, "handler on %s returned no node", n.TypeName())
}
