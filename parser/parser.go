// Package parser glues a compiled lexer table and a root node type together.
package parser

import (
	"log/slog"

	"github.com/ava12/tater"
	"github.com/ava12/tater/lexer"
	"github.com/ava12/tater/source"
	"github.com/ava12/tater/stream"
	"github.com/ava12/tater/tree"
)

// ItemHook is called for every lexed item before it reaches the stream.
// Returning false drops the item, returning an error stops parsing.
type ItemHook = func(item lexer.Item, src *source.Source) (emit bool, e error)

// Options modify parser behaviour, nil means defaults.
type Options struct {
	// Lenient makes lexer stop silently at text it cannot lex.
	Lenient bool

	// ItemHook filters lexed items, may be nil.
	ItemHook ItemHook

	// Logger receives lexer and parser debug records, nil disables logging.
	Logger *slog.Logger
}

// Parser is immutable and may be used by concurrent goroutines.
type Parser struct {
	table *lexer.Table
	root  *tree.Type
	opts  Options
}

// New creates a parser. The registry of root must be built.
func New(table *lexer.Table, root *tree.Type, opts *Options) (*Parser, error) {
	if !root.Registry().IsBuilt() {
		return nil, tater.FormatError(tree.ErrNotBuilt, "registry of node type %s is not built", root.Name())
	}

	p := &Parser{table: table, root: root}
	if opts != nil {
		p.opts = *opts
	}
	return p, nil
}

// MustNew is like New but panics on error.
func MustNew(table *lexer.Table, root *tree.Type, opts *Options) *Parser {
	p, e := New(table, root, opts)
	if e != nil {
		panic(e)
	}
	return p
}

// Table returns lexer table.
func (p *Parser) Table() *lexer.Table {
	return p.table
}

// Root returns root node type.
func (p *Parser) Root() *tree.Type {
	return p.root
}

// Parse parses the whole source into a new tree.
func (p *Parser) Parse(src *source.Source) (tree.Node, error) {
	root := tree.NewTree(src).New(p.root)
	return p.ParseInto(root, 0)
}

// ParseString parses named text.
func (p *Parser) ParseString(name, text string) (tree.Node, error) {
	return p.Parse(source.New(name, text))
}

// ParseInto parses tree source starting at byte offset pos, root is the starting node.
// Returns the topmost ancestor of the last current node.
func (p *Parser) ParseInto(root tree.Node, pos int) (tree.Node, error) {
	return p.parse(root, pos, p.opts.Lenient)
}

func (p *Parser) parse(root tree.Node, pos int, lenient bool) (tree.Node, error) {
	src := root.Tree().Source()
	l := lexer.New(p.table, src, &lexer.Options{
		Lenient: lenient,
		Pos:     pos,
		Logger:  p.opts.Logger,
	})

	var items stream.Source = l
	if p.opts.ItemHook != nil {
		items = &hookSource{l, p.opts.ItemHook, src}
	}
	return tree.Parse(root, stream.New(items, src), &tree.ParseOptions{Logger: p.opts.Logger})
}

type hookSource struct {
	src  stream.Source
	hook ItemHook
	text *source.Source
}

func (hs *hookSource) Next() (lexer.Item, bool, error) {
	for {
		item, valid, e := hs.src.Next()
		if !valid || e != nil {
			return item, valid, e
		}

		emit, e := hs.hook(item, hs.text)
		if e != nil {
			return lexer.Item{}, false, e
		}
		if emit {
			return item, true, nil
		}
	}
}
