// Package bridge adapts third-party lexers as item sources for stream and tree.
package bridge

import (
	"errors"
	"strings"

	plexer "github.com/alecthomas/participle/v2/lexer"

	"github.com/ava12/tater"
	"github.com/ava12/tater/kind"
	"github.com/ava12/tater/lexer"
	"github.com/ava12/tater/source"
)

// ErrLex is used for errors returned by participle lexers.
const ErrLex = tater.LexicalErrors + 10

// Options modify symbol mapping, nil means defaults.
type Options struct {
	// Kinds maps participle symbol names to item kinds. Unmapped symbols use kind.Of(name).
	Kinds map[string]kind.Kind

	// Elide lists symbol names whose tokens are dropped.
	Elide []string
}

// Participle is a stream.Source reading tokens of a participle lexer.
// Token values must be unmodified source text, item spans are computed from token offsets.
type Participle struct {
	lex   plexer.Lexer
	src   *source.Source
	kinds map[plexer.TokenType]kind.Kind
	elide map[plexer.TokenType]bool
	done  bool
}

// New starts lexing src with def.
func New(def plexer.Definition, src *source.Source, opts *Options) (*Participle, error) {
	if opts == nil {
		opts = &Options{}
	}

	p := &Participle{
		src:   src,
		kinds: make(map[plexer.TokenType]kind.Kind),
		elide: make(map[plexer.TokenType]bool),
	}
	symbols := def.Symbols()
	for name, typ := range symbols {
		if k, has := opts.Kinds[name]; has {
			p.kinds[typ] = k
		} else {
			p.kinds[typ] = kind.Of(name)
		}
	}
	for _, name := range opts.Elide {
		if typ, has := symbols[name]; has {
			p.elide[typ] = true
		}
	}

	var e error
	if sd, isString := def.(plexer.StringDefinition); isString {
		p.lex, e = sd.LexString(src.Name(), src.Text())
	} else {
		p.lex, e = def.Lex(src.Name(), strings.NewReader(src.Text()))
	}
	if e != nil {
		return nil, p.convert(e)
	}
	return p, nil
}

// Next returns the next non-elided token as an item.
func (p *Participle) Next() (lexer.Item, bool, error) {
	for !p.done {
		tok, e := p.lex.Next()
		if e != nil {
			p.done = true
			return lexer.Item{}, false, p.convert(e)
		}
		if tok.EOF() {
			p.done = true
			break
		}
		if p.elide[tok.Type] {
			continue
		}

		start := tok.Pos.Offset
		return lexer.Item{Start: start, End: start + len(tok.Value), Kind: p.kinds[tok.Type]}, true, nil
	}
	return lexer.Item{}, false, nil
}

func (p *Participle) convert(e error) *tater.Error {
	var le *plexer.Error
	if errors.As(e, &le) {
		return tater.FormatErrorPos(p.src.Pos(le.Pos.Offset), ErrLex, "%s", le.Msg)
	}
	return tater.FormatError(ErrLex, "%s", e.Error())
}
