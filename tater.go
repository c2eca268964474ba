/*
Package tater is a toolkit for building tree parsers on top of a stateful regexp lexer.

Consists of subpackages:
  - kind: hierarchical token kinds with subtype testing;
  - source: input text with line/column and offset mapping;
  - grammar: declarative, JSON-loadable lexer grammar definitions;
  - lexer: compiles grammars into rule tables and tokenizes input using a state stack;
  - stream: peekable item stream with all-or-nothing pattern taking;
  - dispatch: compiles node handler signatures into a sequence trie and a subtype map;
  - tree: node types, handler registration, the resolve loop, and tree mutation and inspection;
  - parser: glues a lexer table and a root node type together, scans texts for parse starts;
  - bridge: adapts participle lexers as item sources;
  - cmd/tater: console utility dumping lexed items or parsed trees;
  - examples/json, examples/calc: a JSON reader and a line calculator built with the toolkit.

Typical usage is:

1. Describe lexer states as a grammar.Grammar (in Go or in JSON) and compile it with lexer.Compile.

2. Declare node types in a tree.Registry, attach handlers to token kind sequences
or kind subtypes, and build the registry.

3. Lex the input, wrap the lexer in a stream, and resolve the stream starting from a root node.
parser.Parser does step 3 in a single call.
*/
package tater

import (
	"errors"
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	GrammarErrors  = 1   // used by lexer when compiling grammars
	LexicalErrors  = 101 // used by lexer when scanning input
	DispatchErrors = 201 // used by dispatch
	NodeErrors     = 301 // used by tree when declaring and building node types
	ParseErrors    = 401 // used by tree when resolving streams
)

const classSize = 100

// AmbiguousNameError is the only NodeErrors code that is not a configuration error.
// It is defined here because tater cannot import tree.
const AmbiguousNameError = NodeErrors + 50

// Error is the error type used by tater subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source text or 0.
	Line int

	// Col contains column number in source text or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos implements this interface.
type SourcePos interface {
	// SourceName returns source name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if line != 0 && col != 0 {
		if name == "" {
			msg += fmt.Sprintf(" at line %d col %d", line, col)
		} else {
			msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
		}
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// Class returns the first code of the error class e.Code belongs to.
func (e *Error) Class() int {
	return (e.Code-1)/classSize*classSize + 1
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

func errorClass(e error) (int, int, bool) {
	var te *Error
	if !errors.As(e, &te) {
		return 0, 0, false
	}

	return te.Class(), te.Code, true
}

// IsConfigurationError tells whether e is caused by a malformed grammar or node type declarations.
func IsConfigurationError(e error) bool {
	class, code, valid := errorClass(e)
	if !valid {
		return false
	}

	switch class {
	case GrammarErrors, DispatchErrors:
		return true
	case NodeErrors:
		return code != AmbiguousNameError
	}
	return false
}

// IsIncompleteLex tells whether e is returned by a strict lexer unable to consume the whole input.
func IsIncompleteLex(e error) bool {
	class, _, valid := errorClass(e)
	return valid && class == LexicalErrors
}

// IsParseError tells whether e is returned because no node could handle the upcoming items.
func IsParseError(e error) bool {
	class, _, valid := errorClass(e)
	return valid && class == ParseErrors
}

// IsAmbiguousNodeName tells whether e is returned by a node type lookup matching several types.
func IsAmbiguousNodeName(e error) bool {
	_, code, valid := errorClass(e)
	return valid && code == AmbiguousNameError
}

// LogTextWidth limits the length of input text fragments written to debug logs.
const LogTextWidth = 300

// ClipText shortens text to LogTextWidth bytes for logging.
func ClipText(text string) string {
	if len(text) <= LogTextWidth {
		return text
	}
	return text[:LogTextWidth] + "..."
}
