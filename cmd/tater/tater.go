/*
tater is a console utility lexing or parsing a text file.
Usage is

	tater [-g <grammar>] [-root <state>] [-lenient] [-j] [-v] <file>

-g <grammar> defines lexer grammar JSON file; tater prints items lexed from <file>;
without -g <file> is parsed as JSON document and the resulting tree is printed;

-root <state> defines initial lexer state, default is "root";

-lenient makes lexer stop silently at text it cannot lex;

-j prints the grammar as JSON and exits;

-v writes lexer and parser debug records to stderr.
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tjson "github.com/ava12/tater/examples/json"
	"github.com/ava12/tater/grammar"
	"github.com/ava12/tater/lexer"
	"github.com/ava12/tater/parser"
	"github.com/ava12/tater/source"
	"github.com/ava12/tater/tree"
)

var (
	grammarFileName, rootState string
	lenient, dumpGrammar, verbose bool
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage is  tater [-g <grammar>] [-root <state>] [-lenient] [-j] [-v] <file>")
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), "  <file>")
		fmt.Fprintln(flag.CommandLine.Output(), "\tinput file name")
	}

	flag.StringVar(&grammarFileName, "g", "", "lexer grammar JSON file, default is JSON grammar with tree output")
	flag.StringVar(&rootState, "root", grammar.RootState, "initial lexer state")
	flag.BoolVar(&lenient, "lenient", false, "stop silently at text that cannot be lexed")
	flag.BoolVar(&dumpGrammar, "j", false, "print grammar as JSON and exit")
	flag.BoolVar(&verbose, "v", false, "write debug records to stderr")
	flag.Parse()

	inFileName := flag.Arg(0)
	if inFileName == "" && !dumpGrammar {
		flag.Usage()
		os.Exit(2)
	}

	var logger *slog.Logger
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	e := run(os.Stdout, inFileName, logger)
	if e != nil {
		fmt.Println(e.Error())
		os.Exit(3)
	}
}

func run(out io.Writer, inFileName string, logger *slog.Logger) error {
	var (
		gr *grammar.Grammar
		e  error
	)
	if grammarFileName == "" {
		gr = tjson.Grammar()
	} else {
		gr, e = grammar.Load(grammarFileName)
		if e != nil {
			return e
		}
	}

	if dumpGrammar {
		content, e := json.MarshalIndent(gr, "", "  ")
		if e == nil {
			_, e = fmt.Fprintln(out, string(content))
		}
		return e
	}

	table, e := lexer.Compile(gr)
	if e != nil {
		return e
	}
	if !table.HasState(rootState) {
		return fmt.Errorf("unknown state %q, grammar states are: %s", rootState, strings.Join(table.States(), ", "))
	}

	content, e := os.ReadFile(inFileName)
	if e != nil {
		return e
	}
	src := source.NewBytes(inFileName, content)

	if grammarFileName == "" {
		return printTree(out, table, src, logger)
	}
	return printItems(out, table, src, logger)
}

func printItems(out io.Writer, table *lexer.Table, src *source.Source, logger *slog.Logger) error {
	items, e := lexer.All(table, src, &lexer.Options{
		Lenient: lenient,
		Stack:   []string{rootState},
		Logger:  logger,
	})
	for _, item := range items {
		line, col := src.LineCol(item.Start)
		fmt.Fprintf(out, "%d:%d\t%s\t%q\n", line, col, item.Kind, item.Text(src))
	}
	return e
}

func printTree(out io.Writer, table *lexer.Table, src *source.Source, logger *slog.Logger) error {
	p, e := parser.New(table, tjson.NewNodes().Document, &parser.Options{Lenient: lenient, Logger: logger})
	if e != nil {
		return e
	}

	root, e := p.Parse(src)
	if root.IsValid() {
		writeTree(out, root)
	}
	return e
}

func writeTree(out io.Writer, root tree.Node) {
	base := root.Depth()
	root.Walk(tree.WalkLtr, func(n tree.Node) (bool, bool) {
		line := strings.Repeat("  ", n.Depth()-base) + n.TypeName()
		for _, item := range n.Items() {
			line += fmt.Sprintf(" %q", n.Text(item))
		}
		fmt.Fprintln(out, line)
		return true, true
	})
}
