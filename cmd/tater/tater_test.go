package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ava12/tater/grammar"
	. "github.com/ava12/tater/internal/test"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	name = filepath.Join(t.TempDir(), name)
	ExpectNoError(t, os.WriteFile(name, []byte(content), 0o666))
	return name
}

func reset() {
	grammarFileName, rootState = "", grammar.RootState
	lenient, dumpGrammar, verbose = false, false, false
}

func TestTreeOutput(t *testing.T) {
	reset()
	var out bytes.Buffer
	ExpectNoError(t, run(&out, writeFile(t, "doc.json", `{"a": [1, true]}`), nil))
	expected := `Document
  Object "{"
    Member "a"
      Array "["
        Literal "1"
        Literal "true"
`
	ExpectString(t, expected, out.String())
}

func TestItemOutput(t *testing.T) {
	reset()
	grammarFileName = writeFile(t, "words.json", `{
		"states": {"root": [
			{"kind": "Word", "pattern": "[a-z]+"},
			{"kind": "Number", "pattern": "\\d+"}
		]},
		"skip": "\\s+"
	}`)
	defer reset()

	var out bytes.Buffer
	ExpectNoError(t, run(&out, writeFile(t, "text.txt", "ab 12\ncd"), nil))
	expected := "1:1\tWord\t\"ab\"\n1:4\tNumber\t\"12\"\n2:1\tWord\t\"cd\"\n"
	ExpectString(t, expected, out.String())

	out.Reset()
	lenient = true
	ExpectNoError(t, run(&out, writeFile(t, "text.txt", "ab ! cd"), nil))
	ExpectString(t, "1:1\tWord\t\"ab\"\n", out.String())

	rootState = "none"
	Assert(t, run(&out, writeFile(t, "text.txt", "ab"), nil) != nil, "expecting unknown state error")
}

func TestParseError(t *testing.T) {
	reset()
	var out bytes.Buffer
	e := run(&out, writeFile(t, "doc.json", `[1, 2] 3`), nil)
	Assert(t, e != nil, "expecting error")
}
