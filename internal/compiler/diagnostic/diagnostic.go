// Package diagnostic holds the single fatal error type shared by the lexer and
// the parser, along with the caret-snippet renderer used by the CLI.
package diagnostic

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind string

const (
	Lexical Kind = "Lexical"
	Syntax  Kind = "Syntax"
)

// DefaultFile is the location name used when no file has been attached.
const DefaultFile = "<input>"

// Error is a position-tagged compile error. Line and Column are 1-based.
type Error struct {
	Kind    Kind
	Message string
	Source  string
	File    string
	Line    int
	Column  int

	// Incomplete is set when the error was caused by running out of input,
	// i.e. more source could still turn this into a valid program.
	Incomplete bool
}

func New(kind Kind, src string, line, col int, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Source:  src,
		Line:    line,
		Column:  col,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s Error: %s", e.Line, e.Column, e.Kind, e.Message)
}

// WithFile returns a copy of e that renders against the given location name.
func (e *Error) WithFile(name string) *Error {
	c := *e
	c.File = name
	return &c
}

// Render builds the multi-line snippet:
//
//	error: Expected '=' but found number
//	 --> main.pipe:2:5
//	  |
//	2 | let 5 = x
//	  |     ^ Expected '=' but found number
func (e *Error) Render() string {
	file := e.File
	if file == "" {
		file = DefaultFile
	}

	lines := strings.Split(e.Source, "\n")
	line := min(max(e.Line, 1), len(lines))
	col := max(e.Column, 1)
	lineTxt := strings.TrimRight(lines[line-1], "\r")

	num := strconv.Itoa(line)
	gutter := strings.Repeat(" ", len(num))

	var b strings.Builder
	fmt.Fprintf(&b, "error: %s\n", e.Message)
	fmt.Fprintf(&b, "%s--> %s:%d:%d\n", gutter, file, e.Line, e.Column)
	fmt.Fprintf(&b, "%s |\n", gutter)
	fmt.Fprintf(&b, "%s | %s\n", num, lineTxt)
	fmt.Fprintf(&b, "%s | %s^ %s\n", gutter, strings.Repeat(" ", col-1), e.Message)
	return b.String()
}
