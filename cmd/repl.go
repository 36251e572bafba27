package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arnavsurve/pipelang/internal/compiler"
	"github.com/arnavsurve/pipelang/internal/compiler/diagnostic"
	"github.com/arnavsurve/pipelang/internal/compiler/lexer"
	"github.com/arnavsurve/pipelang/internal/compiler/symbols"
	"github.com/arnavsurve/pipelang/internal/compiler/token"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const (
	historyFile = ".pipelang_history"
	promptMain  = "|> "
	promptCont  = ".. "
)

const replHelp = `REPL commands:
  :js        show generated JavaScript (default)
  :ast       show the parsed program
  :tokens    show the token stream
  :builtins  list runtime functions
  :help      show this help
  :quit      exit
`

type replMode int

const (
	modeJS replMode = iota
	modeAST
	modeTokens
)

// repl: compile snippets interactively
var ReplCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively compile pipelang snippets",
	Args:  cobra.NoArgs,
	RunE:  replRun,
}

func replRun(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "pipelang REPL. Ctrl+D exits, :help lists commands.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	mode := modeJS
	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return nil
			case ":js":
				mode = modeJS
			case ":ast":
				mode = modeAST
			case ":tokens":
				mode = modeTokens
			case ":builtins":
				for _, b := range symbols.All() {
					fmt.Fprintf(out, "  %s\n", b.Signature)
				}
			case ":help":
				fmt.Fprint(out, replHelp)
			default:
				fmt.Fprintf(out, "unknown command %s. Type :help for a list.\n", trimmed)
			}
			continue
		}

		if err := evalEntry(out, src, mode); err != nil {
			var diag *diagnostic.Error
			if errors.As(err, &diag) {
				fmt.Fprint(cmd.ErrOrStderr(), diag.WithFile("<repl>").Render())
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
			}
		}
	}
}

// readEntry reads lines until they form a complete program or a definite
// error. It returns false on end of input.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			// io.EOF on Ctrl+D, or the terminal went away.
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !needsMoreInput(src) {
			return src, true
		}
	}
}

// needsMoreInput reports whether src only failed because it ended early.
func needsMoreInput(src string) bool {
	_, err := compiler.Compile(src)
	var diag *diagnostic.Error
	return errors.As(err, &diag) && diag.Incomplete
}

func evalEntry(out io.Writer, src string, mode replMode) error {
	if mode == modeTokens {
		toks, err := lexer.Tokenize(src)
		if err != nil {
			return err
		}
		for _, tok := range toks {
			if tok.Type == token.TokenNewline {
				continue
			}
			fmt.Fprintf(out, "  %d:%d\t%-10s %q\n", tok.Line, tok.Column, tok.Type, tok.Literal)
		}
		return nil
	}

	res, err := compiler.Compile(src)
	if err != nil {
		return err
	}
	if mode == modeAST {
		fmt.Fprint(out, res.Program.String())
		return nil
	}

	// Drop the import preamble, it is the same for every entry.
	_, body, _ := strings.Cut(res.Code, "\n\n")
	fmt.Fprint(out, body)
	return nil
}
