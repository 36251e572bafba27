package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/arnavsurve/pipelang/internal/compiler/ast"
	"github.com/arnavsurve/pipelang/internal/compiler/diagnostic"
	"github.com/arnavsurve/pipelang/internal/compiler/emitter"
	"github.com/arnavsurve/pipelang/internal/compiler/lexer"
	"github.com/arnavsurve/pipelang/internal/compiler/parser"
	"github.com/arnavsurve/pipelang/internal/compiler/runtime"
)

const (
	SourceExt = ".pipe"
	OutputExt = ".mjs"

	// DefaultNode is the JavaScript runtime used when none is configured.
	DefaultNode = "node"
)

// Result is a compiled program.
type Result struct {
	Program *ast.Program
	Code    string
}

// Compile runs the lexer, parser and emitter over src. Lexical and syntax
// errors are returned as *diagnostic.Error.
func Compile(src string) (*Result, error) {
	prog, err := parseProgram(src)
	if err != nil {
		return nil, err
	}

	code, err := emitter.NewEmitter().Emit(prog)
	if err != nil {
		return nil, fmt.Errorf("emitter: %w", err)
	}
	return &Result{Program: prog, Code: code}, nil
}

// CompileFile compiles the file at path; diagnostics carry the path.
func CompileFile(path string) (*Result, error) {
	if err := validateExtension(path); err != nil {
		return nil, err
	}

	content, err := readSource(path)
	if err != nil {
		return nil, err
	}

	res, err := Compile(content)
	if err != nil {
		var diag *diagnostic.Error
		if errors.As(err, &diag) {
			return nil, diag.WithFile(path)
		}
		return nil, err
	}
	return res, nil
}

// CompileAndWrite compiles srcPath and writes the module plus the runtime
// library into outDir, returning the path of the generated module.
func CompileAndWrite(srcPath, outDir string) (string, error) {
	res, err := CompileFile(srcPath)
	if err != nil {
		return "", err
	}
	return WriteOutput(res, srcPath, outDir)
}

// WriteOutput writes a compiled program next to a copy of the runtime library.
func WriteOutput(res *Result, srcPath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	outFile := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(srcPath), SourceExt)+OutputExt)
	if err := os.WriteFile(outFile, []byte(res.Code), 0o644); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(outDir, runtime.FileName), runtime.Source(), 0o644); err != nil {
		return "", err
	}
	return outFile, nil
}

type RunOptions struct {
	Node    string        // JavaScript runtime binary, DefaultNode when empty
	Args    []string      // passed through to the program
	Timeout time.Duration // zero means no limit
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// Run compiles srcPath into a temporary directory, executes it and returns the
// program's exit code. The temporary directory is always removed.
func Run(ctx context.Context, srcPath string, opts RunOptions) (int, error) {
	res, err := CompileFile(srcPath)
	if err != nil {
		return 1, err
	}

	dir, err := os.MkdirTemp("", "pipelang-*")
	if err != nil {
		return 1, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	mainFile, err := WriteOutput(res, srcPath, dir)
	if err != nil {
		return 1, fmt.Errorf("writing output: %w", err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	node := opts.Node
	if node == "" {
		node = DefaultNode
	}

	cmd := exec.CommandContext(ctx, node, append([]string{mainFile}, opts.Args...)...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err = cmd.Run()
	if opts.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return 1, fmt.Errorf("%s timed out after %v", srcPath, opts.Timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code, nil
		}
		return 1, nil
	}
	if err != nil {
		return 1, fmt.Errorf("running %s: %w", node, err)
	}
	return 0, nil
}

func validateExtension(path string) error {
	if filepath.Ext(path) != SourceExt {
		return fmt.Errorf("source must have %s extension", SourceExt)
	}
	return nil
}

func readSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

func parseProgram(src string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return parser.New(toks).WithSource(src).ParseProgram()
}
