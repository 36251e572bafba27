package emitter

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/arnavsurve/pipelang/internal/compiler/ast"
	"github.com/arnavsurve/pipelang/internal/compiler/parser"
)

const preamble = "import * as runtime from './runtime.mjs';\n\n"

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	return program
}

// emitBody compiles src and returns the generated code without the preamble.
func emitBody(t *testing.T, src string) string {
	t.Helper()
	code, err := NewEmitter().Emit(parseProgram(t, src))
	if err != nil {
		t.Fatalf("Emit(%q) returned error: %v", src, err)
	}
	if !strings.HasPrefix(code, preamble) {
		t.Fatalf("generated code is missing the runtime import:\n%s", code)
	}
	return strings.TrimPrefix(code, preamble)
}

func TestEmitExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"5 |> add(3)", "add(5, 3);\n"},
		{"5 |> double", "double(5);\n"},
		{"x |> f()", "f(x);\n"},
		{"a |> f |> g(1, 2)", "g(f(a), 1, 2);\n"},
		{"xs |> sum", "runtime.sum(xs);\n"},
		{"print(42)", "runtime.print(42);\n"},
		{"x == y", "(x === y);\n"},
		{"x != y", "(x !== y);\n"},
		{"1 + 2 * 3", "(1 + (2 * 3));\n"},
		{"a && !b || c", "((a && (!b)) || c);\n"},
		{"-x", "(-x);\n"},
		{"f(1)(2)", "f(1)(2);\n"},
		{"[1, 2.50, 007]", "[1, 2.5, 7];\n"},
		{"[]", "[];\n"},
		{"true", "true;\n"},
		{"null", "null;\n"},
		{`"a\"b"`, "\"a\\\"b\";\n"},
		{`'single \' quote'`, "\"single ' quote\";\n"},
		{`"tab\there"`, "\"tab\\there\";\n"},
		{`"<html> & </script>"`, "\"<html> & </script>\";\n"},
		{"\"line\u2028sep\"", "\"line\\u2028sep\";\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := emitBody(t, tt.input); got != tt.want {
				t.Errorf("expected=%q, got=%q", tt.want, got)
			}
		})
	}
}

func TestEmitStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "let is const",
			input: "let n = 1",
			want:  "const n = 1;\n",
		},
		{
			name:  "var is let",
			input: "var n = 1\nn = n + 1",
			want:  "let n = 1;\nn = (n + 1);\n",
		},
		{
			name:  "expression function",
			input: "fn add(a, b) = a + b",
			want:  "function add(a, b) {\n  return (a + b);\n}\n",
		},
		{
			name:  "block function",
			input: "fn twice(x) { let y = x * 2; y }",
			want:  "function twice(x) {\n  const y = (x * 2);\n  return y;\n}\n",
		},
		{
			name:  "empty block function",
			input: "fn nothing() {}",
			want:  "function nothing() {\n  return undefined;\n}\n",
		},
		{
			name:  "explicit return",
			input: "fn f(x) { return x; print(x) }",
			want:  "function f(x) {\n  return x;\n  return runtime.print(x);\n}\n",
		},
		{
			name:  "bare return",
			input: "fn f() { return }",
			want:  "function f() {\n  return;\n}\n",
		},
		{
			name:  "while",
			input: "while i < 3 { i = i + 1 }",
			want:  "while ((i < 3)) {\n  i = (i + 1);\n}\n",
		},
		{
			name:  "for",
			input: "for x in xs { print(x) }",
			want:  "for (const x of xs) {\n  runtime.print(x);\n}\n",
		},
		{
			name:  "block value",
			input: "let r = { let x = 5; x * 2 }",
			want:  "const r = (() => {\n  const x = 5;\n  return (x * 2);\n})();\n",
		},
		{
			name:  "empty block value",
			input: "let e = {}",
			want:  "const e = (() => {\n  return undefined;\n})();\n",
		},
		{
			name:  "statement block",
			input: "{ let a = 1; print(a) }",
			want:  "{\n  const a = 1;\n  runtime.print(a);\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emitBody(t, tt.input); got != tt.want {
				t.Errorf("wrong output.\nexpected:\n%s\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestEmitIf(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "ternary",
			input: "let v = if a then 1 else 2",
			want:  "const v = (a ? 1 : 2);\n",
		},
		{
			name:  "ternary without else",
			input: "let v = if a then 1",
			want:  "const v = (a ? 1 : undefined);\n",
		},
		{
			name:  "ternary with block branches",
			input: "let v = if a { 1 } else { 2 }",
			want:  "const v = (a ? (() => {\n  return 1;\n})() : (() => {\n  return 2;\n})());\n",
		},
		{
			name:  "statement if",
			input: "if a { print(1) } else { print(2) }",
			want:  "if (a) {\n  runtime.print(1);\n} else {\n  runtime.print(2);\n}\n",
		},
		{
			name:  "statement if without else",
			input: "if a then print(1)",
			want:  "if (a) {\n  runtime.print(1);\n}\n",
		},
		{
			name: "trailing if returns from every branch",
			input: `fn sign(n) {
  if n < 0 { -1 } else if n == 0 { 0 } else { 1 }
}`,
			want: "function sign(n) {\n" +
				"  if ((n < 0)) {\n" +
				"    return (-1);\n" +
				"  } else if ((n === 0)) {\n" +
				"    return 0;\n" +
				"  } else {\n" +
				"    return 1;\n" +
				"  }\n" +
				"}\n",
		},
		{
			name:  "trailing if with then branches",
			input: "fn abs(x) { if x < 0 then -x else x }",
			want:  "function abs(x) {\n  if ((x < 0)) {\n    return (-x);\n  } else {\n    return x;\n  }\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emitBody(t, tt.input); got != tt.want {
				t.Errorf("wrong output.\nexpected:\n%s\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestEmitLambdas(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let f = |x| x * 2", "const f = ((x) => (x * 2));\n"},
		{"let k = || 42", "const k = (() => 42);\n"},
		{
			"let g = |x| { let y = x; y }",
			"const g = ((x) => {\n  const y = x;\n  return y;\n});\n",
		},
		{
			"xs |> map(|x, i| { x + i })",
			"runtime.map(xs, ((x, i) => {\n  return (x + i);\n}));\n",
		},
		{
			"fn f(xs) { xs |> filter(|x, i| { x > i }) }",
			"function f(xs) {\n  return runtime.filter(xs, ((x, i) => {\n    return (x > i);\n  }));\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := emitBody(t, tt.input); got != tt.want {
				t.Errorf("wrong output.\nexpected:\n%s\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestReservedIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let class = 1", "const class_ = 1;\n"},
		{"fn new(this) = this", "function new_(this_) {\n  return this_;\n}\n"},
		{"let runtime = 2", "const runtime_ = 2;\n"},
		{"undefined |> typeof", "typeof_(undefined_);\n"},
		{"let value = 3", "const value = 3;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := emitBody(t, tt.input); got != tt.want {
				t.Errorf("expected=%q, got=%q", tt.want, got)
			}
		})
	}
}

func TestPipeMatchesDirectCall(t *testing.T) {
	tests := []struct{ piped, direct string }{
		{"5 |> add(3)", "add(5, 3)"},
		{"xs |> map(f) |> sum", "sum(map(xs, f))"},
		{"range(1, 5) |> filter(|x, i| x > 2)", "filter(range(1, 5), |x, i| x > 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.piped, func(t *testing.T) {
			if a, b := emitBody(t, tt.piped), emitBody(t, tt.direct); a != b {
				t.Errorf("pipe and call differ.\npiped:  %q\ndirect: %q", a, b)
			}
		})
	}
}

func TestEmptyProgram(t *testing.T) {
	if got := emitBody(t, ""); got != "" {
		t.Fatalf("expected only the preamble, got %q", got)
	}
}

func TestUnknownNode(t *testing.T) {
	program := &ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: &ast.PipeExpression{
			Left:  &ast.NumberLiteral{Value: 1},
			Right: &ast.NumberLiteral{Value: 2},
		}},
	}}
	_, err := NewEmitter().Emit(program)
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestBuiltins(t *testing.T) {
	program := parseProgram(t, `
fn double(x) = x * 2
let xs = range(0, 10) |> map(|x, i| double(x)) |> sum
print(xs, len([1]))`)

	want := []string{"len", "map", "print", "range", "sum"}
	if got := Builtins(program); !reflect.DeepEqual(got, want) {
		t.Fatalf("Builtins expected=%v, got=%v", want, got)
	}
}

func TestEmitNumberBeyondFloatRange(t *testing.T) {
	huge := "9" + strings.Repeat("9", 400)
	if got := emitBody(t, huge); got != "Infinity;\n" {
		t.Errorf("expected=%q, got=%q", "Infinity;\n", got)
	}
	if got := emitBody(t, "-"+huge); got != "(-Infinity);\n" {
		t.Errorf("expected=%q, got=%q", "(-Infinity);\n", got)
	}
}
