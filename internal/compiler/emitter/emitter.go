package emitter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/arnavsurve/pipelang/internal/compiler/ast"
	"github.com/arnavsurve/pipelang/internal/compiler/symbols"
)

// NOTES:
// - Every helper returns the fragment it generated; nothing writes to a shared
//   buffer, so nested blocks need no save/restore.
// - Statement fragments carry their own indentation and trailing newline.
//   Expression fragments carry neither; depth only matters for the lines inside
//   block-bodied lambdas and immediately invoked blocks.

const indentUnit = "  "

// ErrUnknownNode means the parser produced a node the emitter has no rule for.
// It signals a bug in the compiler, not in the program being compiled.
var ErrUnknownNode = errors.New("emitter: unknown AST node")

// jsReserved lists names that cannot be used as JavaScript bindings, plus the
// runtime import alias and `undefined`, which generated code relies on.
var jsReserved = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "enum": true, "export": true, "extends": true,
	"finally": true, "function": true, "implements": true, "import": true,
	"instanceof": true, "interface": true, "new": true, "package": true,
	"private": true, "protected": true, "public": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true, "try": true,
	"typeof": true, "void": true, "with": true, "yield": true,
	"arguments": true, "eval": true, "undefined": true,
	symbols.RuntimeNamespace: true,
}

type Emitter struct{}

func NewEmitter() *Emitter {
	return &Emitter{}
}

// Emit generates a JavaScript module for program.
func (e *Emitter) Emit(program *ast.Program) (string, error) {
	var out strings.Builder
	fmt.Fprintf(&out, "import * as %s from '%s';\n\n", symbols.RuntimeNamespace, symbols.RuntimeModule)

	for _, stmt := range program.Statements {
		frag, err := e.emitStatement(stmt, 0)
		if err != nil {
			return "", err
		}
		out.WriteString(frag)
	}
	return out.String(), nil
}

// Builtins returns the sorted names of runtime functions program calls.
func Builtins(program *ast.Program) []string {
	seen := map[string]bool{}
	ast.Walk(program, func(n ast.Node) bool {
		var callee ast.Expression
		switch n := n.(type) {
		case *ast.CallExpression:
			callee = n.Function
		case *ast.PipeExpression:
			callee = n.Right
		}
		if id, ok := callee.(*ast.Identifier); ok && symbols.IsBuiltin(id.Value) {
			seen[id.Value] = true
		}
		return true
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --- Statements ---

func indent(depth int) string {
	return strings.Repeat(indentUnit, depth)
}

func (e *Emitter) emitStatement(stmt ast.Statement, depth int) (string, error) {
	ind := indent(depth)

	switch stmt := stmt.(type) {
	case *ast.DeclarationStatement:
		value, err := e.emitExpression(stmt.Value, depth)
		if err != nil {
			return "", err
		}
		keyword := "let"
		if stmt.IsConst {
			keyword = "const"
		}
		return fmt.Sprintf("%s%s %s = %s;\n", ind, keyword, sanitizeIdentifier(stmt.Name.Value), value), nil

	case *ast.FunctionDeclaration:
		return e.emitFunctionDeclaration(stmt, depth)

	case *ast.AssignmentStatement:
		value, err := e.emitExpression(stmt.Value, depth)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%s = %s;\n", ind, sanitizeIdentifier(stmt.Name.Value), value), nil

	case *ast.ReturnStatement:
		if stmt.Value == nil {
			return ind + "return;\n", nil
		}
		value, err := e.emitExpression(stmt.Value, depth)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%sreturn %s;\n", ind, value), nil

	case *ast.WhileStatement:
		cond, err := e.emitExpression(stmt.Condition, depth)
		if err != nil {
			return "", err
		}
		body, err := e.emitBody(stmt.Body.Statements, depth+1, false)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%swhile (%s) {\n%s%s}\n", ind, cond, body, ind), nil

	case *ast.ForStatement:
		iterable, err := e.emitExpression(stmt.Iterable, depth)
		if err != nil {
			return "", err
		}
		body, err := e.emitBody(stmt.Body.Statements, depth+1, false)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%sfor (const %s of %s) {\n%s%s}\n",
			ind, sanitizeIdentifier(stmt.Variable.Value), iterable, body, ind), nil

	case *ast.ExpressionStatement:
		return e.emitExpressionStatement(stmt.Expression, depth, false)

	default:
		return "", fmt.Errorf("%w: statement %T", ErrUnknownNode, stmt)
	}
}

func (e *Emitter) emitFunctionDeclaration(fn *ast.FunctionDeclaration, depth int) (string, error) {
	ind := indent(depth)
	header := fmt.Sprintf("%sfunction %s(%s) {\n", ind, sanitizeIdentifier(fn.Name.Value), emitParams(fn.Parameters))

	if fn.IsExpression {
		value, err := e.emitExpression(fn.Body, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%sreturn %s;\n%s}\n", header, indent(depth+1), value, ind), nil
	}

	block, ok := fn.Body.(*ast.BlockExpression)
	if !ok {
		return "", fmt.Errorf("%w: block-style function %q has %T body", ErrUnknownNode, fn.Name.Value, fn.Body)
	}
	body, err := e.emitBody(block.Statements, depth+1, true)
	if err != nil {
		return "", err
	}
	return header + body + ind + "}\n", nil
}

// emitExpressionStatement emits an expression in statement position. With
// returnsValue set the statement is the trailing one of a value-producing body
// and its value is returned.
func (e *Emitter) emitExpressionStatement(expr ast.Expression, depth int, returnsValue bool) (string, error) {
	ind := indent(depth)

	switch expr := expr.(type) {
	case *ast.IfExpression:
		frag, err := e.emitIfStatement(expr, depth, returnsValue)
		if err != nil {
			return "", err
		}
		return ind + frag, nil
	case *ast.BlockExpression:
		body, err := e.emitBody(expr.Statements, depth+1, returnsValue)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s{\n%s%s}\n", ind, body, ind), nil
	}

	value, err := e.emitExpression(expr, depth)
	if err != nil {
		return "", err
	}
	if returnsValue {
		return fmt.Sprintf("%sreturn %s;\n", ind, value), nil
	}
	return fmt.Sprintf("%s%s;\n", ind, value), nil
}

// emitBody is shared by block functions, block lambdas, loop bodies and
// immediately invoked blocks. When returnsValue is set, a trailing expression
// statement becomes the returned value and an empty body returns undefined.
func (e *Emitter) emitBody(stmts []ast.Statement, depth int, returnsValue bool) (string, error) {
	if returnsValue && len(stmts) == 0 {
		return indent(depth) + "return undefined;\n", nil
	}

	var out strings.Builder
	for i, stmt := range stmts {
		var (
			frag string
			err  error
		)
		exprStmt, isExpr := stmt.(*ast.ExpressionStatement)
		if returnsValue && isExpr && i == len(stmts)-1 {
			frag, err = e.emitExpressionStatement(exprStmt.Expression, depth, true)
		} else {
			frag, err = e.emitStatement(stmt, depth)
		}
		if err != nil {
			return "", err
		}
		out.WriteString(frag)
	}
	return out.String(), nil
}

// emitIfStatement renders `if (...) {...} else ...` without leading indentation
// so that else-if chains can be spliced onto the previous closing brace.
func (e *Emitter) emitIfStatement(ie *ast.IfExpression, depth int, returnsValue bool) (string, error) {
	ind := indent(depth)

	cond, err := e.emitExpression(ie.Condition, depth)
	if err != nil {
		return "", err
	}
	cons, err := e.emitBranch(ie.Consequence, depth+1, returnsValue)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	fmt.Fprintf(&out, "if (%s) {\n%s%s}", cond, cons, ind)

	switch alt := ie.Alternative.(type) {
	case nil:
		out.WriteString("\n")
	case *ast.IfExpression:
		rest, err := e.emitIfStatement(alt, depth, returnsValue)
		if err != nil {
			return "", err
		}
		out.WriteString(" else " + rest)
	default:
		body, err := e.emitBranch(alt, depth+1, returnsValue)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&out, " else {\n%s%s}\n", body, ind)
	}
	return out.String(), nil
}

func (e *Emitter) emitBranch(branch ast.Expression, depth int, returnsValue bool) (string, error) {
	if block, ok := branch.(*ast.BlockExpression); ok {
		return e.emitBody(block.Statements, depth, returnsValue)
	}
	return e.emitExpressionStatement(branch, depth, returnsValue)
}

// --- Expressions ---

func (e *Emitter) emitExpression(expr ast.Expression, depth int) (string, error) {
	switch expr := expr.(type) {
	case *ast.Identifier:
		return sanitizeIdentifier(expr.Value), nil

	case *ast.NumberLiteral:
		if math.IsInf(expr.Value, 1) {
			return "Infinity", nil
		}
		return strconv.FormatFloat(expr.Value, 'f', -1, 64), nil

	case *ast.StringLiteral:
		return quoteString(expr.Value), nil

	case *ast.BooleanLiteral:
		return strconv.FormatBool(expr.Value), nil

	case *ast.NullLiteral:
		return "null", nil

	case *ast.ArrayLiteral:
		elems, err := e.emitExpressionList(expr.Elements, depth)
		if err != nil {
			return "", err
		}
		return "[" + elems + "]", nil

	case *ast.BinaryExpression:
		left, err := e.emitExpression(expr.Left, depth)
		if err != nil {
			return "", err
		}
		right, err := e.emitExpression(expr.Right, depth)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, binaryOperator(expr.Operator), right), nil

	case *ast.UnaryExpression:
		operand, err := e.emitExpression(expr.Operand, depth)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s%s)", expr.Operator, operand), nil

	case *ast.PipeExpression:
		return e.emitPipe(expr, depth)

	case *ast.CallExpression:
		callee, err := e.emitCallee(expr.Function, depth)
		if err != nil {
			return "", err
		}
		args, err := e.emitExpressionList(expr.Arguments, depth)
		if err != nil {
			return "", err
		}
		return callee + "(" + args + ")", nil

	case *ast.LambdaExpression:
		return e.emitLambda(expr, depth)

	case *ast.BlockExpression:
		body, err := e.emitBody(expr.Statements, depth+1, true)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(() => {\n%s%s})()", body, indent(depth)), nil

	case *ast.IfExpression:
		cond, err := e.emitExpression(expr.Condition, depth)
		if err != nil {
			return "", err
		}
		cons, err := e.emitExpression(expr.Consequence, depth)
		if err != nil {
			return "", err
		}
		alt := "undefined"
		if expr.Alternative != nil {
			alt, err = e.emitExpression(expr.Alternative, depth)
			if err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("(%s ? %s : %s)", cond, cons, alt), nil

	default:
		return "", fmt.Errorf("%w: expression %T", ErrUnknownNode, expr)
	}
}

// emitPipe rewrites `left |> f` to f(left) and `left |> f(a, b)` to
// f(left, a, b).
func (e *Emitter) emitPipe(pipe *ast.PipeExpression, depth int) (string, error) {
	left, err := e.emitExpression(pipe.Left, depth)
	if err != nil {
		return "", err
	}

	switch target := pipe.Right.(type) {
	case *ast.Identifier:
		callee, err := e.emitCallee(target, depth)
		if err != nil {
			return "", err
		}
		return callee + "(" + left + ")", nil
	case *ast.CallExpression:
		callee, err := e.emitCallee(target.Function, depth)
		if err != nil {
			return "", err
		}
		args, err := e.emitExpressionList(target.Arguments, depth)
		if err != nil {
			return "", err
		}
		if args == "" {
			return callee + "(" + left + ")", nil
		}
		return callee + "(" + left + ", " + args + ")", nil
	default:
		return "", fmt.Errorf("%w: pipe target %T", ErrUnknownNode, pipe.Right)
	}
}

// emitCallee qualifies built-in names with the runtime namespace.
func (e *Emitter) emitCallee(callee ast.Expression, depth int) (string, error) {
	if id, ok := callee.(*ast.Identifier); ok && symbols.IsBuiltin(id.Value) {
		return symbols.RuntimeNamespace + "." + id.Value, nil
	}
	return e.emitExpression(callee, depth)
}

func (e *Emitter) emitLambda(lambda *ast.LambdaExpression, depth int) (string, error) {
	params := emitParams(lambda.Parameters)

	if block, ok := lambda.Body.(*ast.BlockExpression); ok {
		body, err := e.emitBody(block.Statements, depth+1, true)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("((%s) => {\n%s%s})", params, body, indent(depth)), nil
	}

	body, err := e.emitExpression(lambda.Body, depth)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("((%s) => %s)", params, body), nil
}

func (e *Emitter) emitExpressionList(exprs []ast.Expression, depth int) (string, error) {
	parts := make([]string, len(exprs))
	for i, expr := range exprs {
		frag, err := e.emitExpression(expr, depth)
		if err != nil {
			return "", err
		}
		parts[i] = frag
	}
	return strings.Join(parts, ", "), nil
}

// --- Helpers ---

func emitParams(params []*ast.Identifier) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = sanitizeIdentifier(p.Value)
	}
	return strings.Join(names, ", ")
}

// binaryOperator maps equality to the strict JavaScript operators.
func binaryOperator(op string) string {
	switch op {
	case "==":
		return "==="
	case "!=":
		return "!=="
	default:
		return op
	}
}

// sanitizeIdentifier suffixes names JavaScript would reject or that collide
// with names generated code depends on.
func sanitizeIdentifier(name string) string {
	if jsReserved[name] {
		return name + "_"
	}
	return name
}

// quoteString produces a JavaScript string literal. JSON string syntax is a
// subset of JavaScript's and json escapes U+2028/U+2029 as well.
func quoteString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
