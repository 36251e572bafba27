package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/arnavsurve/pipelang/internal/compiler/token"
)

// --- Interfaces ---
type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Position
}

// Statement and Expression are closed: only types in this package implement them.
type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// --- Program ---
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}

// String for Program concatenates the string representations of its statements
func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// --- Statements ---

// DeclarationStatement -> let x = 1 or var y = 2
type DeclarationStatement struct {
	Token   token.Token // let or var
	IsConst bool        // true for let
	Name    *Identifier
	Value   Expression
}

func (ds *DeclarationStatement) statementNode()       {}
func (ds *DeclarationStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DeclarationStatement) Pos() token.Position  { return ds.Token.Pos() }
func (ds *DeclarationStatement) String() string {
	var out bytes.Buffer
	if ds.IsConst {
		out.WriteString("let ")
	} else {
		out.WriteString("var ")
	}
	out.WriteString(ds.Name.String())
	out.WriteString(" = ")
	out.WriteString(ds.Value.String())
	return out.String()
}

// FunctionDeclaration -> fn add(a, b) = a + b or fn add(a, b) { a + b }
type FunctionDeclaration struct {
	Token        token.Token // fn
	Name         *Identifier
	Parameters   []*Identifier
	Body         Expression // *BlockExpression when IsExpression is false
	IsExpression bool
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) Pos() token.Position  { return fd.Token.Pos() }
func (fd *FunctionDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("fn ")
	out.WriteString(fd.Name.String())
	out.WriteString("(" + joinIdents(fd.Parameters) + ")")
	if fd.IsExpression {
		out.WriteString(" = ")
	} else {
		out.WriteString(" ")
	}
	out.WriteString(fd.Body.String())
	return out.String()
}

// AssignmentStatement -> x = 456
type AssignmentStatement struct {
	Token token.Token // =
	Name  *Identifier
	Value Expression
}

func (as *AssignmentStatement) statementNode()       {}
func (as *AssignmentStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignmentStatement) Pos() token.Position  { return as.Name.Pos() }
func (as *AssignmentStatement) String() string {
	return as.Name.String() + " = " + as.Value.String()
}

// ReturnStatement -> return x; Value is nil for a bare return.
type ReturnStatement struct {
	Token token.Token // return
	Value Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() token.Position  { return rs.Token.Pos() }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

// WhileStatement -> while cond { ... }
type WhileStatement struct {
	Token     token.Token // while
	Condition Expression
	Body      *BlockExpression
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() token.Position  { return ws.Token.Pos() }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}

// ForStatement -> for x in xs { ... }
type ForStatement struct {
	Token    token.Token // for
	Variable *Identifier
	Iterable Expression
	Body     *BlockExpression
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() token.Position  { return fs.Token.Pos() }
func (fs *ForStatement) String() string {
	return "for " + fs.Variable.String() + " in " + fs.Iterable.String() + " " + fs.Body.String()
}

// ExpressionStatement wraps an expression used where a statement is expected.
type ExpressionStatement struct {
	Token      token.Token // first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() token.Position  { return es.Token.Pos() }
func (es *ExpressionStatement) String() string       { return es.Expression.String() }

// --- Expressions ---

// IfExpression -> if cond then a else b; Alternative may be nil.
type IfExpression struct {
	Token       token.Token // if
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) Pos() token.Position  { return ie.Token.Pos() }
func (ie *IfExpression) String() string {
	var out bytes.Buffer
	out.WriteString("if " + ie.Condition.String())
	if _, ok := ie.Consequence.(*BlockExpression); ok {
		out.WriteString(" ")
	} else {
		out.WriteString(" then ")
	}
	out.WriteString(ie.Consequence.String())
	if ie.Alternative != nil {
		out.WriteString(" else " + ie.Alternative.String())
	}
	return out.String()
}

// BlockExpression -> { stmt; stmt; expr }
type BlockExpression struct {
	Token      token.Token // {
	Statements []Statement
}

func (be *BlockExpression) expressionNode()      {}
func (be *BlockExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BlockExpression) Pos() token.Position  { return be.Token.Pos() }
func (be *BlockExpression) String() string {
	if len(be.Statements) == 0 {
		return "{}"
	}
	parts := make([]string, len(be.Statements))
	for i, s := range be.Statements {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// BinaryExpression -> left op right
type BinaryExpression struct {
	Token    token.Token // operator
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Pos() token.Position  { return be.Left.Pos() }
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator + " " + be.Right.String() + ")"
}

// UnaryExpression -> !x or -x
type UnaryExpression struct {
	Token    token.Token // operator
	Operator string
	Operand  Expression
}

func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UnaryExpression) Pos() token.Position  { return ue.Token.Pos() }
func (ue *UnaryExpression) String() string {
	return "(" + ue.Operator + ue.Operand.String() + ")"
}

// PipeExpression -> left |> right. Right is always *Identifier or *CallExpression.
type PipeExpression struct {
	Token token.Token // |>
	Left  Expression
	Right Expression
}

func (pe *PipeExpression) expressionNode()      {}
func (pe *PipeExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PipeExpression) Pos() token.Position  { return pe.Left.Pos() }
func (pe *PipeExpression) String() string {
	return "(" + pe.Left.String() + " |> " + pe.Right.String() + ")"
}

// CallExpression -> callee(args...)
type CallExpression struct {
	Token     token.Token // (
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() token.Position  { return ce.Function.Pos() }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExprs(ce.Arguments) + ")"
}

// LambdaExpression -> |a, b| a + b or |x| { ... }
type LambdaExpression struct {
	Token      token.Token // | or ||
	Parameters []*Identifier
	Body       Expression
}

func (le *LambdaExpression) expressionNode()      {}
func (le *LambdaExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LambdaExpression) Pos() token.Position  { return le.Token.Pos() }
func (le *LambdaExpression) String() string {
	return "|" + joinIdents(le.Parameters) + "| " + le.Body.String()
}

type Identifier struct {
	Token token.Token // IDENT
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() token.Position  { return i.Token.Pos() }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral -> 21 or 2.5
type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) Pos() token.Position  { return nl.Token.Pos() }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

// StringLiteral -> "hello"; Value holds the unescaped text, Token.Raw the
// literal as written.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Raw }
func (sl *StringLiteral) Pos() token.Position  { return sl.Token.Pos() }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Pos() token.Position  { return bl.Token.Pos() }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

type NullLiteral struct {
	Token token.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) Pos() token.Position  { return nl.Token.Pos() }
func (nl *NullLiteral) String() string       { return "null" }

// ArrayLiteral -> [1, 2, 3]
type ArrayLiteral struct {
	Token    token.Token // [
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Pos() token.Position  { return al.Token.Pos() }
func (al *ArrayLiteral) String() string       { return "[" + joinExprs(al.Elements) + "]" }

func joinIdents(ids []*Identifier) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.Value
	}
	return strings.Join(names, ", ")
}

func joinExprs(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
