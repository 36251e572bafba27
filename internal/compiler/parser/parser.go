package parser

import (
	"errors"
	"slices"
	"strconv"

	"github.com/arnavsurve/pipelang/internal/compiler/ast"
	"github.com/arnavsurve/pipelang/internal/compiler/diagnostic"
	"github.com/arnavsurve/pipelang/internal/compiler/lexer"
	"github.com/arnavsurve/pipelang/internal/compiler/token"
)

// Binary operator tiers, lowest precedence first. Each tier is a
// left-associative loop over the tier below it.
var (
	logicalOrOps      = []token.TokenType{token.TokenOr}
	logicalAndOps     = []token.TokenType{token.TokenAnd}
	equalityOps       = []token.TokenType{token.TokenEq, token.TokenNotEq}
	comparisonOps     = []token.TokenType{token.TokenLT, token.TokenLTE, token.TokenGT, token.TokenGTE}
	additiveOps       = []token.TokenType{token.TokenPlus, token.TokenMinus}
	multiplicativeOps = []token.TokenType{token.TokenAsterisk, token.TokenSlash, token.TokenPercent}
)

type Parser struct {
	tokens []token.Token
	pos    int
	source string
}

// New builds a parser over tokens. Line breaks carry no syntactic weight and
// are dropped here.
func New(tokens []token.Token) *Parser {
	filtered := make([]token.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type != token.TokenNewline {
			filtered = append(filtered, tok)
		}
	}
	if len(filtered) == 0 || filtered[len(filtered)-1].Type != token.TokenEOF {
		eof := token.Token{Type: token.TokenEOF, Line: 1, Column: 1}
		if len(filtered) > 0 {
			last := filtered[len(filtered)-1]
			eof.Line, eof.Column = last.Line, last.Column+len([]rune(last.Literal))
		}
		filtered = append(filtered, eof)
	}
	return &Parser{tokens: filtered}
}

// WithSource attaches the source text so diagnostics can render a snippet.
func (p *Parser) WithSource(src string) *Parser {
	p.source = src
	return p
}

// Parse tokenizes and parses src in one step.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(toks).WithSource(src).ParseProgram()
}

// --- Token Handling ---

func (p *Parser) curTok() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekTok() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) nextToken() token.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) curIs(t token.TokenType) bool {
	return p.curTok().Type == t
}

// match consumes the current token if it is one of types.
func (p *Parser) match(types ...token.TokenType) (token.Token, bool) {
	tok := p.curTok()
	if slices.Contains(types, tok.Type) {
		p.nextToken()
		return tok, true
	}
	return tok, false
}

// expect consumes a token of type t or fails with a syntax error.
func (p *Parser) expect(t token.TokenType) (token.Token, error) {
	tok := p.curTok()
	if tok.Type != t {
		return tok, p.errorAt(tok, "Expected %s but found %s", token.Describe(t), token.Describe(tok.Type))
	}
	p.nextToken()
	return tok, nil
}

// --- Error Handling ---

func (p *Parser) errorAt(tok token.Token, format string, args ...any) *diagnostic.Error {
	err := diagnostic.New(diagnostic.Syntax, p.source, tok.Line, tok.Column, format, args...)
	err.Incomplete = tok.Type == token.TokenEOF
	return err
}

// --- Program Parsing ---

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{Statements: []ast.Statement{}}
	for !p.curIs(token.TokenEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}

// --- Statements ---

func (p *Parser) parseStatement() (ast.Statement, error) {
	var (
		stmt ast.Statement
		err  error
	)

	switch p.curTok().Type {
	case token.TokenLet, token.TokenVar:
		stmt, err = p.parseDeclarationStatement()
	case token.TokenFn:
		stmt, err = p.parseFunctionDeclaration()
	case token.TokenReturn:
		stmt, err = p.parseReturnStatement()
	case token.TokenWhile:
		stmt, err = p.parseWhileStatement()
	case token.TokenFor:
		stmt, err = p.parseForStatement()
	default:
		if p.curIs(token.TokenIdent) && p.peekTok().Type == token.TokenAssign {
			stmt, err = p.parseAssignmentStatement()
		} else {
			stmt, err = p.parseExpressionStatement()
		}
	}
	if err != nil {
		return nil, err
	}

	p.match(token.TokenSemicolon)
	return stmt, nil
}

func (p *Parser) parseDeclarationStatement() (*ast.DeclarationStatement, error) {
	declTok := p.nextToken()

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.TokenAssign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.DeclarationStatement{
		Token:   declTok,
		IsConst: declTok.Type == token.TokenLet,
		Name:    name,
		Value:   value,
	}, nil
}

// parseFunctionDeclaration handles both `fn f(a) = expr` and `fn f(a) { ... }`.
func (p *Parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, error) {
	fnTok := p.nextToken()

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.TokenLParen); err != nil {
		return nil, err
	}
	params, err := p.parseParameterList(token.TokenRParen)
	if err != nil {
		return nil, err
	}

	decl := &ast.FunctionDeclaration{Token: fnTok, Name: name, Parameters: params}

	if _, ok := p.match(token.TokenAssign); ok {
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Body = body
		decl.IsExpression = true
		return decl, nil
	}

	body, err := p.parseBlockExpression()
	if err != nil {
		return nil, err
	}
	decl.Body = body
	return decl, nil
}

// parseParameterList reads comma-separated identifiers up to and including the
// closing token.
func (p *Parser) parseParameterList(closing token.TokenType) ([]*ast.Identifier, error) {
	params := []*ast.Identifier{}
	if _, ok := p.match(closing); ok {
		return params, nil
	}

	for {
		ident, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		params = append(params, ident)

		if _, ok := p.match(token.TokenComma); !ok {
			break
		}
	}

	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	stmt := &ast.ReturnStatement{Token: p.nextToken()}

	switch p.curTok().Type {
	case token.TokenRBrace, token.TokenSemicolon, token.TokenEOF:
		return stmt, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	return stmt, nil
}

func (p *Parser) parseWhileStatement() (*ast.WhileStatement, error) {
	whileTok := p.nextToken()

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockExpression()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Token: whileTok, Condition: cond, Body: body}, nil
}

func (p *Parser) parseForStatement() (*ast.ForStatement, error) {
	forTok := p.nextToken()

	variable, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.TokenIn); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Token: forTok, Variable: variable, Iterable: iterable, Body: body}, nil
}

func (p *Parser) parseAssignmentStatement() (*ast.AssignmentStatement, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	assignTok, err := p.expect(token.TokenAssign)
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.AssignmentStatement{Token: assignTok, Name: name, Value: value}, nil
}

func (p *Parser) parseExpressionStatement() (*ast.ExpressionStatement, error) {
	startTok := p.curTok()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Token: startTok, Expression: expr}, nil
}

// --- Expressions ---

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parsePipe()
}

// parsePipe: logicalOr ( '|>' logicalOr )*
func (p *Parser) parsePipe() (ast.Expression, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}

	for p.curIs(token.TokenPipe) {
		pipeTok := p.nextToken()
		targetTok := p.curTok()

		right, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		switch right.(type) {
		case *ast.Identifier, *ast.CallExpression:
		default:
			return nil, p.errorAt(targetTok, "Pipe target must be a function name or call, found %s", token.Describe(targetTok.Type))
		}

		left = &ast.PipeExpression{Token: pipeTok, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseLogicalOr() (ast.Expression, error) {
	return p.parseBinary(logicalOrOps, p.parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() (ast.Expression, error) {
	return p.parseBinary(logicalAndOps, p.parseEquality)
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.parseBinary(equalityOps, p.parseComparison)
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	return p.parseBinary(comparisonOps, p.parseAdditive)
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseBinary(additiveOps, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseBinary(multiplicativeOps, p.parseUnary)
}

// parseBinary builds a left-associative chain of ops over operands parsed by next.
func (p *Parser) parseBinary(ops []token.TokenType, next func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for {
		opTok, ok := p.match(ops...)
		if !ok {
			return left, nil
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if opTok, ok := p.match(token.TokenBang, token.TokenMinus); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Token: opTok, Operator: opTok.Literal, Operand: operand}, nil
	}
	return p.parseCall()
}

// parseCall: primary ( '(' args ')' )*
func (p *Parser) parseCall() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.curIs(token.TokenLParen) {
		lparen := p.nextToken()
		args, err := p.parseExpressionList(token.TokenRParen)
		if err != nil {
			return nil, err
		}
		expr = &ast.CallExpression{Token: lparen, Function: expr, Arguments: args}
	}
	return expr, nil
}

// parseExpressionList reads comma-separated expressions up to and including
// the closing token.
func (p *Parser) parseExpressionList(closing token.TokenType) ([]ast.Expression, error) {
	list := []ast.Expression{}
	if _, ok := p.match(closing); ok {
		return list, nil
	}

	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list = append(list, expr)

		if _, ok := p.match(token.TokenComma); !ok {
			break
		}
	}

	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.curTok()

	switch tok.Type {
	case token.TokenIf:
		return p.parseIfExpression()
	case token.TokenLBrace:
		return p.parseBlockExpression()
	case token.TokenBar, token.TokenOr:
		return p.parseLambda()
	case token.TokenLBracket:
		p.nextToken()
		elems, err := p.parseExpressionList(token.TokenRBracket)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Token: tok, Elements: elems}, nil
	case token.TokenLParen:
		p.nextToken()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case token.TokenNumber:
		p.nextToken()
		// Literals beyond float64 range become +Inf, as they do in JavaScript.
		val, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, p.errorAt(tok, "Invalid number literal %q", tok.Literal)
		}
		return &ast.NumberLiteral{Token: tok, Value: val}, nil
	case token.TokenString:
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}, nil
	case token.TokenTrue, token.TokenFalse:
		p.nextToken()
		return &ast.BooleanLiteral{Token: tok, Value: tok.Type == token.TokenTrue}, nil
	case token.TokenNull:
		p.nextToken()
		return &ast.NullLiteral{Token: tok}, nil
	case token.TokenIdent:
		return p.parseIdentifier()
	}

	return nil, p.errorAt(tok, "Unexpected token %s", token.Describe(tok.Type))
}

func (p *Parser) parseIdentifier() (*ast.Identifier, error) {
	tok, err := p.expect(token.TokenIdent)
	if err != nil {
		return nil, err
	}
	return &ast.Identifier{Token: tok, Value: tok.Literal}, nil
}

// parseIfExpression: 'if' cond ( block | 'then' expr ) ( 'else' ( block | if | expr ) )?
func (p *Parser) parseIfExpression() (*ast.IfExpression, error) {
	ifTok := p.nextToken()

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	expr := &ast.IfExpression{Token: ifTok, Condition: cond}

	if p.curIs(token.TokenLBrace) {
		expr.Consequence, err = p.parseBlockExpression()
	} else {
		if _, err := p.expect(token.TokenThen); err != nil {
			return nil, err
		}
		if p.curIs(token.TokenLBrace) {
			expr.Consequence, err = p.parseBlockExpression()
		} else {
			expr.Consequence, err = p.parseExpression()
		}
	}
	if err != nil {
		return nil, err
	}

	if _, ok := p.match(token.TokenElse); !ok {
		return expr, nil
	}

	switch p.curTok().Type {
	case token.TokenLBrace:
		expr.Alternative, err = p.parseBlockExpression()
	case token.TokenIf:
		expr.Alternative, err = p.parseIfExpression()
	default:
		expr.Alternative, err = p.parseExpression()
	}
	if err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseBlockExpression() (*ast.BlockExpression, error) {
	lbrace, err := p.expect(token.TokenLBrace)
	if err != nil {
		return nil, err
	}

	block := &ast.BlockExpression{Token: lbrace, Statements: []ast.Statement{}}
	for !p.curIs(token.TokenRBrace) && !p.curIs(token.TokenEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}

	if _, err := p.expect(token.TokenRBrace); err != nil {
		return nil, err
	}
	return block, nil
}

// parseLambda: '|' params '|' body, or '||' body for no parameters. The bar is
// the same token whether it opens a lambda or not; primary position decides.
func (p *Parser) parseLambda() (*ast.LambdaExpression, error) {
	openTok := p.nextToken()

	params := []*ast.Identifier{}
	if openTok.Type == token.TokenBar {
		var err error
		params, err = p.parseParameterList(token.TokenBar)
		if err != nil {
			return nil, err
		}
	}

	lambda := &ast.LambdaExpression{Token: openTok, Parameters: params}

	var err error
	if p.curIs(token.TokenLBrace) {
		lambda.Body, err = p.parseBlockExpression()
	} else {
		lambda.Body, err = p.parseExpression()
	}
	if err != nil {
		return nil, err
	}
	return lambda, nil
}
