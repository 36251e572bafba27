package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/arnavsurve/pipelang/internal/compiler/diagnostic"
	"github.com/arnavsurve/pipelang/internal/compiler/token"
)

type Lexer struct {
	input    string
	position int  // current char index
	ch       byte // current char, 0 at end of input

	line   int // line of ch (1-indexed)
	column int // column of ch (1-indexed, counted in characters)
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.ResetPosition()
	return l
}

func (l *Lexer) ResetPosition() {
	l.position = 0
	l.line = 1
	l.column = 1
	l.ch = 0
	if len(l.input) > 0 {
		l.ch = l.input[0]
	}
}

// Tokenize scans the whole input. The returned slice always ends with an EOF
// token; line breaks are kept as TokenNewline.
func Tokenize(input string) ([]token.Token, error) {
	l := NewLexer(input)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.TokenEOF {
			return toks, nil
		}
	}
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// readChar advances past the current character, keeping line/column in sync.
// Multi-byte UTF-8 sequences count as a single column.
func (l *Lexer) readChar() {
	if l.atEnd() {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	_, size := utf8.DecodeRuneInString(l.input[l.position:])
	l.position += size
	if l.atEnd() {
		l.ch = 0
		return
	}
	l.ch = l.input[l.position]
}

// Returns the next character without consuming it
func (l *Lexer) peekChar() byte {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	startLine := l.line
	startCol := l.column

	if l.atEnd() {
		return l.newToken(token.TokenEOF, "", startLine, startCol), nil
	}

	switch l.ch {
	case '\n':
		l.readChar()
		return l.newToken(token.TokenNewline, "\n", startLine, startCol), nil
	case '/':
		if l.peekChar() == '/' {
			l.readComment()
			return l.NextToken()
		}
		return l.single(token.TokenSlash, startLine, startCol), nil
	case '"', '\'':
		return l.readString(startLine, startCol)
	case '=':
		return l.oneOrTwo('=', token.TokenEq, token.TokenAssign, startLine, startCol), nil
	case '!':
		return l.oneOrTwo('=', token.TokenNotEq, token.TokenBang, startLine, startCol), nil
	case '<':
		return l.oneOrTwo('=', token.TokenLTE, token.TokenLT, startLine, startCol), nil
	case '>':
		return l.oneOrTwo('=', token.TokenGTE, token.TokenGT, startLine, startCol), nil
	case '-':
		return l.oneOrTwo('>', token.TokenArrow, token.TokenMinus, startLine, startCol), nil
	case '&':
		if l.peekChar() == '&' {
			return l.double(token.TokenAnd, startLine, startCol), nil
		}
	case '|':
		switch l.peekChar() {
		case '>':
			return l.double(token.TokenPipe, startLine, startCol), nil
		case '|':
			return l.double(token.TokenOr, startLine, startCol), nil
		default:
			return l.single(token.TokenBar, startLine, startCol), nil
		}
	case '+':
		return l.single(token.TokenPlus, startLine, startCol), nil
	case '*':
		return l.single(token.TokenAsterisk, startLine, startCol), nil
	case '%':
		return l.single(token.TokenPercent, startLine, startCol), nil
	case '(':
		return l.single(token.TokenLParen, startLine, startCol), nil
	case ')':
		return l.single(token.TokenRParen, startLine, startCol), nil
	case '{':
		return l.single(token.TokenLBrace, startLine, startCol), nil
	case '}':
		return l.single(token.TokenRBrace, startLine, startCol), nil
	case '[':
		return l.single(token.TokenLBracket, startLine, startCol), nil
	case ']':
		return l.single(token.TokenRBracket, startLine, startCol), nil
	case ',':
		return l.single(token.TokenComma, startLine, startCol), nil
	case ';':
		return l.single(token.TokenSemicolon, startLine, startCol), nil
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return l.newToken(token.LookupIdent(ident), ident, startLine, startCol), nil
		}
		if isDigit(l.ch) {
			return l.readNumber(startLine, startCol), nil
		}
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.position:])
	return token.Token{}, diagnostic.New(diagnostic.Lexical, l.input, startLine, startCol,
		"Unexpected character '%c'", r)
}

// newToken is a helper to create a token.Token struct
func (l *Lexer) newToken(tokenType token.TokenType, literal string, line, col int) token.Token {
	return token.Token{Type: tokenType, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) single(tokenType token.TokenType, line, col int) token.Token {
	tok := l.newToken(tokenType, string(l.ch), line, col)
	l.readChar()
	return tok
}

func (l *Lexer) double(tokenType token.TokenType, line, col int) token.Token {
	literal := l.input[l.position : l.position+2]
	l.readChar()
	l.readChar()
	return l.newToken(tokenType, literal, line, col)
}

// oneOrTwo emits the two-character operator when the next char is second,
// otherwise the single-character one.
func (l *Lexer) oneOrTwo(second byte, two, one token.TokenType, line, col int) token.Token {
	if l.peekChar() == second {
		return l.double(two, line, col)
	}
	return l.single(one, line, col)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && (l.ch == ' ' || l.ch == '\t' || l.ch == '\r') {
		l.readChar()
	}
}

// readComment consumes a // comment up to, but not including, the newline.
func (l *Lexer) readComment() {
	for !l.atEnd() && l.ch != '\n' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for !l.atEnd() && (isLetter(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber(startLine, startCol int) token.Token {
	start := l.position
	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
	// A trailing '.' only belongs to the number when a digit follows it.
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for !l.atEnd() && isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.newToken(token.TokenNumber, l.input[start:l.position], startLine, startCol)
}

// readString reads a quoted string and returns its unescaped contents.
func (l *Lexer) readString(startLine, startCol int) (token.Token, error) {
	quote := l.ch
	start := l.position
	l.readChar() // Consume opening quote

	var sb strings.Builder
	for {
		if l.atEnd() {
			err := diagnostic.New(diagnostic.Lexical, l.input, startLine, startCol, "Unterminated string")
			err.Incomplete = true
			return token.Token{}, err
		}
		if l.ch == quote {
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if l.atEnd() {
				continue
			}
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				// \\, \", \' and anything unrecognised pass through as themselves.
				sb.WriteString(l.currentChar())
			}
			l.readChar()
			continue
		}
		sb.WriteString(l.currentChar())
		l.readChar()
	}

	l.readChar() // Consume closing quote
	tok := l.newToken(token.TokenString, sb.String(), startLine, startCol)
	tok.Raw = l.input[start:l.position]
	return tok, nil
}

// currentChar returns the full UTF-8 sequence starting at the cursor.
func (l *Lexer) currentChar() string {
	_, size := utf8.DecodeRuneInString(l.input[l.position:])
	return l.input[l.position : l.position+size]
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
