package token

type TokenType string

const (
	// Literals & Identifiers
	TokenNumber TokenType = "NUMBER" // 42, 3.14
	TokenString TokenType = "STRING" // "..." or '...'
	TokenTrue   TokenType = "TRUE"   // true
	TokenFalse  TokenType = "FALSE"  // false
	TokenNull   TokenType = "NULL"   // null
	TokenIdent  TokenType = "IDENT"  // Identifier (e.g. variable name)

	// Keywords
	TokenLet    TokenType = "LET"    // let
	TokenVar    TokenType = "VAR"    // var
	TokenFn     TokenType = "FN"     // fn
	TokenIf     TokenType = "IF"     // if
	TokenThen   TokenType = "THEN"   // then
	TokenElse   TokenType = "ELSE"   // else
	TokenWhile  TokenType = "WHILE"  // while
	TokenFor    TokenType = "FOR"    // for
	TokenIn     TokenType = "IN"     // in
	TokenReturn TokenType = "RETURN" // return

	// Operators
	TokenPlus     TokenType = "PLUS"     // +
	TokenMinus    TokenType = "MINUS"    // -
	TokenAsterisk TokenType = "ASTERISK" // *
	TokenSlash    TokenType = "SLASH"    // /
	TokenPercent  TokenType = "PERCENT"  // %
	TokenAssign   TokenType = "ASSIGN"   // =
	TokenEq       TokenType = "EQ"       // ==
	TokenNotEq    TokenType = "NOT_EQ"   // !=
	TokenLT       TokenType = "LT"       // <
	TokenLTE      TokenType = "LTE"      // <=
	TokenGT       TokenType = "GT"       // >
	TokenGTE      TokenType = "GTE"      // >=
	TokenBang     TokenType = "BANG"     // !
	TokenAnd      TokenType = "AND"      // &&
	TokenOr       TokenType = "OR"       // ||
	TokenPipe     TokenType = "PIPE"     // |>
	TokenArrow    TokenType = "ARROW"    // ->
	TokenBar      TokenType = "BAR"      // | (lambda parameter delimiter)

	// Delimiters
	TokenLParen    TokenType = "LPAREN"    // (
	TokenRParen    TokenType = "RPAREN"    // )
	TokenLBrace    TokenType = "LBRACE"    // {
	TokenRBrace    TokenType = "RBRACE"    // }
	TokenLBracket  TokenType = "LBRACKET"  // [
	TokenRBracket  TokenType = "RBRACKET"  // ]
	TokenComma     TokenType = "COMMA"     // ,
	TokenSemicolon TokenType = "SEMICOLON" // ;

	// Special
	TokenEOF     TokenType = "EOF"
	TokenNewline TokenType = "NEWLINE"
)

// Position is a 1-based line/column pair.
type Position struct {
	Line   int
	Column int
}

type Token struct {
	Type    TokenType
	Literal string // unescaped contents for strings
	Raw     string // source text, quotes and escapes included; set for strings only
	Line    int
	Column  int
}

func (t Token) Pos() Position {
	return Position{Line: t.Line, Column: t.Column}
}

// displayNames is how each kind is spelled in diagnostics.
var displayNames = map[TokenType]string{
	TokenNumber: "number",
	TokenString: "string",
	TokenTrue:   "'true'",
	TokenFalse:  "'false'",
	TokenNull:   "'null'",
	TokenIdent:  "identifier",

	TokenLet:    "'let'",
	TokenVar:    "'var'",
	TokenFn:     "'fn'",
	TokenIf:     "'if'",
	TokenThen:   "'then'",
	TokenElse:   "'else'",
	TokenWhile:  "'while'",
	TokenFor:    "'for'",
	TokenIn:     "'in'",
	TokenReturn: "'return'",

	TokenPlus:     "'+'",
	TokenMinus:    "'-'",
	TokenAsterisk: "'*'",
	TokenSlash:    "'/'",
	TokenPercent:  "'%'",
	TokenAssign:   "'='",
	TokenEq:       "'=='",
	TokenNotEq:    "'!='",
	TokenLT:       "'<'",
	TokenLTE:      "'<='",
	TokenGT:       "'>'",
	TokenGTE:      "'>='",
	TokenBang:     "'!'",
	TokenAnd:      "'&&'",
	TokenOr:       "'||'",
	TokenPipe:     "'|>'",
	TokenArrow:    "'->'",
	TokenBar:      "'|'",

	TokenLParen:    "'('",
	TokenRParen:    "')'",
	TokenLBrace:    "'{'",
	TokenRBrace:    "'}'",
	TokenLBracket:  "'['",
	TokenRBracket:  "']'",
	TokenComma:     "','",
	TokenSemicolon: "';'",

	TokenEOF:     "end of input",
	TokenNewline: "newline",
}

// Describe returns the diagnostic spelling of a token kind, falling back to the
// raw kind name for anything missing from the table.
func Describe(t TokenType) string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return string(t)
}

// keywords maps identifier strings to their corresponding token types.
var keywords = map[string]TokenType{
	"let":    TokenLet,
	"var":    TokenVar,
	"fn":     TokenFn,
	"if":     TokenIf,
	"then":   TokenThen,
	"else":   TokenElse,
	"while":  TokenWhile,
	"for":    TokenFor,
	"in":     TokenIn,
	"return": TokenReturn,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"null":   TokenNull,
}

// LookupIdent checks if an identifier is a keyword, returning the keyword's
// token type or TokenIdent if it's not a keyword.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return TokenIdent
}
