package hdl

import "strings"

type TokenType int

const (
	EOF TokenType = iota
	IDENT
	NUMBER
	STRING
	CHAR

	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COLON
	SEMI
	COMMA
	ASSIGN // :=
	EQUALS // =
	ARROW  // =>
	HASH   // #

	// OP covers every operator rune the declarations do not care about
	// individually: arithmetic in width expressions, ticks, slashes.
	OP
)

// Token is one lexical unit. Pos and End are rune offsets into the source
// so parsers can slice raw text (types, defaults) verbatim.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Col    int
	Pos    int
	End    int
}

// Is reports whether the token is the given keyword, compared
// case-insensitively. HDL keywords are plain identifiers to the lexer.
func (t Token) Is(kw string) bool {
	return t.Type == IDENT && strings.EqualFold(t.Lexeme, kw)
}

// IsAny reports whether the token is one of the given keywords
func (t Token) IsAny(kws ...string) bool {
	for _, kw := range kws {
		if t.Is(kw) {
			return true
		}
	}
	return false
}
