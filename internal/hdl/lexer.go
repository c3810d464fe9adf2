package hdl

import (
	"strings"
	"unicode"
)

// Language selects comment syntax and the few lexical quirks that differ
// between the two HDL notations.
type Language string

const (
	LangVHDL    Language = "vhdl"
	LangVerilog Language = "verilog"
)

// Lexer is a hand-written scanner over the module source. It has no
// keyword table: keywords stay IDENT tokens and parsers compare them
// case-insensitively, since HDL identifiers and keywords share one
// namespace rule per language.
type Lexer struct {
	source []rune
	lang   Language

	start     int
	pos       int
	line      int
	col       int
	startLine int
	startCol  int
}

func NewLexer(source string, lang Language) *Lexer {
	return &Lexer{
		source: []rune(source),
		lang:   lang,
		line:   1,
		col:    1,
	}
}

// Slice returns the verbatim source text between two rune offsets,
// typically a token's Pos and a later token's End.
func (l *Lexer) Slice(pos, end int) string {
	if pos < 0 {
		pos = 0
	}
	if end > len(l.source) {
		end = len(l.source)
	}
	if pos >= end {
		return ""
	}
	return string(l.source[pos:end])
}

func (l *Lexer) Next() Token {
	l.skipTrivia()

	if l.isAtEnd() {
		return Token{Type: EOF, Line: l.line, Col: l.col, Pos: l.pos, End: l.pos}
	}

	l.start = l.pos
	l.startLine = l.line
	l.startCol = l.col
	c := l.advance()

	switch c {
	case '(':
		return l.makeToken(LPAREN)
	case ')':
		return l.makeToken(RPAREN)
	case '[':
		return l.makeToken(LBRACKET)
	case ']':
		return l.makeToken(RBRACKET)
	case ';':
		return l.makeToken(SEMI)
	case ',':
		return l.makeToken(COMMA)
	case '#':
		return l.makeToken(HASH)
	case ':':
		if l.match('=') {
			return l.makeToken(ASSIGN)
		}
		return l.makeToken(COLON)
	case '=':
		if l.match('>') {
			return l.makeToken(ARROW)
		}
		if l.match('=') {
			return l.makeToken(OP)
		}
		return l.makeToken(EQUALS)
	case '"':
		return l.stringLiteral()
	case '\'':
		return l.tick()
	case '`':
		if l.lang == LangVerilog {
			return l.identifier()
		}
		return l.makeToken(OP)
	case '\\':
		if l.lang == LangVerilog {
			return l.escapedIdentifier()
		}
		return l.makeToken(OP)
	}

	if unicode.IsDigit(c) {
		return l.number()
	}
	if unicode.IsLetter(c) || c == '_' {
		return l.identifier()
	}
	return l.makeToken(OP)
}

// skipTrivia consumes whitespace, newlines and comments. VHDL comments
// run from -- to end of line; Verilog has // and /* */.
func (l *Lexer) skipTrivia() {
	for !l.isAtEnd() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance()
		case c == '\n':
			l.advance()
			l.line++
			l.col = 1
		case l.lang == LangVHDL && c == '-' && l.peekNext() == '-':
			l.skipLineComment()
		case l.lang == LangVerilog && c == '/' && l.peekNext() == '/':
			l.skipLineComment()
		case l.lang == LangVerilog && c == '/' && l.peekNext() == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() {
	l.advance()
	l.advance()
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		if l.peek() == '\n' {
			l.line++
			l.col = 0
		}
		l.advance()
	}
}

func (l *Lexer) identifier() Token {
	for {
		c := l.peek()
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			l.advance()
			continue
		}
		if l.lang == LangVerilog && c == '$' {
			l.advance()
			continue
		}
		break
	}
	return l.makeToken(IDENT)
}

// escapedIdentifier handles Verilog \escaped names, which run to the
// next whitespace.
func (l *Lexer) escapedIdentifier() Token {
	for !l.isAtEnd() {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			break
		}
		l.advance()
	}
	return l.makeToken(IDENT)
}

// number scans literals loosely: plain decimals, underscores, reals,
// VHDL based literals (16#FF#) and Verilog sized literals (8'h3C).
// Only pure decimals ever take part in width arithmetic; everything
// else just needs to survive as one token.
func (l *Lexer) number() Token {
	for {
		c := l.peek()
		if unicode.IsDigit(c) || c == '_' || c == '.' {
			l.advance()
			continue
		}
		break
	}
	if (l.peek() == 'e' || l.peek() == 'E') && (unicode.IsDigit(l.peekNext()) || l.peekNext() == '+' || l.peekNext() == '-') {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for unicode.IsDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}
	if l.lang == LangVHDL && l.peek() == '#' {
		l.advance()
		for !l.isAtEnd() && l.peek() != '#' && l.peek() != '\n' {
			l.advance()
		}
		if l.peek() == '#' {
			l.advance()
		}
	}
	if l.lang == LangVerilog && l.peek() == '\'' {
		l.advance()
		l.basedDigits()
	}
	return l.makeToken(NUMBER)
}

// tick is a VHDL character literal ('0') or a Verilog width-less sized
// literal ('b0); anything else stays a bare operator token.
func (l *Lexer) tick() Token {
	if l.lang == LangVHDL {
		if l.peekNext() == '\'' && !l.isAtEnd() {
			l.advance()
			l.advance()
			return l.makeToken(CHAR)
		}
		return l.makeToken(OP)
	}
	if unicode.IsLetter(l.peek()) {
		l.basedDigits()
		return l.makeToken(NUMBER)
	}
	return l.makeToken(OP)
}

func (l *Lexer) basedDigits() {
	if unicode.IsLetter(l.peek()) {
		l.advance()
	}
	for {
		c := l.peek()
		if unicode.IsDigit(c) || unicode.IsLetter(c) || c == '_' {
			l.advance()
			continue
		}
		break
	}
}

func (l *Lexer) stringLiteral() Token {
	for !l.isAtEnd() {
		c := l.peek()
		if c == '\n' {
			l.line++
			l.col = 0
		}
		if l.lang == LangVerilog && c == '\\' {
			l.advance()
			if !l.isAtEnd() {
				l.advance()
			}
			continue
		}
		if c == '"' {
			l.advance()
			// VHDL escapes a quote by doubling it
			if l.lang == LangVHDL && l.peek() == '"' {
				l.advance()
				continue
			}
			break
		}
		l.advance()
	}
	return l.makeToken(STRING)
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return '\x00'
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return '\x00'
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	c := l.source[l.pos]
	l.pos++
	l.col++
	return c
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.pos++
	l.col++
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) makeToken(typ TokenType) Token {
	return Token{
		Type:   typ,
		Lexeme: string(l.source[l.start:l.pos]),
		Line:   l.startLine,
		Col:    l.startCol,
		Pos:    l.start,
		End:    l.pos,
	}
}

// normalizeSpace collapses all whitespace runs to single spaces so a
// declaration captured across several source lines reads as one.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
