package hdl

import (
	"errors"
	"fmt"

	"github.com/bleviet/ipcraft/internal/model"
)

type clauseKind int

const (
	clauseGeneric clauseKind = iota
	clausePort
)

// vhdlParser is a recursive-descent parser for the VHDL entity header:
// name, generic clause, port clause, end. It parses nothing below the
// header; architectures only matter for the trailing entity-name scan.
type vhdlParser struct {
	lex      *Lexer
	cur      Token
	maxDepth int
}

func parseVHDLGrammar(source string, maxDepth int) tierResult {
	p := &vhdlParser{lex: NewLexer(source, LangVHDL), maxDepth: maxDepth}
	p.advance()

	out, err := p.entity()
	if err != nil {
		if errors.Is(err, ErrLimitExceeded) {
			return failResult(err)
		}
		return deferResult(err.Error())
	}
	out.additional = p.scanMore()
	return okResult(out)
}

func (p *vhdlParser) entity() (*parseOutput, error) {
	if !p.seekEntity() {
		return nil, errors.New("no entity declaration found")
	}
	p.advance()

	name, err := p.ident("entity name")
	if err != nil {
		return nil, err
	}
	if err := p.keyword("is"); err != nil {
		return nil, err
	}

	out := &parseOutput{name: name}

	if p.cur.Is("generic") {
		p.advance()
		if err := p.clause(out, clauseGeneric); err != nil {
			return nil, err
		}
	}

	if !p.cur.Is("port") {
		return nil, p.errf("expected port clause in entity %s", name)
	}
	p.advance()
	if err := p.clause(out, clausePort); err != nil {
		return nil, err
	}

	if err := p.keyword("end"); err != nil {
		return nil, err
	}
	if p.cur.Is("entity") {
		p.advance()
	}
	if p.cur.Type == IDENT {
		// repeated entity name, accepted unverified
		p.advance()
	}
	if p.cur.Type != SEMI {
		return nil, p.errf("expected ';' after end")
	}
	p.advance()
	return out, nil
}

// seekEntity advances to the first entity keyword that opens a
// declaration. An entity keyword right after end closes one instead.
func (p *vhdlParser) seekEntity() bool {
	prevEnd := false
	for p.cur.Type != EOF {
		if p.cur.Type == IDENT && p.cur.Is("entity") && !prevEnd {
			return true
		}
		prevEnd = p.cur.Type == IDENT && p.cur.Is("end")
		p.advance()
	}
	return false
}

// scanMore collects the names of entity declarations past the first.
func (p *vhdlParser) scanMore() []string {
	var names []string
	prevEnd := false
	for p.cur.Type != EOF {
		if p.cur.Type == IDENT && p.cur.Is("entity") && !prevEnd {
			p.advance()
			if p.cur.Type == IDENT {
				candidate := p.cur.Lexeme
				p.advance()
				if p.cur.Is("is") {
					names = append(names, candidate)
				}
			}
			prevEnd = false
			continue
		}
		prevEnd = p.cur.Type == IDENT && p.cur.Is("end")
		p.advance()
	}
	return names
}

func (p *vhdlParser) clause(out *parseOutput, kind clauseKind) error {
	if p.cur.Type != LPAREN {
		return p.errf("expected '('")
	}
	p.advance()
	for p.cur.Type != RPAREN {
		if p.cur.Type == EOF {
			return p.errf("unterminated interface list")
		}
		if err := p.interfaceItem(out, kind); err != nil {
			return err
		}
		if p.cur.Type == SEMI {
			p.advance()
		} else if p.cur.Type != RPAREN {
			return p.errf("expected ';' or ')' in interface list")
		}
	}
	p.advance()
	if p.cur.Type != SEMI {
		return p.errf("expected ';' after interface list")
	}
	p.advance()
	return nil
}

// interfaceItem parses one declaration of the form
//
//	name {, name} : [direction] type [:= default]
//
// The direction is mandatory for ports and ignored for generics.
func (p *vhdlParser) interfaceItem(out *parseOutput, kind clauseKind) error {
	first, err := p.ident("declaration name")
	if err != nil {
		return err
	}
	names := []string{first}
	for p.cur.Type == COMMA {
		p.advance()
		next, err := p.ident("declaration name")
		if err != nil {
			return err
		}
		names = append(names, next)
	}

	if p.cur.Type != COLON {
		return p.errf("expected ':' after %s", names[len(names)-1])
	}
	p.advance()

	var dir model.Direction
	if kind == clausePort {
		if p.cur.Type != IDENT || !p.cur.IsAny("in", "out", "inout", "buffer", "linkage") {
			return p.errf("expected direction for port %s", names[0])
		}
		dir = model.ParseDirection(p.cur.Lexeme)
		p.advance()
	} else if p.cur.Type == IDENT && p.cur.IsAny("in", "out", "inout") {
		p.advance()
	}

	typ, err := p.capture(true)
	if err != nil {
		return err
	}
	if typ == "" {
		return p.errf("expected type for %s", names[0])
	}

	var def string
	if p.cur.Type == ASSIGN {
		p.advance()
		def, err = p.capture(false)
		if err != nil {
			return err
		}
	}

	for _, n := range names {
		switch kind {
		case clausePort:
			out.ports = append(out.ports, rawPort{Name: n, Direction: dir, Type: typ})
		case clauseGeneric:
			out.generics = append(out.generics, model.Generic{Name: n, Type: typ, Default: def})
		}
	}
	return nil
}

// capture takes verbatim source text up to the next top-level ';' or
// the ')' closing the interface list, balancing nested parens and
// brackets. With stopAssign it also stops at a top-level ':='.
func (p *vhdlParser) capture(stopAssign bool) (string, error) {
	start := p.cur.Pos
	end := start
	depth := 0
	for {
		switch p.cur.Type {
		case EOF:
			return "", p.errf("unterminated declaration")
		case LPAREN, LBRACKET:
			depth++
			if depth > p.maxDepth {
				return "", fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, p.maxDepth)
			}
		case RPAREN, RBRACKET:
			if depth == 0 {
				return normalizeSpace(p.lex.Slice(start, end)), nil
			}
			depth--
		case SEMI:
			if depth == 0 {
				return normalizeSpace(p.lex.Slice(start, end)), nil
			}
		case ASSIGN:
			if depth == 0 && stopAssign {
				return normalizeSpace(p.lex.Slice(start, end)), nil
			}
		}
		end = p.cur.End
		p.advance()
	}
}

func (p *vhdlParser) advance() { p.cur = p.lex.Next() }

func (p *vhdlParser) ident(what string) (string, error) {
	if p.cur.Type != IDENT {
		return "", p.errf("expected %s", what)
	}
	name := p.cur.Lexeme
	p.advance()
	return name, nil
}

func (p *vhdlParser) keyword(kw string) error {
	if !p.cur.Is(kw) {
		return p.errf("expected '%s'", kw)
	}
	p.advance()
	return nil
}

func (p *vhdlParser) errf(format string, args ...any) error {
	return fmt.Errorf("line %d:%d: %s", p.cur.Line, p.cur.Col, fmt.Sprintf(format, args...))
}
