package hdl

import (
	"errors"
	"fmt"

	"github.com/bleviet/ipcraft/internal/model"
)

// verilogParser handles both ANSI headers, where each port carries its
// own declaration, and the older two-step style where the header lists
// bare names and the body declares them.
type verilogParser struct {
	lex      *Lexer
	cur      Token
	maxDepth int
}

type portBinding struct {
	dir model.Direction
	typ string
}

type ansiCtx struct {
	dir model.Direction
	typ string
}

func parseVerilogGrammar(source string, maxDepth int) tierResult {
	p := &verilogParser{lex: NewLexer(source, LangVerilog), maxDepth: maxDepth}
	p.advance()

	out, err := p.module()
	if err != nil {
		if errors.Is(err, ErrLimitExceeded) {
			return failResult(err)
		}
		return deferResult(err.Error())
	}
	out.additional = p.scanMore()
	return okResult(out)
}

func (p *verilogParser) module() (*parseOutput, error) {
	if !p.seek("module") {
		return nil, errors.New("no module declaration found")
	}
	p.advance()

	if p.cur.Type != IDENT {
		return nil, p.errf("expected module name")
	}
	out := &parseOutput{name: p.cur.Lexeme}
	p.advance()

	if p.cur.Type == HASH {
		p.advance()
		if err := p.paramList(out); err != nil {
			return nil, err
		}
	}

	var header []string
	switch p.cur.Type {
	case SEMI:
		// module with no port list at all
		p.advance()
	case LPAREN:
		p.advance()
		h, err := p.portList(out)
		if err != nil {
			return nil, err
		}
		header = h
		if p.cur.Type != SEMI {
			return nil, p.errf("expected ';' after port list")
		}
		p.advance()
	default:
		return nil, p.errf("expected port list for module %s", out.name)
	}

	if err := p.scanBody(out, header); err != nil {
		return nil, err
	}
	if p.cur.Type == IDENT && p.cur.Is("endmodule") {
		p.advance()
	}
	return out, nil
}

// portList leaves the closing ')' consumed. It returns the bare header
// names for a non-ANSI module; ANSI ports go straight into out.
func (p *verilogParser) portList(out *parseOutput) ([]string, error) {
	if p.cur.Type == RPAREN {
		p.advance()
		return nil, nil
	}

	if p.cur.Type == IDENT && p.cur.IsAny("input", "output", "inout") {
		var ctx ansiCtx
		for {
			if err := p.ansiItem(&ctx, out); err != nil {
				return nil, err
			}
			// trailing comma before ')' is accepted
			if p.cur.Type == COMMA {
				p.advance()
				if p.cur.Type != RPAREN {
					continue
				}
			}
			break
		}
		if p.cur.Type != RPAREN {
			return nil, p.errf("expected ')' after port list")
		}
		p.advance()
		return nil, nil
	}

	var header []string
	for {
		if p.cur.Type != IDENT || p.cur.IsAny("input", "output", "inout") {
			return nil, p.errf("expected port name")
		}
		header = append(header, p.cur.Lexeme)
		p.advance()
		if p.cur.Type == COMMA {
			p.advance()
			if p.cur.Type != RPAREN {
				continue
			}
		}
		if p.cur.Type != RPAREN {
			return nil, p.errf("expected ',' or ')' in port list")
		}
		p.advance()
		return header, nil
	}
}

// ansiItem parses one ANSI port entry. A bare name inherits direction
// and type from the previous entry, per the language rules.
func (p *verilogParser) ansiItem(ctx *ansiCtx, out *parseOutput) error {
	if p.cur.Type == IDENT && p.cur.IsAny("input", "output", "inout") {
		ctx.dir = model.ParseDirection(p.cur.Lexeme)
		p.advance()

		start := p.cur.Pos
		var nameTok Token
		var nameOK bool
		depth := 0
		for {
			if p.cur.Type == EOF {
				return p.errf("unterminated port list")
			}
			if depth == 0 && (p.cur.Type == COMMA || p.cur.Type == RPAREN) {
				break
			}
			switch p.cur.Type {
			case LPAREN, LBRACKET:
				depth++
				if depth > p.maxDepth {
					return fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, p.maxDepth)
				}
			case RPAREN, RBRACKET:
				if depth > 0 {
					depth--
				}
			case IDENT:
				if depth == 0 {
					nameTok, nameOK = p.cur, true
				}
			}
			p.advance()
		}
		if !nameOK {
			return p.errf("expected port name")
		}
		ctx.typ = normalizeSpace(p.lex.Slice(start, nameTok.Pos))
		out.ports = append(out.ports, rawPort{Name: nameTok.Lexeme, Direction: ctx.dir, Type: ctx.typ})
		return nil
	}

	if p.cur.Type != IDENT {
		return p.errf("expected port declaration")
	}
	name := p.cur.Lexeme
	p.advance()
	if p.cur.Type != COMMA && p.cur.Type != RPAREN {
		return p.errf("expected ',' or ')' after %s", name)
	}
	out.ports = append(out.ports, rawPort{Name: name, Direction: ctx.dir, Type: ctx.typ})
	return nil
}

func (p *verilogParser) paramList(out *parseOutput) error {
	if p.cur.Type != LPAREN {
		return p.errf("expected '(' after '#'")
	}
	p.advance()
	for p.cur.Type != RPAREN {
		if p.cur.Type == EOF {
			return p.errf("unterminated parameter list")
		}
		if err := p.paramItem(out, RPAREN); err != nil {
			return err
		}
		if p.cur.Type == COMMA {
			p.advance()
		}
	}
	p.advance()
	return nil
}

// paramItem parses one parameter up to a top-level ',' or the list
// terminator. The name is the last top-level identifier before the
// '='; everything between keyword and name is the declared type.
func (p *verilogParser) paramItem(out *parseOutput, listEnd TokenType) error {
	if p.cur.Type == IDENT && p.cur.IsAny("parameter", "localparam") {
		p.advance()
	}

	start := p.cur.Pos
	var nameTok Token
	var nameOK, inDefault bool
	defStart, defEnd := 0, 0
	depth := 0
	for {
		if p.cur.Type == EOF {
			return p.errf("unterminated parameter")
		}
		if depth == 0 {
			if p.cur.Type == COMMA || p.cur.Type == listEnd {
				break
			}
			if p.cur.Type == EQUALS && !inDefault {
				inDefault = true
				p.advance()
				defStart, defEnd = p.cur.Pos, p.cur.Pos
				continue
			}
		}
		switch p.cur.Type {
		case LPAREN, LBRACKET:
			depth++
			if depth > p.maxDepth {
				return fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, p.maxDepth)
			}
		case RPAREN, RBRACKET:
			if depth > 0 {
				depth--
			}
		case IDENT:
			if depth == 0 && !inDefault {
				nameTok, nameOK = p.cur, true
			}
		}
		if inDefault {
			defEnd = p.cur.End
		}
		p.advance()
	}
	if !nameOK {
		return p.errf("expected parameter name")
	}

	for _, g := range out.generics {
		if g.Name == nameTok.Lexeme {
			return nil
		}
	}
	out.generics = append(out.generics, model.Generic{
		Name:    nameTok.Lexeme,
		Type:    normalizeSpace(p.lex.Slice(start, nameTok.Pos)),
		Default: normalizeSpace(p.lex.Slice(defStart, defEnd)),
	})
	return nil
}

// scanBody walks the module body collecting direction declarations and
// parameters. Direction declarations only bind names the header listed,
// which keeps function and task arguments out of the port list.
func (p *verilogParser) scanBody(out *parseOutput, header []string) error {
	decls := make(map[string]portBinding)

	for p.cur.Type != EOF {
		if p.cur.Type != IDENT {
			p.advance()
			continue
		}
		switch {
		case p.cur.Is("endmodule"):
			return p.bindHeader(out, header, decls)
		case p.cur.IsAny("input", "output", "inout"):
			if err := p.dirDecl(out, decls); err != nil {
				return err
			}
		case p.cur.Is("parameter"):
			p.advance()
			for {
				if err := p.paramItem(out, SEMI); err != nil {
					if errors.Is(err, ErrLimitExceeded) {
						return err
					}
					p.skipStatement(out, err.Error())
					break
				}
				if p.cur.Type == COMMA {
					p.advance()
					continue
				}
				break
			}
			if p.cur.Type == SEMI {
				p.advance()
			}
		default:
			p.advance()
		}
	}
	return p.bindHeader(out, header, decls)
}

func (p *verilogParser) bindHeader(out *parseOutput, header []string, decls map[string]portBinding) error {
	for _, name := range header {
		if b, ok := decls[name]; ok {
			out.ports = append(out.ports, rawPort{Name: name, Direction: b.dir, Type: b.typ})
		} else {
			// undeclared header names default to single-bit inputs
			out.ports = append(out.ports, rawPort{Name: name, Direction: model.DirIn})
		}
	}
	return nil
}

// dirDecl parses `input|output|inout [type] [range] name {, name} ;`.
// A declaration it cannot follow is skipped to the next ';' rather
// than failing the module.
func (p *verilogParser) dirDecl(out *parseOutput, decls map[string]portBinding) error {
	declStart := p.cur.Pos
	dir := model.ParseDirection(p.cur.Lexeme)
	p.advance()
	regionStart := p.cur.Pos

	var names []Token
	var segName Token
	var segOK bool
	depth := 0
	for {
		if p.cur.Type == EOF {
			p.skipFrom(out, declStart, "unterminated declaration")
			return nil
		}
		if depth == 0 {
			if p.cur.Type == SEMI || p.cur.Type == COMMA {
				if !segOK {
					p.skipFrom(out, declStart, "missing name in declaration")
					return nil
				}
				names = append(names, segName)
				segOK = false
				terminal := p.cur.Type == SEMI
				p.advance()
				if terminal {
					break
				}
				continue
			}
		}
		switch p.cur.Type {
		case LPAREN, LBRACKET:
			depth++
			if depth > p.maxDepth {
				return fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, p.maxDepth)
			}
		case RPAREN, RBRACKET:
			if depth > 0 {
				depth--
			}
		case IDENT:
			if depth == 0 {
				segName, segOK = p.cur, true
			}
		}
		p.advance()
	}

	typ := normalizeSpace(p.lex.Slice(regionStart, names[0].Pos))
	for _, n := range names {
		decls[n.Lexeme] = portBinding{dir: dir, typ: typ}
	}
	return nil
}

// skipFrom records everything from start to the next ';' as a skipped
// item and resumes after it.
func (p *verilogParser) skipFrom(out *parseOutput, start int, reason string) {
	for p.cur.Type != EOF && p.cur.Type != SEMI {
		p.advance()
	}
	end := p.cur.End
	if p.cur.Type == SEMI {
		p.advance()
	}
	out.skipped = append(out.skipped, SkippedItem{
		Text:   normalizeSpace(p.lex.Slice(start, end)),
		Reason: reason,
	})
}

func (p *verilogParser) skipStatement(out *parseOutput, reason string) {
	p.skipFrom(out, p.cur.Pos, reason)
}

func (p *verilogParser) seek(kw string) bool {
	for p.cur.Type != EOF {
		if p.cur.Type == IDENT && p.cur.Is(kw) {
			return true
		}
		p.advance()
	}
	return false
}

func (p *verilogParser) scanMore() []string {
	var names []string
	for p.cur.Type != EOF {
		if p.cur.Type == IDENT && p.cur.Is("module") {
			p.advance()
			if p.cur.Type == IDENT {
				names = append(names, p.cur.Lexeme)
				p.advance()
			}
			continue
		}
		p.advance()
	}
	return names
}

func (p *verilogParser) advance() { p.cur = p.lex.Next() }

func (p *verilogParser) errf(format string, args ...any) error {
	return fmt.Errorf("line %d:%d: %s", p.cur.Line, p.cur.Col, fmt.Sprintf(format, args...))
}
