package asm

import (
	"github.com/holtzmann/mipsgo/token"
)

// expectReg consumes one Register token and returns its index.
func (p *Parser) expectReg() (int, bool) {
	if p.cur.Type != token.Register {
		p.errf(p.cur.Loc, BadOperand, "expected register operand, got %s", p.cur.Type)
		return 0, false
	}
	idx := p.cur.RegIndex
	p.advance()
	return idx, true
}

func (p *Parser) expectComma() bool {
	if p.cur.Type != token.Comma {
		p.errf(p.cur.Loc, BadOperand, "expected ',', got %s", p.cur.Type)
		return false
	}
	p.advance()
	return true
}

// expectImm consumes one Integer token and returns its value.
func (p *Parser) expectImm() (int64, bool) {
	if p.cur.Type != token.Integer {
		p.errf(p.cur.Loc, BadOperand, "expected integer operand, got %s", p.cur.Type)
		return 0, false
	}
	v := p.cur.IntValue
	p.advance()
	return v, true
}

// expectShamt consumes an integer shift amount in 0..31.
func (p *Parser) expectShamt() (uint8, bool) {
	v, ok := p.expectImm()
	if !ok {
		return 0, false
	}
	if v < 0 || v > 31 {
		p.errf(p.cur.Loc, BadOperand, "shift amount %d out of range 0..31", v)
		return 0, false
	}
	return uint8(v), true
}

// expectLabelOrAddr consumes either an Identifier (symbolic label) or an
// Integer (literal absolute address), returning the label name (empty if a
// literal was used) and the literal value.
func (p *Parser) expectLabelOrAddr() (label string, lit int64, ok bool) {
	switch p.cur.Type {
	case token.Identifier:
		label = p.cur.Literal
		p.advance()
		return label, 0, true
	case token.Integer:
		lit = p.cur.IntValue
		p.advance()
		return "", lit, true
	default:
		p.errf(p.cur.Loc, BadOperand, "expected label or address, got %s", p.cur.Type)
		return "", 0, false
	}
}

// expectOffsetBase consumes the "offset(base)" addressing form used by
// load/store instructions. The offset may be omitted, defaulting to 0.
func (p *Parser) expectOffsetBase() (offset int64, base int, ok bool) {
	if p.cur.Type == token.Integer {
		offset = p.cur.IntValue
		p.advance()
	}
	if p.cur.Type != token.LParen {
		p.errf(p.cur.Loc, BadOperand, "expected '(' in offset(base) operand, got %s", p.cur.Type)
		return 0, 0, false
	}
	p.advance()
	base, ok = p.expectReg()
	if !ok {
		return 0, 0, false
	}
	if p.cur.Type != token.RParen {
		p.errf(p.cur.Loc, BadOperand, "expected ')' in offset(base) operand, got %s", p.cur.Type)
		return 0, 0, false
	}
	p.advance()
	return offset, base, true
}
