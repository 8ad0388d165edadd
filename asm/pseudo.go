package asm

import (
	"github.com/holtzmann/mipsgo/image"
	"github.com/holtzmann/mipsgo/source"
	"github.com/holtzmann/mipsgo/token"
)

// expandLi implements "li $r, imm": a 16-bit-fitting immediate becomes a
// single addiu; anything wider becomes lui+ori. The choice is made purely
// from the literal's value, so the same source always expands the same way.
func (p *Parser) expandLi(loc source.Location) {
	rt, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	imm, ok := p.expectImm()
	if !ok {
		p.skipToNewline()
		return
	}
	if fitsSigned16(imm) {
		p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpAddiu, Rt: rt, Rs: 0, Imm: int32(int16(imm)), Loc: loc}})
		return
	}
	v := uint32(int32(imm))
	p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpLui, Rt: rt, Imm: int32(uint16(v >> 16)), Loc: loc}})
	p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpOri, Rt: rt, Rs: rt, Imm: int32(uint16(v)), Loc: loc}})
}

// expandLa implements "la $r, label": always two instructions (lui+ori) so
// that PC arithmetic around it stays predictable regardless of how close
// the label's address happens to be.
func (p *Parser) expandLa(loc source.Location) {
	rt, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	if p.cur.Type != token.Identifier {
		p.errf(p.cur.Loc, BadOperand, "la requires a label operand")
		p.skipToNewline()
		return
	}
	label := p.cur.Literal
	p.advance()

	hi := pendingInstr{Instruction: image.Instruction{Op: image.OpLui, Rt: rt, Loc: loc}, symbol: label, use: symHi}
	p.emit(hi)
	lo := pendingInstr{Instruction: image.Instruction{Op: image.OpOri, Rt: rt, Rs: rt, Loc: loc}, symbol: label, use: symLo}
	p.emit(lo)
}

// expandLoadStoreLabel implements the "op $rt, label" and "op $rt,
// label($base)" addressing forms: the label's full 32-bit address is
// materialized in $at (plus the base register, if one is given) and the
// access itself becomes a zero-offset op through $at.
func (p *Parser) expandLoadStoreLabel(mnemonic string, rt int, loc source.Location) {
	label := p.cur.Literal
	p.advance()

	const at = 1
	p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpLui, Rt: at, Loc: loc}, symbol: label, use: symHi})
	p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpOri, Rt: at, Rs: at, Loc: loc}, symbol: label, use: symLo})

	if p.cur.Type == token.LParen {
		p.advance()
		base, ok := p.expectReg()
		if !ok {
			p.skipToNewline()
			return
		}
		if p.cur.Type != token.RParen {
			p.errf(p.cur.Loc, BadOperand, "expected ')' in label(base) operand, got %s", p.cur.Type)
			p.skipToNewline()
			return
		}
		p.advance()
		if base != 0 {
			p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpAddu, Rd: at, Rs: at, Rt: base, Loc: loc}})
		}
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: opFor(mnemonic), Rt: rt, Rs: at, Imm: 0, Loc: loc}})
}

func (p *Parser) expandMove(loc source.Location) {
	rd, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	rs, ok := p.expectReg()
	if !ok {
		p.skipToNewline()
		return
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpAddu, Rd: rd, Rs: rs, Rt: 0, Loc: loc}})
}

func (p *Parser) expandB(loc source.Location) {
	label, lit, ok := p.expectLabelOrAddr()
	if !ok {
		p.skipToNewline()
		return
	}
	p.emitBranch(image.OpBeq, 0, 0, label, lit, loc)
}

// expandCompareBranch implements bgt/blt/bge/ble via slt + beq/bne, per the
// spec's required expansion, using $at as the scratch register.
func (p *Parser) expandCompareBranch(mnemonic string, loc source.Location) {
	ra, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	rb, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	label, lit, ok := p.expectLabelOrAddr()
	if !ok {
		p.skipToNewline()
		return
	}

	const at = 1
	var sltRs, sltRt int
	var branchOp image.Opcode
	switch mnemonic {
	case "bgt": // a > b  <=>  b < a
		sltRs, sltRt, branchOp = rb, ra, image.OpBne
	case "blt": // a < b
		sltRs, sltRt, branchOp = ra, rb, image.OpBne
	case "bge": // a >= b  <=>  !(a < b)
		sltRs, sltRt, branchOp = ra, rb, image.OpBeq
	case "ble": // a <= b  <=>  !(b < a)
		sltRs, sltRt, branchOp = rb, ra, image.OpBeq
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpSlt, Rd: at, Rs: sltRs, Rt: sltRt, Loc: loc}})
	p.emitBranch(branchOp, at, 0, label, lit, loc)
}
