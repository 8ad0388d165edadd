package asm

import (
	"strings"

	"github.com/holtzmann/mipsgo/image"
	"github.com/holtzmann/mipsgo/source"
	"github.com/holtzmann/mipsgo/token"
)

type segment int

const (
	segNone segment = iota
	segData
	segText
)

// Parser drives the two-pass assembler over an already-tokenized source.
type Parser struct {
	toks []token.Token
	pos  int
	cur  token.Token

	errs ErrorList
	syms *symbolTable

	globls  map[string]bool
	segment segment

	data    []byte
	textPtr uint32
	pending []*pendingInstr

	pendingLabel    string
	pendingLabelLoc source.Location
}

// bindPending binds any label collected at the start of the current line
// to addr. Directives that realign the data pointer (.half, .word, .align)
// call this after padding so the label names the aligned address, not the
// pre-padding one.
func (p *Parser) bindPending(addr uint32) {
	if p.pendingLabel == "" {
		return
	}
	if err := p.syms.define(p.pendingLabel, addr, p.pendingLabelLoc); err != nil {
		p.errs.Errors = append(p.errs.Errors, err.(*ParseError))
	}
	p.pendingLabel = ""
}

func newParser(toks []token.Token) *Parser {
	p := &Parser{
		toks:    toks,
		syms:    newSymbolTable(),
		globls:  make(map[string]bool),
		textPtr: image.TextBase,
	}
	p.advance()
	return p
}

func (p *Parser) advance() {
	if p.pos < len(p.toks) {
		p.cur = p.toks[p.pos]
		p.pos++
		return
	}
	p.cur = token.Token{Type: token.EOF, Loc: p.cur.Loc}
}

func (p *Parser) errf(loc source.Location, kind Kind, format string, args ...interface{}) {
	p.errs.add(loc, kind, format, args...)
}

func (p *Parser) skipToNewline() {
	for p.cur.Type != token.Newline && p.cur.Type != token.EOF {
		p.advance()
	}
}

// Assemble runs the full tokenizer + two-pass assembler over files and
// returns the resolved program image.
func Assemble(files []*source.File) (*image.Layout, error) {
	toks, lexErrs := token.Tokenize(files)
	if lexErrs.HasErrors() {
		return nil, lexErrs
	}

	p := newParser(toks)
	p.firstPass()
	if p.errs.HasErrors() {
		return nil, &p.errs
	}

	layout, err := p.secondPass()
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func (p *Parser) firstPass() {
	for p.cur.Type != token.EOF {
		for p.cur.Type == token.Newline {
			p.advance()
		}
		if p.cur.Type == token.EOF {
			break
		}

		if p.cur.Type == token.Label {
			p.pendingLabel = p.cur.Literal
			p.pendingLabelLoc = p.cur.Loc
			p.advance()
		}

		switch p.cur.Type {
		case token.Newline, token.EOF:
			if p.pendingLabel != "" {
				if addr, ok := p.currentAddr(p.pendingLabelLoc); ok {
					p.bindPending(addr)
				}
			}
		case token.Directive:
			p.handleDirective()
		case token.Identifier:
			if p.pendingLabel != "" {
				if addr, ok := p.currentAddr(p.pendingLabelLoc); ok {
					p.bindPending(addr)
				}
			}
			p.parseInstruction()
		default:
			p.errf(p.cur.Loc, BadOperand, "unexpected token %s at start of line", p.cur.Type)
			p.skipToNewline()
		}

		if p.cur.Type == token.Newline {
			p.advance()
		} else if p.cur.Type != token.EOF {
			p.errf(p.cur.Loc, BadOperand, "unexpected trailing token %s", p.cur.Type)
			p.skipToNewline()
			if p.cur.Type == token.Newline {
				p.advance()
			}
		}
	}
}

func (p *Parser) currentAddr(loc source.Location) (uint32, bool) {
	switch p.segment {
	case segData:
		return p.dataAddr(), true
	case segText:
		return p.textPtr, true
	default:
		p.errf(loc, BadOperand, "label outside of .data/.text segment")
		return 0, false
	}
}

// emit appends one fully- or partially-resolved instruction at the current
// text pointer and advances it by one word.
func (p *Parser) emit(in pendingInstr) {
	in.PC = p.textPtr
	cp := in
	p.pending = append(p.pending, &cp)
	p.textPtr += 4
}

func (p *Parser) parseInstruction() {
	mnemonic := strings.ToLower(p.cur.Literal)
	loc := p.cur.Loc
	p.advance()

	if p.segment != segText {
		p.errf(loc, BadOperand, "instruction %s outside of .text segment", mnemonic)
		p.skipToNewline()
		return
	}

	switch mnemonic {
	// R-type arithmetic/logic: op rd, rs, rt
	case "add", "addu", "sub", "subu", "and", "or", "xor", "nor", "slt", "sltu":
		p.parseRRR(mnemonic, loc)

	// I-type arithmetic/logic: op rt, rs, imm
	case "addi", "addiu", "andi", "ori", "xori", "slti", "sltiu":
		p.parseRRI(mnemonic, loc)

	// shift-imm: op rd, rt, shamt
	case "sll", "srl", "sra":
		p.parseShiftImm(mnemonic, loc)

	// shift-reg: op rd, rt, rs
	case "sllv", "srlv", "srav":
		p.parseShiftReg(mnemonic, loc)

	// mult/div: op rs, rt
	case "mult", "multu", "div", "divu":
		p.parseMulDiv(mnemonic, loc)

	case "mfhi", "mflo":
		p.parseMoveFromHiLo(mnemonic, loc)

	case "lui":
		p.parseLui(loc)

	case "lw", "lh", "lhu", "lb", "lbu", "sw", "sh", "sb":
		p.parseLoadStore(mnemonic, loc)

	case "beq", "bne":
		p.parseBranch2(mnemonic, loc)

	case "blez", "bgtz", "bltz", "bgez":
		p.parseBranch1(mnemonic, loc)

	case "j", "jal":
		p.parseJump(mnemonic, loc)

	case "jr":
		p.parseJr(loc)

	case "jalr":
		p.parseJalr(loc)

	case "syscall":
		p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpSyscall, Loc: loc}})

	// pseudo-ops
	case "li":
		p.expandLi(loc)
	case "la":
		p.expandLa(loc)
	case "move":
		p.expandMove(loc)
	case "nop":
		p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpSll, Rd: 0, Rt: 0, Sh: 0, Loc: loc}})
	case "b":
		p.expandB(loc)
	case "bgt", "blt", "bge", "ble":
		p.expandCompareBranch(mnemonic, loc)

	default:
		p.errf(loc, BadOperand, "unknown mnemonic %q", mnemonic)
		p.skipToNewline()
	}
}

func opFor(mnemonic string) image.Opcode {
	switch mnemonic {
	case "add":
		return image.OpAdd
	case "addu":
		return image.OpAddu
	case "sub":
		return image.OpSub
	case "subu":
		return image.OpSubu
	case "and":
		return image.OpAnd
	case "or":
		return image.OpOr
	case "xor":
		return image.OpXor
	case "nor":
		return image.OpNor
	case "slt":
		return image.OpSlt
	case "sltu":
		return image.OpSltu
	case "addi":
		return image.OpAddi
	case "addiu":
		return image.OpAddiu
	case "andi":
		return image.OpAndi
	case "ori":
		return image.OpOri
	case "xori":
		return image.OpXori
	case "slti":
		return image.OpSlti
	case "sltiu":
		return image.OpSltiu
	case "sll":
		return image.OpSll
	case "srl":
		return image.OpSrl
	case "sra":
		return image.OpSra
	case "sllv":
		return image.OpSllv
	case "srlv":
		return image.OpSrlv
	case "srav":
		return image.OpSrav
	case "mult":
		return image.OpMult
	case "multu":
		return image.OpMultu
	case "div":
		return image.OpDiv
	case "divu":
		return image.OpDivu
	case "lw":
		return image.OpLw
	case "lh":
		return image.OpLh
	case "lhu":
		return image.OpLhu
	case "lb":
		return image.OpLb
	case "lbu":
		return image.OpLbu
	case "sw":
		return image.OpSw
	case "sh":
		return image.OpSh
	case "sb":
		return image.OpSb
	case "beq":
		return image.OpBeq
	case "bne":
		return image.OpBne
	case "blez":
		return image.OpBlez
	case "bgtz":
		return image.OpBgtz
	case "bltz":
		return image.OpBltz
	case "bgez":
		return image.OpBgez
	case "j":
		return image.OpJ
	case "jal":
		return image.OpJal
	}
	return -1
}

func (p *Parser) parseRRR(mnemonic string, loc source.Location) {
	rd, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	rs, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	rt, ok := p.expectReg()
	if !ok {
		p.skipToNewline()
		return
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: opFor(mnemonic), Rd: rd, Rs: rs, Rt: rt, Loc: loc}})
}

func (p *Parser) parseRRI(mnemonic string, loc source.Location) {
	rt, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	rs, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	imm, ok := p.expectImm()
	if !ok {
		p.skipToNewline()
		return
	}
	var bits int32
	switch mnemonic {
	case "andi", "ori", "xori":
		if imm < 0 || imm > 0xFFFF {
			p.errf(loc, BadOperand, "immediate %d does not fit in 16 unsigned bits", imm)
		}
		bits = int32(uint16(imm))
	default:
		if !fitsSigned16(imm) {
			p.errf(loc, BadOperand, "immediate %d does not fit in 16 bits", imm)
		}
		bits = int32(int16(imm))
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: opFor(mnemonic), Rt: rt, Rs: rs, Imm: bits, Loc: loc}})
}

func (p *Parser) parseShiftImm(mnemonic string, loc source.Location) {
	rd, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	rt, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	sh, ok := p.expectShamt()
	if !ok {
		p.skipToNewline()
		return
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: opFor(mnemonic), Rd: rd, Rt: rt, Sh: sh, Loc: loc}})
}

func (p *Parser) parseShiftReg(mnemonic string, loc source.Location) {
	rd, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	rt, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	rs, ok := p.expectReg()
	if !ok {
		p.skipToNewline()
		return
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: opFor(mnemonic), Rd: rd, Rt: rt, Rs: rs, Loc: loc}})
}

func (p *Parser) parseMulDiv(mnemonic string, loc source.Location) {
	rs, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	rt, ok := p.expectReg()
	if !ok {
		p.skipToNewline()
		return
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: opFor(mnemonic), Rs: rs, Rt: rt, Loc: loc}})
}

func (p *Parser) parseMoveFromHiLo(mnemonic string, loc source.Location) {
	rd, ok := p.expectReg()
	if !ok {
		p.skipToNewline()
		return
	}
	op := image.OpMfhi
	if mnemonic == "mflo" {
		op = image.OpMflo
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: op, Rd: rd, Loc: loc}})
}

func (p *Parser) parseLui(loc source.Location) {
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
	p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpLui, Rt: rt, Imm: int32(uint16(imm)), Loc: loc}})
}

func (p *Parser) parseLoadStore(mnemonic string, loc source.Location) {
	rt, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	if p.cur.Type == token.Identifier {
		p.expandLoadStoreLabel(mnemonic, rt, loc)
		return
	}
	offset, base, ok := p.expectOffsetBase()
	if !ok {
		p.skipToNewline()
		return
	}
	if !fitsSigned16(offset) {
		p.errf(loc, BadOperand, "offset %d does not fit in 16 bits", offset)
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: opFor(mnemonic), Rt: rt, Rs: base, Imm: int32(int16(offset)), Loc: loc}})
}

func (p *Parser) parseBranch2(mnemonic string, loc source.Location) {
	rs, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	rt, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	label, lit, ok := p.expectLabelOrAddr()
	if !ok {
		p.skipToNewline()
		return
	}
	p.emitBranch(opFor(mnemonic), rs, rt, label, lit, loc)
}

func (p *Parser) parseBranch1(mnemonic string, loc source.Location) {
	rs, ok := p.expectReg()
	if !ok || !p.expectComma() {
		p.skipToNewline()
		return
	}
	label, lit, ok := p.expectLabelOrAddr()
	if !ok {
		p.skipToNewline()
		return
	}
	p.emitBranch(opFor(mnemonic), rs, 0, label, lit, loc)
}

func (p *Parser) emitBranch(op image.Opcode, rs, rt int, label string, lit int64, loc source.Location) {
	pi := pendingInstr{Instruction: image.Instruction{Op: op, Rs: rs, Rt: rt, Loc: loc}}
	if label != "" {
		pi.symbol, pi.use = label, symBranch
	} else {
		pi.Imm = int32(lit)
	}
	p.emit(pi)
}

func (p *Parser) parseJump(mnemonic string, loc source.Location) {
	label, lit, ok := p.expectLabelOrAddr()
	if !ok {
		p.skipToNewline()
		return
	}
	pi := pendingInstr{Instruction: image.Instruction{Op: opFor(mnemonic), Loc: loc}}
	if label != "" {
		pi.symbol, pi.use = label, symJump
	} else {
		pi.Addr = uint32(lit)
	}
	p.emit(pi)
}

func (p *Parser) parseJr(loc source.Location) {
	rs, ok := p.expectReg()
	if !ok {
		p.skipToNewline()
		return
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpJr, Rs: rs, Loc: loc}})
}

func (p *Parser) parseJalr(loc source.Location) {
	first, ok := p.expectReg()
	if !ok {
		p.skipToNewline()
		return
	}
	rd, rs := 31, first
	if p.cur.Type == token.Comma {
		p.advance()
		rs, ok = p.expectReg()
		if !ok {
			p.skipToNewline()
			return
		}
		rd = first
	}
	p.emit(pendingInstr{Instruction: image.Instruction{Op: image.OpJalr, Rd: rd, Rs: rs, Loc: loc}})
}
