package asm

import (
	"github.com/holtzmann/mipsgo/image"
	"github.com/holtzmann/mipsgo/token"
)

// dataAddr returns the absolute address the next data byte will occupy.
func (p *Parser) dataAddr() uint32 {
	return image.DataBase + uint32(len(p.data))
}

func (p *Parser) padTo(align uint32) {
	for p.dataAddr()%align != 0 {
		p.data = append(p.data, 0)
	}
}

func (p *Parser) appendLE16(v uint16) {
	p.data = append(p.data, byte(v), byte(v>>8))
}

func (p *Parser) appendLE32(v uint32) {
	p.data = append(p.data, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// handleDirective dispatches one directive line. p.cur is the Directive
// token; operands (if any) follow up to the next Newline.
func (p *Parser) handleDirective() {
	name := p.cur.Literal
	loc := p.cur.Loc
	p.advance()

	// .half/.word/.align may realign the data pointer before the label's
	// address is known; every other directive binds at the current pointer.
	if p.pendingLabel != "" {
		switch name {
		case ".half", ".word", ".align":
		default:
			if addr, ok := p.currentAddr(p.pendingLabelLoc); ok {
				p.bindPending(addr)
			}
		}
	}

	switch name {
	case ".data":
		p.segment = segData
	case ".text":
		p.segment = segText
	case ".globl", ".global":
		if p.cur.Type == token.Identifier {
			p.globls[p.cur.Literal] = true
			p.advance()
		} else {
			p.errf(loc, BadOperand, ".globl requires a symbol name")
		}
	case ".ascii":
		p.directiveAscii(false)
	case ".asciiz":
		p.directiveAscii(true)
	case ".byte":
		p.directiveByte()
	case ".half":
		p.directiveHalf()
	case ".word":
		p.directiveWord()
	case ".space":
		p.directiveSpace()
	case ".align":
		p.directiveAlign()
	default:
		p.errf(loc, UnknownDirective, "unknown directive %s", name)
	}
}

func (p *Parser) requireDataSegment(loc token.Token, directive string) bool {
	if p.segment != segData {
		p.errf(loc.Loc, BadOperand, "%s is only valid in .data segment", directive)
		p.skipToNewline()
		return false
	}
	return true
}

func (p *Parser) directiveAscii(zero bool) {
	start := p.cur
	if !p.requireDataSegment(start, ".ascii") {
		return
	}
	if p.cur.Type != token.String {
		p.errf(p.cur.Loc, BadOperand, ".ascii/.asciiz requires a string literal")
		p.skipToNewline()
		return
	}
	p.data = append(p.data, p.cur.Bytes...)
	if zero {
		p.data = append(p.data, 0)
	}
	p.advance()
}

func (p *Parser) directiveByte() {
	start := p.cur
	if !p.requireDataSegment(start, ".byte") {
		return
	}
	for {
		var v int64
		if p.cur.Type == token.Char {
			v = int64(p.cur.Bytes[0])
			p.advance()
		} else {
			imm, ok := p.expectImm()
			if !ok {
				p.skipToNewline()
				return
			}
			v = imm
		}
		if v < -128 || v > 255 {
			p.errf(start.Loc, BadOperand, ".byte value %d out of range -128..255", v)
		}
		p.data = append(p.data, byte(v))
		if p.cur.Type != token.Comma {
			break
		}
		p.advance()
	}
}

func (p *Parser) directiveHalf() {
	start := p.cur
	if !p.requireDataSegment(start, ".half") {
		return
	}
	p.padTo(2)
	p.bindPending(p.dataAddr())
	for {
		v, ok := p.expectImm()
		if !ok {
			p.skipToNewline()
			return
		}
		p.appendLE16(uint16(v))
		if p.cur.Type != token.Comma {
			break
		}
		p.advance()
	}
}

func (p *Parser) directiveWord() {
	start := p.cur
	if !p.requireDataSegment(start, ".word") {
		return
	}
	p.padTo(4)
	p.bindPending(p.dataAddr())
	for {
		v, ok := p.expectImm()
		if !ok {
			p.skipToNewline()
			return
		}
		p.appendLE32(uint32(v))
		if p.cur.Type != token.Comma {
			break
		}
		p.advance()
	}
}

func (p *Parser) directiveSpace() {
	start := p.cur
	if !p.requireDataSegment(start, ".space") {
		return
	}
	n, ok := p.expectImm()
	if !ok || n < 0 {
		p.errf(start.Loc, BadOperand, ".space requires a non-negative count")
		return
	}
	p.data = append(p.data, make([]byte, n)...)
}

func (p *Parser) directiveAlign() {
	start := p.cur
	if !p.requireDataSegment(start, ".align") {
		return
	}
	k, ok := p.expectImm()
	if !ok || k < 0 || k > 20 {
		p.errf(start.Loc, AlignmentError, ".align requires a shift count 0..20")
		return
	}
	p.padTo(uint32(1) << uint(k))
	p.bindPending(p.dataAddr())
}
