package asm

import (
	"github.com/holtzmann/mipsgo/image"
	"github.com/holtzmann/mipsgo/source"
)

// secondPass resolves every deferred symbol reference, checks branch/jump
// range invariants, and assembles the final immutable image.Layout.
func (p *Parser) secondPass() (*image.Layout, error) {
	instructions := make(map[uint32]*image.Instruction, len(p.pending))

	for _, pi := range p.pending {
		if pi.use != symNone {
			target, ok := p.syms.resolve(pi.symbol)
			if !ok {
				p.errf(pi.Loc, UndefinedLabel, "undefined label %q", pi.symbol)
				continue
			}
			switch pi.use {
			case symBranch:
				pcPlus4 := pi.PC + 4
				disp := (int64(target) - int64(pcPlus4)) >> 2
				if disp < -32768 || disp > 32767 {
					p.errf(pi.Loc, BranchOutOfRange, "branch to %q displacement %d words out of range", pi.symbol, disp)
					continue
				}
				pi.Imm = int32(disp)
			case symJump:
				pcPlus4 := pi.PC + 4
				if (target & 0xF0000000) != (pcPlus4 & 0xF0000000) {
					p.errf(pi.Loc, JumpOutOfRegion, "jump to %q crosses 256MiB region boundary", pi.symbol)
					continue
				}
				pi.Addr = target
			case symHi:
				pi.Imm = hi16(target)
			case symLo:
				pi.Imm = lo16(target)
			}
		}
		inst := pi.Instruction
		instructions[pi.PC] = &inst
	}

	entry, hasMain := p.syms.resolve("main")
	if !hasMain {
		p.errf(source.Location{}, NoEntryPoint, "no 'main' label defined")
	}

	if p.errs.HasErrors() {
		return nil, &p.errs
	}

	heapBase := image.DataBase + uint32(len(p.data))
	if heapBase%4 != 0 {
		heapBase += 4 - heapBase%4
	}

	symbols := make(map[string]uint32, len(p.syms.addr))
	for k, v := range p.syms.addr {
		symbols[k] = v
	}

	return &image.Layout{
		TextBase:     image.TextBase,
		TextSize:     p.textPtr - image.TextBase,
		Instructions: instructions,
		DataBase:     image.DataBase,
		Data:         p.data,
		StackTop:     image.StackTop,
		HeapBase:     heapBase,
		MMIOBase:     image.MMIOBase,
		Symbols:      symbols,
		Entry:        entry,
	}, nil
}
