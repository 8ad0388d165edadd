// Package asm assembles a tokenized MIPS32 source into an immutable
// image.Layout: a first pass collects segment layout and symbols, a
// second pass resolves symbols and encodes final instructions, and
// pseudo-instructions are expanded deterministically along the way.
package asm

import (
	"github.com/holtzmann/mipsgo/image"
)

// symbolUse tells pass 2 how to fold a resolved symbol address into an
// already-emitted instruction.
type symbolUse int

const (
	symNone symbolUse = iota
	symBranch // fold (target-(pc+4))>>2 into Imm
	symJump   // fold absolute word target into Addr
	symHi     // fold hi16(target) into Imm (la and label load/store expansion)
	symLo     // fold lo16(target) into Imm (la and label load/store expansion)
)

// pendingInstr is the assembler's working form of an instruction during
// pass 1: identical to image.Instruction except that a branch/jump/la
// target may still be a symbolic label rather than a resolved address.
type pendingInstr struct {
	image.Instruction
	symbol string
	use    symbolUse
}

// hi16 and lo16 split a 32-bit address into its raw 16-bit halves, stored
// as the bit pattern (0..65535) that the interpreter then sign- or
// zero-extends per opcode.
func hi16(v uint32) int32 { return int32(uint16(v >> 16)) }
func lo16(v uint32) int32 { return int32(uint16(v)) }

// fitsSigned16 reports whether v fits in a signed 16-bit immediate.
func fitsSigned16(v int64) bool {
	return v >= -32768 && v <= 32767
}
