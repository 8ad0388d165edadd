package image

import "github.com/holtzmann/mipsgo/source"

// Opcode is the tag of the Instruction sum type: exactly one value per
// implemented MIPS opcode. Pseudo-ops are expanded by the assembler before
// an Instruction is ever constructed, so no pseudo tag exists here.
type Opcode int

const (
	OpAdd Opcode = iota
	OpAddu
	OpAddi
	OpAddiu
	OpSub
	OpSubu
	OpAnd
	OpAndi
	OpOr
	OpOri
	OpXor
	OpXori
	OpNor
	OpSll
	OpSrl
	OpSra
	OpSllv
	OpSrlv
	OpSrav
	OpSlt
	OpSltu
	OpSlti
	OpSltiu
	OpMult
	OpMultu
	OpDiv
	OpDivu
	OpMfhi
	OpMflo
	OpLw
	OpLh
	OpLhu
	OpLb
	OpLbu
	OpSw
	OpSh
	OpSb
	OpLui
	OpBeq
	OpBne
	OpBlez
	OpBgtz
	OpBltz
	OpBgez
	OpJ
	OpJal
	OpJr
	OpJalr
	OpSyscall
)

var opcodeNames = map[Opcode]string{
	OpAdd: "add", OpAddu: "addu", OpAddi: "addi", OpAddiu: "addiu",
	OpSub: "sub", OpSubu: "subu",
	OpAnd: "and", OpAndi: "andi", OpOr: "or", OpOri: "ori",
	OpXor: "xor", OpXori: "xori", OpNor: "nor",
	OpSll: "sll", OpSrl: "srl", OpSra: "sra",
	OpSllv: "sllv", OpSrlv: "srlv", OpSrav: "srav",
	OpSlt: "slt", OpSltu: "sltu", OpSlti: "slti", OpSltiu: "sltiu",
	OpMult: "mult", OpMultu: "multu", OpDiv: "div", OpDivu: "divu",
	OpMfhi: "mfhi", OpMflo: "mflo",
	OpLw: "lw", OpLh: "lh", OpLhu: "lhu", OpLb: "lb", OpLbu: "lbu",
	OpSw: "sw", OpSh: "sh", OpSb: "sb",
	OpLui: "lui",
	OpBeq: "beq", OpBne: "bne", OpBlez: "blez", OpBgtz: "bgtz", OpBltz: "bltz", OpBgez: "bgez",
	OpJ: "j", OpJal: "jal", OpJr: "jr", OpJalr: "jalr",
	OpSyscall: "syscall",
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return "?"
}

// Instruction is the fully-resolved, decoded form of one real MIPS opcode,
// as produced by the assembler's second pass. Only the fields relevant to
// Op carry meaning for that opcode; see the component design notes for the
// per-opcode operand shape.
type Instruction struct {
	Op   Opcode
	Rs   int
	Rt   int
	Rd   int
	Sh   uint8
	Imm  int32  // sign- or zero-extended immediate/offset, per Op
	Addr uint32 // absolute jump target, for OpJ/OpJal

	PC  uint32 // the address this instruction occupies
	Loc source.Location
}
