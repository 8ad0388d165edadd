package debugger

import (
	"fmt"
	"strings"

	"github.com/holtzmann/mipsgo/image"
	"github.com/holtzmann/mipsgo/interp"
)

// FormatRegisters renders the full register file as a fixed 4-column grid
// followed by PC/HI/LO.
func FormatRegisters(r *interp.RegisterFile) string {
	var b strings.Builder
	for row := 0; row < 8; row++ {
		for col := 0; col < 4; col++ {
			i := row*4 + col
			fmt.Fprintf(&b, "$%-4s: 0x%08X  ", regNames[i], uint32(r.Get(i)))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "$pc  : 0x%08X  $hi  : 0x%08X  $lo  : 0x%08X\n", r.PC, uint32(r.HI), uint32(r.LO))
	return b.String()
}

// FormatBreakpoints lists every known breakpoint, one per line.
func FormatBreakpoints(bps []*Breakpoint) string {
	if len(bps) == 0 {
		return "no breakpoints set\n"
	}
	var b strings.Builder
	for _, bp := range bps {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		fmt.Fprintf(&b, "%d: 0x%08X %s (hits: %d)\n", bp.ID, bp.Address, status, bp.HitCount)
	}
	return b.String()
}

// FormatDisassembly renders window instructions before and after pc,
// marking the current instruction and any installed breakpoints.
func FormatDisassembly(layout *image.Layout, pc uint32, bps *BreakpointManager, window int) string {
	if layout == nil {
		return "no program loaded\n"
	}
	var b strings.Builder
	start := pc - uint32(window)*4
	if start > pc {
		start = layout.TextBase
	}
	for addr := start; addr <= pc+uint32(window)*4; addr += 4 {
		inst := layout.InstructionAt(addr)
		if inst == nil {
			continue
		}
		marker := "  "
		if addr == pc {
			marker = "->"
		} else if bp := bps.At(addr); bp != nil {
			marker = "* "
		}
		fmt.Fprintf(&b, "%s0x%08X: %s\n", marker, addr, disassemble(inst))
	}
	return b.String()
}

// FormatListing renders every assembled instruction in address order, the
// whole text segment at once.
func FormatListing(layout *image.Layout) string {
	if layout == nil {
		return "no program loaded\n"
	}
	var b strings.Builder
	for addr := layout.TextBase; addr < layout.TextBase+layout.TextSize; addr += 4 {
		inst := layout.InstructionAt(addr)
		if inst == nil {
			continue
		}
		fmt.Fprintf(&b, "0x%08X: %s\n", addr, disassemble(inst))
	}
	return b.String()
}

// Disassemble renders one decoded instruction as assembler text.
func Disassemble(inst *image.Instruction) string { return disassemble(inst) }

func reg(i int) string { return "$" + regNames[i] }

// disassemble renders inst as a textual mnemonic and operand list in the
// shape its operands were assembled from.
func disassemble(inst *image.Instruction) string {
	op := inst.Op.String()
	switch inst.Op {
	case image.OpAdd, image.OpAddu, image.OpSub, image.OpSubu,
		image.OpAnd, image.OpOr, image.OpXor, image.OpNor,
		image.OpSlt, image.OpSltu:
		return fmt.Sprintf("%-6s %s, %s, %s", op, reg(inst.Rd), reg(inst.Rs), reg(inst.Rt))
	case image.OpSll, image.OpSrl, image.OpSra:
		return fmt.Sprintf("%-6s %s, %s, %d", op, reg(inst.Rd), reg(inst.Rt), inst.Sh)
	case image.OpSllv, image.OpSrlv, image.OpSrav:
		return fmt.Sprintf("%-6s %s, %s, %s", op, reg(inst.Rd), reg(inst.Rt), reg(inst.Rs))
	case image.OpAddi, image.OpAddiu, image.OpSlti, image.OpSltiu:
		return fmt.Sprintf("%-6s %s, %s, %d", op, reg(inst.Rt), reg(inst.Rs), inst.Imm)
	case image.OpAndi, image.OpOri, image.OpXori:
		return fmt.Sprintf("%-6s %s, %s, 0x%X", op, reg(inst.Rt), reg(inst.Rs), uint16(inst.Imm))
	case image.OpLui:
		return fmt.Sprintf("%-6s %s, 0x%X", op, reg(inst.Rt), uint16(inst.Imm))
	case image.OpLw, image.OpLh, image.OpLhu, image.OpLb, image.OpLbu,
		image.OpSw, image.OpSh, image.OpSb:
		return fmt.Sprintf("%-6s %s, %d(%s)", op, reg(inst.Rt), inst.Imm, reg(inst.Rs))
	case image.OpBeq, image.OpBne:
		return fmt.Sprintf("%-6s %s, %s, 0x%08X", op, reg(inst.Rs), reg(inst.Rt), inst.PC+4+uint32(inst.Imm)*4)
	case image.OpBlez, image.OpBgtz, image.OpBltz, image.OpBgez:
		return fmt.Sprintf("%-6s %s, 0x%08X", op, reg(inst.Rs), inst.PC+4+uint32(inst.Imm)*4)
	case image.OpJ, image.OpJal:
		return fmt.Sprintf("%-6s 0x%08X", op, inst.Addr)
	case image.OpJr:
		return fmt.Sprintf("%-6s %s", op, reg(inst.Rs))
	case image.OpJalr:
		return fmt.Sprintf("%-6s %s, %s", op, reg(inst.Rd), reg(inst.Rs))
	case image.OpMult, image.OpMultu, image.OpDiv, image.OpDivu:
		return fmt.Sprintf("%-6s %s, %s", op, reg(inst.Rs), reg(inst.Rt))
	case image.OpMfhi, image.OpMflo:
		return fmt.Sprintf("%-6s %s", op, reg(inst.Rd))
	case image.OpSyscall:
		return op
	default:
		return op
	}
}
