// Package interp implements the fetch/decode/execute loop over an
// assembled program image: a 32-register MIPS32 subset, a segmented
// byte-addressable memory, and the SYSCALL/MMIO I/O modes.
package interp

import (
	"bufio"
	"io"

	"github.com/holtzmann/mipsgo/image"
)

// IOMode selects which of the two I/O conventions the interpreter honors
// for non-exit syscalls and for loads/stores to the MMIO register block.
type IOMode int

const (
	IOSyscall IOMode = iota
	IOMMIO
)

// Interpreter owns the mutable machine state for one program's lifetime:
// registers, memory, the installed program image, and the two I/O
// streams supplied by the host. It is not safe for concurrent use from
// more than one goroutine.
type Interpreter struct {
	Regs   RegisterFile
	Mem    *Memory
	Layout *image.Layout

	IOMode  IOMode
	IStream io.Reader
	OStream io.Writer
	stdin   *bufio.Reader
	mmio    mmioRegs

	// StepMode, when true, makes a read_* syscall that finds no data
	// available raise InputPending instead of blocking; Interpret always
	// runs with StepMode false.
	StepMode bool

	// Tracer, when non-nil, receives one line per executed instruction.
	Tracer *Tracer

	halted   bool
	exitCode int32

	Cycles    uint64
	MaxCycles uint64 // 0 means unbounded
}

// NewInterpreter constructs an Interpreter with no program installed yet.
// istream/ostream default to stubs if nil.
func NewInterpreter(istream io.Reader, ostream io.Writer) *Interpreter {
	if istream == nil {
		istream = eofReader{}
	}
	if ostream == nil {
		ostream = io.Discard
	}
	it := &Interpreter{IStream: istream, OStream: ostream}
	it.stdin = bufio.NewReader(istream)
	return it
}

// eofReader is an always-EOF io.Reader used when the caller supplies no
// istream at all.
type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// InitProgram installs layout, zero-initialises the register file, sets
// PC to the entry point, sets SP to the stack top, loads the .data
// segment, and clears the halted flag. Calling InitProgram twice on the
// same Interpreter with the same layout reproduces identical observable
// state before the first Step.
func (it *Interpreter) InitProgram(layout *image.Layout) error {
	it.Layout = layout
	it.Regs.Reset()
	it.Regs.PC = layout.Entry
	it.Regs.Set(29, int32(layout.StackTop)) // $sp
	it.Mem = NewMemory(layout.DataBase, layout.StackTop, layout.MMIOBase, layout.MMIOBase+0xF)
	if err := it.Mem.LoadBytes(layout.DataBase, layout.Data); err != nil {
		return err
	}
	it.halted = false
	it.exitCode = 0
	it.Cycles = 0
	it.mmio = mmioRegs{}
	return nil
}

// Halted reports whether the program has terminated.
func (it *Interpreter) Halted() bool { return it.halted }

// ExitCode returns the program's exit code, valid once Halted is true.
func (it *Interpreter) ExitCode() int32 { return it.exitCode }

// Step executes exactly one instruction. It returns *ExecExit on normal
// termination, *InputPending if a blocking read found no data in step
// mode, or any other error as a fatal runtime failure.
func (it *Interpreter) Step() error {
	if it.halted {
		return &ExecExit{Code: it.exitCode}
	}
	if it.MaxCycles > 0 && it.Cycles >= it.MaxCycles {
		return &CycleLimitExceeded{Cycles: it.Cycles}
	}

	if it.IOMode == IOMMIO {
		it.pollMMIO()
	}

	pc := it.Regs.PC
	inst := it.Layout.InstructionAt(pc)
	if inst == nil {
		if pc == it.Layout.TextBase+it.Layout.TextSize {
			it.halt(0)
			return &ExecExit{Code: 0}
		}
		return &SegFault{Addr: pc, Op: "fetch"}
	}

	var before snapshot
	if it.Tracer != nil {
		before = snapshotRegs(&it.Regs)
	}

	it.Regs.PC = pc + 4
	err := it.execute(inst, pc)
	if _, pending := err.(*InputPending); pending {
		it.Regs.PC = pc // re-execute the same syscall next Step
		return err
	}
	if it.Tracer != nil {
		it.Tracer.emit(pc, inst.Op.String(), before, &it.Regs)
	}
	it.Cycles++
	return err
}

// Interpret installs layout and steps until the program halts, returning
// the exit code. Any runtime error other than ExecExit aborts early and
// is returned to the caller; read_* syscalls block until data or EOF.
func (it *Interpreter) Interpret(layout *image.Layout) (int32, error) {
	if err := it.InitProgram(layout); err != nil {
		return 0, err
	}
	it.StepMode = false
	for {
		err := it.Step()
		if err == nil {
			continue
		}
		if exit, ok := err.(*ExecExit); ok {
			return exit.Code, nil
		}
		return 0, err
	}
}

func (it *Interpreter) halt(code int32) {
	it.halted = true
	it.exitCode = code
}

func (it *Interpreter) execute(inst *image.Instruction, pc uint32) error {
	r := &it.Regs
	switch inst.Op {
	case image.OpAdd:
		a, b := r.Get(inst.Rs), r.Get(inst.Rt)
		sum := a + b
		if overflowsAdd(a, b, sum) {
			return &ArithOverflow{PC: pc, Mnem: "add"}
		}
		r.Set(inst.Rd, sum)
	case image.OpAddu:
		r.Set(inst.Rd, r.Get(inst.Rs)+r.Get(inst.Rt))
	case image.OpAddi:
		a := r.Get(inst.Rs)
		sum := a + inst.Imm
		if overflowsAdd(a, inst.Imm, sum) {
			return &ArithOverflow{PC: pc, Mnem: "addi"}
		}
		r.Set(inst.Rt, sum)
	case image.OpAddiu:
		r.Set(inst.Rt, r.Get(inst.Rs)+inst.Imm)
	case image.OpSub:
		a, b := r.Get(inst.Rs), r.Get(inst.Rt)
		diff := a - b
		if overflowsSub(a, b, diff) {
			return &ArithOverflow{PC: pc, Mnem: "sub"}
		}
		r.Set(inst.Rd, diff)
	case image.OpSubu:
		r.Set(inst.Rd, r.Get(inst.Rs)-r.Get(inst.Rt))
	case image.OpAnd:
		r.Set(inst.Rd, int32(uint32(r.Get(inst.Rs))&uint32(r.Get(inst.Rt))))
	case image.OpAndi:
		r.Set(inst.Rt, int32(uint32(r.Get(inst.Rs))&uint32(uint16(inst.Imm))))
	case image.OpOr:
		r.Set(inst.Rd, int32(uint32(r.Get(inst.Rs))|uint32(r.Get(inst.Rt))))
	case image.OpOri:
		r.Set(inst.Rt, int32(uint32(r.Get(inst.Rs))|uint32(uint16(inst.Imm))))
	case image.OpXor:
		r.Set(inst.Rd, int32(uint32(r.Get(inst.Rs))^uint32(r.Get(inst.Rt))))
	case image.OpXori:
		r.Set(inst.Rt, int32(uint32(r.Get(inst.Rs))^uint32(uint16(inst.Imm))))
	case image.OpNor:
		r.Set(inst.Rd, int32(^(uint32(r.Get(inst.Rs)) | uint32(r.Get(inst.Rt)))))
	case image.OpSll:
		r.Set(inst.Rd, int32(uint32(r.Get(inst.Rt))<<inst.Sh))
	case image.OpSrl:
		r.Set(inst.Rd, int32(uint32(r.Get(inst.Rt))>>inst.Sh))
	case image.OpSra:
		r.Set(inst.Rd, r.Get(inst.Rt)>>inst.Sh)
	case image.OpSllv:
		r.Set(inst.Rd, int32(uint32(r.Get(inst.Rt))<<(uint32(r.Get(inst.Rs))&0x1F)))
	case image.OpSrlv:
		r.Set(inst.Rd, int32(uint32(r.Get(inst.Rt))>>(uint32(r.Get(inst.Rs))&0x1F)))
	case image.OpSrav:
		r.Set(inst.Rd, r.Get(inst.Rt)>>(uint32(r.Get(inst.Rs))&0x1F))
	case image.OpSlt:
		r.Set(inst.Rd, boolToInt32(r.Get(inst.Rs) < r.Get(inst.Rt)))
	case image.OpSltu:
		r.Set(inst.Rd, boolToInt32(uint32(r.Get(inst.Rs)) < uint32(r.Get(inst.Rt))))
	case image.OpSlti:
		r.Set(inst.Rt, boolToInt32(r.Get(inst.Rs) < inst.Imm))
	case image.OpSltiu:
		r.Set(inst.Rt, boolToInt32(uint32(r.Get(inst.Rs)) < uint32(inst.Imm)))
	case image.OpMult:
		prod := int64(r.Get(inst.Rs)) * int64(r.Get(inst.Rt))
		r.LO, r.HI = int32(uint64(prod)), int32(uint64(prod)>>32)
	case image.OpMultu:
		prod := uint64(uint32(r.Get(inst.Rs))) * uint64(uint32(r.Get(inst.Rt)))
		r.LO, r.HI = int32(prod), int32(prod>>32)
	case image.OpDiv:
		a, b := r.Get(inst.Rs), r.Get(inst.Rt)
		if b != 0 {
			r.LO, r.HI = a/b, a%b
		}
	case image.OpDivu:
		a, b := uint32(r.Get(inst.Rs)), uint32(r.Get(inst.Rt))
		if b != 0 {
			r.LO, r.HI = int32(a/b), int32(a%b)
		}
	case image.OpMfhi:
		r.Set(inst.Rd, r.HI)
	case image.OpMflo:
		r.Set(inst.Rd, r.LO)
	case image.OpLui:
		r.Set(inst.Rt, int32(uint32(uint16(inst.Imm))<<16))
	case image.OpLw:
		v, err := it.loadWord(uint32(r.Get(inst.Rs) + inst.Imm))
		if err != nil {
			return err
		}
		r.Set(inst.Rt, int32(v))
	case image.OpLh:
		v, err := it.loadHalf(uint32(r.Get(inst.Rs) + inst.Imm))
		if err != nil {
			return err
		}
		r.Set(inst.Rt, int32(int16(v)))
	case image.OpLhu:
		v, err := it.loadHalf(uint32(r.Get(inst.Rs) + inst.Imm))
		if err != nil {
			return err
		}
		r.Set(inst.Rt, int32(v))
	case image.OpLb:
		v, err := it.loadByte(uint32(r.Get(inst.Rs) + inst.Imm))
		if err != nil {
			return err
		}
		r.Set(inst.Rt, int32(int8(v)))
	case image.OpLbu:
		v, err := it.loadByte(uint32(r.Get(inst.Rs) + inst.Imm))
		if err != nil {
			return err
		}
		r.Set(inst.Rt, int32(v))
	case image.OpSw:
		return it.storeWord(uint32(r.Get(inst.Rs)+inst.Imm), uint32(r.Get(inst.Rt)))
	case image.OpSh:
		return it.storeHalf(uint32(r.Get(inst.Rs)+inst.Imm), uint16(r.Get(inst.Rt)))
	case image.OpSb:
		return it.storeByte(uint32(r.Get(inst.Rs)+inst.Imm), byte(r.Get(inst.Rt)))
	case image.OpBeq:
		if r.Get(inst.Rs) == r.Get(inst.Rt) {
			it.branch(inst.Imm)
		}
	case image.OpBne:
		if r.Get(inst.Rs) != r.Get(inst.Rt) {
			it.branch(inst.Imm)
		}
	case image.OpBlez:
		if r.Get(inst.Rs) <= 0 {
			it.branch(inst.Imm)
		}
	case image.OpBgtz:
		if r.Get(inst.Rs) > 0 {
			it.branch(inst.Imm)
		}
	case image.OpBltz:
		if r.Get(inst.Rs) < 0 {
			it.branch(inst.Imm)
		}
	case image.OpBgez:
		if r.Get(inst.Rs) >= 0 {
			it.branch(inst.Imm)
		}
	case image.OpJ:
		r.PC = inst.Addr
	case image.OpJal:
		r.Set(31, int32(r.PC))
		r.PC = inst.Addr
	case image.OpJr:
		r.PC = uint32(r.Get(inst.Rs))
	case image.OpJalr:
		ret := r.PC
		r.PC = uint32(r.Get(inst.Rs))
		r.Set(inst.Rd, int32(ret))
	case image.OpSyscall:
		return it.syscall(pc)
	}
	return nil
}

// branch applies a resolved word displacement to PC, which at this point
// already holds pc+4 (the no-delay-slot convention).
func (it *Interpreter) branch(wordDisp int32) {
	it.Regs.PC = uint32(int64(it.Regs.PC) + int64(wordDisp)*4)
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func overflowsAdd(a, b, sum int32) bool {
	return (a >= 0 && b >= 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0)
}

func overflowsSub(a, b, diff int32) bool {
	return (a >= 0 && b < 0 && diff < 0) || (a < 0 && b >= 0 && diff >= 0)
}

func (it *Interpreter) loadWord(addr uint32) (uint32, error) {
	if it.isMMIO(addr) {
		if err := checkAligned(addr, 4); err != nil {
			return 0, err
		}
		return it.mmioLoadWord(addr)
	}
	v, err := it.Mem.ReadWord(addr)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (it *Interpreter) loadHalf(addr uint32) (uint16, error) {
	if it.isMMIO(addr) {
		if err := checkAligned(addr, 2); err != nil {
			return 0, err
		}
		v, err := it.mmioLoadWord(addr - addr%4)
		if err != nil {
			return 0, err
		}
		shift := (addr % 4) * 8
		return uint16(v >> shift), nil
	}
	return it.Mem.ReadHalf(addr)
}

func (it *Interpreter) loadByte(addr uint32) (byte, error) {
	if it.isMMIO(addr) {
		v, err := it.mmioLoadWord(addr - addr%4)
		if err != nil {
			return 0, err
		}
		shift := (addr % 4) * 8
		return byte(v >> shift), nil
	}
	return it.Mem.ReadByte(addr)
}

func (it *Interpreter) storeWord(addr uint32, v uint32) error {
	if it.isMMIO(addr) {
		if err := checkAligned(addr, 4); err != nil {
			return err
		}
		return it.mmioStoreWord(addr, v)
	}
	return it.Mem.WriteWord(addr, v)
}

func (it *Interpreter) storeHalf(addr uint32, v uint16) error {
	if it.isMMIO(addr) {
		if err := checkAligned(addr, 2); err != nil {
			return err
		}
		return it.mmioStoreWord(addr-addr%4, uint32(v))
	}
	return it.Mem.WriteHalf(addr, v)
}

func (it *Interpreter) storeByte(addr uint32, v byte) error {
	if it.isMMIO(addr) {
		return it.mmioStoreByte(addr, v)
	}
	return it.Mem.WriteByte(addr, v)
}
