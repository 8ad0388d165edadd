package interp

import "fmt"

// SegFault is raised by a load, store, or fetch to an address outside
// every legal segment.
type SegFault struct {
	Addr uint32
	Op   string // "read", "write", or "fetch"
}

func (e *SegFault) Error() string {
	return fmt.Sprintf("segmentation fault: %s at 0x%08X", e.Op, e.Addr)
}

// AlignmentError is raised by an unaligned halfword or word access.
type AlignmentError struct {
	Addr uint32
	Size uint32 // 2 or 4
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("unaligned %d-byte access at 0x%08X", e.Size, e.Addr)
}

// ArithOverflow is raised by a signed add/addi/sub that overflows 32 bits.
type ArithOverflow struct {
	PC   uint32
	Mnem string
}

func (e *ArithOverflow) Error() string {
	return fmt.Sprintf("arithmetic overflow in %s at 0x%08X", e.Mnem, e.PC)
}

// BadSyscall is raised by an unrecognised $v0 in SYSCALL mode, or any
// non-exit syscall while in MMIO mode.
type BadSyscall struct {
	V0 int32
}

func (e *BadSyscall) Error() string {
	return fmt.Sprintf("unrecognised syscall $v0=%d", e.V0)
}

// InputPending is an informational, resumable condition: in single-step
// mode, a blocking read found no data available. step does not advance
// PC past the syscall; the caller should feed the istream and retry.
type InputPending struct {
	PC uint32
}

func (e *InputPending) Error() string {
	return fmt.Sprintf("input pending at 0x%08X", e.PC)
}

// CycleLimitExceeded is raised when a configured step budget (an
// engineering safety valve, not part of the runtime error taxonomy) is
// exhausted. It guards the host against a runaway or non-terminating
// guest program.
type CycleLimitExceeded struct {
	Cycles uint64
}

func (e *CycleLimitExceeded) Error() string {
	return fmt.Sprintf("cycle limit exceeded (%d cycles)", e.Cycles)
}

// ExecExit is the normal-termination signal. It is surfaced through the
// same error channel as failures so that the step loop has one uniform
// exit path, but it is not itself a failure.
type ExecExit struct {
	Code int32
}

func (e *ExecExit) Error() string {
	return fmt.Sprintf("program exited with code %d", e.Code)
}
