package interp

import (
	"fmt"
	"io"
)

// Tracer receives one line per executed instruction when installed on an
// Interpreter: the PC it ran at, its mnemonic, and any register (including
// HI/LO) whose value changed as a result.
type Tracer struct {
	w io.Writer
}

// NewTracer wraps w as a trace sink.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

var regShortNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// snapshot captures the parts of RegisterFile a trace line diffs against.
type snapshot struct {
	r  [32]int32
	hi int32
	lo int32
}

func snapshotRegs(rf *RegisterFile) snapshot {
	return snapshot{r: rf.R, hi: rf.HI, lo: rf.LO}
}

// emit writes one trace line comparing before/after register snapshots
// for the instruction that ran at pc.
func (t *Tracer) emit(pc uint32, mnemonic string, before snapshot, rf *RegisterFile) {
	fmt.Fprintf(t.w, "0x%08X: %-7s", pc, mnemonic)
	for i := 1; i < 32; i++ {
		if rf.R[i] != before.r[i] {
			fmt.Fprintf(t.w, " $%s=0x%08X", regShortNames[i], uint32(rf.R[i]))
		}
	}
	if rf.HI != before.hi {
		fmt.Fprintf(t.w, " $hi=0x%08X", uint32(rf.HI))
	}
	if rf.LO != before.lo {
		fmt.Fprintf(t.w, " $lo=0x%08X", uint32(rf.LO))
	}
	fmt.Fprintln(t.w)
}
