package debugger

import (
	"strings"
	"testing"

	"github.com/holtzmann/mipsgo/asm"
	"github.com/holtzmann/mipsgo/image"
	"github.com/holtzmann/mipsgo/interp"
	"github.com/holtzmann/mipsgo/source"
)

func assemble(t *testing.T, src string) *image.Layout {
	t.Helper()
	layout, err := asm.Assemble([]*source.File{source.NewFromString("p.s", src)})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	return layout
}

func newSession(t *testing.T, src string) *Debugger {
	t.Helper()
	layout := assemble(t, src)
	d := NewDebugger(interp.NewInterpreter(nil, nil))
	if err := d.LoadProgram(layout); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}
	return d
}

const loopProgram = `.text
.globl main
main:
li $t0, 3
loop:
addi $t0, $t0, -1
bgez $t0, loop
li $v0, 10
syscall
`

func TestDebugger_StepAdvancesOneInstruction(t *testing.T) {
	d := newSession(t, loopProgram)
	start := d.Interp.Regs.PC
	if err := d.ExecuteCommand("step"); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if d.Interp.Regs.PC != start+4 {
		t.Errorf("PC = 0x%08X, want 0x%08X", d.Interp.Regs.PC, start+4)
	}
}

func TestDebugger_BreakAndContinueStopsAtBreakpoint(t *testing.T) {
	d := newSession(t, loopProgram)
	loopAddr, ok := d.Layout.Symbols["loop"]
	if !ok {
		t.Fatal("expected a loop label in the symbol table")
	}
	if err := d.ExecuteCommand("break loop"); err != nil {
		t.Fatalf("break failed: %v", err)
	}
	if err := d.ExecuteCommand("continue"); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if d.Interp.Regs.PC != loopAddr {
		t.Errorf("PC = 0x%08X, want loop at 0x%08X", d.Interp.Regs.PC, loopAddr)
	}
	if !strings.Contains(d.StoppedReason, "breakpoint") {
		t.Errorf("StoppedReason = %q, want mention of breakpoint", d.StoppedReason)
	}
}

func TestDebugger_ContinueRunsToExitWithoutBreakpoints(t *testing.T) {
	d := newSession(t, loopProgram)
	if err := d.ExecuteCommand("continue"); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if !d.Interp.Halted() {
		t.Error("expected the program to have halted")
	}
	if d.Interp.ExitCode() != 0 {
		t.Errorf("exit code = %d, want 0", d.Interp.ExitCode())
	}
}

func TestDebugger_DeleteRemovesBreakpoint(t *testing.T) {
	d := newSession(t, loopProgram)
	if err := d.ExecuteCommand("break loop"); err != nil {
		t.Fatalf("break failed: %v", err)
	}
	bps := d.Breakpoints.All()
	if len(bps) != 1 {
		t.Fatalf("expected 1 breakpoint, got %d", len(bps))
	}
	id := bps[0].ID
	if err := d.ExecuteCommand("delete 1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if d.Breakpoints.At(bps[0].Address) != nil {
		t.Errorf("breakpoint %d should have been deleted", id)
	}
}

func TestDebugger_PrintRegister(t *testing.T) {
	d := newSession(t, loopProgram)
	if err := d.ExecuteCommand("step"); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if err := d.ExecuteCommand("print t0"); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	out := d.GetOutput()
	if !strings.Contains(out, "$t0") {
		t.Errorf("output = %q, want mention of $t0", out)
	}
}

func TestDebugger_ResetReinstallsProgram(t *testing.T) {
	d := newSession(t, loopProgram)
	entry := d.Interp.Regs.PC
	if err := d.ExecuteCommand("step"); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if d.Interp.Regs.PC == entry {
		t.Fatal("step should have moved PC")
	}
	if err := d.ExecuteCommand("reset"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if d.Interp.Regs.PC != entry {
		t.Errorf("PC after reset = 0x%08X, want 0x%08X", d.Interp.Regs.PC, entry)
	}
}

func TestDebugger_UnknownCommandErrors(t *testing.T) {
	d := newSession(t, loopProgram)
	if err := d.ExecuteCommand("frobnicate"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestDebugger_ResolveAddressAcceptsLabelsAndLiterals(t *testing.T) {
	d := newSession(t, loopProgram)
	loopAddr := d.Layout.Symbols["loop"]

	got, err := d.ResolveAddress("loop")
	if err != nil || got != loopAddr {
		t.Errorf("ResolveAddress(loop) = (0x%08X, %v), want 0x%08X", got, err, loopAddr)
	}

	got, err = d.ResolveAddress("0x400000")
	if err != nil || got != 0x400000 {
		t.Errorf("ResolveAddress(0x400000) = (0x%08X, %v), want 0x400000", got, err)
	}
}
