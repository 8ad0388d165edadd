package interp_test

import (
	"bytes"
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

func TestInterpret_Hello(t *testing.T) {
	layout := assemble(t, `.data
msg: .asciiz "Hello there"
.text
.globl main
main:
la $a0, msg
li $v0, 4
syscall
li $v0, 10
syscall
`)
	var out bytes.Buffer
	it := interp.NewInterpreter(nil, &out)
	code, err := it.Interpret(layout)
	if err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if out.String() != "Hello there" {
		t.Fatalf("ostream = %q, want %q", out.String(), "Hello there")
	}
}

func TestInterpret_EchoInt(t *testing.T) {
	layout := assemble(t, `.data
prompt: .asciiz "Your number is: "
nl: .asciiz "\n"
.text
.globl main
main:
li $v0, 5
syscall
move $t0, $v0
la $a0, prompt
li $v0, 4
syscall
move $a0, $t0
li $v0, 1
syscall
la $a0, nl
li $v0, 4
syscall
li $v0, 10
syscall
`)
	var out bytes.Buffer
	it := interp.NewInterpreter(strings.NewReader("5\n"), &out)
	code, err := it.Interpret(layout)
	if err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if out.String() != "Your number is: 5\n" {
		t.Fatalf("ostream = %q", out.String())
	}
}

func TestInterpret_Loop(t *testing.T) {
	layout := assemble(t, `.text
.globl main
main:
li $t0, 3
loop:
li $v0, 1
move $a0, $t0
syscall
addi $t0, $t0, -1
bgez $t0, loop
li $v0, 10
syscall
`)
	var out bytes.Buffer
	it := interp.NewInterpreter(nil, &out)
	code, err := it.Interpret(layout)
	if err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if out.String() != "3210" {
		t.Fatalf("ostream = %q, want %q", out.String(), "3210")
	}
}

func TestInterpret_MMIOEcho(t *testing.T) {
	layout := assemble(t, `.text
.globl main
main:
li $t1, 0xFFFF0000
li $t2, 0xFFFF0004
li $t3, 0xFFFF000C
loop:
lw $t4, 0($t1)
beq $t4, $zero, loop
lw $t5, 0($t2)
beq $t5, $zero, done
sw $t5, 0($t3)
j loop
done:
li $v0, 10
syscall
`)
	var out bytes.Buffer
	it := interp.NewInterpreter(strings.NewReader("abcd\x00"), &out)
	it.IOMode = interp.IOMMIO
	code, err := it.Interpret(layout)
	if err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if out.String() != "abcd" {
		t.Fatalf("ostream = %q, want %q", out.String(), "abcd")
	}
}

func TestInterpret_Overflow(t *testing.T) {
	layout := assemble(t, `.text
.globl main
main:
li $t0, 0x7FFFFFFF
addi $t1, $t0, 1
`)
	it := interp.NewInterpreter(nil, nil)
	_, err := it.Interpret(layout)
	if err == nil {
		t.Fatal("expected ArithOverflow")
	}
	if _, ok := err.(*interp.ArithOverflow); !ok {
		t.Fatalf("err = %T, want *interp.ArithOverflow", err)
	}
}

func TestInterpret_RunOffEndOfTextIsImplicitExit0(t *testing.T) {
	layout := assemble(t, `.text
.globl main
main:
nop
`)
	it := interp.NewInterpreter(nil, nil)
	code, err := it.Interpret(layout)
	if err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestStep_InputPendingDoesNotAdvancePC(t *testing.T) {
	layout := assemble(t, `.text
.globl main
main:
li $v0, 12
syscall
li $v0, 10
syscall
`)
	it := interp.NewInterpreter(strings.NewReader(""), nil)
	it.StepMode = true
	if err := it.InitProgram(layout); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	pcBefore := it.Regs.PC
	// Advance past the li that loads $v0=12.
	if err := it.Step(); err != nil {
		t.Fatalf("unexpected error on li: %v", err)
	}
	pcBefore = it.Regs.PC
	if err := it.Step(); err == nil {
		t.Fatal("expected InputPending on read_char with no data")
	} else if _, ok := err.(*interp.InputPending); !ok {
		t.Fatalf("err = %T, want *interp.InputPending", err)
	}
	if it.Regs.PC != pcBefore {
		t.Fatalf("PC advanced past a pending syscall: got 0x%X, want 0x%X", it.Regs.PC, pcBefore)
	}
}

func TestStep_SbThenLb(t *testing.T) {
	layout := assemble(t, `.data
buf: .byte 0
.text
.globl main
main:
li $t0, 0xFF
sb $t0, buf($zero)
lb $t1, buf($zero)
lbu $t2, buf($zero)
li $v0, 10
syscall
`)
	it := interp.NewInterpreter(nil, nil)
	if _, err := it.Interpret(layout); err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	if got := it.Regs.Get(9); got != -1 {
		t.Fatalf("lb result = %d, want -1", got)
	}
	if got := it.Regs.Get(10); got != 255 {
		t.Fatalf("lbu result = %d, want 255", got)
	}
}

func TestStep_UnalignedWordLoadIsAlignmentError(t *testing.T) {
	layout := assemble(t, `.data
b: .byte 0,0,0,0,0
.text
.globl main
main:
la $t1, b
lw $t0, 1($t1)
`)
	it := interp.NewInterpreter(nil, nil)
	_, err := it.Interpret(layout)
	if _, ok := err.(*interp.AlignmentError); !ok {
		t.Fatalf("err = %T, want *interp.AlignmentError", err)
	}
}

func TestTracer_EmitsRegisterDeltas(t *testing.T) {
	layout := assemble(t, `.text
.globl main
main:
li $t0, 5
addu $t1, $t0, $t0
li $v0, 10
syscall
`)
	var trace bytes.Buffer
	it := interp.NewInterpreter(nil, nil)
	it.Tracer = interp.NewTracer(&trace)
	if _, err := it.Interpret(layout); err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	out := trace.String()
	if !strings.Contains(out, "$t0=0x00000005") {
		t.Errorf("trace = %q, want a line recording $t0's new value", out)
	}
	if !strings.Contains(out, "$t1=0x0000000A") {
		t.Errorf("trace = %q, want a line recording $t1's new value", out)
	}
}
