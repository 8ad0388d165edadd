// Package debugger implements an interactive, breakpoint-stepping front
// end over an interp.Interpreter: a command language for controlling
// execution and inspecting machine state, plus a terminal UI built on it.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holtzmann/mipsgo/image"
	"github.com/holtzmann/mipsgo/interp"
)

var regNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// RunMode names the debugger's run modes. The command loop does not read
// it: "step" executes one instruction, and "run"/"continue" execute until a
// breakpoint or a stop.
type RunMode int

const (
	RunNone RunMode = iota
	RunSingleStep
	RunToBreakpoint
)

// Debugger holds one debugging session's state around an interpreter.
type Debugger struct {
	Interp *interp.Interpreter
	Layout *image.Layout

	Breakpoints *BreakpointManager

	LastCommand string
	Output      strings.Builder

	// StoppedReason describes why the last step, run or continue command
	// returned control, for display by a front end.
	StoppedReason string
}

// NewDebugger wraps it, not yet holding a program image.
func NewDebugger(it *interp.Interpreter) *Debugger {
	it.StepMode = true
	return &Debugger{
		Interp:      it,
		Breakpoints: NewBreakpointManager(),
	}
}

// LoadProgram installs layout into the interpreter and resets session state.
func (d *Debugger) LoadProgram(layout *image.Layout) error {
	d.Layout = layout
	return d.Interp.InitProgram(layout)
}

// ResolveAddress resolves a label via the loaded layout's symbol table,
// falling back to a decimal or 0x-prefixed hexadecimal literal.
func (d *Debugger) ResolveAddress(s string) (uint32, error) {
	if d.Layout != nil {
		if addr, ok := d.Layout.Symbols[s]; ok {
			return addr, nil
		}
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid address %q: %w", s, err)
		}
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address or unknown label %q: %w", s, err)
	}
	return uint32(v), nil
}

// ExecuteCommand parses and runs one command line.
func (d *Debugger) ExecuteCommand(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		line = d.LastCommand
	}
	if line != "" {
		d.LastCommand = line
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "run", "r":
		return d.cmdRun()
	case "continue", "c":
		return d.cmdContinue()
	case "step", "s":
		return d.cmdStep()
	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdSetEnabled(args, true)
	case "disable":
		return d.cmdSetEnabled(args, false)
	case "info", "i":
		return d.cmdInfo(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "list", "l":
		return d.cmdList()
	case "reset":
		return d.cmdReset()
	case "help", "h", "?":
		return d.cmdHelp()
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// GetOutput returns and clears the session's text output.
func (d *Debugger) GetOutput() string {
	s := d.Output.String()
	d.Output.Reset()
	return s
}

func (d *Debugger) printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

func (d *Debugger) cmdRun() error {
	if d.Layout == nil {
		return fmt.Errorf("no program loaded")
	}
	if err := d.Interp.InitProgram(d.Layout); err != nil {
		return err
	}
	return d.resume(false)
}

func (d *Debugger) cmdReset() error {
	if d.Layout == nil {
		return fmt.Errorf("no program loaded")
	}
	d.StoppedReason = ""
	return d.Interp.InitProgram(d.Layout)
}

func (d *Debugger) cmdStep() error {
	err := d.Interp.Step()
	d.reportStepResult("single step", err)
	return classifyStopError(err)
}

// cmdContinue runs until a breakpoint is hit or the program stops on its
// own (exit, fault, or input pending).
func (d *Debugger) cmdContinue() error {
	return d.resume(true)
}

// resume drives the step loop. With skipFirst set, the breakpoint check is
// suppressed for the first iteration so that continuing from a just-hit
// breakpoint makes progress instead of re-reporting the same stop.
func (d *Debugger) resume(skipFirst bool) error {
	for first := skipFirst; ; first = false {
		pc := d.Interp.Regs.PC
		if !first {
			if bp := d.Breakpoints.Hit(pc); bp != nil {
				d.StoppedReason = fmt.Sprintf("breakpoint %d at 0x%08X", bp.ID, pc)
				d.printf("%s\n", d.StoppedReason)
				return nil
			}
		}
		err := d.Interp.Step()
		if err == nil {
			continue
		}
		d.reportStepResult("continue", err)
		return classifyStopError(err)
	}
}

// reportStepResult writes a human-readable line describing the outcome of
// one Step call to the session output.
func (d *Debugger) reportStepResult(verb string, err error) {
	switch e := err.(type) {
	case nil:
		d.StoppedReason = verb
		d.printf("stopped after %s at 0x%08X\n", verb, d.Interp.Regs.PC)
	case *interp.ExecExit:
		d.StoppedReason = fmt.Sprintf("exited with code %d", e.Code)
		d.printf("%s\n", d.StoppedReason)
	case *interp.InputPending:
		d.StoppedReason = "waiting for input"
		d.printf("%s\n", d.StoppedReason)
	default:
		d.StoppedReason = err.Error()
		d.printf("stopped: %s\n", d.StoppedReason)
	}
}

// classifyStopError turns ExecExit and InputPending into nil: both are
// orderly pauses from the debugger's point of view, not command failures.
func classifyStopError(err error) error {
	switch err.(type) {
	case nil, *interp.ExecExit, *interp.InputPending:
		return nil
	default:
		return err
	}
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: break <address|label>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.Add(addr, false)
	d.printf("breakpoint %d at 0x%08X\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id %q", args[0])
	}
	return d.Breakpoints.Delete(id)
}

func (d *Debugger) cmdSetEnabled(args []string, enabled bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: enable|disable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id %q", args[0])
	}
	return d.Breakpoints.SetEnabled(id, enabled)
}

func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 || args[0] == "registers" || args[0] == "r" {
		d.printf("%s", FormatRegisters(&d.Interp.Regs))
		return nil
	}
	if args[0] == "breakpoints" || args[0] == "b" {
		d.printf("%s", FormatBreakpoints(d.Breakpoints.All()))
		return nil
	}
	return fmt.Errorf("unknown info target: %s", args[0])
}

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: print <register>")
	}
	name := strings.TrimPrefix(args[0], "$")
	for i, n := range regNames {
		if n == name {
			d.printf("$%s = 0x%08X (%d)\n", n, uint32(d.Interp.Regs.Get(i)), d.Interp.Regs.Get(i))
			return nil
		}
	}
	switch name {
	case "pc":
		d.printf("$pc = 0x%08X\n", d.Interp.Regs.PC)
	case "hi":
		d.printf("$hi = 0x%08X\n", uint32(d.Interp.Regs.HI))
	case "lo":
		d.printf("$lo = 0x%08X\n", uint32(d.Interp.Regs.LO))
	default:
		return fmt.Errorf("unknown register: %s", args[0])
	}
	return nil
}

func (d *Debugger) cmdList() error {
	d.printf("%s", FormatDisassembly(d.Layout, d.Interp.Regs.PC, d.Breakpoints, 8))
	return nil
}

func (d *Debugger) cmdHelp() error {
	d.printf(`commands:
  run, r                 load/reset and run to the first stop
  continue, c             resume until a breakpoint or program exit
  step, s                 execute one instruction
  break, b <addr|label>   set a breakpoint
  delete, d <id>          delete a breakpoint
  enable|disable <id>     toggle a breakpoint
  info, i [registers|breakpoints]
  print, p <register>     print one register
  list, l                 disassemble around the current PC
  reset                   reinitialize the loaded program
  help, h, ?              this text
`)
	return nil
}
