package config

import (
	"fmt"
	"io"

	"github.com/holtzmann/mipsgo/interp"
)

// IOMode resolves the configured I/O mode string to an interp.IOMode.
func (c *Config) IOMode() (interp.IOMode, error) {
	switch c.Execution.IOMode {
	case "", "syscall":
		return interp.IOSyscall, nil
	case "mmio":
		return interp.IOMMIO, nil
	default:
		return 0, fmt.Errorf("unrecognised io_mode %q (want \"syscall\" or \"mmio\")", c.Execution.IOMode)
	}
}

// Apply installs this configuration's execution settings onto it. It never
// touches Tracer; use ApplyTrace when the caller has a destination for the
// per-step trace this config may request.
func (c *Config) Apply(it *interp.Interpreter) error {
	mode, err := c.IOMode()
	if err != nil {
		return err
	}
	it.IOMode = mode
	it.MaxCycles = c.Execution.MaxCycles
	return nil
}

// ApplyTrace is Apply plus installing a Tracer on traceOut when this
// config's Execution.Trace is set and traceOut is non-nil.
func (c *Config) ApplyTrace(it *interp.Interpreter, traceOut io.Writer) error {
	if err := c.Apply(it); err != nil {
		return err
	}
	if c.Execution.Trace && traceOut != nil {
		it.Tracer = interp.NewTracer(traceOut)
	}
	return nil
}
