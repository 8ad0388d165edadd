package interp

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxSyscallString = 1 << 20 // guards a runaway NUL-terminated read

// syscall dispatches the instruction at pc on $v0. exit/exit2 are honored
// in both I/O modes; every other number is only valid in SYSCALL mode.
func (it *Interpreter) syscall(pc uint32) error {
	v0 := it.Regs.Get(2)

	switch v0 {
	case 10: // exit
		it.halt(0)
		return &ExecExit{Code: 0}
	case 17: // exit2
		code := it.Regs.Get(4) & 0xFF
		it.halt(code)
		return &ExecExit{Code: code}
	}

	if it.IOMode == IOMMIO {
		return &BadSyscall{V0: v0}
	}

	switch v0 {
	case 1: // print_int
		_, err := fmt.Fprintf(it.OStream, "%d", it.Regs.Get(4))
		return err
	case 4: // print_string
		s, err := it.readCString(uint32(it.Regs.Get(4)))
		if err != nil {
			return err
		}
		_, err = io.WriteString(it.OStream, s)
		return err
	case 5: // read_int
		line, err := it.readLine(pc)
		if err != nil {
			return err
		}
		n, perr := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
		if perr != nil {
			it.Regs.Set(2, 0)
		} else {
			it.Regs.Set(2, int32(n))
		}
		return nil
	case 8: // read_string
		addr := uint32(it.Regs.Get(4))
		maxLen := uint32(it.Regs.Get(5))
		return it.readStringInto(pc, addr, maxLen)
	case 11: // print_char
		_, err := it.OStream.Write([]byte{byte(it.Regs.Get(4))})
		return err
	case 12: // read_char
		b, err := it.readByteBlocking(pc)
		if err != nil {
			return err
		}
		it.Regs.Set(2, int32(b))
		return nil
	default:
		return &BadSyscall{V0: v0}
	}
}

// readCString reads a NUL-terminated string starting at addr.
func (it *Interpreter) readCString(addr uint32) (string, error) {
	var b []byte
	for {
		c, err := it.loadByte(addr)
		if err != nil {
			return "", err
		}
		if c == 0 {
			return string(b), nil
		}
		b = append(b, c)
		if len(b) > maxSyscallString {
			return "", fmt.Errorf("string at 0x%08X exceeds %d bytes without a NUL terminator", addr, maxSyscallString)
		}
		addr++
	}
}

// readByteBlocking makes one attempt to read a byte. In step mode, a
// failed attempt raises InputPending so the caller can retry after
// feeding istream; otherwise it is treated as an ordinary EOF.
func (it *Interpreter) readByteBlocking(pc uint32) (byte, error) {
	b, err := it.stdin.ReadByte()
	if err != nil {
		if it.StepMode {
			return 0, &InputPending{PC: pc}
		}
		return 0, nil
	}
	return b, nil
}

func (it *Interpreter) readLine(pc uint32) (string, error) {
	line, err := it.stdin.ReadString('\n')
	if err != nil && line == "" {
		if it.StepMode {
			return "", &InputPending{PC: pc}
		}
		return "", nil
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readStringInto reads up to maxLen-1 bytes (stopping at the first line
// read's worth of data) into memory at addr, NUL-terminating the result,
// and records the number of bytes written (excluding the terminator) in
// $v0.
func (it *Interpreter) readStringInto(pc uint32, addr, maxLen uint32) error {
	line, err := it.readLine(pc)
	if err != nil {
		return err
	}
	data := []byte(line)
	n := uint32(len(data))
	if maxLen > 0 && n >= maxLen {
		n = maxLen - 1
	}
	for i := uint32(0); i < n; i++ {
		if err := it.storeByte(addr+i, data[i]); err != nil {
			return err
		}
	}
	if err := it.storeByte(addr+n, 0); err != nil {
		return err
	}
	it.Regs.Set(2, int32(n))
	return nil
}
