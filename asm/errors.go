package asm

import (
	"fmt"

	"github.com/holtzmann/mipsgo/source"
)

// Kind categorizes the way a source file failed to assemble.
type Kind int

const (
	UnknownDirective Kind = iota
	BadOperand
	UndefinedLabel
	DuplicateLabel
	BranchOutOfRange
	JumpOutOfRegion
	AlignmentError
	NoEntryPoint
)

var kindNames = map[Kind]string{
	UnknownDirective: "UnknownDirective",
	BadOperand:        "BadOperand",
	UndefinedLabel:    "UndefinedLabel",
	DuplicateLabel:    "DuplicateLabel",
	BranchOutOfRange:  "BranchOutOfRange",
	JumpOutOfRegion:   "JumpOutOfRegion",
	AlignmentError:    "AlignmentError",
	NoEntryPoint:      "NoEntryPoint",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// ParseError is every pre-execution layout/encoding failure the assembler
// can raise, tagged by Kind and located at the offending token.
type ParseError struct {
	Loc     source.Location
	Kind    Kind
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Loc, e.Kind, e.Message)
}

// ErrorList accumulates ParseErrors across a whole assembly pass.
type ErrorList struct {
	Errors []*ParseError
}

func (el *ErrorList) add(loc source.Location, kind Kind, format string, args ...interface{}) {
	el.Errors = append(el.Errors, &ParseError{Loc: loc, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (el *ErrorList) HasErrors() bool { return len(el.Errors) > 0 }

func (el *ErrorList) Error() string {
	if len(el.Errors) == 0 {
		return ""
	}
	msg := el.Errors[0].Error()
	for _, e := range el.Errors[1:] {
		msg += "\n" + e.Error()
	}
	return msg
}
