package token

import (
	"fmt"

	"github.com/holtzmann/mipsgo/source"
)

// LexError reports a malformed numeric literal, unterminated string, unknown
// register name, or stray character found while tokenizing.
type LexError struct {
	Loc     source.Location
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}

// ErrorList accumulates LexErrors across an entire tokenizing pass so the
// caller sees every malformed line instead of stopping at the first one.
type ErrorList struct {
	Errors []*LexError
}

func (el *ErrorList) add(loc source.Location, format string, args ...interface{}) {
	el.Errors = append(el.Errors, &LexError{Loc: loc, Message: fmt.Sprintf(format, args...)})
}

func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

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
