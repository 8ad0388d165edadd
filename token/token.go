// Package token turns MIPS assembly source lines into a typed, ordered
// token stream that preserves source provenance for diagnostics.
package token

import (
	"fmt"

	"github.com/holtzmann/mipsgo/source"
)

// Type identifies the lexical class of a Token.
type Type int

const (
	EOF Type = iota
	Newline
	Directive
	Label
	Identifier
	Register
	Integer
	Float
	String
	Char
	Comma
	LParen
	RParen
	Colon
)

var typeNames = map[Type]string{
	EOF:        "EOF",
	Newline:    "NEWLINE",
	Directive:  "DIRECTIVE",
	Label:      "LABEL",
	Identifier: "IDENTIFIER",
	Register:   "REGISTER",
	Integer:    "INTEGER",
	Float:      "FLOAT",
	String:     "STRING",
	Char:       "CHAR",
	Comma:      ",",
	LParen:     "(",
	RParen:     ")",
	Colon:      ":",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Token is a single lexeme with its decoded value and originating location.
//
// Only the field matching Type is meaningful:
//   - Directive, Label, Identifier: Literal holds the name (directive names
//     keep their leading '.').
//   - Register: RegIndex holds the ABI register number 0..31.
//   - Integer: IntValue.
//   - Float: FloatValue.
//   - String: Bytes holds the escape-decoded contents (no terminating NUL).
//   - Char: Bytes holds exactly one decoded byte.
type Token struct {
	Type      Type
	Literal   string
	RegIndex  int
	IntValue  int64
	FloatValue float64
	Bytes     []byte
	Loc       source.Location
}

func (t Token) String() string {
	switch t.Type {
	case Integer:
		return fmt.Sprintf("%s(%d) at %s", t.Type, t.IntValue, t.Loc)
	case Register:
		return fmt.Sprintf("%s($%d) at %s", t.Type, t.RegIndex, t.Loc)
	default:
		return fmt.Sprintf("%s(%q) at %s", t.Type, t.Literal, t.Loc)
	}
}
