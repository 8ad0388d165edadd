package asm

import "github.com/holtzmann/mipsgo/source"

// symbolTable maps label names to absolute addresses, populated during
// pass 1. Every label resolves to exactly one address; a second define of
// the same name is a DuplicateLabel error.
type symbolTable struct {
	addr map[string]uint32
	loc  map[string]source.Location
}

func newSymbolTable() *symbolTable {
	return &symbolTable{addr: make(map[string]uint32), loc: make(map[string]source.Location)}
}

func (s *symbolTable) define(name string, addr uint32, loc source.Location) error {
	if prev, ok := s.loc[name]; ok {
		return &ParseError{Loc: loc, Kind: DuplicateLabel,
			Message: "label " + name + " already defined at " + prev.String()}
	}
	s.addr[name] = addr
	s.loc[name] = loc
	return nil
}

func (s *symbolTable) resolve(name string) (uint32, bool) {
	a, ok := s.addr[name]
	return a, ok
}
