// Package source provides a uniform view over MIPS assembly input files,
// independent of whether the caller handed over a whole string or an
// already-split sequence of lines.
package source

import (
	"fmt"
	"strings"
)

// File is a named sequence of source lines. Line numbers reported in
// Location values are 1-indexed; the Lines slice itself is 0-indexed.
type File struct {
	Name  string
	Lines []string
}

// NewFromString splits text on newlines and trims a single trailing "\r"
// from each line, so CRLF source files tokenize the same as LF ones.
func NewFromString(name, text string) *File {
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &File{Name: name, Lines: lines}
}

// NewFromLines wraps an already-split sequence of lines verbatim.
func NewFromLines(name string, lines []string) *File {
	return &File{Name: name, Lines: append([]string(nil), lines...)}
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return len(f.Lines)
}

// Line returns the 0-indexed line, or "" if idx is out of range.
func (f *File) Line(idx int) string {
	if idx < 0 || idx >= len(f.Lines) {
		return ""
	}
	return f.Lines[idx]
}

// Location identifies a single point in a source file. Line and Column
// are 1-indexed for diagnostics; the tokenizer produces Line 0 only for the
// EOF token of an input that has no lines at all.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}
