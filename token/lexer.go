package token

import (
	"strconv"
	"strings"

	"github.com/holtzmann/mipsgo/source"
)

// Tokenize converts an ordered list of source files into a single linear
// token stream, preserving cross-file order. The caller supplies file
// order; files are not otherwise associated with one another.
func Tokenize(files []*source.File) ([]Token, *ErrorList) {
	errs := &ErrorList{}
	var out []Token
	for _, f := range files {
		for i := 0; i < f.LineCount(); i++ {
			lx := &lineLexer{
				line:     f.Line(i),
				filename: f.Name,
				lineNum:  i + 1,
				errs:     errs,
			}
			out = append(out, lx.tokenizeLine()...)
			out = append(out, Token{Type: Newline, Literal: "\n", Loc: source.Location{File: f.Name, Line: i + 1, Column: len(lx.line) + 1}})
		}
	}
	lastLoc := source.Location{}
	if len(out) > 0 {
		lastLoc = out[len(out)-1].Loc
	}
	out = append(out, Token{Type: EOF, Loc: lastLoc})
	return out, errs
}

// lineLexer tokenizes a single source line, stripping any trailing comment
// (a '#' outside of a string or char literal) before scanning.
type lineLexer struct {
	line     string
	filename string
	lineNum  int
	pos      int // byte offset into line
	errs     *ErrorList
}

func (l *lineLexer) loc(col int) source.Location {
	return source.Location{File: l.filename, Line: l.lineNum, Column: col}
}

func (l *lineLexer) tokenizeLine() []Token {
	l.stripComment()
	var toks []Token
	for l.pos < len(l.line) {
		c := l.line[l.pos]
		switch {
		case c == ' ' || c == '\t':
			l.pos++
		case c == ',':
			toks = append(toks, Token{Type: Comma, Literal: ",", Loc: l.loc(l.pos + 1)})
			l.pos++
		case c == '(':
			toks = append(toks, Token{Type: LParen, Literal: "(", Loc: l.loc(l.pos + 1)})
			l.pos++
		case c == ')':
			toks = append(toks, Token{Type: RParen, Literal: ")", Loc: l.loc(l.pos + 1)})
			l.pos++
		case c == '"':
			toks = append(toks, l.readString())
		case c == '\'':
			toks = append(toks, l.readChar())
		case c == '$':
			toks = append(toks, l.readRegister())
		case c == '.':
			toks = append(toks, l.readDirective())
		case isIdentStart(c):
			toks = append(toks, l.readIdentifierOrLabel())
		case isDigit(c) || ((c == '+' || c == '-') && l.pos+1 < len(l.line) && isDigit(l.line[l.pos+1])):
			toks = append(toks, l.readNumber())
		default:
			l.errs.add(l.loc(l.pos+1), "unexpected character %q", c)
			l.pos++
		}
	}
	return toks
}

// stripComment truncates l.line at a '#' that is not inside a string or
// char literal.
func (l *lineLexer) stripComment() {
	inString := false
	inChar := false
	for i := 0; i < len(l.line); i++ {
		c := l.line[i]
		switch {
		case c == '\\' && (inString || inChar):
			i++ // skip escaped character
		case c == '"' && !inChar:
			inString = !inString
		case c == '\'' && !inString:
			inChar = !inChar
		case c == '#' && !inString && !inChar:
			l.line = l.line[:i]
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (l *lineLexer) readIdentifierOrLabel() Token {
	start := l.pos
	startCol := l.pos + 1
	for l.pos < len(l.line) && isIdentChar(l.line[l.pos]) {
		l.pos++
	}
	name := l.line[start:l.pos]
	if l.pos < len(l.line) && l.line[l.pos] == ':' {
		l.pos++
		return Token{Type: Label, Literal: name, Loc: l.loc(startCol)}
	}
	return Token{Type: Identifier, Literal: name, Loc: l.loc(startCol)}
}

func (l *lineLexer) readDirective() Token {
	start := l.pos
	startCol := l.pos + 1
	l.pos++ // consume '.'
	for l.pos < len(l.line) && isIdentChar(l.line[l.pos]) {
		l.pos++
	}
	return Token{Type: Directive, Literal: l.line[start:l.pos], Loc: l.loc(startCol)}
}

func (l *lineLexer) readRegister() Token {
	startCol := l.pos + 1
	l.pos++ // consume '$'
	start := l.pos
	for l.pos < len(l.line) && (isIdentChar(l.line[l.pos])) {
		l.pos++
	}
	name := l.line[start:l.pos]
	idx, ok := resolveRegister(strings.ToLower(name))
	if !ok {
		l.errs.add(l.loc(startCol), "unknown register name $%s", name)
		return Token{Type: Register, RegIndex: 0, Literal: "$" + name, Loc: l.loc(startCol)}
	}
	return Token{Type: Register, RegIndex: idx, Literal: "$" + name, Loc: l.loc(startCol)}
}

func (l *lineLexer) readNumber() Token {
	startCol := l.pos + 1
	start := l.pos
	if l.line[l.pos] == '+' || l.line[l.pos] == '-' {
		l.pos++
	}
	base := 10
	digitsStart := l.pos
	if l.pos+1 < len(l.line) && l.line[l.pos] == '0' && (l.line[l.pos+1] == 'x' || l.line[l.pos+1] == 'X') {
		base = 16
		l.pos += 2
		digitsStart = l.pos
		for l.pos < len(l.line) && isHexDigit(l.line[l.pos]) {
			l.pos++
		}
	} else if l.pos+1 < len(l.line) && l.line[l.pos] == '0' && (l.line[l.pos+1] == 'b' || l.line[l.pos+1] == 'B') {
		base = 2
		l.pos += 2
		digitsStart = l.pos
		for l.pos < len(l.line) && (l.line[l.pos] == '0' || l.line[l.pos] == '1') {
			l.pos++
		}
	} else {
		for l.pos < len(l.line) && (isDigit(l.line[l.pos]) || l.line[l.pos] == '.') {
			l.pos++
		}
	}
	lit := l.line[start:l.pos]
	if strings.Contains(l.line[digitsStart:l.pos], ".") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			l.errs.add(l.loc(startCol), "malformed float literal %q", lit)
			return Token{Type: Float, Loc: l.loc(startCol)}
		}
		return Token{Type: Float, FloatValue: f, Literal: lit, Loc: l.loc(startCol)}
	}
	neg := false
	digits := lit
	if len(digits) > 0 && (digits[0] == '+' || digits[0] == '-') {
		neg = digits[0] == '-'
		digits = digits[1:]
	}
	if base != 10 {
		digits = digits[2:]
	}
	if digits == "" {
		l.errs.add(l.loc(startCol), "malformed numeric literal %q", lit)
		return Token{Type: Integer, Loc: l.loc(startCol)}
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		l.errs.add(l.loc(startCol), "malformed numeric literal %q: %v", lit, err)
		return Token{Type: Integer, Loc: l.loc(startCol)}
	}
	iv := int64(v)
	if neg {
		iv = -iv
	}
	return Token{Type: Integer, IntValue: iv, Literal: lit, Loc: l.loc(startCol)}
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l *lineLexer) readString() Token {
	startCol := l.pos + 1
	loc := l.loc(startCol)
	l.pos++ // consume opening quote
	start := l.pos
	for l.pos < len(l.line) {
		if l.line[l.pos] == '"' {
			raw := l.line[start:l.pos]
			l.pos++
			return Token{Type: String, Bytes: decodeEscapes(raw), Literal: raw, Loc: loc}
		}
		if l.line[l.pos] == '\\' && l.pos+1 < len(l.line) {
			l.pos += 2
			continue
		}
		l.pos++
	}
	l.errs.add(loc, "unterminated string literal")
	return Token{Type: String, Bytes: decodeEscapes(l.line[start:]), Loc: loc}
}

func (l *lineLexer) readChar() Token {
	startCol := l.pos + 1
	loc := l.loc(startCol)
	l.pos++ // consume opening quote
	start := l.pos
	for l.pos < len(l.line) {
		if l.line[l.pos] == '\'' {
			raw := l.line[start:l.pos]
			l.pos++
			decoded := decodeEscapes(raw)
			if len(decoded) != 1 {
				l.errs.add(loc, "char literal must decode to exactly one byte, got %q", raw)
				return Token{Type: Char, Bytes: []byte{0}, Literal: raw, Loc: loc}
			}
			return Token{Type: Char, Bytes: decoded, Literal: raw, Loc: loc}
		}
		if l.line[l.pos] == '\\' && l.pos+1 < len(l.line) {
			l.pos += 2
			continue
		}
		l.pos++
	}
	l.errs.add(loc, "unterminated char literal")
	return Token{Type: Char, Bytes: []byte{0}, Loc: loc}
}
