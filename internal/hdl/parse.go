// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl implements the lexer and parser for pin specifications and
// connection strings.
//
// A pin specification is a comma separated list of pin names, each optionally
// followed by a bus width in square brackets:
//
//	clk, rst_n, d[8]
//
// A connection string is a comma separated list of part pin to wire
// assignments:
//
//	clk=clk_i, d=value_d, q=value_q
//
package hdl

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Type is a token type.
//
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
	Equal
)

func (t Type) String() string {
	switch t {
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case BracketOpen:
		return "'['"
	case BracketClose:
		return "']'"
	case Comma:
		return "','"
	case Int:
		return "integer"
	case Equal:
		return "'='"
	}
	return "character"
}

// Item is a lexed token.
//
type Item struct {
	Type  Type
	Pos   int
	Value string
}

// Lexer splits its input into tokens.
//
type Lexer struct {
	input string
	pos   int
}

// NewLexer returns a new lexer for i/o specs and connection descriptions.
//
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Lex returns the next token. Once the end of input is reached, it only returns
// EOF items.
//
func (l *Lexer) Lex() Item {
	for l.pos < len(l.input) {
		r, sz := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += sz
	}
	if l.pos >= len(l.input) {
		return Item{EOF, l.pos, ""}
	}
	start := l.pos
	r, sz := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += sz
	switch {
	case r == '[':
		return Item{BracketOpen, start, "["}
	case r == ']':
		return Item{BracketClose, start, "]"}
	case r == ',':
		return Item{Comma, start, ","}
	case r == '=':
		return Item{Equal, start, "="}
	case '0' <= r && r <= '9':
		l.acceptWhile(func(r rune) bool { return '0' <= r && r <= '9' })
		return Item{Int, start, l.input[start:l.pos]}
	case unicode.IsLetter(r) || r == '_':
		l.acceptWhile(func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' })
		return Item{Ident, start, l.input[start:l.pos]}
	}
	// unknown character: stop here
	l.pos = len(l.input)
	return Item{Raw, start, string(r)}
}

func (l *Lexer) acceptWhile(f func(rune) bool) {
	for l.pos < len(l.input) {
		r, sz := utf8.DecodeRuneInString(l.input[l.pos:])
		if !f(r) {
			return
		}
		l.pos += sz
	}
}

// Pin is a pin declaration. Width is 1 for single pins.
//
type Pin struct {
	Name  string
	Width int
}

// Conn is a part pin to wire assignment. pin=wire
//
type Conn struct {
	Pin  string
	Wire string
}

// ParsePins parses a pin specification string.
//
//	ParsePins("in[2], sel") // returns []Pin{{"in", 2}, {"sel", 1}}
//
func ParsePins(spec string) ([]Pin, error) {
	var out []Pin
	l := NewLexer(spec)
	i := l.Lex()
	if i.Type == EOF {
		return nil, nil
	}
	for {
		if i.Type != Ident {
			return nil, parseError(spec, i.Pos, "expected pin name")
		}
		p := Pin{Name: i.Value, Width: 1}
		i = l.Lex()
		if i.Type == BracketOpen {
			i = l.Lex()
			if i.Type != Int {
				return nil, parseError(spec, i.Pos, "integer value expected after '['")
			}
			w, err := strconv.Atoi(i.Value)
			if err != nil || w < 1 || w > 64 {
				return nil, parseError(spec, i.Pos, "bus width must be in the range [1, 64]")
			}
			p.Width = w
			if i = l.Lex(); i.Type != BracketClose {
				return nil, parseError(spec, i.Pos, "closing ']' expected after bus width")
			}
			i = l.Lex()
		}
		out = append(out, p)
		switch i.Type {
		case EOF:
			return out, nil
		case Comma:
			i = l.Lex()
		default:
			return nil, parseError(spec, i.Pos, "unexpected "+i.Type.String())
		}
	}
}

// ParseConnections parses a connection string.
//
//	ParseConnections("d=value_d, q=value_q")
//
func ParseConnections(conns string) ([]Conn, error) {
	var out []Conn
	l := NewLexer(conns)
	i := l.Lex()
	if i.Type == EOF {
		return nil, nil
	}
	for {
		if i.Type != Ident {
			return nil, parseError(conns, i.Pos, "expected pin name")
		}
		c := Conn{Pin: i.Value}
		if i = l.Lex(); i.Type != Equal {
			return nil, parseError(conns, i.Pos, "'=' expected after pin name")
		}
		if i = l.Lex(); i.Type != Ident {
			return nil, parseError(conns, i.Pos, "expected wire name")
		}
		c.Wire = i.Value
		out = append(out, c)
		switch i = l.Lex(); i.Type {
		case EOF:
			return out, nil
		case Comma:
			i = l.Lex()
		default:
			return nil, parseError(conns, i.Pos, "unexpected "+i.Type.String())
		}
	}
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
