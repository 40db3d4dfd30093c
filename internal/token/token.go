package token

import (
	"fmt"
	"math/bits"
	"strings"
)

// Token is a single lexeme produced by the scanner. Some lexemes belong to
// more than one type: '-' is both a unary and a binary operator, 'and' is a
// keyword and a binary operator.
type Token interface {
	Value() string
	Length() int
	Pos() Position
	Line() int
	Kind() Kind
	Is(Type) bool
	Types() []Type
}

// Position locates a lexeme in its chunk. Line and Col start at 1, Offset is
// the byte offset from the start of the chunk.
type Position struct {
	Line   int
	Col    int
	Offset int64
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d,offset=%d", p.Line, p.Col, p.Offset)
}

// typeSet holds token types as bits, indexed by Type.
type typeSet uint64

func setOf(types []Type) typeSet {
	var s typeSet
	for _, typ := range types {
		s |= 1 << typ
	}
	return s
}

func (s typeSet) has(typ Type) bool { return s&(1<<typ) != 0 }

// lowest is the type with the smallest value in the set. Keywords sort
// before operators, operators before literals.
func (s typeSet) lowest() (Type, bool) {
	if s == 0 {
		return TypeUnknown, false
	}
	return Type(bits.TrailingZeros64(uint64(s))), true
}

func (s typeSet) list() []Type {
	types := make([]Type, 0, bits.OnesCount64(uint64(s)))
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		types = append(types, Type(bits.TrailingZeros64(rest)))
	}
	return types
}

// New creates a token for the lexeme value at pos. The order of types is
// irrelevant.
func New(value string, pos Position, types ...Type) Token {
	return lexeme{text: value, at: pos, set: setOf(types)}
}

type lexeme struct {
	text string
	at   Position
	set  typeSet
}

func (l lexeme) Is(typ Type) bool { return l.set.has(typ) }
func (l lexeme) Value() string    { return l.text }
func (l lexeme) Length() int      { return len(l.text) }
func (l lexeme) Pos() Position    { return l.at }
func (l lexeme) Line() int        { return l.at.Line }

// Types lists the types of the token in ascending order.
func (l lexeme) Types() []Type { return l.set.list() }

// Kind is the lexical class of the token's lowest type, so 'and' is
// reported as a keyword rather than an operator.
func (l lexeme) Kind() Kind {
	typ, ok := l.set.lowest()
	if !ok {
		return KindUnknown
	}
	return typ.Kind()
}

func (l lexeme) String() string {
	return fmt.Sprintf("(%s) %q (types=%v)", l.at, l.text, l.Types())
}

// GoString renders the token as the call to New that creates it, which
// keeps test failure output pasteable.
func (l lexeme) GoString() string {
	args := []string{
		fmt.Sprintf("%q", l.text),
		fmt.Sprintf("token.Position{%d, %d, %d}", l.at.Line, l.at.Col, l.at.Offset),
	}
	for _, typ := range l.Types() {
		args = append(args, "token."+typ.String())
	}
	return "token.New(" + strings.Join(args, ", ") + ")"
}

// Quote renders a token the way diagnostics refer to it: the lexeme in
// single quotes, or <eof> for the end of input.
func Quote(t Token) string {
	if t == nil || t.Is(EOF) {
		return "<eof>"
	}
	return "'" + t.Value() + "'"
}
