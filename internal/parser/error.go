package parser

import "fmt"

// LexError is returned by the scanner on malformed input, such as an
// unfinished string or a rune that cannot start any token.
type LexError struct {
	Message string
	// Near is the offending input.
	Near string
	Line int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// SyntaxError is the single error a parse can end with. Parsing stops at the
// first mismatch. Message is the bare diagnostic, e.g.
// "'then' expected before 'print'".
type SyntaxError struct {
	Message string
	Line    int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func syntaxErrorFromLexError(err *LexError) *SyntaxError {
	return &SyntaxError{
		Message: err.Message,
		Line:    err.Line,
	}
}
