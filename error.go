package lua

import (
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/marshal"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/parser"
)

type (
	// SyntaxError is returned when a chunk cannot be parsed. Its message
	// matches the diagnostics of the reference Lua implementation, for
	// example "'then' expected before 'print'".
	SyntaxError = parser.SyntaxError
	// RuntimeError is returned when evaluation fails. It carries the raised
	// value and a stack trace, innermost frame first.
	RuntimeError = engine.RuntimeError
	StackFrame   = engine.StackFrame
	// MarshallingError is returned when a value cannot be converted between
	// Go and Lua. When raised by a host function during evaluation, it is
	// the cause of a RuntimeError.
	MarshallingError = marshal.MarshallingError
)
