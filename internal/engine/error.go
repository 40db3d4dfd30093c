package engine

import (
	"errors"
	"fmt"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

// RuntimeError is raised while evaluating a chunk, either by the interpreter
// or by a call to Lua's error function. It aborts the current evaluation and
// is returned from Eval. pcall turns it back into a value.
type RuntimeError struct {
	// Message is the human readable message.
	Message string
	// Value is the value that was raised. For errors raised by the
	// interpreter, it is Message as a value.String.
	Value value.Value
	// Line is the line that was executed when the error was raised.
	Line int
	// Stack holds the active calls, innermost first.
	Stack []StackFrame

	cause error
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Unwrap returns the Go error that caused this error, e.g. an error
// returned by a native function.
func (e *RuntimeError) Unwrap() error {
	return e.cause
}

// runtimeErrorf creates a RuntimeError at the current position.
func (e *Engine) runtimeErrorf(format string, args ...interface{}) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	return e.newRuntimeError(msg, value.String(msg), nil)
}

func (e *Engine) newRuntimeError(msg string, val value.Value, cause error) *RuntimeError {
	return &RuntimeError{
		Message: msg,
		Value:   val,
		Line:    e.calls.Line(),
		Stack:   e.calls.Slice(),
		cause:   cause,
	}
}

// asRuntimeError converts an error returned from a function into a
// RuntimeError, keeping the original as cause.
func (e *Engine) asRuntimeError(err error) *RuntimeError {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return rerr
	}
	return e.newRuntimeError(err.Error(), value.String(err.Error()), err)
}
