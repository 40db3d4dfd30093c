package marshal

import "fmt"

// MarshallingError is returned when a value cannot be converted between Go
// and Lua, or when a wrapped Go function is called with arguments that do not
// fit its signature.
type MarshallingError struct {
	// Func is the name of the called function, if any.
	Func string
	// Arg is the 1-based index of the offending argument, or 0 if the error
	// is not about a single argument.
	Arg    int
	Reason string
}

func (e *MarshallingError) Error() string {
	if e.Arg > 0 {
		return fmt.Sprintf("bad argument #%d to '%s' (%s)", e.Arg, e.Func, e.Reason)
	}
	if e.Func == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Func, e.Reason)
}
