package value

import (
	"fmt"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/ast"
)

// LuaFn is the Go signature of every callable Lua value.
type LuaFn func(...Value) ([]Value, error)

// Function is a Lua closure. Native functions are implemented in Go and
// have no Body. Scripted functions keep their body and capture their
// defining environment inside Callable.
type Function struct {
	Name     string
	Callable LuaFn
	Body     *ast.FuncBody
}

// NewFunction creates a native function.
func NewFunction(name string, callable LuaFn) *Function {
	return &Function{
		Name:     name,
		Callable: callable,
	}
}

// NewClosure creates a scripted function for the given body.
func NewClosure(name string, body *ast.FuncBody, callable LuaFn) *Function {
	return &Function{
		Name:     name,
		Callable: callable,
		Body:     body,
	}
}

func (*Function) Type() Type { return TypeFunction }

// IsNative reports whether the function is implemented in Go.
func (f *Function) IsNative() bool { return f.Body == nil }

func (f *Function) String() string {
	if f.IsNative() {
		return fmt.Sprintf("builtin: %p", f)
	}
	return fmt.Sprintf("function: %p", f)
}
