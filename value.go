package lua

import "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"

// Lua values. Tables, functions and userdata are references, all other
// values are compared by value.
type (
	Value    = value.Value
	Type     = value.Type
	Boolean  = value.Boolean
	Number   = value.Number
	String   = value.String
	Table    = value.Table
	Function = value.Function
	Userdata = value.Userdata
	// NativeFn is the signature of a Go function that is callable from Lua
	// without marshalling.
	NativeFn = value.LuaFn
)

var (
	Nil   = value.Nil
	False = value.False
	True  = value.True
)

// NewTable creates an empty table.
func NewTable() *Table { return value.NewTable() }

// Values are the results of evaluating a chunk.
type Values []Value

func (v Values) Count() int {
	return len(v)
}

// Get returns the value at index, or Nil if there is none.
func (v Values) Get(index int) Value {
	if index < 0 || index >= len(v) {
		return Nil
	}
	return v[index]
}
