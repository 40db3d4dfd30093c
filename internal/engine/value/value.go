package value

// Value is a Lua value. It is one of Nil, Boolean, Number, String, *Table,
// *Function or *Userdata.
type Value interface {
	Type() Type
}

// Truthy reports whether v counts as true in a condition. Everything except
// nil and false does.
func Truthy(v Value) bool {
	return !(v == nil || v == Nil || v == False)
}

// OrNil returns v, or Nil if v is a Go nil.
func OrNil(v Value) Value {
	if v == nil {
		return Nil
	}
	return v
}
