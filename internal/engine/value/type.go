package value

// Type is the Lua type of a Value.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeNil
	TypeBoolean
	TypeNumber
	TypeString
	TypeFunction
	TypeUserdata
	TypeThread
	TypeTable
)

var typeNames = [...]string{
	TypeInvalid:  "no value",
	TypeNil:      "nil",
	TypeBoolean:  "boolean",
	TypeNumber:   "number",
	TypeString:   "string",
	TypeFunction: "function",
	TypeUserdata: "userdata",
	TypeThread:   "thread",
	TypeTable:    "table",
}

// String returns the name of the type as reported by Lua's type function.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "no value"
}
