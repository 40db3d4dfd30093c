package value

// Nil is the only value of type nil. Absent table entries and missing
// arguments read as Nil.
const Nil = nilValue(0)

// Boolean values. Only False and Nil are falsy.
const (
	False = Boolean(false)
	True  = Boolean(true)
)

var (
	_ Value = Nil
	_ Value = False
	_ Value = String("")
)

type nilValue uint8

func (nilValue) Type() Type     { return TypeNil }
func (nilValue) String() string { return "nil" }

type Boolean bool

func (Boolean) Type() Type { return TypeBoolean }

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

// String is an immutable byte string. Its length is the number of bytes,
// not runes.
type String string

func NewString(s string) String { return String(s) }

func (String) Type() Type { return TypeString }

func (s String) String() string { return string(s) }

// Len is the value of the length operator applied to s.
func (s String) Len() Number { return Number(len(s)) }
