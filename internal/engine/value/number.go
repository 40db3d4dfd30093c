package value

import (
	"math"
	"strconv"
)

// Number is a Lua number. Integers are not a separate type, a number is an
// integer if IsInteger reports so.
type Number float64

func (Number) Type() Type       { return TypeNumber }
func (n Number) Value() float64 { return float64(n) }

func NewNumber(value float64) Number {
	return Number(value)
}

// IsInteger reports whether the number has an exact integer representation.
func (n Number) IsInteger() bool {
	f := float64(n)
	return f == math.Trunc(f) && !math.IsInf(f, 0) && f >= math.MinInt64 && f < math.MaxInt64
}

// String formats the number the way Lua prints it. Integers are printed
// without a decimal point.
func (n Number) String() string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case n.IsInteger():
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', 14, 64)
}
