package engine

import (
	"fmt"
	"strings"

	. "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

// maxStringLength bounds strings built by the string library.
const maxStringLength = 1 << 30

func (e *Engine) stringLib() *Table {
	return library("string", map[string]LuaFn{
		"byte":    e.strByte,
		"char":    e.strChar,
		"format":  e.strFormat,
		"len":     e.strLen,
		"lower":   e.strLower,
		"rep":     e.strRep,
		"reverse": e.strReverse,
		"sub":     e.strSub,
		"upper":   e.strUpper,
	})
}

// stringRange converts Lua's inclusive, possibly negative, indices i and j
// into a Go slice range of a string with length n.
func stringRange(i, j, n int) (int, int) {
	if i < 0 {
		i = max(n+i+1, 1)
	} else if i == 0 {
		i = 1
	}
	if j < 0 {
		j = n + j + 1
	} else if j > n {
		j = n
	}
	if i > j {
		return 0, 0
	}
	return i - 1, j
}

func (e *Engine) strLen(args ...Value) ([]Value, error) {
	s, err := checkString(args, 0, "len")
	if err != nil {
		return nil, err
	}
	return values(NewNumber(float64(len(s)))), nil
}

func (e *Engine) strSub(args ...Value) ([]Value, error) {
	s, err := checkString(args, 0, "sub")
	if err != nil {
		return nil, err
	}
	i, err := optInteger(args, 1, "sub", 1)
	if err != nil {
		return nil, err
	}
	j, err := optInteger(args, 2, "sub", -1)
	if err != nil {
		return nil, err
	}
	from, to := stringRange(i, j, len(s))
	return values(NewString(s[from:to])), nil
}

func (e *Engine) strUpper(args ...Value) ([]Value, error) {
	s, err := checkString(args, 0, "upper")
	if err != nil {
		return nil, err
	}
	return values(NewString(strings.ToUpper(s))), nil
}

func (e *Engine) strLower(args ...Value) ([]Value, error) {
	s, err := checkString(args, 0, "lower")
	if err != nil {
		return nil, err
	}
	return values(NewString(strings.ToLower(s))), nil
}

func (e *Engine) strRep(args ...Value) ([]Value, error) {
	s, err := checkString(args, 0, "rep")
	if err != nil {
		return nil, err
	}
	n, err := checkInteger(args, 1, "rep")
	if err != nil {
		return nil, err
	}
	sep := ""
	if arg(args, 2) != Nil {
		if sep, err = checkString(args, 2, "rep"); err != nil {
			return nil, err
		}
	}
	unit := len(s) + len(sep)
	if n <= 0 || unit == 0 {
		return values(NewString("")), nil
	}
	if n > (maxStringLength+len(sep))/unit {
		return nil, e.runtimeErrorf("resulting string too large")
	}

	var sb strings.Builder
	sb.Grow(n*unit - len(sep))
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(s)
	}
	return values(NewString(sb.String())), nil
}

func (e *Engine) strReverse(args ...Value) ([]Value, error) {
	s, err := checkString(args, 0, "reverse")
	if err != nil {
		return nil, err
	}
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return values(NewString(string(b))), nil
}

func (e *Engine) strByte(args ...Value) ([]Value, error) {
	s, err := checkString(args, 0, "byte")
	if err != nil {
		return nil, err
	}
	i, err := optInteger(args, 1, "byte", 1)
	if err != nil {
		return nil, err
	}
	j, err := optInteger(args, 2, "byte", i)
	if err != nil {
		return nil, err
	}
	from, to := stringRange(i, j, len(s))
	var result []Value
	for _, b := range []byte(s[from:to]) {
		result = append(result, NewNumber(float64(b)))
	}
	return result, nil
}

func (e *Engine) strChar(args ...Value) ([]Value, error) {
	b := make([]byte, len(args))
	for i := range args {
		c, err := checkInteger(args, i, "char")
		if err != nil {
			return nil, err
		}
		if c < 0 || c > 255 {
			return nil, argError(i+1, "char", "value out of range")
		}
		b[i] = byte(c)
	}
	return values(NewString(string(b))), nil
}

func (e *Engine) strFormat(args ...Value) ([]Value, error) {
	format, err := checkString(args, 0, "format")
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	argIndex := 1
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(format) {
			return nil, e.runtimeErrorf("invalid conversion '%%' to 'format'")
		}
		if format[i] == '%' {
			sb.WriteByte('%')
			continue
		}

		// flags, width and precision are passed through to fmt
		start := i
		for i < len(format) && strings.IndexByte("-+ #0123456789.", format[i]) >= 0 {
			i++
		}
		if i >= len(format) {
			return nil, e.runtimeErrorf("invalid conversion '%%%s' to 'format'", format[start:])
		}
		spec := "%" + format[start:i]
		verb := format[i]

		if verb != '%' && argIndex >= len(args) {
			return nil, argError(argIndex+1, "format", "no value")
		}
		switch verb {
		case 'd', 'i':
			n, err := checkInteger(args, argIndex, "format")
			if err != nil {
				return nil, err
			}
			sb.WriteString(fmt.Sprintf(spec+"d", n))
		case 'x', 'X', 'o', 'c':
			n, err := checkInteger(args, argIndex, "format")
			if err != nil {
				return nil, err
			}
			sb.WriteString(fmt.Sprintf(spec+string(verb), n))
		case 'f', 'F', 'e', 'E', 'g', 'G':
			n, err := checkNumber(args, argIndex, "format")
			if err != nil {
				return nil, err
			}
			sb.WriteString(fmt.Sprintf(spec+string(verb), float64(n)))
		case 's':
			s, err := e.tostring(args[argIndex])
			if err != nil {
				return nil, err
			}
			sb.WriteString(fmt.Sprintf(spec+"s", s))
		case 'q':
			s, err := checkString(args, argIndex, "format")
			if err != nil {
				return nil, err
			}
			sb.WriteString(quoteString(s))
		default:
			return nil, e.runtimeErrorf("invalid conversion '%s' to 'format'", spec+string(verb))
		}
		argIndex++
	}
	return values(NewString(sb.String())), nil
}

// quoteString quotes s so that it can be read back by the parser.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString("\\n")
		case '\r':
			sb.WriteString("\\r")
		case 0:
			sb.WriteString("\\0")
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
