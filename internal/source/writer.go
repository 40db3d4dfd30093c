package source

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/token"
)

// null stands in for explicit nil values while a table is built, since a
// table cannot hold nil.
var null = value.NewUserdata(nil, &value.Descriptor{Name: "nil"})

// writer renders values as expressions.
type writer struct {
	opts Options
	// visiting holds the tables on the current path, to reject cycles.
	visiting map[*value.Table]struct{}
}

func newWriter(opts Options) *writer {
	return &writer{
		opts:     opts,
		visiting: make(map[*value.Table]struct{}),
	}
}

func (w *writer) expression(v value.Value, depth int) (string, error) {
	switch val := value.OrNil(v).(type) {
	case value.Boolean:
		return val.String(), nil
	case value.Number:
		return w.number(val), nil
	case value.String:
		return quote(string(val)), nil
	case *value.Table:
		return w.table(val, depth)
	case *value.Userdata:
		if val == null {
			return "nil", nil
		}
	}
	if v == nil || v == value.Nil {
		return "nil", nil
	}
	return "", fmt.Errorf("cannot write value of type %s", v.Type())
}

func (w *writer) number(n value.Number) string {
	f := float64(n)
	switch {
	case math.IsInf(f, 1):
		return "math.huge"
	case math.IsInf(f, -1):
		return "-math.huge"
	case math.IsNaN(f):
		return "(0/0)"
	case n.IsInteger() && math.Abs(f) < 1<<53:
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, w.opts.numberFormat(), w.opts.numberPrecision(), 64)
}

func (w *writer) key(k value.Value) (string, error) {
	switch key := k.(type) {
	case value.String:
		if isName(string(key)) {
			return string(key), nil
		}
		return "[" + quote(string(key)) + "]", nil
	case value.Number, value.Boolean:
		s, err := w.expression(key, 0)
		if err != nil {
			return "", err
		}
		return "[" + s + "]", nil
	}
	return "", fmt.Errorf("cannot write key of type %s", k.Type())
}

func (w *writer) table(t *value.Table, depth int) (string, error) {
	if _, ok := w.visiting[t]; ok {
		return "", errors.New("cannot write cyclic table")
	}
	w.visiting[t] = struct{}{}
	defer delete(w.visiting, t)

	entries, multiline, err := w.entries(t, depth+1)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "{}", nil
	}

	if !multiline && w.fits(entries) {
		return "{ " + strings.Join(entries, ", ") + " }", nil
	}

	var sb strings.Builder
	inner := strings.Repeat(w.opts.indent(), depth+1)
	sb.WriteString("{\n")
	for i, entry := range entries {
		sb.WriteString(inner)
		sb.WriteString(entry)
		if i < len(entries)-1 || w.opts.WriteTrailingComma {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.Repeat(w.opts.indent(), depth))
	sb.WriteByte('}')
	return sb.String(), nil
}

// entries renders the entries of t. The array part is written positionally,
// everything else as key = value in iteration order. multiline reports
// whether any entry spans several lines.
func (w *writer) entries(t *value.Table, depth int) (entries []string, multiline bool, err error) {
	n := t.Length()
	for i := 1; i <= n; i++ {
		v, _ := t.Get(value.NewNumber(float64(i)))
		s, err := w.expression(v, depth)
		if err != nil {
			return nil, false, fmt.Errorf("[%d]: %w", i, err)
		}
		entries = append(entries, s)
		multiline = multiline || strings.Contains(s, "\n")
	}

	t.Range(func(k, v value.Value) bool {
		if num, ok := k.(value.Number); ok && num.IsInteger() && num >= 1 && int(num) <= n {
			return true
		}
		var key, val string
		if key, err = w.key(k); err != nil {
			return false
		}
		if val, err = w.expression(v, depth); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
			return false
		}
		entries = append(entries, key+" = "+val)
		multiline = multiline || strings.Contains(val, "\n")
		return true
	})
	if err != nil {
		return nil, false, err
	}
	return entries, multiline, nil
}

// fits estimates the single line length of a table with the given entries.
func (w *writer) fits(entries []string) bool {
	length := len("{  }") + len(", ")*(len(entries)-1)
	for _, entry := range entries {
		length += len(entry)
	}
	return length <= w.opts.SingleLineTableLength
}

// isName reports whether s can be written as a bare field name.
func isName(s string) bool {
	if s == "" {
		return false
	}
	if _, ok := token.Keyword(s); ok {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// quote writes s as a double quoted string literal. Control bytes and bytes
// that are not part of valid UTF-8 use three digit decimal escapes, so a
// following digit cannot extend them and the literal reads back byte for
// byte.
func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				fmt.Fprintf(&sb, `\%03d`, c)
			} else {
				sb.WriteString(s[i : i+size])
			}
			i += size
			continue
		}
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&sb, `\%03d`, c)
			} else {
				sb.WriteByte(c)
			}
		}
		i++
	}
	sb.WriteByte('"')
	return sb.String()
}
