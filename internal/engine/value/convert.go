package value

import (
	"strconv"
	"strings"
)

// ToNumber converts numbers and numeric strings to a Number.
func ToNumber(v Value) (Number, bool) {
	switch val := v.(type) {
	case Number:
		return val, true
	case String:
		return ParseNumber(string(val))
	}
	return 0, false
}

// ParseNumber parses a Lua numeral, surrounded by optional whitespace.
func ParseNumber(s string) (Number, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	body := s
	if body[0] == '-' || body[0] == '+' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if len(body) > 2 && (body[:2] == "0x" || body[:2] == "0X") {
		n, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		f := float64(int64(n))
		if neg {
			f = -f
		}
		return Number(f), true
	}
	// reject what Go accepts but Lua does not
	if strings.ContainsAny(body, "_pPxX") || strings.EqualFold(body, "inf") || strings.EqualFold(body, "infinity") || strings.EqualFold(body, "nan") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return Number(f), true
}

// ToString converts strings and numbers to a Go string.
func ToString(v Value) (string, bool) {
	switch val := v.(type) {
	case String:
		return string(val), true
	case Number:
		return val.String(), true
	}
	return "", false
}
