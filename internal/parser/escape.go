package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errUnfinishedEscape = errors.New("unfinished escape at end of string")

// simpleEscapes maps the byte after a backslash to the byte it stands for.
var simpleEscapes = [256]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
	'\n': '\n',
}

// unescape resolves the escape sequences of the body of a quoted string
// literal. Decimal escapes take up to three digits, hexadecimal escapes
// exactly two, and \z skips the following whitespace.
func unescape(s string) (string, error) {
	if strings.IndexByte(s, '\\') < 0 {
		return s, nil
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			out = append(out, s[i])
			continue
		}
		i++
		if i == len(s) {
			return "", errUnfinishedEscape
		}

		switch c := s[i]; {
		case c == 'z':
			for i+1 < len(s) && isSpace(s[i+1]) {
				i++
			}
		case c == 'x':
			switch rest := len(s) - i - 1; {
			case rest == 0:
				return "", errUnfinishedEscape
			case rest < 2:
				return "", errors.New("incomplete hex escape at end of string")
			}
			b, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("invalid hex escape '\\x%s'", s[i+1:i+3])
			}
			out = append(out, byte(b))
			i += 2
		case c == 'u':
			r, n, err := unicodeEscape(s[i+1:])
			if err != nil {
				return "", err
			}
			out = utf8.AppendRune(out, r)
			i += n
		case isDigit(c):
			end := i
			n := 0
			for end < len(s) && end < i+3 && isDigit(s[end]) {
				n = n*10 + int(s[end]-'0')
				end++
			}
			if n > 255 {
				return "", fmt.Errorf("decimal escape too large: %d (max 255)", n)
			}
			out = append(out, byte(n))
			i = end - 1
		default:
			b := simpleEscapes[c]
			if b == 0 {
				return "", fmt.Errorf("invalid escape sequence '\\%c'", c)
			}
			out = append(out, b)
		}
	}
	return string(out), nil
}

// unicodeEscape decodes the "{XXX}" part of a \u escape and reports how many
// bytes it consumed.
func unicodeEscape(s string) (rune, int, error) {
	end := strings.IndexByte(s, '}')
	if !strings.HasPrefix(s, "{") || end < 2 {
		return 0, 0, errors.New("missing '{' or '}' in \\u{xxxx}")
	}
	code, err := strconv.ParseUint(s[1:end], 16, 32)
	if err != nil || code > utf8.MaxRune {
		return 0, 0, errors.New("UTF-8 value too large")
	}
	return rune(code), end + 1, nil
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
