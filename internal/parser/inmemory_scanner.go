package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/token"
)

// scanner produces tokens. Once the input is exhausted, next keeps
// returning a token of type token.EOF; tkpos is the position of the token
// being scanned, used to locate lexical errors.
type scanner interface {
	next() (token.Token, error)
	tkpos() token.Position
}

var _ scanner = (*inMemoryScanner)(nil)

type state struct {
	start     int
	startLine int
	startCol  int

	pos  int
	line int
	col  int
}

type inMemoryScanner struct {
	input []rune

	state
}

func newInMemoryScanner(source io.Reader) (*inMemoryScanner, error) {
	data, err := io.ReadAll(source)
	if err != nil {
		return nil, fmt.Errorf("read all: %w", err)
	}
	return newInMemoryScannerString(string(data)), nil
}

func newInMemoryScannerString(source string) *inMemoryScanner {
	return &inMemoryScanner{
		input: []rune(source),
		state: state{
			startLine: 1,
			startCol:  1,
			line:      1,
			col:       1,
		},
	}
}

func (s *inMemoryScanner) next() (token.Token, error) {
	return s.computeNext()
}

func (s *inMemoryScanner) updateStartPositions() {
	s.start = s.pos
	s.startLine = s.line
	s.startCol = s.col
}

func (s *inMemoryScanner) token(typ ...token.Type) token.Token {
	return s.tokenWithValue(s.candidate(), typ...)
}

func (s *inMemoryScanner) tokenWithValue(value string, typ ...token.Type) token.Token {
	tok := token.New(value, s.tkpos(), typ...)
	s.updateStartPositions()
	return tok
}

func (s *inMemoryScanner) error(near, format string, args ...interface{}) error {
	err := &LexError{
		Message: fmt.Sprintf(format, args...),
		Near:    near,
		Line:    s.startLine,
	}
	s.updateStartPositions()
	return err
}

func (s *inMemoryScanner) candidate() string {
	return string(s.input[s.start:s.pos])
}

func (s *inMemoryScanner) done() bool {
	return s.pos >= len(s.input)
}

func (s *inMemoryScanner) lookahead() (rune, bool) {
	return s.peek(0)
}

func (s *inMemoryScanner) peek(n int) (rune, bool) {
	if s.pos+n < len(s.input) {
		return s.input[s.pos+n], true
	}
	return 0, false
}

func (s *inMemoryScanner) consume() {
	if s.input[s.pos] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.pos++
}

func (s *inMemoryScanner) consumeN(n int) {
	for i := 0; i < n; i++ {
		s.consume()
	}
}

func (s *inMemoryScanner) check(ahead string) bool {
	runes := []rune(ahead)
	if s.pos+len(runes) > len(s.input) {
		return false
	}
	for i, r := range runes {
		if r != s.input[s.pos+i] {
			return false
		}
	}
	s.consumeN(len(runes))
	return true
}

func (s *inMemoryScanner) checkWord(ahead string) bool {
	runes := []rune(ahead)
	if s.pos+len(runes) > len(s.input) {
		return false
	}
	for i, r := range runes {
		if r != s.input[s.pos+i] {
			return false
		}
	}

	if len(s.input) > s.pos+len(runes) {
		r := s.input[s.pos+len(runes)]
		if isNameRune(r) {
			/*
				Assuming that ahead is e.g. 'and', we can't match a variable name like
				'and_this_is_my_var', or 'andThis', which is, why we check if the word
				is followed by a rune that would be valid for a Lua name.
			*/
			return false
		}
	}
	s.consumeN(len(runes))
	return true
}

// checkNumber consumes a numeral. Signs are not part of a numeral, they
// are unary operators.
func (s *inMemoryScanner) checkNumber() (bool, error) {
	i := 0
	hasMore := func() bool {
		return len(s.input) > s.pos+i
	}
	get := func() rune {
		return s.input[s.pos+i]
	}
	consume := func() {
		i++
	}

	if hasMore() && get() == '0' && len(s.input) > s.pos+1 && (s.input[s.pos+1] == 'x' || s.input[s.pos+1] == 'X') {
		consume()
		consume()
		digits := 0
		for hasMore() && isHexDigit(get()) {
			consume()
			digits++
		}
		if digits == 0 {
			s.consumeN(i)
			return false, s.error(s.candidate(), "malformed number near '%s'", s.candidate())
		}
		s.consumeN(i)
		return true, nil
	}

	// optional integral digits
	integral := 0
	for hasMore() && unicode.IsDigit(get()) {
		consume()
		integral++
	}

	// optional fractional part
	if hasMore() && get() == '.' {
		if integral == 0 && !(len(s.input) > s.pos+i+1 && unicode.IsDigit(s.input[s.pos+i+1])) {
			// a lone '.' is not a number
			return false, nil
		}
		consume()

		// optional fractional digits
		for hasMore() && unicode.IsDigit(get()) {
			consume()
		}
	}
	if i == 0 {
		return false, nil
	}

	// optional exponent part
	if hasMore() && (get() == 'e' || get() == 'E') {
		consume()

		if hasMore() && (get() == '+' || get() == '-') {
			consume()
		}

		if !(hasMore() && unicode.IsDigit(get())) {
			// no digit, require at least one digit after exponent indicator
			s.consumeN(i)
			return false, s.error(s.candidate(), "malformed number near '%s'", s.candidate())
		}

		// optional exponent digits
		for hasMore() && unicode.IsDigit(get()) {
			consume()
		}
	}
	if hasMore() && isNameRune(get()) {
		for hasMore() && isNameRune(get()) {
			consume()
		}
		s.consumeN(i)
		return false, s.error(s.candidate(), "malformed number near '%s'", s.candidate())
	}
	s.consumeN(i)
	return true, nil
}

func (s *inMemoryScanner) tkpos() token.Position {
	return token.Position{
		Line:   s.startLine,
		Col:    s.startCol,
		Offset: int64(s.start),
	}
}

func (s *inMemoryScanner) drainWhitespace() {
	for {
		r, ok := s.lookahead()
		if !(ok && unicode.IsSpace(r)) {
			break
		}
		s.consume()
	}
	s.updateStartPositions() // ignore whitespaces
}

func (s *inMemoryScanner) skipRemainingLine() {
	for {
		next, ok := s.lookahead()
		if !ok {
			break
		}
		s.consume()
		if next == '\n' {
			break
		}
	}
	s.updateStartPositions() // ignore this line
}

func (s *inMemoryScanner) computeNext() (token.Token, error) {
start:
	if s.pos == 0 {
		// skip shebang
		if s.check("#!") {
			s.skipRemainingLine()
		}
	}
	s.drainWhitespace()
	r, ok := s.lookahead()
	if !ok {
		return s.tokenWithValue("<eof>", token.EOF), nil
	}
	switch r {
	case 'a':
		if s.checkWord("and") {
			return s.token(token.And, token.BinaryOperator), nil
		}
	case 'b':
		if s.checkWord("break") {
			return s.token(token.Break), nil
		}
	case 'd':
		if s.checkWord("do") {
			return s.token(token.Do), nil
		}
	case 'e':
		if s.checkWord("elseif") {
			return s.token(token.Elseif), nil
		} else if s.checkWord("else") {
			return s.token(token.Else), nil
		} else if s.checkWord("end") {
			return s.token(token.End), nil
		}
	case 'f':
		if s.checkWord("false") {
			return s.token(token.False), nil
		} else if s.checkWord("for") {
			return s.token(token.For), nil
		} else if s.checkWord("function") {
			return s.token(token.Function), nil
		}
	case 'i':
		if s.checkWord("if") {
			return s.token(token.If), nil
		} else if s.checkWord("in") {
			return s.token(token.In), nil
		}
	case 'l':
		if s.checkWord("local") {
			return s.token(token.Local), nil
		}
	case 'n':
		if s.checkWord("nil") {
			return s.token(token.Nil), nil
		} else if s.checkWord("not") {
			return s.token(token.Not, token.UnaryOperator), nil
		}
	case 'o':
		if s.checkWord("or") {
			return s.token(token.Or, token.BinaryOperator), nil
		}
	case 'r':
		if s.checkWord("repeat") {
			return s.token(token.Repeat), nil
		} else if s.checkWord("return") {
			return s.token(token.Return), nil
		}
	case 't':
		if s.checkWord("then") {
			return s.token(token.Then), nil
		} else if s.checkWord("true") {
			return s.token(token.True), nil
		}
	case 'u':
		if s.checkWord("until") {
			return s.token(token.Until), nil
		}
	case 'w':
		if s.checkWord("while") {
			return s.token(token.While), nil
		}
	case '(':
		if s.check("(") {
			return s.token(token.ParLeft), nil
		}
	case ')':
		if s.check(")") {
			return s.token(token.ParRight), nil
		}
	case '[':
		if level, ok := s.longBracketLevel(); ok {
			return s.longString(level)
		}
		if s.check("[") {
			return s.token(token.BracketLeft), nil
		}
	case ']':
		if s.check("]") {
			return s.token(token.BracketRight), nil
		}
	case '{':
		if s.check("{") {
			return s.token(token.CurlyLeft), nil
		}
	case '}':
		if s.check("}") {
			return s.token(token.CurlyRight), nil
		}
	case '.':
		if s.check("...") {
			return s.token(token.Ellipsis), nil
		} else if s.check("..") {
			return s.token(token.BinaryOperator, token.DoubleDot), nil
		}
		if ok, err := s.checkNumber(); err != nil {
			return nil, err
		} else if ok {
			return s.token(token.Number), nil
		}
		if s.check(".") {
			return s.token(token.Dot), nil
		}
	case '+':
		if s.check("+") {
			return s.token(token.BinaryOperator), nil
		}
	case '-':
		if s.check("--") { // comment
			if level, ok := s.longBracketLevel(); ok {
				if _, err := s.longString(level); err != nil {
					return nil, err
				}
				s.updateStartPositions()
				goto start
			}
			s.skipRemainingLine() // ignore everything until line-end
			goto start
		} else if s.check("-") {
			return s.token(token.UnaryOperator, token.BinaryOperator), nil
		}
	case '*':
		if s.check("*") {
			return s.token(token.BinaryOperator), nil
		}
	case '/':
		if s.check("//") {
			return s.token(token.BinaryOperator), nil
		}
		if s.check("/") {
			return s.token(token.BinaryOperator), nil
		}
	case '^':
		if s.check("^") {
			return s.token(token.BinaryOperator), nil
		}
	case '%':
		if s.check("%") {
			return s.token(token.BinaryOperator), nil
		}
	case '&':
		if s.check("&") {
			return s.token(token.BinaryOperator), nil
		}
	case '|':
		if s.check("|") {
			return s.token(token.BinaryOperator), nil
		}
	case '<':
		if s.check("<<") {
			return s.token(token.BinaryOperator), nil
		} else if s.check("<=") {
			return s.token(token.BinaryOperator), nil
		} else if s.check("<") {
			return s.token(token.BinaryOperator), nil
		}
	case '>':
		if s.check(">>") {
			return s.token(token.BinaryOperator), nil
		} else if s.check(">=") {
			return s.token(token.BinaryOperator), nil
		} else if s.check(">") {
			return s.token(token.BinaryOperator), nil
		}
	case '=':
		if s.check("==") {
			return s.token(token.BinaryOperator), nil
		} else if s.check("=") {
			return s.token(token.Assign), nil
		}
	case '~':
		if s.check("~=") {
			return s.token(token.BinaryOperator), nil
		} else if s.check("~") {
			return s.token(token.UnaryOperator, token.BinaryOperator), nil
		}
	case '#':
		if s.check("#") {
			return s.token(token.UnaryOperator), nil
		}
	case ',':
		if s.check(",") {
			return s.token(token.Comma), nil
		}
	case ':':
		if s.check(":") {
			return s.token(token.Colon), nil
		}
	case '"', '\'':
		return s.string_()
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if ok, err := s.checkNumber(); err != nil {
			return nil, err
		} else if ok {
			return s.token(token.Number), nil
		}
	case ';':
		if s.check(";") {
			return s.token(token.SemiColon), nil
		}
	}
	// if none of these optimized lookaheads match, try this next
	if isNameStart(s.input[s.pos]) {
		return s.ident(), nil
	}
	bad := string(s.input[s.pos])
	s.consume()
	return nil, s.error(bad, "unexpected symbol near '%s'", bad)
}

func (s *inMemoryScanner) string_() (token.Token, error) {
	delimiter := s.input[s.pos]
	s.consume()

	var complete bool
	var escaped bool
	for next, ok := s.lookahead(); ok; next, ok = s.lookahead() {
		if next == '\n' && !escaped {
			break
		}
		s.consume()
		if escaped {
			escaped = false
			continue
		}
		if next == '\\' {
			escaped = true
			continue
		}
		if next == delimiter {
			complete = true
			break
		}
	}
	if !complete {
		near := s.candidate()
		return nil, s.error(near, "unfinished string near '%s'", near)
	}
	raw := s.candidate()
	content, err := unescape(raw[1 : len(raw)-1])
	if err != nil {
		return nil, s.error(raw, "%s near '%s'", err.Error(), raw)
	}
	return s.tokenWithValue(content, token.String), nil
}

// longBracketLevel checks whether an opening long bracket ([[, [=[, ...)
// starts at the current position, without consuming it.
func (s *inMemoryScanner) longBracketLevel() (int, bool) {
	if r, ok := s.peek(0); !ok || r != '[' {
		return 0, false
	}
	level := 0
	for {
		r, ok := s.peek(1 + level)
		if !ok {
			return 0, false
		}
		switch r {
		case '=':
			level++
		case '[':
			return level, true
		default:
			return 0, false
		}
	}
}

func (s *inMemoryScanner) longString(level int) (token.Token, error) {
	s.consumeN(level + 2)
	// a newline directly after the opening bracket is skipped
	_ = s.check("\r\n") || s.check("\n")
	closing := "]" + strings.Repeat("=", level) + "]"
	var content strings.Builder
	for !s.done() {
		if s.check(closing) {
			return s.tokenWithValue(content.String(), token.String), nil
		}
		content.WriteRune(s.input[s.pos])
		s.consume()
	}
	return nil, s.error("<eof>", "unfinished long string near <eof>")
}

func (s *inMemoryScanner) ident() token.Token {
	s.consume()
	for {
		next, ok := s.lookahead()
		if !ok || !isNameRune(next) {
			break
		}
		s.consume()
	}
	return s.token(token.Name)
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
