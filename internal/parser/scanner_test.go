package parser

import (
	"strings"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/token"
)

func (suite *ScannerSuite) TestEmptyInput() {
	suite.assertTokensString(``, []token.Token{})
}

func (suite *ScannerSuite) TestSmallInput() {
	suite.assertTokensString(`a`, []token.Token{
		token.New("a", token.Position{Line: 1, Col: 1, Offset: 0}, token.Name),
	})
	suite.assertTokensString(`brea`, []token.Token{
		token.New("brea", token.Position{Line: 1, Col: 1, Offset: 0}, token.Name),
	})
}

func (suite *ScannerSuite) TestKeywordTypes() {
	suite.assertTokensString("and break do else elseif end false for function if in local nil not or repeat return then true until while",
		[]token.Token{
			token.New("and", token.Position{Line: 1, Col: 1, Offset: 0}, token.And, token.BinaryOperator),
			token.New("break", token.Position{Line: 1, Col: 5, Offset: 4}, token.Break),
			token.New("do", token.Position{Line: 1, Col: 11, Offset: 10}, token.Do),
			token.New("else", token.Position{Line: 1, Col: 14, Offset: 13}, token.Else),
			token.New("elseif", token.Position{Line: 1, Col: 19, Offset: 18}, token.Elseif),
			token.New("end", token.Position{Line: 1, Col: 26, Offset: 25}, token.End),
			token.New("false", token.Position{Line: 1, Col: 30, Offset: 29}, token.False),
			token.New("for", token.Position{Line: 1, Col: 36, Offset: 35}, token.For),
			token.New("function", token.Position{Line: 1, Col: 40, Offset: 39}, token.Function),
			token.New("if", token.Position{Line: 1, Col: 49, Offset: 48}, token.If),
			token.New("in", token.Position{Line: 1, Col: 52, Offset: 51}, token.In),
			token.New("local", token.Position{Line: 1, Col: 55, Offset: 54}, token.Local),
			token.New("nil", token.Position{Line: 1, Col: 61, Offset: 60}, token.Nil),
			token.New("not", token.Position{Line: 1, Col: 65, Offset: 64}, token.Not, token.UnaryOperator),
			token.New("or", token.Position{Line: 1, Col: 69, Offset: 68}, token.Or, token.BinaryOperator),
			token.New("repeat", token.Position{Line: 1, Col: 72, Offset: 71}, token.Repeat),
			token.New("return", token.Position{Line: 1, Col: 79, Offset: 78}, token.Return),
			token.New("then", token.Position{Line: 1, Col: 86, Offset: 85}, token.Then),
			token.New("true", token.Position{Line: 1, Col: 91, Offset: 90}, token.True),
			token.New("until", token.Position{Line: 1, Col: 96, Offset: 95}, token.Until),
			token.New("while", token.Position{Line: 1, Col: 102, Offset: 101}, token.While),
		})
}

func (suite *ScannerSuite) TestOperatorTypes() {
	suite.assertTokensString("+ - * / ^ % .. < <= > >= == ~= # //",
		[]token.Token{
			token.New("+", token.Position{Line: 1, Col: 1, Offset: 0}, token.BinaryOperator),
			token.New("-", token.Position{Line: 1, Col: 3, Offset: 2}, token.UnaryOperator, token.BinaryOperator),
			token.New("*", token.Position{Line: 1, Col: 5, Offset: 4}, token.BinaryOperator),
			token.New("/", token.Position{Line: 1, Col: 7, Offset: 6}, token.BinaryOperator),
			token.New("^", token.Position{Line: 1, Col: 9, Offset: 8}, token.BinaryOperator),
			token.New("%", token.Position{Line: 1, Col: 11, Offset: 10}, token.BinaryOperator),
			token.New("..", token.Position{Line: 1, Col: 13, Offset: 12}, token.BinaryOperator),
			token.New("<", token.Position{Line: 1, Col: 16, Offset: 15}, token.BinaryOperator),
			token.New("<=", token.Position{Line: 1, Col: 18, Offset: 17}, token.BinaryOperator),
			token.New(">", token.Position{Line: 1, Col: 21, Offset: 20}, token.BinaryOperator),
			token.New(">=", token.Position{Line: 1, Col: 23, Offset: 22}, token.BinaryOperator),
			token.New("==", token.Position{Line: 1, Col: 26, Offset: 25}, token.BinaryOperator),
			token.New("~=", token.Position{Line: 1, Col: 29, Offset: 28}, token.BinaryOperator),
			token.New("#", token.Position{Line: 1, Col: 32, Offset: 31}, token.UnaryOperator),
			token.New("//", token.Position{Line: 1, Col: 34, Offset: 33}, token.BinaryOperator),
		})
}

func (suite *ScannerSuite) TestLinefeed() {
	suite.assertTokensString(`
break
 break
		break

do`,
		[]token.Token{
			token.New("break", token.Position{Line: 2, Col: 1, Offset: 1}, token.Break),
			token.New("break", token.Position{Line: 3, Col: 2, Offset: 8}, token.Break),
			token.New("break", token.Position{Line: 4, Col: 3, Offset: 16}, token.Break),
			token.New("do", token.Position{Line: 6, Col: 1, Offset: 23}, token.Do),
		})
}

func (suite *ScannerSuite) TestConcatenatedTokens() {
	suite.assertTokensString(`andThese are not_keywords at all, but this is and`,
		[]token.Token{
			token.New("andThese", token.Position{Line: 1, Col: 1, Offset: 0}, token.Name),
			token.New("are", token.Position{Line: 1, Col: 10, Offset: 9}, token.Name),
			token.New("not_keywords", token.Position{Line: 1, Col: 14, Offset: 13}, token.Name),
			token.New("at", token.Position{Line: 1, Col: 27, Offset: 26}, token.Name),
			token.New("all", token.Position{Line: 1, Col: 30, Offset: 29}, token.Name),
			token.New(",", token.Position{Line: 1, Col: 33, Offset: 32}, token.Comma),
			token.New("but", token.Position{Line: 1, Col: 35, Offset: 34}, token.Name),
			token.New("this", token.Position{Line: 1, Col: 39, Offset: 38}, token.Name),
			token.New("is", token.Position{Line: 1, Col: 44, Offset: 43}, token.Name),
			token.New("and", token.Position{Line: 1, Col: 47, Offset: 46}, token.And, token.BinaryOperator),
		})
}

func (suite *ScannerSuite) TestNumbers() {
	suite.assertTokensString(`1.5E7`,
		[]token.Token{
			token.New("1.5E7", token.Position{Line: 1, Col: 1, Offset: 0}, token.Number),
		})
	suite.assertTokensString(`-1.5E7`,
		[]token.Token{
			token.New("-", token.Position{Line: 1, Col: 1, Offset: 0}, token.UnaryOperator, token.BinaryOperator),
			token.New("1.5E7", token.Position{Line: 1, Col: 2, Offset: 1}, token.Number),
		})
	suite.assertTokensString(`.3E9 3e-2 0xFF`,
		[]token.Token{
			token.New(".3E9", token.Position{Line: 1, Col: 1, Offset: 0}, token.Number),
			token.New("3e-2", token.Position{Line: 1, Col: 6, Offset: 5}, token.Number),
			token.New("0xFF", token.Position{Line: 1, Col: 11, Offset: 10}, token.Number),
		})
	suite.assertTokensString(`5+5`,
		[]token.Token{
			token.New("5", token.Position{Line: 1, Col: 1, Offset: 0}, token.Number),
			token.New("+", token.Position{Line: 1, Col: 2, Offset: 1}, token.BinaryOperator),
			token.New("5", token.Position{Line: 1, Col: 3, Offset: 2}, token.Number),
		})
}

func (suite *ScannerSuite) TestMalformedNumbers() {
	suite.assertLexErrorString(`3e`, "malformed number near '3e'")
	suite.assertLexErrorString(`12abc`, "malformed number near '12abc'")
	suite.assertLexErrorString(`0x`, "malformed number near '0x'")
}

func (suite *ScannerSuite) TestStrings() {
	suite.assertTokensString(`'a' "b" [[c]]`,
		[]token.Token{
			token.New("a", token.Position{Line: 1, Col: 1, Offset: 0}, token.String),
			token.New("b", token.Position{Line: 1, Col: 5, Offset: 4}, token.String),
			token.New("c", token.Position{Line: 1, Col: 9, Offset: 8}, token.String),
		})

	suite.assertTokensString(`'a' "b" [[
c]]`,
		[]token.Token{
			token.New("a", token.Position{Line: 1, Col: 1, Offset: 0}, token.String),
			token.New("b", token.Position{Line: 1, Col: 5, Offset: 4}, token.String),
			token.New("c", token.Position{Line: 1, Col: 9, Offset: 8}, token.String),
		})

	suite.assertTokensString(`'a' "b" [[
c
]]`,
		[]token.Token{
			token.New("a", token.Position{Line: 1, Col: 1, Offset: 0}, token.String),
			token.New("b", token.Position{Line: 1, Col: 5, Offset: 4}, token.String),
			token.New("c\n", token.Position{Line: 1, Col: 9, Offset: 8}, token.String),
		})

	suite.assertTokensString(`[[a]] [=[b]=] [===[foobar]===]`,
		[]token.Token{
			token.New("a", token.Position{Line: 1, Col: 1, Offset: 0}, token.String),
			token.New("b", token.Position{Line: 1, Col: 7, Offset: 6}, token.String),
			token.New("foobar", token.Position{Line: 1, Col: 15, Offset: 14}, token.String),
		})

	suite.assertTokensString(`[============================================================================[whatever]============================================================================]`,
		[]token.Token{
			token.New("whatever", token.Position{Line: 1, Col: 1, Offset: 0}, token.String),
		})
}

func (suite *ScannerSuite) TestStringEscapes() {
	suite.assertTokensString(`"a\tb" 'it\'s'`,
		[]token.Token{
			token.New("a\tb", token.Position{Line: 1, Col: 1, Offset: 0}, token.String),
			token.New("it's", token.Position{Line: 1, Col: 8, Offset: 7}, token.String),
		})
}

func (suite *ScannerSuite) TestComments() {
	suite.assertTokensString(`a -- line comment
--[[ block
comment ]] b --[==[ another ]==] c`,
		[]token.Token{
			token.New("a", token.Position{Line: 1, Col: 1, Offset: 0}, token.Name),
			token.New("b", token.Position{Line: 3, Col: 12, Offset: 40}, token.Name),
			token.New("c", token.Position{Line: 3, Col: 34, Offset: 62}, token.Name),
		})
}

func (suite *ScannerSuite) TestPunctuation() {
	suite.assertTokensString(`a.b:c(...)[1];{}`,
		[]token.Token{
			token.New("a", token.Position{Line: 1, Col: 1, Offset: 0}, token.Name),
			token.New(".", token.Position{Line: 1, Col: 2, Offset: 1}, token.Dot),
			token.New("b", token.Position{Line: 1, Col: 3, Offset: 2}, token.Name),
			token.New(":", token.Position{Line: 1, Col: 4, Offset: 3}, token.Colon),
			token.New("c", token.Position{Line: 1, Col: 5, Offset: 4}, token.Name),
			token.New("(", token.Position{Line: 1, Col: 6, Offset: 5}, token.ParLeft),
			token.New("...", token.Position{Line: 1, Col: 7, Offset: 6}, token.Ellipsis),
			token.New(")", token.Position{Line: 1, Col: 10, Offset: 9}, token.ParRight),
			token.New("[", token.Position{Line: 1, Col: 11, Offset: 10}, token.BracketLeft),
			token.New("1", token.Position{Line: 1, Col: 12, Offset: 11}, token.Number),
			token.New("]", token.Position{Line: 1, Col: 13, Offset: 12}, token.BracketRight),
			token.New(";", token.Position{Line: 1, Col: 14, Offset: 13}, token.SemiColon),
			token.New("{", token.Position{Line: 1, Col: 15, Offset: 14}, token.CurlyLeft),
			token.New("}", token.Position{Line: 1, Col: 16, Offset: 15}, token.CurlyRight),
		})
}

func (suite *ScannerSuite) TestEOFRepeats() {
	sc, err := suite.scannerGenerator(strings.NewReader(`x`))
	suite.Require().NoError(err)

	tk, err := sc.next()
	suite.NoError(err)
	suite.True(tk.Is(token.Name))
	for i := 0; i < 3; i++ {
		tk, err = sc.next()
		suite.NoError(err)
		suite.True(tk.Is(token.EOF))
		suite.Equal("<eof>", token.Quote(tk))
	}
}

func (suite *ScannerSuite) TestLexErrors() {
	suite.assertLexErrorString(`"abc`, `unfinished string near '"abc'`)
	suite.assertLexErrorString("'abc\nd'", "unfinished string near ''abc'")
	suite.assertLexErrorString(`[[abc`, "unfinished long string near <eof>")
	suite.assertLexErrorString(`a = $`, "unexpected symbol near '$'")
	suite.assertLexErrorString(`"\q"`, `invalid escape sequence '\q' near '"\q"'`)
}
