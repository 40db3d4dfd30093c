package parser

import (
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/ast"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/token"
)

func name(s string) token.Token {
	return token.New(s, token.Position{}, token.Name)
}

func num(s string, n float64) ast.SimpleExp {
	return ast.SimpleExp{Token: token.New(s, token.Position{}, token.Number), Number: n}
}

func str(s string) ast.SimpleExp {
	return ast.SimpleExp{Token: token.New(s, token.Position{}, token.String), String: s}
}

func binop(op string) token.Token {
	return token.New(op, token.Position{}, token.BinaryOperator)
}

func (suite *ParserSuite) TestParse() {
	suite.assertChunkString(`
print("Hello, World!")
`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.FunctionCall{
				Call: ast.CallExp{
					Prefix: ast.NameExp{Name: name("print")},
					Args:   []ast.Exp{str("Hello, World!")},
				},
			},
		},
	})
}

func (suite *ParserSuite) TestFunctionCallColon() {
	suite.assertChunkString(`
io.stderr:write("foobar")
`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.FunctionCall{
				Call: ast.CallExp{
					Prefix: ast.IndexExp{
						Prefix: ast.NameExp{Name: name("io")},
						Key:    ast.SimpleExp{Token: name("stderr"), String: "stderr"},
					},
					Method: name("write"),
					Args:   []ast.Exp{str("foobar")},
				},
			},
		},
	})
}

func (suite *ParserSuite) TestCallSugar() {
	suite.assertChunkString(`f"x" g{}`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.FunctionCall{
				Call: ast.CallExp{
					Prefix: ast.NameExp{Name: name("f")},
					Args:   []ast.Exp{str("x")},
				},
			},
			ast.FunctionCall{
				Call: ast.CallExp{
					Prefix: ast.NameExp{Name: name("g")},
					Args:   []ast.Exp{ast.TableConstructor{}},
				},
			},
		},
	})
}

func (suite *ParserSuite) TestAssignment() {
	suite.assertChunkString(`
a=x
`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.Assignment{
				VarList: []ast.Exp{ast.NameExp{Name: name("a")}},
				ExpList: []ast.Exp{ast.NameExp{Name: name("x")}},
			},
		},
	})
}

func (suite *ParserSuite) TestMultipleAssignment() {
	suite.assertChunkString(`a, t[1] = 1, 2`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.Assignment{
				VarList: []ast.Exp{
					ast.NameExp{Name: name("a")},
					ast.IndexExp{
						Prefix: ast.NameExp{Name: name("t")},
						Key:    num("1", 1),
					},
				},
				ExpList: []ast.Exp{num("1", 1), num("2", 2)},
			},
		},
	})
}

func (suite *ParserSuite) TestFunctionDeclaration() {
	suite.assertChunkString(`
function foo.bar()
	some = code
end
`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.Function{
				FuncName: ast.FuncName{
					Name1: []token.Token{name("foo"), name("bar")},
				},
				FuncBody: ast.FuncBody{
					Block: ast.Block{
						ast.Assignment{
							VarList: []ast.Exp{ast.NameExp{Name: name("some")}},
							ExpList: []ast.Exp{ast.NameExp{Name: name("code")}},
						},
					},
				},
			},
		},
	})
}

func (suite *ParserSuite) TestMethodDeclaration() {
	suite.assertChunkString(`function a.b:c(x, ...) return self end`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.Function{
				FuncName: ast.FuncName{
					Name1: []token.Token{name("a"), name("b")},
					Name2: name("c"),
				},
				FuncBody: ast.FuncBody{
					ParList: ast.ParList{
						NameList: []token.Token{name("self"), name("x")},
						Ellipsis: true,
					},
					Block: ast.Block{
						ast.LastStatement{
							ExpList: []ast.Exp{ast.NameExp{Name: name("self")}},
						},
					},
				},
			},
		},
	})
}

func (suite *ParserSuite) TestLocal() {
	suite.assertChunkString(`local a, b = 1 local function f() end`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.Local{
				NameList: []token.Token{name("a"), name("b")},
				ExpList:  []ast.Exp{num("1", 1)},
			},
			ast.LocalFunction{
				Name: name("f"),
			},
		},
	})
}

func (suite *ParserSuite) TestPrecedence() {
	// 1 + 2 * 3 ^ 2 ^ 1 == 19 and not x
	suite.assertChunkString(`return 1 + 2 * 3 ^ 2 ^ 1 == 19 and not x`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.LastStatement{
				ExpList: []ast.Exp{
					ast.BinopExp{
						Left: ast.BinopExp{
							Left: ast.BinopExp{
								Left:  num("1", 1),
								Binop: binop("+"),
								Right: ast.BinopExp{
									Left:  num("2", 2),
									Binop: binop("*"),
									Right: ast.BinopExp{
										Left:  num("3", 3),
										Binop: binop("^"),
										Right: ast.BinopExp{
											Left:  num("2", 2),
											Binop: binop("^"),
											Right: num("1", 1),
										},
									},
								},
							},
							Binop: binop("=="),
							Right: num("19", 19),
						},
						Binop: token.New("and", token.Position{}, token.And, token.BinaryOperator),
						Right: ast.UnopExp{
							Unop: token.New("not", token.Position{}, token.Not, token.UnaryOperator),
							Exp:  ast.NameExp{Name: name("x")},
						},
					},
				},
			},
		},
	})
}

func (suite *ParserSuite) TestUnaryBindsLooserThanPow() {
	suite.assertChunkString(`return -2 ^ 2`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.LastStatement{
				ExpList: []ast.Exp{
					ast.UnopExp{
						Unop: token.New("-", token.Position{}, token.UnaryOperator, token.BinaryOperator),
						Exp: ast.BinopExp{
							Left:  num("2", 2),
							Binop: binop("^"),
							Right: num("2", 2),
						},
					},
				},
			},
		},
	})
}

func (suite *ParserSuite) TestConcatIsRightAssociative() {
	dd := token.New("..", token.Position{}, token.BinaryOperator, token.DoubleDot)
	suite.assertChunkString(`return "a" .. "b" .. "c"`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.LastStatement{
				ExpList: []ast.Exp{
					ast.BinopExp{
						Left:  str("a"),
						Binop: dd,
						Right: ast.BinopExp{
							Left:  str("b"),
							Binop: dd,
							Right: str("c"),
						},
					},
				},
			},
		},
	})
}

func (suite *ParserSuite) TestTableConstructor() {
	suite.assertChunkString(`t = { 1, x = 2; ["y"] = 3, }`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.Assignment{
				VarList: []ast.Exp{ast.NameExp{Name: name("t")}},
				ExpList: []ast.Exp{
					ast.TableConstructor{
						Fields: []ast.Field{
							{RightExp: num("1", 1)},
							{LeftName: name("x"), RightExp: num("2", 2)},
							{LeftExp: str("y"), RightExp: num("3", 3)},
						},
					},
				},
			},
		},
	})
}

func (suite *ParserSuite) TestControlStructures() {
	suite.assertChunkString(`
while a do break end
repeat local x = 1 until x
if a then elseif b then else end
for i = 1, 10, 2 do end
for k, v in pairs(t) do end
do end
`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.WhileBlock{
				While: ast.NameExp{Name: name("a")},
				Do:    ast.Block{ast.Break{}},
			},
			ast.RepeatBlock{
				Repeat: ast.Block{
					ast.Local{
						NameList: []token.Token{name("x")},
						ExpList:  []ast.Exp{num("1", 1)},
					},
				},
				Until: ast.NameExp{Name: name("x")},
			},
			ast.IfBlock{
				If: ast.NameExp{Name: name("a")},
				ElseIf: []ast.ElseIf{
					{If: ast.NameExp{Name: name("b")}},
				},
			},
			ast.ForBlock{
				Name: name("i"),
				From: num("1", 1),
				To:   num("10", 10),
				Step: num("2", 2),
			},
			ast.ForInBlock{
				NameList: []token.Token{name("k"), name("v")},
				In: []ast.Exp{
					ast.CallExp{
						Prefix: ast.NameExp{Name: name("pairs")},
						Args:   []ast.Exp{ast.NameExp{Name: name("t")}},
					},
				},
			},
			ast.DoBlock{},
		},
	})
}

func (suite *ParserSuite) TestHexNumber() {
	suite.assertChunkString(`return 0x10`, ast.Chunk{
		Name: UnknownInput,
		Block: ast.Block{
			ast.LastStatement{
				ExpList: []ast.Exp{num("0x10", 16)},
			},
		},
	})
}

func (suite *ParserSuite) TestVarargOutsideVarargFunction() {
	suite.assertSyntaxErrorString(`function f() return ... end`, "cannot use '...' outside a vararg function near '...'")
	// the main chunk is a vararg function
	_, err := ParseString("", `return ...`)
	suite.NoError(err)
}

func (suite *ParserSuite) TestNonCallExpressionStatement() {
	suite.assertSyntaxErrorString(`x`, "syntax error near <eof>")
	suite.assertSyntaxErrorString(`a.b c`, "syntax error near 'c'")
}

func (suite *ParserSuite) TestMiscErrors() {
	suite.assertSyntaxErrorString(`x = `, "unexpected symbol near <eof>")
	suite.assertSyntaxErrorString(`f(1`, "')' expected (to close '(' at line 1) near <eof>")
	suite.assertSyntaxErrorString(`t = { 1 2 }`, "'}' expected (to close '{' at line 1) near '2'")
	suite.assertSyntaxErrorString(`for i do end`, "'=' or 'in' expected near 'do'")
	suite.assertSyntaxErrorString(`repeat x()`, "'until' expected (to close 'repeat' at line 1) near <eof>")
	suite.assertSyntaxErrorString(`return 1 x()`, "'<eof>' expected near 'x'")
	suite.assertSyntaxErrorString(`x = "abc`, `unfinished string near '"abc'`)
}
