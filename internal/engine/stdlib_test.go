package engine

import (
	"strings"

	"github.com/spf13/afero"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

func (suite *EngineSuite) TestArgumentErrors() {
	tests := []struct {
		source string
		want   string
	}{
		{`table.insert(nil, 1)`, "bad argument #1 to 'insert' (table expected, got nil)"},
		{`table.insert({}, 5, 1)`, "bad argument #2 to 'insert' (position out of bounds)"},
		{`table.insert({}, 1, 2, 3)`, "wrong number of arguments to 'insert'"},
		{`table.concat({1, {}, 3})`, "invalid value (at index 2) in table for 'concat'"},
		{`string.rep()`, "bad argument #1 to 'rep' (string expected, got no value)"},
		{`string.sub("abc", 1.5)`, "bad argument #2 to 'sub' (number has no integer representation)"},
		{`string.rep("x", 1e15)`, "resulting string too large"},
		{`string.rep("x", 2^40, ",")`, "resulting string too large"},
		{`string.rep("x", 1e300)`, "bad argument #2 to 'rep' (number has no integer representation)"},
		{`select(0, 1)`, "bad argument #1 to 'select' (index out of range)"},
		{`setmetatable({}, 1)`, "bad argument #2 to 'setmetatable' (nil or table expected)"},
		{`math.max()`, "bad argument #1 to 'max' (number expected, got no value)"},
		{`math.fmod(1, 0)`, "bad argument #2 to 'fmod' (zero)"},
		{`tonumber("10", 99)`, "bad argument #2 to 'tonumber' (base out of range)"},
		{`string.format("%d", "x")`, "bad argument #2 to 'format' (number expected, got string)"},
		{`string.format("%d")`, "bad argument #2 to 'format' (no value)"},
		{`next({}, "missing")`, "invalid key to 'next'"},
		{`type()`, "bad argument #1 to 'type' (value expected)"},
	}
	for _, test := range tests {
		suite.Run(test.source, func() {
			err := suite.evalErr(test.source)
			suite.Equal(test.want, err.Message)
		})
	}
}

func (suite *EngineSuite) TestStringRep() {
	results := suite.eval(`return string.rep("ab", 3, ","), string.rep("x", 0), string.rep("", 1e15), string.rep("-", 4)`)
	suite.Equal([]value.Value{
		value.NewString("ab,ab,ab"),
		value.NewString(""),
		value.NewString(""),
		value.NewString("----"),
	}, results)
}

func (suite *EngineSuite) TestType() {
	results := suite.eval(`return type(nil), type(true), type(1), type("s"), type({}), type(print), type(type)`)
	suite.Equal([]value.Value{
		value.NewString("nil"),
		value.NewString("boolean"),
		value.NewString("number"),
		value.NewString("string"),
		value.NewString("table"),
		value.NewString("function"),
		value.NewString("function"),
	}, results)
}

func (suite *EngineSuite) TestTostring() {
	suite.eval(`print(tostring(nil), tostring(false), tostring(12), tostring(1.25), tostring("s"))`)
	suite.Equal("nil\tfalse\t12\t1.25\ts\n", suite.stdout.String())

	results := suite.eval(`return tostring({})`)
	suite.Require().Len(results, 1)
	suite.True(strings.HasPrefix(results[0].(value.String).String(), "table: 0x"))
}

func (suite *EngineSuite) TestGlobalsTable() {
	results := suite.eval(`return _G._G == _G, _G.print == print, _VERSION`)
	suite.Equal([]value.Value{value.True, value.True, value.NewString("Lua 5.3")}, results)
}

func (suite *EngineSuite) TestNext() {
	results := suite.eval(`
local t = {"a"}
local k, v = next(t)
return k, v, next(t, k), next({})
`)
	suite.Equal([]value.Value{value.NewNumber(1), value.NewString("a"), value.Nil, value.Nil}, results)
}

func (suite *EngineSuite) TestTableRemoveEdges() {
	results := suite.eval(`
local t = {}
local a = table.remove(t)
local u = {1, 2, 3}
local b = table.remove(u, 4)
return a, b, #u
`)
	suite.Equal([]value.Value{value.Nil, value.Nil, value.NewNumber(3)}, results)
}

func (suite *EngineSuite) TestDofileFromStdin() {
	suite.stdin.WriteString(`return 1 + 1`)
	results := suite.eval(`return dofile()`)
	suite.Equal([]value.Value{value.NewNumber(2)}, results)
}

func (suite *EngineSuite) TestDofileSyntaxError() {
	fs := afero.NewMemMapFs()
	suite.Require().NoError(afero.WriteFile(fs, "broken.lua", []byte("if true print(5) end"), 0o644))
	e := New(WithFs(fs))

	_, err := e.Eval(strings.NewReader(`dofile("broken.lua")`))
	suite.Require().Error(err)
	suite.EqualError(err, "broken.lua: 'then' expected before 'print'")
}

func (suite *EngineSuite) TestCollectgarbage() {
	results := suite.eval(`return type(collectgarbage("count")), collectgarbage()`)
	suite.Equal([]value.Value{value.NewString("number"), value.NewNumber(0)}, results)
}
