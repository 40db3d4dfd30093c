package engine

import (
	"strings"
	"time"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/parser"
)

func (suite *EngineSuite) TestTrivial() {
	results := suite.eval(`
a = "Hello, World!"
print(a)
`)
	suite.Len(results, 0)
	suite.Equal("Hello, World!\n", suite.stdout.String())
}

func (suite *EngineSuite) TestStack() {
	err := suite.evalErr(`
function a()
	b()
end

function b()
	c()
end

function c()
	error("message")
end

a()
`)
	suite.Equal("message", err.Message)
	suite.Equal(value.NewString("message"), err.Value)
	suite.Equal(11, err.Line)

	names := make([]string, len(err.Stack))
	for i, frame := range err.Stack {
		names[i] = frame.Name
	}
	suite.Equal([]string{"error", "c", "b", "a", parser.UnknownInput}, names)
}

func (suite *EngineSuite) TestStackOverflow() {
	start := time.Now()

	e := New(WithMaxCallDepth(50))
	results, err := e.Eval(strings.NewReader(`
function infiniteRecursion()
	infiniteRecursion()
end

infiniteRecursion()
`))

	suite.T().Logf("stack overflow took %s to occur", time.Since(start))

	suite.Len(results, 0)
	suite.EqualError(err, "stack overflow")
	suite.Zero(e.Stack().Top())
}

func (suite *EngineSuite) TestStackOverflowHardLimit() {
	for _, depth := range []int{0, -1, MaxCallDepthLimit * 10} {
		e := New(WithMaxCallDepth(depth))
		results, err := e.Eval(strings.NewReader(`
local depth = 0
local function recurse()
	depth = depth + 1
	recurse()
end
local ok, msg = pcall(recurse)
return ok, msg, depth
`))
		suite.Require().NoError(err, "depth %d", depth)
		suite.Require().Len(results, 3)
		suite.Equal(value.False, results[0])
		suite.Equal(value.NewString("stack overflow"), results[1])
		suite.LessOrEqual(float64(results[2].(value.Number)), float64(MaxCallDepthLimit))
		suite.Greater(float64(results[2].(value.Number)), float64(DefaultMaxCallDepth))
	}
}

func (suite *EngineSuite) TestDeepRecursionWithinLimit() {
	results := suite.eval(`
local function sum(n)
	if n == 0 then return 0 end
	return n + sum(n - 1)
end
return sum(100)
`)
	suite.Equal([]value.Value{value.NewNumber(5050)}, results)
}

func (suite *EngineSuite) TestClosureCapturePerIteration() {
	results := suite.eval(`
local fns = {}
for i = 1, 3 do
	fns[i] = function() return i end
end
return fns[1](), fns[2](), fns[3]()
`)
	suite.Equal([]value.Value{value.NewNumber(1), value.NewNumber(2), value.NewNumber(3)}, results)
}

func (suite *EngineSuite) TestClosureCounter() {
	results := suite.eval(`
local function counter()
	local n = 0
	return function() n = n + 1; return n end
end
local c1, c2 = counter(), counter()
c1(); c1()
return c1(), c2()
`)
	suite.Equal([]value.Value{value.NewNumber(3), value.NewNumber(1)}, results)
}

func (suite *EngineSuite) TestSwap() {
	results := suite.eval(`
a, b = 1, 2
a, b = b, a
return a, b
`)
	suite.Equal([]value.Value{value.NewNumber(2), value.NewNumber(1)}, results)
}

func (suite *EngineSuite) TestAssignmentAdjustment() {
	results := suite.eval(`
local function two() return 1, 2 end
local a, b, c = two()
local d, e = two(), 10
local f = (two())
return a, b, c, d, e, f
`)
	suite.Equal([]value.Value{
		value.NewNumber(1), value.NewNumber(2), value.Nil,
		value.NewNumber(1), value.NewNumber(10),
		value.NewNumber(1),
	}, results)
}

func (suite *EngineSuite) TestVarargs() {
	results := suite.eval(`
local function f(...)
	return select('#', ...), ...
end
return f(1, nil, 3)
`)
	suite.Equal([]value.Value{value.NewNumber(3), value.NewNumber(1), value.Nil, value.NewNumber(3)}, results)
}

func (suite *EngineSuite) TestChunkVarargsAreEmpty() {
	results := suite.eval(`return select('#', ...)`)
	suite.Equal([]value.Value{value.NewNumber(0)}, results)
}

func (suite *EngineSuite) TestPairsOrder() {
	results := suite.eval(`
local t = {10, 20, 30, x = "a"}
local keys = {}
for k, v in pairs(t) do
	keys[#keys + 1] = tostring(k) .. "=" .. tostring(v)
end
return table.concat(keys, ",")
`)
	suite.Equal([]value.Value{value.NewString("1=10,2=20,3=30,x=a")}, results)
}

func (suite *EngineSuite) TestIpairsStopsAtNil() {
	results := suite.eval(`
local n = 0
for i, v in ipairs({1, 2, nil, 4}) do
	n = n + v
end
return n
`)
	suite.Equal([]value.Value{value.NewNumber(3)}, results)
}

func (suite *EngineSuite) TestReturnFromNestedLoop() {
	results := suite.eval(`
local function find(t, x)
	for i, v in ipairs(t) do
		while true do
			if v == x then return i end
			break
		end
	end
	return -1
end
return find({5, 6, 7}, 7), find({}, 1)
`)
	suite.Equal([]value.Value{value.NewNumber(3), value.NewNumber(-1)}, results)
}

func (suite *EngineSuite) TestForStepZero() {
	err := suite.evalErr(`for i = 1, 10, 0 do end`)
	suite.Equal("'for' step is zero", err.Message)
}

func (suite *EngineSuite) TestForNegativeStep() {
	suite.eval(`for i = 3, 1, -1 do print(i) end`)
	suite.Equal("3\n2\n1\n", suite.stdout.String())
}

func (suite *EngineSuite) TestLastCallResults() {
	results := suite.eval(`
local function f() return "a", "b" end
f()
`)
	suite.Equal([]value.Value{value.NewString("a"), value.NewString("b")}, results)
}

func (suite *EngineSuite) TestUnknownGlobalIsNil() {
	results := suite.eval(`return undefinedVariable`)
	suite.Equal([]value.Value{value.Nil}, results)
}

func (suite *EngineSuite) TestGlobalAssignment() {
	suite.eval(`
local function set() x = 42 end
set()
`)
	suite.Equal(value.NewNumber(42), suite.engine.Globals().GetString("x"))
}

func (suite *EngineSuite) TestLocalShadowing() {
	results := suite.eval(`
x = 1
local x = 2
do
	local x = 3
end
return x, _G.x
`)
	suite.Equal([]value.Value{value.NewNumber(2), value.NewNumber(1)}, results)
}

func (suite *EngineSuite) TestLocalRedeclaration() {
	results := suite.eval(`
local x = 1
local f = function() return x end
local x = 2
local function g() return x end
local x = x + 1
return f(), g(), x
`)
	suite.Equal([]value.Value{value.NewNumber(1), value.NewNumber(2), value.NewNumber(3)}, results)

	// redeclared in a loop body and a repeat condition
	results = suite.eval(`
local fs = {}
for i = 1, 2 do
	local v = i
	fs[i] = function() return v end
	local v = i * 10
end
local n = 0
repeat
	local n = 5
until n == 5
return fs[1](), fs[2](), n
`)
	suite.Equal([]value.Value{value.NewNumber(1), value.NewNumber(2), value.NewNumber(0)}, results)

	results = suite.eval(`
local function f() return "first" end
local g = f
local function f() return g() .. " second" end
return f()
`)
	suite.Equal([]value.Value{value.NewString("first second")}, results)
}

func (suite *EngineSuite) TestRuntimeErrors() {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"call global nil", `x()`, "attempt to call a nil value (global 'x')"},
		{"call local number", `local y = 5; y()`, "attempt to call a number value (local 'y')"},
		{"call missing method", `local t = {}; t:foo()`, "attempt to call a nil value (method 'foo')"},
		{"call missing field", `local t = {}; t.bar()`, "attempt to call a nil value (field 'bar')"},
		{"index local nil", `local t; return t.x`, "attempt to index a nil value (local 't')"},
		{"index global nil", `return cfg.x`, "attempt to index a nil value (global 'cfg')"},
		{"assign into nil", `local t; t.x = 1`, "attempt to index a nil value (local 't')"},
		{"arithmetic on nil", `return 1 + x`, "attempt to perform arithmetic on a nil value (global 'x')"},
		{"arithmetic on table", `local t = {}; return t * 2`, "attempt to perform arithmetic on a table value (local 't')"},
		{"concatenate boolean", `return "a" .. true`, "attempt to concatenate a boolean value"},
		{"compare mixed", `return 1 < "2"`, "attempt to compare number with string"},
		{"compare tables", `return {} < {}`, "attempt to compare two table values"},
		{"length of number", `local n = 1; return #n`, "attempt to get length of a number value (local 'n')"},
		{"nil key", `local t = {}; t[nil] = 1`, "table index is nil"},
		{"integer division by zero", `return 1 // 0`, "attempt to perform 'n//0'"},
		{"modulo by zero", `return 1 % 0`, "attempt to perform 'n%%0'"},
		{"error with table", `error({})`, "(error object is a table value)"},
		{"error without value", `error()`, "nil"},
	}
	for _, test := range tests {
		suite.Run(test.name, func() {
			err := suite.evalErr(test.source)
			suite.Equal(test.want, err.Message)
		})
	}
}

func (suite *EngineSuite) TestFloatDivisionByZero() {
	suite.eval(`print(1 / 0, -1 / 0, 7 / 2)`)
	suite.Equal("inf\t-inf\t3.5\n", suite.stdout.String())
}

func (suite *EngineSuite) TestStringCoercion() {
	results := suite.eval(`return "10" + 5, 1 .. 2`)
	suite.Equal([]value.Value{value.NewNumber(15), value.NewString("12")}, results)
}

func (suite *EngineSuite) TestStringMethods() {
	results := suite.eval(`
local s = "hello"
return s:upper(), ("abc"):len(), s:sub(2, 3)
`)
	suite.Equal([]value.Value{value.NewString("HELLO"), value.NewNumber(3), value.NewString("el")}, results)
}

func (suite *EngineSuite) TestMetatableIndex() {
	results := suite.eval(`
local defaults = {color = "red"}
local t = setmetatable({}, {__index = defaults})
return t.color, rawget(t, "color")
`)
	suite.Equal([]value.Value{value.NewString("red"), value.Nil}, results)
}

func (suite *EngineSuite) TestMetatableIndexFunction() {
	results := suite.eval(`
local t = setmetatable({}, {__index = function(t, k) return k .. "!" end})
return t.hey
`)
	suite.Equal([]value.Value{value.NewString("hey!")}, results)
}

func (suite *EngineSuite) TestMetatableCallAndTostring() {
	results := suite.eval(`
local mt = {
	__call = function(self, x) return x * 2 end,
	__tostring = function() return "custom" end,
}
local obj = setmetatable({}, mt)
return obj(21), tostring(obj), getmetatable(obj) == mt
`)
	suite.Equal([]value.Value{value.NewNumber(42), value.NewString("custom"), value.True}, results)
}

func (suite *EngineSuite) TestMetatableNewindex() {
	results := suite.eval(`
local t = setmetatable({}, {__newindex = function(t, k, v) rawset(t, k, v * 10) end})
t.a = 1
t.a = 2
return t.a
`)
	// the second assignment finds the existing key and bypasses __newindex
	suite.Equal([]value.Value{value.NewNumber(2)}, results)
}

func (suite *EngineSuite) TestIndexChainLoop() {
	err := suite.evalErr(`
local t = {}
setmetatable(t, {__index = t})
return t.x
`)
	suite.Equal("'__index' chain too long; possible loop", err.Message)
}

func (suite *EngineSuite) TestPcallWithValue() {
	results := suite.eval(`
local ok, err = pcall(error, {code = 1})
return ok, err.code
`)
	suite.Equal([]value.Value{value.False, value.NewNumber(1)}, results)
}

func (suite *EngineSuite) TestPcallRuntimeError() {
	results := suite.eval(`
local ok, msg = pcall(function()
	local x = nil
	return x.y
end)
return ok, msg
`)
	suite.Equal([]value.Value{value.False, value.NewString("attempt to index a nil value (local 'x')")}, results)
	suite.Zero(suite.engine.Stack().Top())
}

func (suite *EngineSuite) TestPcallSuccess() {
	results := suite.eval(`return pcall(function(a, b) return a + b end, 1, 2)`)
	suite.Equal([]value.Value{value.True, value.NewNumber(3)}, results)
}

func (suite *EngineSuite) TestEngineUsableAfterError() {
	suite.evalErr(`local t = {1, 2}; error("boom")`)
	suite.Zero(suite.engine.Stack().Top())

	results := suite.eval(`return 1`)
	suite.Equal([]value.Value{value.NewNumber(1)}, results)
}

func (suite *EngineSuite) TestStatePersistsAcrossEvals() {
	suite.eval(`counter = 1`)
	suite.eval(`counter = counter + 1`)
	results := suite.eval(`return counter`)
	suite.Equal([]value.Value{value.NewNumber(2)}, results)
}

func (suite *EngineSuite) TestSyntaxErrorLeavesStateUnaffected() {
	suite.eval(`x = 1`)
	_, err := suite.engine.Eval(strings.NewReader(`x = 2 if`))
	suite.Require().Error(err)
	suite.IsType(&parser.SyntaxError{}, err)

	results := suite.eval(`return x`)
	suite.Equal([]value.Value{value.NewNumber(1)}, results)
}

func (suite *EngineSuite) TestRegister() {
	var got []value.Value
	suite.engine.Register("capture", func(args ...value.Value) ([]value.Value, error) {
		got = args
		return []value.Value{value.NewString("ok")}, nil
	})
	results := suite.eval(`return capture(1, "two", nil)`)
	suite.Equal([]value.Value{value.NewString("ok")}, results)
	suite.Equal([]value.Value{value.NewNumber(1), value.NewString("two"), value.Nil}, got)
}

func (suite *EngineSuite) TestMethodDeclaration() {
	results := suite.eval(`
local Account = {balance = 0}
function Account:deposit(v)
	self.balance = self.balance + v
	return self.balance
end
Account:deposit(10)
return Account.deposit(Account, 5)
`)
	suite.Equal([]value.Value{value.NewNumber(15)}, results)
}

func (suite *EngineSuite) TestRepeatSeesBodyLocals() {
	results := suite.eval(`
local i = 0
repeat
	local done = i >= 3
	i = i + 1
until done
return i
`)
	suite.Equal([]value.Value{value.NewNumber(4)}, results)
}

func (suite *EngineSuite) TestBitwise() {
	results := suite.eval(`return 5 & 3, 5 | 3, 5 ~ 3, ~0, 1 << 4, 256 >> 4`)
	suite.Equal([]value.Value{
		value.NewNumber(1), value.NewNumber(7), value.NewNumber(6),
		value.NewNumber(-1), value.NewNumber(16), value.NewNumber(16),
	}, results)
}

func (suite *EngineSuite) TestModulo() {
	results := suite.eval(`return 5 % 3, -5 % 3, 5 % -3, 5.5 % 2`)
	suite.Equal([]value.Value{
		value.NewNumber(2), value.NewNumber(1), value.NewNumber(-1), value.NewNumber(1.5),
	}, results)
}

func (suite *EngineSuite) TestLogicalOperators() {
	results := suite.eval(`return nil or "default", false and error("never"), 1 and 2, not nil`)
	suite.Equal([]value.Value{value.NewString("default"), value.False, value.NewNumber(2), value.True}, results)
}
