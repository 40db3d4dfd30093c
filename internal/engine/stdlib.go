package engine

import (
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	. "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/parser"
)

func (e *Engine) initStdlib() {
	register := func(fn *Function) {
		e._G.SetString(fn.Name, fn)
	}
	e._G.SetString("_G", e._G)
	e._G.SetString("_VERSION", NewString("Lua 5.3"))
	register(NewFunction("assert", e.assert))
	register(NewFunction("collectgarbage", e.collectgarbage))
	register(NewFunction("dofile", e.dofile))
	register(NewFunction("error", e.error))
	register(NewFunction("getmetatable", e.getmetatable))
	register(NewFunction("ipairs", e.ipairs))
	register(NewFunction("next", e.next))
	register(NewFunction("pairs", e.pairs))
	register(NewFunction("pcall", e.pcall))
	register(NewFunction("print", e.print))
	register(NewFunction("rawequal", e.rawequal))
	register(NewFunction("rawget", e.rawget))
	register(NewFunction("rawlen", e.rawlen))
	register(NewFunction("rawset", e.rawset))
	register(NewFunction("select", e.select_))
	register(NewFunction("setmetatable", e.setmetatable))
	register(NewFunction("tonumber", e.tonumber))
	register(NewFunction("tostring", e.tostring_))
	register(NewFunction("type", e.type_))
	register(NewFunction("unpack", e.tableUnpack))

	e._G.SetString("string", e.stringLib())
	e._G.SetString("table", e.tableLib())
	e._G.SetString("math", e.mathLib())
	e._G.SetString("os", e.osLib())

	e.initMetatables()
}

// library creates a table of native functions, named "lib.name".
func library(lib string, fns map[string]LuaFn) *Table {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)

	t := NewTable()
	for _, name := range names {
		t.SetString(name, NewFunction(lib+"."+name, fns[name]))
	}
	return t
}

func (e *Engine) assert(args ...Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, argError(1, "assert", "value expected")
	}
	if !Truthy(args[0]) {
		if len(args) > 1 {
			return nil, e.raise(args[1])
		}
		return nil, e.raise(NewString("assertion failed!"))
	}
	return args, nil
}

func (e *Engine) collectgarbage(args ...Value) ([]Value, error) {
	opt := "collect"
	if len(args) > 0 {
		s, err := checkString(args, 0, "collectgarbage")
		if err != nil {
			return nil, err
		}
		opt = s
	}
	switch opt {
	case "collect", "step":
		runtime.GC()
		return values(NewNumber(0)), nil
	case "count":
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return values(NewNumber(float64(m.HeapAlloc) / 1024)), nil
	case "isrunning":
		return values(True), nil
	}
	return nil, argError(1, "collectgarbage", fmt.Sprintf("invalid option '%s'", opt))
}

func (e *Engine) dofile(args ...Value) ([]Value, error) {
	if len(args) == 0 || args[0] == Nil {
		// evaluate stdin if no args are given
		source, err := io.ReadAll(e.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return e.doString("stdin", string(source))
	}

	filename, err := checkString(args, 0, "dofile")
	if err != nil {
		return nil, err
	}
	e.logger.Debug("dofile", "file", filename)
	source, err := afero.ReadFile(e.fs, filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s", filename)
	}
	return e.doString(filename, string(source))
}

// doString parses and evaluates source as a nested chunk. Syntax errors
// become runtime errors of the caller.
func (e *Engine) doString(name, source string) ([]Value, error) {
	chunk, err := parser.ParseString(name, source)
	if err != nil {
		var serr *parser.SyntaxError
		if errors.As(err, &serr) {
			return nil, e.runtimeErrorf("%s: %s", name, serr.Message)
		}
		return nil, err
	}
	return e.evaluateChunk(chunk)
}

func (e *Engine) error(args ...Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, e.raise(Nil)
	}
	return nil, e.raise(args[0])
}

// raise creates the error that error(v) raises.
func (e *Engine) raise(v Value) *RuntimeError {
	msg, ok := ToString(v)
	if !ok {
		if v == Nil {
			msg = "nil"
		} else {
			msg = fmt.Sprintf("(error object is a %s value)", v.Type())
		}
	}
	return e.newRuntimeError(msg, v, nil)
}

func (e *Engine) getmetatable(args ...Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, argError(1, "getmetatable", "value expected")
	}
	if mt := e.getMetatable(args[0]); mt != nil {
		return values(mt), nil
	}
	return values(Nil), nil
}

func (e *Engine) setmetatable(args ...Value) ([]Value, error) {
	t, err := checkTable(args, 0, "setmetatable")
	if err != nil {
		return nil, err
	}
	mt := arg(args, 1)
	switch {
	case mt == Nil:
		t.Metatable = nil
	case mt.Type() == TypeTable:
		t.Metatable = mt.(*Table)
	default:
		return nil, argError(2, "setmetatable", "nil or table expected")
	}
	return values(t), nil
}

func (e *Engine) next(args ...Value) ([]Value, error) {
	t, err := checkTable(args, 0, "next")
	if err != nil {
		return nil, err
	}
	k, v, ok := t.Next(arg(args, 1))
	if !ok {
		return nil, e.runtimeErrorf("invalid key to 'next'")
	}
	if k == Nil {
		return values(Nil), nil
	}
	return values(k, v), nil
}

func (e *Engine) pairs(args ...Value) ([]Value, error) {
	t, err := checkTable(args, 0, "pairs")
	if err != nil {
		return nil, err
	}
	return values(e._G.GetString("next"), t, Nil), nil
}

func (e *Engine) ipairs(args ...Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, argError(1, "ipairs", "table expected, got no value")
	}
	iterator := NewFunction("ipairs_iterator", func(args ...Value) ([]Value, error) {
		n, ok := arg(args, 1).(Number)
		if !ok {
			return values(Nil), nil
		}
		i := n + 1
		v, err := e.index(arg(args, 0), i)
		if err != nil {
			return nil, err
		}
		if v == Nil {
			return values(Nil), nil
		}
		return values(i, v), nil
	})
	return values(iterator, args[0], NewNumber(0)), nil
}

func (e *Engine) pcall(args ...Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, argError(1, "pcall", "value expected")
	}
	results, err := e.callValue(args[0], args[1:], "")
	if err != nil {
		rerr := e.asRuntimeError(err)
		e.logger.Debug("pcall caught error", "error", rerr.Message, "line", rerr.Line)
		val := rerr.Value
		if val == nil {
			val = NewString(rerr.Message)
		}
		return values(False, val), nil
	}
	return append(values(True), results...), nil
}

func (e *Engine) print(args ...Value) ([]Value, error) {
	var sb strings.Builder
	for i := 0; i < len(args); i++ {
		if i != 0 {
			sb.WriteByte('\t')
		}
		s, err := e.tostring(args[i])
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}
	sb.WriteByte('\n')
	_, _ = io.WriteString(e.stdout, sb.String())
	return nil, nil
}

func (e *Engine) rawequal(args ...Value) ([]Value, error) {
	if len(args) < 2 {
		return nil, argError(len(args)+1, "rawequal", "value expected")
	}
	return values(Boolean(e.equal(args[0], args[1]))), nil
}

func (e *Engine) rawget(args ...Value) ([]Value, error) {
	t, err := checkTable(args, 0, "rawget")
	if err != nil {
		return nil, err
	}
	v, _ := t.Get(arg(args, 1))
	return values(v), nil
}

func (e *Engine) rawset(args ...Value) ([]Value, error) {
	t, err := checkTable(args, 0, "rawset")
	if err != nil {
		return nil, err
	}
	key := arg(args, 1)
	if err := e.checkKey(key); err != nil {
		return nil, err
	}
	t.Set(key, arg(args, 2))
	return values(t), nil
}

func (e *Engine) rawlen(args ...Value) ([]Value, error) {
	switch v := arg(args, 0).(type) {
	case *Table:
		return values(NewNumber(float64(v.Length()))), nil
	case String:
		return values(NewNumber(float64(len(v)))), nil
	}
	return nil, argError(1, "rawlen", "table or string expected")
}

func (e *Engine) select_(args ...Value) ([]Value, error) {
	if s, ok := arg(args, 0).(String); ok && s == "#" {
		return values(NewNumber(float64(len(args) - 1))), nil
	}
	n, err := checkInteger(args, 0, "select")
	if err != nil {
		return nil, err
	}
	rest := args[1:]
	switch {
	case n < 0:
		n = len(rest) + n
		if n < 0 {
			return nil, argError(1, "select", "index out of range")
		}
	case n == 0:
		return nil, argError(1, "select", "index out of range")
	default:
		n--
	}
	if n >= len(rest) {
		return nil, nil
	}
	return rest[n:], nil
}

func (e *Engine) tonumber(args ...Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, argError(1, "tonumber", "value expected")
	}
	if len(args) < 2 || args[1] == Nil {
		if n, ok := ToNumber(args[0]); ok {
			return values(n), nil
		}
		return values(Nil), nil
	}

	base, err := checkInteger(args, 1, "tonumber")
	if err != nil {
		return nil, err
	}
	if base < 2 || base > 36 {
		return nil, argError(2, "tonumber", "base out of range")
	}
	s, err := checkString(args, 0, "tonumber")
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseInt(strings.ToLower(strings.TrimSpace(s)), base, 64)
	if err != nil {
		return values(Nil), nil
	}
	return values(NewNumber(float64(n))), nil
}

func (e *Engine) tostring_(args ...Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, argError(1, "tostring", "value expected")
	}
	s, err := e.tostring(args[0])
	if err != nil {
		return nil, err
	}
	return values(NewString(s)), nil
}

func (e *Engine) type_(args ...Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, argError(1, "type", "value expected")
	}
	return values(NewString(OrNil(args[0]).Type().String())), nil
}

func argError(n int, fname, msg string) error {
	return fmt.Errorf("bad argument #%d to '%s' (%s)", n, fname, msg)
}

func typeError(args []Value, i int, fname, expected string) error {
	got := "no value"
	if i < len(args) {
		got = OrNil(args[i]).Type().String()
	}
	return argError(i+1, fname, fmt.Sprintf("%s expected, got %s", expected, got))
}

// arg returns the i-th argument, or Nil if there are not enough.
func arg(args []Value, i int) Value {
	if i < len(args) {
		return OrNil(args[i])
	}
	return Nil
}

func checkTable(args []Value, i int, fname string) (*Table, error) {
	if t, ok := arg(args, i).(*Table); ok {
		return t, nil
	}
	return nil, typeError(args, i, fname, "table")
}

func checkNumber(args []Value, i int, fname string) (Number, error) {
	if n, ok := ToNumber(arg(args, i)); ok {
		return n, nil
	}
	return 0, typeError(args, i, fname, "number")
}

func checkInteger(args []Value, i int, fname string) (int, error) {
	n, err := checkNumber(args, i, fname)
	if err != nil {
		return 0, err
	}
	if !n.IsInteger() || n < math.MinInt64 || n >= math.MaxInt64 {
		return 0, argError(i+1, fname, "number has no integer representation")
	}
	return int(n), nil
}

func optInteger(args []Value, i int, fname string, def int) (int, error) {
	if arg(args, i) == Nil {
		return def, nil
	}
	return checkInteger(args, i, fname)
}

func checkString(args []Value, i int, fname string) (string, error) {
	if s, ok := ToString(arg(args, i)); ok {
		return s, nil
	}
	return "", typeError(args, i, fname, "string")
}
