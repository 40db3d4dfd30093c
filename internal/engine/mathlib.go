package engine

import (
	"math"
	"time"

	. "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

func (e *Engine) mathLib() *Table {
	lib := library("math", map[string]LuaFn{
		"abs":       mathFn("abs", math.Abs),
		"ceil":      mathFn("ceil", math.Ceil),
		"floor":     mathFn("floor", math.Floor),
		"fmod":      e.mathFmod,
		"max":       e.mathMax,
		"min":       e.mathMin,
		"sqrt":      mathFn("sqrt", math.Sqrt),
		"tointeger": e.mathToInteger,
		"type":      e.mathType,
	})
	lib.SetString("huge", NewNumber(math.Inf(1)))
	lib.SetString("pi", NewNumber(math.Pi))
	return lib
}

func mathFn(name string, fn func(float64) float64) LuaFn {
	return func(args ...Value) ([]Value, error) {
		n, err := checkNumber(args, 0, name)
		if err != nil {
			return nil, err
		}
		return values(NewNumber(fn(float64(n)))), nil
	}
}

func (e *Engine) mathFmod(args ...Value) ([]Value, error) {
	a, err := checkNumber(args, 0, "fmod")
	if err != nil {
		return nil, err
	}
	b, err := checkNumber(args, 1, "fmod")
	if err != nil {
		return nil, err
	}
	if b == 0 && a.IsInteger() && b.IsInteger() {
		return nil, argError(2, "fmod", "zero")
	}
	return values(NewNumber(math.Mod(float64(a), float64(b)))), nil
}

func (e *Engine) mathMax(args ...Value) ([]Value, error) {
	return e.extremum("max", args, func(a, b Number) bool { return a > b })
}

func (e *Engine) mathMin(args ...Value) ([]Value, error) {
	return e.extremum("min", args, func(a, b Number) bool { return a < b })
}

func (e *Engine) extremum(name string, args []Value, better func(a, b Number) bool) ([]Value, error) {
	result, err := checkNumber(args, 0, name)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(args); i++ {
		n, err := checkNumber(args, i, name)
		if err != nil {
			return nil, err
		}
		if better(n, result) {
			result = n
		}
	}
	return values(result), nil
}

func (e *Engine) mathToInteger(args ...Value) ([]Value, error) {
	if n, ok := arg(args, 0).(Number); ok && n.IsInteger() {
		return values(n), nil
	}
	return values(Nil), nil
}

func (e *Engine) mathType(args ...Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, argError(1, "type", "value expected")
	}
	n, ok := args[0].(Number)
	switch {
	case !ok:
		return values(Nil), nil
	case n.IsInteger():
		return values(NewString("integer")), nil
	}
	return values(NewString("float")), nil
}

func (e *Engine) osLib() *Table {
	return library("os", map[string]LuaFn{
		"clock": e.osClock,
		"time":  e.osTime,
	})
}

// osClock returns the seconds elapsed since the engine was created.
func (e *Engine) osClock(...Value) ([]Value, error) {
	return values(NewNumber(e.clock.Now().Sub(e.start).Seconds())), nil
}

func (e *Engine) osTime(args ...Value) ([]Value, error) {
	if arg(args, 0) == Nil {
		return values(NewNumber(float64(e.clock.Now().Unix()))), nil
	}
	t, err := checkTable(args, 0, "time")
	if err != nil {
		return nil, err
	}

	field := func(name string, def int) (int, error) {
		v := t.GetString(name)
		if v == Nil {
			if def < 0 {
				return 0, e.runtimeErrorf("field '%s' missing in date table", name)
			}
			return def, nil
		}
		n, ok := ToNumber(v)
		if !ok || !n.IsInteger() {
			return 0, e.runtimeErrorf("field '%s' is not an integer", name)
		}
		return int(n), nil
	}

	var parts [6]int
	for i, f := range []struct {
		name string
		def  int
	}{{"year", -1}, {"month", -1}, {"day", -1}, {"hour", 12}, {"min", 0}, {"sec", 0}} {
		if parts[i], err = field(f.name, f.def); err != nil {
			return nil, err
		}
	}
	date := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.Local)
	return values(NewNumber(float64(date.Unix()))), nil
}
