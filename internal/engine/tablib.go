package engine

import (
	"strings"

	. "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

func (e *Engine) tableLib() *Table {
	return library("table", map[string]LuaFn{
		"concat": e.tableConcat,
		"insert": e.tableInsert,
		"remove": e.tableRemove,
		"unpack": e.tableUnpack,
	})
}

func (e *Engine) tableInsert(args ...Value) ([]Value, error) {
	t, err := checkTable(args, 0, "insert")
	if err != nil {
		return nil, err
	}
	n := t.Length()
	switch len(args) {
	case 2:
		t.Append(args[1])
	case 3:
		pos, err := checkInteger(args, 1, "insert")
		if err != nil {
			return nil, err
		}
		if pos < 1 || pos > n+1 {
			return nil, argError(2, "insert", "position out of bounds")
		}
		t.Insert(pos, args[2])
	default:
		return nil, e.runtimeErrorf("wrong number of arguments to 'insert'")
	}
	return nil, nil
}

func (e *Engine) tableRemove(args ...Value) ([]Value, error) {
	t, err := checkTable(args, 0, "remove")
	if err != nil {
		return nil, err
	}
	n := t.Length()
	pos, err := optInteger(args, 1, "remove", n)
	if err != nil {
		return nil, err
	}
	if pos != n && (pos < 1 || pos > n+1) {
		return nil, argError(2, "remove", "position out of bounds")
	}
	if pos < 1 || pos > n {
		v, _ := t.Get(NewNumber(float64(pos)))
		t.Set(NewNumber(float64(pos)), Nil)
		return values(v), nil
	}
	return values(t.Remove(pos)), nil
}

func (e *Engine) tableConcat(args ...Value) ([]Value, error) {
	t, err := checkTable(args, 0, "concat")
	if err != nil {
		return nil, err
	}
	sep := ""
	if arg(args, 1) != Nil {
		if sep, err = checkString(args, 1, "concat"); err != nil {
			return nil, err
		}
	}
	i, err := optInteger(args, 2, "concat", 1)
	if err != nil {
		return nil, err
	}
	j, err := optInteger(args, 3, "concat", t.Length())
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, max(j-i+1, 0))
	for k := i; k <= j; k++ {
		v, _ := t.Get(NewNumber(float64(k)))
		s, ok := ToString(OrNil(v))
		if !ok {
			return nil, e.runtimeErrorf("invalid value (at index %d) in table for 'concat'", k)
		}
		parts = append(parts, s)
	}
	return values(NewString(strings.Join(parts, sep))), nil
}

func (e *Engine) tableUnpack(args ...Value) ([]Value, error) {
	t, err := checkTable(args, 0, "unpack")
	if err != nil {
		return nil, err
	}
	i, err := optInteger(args, 1, "unpack", 1)
	if err != nil {
		return nil, err
	}
	j, err := optInteger(args, 2, "unpack", t.Length())
	if err != nil {
		return nil, err
	}
	var result []Value
	for k := i; k <= j; k++ {
		v, _ := t.Get(NewNumber(float64(k)))
		result = append(result, OrNil(v))
	}
	return result, nil
}
