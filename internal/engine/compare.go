package engine

import (
	. "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

// equal is raw equality. Numbers and strings compare by value, tables,
// functions and userdata by reference.
func (e *Engine) equal(left, right Value) bool {
	return OrNil(left) == OrNil(right)
}

// compare evaluates left < right, or left <= right if orEqual is set.
// swapped reports that the operands were swapped for > and >=, so that an
// error names the right operand.
func (e *Engine) compare(left, right Value, orEqual, swapped bool) (Value, error) {
	switch l := left.(type) {
	case Number:
		if r, ok := right.(Number); ok {
			if orEqual {
				return Boolean(l <= r), nil
			}
			return Boolean(l < r), nil
		}
	case String:
		if r, ok := right.(String); ok {
			if orEqual {
				return Boolean(l <= r), nil
			}
			return Boolean(l < r), nil
		}
	}

	lt, rt := OrNil(left).Type(), OrNil(right).Type()
	if swapped {
		lt, rt = rt, lt
	}
	if lt == rt {
		return nil, e.runtimeErrorf("attempt to compare two %s values", lt)
	}
	return nil, e.runtimeErrorf("attempt to compare %s with %s", lt, rt)
}
