package engine

import (
	"fmt"

	. "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

func (e *Engine) unop(op string, val Value) (Value, error) {
	switch op {
	case "-":
		n, ok := ToNumber(val)
		if !ok {
			return nil, &operandError{msg: fmt.Sprintf("attempt to perform arithmetic on a %s value", OrNil(val).Type())}
		}
		return -n, nil
	case "not":
		return Boolean(!Truthy(val)), nil
	case "#":
		return e.length(val)
	case "~":
		return e.bitwiseNot(val)
	}
	return nil, fmt.Errorf("unsupported unary operator '%s'", op)
}

func (e *Engine) length(val Value) (Value, error) {
	if s, ok := val.(String); ok {
		return s.Len(), nil
	}

	// not a string, attempt metamethod
	if metaMethod := e.metaField(val, "__len"); metaMethod != Nil {
		results, err := e.callValue(metaMethod, values(val), "__len")
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return Nil, nil
		}
		return results[0], nil
	}

	// no metamethod, check if it's a table
	if t, ok := val.(*Table); ok {
		return NewNumber(float64(t.Length())), nil
	}

	return nil, &operandError{msg: fmt.Sprintf("attempt to get length of a %s value", OrNil(val).Type())}
}

func (e *Engine) bitwiseNot(val Value) (Value, error) {
	n, err := toInteger(val, false)
	if err != nil {
		return nil, err
	}
	return NewNumber(float64(^n)), nil
}
