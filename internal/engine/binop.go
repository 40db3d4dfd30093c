package engine

import (
	"fmt"
	"math"
	"strings"

	. "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

// operandError is an error caused by one operand of an operator. The
// evaluator completes the message with the name of the operand.
type operandError struct {
	msg   string
	right bool
}

func (e *operandError) Error() string { return e.msg }

func (e *Engine) binop(op string, left, right Value) (Value, error) {
	switch op {
	case "+", "-", "*", "/", "//", "%", "^":
		return e.arithmetic(op, left, right)
	case "&", "|", "~", "<<", ">>":
		return e.bitwise(op, left, right)
	case "..":
		return e.concatenation(left, right)
	case "==":
		return Boolean(e.equal(left, right)), nil
	case "~=":
		return Boolean(!e.equal(left, right)), nil
	case "<":
		return e.compare(left, right, false, false)
	case "<=":
		return e.compare(left, right, true, false)
	case ">":
		return e.compare(right, left, false, true)
	case ">=":
		return e.compare(right, left, true, true)
	}
	return nil, fmt.Errorf("unsupported binary operator '%s'", op)
}

func (e *Engine) arithmetic(op string, left, right Value) (Value, error) {
	l, ok := ToNumber(left)
	if !ok {
		return nil, &operandError{msg: fmt.Sprintf("attempt to perform arithmetic on a %s value", OrNil(left).Type())}
	}
	r, ok := ToNumber(right)
	if !ok {
		return nil, &operandError{msg: fmt.Sprintf("attempt to perform arithmetic on a %s value", OrNil(right).Type()), right: true}
	}

	a, b := float64(l), float64(r)
	switch op {
	case "+":
		return Number(a + b), nil
	case "-":
		return Number(a - b), nil
	case "*":
		return Number(a * b), nil
	case "/":
		return Number(a / b), nil
	case "//":
		if b == 0 && l.IsInteger() && r.IsInteger() {
			return nil, e.runtimeErrorf("attempt to perform 'n//0'")
		}
		return Number(math.Floor(a / b)), nil
	case "%":
		if b == 0 && l.IsInteger() && r.IsInteger() {
			return nil, e.runtimeErrorf("attempt to perform 'n%%%%0'")
		}
		return Number(modulo(a, b)), nil
	case "^":
		return Number(math.Pow(a, b)), nil
	}
	return nil, fmt.Errorf("unsupported arithmetic operator '%s'", op)
}

// modulo is Lua's modulo, the result has the sign of the divisor.
func modulo(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func (e *Engine) bitwise(op string, left, right Value) (Value, error) {
	l, err := toInteger(left, false)
	if err != nil {
		return nil, err
	}
	r, err := toInteger(right, true)
	if err != nil {
		return nil, err
	}

	var result int64
	switch op {
	case "&":
		result = l & r
	case "|":
		result = l | r
	case "~":
		result = l ^ r
	case "<<":
		result = shiftLeft(l, r)
	case ">>":
		result = shiftLeft(l, -r)
	}
	return Number(float64(result)), nil
}

// shiftLeft is a logical shift, negative n shifts right.
func shiftLeft(x, n int64) int64 {
	switch {
	case n <= -64 || n >= 64:
		return 0
	case n >= 0:
		return int64(uint64(x) << uint(n))
	}
	return int64(uint64(x) >> uint(-n))
}

func toInteger(v Value, right bool) (int64, error) {
	n, ok := ToNumber(v)
	if !ok {
		return 0, &operandError{msg: fmt.Sprintf("attempt to perform bitwise operation on a %s value", OrNil(v).Type()), right: right}
	}
	if !n.IsInteger() {
		return 0, &operandError{msg: "number has no integer representation", right: right}
	}
	return int64(n), nil
}

func (e *Engine) concatenation(left, right Value) (Value, error) {
	l, ok := ToString(left)
	if !ok {
		return nil, &operandError{msg: fmt.Sprintf("attempt to concatenate a %s value", OrNil(left).Type())}
	}
	r, ok := ToString(right)
	if !ok {
		return nil, &operandError{msg: fmt.Sprintf("attempt to concatenate a %s value", OrNil(right).Type()), right: true}
	}

	var sb strings.Builder
	sb.Grow(len(l) + len(r))
	sb.WriteString(l)
	sb.WriteString(r)
	return String(sb.String()), nil
}
