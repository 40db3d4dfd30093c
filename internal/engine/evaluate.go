package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/ast"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/token"
)

// flow tells the enclosing construct how execution continues after a
// statement.
type flow uint8

const (
	flowNormal flow = iota
	flowBreak
	flowReturn
)

// evaluateChunk runs a chunk as a vararg function without arguments.
// It returns the values of a top-level return, or the results of the last
// statement if that is a function call.
func (e *Engine) evaluateChunk(chunk ast.Chunk, args ...value.Value) (results []value.Value, err error) {
	if ok := e.calls.Push(StackFrame{Name: chunk.Name}); !ok {
		return nil, e.runtimeErrorf("stack overflow")
	}
	savedScope := e.currentScope
	base := e.stack.Top()
	e.stack.Lock(base)
	defer func() {
		e.stack.Unlock()
		e.stack.SetTop(base)
		e.currentScope = savedScope
		e.calls.Pop()
	}()

	e.currentScope = newFunctionScope(nil, args)
	_, results, err = e.evaluateBlock(chunk.Block)
	if err != nil {
		return nil, e.asRuntimeError(err)
	}
	return results, nil
}

func (e *Engine) evaluateBlock(block ast.Block) (flow, []value.Value, error) {
	defer e.leaveScope(e.enterNewScope())

	return e.evaluateStatements(block)
}

// evaluateStatements runs the statements of a block in the current scope.
// If the block completes normally, the results of its last statement are
// returned, which are only non-nil for function calls.
func (e *Engine) evaluateStatements(block ast.Block) (flow, []value.Value, error) {
	var last []value.Value
	trace := e.logger.Enabled(context.Background(), LevelTrace)
	for _, stmt := range block {
		if trace {
			e.logger.Log(context.Background(), LevelTrace, "evaluate statement", "type", fmt.Sprintf("%T", stmt), "line", e.calls.Line())
		}
		fl, results, err := e.evaluateStatement(stmt)
		if err != nil {
			return flowNormal, nil, err
		}
		if fl != flowNormal {
			return fl, results, nil
		}
		last = results
	}
	return flowNormal, last, nil
}

func (e *Engine) evaluateStatement(stmt ast.Statement) (flow, []value.Value, error) {
	switch s := stmt.(type) {
	case ast.Assignment:
		return flowNormal, nil, e.evaluateAssignment(s)
	case ast.Local:
		return flowNormal, nil, e.evaluateLocal(s)
	case ast.FunctionCall:
		results, err := e.evaluateCall(s.Call)
		return flowNormal, results, err
	case ast.Function:
		return flowNormal, nil, e.evaluateFunction(s)
	case ast.LocalFunction:
		return flowNormal, nil, e.evaluateLocalFunction(s)
	case ast.IfBlock:
		return e.evaluateIfBlock(s)
	case ast.DoBlock:
		return e.evaluateBlock(s.Do)
	case ast.WhileBlock:
		return e.evaluateWhileBlock(s)
	case ast.RepeatBlock:
		return e.evaluateRepeatBlock(s)
	case ast.ForBlock:
		return e.evaluateForBlock(s)
	case ast.ForInBlock:
		return e.evaluateForInBlock(s)
	case ast.Break:
		e.calls.SetLine(s.Line)
		return flowBreak, nil, nil
	case ast.LastStatement:
		results, err := e.evaluateExpList(s.ExpList)
		if err != nil {
			return flowNormal, nil, err
		}
		return flowReturn, results, nil
	}
	return flowNormal, nil, fmt.Errorf("%T unsupported", stmt)
}

func (e *Engine) evaluateIfBlock(block ast.IfBlock) (flow, []value.Value, error) {
	// if
	cond, err := e.evaluateSingle(block.If)
	if err != nil {
		return flowNormal, nil, err
	}
	if value.Truthy(cond) {
		return e.evaluateBlock(block.Then)
	}

	// elseif (all of them)
	for _, elseIf := range block.ElseIf {
		cond, err := e.evaluateSingle(elseIf.If)
		if err != nil {
			return flowNormal, nil, err
		}
		if value.Truthy(cond) {
			return e.evaluateBlock(elseIf.Then)
		}
	}

	// else
	if block.Else != nil {
		return e.evaluateBlock(block.Else)
	}
	return flowNormal, nil, nil
}

func (e *Engine) evaluateWhileBlock(block ast.WhileBlock) (flow, []value.Value, error) {
	for {
		cond, err := e.evaluateSingle(block.While)
		if err != nil {
			return flowNormal, nil, err
		}
		if !value.Truthy(cond) {
			return flowNormal, nil, nil
		}
		fl, results, err := e.evaluateBlock(block.Do)
		if err != nil {
			return flowNormal, nil, err
		}
		switch fl {
		case flowBreak:
			return flowNormal, nil, nil
		case flowReturn:
			return fl, results, nil
		}
	}
}

func (e *Engine) evaluateRepeatBlock(block ast.RepeatBlock) (flow, []value.Value, error) {
	// the condition can see the locals of the body, so both share one scope
	iteration := func() (bool, flow, []value.Value, error) {
		defer e.leaveScope(e.enterNewScope())

		fl, results, err := e.evaluateStatements(block.Repeat)
		if err != nil || fl != flowNormal {
			return true, fl, results, err
		}
		cond, err := e.evaluateSingle(block.Until)
		if err != nil {
			return true, flowNormal, nil, err
		}
		return value.Truthy(cond), flowNormal, nil, nil
	}

	for {
		done, fl, results, err := iteration()
		if err != nil {
			return flowNormal, nil, err
		}
		switch fl {
		case flowBreak:
			return flowNormal, nil, nil
		case flowReturn:
			return fl, results, nil
		}
		if done {
			return flowNormal, nil, nil
		}
	}
}

func (e *Engine) evaluateForBlock(block ast.ForBlock) (flow, []value.Value, error) {
	e.calls.SetLine(block.Name.Line())

	bound := func(exp ast.Exp, what string) (float64, error) {
		v, err := e.evaluateSingle(exp)
		if err != nil {
			return 0, err
		}
		n, ok := value.ToNumber(v)
		if !ok {
			return 0, e.runtimeErrorf("'for' %s must be a number", what)
		}
		return float64(n), nil
	}

	from, err := bound(block.From, "initial value")
	if err != nil {
		return flowNormal, nil, err
	}
	to, err := bound(block.To, "limit")
	if err != nil {
		return flowNormal, nil, err
	}
	step := 1.0
	if block.Step != nil {
		if step, err = bound(block.Step, "step"); err != nil {
			return flowNormal, nil, err
		}
	}
	if step == 0 {
		return flowNormal, nil, e.runtimeErrorf("'for' step is zero")
	}

	name := block.Name.Value()
	for i := from; (step > 0 && i <= to) || (step < 0 && i >= to); i += step {
		// every iteration gets a fresh variable, so that closures
		// capture the value of their iteration
		fl, results, err := e.evaluateLoopBody(block.Do, []string{name}, []value.Value{value.Number(i)})
		if err != nil {
			return flowNormal, nil, err
		}
		switch fl {
		case flowBreak:
			return flowNormal, nil, nil
		case flowReturn:
			return fl, results, nil
		}
	}
	return flowNormal, nil, nil
}

func (e *Engine) evaluateForInBlock(block ast.ForInBlock) (flow, []value.Value, error) {
	e.calls.SetLine(block.NameList[0].Line())

	base := e.stack.Top()
	if _, err := e.pushExpList(block.In); err != nil {
		e.stack.SetTop(base)
		return flowNormal, nil, err
	}
	e.stack.Adjust(base, 3)
	state := e.stack.PopOrdered(3)
	fn, s, control := state[0], state[1], state[2]

	names := make([]string, len(block.NameList))
	for i, tk := range block.NameList {
		names[i] = tk.Value()
	}

	for {
		results, err := e.callValue(fn, []value.Value{s, control}, "for iterator")
		if err != nil {
			return flowNormal, nil, err
		}
		if len(results) == 0 || results[0] == value.Nil {
			return flowNormal, nil, nil
		}
		control = results[0]

		fl, results, err := e.evaluateLoopBody(block.Do, names, results)
		if err != nil {
			return flowNormal, nil, err
		}
		switch fl {
		case flowBreak:
			return flowNormal, nil, nil
		case flowReturn:
			return fl, results, nil
		}
	}
}

// evaluateLoopBody runs one iteration of a for loop with the loop variables
// declared in a fresh scope.
func (e *Engine) evaluateLoopBody(body ast.Block, names []string, vals []value.Value) (flow, []value.Value, error) {
	defer e.leaveScope(e.enterNewScope())

	for i, name := range names {
		var v value.Value = value.Nil
		if i < len(vals) {
			v = vals[i]
		}
		e.assign(e.currentScope, name, v)
	}
	return e.evaluateBlock(body)
}

func (e *Engine) evaluateFunction(decl ast.Function) error {
	name := decl.FuncName
	fn := e.createClosure(name.String(), &decl.FuncBody)

	if len(name.Name1) == 1 && name.Name2 == nil {
		e.setVariable(name.Name1[0].Value(), fn)
		return nil
	}

	// a.b.c or a.b:c, index into the table up to the last name
	keys := name.Name1[1:]
	if name.Name2 != nil {
		keys = append(keys[:len(keys):len(keys)], name.Name2)
	}
	current := e.variable(name.Name1[0].Value())
	for _, key := range keys[:len(keys)-1] {
		next, err := e.index(current, value.String(key.Value()))
		if err != nil {
			return err
		}
		current = next
	}
	return e.setIndex(current, value.String(keys[len(keys)-1].Value()), fn)
}

func (e *Engine) evaluateLocalFunction(decl ast.LocalFunction) error {
	name := decl.Name.Value()
	// declare first, so that the function can call itself
	e.declareLocal(name)
	e.assign(e.currentScope, name, e.createClosure(name, &decl.FuncBody))
	return nil
}

func (e *Engine) evaluateLocal(local ast.Local) error {
	base := e.stack.Top()
	if _, err := e.pushExpList(local.ExpList); err != nil {
		e.stack.SetTop(base)
		return err
	}
	e.stack.Adjust(base, len(local.NameList))
	vals := e.stack.PopOrdered(len(local.NameList))

	names := make([]string, len(local.NameList))
	for i, name := range local.NameList {
		names[i] = name.Value()
	}
	e.declareLocal(names...)
	for i, name := range names {
		e.assign(e.currentScope, name, vals[i])
	}
	return nil
}

// evaluateAssignment evaluates all expressions first and then assigns them
// to the targets from left to right. Missing values are nil, extra values
// are discarded.
func (e *Engine) evaluateAssignment(assignment ast.Assignment) error {
	e.calls.SetLine(assignment.Line)

	base := e.stack.Top()
	if _, err := e.pushExpList(assignment.ExpList); err != nil {
		e.stack.SetTop(base)
		return err
	}
	e.stack.Adjust(base, len(assignment.VarList))
	vals := e.stack.PopOrdered(len(assignment.VarList))

	for i, target := range assignment.VarList {
		if err := e.assignTo(target, vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) assignTo(target ast.Exp, val value.Value) error {
	switch t := target.(type) {
	case ast.NameExp:
		e.setVariable(t.Name.Value(), val)
		return nil
	case ast.IndexExp:
		base := e.stack.Top()
		obj, err := e.evaluateSingle(t.Prefix)
		if err != nil {
			return err
		}
		key, err := e.evaluateSingle(t.Key)
		if err != nil {
			return err
		}
		// [obj key val] -> set -> [val] -> []
		e.stack.Push(obj)
		e.stack.Push(key)
		e.stack.Push(val)
		if err := e.setIndex(obj, key, val); err != nil {
			e.stack.SetTop(base)
			if errors.Is(err, errIndexNonTable) {
				return e.runtimeErrorf("attempt to index a %s value%s", obj.Type(), describe(t.Prefix, e))
			}
			return err
		}
		e.stack.ShiftLeft(2)
		_, err = e.stack.Pop()
		return err
	}
	return fmt.Errorf("cannot assign to %T", target)
}

// pushExpList pushes the values of an expression list onto the stack. All
// expressions but the last are truncated to one value. It returns the
// number of pushed values.
func (e *Engine) pushExpList(explist []ast.Exp) (int, error) {
	count := 0
	for i, exp := range explist {
		if i == len(explist)-1 {
			results, err := e.evaluateExpression(exp)
			if err != nil {
				return count, err
			}
			for _, v := range results {
				e.stack.Push(v)
			}
			count += len(results)
			break
		}
		v, err := e.evaluateSingle(exp)
		if err != nil {
			return count, err
		}
		e.stack.Push(v)
		count++
	}
	return count, nil
}

func (e *Engine) evaluateExpList(explist []ast.Exp) ([]value.Value, error) {
	base := e.stack.Top()
	n, err := e.pushExpList(explist)
	if err != nil {
		e.stack.SetTop(base)
		return nil, err
	}
	return e.stack.PopOrdered(n), nil
}

// evaluateSingle evaluates an expression truncated to exactly one value.
func (e *Engine) evaluateSingle(exp ast.Exp) (value.Value, error) {
	results, err := e.evaluateExpression(exp)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return value.Nil, nil
	}
	return value.OrNil(results[0]), nil
}

func (e *Engine) evaluateExpression(exp ast.Exp) ([]value.Value, error) {
	switch ex := exp.(type) {
	case ast.SimpleExp:
		if ex.Token.Is(token.Ellipsis) {
			return e.varargs(), nil
		}
		return values(e.evaluateSimpleExpression(ex)), nil
	case ast.NameExp:
		return values(e.variable(ex.Name.Value())), nil
	case ast.IndexExp:
		v, err := e.evaluateIndex(ex)
		if err != nil {
			return nil, err
		}
		return values(v), nil
	case ast.CallExp:
		return e.evaluateCall(ex)
	case ast.ParenExp:
		// parentheses truncate to one value
		v, err := e.evaluateSingle(ex.Exp)
		if err != nil {
			return nil, err
		}
		return values(v), nil
	case ast.FunctionExp:
		return values(e.createClosure("anonymous", &ex.FuncBody)), nil
	case ast.TableConstructor:
		t, err := e.evaluateTableConstructor(ex)
		if err != nil {
			return nil, err
		}
		return values(t), nil
	case ast.BinopExp:
		v, err := e.evaluateBinop(ex)
		if err != nil {
			return nil, err
		}
		return values(v), nil
	case ast.UnopExp:
		v, err := e.evaluateUnop(ex)
		if err != nil {
			return nil, err
		}
		return values(v), nil
	}
	return nil, fmt.Errorf("%T unsupported", exp)
}

func (e *Engine) evaluateSimpleExpression(exp ast.SimpleExp) value.Value {
	switch {
	case exp.Token.Is(token.Number):
		return value.Number(exp.Number)
	case exp.Token.Is(token.String), exp.Token.Is(token.Name):
		return value.String(exp.String)
	case exp.Token.Is(token.True):
		return value.True
	case exp.Token.Is(token.False):
		return value.False
	}
	return value.Nil
}

func (e *Engine) evaluateIndex(ex ast.IndexExp) (value.Value, error) {
	e.calls.SetLine(ex.Line)
	obj, err := e.evaluateSingle(ex.Prefix)
	if err != nil {
		return nil, err
	}
	key, err := e.evaluateSingle(ex.Key)
	if err != nil {
		return nil, err
	}
	v, err := e.index(obj, key)
	if errors.Is(err, errIndexNonTable) {
		return nil, e.runtimeErrorf("attempt to index a %s value%s", obj.Type(), describe(ex.Prefix, e))
	}
	return v, err
}

func (e *Engine) evaluateTableConstructor(ex ast.TableConstructor) (*value.Table, error) {
	t := value.NewTable()
	arrayIndex := 1
	for i, field := range ex.Fields {
		switch {
		case field.Positional():
			if i == len(ex.Fields)-1 && ast.IsMultiValued(field.RightExp) {
				results, err := e.evaluateExpression(field.RightExp)
				if err != nil {
					return nil, err
				}
				for _, v := range results {
					t.Set(value.Number(arrayIndex), v)
					arrayIndex++
				}
				continue
			}
			v, err := e.evaluateSingle(field.RightExp)
			if err != nil {
				return nil, err
			}
			t.Set(value.Number(arrayIndex), v)
			arrayIndex++
		case field.LeftName != nil:
			v, err := e.evaluateSingle(field.RightExp)
			if err != nil {
				return nil, err
			}
			t.SetString(field.LeftName.Value(), v)
		default:
			key, err := e.evaluateSingle(field.LeftExp)
			if err != nil {
				return nil, err
			}
			v, err := e.evaluateSingle(field.RightExp)
			if err != nil {
				return nil, err
			}
			if err := e.checkKey(key); err != nil {
				return nil, err
			}
			t.Set(key, v)
		}
	}
	return t, nil
}

func (e *Engine) evaluateBinop(ex ast.BinopExp) (value.Value, error) {
	op := ex.Binop.Value()

	left, err := e.evaluateSingle(ex.Left)
	if err != nil {
		return nil, err
	}
	// and and or short-circuit
	switch op {
	case "and":
		if !value.Truthy(left) {
			return left, nil
		}
		return e.evaluateSingle(ex.Right)
	case "or":
		if value.Truthy(left) {
			return left, nil
		}
		return e.evaluateSingle(ex.Right)
	}

	right, err := e.evaluateSingle(ex.Right)
	if err != nil {
		return nil, err
	}
	result, err := e.binop(op, left, right)
	if err != nil {
		var operr *operandError
		if errors.As(err, &operr) {
			operand := ex.Left
			if operr.right {
				operand = ex.Right
			}
			return nil, e.runtimeErrorf("%s%s", operr.msg, describe(operand, e))
		}
		return nil, err
	}
	return result, nil
}

func (e *Engine) evaluateUnop(ex ast.UnopExp) (value.Value, error) {
	operand, err := e.evaluateSingle(ex.Exp)
	if err != nil {
		return nil, err
	}
	result, err := e.unop(ex.Unop.Value(), operand)
	if err != nil {
		var operr *operandError
		if errors.As(err, &operr) {
			return nil, e.runtimeErrorf("%s%s", operr.msg, describe(ex.Exp, e))
		}
		return nil, err
	}
	return result, nil
}

// evaluateCall evaluates the callee and the arguments onto the stack, then
// pops the arguments as the frame of the call.
func (e *Engine) evaluateCall(call ast.CallExp) ([]value.Value, error) {
	e.calls.SetLine(call.Line)

	base := e.stack.Top()
	var fn value.Value
	if call.Method != nil {
		obj, err := e.evaluateSingle(call.Prefix)
		if err != nil {
			return nil, err
		}
		fn, err = e.index(obj, value.String(call.Method.Value()))
		if err != nil {
			if errors.Is(err, errIndexNonTable) {
				return nil, e.runtimeErrorf("attempt to index a %s value%s", obj.Type(), describe(call.Prefix, e))
			}
			return nil, err
		}
		e.stack.Push(obj)
	} else {
		var err error
		if fn, err = e.evaluateSingle(call.Prefix); err != nil {
			return nil, err
		}
	}

	if _, err := e.pushExpList(call.Args); err != nil {
		e.stack.SetTop(base)
		return nil, err
	}

	e.stack.Lock(base)
	args := e.stack.PopOrdered(e.stack.Visible())
	e.stack.Unlock()

	results, err := e.callValue(fn, args, describeCallee(call, e))
	e.calls.SetLine(call.Line)
	return results, err
}

// callValue calls fn, which is either a function or a value with a __call
// metamethod.
func (e *Engine) callValue(fn value.Value, args []value.Value, description string) ([]value.Value, error) {
	switch f := fn.(type) {
	case *value.Function:
		return e.call(f, args...)
	}
	if mm := e.metaField(fn, "__call"); mm != value.Nil {
		return e.callValue(mm, append([]value.Value{fn}, args...), description)
	}
	if description != "" {
		description = " (" + description + ")"
	}
	return nil, e.runtimeErrorf("attempt to call a %s value%s", value.OrNil(fn).Type(), description)
}

// call calls a function as a new frame on the call stack.
func (e *Engine) call(fn *value.Function, args ...value.Value) ([]value.Value, error) {
	frame := StackFrame{Name: fn.Name}
	if fn.Body != nil {
		frame.Line = fn.Body.Line
	}
	if ok := e.calls.Push(frame); !ok {
		return nil, e.runtimeErrorf("stack overflow")
	}
	defer e.calls.Pop()

	results, err := fn.Callable(args...)
	if err != nil {
		return nil, e.asRuntimeError(err)
	}
	return results, nil
}

// createClosure creates a scripted function that captures the current
// scope.
func (e *Engine) createClosure(name string, body *ast.FuncBody) *value.Function {
	captured := e.currentScope
	return value.NewClosure(name, body, func(args ...value.Value) ([]value.Value, error) {
		return e.invokeClosure(captured, body, args)
	})
}

func (e *Engine) invokeClosure(captured *Scope, body *ast.FuncBody, args []value.Value) ([]value.Value, error) {
	params := body.ParList.NameList

	var varargs []value.Value
	if body.ParList.Ellipsis && len(args) > len(params) {
		varargs = args[len(params):]
	}

	savedScope := e.currentScope
	e.currentScope = newFunctionScope(captured, varargs)
	base := e.stack.Top()
	e.stack.Lock(base)
	defer func() {
		e.stack.Unlock()
		e.stack.SetTop(base)
		e.currentScope = savedScope
	}()

	for i, param := range params {
		var v value.Value = value.Nil
		if i < len(args) {
			v = args[i]
		}
		e.assign(e.currentScope, param.Value(), v)
	}

	fl, results, err := e.evaluateBlock(body.Block)
	if err != nil {
		return nil, err
	}
	if fl == flowReturn {
		return results, nil
	}
	return nil, nil
}

// describe names the variable an expression refers to, for error messages,
// e.g. " (global 'x')".
func describe(exp ast.Exp, e *Engine) string {
	switch ex := exp.(type) {
	case ast.NameExp:
		name := ex.Name.Value()
		if e.lookupScope(name) != nil {
			return fmt.Sprintf(" (local '%s')", name)
		}
		return fmt.Sprintf(" (global '%s')", name)
	case ast.IndexExp:
		if key, ok := ex.Key.(ast.SimpleExp); ok && (key.Token.Is(token.Name) || key.Token.Is(token.String)) {
			return fmt.Sprintf(" (field '%s')", key.String)
		}
	case ast.SimpleExp:
		if ex.Token.Is(token.String) {
			return fmt.Sprintf(" (constant '%s')", ex.String)
		}
	}
	return ""
}

func describeCallee(call ast.CallExp, e *Engine) string {
	if call.Method != nil {
		return fmt.Sprintf("method '%s'", call.Method.Value())
	}
	d := describe(call.Prefix, e)
	if d == "" {
		return ""
	}
	return d[2 : len(d)-1]
}

func values(vals ...value.Value) []value.Value {
	return vals
}
