package marshal

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

// Func wraps a Go function as a native Lua function. Arguments are converted
// to the parameter types of fn, results are converted back. If the last
// result of fn is an error, a non-nil error is raised in Lua. A function that
// already has the signature of value.LuaFn is used as is.
//
// Calls with too few or too many arguments, arguments that cannot be
// converted, and panics in fn fail with a *MarshallingError.
func (m *Marshaller) Func(name string, fn any) (*value.Function, error) {
	if lfn, ok := fn.(value.LuaFn); ok {
		return value.NewFunction(name, lfn), nil
	}
	if lfn, ok := fn.(func(...value.Value) ([]value.Value, error)); ok {
		return value.NewFunction(name, lfn), nil
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, &MarshallingError{Func: name, Reason: fmt.Sprintf("cannot wrap %T as function", fn)}
	}
	if rv.Type().ConvertibleTo(luaFnType) {
		return value.NewFunction(name, rv.Convert(luaFnType).Interface().(value.LuaFn)), nil
	}

	return value.NewFunction(name, func(args ...value.Value) (results []value.Value, err error) {
		defer func() {
			if r := recover(); r != nil {
				if rerr, ok := r.(error); ok {
					err = &MarshallingError{Func: name, Reason: rerr.Error()}
					return
				}
				err = &MarshallingError{Func: name, Reason: fmt.Sprint(r)}
			}
		}()

		in, err := m.arguments(name, rv.Type(), args)
		if err != nil {
			return nil, err
		}
		return m.results(name, rv.Call(in))
	}), nil
}

func (m *Marshaller) arguments(name string, ft reflect.Type, args []value.Value) ([]reflect.Value, error) {
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
	}
	if len(args) < fixed {
		return nil, &MarshallingError{
			Func:   name,
			Arg:    len(args) + 1,
			Reason: fmt.Sprintf("%s expected, got no value", ft.In(len(args))),
		}
	}
	if !ft.IsVariadic() && len(args) > fixed {
		return nil, &MarshallingError{
			Func:   name,
			Reason: fmt.Sprintf("too many arguments (expected %d, got %d)", fixed, len(args)),
		}
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var t reflect.Type
		if i < fixed {
			t = ft.In(i)
		} else {
			t = ft.In(fixed).Elem()
		}
		rv, err := m.FromValue(arg, t)
		if err != nil {
			return nil, argumentError(name, i+1, err)
		}
		in[i] = rv
	}
	return in, nil
}

func argumentError(name string, arg int, err error) error {
	var merr *MarshallingError
	if errors.As(err, &merr) {
		return &MarshallingError{Func: name, Arg: arg, Reason: merr.Reason}
	}
	return &MarshallingError{Func: name, Arg: arg, Reason: err.Error()}
}

func (m *Marshaller) results(name string, out []reflect.Value) ([]value.Value, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}

	results := make([]value.Value, 0, len(out))
	for _, rv := range out {
		v, err := m.toValue(rv, make(map[uintptr]struct{}))
		if err != nil {
			var merr *MarshallingError
			if errors.As(err, &merr) {
				return nil, &MarshallingError{Func: name, Reason: merr.Reason}
			}
			return nil, &MarshallingError{Func: name, Reason: err.Error()}
		}
		results = append(results, v)
	}
	return results, nil
}
