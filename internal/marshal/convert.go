package marshal

import (
	"fmt"
	"math"
	"reflect"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// conversionError is the reason a single value could not be converted. Func
// attaches the argument position when turning it into a MarshallingError.
type conversionError struct {
	reason string
}

func (e *conversionError) Error() string { return e.reason }

func expected(what string, got value.Value) error {
	return &conversionError{reason: fmt.Sprintf("%s expected, got %s", what, value.OrNil(got).Type())}
}

// FromValue converts a Lua value to a Go value of type t.
func (m *Marshaller) FromValue(v value.Value, t reflect.Type) (reflect.Value, error) {
	v = value.OrNil(v)

	if t == anyType {
		native, err := m.native(v)
		if err != nil {
			return reflect.Value{}, err
		}
		if native == nil {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(native), nil
	}
	if vt := reflect.TypeOf(v); vt.AssignableTo(t) {
		return reflect.ValueOf(v).Convert(t), nil
	}
	if u, ok := v.(*value.Userdata); ok {
		return m.fromUserdata(u, t)
	}

	switch t.Kind() {
	case reflect.Bool:
		b, ok := v.(value.Boolean)
		if !ok {
			return reflect.Value{}, expected("boolean", v)
		}
		return reflect.ValueOf(bool(b)).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := integer(v)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.New(t).Elem()
		if rv.OverflowInt(n) {
			return reflect.Value{}, &conversionError{reason: fmt.Sprintf("number out of range for %s", t)}
		}
		rv.SetInt(n)
		return rv, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := integer(v)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.New(t).Elem()
		if n < 0 || rv.OverflowUint(uint64(n)) {
			return reflect.Value{}, &conversionError{reason: fmt.Sprintf("number out of range for %s", t)}
		}
		rv.SetUint(uint64(n))
		return rv, nil
	case reflect.Float32, reflect.Float64:
		n, ok := value.ToNumber(v)
		if !ok {
			return reflect.Value{}, expected("number", v)
		}
		return reflect.ValueOf(float64(n)).Convert(t), nil
	case reflect.String:
		s, ok := value.ToString(v)
		if !ok {
			return reflect.Value{}, expected("string", v)
		}
		return reflect.ValueOf(s).Convert(t), nil
	case reflect.Slice:
		if v == value.Nil {
			return reflect.Zero(t), nil
		}
		if s, ok := v.(value.String); ok && t.Elem().Kind() == reflect.Uint8 {
			return reflect.ValueOf([]byte(s)).Convert(t), nil
		}
		tbl, ok := v.(*value.Table)
		if !ok {
			return reflect.Value{}, expected("table", v)
		}
		n := tbl.Length()
		rv := reflect.MakeSlice(t, n, n)
		for i := 0; i < n; i++ {
			elem, _ := tbl.Get(value.NewNumber(float64(i + 1)))
			ev, err := m.FromValue(elem, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("index %d: %w", i+1, err)
			}
			rv.Index(i).Set(ev)
		}
		return rv, nil
	case reflect.Map:
		if v == value.Nil {
			return reflect.Zero(t), nil
		}
		tbl, ok := v.(*value.Table)
		if !ok {
			return reflect.Value{}, expected("table", v)
		}
		rv := reflect.MakeMapWithSize(t, tbl.Count())
		var err error
		tbl.Range(func(k, val value.Value) bool {
			var kv, vv reflect.Value
			if kv, err = m.FromValue(k, t.Key()); err != nil {
				err = fmt.Errorf("key %s: %w", k, err)
				return false
			}
			if vv, err = m.FromValue(val, t.Elem()); err != nil {
				err = fmt.Errorf("field %s: %w", k, err)
				return false
			}
			rv.SetMapIndex(kv, vv)
			return true
		})
		if err != nil {
			return reflect.Value{}, err
		}
		return rv, nil
	case reflect.Pointer:
		if v == value.Nil {
			return reflect.Zero(t), nil
		}
		elem, err := m.FromValue(v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(elem)
		return p, nil
	case reflect.Struct:
		tbl, ok := v.(*value.Table)
		if !ok {
			return reflect.Value{}, expected(t.String(), v)
		}
		rv := reflect.New(t).Elem()
		for _, f := range Fields(t) {
			fv := tbl.GetString(f.Name)
			if fv == value.Nil {
				continue
			}
			converted, err := m.FromValue(fv, f.Type)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("field %s: %w", f.Name, err)
			}
			rv.FieldByIndex(f.Index).Set(converted)
		}
		return rv, nil
	case reflect.Func:
		if v == value.Nil {
			return reflect.Zero(t), nil
		}
		if fn, ok := v.(*value.Function); ok {
			return m.callback(fn, t), nil
		}
		return reflect.Value{}, expected("function", v)
	}
	return reflect.Value{}, expected(t.String(), v)
}

// callback creates a Go function of type t that calls fn. If t returns an
// error as its last result, errors of fn are returned through it, otherwise
// they panic.
func (m *Marshaller) callback(fn *value.Function, t reflect.Type) reflect.Value {
	return reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		out := make([]reflect.Value, t.NumOut())
		for i := range out {
			out[i] = reflect.Zero(t.Out(i))
		}
		returnsError := t.NumOut() > 0 && t.Out(t.NumOut()-1) == errorType
		fail := func(err error) []reflect.Value {
			if !returnsError {
				panic(err)
			}
			out[len(out)-1] = reflect.ValueOf(&err).Elem()
			return out
		}

		args := make([]value.Value, 0, len(in))
		for _, arg := range in {
			v, err := m.toValue(arg, make(map[uintptr]struct{}))
			if err != nil {
				return fail(err)
			}
			args = append(args, v)
		}
		results, err := fn.Callable(args...)
		if err != nil {
			return fail(err)
		}

		n := len(out)
		if returnsError {
			n--
		}
		for i := 0; i < n && i < len(results); i++ {
			rv, err := m.FromValue(results[i], t.Out(i))
			if err != nil {
				return fail(err)
			}
			out[i] = rv
		}
		return out
	})
}

func (m *Marshaller) fromUserdata(u *value.Userdata, t reflect.Type) (reflect.Value, error) {
	obj := reflect.ValueOf(u.Object)
	switch {
	case !obj.IsValid():
	case obj.Type().AssignableTo(t):
		return obj, nil
	case obj.Kind() == reflect.Pointer && obj.Elem().Type().AssignableTo(t):
		return obj.Elem(), nil
	}
	name := "userdata"
	if u.Descriptor != nil {
		name = u.Descriptor.Name
	}
	return reflect.Value{}, &conversionError{reason: fmt.Sprintf("%s expected, got %s", t, name)}
}

func integer(v value.Value) (int64, error) {
	n, ok := value.ToNumber(v)
	if !ok {
		return 0, expected("number", v)
	}
	if !n.IsInteger() || math.Abs(float64(n)) > math.MaxInt64 {
		return 0, &conversionError{reason: "number has no integer representation"}
	}
	return int64(n), nil
}

// native converts a Lua value to its natural Go representation: nil, bool,
// float64, string, []any for sequences, map[string]any for other tables,
// and the wrapped object for userdata.
func (m *Marshaller) native(v value.Value) (any, error) {
	switch val := v.(type) {
	case value.Boolean:
		return bool(val), nil
	case value.Number:
		return float64(val), nil
	case value.String:
		return string(val), nil
	case *value.Userdata:
		return val.Object, nil
	case *value.Function:
		return val, nil
	case *value.Table:
		if val.IsArray() {
			list := make([]any, 0, val.Length())
			for _, elem := range val.Values() {
				n, err := m.native(elem)
				if err != nil {
					return nil, err
				}
				list = append(list, n)
			}
			return list, nil
		}
		obj := make(map[string]any, val.Count())
		var err error
		val.Range(func(k, elem value.Value) bool {
			var n any
			if n, err = m.native(elem); err != nil {
				return false
			}
			key, ok := value.ToString(k)
			if !ok {
				key = fmt.Sprint(k)
			}
			obj[key] = n
			return true
		})
		return obj, err
	}
	return nil, nil
}
