package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

// maxIndexChain bounds __index and __newindex chains.
const maxIndexChain = 100

var errIndexNonTable = errors.New("attempt to index a non-table value")

// indexError is returned by index and setIndex for values that cannot be
// indexed. Callers that know the indexed expression replace it with a more
// descriptive message.
type indexError struct {
	typ value.Type
}

func (e *indexError) Error() string {
	return fmt.Sprintf("attempt to index a %s value", e.typ)
}

func (e *indexError) Is(target error) bool {
	return target == errIndexNonTable
}

func (e *Engine) initMetatables() {
	e.stringMeta = value.NewTable()
	e.stringMeta.SetString("__index", e._G.GetString("string"))
}

// getMetatable returns the metatable of a value, or nil.
func (e *Engine) getMetatable(v value.Value) *value.Table {
	switch val := v.(type) {
	case *value.Table:
		return val.Metatable
	case value.String:
		return e.stringMeta
	}
	return nil
}

// metaField returns the field event of the metatable of v, or Nil.
func (e *Engine) metaField(v value.Value, event string) value.Value {
	if u, ok := v.(*value.Userdata); ok && u.Descriptor != nil {
		// userdata metamethods are registered like methods
		if mm, ok := u.Descriptor.Methods.Get(value.String(event)); ok {
			return mm
		}
		return value.Nil
	}
	mt := e.getMetatable(v)
	if mt == nil {
		return value.Nil
	}
	return mt.GetString(event)
}

// index performs obj[key], respecting __index.
func (e *Engine) index(obj, key value.Value) (value.Value, error) {
	for i := 0; i < maxIndexChain; i++ {
		var handler value.Value
		switch o := obj.(type) {
		case *value.Table:
			if v, ok := o.Get(key); ok {
				return v, nil
			}
			if key == value.Nil {
				return nil, e.runtimeErrorf("table index is nil")
			}
			handler = e.metaField(o, "__index")
			if handler == value.Nil {
				return value.Nil, nil
			}
		case *value.Userdata:
			return e.indexUserdata(o, key)
		default:
			handler = e.metaField(obj, "__index")
			if handler == value.Nil {
				return nil, &indexError{typ: value.OrNil(obj).Type()}
			}
		}

		if fn, ok := handler.(*value.Function); ok {
			results, err := e.call(fn, obj, key)
			if err != nil {
				return nil, err
			}
			if len(results) == 0 {
				return value.Nil, nil
			}
			return results[0], nil
		}
		obj = handler
	}
	return nil, e.runtimeErrorf("'__index' chain too long; possible loop")
}

// setIndex performs obj[key] = val, respecting __newindex.
func (e *Engine) setIndex(obj, key, val value.Value) error {
	for i := 0; i < maxIndexChain; i++ {
		var handler value.Value
		switch o := obj.(type) {
		case *value.Table:
			if _, ok := o.Get(key); ok {
				o.Set(key, val)
				return nil
			}
			handler = e.metaField(o, "__newindex")
			if handler == value.Nil {
				if err := e.checkKey(key); err != nil {
					return err
				}
				o.Set(key, val)
				return nil
			}
		case *value.Userdata:
			return e.setUserdata(o, key, val)
		default:
			handler = e.metaField(obj, "__newindex")
			if handler == value.Nil {
				return &indexError{typ: value.OrNil(obj).Type()}
			}
		}

		if fn, ok := handler.(*value.Function); ok {
			_, err := e.call(fn, obj, key, val)
			return err
		}
		obj = handler
	}
	return e.runtimeErrorf("'__newindex' chain too long; possible loop")
}

// checkKey reports an error for keys that a table cannot hold.
func (e *Engine) checkKey(key value.Value) error {
	switch k := key.(type) {
	case nil:
		return e.runtimeErrorf("table index is nil")
	case value.Number:
		if math.IsNaN(float64(k)) {
			return e.runtimeErrorf("table index is NaN")
		}
	}
	if key == value.Nil {
		return e.runtimeErrorf("table index is nil")
	}
	return nil
}

// tostring converts any value to a string, respecting __tostring.
func (e *Engine) tostring(v value.Value) (string, error) {
	if mm := e.metaField(v, "__tostring"); mm != value.Nil {
		results, err := e.callValue(mm, values(v), "__tostring")
		if err != nil {
			return "", err
		}
		if len(results) == 0 {
			return "", e.runtimeErrorf("'__tostring' must return a string")
		}
		s, ok := value.ToString(results[0])
		if !ok {
			return "", e.runtimeErrorf("'__tostring' must return a string")
		}
		return s, nil
	}
	switch val := value.OrNil(v).(type) {
	case *value.Table:
		return fmt.Sprintf("table: %p", val), nil
	case fmt.Stringer:
		return val.String(), nil
	}
	return "", fmt.Errorf("cannot convert %T to string", v)
}
