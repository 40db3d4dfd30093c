// Package marshal converts between Go values and Lua values. It is shared by
// the userdata bridge, which marshals arguments and results of host
// functions, and by the source generator, which turns host objects into
// tables.
package marshal

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

// Registry resolves the userdata descriptor of a Go type. Values of a
// registered type are converted to userdata instead of tables.
type Registry interface {
	Lookup(t reflect.Type) (*value.Descriptor, bool)
}

var (
	valueType = reflect.TypeOf((*value.Value)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	luaFnType = reflect.TypeOf(value.LuaFn(nil))
)

// Marshaller converts between Go and Lua values.
type Marshaller struct {
	registry Registry

	// StructsAsTables converts structs of unregistered types to tables of
	// their exported fields. If unset, such structs cannot be converted.
	StructsAsTables bool
	// NullValue is what nil pointers, maps, slices and interfaces become.
	// It defaults to value.Nil, which removes the key from an enclosing
	// table.
	NullValue value.Value
}

// New creates a marshaller that resolves userdata through registry, which
// may be nil.
func New(registry Registry) *Marshaller {
	return &Marshaller{
		registry:  registry,
		NullValue: value.Nil,
	}
}

// ToValue converts a Go value to a Lua value.
func (m *Marshaller) ToValue(v any) (value.Value, error) {
	if v == nil {
		return m.null(), nil
	}
	if val, ok := v.(value.Value); ok {
		return val, nil
	}
	return m.toValue(reflect.ValueOf(v), make(map[uintptr]struct{}))
}

func (m *Marshaller) null() value.Value {
	if m.NullValue == nil {
		return value.Nil
	}
	return m.NullValue
}

func (m *Marshaller) toValue(rv reflect.Value, seen map[uintptr]struct{}) (value.Value, error) {
	if !rv.IsValid() {
		return m.null(), nil
	}
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return m.null(), nil
	}
	if rv.Type().Implements(valueType) && rv.CanInterface() {
		return rv.Interface().(value.Value), nil
	}
	if desc, ok := m.lookup(rv.Type()); ok {
		return m.userdata(rv, desc), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return value.Boolean(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.NewNumber(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return value.NewNumber(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return value.NewNumber(rv.Float()), nil
	case reflect.String:
		return value.NewString(rv.String()), nil
	case reflect.Interface:
		if rv.IsNil() {
			return m.null(), nil
		}
		return m.toValue(rv.Elem(), seen)
	case reflect.Pointer:
		if rv.IsNil() {
			return m.null(), nil
		}
		return m.visit(rv, seen, func() (value.Value, error) {
			return m.toValue(rv.Elem(), seen)
		})
	case reflect.Slice:
		if rv.IsNil() {
			return m.null(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return value.NewString(string(rv.Bytes())), nil
		}
		return m.visit(rv, seen, func() (value.Value, error) {
			return m.sequence(rv, seen)
		})
	case reflect.Array:
		return m.sequence(rv, seen)
	case reflect.Map:
		if rv.IsNil() {
			return m.null(), nil
		}
		return m.visit(rv, seen, func() (value.Value, error) {
			return m.mapping(rv, seen)
		})
	case reflect.Struct:
		if !m.StructsAsTables {
			return nil, &MarshallingError{Reason: fmt.Sprintf("cannot convert unregistered type %s", rv.Type())}
		}
		return m.structure(rv, seen)
	case reflect.Func:
		if rv.IsNil() {
			return m.null(), nil
		}
		return m.Func("", rv.Interface())
	}
	return nil, &MarshallingError{Reason: fmt.Sprintf("cannot convert %s", rv.Type())}
}

// visit guards the conversion of a reference against cycles.
func (m *Marshaller) visit(rv reflect.Value, seen map[uintptr]struct{}, convert func() (value.Value, error)) (value.Value, error) {
	ptr := rv.Pointer()
	if _, ok := seen[ptr]; ok {
		return nil, &MarshallingError{Reason: fmt.Sprintf("cyclic value of type %s", rv.Type())}
	}
	seen[ptr] = struct{}{}
	defer delete(seen, ptr)
	return convert()
}

func (m *Marshaller) lookup(t reflect.Type) (*value.Descriptor, bool) {
	if m.registry == nil {
		return nil, false
	}
	return m.registry.Lookup(t)
}

// userdata wraps rv. Structs registered through their pointer type are
// copied, so that methods with pointer receivers work on the wrapped object.
func (m *Marshaller) userdata(rv reflect.Value, desc *value.Descriptor) *value.Userdata {
	if desc.GoType != nil && rv.Type() != desc.GoType && reflect.PointerTo(rv.Type()) == desc.GoType {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		rv = p
	}
	return value.NewUserdata(rv.Interface(), desc)
}

func (m *Marshaller) sequence(rv reflect.Value, seen map[uintptr]struct{}) (value.Value, error) {
	t := value.NewTable()
	for i := 0; i < rv.Len(); i++ {
		v, err := m.toValue(rv.Index(i), seen)
		if err != nil {
			return nil, err
		}
		t.Set(value.NewNumber(float64(i+1)), v)
	}
	return t, nil
}

func (m *Marshaller) mapping(rv reflect.Value, seen map[uintptr]struct{}) (value.Value, error) {
	type pair struct {
		key, val value.Value
	}
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := m.toValue(iter.Key(), seen)
		if err != nil {
			return nil, err
		}
		if k == value.Nil {
			return nil, &MarshallingError{Reason: "map key converts to nil"}
		}
		v, err := m.toValue(iter.Value(), seen)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair{k, v})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return KeyLess(pairs[i].key, pairs[j].key)
	})

	t := value.NewTable()
	for _, p := range pairs {
		t.Set(p.key, p.val)
	}
	return t, nil
}

func (m *Marshaller) structure(rv reflect.Value, seen map[uintptr]struct{}) (value.Value, error) {
	t := value.NewTable()
	for _, f := range Fields(rv.Type()) {
		fv := rv.FieldByIndex(f.Index)
		if f.OmitEmpty && fv.IsZero() {
			continue
		}
		v, err := m.toValue(fv, seen)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.GoName, err)
		}
		t.SetString(f.Name, v)
	}
	return t, nil
}

// KeyLess orders table keys: numbers ascending, then strings, then booleans,
// then everything else by its string form.
func KeyLess(a, b value.Value) bool {
	ra, rb := keyRank(a), keyRank(b)
	if ra != rb {
		return ra < rb
	}
	switch ka := a.(type) {
	case value.Number:
		return ka < b.(value.Number)
	case value.String:
		return ka < b.(value.String)
	case value.Boolean:
		return !bool(ka) && bool(b.(value.Boolean))
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func keyRank(v value.Value) int {
	switch v.(type) {
	case value.Number:
		return 0
	case value.String:
		return 1
	case value.Boolean:
		return 2
	}
	return 3
}

// Field is an exported struct field as seen from Lua.
type Field struct {
	// Name is the Lua name, taken from the `lua` tag or the Go name.
	Name      string
	GoName    string
	Index     []int
	Type      reflect.Type
	OmitEmpty bool
}

// Fields lists the exported fields of a struct type. A field tagged
// `lua:"-"` is skipped; `lua:"name,omitempty"` renames the field and omits
// its zero value.
func Fields(t reflect.Type) []Field {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("lua")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, Field{
			Name:      name,
			GoName:    sf.Name,
			Index:     sf.Index,
			Type:      sf.Type,
			OmitEmpty: opts == "omitempty",
		})
	}
	return fields
}

// TaggedFields is like Fields, but only lists fields carrying a `lua` tag.
func TaggedFields(t reflect.Type) []Field {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var tagged []Field
	for _, f := range Fields(t) {
		if _, ok := t.FieldByIndex(f.Index).Tag.Lookup("lua"); ok {
			tagged = append(tagged, f)
		}
	}
	return tagged
}
