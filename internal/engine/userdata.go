package engine

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/marshal"
)

// UserdataType describes how a Go type is exposed to scripts. Members are
// registered explicitly by name; nothing is discovered at runtime.
//
//	t := NewUserdataType("Player", (*Player)(nil)).
//		Factory("New", NewPlayer).
//		Method("Heal", (*Player).Heal).
//		Fields()
//
// Functions are wrapped with the engine's marshaller, so they may take and
// return any convertible Go types. Errors of the builder are reported by
// Engine.RegisterUserdata.
type UserdataType struct {
	name   string
	goType reflect.Type

	factories  []member
	methods    []member
	properties []property
	fields     bool

	errs []error
}

type member struct {
	name string
	fn   any
}

type property struct {
	name string
	get  any
	set  any
}

// NewUserdataType creates a type named name for the Go type of prototype.
// prototype is usually a typed nil pointer.
func NewUserdataType(name string, prototype any) *UserdataType {
	t := &UserdataType{
		name:   name,
		goType: reflect.TypeOf(prototype),
	}
	if t.goType == nil {
		t.errs = append(t.errs, errors.New("prototype must not be nil"))
	}
	if !isIdentifier(name) {
		t.errs = append(t.errs, fmt.Errorf("'%s' is not a valid name", name))
	}
	return t
}

// Name returns the global name of the type.
func (t *UserdataType) Name() string { return t.name }

// Factory registers fn under name in the global table of the type. It is
// not available on instances.
func (t *UserdataType) Factory(name string, fn any) *UserdataType {
	t.errs = append(t.errs, checkFunc("factory", name, fn))
	t.factories = append(t.factories, member{name, fn})
	return t
}

// Method registers fn as method name. fn takes the instance as first
// argument, so a method expression such as (*Player).Heal can be passed
// directly. obj:name(...) and Type.name(obj, ...) call the same function.
func (t *UserdataType) Method(name string, fn any) *UserdataType {
	t.errs = append(t.errs, checkFunc("method", name, fn))
	t.methods = append(t.methods, member{name, fn})
	return t
}

// Property registers a property. get has the form func(T) V, set the form
// func(T, V) and may be nil for read-only properties.
func (t *UserdataType) Property(name string, get, set any) *UserdataType {
	t.errs = append(t.errs, checkFunc("property getter", name, get))
	if set != nil {
		t.errs = append(t.errs, checkFunc("property setter", name, set))
	}
	t.properties = append(t.properties, property{name, get, set})
	return t
}

// Fields exposes every exported struct field tagged with `lua` as a
// property. Fields are writable if instances are pointers.
func (t *UserdataType) Fields() *UserdataType {
	t.fields = true
	return t
}

func checkFunc(kind, name string, fn any) error {
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("%s %s: %T is not a function", kind, name, fn)
	}
	return nil
}

// RegisterUserdata makes a userdata type available to scripts. Its factories
// and methods are bound in a global table named after the type. Registering
// the same Go type again replaces its descriptor and global binding.
func (e *Engine) RegisterUserdata(t *UserdataType) error {
	if err := errors.Join(t.errs...); err != nil {
		return fmt.Errorf("register userdata %s: %w", t.name, err)
	}

	desc := &value.Descriptor{
		Name:       t.name,
		GoType:     t.goType,
		Methods:    value.NewTable(),
		Properties: make(map[string]value.Property),
	}
	global := value.NewTable()

	for _, m := range t.methods {
		fn, err := e.marshaller.Func(m.name, m.fn)
		if err != nil {
			return fmt.Errorf("register userdata %s: %w", t.name, err)
		}
		desc.Methods.SetString(m.name, fn)
		global.SetString(m.name, fn)
	}
	for _, f := range t.factories {
		fn, err := e.marshaller.Func(f.name, f.fn)
		if err != nil {
			return fmt.Errorf("register userdata %s: %w", t.name, err)
		}
		global.SetString(f.name, fn)
	}
	if t.fields {
		for _, f := range marshal.TaggedFields(t.goType) {
			desc.Properties[f.Name] = e.fieldProperty(f)
		}
	}
	for _, p := range t.properties {
		prop, err := e.accessorProperty(p)
		if err != nil {
			return fmt.Errorf("register userdata %s: %w", t.name, err)
		}
		desc.Properties[p.name] = prop
	}

	if old, ok := e.userdata[t.goType]; ok && old.Name != t.name {
		e._G.SetString(old.Name, value.Nil)
	}
	e.userdata[t.goType] = desc
	e._G.SetString(t.name, global)

	e.logger.Debug("registered userdata",
		"name", t.name,
		"type", t.goType.String(),
		"methods", desc.Methods.Count(),
		"properties", len(desc.Properties),
	)
	return nil
}

// Lookup returns the descriptor registered for a Go type. Struct types
// registered through their pointer type are found as well.
func (e *Engine) Lookup(t reflect.Type) (*value.Descriptor, bool) {
	if desc, ok := e.userdata[t]; ok {
		return desc, true
	}
	if t.Kind() != reflect.Pointer {
		desc, ok := e.userdata[reflect.PointerTo(t)]
		return desc, ok
	}
	return nil, false
}

func (e *Engine) fieldProperty(f marshal.Field) value.Property {
	return value.Property{
		Get: func(obj any) (value.Value, error) {
			rv := reflect.Indirect(reflect.ValueOf(obj))
			if !rv.IsValid() {
				return nil, fmt.Errorf("attempt to read field '%s' of a nil object", f.Name)
			}
			return e.marshaller.ToValue(rv.FieldByIndex(f.Index).Interface())
		},
		Set: func(obj any, v value.Value) error {
			rv := reflect.ValueOf(obj)
			if rv.Kind() != reflect.Pointer {
				return fmt.Errorf("field '%s' is read-only", f.Name)
			}
			if rv.IsNil() {
				return fmt.Errorf("attempt to write field '%s' of a nil object", f.Name)
			}
			converted, err := e.marshaller.FromValue(v, f.Type)
			if err != nil {
				return err
			}
			rv.Elem().FieldByIndex(f.Index).Set(converted)
			return nil
		},
	}
}

func (e *Engine) accessorProperty(p property) (value.Property, error) {
	get, err := e.marshaller.Func(p.name, p.get)
	if err != nil {
		return value.Property{}, err
	}
	prop := value.Property{
		Get: func(obj any) (value.Value, error) {
			results, err := get.Callable(value.NewUserdata(obj, nil))
			if err != nil || len(results) == 0 {
				return value.Nil, err
			}
			return results[0], nil
		},
	}
	if p.set != nil {
		set, err := e.marshaller.Func(p.name, p.set)
		if err != nil {
			return value.Property{}, err
		}
		prop.Set = func(obj any, v value.Value) error {
			_, err := set.Callable(value.NewUserdata(obj, nil), v)
			return err
		}
	}
	return prop, nil
}

// indexUserdata resolves a member of a userdata value: properties first, then
// methods. Unknown members are nil.
func (e *Engine) indexUserdata(u *value.Userdata, key value.Value) (value.Value, error) {
	if u.Descriptor == nil {
		return nil, &indexError{typ: value.TypeUserdata}
	}
	if name, ok := key.(value.String); ok {
		if prop, ok := u.Descriptor.Properties[string(name)]; ok {
			v, err := prop.Get(u.Object)
			if err != nil {
				return nil, e.asRuntimeError(err)
			}
			return value.OrNil(v), nil
		}
	}
	if m, ok := u.Descriptor.Methods.Get(key); ok {
		return m, nil
	}
	return value.Nil, nil
}

func (e *Engine) setUserdata(u *value.Userdata, key, val value.Value) error {
	if u.Descriptor == nil {
		return &indexError{typ: value.TypeUserdata}
	}
	name, _ := value.ToString(key)
	prop, ok := u.Descriptor.Properties[name]
	if !ok || prop.Set == nil {
		return e.runtimeErrorf("cannot set field '%s' of %s", name, u.Descriptor.Name)
	}
	if err := prop.Set(u.Object, val); err != nil {
		return e.asRuntimeError(err)
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
