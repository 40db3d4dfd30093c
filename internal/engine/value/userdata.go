package value

import (
	"fmt"
	"reflect"
)

// Userdata wraps a host object together with the descriptor of its
// registered type.
type Userdata struct {
	Object     interface{}
	Descriptor *Descriptor
}

// Descriptor describes the members of a registered host type that are
// visible to scripts.
type Descriptor struct {
	Name string
	// GoType is the type of Userdata.Object for instances of this descriptor.
	GoType reflect.Type
	// Methods holds a *Function per exposed method. Metamethods such as
	// __tostring are registered as methods.
	Methods    *Table
	Properties map[string]Property
}

// Property is an exposed field of a host object. Set is nil for read-only
// properties.
type Property struct {
	Get func(obj interface{}) (Value, error)
	Set func(obj interface{}, v Value) error
}

func NewUserdata(obj interface{}, desc *Descriptor) *Userdata {
	return &Userdata{
		Object:     obj,
		Descriptor: desc,
	}
}

func (*Userdata) Type() Type { return TypeUserdata }

func (u *Userdata) String() string {
	name := "userdata"
	if u.Descriptor != nil {
		name = u.Descriptor.Name
	}
	return fmt.Sprintf("%s: %p", name, u)
}
