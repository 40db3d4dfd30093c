package lua

import "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine"

// UserdataType describes how a Go type is exposed to scripts. See
// NewUserdataType.
type UserdataType = engine.UserdataType

// NewUserdataType starts the description of a Go type, whose values are
// exposed to scripts as userdata. prototype is a value of the type, usually a
// nil pointer such as (*Unit)(nil).
//
//	t := lua.NewUserdataType("Unit", (*Unit)(nil)).
//		Factory("New", NewUnit).
//		Method("Heal", (*Unit).Heal).
//		Fields()
//	err := state.RegisterUserdata(t)
//
// Scripts can then call Unit.New(...) and unit:Heal(...), and read or write
// the tagged fields of the struct.
func NewUserdataType(name string, prototype any) *UserdataType {
	return engine.NewUserdataType(name, prototype)
}
