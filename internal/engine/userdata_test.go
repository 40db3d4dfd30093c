package engine

import (
	"errors"
	"reflect"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

type player struct {
	Name   string `lua:"name"`
	Health int    `lua:"health"`
	Level  int

	healed []int
}

func (p *player) Heal(amount int) int {
	p.Health += amount
	p.healed = append(p.healed, amount)
	return p.Health
}

func (p *player) Rename(name string) error {
	if name == "" {
		return errors.New("name must not be empty")
	}
	p.Name = name
	return nil
}

func (p *player) Explode() {
	panic("boom")
}

// registerPlayer registers the player type and returns a pointer to the
// list of players created by scripts.
func (suite *EngineSuite) registerPlayer() *[]*player {
	var created []*player
	t := NewUserdataType("Player", (*player)(nil)).
		Factory("New", func(name string) *player {
			p := &player{Name: name, Health: 50}
			created = append(created, p)
			return p
		}).
		Factory("Find", func(name string) *player {
			for _, p := range created {
				if p.Name == name {
					return p
				}
			}
			return nil
		}).
		Method("Heal", (*player).Heal).
		Method("Rename", (*player).Rename).
		Method("Explode", (*player).Explode).
		Method("__tostring", func(p *player) string { return "Player(" + p.Name + ")" }).
		Property("Alive", func(p *player) bool { return p.Health > 0 }, nil).
		Fields()
	suite.Require().NoError(suite.engine.RegisterUserdata(t))
	return &created
}

func (suite *EngineSuite) TestUserdataDispatchEquivalence() {
	created := suite.registerPlayer()

	results := suite.eval(`
local a = Player.New("a")
local b = Player.New("b")
return a:Heal(10), Player.Heal(b, 10)
`)
	suite.Equal([]value.Value{value.NewNumber(60), value.NewNumber(60)}, results)

	suite.Require().Len(*created, 2)
	a, b := (*created)[0], (*created)[1]
	suite.Equal(a.Health, b.Health)
	suite.Equal(a.healed, b.healed)
	suite.Equal([]int{10}, a.healed)
}

func (suite *EngineSuite) TestUserdataFactoryResult() {
	created := suite.registerPlayer()

	results := suite.eval(`return Player.New("x")`)
	suite.Require().Len(results, 1)
	u, ok := results[0].(*value.Userdata)
	suite.Require().True(ok, "expected userdata, got %T", results[0])
	suite.Equal("Player", u.Descriptor.Name)
	suite.Same((*created)[0], u.Object)
}

func (suite *EngineSuite) TestUserdataNilPointerIsNil() {
	suite.registerPlayer()

	results := suite.eval(`
Player.New("known")
local missing = Player.Find("unknown")
local known = Player.Find("known")
if missing then
  return missing.name
end
return missing, known.name
`)
	suite.Equal([]value.Value{value.Nil, value.NewString("known")}, results)

	desc, ok := suite.engine.Lookup(reflect.TypeOf((*player)(nil)))
	suite.Require().True(ok)
	_, err := desc.Properties["name"].Get((*player)(nil))
	suite.EqualError(err, "attempt to read field 'name' of a nil object")
	err = desc.Properties["name"].Set((*player)(nil), value.NewString("x"))
	suite.EqualError(err, "attempt to write field 'name' of a nil object")
}

func (suite *EngineSuite) TestUserdataProperties() {
	suite.registerPlayer()

	results := suite.eval(`
local p = Player.New("x")
p.health = 5
p.name = "y"
return p.name, p.health, p.Alive, p.Level
`)
	suite.Equal([]value.Value{value.NewString("y"), value.NewNumber(5), value.True, value.Nil}, results)
}

func (suite *EngineSuite) TestUserdataReadOnlyProperty() {
	suite.registerPlayer()

	err := suite.evalErr(`
local p = Player.New("x")
p.Alive = false
`)
	suite.Equal("cannot set field 'Alive' of Player", err.Message)
}

func (suite *EngineSuite) TestUserdataTostring() {
	suite.registerPlayer()

	results := suite.eval(`return tostring(Player.New("z"))`)
	suite.Equal([]value.Value{value.NewString("Player(z)")}, results)
}

func (suite *EngineSuite) TestUserdataErrors() {
	suite.registerPlayer()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"wrong argument type",
			`Player.New("x"):Heal("abc")`,
			"bad argument #2 to 'Heal' (number expected, got string)",
		},
		{
			"missing argument",
			`Player.Heal()`,
			"bad argument #1 to 'Heal' (*engine.player expected, got no value)",
		},
		{
			"too many arguments",
			`Player.New("x"):Heal(1, 2)`,
			"Heal: too many arguments (expected 2, got 3)",
		},
		{
			"host error",
			`Player.New("x"):Rename("")`,
			"name must not be empty",
		},
		{
			"host panic",
			`Player.New("x"):Explode()`,
			"Explode: boom",
		},
		{
			"unknown method",
			`Player.New("x"):Fly()`,
			"attempt to call a nil value (method 'Fly')",
		},
	}
	for _, test := range tests {
		suite.Run(test.name, func() {
			err := suite.evalErr(test.source)
			suite.Equal(test.want, err.Message)
			suite.Zero(suite.engine.Stack().Top())
		})
	}
}

func (suite *EngineSuite) TestUserdataErrorIsScopedToCall() {
	suite.registerPlayer()

	results := suite.eval(`
local p = Player.New("x")
local ok, msg = pcall(p.Heal, p, "abc")
return ok, msg, p:Heal(1)
`)
	suite.Equal([]value.Value{
		value.False,
		value.NewString("bad argument #2 to 'Heal' (number expected, got string)"),
		value.NewNumber(51),
	}, results)
}

func (suite *EngineSuite) TestRegisterUserdataIsIdempotent() {
	suite.registerPlayer()
	count := suite.engine.Globals().Count()
	first := suite.engine.Globals().GetString("Player")

	suite.registerPlayer()
	suite.Equal(count, suite.engine.Globals().Count())
	suite.NotSame(first, suite.engine.Globals().GetString("Player"))

	// renaming the type replaces the old binding
	suite.Require().NoError(suite.engine.RegisterUserdata(NewUserdataType("Hero", (*player)(nil))))
	suite.Equal(count, suite.engine.Globals().Count())
	suite.Equal(value.Nil, suite.engine.Globals().GetString("Player"))
}

func (suite *EngineSuite) TestRegisterUserdataErrors() {
	err := suite.engine.RegisterUserdata(NewUserdataType("Bad Name", nil).Method("x", 5))
	suite.Require().Error(err)
	suite.Contains(err.Error(), "prototype must not be nil")
	suite.Contains(err.Error(), "'Bad Name' is not a valid name")
	suite.Contains(err.Error(), "method x: int is not a function")
	suite.Equal(value.Nil, suite.engine.Globals().GetString("Bad Name"))
}
