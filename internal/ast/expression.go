package ast

import "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/token"

type (
	// Exp is a Lua expression.
	Exp interface {
		_exp()
	}

	// SimpleExp is a simple and constant expression: nil, false, true, a
	// number, a string or '...'. Number and String hold the decoded literal.
	SimpleExp struct {
		Token  token.Token
		Number float64
		String string
	}

	// NameExp is a reference to a variable.
	NameExp struct {
		Name token.Token
	}

	// IndexExp is either prefix.Name or prefix[Key]. For the dot form, Key is
	// a SimpleExp holding the name as a string.
	IndexExp struct {
		Prefix Exp
		Key    Exp
		Line   int
	}

	// CallExp is a function call. If Method is set, the call was written as
	// prefix:Method(args) and prefix is passed as the first argument.
	CallExp struct {
		Prefix Exp
		Method token.Token
		Args   []Exp
		Line   int
	}

	// ParenExp is an expression in parentheses, which truncates
	// multiple values down to one.
	ParenExp struct {
		Exp Exp
	}

	// FunctionExp is an anonymous function.
	FunctionExp struct {
		FuncBody FuncBody
	}

	// TableConstructor is a table constructor, which consists of
	// a list of Fields.
	TableConstructor struct {
		Fields []Field
		Line   int
	}

	// BinopExp is a binary expression.
	BinopExp struct {
		Left  Exp
		Binop token.Token
		Right Exp
	}

	// UnopExp is a unary expression.
	UnopExp struct {
		Unop token.Token
		Exp  Exp
	}
)

func (SimpleExp) _exp()        {}
func (NameExp) _exp()          {}
func (IndexExp) _exp()         {}
func (CallExp) _exp()          {}
func (ParenExp) _exp()         {}
func (FunctionExp) _exp()      {}
func (TableConstructor) _exp() {}
func (BinopExp) _exp()         {}
func (UnopExp) _exp()          {}

// IsMultiValued reports whether exp may produce more than one value,
// which is the case for calls and '...'.
func IsMultiValued(exp Exp) bool {
	switch e := exp.(type) {
	case CallExp:
		return true
	case SimpleExp:
		return e.Token != nil && e.Token.Is(token.Ellipsis)
	}
	return false
}
