package ast

import "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/token"

type (
	// Statement is implemented by all statement nodes.
	Statement interface {
		_stmt()
	}

	// Assignment is `a, t.b = x, y`. Each target is a NameExp or an
	// IndexExp; all right-hand sides are evaluated before any target is set.
	Assignment struct {
		VarList []Exp
		ExpList []Exp
		Line    int
	}

	// FunctionCall is a call whose results are discarded.
	FunctionCall struct {
		Call CallExp
	}

	// DoBlock is `do ... end`, which only opens a scope.
	DoBlock struct {
		Do Block
	}

	// WhileBlock is `while exp do ... end`.
	WhileBlock struct {
		While Exp
		Do    Block
	}

	// RepeatBlock is `repeat ... until exp`. Until is evaluated in the
	// scope of the body.
	RepeatBlock struct {
		Repeat Block
		Until  Exp
	}

	// IfBlock is `if ... then ... elseif ... else ... end`. Else is nil
	// without an else branch.
	IfBlock struct {
		If     Exp
		Then   Block
		ElseIf []ElseIf
		Else   Block
	}

	// ElseIf is one elseif branch of an IfBlock.
	ElseIf struct {
		If   Exp
		Then Block
	}

	// ForBlock is the numeric for loop. Step is nil if omitted.
	ForBlock struct {
		Name token.Token
		From Exp
		To   Exp
		Step Exp
		Do   Block
	}

	// ForInBlock is the generic for loop over an iterator triple.
	ForInBlock struct {
		NameList []token.Token
		In       []Exp
		Do       Block
	}

	// Function is `function a.b:c() ... end`, which assigns to a global
	// or a table field.
	Function struct {
		FuncName FuncName
		FuncBody FuncBody
	}

	// FuncBody is the parameter list and body shared by all function
	// definitions. Line is the line of the function keyword.
	FuncBody struct {
		ParList ParList
		Block   Block
		Line    int
	}

	// ParList names the parameters. Ellipsis is set for vararg functions.
	ParList struct {
		NameList []token.Token
		Ellipsis bool
	}

	// FuncName is a function name, e.g. a.b.c:d or just foo.bar.
	// Name2 is the method name after the colon, or nil.
	FuncName struct {
		Name1 []token.Token
		Name2 token.Token
	}

	// LocalFunction is `local function f() ... end`. The name is in scope
	// inside the body, so the function can recurse.
	LocalFunction struct {
		Name     token.Token
		FuncBody FuncBody
	}

	// Local declares locals, optionally initialized.
	Local struct {
		NameList []token.Token
		ExpList  []Exp
	}

	// Break leaves the innermost loop.
	Break struct {
		Line int
	}

	// LastStatement is `return`, which can only end a Block.
	LastStatement struct {
		ExpList []Exp
	}
)

func (Assignment) _stmt()    {}
func (FunctionCall) _stmt()  {}
func (DoBlock) _stmt()       {}
func (WhileBlock) _stmt()    {}
func (RepeatBlock) _stmt()   {}
func (IfBlock) _stmt()       {}
func (ForBlock) _stmt()      {}
func (ForInBlock) _stmt()    {}
func (Function) _stmt()      {}
func (LocalFunction) _stmt() {}
func (Local) _stmt()         {}
func (Break) _stmt()         {}
func (LastStatement) _stmt() {}

// String returns the dotted name, e.g. "a.b:c".
func (n FuncName) String() string {
	var s string
	for i, name := range n.Name1 {
		if i > 0 {
			s += "."
		}
		s += name.Value()
	}
	if n.Name2 != nil {
		s += ":" + n.Name2.Value()
	}
	return s
}
