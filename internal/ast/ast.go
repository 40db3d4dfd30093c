package ast

import "github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/token"

type (
	// Chunk is just a Block, but is expected to run in a separate scope.
	Chunk struct {
		Name string
		Block
	}

	// Block is a list of statements.
	// The last Statement may be of type LastStatement.
	Block []Statement

	// Field is a field in a table constructor. If neither LeftExp nor
	// LeftName is set, the field is positional ({ 1, 2 }). LeftName is
	// set for { name = exp }, LeftExp for { [exp] = exp }.
	Field struct {
		LeftExp  Exp
		LeftName token.Token
		RightExp Exp
	}
)

// StatementsWithoutLast returns all statements in this Block that are not a
// LastStatement.
func (b Block) StatementsWithoutLast() []Statement {
	if _, hasLast := b.LastStatement(); hasLast {
		return b[:len(b)-1]
	}
	return b
}

// LastStatement returns the LastStatement in this Block, or false, if there
// is no LastStatement in this Block.
func (b Block) LastStatement() (LastStatement, bool) {
	if len(b) > 0 {
		if lastStatement, ok := b[len(b)-1].(LastStatement); ok {
			return lastStatement, true
		}
	}
	return LastStatement{}, false
}

// Positional reports whether this field has no explicit key.
func (f Field) Positional() bool {
	return f.LeftExp == nil && f.LeftName == nil
}
