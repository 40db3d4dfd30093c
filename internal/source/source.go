// Package source generates script source from Go values and Lua tables.
//
// Values are first converted to a table with the marshal package (structs
// become tables of their exported fields, honoring `lua` tags) and then
// written as a table constructor. Tables that fit into
// Options.SingleLineTableLength are written on a single line, all others
// with one entry per line.
package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/marshal"
)

// BuildSource writes v as the value of a global assignment to rootName. If
// rootName is empty, the bare expression is returned instead.
func BuildSource(rootName string, v any, opts Options) (string, error) {
	if rootName == "" {
		return Expression(v, opts)
	}
	b := NewBuilder(opts)
	if err := b.Assign(rootName, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Expression writes v as an expression.
func Expression(v any, opts Options) (string, error) {
	lv, err := toValue(v, opts)
	if err != nil {
		return "", err
	}
	return newWriter(opts).expression(lv, 0)
}

func toValue(v any, opts Options) (value.Value, error) {
	m := marshal.New(nil)
	m.StructsAsTables = true
	if opts.ExplicitNullAsNilValues {
		m.NullValue = null
	}
	lv, err := m.ToValue(v)
	if err != nil {
		return nil, fmt.Errorf("convert %T: %w", v, err)
	}
	return lv, nil
}

// Builder writes several statements into one script.
type Builder struct {
	opts Options
	sb   strings.Builder
}

// NewBuilder creates an empty builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Assign writes an assignment of v to the global or field name, which may be
// a dotted path such as "mod.settings".
func (b *Builder) Assign(name string, v any) error {
	if !isPath(name) {
		return fmt.Errorf("invalid name '%s'", name)
	}
	return b.statement(name+" = ", v)
}

// Local writes a local variable declaration of name with the value v.
func (b *Builder) Local(name string, v any) error {
	if !isName(name) {
		return fmt.Errorf("invalid name '%s'", name)
	}
	return b.statement("local "+name+" = ", v)
}

// Return writes a return statement with the given values.
func (b *Builder) Return(vs ...any) error {
	exprs := make([]string, len(vs))
	for i, v := range vs {
		expr, err := Expression(v, b.opts)
		if err != nil {
			return err
		}
		exprs[i] = expr
	}
	b.line("return " + strings.Join(exprs, ", "))
	return nil
}

// Comment writes a line comment for every line of text.
func (b *Builder) Comment(text string) {
	for _, line := range strings.Split(text, "\n") {
		b.sb.WriteString(strings.TrimRight("-- "+line, " "))
		b.sb.WriteByte('\n')
	}
}

func (b *Builder) statement(prefix string, v any) error {
	expr, err := Expression(v, b.opts)
	if err != nil {
		return err
	}
	b.line(prefix + expr)
	return nil
}

func (b *Builder) line(stmt string) {
	b.sb.WriteString(stmt)
	if b.opts.WriteSemicolon {
		b.sb.WriteByte(';')
	}
	b.sb.WriteByte('\n')
}

// String returns the script written so far.
func (b *Builder) String() string {
	return b.sb.String()
}

// WriteTo writes the script to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.sb.String())
	return int64(n), err
}

func isPath(name string) bool {
	for _, part := range strings.Split(name, ".") {
		if !isName(part) {
			return false
		}
	}
	return true
}
