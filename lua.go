// Package lua embeds an interpreter for a dialect of Lua 5.3 and generates
// Lua source from Go values.
//
// A State owns its global table and evaluation stack. Subsequent calls to
// DoString, Eval and DoFile build on the globals the previous calls left
// behind. A State must not be used from multiple goroutines at once, but
// independent States share nothing.
package lua

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/ast"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/parser"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/source"
)

// State is an interpreter instance.
type State struct {
	engine *engine.Engine
	fs     afero.Fs

	opts             []engine.Option
	workingDirectory string
}

// NewState creates a new State with the standard library loaded. By default,
// the state uses os.Stdin, os.Stdout, os.Stderr and the operating system's
// filesystem.
func NewState(opts ...Option) *State {
	s := &State{
		fs: afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workingDirectory != "" {
		s.fs = afero.NewBasePathFs(s.fs, s.workingDirectory)
	}
	s.engine = engine.New(append(s.opts, engine.WithFs(s.fs))...)
	s.opts = nil
	return s
}

// DoString parses and evaluates source. It returns the first value of a
// top-level return statement, or of the last function call if the chunk
// does not return, and Nil otherwise.
//
// A chunk that cannot be parsed fails with a *SyntaxError, a chunk that
// fails during evaluation with a *RuntimeError.
func (s *State) DoString(source string) (Value, error) {
	results, err := s.Eval(strings.NewReader(source))
	if err != nil {
		return Nil, err
	}
	return results.Get(0), nil
}

// Eval evaluates the chunk read from source and returns all of its results.
// If source has a Name method, like *os.File and afero.File, the base name
// is used as chunk name in stack traces.
func (s *State) Eval(source io.Reader) (Values, error) {
	results, err := s.engine.Eval(source)
	if err != nil {
		return nil, err
	}
	return Values(results), nil
}

// DoFile evaluates the named file of the state's filesystem.
func (s *State) DoFile(name string) (Values, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	return s.Eval(f)
}

// ParseOnly parses source without evaluating it.
func ParseOnly(source string) (ast.Chunk, error) {
	return parser.ParseString("", source)
}

// RegisterUserdata exposes a Go type to scripts under the type's name.
// Registering a Go type again replaces its previous registration, including
// the global binding of the old name.
func (s *State) RegisterUserdata(t *UserdataType) error {
	return s.engine.RegisterUserdata(t)
}

// Globals returns the global table. Changes to the table are visible to
// scripts.
func (s *State) Globals() *Table {
	return s.engine.Globals()
}

// Global returns the global variable name, or Nil.
func (s *State) Global(name string) Value {
	return s.engine.Globals().GetString(name)
}

// SetGlobal converts v to a Lua value and assigns it to the global variable
// name. Values of registered userdata types become userdata, structs of other
// types are rejected.
func (s *State) SetGlobal(name string, v any) error {
	lv, err := s.engine.Marshaller().ToValue(v)
	if err != nil {
		return fmt.Errorf("set global %s: %w", name, err)
	}
	s.engine.Globals().SetString(name, lv)
	return nil
}

// Register binds the Go function fn to the global name. Functions of type
// NativeFn are called with the raw arguments, all others have their
// arguments and results converted.
func (s *State) Register(name string, fn any) error {
	f, err := s.engine.Marshaller().Func(name, fn)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	s.engine.Globals().SetString(name, f)
	return nil
}

// SourceOptions control the layout of generated source.
type SourceOptions = source.Options

// DefaultSourceOptions returns the default layout of generated source.
func DefaultSourceOptions() SourceOptions {
	return source.DefaultOptions()
}

// BuildSource generates the source of an assignment of v to the global
// rootName, or of the bare expression if rootName is empty. v may be a
// *Table, or a Go value built from maps, slices, structs and scalars.
func BuildSource(rootName string, v any, opts SourceOptions) (string, error) {
	return source.BuildSource(rootName, v, opts)
}
