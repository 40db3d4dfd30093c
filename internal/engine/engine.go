package engine

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"time"

	"github.com/spf13/afero"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/ast"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/marshal"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/parser"
)

// DefaultMaxCallDepth is the call depth at which a stack overflow is raised,
// unless configured otherwise with WithMaxCallDepth.
const DefaultMaxCallDepth = 200

// MaxCallDepthLimit is the highest call depth an engine allows. Deeper
// recursion would exhaust the Go stack, which cannot be recovered from.
const MaxCallDepthLimit = 10000

// LevelTrace is the log level of per-statement records, below slog.LevelDebug.
const LevelTrace = slog.Level(-8)

type Namer interface {
	Name() string
}

// Engine is an engine that is capable of evaluating Lua code from an io.Reader.
// The engine keeps track of state, so that multiple calls to Eval will build on the
// state that the last Eval call produced.
//
//	engine.Eval(strings.NewReader(`a=5`))
//	engine.Eval(strings.NewReader(`print(a)`)) // prints '5'
//
// If an error occurs during parsing or evaluation, that error will be returned. In case
// of a parse error, the state of the engine will remain unaffected.
// An Engine must not be used from multiple goroutines at the same time.
type Engine struct {
	fs afero.Fs

	// stdin is the input for any program run by this engine.
	// If a program wants to read from stdin, this is the reader
	// that will be read from.
	stdin io.Reader
	// stdout is the output for any program run by this engine.
	// If a program wants to write to stdout, this is the writer
	// that will be written to.
	stdout io.Writer
	// stderr is the error output for any program run by this engine.
	// If a program wants to write to stderr, this is the writer
	// that will be written to.
	stderr io.Writer

	// clock is the clock that the engine will use if it requires a timestamp.
	clock Clock
	start time.Time

	logger *slog.Logger

	// _G is the global table, the root of every scope chain.
	_G           *value.Table
	currentScope *Scope

	stack        *Stack
	calls        *callStack
	maxCallDepth int

	stringMeta *value.Table

	userdata   map[reflect.Type]*value.Descriptor
	marshaller *marshal.Marshaller
}

// Scope is a lexical scope holding local variables. The outermost scope has
// no parent, lookups that fall through it go to _G.
type Scope struct {
	parent    *Scope
	variables map[string]value.Value

	// function is set for the outermost scope of a function body or chunk,
	// which also holds the values of '...'.
	function bool
	varargs  []value.Value
}

func newScopeWithParent(parent *Scope) *Scope {
	return &Scope{
		parent:    parent,
		variables: make(map[string]value.Value),
	}
}

func newFunctionScope(parent *Scope, varargs []value.Value) *Scope {
	scope := newScopeWithParent(parent)
	scope.function = true
	scope.varargs = varargs
	return scope
}

// New creates a new, ready to use Engine, already applying all given options.
// By default, the engine uses os.Stdin as stdin, os.Stdout as stdout and os.Stderr
// as stderr.
func New(opts ...Option) *Engine {
	e := &Engine{
		fs: afero.NewOsFs(),

		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		clock:  sysClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),

		_G:           value.NewTable(),
		stack:        NewStack(),
		maxCallDepth: DefaultMaxCallDepth,
		userdata:     make(map[reflect.Type]*value.Descriptor),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.start = e.clock.Now()
	e.calls = newCallStack(e.maxCallDepth)
	e.marshaller = marshal.New(e)
	e.initStdlib()
	return e
}

// Eval parses and evaluates the given source as a chunk and returns the
// values that the chunk returned. A parse error is a *parser.SyntaxError, an
// error raised during evaluation is a *RuntimeError.
func (e *Engine) Eval(source io.Reader) ([]value.Value, error) {
	p, err := parser.New(source)
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}
	chunk, err := p.Parse()
	if err != nil {
		e.logger.Debug("parse failed", "chunk", chunkName(source), "error", err)
		return nil, err
	}
	return e.EvalChunk(chunk)
}

// EvalChunk evaluates an already parsed chunk. Chunks are immutable, the same
// chunk may be evaluated by multiple engines.
func (e *Engine) EvalChunk(chunk ast.Chunk) ([]value.Value, error) {
	e.logger.Debug("evaluate chunk", "chunk", chunk.Name, "statements", len(chunk.Block))
	return e.evaluateChunk(chunk)
}

// Globals returns the global table _G.
func (e *Engine) Globals() *value.Table {
	return e._G
}

// Stack returns the evaluation stack of this engine.
func (e *Engine) Stack() *Stack {
	return e.stack
}

// Logger returns the logger of this engine.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Marshaller returns the marshaller that converts between host values and
// Lua values, aware of the userdata registered with this engine.
func (e *Engine) Marshaller() *marshal.Marshaller {
	return e.marshaller
}

// Register binds a native function to a global name.
func (e *Engine) Register(name string, fn value.LuaFn) {
	e._G.SetString(name, value.NewFunction(name, fn))
}

func chunkName(source io.Reader) string {
	if namer, ok := source.(Namer); ok {
		return namer.Name()
	}
	return parser.UnknownInput
}

func (e *Engine) assign(scope *Scope, name string, val value.Value) {
	scope.variables[name] = value.OrNil(val)
}

// enterNewScope opens a child scope and returns the scope to restore with
// leaveScope. Redeclared locals open further scopes, so leaving restores the
// saved scope rather than the parent.
func (e *Engine) enterNewScope() *Scope {
	saved := e.currentScope
	e.currentScope = newScopeWithParent(saved)
	return saved
}

func (e *Engine) leaveScope(saved *Scope) {
	e.currentScope = saved
}

// declareLocal binds a new local variable in the current block. A name that
// is already declared in the same block gets a new variable in a fresh scope
// for the rest of the block, so closures over the old variable keep it.
func (e *Engine) declareLocal(names ...string) {
	for _, name := range names {
		if _, ok := e.currentScope.variables[name]; ok {
			e.currentScope = newScopeWithParent(e.currentScope)
			break
		}
	}
	for _, name := range names {
		e.assign(e.currentScope, name, value.Nil)
	}
}

// variable resolves name through the scope chain and then _G. Unknown
// variables are nil.
func (e *Engine) variable(name string) value.Value {
	if scope := e.lookupScope(name); scope != nil {
		return scope.variables[name]
	}
	return e._G.GetString(name)
}

// lookupScope returns the innermost scope that declares name as a local,
// or nil if name is global.
func (e *Engine) lookupScope(name string) *Scope {
	for scope := e.currentScope; scope != nil; scope = scope.parent {
		if _, ok := scope.variables[name]; ok {
			return scope
		}
	}
	return nil
}

// varargs returns the values of '...' in the current function.
func (e *Engine) varargs() []value.Value {
	for scope := e.currentScope; scope != nil; scope = scope.parent {
		if scope.function {
			return scope.varargs
		}
	}
	return nil
}

// setVariable assigns to the local name if it is declared, otherwise to the
// global name.
func (e *Engine) setVariable(name string, val value.Value) {
	if scope := e.lookupScope(name); scope != nil {
		e.assign(scope, name, val)
		return
	}
	e._G.SetString(name, val)
}
