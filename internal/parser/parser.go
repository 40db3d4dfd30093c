package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/ast"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/token"
)

// UnknownInput is the chunk name used when the input has no name.
const UnknownInput = "<unknown input>"

// Parser describes a parser that can parse input into a Lua ast.Chunk.
type Parser interface {
	// Parse parses the whole input. The returned error, if any, is always
	// a *SyntaxError describing the first mismatch.
	Parse() (ast.Chunk, error)
}

type namer interface {
	Name() string
}

type parser struct {
	scanner

	name string

	// tk is the current token, peeked is set if the token after tk
	// has already been scanned.
	tk     token.Token
	peeked token.Token

	// varargs tracks, for each function being parsed, whether '...' is
	// allowed in its body.
	varargs []bool
}

// New creates a new single-use Lua-parser.
func New(input io.Reader) (Parser, error) {
	sc, err := newInMemoryScanner(input)
	if err != nil {
		return nil, fmt.Errorf("in memory scanner: %w", err)
	}
	name := UnknownInput
	if n, ok := input.(namer); ok {
		name = filepath.Base(n.Name())
	}
	return &parser{
		scanner: sc,
		name:    name,
	}, nil
}

// NewString creates a new single-use Lua-parser for the given source.
func NewString(name, source string) Parser {
	if name == "" {
		name = UnknownInput
	}
	return &parser{
		scanner: newInMemoryScannerString(source),
		name:    name,
	}
}

// ParseString parses the given source in one go.
func ParseString(name, source string) (ast.Chunk, error) {
	return NewString(name, source).Parse()
}

// Parse parses the input of this parser. If the parsing was not successful,
// the error is a *SyntaxError.
func (p *parser) Parse() (ast.Chunk, error) {
	p.varargs = []bool{true}
	if err := p.advance(); err != nil {
		return ast.Chunk{}, err
	}
	block, err := p.block()
	if err != nil {
		return ast.Chunk{}, err
	}
	if !p.tk.Is(token.EOF) {
		return ast.Chunk{}, p.errorf("'<eof>' expected near %s", token.Quote(p.tk))
	}
	return ast.Chunk{
		Block: block,
		Name:  p.name,
	}, nil
}

// advance moves to the next token.
func (p *parser) advance() error {
	if p.peeked != nil {
		p.tk, p.peeked = p.peeked, nil
		return nil
	}
	next, err := p.scan()
	if err != nil {
		return err
	}
	p.tk = next
	return nil
}

// peek returns the token after the current one without consuming anything.
func (p *parser) peek() (token.Token, error) {
	if p.peeked == nil {
		next, err := p.scan()
		if err != nil {
			return nil, err
		}
		p.peeked = next
	}
	return p.peeked, nil
}

func (p *parser) scan() (token.Token, error) {
	next, err := p.scanner.next()
	if err != nil {
		var lexErr *LexError
		if errors.As(err, &lexErr) {
			return nil, syntaxErrorFromLexError(lexErr)
		}
		return nil, &SyntaxError{Message: err.Error(), Line: p.scanner.tkpos().Line}
	}
	return next, nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	line := 0
	if p.tk != nil {
		line = p.tk.Line()
	}
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}

// accept consumes the current token if it has the given type.
func (p *parser) accept(typ token.Type) (bool, error) {
	if !p.tk.Is(typ) {
		return false, nil
	}
	return true, p.advance()
}

// expect consumes the current token, which must have the given type.
// what is the diagnostic name of the expected token, e.g. "')'".
func (p *parser) expect(typ token.Type, what string) (token.Token, error) {
	if !p.tk.Is(typ) {
		return nil, p.errorf("%s expected near %s", what, token.Quote(p.tk))
	}
	tk := p.tk
	return tk, p.advance()
}

// expectMatch consumes the token that closes the construct opened by who
// at the given line.
func (p *parser) expectMatch(typ token.Type, what, who string, line int) error {
	if !p.tk.Is(typ) {
		return p.errorf("'%s' expected (to close '%s' at line %d) near %s", what, who, line, token.Quote(p.tk))
	}
	return p.advance()
}

func (p *parser) checkName() (token.Token, error) {
	return p.expect(token.Name, "<name>")
}

func blockFollow(tk token.Token, withUntil bool) bool {
	switch {
	case tk.Is(token.Else), tk.Is(token.Elseif), tk.Is(token.End), tk.Is(token.EOF):
		return true
	case tk.Is(token.Until):
		return withUntil
	}
	return false
}

func (p *parser) block() (ast.Block, error) {
	block := ast.Block{}
	for !blockFollow(p.tk, true) {
		if p.tk.Is(token.Return) {
			ret, err := p.retstat()
			if err != nil {
				return nil, err
			}
			block = append(block, ret)
			break
		}
		stmt, err := p.stmt()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block = append(block, stmt)
		}
	}
	return block, nil
}

func (p *parser) retstat() (ast.LastStatement, error) {
	if err := p.advance(); err != nil {
		return ast.LastStatement{}, err
	}
	var explist []ast.Exp
	if !blockFollow(p.tk, true) && !p.tk.Is(token.SemiColon) {
		list, err := p.explist()
		if err != nil {
			return ast.LastStatement{}, err
		}
		explist = list
	}
	if _, err := p.accept(token.SemiColon); err != nil {
		return ast.LastStatement{}, err
	}
	return ast.LastStatement{
		ExpList: explist,
	}, nil
}

func (p *parser) stmt() (ast.Statement, error) {
	tk := p.tk
	switch {
	case tk.Is(token.SemiColon):
		return nil, p.advance()
	case tk.Is(token.If):
		return p.if_()
	case tk.Is(token.While):
		return p.while()
	case tk.Is(token.Do):
		return p.do()
	case tk.Is(token.For):
		return p.for_()
	case tk.Is(token.Repeat):
		return p.repeat()
	case tk.Is(token.Function):
		return p.function()
	case tk.Is(token.Local):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if ok, err := p.accept(token.Function); err != nil {
			return nil, err
		} else if ok {
			return p.localFunction()
		}
		return p.local()
	case tk.Is(token.Break):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.Break{Line: tk.Line()}, nil
	case tk.Is(token.Name), tk.Is(token.ParLeft):
		return p.exprStat()
	}

	// the token cannot start a statement, report it together with its successor
	if err := p.advance(); err != nil {
		return nil, err
	}
	return nil, &SyntaxError{
		Message: fmt.Sprintf("unexpected %s '%s' near %s", tk.Kind(), tk.Value(), token.Quote(p.tk)),
		Line:    tk.Line(),
	}
}

func (p *parser) do() (ast.DoBlock, error) {
	line := p.tk.Line()
	if err := p.advance(); err != nil {
		return ast.DoBlock{}, err
	}
	block, err := p.block()
	if err != nil {
		return ast.DoBlock{}, err
	}
	if err := p.expectMatch(token.End, "end", "do", line); err != nil {
		return ast.DoBlock{}, err
	}
	return ast.DoBlock{
		Do: block,
	}, nil
}

// condThen parses 'exp then block', as used by 'if' and 'elseif'.
func (p *parser) condThen() (ast.Exp, ast.Block, error) {
	if err := p.advance(); err != nil {
		return nil, nil, err
	}
	cond, err := p.exp()
	if err != nil {
		return nil, nil, err
	}
	if !p.tk.Is(token.Then) {
		return nil, nil, p.errorf("'then' expected before %s", token.Quote(p.tk))
	}
	if err := p.advance(); err != nil {
		return nil, nil, err
	}
	block, err := p.block()
	if err != nil {
		return nil, nil, err
	}
	return cond, block, nil
}

func (p *parser) if_() (ast.IfBlock, error) {
	line := p.tk.Line()

	cond, block, err := p.condThen()
	if err != nil {
		return ast.IfBlock{}, err
	}
	ifBlock := ast.IfBlock{
		If:   cond,
		Then: block,
	}

	for p.tk.Is(token.Elseif) {
		cond, block, err := p.condThen()
		if err != nil {
			return ast.IfBlock{}, err
		}
		ifBlock.ElseIf = append(ifBlock.ElseIf, ast.ElseIf{
			If:   cond,
			Then: block,
		})
	}

	if ok, err := p.accept(token.Else); err != nil {
		return ast.IfBlock{}, err
	} else if ok {
		block, err := p.block()
		if err != nil {
			return ast.IfBlock{}, err
		}
		ifBlock.Else = block
	}

	if err := p.expectMatch(token.End, "end", "if", line); err != nil {
		return ast.IfBlock{}, err
	}
	return ifBlock, nil
}

func (p *parser) while() (ast.WhileBlock, error) {
	line := p.tk.Line()
	if err := p.advance(); err != nil {
		return ast.WhileBlock{}, err
	}
	cond, err := p.exp()
	if err != nil {
		return ast.WhileBlock{}, err
	}
	if !p.tk.Is(token.Do) {
		return ast.WhileBlock{}, p.errorf("'do' expected before %s", token.Quote(p.tk))
	}
	if err := p.advance(); err != nil {
		return ast.WhileBlock{}, err
	}
	block, err := p.block()
	if err != nil {
		return ast.WhileBlock{}, err
	}
	if err := p.expectMatch(token.End, "end", "while", line); err != nil {
		return ast.WhileBlock{}, err
	}
	return ast.WhileBlock{
		While: cond,
		Do:    block,
	}, nil
}

func (p *parser) repeat() (ast.RepeatBlock, error) {
	line := p.tk.Line()
	if err := p.advance(); err != nil {
		return ast.RepeatBlock{}, err
	}
	block, err := p.block()
	if err != nil {
		return ast.RepeatBlock{}, err
	}
	if err := p.expectMatch(token.Until, "until", "repeat", line); err != nil {
		return ast.RepeatBlock{}, err
	}
	cond, err := p.exp()
	if err != nil {
		return ast.RepeatBlock{}, err
	}
	return ast.RepeatBlock{
		Repeat: block,
		Until:  cond,
	}, nil
}

func (p *parser) for_() (ast.Statement, error) {
	line := p.tk.Line()
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.checkName()
	if err != nil {
		return nil, err
	}
	switch {
	case p.tk.Is(token.Assign):
		return p.forNum(name, line)
	case p.tk.Is(token.Comma), p.tk.Is(token.In):
		return p.forIn(name, line)
	}
	return nil, p.errorf("'=' or 'in' expected near %s", token.Quote(p.tk))
}

// forBody parses 'do block end' of both for constructs.
func (p *parser) forBody(line int) (ast.Block, error) {
	if !p.tk.Is(token.Do) {
		return nil, p.errorf("'do' expected near %s", token.Quote(p.tk))
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	block, err := p.block()
	if err != nil {
		return nil, err
	}
	if err := p.expectMatch(token.End, "end", "for", line); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *parser) forNum(name token.Token, line int) (ast.ForBlock, error) {
	if err := p.advance(); err != nil { // '='
		return ast.ForBlock{}, err
	}
	from, err := p.exp()
	if err != nil {
		return ast.ForBlock{}, err
	}
	if _, err := p.expect(token.Comma, "','"); err != nil {
		return ast.ForBlock{}, err
	}
	to, err := p.exp()
	if err != nil {
		return ast.ForBlock{}, err
	}
	var step ast.Exp
	if ok, err := p.accept(token.Comma); err != nil {
		return ast.ForBlock{}, err
	} else if ok {
		if step, err = p.exp(); err != nil {
			return ast.ForBlock{}, err
		}
	}
	block, err := p.forBody(line)
	if err != nil {
		return ast.ForBlock{}, err
	}
	return ast.ForBlock{
		Name: name,
		From: from,
		To:   to,
		Step: step,
		Do:   block,
	}, nil
}

func (p *parser) forIn(first token.Token, line int) (ast.ForInBlock, error) {
	names := []token.Token{first}
	for p.tk.Is(token.Comma) {
		if err := p.advance(); err != nil {
			return ast.ForInBlock{}, err
		}
		name, err := p.checkName()
		if err != nil {
			return ast.ForInBlock{}, err
		}
		names = append(names, name)
	}
	if _, err := p.expect(token.In, "'in'"); err != nil {
		return ast.ForInBlock{}, err
	}
	explist, err := p.explist()
	if err != nil {
		return ast.ForInBlock{}, err
	}
	block, err := p.forBody(line)
	if err != nil {
		return ast.ForInBlock{}, err
	}
	return ast.ForInBlock{
		NameList: names,
		In:       explist,
		Do:       block,
	}, nil
}

func (p *parser) function() (ast.Function, error) {
	line := p.tk.Line()
	if err := p.advance(); err != nil {
		return ast.Function{}, err
	}
	name, err := p.funcname()
	if err != nil {
		return ast.Function{}, err
	}
	body, err := p.funcbody(line, name.Name2 != nil)
	if err != nil {
		return ast.Function{}, err
	}
	return ast.Function{
		FuncName: name,
		FuncBody: body,
	}, nil
}

func (p *parser) funcname() (ast.FuncName, error) {
	first, err := p.checkName()
	if err != nil {
		return ast.FuncName{}, err
	}
	name := ast.FuncName{
		Name1: []token.Token{first},
	}
	for p.tk.Is(token.Dot) {
		if err := p.advance(); err != nil {
			return ast.FuncName{}, err
		}
		next, err := p.checkName()
		if err != nil {
			return ast.FuncName{}, err
		}
		name.Name1 = append(name.Name1, next)
	}
	if ok, err := p.accept(token.Colon); err != nil {
		return ast.FuncName{}, err
	} else if ok {
		method, err := p.checkName()
		if err != nil {
			return ast.FuncName{}, err
		}
		name.Name2 = method
	}
	return name, nil
}

func (p *parser) localFunction() (ast.LocalFunction, error) {
	line := p.tk.Line()
	name, err := p.checkName()
	if err != nil {
		return ast.LocalFunction{}, err
	}
	body, err := p.funcbody(line, false)
	if err != nil {
		return ast.LocalFunction{}, err
	}
	return ast.LocalFunction{
		Name:     name,
		FuncBody: body,
	}, nil
}

// funcbody parses '(' parlist ')' block end. If method is set, an implicit
// first parameter 'self' is declared.
func (p *parser) funcbody(line int, method bool) (ast.FuncBody, error) {
	var parlist ast.ParList
	if method {
		parlist.NameList = append(parlist.NameList, token.New("self", p.tk.Pos(), token.Name))
	}
	if _, err := p.expect(token.ParLeft, "'('"); err != nil {
		return ast.FuncBody{}, err
	}
	if !p.tk.Is(token.ParRight) {
		for {
			if ok, err := p.accept(token.Ellipsis); err != nil {
				return ast.FuncBody{}, err
			} else if ok {
				parlist.Ellipsis = true
				break
			}
			name, err := p.checkName()
			if err != nil {
				return ast.FuncBody{}, err
			}
			parlist.NameList = append(parlist.NameList, name)
			if ok, err := p.accept(token.Comma); err != nil {
				return ast.FuncBody{}, err
			} else if !ok {
				break
			}
		}
	}
	if _, err := p.expect(token.ParRight, "')'"); err != nil {
		return ast.FuncBody{}, err
	}

	p.varargs = append(p.varargs, parlist.Ellipsis)
	block, err := p.block()
	p.varargs = p.varargs[:len(p.varargs)-1]
	if err != nil {
		return ast.FuncBody{}, err
	}
	if err := p.expectMatch(token.End, "end", "function", line); err != nil {
		return ast.FuncBody{}, err
	}
	return ast.FuncBody{
		ParList: parlist,
		Block:   block,
		Line:    line,
	}, nil
}

func (p *parser) local() (ast.Local, error) {
	namelist, err := p.namelist()
	if err != nil {
		return ast.Local{}, err
	}
	var explist []ast.Exp
	if ok, err := p.accept(token.Assign); err != nil {
		return ast.Local{}, err
	} else if ok {
		if explist, err = p.explist(); err != nil {
			return ast.Local{}, err
		}
	}
	return ast.Local{
		NameList: namelist,
		ExpList:  explist,
	}, nil
}

func (p *parser) namelist() ([]token.Token, error) {
	var list []token.Token
	for {
		name, err := p.checkName()
		if err != nil {
			return nil, err
		}
		list = append(list, name)
		if ok, err := p.accept(token.Comma); err != nil {
			return nil, err
		} else if !ok {
			return list, nil
		}
	}
}

// exprStat parses either an assignment or a function call statement.
func (p *parser) exprStat() (ast.Statement, error) {
	line := p.tk.Line()
	first, err := p.suffixedexp()
	if err != nil {
		return nil, err
	}
	if !p.tk.Is(token.Assign) && !p.tk.Is(token.Comma) {
		call, ok := first.(ast.CallExp)
		if !ok {
			return nil, p.errorf("syntax error near %s", token.Quote(p.tk))
		}
		return ast.FunctionCall{
			Call: call,
		}, nil
	}

	varlist := []ast.Exp{first}
	for p.tk.Is(token.Comma) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.suffixedexp()
		if err != nil {
			return nil, err
		}
		varlist = append(varlist, v)
	}
	for _, v := range varlist {
		switch v.(type) {
		case ast.NameExp, ast.IndexExp:
		default:
			return nil, p.errorf("syntax error near %s", token.Quote(p.tk))
		}
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return nil, err
	}
	explist, err := p.explist()
	if err != nil {
		return nil, err
	}
	return ast.Assignment{
		VarList: varlist,
		ExpList: explist,
		Line:    line,
	}, nil
}

func (p *parser) explist() ([]ast.Exp, error) {
	var list []ast.Exp
	for {
		exp, err := p.exp()
		if err != nil {
			return nil, err
		}
		list = append(list, exp)
		if ok, err := p.accept(token.Comma); err != nil {
			return nil, err
		} else if !ok {
			return list, nil
		}
	}
}

func (p *parser) exp() (ast.Exp, error) {
	return p.subexp(precedenceNone)
}

// subexp parses an expression whose binary operators all bind tighter
// than limit (precedence climbing).
func (p *parser) subexp(limit precedence) (ast.Exp, error) {
	var left ast.Exp
	if p.tk.Is(token.UnaryOperator) {
		op := p.tk
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.subexp(precedenceUnary)
		if err != nil {
			return nil, err
		}
		left = ast.UnopExp{
			Unop: op,
			Exp:  operand,
		}
	} else {
		simple, err := p.simpleexp()
		if err != nil {
			return nil, err
		}
		left = simple
	}

	for p.tk.Is(token.BinaryOperator) {
		op := p.tk
		prec := precedenceOf(op.Value())
		if prec <= limit {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		next := prec
		if isRightAssociative(op.Value()) {
			next--
		}
		right, err := p.subexp(next)
		if err != nil {
			return nil, err
		}
		left = ast.BinopExp{
			Left:  left,
			Binop: op,
			Right: right,
		}
	}
	return left, nil
}

func (p *parser) simpleexp() (ast.Exp, error) {
	tk := p.tk
	switch {
	case tk.Is(token.Number):
		n, err := parseNumber(tk.Value())
		if err != nil {
			return nil, p.errorf("malformed number near '%s'", tk.Value())
		}
		return ast.SimpleExp{Token: tk, Number: n}, p.advance()
	case tk.Is(token.String):
		return ast.SimpleExp{Token: tk, String: tk.Value()}, p.advance()
	case tk.Is(token.Nil), tk.Is(token.True), tk.Is(token.False):
		return ast.SimpleExp{Token: tk}, p.advance()
	case tk.Is(token.Ellipsis):
		if !p.varargs[len(p.varargs)-1] {
			return nil, p.errorf("cannot use '...' outside a vararg function near '...'")
		}
		return ast.SimpleExp{Token: tk}, p.advance()
	case tk.Is(token.CurlyLeft):
		return p.tableConstructor()
	case tk.Is(token.Function):
		line := tk.Line()
		if err := p.advance(); err != nil {
			return nil, err
		}
		body, err := p.funcbody(line, false)
		if err != nil {
			return nil, err
		}
		return ast.FunctionExp{FuncBody: body}, nil
	}
	return p.suffixedexp()
}

func (p *parser) primaryexp() (ast.Exp, error) {
	tk := p.tk
	switch {
	case tk.Is(token.Name):
		return ast.NameExp{Name: tk}, p.advance()
	case tk.Is(token.ParLeft):
		line := tk.Line()
		if err := p.advance(); err != nil {
			return nil, err
		}
		exp, err := p.exp()
		if err != nil {
			return nil, err
		}
		if err := p.expectMatch(token.ParRight, ")", "(", line); err != nil {
			return nil, err
		}
		return ast.ParenExp{Exp: exp}, nil
	}
	return nil, p.errorf("unexpected symbol near %s", token.Quote(tk))
}

func (p *parser) suffixedexp() (ast.Exp, error) {
	exp, err := p.primaryexp()
	if err != nil {
		return nil, err
	}
	for {
		tk := p.tk
		switch {
		case tk.Is(token.Dot):
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.checkName()
			if err != nil {
				return nil, err
			}
			exp = ast.IndexExp{
				Prefix: exp,
				Key:    ast.SimpleExp{Token: name, String: name.Value()},
				Line:   tk.Line(),
			}
		case tk.Is(token.BracketLeft):
			if err := p.advance(); err != nil {
				return nil, err
			}
			key, err := p.exp()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.BracketRight, "']'"); err != nil {
				return nil, err
			}
			exp = ast.IndexExp{
				Prefix: exp,
				Key:    key,
				Line:   tk.Line(),
			}
		case tk.Is(token.Colon):
			if err := p.advance(); err != nil {
				return nil, err
			}
			method, err := p.checkName()
			if err != nil {
				return nil, err
			}
			args, err := p.args()
			if err != nil {
				return nil, err
			}
			exp = ast.CallExp{
				Prefix: exp,
				Method: method,
				Args:   args,
				Line:   tk.Line(),
			}
		case tk.Is(token.ParLeft), tk.Is(token.String), tk.Is(token.CurlyLeft):
			args, err := p.args()
			if err != nil {
				return nil, err
			}
			exp = ast.CallExp{
				Prefix: exp,
				Args:   args,
				Line:   tk.Line(),
			}
		default:
			return exp, nil
		}
	}
}

func (p *parser) args() ([]ast.Exp, error) {
	tk := p.tk
	switch {
	case tk.Is(token.String):
		return []ast.Exp{ast.SimpleExp{Token: tk, String: tk.Value()}}, p.advance()
	case tk.Is(token.CurlyLeft):
		table, err := p.tableConstructor()
		if err != nil {
			return nil, err
		}
		return []ast.Exp{table}, nil
	case tk.Is(token.ParLeft):
		line := tk.Line()
		if err := p.advance(); err != nil {
			return nil, err
		}
		if ok, err := p.accept(token.ParRight); err != nil {
			return nil, err
		} else if ok {
			// no explist can follow, so immediately return an empty one
			return []ast.Exp{}, nil
		}
		explist, err := p.explist()
		if err != nil {
			return nil, err
		}
		if err := p.expectMatch(token.ParRight, ")", "(", line); err != nil {
			return nil, err
		}
		return explist, nil
	}
	return nil, p.errorf("function arguments expected near %s", token.Quote(tk))
}

func (p *parser) tableConstructor() (ast.TableConstructor, error) {
	line := p.tk.Line()
	if _, err := p.expect(token.CurlyLeft, "'{'"); err != nil {
		return ast.TableConstructor{}, err
	}
	table := ast.TableConstructor{
		Fields: []ast.Field{},
		Line:   line,
	}
	for !p.tk.Is(token.CurlyRight) {
		field, err := p.field()
		if err != nil {
			return ast.TableConstructor{}, err
		}
		table.Fields = append(table.Fields, field)

		if !p.tk.Is(token.Comma) && !p.tk.Is(token.SemiColon) {
			break
		}
		if err := p.advance(); err != nil {
			return ast.TableConstructor{}, err
		}
	}
	if err := p.expectMatch(token.CurlyRight, "}", "{", line); err != nil {
		return ast.TableConstructor{}, err
	}
	return table, nil
}

func (p *parser) field() (ast.Field, error) {
	switch {
	case p.tk.Is(token.BracketLeft):
		if err := p.advance(); err != nil {
			return ast.Field{}, err
		}
		key, err := p.exp()
		if err != nil {
			return ast.Field{}, err
		}
		if _, err := p.expect(token.BracketRight, "']'"); err != nil {
			return ast.Field{}, err
		}
		if _, err := p.expect(token.Assign, "'='"); err != nil {
			return ast.Field{}, err
		}
		val, err := p.exp()
		if err != nil {
			return ast.Field{}, err
		}
		return ast.Field{LeftExp: key, RightExp: val}, nil
	case p.tk.Is(token.Name):
		next, err := p.peek()
		if err != nil {
			return ast.Field{}, err
		}
		if next.Is(token.Assign) {
			name := p.tk
			if err := p.advance(); err != nil { // name
				return ast.Field{}, err
			}
			if err := p.advance(); err != nil { // '='
				return ast.Field{}, err
			}
			val, err := p.exp()
			if err != nil {
				return ast.Field{}, err
			}
			return ast.Field{LeftName: name, RightExp: val}, nil
		}
	}
	val, err := p.exp()
	if err != nil {
		return ast.Field{}, err
	}
	return ast.Field{RightExp: val}, nil
}

// parseNumber converts a numeral as produced by the scanner.
func parseNumber(s string) (float64, error) {
	if len(s) > 2 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		return float64(int64(n)), nil
	}
	return strconv.ParseFloat(s, 64)
}
