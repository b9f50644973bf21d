// Package parser parses Tarn source code into an abstract syntax tree.
//
// Parsing is a single pass: it attaches a symbol table to every
// scope-bearing node, normalizes type expressions into disjunctive
// normal form, resolves module-name strings into synthetic $module-N
// identifiers, and synthesizes a trivial create constructor for fully
// initialized classes. The parser never aborts; it reports diagnostics
// to a sink, resynchronizes, and always produces a tree.
package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tarn-lang/tarn/ident"
	"github.com/tarn-lang/tarn/lexer"
	"github.com/tarn-lang/tarn/loc"
	"github.com/tarn-lang/tarn/mod"
)

// The Tarn source file extension.
const ext = "tarn"

// result is the outcome of one grammar production. A production that
// returns skip has not committed any token and the caller may try an
// alternative. success and errored productions have committed tokens;
// an errored production has reported at least one diagnostic and its
// node may be partial.
type result int

const (
	skip result = iota
	success
	errored
)

type parser struct {
	source    *loc.Source
	pos       int
	la        int
	previous  lexer.Token
	lookahead []lexer.Token

	symbols Scoped
	in      *ident.Interner

	failed  bool
	imports []string
	stdlib  string
	out     io.Writer
}

// Parse parses the module at path and every module it imports, rooted
// under a synthetic program node. path may name a module directory or,
// for testing, a single source file. Module strings resolve against
// the importing file's directory first and then against stdlib.
// Diagnostics are written to out. The returned bool reports whether
// the parse was diagnostic-free; the tree is returned either way.
func Parse(path, stdlib string, out io.Writer) (bool, *Class) {
	p := &parser{stdlib: stdlib, out: out, in: ident.New()}
	program := &Class{}
	st := p.push(program)
	defer st.pop()

	p.imports = append(p.imports, mod.Canonical(path))
	// The import list grows while parsing; index, don't range.
	for i := 0; i < len(p.imports); i++ {
		p.module(p.imports[i], i, program)
	}
	return !p.failed, program
}

// Scope stack.

// A scopePush releases one scope push. pop is a no-op after done,
// which pops early and hands the scope's lifetime to the caller.
type scopePush struct {
	p      *parser
	isDone bool
}

func (p *parser) push(n Scoped) *scopePush {
	n.Symbols().parent = p.symbols
	p.symbols = n
	return &scopePush{p: p}
}

func (s *scopePush) pop() {
	if !s.isDone {
		s.p.pop()
	}
}

func (s *scopePush) done() {
	s.p.pop()
	s.isDone = true
}

func (p *parser) pop() {
	p.symbols = p.symbols.Symbols().parent
}

func (p *parser) setSym(name string, l loc.Loc, n Node) {
	if name == "" {
		return
	}
	if prev := p.symbols.Symbols().Set(name, n); prev != nil {
		p.error().
			at(l, "There is a previous definition of "+strconv.Quote(name)).
			at(prev.Loc(), "The previous definition is here")
	}
}

// Diagnostics.

type diagnostic struct{ p *parser }

// error starts a diagnostic and flips the parse outcome to errored.
func (p *parser) error() *diagnostic {
	p.failed = true
	fmt.Fprintln(p.out, "--------")
	return &diagnostic{p}
}

// at writes one location/message pair followed by a source excerpt.
func (d *diagnostic) at(l loc.Loc, msg string) *diagnostic {
	if l.Src == nil {
		fmt.Fprintln(d.p.out, msg)
		return d
	}
	fmt.Fprintf(d.p.out, "%s: %s%s\n", l, msg, l.Excerpt())
	return d
}

// note writes a bare follow-up line.
func (d *diagnostic) note(msg string) *diagnostic {
	fmt.Fprintln(d.p.out, msg)
	return d
}

// Expressions.

func (p *parser) optWhen() (Expr, result) {
	// when <- 'when' postfix lambda
	if !p.has(lexer.When) {
		return nil, skip
	}
	r := success
	when := &When{L: p.previous.Loc}

	e, r2 := p.optPostfix()
	if r2 != success {
		p.error().at(p.loc(), "Expected a when condition")
		r = errored
	}
	when.WaitFor = e

	b, r2 := p.optLambda(nil)
	if r2 != success {
		p.error().at(p.loc(), "Expected a when body")
		r = errored
	}
	when.Behaviour = b
	return when, r
}

func (p *parser) optTry() (Expr, result) {
	// try <- 'try' lambda 'catch' '{' lambda* '}'
	if !p.has(lexer.Try) {
		return nil, skip
	}
	r := success
	tr := &Try{L: p.previous.Loc}

	b, r2 := p.optLambda(nil)
	if r2 != success {
		p.error().at(p.loc(), "Expected a try block")
		r = errored
	}
	tr.Body = b

	if body, ok := tr.Body.(*Lambda); ok {
		if len(body.TypeParms) > 0 {
			p.error().at(body.TypeParms[0].Loc(), "A try block can't have type parameters")
			r = errored
		}
		if len(body.Params) > 0 {
			p.error().at(body.Params[0].Loc(), "A try block can't have parameters")
			r = errored
		}
	}

	if !p.has(lexer.Catch) {
		p.error().at(p.loc(), "Expected a catch block")
		return tr, errored
	}
	if !p.has(lexer.LBrace) {
		p.error().at(p.loc(), "Expected a {")
		return tr, errored
	}
	for {
		clause, r2 := p.optLambda(nil)
		if r2 == skip {
			break
		}
		tr.Catches = append(tr.Catches, clause)
		if r2 == errored {
			r = errored
		}
	}
	if !p.has(lexer.RBrace) {
		p.error().at(p.loc(), "Expected a }")
		return tr, errored
	}
	return tr, r
}

func (p *parser) optMatch() (Expr, result) {
	// match <- 'match' postfix '{' lambda* '}'
	if !p.has(lexer.Match) {
		return nil, skip
	}
	r := success
	match := &Match{L: p.previous.Loc}

	e, r2 := p.optPostfix()
	if r2 != success {
		p.error().at(p.loc(), "Expected a match test-expression")
		r = errored
	}
	match.Test = e

	if !p.has(lexer.LBrace) {
		p.error().at(p.loc(), "Expected { to start match cases")
		return match, errored
	}
	for !p.has(lexer.RBrace) {
		if p.has(lexer.End) {
			p.error().at(p.loc(), "Expected a case or } to end match cases")
			r = errored
			break
		}
		clause, r2 := p.optLambda(nil)
		if r2 == skip {
			break
		}
		match.Cases = append(match.Cases, clause)
		if r2 == errored {
			r = errored
		}
	}
	return match, r
}

func (p *parser) optTuple() (Expr, result) {
	// tuple <- '(' (expr (',' expr)*)? ')'
	if !p.has(lexer.LParen) {
		return nil, skip
	}
	tup := &Tuple{L: p.previous.Loc}
	if p.has(lexer.RParen) {
		tup.L.Extend(p.previous.Loc)
		return tup, success
	}
	r := success
	for {
		elem, r2 := p.optExpr()
		if r2 == skip {
			break
		}
		if r2 == errored {
			p.error().at(p.loc(), "Expected an expression")
			p.restartBefore(lexer.Comma, lexer.RParen)
			r = errored
		}
		if elem != nil {
			tup.Seq = append(tup.Seq, elem)
		}
		if !p.has(lexer.Comma) {
			break
		}
	}
	if !p.has(lexer.RParen) {
		p.error().at(p.loc(), "Expected , or )")
		r = errored
	}
	tup.L.Extend(p.previous.Loc)
	return tup, r
}

// optLambda parses a brace-delimited lambda. fn is non-nil when the
// lambda is a function body: the function's signature scope already
// bound its type parameters and parameters, so any in the braces are
// misplaced and reported.
func (p *parser) optLambda(fn *Lambda) (Expr, result) {
	// lambda <- '{' (typeparams? (param (',' param)*)? '=>')? (expr ';'*)* '}'
	if !p.has(lexer.LBrace) {
		return nil, skip
	}
	lambda := fn
	if lambda == nil {
		lambda = &Lambda{Result: &InferType{}}
	}
	lambda.L = p.previous.Loc
	st := p.push(lambda)
	defer st.pop()

	r := p.optTypeParams(&lambda.TypeParms)
	if fn != nil && r != skip && len(lambda.TypeParms) > 0 {
		last := lambda.TypeParms[len(lambda.TypeParms)-1]
		p.error().at(last.Loc(), "Function type parameters can't be placed in lambda position")
	}

	hasFatArrow := true
	if r == skip {
		hasFatArrow = p.peekDelimited(lexer.FatArrow, lexer.RBrace)
		r = success
		p.rewind()
	}
	if hasFatArrow {
		r2 := p.optParamList(&lambda.Params, lexer.FatArrow)
		if fn != nil && r2 != skip && len(lambda.Params) > 0 {
			last := lambda.Params[len(lambda.Params)-1]
			p.error().at(last.Loc(), "Function parameters can't be placed in lambda position")
		}
		if r2 == errored {
			r = errored
		}
		if !p.has(lexer.FatArrow) {
			p.error().at(p.loc(), "Expected =>")
			r = errored
		}
	}

	for !p.has(lexer.RBrace) {
		if p.has(lexer.End) {
			p.error().at(lambda.L, "Unexpected EOF in lambda body")
			return lambda, errored
		}
		e, r2 := p.optExpr()
		if r2 == skip {
			break
		}
		if e != nil {
			lambda.Body = append(lambda.Body, e)
		}
		if r2 == errored {
			r = errored
		}
		for p.has(lexer.Semicolon) {
		}
	}
	return lambda, r
}

func (p *parser) optRef() (Expr, result) {
	// ref <- ident, when it resolves to a param, let, or var in scope
	if !p.peek(lexer.Ident) {
		return nil, skip
	}
	name := p.lookahead[p.la-1].Text()
	def := p.symbols.Symbols().GetScope(name)
	local := def != nil &&
		(def.Kind() == KindParam || def.Kind() == KindLet || def.Kind() == KindVar)
	p.rewind()
	if !local {
		return nil, skip
	}
	if !p.has(lexer.Ident) {
		return nil, skip
	}
	return &Ref{Name: p.in.Intern(name), L: p.previous.Loc}, success
}

func (p *parser) optConstant() (Expr, result) {
	// constant <- string / character / int / float / hex / binary / bool
	var e Expr
	switch {
	case p.has(lexer.EscapedString):
		e = &EscapedString{L: p.previous.Loc}
	case p.has(lexer.UnescapedString):
		e = &UnescapedString{L: p.previous.Loc}
	case p.has(lexer.Character):
		e = &Character{L: p.previous.Loc}
	case p.has(lexer.Int):
		e = &Int{L: p.previous.Loc}
	case p.has(lexer.Float):
		e = &Float{L: p.previous.Loc}
	case p.has(lexer.Hex):
		e = &Hex{L: p.previous.Loc}
	case p.has(lexer.Binary):
		e = &Binary{L: p.previous.Loc}
	case p.has(lexer.Bool):
		e = &Bool{L: p.previous.Loc}
	default:
		return nil, skip
	}
	return e, success
}

func (p *parser) objectLiteral() (Expr, result) {
	// objectliteral <- 'new' ('@' ident)? type? typebody
	r := success
	obj := &ObjectLiteral{L: p.previous.Loc}
	st := p.push(obj)
	defer st.pop()

	if p.has(lexer.Symbol, "@") {
		if p.has(lexer.Ident) {
			obj.In = p.in.Intern(p.previous.Text())
		} else {
			p.error().at(p.loc(), "Expected an identifier")
			r = errored
		}
	}

	// If the body doesn't start at once there is an inheritance clause.
	inherits := !p.peek(lexer.LBrace)
	p.rewind()
	if inherits {
		t, r2 := p.typeExpr()
		if t != nil {
			obj.Inherits = t
		}
		if r2 == errored {
			r = errored
		}
		if p.checkInherit(obj.Inherits) == errored {
			r = errored
		}
	}
	if p.typeBody(&obj.Members) != success {
		r = errored
	}
	return obj, r
}

func (p *parser) optNew() (Expr, result) {
	// new <- 'new' ('@' ident)? (tuple / typebody / type typebody)
	if !p.has(lexer.New) {
		return nil, skip
	}
	ctor := p.peek(lexer.LParen) ||
		p.peek(lexer.Symbol, "@") && p.peek(lexer.Ident) && p.peek(lexer.LParen)
	p.rewind()
	if !ctor {
		return p.objectLiteral()
	}

	r := success
	n := &New{L: p.previous.Loc}
	if p.has(lexer.Symbol, "@") {
		if p.has(lexer.Ident) {
			n.In = p.in.Intern(p.previous.Text())
		} else {
			p.error().at(p.loc(), "Expected an identifier")
			r = errored
		}
	}
	args, r2 := p.optTuple()
	if r2 != success {
		r = errored
	}
	if args != nil {
		n.Args = args
	}
	return n, r
}

func (p *parser) optAtom() (Expr, result) {
	// atom <- tuple / constant / new / when / try / match / lambda
	if e, r := p.optTuple(); r != skip {
		return e, r
	}
	if e, r := p.optConstant(); r != skip {
		return e, r
	}
	if e, r := p.optNew(); r != skip {
		return e, r
	}
	if e, r := p.optWhen(); r != skip {
		return e, r
	}
	if e, r := p.optTry(); r != skip {
		return e, r
	}
	if e, r := p.optMatch(); r != skip {
		return e, r
	}
	if e, r := p.optLambda(nil); r != skip {
		return e, r
	}
	return nil, skip
}

// applyTypeRef returns a TypeRef for the synthesized apply name.
func (p *parser) applyTypeRef(l loc.Loc, typeargs []Type) *TypeRef {
	name := &TypeName{Name: ident.Apply, TypeArgs: typeargs}
	return &TypeRef{Names: []TypeNamePart{name}, L: l}
}

func (p *parser) optSelector(expr Expr) (Expr, result) {
	// selector <- name typeargs? ('::' name typeargs?)*
	ok := p.peek(lexer.Ident) || p.peek(lexer.Symbol)
	p.rewind()
	if !ok {
		return expr, skip
	}
	r := success
	// expr stays as the left-hand side of the selector.
	sel := &Select{Expr: expr}

	t, r2 := p.optTypeRef()
	if r2 != success {
		r = errored
	}
	if tr, ok := t.(*TypeRef); ok {
		sel.TypeRef = tr
		sel.L = tr.L
	}
	return sel, r
}

func (p *parser) optSelect(expr Expr) (Expr, result) {
	// select <- '.' selector tuple?
	if !p.has(lexer.Dot) {
		return expr, skip
	}
	r := success
	e, r2 := p.optSelector(expr)
	if r2 != success {
		p.error().at(p.loc(), "Expected a selector")
		r = errored
	}
	if sel, ok := e.(*Select); ok {
		args, r3 := p.optTuple()
		if r3 == errored {
			r = errored
		}
		if args != nil {
			sel.Args = args
		}
	}
	return e, r
}

func (p *parser) optApplySugar() (Expr, result) {
	// applysugar <- ref typeargs? tuple?
	e, r := p.optRef()
	if r == skip {
		return nil, skip
	}
	ok := p.peek(lexer.LSquare) || p.peek(lexer.LParen)
	p.rewind()
	if !ok {
		return e, r
	}

	var typeargs []Type
	if p.optTypeArgs(&typeargs) == errored {
		r = errored
	}
	sel := &Select{Expr: e, TypeRef: p.applyTypeRef(loc.Loc{}, typeargs)}
	args, r2 := p.optTuple()
	if r2 == errored {
		r = errored
	}
	if args != nil {
		sel.Args = args
	}
	return sel, r
}

func (p *parser) optPostfixStart() (Expr, result) {
	// postfixstart <- atom / applysugar
	if e, r := p.optAtom(); r != skip {
		return e, r
	}
	if e, r := p.optApplySugar(); r != skip {
		return e, r
	}
	return nil, skip
}

func (p *parser) optPostfix() (Expr, result) {
	// postfix <- postfixstart select*
	e, r := p.optPostfixStart()
	if r == skip {
		return nil, skip
	}
	for {
		e2, r2 := p.optSelect(e)
		if r2 == skip {
			break
		}
		e = e2
		if r2 == errored {
			r = errored
		}
	}
	return e, r
}

func (p *parser) optInfix() (Expr, result) {
	// infix <- (postfix / selector)+
	var expr Expr
	r := success
	for {
		if next, r2 := p.optPostfix(); r2 != skip {
			switch {
			case expr == nil:
				// The first element in an expression.
				expr = next
			case isOpenSelect(expr):
				// The right-hand side of an infix operator.
				expr.(*Select).Args = next
			default:
				// Adjacency means `expr.apply(next)`.
				tr := p.applyTypeRef(expr.Loc(), nil)
				expr = &Select{Expr: expr, Args: next, TypeRef: tr, L: tr.L}
			}
		} else if e2, r2 := p.optSelector(expr); r2 != skip {
			// expr stays as the left-hand side of the selector.
			expr = e2
			if r2 == errored {
				r = errored
			}
		} else {
			break
		}
	}
	if expr == nil {
		return nil, skip
	}
	return expr, r
}

// isOpenSelect reports whether e is a selector still awaiting its
// argument, i.e. an infix operator whose right-hand side comes next.
func isOpenSelect(e Expr) bool {
	sel, ok := e.(*Select)
	return ok && sel.Args == nil
}

func (p *parser) optLet() (Expr, result) {
	if !p.has(lexer.Let) {
		return nil, skip
	}
	if !p.has(lexer.Ident) {
		p.error().at(p.loc(), "Expected an identifier")
		return nil, errored
	}
	l := &Let{
		Name: p.in.Intern(p.previous.Text()),
		Type: &InferType{},
		L:    p.previous.Loc,
	}
	p.setSym(l.Name, l.L, l)
	return l, success
}

func (p *parser) optVar() (Expr, result) {
	if !p.has(lexer.Var) {
		return nil, skip
	}
	if !p.has(lexer.Ident) {
		p.error().at(p.loc(), "Expected an identifier")
		return nil, errored
	}
	v := &Var{
		Name: p.in.Intern(p.previous.Text()),
		Type: &InferType{},
		L:    p.previous.Loc,
	}
	p.setSym(v.Name, v.L, v)
	return v, success
}

func (p *parser) optThrow() (Expr, result) {
	if !p.has(lexer.Throw) {
		return nil, skip
	}
	r := success
	thr := &Throw{L: p.previous.Loc}
	e, r2 := p.optExpr()
	if r2 == skip {
		p.error().at(p.loc(), "Expected a throw expression")
		r = errored
	} else {
		r = r2
	}
	thr.Expr = e
	return thr, r
}

func (p *parser) optExprStart() (Expr, result) {
	// exprstart <- let / var / throw / infix
	if e, r := p.optLet(); r != skip {
		return e, r
	}
	if e, r := p.optVar(); r != skip {
		return e, r
	}
	if e, r := p.optThrow(); r != skip {
		return e, r
	}
	if e, r := p.optInfix(); r != skip {
		return e, r
	}
	return nil, skip
}

func (p *parser) optExpr() (Expr, result) {
	// expr <- exprstart oftype? ('=' expr)?
	e, r := p.optExprStart()
	if r == skip {
		return nil, skip
	}

	if p.peek(lexer.Colon) {
		p.rewind()
		ot := &Oftype{Expr: e}
		if e != nil {
			ot.L = e.Loc()
		}
		t, r2 := p.ofType()
		if t != nil {
			ot.Type = t
			ot.L.Extend(t.Loc())
		}
		if r2 != success {
			r = errored
		}
		e = ot
	}

	if p.has(lexer.Equals) {
		asgn := &Assign{Left: e, L: p.previous.Loc}
		right, r2 := p.optExpr()
		if r2 != success {
			p.error().at(p.loc(), "Expected an expression on the right-hand side")
			r = errored
		}
		asgn.Right = right
		e = asgn
	}
	return e, r
}

func (p *parser) initExpr() (Expr, result) {
	// initexpr <- '=' expr, encoded as a zero-parameter lambda
	if !p.has(lexer.Equals) {
		return nil, skip
	}
	lambda := &Lambda{Result: &InferType{}, L: p.previous.Loc}
	st := p.push(lambda)
	defer st.pop()

	e, r := p.optExpr()
	if r == skip {
		p.error().at(p.loc(), "Expected an initialiser expression")
		return lambda, errored
	}
	if e != nil {
		lambda.Body = append(lambda.Body, e)
	}
	return lambda, r
}

// Types.

func (p *parser) optTupleType() (Type, result) {
	// tupletype <- '(' (type (',' type)*)? ')'
	if !p.has(lexer.LParen) {
		return nil, skip
	}
	tup := &TupleType{L: p.previous.Loc}
	if p.has(lexer.RParen) {
		tup.L.Extend(p.previous.Loc)
		return tup, success
	}
	r := success
	for {
		elem, r2 := p.typeExpr()
		if r2 != success {
			r = errored
			p.restartBefore(lexer.Comma, lexer.RParen)
		}
		if elem != nil {
			tup.Types = append(tup.Types, elem)
		}
		if !p.has(lexer.Comma) {
			break
		}
	}
	if !p.has(lexer.RParen) {
		p.error().at(p.loc(), "Expected )")
		r = errored
	}
	tup.L.Extend(p.previous.Loc)
	// A one-element tuple type is its element.
	if len(tup.Types) == 1 {
		return tup.Types[0], r
	}
	return tup, r
}

func (p *parser) optModuleName() (*ModuleName, result) {
	// modulename <- escapedstring typeargs?
	if !p.has(lexer.EscapedString) {
		return nil, skip
	}
	r := success
	name := &ModuleName{}
	name.L = p.previous.Loc

	str, err := lexer.Unescape(p.previous.Text())
	if err != nil {
		// A bad escape still names a module as written.
		str = strings.Trim(p.previous.Text(), `"`)
	}
	// Look for the module relative to the current source file first,
	// then relative to the standard library.
	base := mod.ToDirectory(str)
	relative := mod.Join(mod.ToDirectory(p.source.Origin), base)
	std := mod.Join(p.stdlib, base)
	find := mod.Canonical(relative)
	if find == "" {
		find = mod.Canonical(std)
	}

	if find != "" {
		i := -1
		for j, imp := range p.imports {
			if imp == find {
				i = j
				break
			}
		}
		if i < 0 {
			i = len(p.imports)
			p.imports = append(p.imports, find)
		}
		name.Name = p.in.Module(i)
	} else {
		p.error().
			at(name.L, "Couldn't locate module "+strconv.Quote(base)).
			note("Tried " + relative).
			note("Tried " + std)
		r = errored
	}

	if p.optTypeArgs(&name.TypeArgs) == errored {
		r = errored
	}
	return name, r
}

func (p *parser) optTypeRef() (Type, result) {
	// typeref <- (modulename / typename) ('::' typename)*
	if !p.peek(lexer.Ident) && !p.peek(lexer.Symbol) &&
		!p.peek(lexer.EscapedString) && !p.peek(lexer.UnescapedString) {
		return nil, skip
	}
	p.rewind()
	tr := &TypeRef{}
	r := success

	// A typeref can start with a module name.
	if name, r2 := p.optModuleName(); r2 != skip {
		if r2 == errored {
			r = errored
		}
		tr.L = name.Loc()
		tr.Names = append(tr.Names, name)
		if !p.has(lexer.DoubleColon) {
			return tr, r
		}
	}

	for {
		if !p.has(lexer.Ident) && !p.has(lexer.Symbol) {
			p.error().at(p.loc(), "Expected a type identifier")
			return tr, errored
		}
		name := &TypeName{Name: p.in.Intern(p.previous.Text()), L: p.previous.Loc}
		tr.Names = append(tr.Names, name)
		if tr.L.Src == nil {
			tr.L = name.L
		}
		if p.optTypeArgs(&name.TypeArgs) == errored {
			r = errored
		}
		tr.L.Extend(p.previous.Loc)
		if !p.has(lexer.DoubleColon) {
			break
		}
	}
	return tr, r
}

func (p *parser) optTypeList() (Type, result) {
	// typelist <- ident '...'
	ok := p.peek(lexer.Ident) && p.peek(lexer.Ellipsis)
	p.rewind()
	if !ok {
		return nil, skip
	}
	p.has(lexer.Ident)
	tl := &TypeList{Name: p.in.Intern(p.previous.Text()), L: p.previous.Loc}
	p.has(lexer.Ellipsis)

	r := success
	def := p.symbols.Symbols().GetScope(tl.Name)
	switch {
	case def == nil:
		p.error().at(tl.L, "Couldn't find a definition of this type list")
		r = errored
	case def.Kind() != KindTypeParamList:
		p.error().
			at(tl.L, "Expected a type list, but got a "+def.Kind().String()).
			at(def.Loc(), "Definition is here")
		r = errored
	}
	return tl, r
}

func (p *parser) optCapType() (Type, result) {
	// captype <- 'iso' / 'mut' / 'imm' / 'Self' / tupletype / typelist / typeref
	switch {
	case p.has(lexer.Iso):
		return &Iso{L: p.previous.Loc}, success
	case p.has(lexer.Mut):
		return &Mut{L: p.previous.Loc}, success
	case p.has(lexer.Imm):
		return &Imm{L: p.previous.Loc}, success
	case p.has(lexer.Self):
		return &Self{L: p.previous.Loc}, success
	}
	if t, r := p.optTupleType(); r != skip {
		return t, r
	}
	if t, r := p.optTypeList(); r != skip {
		return t, r
	}
	if t, r := p.optTypeRef(); r != skip {
		return t, r
	}
	return nil, skip
}

func (p *parser) optViewType() (Type, result) {
	// viewtype <- captype (('~>' / '<~') captype)*
	t, r := p.optCapType()
	if r == skip {
		return nil, skip
	}
	for {
		if !p.peek(lexer.Symbol, "~>") && !p.peek(lexer.Symbol, "<~") {
			break
		}
		p.rewind()

		var left Type = t
		view := p.has(lexer.Symbol, "~>")
		if !view {
			p.has(lexer.Symbol, "<~")
		}
		l := left.Loc().Range(p.previous.Loc)

		right, r2 := p.optCapType()
		if r2 != success {
			if r2 == skip {
				p.error().at(p.loc(), "Expected a type")
			}
			r = errored
			t = makeViewType(view, left, right, l)
			break
		}
		l.Extend(right.Loc())
		t = makeViewType(view, left, right, l)
	}
	p.rewind()
	return t, r
}

func makeViewType(view bool, left, right Type, l loc.Loc) Type {
	if view {
		return &ViewType{Left: left, Right: right, L: l}
	}
	return &ExtractType{Left: left, Right: right, L: l}
}

func (p *parser) optFunctionType() (Type, result) {
	// functiontype <- viewtype ('->' functiontype)?
	// Right associative.
	t, r := p.optViewType()
	if r != success {
		return t, r
	}
	if !p.has(lexer.Symbol, "->") {
		return t, success
	}
	ft := &FunctionType{Left: t, L: t.Loc().Range(p.previous.Loc)}
	right, r2 := p.optFunctionType()
	if r2 != success {
		if r2 == skip {
			p.error().at(p.loc(), "Expected a type")
		}
		return ft, errored
	}
	ft.Right = right
	ft.L.Extend(right.Loc())
	return ft, success
}

func (p *parser) optIsectType() (Type, result) {
	// isecttype <- functiontype ('&' functiontype)*
	t, r := p.optFunctionType()
	if r != success {
		return t, r
	}
	for p.has(lexer.Symbol, "&") {
		next, r2 := p.optFunctionType()
		if r2 != success {
			if r2 == skip {
				p.error().at(p.loc(), "Expected a type")
			}
			r = errored
		}
		if r2 != skip && next != nil {
			t = conjunction(t, next)
		}
	}
	return t, r
}

func (p *parser) optThrowType() (Type, result) {
	// throwtype <- 'throw'? isecttype
	throwing := p.has(lexer.Throw)
	t, r := p.optIsectType()
	if r == skip {
		return nil, skip
	}
	if throwing {
		t = throwType(t)
	}
	return t, r
}

func (p *parser) optUnionType() (Type, result) {
	// uniontype <- throwtype ('|' throwtype)*
	t, r := p.optThrowType()
	if r != success {
		return t, r
	}
	for p.has(lexer.Symbol, "|") {
		next, r2 := p.optThrowType()
		if r2 != success {
			if r2 == skip {
				p.error().at(p.loc(), "Expected a type")
			}
			r = errored
		}
		if r2 != skip && next != nil {
			t = disjunction(t, next)
		}
	}
	return t, r
}

func (p *parser) typeExpr() (Type, result) {
	// typeexpr <- uniontype
	t, r := p.optUnionType()
	if r == skip {
		p.error().at(p.loc(), "Expected a type")
		r = errored
	}
	return t, r
}

func (p *parser) initType() (Type, result) {
	// inittype <- '=' type
	if !p.has(lexer.Equals) {
		return nil, skip
	}
	t, r := p.typeExpr()
	if r != success {
		return t, errored
	}
	return t, success
}

func (p *parser) ofType() (Type, result) {
	// oftype <- ':' type
	if !p.has(lexer.Colon) {
		return nil, skip
	}
	return p.typeExpr()
}

// Parameters.

func (p *parser) optParam() (Expr, result) {
	// An identifier followed by one of `: = , => )` is a parameter;
	// anything else is an expression pattern.
	if p.peek(lexer.Ident) {
		isparam := p.peek(lexer.Colon) || p.peek(lexer.Equals) ||
			p.peek(lexer.Comma) || p.peek(lexer.FatArrow) ||
			p.peek(lexer.RParen)
		p.rewind()
		if isparam {
			r := success
			p.has(lexer.Ident)
			param := &Param{Name: p.in.Intern(p.previous.Text()), L: p.previous.Loc}

			t, r2 := p.ofType()
			if t != nil {
				param.Type = t
			}
			if r2 == errored {
				r = errored
			}
			dflt, r2 := p.initExpr()
			if dflt != nil {
				param.Default = dflt
			}
			if r2 == errored {
				r = errored
			}
			if param.Type == nil {
				param.Type = &InferType{}
			}
			p.setSym(param.Name, param.L, param)
			return param, r
		}
	}
	return p.optExpr()
}

func (p *parser) optParamList(params *[]Expr, terminator lexer.Kind) result {
	r := success
	for {
		param, r2 := p.optParam()
		if r2 == skip {
			break
		}
		if param != nil {
			*params = append(*params, param)
		}
		if r2 == errored {
			r = errored
			p.restartBefore(lexer.Comma, terminator)
		}
		if !p.has(lexer.Comma) {
			break
		}
	}
	return r
}

func (p *parser) optParams(params *[]Expr) result {
	// params <- '(' (param (',' param)*)? ')'
	if !p.has(lexer.LParen) {
		return skip
	}
	r := p.optParamList(params, lexer.RParen)
	if !p.has(lexer.RParen) {
		p.error().at(p.loc(), "Expected )")
		r = errored
	}
	return r
}

// Type parameters.

func (p *parser) optTypeParam() (TypeParm, result) {
	// typeparam <- ident '...'? oftype? inittype?
	if !p.has(lexer.Ident) {
		return nil, skip
	}
	r := success
	l := p.previous.Loc
	name := p.in.Intern(p.previous.Text())

	var tp TypeParm
	var inner *TypeParam
	if p.has(lexer.Ellipsis) {
		tpl := &TypeParamList{}
		tp, inner = tpl, &tpl.TypeParam
	} else {
		single := &TypeParam{}
		tp, inner = single, single
	}
	inner.Name = name
	inner.L = l

	if t, r2 := p.ofType(); r2 != skip {
		inner.Upper = t
		if r2 == errored {
			r = errored
		}
	}
	if t, r2 := p.initType(); r2 != skip {
		inner.Dflt = t
		if r2 == errored {
			r = errored
		}
	}
	p.setSym(name, l, tp)
	return tp, r
}

func (p *parser) optTypeParams(tps *[]TypeParm) result {
	// typeparams <- '[' typeparam (',' typeparam)* ']'
	if !p.has(lexer.LSquare) {
		return skip
	}
	r := success
	for {
		tp, r2 := p.optTypeParam()
		if r2 != success {
			p.error().at(p.loc(), "Expected a type parameter")
			r = errored
			p.restartBefore(lexer.Comma, lexer.RSquare)
		}
		if tp != nil {
			*tps = append(*tps, tp)
		}
		if !p.has(lexer.Comma) {
			break
		}
	}
	if !p.has(lexer.RSquare) {
		p.error().at(p.loc(), "Expected , or ]")
		r = errored
	}
	return r
}

func (p *parser) optTypeArgs(typeargs *[]Type) result {
	// typeargs <- '[' type (',' type)* ']'
	if !p.has(lexer.LSquare) {
		return skip
	}
	r := success
	for {
		arg, r2 := p.typeExpr()
		if r2 != success {
			p.restartBefore(lexer.Comma, lexer.RSquare)
			r = errored
		}
		if arg != nil {
			*typeargs = append(*typeargs, arg)
		}
		if !p.has(lexer.Comma) {
			break
		}
	}
	if !p.has(lexer.RSquare) {
		p.error().at(p.loc(), "Expected , or ]")
		r = errored
	}
	return r
}

// Members.

func (p *parser) optField() (Member, result) {
	// field <- ident oftype? initexpr? ';'
	if !p.has(lexer.Ident) {
		return nil, skip
	}
	field := &Field{Name: p.in.Intern(p.previous.Text()), L: p.previous.Loc}
	r := success

	if t, r2 := p.ofType(); r2 != skip {
		field.Type = t
		if r2 == errored {
			r = errored
		}
	}
	if init, r2 := p.initExpr(); r2 != skip {
		field.Init = init
		if r2 == errored {
			r = errored
		}
	}
	if !p.has(lexer.Semicolon) {
		p.error().at(p.loc(), "Expected ;")
		r = errored
	}
	p.setSym(field.Name, field.L, field)
	return field, r
}

func (p *parser) optFunction() (Member, result) {
	// function <- (ident / symbol)? typeparams? params oftype? (lambda / ';')
	ok := p.peek(lexer.Symbol) ||
		p.peek(lexer.Ident) && (p.peek(lexer.LSquare) || p.peek(lexer.LParen)) ||
		p.peek(lexer.LSquare) || p.peek(lexer.LParen)
	p.rewind()
	if !ok {
		return nil, skip
	}

	fn := &Function{}
	r := success
	if p.has(lexer.Ident) || p.has(lexer.Symbol) {
		fn.L = p.previous.Loc
		fn.Name = p.in.Intern(p.previous.Text())
	} else {
		// An empty name means apply.
		fn.L = p.loc()
		fn.Name = ident.Apply
	}
	p.setSym(fn.Name, fn.L, fn)

	lambda := &Lambda{L: fn.L}
	fn.Lambda = lambda
	st := p.push(lambda)
	defer st.pop()

	if p.optTypeParams(&lambda.TypeParms) == errored {
		r = errored
	}
	if p.optParams(&lambda.Params) != success {
		r = errored
	}
	for _, param := range lambda.Params {
		if param.Kind() != KindParam {
			p.error().at(param.Loc(), "Function parameters can't be patterns")
		} else if param.(*Param).Type.Kind() == KindInferType {
			p.error().at(param.Loc(), "Function parameters must have types")
		}
	}
	if t, r2 := p.ofType(); r2 != skip {
		lambda.Result = t
		if r2 == errored {
			r = errored
		}
	}
	st.done()

	if _, r2 := p.optLambda(lambda); r2 != skip {
		if r2 == errored {
			r = errored
		}
	} else if !p.has(lexer.Semicolon) {
		p.error().at(p.loc(), "Expected a lambda or ;")
		r = errored
	}
	return fn, r
}

// checkInherit rejects inheritance clauses that are not type
// references or intersections of type references. The clause parses
// permissively as a full type expression first.
func (p *parser) checkInherit(inherit Type) result {
	if inherit == nil {
		return skip
	}
	r := success
	if isect, ok := inherit.(*IsectType); ok {
		for _, t := range isect.Types {
			if p.checkInherit(t) == errored {
				r = errored
			}
		}
	} else if inherit.Kind() != KindTypeRef {
		p.error().at(inherit.Loc(), "A type can't inherit from a "+inherit.Kind().String())
		r = errored
	}
	return r
}

func (p *parser) optUsing() (Member, result) {
	// using <- 'using' typeref ';'
	if !p.has(lexer.Using) {
		return nil, skip
	}
	use := &Using{L: p.previous.Loc}
	r := success

	t, r2 := p.optTypeRef()
	if t != nil {
		use.Type = t
	}
	if r2 != success {
		if r2 == skip {
			p.error().at(p.loc(), "Expected a type reference")
		}
		r = errored
	}
	if !p.has(lexer.Semicolon) {
		p.error().at(p.loc(), "Expected ;")
		r = errored
	}
	return use, r
}

func (p *parser) optTypeAlias() (Member, result) {
	// typealias <- 'type' ident typeparams? '=' type ';'
	if !p.has(lexer.Type) {
		return nil, skip
	}
	r := success
	alias := &TypeAlias{}
	if p.has(lexer.Ident) {
		alias.Name = p.in.Intern(p.previous.Text())
	} else {
		p.error().at(p.loc(), "Expected an identifier")
		r = errored
	}
	alias.L = p.previous.Loc
	p.setSym(alias.Name, alias.L, alias)

	st := p.push(alias)
	defer st.pop()

	if p.optTypeParams(&alias.TypeParms) == errored {
		r = errored
	}
	if !p.has(lexer.Equals) {
		p.error().at(p.loc(), "Expected =")
		r = errored
	}
	t, r2 := p.typeExpr()
	if t != nil {
		alias.Inherits = t
	}
	if r2 == errored {
		r = errored
	}
	if !p.has(lexer.Semicolon) {
		p.error().at(p.loc(), "Expected ;")
		r = errored
	}
	return alias, r
}

// entity parses the common tail of classes and interfaces:
// ident typeparams? oftype? typebody. The node is pushed as a scope
// before its name is read and bound in the enclosing scope after its
// body completes.
func (p *parser) entity(m Scoped, ent *entityDef) result {
	r := success
	st := p.push(m)
	defer st.pop()

	if p.has(lexer.Ident) {
		ent.Name = p.in.Intern(p.previous.Text())
		ent.L = p.previous.Loc
	} else {
		p.error().at(p.loc(), "Expected an identifier")
		r = errored
	}
	if p.optTypeParams(&ent.TypeParms) == errored {
		r = errored
	}
	if t, r2 := p.ofType(); r2 != skip {
		ent.Inherits = t
		if r2 == errored {
			r = errored
		}
	}
	if p.typeBody(&ent.Members) == errored {
		r = errored
	}
	st.done()
	p.setSym(ent.Name, ent.L, m)

	if p.checkInherit(ent.Inherits) == errored {
		r = errored
	}
	return r
}

func (p *parser) optInterface() (Member, result) {
	// interface <- 'interface' ident typeparams? oftype? typebody
	if !p.has(lexer.Interface) {
		return nil, skip
	}
	iface := &Interface{}
	return iface, p.entity(iface, &iface.entityDef)
}

func (p *parser) optClass() (Member, result) {
	// class <- 'class' ident typeparams? oftype? typebody
	if !p.has(lexer.Class) {
		return nil, skip
	}
	cls := &Class{}
	r := p.entity(cls, &cls.entityDef)
	p.synthesizeCreate(cls)
	return cls, r
}

// synthesizeCreate adds a zero-parameter create constructor to a class
// that declares none, provided every field has an initializer. Its
// result type is the class intersected with iso, and its body is a
// single constructor call.
func (p *parser) synthesizeCreate(cls *Class) {
	if cls.Symbols().Get(ident.Create) != nil {
		return
	}
	for _, m := range cls.Members {
		if f, ok := m.(*Field); ok && f.Init == nil {
			return
		}
	}

	tn := &TypeName{Name: cls.Name, L: cls.L}
	for _, tp := range cls.TypeParms {
		if tpl, ok := tp.(*TypeParamList); ok {
			tn.TypeArgs = append(tn.TypeArgs, &TypeList{Name: tpl.Name, L: tpl.L})
		} else {
			ta := &TypeName{Name: tp.(*TypeParam).Name, L: tp.Loc()}
			tr := &TypeRef{Names: []TypeNamePart{ta}, L: cls.L}
			tn.TypeArgs = append(tn.TypeArgs, tr)
		}
	}
	tr := &TypeRef{Names: []TypeNamePart{tn}, L: cls.L}
	isect := &IsectType{Types: []Type{tr, &Iso{L: cls.L}}, L: cls.L}

	lambda := &Lambda{
		Result: isect,
		Body:   []Expr{&New{L: cls.L}},
		L:      cls.L,
	}
	lambda.Symbols().parent = cls

	create := &Function{Name: ident.Create, Lambda: lambda, L: cls.L}
	cls.Members = append(cls.Members, create)
	cls.Symbols().Set(ident.Create, create)
}

func (p *parser) optModuleDef(moduledef **Module) result {
	// moduledef <- 'module' typeparams? oftype? ';'
	if !p.has(lexer.Module) {
		return skip
	}
	if *moduledef != nil {
		p.error().
			at(p.previous.Loc, "The module has already been defined").
			at((*moduledef).L, "The previous definition is here")
		p.restartAfter(lexer.Semicolon)
		return errored
	}

	m := &Module{L: p.previous.Loc}
	*moduledef = m
	r := success
	if p.optTypeParams(&m.TypeParms) == errored {
		r = errored
	}
	if t, r2 := p.ofType(); r2 != skip {
		m.Inherits = t
		if r2 == errored {
			r = errored
		}
	}
	if p.checkInherit(m.Inherits) == errored {
		r = errored
	}
	if !p.has(lexer.Semicolon) {
		p.error().at(p.loc(), "Expected ;")
		r = errored
	}
	return r
}

func (p *parser) optMember() (Member, result) {
	// member <- class / interface / typealias / using / function / field
	if m, r := p.optClass(); r != skip {
		return m, r
	}
	if m, r := p.optInterface(); r != skip {
		return m, r
	}
	if m, r := p.optTypeAlias(); r != skip {
		return m, r
	}
	if m, r := p.optUsing(); r != skip {
		return m, r
	}
	if m, r := p.optFunction(); r != skip {
		return m, r
	}
	if m, r := p.optField(); r != skip {
		return m, r
	}
	return nil, skip
}

func (p *parser) typeBody(members *[]Member) result {
	// typebody <- '{' member* '}'
	r := success
	if !p.has(lexer.LBrace) {
		p.error().at(p.loc(), "Expected {")
		r = errored
	}
	if p.has(lexer.RBrace) {
		return r
	}
	for !p.has(lexer.RBrace) {
		if p.has(lexer.End) {
			p.error().at(p.loc(), "Expected }")
			return errored
		}
		m, r2 := p.optMember()
		if r2 == skip {
			p.error().at(p.loc(),
				"Expected a class, interface, type alias, field, or function")
			p.restartBefore(
				lexer.RBrace, lexer.Class, lexer.Interface, lexer.Type,
				lexer.Ident, lexer.Symbol, lexer.LSquare, lexer.LParen)
		}
		if m != nil {
			*members = append(*members, m)
		}
		if r2 == errored {
			r = errored
		}
	}
	return r
}

// Module loading.

func (p *parser) sourceFile(file string, module *Class, moduledef **Module) result {
	data, err := os.ReadFile(file)
	if err != nil {
		p.error().note("Couldn't read file " + file)
		return errored
	}
	p.start(loc.NewSource(file, string(data)))

	// sourcefile <- (moduledef / member)*
	for !p.has(lexer.End) {
		r := p.optModuleDef(moduledef)
		if r == skip {
			var m Member
			m, r = p.optMember()
			if m != nil {
				module.Members = append(module.Members, m)
			}
		}
		if r == skip {
			p.error().at(p.loc(),
				"Expected a module, class, interface, type alias, field, or function")
			p.restartBefore(
				lexer.Module, lexer.Class, lexer.Interface, lexer.Type,
				lexer.Ident, lexer.Symbol, lexer.LSquare, lexer.LParen)
		}
	}
	if p.failed {
		return errored
	}
	return success
}

// module parses the import at index into a fresh module node under
// program. path must already be canonical; it is a value, not an
// alias into p.imports, which may grow during the parse.
func (p *parser) module(path string, index int, program *Class) result {
	modulename := p.in.Module(index)
	if p.symbols.Symbols().Get(modulename) != nil {
		// Already loaded.
		if p.failed {
			return errored
		}
		return success
	}

	var moduledef *Module
	r := success
	module := &Class{}
	module.Name = modulename
	p.setSym(modulename, loc.Loc{}, module)
	st := p.push(module)
	defer st.pop()
	program.Members = append(program.Members, module)

	if !mod.IsDirectory(path) {
		// A single-file module, used for testing.
		r = p.sourceFile(path, module, &moduledef)
	} else {
		count := 0
		for _, file := range mod.Files(path) {
			if mod.Extension(file) != ext {
				continue
			}
			count++
			if p.sourceFile(mod.Join(path, file), module, &moduledef) == errored {
				r = errored
			}
		}
		if count == 0 {
			p.error().note(fmt.Sprintf("No %s files found in %s", ext, path))
			r = errored
		}
	}

	if moduledef != nil {
		module.TypeParms = moduledef.TypeParms
		module.Inherits = moduledef.Inherits
	}
	return r
}
