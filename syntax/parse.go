// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines a recursive-descent parser for Erg.
// The LL(1) grammar of Erg and the syntax tree it produces are
// implicit in the parse functions below; operators are parsed by
// precedence climbing.

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Enable this flag to print the token stream and log.Fatal on the first error.
const debug = false

// A Mode value is a set of flags (or 0) that controls optional parser functionality.
type Mode uint

const (
	// StopAtFirstError disables statement-level error recovery.
	StopAtFirstError Mode = 1 << iota
)

// Parse parses the input data and returns the corresponding parse tree.
//
// If src != nil, Parse parses the source from src and the filename
// is only used when recording position information.
// The type of the argument for the src parameter must be string or []byte.
//
// On a syntax error Parse records the error, skips to the next
// top-level statement, and continues. The returned error, if any, is
// an ErrorList in source order; the partial File is returned as well.
func Parse(filename string, src interface{}, mode Mode) (f *File, err error) {
	toks, err := Scan(filename, src)
	if err != nil {
		if e, ok := err.(Error); ok {
			return &File{Path: filename}, ErrorList{e}
		}
		return nil, err
	}
	p := newParser(toks, mode)
	f = p.parseFile(filename)
	if len(p.errors) > 0 {
		return f, p.errors
	}
	return f, nil
}

// ParseExpr parses an Erg expression.
func ParseExpr(filename string, src interface{}) (expr Expr, err error) {
	toks, err := Scan(filename, src)
	if err != nil {
		return nil, err
	}
	p := newParser(toks, StopAtFirstError)
	defer p.recover(&err)

	expr = p.parseExpr()

	// A following newline (e.g. "f()\n") appears outside any brackets,
	// so we must consume it.
	if p.tok == NEWLINE {
		p.next()
	}
	if p.tok != EOF {
		p.errorf(p.val.Pos, "got %#v after expression, want EOF", p.tok)
	}
	return expr, nil
}

// ParseCompoundStmt parses a single compound statement:
// a definition, a method block, or an expression.
// Use this function when reading a single line of input in a REPL.
// The readline function is called for each additional line of input
// until the statement is complete.
func ParseCompoundStmt(filename string, readline func() ([]byte, error)) (f *File, err error) {
	var buf bytes.Buffer
	for {
		line, err := readline()
		if err != nil && err != io.EOF {
			return nil, err
		}
		buf.Write(line)
		if len(line) == 0 || line[len(line)-1] != '\n' {
			buf.WriteByte('\n')
		}
		if err == io.EOF || !Incomplete(buf.String()) {
			break
		}
	}
	return Parse(filename, buf.Bytes(), 0)
}

// Incomplete reports whether src ends inside an unfinished construct:
// open brackets, an unterminated triple-quoted string, a definition or
// lambda awaiting its body, or an indented block not yet closed by a
// blank line.
func Incomplete(src string) bool {
	toks, err := Scan("<input>", src)
	if err != nil {
		e, ok := err.(Error)
		return ok && strings.HasPrefix(e.Msg, "unexpected EOF in string")
	}
	depth := 0
	var last Token
	indented := false
	for _, t := range toks {
		switch t.Tok {
		case LPAREN, LBRACK, LBRACE:
			depth++
		case RPAREN, RBRACK, RBRACE:
			depth--
		case INDENT:
			indented = true
		}
		switch t.Tok {
		case NEWLINE, INDENT, OUTDENT, EOF:
		default:
			last = t.Tok
		}
	}
	if depth > 0 {
		return true
	}
	switch last {
	case EQ, ARROW, FATARROW, DOT:
		return true
	}
	return indented && !strings.HasSuffix(src, "\n\n")
}

type parser struct {
	toks   []TokenInfo
	i      int
	tok    Token     // current token
	val    TokenInfo // current token info
	prev   Token     // previously consumed token
	indent int       // nesting of INDENT tokens consumed
	mode   Mode
	errors ErrorList

	typeMode bool // parsing a type expression
	inline   int  // depth of unbracketed lambda bodies
}

func newParser(toks []TokenInfo, mode Mode) *parser {
	p := &parser{toks: toks, mode: mode, i: -1}
	p.next()
	return p
}

// next advances the parser to the next token.
func (p *parser) next() {
	p.prev = p.tok
	switch p.tok {
	case INDENT:
		p.indent++
	case OUTDENT:
		p.indent--
	}
	if p.i+1 < len(p.toks) {
		p.i++
	}
	p.val = p.toks[p.i]
	p.tok = p.val.Tok
	if debug {
		fmt.Printf("next %s %s\n", p.val.Pos, p.val)
	}
}

// peek returns the kind of the token n positions ahead.
func (p *parser) peek(n int) Token {
	if j := p.i + n; j < len(p.toks) {
		return p.toks[j].Tok
	}
	return EOF
}

func (p *parser) peekInfo(n int) TokenInfo {
	if j := p.i + n; j < len(p.toks) {
		return p.toks[j]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) errorf(pos Position, format string, args ...interface{}) {
	panic(Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) recover(err *error) {
	switch e := recover().(type) {
	case nil:
	case Error:
		*err = e
	default:
		*err = Error{Pos: p.val.Pos, Msg: fmt.Sprintf("internal error: %v", e)}
	}
}

// consume consumes the current token, which must be t,
// and returns its position.
func (p *parser) consume(t Token) Position {
	if p.tok != t {
		p.errorf(p.val.Pos, "got %#v, want %#v", p.tok, t)
	}
	pos := p.val.Pos
	p.next()
	return pos
}

// file_input = (NEWLINE | stmt)* EOF
func (p *parser) parseFile(filename string) *File {
	var stmts []Stmt
	for p.tok != EOF {
		if p.tok == NEWLINE || p.tok == SEMI {
			p.next()
			continue
		}
		if stmt, ok := p.parseTopStmt(); ok {
			stmts = append(stmts, stmt)
		} else {
			if p.mode&StopAtFirstError != 0 {
				break
			}
			p.sync()
		}
	}
	return &File{Path: filename, Stmts: stmts}
}

func (p *parser) parseTopStmt() (stmt Stmt, ok bool) {
	defer func() {
		switch e := recover().(type) {
		case nil:
		case Error:
			p.errors = append(p.errors, e)
			ok = false
		default:
			panic(e)
		}
	}()
	p.typeMode = false
	return p.parseStmt(), true
}

// sync skips tokens up to the start of the next top-level statement.
func (p *parser) sync() {
	for p.tok != EOF {
		t := p.tok
		p.next()
		if p.indent == 0 && (t == NEWLINE || t == OUTDENT) && p.tok != OUTDENT {
			return
		}
	}
}

// stmt = methods_stmt | def_stmt | decl_stmt | expr_stmt
func (p *parser) parseStmt() Stmt {
	// Method block: Class. NEWLINE INDENT defs OUTDENT
	if p.tok == IDENT && p.peek(1) == DOT && p.peek(2) == NEWLINE {
		class := p.parseIdent()
		dot := p.consume(DOT)
		body := p.parseSuite()
		for _, s := range body.Stmts {
			switch s.(type) {
			case *DefStmt, *DeclStmt:
			default:
				p.errorf(Start(s), "method block may contain only definitions")
			}
		}
		return &MethodsStmt{Class: class, Dot: dot, Body: body}
	}

	var dot Position
	if p.tok == DOT {
		dot = p.val.Pos
		p.next()
		if p.tok != IDENT {
			p.errorf(p.val.Pos, "got %#v after visibility sigil, want identifier", p.tok)
		}
	}

	var lhs Expr
	var tparams []*TypeParam
	if p.tok == IDENT && p.peek(1) == PIPE {
		name := p.parseIdent()
		tparams = p.parseTypeParams()
		lhs = p.parseCallSuffix(name)
		if _, ok := lhs.(*CallExpr); !ok {
			p.errorf(p.val.Pos, "type parameters require a parameter list")
		}
	} else {
		lhs = p.parseExprList()
	}

	switch p.tok {
	case COLON:
		colon := p.consume(COLON)
		typ := p.parseType()
		if p.tok != EQ {
			id, ok := lhs.(*Ident)
			if !ok {
				p.errorf(colon, "declaration requires a name")
			}
			p.endStmt()
			return &DeclStmt{Dot: dot, Name: id, Colon: colon, Type: typ}
		}
		def := p.makeDef(dot, lhs, tparams)
		def.Colon = colon
		def.Type = typ
		return p.parseDefBody(def)

	case EQ:
		def := p.makeDef(dot, lhs, tparams)
		return p.parseDefBody(def)
	}

	if dot.IsValid() {
		p.errorf(dot, "visibility sigil requires a definition")
	}
	p.endStmt()
	return &ExprStmt{X: lhs}
}

// endStmt consumes the end of a simple statement.
func (p *parser) endStmt() {
	switch p.tok {
	case NEWLINE, SEMI:
		p.next()
	case EOF, OUTDENT:
	default:
		if p.prev == OUTDENT {
			return // the statement ended with an indented block
		}
		p.errorf(p.val.Pos, "got %#v, want newline", p.tok)
	}
}

// type_params = '|' IDENT [':' type] {',' IDENT [':' type]} '|'
func (p *parser) parseTypeParams() []*TypeParam {
	p.consume(PIPE)
	var params []*TypeParam
	for p.tok != PIPE {
		if len(params) > 0 {
			p.consume(COMMA)
		}
		tp := &TypeParam{Name: p.parseIdent()}
		if p.tok == COLON {
			tp.Colon = p.consume(COLON)
			tp.Bound = p.parseType()
		}
		params = append(params, tp)
	}
	p.consume(PIPE)
	if len(params) == 0 {
		p.errorf(p.val.Pos, "empty type parameter list")
	}
	return params
}

// makeDef converts the left-hand side of a definition.
func (p *parser) makeDef(dot Position, lhs Expr, tparams []*TypeParam) *DefStmt {
	def := &DefStmt{Dot: dot, TypeParams: tparams}
	switch x := lhs.(type) {
	case *Ident:
		def.Pattern = x
	case *ParenExpr, *TupleExpr, *ListExpr:
		checkPattern(p, x)
		def.Pattern = x
	case *CallExpr:
		fn, ok := x.Fn.(*Ident)
		if !ok {
			p.errorf(Start(x.Fn), "invalid subroutine name")
		}
		def.Subr = true
		def.Name = fn
		def.Lparen = x.Lparen
		def.Rparen = x.Rparen
		for _, arg := range x.Args {
			def.Params = append(def.Params, p.toParam(arg))
		}
	default:
		p.errorf(Start(lhs), "invalid definition target")
	}
	if dot.IsValid() && def.Target() == nil {
		p.errorf(dot, "visibility sigil requires a name")
	}
	return def
}

// checkPattern reports an error unless x is a valid binding pattern.
func checkPattern(p *parser, x Expr) {
	switch x := x.(type) {
	case *Ident:
	case *ParenExpr:
		checkPattern(p, x.X)
	case *TupleExpr:
		for _, e := range x.List {
			checkPattern(p, e)
		}
	case *ListExpr:
		for _, e := range x.List {
			checkPattern(p, e)
		}
	default:
		p.errorf(Start(x), "invalid pattern")
	}
}

// toParam converts a parsed argument into a formal parameter.
func (p *parser) toParam(arg Expr) *Param {
	switch x := arg.(type) {
	case *Ident:
		return &Param{Name: x}
	case *AscribeExpr:
		param := p.toParam(x.X)
		if param.Type != nil || param.Default != nil {
			p.errorf(x.Colon, "invalid parameter")
		}
		param.Colon = x.Colon
		param.Type = x.Type
		return param
	case *KwArg:
		return &Param{Name: x.Name, Colon: x.Colon, Type: x.Type, Walrus: x.Walrus, Default: x.Value}
	case *UnaryExpr:
		if x.Op == STAR {
			param := p.toParam(x.X)
			if param.Name == nil || param.Default != nil {
				p.errorf(x.OpPos, "invalid variadic parameter")
			}
			param.Star = x.OpPos
			return param
		}
	case *TupleExpr, *ListExpr:
		checkPattern(p, x)
		return &Param{Pattern: x}
	case *ParenExpr:
		return p.toParam(x.X)
	}
	p.errorf(Start(arg), "invalid parameter")
	panic("unreachable")
}

// parseDefBody parses '=' followed by an inline expression or an
// indented block.
func (p *parser) parseDefBody(def *DefStmt) *DefStmt {
	def.Eq = p.consume(EQ)
	def.Body = p.parseBody(true)
	if !def.Body.Indented {
		p.endStmt()
	}
	return def
}

// body = NEWLINE INDENT stmt+ OUTDENT | exprlist
// A lambda body is a single expression, so that a comma ends it.
func (p *parser) parseBody(list bool) *Block {
	if p.tok == NEWLINE && p.peek(1) == INDENT {
		return p.parseSuite()
	}
	if p.tok == NEWLINE || p.tok == EOF {
		p.errorf(p.val.Pos, "got %#v, want expression or indented block", p.tok)
	}
	var x Expr
	if list {
		x = p.parseExprList()
	} else {
		p.inline++
		x = p.parseExpr()
		p.inline--
	}
	return &Block{Stmts: []Stmt{&ExprStmt{X: x}}}
}

// suite = NEWLINE INDENT stmt+ OUTDENT
func (p *parser) parseSuite() *Block {
	p.consume(NEWLINE)
	p.consume(INDENT)
	saved, inline := p.typeMode, p.inline
	p.typeMode, p.inline = false, 0
	block := &Block{Indented: true}
	for p.tok != OUTDENT && p.tok != EOF {
		if p.tok == NEWLINE || p.tok == SEMI {
			p.next()
			continue
		}
		block.Stmts = append(block.Stmts, p.parseStmt())
	}
	p.consume(OUTDENT)
	p.typeMode, p.inline = saved, inline
	return block
}

// exprlist = expr (',' expr)* [',']
func (p *parser) parseExprList() Expr {
	x := p.parseExpr()
	if p.tok != COMMA {
		return x
	}
	list := []Expr{x}
	for p.tok == COMMA {
		p.next()
		if terminatesExprList(p.tok) {
			break
		}
		list = append(list, p.parseExpr())
	}
	return &TupleExpr{List: list}
}

func terminatesExprList(tok Token) bool {
	switch tok {
	case EQ, COLON, NEWLINE, EOF, SEMI, OUTDENT:
		return true
	}
	return false
}

// expr = lambda | test
// lambda = params ('->' | '=>') body
func (p *parser) parseExpr() Expr {
	if p.typeMode {
		return p.parseTypeExpr()
	}
	x := p.parseTest(precLowest)
	if p.tok == ARROW || p.tok == FATARROW {
		return p.parseLambda(x)
	}
	return x
}

func (p *parser) parseLambda(head Expr) Expr {
	lambda := &LambdaExpr{Proc: p.tok == FATARROW}
	switch x := head.(type) {
	case *Ident:
		lambda.Params = []*Param{{Name: x}}
	case *ParenExpr:
		lambda.Lparen, lambda.Rparen = x.Lparen, x.Rparen
		lambda.Params = []*Param{p.toParam(x.X)}
	case *TupleExpr:
		if !x.Lparen.IsValid() {
			p.errorf(Start(x), "lambda parameters must be parenthesized")
		}
		lambda.Lparen, lambda.Rparen = x.Lparen, x.Rparen
		for _, e := range x.List {
			lambda.Params = append(lambda.Params, p.toParam(e))
		}
	default:
		p.errorf(Start(head), "invalid lambda parameters")
	}
	lambda.Arrow = p.val.Pos
	p.next()
	lambda.Body = p.parseBody(false)
	return lambda
}

// Operator precedences, lowest first.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precCmp
	precAdd
	precMul
	precUnary
	precPow
)

var binprec = map[Token]int{
	OR:         precOr,
	AND:        precAnd,
	EQL:        precCmp,
	NEQ:        precCmp,
	LT:         precCmp,
	GT:         precCmp,
	LE:         precCmp,
	GE:         precCmp,
	IN:         precCmp,
	NOT_IN:     precCmp,
	PLUS:       precAdd,
	MINUS:      precAdd,
	STAR:       precMul,
	SLASH:      precMul,
	SLASHSLASH: precMul,
	PERCENT:    precMul,
	STARSTAR:   precPow,
}

// parseTest parses an operator expression whose operators all bind at
// least as tightly as prec.
func (p *parser) parseTest(prec int) Expr {
	var x Expr
	if p.tok == NOT && prec <= precNot {
		pos := p.val.Pos
		p.next()
		x = &UnaryExpr{OpPos: pos, Op: NOT, X: p.parseTest(precNot)}
	} else {
		x = p.parseUnary()
	}
	for {
		op := p.tok
		if op == NOT {
			if p.peek(1) != IN {
				return x
			}
			op = NOT_IN
		}
		opprec, ok := binprec[op]
		if !ok || opprec < prec {
			return x
		}
		pos := p.val.Pos
		p.next()
		if op == NOT_IN {
			p.next()
		}
		var y Expr
		if op == STARSTAR {
			y = p.parseTest(opprec) // right associative
		} else {
			y = p.parseTest(opprec + 1)
		}
		x = &BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
}

// unary = ('-' | '+' | '!') unary | primary_suffix
func (p *parser) parseUnary() Expr {
	switch p.tok {
	case MINUS, PLUS, BANG:
		op, pos := p.tok, p.val.Pos
		p.next()
		return &UnaryExpr{OpPos: pos, Op: op, X: p.parseTest(precUnary)}
	}
	return p.parsePrimarySuffix()
}

// primary_suffix = primary ('.' IDENT | '.' INT | '(' args ')')* [juxtaposed_args]
func (p *parser) parsePrimarySuffix() Expr {
	x := p.parsePrimary()
	for {
		switch {
		case p.tok == DOT:
			dot := p.val.Pos
			p.next()
			var name *Ident
			switch p.tok {
			case IDENT:
				name = p.parseIdent()
			case INT:
				name = &Ident{NamePos: p.val.Pos, Name: p.val.Raw}
				p.next()
			default:
				p.errorf(p.val.Pos, "got %#v after '.', want identifier", p.tok)
			}
			x = &DotExpr{X: x, Dot: dot, Name: name}

		case p.tok == LPAREN && !p.val.Spaced:
			x = p.parseParenCall(x)

		default:
			if !p.typeMode && isCallee(x) && p.startsArg() {
				return p.parseCallSuffix(x)
			}
			return x
		}
	}
}

// parseCallSuffix parses the argument list of a call to fn, with or
// without parentheses, returning fn itself if no arguments follow.
func (p *parser) parseCallSuffix(fn Expr) Expr {
	if p.tok == LPAREN && !p.val.Spaced {
		return p.parseParenCall(fn)
	}
	if !p.startsArg() {
		return fn
	}
	// Within an unbracketed lambda body a comma ends the call,
	// so that the body is a single argument of an enclosing call.
	call := &CallExpr{Fn: fn}
	for {
		call.Args = append(call.Args, p.parseArg(false))
		if p.tok != COMMA || p.inline > 0 {
			break
		}
		p.next()
	}
	return call
}

func (p *parser) parseParenCall(fn Expr) *CallExpr {
	call := &CallExpr{Fn: fn, Lparen: p.consume(LPAREN)}
	defer p.bracket()()
	for p.tok != RPAREN {
		call.Args = append(call.Args, p.parseArg(true))
		if p.tok != COMMA {
			break
		}
		p.next()
	}
	call.Rparen = p.consume(RPAREN)
	return call
}

// bracket suspends the comma rule of lambda bodies until the
// returned function is called.
func (p *parser) bracket() func() {
	inline := p.inline
	p.inline = 0
	return func() { p.inline = inline }
}

// isCallee reports whether x may be applied to juxtaposed arguments.
func isCallee(x Expr) bool {
	switch x := x.(type) {
	case *Ident:
		return true
	case *DotExpr:
		return !isDigits(x.Name.Name)
	}
	return false
}

// startsArg reports whether the current token begins a juxtaposed
// argument. A sign or star begins an argument only when it is
// separated from the callee but attached to its operand, as in f -1.
func (p *parser) startsArg() bool {
	switch p.tok {
	case IDENT, INT, FLOAT, STRING, LBRACK, LBRACE, IMPORT, PYIMPORT:
		return true
	case LPAREN:
		return p.val.Spaced
	case MINUS, PLUS, STAR, BANG:
		return p.val.Spaced && !p.peekInfo(1).Spaced && startsOperand(p.peek(1))
	case NOT:
		return p.peek(1) != IN
	}
	return false
}

func startsOperand(tok Token) bool {
	switch tok {
	case IDENT, INT, FLOAT, STRING, LBRACK, LBRACE, LPAREN:
		return true
	}
	return false
}

// arg = '*' test | IDENT ':=' expr | expr [':' type [':=' expr]]
func (p *parser) parseArg(parens bool) Expr {
	if p.tok == STAR {
		pos := p.val.Pos
		p.next()
		x := p.parseTest(precUnary)
		if parens && p.tok == COLON {
			colon := p.consume(COLON)
			x = &AscribeExpr{X: x, Colon: colon, Type: p.parseType()}
		}
		return &UnaryExpr{OpPos: pos, Op: STAR, X: x}
	}
	if p.tok == IDENT && p.peek(1) == WALRUS {
		name := p.parseIdent()
		walrus := p.consume(WALRUS)
		return &KwArg{Name: name, Walrus: walrus, Value: p.parseExpr()}
	}
	x := p.parseExpr()
	if parens && p.tok == COLON {
		colon := p.consume(COLON)
		typ := p.parseType()
		if p.tok == WALRUS {
			id, ok := x.(*Ident)
			if !ok {
				p.errorf(colon, "keyword parameter requires a name")
			}
			walrus := p.consume(WALRUS)
			return &KwArg{Name: id, Colon: colon, Type: typ, Walrus: walrus, Value: p.parseExpr()}
		}
		x = &AscribeExpr{X: x, Colon: colon, Type: typ}
	}
	return x
}

// primary = IDENT | INT | FLOAT | STRING
//         | '(' ')' | '(' arg ')' | '(' arg (',' arg)* [','] ')'
//         | '[' [expr (',' expr)* [',']] ']' | '[' expr ';' expr ']'
//         | '{' record_or_refinement '}'
//         | ('import' | 'pyimport') STRING
func (p *parser) parsePrimary() Expr {
	switch p.tok {
	case LPAREN, LBRACK, LBRACE:
		defer p.bracket()()
	}
	switch p.tok {
	case IDENT:
		return p.parseIdent()

	case INT, FLOAT, STRING:
		lit := &Literal{Token: p.tok, TokenPos: p.val.Pos, Raw: p.val.Raw, Value: p.val.Value}
		p.next()
		return lit

	case LPAREN:
		lparen := p.consume(LPAREN)
		if p.tok == RPAREN {
			return &TupleExpr{Lparen: lparen, Rparen: p.consume(RPAREN)}
		}
		saved := p.typeMode
		x := p.parseArg(true)
		p.typeMode = saved
		if p.tok != COMMA {
			if _, ok := x.(*KwArg); ok {
				p.errorf(Start(x), "keyword argument outside call")
			}
			return &ParenExpr{Lparen: lparen, X: x, Rparen: p.consume(RPAREN)}
		}
		tuple := &TupleExpr{Lparen: lparen, List: []Expr{x}}
		for p.tok == COMMA {
			p.next()
			if p.tok == RPAREN {
				break
			}
			tuple.List = append(tuple.List, p.parseArg(true))
		}
		tuple.Rparen = p.consume(RPAREN)
		return tuple

	case LBRACK:
		lbrack := p.consume(LBRACK)
		if p.tok == RBRACK {
			return &ListExpr{Lbrack: lbrack, Rbrack: p.consume(RBRACK)}
		}
		first := p.parseExpr()
		if p.tok == SEMI {
			semi := p.consume(SEMI)
			n := p.parseLength()
			return &ArrayTypeExpr{Lbrack: lbrack, Elem: first, Semi: semi, Len: n, Rbrack: p.consume(RBRACK)}
		}
		list := &ListExpr{Lbrack: lbrack, List: []Expr{first}}
		for p.tok == COMMA {
			p.next()
			if p.tok == RBRACK {
				break
			}
			list.List = append(list.List, p.parseExpr())
		}
		list.Rbrack = p.consume(RBRACK)
		return list

	case LBRACE:
		return p.parseBraces()

	case IMPORT, PYIMPORT:
		imp := &ImportExpr{ImportPos: p.val.Pos, Py: p.tok == PYIMPORT}
		p.next()
		if p.tok != STRING {
			p.errorf(p.val.Pos, "got %#v, want module path string", p.tok)
		}
		imp.Path = &Literal{Token: STRING, TokenPos: p.val.Pos, Raw: p.val.Raw, Value: p.val.Value}
		p.next()
		return imp
	}
	p.errorf(p.val.Pos, "got %#v, want primary expression", p.tok)
	panic("unreachable")
}

// parseLength parses an array length, which is a value expression
// even inside a type.
func (p *parser) parseLength() Expr {
	saved := p.typeMode
	p.typeMode = false
	x := p.parseTest(precLowest)
	p.typeMode = saved
	return x
}

// record = '{' [field ((';' | ',') field)* [';' | ',']] '}'
// refinement = '{' IDENT ':' type '|' expr '}'
func (p *parser) parseBraces() Expr {
	lbrace := p.consume(LBRACE)
	if p.tok == IDENT && p.peek(1) == COLON {
		r := &RefinementExpr{Lbrace: lbrace, Var: p.parseIdent()}
		r.Colon = p.consume(COLON)
		r.Base = p.parseType()
		r.Pipe = p.consume(PIPE)
		saved := p.typeMode
		p.typeMode = false
		r.Pred = p.parseTest(precLowest)
		p.typeMode = saved
		r.Rbrace = p.consume(RBRACE)
		return r
	}
	rec := &RecordExpr{Lbrace: lbrace}
	for p.tok != RBRACE {
		field := &RecordField{}
		if p.tok == DOT {
			field.Dot = p.val.Pos
			p.next()
		}
		field.Name = p.parseIdent()
		field.Eq = p.consume(EQ)
		field.Value = p.parseExpr()
		rec.Fields = append(rec.Fields, field)
		if p.tok != SEMI && p.tok != COMMA {
			break
		}
		p.next()
	}
	rec.Rbrace = p.consume(RBRACE)
	return rec
}

func (p *parser) parseIdent() *Ident {
	if p.tok != IDENT {
		p.errorf(p.val.Pos, "got %#v, want identifier", p.tok)
	}
	id := &Ident{NamePos: p.val.Pos, Name: p.val.Raw}
	p.next()
	return id
}

// parseType parses a type expression.
func (p *parser) parseType() Expr {
	saved := p.typeMode
	p.typeMode = true
	x := p.parseTypeExpr()
	p.typeMode = saved
	return x
}

// type = test [('->' | '=>') type]
func (p *parser) parseTypeExpr() Expr {
	x := p.parseTest(precLowest)
	if p.tok != ARROW && p.tok != FATARROW {
		return x
	}
	ft := &FuncTypeExpr{Proc: p.tok == FATARROW}
	switch x := x.(type) {
	case *TupleExpr:
		ft.Lparen, ft.Params, ft.Rparen = x.Lparen, x.List, x.Rparen
	case *ParenExpr:
		ft.Lparen, ft.Params, ft.Rparen = x.Lparen, []Expr{x.X}, x.Rparen
	default:
		ft.Params = []Expr{x}
	}
	ft.Arrow = p.val.Pos
	p.next()
	ft.Result = p.parseTypeExpr()
	return ft
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
