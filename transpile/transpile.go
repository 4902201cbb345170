// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transpile translates elaborated modules to Python source.
//
// The output of Program is a single self-contained Python program: a
// runtime prelude, then each imported native module as a factory
// function registered under its module path, then the main module at
// top level. Every call is emitted as (callee)(arg1,arg2,), literals
// are wrapped in the prelude class of their type, as in Str("..."),
// and names are made valid Python identifiers: '!' becomes "__" and a
// Python keyword gets a trailing '_'.
//
// Python lambdas are single expressions, so a subroutine or block
// whose body has several statements is emitted as a local def just
// before the statement that uses it.
package transpile // import "go.erg.dev/transpile"

import (
	_ "embed"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go.erg.dev/hir"
	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

//go:embed prelude.py
var prelude string

// Prelude returns the runtime support code that precedes every program.
func Prelude() string { return prelude }

// Program returns the Python program that runs main. The modules main
// imports, directly or not, must be given in deps in an order in which
// each module follows its own imports.
func Program(main *hir.Module, deps []*hir.Module) (string, error) {
	var b strings.Builder
	b.WriteString(prelude)
	for _, m := range deps {
		code, err := Factory(m)
		if err != nil {
			return "", err
		}
		b.WriteString("\n\n")
		b.WriteString(code)
	}
	code, err := Module(main)
	if err != nil {
		return "", err
	}
	b.WriteString("\n\n")
	b.WriteString(code)
	return b.String(), nil
}

// Module returns the Python statements of m at top level, without
// the prelude.
func Module(m *hir.Module) (string, error) {
	p := &printer{module: m}
	if err := p.run(func() { p.stmts(m.Stmts) }); err != nil {
		return "", err
	}
	return p.buf.String(), nil
}

// Factory returns m as a factory function that returns the namespace
// of the module, registered for the first import of its path.
func Factory(m *hir.Module) (string, error) {
	p := &printer{module: m}
	err := p.run(func() {
		p.line("@_erg_module(%s)", strconv.Quote(m.Path))
		p.line("def _erg_factory():")
		p.nest(func() {
			p.stmts(m.Stmts)
			p.line("return locals()")
		})
	})
	if err != nil {
		return "", err
	}
	return p.buf.String(), nil
}

// An unsupported is raised (by panic) when the tree cannot be
// translated, such as when it contains placeholders from errors.
type unsupported struct {
	pos syntax.Position
	msg string
}

type printer struct {
	module *hir.Module
	buf    strings.Builder
	depth  int
	fresh  int
}

func (p *printer) run(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			u, ok := r.(unsupported)
			if !ok {
				panic(r)
			}
			err = errors.Errorf("%s: cannot transpile module %s: %s", u.pos, p.module.Path, u.msg)
		}
	}()
	f()
	return nil
}

func (p *printer) fail(pos syntax.Position, format string, args ...interface{}) {
	panic(unsupported{pos, fmt.Sprintf(format, args...)})
}

func (p *printer) line(format string, args ...interface{}) {
	p.buf.WriteString(strings.Repeat("    ", p.depth))
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *printer) nest(f func()) {
	p.depth++
	f()
	p.depth--
}

// freshName returns a new helper name of the given kind.
func (p *printer) freshName(kind string) string {
	p.fresh++
	return fmt.Sprintf("_erg_%s%d", kind, p.fresh)
}

var keywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

// Mangle returns the Python identifier for an Erg name.
func Mangle(name string) string {
	name = strings.ReplaceAll(name, "!", "__")
	if strings.HasPrefix(name, "%") {
		name = "_erg_" + name[1:]
	}
	if keywords[name] {
		name += "_"
	}
	return name
}

func (p *printer) stmts(stmts []hir.Stmt) {
	if len(stmts) == 0 {
		p.line("pass")
		return
	}
	for _, s := range stmts {
		p.stmt(s)
	}
}

func (p *printer) stmt(s hir.Stmt) {
	switch s := s.(type) {
	case *hir.Def:
		p.def(s)
	case *hir.ClassDef:
		p.class(s)
	case *hir.Decl:
		// declarations have no runtime effect
	case *hir.ExprStmt:
		p.line("%s", p.expr(s.X))
	default:
		p.fail(s.Position(), "unexpected statement %T", s)
	}
}

func (p *printer) def(d *hir.Def) {
	name := Mangle(d.Name)
	if d.IsSubr() {
		p.function(name, d.Params, d.Body)
		return
	}
	x := p.blockValue(d.Body)
	if d.Reassign && types.IsMutable(d.T) {
		p.line("%s.value = %s", name, x)
		return
	}
	p.line("%s = %s", name, x)
}

// function emits a def of the given name.
func (p *printer) function(name string, params *hir.Params, body *hir.Block) {
	header := p.params(params)
	p.line("def %s(%s):", name, header)
	p.nest(func() { p.body(body) })
}

// params returns the Python parameter list of ps.
func (p *printer) params(ps *hir.Params) string {
	var out []string
	for _, x := range ps.Pos {
		out = append(out, Mangle(x.Name))
	}
	if ps.VarArgs != nil {
		out = append(out, "*"+Mangle(ps.VarArgs.Name))
	}
	for _, x := range ps.Defaults {
		if x.Default == nil {
			p.fail(x.Pos, "parameter %s has no default", x.Name)
		}
		out = append(out, Mangle(x.Name)+"="+p.expr(x.Default))
	}
	return strings.Join(out, ", ")
}

// body emits the statements of a subroutine body, returning the value
// of the last.
func (p *printer) body(b *hir.Block) {
	if len(b.Stmts) == 0 {
		p.line("return None")
		return
	}
	for _, s := range b.Stmts[:len(b.Stmts)-1] {
		p.stmt(s)
	}
	last := b.Stmts[len(b.Stmts)-1]
	if es, ok := last.(*hir.ExprStmt); ok {
		p.line("return %s", p.expr(es.X))
		return
	}
	p.stmt(last)
	p.line("return None")
}

// blockValue returns an expression for the value of b. A block of
// several statements becomes a local function, called in place.
func (p *printer) blockValue(b *hir.Block) string {
	if len(b.Stmts) == 1 {
		if es, ok := b.Stmts[0].(*hir.ExprStmt); ok {
			return p.expr(es.X)
		}
	}
	name := p.freshName("block")
	p.function(name, &hir.Params{}, b)
	return "(" + name + ")()"
}

func (p *printer) class(c *hir.ClassDef) {
	base := "_erg_Class"
	if c.Base != nil {
		base = Mangle(c.Base.Name)
	}
	p.line("class %s(%s):", Mangle(c.Name), base)
	p.nest(func() {
		if len(c.Methods) == 0 {
			p.line("pass")
			return
		}
		for i, m := range c.Methods {
			if i > 0 {
				p.buf.WriteByte('\n')
			}
			p.method(m)
		}
	})
}

// method emits a method definition. A method without self is static;
// a class attribute that is not a subroutine is assigned.
func (p *printer) method(m *hir.Def) {
	if !m.IsSubr() {
		p.def(m)
		return
	}
	if s := hir.SignatureT(m); s == nil || s.Self == nil {
		p.line("@staticmethod")
	}
	p.function(Mangle(m.Name), m.Params, m.Body)
}

func (p *printer) exprs(xs []hir.Expr) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = p.expr(x)
	}
	return out
}

func (p *printer) expr(e hir.Expr) string {
	if types.IsFailure(e.Type()) {
		p.fail(e.Position(), "expression has errors")
	}
	switch e := e.(type) {
	case *hir.Ident:
		if e.Name == "True" || e.Name == "False" || e.Name == "None" {
			return e.Name
		}
		return Mangle(e.Target)

	case *hir.Literal:
		return literal(e)

	case *hir.Call:
		var args strings.Builder
		for _, a := range e.Args {
			switch {
			case a.Star:
				args.WriteString("*")
			case a.Name != "":
				args.WriteString(Mangle(a.Name))
				args.WriteString("=")
			}
			args.WriteString(p.expr(a.X))
			args.WriteString(",")
		}
		return fmt.Sprintf("(%s)(%s)", p.expr(e.Fn), args.String())

	case *hir.Attr:
		if _, ok := e.X.Type().(*types.ClassType); ok && e.Target == "__call__" {
			return p.expr(e.X)
		}
		x := p.expr(e.X)
		if _, err := strconv.Atoi(e.Name); err == nil {
			return fmt.Sprintf("%s[%s]", x, e.Name)
		}
		if m, ok := e.X.Type().(*types.Module); ok && m.Py {
			return x + "." + e.Target
		}
		return x + "." + Mangle(e.Target)

	case *hir.Lambda:
		return p.lambda(e)

	case *hir.Array:
		return "[" + strings.Join(p.exprs(e.Elems), ", ") + "]"

	case *hir.Tuple:
		elems := p.exprs(e.Elems)
		if len(elems) == 1 {
			return "(" + elems[0] + ",)"
		}
		return "(" + strings.Join(elems, ", ") + ")"

	case *hir.Record:
		fields := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = Mangle(f.Name) + "=" + p.expr(f.X)
		}
		return "_erg_Record(" + strings.Join(fields, ", ") + ")"

	case *hir.Unary:
		x := p.expr(e.X)
		switch e.Op {
		case syntax.BANG:
			return "_erg_Mut(" + x + ")"
		case syntax.NOT:
			return "(not " + x + ")"
		}
		return "(" + e.Op.String() + x + ")"

	case *hir.Binary:
		return fmt.Sprintf("(%s %s %s)", p.expr(e.X), e.Op, p.expr(e.Y))

	case *hir.Import:
		if e.Py {
			return fmt.Sprintf("_erg_pyimport(%s)", strconv.Quote(e.Path))
		}
		return fmt.Sprintf("_erg_import(%s)", strconv.Quote(e.Path))

	case *hir.TypeExpr:
		return typeValue(e.Of)
	}
	p.fail(e.Position(), "unexpected expression %T", e)
	return ""
}

// lambda returns a Python lambda for e, or the name of a local def
// emitted for it if its body has several statements.
func (p *printer) lambda(e *hir.Lambda) string {
	if len(e.Body.Stmts) == 1 {
		if es, ok := e.Body.Stmts[0].(*hir.ExprStmt); ok {
			params := p.params(e.Params)
			body := p.expr(es.X)
			if params == "" {
				return "(lambda: " + body + ")"
			}
			return "(lambda " + params + ": " + body + ")"
		}
	}
	name := p.freshName("lambda")
	p.function(name, e.Params, e.Body)
	return name
}

func literal(e *hir.Literal) string {
	switch e.Token {
	case syntax.INT:
		switch v := e.Value.(type) {
		case int64:
			return "Nat(" + strconv.FormatInt(v, 10) + ")"
		case *big.Int:
			return "Nat(" + v.String() + ")"
		}
	case syntax.FLOAT:
		if v, ok := e.Value.(float64); ok {
			return "Float(" + strconv.FormatFloat(v, 'g', -1, 64) + ")"
		}
	case syntax.STRING:
		if v, ok := e.Value.(string); ok {
			return "Str(" + strconv.Quote(v) + ")"
		}
	}
	return e.Raw
}

// typeValue returns the Python value standing for a type used as a
// value.
func typeValue(t types.Type) string {
	switch t := t.(type) {
	case types.Prim:
		switch t {
		case types.Nat, types.Int, types.Float, types.Str:
			return t.String()
		case types.Bool:
			return "bool"
		case types.NoneType:
			return "type(None)"
		}
	case *types.Mono:
		if !t.Mutable {
			return Mangle(t.Name)
		}
		return "_erg_Mut"
	}
	return "object"
}
