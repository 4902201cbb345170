// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines the desugaring pass, which canonicalizes the tree
// before elaboration:
//
//   - tuple and array patterns become a fresh temporary plus one
//     projection definition per element;
//   - pattern parameters become fresh %p{n} parameters whose body
//     starts with the projections;
//   - parameter lists are split into positional, variadic, and
//     default parameters (Signature);
//   - the '.' visibility sigil becomes the Public flag.
//
// Desugar is idempotent.

import (
	"strconv"

	"go.erg.dev/internal/fresh"
)

// Desugar canonicalizes f in place, drawing temporaries from gen.
// It reports malformed parameter lists as an ErrorList.
func Desugar(f *File, gen *fresh.Gen) error {
	d := desugarer{gen: gen}
	f.Stmts = d.stmts(f.Stmts)
	if len(d.errors) > 0 {
		return d.errors
	}
	return nil
}

type desugarer struct {
	gen    *fresh.Gen
	errors ErrorList
}

func (d *desugarer) errorf(pos Position, msg string) {
	d.errors = append(d.errors, Error{Pos: pos, Msg: msg})
}

func (d *desugarer) stmts(stmts []Stmt) []Stmt {
	out := make([]Stmt, 0, len(stmts))
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *DefStmt:
			if s.Dot.IsValid() {
				s.Public = true
				s.Dot = Position{}
			}
			d.block(s.Body)
			if s.Subr {
				s.Sig = d.params(s.Params, s.Body)
				break
			}
			pattern := unparen(s.Pattern)
			if _, ok := pattern.(*Ident); ok {
				s.Pattern = pattern
				break
			}
			// (a, b) = e  =>  %v1 = e; a = %v1.0; b = %v1.1
			tmp := &Ident{NamePos: Start(pattern), Name: d.gen.Var()}
			out = append(out, &DefStmt{Pattern: tmp, Type: s.Type, Eq: s.Eq, Body: s.Body})
			out = d.expand(out, pattern, tmp, s.Public)
			continue

		case *DeclStmt:
			if s.Dot.IsValid() {
				s.Public = true
				s.Dot = Position{}
			}

		case *MethodsStmt:
			d.block(s.Body)

		case *ExprStmt:
			d.expr(s.X)
		}
		out = append(out, stmt)
	}
	return out
}

func (d *desugarer) block(b *Block) {
	b.Stmts = d.stmts(b.Stmts)
}

// expand appends to out one definition per leaf of pattern, each
// projecting from src.
func (d *desugarer) expand(out []Stmt, pattern Expr, src *Ident, public bool) []Stmt {
	var elems []Expr
	switch p := pattern.(type) {
	case *TupleExpr:
		elems = p.List
	case *ListExpr:
		elems = p.List
	}
	for i, elem := range elems {
		pos := Start(elem)
		proj := &DotExpr{
			X:    &Ident{NamePos: pos, Name: src.Name},
			Dot:  pos,
			Name: &Ident{NamePos: pos, Name: strconv.Itoa(i)},
		}
		body := &Block{Stmts: []Stmt{&ExprStmt{X: proj}}}
		switch elem := unparen(elem).(type) {
		case *Ident:
			out = append(out, &DefStmt{Public: public, Pattern: elem, Eq: pos, Body: body})
		default:
			tmp := &Ident{NamePos: pos, Name: d.gen.Var()}
			out = append(out, &DefStmt{Pattern: tmp, Eq: pos, Body: body})
			out = d.expand(out, elem, tmp, public)
		}
	}
	return out
}

// params replaces pattern parameters by fresh names, prepending the
// projections to body, and returns the canonical signature.
func (d *desugarer) params(params []*Param, body *Block) *Signature {
	var prelude []Stmt
	for _, param := range params {
		if param.Default != nil {
			d.expr(param.Default)
		}
		if param.Pattern == nil {
			continue
		}
		pos := Start(param.Pattern)
		param.Name = &Ident{NamePos: pos, Name: d.gen.Param()}
		prelude = d.expand(prelude, unparen(param.Pattern), param.Name, false)
		param.Pattern = nil
	}
	if len(prelude) > 0 {
		body.Stmts = append(prelude, body.Stmts...)
		body.Indented = true
	}

	sig := new(Signature)
	for _, param := range params {
		switch {
		case param.Star.IsValid():
			if sig.VarArgs != nil {
				d.errorf(param.Star, "multiple variadic parameters")
			}
			if len(sig.Defaults) > 0 {
				d.errorf(param.Star, "variadic parameter after parameter with default")
			}
			sig.VarArgs = param
		case param.Default != nil:
			sig.Defaults = append(sig.Defaults, param)
		default:
			if len(sig.Defaults) > 0 || sig.VarArgs != nil {
				d.errorf(Start(param), "positional parameter after variadic or default parameter")
			}
			sig.Pos = append(sig.Pos, param)
		}
	}
	return sig
}

// expr desugars the lambdas within e.
func (d *desugarer) expr(e Expr) {
	Walk(e, func(n Node) bool {
		if lambda, ok := n.(*LambdaExpr); ok {
			d.block(lambda.Body)
			lambda.Sig = d.params(lambda.Params, lambda.Body)
			return false
		}
		return true
	})
}

func unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}
