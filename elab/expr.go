// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elab

import (
	"strconv"

	"github.com/pkg/errors"

	"go.erg.dev/diag"
	"go.erg.dev/env"
	"go.erg.dev/hir"
	"go.erg.dev/internal/spell"
	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

// expr elaborates e. If want is nil, the type of e is synthesized;
// otherwise e is checked against want.
func (el *elaborator) expr(e syntax.Expr, want types.Type) hir.Expr {
	var x hir.Expr
	switch e := e.(type) {
	case *syntax.Ident:
		x = el.ident(e)
	case *syntax.Literal:
		return el.constant(e, el.literal(e), want)
	case *syntax.UnaryExpr:
		if _, ok := intConst(e); ok {
			return el.constant(e, el.unary(e), want)
		}
		x = el.unary(e)
	case *syntax.BinaryExpr:
		x = el.binary(e)
	case *syntax.CallExpr:
		x = el.call(e)
	case *syntax.DotExpr:
		x = el.dot(e)
	case *syntax.LambdaExpr:
		return el.lambda(e, want)
	case *syntax.ListExpr:
		x = el.list(e, want)
	case *syntax.TupleExpr:
		x = el.tuple(e, want)
	case *syntax.RecordExpr:
		x = el.record(e, want)
	case *syntax.ParenExpr:
		return el.expr(e.X, want)
	case *syntax.AscribeExpr:
		t := el.evalType(e.Type)
		x = el.expr(e.X, t)
		if want != nil && !types.IsFailure(x.Type()) {
			el.subtype(t, want, x.Position())
		}
		return x
	case *syntax.ImportExpr:
		x = el.importExpr(e)
	case *syntax.RefinementExpr, *syntax.FuncTypeExpr, *syntax.ArrayTypeExpr:
		x = &hir.TypeExpr{Pos: syntax.Start(e), Src: e, Of: el.evalType(e), T: types.TypeType}
	case *syntax.KwArg:
		el.errorf(diag.ParseError, e.Name.NamePos, "keyword argument %s outside of a call", e.Name.Name)
		return hir.NewBad(e)
	default:
		el.internal(syntax.Start(e), errors.Errorf("unexpected expression %T", e))
		return hir.NewBad(e)
	}
	return el.expect(x, want)
}

func (el *elaborator) ident(id *syntax.Ident) hir.Expr {
	v, ok := el.scope.Lookup(id.Name)
	if !ok {
		return el.undefined(id)
	}
	return &hir.Ident{
		Pos:    id.NamePos,
		Name:   id.Name,
		Ref:    v.Ref,
		Target: v.Target(),
		T:      el.u.Instantiate(v.Type),
	}
}

// undefined reports a use of an unbound name.
func (el *elaborator) undefined(id *syntax.Ident) hir.Expr {
	d := el.errorf(diag.NameError, id.NamePos, "%s is not defined", id.Name)
	if s := el.scope.Suggest(id.Name); s != "" {
		d.WithSub("did you mean %s?", s)
	}
	return hir.NewBad(id)
}

func (el *elaborator) literal(lit *syntax.Literal) hir.Expr {
	x := &hir.Literal{Pos: lit.TokenPos, Token: lit.Token, Raw: lit.Raw, Value: lit.Value}
	switch lit.Token {
	case syntax.INT:
		x.T = types.Nat
	case syntax.FLOAT:
		x.T = types.Float
	case syntax.STRING:
		x.T = types.Str
	default:
		el.internal(lit.TokenPos, errors.Errorf("unexpected literal %s", lit.Token))
		x.T = types.Failure
	}
	return x
}

// intConst returns the value of an integer literal, possibly negated.
func intConst(e syntax.Expr) (int64, bool) {
	switch e := e.(type) {
	case *syntax.Literal:
		n, ok := e.Value.(int64)
		return n, ok && e.Token == syntax.INT
	case *syntax.UnaryExpr:
		if e.Op == syntax.MINUS {
			if lit, ok := e.X.(*syntax.Literal); ok {
				n, ok := intConst(lit)
				return -n, ok
			}
		}
	}
	return 0, false
}

// constant checks the elaborated constant x against want. An integer
// constant checked against a refinement type has that type if the
// predicate holds of its value.
func (el *elaborator) constant(e syntax.Expr, x hir.Expr, want types.Type) hir.Expr {
	if want == nil || types.IsFailure(x.Type()) {
		return x
	}
	r, ok := el.u.Resolve(want).(*types.Refinement)
	if !ok {
		return el.expect(x, want)
	}
	n, ok := intConst(e)
	if !ok {
		return el.expect(x, want)
	}
	if !el.subtype(x.Type(), r.Base, x.Position()) {
		hir.Poison(x)
		return x
	}
	if p, ok := types.Eval(r.Pred, r.Var, types.TPValue(n)).(types.PBool); ok && !bool(p) {
		el.errorf(diag.TypeMismatch, x.Position(), "expected %s, found %d", r, n)
		hir.Poison(x)
		return x
	}
	hir.SetType(x, r)
	return x
}

func (el *elaborator) unary(e *syntax.UnaryExpr) hir.Expr {
	out := &hir.Unary{Pos: e.OpPos, Op: e.Op}
	switch e.Op {
	case syntax.STAR:
		el.errorf(diag.ParseError, e.OpPos, "*%s is only allowed in an argument list", syntax.Unparse(e.X))
		return hir.NewBad(e)
	case syntax.NOT:
		out.X = el.expr(e.X, types.Bool)
		out.T = types.Bool
		return out
	case syntax.BANG:
		out.X = el.expr(e.X, nil)
		t := el.u.Resolve(out.X.Type())
		if types.IsFailure(t) {
			out.T = types.Failure
			return out
		}
		m, ok := types.MutOf(immutable(t))
		if !ok {
			el.errorf(diag.TypeMismatch, e.OpPos, "%s has no mutable counterpart", t)
			m = types.Failure
		}
		out.T = m
		return out
	}

	out.X = el.expr(e.X, nil)
	out.T = el.arith(e.Op, []hir.Expr{out.X}, e.OpPos)
	return out
}

// immutable strips refinements and mutability from t.
func immutable(t types.Type) types.Type {
	for {
		switch tt := t.(type) {
		case *types.Refinement:
			t = tt.Base
			continue
		case *types.Mono:
			if tt.Mutable && len(tt.Supers) > 0 {
				t = tt.Supers[0]
				continue
			}
		}
		return t
	}
}

// numeric returns the type that a value of type t has in arithmetic:
// a numeric primitive, Failure, or an unsolved variable.
func (el *elaborator) numeric(t types.Type) (types.Type, bool) {
	t = immutable(el.u.Resolve(t))
	switch tt := t.(type) {
	case types.Prim:
		return tt, tt.IsNumeric() || tt == types.Failure
	case *types.Var:
		return tt, true
	}
	return t, false
}

// arith returns the result type of the arithmetic operation op on the
// operands xs.
func (el *elaborator) arith(op syntax.Token, xs []hir.Expr, pos syntax.Position) types.Type {
	ts := make([]types.Type, len(xs))
	unsolved := false
	for i, x := range xs {
		t, ok := el.numeric(x.Type())
		if !ok {
			if len(xs) == 1 {
				el.errorf(diag.TypeMismatch, pos, "bad operand type for unary %s: %s", op, t)
			} else {
				el.errorf(diag.TypeMismatch, pos, "unsupported operand types for %s: %s and %s",
					op, el.u.Resolve(xs[0].Type()), el.u.Resolve(xs[1].Type()))
			}
			return types.Failure
		}
		if t == types.Failure {
			return types.Failure
		}
		_, v := t.(*types.Var)
		unsolved = unsolved || v
		ts[i] = t
	}

	if unsolved {
		// Constrain the operands to be numbers and the result to
		// lie above them.
		r := el.u.Fresh()
		for _, x := range xs {
			if !el.subtype(x.Type(), types.Float, pos) {
				return types.Failure
			}
			if !el.subtype(x.Type(), r, pos) {
				return types.Failure
			}
		}
		switch op {
		case syntax.SLASH:
			return types.Float
		case syntax.MINUS:
			if !el.subtype(types.Int, r, pos) {
				return types.Failure
			}
		}
		el.subtype(r, types.Float, pos)
		return r
	}

	if op == syntax.SLASH {
		return types.Float
	}
	t := ts[0]
	for _, u := range ts[1:] {
		t = el.u.Join(t, u)
	}
	switch {
	case op == syntax.MINUS:
		t = el.u.Join(t, types.Int)
	case t == types.Bool:
		t = types.Nat
	}
	return t
}

func (el *elaborator) binary(e *syntax.BinaryExpr) hir.Expr {
	out := &hir.Binary{Pos: syntax.Start(e), Op: e.Op}
	switch e.Op {
	case syntax.AND, syntax.OR:
		out.X = el.expr(e.X, types.Bool)
		out.Y = el.expr(e.Y, types.Bool)
		out.T = types.Bool
		return out
	}

	out.X = el.expr(e.X, nil)
	out.Y = el.expr(e.Y, nil)
	xt, yt := el.u.Resolve(out.X.Type()), el.u.Resolve(out.Y.Type())
	strs := !(isVar(xt) && isVar(yt)) && el.u.Check(xt, types.Str) && el.u.Check(yt, types.Str) &&
		!types.IsFailure(xt) && !types.IsFailure(yt)

	switch e.Op {
	case syntax.EQL, syntax.NEQ, syntax.IN, syntax.NOT_IN:
		out.T = types.Bool
	case syntax.LT, syntax.LE, syntax.GT, syntax.GE:
		if !strs {
			el.arith(e.Op, []hir.Expr{out.X, out.Y}, e.OpPos)
		}
		out.T = types.Bool
	case syntax.PLUS:
		if strs {
			if !el.subtype(xt, types.Str, out.X.Position()) || !el.subtype(yt, types.Str, out.Y.Position()) {
				out.T = types.Failure
				return out
			}
			out.T = types.Str
			return out
		}
		out.T = el.arith(e.Op, []hir.Expr{out.X, out.Y}, e.OpPos)
	case syntax.STAR:
		if el.u.Check(xt, types.Str) && !types.IsFailure(xt) && el.u.Check(yt, types.Nat) {
			out.T = types.Str
			return out
		}
		out.T = el.arith(e.Op, []hir.Expr{out.X, out.Y}, e.OpPos)
	case syntax.MINUS, syntax.SLASH, syntax.SLASHSLASH, syntax.PERCENT, syntax.STARSTAR:
		out.T = el.arith(e.Op, []hir.Expr{out.X, out.Y}, e.OpPos)
	default:
		el.internal(e.OpPos, errors.Errorf("unexpected binary operator %s", e.Op))
		out.T = types.Failure
	}
	return out
}

func (el *elaborator) dot(e *syntax.DotExpr) hir.Expr {
	name := e.Name.Name
	x := el.expr(e.X, nil)
	out := &hir.Attr{Pos: syntax.Start(e), X: x, Name: name, Target: name, T: types.Failure}
	pos := e.Name.NamePos

	switch t := el.u.Resolve(x.Type()).(type) {
	case *types.Module:
		el.moduleAttr(out, t, pos)
	case *types.Tuple:
		i, err := strconv.Atoi(name)
		switch {
		case err != nil:
			el.errorf(diag.NameError, pos, "%s has no attribute %s", t, name)
		case i < 0 || i >= len(t.Elems):
			el.errorf(diag.TypeMismatch, pos, "index %d out of range for %s", i, t)
		default:
			out.T = t.Elems[i]
		}
	case *types.Record:
		if ft := t.Field(name); ft != nil {
			out.T = ft
		} else {
			d := el.errorf(diag.NameError, pos, "%s has no field %s", t, name)
			var names []string
			for _, f := range t.Fields {
				names = append(names, f.Name)
			}
			if s := spell.Nearest(name, names); s != "" {
				d.WithSub("did you mean %s?", s)
			}
		}
	case *types.ClassType:
		el.classAttr(out, t, pos)
	case *types.Var:
		el.errorf(diag.TypeMismatch, pos, "cannot infer the type of the receiver of .%s", name)
	default:
		if !types.IsFailure(t) {
			el.instanceAttr(out, t, pos)
		}
	}
	return out
}

func (el *elaborator) moduleAttr(out *hir.Attr, t *types.Module, pos syntax.Position) {
	c, ok := el.arena.LookupModule(t.Path, t.Py)
	if !ok {
		el.internal(pos, errors.Errorf("module %s has no context", t.Path))
		return
	}
	v, ok := c.LookupLocal(out.Name)
	if !ok {
		d := el.errorf(diag.NameError, pos, "module %s has no attribute %s", t.Path, out.Name)
		var names []string
		for _, v := range c.Vars() {
			if v.Public() {
				names = append(names, v.Name)
			}
		}
		if s := spell.Nearest(out.Name, names); s != "" {
			d.WithSub("did you mean %s?", s)
		}
		return
	}
	if !v.Public() && !t.Py {
		d := el.errorf(diag.VisibilityViolation, pos, "%s is private to module %s", out.Name, t.Path)
		d.WithSub("%s was defined at %s", out.Name, v.Def)
		return
	}
	out.Ref = v.Ref
	out.Target = v.Target()
	out.T = el.u.Instantiate(v.Type)
}

// classAttr resolves an attribute of a class object: its constructor
// new, or a method taking the receiver as explicit first argument.
func (el *elaborator) classAttr(out *hir.Attr, t *types.ClassType, pos syntax.Position) {
	if out.Name == "new" && t.Init != nil {
		out.Target = "__call__"
		out.T = t.Init
		return
	}
	v, ok := el.arena.LookupAttr(t.Of, out.Name)
	if !ok {
		el.noAttr(t.Of, out.Name, pos)
		return
	}
	if !el.visible(v, pos) {
		return
	}
	mt := el.u.Instantiate(v.Type)
	if s, ok := mt.(*types.Subr); ok && s.Self != nil {
		unbound := *s
		unbound.NonDefault = append([]types.Param{types.Kw("self", s.Self)}, s.NonDefault...)
		unbound.Self = nil
		mt = &unbound
	}
	out.Ref = v.Ref
	out.Target = v.Target()
	out.T = mt
}

func (el *elaborator) instanceAttr(out *hir.Attr, t types.Type, pos syntax.Position) {
	v, ok := el.arena.LookupAttr(t, out.Name)
	if !ok {
		el.noAttr(t, out.Name, pos)
		return
	}
	if !el.visible(v, pos) {
		return
	}
	mt := el.u.Instantiate(v.Type)
	if s, ok := mt.(*types.Subr); ok && s.Self != nil && v.Kind != env.Field {
		if !el.subtype(out.X.Type(), s.Self, out.X.Position()) {
			return
		}
		mt = types.Bound(s)
	}
	out.Ref = v.Ref
	out.Target = v.Target()
	out.T = mt
}

func (el *elaborator) noAttr(t types.Type, name string, pos syntax.Position) {
	d := el.errorf(diag.NameError, pos, "%s has no attribute %s", t, name)
	if s := spell.Nearest(name, el.arena.AttrNames(t)); s != "" {
		d.WithSub("did you mean %s?", s)
	}
}

// visible reports whether the attribute v may be used here, reporting
// a violation if not. Private attributes are visible within the module
// that defines them.
func (el *elaborator) visible(v *env.VarInfo, pos syntax.Position) bool {
	if v.Public() || v.Kind == env.Builtin {
		return true
	}
	if c := el.arena.Get(v.Ref.Ctx); c == nil || c.Path == el.mod.Path {
		return true
	}
	d := el.errorf(diag.VisibilityViolation, pos, "%s is private", v.Name)
	d.WithSub("%s was defined at %s", v.Name, v.Def)
	return false
}

func (el *elaborator) lambda(e *syntax.LambdaExpr, want types.Type) hir.Expr {
	var expected *types.Subr
	if want != nil {
		expected, _ = el.u.Instantiate(el.u.Resolve(want)).(*types.Subr)
	}
	sig := e.Sig
	if sig == nil {
		sig = &syntax.Signature{Pos: e.Params}
	}
	outer := el.scope
	ctx, leave := el.enter("<lambda>", env.Subr, outer)
	params, s := el.params(sig, outer, expected)
	if e.Proc {
		s.Kind = types.ProcKind
	}
	var ret types.Type
	if expected != nil {
		ret = expected.Return
	}
	body := el.block(e.Body, ret)
	leave()
	s.Return = body.T
	if ret != nil {
		s.Return = ret
	}
	x := &hir.Lambda{Pos: syntax.Start(e), Params: params, Proc: e.Proc, Ctx: ctx.ID, Body: body, T: s}
	return el.expect(x, want)
}

func (el *elaborator) list(e *syntax.ListExpr, want types.Type) hir.Expr {
	var elem types.Type
	if want != nil {
		if t, _, ok := types.ArrayElem(el.u.Resolve(want)); ok {
			elem = t
		}
	}
	out := &hir.Array{Pos: e.Lbrack, Elems: make([]hir.Expr, 0, len(e.List))}
	var join types.Type = types.Never
	for _, item := range e.List {
		x := el.expr(item, elem)
		out.Elems = append(out.Elems, x)
		if elem == nil {
			join = el.u.Join(join, x.Type())
		}
	}
	if elem != nil {
		join = elem
	} else {
		// Join only tests; record the element constraints.
		for _, x := range out.Elems {
			if !el.subtype(x.Type(), join, x.Position()) {
				join = types.Failure
				break
			}
		}
	}
	out.T = types.ArrayT(join, types.TPValue(len(e.List)))
	return out
}

func (el *elaborator) tuple(e *syntax.TupleExpr, want types.Type) hir.Expr {
	var wants []types.Type
	if want != nil {
		if t, ok := el.u.Resolve(want).(*types.Tuple); ok && len(t.Elems) == len(e.List) {
			wants = t.Elems
		}
	}
	out := &hir.Tuple{Pos: syntax.Start(e)}
	t := &types.Tuple{}
	for i, item := range e.List {
		var w types.Type
		if wants != nil {
			w = wants[i]
		}
		x := el.expr(item, w)
		out.Elems = append(out.Elems, x)
		t.Elems = append(t.Elems, x.Type())
	}
	out.T = t
	return out
}

func (el *elaborator) record(e *syntax.RecordExpr, want types.Type) hir.Expr {
	var wr *types.Record
	if want != nil {
		wr, _ = el.u.Resolve(want).(*types.Record)
	}
	out := &hir.Record{Pos: e.Lbrace}
	t := &types.Record{}
	seen := make(map[string]bool)
	for _, f := range e.Fields {
		name := f.Name.Name
		if seen[name] {
			el.errorf(diag.NameError, f.Name.NamePos, "duplicate field %s", name)
			continue
		}
		seen[name] = true
		var w types.Type
		if wr != nil {
			w = wr.Field(name)
		}
		x := el.expr(f.Value, w)
		public := f.Dot.IsValid()
		out.Fields = append(out.Fields, &hir.Field{Name: name, Public: public, X: x})
		t.Fields = append(t.Fields, types.Field{Name: name, Type: x.Type(), Public: public})
	}
	out.T = t
	return out
}

func isVar(t types.Type) bool {
	_, ok := t.(*types.Var)
	return ok
}
