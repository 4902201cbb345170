// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elab

import (
	"go.erg.dev/diag"
	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

// evalType evaluates a type expression. Errors are reported and yield
// Failure.
func (el *elaborator) evalType(e syntax.Expr) types.Type {
	switch e := e.(type) {
	case *syntax.Ident:
		if e.Name == "None" {
			return types.NoneType
		}
		if t, ok := el.scope.LookupType(e.Name); ok {
			return t
		}
		if _, ok := el.scope.Lookup(e.Name); ok {
			el.errorf(diag.TypeMismatch, e.NamePos, "%s is not a type", e.Name)
			return types.Failure
		}
		el.undefined(e)
		return types.Failure

	case *syntax.ParenExpr:
		return el.evalType(e.X)

	case *syntax.CallExpr:
		if id, ok := e.Fn.(*syntax.Ident); ok && id.Name == "Array" && len(e.Args) >= 1 && len(e.Args) <= 2 {
			n := types.Erased
			if len(e.Args) == 2 {
				n = el.evalTP(e.Args[1])
			}
			return types.ArrayT(el.evalType(e.Args[0]), n)
		}

	case *syntax.ArrayTypeExpr:
		return types.ArrayT(el.evalType(e.Elem), el.evalTP(e.Len))

	case *syntax.ListExpr:
		if len(e.List) == 1 {
			return types.ArrayT(el.evalType(e.List[0]), types.Erased)
		}

	case *syntax.TupleExpr:
		t := &types.Tuple{}
		for _, x := range e.List {
			t.Elems = append(t.Elems, el.evalType(x))
		}
		return t

	case *syntax.RecordExpr:
		t := &types.Record{}
		for _, f := range e.Fields {
			t.Fields = append(t.Fields, types.Field{
				Name:   f.Name.Name,
				Type:   el.evalType(f.Value),
				Public: f.Dot.IsValid(),
			})
		}
		return t

	case *syntax.RefinementExpr:
		base := el.evalType(e.Base)
		el.refVars = append(el.refVars, e.Var.Name)
		defer func() { el.refVars = el.refVars[:len(el.refVars)-1] }()
		return types.Refine(e.Var.Name, base, types.Normalize(el.evalPred(e.Pred)))

	case *syntax.FuncTypeExpr:
		params := make([]types.Param, 0, len(e.Params))
		for _, p := range e.Params {
			if kw, ok := p.(*syntax.KwArg); ok && kw.Type != nil {
				params = append(params, types.Kw(kw.Name.Name, el.evalType(kw.Type)))
				continue
			}
			if a, ok := p.(*syntax.AscribeExpr); ok {
				if id, ok := a.X.(*syntax.Ident); ok {
					params = append(params, types.Kw(id.Name, el.evalType(a.Type)))
					continue
				}
			}
			params = append(params, types.Anon(el.evalType(p)))
		}
		ret := el.evalType(e.Result)
		if e.Proc {
			return types.Proc(params, nil, nil, ret)
		}
		return types.Func(params, nil, nil, ret)

	case *syntax.BinaryExpr:
		switch e.Op {
		case syntax.OR:
			return types.Union(el.evalType(e.X), el.evalType(e.Y))
		case syntax.AND:
			return &types.And{L: el.evalType(e.X), R: el.evalType(e.Y)}
		}

	case *syntax.DotExpr:
		x := el.expr(e.X, nil)
		if m, ok := el.u.Resolve(x.Type()).(*types.Module); ok {
			if c, ok := el.arena.LookupModule(m.Path, m.Py); ok {
				if t, ok := c.LookupType(e.Name.Name); ok {
					return t
				}
			}
			el.errorf(diag.NameError, e.Name.NamePos, "module %s has no type %s", m.Path, e.Name.Name)
			return types.Failure
		}
		if types.IsFailure(x.Type()) {
			return types.Failure
		}
	}
	el.errorf(diag.TypeMismatch, syntax.Start(e), "%s is not a type expression", syntax.Unparse(e))
	return types.Failure
}

var tpOps = map[syntax.Token]types.Op{
	syntax.PLUS:       types.Add,
	syntax.MINUS:      types.Sub,
	syntax.STAR:       types.Mul,
	syntax.SLASHSLASH: types.Div,
	syntax.PERCENT:    types.Mod,
}

// evalTP evaluates a type parameter: an integer expression over the
// names of value parameters, _, or a type.
func (el *elaborator) evalTP(e syntax.Expr) types.TyParam {
	switch e := e.(type) {
	case *syntax.Literal:
		if n, ok := intConst(e); ok {
			return types.TPValue(n)
		}
	case *syntax.Ident:
		switch {
		case e.Name == "_":
			return types.Erased
		case el.isRefVar(e.Name):
			return types.TPName(e.Name)
		case syntax.IsTypeName(e.Name):
			if _, ok := el.scope.LookupType(e.Name); ok {
				return types.TPType{T: el.evalType(e)}
			}
		}
		if _, ok := el.scope.Lookup(e.Name); !ok {
			el.undefined(e)
			return types.Erased
		}
		return types.TPName(e.Name)
	case *syntax.ParenExpr:
		return el.evalTP(e.X)
	case *syntax.UnaryExpr:
		if n, ok := intConst(e); ok {
			return types.TPValue(n)
		}
		if e.Op == syntax.MINUS {
			return types.EvalTP(&types.TPBin{Op: types.Sub, L: types.TPValue(0), R: el.evalTP(e.X)})
		}
	case *syntax.BinaryExpr:
		if op, ok := tpOps[e.Op]; ok {
			return types.EvalTP(&types.TPBin{Op: op, L: el.evalTP(e.X), R: el.evalTP(e.Y)})
		}
	}
	return types.TPType{T: el.evalType(e)}
}

func (el *elaborator) isRefVar(name string) bool {
	for _, v := range el.refVars {
		if v == name {
			return true
		}
	}
	return false
}

var cmpOps = map[syntax.Token]types.CmpOp{
	syntax.EQL: types.Eq,
	syntax.NEQ: types.Ne,
	syntax.LT:  types.Lt,
	syntax.LE:  types.Le,
	syntax.GT:  types.Gt,
	syntax.GE:  types.Ge,
}

// evalPred evaluates the predicate of a refinement type. A predicate
// outside the comparison fragment is kept as opaque text.
func (el *elaborator) evalPred(e syntax.Expr) types.Pred {
	switch e := e.(type) {
	case *syntax.ParenExpr:
		return el.evalPred(e.X)
	case *syntax.Ident:
		switch e.Name {
		case "True":
			return types.PTrue
		case "False":
			return types.PFalse
		}
	case *syntax.BinaryExpr:
		switch e.Op {
		case syntax.AND:
			return types.Conj{el.evalPred(e.X), el.evalPred(e.Y)}
		case syntax.OR:
			return types.Disj{el.evalPred(e.X), el.evalPred(e.Y)}
		}
		if op, ok := cmpOps[e.Op]; ok {
			return types.Cmp{Op: op, L: el.evalTP(e.X), R: el.evalTP(e.Y)}
		}
	}
	return types.Opaque(syntax.Unparse(e))
}
