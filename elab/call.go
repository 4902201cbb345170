// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elab

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"go.erg.dev/diag"
	"go.erg.dev/env"
	"go.erg.dev/hir"
	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

func (el *elaborator) call(e *syntax.CallExpr) hir.Expr {
	if id, ok := e.Fn.(*syntax.Ident); ok {
		if cands := el.scope.LookupOverloads(id.Name); len(cands) > 1 {
			return el.overloaded(e, id, cands)
		}
	}

	fn := el.expr(e.Fn, nil)
	switch t := fn.Type().(type) {
	case *types.Subr:
		return el.apply(e, fn, t)
	case *types.ClassType:
		if t.Init != nil {
			return el.apply(e, fn, t.Init)
		}
	case *types.Var:
		if r, ok := el.u.Resolve(t).(*types.Subr); ok {
			return el.apply(e, fn, r)
		}
		s := el.callSig(e)
		if el.subtype(t, s, fn.Position()) {
			return el.apply(e, fn, s)
		}
	}
	if !types.IsFailure(fn.Type()) {
		el.errorf(diag.TypeMismatch, fn.Position(), "%s is not callable: it has type %s",
			syntax.Unparse(e.Fn), el.u.Resolve(fn.Type()))
	}
	return &hir.Call{Pos: syntax.Start(e), Fn: fn, Args: el.synthArgs(e), T: types.Failure}
}

// callSig returns the type of an unknown subroutine applied as in e:
// a fresh variable for each parameter and for the result. A callee
// whose name ends in ! is a procedure.
func (el *elaborator) callSig(e *syntax.CallExpr) *types.Subr {
	s := &types.Subr{Return: el.u.Fresh()}
	if syntax.IsProcedural(calleeName(e.Fn)) {
		s.Kind = types.ProcKind
	}
	for _, a := range e.Args {
		switch a := a.(type) {
		case *syntax.KwArg:
			s.Default = append(s.Default, types.Kw(a.Name.Name, el.u.Fresh()))
		case *syntax.UnaryExpr:
			if a.Op == syntax.STAR {
				s.VarArgs = &types.Param{Type: el.u.Fresh()}
				continue
			}
			s.NonDefault = append(s.NonDefault, types.Anon(el.u.Fresh()))
		default:
			s.NonDefault = append(s.NonDefault, types.Anon(el.u.Fresh()))
		}
	}
	return s
}

func calleeName(fn syntax.Expr) string {
	switch fn := fn.(type) {
	case *syntax.Ident:
		return fn.Name
	case *syntax.DotExpr:
		return fn.Name.Name
	}
	return ""
}

// apply elaborates the arguments of e against the signature s of the
// callee fn.
func (el *elaborator) apply(e *syntax.CallExpr, fn hir.Expr, s *types.Subr) hir.Expr {
	return &hir.Call{Pos: syntax.Start(e), Fn: fn, Args: el.bindArgs(e, s), T: s.Return}
}

// synthArgs elaborates the arguments of e without expected types.
func (el *elaborator) synthArgs(e *syntax.CallExpr) []*hir.Arg {
	args := make([]*hir.Arg, 0, len(e.Args))
	for _, a := range e.Args {
		switch a := a.(type) {
		case *syntax.KwArg:
			args = append(args, &hir.Arg{Name: a.Name.Name, X: el.expr(a.Value, nil)})
		case *syntax.UnaryExpr:
			if a.Op == syntax.STAR {
				args = append(args, &hir.Arg{Star: true, X: el.expr(a.X, nil)})
				continue
			}
			args = append(args, &hir.Arg{X: el.expr(a, nil)})
		default:
			args = append(args, &hir.Arg{X: el.expr(a, nil)})
		}
	}
	return args
}

// paramNamed returns the parameter of s that a keyword argument name
// binds.
func paramNamed(s *types.Subr, name string) (types.Param, bool) {
	for _, p := range s.NonDefault {
		if p.Name == name {
			return p, true
		}
	}
	return s.DefaultParam(name)
}

// maxPositional returns the number of positional arguments s accepts,
// or -1 if it is variadic.
func maxPositional(s *types.Subr) int {
	if s.VarArgs != nil {
		return -1
	}
	return len(s.NonDefault) + len(s.Default)
}

func countPositional(e *syntax.CallExpr) int {
	n := 0
	for _, a := range e.Args {
		switch a := a.(type) {
		case *syntax.KwArg:
			continue
		case *syntax.UnaryExpr:
			if a.Op == syntax.STAR {
				continue
			}
		}
		n++
	}
	return n
}

// positionalParam returns the type of the i'th positional argument of
// a call of s.
func positionalParam(s *types.Subr, i int) (types.Param, bool) {
	switch {
	case i < len(s.NonDefault):
		return s.NonDefault[i], true
	case s.VarArgs != nil:
		return *s.VarArgs, true
	case i-len(s.NonDefault) < len(s.Default):
		return s.Default[i-len(s.NonDefault)], true
	}
	return types.Param{}, false
}

// bindArgs matches the arguments of e to the parameters of s, checking
// each against the type of its parameter.
func (el *elaborator) bindArgs(e *syntax.CallExpr, s *types.Subr) []*hir.Arg {
	callee := syntax.Unparse(e.Fn)
	args := make([]*hir.Arg, 0, len(e.Args))
	bound := make(map[string]bool)
	npos, star := 0, false
	for _, a := range e.Args {
		switch a := a.(type) {
		case *syntax.KwArg:
			name := a.Name.Name
			p, ok := paramNamed(s, name)
			var want types.Type
			switch {
			case !ok:
				el.errorf(diag.TypeMismatch, a.Name.NamePos, "%s got an unexpected keyword argument %s", callee, name)
			case bound[name]:
				el.errorf(diag.TypeMismatch, a.Name.NamePos, "%s got multiple values for argument %s", callee, name)
			default:
				want = p.Type
			}
			bound[name] = true
			args = append(args, &hir.Arg{Name: name, X: el.expr(a.Value, want)})
			continue
		case *syntax.UnaryExpr:
			if a.Op == syntax.STAR {
				elem := types.Type(types.Obj)
				if s.VarArgs != nil {
					elem = s.VarArgs.Type
				}
				star = true
				args = append(args, &hir.Arg{Star: true, X: el.expr(a.X, types.ArrayT(elem, types.Erased))})
				continue
			}
		}

		p, ok := positionalParam(s, npos)
		npos++
		if !ok {
			if npos == maxPositional(s)+1 {
				el.errorf(diag.TypeMismatch, syntax.Start(a), "%s takes %d positional arguments but %d were given",
					callee, maxPositional(s), countPositional(e))
			}
			args = append(args, &hir.Arg{X: el.expr(a, nil)})
			continue
		}
		if p.Name != "" {
			bound[p.Name] = true
		}
		args = append(args, &hir.Arg{X: el.expr(a, p.Type)})
	}

	if !star {
		var missing []string
		for i, p := range s.NonDefault {
			if i < npos || p.Name != "" && bound[p.Name] {
				continue
			}
			if p.Name == "" {
				missing = append(missing, fmt.Sprintf("#%d", i+1))
			} else {
				missing = append(missing, p.Name)
			}
		}
		if len(missing) > 0 {
			el.errorf(diag.TypeMismatch, syntax.Start(e), "%s missing required argument %s", callee, strings.Join(missing, ", "))
		}
	}
	return args
}

// overloaded elaborates a call of a name bound to several subroutines.
// The arguments are synthesized once; the most specific overload that
// accepts their types is chosen.
func (el *elaborator) overloaded(e *syntax.CallExpr, id *syntax.Ident, cands []*env.VarInfo) hir.Expr {
	pos := syntax.Start(e)
	args := el.synthArgs(e)
	call := &hir.Call{Pos: pos, Args: args, T: types.Failure}

	applicable := func(v *env.VarInfo) bool {
		s, ok := el.u.Instantiate(v.Type).(*types.Subr)
		return ok && el.match(s, args, func(got, want types.Type) bool { return el.u.Check(got, want) })
	}
	v, err := env.SelectOverload(id.Name, cands, applicable)
	if err != nil {
		var amb *env.AmbiguousError
		if errors.As(err, &amb) {
			el.errorf(diag.AmbiguousOverload, pos, "%v", err)
		} else {
			ts := make([]string, len(args))
			for i, a := range args {
				ts[i] = el.u.Resolve(a.X.Type()).String()
			}
			el.errorf(diag.TypeMismatch, pos, "%v", err).WithSub("argument types are (%s)", strings.Join(ts, ", "))
		}
		call.Fn = &hir.Ident{Pos: id.NamePos, Name: id.Name, Target: id.Name, T: types.Failure}
		return call
	}

	s := el.u.Instantiate(v.Type).(*types.Subr)
	el.match(s, args, func(got, want types.Type) bool { return el.subtype(got, want, pos) })
	call.Fn = &hir.Ident{Pos: id.NamePos, Name: id.Name, Ref: v.Ref, Target: v.Target(), T: s}
	call.T = s.Return
	return call
}

// match reports whether the elaborated args fit s, testing each
// argument type against its parameter type with sub.
func (el *elaborator) match(s *types.Subr, args []*hir.Arg, sub func(got, want types.Type) bool) bool {
	bound := make(map[string]bool)
	npos, star := 0, false
	for _, a := range args {
		var p types.Param
		var ok bool
		switch {
		case a.Star:
			star = true
			continue
		case a.Name != "":
			p, ok = paramNamed(s, a.Name)
			if !ok || bound[a.Name] {
				return false
			}
			bound[a.Name] = true
		default:
			p, ok = positionalParam(s, npos)
			if !ok {
				return false
			}
			if npos < len(s.NonDefault) && p.Name != "" {
				bound[p.Name] = true
			}
			npos++
		}
		if !sub(a.X.Type(), p.Type) {
			return false
		}
	}
	if star {
		return true
	}
	for i, p := range s.NonDefault {
		if i >= npos && !(p.Name != "" && bound[p.Name]) {
			return false
		}
	}
	return true
}
