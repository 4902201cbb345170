// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// Constructors for the types of builtins and declarations.

// ArrayT returns the type of arrays of n elements of type elem.
func ArrayT(elem Type, n TyParam) *Poly {
	return &Poly{Name: "Array", Params: []TyParam{TPType{elem}, n}}
}

// ArrayElem returns the element type and length of an array type.
func ArrayElem(t Type) (elem Type, n TyParam, ok bool) {
	p, ok := t.(*Poly)
	if !ok || p.Name != "Array" || len(p.Params) != 2 {
		return nil, nil, false
	}
	e, ok := p.Params[0].(TPType)
	if !ok {
		return nil, nil, false
	}
	return e.T, p.Params[1], true
}

// Kw returns a named parameter.
func Kw(name string, t Type) Param { return Param{Name: name, Type: t} }

// Anon returns an anonymous positional parameter.
func Anon(t Type) Param { return Param{Type: t} }

// Func returns the type of a function.
func Func(pos []Param, varargs *Param, defaults []Param, ret Type) *Subr {
	return &Subr{Kind: FuncKind, NonDefault: pos, VarArgs: varargs, Default: defaults, Return: ret}
}

// Proc returns the type of a procedure.
func Proc(pos []Param, varargs *Param, defaults []Param, ret Type) *Subr {
	return &Subr{Kind: ProcKind, NonDefault: pos, VarArgs: varargs, Default: defaults, Return: ret}
}

// Func0 returns the type of a function of no arguments.
func Func0(ret Type) *Subr { return Func(nil, nil, nil, ret) }

// Func1 returns the type of a function of one argument.
func Func1(p Type, ret Type) *Subr { return Func([]Param{Anon(p)}, nil, nil, ret) }

// Proc0 returns the type of a procedure of no arguments.
func Proc0(ret Type) *Subr { return Proc(nil, nil, nil, ret) }

// Proc1 returns the type of a procedure of one argument.
func Proc1(p Type, ret Type) *Subr { return Proc([]Param{Anon(p)}, nil, nil, ret) }

// MonoT returns a nominal class defined in the module at path.
func MonoT(name, path string, supers ...Type) *Mono {
	return &Mono{Name: name, Path: path, Supers: supers, Mutable: len(name) > 0 && name[len(name)-1] == '!'}
}

// BuiltinMono returns an opaque builtin nominal type.
func BuiltinMono(name string) *Mono { return MonoT(name, "") }

// Pr0Met returns the type of a procedural method of self taking no
// positional arguments.
func Pr0Met(self Type, varargs *Param, ret Type) *Subr {
	s := Proc(nil, varargs, nil, ret)
	s.Self = self
	return s
}

// Fn0Met returns the type of a method of self taking no arguments.
func Fn0Met(self Type, ret Type) *Subr {
	s := Func0(ret)
	s.Self = self
	return s
}

// Fn1Met returns the type of a method of self taking one argument.
func Fn1Met(self Type, p Param, ret Type) *Subr {
	s := Func([]Param{p}, nil, nil, ret)
	s.Self = self
	return s
}

// Refine returns the refinement type {v: base | pred}.
func Refine(v string, base Type, pred Pred) *Refinement {
	return &Refinement{Var: v, Base: base, Pred: pred}
}

// Singleton returns the refinement type containing only the integer n.
func Singleton(base Type, n int64) *Refinement {
	return Refine("_", base, Compare("_", Eq, n))
}

// Union returns the union of ts, or Never if ts is empty.
func Union(ts ...Type) Type {
	if len(ts) == 0 {
		return Never
	}
	t := ts[0]
	for _, u := range ts[1:] {
		t = &Or{t, u}
	}
	return t
}

// Bound returns the method type m bound to its receiver: the same
// subroutine without Self.
func Bound(m *Subr) *Subr {
	out := *m
	out.Self = nil
	return &out
}
