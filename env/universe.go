// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package env

import (
	"github.com/pkg/errors"

	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

// The builtin bindings of the universe. Each carries the Python
// identifier that implements it when that differs from its name.

const (
	imm = syntax.Immutable
	pub = syntax.Public
)

func seedUniverse(c *Context) {
	for _, t := range types.Prims {
		c.builtinType(t.String(), t)
	}
	for _, m := range []*types.Mono{types.IntMut, types.NatMut, types.FloatMut, types.StrMut, types.BoolMut, types.GenericModule} {
		c.builtinType(m.Name, m)
	}

	obj, str, nat, intT, float, none := types.Obj, types.Str, types.Nat, types.Int, types.Float, types.NoneType
	kw, anon := types.Kw, types.Anon

	c.RegisterBuiltinPyImpl("print!", types.Proc(nil, &types.Param{Name: "objects", Type: obj},
		[]types.Param{kw("sep", str), kw("end", str)}, none), imm, pub, "print")
	c.RegisterBuiltinPyImpl("input!", types.Proc(nil, nil, []types.Param{kw("msg", str)}, str), imm, pub, "input")
	c.RegisterBuiltinPyImpl("assert", types.Func([]types.Param{kw("test", types.Bool)}, nil,
		[]types.Param{kw("msg", str)}, none), imm, pub, "assert_")
	c.RegisterBuiltinImpl("exit", types.Func(nil, nil, []types.Param{kw("code", intT)}, types.Never), imm, pub)
	c.RegisterBuiltinPyImpl("quit", types.Func(nil, nil, []types.Param{kw("code", intT)}, types.Never), imm, pub, "exit")

	// overloaded numeric builtins
	c.RegisterBuiltinImpl("abs", types.Func1(intT, nat), imm, pub)
	c.RegisterBuiltinImpl("abs", types.Func1(float, float), imm, pub)
	for _, name := range []string{"max", "min"} {
		c.RegisterBuiltinImpl(name, types.Func([]types.Param{anon(intT), anon(intT)}, nil, nil, intT), imm, pub)
		c.RegisterBuiltinImpl(name, types.Func([]types.Param{anon(float), anon(float)}, nil, nil, float), imm, pub)
	}
	c.RegisterBuiltinImpl("len", types.Func1(str, nat), imm, pub)
	c.RegisterBuiltinImpl("len", types.Func1(types.ArrayT(obj, types.Erased), nat), imm, pub)

	c.RegisterBuiltinImpl("str", types.Func1(obj, str), imm, pub)
	c.RegisterBuiltinImpl("int", types.Func1(obj, intT), imm, pub)
	c.RegisterBuiltinImpl("float", types.Func1(obj, float), imm, pub)
	c.RegisterBuiltinImpl("range", types.Func([]types.Param{kw("stop", intT)}, nil, nil, types.ArrayT(nat, types.Erased)), imm, pub)

	c.RegisterBuiltinImpl("True", types.Bool, imm, pub)
	c.RegisterBuiltinImpl("False", types.Bool, imm, pub)
	c.RegisterBuiltinImpl("None", none, imm, pub)

	// Class and Inherit are recognized by the elaborator; these
	// bindings describe them when used as ordinary values.
	c.RegisterBuiltinImpl("Class", types.Func(nil, nil, []types.Param{kw("requirement", obj)}, types.TypeType), imm, pub)
	c.RegisterBuiltinImpl("Inherit", types.Func1(types.TypeType, types.TypeType), imm, pub)

	// control flow
	c.RegisterBuiltinPyImpl("if", ifType(types.FuncKind), imm, pub, "if_")
	c.RegisterBuiltinPyImpl("if!", ifType(types.ProcKind), imm, pub, "if__")
	c.RegisterBuiltinPyImpl("for!", forType(), imm, pub, "for__")
	c.RegisterBuiltinPyImpl("while!", types.Proc([]types.Param{kw("cond", types.Func0(types.Bool)), kw("body", types.Proc0(none))},
		nil, nil, none), imm, pub, "while__")

	seedMethods(c)
}

// builtinType registers a type name in the universe.
func (c *Context) builtinType(name string, t types.Type) {
	v, err := c.RegisterType(name, t, 0, imm, pub, syntax.Position{})
	if err != nil {
		panic(errors.Wrapf(err, "builtin type %s", name))
	}
	v.Kind = Builtin
}

// ifType returns |T|(cond: Bool, then: () -> T, else := () -> T) -> T,
// with procedures in place of functions for if!.
func ifType(kind types.SubrKind) types.Type {
	var u types.Unifier
	u.Enter()
	t := u.Fresh()
	branch := &types.Subr{Kind: kind, Return: t}
	s := &types.Subr{
		Kind:       kind,
		NonDefault: []types.Param{types.Kw("cond", types.Bool), types.Kw("then", branch)},
		Default:    []types.Param{types.Kw("else", branch)},
		Return:     t,
	}
	u.Leave()
	return u.Generalize(s)
}

// forType returns |T|(iterable: Array(T, _), body: (T) => NoneType) => NoneType.
func forType() types.Type {
	var u types.Unifier
	u.Enter()
	t := u.Fresh()
	s := types.Proc([]types.Param{
		types.Kw("iterable", types.ArrayT(t, types.Erased)),
		types.Kw("body", types.Proc1(t, types.NoneType)),
	}, nil, nil, types.NoneType)
	u.Leave()
	return u.Generalize(s)
}

func seedMethods(c *Context) {
	str, boolT := types.Str, types.Bool
	kw := types.Kw

	s := c.builtinImpl(str, 8)
	for _, name := range []string{"upper", "lower", "strip"} {
		s.RegisterBuiltinImpl(name, types.Fn0Met(str, str), imm, pub)
	}
	s.RegisterBuiltinImpl("split", types.Fn1Met(str, kw("sep", str), types.ArrayT(str, types.Erased)), imm, pub)
	s.RegisterBuiltinImpl("startswith", types.Fn1Met(str, kw("prefix", str), boolT), imm, pub)
	s.RegisterBuiltinImpl("endswith", types.Fn1Met(str, kw("suffix", str), boolT), imm, pub)
	replace := types.Func([]types.Param{kw("old", str), kw("new", str)}, nil, nil, str)
	replace.Self = str
	s.RegisterBuiltinImpl("replace", replace, imm, pub)

	f := c.builtinImpl(types.Float, 1)
	f.RegisterBuiltinImpl("is_integer", types.Fn0Met(types.Float, boolT), imm, pub)

	a := c.builtinImpl(arrayImpl, 2)
	elems := types.ArrayT(types.Obj, types.Erased)
	a.RegisterBuiltinImpl("count", types.Fn1Met(elems, kw("x", types.Obj), types.Nat), imm, pub)
	a.RegisterBuiltinImpl("index", types.Fn1Met(elems, kw("x", types.Obj), types.Nat), imm, pub)

	for _, m := range []*types.Mono{types.IntMut, types.NatMut} {
		base := m.Supers[0]
		impl := c.builtinImpl(m, 3)
		impl.RegisterBuiltinPyImpl("inc!", types.Pr0Met(m, nil, types.NoneType), imm, pub, "inc")
		impl.RegisterBuiltinPyImpl("dec!", types.Pr0Met(m, nil, types.NoneType), imm, pub, "dec")
		update := types.Proc([]types.Param{kw("f", types.Func1(base, base))}, nil, nil, types.NoneType)
		update.Self = m
		impl.RegisterBuiltinPyImpl("update!", update, imm, pub, "update")
	}
	sm := c.builtinImpl(types.StrMut, 1)
	push := types.Proc([]types.Param{kw("s", str)}, nil, nil, types.NoneType)
	push.Self = types.StrMut
	sm.RegisterBuiltinPyImpl("push!", push, imm, pub, "push")
}
