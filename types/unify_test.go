// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	. "go.erg.dev/types"
)

func TestPrimLattice(t *testing.T) {
	chain := []Type{Never, Bool, Nat, Int, Float, Obj}
	for i, a := range chain {
		for j, b := range chain {
			if got, want := Subtype(a, b), i <= j; got != want {
				t.Errorf("Subtype(%s, %s) = %t, want %t", a, b, got, want)
			}
		}
	}
	for _, a := range []Type{Str, NoneType, TypeType} {
		if Subtype(a, Int) || Subtype(Int, a) {
			t.Errorf("%s and Int are comparable", a)
		}
		if !Subtype(a, Obj) {
			t.Errorf("%s is not a subtype of Obj", a)
		}
	}
}

func TestSubtypeTransitive(t *testing.T) {
	ground := []Type{
		Nat, Int, Float, Str, Obj, IntMut, NatMut,
		ArrayT(Nat, TPValue(3)), ArrayT(Int, TPValue(3)), ArrayT(Int, Erased),
		&Tuple{Elems: []Type{Nat, Str}}, &Tuple{Elems: []Type{Int, Obj}},
		Refine("I", Int, Compare("I", Ge, 1)), Refine("I", Int, Compare("I", Ge, 0)),
		Func1(Int, Nat), Func1(Nat, Int), Proc1(Nat, Int),
		&Or{Nat, Str},
	}
	for _, a := range ground {
		if !Subtype(a, a) {
			t.Errorf("Subtype(%s, %s) = false", a, a)
		}
		for _, b := range ground {
			for _, c := range ground {
				if Subtype(a, b) && Subtype(b, c) && !Subtype(a, c) {
					t.Errorf("%s <: %s <: %s but not %s <: %s", a, b, c, a, c)
				}
			}
		}
	}
}

func TestSubtype(t *testing.T) {
	point := MonoT("Point", "main")
	point3 := MonoT("Point3", "main", point)
	pos := Refine("I", Int, Compare("I", Gt, 0))
	for _, test := range []struct {
		a, b Type
		want bool
	}{
		{IntMut, Int, true},
		{IntMut, Float, true},
		{Int, IntMut, false},
		{point3, point, true},
		{point, point3, false},
		{point3, Obj, true},
		{ArrayT(Nat, TPValue(2)), ArrayT(Int, TPValue(2)), true},
		{ArrayT(Nat, TPValue(2)), ArrayT(Int, TPValue(3)), false},
		{ArrayT(Str, TPValue(2)), ArrayT(Str, Erased), true},
		{ArrayT(Str, Erased), ArrayT(Str, TPValue(2)), false},
		{&Record{Fields: []Field{{Name: "x", Type: Nat}, {Name: "y", Type: Str}}}, &Record{Fields: []Field{{Name: "x", Type: Int}}}, true},
		{&Record{Fields: []Field{{Name: "x", Type: Nat}}}, &Record{Fields: []Field{{Name: "y", Type: Nat}}}, false},
		{Nat, &Or{Str, Int}, true},
		{&Or{Nat, Bool}, Int, true},
		{&Or{Nat, Str}, Int, false},
		{&And{Str, Nat}, Int, true},
		{Int, &And{Int, Float}, true},
		{Nat, Refine("I", Int, Compare("I", Ge, 0)), true},
		{Int, Refine("I", Int, Compare("I", Ge, 0)), false},
		{pos, Nat, true},
		{pos, Int, true},
		{Refine("I", Int, Compare("I", Ge, -1)), Nat, false},
		{Singleton(Nat, 5), Refine("N", Nat, Compare("N", Lt, 10)), true},
		{Singleton(Nat, 15), Refine("N", Nat, Compare("N", Lt, 10)), false},
		{Refine("J", Nat, Compare("J", Lt, 5)), Refine("K", Int, Compare("K", Lt, 10)), true},
		{Refine("I", Int, Compare("I", Ge, 5)), Refine("J", Int, Compare("J", Ge, 3)), true},
		{Refine("I", Int, Compare("I", Ge, 3)), Refine("J", Int, Compare("J", Ge, 5)), false},
		{Refine("I", Int, Compare("I", Lt, 0)), Refine("J", Int, Compare("J", Lt, 10)), true},
		{Refine("I", Int, Compare("I", Lt, 0)), Nat, false},
		{Refine("I", Int, Compare("I", Ge, 5)), Refine("I", Int, Compare("I", Ge, 3)), true},
		{&Module{Path: "math", Py: true}, GenericModule, true},
		{&Module{Path: "math", Py: true}, &Module{Path: "math"}, false},
		{&ClassType{Of: point}, TypeType, true},
		{&ClassType{Of: point3}, &ClassType{Of: point}, true},
	} {
		if got := Subtype(test.a, test.b); got != test.want {
			t.Errorf("Subtype(%s, %s) = %t, want %t", test.a, test.b, got, test.want)
		}
	}
}

func TestSubrSubtype(t *testing.T) {
	glob := Proc([]Param{Kw("pathname", Str)}, nil, []Param{Kw("recursive", Bool)}, ArrayT(Str, Erased))
	for _, test := range []struct {
		a, b Type
		want bool
	}{
		{Func1(Int, Nat), Func1(Nat, Int), true},  // contravariant in the argument
		{Func1(Nat, Nat), Func1(Int, Nat), false}, // argument too narrow
		{Func1(Int, Int), Func1(Int, Nat), false}, // result too wide
		{Func1(Int, Nat), Proc1(Int, Nat), true},  // functions may be used as procedures
		{Proc1(Int, Nat), Func1(Int, Nat), false},
		{Func0(Nat), Func1(Nat, Nat), false},
		{glob, Proc([]Param{Anon(Str)}, nil, nil, ArrayT(Str, Erased)), true},
		{glob, Proc([]Param{Anon(Str)}, nil, []Param{Kw("recursive", Bool)}, Obj), true},
		{Proc([]Param{Anon(Str)}, nil, nil, Obj), glob, false},
	} {
		if got := Subtype(test.a, test.b); got != test.want {
			t.Errorf("Subtype(%s, %s) = %t, want %t", test.a, test.b, got, test.want)
		}
	}
}

func TestEffectError(t *testing.T) {
	var u Unifier
	err := u.Sub(Proc0(NoneType), Func0(NoneType))
	var effect *EffectError
	if !errors.As(err, &effect) {
		t.Fatalf("Sub(proc, func) = %v, want EffectError", err)
	}
	if got, want := err.Error(), "expected a function of type () -> NoneType, found procedure of type () => NoneType"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestFailureIsInert(t *testing.T) {
	var u Unifier
	v := u.Fresh()
	for _, pair := range [][2]Type{{Failure, Int}, {Str, Failure}, {Failure, v}, {v, Failure}} {
		if err := u.Sub(pair[0], pair[1]); err != nil {
			t.Errorf("Sub(%s, %s) = %v", pair[0], pair[1], err)
		}
	}
	if len(v.Lower())+len(v.Upper()) != 0 {
		t.Errorf("placeholder recorded as a bound: %v %v", v.Lower(), v.Upper())
	}
	if !IsFailure(&Tuple{Elems: []Type{Int, Failure}}) || IsFailure(Int) {
		t.Error("IsFailure")
	}
}

func TestVarBounds(t *testing.T) {
	var u Unifier
	v := u.Fresh()
	if err := u.Sub(Nat, v); err != nil {
		t.Fatal(err)
	}
	if err := u.Sub(v, Float); err != nil {
		t.Fatal(err)
	}
	if err := u.Sub(Int, v); err != nil {
		t.Fatal(err)
	}
	if got := u.Resolve(v); got != Int {
		t.Errorf("Resolve = %s, want Int", got)
	}
	// Str is not below the upper bound Float.
	if err := u.Sub(Str, v); err == nil {
		t.Errorf("Sub(Str, %s) succeeded", v)
	}
}

func TestVarChain(t *testing.T) {
	var u Unifier
	a, b := u.Fresh(), u.Fresh()
	if err := u.Sub(a, b); err != nil {
		t.Fatal(err)
	}
	if err := u.Sub(b, Int); err != nil {
		t.Fatal(err)
	}
	// a's new lower bound must flow through b to Int.
	if err := u.Sub(Str, a); err == nil {
		t.Error("Str <: a <: b <: Int accepted")
	}
	if err := u.Sub(Nat, a); err != nil {
		t.Fatal(err)
	}
	if got := u.Resolve(b); got != Nat {
		t.Errorf("Resolve(b) = %s, want Nat", got)
	}
}

func TestOccursCheck(t *testing.T) {
	var u Unifier
	v := u.Fresh()
	err := u.Sub(v, ArrayT(v, Erased))
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) || mismatch.Reason != "occurs check: infinite type" {
		t.Errorf("Sub(v, Array(v, _)) = %v, want occurs check failure", err)
	}
	if err := u.Sub(v, v); err != nil {
		t.Errorf("Sub(v, v) = %v", err)
	}
}

func TestRefinementMismatch(t *testing.T) {
	var u Unifier
	ge5 := Refine("I", Int, Compare("I", Ge, 5))
	ge6 := Refine("K", Int, Compare("K", Ge, 6))
	err := u.Sub(ge5, ge6)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Sub(%s, %s) = %v, want mismatch", ge5, ge6, err)
	}
	if mismatch.Got != Type(ge5) || mismatch.Want != Type(ge6) {
		t.Errorf("mismatch reports %s <: %s, want %s <: %s", mismatch.Got, mismatch.Want, ge5, ge6)
	}
	if got, want := err.Error(), "expected {K: Int | K >= 6}, found {I: Int | I >= 5}: cannot prove"; !strings.HasPrefix(got, want) {
		t.Errorf("error = %q, want prefix %q", got, want)
	}
	if err := u.Sub(ge6, ge5); err != nil {
		t.Errorf("Sub(%s, %s) = %v", ge6, ge5, err)
	}
}

func TestTrialRollback(t *testing.T) {
	var u Unifier
	v := u.Fresh()
	err := u.Trial(func() error {
		if err := u.Sub(Nat, v); err != nil {
			return err
		}
		return u.Sub(v, Str)
	})
	if err == nil {
		t.Fatal("Trial succeeded")
	}
	if len(v.Lower()) != 0 || len(v.Upper()) != 0 {
		t.Errorf("bounds survived rollback: %v %v", v.Lower(), v.Upper())
	}
	if err := u.Trial(func() error { return u.Sub(Nat, v) }); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Type{Nat}, v.Lower()); diff != "" {
		t.Errorf("lower bounds (-want +got):\n%s", diff)
	}
}

func TestTPVar(t *testing.T) {
	var u Unifier
	n := u.FreshTP()
	if err := u.Sub(ArrayT(Int, TPValue(3)), ArrayT(Int, n)); err != nil {
		t.Fatal(err)
	}
	if got := EvalTP(&TPBin{Op: Add, L: n, R: TPValue(1)}); got != TPValue(4) {
		t.Errorf("n + 1 = %s, want 4", got)
	}
	if err := u.Sub(ArrayT(Int, TPValue(2)), ArrayT(Int, n)); err == nil {
		t.Error("n unified with both 3 and 2")
	}
}

func TestGeneralizeInstantiate(t *testing.T) {
	var u Unifier

	// id x = x
	u.Enter()
	x := u.Fresh()
	id := Func([]Param{Kw("x", x)}, nil, nil, x)
	u.Leave()
	poly := u.Generalize(id)
	q, ok := poly.(*Quantified)
	if !ok || len(q.Vars) != 1 {
		t.Fatalf("Generalize = %s, want one quantified variable", poly)
	}
	if got, want := poly.String(), "|?1|(x: ?1) -> ?1"; got != want {
		t.Errorf("Generalize = %s, want %s", got, want)
	}

	inst1, ok := u.Instantiate(poly).(*Subr)
	if !ok {
		t.Fatalf("Instantiate = %s", u.Instantiate(poly))
	}
	inst2 := u.Instantiate(poly).(*Subr)
	if inst1.Return == inst2.Return || inst1.Return == x {
		t.Error("instances share variables")
	}
	if err := u.Sub(Str, inst1.NonDefault[0].Type); err != nil {
		t.Fatal(err)
	}
	if err := u.Sub(Nat, inst2.NonDefault[0].Type); err != nil {
		t.Fatal(err)
	}
	if got := u.Resolve(inst1.Return); got != Str {
		t.Errorf("first instance returns %s, want Str", got)
	}
	if got := u.Resolve(inst2.Return); got != Nat {
		t.Errorf("second instance returns %s, want Nat", got)
	}

	// A variable at the outer level is not generalized.
	outer := u.Fresh()
	if got, want := u.Generalize(Func1(outer, outer)).String(), fmt.Sprintf("(?%[1]d) -> ?%[1]d", outer.ID()); got != want {
		t.Errorf("Generalize over outer variable = %s, want %s", got, want)
	}
}

func TestInstantiateCopiesBounds(t *testing.T) {
	var u Unifier
	// f i = i + 1, with i <: Float, i <: r, Nat <: r
	u.Enter()
	i, r := u.Fresh(), u.Fresh()
	for _, c := range [][2]Type{{i, Float}, {i, r}, {Nat, r}} {
		if err := u.Sub(c[0], c[1]); err != nil {
			t.Fatal(err)
		}
	}
	u.Leave()
	f := u.Generalize(Func1(i, r))
	call := u.Instantiate(f).(*Subr)
	if err := u.Sub(Nat, call.NonDefault[0].Type); err != nil {
		t.Fatal(err)
	}
	if got := u.Resolve(call.Return); got != Nat {
		t.Errorf("f 2 : %s, want Nat", got)
	}
	if err := u.Sub(Str, u.Instantiate(f).(*Subr).NonDefault[0].Type); err == nil {
		t.Error("f accepted Str")
	}
}

func TestResolveJoin(t *testing.T) {
	var u Unifier
	v := u.Fresh()
	for _, l := range []Type{Nat, Str} {
		if err := u.Sub(l, v); err != nil {
			t.Fatal(err)
		}
	}
	if got := u.Resolve(v).String(); got != "Nat or Str" {
		t.Errorf("Resolve = %s, want Nat or Str", got)
	}
	w := u.Fresh()
	if got := u.Resolve(w); got != w {
		t.Errorf("unconstrained variable resolved to %s", got)
	}
}

func TestString(t *testing.T) {
	glob := Proc([]Param{Kw("pathname", Str)}, nil, []Param{Kw("recursive", Bool)}, ArrayT(Str, Erased))
	stringIO := MonoT("StringIO!", "io")
	for _, test := range []struct {
		t    Type
		want string
	}{
		{glob, "(pathname: Str, recursive := Bool) => Array(Str, _)"},
		{Refine("I", Int, Conj{Compare("I", Ge, 0), Cmp{Op: Lt, L: TPName("I"), R: TPName("N")}}), "{I: Int | I >= 0 and I < N}"},
		{&Record{Fields: []Field{{Name: "x", Type: Int}, {Name: "y", Type: Int, Public: true}}}, "{x = Int; .y = Int}"},
		{&Tuple{Elems: []Type{Int}}, "(Int,)"},
		{&Or{Func0(Int), NoneType}, "(() -> Int) or NoneType"},
		{Pr0Met(stringIO, nil, Str), "StringIO!.() => Str"},
		{&ClassType{Of: stringIO}, "Type(StringIO!)"},
		{&Module{Path: "glob", Py: true}, `PyModule("glob")`},
		{ArrayT(Int, &TPBin{Op: Add, L: TPName("N"), R: TPValue(1)}), "Array(Int, N + 1)"},
		{Proc(nil, &Param{Name: "objs", Type: Obj}, nil, NoneType), "(*objs: Obj) => NoneType"},
	} {
		if got := test.t.String(); got != test.want {
			t.Errorf("String = %s, want %s", got, test.want)
		}
	}
}

func TestMutOf(t *testing.T) {
	if m, ok := MutOf(Int); !ok || m != IntMut {
		t.Errorf("MutOf(Int) = %v, %t", m, ok)
	}
	if _, ok := MutOf(NoneType); ok {
		t.Error("MutOf(NoneType) succeeded")
	}
	if !MonoT("StringIO!", "io").Mutable {
		t.Error("StringIO! is not mutable")
	}
}
