// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types_test

import (
	"testing"

	. "go.erg.dev/types"
)

func TestNormalize(t *testing.T) {
	x := TPName("x")
	for _, test := range []struct {
		p    Pred
		want string
	}{
		{Cmp{Op: Lt, L: TPValue(1), R: TPValue(2)}, "True"},
		{Cmp{Op: Ge, L: TPValue(1), R: TPValue(2)}, "False"},
		{Cmp{Op: Lt, L: TPValue(0), R: x}, "x > 0"},
		{Cmp{Op: Le, L: &TPBin{Op: Add, L: x, R: TPValue(3)}, R: TPValue(10)}, "x <= 7"},
		{Cmp{Op: Eq, L: &TPBin{Op: Sub, L: x, R: TPValue(1)}, R: TPValue(0)}, "x == 1"},
		{Cmp{Op: Le, L: x, R: x}, "True"},
		{Cmp{Op: Eq, L: &TPBin{Op: Mul, L: TPValue(6), R: TPValue(7)}, R: TPValue(42)}, "True"},
		{Cmp{Op: Eq, L: &TPBin{Op: Div, L: TPValue(-7), R: TPValue(2)}, R: TPValue(-4)}, "True"},
		{Cmp{Op: Eq, L: &TPBin{Op: Mod, L: TPValue(-7), R: TPValue(2)}, R: TPValue(1)}, "True"},
		{Conj{PTrue, Compare("x", Ge, 0), Conj{Compare("x", Ge, 0), Compare("x", Lt, 3)}}, "x >= 0 and x < 3"},
		{Conj{Compare("x", Ge, 0), PFalse}, "False"},
		{Conj{}, "True"},
		{Disj{PFalse, Compare("x", Eq, 1)}, "x == 1"},
		{Disj{Compare("x", Eq, 1), PTrue}, "True"},
		{Conj{Disj{Compare("x", Eq, 1), Compare("x", Eq, 2)}, Compare("y", Ne, 0)}, "(x == 1 or x == 2) and y != 0"},
		{Opaque("f(x)"), "f(x)"},
	} {
		if got := Normalize(test.p).String(); got != test.want {
			t.Errorf("Normalize(%s) = %s, want %s", test.p, got, test.want)
		}
	}
}

func TestImplies(t *testing.T) {
	ge0 := Compare("x", Ge, 0)
	lt10 := Compare("x", Lt, 10)
	for _, test := range []struct {
		p, q Pred
		want bool
	}{
		{ge0, ge0, true},
		{Compare("x", Ge, 1), ge0, true},
		{Compare("x", Gt, 0), Compare("x", Ge, 1), true},
		{ge0, Compare("x", Ge, 1), false},
		{Conj{ge0, lt10}, Compare("x", Le, 9), true},
		{Conj{ge0, lt10}, Conj{Compare("x", Gt, -1), Compare("x", Ne, 10)}, true},
		{Compare("x", Eq, 5), Conj{ge0, lt10}, true},
		{Compare("x", Eq, 15), Conj{ge0, lt10}, false},
		{Disj{Compare("x", Eq, 1), Compare("x", Eq, 2)}, Conj{Compare("x", Ge, 1), Compare("x", Le, 2)}, true},
		{Disj{Compare("x", Eq, 1), Compare("x", Eq, 3)}, Compare("x", Ne, 2), true},
		{Conj{Compare("x", Ge, 1), Compare("x", Le, 2), Compare("x", Ne, 1)}, Compare("x", Eq, 2), true},
		{ge0, Disj{Compare("x", Lt, 0), Compare("x", Ge, 0)}, true},
		{PTrue, ge0, false},
		{PFalse, ge0, true},
		{Conj{Compare("x", Lt, 0), ge0}, Compare("y", Eq, 7), true}, // contradiction
		{ge0, PTrue, true},
		{Compare("y", Ge, 0), ge0, false},
		{Opaque("even(x)"), Opaque("even(x)"), true},
		{Conj{Opaque("even(x)"), ge0}, Opaque("even(x)"), true},
		{ge0, Opaque("even(x)"), false},
		{Cmp{Op: Lt, L: TPName("x"), R: TPName("n")}, Cmp{Op: Lt, L: TPName("x"), R: TPName("n")}, true},
	} {
		if got := Implies(test.p, test.q); got != test.want {
			t.Errorf("Implies(%s, %s) = %t, want %t", test.p, test.q, got, test.want)
		}
	}
}

func TestEval(t *testing.T) {
	p := Conj{Compare("I", Ge, 0), Cmp{Op: Lt, L: TPName("I"), R: TPName("N")}}
	if got := Eval(p, "I", TPValue(-1)); got != PFalse {
		t.Errorf("Eval(-1) = %s, want False", got)
	}
	p2 := Subst(p, "N", TPValue(3))
	if got := Eval(p2, "I", TPValue(2)); got != PTrue {
		t.Errorf("Eval(2) = %s, want True", got)
	}
	if got := Eval(p, "I", TPValue(2)).String(); got != "N > 2" {
		t.Errorf("Eval(2) with free N = %s, want N > 2", got)
	}
}
