// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package check_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"go.erg.dev/check"
	"go.erg.dev/config"
	"go.erg.dev/diag"
	"go.erg.dev/elab"
	"go.erg.dev/hir"
	"go.erg.dev/modcache"
)

// diagnose elaborates src as a main module and returns its diagnostics
// of the given kind as "line:col: Errno: message" strings.
func diagnose(t *testing.T, src string, kind diag.Kind) []string {
	t.Helper()
	in := config.String("test.er", src)
	s := modcache.New(config.Default(in), nil)
	defer s.Close()
	r, err := elab.Main(context.Background(), s, in)
	require.NoError(t, err)
	var out []string
	for _, d := range r.Diags {
		if d.Kind == kind {
			out = append(out, fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Col, d.Errno, d.Main))
		}
	}
	return out
}

func TestEffects(t *testing.T) {
	for _, test := range []struct {
		src  string
		want []string
	}{
		{"f x = print! x\n", []string{"1:7: EffectMismatch: cannot call procedure print! within a function"}},
		{"f! x = print! x\nf! 1\n", nil},
		{"p = print!\n", []string{"1:1: EffectMismatch: procedure bound to p, whose name lacks !"}},
		{"p! = print!\np! 1\n", nil},
		{"h = x => print! x\n", []string{"1:1: EffectMismatch: procedure bound to h, whose name lacks !"}},
		{"g = x -> print! x\n", []string{"1:10: EffectMismatch: cannot call procedure print! within a function"}},
		{"for! [1, 2], x => print! x\n", nil},
		{"i = !1\nf x = i.inc!()\n", []string{"2:7: EffectMismatch: cannot call procedure i.inc! within a function"}},
	} {
		got := diagnose(t, test.src, diag.Error)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%q: errors (-want +got):\n%s", test.src, diff)
		}
	}
}

func TestOwnership(t *testing.T) {
	for _, test := range []struct {
		src  string
		want []string
	}{
		{"x! = !1\ny! = x!\nprint! x!\n", []string{"3:8: OwnershipViolation: x! was moved"}},
		{"x! = !1\ny! = x!\nx! = 2\nprint! x!, y!\n", nil},
		{"a = 1\nb = a\nprint! a, b\n", nil},
		{"x! = !1\ny! = x!\nz! = x!\n", []string{"3:6: OwnershipViolation: x! was moved"}},
	} {
		got := diagnose(t, test.src, diag.Error)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%q: errors (-want +got):\n%s", test.src, diff)
		}
	}
}

func TestOwnershipSkippedAfterErrors(t *testing.T) {
	got := diagnose(t, "x! = !1\ny! = x!\nprint! x!\nprint! undefined\n", diag.Error)
	require.Equal(t, []string{"4:8: NameError: undefined is not defined"}, got)
}

func TestLint(t *testing.T) {
	src := `x = 1
_y = 2
.z = 3
m = import "consts"
f a = a
print! f(1)
`
	got := diagnose(t, src, diag.Warning)
	require.Equal(t, []string{
		"1:1: UnusedWarning: x is defined but never used",
		"4:1: UnusedWarning: m is defined but never used",
	}, got)
}

func TestChecksDoNotMutate(t *testing.T) {
	in := config.String("test.er", "f x = x + 1\nprint! f(2)\n")
	s := modcache.New(config.Default(in), nil)
	defer s.Close()
	r, err := elab.Main(context.Background(), s, in)
	require.NoError(t, err)
	require.False(t, r.Diags.HasErrors(), "%v", r.Diags)

	before := hir.String(r.HIR)
	require.Empty(t, check.Effects(r.HIR))
	require.Empty(t, check.Ownership(r.HIR))
	require.Empty(t, check.Lint(r.HIR))
	require.Equal(t, before, hir.String(r.HIR))
}
