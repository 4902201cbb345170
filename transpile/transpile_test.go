// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transpile_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"go.erg.dev/config"
	"go.erg.dev/elab"
	"go.erg.dev/hir"
	"go.erg.dev/modcache"
	"go.erg.dev/transpile"
)

// elaborate returns the HIR of src as a main module, and of the
// modules it imports in dependency order.
func elaborate(t *testing.T, src string) (*hir.Module, []*hir.Module) {
	t.Helper()
	in := config.String("test.er", src)
	s := modcache.New(config.Default(in), nil)
	t.Cleanup(s.Close)
	r, err := elab.Main(context.Background(), s, in)
	require.NoError(t, err)
	require.False(t, r.Diags.HasErrors(), "%v", r.Diags.Errors())

	key := elab.ModuleKey(in.Name)
	var deps []*hir.Module
	for _, p := range s.Graph.Order(key) {
		if p == key {
			continue
		}
		e, ok := s.Native.Lookup(p)
		require.True(t, ok, p)
		deps = append(deps, e.HIR)
	}
	return r.HIR, deps
}

func diff(want, got string) string {
	d, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	return d
}

func TestModule(t *testing.T) {
	for _, test := range []struct {
		name, src, want string
	}{
		{
			"functions",
			`x = 1
f a, b = a + b
print! f(x, 2)
`,
			`x = Nat(1)
def f(a, b):
    return (a + b)
(print)((f)(x,Nat(2),),)
`,
		},
		{
			"control flow",
			`max2(a: Int, b: Int) = if a > b, () -> a, () -> b
print! max2(1, 2), sep := ", "
`,
			`def max2(a, b):
    return (if_)((a > b),(lambda: a),(lambda: b),)
(print)((max2)(Nat(1),Nat(2),),sep=Str(", "),)
`,
		},
		{
			"hoisted lambda",
			`for! [1, 2], i =>
    j = i * 2
    print! j
`,
			`def _erg_lambda1(i):
    j = (i * Nat(2))
    return (print)(j,)
(for__)([Nat(1), Nat(2)],_erg_lambda1,)
`,
		},
		{
			"block value",
			`y =
    a = 1
    a + 1
print! y
`,
			`def _erg_block1():
    a = Nat(1)
    return (a + Nat(1))
y = (_erg_block1)()
(print)(y,)
`,
		},
		{
			"mutable",
			`i! = !0
i!.inc!()
i! = 5
print! i!
`,
			`i__ = _erg_Mut(Nat(0))
(i__.inc)()
i__.value = Nat(5)
(print)(i__,)
`,
		},
		{
			"class",
			`Point = Class {.x = Int; .y = Int}
Point.
    .norm self = self.x + self.y
p = Point.new {x = 1; y = 2}
print! p.norm()
`,
			`class Point(_erg_Class):
    def norm(self):
        return (self.x + self.y)
p = (Point)(_erg_Record(x=Nat(1), y=Nat(2)),)
(print)((p.norm)(),)
`,
		},
		{
			"collections",
			`t = (1, "a")
print! t.0, [1.5], {name = "x"}, not True
`,
			`t = (Nat(1), Str("a"))
(print)(t[0],[Float(1.5)],_erg_Record(name=Str("x")),(not True),)
`,
		},
	} {
		m, _ := elaborate(t, test.src)
		got, err := transpile.Module(m)
		require.NoError(t, err, test.name)
		if d := diff(test.want, got); d != "" {
			t.Errorf("%s: transpiled output differs:\n%s", test.name, d)
		}
	}
}

func TestProgramInvocationForm(t *testing.T) {
	m, deps := elaborate(t, "print!(\"\")\n")
	got, err := transpile.Program(m, deps)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, transpile.Prelude()))
	require.True(t, strings.HasSuffix(got, "(print)(Str(\"\"),)\n"), got[len(transpile.Prelude()):])
}

func TestProgramImports(t *testing.T) {
	m, deps := elaborate(t, "physics = import \"consts/physics\"\nprint! physics.PLANCK\n")
	require.Len(t, deps, 2)
	require.Equal(t, "consts", deps[0].Path)
	require.Equal(t, "consts/physics", deps[1].Path)

	got, err := transpile.Program(m, deps)
	require.NoError(t, err)
	consts := strings.Index(got, `@_erg_module("consts")`)
	physics := strings.Index(got, `@_erg_module("consts/physics")`)
	main := strings.Index(got, `physics = _erg_import("consts/physics")`)
	require.True(t, consts > 0 && physics > consts && main > physics, got)
	require.Contains(t, got, `consts = _erg_import("consts")`)
	require.Contains(t, got, "    return locals()\n")
}

func TestPyImport(t *testing.T) {
	m, _ := elaborate(t, "math = pyimport \"math\"\nprint! math.sqrt(2.0)\n")
	got, err := transpile.Module(m)
	require.NoError(t, err)
	require.Equal(t, `math = _erg_pyimport("math")
(print)((math.sqrt)(Float(2),),)
`, got)
}

func TestMangle(t *testing.T) {
	for name, want := range map[string]string{
		"x":      "x",
		"print!": "print__",
		"inc!":   "inc__",
		"%v3":    "_erg_v3",
		"else":   "else_",
		"lambda": "lambda_",
	} {
		require.Equal(t, want, transpile.Mangle(name), name)
	}
}
