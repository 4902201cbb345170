// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elab_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"go.erg.dev/config"
	"go.erg.dev/diag"
	"go.erg.dev/elab"
	"go.erg.dev/internal/chunkedfile"
	"go.erg.dev/modcache"
	"go.erg.dev/syntax"
)

func newShared(t *testing.T, in config.Input) *modcache.Shared {
	s := modcache.New(config.Default(in), nil)
	t.Cleanup(s.Close)
	return s
}

func TestElab(t *testing.T) {
	filename := filepath.Join("testdata", "elab.erg")
	for _, chunk := range chunkedfile.Read(filename, t) {
		in := config.String(filename, chunk.Source)
		r, err := elab.Main(context.Background(), newShared(t, in), in)
		if err != nil {
			t.Error(err)
			continue
		}
		chunk.GotDiags(r.Diags)
		chunk.Done()
	}
}

// errorsOf elaborates src as a main module and returns its errors as
// "line:col: Errno: message" strings.
func errorsOf(t *testing.T, src string) diag.List {
	t.Helper()
	in := config.String("test.er", src)
	r, err := elab.Main(context.Background(), newShared(t, in), in)
	require.NoError(t, err)
	return r.Diags.Errors()
}

func format(ds diag.List) []string {
	var out []string
	for _, d := range ds {
		out = append(out, fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Col, d.Errno, d.Main))
	}
	return out
}

func TestUndefinedSuggestion(t *testing.T) {
	ds := errorsOf(t, "length = 3\nprint! lenght\n")
	require.Len(t, ds, 1)
	require.Equal(t, diag.NameError, ds[0].Errno)
	require.Equal(t, "lenght is not defined", ds[0].Main)
	require.Len(t, ds[0].Subs, 1)
	require.Equal(t, "did you mean length?", ds[0].Subs[0])
}

func TestReassignPointsAtDefinition(t *testing.T) {
	ds := errorsOf(t, "x = 1\nx = 2\n")
	require.Equal(t, []string{"2:1: OwnershipViolation: cannot reassign immutable binding x"}, format(ds))
	require.Len(t, ds[0].Subs, 1)
	require.Equal(t, "x was defined at test.er:1:1", ds[0].Subs[0])
}

func TestInferredTypes(t *testing.T) {
	in := config.String("test.er", `
x = 1
y: Int = x
z = -x
w = 1 / 2
s = [1, 2]
u = (1, "a")
r = {name = "x"}
id v = v
k = id 1
`)
	r, err := elab.Main(context.Background(), newShared(t, in), in)
	require.NoError(t, err)
	require.Empty(t, format(r.Diags.Errors()))

	want := map[string]string{
		"x": "Nat",
		"y": "Int",
		"z": "Int",
		"w": "Float",
		"s": "Array(Nat, 2)",
		"u": "(Nat, Str)",
		"r": "{name = Str}",
		"k": "Nat",
	}
	got := make(map[string]string)
	for name := range want {
		v, ok := r.Context.LookupLocal(name)
		require.True(t, ok, name)
		got[name] = v.Type.String()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("types (-want +got):\n%s", diff)
	}

	v, ok := r.Context.LookupLocal("id")
	require.True(t, ok)
	require.True(t, strings.HasPrefix(v.Type.String(), "|"), "id should be polymorphic, got %s", v.Type)
}

// writeFiles writes the named sources into a fresh directory and
// returns its path.
func writeFiles(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return dir
}

func TestImportCycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.er": "b = import \"b\"\nprint! b.val\n",
		"b.er": "c = import \"c\"\n.val = 1\n",
		"c.er": "a = import \"a\"\n.val = 3\n",
	})
	in := config.File(filepath.Join(dir, "a.er"))
	r, err := elab.Main(context.Background(), newShared(t, in), in)
	require.NoError(t, err)

	key := func(name string) string { return elab.ModuleKey(filepath.Join(dir, name+".er")) }
	ds := r.Diags.Errors()
	require.Len(t, ds, 1, "%v", format(ds))
	require.Equal(t, diag.ImportCycle, ds[0].Errno)
	require.Equal(t, fmt.Sprintf("import cycle: %s -> %s -> %s -> %s", key("a"), key("b"), key("c"), key("a")), ds[0].Main)
	require.Equal(t, filepath.Join(dir, "c.er"), ds[0].Pos.Filename())
}

func TestImportVisibility(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.er": "lib = import \"lib\"\nprint! lib.open\nprint! lib.secret\n",
		"lib.er":  "secret = 1\n.open = secret + 1\n",
	})
	in := config.File(filepath.Join(dir, "main.er"))
	r, err := elab.Main(context.Background(), newShared(t, in), in)
	require.NoError(t, err)
	ds := r.Diags.Errors()
	require.Len(t, ds, 1, "%v", format(ds))
	require.Equal(t, diag.VisibilityViolation, ds[0].Errno)
	require.Equal(t, int32(3), ds[0].Pos.Line)
	require.True(t, strings.HasPrefix(ds[0].Main, "secret is private to module "), ds[0].Main)
}

func TestImportNotFoundSearched(t *testing.T) {
	ds := errorsOf(t, "m = import \"missing\"\n")
	require.Len(t, ds, 1)
	require.Equal(t, diag.ImportNotFound, ds[0].Errno)
	require.Len(t, ds[0].Subs, 3)
	for _, s := range ds[0].Subs {
		require.True(t, strings.HasPrefix(s, "searched "), s)
		require.True(t, strings.HasSuffix(s, "missing.er"), s)
	}
}

func TestImportedModuleErrorsAreReported(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.er": "lib = import \"lib\"\nprint! lib.x\n",
		"lib.er":  ".x = undefined\n",
	})
	in := config.File(filepath.Join(dir, "main.er"))
	r, err := elab.Main(context.Background(), newShared(t, in), in)
	require.NoError(t, err)
	require.Equal(t, []string{"1:6: NameError: undefined is not defined"}, format(r.Diags.Errors()))
	require.Equal(t, filepath.Join(dir, "lib.er"), r.Diags.Errors()[0].Pos.Filename())
}

func TestParseErrorHasNoHIR(t *testing.T) {
	in := config.String("test.er", "x = (1,\n")
	r, err := elab.Main(context.Background(), newShared(t, in), in)
	require.NoError(t, err)
	require.Nil(t, r.HIR)
	require.True(t, r.Diags.HasErrors())
}

func TestElaboratorSession(t *testing.T) {
	in := config.REPLLine("")
	s := newShared(t, in)
	e := elab.NewElaborator(context.Background(), s, "<repl>")

	eval := func(src string) []string {
		f, err := syntax.Parse("<repl>", src, 0)
		require.NoError(t, err)
		return format(e.Elaborate(f).Diags.Errors())
	}
	require.Empty(t, eval("x = 1\n"))
	require.Empty(t, eval("print! x + 1\n"))
	require.Equal(t, []string{"1:1: OwnershipViolation: cannot reassign immutable binding x"}, eval("x = 2\n"))
	require.Equal(t, []string{"1:8: NameError: y is not defined"}, eval("print! y\n"))
	require.Empty(t, eval("y = x\n"))

	v, ok := e.Context().LookupLocal("y")
	require.True(t, ok)
	require.Equal(t, "Nat", v.Type.String())
}
