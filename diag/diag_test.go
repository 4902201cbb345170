// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diag_test

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"go.erg.dev/diag"
	"go.erg.dev/syntax"
)

func pos(line, col int32) syntax.Position {
	file := "a.erg"
	return syntax.MakePosition(&file, line, col)
}

func TestListSort(t *testing.T) {
	var l diag.List
	l.Errorf(diag.TypeMismatch, pos(3, 1), "third")
	l.Errorf(diag.NameError, pos(1, 5), "second")
	l.Warningf(diag.UnusedWarning, pos(1, 1), "first")
	l.Errorf(diag.NameError, pos(1, 5), "second again")
	l.Sort()

	var got []string
	for _, d := range l {
		got = append(got, d.Main)
	}
	require.Equal(t, []string{"first", "second", "second again", "third"}, got)
}

func TestListSeverity(t *testing.T) {
	var l diag.List
	l.Warningf(diag.UnusedWarning, pos(1, 1), "x is never used")
	require.False(t, l.HasErrors())
	require.NoError(t, l.Err())

	l.Errorf(diag.EffectMismatch, pos(2, 1), "boom")
	require.True(t, l.HasErrors())
	require.Len(t, l.Errors(), 1)
	require.Len(t, l.Warnings(), 1)
	require.True(t, l.Has(diag.EffectMismatch))
	require.False(t, l.Has(diag.ImportCycle))
	require.Error(t, l.Err())
}

func TestErrorString(t *testing.T) {
	d := diag.Errorf(diag.NameError, pos(1, 1), "prin is not defined").WithSub("did you mean print!?")
	require.Equal(t, "a.erg:1:1: NameError: prin is not defined; did you mean print!?", d.Error())

	d.Caused = "while importing m"
	require.Equal(t, "a.erg:1:1: NameError: prin is not defined; did you mean print!? (while importing m)", d.Error())
}

func TestFromSyntax(t *testing.T) {
	_, err := syntax.Parse("a.erg", "x = = 1\ny = , 2\n", 0)
	l := diag.FromSyntax(err)
	require.Len(t, l, 2)
	require.Equal(t, diag.ParseError, l[0].Errno)

	_, err = syntax.Parse("a.erg", "f x =\n    1\n  2\n", 0)
	l = diag.FromSyntax(err)
	require.Len(t, l, 1)
	require.Equal(t, diag.LexError, l[0].Errno)

	require.Empty(t, diag.FromSyntax(nil))
}

func TestRecover(t *testing.T) {
	var l diag.List
	func() {
		defer diag.Recover(&l, "owner check")
		panic(fmt.Errorf("arity mismatch"))
	}()
	require.Len(t, l, 1)
	require.Equal(t, diag.InternalError, l[0].Errno)
	require.Contains(t, l[0].Main, "owner check: arity mismatch")
	require.NotNil(t, stderrors.Unwrap(l[0]))
}

func TestRender(t *testing.T) {
	src := []byte("x = 1\nprint prin\ny = 2\n")
	d := diag.Errorf(diag.NameError, pos(2, 7), "prin is not defined").WithSub("did you mean print!?")
	var buf bytes.Buffer
	diag.Render(&buf, d, src, false)
	want := `a.erg:2:7: error[NameError]: prin is not defined
   1 | x = 1
   2 | print prin
     |       ^
   3 | y = 2
     = did you mean print!?
`
	require.Equal(t, want, buf.String())
}

func TestRenderClamps(t *testing.T) {
	d := diag.Errorf(diag.ParseError, pos(9, 40), "unexpected end")
	var buf bytes.Buffer
	diag.Render(&buf, d, []byte("a"), false)
	require.Contains(t, buf.String(), "   1 | a\n")
}
