// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chunkedfile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"go.erg.dev/diag"
	"go.erg.dev/syntax"
)

type testReporter struct {
	reported []string
}

func (r *testReporter) Errorf(format string, args ...interface{}) {
	r.reported = append(r.reported, fmt.Sprintf(format, args...))
}

func (r *testReporter) take() []string {
	out := r.reported
	r.reported = nil
	return out
}

const testFile = `x = 1 + "" ### "no implementation of \\+"
---
x = 1
print! x
---
f y =
    unused = 1 ### UnusedWarning "unused"
    y
z = 2 ### NameError "z"
`

func pos(line int32) syntax.Position {
	name := "test_file"
	return syntax.MakePosition(&name, line, 1)
}

func TestRead(t *testing.T) {
	r := &testReporter{}
	chunks := readBytes("test_file", []byte(testFile), r, "\n")
	require.Empty(t, r.take())
	require.Len(t, chunks, 3)

	require.Equal(t, `x = 1 + "" ### "no implementation of \\+"`, chunks[0].Source)
	require.Equal(t, "\n\nx = 1\nprint! x", chunks[1].Source)
	require.Len(t, chunks[0].wants, 1)
	require.Equal(t, `no implementation of \+`, chunks[0].wants[1].rx.String())
	require.Empty(t, chunks[1].wants)

	// The third chunk starts after two separators.
	require.Equal(t, "UnusedWarning", chunks[2].wants[7].errno)
	require.Equal(t, "NameError", chunks[2].wants[9].errno)
}

func TestGotError(t *testing.T) {
	r := &testReporter{}
	chunk := readBytes("test_file", []byte(testFile), r, "\n")[0]

	chunk.GotError(1, "no implementation of + for Nat and Str")
	require.Empty(t, r.take())

	// The expectation has been used up.
	chunk.GotError(1, "no implementation of + for Nat and Str")
	require.Equal(t, []string{"\ntest_file:1: unexpected error: no implementation of + for Nat and Str"}, r.take())

	chunk.Done()
	require.Empty(t, r.take())
}

func TestGotDiags(t *testing.T) {
	r := &testReporter{}
	chunk := readBytes("test_file", []byte(testFile), r, "\n")[2]

	var diags diag.List
	diags.Warningf(diag.UnusedWarning, pos(6), "f is defined but never used") // not expected: ignored
	diags.Warningf(diag.UnusedWarning, pos(7), "unused is defined but never used")
	diags.Errorf(diag.TypeMismatch, pos(9), "z")
	chunk.GotDiags(diags)
	require.Equal(t, []string{"\ntest_file:9: got TypeMismatch \"z\", want NameError"}, r.take())

	chunk.Done()
	require.Empty(t, r.take())
}

func TestMissingAndForeign(t *testing.T) {
	r := &testReporter{}
	chunk := readBytes("test_file", []byte(testFile), r, "\n")[2]

	other := "lib.er"
	var diags diag.List
	diags.Errorf(diag.NameError, syntax.MakePosition(&other, 1, 6), "undefined is not defined")
	diags.Warningf(diag.UnusedWarning, syntax.MakePosition(&other, 2, 1), "w is defined but never used")
	chunk.GotDiags(diags)
	require.Equal(t, []string{"\nlib.er:1:6: unexpected error in another file: undefined is not defined"}, r.take())

	chunk.Done()
	require.ElementsMatch(t, []string{
		"\ntest_file:7: expected UnusedWarning matching \"unused\"",
		"\ntest_file:9: expected NameError matching \"z\"",
	}, r.take())
}

func TestBadExpectation(t *testing.T) {
	r := &testReporter{}
	readBytes("test_file", []byte("x = 1 ### not quoted\ny = 2 ### \"(\"\n"), r, "\n")
	got := r.take()
	require.Len(t, got, 2)
	require.Equal(t, "\ntest_file:1: not a quoted regexp: quoted", got[0])
}
