// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repl_test

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.erg.dev/build"
	"go.erg.dev/config"
	"go.erg.dev/diag"
	"go.erg.dev/repl"
)

func newSession(t *testing.T, exec repl.Executor) *repl.Session {
	s := repl.NewSession(context.Background(), config.Default(config.REPLLine("")), exec)
	t.Cleanup(s.Close)
	return s
}

func TestTypo(t *testing.T) {
	s := newSession(t, nil)
	err := s.Eval(`prin "Hello, world!"`)
	var diags diag.List
	require.ErrorAs(t, err, &diags)
	require.True(t, diags.Has(diag.NameError), "%v", diags)
	require.Equal(t, "prin is not defined", diags[0].Main)
	require.False(t, s.Exited())
}

func TestMultiLineSession(t *testing.T) {
	s := newSession(t, nil)
	for _, line := range []string{"f i =", "    i + 1", "", "x = f 2", "assert x == 3", "exit()"} {
		require.NoError(t, s.Eval(line), line)
	}
	require.True(t, s.Exited())
	require.Equal(t, 0, s.ExitCode())
	require.ErrorIs(t, s.Eval("x"), repl.ErrExited)
}

func TestPending(t *testing.T) {
	s := newSession(t, nil)
	require.NoError(t, s.Eval("xs = [1,"))
	require.True(t, s.Pending())
	require.NoError(t, s.Eval("  2]"))
	require.False(t, s.Pending())

	require.NoError(t, s.Eval("g a ="))
	require.True(t, s.Pending())
	s.Reset()
	require.False(t, s.Pending())
	require.NoError(t, s.Eval(""))
}

func TestErrorsKeepSessionUsable(t *testing.T) {
	s := newSession(t, nil)
	require.NoError(t, s.Eval("x = 1"))
	var diags diag.List
	require.ErrorAs(t, s.Eval("x = 2"), &diags)
	require.Equal(t, diag.OwnershipViolation, diags[0].Errno)
	require.ErrorAs(t, s.Eval("y = )"), &diags)
	require.NoError(t, s.Eval("print! x"))
	require.Equal(t, "print! x\n", string(s.Source()))
}

func TestExitStatus(t *testing.T) {
	s := newSession(t, nil)
	require.NoError(t, s.Eval("exit 2"))
	require.True(t, s.Exited())
	require.Equal(t, 2, s.ExitCode())
}

// recorder is an Executor that records the code it is given.
type recorder struct {
	chunks []string
}

func (r *recorder) Run(code string) error { r.chunks = append(r.chunks, code); return nil }
func (r *recorder) Exited() (bool, int)   { return false, 0 }

func TestExecutorReceivesChunks(t *testing.T) {
	rec := new(recorder)
	s := newSession(t, rec)
	require.NoError(t, s.Eval("consts = import \"consts\""))
	require.NoError(t, s.Eval("print! consts.PI"))
	var diags diag.List
	require.ErrorAs(t, s.Eval("print! nope"), &diags)

	require.Len(t, rec.chunks, 3)
	require.True(t, strings.HasPrefix(rec.chunks[0], `@_erg_module("consts")`), rec.chunks[0])
	require.Equal(t, "consts = _erg_import(\"consts\")\n", rec.chunks[1])
	require.Equal(t, "(print)(consts.PI,)\n", rec.chunks[2])
}

func TestInterpretedSession(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	var stdout, stderr bytes.Buffer
	interp, err := build.StartInterpreter(context.Background(), "python3", &stdout, &stderr)
	require.NoError(t, err)
	s := newSession(t, interp)
	for _, line := range []string{"f i =", "    i + 1", "", "x = f 2", "assert x == 3", "print! x", "exit()"} {
		require.NoError(t, s.Eval(line), line)
	}
	require.True(t, s.Exited())
	require.Equal(t, 0, s.ExitCode())
	require.NoError(t, interp.Close())
	require.Equal(t, "3\n", stdout.String(), stderr.String())
}

func TestFailingAssertion(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	var stdout, stderr bytes.Buffer
	interp, err := build.StartInterpreter(context.Background(), "python3", &stdout, &stderr)
	require.NoError(t, err)
	defer interp.Close()
	s := newSession(t, interp)
	var rt *build.RuntimeError
	require.ErrorAs(t, s.Eval("assert 1 == 2"), &rt)
	require.False(t, s.Exited())
}
