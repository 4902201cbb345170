// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.erg.dev/build"
	"go.erg.dev/config"
	"go.erg.dev/internal/compile"
)

type result struct {
	status         int
	stdout, stderr string
}

func run(cfg config.Config) result {
	var stdout, stderr bytes.Buffer
	std := build.Streams{Stdin: strings.NewReader(""), Stdout: &stdout, Stderr: &stderr}
	status := build.Dispatch(context.Background(), cfg, std)
	return result{status, stdout.String(), stderr.String()}
}

func mode(m config.Mode, src string) config.Config {
	cfg := config.Default(config.String("test.er", src))
	cfg.Mode = m
	return cfg
}

func needPython(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
}

func TestInvalidMode(t *testing.T) {
	r := run(mode("frobnicate", ""))
	require.Equal(t, 1, r.status)
	require.Equal(t, "invalid mode: frobnicate\n", r.stderr)
}

func TestLex(t *testing.T) {
	r := run(mode(config.Lex, "x = 1\n"))
	require.Equal(t, 0, r.status, r.stderr)
	require.True(t, strings.HasPrefix(r.stdout, "1:1\t\"x\"\n"), r.stdout)
	require.Contains(t, r.stdout, "1:5\t\"1\"\n")

	r = run(mode(config.Lex, "x = \"abc\n"))
	require.Equal(t, 1, r.status)
	require.Contains(t, r.stderr, "LexError")
	require.Contains(t, r.stderr, "unexpected newline in string")
}

func TestParse(t *testing.T) {
	r := run(mode(config.Parse, "x = 1\n"))
	require.Equal(t, 0, r.status, r.stderr)
	require.True(t, strings.HasPrefix(r.stdout, "(File"), r.stdout)
	require.Contains(t, r.stdout, "(DefStmt")
	require.True(t, strings.HasSuffix(r.stdout, ")\n"), r.stdout)

	r = run(mode(config.Parse, "x = (1,\n"))
	require.Equal(t, 1, r.status)
	require.Contains(t, r.stderr, "test.er:")
}

func TestCompileErrors(t *testing.T) {
	// The pure-function form of a procedural builtin does not exist.
	r := run(mode(config.Compile, "print 0\n"))
	require.NotEqual(t, 0, r.status)
	require.NotEmpty(t, r.stderr)
	require.Contains(t, r.stderr, "NameError")
}

func TestWarningsDoNotFail(t *testing.T) {
	dir := t.TempDir()
	cfg := mode(config.Compile, "f x =\n    unused = 1\n    x\nprint! f 1\n")
	cfg.Output = filepath.Join(dir, "out.pyc")
	r := run(cfg)
	require.Equal(t, 0, r.status, r.stderr)
	require.Contains(t, r.stderr, "unused")

	cfg.Quiet = true
	r = run(cfg)
	require.Equal(t, 0, r.status)
	require.Empty(t, r.stderr)
}

func TestCompileAndRead(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.er")
	require.NoError(t, os.WriteFile(src, []byte(".greeting = \"hi\"\nprint! greeting\n"), 0o644))

	cfg := config.Default(config.File(src))
	r := run(cfg)
	require.Equal(t, 0, r.status, r.stderr)

	out := filepath.Join(dir, "hello.pyc")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	magic, err := compile.Magic(data)
	require.NoError(t, err)
	require.Equal(t, config.TargetMagic, magic)

	cfg = config.Default(config.File(out))
	cfg.Mode = config.Read
	r = run(cfg)
	require.Equal(t, 0, r.status, r.stderr)
	require.Contains(t, r.stdout, "magic:    3495 (3.11.0)\n")
	require.Contains(t, r.stdout, "\t.greeting: Str\n")
	require.Contains(t, r.stdout, "\t(print)(greeting,)\n")
}

func TestReadNotArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pyc")
	require.NoError(t, os.WriteFile(path, []byte("print! 1\n"), 0o644))
	cfg := config.Default(config.File(path))
	cfg.Mode = config.Read
	r := run(cfg)
	require.Equal(t, 1, r.status)
	require.Contains(t, r.stderr, "not a compiled module")
}

func TestTranspiledInvocationForm(t *testing.T) {
	c := build.NewCompiler(config.Default(config.String("test.er", "")), nil)
	defer c.Close()
	a, err := c.Compile(context.Background(), config.String("test.er", "print!(\"\")\n"))
	require.NoError(t, err)
	require.False(t, a.Failed(), "%v", a.Diags)
	require.True(t, strings.HasSuffix(a.Code(), "(print)(Str(\"\"),)\n"))
}

func TestCompileAll(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"lib.er": ".double x = x * 2\n",
		"a.er":   "lib = import \"lib\"\nprint! lib.double 1\n",
		"b.er":   "lib = import \"lib\"\nprint! lib.double 2\n",
		"bad.er": "print! nope\n",
	}
	var names []string
	for name, src := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
		if name != "lib.er" {
			names = append(names, path)
		}
	}

	var stderr bytes.Buffer
	std := build.Streams{Stdout: new(bytes.Buffer), Stderr: &stderr}
	status := build.CompileFiles(context.Background(), config.Default(config.File("")), names, std)
	require.Equal(t, 1, status)
	require.Equal(t, 1, strings.Count(stderr.String(), "nope is not defined"), stderr.String())
	for _, name := range []string{"a.pyc", "b.pyc"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}
	_, err := os.Stat(filepath.Join(dir, "bad.pyc"))
	require.True(t, os.IsNotExist(err))
}

func TestExec(t *testing.T) {
	needPython(t)
	for _, test := range []struct {
		src    string
		status int
		stdout string
	}{
		{"print! 1\n", 0, "1\n"},
		{"print! \"abc\"\n", 0, "abc\n"},
		{"num = -3\nprint! num * 2\n", 0, "-6\n"},
		{"assert True\n", 0, ""},
		{"assert False\n", 1, ""},
		{"physics = import \"consts/physics\"\nprint! physics.PLANCK > 0.0\n", 0, "True\n"},
	} {
		r := run(mode(config.Exec, test.src))
		require.Equal(t, test.status, r.status, "%q: %s", test.src, r.stderr)
		require.Equal(t, test.stdout, r.stdout, test.src)
	}
}

func TestExecCompileError(t *testing.T) {
	r := run(mode(config.Exec, "print 0\n"))
	require.NotEqual(t, 0, r.status)
	require.NotEmpty(t, r.stderr)
	require.Empty(t, r.stdout)
}

func TestInterpreter(t *testing.T) {
	needPython(t)
	var stdout, stderr bytes.Buffer
	in, err := build.StartInterpreter(context.Background(), "python3", &stdout, &stderr)
	require.NoError(t, err)

	require.NoError(t, in.Run("x = Nat(2)\n"))
	require.NoError(t, in.Run("print(x + Nat(1))\n"))
	var rt *build.RuntimeError
	require.ErrorAs(t, in.Run("undefined_name\n"), &rt)
	require.NoError(t, in.Run("exit(4)\n"))
	exited, code := in.Exited()
	require.True(t, exited)
	require.Equal(t, 4, code)
	require.Error(t, in.Run("print(1)\n"))

	// The output is copied until the process exits.
	require.NoError(t, in.Close())
	require.Equal(t, "3\n", stdout.String())
	require.Contains(t, stderr.String(), "NameError")
}
