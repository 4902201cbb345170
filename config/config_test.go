// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTargetVersion(t *testing.T) {
	require.Equal(t, 3, TargetMajor)
	require.Equal(t, 11, TargetMinor)
	require.Equal(t, 0, TargetMicro)
	require.Equal(t, uint16(3495), TargetMagic)
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		require.Equal(t, m, got)
	}
	_, err := ParseMode("frobnicate")
	require.EqualError(t, err, "invalid mode: frobnicate")
}

func TestRootEnv(t *testing.T) {
	t.Setenv(RootEnv, "/opt/erg")
	require.Equal(t, "/opt/erg", Root())

	c := Config{}
	require.Equal(t, filepath.Join("/opt/erg", "lib", "std"), c.StdPath())
	require.Equal(t, filepath.Join("/opt/erg", "lib", "pystd"), c.PyStdPath())
	require.Equal(t, filepath.Join("/opt/erg", "lib", "external"), c.ExternalPath())

	c.Root = "/elsewhere"
	require.Equal(t, filepath.Join("/elsewhere", "lib", "std"), c.StdPath())
}

func TestRootDefault(t *testing.T) {
	t.Setenv(RootEnv, "")
	saved := DefaultRoot
	defer func() { DefaultRoot = saved }()
	DefaultRoot = "/usr/lib/erg"
	require.Equal(t, "/usr/lib/erg", Root())
}

func TestInputRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.er")
	require.NoError(t, os.WriteFile(path, []byte("print! 1\n"), 0o644))

	in := File(path)
	src, err := in.Read()
	require.NoError(t, err)
	require.Equal(t, "print! 1\n", string(src))
	require.Equal(t, "hello", in.ModuleName())
	require.Equal(t, dir, in.Dir())

	empty := filepath.Join(dir, "empty.er")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	src, err = File(empty).Read()
	require.NoError(t, err)
	require.Empty(t, src)

	_, err = File(filepath.Join(dir, "missing.er")).Read()
	require.Error(t, err)

	src, err = String("<eval>", "x = 1").Read()
	require.NoError(t, err)
	require.Equal(t, "x = 1", string(src))
	require.Equal(t, "<module>", String("<eval>", "").ModuleName())
}

func TestOutputPath(t *testing.T) {
	c := Default(File("dir/main.er"))
	require.Equal(t, "dir/main.pyc", c.OutputPath())
	c.Output = "x.pyc"
	require.Equal(t, "x.pyc", c.OutputPath())
	require.Equal(t, "out.pyc", (&Config{Input: Stdin()}).OutputPath())
}
