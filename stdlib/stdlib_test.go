// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdlib_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go.erg.dev/stdlib"
	"go.erg.dev/syntax"
)

func TestNames(t *testing.T) {
	require.Equal(t, []string{"consts", "consts/physics", "semver"}, stdlib.Names())
}

func TestSource(t *testing.T) {
	filename, src, ok := stdlib.Source("consts/physics")
	require.True(t, ok)
	require.Equal(t, "<std>/consts/physics.er", filename)
	require.Contains(t, string(src), `import "consts"`)

	for _, bad := range []string{"", "nosuch", "../stdlib", "/consts"} {
		_, _, ok := stdlib.Source(bad)
		require.False(t, ok, bad)
	}
}

// Every builtin module must at least parse.
func TestParse(t *testing.T) {
	for _, name := range stdlib.Names() {
		filename, src, _ := stdlib.Source(name)
		_, err := syntax.Parse(filename, src, 0)
		require.NoError(t, err, name)
	}
}
