// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"go.erg.dev/config"
	"go.erg.dev/internal/compile"
)

var prog = &compile.Program{
	Filename: "mul.er",
	Module:   "mul",
	Deps:     []string{"consts"},
	Globals: []compile.Global{
		{Name: "mul", Type: "(a: Int, b: Int) -> Int", Public: true},
		{Name: "y", Type: "Int"},
	},
	Code: "def mul(a, b):\n    return a * b\n",
}

// TestSerialization verifies that a serialized program can be decoded
// intact.
func TestSerialization(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, prog.Write(buf, config.TargetMagic))

	got, err := compile.Decode(buf.Bytes(), config.TargetMagic)
	require.NoError(t, err)
	if diff := cmp.Diff(prog, got); diff != "" {
		t.Errorf("decoded program (-want +got):\n%s", diff)
	}
}

func TestHeader(t *testing.T) {
	data, err := prog.Encode(config.TargetMagic)
	require.NoError(t, err)
	magic, err := compile.Magic(data)
	require.NoError(t, err)
	require.Equal(t, config.TargetMagic, magic)
	require.Equal(t, "\r\n", string(data[2:4]))
}

func TestGarbage(t *testing.T) {
	const garbage = "This is not a compiled Erg program."
	_, err := compile.Decode([]byte(garbage), config.TargetMagic)
	require.Error(t, err)
	require.True(t, errors.Is(err, compile.ErrNotArtifact), "wrong error decoding garbage: %v", err)

	_, err = compile.Decode(nil, config.TargetMagic)
	require.True(t, errors.Is(err, compile.ErrNotArtifact))
}

func TestTruncated(t *testing.T) {
	data, err := prog.Encode(config.TargetMagic)
	require.NoError(t, err)
	_, err = compile.Decode(data[:len(data)-3], config.TargetMagic)
	require.True(t, errors.Is(err, compile.ErrNotArtifact), "got %v", err)
}

func TestWrongMagic(t *testing.T) {
	data, err := prog.Encode(config.TargetMagic - 1)
	require.NoError(t, err)
	_, err = compile.Decode(data, config.TargetMagic)
	var magic *compile.MagicError
	require.True(t, errors.As(err, &magic), "got %v", err)
	require.Equal(t, config.TargetMagic-1, magic.Got)
	require.Equal(t, config.TargetMagic, magic.Want)
}

func TestFprint(t *testing.T) {
	var buf strings.Builder
	compile.Fprint(&buf, prog, 3495, "3.11.0")
	const want = `magic:    3495 (3.11.0)
filename: mul.er
module:   mul
deps:     consts
globals:
	.mul: (a: Int, b: Int) -> Int
	y: Int
code:
	def mul(a, b):
	    return a * b
`
	require.Equal(t, want, buf.String())
}
