// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// An InputKind says where the source of an Input comes from.
type InputKind uint8

const (
	FileInput InputKind = iota
	StringInput
	StdinInput
	REPLInput
)

// An Input is a handle on a source text.
type Input struct {
	Kind InputKind
	Name string // file path, or a display name such as "<stdin>"
	Src  []byte // for StringInput and REPLInput
}

// File returns an Input reading the named file.
func File(path string) Input { return Input{Kind: FileInput, Name: path} }

// String returns an Input for the literal text src.
func String(name, src string) Input { return Input{Kind: StringInput, Name: name, Src: []byte(src)} }

// Stdin returns an Input reading standard input.
func Stdin() Input { return Input{Kind: StdinInput, Name: "<stdin>"} }

// REPLLine returns an Input for text entered at the REPL.
func REPLLine(src string) Input { return Input{Kind: REPLInput, Name: "<repl>", Src: []byte(src)} }

// Read returns the source text. Files are memory-mapped where the
// platform allows it.
func (in Input) Read() ([]byte, error) {
	switch in.Kind {
	case FileInput:
		return readFile(in.Name)
	case StdinInput:
		return io.ReadAll(os.Stdin)
	}
	return in.Src, nil
}

// Dir returns the directory against which the input's relative
// imports are resolved.
func (in Input) Dir() string {
	if in.Kind == FileInput {
		return filepath.Dir(in.Name)
	}
	return "."
}

// ModuleName returns the module name of the input: the base name
// without the extension for files, "<module>" otherwise.
func (in Input) ModuleName() string {
	if in.Kind != FileInput {
		return "<module>"
	}
	base := filepath.Base(in.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (in Input) String() string { return in.Name }
