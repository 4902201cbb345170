// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the compiler configuration: the command mode,
// the input source, the installation root and the target runtime
// version.
package config // import "go.erg.dev/config"

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Target runtime version and the magic number of its bytecode.
const (
	TargetVersion        = "3.11.0"
	TargetMagic   uint16 = 3495
)

// DefaultRoot is the installation root used when ERG_PATH is unset.
// It is set at link time:
//
//	go build -ldflags "-X go.erg.dev/config.DefaultRoot=/usr/local/lib/erg"
var DefaultRoot = ""

// RootEnv names the environment variable that overrides the root.
const RootEnv = "ERG_PATH"

// Major, minor and micro components of TargetVersion.
var TargetMajor, TargetMinor, TargetMicro int

func init() {
	parts := strings.Split(TargetVersion, ".")
	if len(parts) != 3 {
		panic("malformed target version " + TargetVersion)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			panic("malformed target version " + TargetVersion)
		}
		nums[i] = n
	}
	TargetMajor, TargetMinor, TargetMicro = nums[0], nums[1], nums[2]
	if TargetMajor != 3 {
		panic("target runtime major version must be 3")
	}
}

// A Mode selects what the command does with its input.
type Mode string

const (
	Lex     Mode = "lex"
	Parse   Mode = "parse"
	Compile Mode = "compile"
	Exec    Mode = "exec"
	Read    Mode = "read"
	REPL    Mode = "repl"
)

// Modes lists the valid modes.
var Modes = []Mode{Lex, Parse, Compile, Exec, Read, REPL}

// ParseMode returns the mode named s.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid mode: %s", s)
}

// A Config is the configuration of one compiler invocation.
type Config struct {
	Mode    Mode
	Input   Input
	Output  string // output path for compile; derived from the input if empty
	Root    string // installation root; see Root
	Python  string // interpreter used by exec
	Verbose bool   // trace module cache transitions
	Color   bool   // colorize diagnostics
	Quiet   bool   // suppress warnings
}

// Default returns the configuration of a compile of input.
func Default(input Input) Config {
	return Config{Mode: Compile, Input: input, Root: Root(), Python: "python3"}
}

// Root returns the installation root: the value of ERG_PATH if set,
// otherwise DefaultRoot, otherwise the directory containing the
// running executable's directory.
func Root() string {
	if root := os.Getenv(RootEnv); root != "" {
		return root
	}
	if DefaultRoot != "" {
		return DefaultRoot
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(filepath.Dir(exe))
}

// StdPath returns the directory of the standard library.
func (c *Config) StdPath() string { return filepath.Join(c.root(), "lib", "std") }

// PyStdPath returns the directory of the Python declaration stubs.
func (c *Config) PyStdPath() string { return filepath.Join(c.root(), "lib", "pystd") }

// ExternalPath returns the directory of external bindings.
func (c *Config) ExternalPath() string { return filepath.Join(c.root(), "lib", "external") }

func (c *Config) root() string {
	if c.Root != "" {
		return c.Root
	}
	return Root()
}

// OutputPath returns the artifact path for a compile.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	name := c.Input.Name
	if c.Input.Kind != FileInput {
		name = "out"
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".pyc"
}
