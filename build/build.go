// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package build runs the compiler pipeline in each of its modes.
//
// A mode is a Runnable: it reads the input of a Config, runs the
// passes it needs, prints its result and any diagnostics, and returns
// the exit status of the process. Dispatch selects the Runnable of the
// configured mode.
package build // import "go.erg.dev/build"

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.erg.dev/config"
	"go.erg.dev/diag"
	"go.erg.dev/elab"
	"go.erg.dev/hir"
	"go.erg.dev/internal/compile"
	"go.erg.dev/modcache"
	"go.erg.dev/stdlib"
	"go.erg.dev/transpile"
)

// Streams are the standard streams of a run.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Std returns the streams of the process.
func Std() Streams { return Streams{os.Stdin, os.Stdout, os.Stderr} }

// A Runnable runs one mode of the compiler and returns the exit status.
type Runnable interface {
	Run(ctx context.Context, cfg config.Config, std Streams) int
}

var runnables = map[config.Mode]Runnable{
	config.Lex:     lexer{},
	config.Parse:   parser{},
	config.Compile: compiler{},
	config.Exec:    executor{},
	config.Read:    reader{},
}

// Register sets the Runnable of mode. The REPL registers itself this
// way, as it builds on this package.
func Register(mode config.Mode, r Runnable) { runnables[mode] = r }

// Dispatch runs the Runnable of cfg.Mode.
func Dispatch(ctx context.Context, cfg config.Config, std Streams) int {
	r, ok := runnables[cfg.Mode]
	if !ok {
		fmt.Fprintf(std.Stderr, "invalid mode: %s\n", cfg.Mode)
		return 1
	}
	return r.Run(ctx, cfg, std)
}

// An Artifact is the outcome of compiling one input.
type Artifact struct {
	Input   config.Input     // the input as read; standard input becomes a string input
	Program *compile.Program // nil if there were errors
	Diags   diag.List        // diagnostics of the input and of the modules it imports
}

// Failed reports whether compilation failed.
func (a *Artifact) Failed() bool { return a.Program == nil }

// Code returns the transpiled program, or "" if compilation failed.
func (a *Artifact) Code() string {
	if a.Program == nil {
		return ""
	}
	return a.Program.Code
}

// A Compiler compiles inputs against one shared module cache, so that
// a module imported by several inputs is elaborated once.
type Compiler struct {
	cfg    config.Config
	shared *modcache.Shared
}

// NewCompiler returns a Compiler for cfg. If cfg.Verbose is set, the
// cache transitions are traced to logger, or to the standard logger if
// logger is nil.
func NewCompiler(cfg config.Config, logger *log.Logger) *Compiler {
	if !cfg.Verbose {
		logger = nil
	} else if logger == nil {
		logger = log.Default()
	}
	return &Compiler{cfg: cfg, shared: modcache.New(cfg, logger)}
}

// Shared returns the module cache of c.
func (c *Compiler) Shared() *modcache.Shared { return c.shared }

// Close abandons the elaborations in progress and releases the cache.
func (c *Compiler) Close() { c.shared.Close() }

// Compile elaborates in and the modules it imports, and if there are no
// errors, transpiles them into a program. Errors in the source are
// reported in the Diags of the result; the error result is for failures
// of the compiler itself, such as an unreadable input or cancellation.
func (c *Compiler) Compile(ctx context.Context, in config.Input) (*Artifact, error) {
	if in.Kind == config.StdinInput {
		src, err := in.Read()
		if err != nil {
			return nil, errors.Wrap(err, "reading standard input")
		}
		in = config.String(in.Name, string(src))
	}
	r, err := elab.Main(ctx, c.shared, in)
	if err != nil {
		return nil, err
	}
	a := &Artifact{Input: in, Diags: r.Diags}
	if r.HIR == nil || r.Diags.HasErrors() {
		return a, nil
	}

	key := elab.ModuleKey(in.Name)
	var deps []*hir.Module
	var paths []string
	for _, p := range c.shared.Graph.Order(key) {
		if p == key {
			continue
		}
		e, ok := c.shared.Native.Lookup(p)
		if !ok || e.HIR == nil {
			return nil, errors.Errorf("imported module %s was not elaborated", p)
		}
		deps = append(deps, e.HIR)
		paths = append(paths, p)
	}
	code, err := transpile.Program(r.HIR, deps)
	if err != nil {
		return nil, err
	}

	prog := &compile.Program{
		Filename: in.Name,
		Module:   key,
		Deps:     paths,
		Code:     code,
	}
	for _, v := range r.Context.Vars() {
		prog.Globals = append(prog.Globals, compile.Global{
			Name:   v.Name,
			Type:   v.Type.String(),
			Public: v.Public(),
		})
	}
	a.Program = prog
	return a, nil
}

// CompileAll compiles the inputs concurrently. The artifacts are in
// the order of the inputs.
func (c *Compiler) CompileAll(ctx context.Context, ins []config.Input) ([]*Artifact, error) {
	out := make([]*Artifact, len(ins))
	g, ctx := errgroup.WithContext(ctx)
	for i, in := range ins {
		i, in := i, in
		g.Go(func() error {
			a, err := c.Compile(ctx, in)
			out[i] = a
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Report renders the diagnostics of a to w, omitting warnings if the
// configuration is quiet.
func (c *Compiler) Report(w io.Writer, a *Artifact) {
	report(w, c.cfg, a.Diags, source(a.Input))
}

func report(w io.Writer, cfg config.Config, diags diag.List, src func(string) []byte) {
	if cfg.Quiet {
		diags = diags.Errors()
	}
	diag.RenderAll(w, diags, src, cfg.Color)
}

// source returns a function that returns the text of the file named in
// a diagnostic, for its caret snippet.
func source(in config.Input) func(name string) []byte {
	return func(name string) []byte {
		if name == in.Name && in.Kind != config.FileInput {
			return in.Src
		}
		if modpath, ok := strings.CutPrefix(name, stdlib.Prefix); ok {
			_, src, _ := stdlib.Source(strings.TrimSuffix(modpath, ".er"))
			return src
		}
		src, err := config.File(name).Read()
		if err != nil {
			return nil
		}
		return src
	}
}
