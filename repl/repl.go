// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repl provides an interactive session for Erg, and a
// read/eval/print loop built on it.
//
// The loop supports readline-style command editing, and interrupts
// through Control-C.
//
// Each input line is added to the pending chunk. Once the chunk is
// complete, that is, it has no open brackets, it does not end awaiting
// a body, and an indented block in it has been closed by a blank line,
// the chunk is elaborated as the next part of the session's module.
// If it has no errors and the session has an Executor, it is then
// transpiled and run. The bindings of every chunk stay visible to the
// chunks that follow.
package repl // import "go.erg.dev/repl"

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"go.erg.dev/build"
	"go.erg.dev/config"
	"go.erg.dev/diag"
	"go.erg.dev/elab"
	"go.erg.dev/modcache"
	"go.erg.dev/syntax"
	"go.erg.dev/transpile"
)

// Name is the module path and file name of a session.
const Name = "<repl>"

// An Executor runs transpiled code, such as a *build.Interpreter.
type Executor interface {
	Run(code string) error
	Exited() (bool, int)
}

// ErrExited is returned by Eval after the session has exited.
var ErrExited = errors.New("session has exited")

// A Session elaborates successive lines of input into one module.
type Session struct {
	ctx    context.Context
	shared *modcache.Shared
	el     *elab.Elaborator
	exec   Executor // nil: elaborate only
	loaded *set.Set[string]

	pending strings.Builder
	last    string // source of the last chunk
	exited  bool
	code    int
}

// NewSession returns a session that elaborates against a module cache
// configured by cfg. If exec is non-nil, each chunk without errors is
// also run by it.
func NewSession(ctx context.Context, cfg config.Config, exec Executor) *Session {
	shared := modcache.New(cfg, nil)
	return &Session{
		ctx:    ctx,
		shared: shared,
		el:     elab.NewElaborator(ctx, shared, Name),
		exec:   exec,
		loaded: set.New[string](0),
	}
}

// Close releases the module cache of s.
func (s *Session) Close() { s.shared.Close() }

// Pending reports whether lines have been read that do not yet form a
// complete chunk.
func (s *Session) Pending() bool { return s.pending.Len() > 0 }

// Reset discards the pending lines.
func (s *Session) Reset() { s.pending.Reset() }

// Exited reports whether the session has ended by a call of exit.
func (s *Session) Exited() bool { return s.exited }

// ExitCode returns the status passed to exit.
func (s *Session) ExitCode() int { return s.code }

// Source returns the source of the last complete chunk.
func (s *Session) Source() []byte { return []byte(s.last) }

// Eval adds line to the session. If the line completes a chunk, the
// chunk is elaborated and run. The error is a diag.List if the chunk
// has errors, and a *build.RuntimeError if running it failed.
func (s *Session) Eval(line string) error {
	if s.exited {
		return ErrExited
	}
	s.pending.WriteString(strings.TrimSuffix(line, "\n"))
	s.pending.WriteByte('\n')
	src := s.pending.String()
	if syntax.Incomplete(src) {
		return nil
	}
	s.pending.Reset()
	if strings.TrimSpace(src) == "" {
		return nil
	}
	s.last = src

	f, err := syntax.Parse(Name, src, 0)
	if err != nil {
		diags := diag.FromSyntax(err)
		diags.SetInput(Name)
		return diags
	}
	if code, ok := exitCall(f); ok && s.exec == nil {
		s.exited, s.code = true, code
		return nil
	}

	r := s.el.Elaborate(f)
	if err := r.Diags.Err(); err != nil {
		return r.Diags.Errors()
	}
	if s.exec == nil {
		return nil
	}
	if err := s.run(r); err != nil {
		return err
	}
	s.exited, s.code = s.exec.Exited()
	return nil
}

// run loads the modules first imported by the chunk of r, then runs it.
func (s *Session) run(r *elab.Result) error {
	for _, p := range s.shared.Graph.Order(Name) {
		if p == Name || s.loaded.Contains(p) {
			continue
		}
		e, ok := s.shared.Native.Lookup(p)
		if !ok || e.HIR == nil {
			return errors.Errorf("imported module %s was not elaborated", p)
		}
		code, err := transpile.Factory(e.HIR)
		if err != nil {
			return err
		}
		if err := s.exec.Run(code); err != nil {
			return err
		}
		s.loaded.Insert(p)
	}
	code, err := transpile.Module(r.HIR)
	if err != nil {
		return err
	}
	return s.exec.Run(code)
}

// exitCall reports whether f is a sole call of exit, and with what
// literal status.
func exitCall(f *syntax.File) (int, bool) {
	if len(f.Stmts) != 1 {
		return 0, false
	}
	stmt, ok := f.Stmts[0].(*syntax.ExprStmt)
	if !ok {
		return 0, false
	}
	call, ok := stmt.X.(*syntax.CallExpr)
	if !ok {
		return 0, false
	}
	if id, ok := call.Fn.(*syntax.Ident); !ok || id.Name != "exit" && id.Name != "quit" {
		return 0, false
	}
	switch len(call.Args) {
	case 0:
		return 0, true
	case 1:
		if lit, ok := call.Args[0].(*syntax.Literal); ok && lit.Token == syntax.INT {
			if n, ok := lit.Value.(int64); ok {
				return int(n), true
			}
		}
	}
	return 0, false
}

// Loop is the Runnable of the repl mode.
type Loop struct{}

var interrupted = make(chan os.Signal, 1)

// Run executes a read, eval, print loop until end of input or a call
// of exit, and returns the exit status.
func (Loop) Run(ctx context.Context, cfg config.Config, std build.Streams) int {
	signal.Notify(interrupted, os.Interrupt)
	defer signal.Stop(interrupted)

	var exec Executor
	interp, err := build.StartInterpreter(ctx, cfg.Python, std.Stdout, std.Stderr)
	if err != nil {
		fmt.Fprintf(std.Stderr, "erg: %v; input will be checked but not run\n", err)
	} else {
		defer interp.Close()
		exec = interp
	}
	s := NewSession(ctx, cfg, exec)
	defer s.Close()

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintln(std.Stderr, err)
		return 1
	}
	defer rl.Close()

	for !s.Exited() {
		if s.Pending() {
			rl.SetPrompt("... ")
		} else {
			rl.SetPrompt(">>> ")
		}
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			s.Reset()
			fmt.Fprintln(std.Stdout, err)
			continue
		} else if err == io.EOF {
			fmt.Fprintln(std.Stdout)
			break
		} else if err != nil {
			fmt.Fprintln(std.Stderr, err)
			return 1
		}
		drain()
		printError(std.Stderr, cfg, s, s.Eval(line))
	}
	return s.ExitCode()
}

// drain discards interrupts received while no chunk was running; the
// interpreter process receives them too and reports its own.
func drain() {
	for {
		select {
		case <-interrupted:
		default:
			return
		}
	}
}

// printError prints an error of Eval. The traceback of a runtime error
// has already been printed by the interpreter.
func printError(w io.Writer, cfg config.Config, s *Session, err error) {
	var diags diag.List
	var rt *build.RuntimeError
	switch {
	case err == nil, errors.As(err, &rt):
	case errors.As(err, &diags):
		src := s.Source()
		diag.RenderAll(w, diags, func(string) []byte { return src }, cfg.Color)
	default:
		fmt.Fprintln(w, err)
	}
}
