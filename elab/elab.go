// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elab elaborates desugared syntax trees into HIR.
//
// Elaboration is bidirectional: each expression is either synthesized,
// producing its type, or checked against an expected type. Names are
// resolved against the Context chain of the module; every identifier
// in the result refers to its binding. Errors are recorded and do not
// stop elaboration: an erroneous expression is given the placeholder
// type ?, which is compatible with every type, so that a single mistake
// produces a single diagnostic.
package elab // import "go.erg.dev/elab"

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"

	"go.erg.dev/check"
	"go.erg.dev/diag"
	"go.erg.dev/env"
	"go.erg.dev/hir"
	"go.erg.dev/internal/fresh"
	"go.erg.dev/modcache"
	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

const debug = false

// A Result is the outcome of elaborating one module.
type Result struct {
	HIR     *hir.Module
	Context *env.Context
	Diags   diag.List
}

// Module elaborates the parsed file f as the module at path, within
// the arena of s. Imports are requested through the caches of s.
// The effect, ownership, and lint checks are run on the result.
func Module(ctx context.Context, s *modcache.Shared, path string, f *syntax.File) *Result {
	return elaborate(ctx, s, path, f, env.ModuleKind)
}

func elaborate(ctx context.Context, s *modcache.Shared, path string, f *syntax.File, kind env.Kind) *Result {
	a := s.Arena()
	var mod *env.Context
	switch kind {
	case env.Main:
		mod = a.MainModule(path, len(f.Stmts))
	case env.PyModule:
		mod = a.PyModule(path, len(f.Stmts))
	default:
		mod = a.Module(path, len(f.Stmts))
	}
	el := newElaborator(ctx, s, mod, filepath.Dir(f.Path))
	return el.run(f)
}

// run elaborates f into the module of el and checks the result.
func (el *elaborator) run(f *syntax.File) *Result {
	r := &Result{Context: el.mod}
	func() {
		defer diag.Recover(&el.diags, "elaboration of "+el.mod.Path)
		if err := el.prepare(f); err != nil {
			el.diags = append(el.diags, diag.FromSyntax(err)...)
			return
		}
		el.prefetch(f)
		r.HIR = el.module(f.Stmts)
	}()
	r.Diags = el.diags
	if r.HIR != nil {
		r.Diags = append(r.Diags, runChecks(r.HIR, r.Diags.HasErrors())...)
	}
	r.Diags.SetInput(f.Path)
	r.Diags.Sort()
	return r
}

// runChecks runs the passes that follow elaboration. Ownership needs
// well-typed HIR and is skipped if elaboration reported errors.
func runChecks(m *hir.Module, failed bool) diag.List {
	diags := check.Effects(m)
	if !failed && !diags.HasErrors() {
		diags = append(diags, check.Ownership(m)...)
	}
	return append(diags, check.Lint(m)...)
}

// An elaborator holds the state of the elaboration of one module.
type elaborator struct {
	ctx     context.Context
	shared  *modcache.Shared
	arena   *env.Arena
	mod     *env.Context
	dir     string // directory of relative imports
	u       types.Unifier
	gen     fresh.Gen
	diags   diag.List
	scope   *env.Context
	classes map[string]*hir.ClassDef
	imports map[*syntax.ImportExpr]*imported
	refVars []string // bound variables of the enclosing refinement types
}

func newElaborator(ctx context.Context, s *modcache.Shared, mod *env.Context, dir string) *elaborator {
	return &elaborator{
		ctx:     ctx,
		shared:  s,
		arena:   mod.Arena(),
		mod:     mod,
		dir:     dir,
		scope:   mod,
		classes: make(map[string]*hir.ClassDef),
		imports: make(map[*syntax.ImportExpr]*imported),
	}
}

// prepare desugars and reorders f in place.
func (el *elaborator) prepare(f *syntax.File) error {
	if err := syntax.Desugar(f, &el.gen); err != nil {
		return err
	}
	syntax.Reorder(f)
	return nil
}

// module elaborates the top-level statements of a module and resolves
// the inference variables remaining in its types.
func (el *elaborator) module(stmts []syntax.Stmt) *hir.Module {
	m := &hir.Module{Path: el.mod.Path, Ctx: el.mod, Stmts: el.stmts(stmts)}
	hir.Retype(m, el.u.Resolve)
	for _, v := range el.mod.Vars() {
		if v.Kind != env.Builtin {
			v.Type = el.u.Resolve(v.Type)
		}
	}
	return m
}

func (el *elaborator) errorf(errno diag.Errno, pos syntax.Position, format string, args ...interface{}) *diag.Diagnostic {
	if debug {
		fmt.Printf("%s: %s: %s\n", pos, errno, fmt.Sprintf(format, args...))
	}
	return el.diags.Errorf(errno, pos, format, args...)
}

// internal reports a violated invariant.
func (el *elaborator) internal(pos syntax.Position, err error) {
	el.diags.Add(diag.Internal(pos, err))
}

// subtype records got ≤ want, reporting a mismatch at pos.
func (el *elaborator) subtype(got, want types.Type, pos syntax.Position) bool {
	err := el.u.Sub(got, want)
	if err == nil {
		return true
	}
	var (
		mismatch *types.MismatchError
		effect   *types.EffectError
	)
	switch {
	case errors.As(err, &effect):
		el.errorf(diag.EffectMismatch, pos, "%v", &types.EffectError{Got: el.u.Resolve(effect.Got), Want: el.u.Resolve(effect.Want)})
	case errors.As(err, &mismatch):
		el.errorf(diag.TypeMismatch, pos, "%v", &types.MismatchError{
			Got:    el.u.Resolve(mismatch.Got),
			Want:   el.u.Resolve(mismatch.Want),
			Reason: mismatch.Reason,
		})
	default:
		el.internal(pos, err)
	}
	return false
}

// expect checks that x has type want, poisoning x if not.
func (el *elaborator) expect(x hir.Expr, want types.Type) hir.Expr {
	if want != nil && !el.subtype(x.Type(), want, x.Position()) {
		hir.Poison(x)
	}
	return x
}

// enter makes a new Context nested in the current scope its scope,
// returning a function that restores the previous one.
func (el *elaborator) enter(name string, kind env.Kind, parent *env.Context) (*env.Context, func()) {
	outer := el.scope
	c := el.arena.New(name, kind, parent.ID, 8)
	c.Path = el.mod.Path
	el.scope = c
	return c, func() { el.scope = outer }
}

func (el *elaborator) stmts(stmts []syntax.Stmt) []hir.Stmt {
	out := make([]hir.Stmt, 0, len(stmts))
	for _, stmt := range stmts {
		if s := el.stmt(stmt); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (el *elaborator) stmt(stmt syntax.Stmt) hir.Stmt {
	switch s := stmt.(type) {
	case *syntax.DefStmt:
		switch {
		case syntax.IsTypeDef(s):
			return el.typeDef(s)
		case s.Subr:
			return el.subrDef(s)
		}
		return el.varDef(s)
	case *syntax.DeclStmt:
		return el.decl(s)
	case *syntax.MethodsStmt:
		el.methods(s)
		return nil
	case *syntax.ExprStmt:
		return &hir.ExprStmt{X: el.expr(s.X, nil)}
	}
	el.internal(syntax.Start(stmt), errors.Errorf("unexpected statement %T", stmt))
	return nil
}

// block elaborates a body whose value is checked against want, if
// non-nil. The value of a block that does not end in an expression
// is None.
func (el *elaborator) block(b *syntax.Block, want types.Type) *hir.Block {
	out := &hir.Block{Stmts: make([]hir.Stmt, 0, len(b.Stmts)), T: types.NoneType}
	for i, stmt := range b.Stmts {
		if es, ok := stmt.(*syntax.ExprStmt); ok && i == len(b.Stmts)-1 {
			x := el.expr(es.X, want)
			out.Stmts = append(out.Stmts, &hir.ExprStmt{X: x})
			out.T = x.Type()
			return out
		}
		if s := el.stmt(stmt); s != nil {
			out.Stmts = append(out.Stmts, s)
		}
	}
	if want != nil && len(b.Stmts) > 0 {
		el.subtype(types.NoneType, want, syntax.Start(b.Stmts[len(b.Stmts)-1]))
	}
	return out
}
