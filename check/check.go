// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package check implements the passes that run on elaborated HIR:
// the effect check, the ownership check, and an advisory lint.
// None of them modifies the tree.
package check // import "go.erg.dev/check"

import (
	"go.erg.dev/diag"
	"go.erg.dev/hir"
	"go.erg.dev/syntax"
)

// visitor adapts a pre- and post-order pair of functions to hir.Walk,
// which reports the end of a node's children with a nil node.
type visitor struct {
	pre   func(n hir.Node) bool
	post  func(n hir.Node)
	stack []hir.Node
}

func (v *visitor) walk(n hir.Node) {
	hir.Walk(n, func(n hir.Node) bool {
		if n == nil {
			top := v.stack[len(v.stack)-1]
			v.stack = v.stack[:len(v.stack)-1]
			if v.post != nil {
				v.post(top)
			}
			return false
		}
		if v.pre != nil && !v.pre(n) {
			return false
		}
		v.stack = append(v.stack, n)
		return true
	})
}

// Effects reports calls of procedures from within functions, and
// procedures bound to names without the ! sigil. It tolerates the
// placeholder type left by earlier errors.
func Effects(m *hir.Module) diag.List {
	var diags diag.List
	// pure[i] reports whether the i'th enclosing subroutine is a function.
	var pure []bool
	v := &visitor{}
	v.pre = func(n hir.Node) bool {
		switch n := n.(type) {
		case *hir.Def:
			if n.IsSubr() {
				pure = append(pure, !syntax.IsProcedural(n.Name))
			} else if !n.Reassign && !syntax.IsProcedural(n.Name) {
				if s := hir.SignatureT(n); s != nil && s.IsProc() {
					diags.Errorf(diag.EffectMismatch, n.Pos, "procedure bound to %s, whose name lacks !", n.Name).
						WithSub("rename it to %s!", n.Name)
				}
			}
		case *hir.Lambda:
			pure = append(pure, !n.Proc)
		case *hir.Call:
			if len(pure) > 0 && pure[len(pure)-1] {
				if s := hir.SignatureT(n.Fn); s != nil && s.IsProc() {
					diags.Errorf(diag.EffectMismatch, n.Pos, "cannot call procedure %s within a function", callee(n.Fn))
				}
			}
		}
		return true
	}
	v.post = func(n hir.Node) {
		switch n := n.(type) {
		case *hir.Def:
			if n.IsSubr() {
				pure = pure[:len(pure)-1]
			}
		case *hir.Lambda:
			pure = pure[:len(pure)-1]
		}
	}
	v.walk(m)
	return diags
}

func callee(fn hir.Expr) string {
	switch fn := fn.(type) {
	case *hir.Ident:
		return fn.Name
	case *hir.Attr:
		return callee(fn.X) + "." + fn.Name
	}
	return "of type " + fn.Type().String()
}
