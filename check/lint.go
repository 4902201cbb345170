// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package check

import (
	"strings"

	"go.erg.dev/diag"
	"go.erg.dev/env"
	"go.erg.dev/hir"
	"go.erg.dev/syntax"
)

// Lint reports private bindings that are never used. Its diagnostics
// are warnings only.
//
// Names beginning with _ and names made up by desugaring are exempt,
// as are parameters, methods, and the bindings of a module that may be
// imported, whose public names are used elsewhere.
func Lint(m *hir.Module) diag.List {
	type binding struct {
		name string
		pos  syntax.Position
	}
	var defs []env.VarRef
	bindings := make(map[env.VarRef]binding)
	used := make(map[env.VarRef]bool)
	define := func(ref env.VarRef, name string, pos syntax.Position) {
		if !ref.IsValid() || strings.HasPrefix(name, "_") || strings.HasPrefix(name, "%") {
			return
		}
		if _, ok := bindings[ref]; !ok {
			defs = append(defs, ref)
			bindings[ref] = binding{name, pos}
		}
	}

	var methods int // depth of method definitions
	v := &visitor{}
	v.pre = func(n hir.Node) bool {
		switch n := n.(type) {
		case *hir.ClassDef:
			if !n.Public {
				define(n.Ref, n.Name, n.Pos)
			}
			methods++
		case *hir.Def:
			if !n.Public && !n.Reassign && methods == 0 {
				define(n.Ref, n.Name, n.Pos)
			}
		case *hir.Ident:
			used[n.Ref] = true
		case *hir.Attr:
			if n.Ref.IsValid() {
				used[n.Ref] = true
			}
		}
		return true
	}
	v.post = func(n hir.Node) {
		if _, ok := n.(*hir.ClassDef); ok {
			methods--
		}
	}
	v.walk(m)

	var diags diag.List
	for _, ref := range defs {
		if !used[ref] {
			b := bindings[ref]
			diags.Warningf(diag.UnusedWarning, b.pos, "%s is defined but never used", b.name)
		}
	}
	return diags
}
