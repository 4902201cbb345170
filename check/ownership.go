// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package check

import (
	"github.com/hashicorp/go-set/v2"

	"go.erg.dev/diag"
	"go.erg.dev/env"
	"go.erg.dev/hir"
	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

// Ownership reports uses of mutable values after their ownership was
// transferred. Binding a name to another name that holds a mutable
// value moves the value: the new name becomes its only owner, and the
// old one may not be used until it is assigned again.
//
// The tree must be well typed; Ownership is not run after errors.
func Ownership(m *hir.Module) diag.List {
	o := &owner{
		m:     m,
		moved: set.New[env.VarRef](8),
		where: make(map[env.VarRef]syntax.Position),
	}
	v := &visitor{pre: o.pre, post: o.post}
	v.walk(m)
	return o.diags
}

type owner struct {
	m     *hir.Module
	diags diag.List
	moved *set.Set[env.VarRef]
	where map[env.VarRef]syntax.Position // position of each move
}

func (o *owner) pre(n hir.Node) bool {
	if id, ok := n.(*hir.Ident); ok && id.Ref.IsValid() && o.moved.Contains(id.Ref) {
		o.diags.Errorf(diag.OwnershipViolation, id.Pos, "%s was moved", id.Name).
			WithSub("it was moved at %s", o.where[id.Ref])
	}
	return true
}

func (o *owner) post(n hir.Node) {
	d, ok := n.(*hir.Def)
	if !ok || d.IsSubr() {
		return
	}
	if d.Reassign {
		// The name owns a new value.
		o.moved.Remove(d.Ref)
		return
	}
	if len(d.Body.Stmts) != 1 {
		return
	}
	es, ok := d.Body.Stmts[0].(*hir.ExprStmt)
	if !ok {
		return
	}
	src, ok := es.X.(*hir.Ident)
	if !ok || !src.Ref.IsValid() || src.Ref == d.Ref || !types.IsMutable(src.T) {
		return
	}
	if v := o.m.Var(src.Ref); v == nil || v.Kind == env.Builtin {
		return
	}
	o.moved.Insert(src.Ref)
	o.where[src.Ref] = src.Pos
}
