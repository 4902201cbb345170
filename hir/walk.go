// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hir

// Walk traverses an HIR tree in depth-first order.
// It starts by calling f(n); n must not be nil.
// If f returns true, Walk calls itself
// recursively for each non-nil child of n.
// Walk then calls f(nil).
func Walk(n Node, f func(Node) bool) {
	if n == nil {
		panic("nil")
	}
	if !f(n) {
		return
	}

	switch n := n.(type) {
	case *Module:
		walkStmts(n.Stmts, f)

	case *Def:
		walkParams(n.Params, f)
		Walk(n.Body, f)

	case *ClassDef:
		for _, m := range n.Methods {
			Walk(m, f)
		}

	case *Decl:
		// no-op

	case *ExprStmt:
		Walk(n.X, f)

	case *Block:
		walkStmts(n.Stmts, f)

	case *Param:
		if n.Default != nil {
			Walk(n.Default, f)
		}

	case *Ident, *Literal, *Import, *TypeExpr, *Bad:
		// no-op

	case *Call:
		Walk(n.Fn, f)
		for _, arg := range n.Args {
			Walk(arg.X, f)
		}

	case *Attr:
		Walk(n.X, f)

	case *Lambda:
		walkParams(n.Params, f)
		Walk(n.Body, f)

	case *Array:
		walkExprs(n.Elems, f)

	case *Tuple:
		walkExprs(n.Elems, f)

	case *Record:
		for _, field := range n.Fields {
			Walk(field.X, f)
		}

	case *Unary:
		Walk(n.X, f)

	case *Binary:
		Walk(n.X, f)
		Walk(n.Y, f)

	default:
		panic(n)
	}

	f(nil)
}

func walkStmts(stmts []Stmt, f func(Node) bool) {
	for _, stmt := range stmts {
		Walk(stmt, f)
	}
}

func walkExprs(exprs []Expr, f func(Node) bool) {
	for _, x := range exprs {
		Walk(x, f)
	}
}

func walkParams(params *Params, f func(Node) bool) {
	if params == nil {
		return
	}
	for _, p := range params.All() {
		Walk(p, f)
	}
}

// Idents returns the uses of bindings within n, in order.
func Idents(n Node) []*Ident {
	var ids []*Ident
	Walk(n, func(n Node) bool {
		if id, ok := n.(*Ident); ok {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}
