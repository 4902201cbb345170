// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Walk traverses a syntax tree in depth-first order.
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
	case *File:
		walkStmts(n.Stmts, f)

	case *DefStmt:
		if n.Pattern != nil {
			Walk(n.Pattern, f)
		}
		if n.Name != nil {
			Walk(n.Name, f)
		}
		for _, tp := range n.TypeParams {
			Walk(tp, f)
		}
		for _, param := range n.Params {
			Walk(param, f)
		}
		if n.Type != nil {
			Walk(n.Type, f)
		}
		Walk(n.Body, f)

	case *TypeParam:
		Walk(n.Name, f)
		if n.Bound != nil {
			Walk(n.Bound, f)
		}

	case *Param:
		if n.Name != nil {
			Walk(n.Name, f)
		}
		if n.Pattern != nil {
			Walk(n.Pattern, f)
		}
		if n.Type != nil {
			Walk(n.Type, f)
		}
		if n.Default != nil {
			Walk(n.Default, f)
		}

	case *DeclStmt:
		Walk(n.Name, f)
		Walk(n.Type, f)

	case *MethodsStmt:
		Walk(n.Class, f)
		Walk(n.Body, f)

	case *ExprStmt:
		Walk(n.X, f)

	case *Block:
		walkStmts(n.Stmts, f)

	case *Ident, *Literal:
		// no-op

	case *ImportExpr:
		Walk(n.Path, f)

	case *CallExpr:
		Walk(n.Fn, f)
		walkExprs(n.Args, f)

	case *KwArg:
		Walk(n.Name, f)
		if n.Type != nil {
			Walk(n.Type, f)
		}
		Walk(n.Value, f)

	case *DotExpr:
		Walk(n.X, f)
		Walk(n.Name, f)

	case *LambdaExpr:
		for _, param := range n.Params {
			Walk(param, f)
		}
		Walk(n.Body, f)

	case *ListExpr:
		walkExprs(n.List, f)

	case *ArrayTypeExpr:
		Walk(n.Elem, f)
		Walk(n.Len, f)

	case *TupleExpr:
		walkExprs(n.List, f)

	case *ParenExpr:
		Walk(n.X, f)

	case *AscribeExpr:
		Walk(n.X, f)
		Walk(n.Type, f)

	case *RecordExpr:
		for _, field := range n.Fields {
			Walk(field, f)
		}

	case *RecordField:
		Walk(n.Name, f)
		Walk(n.Value, f)

	case *RefinementExpr:
		Walk(n.Var, f)
		Walk(n.Base, f)
		Walk(n.Pred, f)

	case *FuncTypeExpr:
		walkExprs(n.Params, f)
		Walk(n.Result, f)

	case *UnaryExpr:
		Walk(n.X, f)

	case *BinaryExpr:
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
	for _, expr := range exprs {
		Walk(expr, f)
	}
}
