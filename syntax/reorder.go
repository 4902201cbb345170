// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Reorder lifts the type definitions of every block in f to the head
// of that block, each followed by the method blocks of its class, so
// that definitions in a block may refer to any type of the block. The
// relative order of all other statements is preserved.
// Reorder is idempotent.
func Reorder(f *File) {
	f.Stmts = reorderStmts(f.Stmts)
}

func reorderStmts(stmts []Stmt) []Stmt {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *DefStmt:
			reorderBlock(s.Body)
		case *MethodsStmt:
			reorderBlock(s.Body)
		case *ExprStmt:
			reorderExpr(s.X)
		}
	}

	var types, rest []Stmt
	methods := make(map[string][]Stmt)
	defined := make(map[string]bool)
	for _, stmt := range stmts {
		if def, ok := stmt.(*DefStmt); ok && IsTypeDef(def) {
			defined[def.Pattern.(*Ident).Name] = true
		}
	}
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *DefStmt:
			if IsTypeDef(s) {
				types = append(types, s)
				continue
			}
		case *MethodsStmt:
			if defined[s.Class.Name] {
				methods[s.Class.Name] = append(methods[s.Class.Name], s)
				continue
			}
		}
		rest = append(rest, stmt)
	}
	if len(types) == 0 {
		return stmts
	}

	out := make([]Stmt, 0, len(stmts))
	for _, t := range types {
		out = append(out, t)
		out = append(out, methods[t.(*DefStmt).Pattern.(*Ident).Name]...)
	}
	return append(out, rest...)
}

func reorderBlock(b *Block) {
	b.Stmts = reorderStmts(b.Stmts)
}

func reorderExpr(e Expr) {
	Walk(e, func(n Node) bool {
		if lambda, ok := n.(*LambdaExpr); ok {
			reorderBlock(lambda.Body)
			return false
		}
		return true
	})
}

// IsTypeDef reports whether def defines a type: a class
// (C = Class {...}, D = Inherit C), or a type alias whose
// right-hand side is a type name or refinement.
func IsTypeDef(def *DefStmt) bool {
	if def.Subr {
		return false
	}
	id, ok := def.Pattern.(*Ident)
	if !ok || !IsTypeName(id.Name) || def.Body.Indented || len(def.Body.Stmts) != 1 {
		return false
	}
	es, ok := def.Body.Stmts[0].(*ExprStmt)
	if !ok {
		return false
	}
	switch x := es.X.(type) {
	case *CallExpr:
		_, ok := ClassKind(x)
		return ok
	case *Ident:
		return IsTypeName(x.Name)
	case *RefinementExpr:
		return true
	}
	return false
}

// ClassKind reports whether call constructs a class, and which:
// "Class" or "Inherit".
func ClassKind(call *CallExpr) (string, bool) {
	if fn, ok := call.Fn.(*Ident); ok && (fn.Name == "Class" || fn.Name == "Inherit") {
		return fn.Name, true
	}
	return "", false
}
