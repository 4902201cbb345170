// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "strings"

// Unparse returns source text for a syntax tree. Parsing the result
// yields the same token sequence as the canonical form of the original
// input (comments and insignificant whitespace are not preserved).
func Unparse(n Node) string {
	u := unparser{}
	u.node(n)
	return u.buf.String()
}

type unparser struct {
	buf    strings.Builder
	indent int
}

func (u *unparser) node(n Node) {
	switch n := n.(type) {
	case *File:
		u.stmts(n.Stmts)
	case Stmt:
		u.stmt(n)
	case Expr:
		u.expr(n)
	case *Block:
		u.body(n)
	case *Param:
		u.param(n)
	default:
		panic(n)
	}
}

func (u *unparser) line() {
	u.buf.WriteByte('\n')
	u.buf.WriteString(strings.Repeat("    ", u.indent))
}

func (u *unparser) stmts(stmts []Stmt) {
	for i, stmt := range stmts {
		if i > 0 {
			u.line()
		}
		u.stmt(stmt)
	}
}

func (u *unparser) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *ExprStmt:
		u.expr(s.X)

	case *DeclStmt:
		if s.Public || s.Dot.IsValid() {
			u.buf.WriteByte('.')
		}
		u.buf.WriteString(s.Name.Name)
		u.buf.WriteString(": ")
		u.expr(s.Type)

	case *MethodsStmt:
		u.buf.WriteString(s.Class.Name)
		u.buf.WriteByte('.')
		u.body(s.Body)

	case *DefStmt:
		if s.Public || s.Dot.IsValid() {
			u.buf.WriteByte('.')
		}
		if s.Subr {
			u.buf.WriteString(s.Name.Name)
			if len(s.TypeParams) > 0 {
				u.buf.WriteByte('|')
				for i, tp := range s.TypeParams {
					if i > 0 {
						u.buf.WriteString(", ")
					}
					u.buf.WriteString(tp.Name.Name)
					if tp.Bound != nil {
						u.buf.WriteString(": ")
						u.expr(tp.Bound)
					}
				}
				u.buf.WriteByte('|')
			}
			if s.Lparen.IsValid() {
				u.buf.WriteByte('(')
			} else {
				u.buf.WriteByte(' ')
			}
			for i, param := range s.Params {
				if i > 0 {
					u.buf.WriteString(", ")
				}
				u.param(param)
			}
			if s.Lparen.IsValid() {
				u.buf.WriteByte(')')
			}
		} else {
			u.expr(s.Pattern)
		}
		if s.Type != nil {
			u.buf.WriteString(": ")
			u.expr(s.Type)
		}
		u.buf.WriteString(" =")
		u.body(s.Body)
	}
}

// body writes a definition or lambda body, including the separator
// that follows '=' or the arrow.
func (u *unparser) body(b *Block) {
	if !b.Indented && len(b.Stmts) == 1 {
		u.buf.WriteByte(' ')
		u.stmt(b.Stmts[0])
		return
	}
	u.indent++
	for _, stmt := range b.Stmts {
		u.line()
		u.stmt(stmt)
	}
	u.indent--
	u.line()
}

func (u *unparser) param(p *Param) {
	if p.Star.IsValid() {
		u.buf.WriteByte('*')
	}
	if p.Name != nil {
		u.buf.WriteString(p.Name.Name)
	} else {
		u.expr(p.Pattern)
	}
	if p.Type != nil {
		u.buf.WriteString(": ")
		u.expr(p.Type)
	}
	if p.Default != nil {
		u.buf.WriteString(" := ")
		u.expr(p.Default)
	}
}

func (u *unparser) exprs(list []Expr, sep string) {
	for i, x := range list {
		if i > 0 {
			u.buf.WriteString(sep)
		}
		u.expr(x)
	}
}

func (u *unparser) expr(e Expr) {
	switch x := e.(type) {
	case *Ident:
		u.buf.WriteString(x.Name)

	case *Literal:
		u.buf.WriteString(x.Raw)

	case *ImportExpr:
		if x.Py {
			u.buf.WriteString("pyimport ")
		} else {
			u.buf.WriteString("import ")
		}
		u.buf.WriteString(x.Path.Raw)

	case *CallExpr:
		u.expr(x.Fn)
		if x.Lparen.IsValid() {
			u.buf.WriteByte('(')
			u.exprs(x.Args, ", ")
			u.buf.WriteByte(')')
		} else {
			u.buf.WriteByte(' ')
			u.exprs(x.Args, ", ")
		}

	case *KwArg:
		u.buf.WriteString(x.Name.Name)
		if x.Type != nil {
			u.buf.WriteString(": ")
			u.expr(x.Type)
		}
		u.buf.WriteString(" := ")
		u.expr(x.Value)

	case *DotExpr:
		u.expr(x.X)
		u.buf.WriteByte('.')
		u.buf.WriteString(x.Name.Name)

	case *LambdaExpr:
		if x.Lparen.IsValid() {
			u.buf.WriteByte('(')
		}
		for i, param := range x.Params {
			if i > 0 {
				u.buf.WriteString(", ")
			}
			u.param(param)
		}
		if x.Lparen.IsValid() {
			u.buf.WriteByte(')')
		}
		if x.Proc {
			u.buf.WriteString(" =>")
		} else {
			u.buf.WriteString(" ->")
		}
		u.body(x.Body)

	case *ListExpr:
		u.buf.WriteByte('[')
		u.exprs(x.List, ", ")
		u.buf.WriteByte(']')

	case *ArrayTypeExpr:
		u.buf.WriteByte('[')
		u.expr(x.Elem)
		u.buf.WriteString("; ")
		u.expr(x.Len)
		u.buf.WriteByte(']')

	case *TupleExpr:
		if !x.Lparen.IsValid() {
			u.exprs(x.List, ", ")
			return
		}
		u.buf.WriteByte('(')
		u.exprs(x.List, ", ")
		if len(x.List) == 1 {
			u.buf.WriteByte(',')
		}
		u.buf.WriteByte(')')

	case *ParenExpr:
		u.buf.WriteByte('(')
		u.expr(x.X)
		u.buf.WriteByte(')')

	case *AscribeExpr:
		u.expr(x.X)
		u.buf.WriteString(": ")
		u.expr(x.Type)

	case *RecordExpr:
		u.buf.WriteByte('{')
		for i, field := range x.Fields {
			if i > 0 {
				u.buf.WriteString("; ")
			}
			if field.Dot.IsValid() {
				u.buf.WriteByte('.')
			}
			u.buf.WriteString(field.Name.Name)
			u.buf.WriteString(" = ")
			u.expr(field.Value)
		}
		u.buf.WriteByte('}')

	case *RefinementExpr:
		u.buf.WriteByte('{')
		u.buf.WriteString(x.Var.Name)
		u.buf.WriteString(": ")
		u.expr(x.Base)
		u.buf.WriteString(" | ")
		u.expr(x.Pred)
		u.buf.WriteByte('}')

	case *FuncTypeExpr:
		if x.Lparen.IsValid() {
			u.buf.WriteByte('(')
			u.exprs(x.Params, ", ")
			u.buf.WriteByte(')')
		} else {
			u.exprs(x.Params, ", ")
		}
		if x.Proc {
			u.buf.WriteString(" => ")
		} else {
			u.buf.WriteString(" -> ")
		}
		u.expr(x.Result)

	case *UnaryExpr:
		switch x.Op {
		case NOT:
			u.buf.WriteString("not ")
		default:
			u.buf.WriteString(x.Op.String())
		}
		u.expr(x.X)

	case *BinaryExpr:
		u.expr(x.X)
		u.buf.WriteByte(' ')
		u.buf.WriteString(x.Op.String())
		u.buf.WriteByte(' ')
		u.expr(x.Y)

	default:
		panic(e)
	}
}
