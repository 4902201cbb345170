// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hir

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"go.erg.dev/syntax"
)

// Fprint writes an indented rendering of the tree rooted at n, one
// node per line, each with its type, such as:
//
//	def f: (i: Int) -> Int
//	  param i: Int
//	  binary +: Int
//	    ident i: Int
//	    literal 1: Nat
func Fprint(w io.Writer, n Node) error {
	p := printer{}
	p.node(n)
	_, err := w.Write(p.buf.Bytes())
	return err
}

// String returns the Fprint rendering of n.
func String(n Node) string {
	p := printer{}
	p.node(n)
	return p.buf.String()
}

type printer struct {
	buf   bytes.Buffer
	depth int
}

func (p *printer) line(format string, args ...interface{}) {
	p.buf.WriteString(strings.Repeat("  ", p.depth))
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *printer) nest(f func()) {
	p.depth++
	f()
	p.depth--
}

func (p *printer) node(n Node) {
	switch n := n.(type) {
	case *Module:
		p.line("module %s", n.Path)
		p.nest(func() {
			for _, s := range n.Stmts {
				p.node(s)
			}
		})

	case *Def:
		kw := "def"
		if n.Reassign {
			kw = "reassign"
		}
		vis := ""
		if n.Public {
			vis = "."
		}
		p.line("%s %s%s: %s", kw, vis, n.Name, n.T)
		p.nest(func() {
			p.params(n.Params)
			p.block(n.Body)
		})

	case *ClassDef:
		head := "class " + n.Name
		if n.Base != nil {
			head += " < " + n.Base.Name
		}
		p.line("%s %s", head, n.Fields)
		p.nest(func() {
			for _, m := range n.Methods {
				p.node(m)
			}
		})

	case *Decl:
		p.line("decl %s: %s", n.Name, n.T)

	case *ExprStmt:
		p.node(n.X)

	case *Block:
		p.block(n)

	case *Param:
		p.param(n)

	case *Ident:
		p.line("ident %s: %s", n.Name, n.T)

	case *Literal:
		p.line("literal %s: %s", n.Raw, n.T)

	case *Call:
		p.line("call: %s", n.T)
		p.nest(func() {
			p.node(n.Fn)
			for _, arg := range n.Args {
				switch {
				case arg.Name != "":
					p.line("kw %s", arg.Name)
					p.nest(func() { p.node(arg.X) })
				case arg.Star:
					p.line("star")
					p.nest(func() { p.node(arg.X) })
				default:
					p.node(arg.X)
				}
			}
		})

	case *Attr:
		p.line("attr .%s: %s", n.Name, n.T)
		p.nest(func() { p.node(n.X) })

	case *Lambda:
		p.line("lambda: %s", n.T)
		p.nest(func() {
			p.params(n.Params)
			p.block(n.Body)
		})

	case *Array:
		p.line("array: %s", n.T)
		p.nest(func() { p.exprs(n.Elems) })

	case *Tuple:
		p.line("tuple: %s", n.T)
		p.nest(func() { p.exprs(n.Elems) })

	case *Record:
		p.line("record: %s", n.T)
		p.nest(func() {
			for _, f := range n.Fields {
				p.line("field %s", f.Name)
				p.nest(func() { p.node(f.X) })
			}
		})

	case *Unary:
		p.line("unary %s: %s", n.Op, n.T)
		p.nest(func() { p.node(n.X) })

	case *Binary:
		p.line("binary %s: %s", n.Op, n.T)
		p.nest(func() {
			p.node(n.X)
			p.node(n.Y)
		})

	case *Import:
		kw := "import"
		if n.Py {
			kw = "pyimport"
		}
		p.line("%s %q: %s", kw, n.Path, n.T)

	case *TypeExpr:
		p.line("type %s", n.Of)

	case *Bad:
		p.line("bad %s: %s", syntax.Unparse(n.Src), n.T)

	default:
		panic(fmt.Sprintf("hir: unexpected node %T", n))
	}
}

func (p *printer) block(b *Block) {
	for _, s := range b.Stmts {
		p.node(s)
	}
}

func (p *printer) exprs(xs []Expr) {
	for _, x := range xs {
		p.node(x)
	}
}

func (p *printer) params(params *Params) {
	if params == nil {
		return
	}
	for _, param := range params.All() {
		p.param(param)
	}
}

func (p *printer) param(param *Param) {
	p.line("param %s: %s", param.Name, param.T)
	if param.Default != nil {
		p.nest(func() { p.node(param.Default) })
	}
}
