// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hir defines the high-level intermediate representation: the
// syntax tree after elaboration, in which every expression carries its
// type and every name carries a reference to its binding.
package hir // import "go.erg.dev/hir"

import (
	"go.erg.dev/env"
	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

// A Node is a node of the HIR.
type Node interface {
	// Position returns the start of the source text of the node.
	Position() syntax.Position
}

// A Module is an elaborated source module.
type Module struct {
	Path  string
	Ctx   *env.Context
	Stmts []Stmt
}

func (m *Module) Position() syntax.Position {
	if len(m.Stmts) == 0 {
		return syntax.Position{}
	}
	return m.Stmts[0].Position()
}

// Var returns the binding denoted by ref.
func (m *Module) Var(ref env.VarRef) *env.VarInfo { return m.Ctx.Arena().Var(ref) }

// A Stmt is an HIR statement.
type Stmt interface {
	Node
	stmt()
}

func (*Def) stmt()      {}
func (*ClassDef) stmt() {}
func (*Decl) stmt()     {}
func (*ExprStmt) stmt() {}

// A Def binds a name to the value of Body. A subroutine definition
// has Params; Ctx is then the Context of its body.
type Def struct {
	Pos      syntax.Position
	Name     string
	Ref      env.VarRef
	Public   bool
	Reassign bool // rebinding of an existing mutable name
	Params   *Params
	Ctx      env.ID
	Body     *Block
	T        types.Type // type of the binding
}

func (d *Def) Position() syntax.Position { return d.Pos }

// IsSubr reports whether d defines a subroutine.
func (d *Def) IsSubr() bool { return d.Params != nil }

// A ClassDef defines a class, C = Class {fields} or D = Inherit C,
// together with its methods.
type ClassDef struct {
	Pos     syntax.Position
	Name    string
	Ref     env.VarRef
	Public  bool
	Class   *types.Mono
	Base    *types.Mono   // for Inherit
	Fields  *types.Record // instance attributes, possibly empty
	Ctx     env.ID        // methods
	Methods []*Def
}

func (d *ClassDef) Position() syntax.Position { return d.Pos }

// A Decl records the declared type of a name defined elsewhere.
type Decl struct {
	Pos    syntax.Position
	Name   string
	Ref    env.VarRef
	Public bool
	T      types.Type
}

func (d *Decl) Position() syntax.Position { return d.Pos }

// An ExprStmt evaluates an expression.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Position() syntax.Position { return s.X.Position() }

// A Block is a sequence of statements whose value is that of the last.
type Block struct {
	Stmts []Stmt
	T     types.Type
}

func (b *Block) Position() syntax.Position {
	if len(b.Stmts) == 0 {
		return syntax.Position{}
	}
	return b.Stmts[0].Position()
}

// Params is the canonical parameter list of a subroutine.
type Params struct {
	Pos      []*Param
	VarArgs  *Param
	Defaults []*Param
}

// All returns the parameters in declaration order.
func (p *Params) All() []*Param {
	all := make([]*Param, 0, len(p.Pos)+len(p.Defaults)+1)
	all = append(all, p.Pos...)
	if p.VarArgs != nil {
		all = append(all, p.VarArgs)
	}
	return append(all, p.Defaults...)
}

// A Param is a formal parameter.
type Param struct {
	Pos     syntax.Position
	Name    string
	Ref     env.VarRef
	T       types.Type
	Default Expr
}

func (p *Param) Position() syntax.Position { return p.Pos }

// An Expr is a typed HIR expression.
type Expr interface {
	Node
	// Type returns the type of the expression.
	Type() types.Type
	typ() *types.Type
}

// An Ident is a use of a binding.
type Ident struct {
	Pos    syntax.Position
	Name   string
	Ref    env.VarRef
	Target string // identifier in emitted Python
	T      types.Type
}

// A Literal is a constant: a Str, Nat, Int or Float.
type Literal struct {
	Pos   syntax.Position
	Token syntax.Token
	Raw   string
	Value interface{}
	T     types.Type
}

// A Call applies Fn to Args.
type Call struct {
	Pos  syntax.Position
	Fn   Expr
	Args []*Arg
	T    types.Type
}

// An Arg is an actual argument. Name is set for keyword arguments.
type Arg struct {
	Name string
	Star bool // *xs
	X    Expr
}

// An Attr selects a method or field of X. Ref is valid for methods
// and class attributes.
type Attr struct {
	Pos    syntax.Position
	X      Expr
	Name   string
	Ref    env.VarRef
	Target string
	T      types.Type
}

// A Lambda is an anonymous subroutine.
type Lambda struct {
	Pos    syntax.Position
	Params *Params
	Proc   bool
	Ctx    env.ID
	Body   *Block
	T      types.Type
}

// An Array is an array literal.
type Array struct {
	Pos   syntax.Position
	Elems []Expr
	T     types.Type
}

// A Tuple is a tuple literal.
type Tuple struct {
	Pos   syntax.Position
	Elems []Expr
	T     types.Type
}

// A Record is a record literal.
type Record struct {
	Pos    syntax.Position
	Fields []*Field
	T      types.Type
}

// A Field is one entry of a Record.
type Field struct {
	Name   string
	Public bool
	X      Expr
}

// A Unary is a unary operation: -x, not x, !x.
type Unary struct {
	Pos syntax.Position
	Op  syntax.Token
	X   Expr
	T   types.Type
}

// A Binary is a binary operation.
type Binary struct {
	Pos syntax.Position
	Op  syntax.Token
	X   Expr
	Y   Expr
	T   types.Type
}

// An Import loads a module.
type Import struct {
	Pos  syntax.Position
	Path string
	Py   bool
	T    types.Type
}

// A TypeExpr is a type used as a value, such as the record type in
// Class {x = Int}. Of is the denoted type; T is Type.
type TypeExpr struct {
	Pos syntax.Position
	Src syntax.Expr
	Of  types.Type
	T   types.Type
}

// A Bad stands for an expression that failed to elaborate.
// Its type is always Failure.
type Bad struct {
	Pos syntax.Position
	Src syntax.Expr
	T   types.Type
}

// NewBad returns a Bad for src.
func NewBad(src syntax.Expr) *Bad {
	return &Bad{Pos: syntax.Start(src), Src: src, T: types.Failure}
}

func (x *Ident) Position() syntax.Position    { return x.Pos }
func (x *Literal) Position() syntax.Position  { return x.Pos }
func (x *Call) Position() syntax.Position     { return x.Pos }
func (x *Attr) Position() syntax.Position     { return x.Pos }
func (x *Lambda) Position() syntax.Position   { return x.Pos }
func (x *Array) Position() syntax.Position    { return x.Pos }
func (x *Tuple) Position() syntax.Position    { return x.Pos }
func (x *Record) Position() syntax.Position   { return x.Pos }
func (x *Unary) Position() syntax.Position    { return x.Pos }
func (x *Binary) Position() syntax.Position   { return x.Pos }
func (x *Import) Position() syntax.Position   { return x.Pos }
func (x *TypeExpr) Position() syntax.Position { return x.Pos }
func (x *Bad) Position() syntax.Position      { return x.Pos }

func (x *Ident) Type() types.Type    { return x.T }
func (x *Literal) Type() types.Type  { return x.T }
func (x *Call) Type() types.Type     { return x.T }
func (x *Attr) Type() types.Type     { return x.T }
func (x *Lambda) Type() types.Type   { return x.T }
func (x *Array) Type() types.Type    { return x.T }
func (x *Tuple) Type() types.Type    { return x.T }
func (x *Record) Type() types.Type   { return x.T }
func (x *Unary) Type() types.Type    { return x.T }
func (x *Binary) Type() types.Type   { return x.T }
func (x *Import) Type() types.Type   { return x.T }
func (x *TypeExpr) Type() types.Type { return x.T }
func (x *Bad) Type() types.Type      { return x.T }

func (x *Ident) typ() *types.Type    { return &x.T }
func (x *Literal) typ() *types.Type  { return &x.T }
func (x *Call) typ() *types.Type     { return &x.T }
func (x *Attr) typ() *types.Type     { return &x.T }
func (x *Lambda) typ() *types.Type   { return &x.T }
func (x *Array) typ() *types.Type    { return &x.T }
func (x *Tuple) typ() *types.Type    { return &x.T }
func (x *Record) typ() *types.Type   { return &x.T }
func (x *Unary) typ() *types.Type    { return &x.T }
func (x *Binary) typ() *types.Type   { return &x.T }
func (x *Import) typ() *types.Type   { return &x.T }
func (x *TypeExpr) typ() *types.Type { return &x.T }
func (x *Bad) typ() *types.Type      { return &x.T }

// RefT returns the type of the value e denotes. For a reference to a
// polymorphic binding this is the instance at the point of use.
func RefT(e Expr) types.Type {
	return e.Type()
}

// SignatureT returns the subroutine type of a subroutine definition,
// lambda, or subroutine-valued reference, or nil.
func SignatureT(n Node) *types.Subr {
	var t types.Type
	switch n := n.(type) {
	case *Def:
		t = n.T
	case Expr:
		t = n.Type()
	default:
		return nil
	}
	s, _ := types.SubrOf(t)
	return s
}

// LHST returns the type of the left operand of a binary operation, or
// of the first argument of a call with two arguments. The caller must
// ensure that e has that shape; LHST panics otherwise.
func LHST(e Expr) types.Type {
	switch e := e.(type) {
	case *Binary:
		return e.X.Type()
	case *Call:
		if len(e.Args) == 2 {
			return e.Args[0].X.Type()
		}
	}
	panic("hir.LHST: not a binary operation")
}

// RHST is like LHST for the right operand.
func RHST(e Expr) types.Type {
	switch e := e.(type) {
	case *Binary:
		return e.Y.Type()
	case *Call:
		if len(e.Args) == 2 {
			return e.Args[1].X.Type()
		}
	}
	panic("hir.RHST: not a binary operation")
}

// Retype replaces the type of every expression, definition and
// parameter in the tree rooted at n by f of it.
func Retype(n Node, f func(types.Type) types.Type) {
	Walk(n, func(n Node) bool {
		switch n := n.(type) {
		case Expr:
			p := n.typ()
			*p = f(*p)
		case *Def:
			n.T = f(n.T)
		case *Decl:
			n.T = f(n.T)
		case *Param:
			n.T = f(n.T)
		case *Block:
			if n.T != nil {
				n.T = f(n.T)
			}
		}
		return true
	})
}

// SetType replaces the type of e.
func SetType(e Expr, t types.Type) { *e.typ() = t }

// Poison replaces the type of e by Failure, after an error has been
// reported at e.
func Poison(e Expr) { SetType(e, types.Failure) }
