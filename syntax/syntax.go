// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax provides an Erg scanner, parser, abstract syntax tree,
// and the desugaring passes that run before elaboration.
package syntax // import "go.erg.dev/syntax"

// A Node is a node in an Erg syntax tree.
type Node interface {
	// Span returns the start and end position of the expression.
	Span() (start, end Position)
}

// Start returns the start position of the expression.
func Start(n Node) Position {
	start, _ := n.Span()
	return start
}

// End returns the end position of the expression.
func End(n Node) Position {
	_, end := n.Span()
	return end
}

// A File represents an Erg module.
type File struct {
	Path  string
	Stmts []Stmt
}

func (x *File) Span() (start, end Position) {
	if len(x.Stmts) == 0 {
		return
	}
	start, _ = x.Stmts[0].Span()
	_, end = x.Stmts[len(x.Stmts)-1].Span()
	return start, end
}

// A Stmt is an Erg statement.
type Stmt interface {
	Node
	stmt()
}

func (*DefStmt) stmt()     {}
func (*DeclStmt) stmt()    {}
func (*ExprStmt) stmt()    {}
func (*MethodsStmt) stmt() {}

// A DefStmt represents a definition:
//
//	x = 1
//	.x: Int = 1
//	x! = !1
//	f x, y := 1 = x + y
//	f|T|(x: T): T = x
//	(a, b) = t
//
// A subroutine definition has Subr set and a Name; a variable
// definition has a Pattern (an *Ident, *TupleExpr or *ListExpr).
type DefStmt struct {
	Dot        Position // visibility sigil '.'; cleared by Desugar
	Public     bool     // set from Dot by Desugar
	Pattern    Expr     // variable definitions
	Name       *Ident   // subroutine definitions
	TypeParams []*TypeParam
	Subr       bool
	Lparen     Position // valid if the parameters were parenthesized
	Params     []*Param // as written
	Rparen     Position
	Colon      Position
	Type       Expr // optional annotation: variable type or return type
	Eq         Position
	Body       *Block

	// set by Desugar:
	Sig *Signature
}

// Target returns the defined name, or nil for pattern definitions.
func (x *DefStmt) Target() *Ident {
	if x.Subr {
		return x.Name
	}
	id, _ := x.Pattern.(*Ident)
	return id
}

func (x *DefStmt) Span() (start, end Position) {
	if x.Dot.IsValid() {
		start = x.Dot
	} else if x.Subr {
		start = x.Name.NamePos
	} else {
		start, _ = x.Pattern.Span()
	}
	_, end = x.Body.Span()
	return start, end
}

// A TypeParam is a type parameter binder: T or N: Nat.
type TypeParam struct {
	Name  *Ident
	Colon Position
	Bound Expr // optional
}

func (x *TypeParam) Span() (start, end Position) {
	start, end = x.Name.Span()
	if x.Bound != nil {
		_, end = x.Bound.Span()
	}
	return
}

// A Param is a formal parameter:
//
//	x
//	x: T
//	x := default
//	x: T := default
//	*xs
//	(a, b)
type Param struct {
	Star    Position // valid for variadic parameters
	Name    *Ident   // nil for pattern parameters
	Pattern Expr     // *TupleExpr or *ListExpr; replaced by Desugar
	Colon   Position
	Type    Expr // optional
	Walrus  Position
	Default Expr // optional
}

func (x *Param) Span() (start, end Position) {
	switch {
	case x.Star.IsValid():
		start = x.Star
	case x.Name != nil:
		start = x.Name.NamePos
	default:
		start, _ = x.Pattern.Span()
	}
	switch {
	case x.Default != nil:
		_, end = x.Default.Span()
	case x.Type != nil:
		_, end = x.Type.Span()
	case x.Name != nil:
		_, end = x.Name.Span()
	default:
		_, end = x.Pattern.Span()
	}
	return
}

// A Signature is the canonical parameter list computed by Desugar:
// positional parameters, then the variadic parameter, then parameters
// with defaults.
type Signature struct {
	Pos      []*Param
	VarArgs  *Param
	Defaults []*Param
}

// Arity returns the number of parameters without defaults.
func (s *Signature) Arity() int { return len(s.Pos) }

// A DeclStmt declares the type of a name without defining it:
//
//	.sleep!: Float => NoneType
type DeclStmt struct {
	Dot    Position
	Public bool
	Name   *Ident
	Colon  Position
	Type   Expr
}

func (x *DeclStmt) Span() (start, end Position) {
	start = x.Name.NamePos
	if x.Dot.IsValid() {
		start = x.Dot
	}
	_, end = x.Type.Span()
	return start, end
}

// A MethodsStmt attaches method definitions to a class:
//
//	Point.
//	    norm self = self.x * self.x + self.y * self.y
type MethodsStmt struct {
	Class *Ident
	Dot   Position
	Body  *Block // DefStmts and DeclStmts only
}

func (x *MethodsStmt) Span() (start, end Position) {
	_, end = x.Body.Span()
	return x.Class.NamePos, end
}

// An ExprStmt is an expression evaluated for its value or effects.
type ExprStmt struct {
	X Expr
}

func (x *ExprStmt) Span() (start, end Position) {
	return x.X.Span()
}

// A Block is a sequence of statements: either an indented suite or a
// single inline expression. Its value is that of its last statement.
type Block struct {
	Indented bool
	Stmts    []Stmt
}

func (x *Block) Span() (start, end Position) {
	if len(x.Stmts) == 0 {
		return
	}
	start, _ = x.Stmts[0].Span()
	_, end = x.Stmts[len(x.Stmts)-1].Span()
	return
}

// An Expr is an Erg expression.
type Expr interface {
	Node
	expr()
}

func (*AscribeExpr) expr()    {}
func (*ArrayTypeExpr) expr()  {}
func (*BinaryExpr) expr()     {}
func (*CallExpr) expr()       {}
func (*DotExpr) expr()        {}
func (*FuncTypeExpr) expr()   {}
func (*Ident) expr()          {}
func (*ImportExpr) expr()     {}
func (*KwArg) expr()          {}
func (*LambdaExpr) expr()     {}
func (*ListExpr) expr()       {}
func (*Literal) expr()        {}
func (*ParenExpr) expr()      {}
func (*RecordExpr) expr()     {}
func (*RefinementExpr) expr() {}
func (*TupleExpr) expr()      {}
func (*UnaryExpr) expr()      {}

// An Ident represents an identifier. A trailing '!' is part of the name.
type Ident struct {
	NamePos Position
	Name    string
}

func (x *Ident) Span() (start, end Position) {
	return x.NamePos, x.NamePos.add(x.Name)
}

// A Literal represents a literal string or number.
type Literal struct {
	Token    Token // = STRING | INT | FLOAT
	TokenPos Position
	Raw      string      // uninterpreted text
	Value    interface{} // = string | int64 | *big.Int | float64
}

func (x *Literal) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Raw)
}

// A CallExpr represents a function call: Fn(Args) or Fn Args.
// Lparen is invalid for calls without parentheses.
type CallExpr struct {
	Fn     Expr
	Lparen Position
	Args   []Expr // positional args, *KwArg, or UnaryExpr{Op: STAR}
	Rparen Position
}

func (x *CallExpr) Span() (start, end Position) {
	start, _ = x.Fn.Span()
	if x.Lparen.IsValid() {
		return start, x.Rparen.add(")")
	}
	if len(x.Args) == 0 {
		_, end = x.Fn.Span()
		return
	}
	_, end = x.Args[len(x.Args)-1].Span()
	return
}

// A KwArg is a keyword argument: Name := Value.
// In a parameter list it may carry a type: Name: Type := Value.
type KwArg struct {
	Name   *Ident
	Colon  Position
	Type   Expr // optional; parameters only
	Walrus Position
	Value  Expr
}

func (x *KwArg) Span() (start, end Position) {
	_, end = x.Value.Span()
	return x.Name.NamePos, end
}

// A DotExpr represents a field or method selector: X.Name.
// A tuple projection t.0 has a Name consisting of digits.
type DotExpr struct {
	X    Expr
	Dot  Position
	Name *Ident
}

func (x *DotExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Name.Span()
	return
}

// A LambdaExpr represents an anonymous subroutine: x -> e or x => e.
type LambdaExpr struct {
	Lparen Position // valid if the parameters were parenthesized
	Params []*Param
	Rparen Position
	Arrow  Position
	Proc   bool // => rather than ->
	Body   *Block

	// set by Desugar:
	Sig *Signature
}

func (x *LambdaExpr) Span() (start, end Position) {
	switch {
	case x.Lparen.IsValid():
		start = x.Lparen
	case len(x.Params) > 0:
		start, _ = x.Params[0].Span()
	default:
		start = x.Arrow
	}
	_, end = x.Body.Span()
	return
}

// A ListExpr represents an array literal: [ List ].
type ListExpr struct {
	Lbrack Position
	List   []Expr
	Rbrack Position
}

func (x *ListExpr) Span() (start, end Position) {
	return x.Lbrack, x.Rbrack.add("]")
}

// An ArrayTypeExpr is the array type shorthand [Elem; Len].
type ArrayTypeExpr struct {
	Lbrack Position
	Elem   Expr
	Semi   Position
	Len    Expr
	Rbrack Position
}

func (x *ArrayTypeExpr) Span() (start, end Position) {
	return x.Lbrack, x.Rbrack.add("]")
}

// A TupleExpr represents a tuple literal: (List).
type TupleExpr struct {
	Lparen Position // optional (e.g. in x, y = 0, 1), but required if List is empty
	List   []Expr
	Rparen Position
}

func (x *TupleExpr) Span() (start, end Position) {
	if x.Lparen.IsValid() {
		return x.Lparen, x.Rparen.add(")")
	}
	return Start(x.List[0]), End(x.List[len(x.List)-1])
}

// A ParenExpr represents a parenthesized expression: (X).
type ParenExpr struct {
	Lparen Position
	X      Expr
	Rparen Position
}

func (x *ParenExpr) Span() (start, end Position) {
	return x.Lparen, x.Rparen.add(")")
}

// An AscribeExpr is a type ascription X: Type. It appears in
// parameter lists and parenthesized expressions.
type AscribeExpr struct {
	X     Expr
	Colon Position
	Type  Expr
}

func (x *AscribeExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Type.Span()
	return
}

// A RecordExpr is a record literal or record type: {x = 1; y = 2}.
type RecordExpr struct {
	Lbrace Position
	Fields []*RecordField
	Rbrace Position
}

func (x *RecordExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A RecordField is one Name = Value entry of a RecordExpr.
type RecordField struct {
	Dot   Position // visibility sigil
	Name  *Ident
	Eq    Position
	Value Expr
}

func (x *RecordField) Span() (start, end Position) {
	_, end = x.Value.Span()
	return x.Name.NamePos, end
}

// A RefinementExpr is a refinement type {Var: Base | Pred}.
type RefinementExpr struct {
	Lbrace Position
	Var    *Ident
	Colon  Position
	Base   Expr
	Pipe   Position
	Pred   Expr
	Rbrace Position
}

func (x *RefinementExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A FuncTypeExpr is a subroutine type: (A, B) -> R or A => R.
type FuncTypeExpr struct {
	Lparen Position // valid if the parameter types were parenthesized
	Params []Expr
	Rparen Position
	Arrow  Position
	Proc   bool
	Result Expr
}

func (x *FuncTypeExpr) Span() (start, end Position) {
	switch {
	case x.Lparen.IsValid():
		start = x.Lparen
	case len(x.Params) > 0:
		start, _ = x.Params[0].Span()
	default:
		start = x.Arrow
	}
	_, end = x.Result.Span()
	return
}

// An ImportExpr imports a native or Python module:
// import "path" or pyimport "name".
type ImportExpr struct {
	ImportPos Position
	Py        bool
	Path      *Literal // a string
}

func (x *ImportExpr) Span() (start, end Position) {
	_, end = x.Path.Span()
	return x.ImportPos, end
}

// A UnaryExpr represents a unary expression: Op X.
// Op is one of PLUS, MINUS, NOT, BANG (mutable constructor), or
// STAR (argument unpacking).
type UnaryExpr struct {
	OpPos Position
	Op    Token
	X     Expr
}

func (x *UnaryExpr) Span() (start, end Position) {
	_, end = x.X.Span()
	return x.OpPos, end
}

// A BinaryExpr represents a binary expression: X Op Y.
type BinaryExpr struct {
	X     Expr
	OpPos Position
	Op    Token
	Y     Expr
}

func (x *BinaryExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Y.Span()
	return start, end
}
