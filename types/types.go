// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package types defines the Erg type terms, the refinement predicate
// language, and the constraint-based unifier that decides subtyping
// and solves inference variables.
//
// Every composite type is a pointer, so two Types are the same term
// exactly when they compare equal with ==. Structural comparisons are
// made by Subtype and Equal.
package types // import "go.erg.dev/types"

// A Type is an Erg type term.
type Type interface {
	String() string
	typ()
}

func (Prim) typ()        {}
func (*Mono) typ()       {}
func (*Poly) typ()       {}
func (*Record) typ()     {}
func (*Tuple) typ()      {}
func (*Or) typ()         {}
func (*And) typ()        {}
func (*Subr) typ()       {}
func (*Refinement) typ() {}
func (*Var) typ()        {}
func (*Quantified) typ() {}
func (*Module) typ()     {}
func (*ClassType) typ()  {}

// A Prim is a primitive type.
type Prim uint8

const (
	Never Prim = iota // the empty type; a subtype of everything
	Bool
	Nat
	Int
	Float
	Str
	NoneType
	Obj      // the top type
	TypeType // the type of types
	Failure  // placeholder synthesized after an error
)

var primNames = [...]string{
	Never:    "Never",
	Bool:     "Bool",
	Nat:      "Nat",
	Int:      "Int",
	Float:    "Float",
	Str:      "Str",
	NoneType: "NoneType",
	Obj:      "Obj",
	TypeType: "Type",
	Failure:  "?",
}

// Prims lists the primitive types that have names in source programs.
var Prims = []Prim{Never, Bool, Nat, Int, Float, Str, NoneType, Obj, TypeType}

// IsNumeric reports whether t is one of Bool, Nat, Int, or Float.
func (t Prim) IsNumeric() bool { return Bool <= t && t <= Float }

// A Mono is a nominal type: a class or an opaque builtin type.
// Two Monos are the same type only if they are the same pointer.
type Mono struct {
	Name    string
	Path    string // defining module; empty for builtins
	Supers  []Type // declared supertypes, in declaration order
	Mutable bool   // the type of values that may be modified in place
}

// A Poly is an application of a type constructor to type parameters,
// such as Array(Int, 3).
type Poly struct {
	Name   string
	Params []TyParam
}

// A Record is a structural record type {x = Int; y = Int}.
type Record struct {
	Fields []Field
}

// A Field is one named component of a Record.
type Field struct {
	Name   string
	Type   Type
	Public bool
}

// Field returns the type of the named field, or nil.
func (r *Record) Field(name string) Type {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

// A Tuple is a fixed-length heterogeneous product type.
type Tuple struct {
	Elems []Type
}

// An Or is a union type.
type Or struct {
	L, R Type
}

// An And is an intersection type.
type And struct {
	L, R Type
}

// A SubrKind distinguishes functions from procedures.
type SubrKind uint8

const (
	FuncKind SubrKind = iota // free of side effects
	ProcKind                 // may have side effects
)

func (k SubrKind) String() string {
	if k == ProcKind {
		return "proc"
	}
	return "func"
}

// A Subr is the type of a function or procedure. Methods have a
// non-nil Self, the type of the receiver they are bound to.
type Subr struct {
	Kind       SubrKind
	Self       Type
	NonDefault []Param
	VarArgs    *Param
	Default    []Param
	Return     Type
}

// IsProc reports whether s is the type of a procedure.
func (s *Subr) IsProc() bool { return s.Kind == ProcKind }

// DefaultParam returns the default parameter with the given name.
func (s *Subr) DefaultParam(name string) (Param, bool) {
	for _, p := range s.Default {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// A Param is a subroutine parameter. Name is empty for anonymous
// positional parameters.
type Param struct {
	Name string
	Type Type
}

// A Refinement is a base type narrowed by a predicate over a bound
// variable: {Var: Base | Pred}.
type Refinement struct {
	Var  string
	Base Type
	Pred Pred
}

// A Var is an inference variable. Its bounds are the types it has been
// constrained to lie between; it is solved by Resolve.
type Var struct {
	id    int
	level int
	lower []Type
	upper []Type
}

// ID returns the variable's number, unique within its Unifier.
func (v *Var) ID() int { return v.id }

// Lower returns the lower bounds of v.
func (v *Var) Lower() []Type { return v.lower }

// Upper returns the upper bounds of v.
func (v *Var) Upper() []Type { return v.upper }

// A Quantified type is universally quantified over inference
// variables and named type parameters.
type Quantified struct {
	Vars   []*Var
	Params []string // names of value-level parameters, e.g. N
	Body   Type
}

// SubrOf returns the subroutine type t denotes, looking through a
// quantifier. The variables of a quantified body are not instantiated.
func SubrOf(t Type) (*Subr, bool) {
	if q, ok := t.(*Quantified); ok {
		t = q.Body
	}
	s, ok := t.(*Subr)
	return s, ok
}

// A Module is the type of an imported module value.
type Module struct {
	Path string
	Py   bool
}

// A ClassType is the type of a class object. Calling a class
// constructs an instance of Of; Init is the constructor's type.
type ClassType struct {
	Of   *Mono
	Init *Subr
}

// Builtin nominal types.
var (
	IntMut   = &Mono{Name: "Int!", Supers: []Type{Int}, Mutable: true}
	NatMut   = &Mono{Name: "Nat!", Supers: []Type{Nat}, Mutable: true}
	FloatMut = &Mono{Name: "Float!", Supers: []Type{Float}, Mutable: true}
	StrMut   = &Mono{Name: "Str!", Supers: []Type{Str}, Mutable: true}
	BoolMut  = &Mono{Name: "Bool!", Supers: []Type{Bool}, Mutable: true}

	// GenericModule is the supertype of every module type.
	GenericModule = &Mono{Name: "GenericModule"}
)

// MutOf returns the mutable counterpart of t, which must be a
// primitive with one or an already mutable type.
func MutOf(t Type) (Type, bool) {
	switch t {
	case Int:
		return IntMut, true
	case Nat:
		return NatMut, true
	case Float:
		return FloatMut, true
	case Str:
		return StrMut, true
	case Bool:
		return BoolMut, true
	}
	if m, ok := t.(*Mono); ok && m.Mutable {
		return m, true
	}
	return nil, false
}

// IsMutable reports whether values of type t may be modified in place.
func IsMutable(t Type) bool {
	m, ok := t.(*Mono)
	return ok && m.Mutable
}

// IsFailure reports whether t is, or contains, the error placeholder.
func IsFailure(t Type) bool {
	found := false
	visit(t, func(t Type) {
		if t == Failure {
			found = true
		}
	})
	return found
}

// visit calls f for t and each type term structurally within it. It
// does not descend into the bounds of inference variables, nor into
// the supertypes of nominal types.
func visit(t Type, f func(Type)) {
	f(t)
	switch t := t.(type) {
	case *Poly:
		for _, p := range t.Params {
			if tp, ok := p.(TPType); ok {
				visit(tp.T, f)
			}
		}
	case *Record:
		for _, field := range t.Fields {
			visit(field.Type, f)
		}
	case *Tuple:
		for _, e := range t.Elems {
			visit(e, f)
		}
	case *Or:
		visit(t.L, f)
		visit(t.R, f)
	case *And:
		visit(t.L, f)
		visit(t.R, f)
	case *Subr:
		if t.Self != nil {
			visit(t.Self, f)
		}
		for _, p := range t.NonDefault {
			visit(p.Type, f)
		}
		if t.VarArgs != nil {
			visit(t.VarArgs.Type, f)
		}
		for _, p := range t.Default {
			visit(p.Type, f)
		}
		visit(t.Return, f)
	case *Refinement:
		visit(t.Base, f)
	case *Quantified:
		visit(t.Body, f)
	case *ClassType:
		if t.Init != nil {
			visit(t.Init, f)
		}
	}
}

// Map returns a copy of t in which each immediate component type c
// is replaced by f(c). Nominal types and variables are returned as is.
func Map(t Type, f func(Type) Type) Type {
	switch t := t.(type) {
	case *Poly:
		params := make([]TyParam, len(t.Params))
		for i, p := range t.Params {
			if tp, ok := p.(TPType); ok {
				p = TPType{f(tp.T)}
			}
			params[i] = p
		}
		return &Poly{Name: t.Name, Params: params}
	case *Record:
		fields := make([]Field, len(t.Fields))
		for i, field := range t.Fields {
			field.Type = f(field.Type)
			fields[i] = field
		}
		return &Record{Fields: fields}
	case *Tuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = f(e)
		}
		return &Tuple{Elems: elems}
	case *Or:
		return &Or{f(t.L), f(t.R)}
	case *And:
		return &And{f(t.L), f(t.R)}
	case *Subr:
		s := &Subr{Kind: t.Kind, Return: f(t.Return)}
		if t.Self != nil {
			s.Self = f(t.Self)
		}
		s.NonDefault = mapParams(t.NonDefault, f)
		if t.VarArgs != nil {
			s.VarArgs = &Param{Name: t.VarArgs.Name, Type: f(t.VarArgs.Type)}
		}
		s.Default = mapParams(t.Default, f)
		return s
	case *Refinement:
		return &Refinement{Var: t.Var, Base: f(t.Base), Pred: t.Pred}
	case *Quantified:
		return &Quantified{Vars: t.Vars, Params: t.Params, Body: f(t.Body)}
	case *ClassType:
		c := &ClassType{Of: t.Of}
		if t.Init != nil {
			c.Init = f(t.Init).(*Subr)
		}
		return c
	}
	return t
}

func mapParams(params []Param, f func(Type) Type) []Param {
	if params == nil {
		return nil
	}
	out := make([]Param, len(params))
	for i, p := range params {
		out[i] = Param{Name: p.Name, Type: f(p.Type)}
	}
	return out
}
