// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elab

// This file elaborates definitions: variables, subroutines, classes
// and their methods, type aliases, and declarations.

import (
	"strings"

	"github.com/pkg/errors"

	"go.erg.dev/diag"
	"go.erg.dev/env"
	"go.erg.dev/hir"
	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

func visibility(public bool) syntax.Visibility {
	if public {
		return syntax.Public
	}
	return syntax.Private
}

// register adds v to scope, reporting a conflicting definition.
func (el *elaborator) register(scope *env.Context, v *env.VarInfo) *env.VarInfo {
	out, err := scope.Register(v)
	if err != nil {
		el.registerError(err, v.Name, v.Def)
		return nil
	}
	return out
}

func (el *elaborator) registerError(err error, name string, pos syntax.Position) {
	var dup *env.DuplicateError
	if !errors.As(err, &dup) {
		el.internal(pos, err)
		return
	}
	if dup.Prev.Mutability == syntax.Immutable && dup.Prev.Kind != env.Param {
		d := el.errorf(diag.OwnershipViolation, pos, "cannot reassign immutable binding %s", name)
		if dup.Prev.Def.IsValid() {
			d.WithSub("%s was defined at %s", name, dup.Prev.Def)
		}
		return
	}
	el.errorf(diag.NameError, pos, "%v", err)
}

// isProcedural reports whether values of type t may only be bound to
// names carrying the '!' sigil: procedures and mutable values.
func isProcedural(t types.Type) bool {
	switch t := t.(type) {
	case *types.Subr:
		return t.IsProc()
	case *types.Quantified:
		return isProcedural(t.Body)
	}
	return types.IsMutable(t)
}

// lastExpr returns the expression giving the value of b, or nil.
func lastExpr(b *hir.Block) hir.Expr {
	if len(b.Stmts) == 0 {
		return nil
	}
	if es, ok := b.Stmts[len(b.Stmts)-1].(*hir.ExprStmt); ok {
		return es.X
	}
	return nil
}

func (el *elaborator) varDef(d *syntax.DefStmt) hir.Stmt {
	id, ok := d.Pattern.(*syntax.Ident)
	if !ok {
		el.internal(syntax.Start(d), errors.Errorf("pattern definition %s survived desugaring", syntax.Unparse(d.Pattern)))
		return nil
	}
	name := id.Name
	var want types.Type
	if d.Type != nil {
		want = el.evalType(d.Type)
	}

	if prev, ok := el.scope.LookupLocal(name); ok {
		return el.redefine(d, id, prev, want)
	}

	el.u.Enter()
	body := el.block(d.Body, want)
	el.u.Leave()
	t := body.T
	if want != nil {
		t = want
	}
	if syntax.IsProcedural(name) {
		if rt := el.u.Resolve(t); !types.IsFailure(rt) && !isProcedural(rt) {
			el.errorf(diag.EffectMismatch, id.NamePos, "%s must be bound to a procedure or a mutable value, found %s", name, rt)
		}
	} else if _, ok := el.u.Resolve(t).(*types.Subr); ok {
		t = el.u.Generalize(t)
	} else {
		// Only subroutines are polymorphic; a value has the solution
		// of its constraints.
		t = el.u.Resolve(t)
	}

	kind, impl := env.Defined, env.ID(0)
	switch x := lastExpr(body).(type) {
	case *hir.Ident:
		kind = env.Alias
	case *hir.Import:
		kind = env.Import
		if mt, ok := x.T.(*types.Module); ok {
			if c, ok := el.arena.LookupModule(mt.Path, mt.Py); ok {
				impl = c.ID
			}
		}
	}
	v := el.register(el.scope, &env.VarInfo{
		Name:       name,
		Type:       t,
		Mutability: syntax.MutabilityOf(name),
		Visibility: visibility(d.Public),
		Kind:       kind,
		Def:        id.NamePos,
		Impl:       impl,
	})
	def := &hir.Def{Pos: id.NamePos, Name: name, Public: d.Public, Body: body, T: t}
	if v != nil {
		def.Ref = v.Ref
	}
	return def
}

// redefine elaborates a definition of a name already bound in the
// current scope: the definition of a declared name, or the
// reassignment of a mutable one.
func (el *elaborator) redefine(d *syntax.DefStmt, id *syntax.Ident, prev *env.VarInfo, want types.Type) hir.Stmt {
	def := &hir.Def{Pos: id.NamePos, Name: id.Name, Ref: prev.Ref, Public: prev.Public(), T: prev.Type}
	switch {
	case prev.Kind == env.Declared:
		if want != nil {
			el.subtype(want, prev.Type, id.NamePos)
		}
		def.Body = el.block(d.Body, prev.Type)
		if err := el.scope.Update(prev, prev.Type, id.NamePos); err != nil {
			el.internal(id.NamePos, err)
		}

	case prev.Mutability == syntax.Immutable:
		el.registerError(&env.DuplicateError{Name: id.Name, Prev: prev}, id.Name, id.NamePos)
		def.Reassign = true
		def.Body = el.block(d.Body, nil)
		def.T = types.Failure

	default:
		// x! = e stores e in the existing cell; e has the immutable
		// counterpart of the cell's type.
		target := prev.Type
		if m, ok := target.(*types.Mono); ok && m.Mutable && len(m.Supers) > 0 {
			target = m.Supers[0]
		}
		if want != nil {
			el.subtype(want, target, id.NamePos)
		}
		def.Reassign = true
		def.Body = el.block(d.Body, target)
	}
	return def
}

// A pendingSubr is a subroutine whose signature has been registered
// but whose body has not yet been elaborated.
type pendingSubr struct {
	def     *syntax.DefStmt
	scope   *env.Context // where the subroutine is bound
	ctx     *env.Context // its body
	v       *env.VarInfo // nil if registration failed
	params  *hir.Params
	sig     *types.Subr
	tparams []string
}

// subrDef elaborates a subroutine definition. The binding is visible
// within the body for recursion, with the monomorphic signature.
func (el *elaborator) subrDef(d *syntax.DefStmt) hir.Stmt {
	el.u.Enter()
	p := el.declareSubr(d, el.scope, nil)
	def := el.defineSubr(p)
	el.u.Leave()
	el.publish(p, def)
	return def
}

// declareSubr computes the signature of d and binds it in scope. For
// methods, self is the class; a first parameter named self then has
// the instance type and is not part of the signature.
func (el *elaborator) declareSubr(d *syntax.DefStmt, scope *env.Context, self *types.Mono) *pendingSubr {
	name := d.Name.Name
	kind := env.Subr
	if self != nil {
		kind = env.Method
	}
	ctx, leave := el.enter(name, kind, scope)
	defer leave()

	p := &pendingSubr{def: d, scope: scope, ctx: ctx}
	p.tparams = el.typeParams(d.TypeParams)

	sig := d.Sig
	if sig == nil {
		sig = &syntax.Signature{Pos: d.Params}
	}
	var selfParam *hir.Param
	if self != nil && len(sig.Pos) > 0 && sig.Pos[0].Name != nil && sig.Pos[0].Name.Name == "self" {
		selfParam = el.param(sig.Pos[0], self, true)
		rest := *sig
		rest.Pos = sig.Pos[1:]
		sig = &rest
	}
	params, s := el.params(sig, scope, nil)
	if selfParam != nil {
		params.Pos = append([]*hir.Param{selfParam}, params.Pos...)
		s.Self = self
	}
	p.params = params

	if syntax.IsProcedural(name) {
		s.Kind = types.ProcKind
	}
	if d.Type != nil {
		s.Return = el.evalType(d.Type)
	} else {
		s.Return = el.u.Fresh()
	}
	p.sig = s

	p.v = el.register(scope, &env.VarInfo{
		Name:       name,
		Type:       s,
		Mutability: syntax.MutabilityOf(name),
		Visibility: visibility(d.Public),
		Kind:       env.Defined,
		Def:        d.Name.NamePos,
	})
	return p
}

// defineSubr elaborates the body of p against its return type.
func (el *elaborator) defineSubr(p *pendingSubr) *hir.Def {
	outer := el.scope
	el.scope = p.ctx
	body := el.block(p.def.Body, p.sig.Return)
	el.scope = outer

	def := &hir.Def{
		Pos:    p.def.Name.NamePos,
		Name:   p.def.Name.Name,
		Public: p.def.Public,
		Params: p.params,
		Ctx:    p.ctx.ID,
		Body:   body,
		T:      p.sig,
	}
	if p.v != nil {
		def.Ref = p.v.Ref
	}
	return def
}

// publish generalizes the signature of p, once the level of its
// definition has been left, and updates its binding.
func (el *elaborator) publish(p *pendingSubr, def *hir.Def) {
	t := el.u.Generalize(p.sig)
	if len(p.tparams) > 0 {
		if q, ok := t.(*types.Quantified); ok {
			q.Params = p.tparams
		} else {
			t = &types.Quantified{Params: p.tparams, Body: t}
		}
	}
	def.T = t
	if p.v != nil {
		if err := p.scope.Update(p.v, t, p.v.Def); err != nil {
			el.internal(p.v.Def, err)
		}
	}
}

// typeParams binds the type parameters of a subroutine in the current
// scope. A parameter bounded by an integer type, as in |N: Nat|, is a
// value parameter; its name is returned. Other parameters are type
// variables.
func (el *elaborator) typeParams(tps []*syntax.TypeParam) []string {
	var values []string
	for _, tp := range tps {
		name, pos := tp.Name.Name, tp.Name.NamePos
		var bound types.Type
		if tp.Bound != nil {
			bound = el.evalType(tp.Bound)
		}
		if bound != nil && !types.IsFailure(bound) && types.Subtype(bound, types.Int) {
			el.register(el.scope, &env.VarInfo{Name: name, Type: bound, Kind: env.Param, Def: pos})
			values = append(values, name)
			continue
		}
		v := el.u.Fresh()
		if bound != nil {
			el.subtype(v, bound, pos)
		}
		if _, err := el.scope.RegisterType(name, v, 0, syntax.Immutable, syntax.Private, pos); err != nil {
			el.registerError(err, name, pos)
		}
	}
	return values
}

// params elaborates a parameter list. Parameter types are taken from
// annotations, then from the expected signature, if any; otherwise
// they are fresh variables. Defaults are elaborated in outer.
func (el *elaborator) params(sig *syntax.Signature, outer *env.Context, expected *types.Subr) (*hir.Params, *types.Subr) {
	hp := new(hir.Params)
	s := new(types.Subr)
	for i, p := range sig.Pos {
		var hint types.Type
		if expected != nil && i < len(expected.NonDefault) {
			hint = expected.NonDefault[i].Type
		}
		x := el.param(p, hint, false)
		hp.Pos = append(hp.Pos, x)
		s.NonDefault = append(s.NonDefault, types.Kw(x.Name, x.T))
	}
	if p := sig.VarArgs; p != nil {
		var hint types.Type
		if expected != nil && expected.VarArgs != nil {
			hint = expected.VarArgs.Type
		}
		x := el.param(p, hint, false)
		hp.VarArgs = x
		s.VarArgs = &types.Param{Name: x.Name, Type: x.T}
	}
	for _, p := range sig.Defaults {
		var want types.Type
		if p.Type != nil {
			want = el.evalType(p.Type)
		} else if expected != nil {
			if dp, ok := expected.DefaultParam(p.Name.Name); ok {
				want = dp.Type
			}
		}
		inner := el.scope
		el.scope = outer
		dflt := el.expr(p.Default, want)
		el.scope = inner
		if want == nil {
			want = dflt.Type()
		}
		x := el.bindParam(p, want)
		x.Default = dflt
		hp.Defaults = append(hp.Defaults, x)
		s.Default = append(s.Default, types.Kw(x.Name, x.T))
	}
	return hp, s
}

// param binds a parameter without default. If fixed, its type is hint
// regardless of any annotation.
func (el *elaborator) param(p *syntax.Param, hint types.Type, fixed bool) *hir.Param {
	var t types.Type
	switch {
	case fixed:
		t = hint
	case p.Type != nil:
		t = el.evalType(p.Type)
	case hint != nil:
		t = hint
	default:
		t = el.u.Fresh()
	}
	return el.bindParam(p, t)
}

func (el *elaborator) bindParam(p *syntax.Param, t types.Type) *hir.Param {
	name, pos := p.Name.Name, p.Name.NamePos
	bt := t
	if p.Star.IsValid() {
		bt = types.ArrayT(t, types.Erased) // *xs is an array within the body
	}
	x := &hir.Param{Pos: pos, Name: name, T: t}
	v, err := el.scope.Register(&env.VarInfo{
		Name:       name,
		Type:       bt,
		Mutability: syntax.MutabilityOf(name),
		Kind:       env.Param,
		Def:        pos,
	})
	if err != nil {
		el.errorf(diag.NameError, pos, "duplicate parameter %s", name)
		return x
	}
	x.Ref = v.Ref
	return x
}

// typeDef elaborates a class definition or a type alias.
func (el *elaborator) typeDef(d *syntax.DefStmt) hir.Stmt {
	id := d.Pattern.(*syntax.Ident)
	rhs := d.Body.Stmts[0].(*syntax.ExprStmt).X
	if call, ok := rhs.(*syntax.CallExpr); ok {
		kind, _ := syntax.ClassKind(call)
		return el.classDef(d, id, kind, call)
	}

	t := el.evalType(rhs)
	v, err := el.scope.RegisterType(id.Name, t, 0, syntax.Immutable, visibility(d.Public), id.NamePos)
	if err != nil {
		el.registerError(err, id.Name, id.NamePos)
	}
	x := &hir.TypeExpr{Pos: syntax.Start(rhs), Src: rhs, Of: t, T: types.TypeType}
	def := &hir.Def{
		Pos:    id.NamePos,
		Name:   id.Name,
		Public: d.Public,
		Body:   &hir.Block{Stmts: []hir.Stmt{&hir.ExprStmt{X: x}}, T: types.TypeType},
		T:      types.TypeType,
	}
	if v != nil {
		def.Ref = v.Ref
		def.T = v.Type
		x.T = v.Type
		// An alias of a class can construct its instances.
		if src, ok := rhs.(*syntax.Ident); ok {
			if sv, ok := el.scope.Lookup(src.Name); ok {
				if ct, ok := sv.Type.(*types.ClassType); ok && ct.Init != nil {
					env.SetInit(v, ct.Init)
					def.T = v.Type
				}
			}
		}
	}
	return def
}

// classDef elaborates C = Class {fields} or D = Inherit C.
func (el *elaborator) classDef(d *syntax.DefStmt, id *syntax.Ident, kind string, call *syntax.CallExpr) hir.Stmt {
	pos := syntax.Start(call)
	fields := new(types.Record)
	var (
		base     *types.Mono
		baseInit *types.Subr
	)
	switch kind {
	case "Class":
		switch len(call.Args) {
		case 0:
		case 1:
			t := el.evalType(call.Args[0])
			if r, ok := t.(*types.Record); ok {
				fields = r
			} else if !types.IsFailure(t) {
				el.errorf(diag.TypeMismatch, syntax.Start(call.Args[0]), "Class requires a record type, found %s", t)
			}
		default:
			el.errorf(diag.TypeMismatch, pos, "Class takes at most 1 argument, got %d", len(call.Args))
		}
	case "Inherit":
		if len(call.Args) != 1 {
			el.errorf(diag.TypeMismatch, pos, "Inherit takes exactly 1 argument, got %d", len(call.Args))
			break
		}
		x := el.expr(call.Args[0], nil)
		switch t := x.Type().(type) {
		case *types.ClassType:
			base, baseInit = t.Of, t.Init
		default:
			if !types.IsFailure(t) {
				el.errorf(diag.TypeMismatch, x.Position(), "cannot inherit from a value of type %s", t)
			}
		}
	}

	var supers []types.Type
	if base != nil {
		supers = []types.Type{base}
	}
	m, body, err := el.scope.MonoClass(id.Name, supers, nil, len(fields.Fields)+4, visibility(d.Public), id.NamePos)
	if err != nil {
		el.registerError(err, id.Name, id.NamePos)
		return nil
	}
	for _, f := range fields.Fields {
		el.register(body, &env.VarInfo{
			Name:       f.Name,
			Type:       f.Type,
			Mutability: syntax.MutabilityOf(f.Name),
			Visibility: visibility(f.Public),
			Kind:       env.Field,
			Def:        id.NamePos,
		})
	}

	var init *types.Subr
	switch {
	case baseInit != nil:
		c := *baseInit
		c.Return = m
		init = &c
	case len(fields.Fields) > 0:
		init = types.Func1(fields, m)
	default:
		init = types.Func0(m)
	}
	v, _ := el.scope.LookupLocal(id.Name)
	env.SetInit(v, init)

	cd := &hir.ClassDef{
		Pos:    id.NamePos,
		Name:   id.Name,
		Ref:    v.Ref,
		Public: d.Public,
		Class:  m,
		Base:   base,
		Fields: fields,
		Ctx:    body.ID,
	}
	el.classes[id.Name] = cd
	return cd
}

// methods elaborates a method block, attaching its definitions to the
// class. Every signature is registered before any body is elaborated,
// so methods may call each other.
func (el *elaborator) methods(s *syntax.MethodsStmt) {
	cd := el.classes[s.Class.Name]
	if cd == nil {
		if _, ok := el.scope.Lookup(s.Class.Name); ok {
			el.errorf(diag.NameError, s.Class.NamePos, "methods of %s must be defined in the module that defines it", s.Class.Name)
		} else {
			el.undefined(s.Class)
		}
		return
	}
	body := el.arena.Get(cd.Ctx)

	outer := el.scope
	var pending []*pendingSubr
	el.u.Enter()
	for _, stmt := range s.Body.Stmts {
		switch d := stmt.(type) {
		case *syntax.DefStmt:
			if d.Subr {
				pending = append(pending, el.declareSubr(d, body, cd.Class))
				continue
			}
			// class attribute
			el.scope = body
			if def, ok := el.varDef(d).(*hir.Def); ok {
				cd.Methods = append(cd.Methods, def)
			}
			el.scope = outer
		case *syntax.DeclStmt:
			el.scope = body
			el.decl(d)
			el.scope = outer
		default:
			el.errorf(diag.NameError, syntax.Start(stmt), "a method block may contain only definitions")
		}
	}
	defs := make([]*hir.Def, len(pending))
	for i, p := range pending {
		defs[i] = el.defineSubr(p)
	}
	el.u.Leave()
	for i, p := range pending {
		el.publish(p, defs[i])
	}
	cd.Methods = append(cd.Methods, defs...)
}

// decl elaborates a declaration name: T. In a Python module stub the
// binding is implemented by the Python symbol without the '!' sigil.
func (el *elaborator) decl(s *syntax.DeclStmt) hir.Stmt {
	name, pos := s.Name.Name, s.Name.NamePos
	t := el.evalType(s.Type)
	v := &env.VarInfo{
		Name:       name,
		Type:       t,
		Mutability: syntax.MutabilityOf(name),
		Visibility: visibility(s.Public),
		Kind:       env.Declared,
		Def:        pos,
	}
	if el.mod.Kind == env.PyModule {
		v.PyName = strings.TrimSuffix(name, "!")
	}
	d := &hir.Decl{Pos: pos, Name: name, Public: s.Public, T: t}
	if v = el.register(el.scope, v); v != nil {
		d.Ref = v.Ref
	}
	return d
}
