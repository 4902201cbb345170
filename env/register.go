// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package env

import (
	"fmt"

	"github.com/pkg/errors"

	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

// ErrFrozen is returned when registering a binding in a frozen Context.
var ErrFrozen = errors.New("context is frozen")

// A DuplicateError reports a definition that conflicts with an
// existing binding of the same name in the same Context.
type DuplicateError struct {
	Name string
	Prev *VarInfo
}

func (e *DuplicateError) Error() string {
	if e.Prev.Def.IsValid() {
		return fmt.Sprintf("%s is already defined at %s", e.Name, e.Prev.Def)
	}
	return fmt.Sprintf("%s is already defined", e.Name)
}

// RegisterImpl adds a binding to c. A second binding of the same name
// is accepted only as an overload: both must be subroutines, and their
// signatures must differ.
func (c *Context) RegisterImpl(name string, t types.Type, mut syntax.Mutability, vis syntax.Visibility, pos syntax.Position) (*VarInfo, error) {
	return c.register(&VarInfo{
		Name:       name,
		Type:       t,
		Mutability: mut,
		Visibility: vis,
		Kind:       Defined,
		Def:        pos,
	})
}

// Register adds a fully described binding to c, subject to the same
// rules as RegisterImpl.
func (c *Context) Register(v *VarInfo) (*VarInfo, error) { return c.register(v) }

// RegisterBuiltinImpl adds a compiler-provided binding. It panics on
// conflict, since builtin tables are fixed.
func (c *Context) RegisterBuiltinImpl(name string, t types.Type, mut syntax.Mutability, vis syntax.Visibility) *VarInfo {
	return c.RegisterBuiltinPyImpl(name, t, mut, vis, "")
}

// RegisterBuiltinPyImpl is like RegisterBuiltinImpl, but records the
// Python symbol that implements the binding.
func (c *Context) RegisterBuiltinPyImpl(name string, t types.Type, mut syntax.Mutability, vis syntax.Visibility, pyName string) *VarInfo {
	if pyName == name {
		pyName = ""
	}
	v, err := c.register(&VarInfo{
		Name:       name,
		Type:       t,
		Mutability: mut,
		Visibility: vis,
		Kind:       Builtin,
		PyName:     pyName,
	})
	if err != nil {
		panic(errors.Wrapf(err, "builtin %s.%s", c.Name, name))
	}
	return v
}

func (c *Context) register(v *VarInfo) (*VarInfo, error) {
	if c.frozen {
		return nil, errors.Wrapf(ErrFrozen, "register %s in %s", v.Name, c.Name)
	}
	for _, i := range c.names[v.Name] {
		prev := c.vars[i]
		if !overloadable(prev.Type, v.Type) {
			return nil, &DuplicateError{Name: v.Name, Prev: prev}
		}
	}
	v.Ref = VarRef{Ctx: c.ID, Index: len(c.vars)}
	c.names[v.Name] = append(c.names[v.Name], len(c.vars))
	c.vars = append(c.vars, v)
	return v, nil
}

// overloadable reports whether subroutines of types x and y may share
// a name. Generalized signatures are compared up to their variables.
func overloadable(x, y types.Type) bool {
	_, ok1 := types.SubrOf(x)
	_, ok2 := types.SubrOf(y)
	return ok1 && ok2 && !types.Equal(x, y)
}

// Update replaces the type of an existing binding, as when a mutable
// binding is reassigned or a forward declaration is defined.
func (c *Context) Update(v *VarInfo, t types.Type, pos syntax.Position) error {
	if c.frozen {
		return errors.Wrapf(ErrFrozen, "update %s in %s", v.Name, c.Name)
	}
	if v.Ref.Ctx != c.ID {
		return errors.Errorf("%s is not bound in %s", v.Name, c.Name)
	}
	v.Type = t
	if v.Kind == Declared {
		v.Kind = Defined
		v.Def = pos
	}
	return nil
}

// RegisterType adds the nominal or aliased type t to c under its name,
// with the methods of t held by body (which may be zero). The binding
// of the name has type Type(t) for classes, and Type otherwise.
func (c *Context) RegisterType(name string, t types.Type, body ID, mut syntax.Mutability, vis syntax.Visibility, pos syntax.Position) (*VarInfo, error) {
	if c.types == nil {
		c.types = make(map[string]types.Type)
	}
	if _, ok := c.types[name]; ok {
		return nil, &DuplicateError{Name: name, Prev: c.vars[c.names[name][0]]}
	}
	var vt types.Type = types.TypeType
	if m, ok := t.(*types.Mono); ok {
		vt = &types.ClassType{Of: m}
	}
	v, err := c.register(&VarInfo{
		Name:       name,
		Type:       vt,
		Mutability: mut,
		Visibility: vis,
		Kind:       Defined,
		Def:        pos,
		Impl:       body,
	})
	if err != nil {
		return nil, err
	}
	c.types[name] = t
	if body.IsValid() {
		c.arena.setImpl(t, body)
	}
	return v, nil
}

// SetInit records the constructor type of a class binding.
func SetInit(v *VarInfo, init *types.Subr) {
	if ct, ok := v.Type.(*types.ClassType); ok {
		v.Type = &types.ClassType{Of: ct.Of, Init: init}
	}
}

// MonoClass defines a nominal class in c with the given supertypes and
// traits, returning the class type and the Context for its methods.
func (c *Context) MonoClass(name string, supers, traits []types.Type, methods int, vis syntax.Visibility, pos syntax.Position) (*types.Mono, *Context, error) {
	all := make([]types.Type, 0, len(supers)+len(traits))
	all = append(append(all, supers...), traits...)
	t := types.MonoT(name, c.Path, all...)
	body := c.arena.New(name, Class, c.ID, methods)
	body.Path = c.Path
	if _, err := c.RegisterType(name, t, body.ID, syntax.Immutable, vis, pos); err != nil {
		return nil, nil, err
	}
	return t, body, nil
}

// builtinClass is MonoClass for builtin tables, registering the class
// and its Python name.
func (c *Context) builtinClass(name, pyName string, methods int, supers ...types.Type) (*types.Mono, *Context) {
	t, body, err := c.MonoClass(name, supers, nil, methods, syntax.Public, syntax.Position{})
	if err != nil {
		panic(errors.Wrapf(err, "builtin class %s", name))
	}
	v, _ := c.LookupLocal(name)
	v.Kind = Builtin
	if pyName != name {
		v.PyName = pyName
	}
	return t, body
}

// builtinImpl returns a Context for the methods of a builtin type.
func (c *Context) builtinImpl(t types.Type, methods int) *Context {
	body := c.arena.New(t.String(), Class, c.ID, methods)
	c.arena.setImpl(t, body.ID)
	return body
}
