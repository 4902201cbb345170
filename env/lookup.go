// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package env

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"go.erg.dev/internal/spell"
	"go.erg.dev/types"
)

// LookupLocal returns the most recent binding of name in c itself.
func (c *Context) LookupLocal(name string) (*VarInfo, bool) {
	idx := c.names[name]
	if len(idx) == 0 {
		return nil, false
	}
	return c.vars[idx[len(idx)-1]], true
}

// Lookup searches c, then its enclosing Contexts, then the universe.
// The innermost binding wins.
func (c *Context) Lookup(name string) (*VarInfo, bool) {
	for ctx := c; ctx != nil; ctx = ctx.ParentContext() {
		if ctx.Kind == Class && ctx != c {
			continue // class members are reached through self
		}
		if v, ok := ctx.LookupLocal(name); ok {
			return v, true
		}
	}
	return nil, false
}

// LookupOverloads returns every subroutine binding of name visible from
// c, innermost first. An inner binding that is not a subroutine hides
// all outer bindings, and so does an inner overload with the same
// signature as an outer one.
func (c *Context) LookupOverloads(name string) []*VarInfo {
	var out []*VarInfo
	for ctx := c; ctx != nil; ctx = ctx.ParentContext() {
		if ctx.Kind == Class && ctx != c {
			continue
		}
		for _, i := range ctx.names[name] {
			v := ctx.vars[i]
			if _, ok := types.SubrOf(v.Type); !ok {
				if len(out) == 0 {
					return []*VarInfo{v}
				}
				return out
			}
			if !hidden(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}

func hidden(inner []*VarInfo, v *VarInfo) bool {
	for _, w := range inner {
		if types.Equal(w.Type, v.Type) {
			return true
		}
	}
	return false
}

// LookupType returns the type named name visible from c.
func (c *Context) LookupType(name string) (types.Type, bool) {
	for ctx := c; ctx != nil; ctx = ctx.ParentContext() {
		if t, ok := ctx.types[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Names returns the names visible from c, sorted.
func (c *Context) Names() []string {
	seen := make(map[string]bool)
	for ctx := c; ctx != nil; ctx = ctx.ParentContext() {
		for _, name := range maps.Keys(ctx.names) {
			seen[name] = true
		}
	}
	names := maps.Keys(seen)
	sort.Strings(names)
	return names
}

// Suggest returns the visible name closest in spelling to name, or "".
func (c *Context) Suggest(name string) string {
	return spell.Nearest(name, c.Names())
}

// An AmbiguousError reports a call that several overloads match
// equally well.
type AmbiguousError struct {
	Name       string
	Candidates []*VarInfo
}

func (e *AmbiguousError) Error() string {
	var sigs []string
	for _, v := range e.Candidates {
		sigs = append(sigs, v.Type.String())
	}
	return fmt.Sprintf("ambiguous call of %s: candidates are %s", e.Name, strings.Join(sigs, ", "))
}

// A NoMatchError reports a call that no overload accepts.
type NoMatchError struct {
	Name       string
	Candidates []*VarInfo
}

func (e *NoMatchError) Error() string {
	var sigs []string
	for _, v := range e.Candidates {
		sigs = append(sigs, v.Type.String())
	}
	return fmt.Sprintf("no overload of %s accepts these arguments: candidates are %s", e.Name, strings.Join(sigs, ", "))
}

// SelectOverload returns the most specific of the candidates that
// accepts a call, as reported by applicable. A candidate is more
// specific than another if each of its positional parameter types is
// a subtype of the other's. The candidates are ordered innermost
// first, as by LookupOverloads; a tie between scopes goes to the
// innermost.
func SelectOverload(name string, cands []*VarInfo, applicable func(*VarInfo) bool) (*VarInfo, error) {
	var ok []*VarInfo
	for _, v := range cands {
		if applicable(v) {
			ok = append(ok, v)
		}
	}
	switch len(ok) {
	case 0:
		return nil, &NoMatchError{Name: name, Candidates: cands}
	case 1:
		return ok[0], nil
	}
	var best []*VarInfo
	for _, v := range ok {
		maximal := true
		for _, w := range ok {
			if v != w && moreSpecific(w, v) && !moreSpecific(v, w) {
				maximal = false
				break
			}
		}
		if maximal {
			best = append(best, v)
		}
	}
	// Candidates come innermost first; an inner binding shadows outer
	// ones it ties with.
	inner := best[:0:0]
	for _, v := range best {
		if v.Ref.Ctx == best[0].Ref.Ctx {
			inner = append(inner, v)
		}
	}
	if len(inner) == 1 {
		return inner[0], nil
	}
	return nil, &AmbiguousError{Name: name, Candidates: inner}
}

func moreSpecific(v, w *VarInfo) bool {
	x, ok1 := types.SubrOf(v.Type)
	y, ok2 := types.SubrOf(w.Type)
	if !ok1 || !ok2 || len(x.NonDefault) != len(y.NonDefault) {
		return false
	}
	for i := range x.NonDefault {
		if !types.Subtype(x.NonDefault[i].Type, y.NonDefault[i].Type) {
			return false
		}
	}
	return true
}

// supers returns the direct supertypes of t for method resolution.
func supers(t types.Type) []types.Type {
	switch t := t.(type) {
	case *types.Mono:
		return t.Supers
	case types.Prim:
		switch t {
		case types.Bool:
			return []types.Type{types.Nat}
		case types.Nat:
			return []types.Type{types.Int}
		case types.Int:
			return []types.Type{types.Float}
		}
	case *types.Refinement:
		return []types.Type{t.Base}
	}
	return nil
}

// LookupAttr resolves the method or field name of receiver type t:
// first in the Context of t, then in those of its supertypes in
// declaration order, depth first, and finally in the methods of Obj.
func (a *Arena) LookupAttr(t types.Type, name string) (*VarInfo, bool) {
	seen := make(map[types.Type]bool)
	var find func(types.Type) (*VarInfo, bool)
	find = func(t types.Type) (*VarInfo, bool) {
		if seen[t] {
			return nil, false
		}
		seen[t] = true
		key := t
		if p, ok := t.(*types.Poly); ok {
			key = polyKey(p.Name)
		}
		if impl, ok := a.Impl(key); ok {
			if v, ok := impl.LookupLocal(name); ok {
				return v, true
			}
		}
		for _, s := range supers(t) {
			if v, ok := find(s); ok {
				return v, true
			}
		}
		return nil, false
	}
	if v, ok := find(t); ok {
		return v, true
	}
	return find(types.Obj)
}

// AttrNames returns the method and field names of type t, sorted.
func (a *Arena) AttrNames(t types.Type) []string {
	seen := make(map[string]bool)
	var walk func(types.Type)
	walk = func(t types.Type) {
		key := t
		if p, ok := t.(*types.Poly); ok {
			key = polyKey(p.Name)
		}
		if impl, ok := a.Impl(key); ok {
			for _, name := range maps.Keys(impl.names) {
				seen[name] = true
			}
		}
		for _, s := range supers(t) {
			walk(s)
		}
	}
	walk(t)
	names := maps.Keys(seen)
	sort.Strings(names)
	return names
}

// arrayImpl keys the methods shared by all Array types.
var arrayImpl = types.BuiltinMono("Array")

// polyKey is the key under which the methods of a type constructor
// are registered, or nil.
func polyKey(name string) types.Type {
	if name == "Array" {
		return arrayImpl
	}
	return nil
}
