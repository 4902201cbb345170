// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// This file defines the Unifier, which records subtyping constraints
// between types. Inference variables accumulate lower and upper bounds;
// each new bound is checked against the opposite bounds already
// present, so an unsatisfiable constraint is reported when it is added.

import (
	"fmt"

	"github.com/hashicorp/go-set/v2"
)

// A MismatchError reports that Got is not a subtype of Want.
type MismatchError struct {
	Got, Want Type
	Reason    string // optional
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("expected %s, found %s", e.Want, e.Got)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// An EffectError reports that a procedure was used where a function
// is required.
type EffectError struct {
	Got, Want Type
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("expected a function of type %s, found procedure of type %s", e.Want, e.Got)
}

// A Unifier solves subtyping constraints. The zero value is ready to
// use. Inference variables are numbered per Unifier, so each module's
// elaboration has its own numbering.
type Unifier struct {
	nextID int
	level  int
	trials int      // number of active Trial calls
	trail  []func() // undo log, kept only during trials
}

// Fresh returns a new inference variable at the current level.
func (u *Unifier) Fresh() *Var {
	u.nextID++
	return &Var{id: u.nextID, level: u.level}
}

// FreshTP returns a new value-level inference variable.
func (u *Unifier) FreshTP() *TPVar {
	u.nextID++
	return &TPVar{id: u.nextID}
}

// Enter begins a let-binding scope; variables created inside it may be
// generalized when it is left.
func (u *Unifier) Enter() { u.level++ }

// Leave ends the scope begun by Enter.
func (u *Unifier) Leave() { u.level-- }

// Level returns the current binding depth.
func (u *Unifier) Level() int { return u.level }

func (u *Unifier) record(undo func()) {
	if u.trials > 0 {
		u.trail = append(u.trail, undo)
	}
}

func (u *Unifier) rollback(mark int) {
	for i := len(u.trail) - 1; i >= mark; i-- {
		u.trail[i]()
	}
	u.trail = u.trail[:mark]
}

// Trial calls f and, if it fails, undoes every constraint f recorded.
func (u *Unifier) Trial(f func() error) error {
	mark := len(u.trail)
	u.trials++
	err := f()
	u.trials--
	if err != nil {
		u.rollback(mark)
	}
	if u.trials == 0 {
		u.trail = u.trail[:0]
	}
	return err
}

// Check reports whether a ≤ b could be recorded, without recording it.
func (u *Unifier) Check(a, b Type) bool {
	mark := len(u.trail)
	u.trials++
	err := u.sub(a, b, make(map[pair]bool))
	u.trials--
	u.rollback(mark)
	return err == nil
}

type pair struct{ a, b Type }

// Sub records the constraint a ≤ b. It returns a *MismatchError or
// *EffectError if the constraint cannot hold, in which case nothing
// is recorded.
func (u *Unifier) Sub(a, b Type) error {
	return u.Trial(func() error { return u.sub(a, b, make(map[pair]bool)) })
}

func (u *Unifier) sub(a, b Type, seen map[pair]bool) error {
	if a == b || a == Failure || b == Failure || a == Never || b == Obj {
		return nil
	}
	k := pair{a, b}
	if seen[k] {
		return nil // already being checked further up
	}
	seen[k] = true
	defer delete(seen, k)

	if v, ok := a.(*Var); ok {
		return u.addUpper(v, b, seen)
	}
	if v, ok := b.(*Var); ok {
		return u.addLower(v, a, seen)
	}
	if q, ok := a.(*Quantified); ok {
		return u.sub(u.Instantiate(q), b, seen)
	}
	if q, ok := b.(*Quantified); ok {
		return u.sub(a, u.Instantiate(q), seen)
	}

	// unions and intersections
	if x, ok := a.(*Or); ok {
		if err := u.sub(x.L, b, seen); err != nil {
			return err
		}
		return u.sub(x.R, b, seen)
	}
	if y, ok := b.(*And); ok {
		if err := u.sub(a, y.L, seen); err != nil {
			return err
		}
		return u.sub(a, y.R, seen)
	}
	if y, ok := b.(*Or); ok {
		if u.Trial(func() error { return u.sub(a, y.L, seen) }) == nil {
			return nil
		}
		if u.Trial(func() error { return u.sub(a, y.R, seen) }) == nil {
			return nil
		}
		return mismatch(a, b)
	}
	if x, ok := a.(*And); ok {
		if u.Trial(func() error { return u.sub(x.L, b, seen) }) == nil {
			return nil
		}
		if u.Trial(func() error { return u.sub(x.R, b, seen) }) == nil {
			return nil
		}
		return mismatch(a, b)
	}

	// refinements
	if y, ok := b.(*Refinement); ok {
		err := u.subRefinement(u.asRefinement(a, y.Var), y, seen)
		if m, ok := err.(*MismatchError); ok && m.Want == y {
			m.Got = a // as written, not as viewed
		}
		return err
	}
	if x, ok := a.(*Refinement); ok {
		if b == Nat {
			return u.subRefinement(x, u.asRefinement(Nat, x.Var), seen)
		}
		return u.sub(x.Base, b, seen)
	}

	switch x := a.(type) {
	case Prim:
		if y, ok := b.(Prim); ok && primSub(x, y) {
			return nil
		}

	case *Mono:
		for _, super := range x.Supers {
			if u.Trial(func() error { return u.sub(super, b, seen) }) == nil {
				return nil
			}
		}

	case *Poly:
		y, ok := b.(*Poly)
		if !ok || x.Name != y.Name || len(x.Params) != len(y.Params) {
			break
		}
		for i := range x.Params {
			if err := u.subTP(x.Params[i], y.Params[i], seen); err != nil {
				return &MismatchError{Got: a, Want: b, Reason: err.Error()}
			}
		}
		return nil

	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			break
		}
		for i := range x.Elems {
			if err := u.sub(x.Elems[i], y.Elems[i], seen); err != nil {
				return err
			}
		}
		return nil

	case *Record:
		y, ok := b.(*Record)
		if !ok {
			break
		}
		for _, f := range y.Fields {
			t := x.Field(f.Name)
			if t == nil {
				return &MismatchError{Got: a, Want: b, Reason: fmt.Sprintf("missing field %s", f.Name)}
			}
			if err := u.sub(t, f.Type, seen); err != nil {
				return err
			}
		}
		return nil

	case *Subr:
		y, ok := b.(*Subr)
		if !ok {
			break
		}
		return u.subSubr(x, y, seen)

	case *Module:
		if b == GenericModule {
			return nil
		}
		if y, ok := b.(*Module); ok && x.Path == y.Path && x.Py == y.Py {
			return nil
		}

	case *ClassType:
		if b == TypeType {
			return nil
		}
		if y, ok := b.(*ClassType); ok {
			return u.sub(x.Of, y.Of, seen)
		}
	}
	return mismatch(a, b)
}

func mismatch(a, b Type) error { return &MismatchError{Got: a, Want: b} }

func primSub(a, b Prim) bool {
	switch b {
	case a, Obj:
		return true
	case Float:
		return a == Int || a == Nat || a == Bool
	case Int:
		return a == Nat || a == Bool
	case Nat:
		return a == Bool
	}
	return a == Never
}

func (u *Unifier) addUpper(v *Var, t Type, seen map[pair]bool) error {
	if occurs(v, t) {
		return &MismatchError{Got: v, Want: t, Reason: "occurs check: infinite type"}
	}
	if !u.push(&v.upper, t) {
		return nil
	}
	u.lowerLevels(t, v.level)
	for _, l := range v.lower {
		if err := u.sub(l, t, seen); err != nil {
			return err
		}
	}
	return nil
}

func (u *Unifier) addLower(v *Var, t Type, seen map[pair]bool) error {
	if occurs(v, t) {
		return &MismatchError{Got: t, Want: v, Reason: "occurs check: infinite type"}
	}
	if !u.push(&v.lower, t) {
		return nil
	}
	u.lowerLevels(t, v.level)
	for _, h := range v.upper {
		if err := u.sub(t, h, seen); err != nil {
			return err
		}
	}
	return nil
}

// push appends t to the bound list unless already present.
func (u *Unifier) push(list *[]Type, t Type) bool {
	for _, x := range *list {
		if x == t {
			return false
		}
	}
	n := len(*list)
	*list = append(*list, t)
	u.record(func() { *list = (*list)[:n] })
	return true
}

// occurs reports whether v occurs strictly within t.
func occurs(v *Var, t Type) bool {
	if t == v {
		return false
	}
	found := false
	visit(t, func(x Type) {
		if x == v {
			found = true
		}
	})
	return found
}

// lowerLevels moves the variables reachable from t out to level, so
// that they are not generalized beyond the scope of a variable that
// depends on them.
func (u *Unifier) lowerLevels(t Type, level int) {
	seen := set.New[*Var](0)
	var walk func(Type)
	walk = func(t Type) {
		visit(t, func(x Type) {
			w, ok := x.(*Var)
			if !ok || !seen.Insert(w) {
				return
			}
			if w.level > level {
				old := w.level
				w.level = level
				u.record(func() { w.level = old })
			}
			for _, b := range w.lower {
				walk(b)
			}
			for _, b := range w.upper {
				walk(b)
			}
		})
	}
	walk(t)
}

// asRefinement views t as a refinement type with the given variable.
// A refinement keeps its predicate, renamed; other subtypes of Nat
// carry the predicate name >= 0.
func (u *Unifier) asRefinement(t Type, name string) *Refinement {
	if r, ok := t.(*Refinement); ok {
		return &Refinement{Var: name, Base: r.Base, Pred: Subst(r.Pred, r.Var, TPName(name))}
	}
	switch {
	case t == Nat:
		return &Refinement{Var: name, Base: Int, Pred: Compare(name, Ge, 0)}
	case u.Check(t, Nat):
		return &Refinement{Var: name, Base: t, Pred: Compare(name, Ge, 0)}
	}
	return &Refinement{Var: name, Base: t, Pred: PTrue}
}

// widen moves the implicit predicate of a Nat base into the predicate.
func widen(r *Refinement) *Refinement {
	if r.Base != Nat {
		return r
	}
	return &Refinement{Var: r.Var, Base: Int, Pred: Conj{Compare(r.Var, Ge, 0), r.Pred}}
}

func (u *Unifier) subRefinement(x, y *Refinement, seen map[pair]bool) error {
	wx, wy := widen(x), widen(y)
	if err := u.sub(wx.Base, wy.Base, seen); err != nil {
		return err
	}
	want := Subst(wy.Pred, wy.Var, TPName(wx.Var))
	if !Implies(wx.Pred, want) {
		return &MismatchError{Got: x, Want: y, Reason: fmt.Sprintf("cannot prove %s", Normalize(want))}
	}
	return nil
}

func (u *Unifier) subTP(a, b TyParam, seen map[pair]bool) error {
	if b == Erased {
		return nil
	}
	if x, ok := a.(TPType); ok {
		if y, ok := b.(TPType); ok {
			return u.sub(x.T, y.T, seen)
		}
	}
	return u.UnifyTP(a, b)
}

// UnifyTP records that a and b denote the same value.
func (u *Unifier) UnifyTP(a, b TyParam) error {
	a, b = EvalTP(a), EvalTP(b)
	if v, ok := a.(*TPVar); ok {
		u.link(v, b)
		return nil
	}
	if v, ok := b.(*TPVar); ok {
		u.link(v, a)
		return nil
	}
	if a.String() == b.String() {
		return nil
	}
	return fmt.Errorf("%s and %s differ", a, b)
}

func (u *Unifier) link(v *TPVar, tp TyParam) {
	if tp == TyParam(v) {
		return
	}
	v.link = tp
	u.record(func() { v.link = nil })
}

func (u *Unifier) subSubr(x, y *Subr, seen map[pair]bool) error {
	if x.Kind == ProcKind && y.Kind == FuncKind {
		return &EffectError{Got: x, Want: y}
	}
	if len(x.NonDefault) != len(y.NonDefault) {
		return &MismatchError{Got: x, Want: y,
			Reason: fmt.Sprintf("takes %d positional parameters, want %d", len(x.NonDefault), len(y.NonDefault))}
	}
	for i := range y.NonDefault {
		if err := u.sub(y.NonDefault[i].Type, x.NonDefault[i].Type, seen); err != nil {
			return err
		}
	}
	if y.VarArgs != nil {
		if x.VarArgs == nil {
			return &MismatchError{Got: x, Want: y, Reason: "no variadic parameter"}
		}
		if err := u.sub(y.VarArgs.Type, x.VarArgs.Type, seen); err != nil {
			return err
		}
	}
	for _, yp := range y.Default {
		xp, ok := x.DefaultParam(yp.Name)
		if !ok {
			return &MismatchError{Got: x, Want: y, Reason: fmt.Sprintf("no parameter %s", yp.Name)}
		}
		if err := u.sub(yp.Type, xp.Type, seen); err != nil {
			return err
		}
	}
	return u.sub(x.Return, y.Return, seen)
}

// Instantiate replaces the quantified variables of t by fresh ones,
// copying their bounds. Other types are returned unchanged.
func (u *Unifier) Instantiate(t Type) Type {
	q, ok := t.(*Quantified)
	if !ok {
		return t
	}
	vars := make(map[*Var]*Var, len(q.Vars))
	for _, v := range q.Vars {
		vars[v] = u.Fresh()
	}
	params := make(map[string]TyParam, len(q.Params))
	for _, name := range q.Params {
		params[name] = u.FreshTP()
	}
	var subst func(Type) Type
	subst = func(t Type) Type {
		switch t := t.(type) {
		case *Var:
			if w, ok := vars[t]; ok {
				return w
			}
			return t
		case *Poly:
			out := &Poly{Name: t.Name, Params: make([]TyParam, len(t.Params))}
			for i, p := range t.Params {
				switch p := p.(type) {
				case TPType:
					out.Params[i] = TPType{subst(p.T)}
				default:
					for name, by := range params {
						p = SubstTP(p, name, by)
					}
					out.Params[i] = p
				}
			}
			return out
		case *Refinement:
			pred := t.Pred
			for name, by := range params {
				pred = Subst(pred, name, by)
			}
			return &Refinement{Var: t.Var, Base: subst(t.Base), Pred: pred}
		}
		return Map(t, subst)
	}
	for old, w := range vars {
		for _, b := range old.lower {
			w.lower = append(w.lower, subst(b))
		}
		for _, b := range old.upper {
			w.upper = append(w.upper, subst(b))
		}
	}
	return subst(q.Body)
}

// Generalize quantifies t over the variables created within the
// current level that remain free. It returns t itself if there are none.
func (u *Unifier) Generalize(t Type) Type {
	var vars []*Var
	for _, v := range FreeVars(t) {
		if v.level > u.level {
			vars = append(vars, v)
		}
	}
	if len(vars) == 0 {
		return t
	}
	return &Quantified{Vars: vars, Body: t}
}

// FreeVars returns the inference variables reachable from t, including
// through the bounds of other variables, in order of first appearance.
func FreeVars(t Type) []*Var {
	seen := set.New[*Var](0)
	var bound *set.Set[*Var]
	var out []*Var
	var walk func(Type)
	walk = func(t Type) {
		visit(t, func(x Type) {
			switch x := x.(type) {
			case *Quantified:
				if bound == nil {
					bound = set.New[*Var](len(x.Vars))
				}
				for _, v := range x.Vars {
					bound.Insert(v)
				}
			case *Var:
				if (bound != nil && bound.Contains(x)) || !seen.Insert(x) {
					return
				}
				out = append(out, x)
				for _, b := range x.lower {
					walk(b)
				}
				for _, b := range x.upper {
					walk(b)
				}
			}
		})
	}
	walk(t)
	return out
}

// Resolve returns t with each inference variable replaced by its
// solution: the join of its lower bounds if it has any, otherwise the
// meet of its upper bounds. Variables without bounds, and those bound
// by a quantifier, are left in place.
func (u *Unifier) Resolve(t Type) Type {
	return u.resolve(t, set.New[*Var](0), set.New[*Var](0))
}

func (u *Unifier) resolve(t Type, bound, active *set.Set[*Var]) Type {
	switch t := t.(type) {
	case *Var:
		if bound.Contains(t) || !active.Insert(t) {
			return t
		}
		defer active.Remove(t)
		if len(t.lower) > 0 {
			var j Type = Never
			for _, l := range t.lower {
				j = u.Join(j, u.resolve(l, bound, active))
			}
			return j
		}
		if len(t.upper) > 0 {
			var m Type = Obj
			for _, h := range t.upper {
				m = u.Meet(m, u.resolve(h, bound, active))
			}
			return m
		}
		return t
	case *Quantified:
		for _, v := range t.Vars {
			bound.Insert(v)
		}
		return &Quantified{Vars: t.Vars, Params: t.Params, Body: u.resolve(t.Body, bound, active)}
	case Prim, *Mono, *Module:
		return t
	}
	return Map(t, func(c Type) Type { return u.resolve(c, bound, active) })
}

// Join returns the least of a and b if they are comparable, otherwise
// their union.
func (u *Unifier) Join(a, b Type) Type {
	switch {
	case u.Check(a, b):
		return b
	case u.Check(b, a):
		return a
	}
	return &Or{a, b}
}

// Meet returns the greatest of a and b if they are comparable,
// otherwise their intersection.
func (u *Unifier) Meet(a, b Type) Type {
	switch {
	case u.Check(a, b):
		return a
	case u.Check(b, a):
		return b
	}
	return &And{a, b}
}

// Subtype reports whether a ≤ b.
func Subtype(a, b Type) bool {
	var u Unifier
	return u.Check(a, b)
}

// Equal reports whether a and b are subtypes of each other.
func Equal(a, b Type) bool {
	return Subtype(a, b) && Subtype(b, a)
}
