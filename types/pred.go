// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// This file defines the refinement predicate language and the decision
// procedure for implication between predicates.
//
// Predicates are a closed algebra: conjunction, disjunction, and
// comparisons between type parameters. Anything else is Opaque and is
// compared by its text. Implication is decided by converting the
// premise to disjunctive normal form, computing for each disjunct an
// integer interval per compared term, and checking that every clause
// of the conclusion's conjunctive normal form has an atom entailed by
// the intervals (or present verbatim in the premise).

import (
	"math"
	"strings"

	"github.com/hashicorp/go-set/v2"
)

// A Pred is a refinement predicate: one of PBool, Cmp, Conj, Disj, or
// Opaque. Preds must not be compared with ==; use their String forms.
type Pred interface {
	String() string
	pred()
}

func (PBool) pred()  {}
func (Cmp) pred()    {}
func (Conj) pred()   {}
func (Disj) pred()   {}
func (Opaque) pred() {}

// A PBool is a constant predicate.
type PBool bool

const (
	PTrue  = PBool(true)
	PFalse = PBool(false)
)

func (b PBool) String() string {
	if b {
		return "True"
	}
	return "False"
}

// A CmpOp is a comparison operator.
type CmpOp uint8

const (
	Eq CmpOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

var cmpNames = [...]string{Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">="}

func (op CmpOp) String() string { return cmpNames[op] }

// flip returns the operator op' such that (x op y) == (y op' x).
func (op CmpOp) flip() CmpOp {
	switch op {
	case Lt:
		return Gt
	case Le:
		return Ge
	case Gt:
		return Lt
	case Ge:
		return Le
	}
	return op
}

func (op CmpOp) holds(x, y int64) bool {
	switch op {
	case Eq:
		return x == y
	case Ne:
		return x != y
	case Lt:
		return x < y
	case Le:
		return x <= y
	case Gt:
		return x > y
	}
	return x >= y
}

// A Cmp is a comparison L Op R.
type Cmp struct {
	Op   CmpOp
	L, R TyParam
}

func (c Cmp) String() string { return c.L.String() + " " + c.Op.String() + " " + c.R.String() }

// A Conj is a conjunction. The empty Conj is true.
type Conj []Pred

func (c Conj) String() string { return joinPreds(c, " and ", true) }

// A Disj is a disjunction. The empty Disj is false.
type Disj []Pred

func (d Disj) String() string { return joinPreds(d, " or ", false) }

func joinPreds(ps []Pred, sep string, and bool) string {
	if len(ps) == 0 {
		return PBool(and).String()
	}
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteString(sep)
		}
		_, inner := p.(Disj)
		if and && inner {
			b.WriteString("(" + p.String() + ")")
		} else {
			b.WriteString(p.String())
		}
	}
	return b.String()
}

// An Opaque predicate is outside the decidable fragment.
type Opaque string

func (o Opaque) String() string { return string(o) }

// Compare is a convenience constructor for Cmp{op, TPName(name), TPValue(v)}.
func Compare(name string, op CmpOp, v int64) Cmp {
	return Cmp{Op: op, L: TPName(name), R: TPValue(v)}
}

// Normalize evaluates ground comparisons, flattens nested connectives,
// and puts comparisons with one constant side into the form x op c.
func Normalize(p Pred) Pred {
	switch p := p.(type) {
	case Cmp:
		return normCmp(p)
	case Conj:
		var out Conj
		seen := set.New[string](len(p))
		for _, q := range p {
			q = Normalize(q)
			var items []Pred
			switch q := q.(type) {
			case PBool:
				if !q {
					return PFalse
				}
				continue
			case Conj:
				items = q
			default:
				items = []Pred{q}
			}
			for _, item := range items {
				if seen.Insert(item.String()) {
					out = append(out, item)
				}
			}
		}
		switch len(out) {
		case 0:
			return PTrue
		case 1:
			return out[0]
		}
		return out
	case Disj:
		var out Disj
		seen := set.New[string](len(p))
		for _, q := range p {
			q = Normalize(q)
			var items []Pred
			switch q := q.(type) {
			case PBool:
				if q {
					return PTrue
				}
				continue
			case Disj:
				items = q
			default:
				items = []Pred{q}
			}
			for _, item := range items {
				if seen.Insert(item.String()) {
					out = append(out, item)
				}
			}
		}
		switch len(out) {
		case 0:
			return PFalse
		case 1:
			return out[0]
		}
		return out
	}
	return p
}

func normCmp(c Cmp) Pred {
	l, r := EvalTP(c.L), EvalTP(c.R)
	op := c.Op
	if _, ok := l.(TPValue); ok {
		if _, ok := r.(TPValue); !ok {
			l, r, op = r, l, op.flip()
		}
	}
	// x + a op b  =>  x op b - a
	for {
		b, ok := l.(*TPBin)
		if !ok || (b.Op != Add && b.Op != Sub) {
			break
		}
		a, ok := b.R.(TPValue)
		rv, rok := r.(TPValue)
		if !ok || !rok {
			break
		}
		if b.Op == Add {
			r = rv - a
		} else {
			r = rv + a
		}
		l = b.L
	}
	lv, lok := l.(TPValue)
	rv, rok := r.(TPValue)
	if lok && rok {
		return PBool(op.holds(int64(lv), int64(rv)))
	}
	if l.String() == r.String() {
		return PBool(op == Eq || op == Le || op == Ge)
	}
	return Cmp{Op: op, L: l, R: r}
}

// Subst replaces the named parameter by tp throughout p.
func Subst(p Pred, name string, tp TyParam) Pred {
	switch p := p.(type) {
	case Cmp:
		return Cmp{Op: p.Op, L: SubstTP(p.L, name, tp), R: SubstTP(p.R, name, tp)}
	case Conj:
		out := make(Conj, len(p))
		for i, q := range p {
			out[i] = Subst(q, name, tp)
		}
		return out
	case Disj:
		out := make(Disj, len(p))
		for i, q := range p {
			out[i] = Subst(q, name, tp)
		}
		return out
	}
	return p
}

// Eval substitutes v for name in p and normalizes the result. It
// returns PFalse when v definitely does not satisfy p.
func Eval(p Pred, name string, v TyParam) Pred {
	return Normalize(Subst(p, name, v))
}

// Implies reports whether p entails q over the integers.
func Implies(p, q Pred) bool {
	p, q = Normalize(p), Normalize(q)
	if b, ok := q.(PBool); ok && bool(b) {
		return true
	}
	clauses := cnf(q)
	for _, conj := range dnf(p) {
		if !entails(conj, clauses) {
			return false
		}
	}
	return true
}

// dnf returns p as a disjunction of conjunctions of atoms.
func dnf(p Pred) [][]Pred {
	switch p := p.(type) {
	case PBool:
		if p {
			return [][]Pred{nil}
		}
		return nil
	case Disj:
		var out [][]Pred
		for _, q := range p {
			out = append(out, dnf(q)...)
		}
		return out
	case Conj:
		out := [][]Pred{nil}
		for _, q := range p {
			out = cross(out, dnf(q))
		}
		return out
	}
	return [][]Pred{{p}}
}

// cnf returns p as a conjunction of disjunctions of atoms.
func cnf(p Pred) [][]Pred {
	switch p := p.(type) {
	case PBool:
		if p {
			return nil
		}
		return [][]Pred{nil}
	case Conj:
		var out [][]Pred
		for _, q := range p {
			out = append(out, cnf(q)...)
		}
		return out
	case Disj:
		out := [][]Pred{nil}
		for _, q := range p {
			out = cross(out, cnf(q))
		}
		return out
	}
	return [][]Pred{{p}}
}

func cross(xs, ys [][]Pred) [][]Pred {
	out := make([][]Pred, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			z := make([]Pred, 0, len(x)+len(y))
			out = append(out, append(append(z, x...), y...))
		}
	}
	return out
}

// An interval is the set of integers a term may take.
type interval struct {
	lo, hi int64
	ne     *set.Set[int64]
}

func newInterval() *interval {
	return &interval{lo: math.MinInt64, hi: math.MaxInt64, ne: set.New[int64](0)}
}

func (iv *interval) constrain(op CmpOp, c int64) {
	switch op {
	case Eq:
		iv.lo, iv.hi = max(iv.lo, c), min(iv.hi, c)
	case Ne:
		iv.ne.Insert(c)
	case Lt:
		if c > math.MinInt64 {
			iv.hi = min(iv.hi, c-1)
		} else {
			iv.lo, iv.hi = 1, 0
		}
	case Le:
		iv.hi = min(iv.hi, c)
	case Gt:
		if c < math.MaxInt64 {
			iv.lo = max(iv.lo, c+1)
		} else {
			iv.lo, iv.hi = 1, 0
		}
	case Ge:
		iv.lo = max(iv.lo, c)
	}
}

// tighten moves the ends of iv inward past excluded values.
func (iv *interval) tighten() {
	for iv.lo <= iv.hi && iv.ne.Contains(iv.lo) && iv.lo < math.MaxInt64 {
		iv.lo++
	}
	for iv.lo <= iv.hi && iv.ne.Contains(iv.hi) && iv.hi > math.MinInt64 {
		iv.hi--
	}
}

func (iv *interval) empty() bool {
	return iv.lo > iv.hi || (iv.lo == iv.hi && iv.ne.Contains(iv.lo))
}

// implies reports whether every integer in iv satisfies x op c.
func (iv *interval) implies(op CmpOp, c int64) bool {
	switch op {
	case Eq:
		return iv.lo == c && iv.hi == c
	case Ne:
		return c < iv.lo || c > iv.hi || iv.ne.Contains(c)
	case Lt:
		return iv.hi < c
	case Le:
		return iv.hi <= c
	case Gt:
		return iv.lo > c
	}
	return iv.lo >= c
}

// entails reports whether the conjunction of atoms satisfies every
// clause.
func entails(atoms []Pred, clauses [][]Pred) bool {
	bounds := make(map[string]*interval)
	text := set.New[string](len(atoms))
	for _, a := range atoms {
		text.Insert(a.String())
		c, ok := a.(Cmp)
		if !ok {
			continue
		}
		v, ok := c.R.(TPValue)
		if !ok {
			continue
		}
		key := c.L.String()
		iv := bounds[key]
		if iv == nil {
			iv = newInterval()
			bounds[key] = iv
		}
		iv.constrain(c.Op, int64(v))
	}
	for _, iv := range bounds {
		if iv.tighten(); iv.empty() {
			return true // contradictory premise
		}
	}
	for _, clause := range clauses {
		if !clauseHolds(clause, bounds, text) {
			return false
		}
	}
	return true
}

func clauseHolds(clause []Pred, bounds map[string]*interval, text *set.Set[string]) bool {
	for _, a := range clause {
		if text.Contains(a.String()) {
			return true
		}
		c, ok := a.(Cmp)
		if !ok {
			continue
		}
		v, ok := c.R.(TPValue)
		if !ok {
			continue
		}
		if iv := bounds[c.L.String()]; iv != nil && iv.implies(c.Op, int64(v)) {
			return true
		}
	}
	return false
}
