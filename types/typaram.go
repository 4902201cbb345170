// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"fmt"
	"strconv"
)

// A TyParam is a value-level term appearing inside a type, such as the
// length of an array type. It is one of TPValue, TPName, *TPVar,
// *TPBin, TPType, or Erased.
type TyParam interface {
	String() string
	typaram()
}

func (TPValue) typaram()  {}
func (TPName) typaram()   {}
func (*TPVar) typaram()   {}
func (*TPBin) typaram()   {}
func (TPType) typaram()   {}
func (tpErased) typaram() {}

// A TPValue is an integer constant.
type TPValue int64

func (v TPValue) String() string { return strconv.FormatInt(int64(v), 10) }

// A TPName is a named parameter, bound by a quantifier or by the
// variable of a refinement.
type TPName string

func (n TPName) String() string { return string(n) }

// A TPVar is an inference variable ranging over values.
type TPVar struct {
	id   int
	link TyParam
}

func (v *TPVar) String() string {
	if v.link != nil {
		return v.link.String()
	}
	return fmt.Sprintf("?%d", v.id)
}

// An Op is an arithmetic operator on type parameters.
type Op uint8

const (
	Add Op = iota
	Sub
	Mul
	Div // floor division
	Mod
)

var opNames = [...]string{Add: "+", Sub: "-", Mul: "*", Div: "//", Mod: "%"}

func (op Op) String() string { return opNames[op] }

// A TPBin is an arithmetic combination of two type parameters.
type TPBin struct {
	Op   Op
	L, R TyParam
}

func (b *TPBin) String() string {
	return fmt.Sprintf("%s %s %s", operand(b.L), b.Op, operand(b.R))
}

func operand(tp TyParam) string {
	if _, ok := tp.(*TPBin); ok {
		return "(" + tp.String() + ")"
	}
	return tp.String()
}

// A TPType is a type used as a type parameter, as in Array(Int, 3).
type TPType struct {
	T Type
}

func (t TPType) String() string { return t.T.String() }

type tpErased struct{}

func (tpErased) String() string { return "_" }

// Erased is the placeholder for a statically unknown parameter, as
// in Array(Str, _).
var Erased TyParam = tpErased{}

// deref follows the links of solved parameter variables.
func deref(tp TyParam) TyParam {
	for {
		v, ok := tp.(*TPVar)
		if !ok || v.link == nil {
			return tp
		}
		tp = v.link
	}
}

// EvalTP returns tp with solved variables substituted and constant
// arithmetic folded.
func EvalTP(tp TyParam) TyParam {
	tp = deref(tp)
	b, ok := tp.(*TPBin)
	if !ok {
		return tp
	}
	l, r := EvalTP(b.L), EvalTP(b.R)
	lv, lok := l.(TPValue)
	rv, rok := r.(TPValue)
	if lok && rok {
		switch b.Op {
		case Add:
			return lv + rv
		case Sub:
			return lv - rv
		case Mul:
			return lv * rv
		case Div:
			if rv != 0 {
				return TPValue(floorDiv(int64(lv), int64(rv)))
			}
		case Mod:
			if rv != 0 {
				return lv - rv*TPValue(floorDiv(int64(lv), int64(rv)))
			}
		}
	}
	switch {
	case rok && rv == 0 && (b.Op == Add || b.Op == Sub):
		return l
	case lok && lv == 0 && b.Op == Add:
		return r
	case rok && rv == 1 && (b.Op == Mul || b.Op == Div):
		return l
	}
	return &TPBin{Op: b.Op, L: l, R: r}
}

func floorDiv(x, y int64) int64 {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}

// SubstTP replaces each occurrence of the named parameter in tp.
func SubstTP(tp TyParam, name string, by TyParam) TyParam {
	switch t := deref(tp).(type) {
	case TPName:
		if string(t) == name {
			return by
		}
	case *TPBin:
		return &TPBin{Op: t.Op, L: SubstTP(t.L, name, by), R: SubstTP(t.R, name, by)}
	}
	return tp
}
