// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go.erg.dev/hir"
	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

// inc builds the HIR of: f i = i + 1
func inc() *hir.Def {
	sig := types.Func([]types.Param{types.Kw("i", types.Int)}, nil, nil, types.Int)
	return &hir.Def{
		Name:   "f",
		Params: &hir.Params{Pos: []*hir.Param{{Name: "i", T: types.Int}}},
		Body: &hir.Block{
			Stmts: []hir.Stmt{&hir.ExprStmt{X: &hir.Binary{
				Op: syntax.PLUS,
				X:  &hir.Ident{Name: "i", T: types.Int},
				Y:  &hir.Literal{Raw: "1", Token: syntax.INT, Value: int64(1), T: types.Nat},
				T:  types.Int,
			}}},
			T: types.Int,
		},
		T: sig,
	}
}

func TestPrint(t *testing.T) {
	want := `def f: (i: Int) -> Int
  param i: Int
  binary +: Int
    ident i: Int
    literal 1: Nat
`
	require.Equal(t, want, hir.String(inc()))
}

func TestWalk(t *testing.T) {
	def := inc()
	var kinds []string
	hir.Walk(def, func(n hir.Node) bool {
		switch n.(type) {
		case *hir.Def:
			kinds = append(kinds, "def")
		case *hir.Param:
			kinds = append(kinds, "param")
		case *hir.Binary:
			kinds = append(kinds, "binary")
		case *hir.Ident:
			kinds = append(kinds, "ident")
		}
		return true
	})
	require.Equal(t, []string{"def", "param", "binary", "ident"}, kinds)

	ids := hir.Idents(def)
	require.Len(t, ids, 1)
	require.Equal(t, "i", ids[0].Name)
}

func TestSignatureT(t *testing.T) {
	def := inc()
	require.Equal(t, "(i: Int) -> Int", hir.SignatureT(def).String())
	require.Nil(t, hir.SignatureT(&hir.Literal{T: types.Nat}))

	var u types.Unifier
	u.Enter()
	v := u.Fresh()
	u.Leave()
	poly := u.Generalize(types.Func1(v, v))
	require.NotNil(t, hir.SignatureT(&hir.Ident{T: poly}))
}

func TestOperandTypes(t *testing.T) {
	bin := inc().Body.Stmts[0].(*hir.ExprStmt).X
	require.Equal(t, types.Type(types.Int), hir.LHST(bin))
	require.Equal(t, types.Type(types.Nat), hir.RHST(bin))

	call := &hir.Call{
		Fn:   &hir.Ident{Name: "max"},
		Args: []*hir.Arg{{X: &hir.Literal{T: types.Nat}}, {X: &hir.Literal{T: types.Float}}},
	}
	require.Equal(t, types.Type(types.Float), hir.RHST(call))

	require.Panics(t, func() { hir.LHST(&hir.Ident{T: types.Int}) })
	require.Panics(t, func() { hir.RHST(&hir.Call{Args: []*hir.Arg{{X: &hir.Literal{T: types.Nat}}}}) })
}

func TestRetype(t *testing.T) {
	def := inc()
	hir.Retype(def, func(t types.Type) types.Type {
		if t == types.Nat {
			return types.Int
		}
		return t
	})
	lit := def.Body.Stmts[0].(*hir.ExprStmt).X.(*hir.Binary).Y
	require.Equal(t, types.Type(types.Int), lit.Type())
}

func TestBad(t *testing.T) {
	src := &syntax.Ident{Name: "prin"}
	bad := hir.NewBad(src)
	require.True(t, types.IsFailure(bad.Type()))
	require.Equal(t, "bad prin: ?\n", hir.String(bad))
}
