// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fresh generates synthetic names for temporaries and
// anonymized parameters.
//
// Names have the form %v{n} (values) and %p{n} (parameters). The '%'
// prefix cannot appear in a source identifier, so fresh names never
// collide with user bindings. A Gen belongs to a single module's
// elaboration, which keeps the numbering stable across runs regardless
// of how modules are scheduled.
package fresh // import "go.erg.dev/internal/fresh"

import (
	"strconv"
	"strings"
)

const (
	varPrefix   = "%v"
	paramPrefix = "%p"
)

// A Gen is a monotonic name source. The zero value is ready to use.
// A Gen is not safe for concurrent use.
type Gen struct {
	vars, params int
}

// Var returns the next %v{n} name.
func (g *Gen) Var() string {
	g.vars++
	return varPrefix + strconv.Itoa(g.vars)
}

// Param returns the next %p{n} name.
func (g *Gen) Param() string {
	g.params++
	return paramPrefix + strconv.Itoa(g.params)
}

// Is reports whether name was produced by a Gen.
func Is(name string) bool {
	return strings.HasPrefix(name, varPrefix) || strings.HasPrefix(name, paramPrefix)
}
